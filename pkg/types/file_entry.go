package types

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"
)

// FileEntry represents a file discovered in a target directory together with
// the metadata rule predicates are tested against.
type FileEntry struct {
	Path    string      `json:"path"`
	Size    int64       `json:"size"`
	ModTime time.Time   `json:"mod_time"`
	Mode    fs.FileMode `json:"mode"`
}

// Name returns the base name of the file.
func (f *FileEntry) Name() string {
	return filepath.Base(f.Path)
}

// Ext returns the file extension including the leading dot.
func (f *FileEntry) Ext() string {
	return filepath.Ext(f.Path)
}

// IsEmpty reports whether the file has no content.
func (f *FileEntry) IsEmpty() bool {
	return f.Size == 0
}

// Age returns how long ago the file was last modified.
func (f *FileEntry) Age(now time.Time) time.Duration {
	return now.Sub(f.ModTime)
}

// HasSuffix reports whether the file name ends with any of the given suffixes.
func (f *FileEntry) HasSuffix(suffixes []string) bool {
	name := f.Name()
	for _, s := range suffixes {
		if s != "" && strings.HasSuffix(name, s) {
			return true
		}
	}
	return false
}

// String returns a human-readable representation.
func (f *FileEntry) String() string {
	return fmt.Sprintf("%s (%d bytes, modified %s)", f.Path, f.Size, f.ModTime.Format(time.RFC3339))
}
