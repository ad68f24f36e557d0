// Package scan enumerates the files of a target directory and computes the
// metadata rule predicates are tested against.
package scan

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	cferr "cleanfiles/internal/errors"
	"cleanfiles/internal/log"
	"cleanfiles/pkg/types"
)

// Files lists the regular files of dir. With recursive set, subdirectories
// are descended into; otherwise only the directory's own entries are
// returned. Files that vanish or cannot be stat'd mid-scan are logged and
// skipped; a missing or unreadable directory is an error.
func Files(dir string, recursive bool) ([]types.FileEntry, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, cferr.NewFileError("error accessing directory", dir, cferr.FileNotFound, err)
	}
	if !info.IsDir() {
		return nil, cferr.NewFileError("path is not a directory", dir, cferr.InvalidPath, nil)
	}

	if recursive {
		return walkFiles(dir)
	}
	return listFiles(dir)
}

func listFiles(dir string) ([]types.FileEntry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("error reading directory: %w", err)
	}

	var files []types.FileEntry
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			log.Warn("skipping %s: %v", filepath.Join(dir, entry.Name()), err)
			continue
		}
		if !info.Mode().IsRegular() {
			continue
		}
		files = append(files, newEntry(filepath.Join(dir, entry.Name()), info))
	}
	return files, nil
}

func walkFiles(root string) ([]types.FileEntry, error) {
	var files []types.FileEntry
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			log.Warn("skipping %s: %v", path, err)
			return nil
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			log.Warn("skipping %s: %v", path, err)
			return nil
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		files = append(files, newEntry(path, info))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error walking directory: %w", err)
	}
	return files, nil
}

func newEntry(path string, info fs.FileInfo) types.FileEntry {
	return types.FileEntry{
		Path:    path,
		Size:    info.Size(),
		ModTime: info.ModTime(),
		Mode:    info.Mode(),
	}
}

// Hash returns the hex md5 digest of the file's content. It is used by the
// duplicate predicate to recognize files with identical content.
func Hash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("error opening file for hashing: %w", err)
	}
	defer f.Close()

	h := md5.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("error hashing file: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
