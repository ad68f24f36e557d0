package types

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Action is the operation applied to a file matched by a rule.
type Action string

// Supported actions.
const (
	ActionDelete Action = "delete" // Remove the file
	ActionMove   Action = "move"   // Move the file into the rule's target directory
	ActionRename Action = "rename" // Rename the file, replacing problematic characters
	ActionChmod  Action = "chmod"  // Reset the file's access rights to the configured default
	ActionSkip   Action = "skip"   // Explicitly leave the file alone
)

// Valid reports whether the action is one of the supported operations.
func (a Action) Valid() bool {
	switch a {
	case ActionDelete, ActionMove, ActionRename, ActionChmod, ActionSkip:
		return true
	}
	return false
}

// Destructive reports whether the action modifies or removes the file,
// i.e. whether it should be gated behind a confirmation prompt.
func (a Action) Destructive() bool {
	return a != ActionSkip && a != ""
}

// Duration wraps time.Duration so YAML configuration can use Go duration
// strings like "720h" or "30m".
type Duration time.Duration

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// String returns the duration in Go's duration syntax.
func (d Duration) String() string {
	return time.Duration(d).String()
}

// UnmarshalYAML parses a duration string.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML renders the duration in Go's duration syntax.
func (d Duration) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}

// Rule defines a classification rule: a set of predicates tested against a
// file and the action applied when they all hold. Rules are evaluated in
// configuration order and the first matching rule wins.
type Rule struct {
	Name      string   `yaml:"name"`       // Rule name, used in logs and reports
	Pattern   string   `yaml:"pattern"`    // Glob pattern matched against the base name (e.g. "*.tmp")
	OlderThan Duration `yaml:"older_than"` // Only match files not modified for at least this long
	MinSize   int64    `yaml:"min_size"`   // Only match files of at least this many bytes
	MaxSize   int64    `yaml:"max_size"`   // Only match files of at most this many bytes (0 = no limit)
	Empty     bool     `yaml:"empty"`      // Only match zero-byte files
	Temp      bool     `yaml:"temp"`       // Only match files with a configured temp suffix
	Duplicate bool     `yaml:"duplicate"`  // Only match files whose content was already seen this run
	Recursive bool     `yaml:"recursive"`  // Scan subdirectories when collecting files for this rule's run
	Action    Action   `yaml:"action"`     // Action to apply on match
	Target    string   `yaml:"target"`     // Target directory for the move action
}
