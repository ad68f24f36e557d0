package config

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	cferr "cleanfiles/internal/errors"
	"cleanfiles/pkg/types"

	"github.com/gobwas/glob"
	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is the config file looked up when --config is not given.
const DefaultConfigPath = "clean_files.ini"

// rulePrefix marks ini sections that define rules, e.g. [rule:temp].
const rulePrefix = "rule:"

// Settings holds run-wide options that apply to every rule.
type Settings struct {
	DryRun                  bool     `yaml:"dry_run"`                    // If true, simulate operations
	CreateDirs              bool     `yaml:"create_dirs"`                // Create missing move targets
	Collision               string   `yaml:"collision"`                  // Collision strategy: rename, skip, or overwrite
	RequireConfirmation     bool     `yaml:"require_confirmation"`       // Prompt before destructive actions
	DefaultFileAccessRights string   `yaml:"default_file_access_rights"` // Octal mode applied by the chmod action
	ProblematicChars        string   `yaml:"problematic_chars"`          // Characters replaced by the rename action
	SubstituteChar          string   `yaml:"substitute_char"`            // Replacement character for rename
	TempFileSuffixes        []string `yaml:"temp_file_suffixes"`         // Suffixes matched by the temp predicate
}

// Config represents the application configuration: run-wide settings and the
// ordered rule list the engine evaluates.
type Config struct {
	Settings Settings     `yaml:"settings"`
	Rules    []types.Rule `yaml:"rules"`
}

// New returns a configuration populated with safe defaults.
func New() *Config {
	return &Config{
		Settings: Settings{
			DryRun:                  false,
			CreateDirs:              true,
			Collision:               "rename",
			RequireConfirmation:     false,
			DefaultFileAccessRights: "0644",
			ProblematicChars:        ` :*?"'<>|`,
			SubstituteChar:          "_",
			TempFileSuffixes:        []string{".tmp", ".temp", ".swp", "~"},
		},
	}
}

// LoadConfigFile loads configuration from the given path. The format is
// chosen by extension: .yaml/.yml files use the YAML schema, everything else
// is parsed as an ini file. A missing or malformed file is a fatal
// configuration error; no cleanup run starts without a valid rule list.
func LoadConfigFile(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, cferr.NewConfigError("config file not accessible", path, cferr.ConfigNotFound, err)
	}

	var (
		cfg *Config
		err error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		cfg, err = loadYAML(path)
	default:
		cfg, err = loadINI(path)
	}
	if err != nil {
		return nil, cferr.NewConfigError("failed to load config", path, cferr.InvalidConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, cferr.NewConfigError("invalid configuration", path, cferr.InvalidConfig, err)
	}
	return cfg, nil
}

// loadYAML reads the YAML schema. Decoding happens directly over the
// defaults, so keys absent from the file keep their default value — the same
// semantics the ini loader has.
func loadYAML(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	cfg := New()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}
	return cfg, nil
}

// loadINI reads the ini schema: one [settings] section plus ordered
// [rule:<name>] sections.
func loadINI(path string) (*Config, error) {
	file, err := ini.LoadSources(ini.LoadOptions{}, path)
	if err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	cfg := New()
	if sec, err := file.GetSection("settings"); err == nil {
		loadINISettings(sec, &cfg.Settings)
	}

	// SectionStrings preserves file order, which defines rule precedence.
	for _, name := range file.SectionStrings() {
		if !strings.HasPrefix(name, rulePrefix) {
			continue
		}
		sec := file.Section(name)
		rule, err := loadINIRule(strings.TrimPrefix(name, rulePrefix), sec)
		if err != nil {
			return nil, err
		}
		cfg.Rules = append(cfg.Rules, rule)
	}

	return cfg, nil
}

func loadINISettings(sec *ini.Section, s *Settings) {
	s.DryRun = sec.Key("dry_run").MustBool(s.DryRun)
	s.CreateDirs = sec.Key("create_dirs").MustBool(s.CreateDirs)
	s.RequireConfirmation = sec.Key("require_confirmation").MustBool(s.RequireConfirmation)
	if v := sec.Key("collision").String(); v != "" {
		s.Collision = v
	}
	if v := sec.Key("default_file_access_rights").String(); v != "" {
		s.DefaultFileAccessRights = v
	}
	if v := sec.Key("problematic_chars").String(); v != "" {
		s.ProblematicChars = v
	}
	if v := sec.Key("substitute_char").String(); v != "" {
		s.SubstituteChar = v
	}
	if sec.HasKey("temp_file_suffixes") {
		s.TempFileSuffixes = sec.Key("temp_file_suffixes").Strings(",")
	}
}

func loadINIRule(name string, sec *ini.Section) (types.Rule, error) {
	rule := types.Rule{
		Name:      name,
		Pattern:   sec.Key("pattern").String(),
		MinSize:   sec.Key("min_size").MustInt64(0),
		MaxSize:   sec.Key("max_size").MustInt64(0),
		Empty:     sec.Key("empty").MustBool(false),
		Temp:      sec.Key("temp").MustBool(false),
		Duplicate: sec.Key("duplicate").MustBool(false),
		Recursive: sec.Key("recursive").MustBool(false),
		Action:    types.Action(sec.Key("action").String()),
		Target:    sec.Key("target").String(),
	}

	if v := sec.Key("older_than").String(); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return rule, fmt.Errorf("rule %s: invalid older_than %q: %w", name, v, err)
		}
		rule.OlderThan = types.Duration(d)
	}

	return rule, nil
}

// FileMode parses the configured default access rights as an octal mode.
func (s *Settings) FileMode() (fs.FileMode, error) {
	mode, err := strconv.ParseUint(strings.TrimPrefix(s.DefaultFileAccessRights, "0o"), 8, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid default_file_access_rights %q: %w", s.DefaultFileAccessRights, err)
	}
	return fs.FileMode(mode), nil
}

// Validate checks that the configuration is well formed. Malformed entries
// are a configuration error, not a runtime error.
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("nil config")
	}

	validCollisions := map[string]bool{"rename": true, "skip": true, "overwrite": true}
	if !validCollisions[c.Settings.Collision] {
		return fmt.Errorf("invalid collision setting: %s", c.Settings.Collision)
	}

	if _, err := c.Settings.FileMode(); err != nil {
		return err
	}
	if len(c.Settings.SubstituteChar) != 1 {
		return fmt.Errorf("substitute_char must be a single character, got %q", c.Settings.SubstituteChar)
	}

	for i, rule := range c.Rules {
		name := rule.Name
		if name == "" {
			name = fmt.Sprintf("#%d", i)
		}
		if !rule.Action.Valid() {
			return fmt.Errorf("rule %s: invalid action %q", name, rule.Action)
		}
		if rule.Action == types.ActionMove && rule.Target == "" {
			return fmt.Errorf("rule %s: move action requires a target", name)
		}
		if rule.Pattern == "" && !rule.Empty && !rule.Temp && !rule.Duplicate &&
			rule.OlderThan == 0 && rule.MinSize == 0 && rule.MaxSize == 0 {
			return fmt.Errorf("rule %s: at least one predicate is required", name)
		}
		if rule.Pattern != "" {
			if _, err := glob.Compile(rule.Pattern); err != nil {
				return fmt.Errorf("rule %s: invalid pattern %q: %w", name, rule.Pattern, err)
			}
		}
		if rule.OlderThan < 0 {
			return fmt.Errorf("rule %s: older_than must not be negative", name)
		}
		if rule.MinSize < 0 || rule.MaxSize < 0 {
			return fmt.Errorf("rule %s: sizes must not be negative", name)
		}
		if rule.MaxSize > 0 && rule.MinSize > rule.MaxSize {
			return fmt.Errorf("rule %s: min_size exceeds max_size", name)
		}
	}

	return nil
}

// SaveConfig writes the configuration to the given path in YAML form,
// creating parent directories as needed.
func SaveConfig(cfg *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
