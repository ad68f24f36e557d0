package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"cleanfiles/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfigFileINI(t *testing.T) {
	path := writeConfig(t, "clean_files.ini", `
[settings]
dry_run = true
collision = skip
default_file_access_rights = 0600
problematic_chars = ?*
substitute_char = -
temp_file_suffixes = .tmp, .bak

[rule:temp]
pattern = *.tmp
action = delete

[rule:old-logs]
pattern = *.log
older_than = 720h
action = move
target = archive
recursive = true
`)

	cfg, err := LoadConfigFile(path)
	require.NoError(t, err)

	assert.True(t, cfg.Settings.DryRun)
	assert.Equal(t, "skip", cfg.Settings.Collision)
	assert.Equal(t, "0600", cfg.Settings.DefaultFileAccessRights)
	assert.Equal(t, "?*", cfg.Settings.ProblematicChars)
	assert.Equal(t, "-", cfg.Settings.SubstituteChar)
	assert.Equal(t, []string{".tmp", ".bak"}, cfg.Settings.TempFileSuffixes)

	require.Len(t, cfg.Rules, 2)
	assert.Equal(t, "temp", cfg.Rules[0].Name)
	assert.Equal(t, types.ActionDelete, cfg.Rules[0].Action)
	assert.Equal(t, "old-logs", cfg.Rules[1].Name)
	assert.Equal(t, types.ActionMove, cfg.Rules[1].Action)
	assert.Equal(t, "archive", cfg.Rules[1].Target)
	assert.Equal(t, 720*time.Hour, cfg.Rules[1].OlderThan.Std())
	assert.True(t, cfg.Rules[1].Recursive)
}

func TestLoadConfigFileINIKeepsRuleOrder(t *testing.T) {
	path := writeConfig(t, "clean_files.ini", `
[rule:c]
pattern = *.c
action = skip

[rule:a]
pattern = *.a
action = skip

[rule:b]
pattern = *.b
action = skip
`)

	cfg, err := LoadConfigFile(path)
	require.NoError(t, err)
	require.Len(t, cfg.Rules, 3)

	names := []string{cfg.Rules[0].Name, cfg.Rules[1].Name, cfg.Rules[2].Name}
	assert.Equal(t, []string{"c", "a", "b"}, names)
}

func TestLoadConfigFileYAML(t *testing.T) {
	path := writeConfig(t, "clean_files.yaml", `
settings:
  collision: overwrite
  require_confirmation: true
rules:
  - name: temp
    pattern: "*.tmp"
    action: delete
  - name: old-logs
    pattern: "*.log"
    older_than: 24h
    action: move
    target: archive
`)

	cfg, err := LoadConfigFile(path)
	require.NoError(t, err)

	assert.Equal(t, "overwrite", cfg.Settings.Collision)
	assert.True(t, cfg.Settings.RequireConfirmation)
	// Unset settings keep their defaults.
	assert.Equal(t, "_", cfg.Settings.SubstituteChar)
	assert.NotEmpty(t, cfg.Settings.TempFileSuffixes)

	require.Len(t, cfg.Rules, 2)
	assert.Equal(t, types.ActionDelete, cfg.Rules[0].Action)
	assert.Equal(t, 24*time.Hour, cfg.Rules[1].OlderThan.Std())
}

func TestLoadConfigFileFormatsAgree(t *testing.T) {
	// A rule-only config in either format must leave every setting at its
	// default; in particular the boolean defaults must survive a YAML load.
	iniPath := writeConfig(t, "clean_files.ini", `
[rule:logs]
pattern = *.log
action = move
target = archive
`)
	yamlPath := writeConfig(t, "clean_files.yaml", `
rules:
  - name: logs
    pattern: "*.log"
    action: move
    target: archive
`)

	fromINI, err := LoadConfigFile(iniPath)
	require.NoError(t, err)
	fromYAML, err := LoadConfigFile(yamlPath)
	require.NoError(t, err)

	assert.Equal(t, fromINI.Settings, fromYAML.Settings)
	assert.True(t, fromYAML.Settings.CreateDirs, "create_dirs default must survive a YAML load")
}

func TestLoadConfigFileMissing(t *testing.T) {
	_, err := LoadConfigFile(filepath.Join(t.TempDir(), "nope.ini"))
	assert.Error(t, err)
}

func TestLoadConfigFileMalformed(t *testing.T) {
	t.Run("bad yaml", func(t *testing.T) {
		path := writeConfig(t, "bad.yaml", "settings: [not a map")
		_, err := LoadConfigFile(path)
		assert.Error(t, err)
	})

	t.Run("bad older_than", func(t *testing.T) {
		path := writeConfig(t, "bad.ini", `
[rule:x]
pattern = *.x
older_than = yesterday
action = delete
`)
		_, err := LoadConfigFile(path)
		assert.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := New()
		cfg.Rules = []types.Rule{{Name: "t", Pattern: "*.tmp", Action: types.ActionDelete}}
		return cfg
	}

	t.Run("valid config passes", func(t *testing.T) {
		assert.NoError(t, valid().Validate())
	})

	t.Run("invalid collision", func(t *testing.T) {
		cfg := valid()
		cfg.Settings.Collision = "explode"
		assert.Error(t, cfg.Validate())
	})

	t.Run("invalid access rights", func(t *testing.T) {
		cfg := valid()
		cfg.Settings.DefaultFileAccessRights = "rw-r--r--"
		assert.Error(t, cfg.Validate())
	})

	t.Run("substitute char must be single", func(t *testing.T) {
		cfg := valid()
		cfg.Settings.SubstituteChar = "__"
		assert.Error(t, cfg.Validate())
	})

	t.Run("invalid action", func(t *testing.T) {
		cfg := valid()
		cfg.Rules[0].Action = "shred"
		assert.Error(t, cfg.Validate())
	})

	t.Run("move requires target", func(t *testing.T) {
		cfg := valid()
		cfg.Rules[0].Action = types.ActionMove
		cfg.Rules[0].Target = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("invalid pattern", func(t *testing.T) {
		cfg := valid()
		cfg.Rules[0].Pattern = "["
		assert.Error(t, cfg.Validate())
	})

	t.Run("rule needs a predicate", func(t *testing.T) {
		cfg := valid()
		cfg.Rules[0] = types.Rule{Name: "empty", Action: types.ActionDelete}
		assert.Error(t, cfg.Validate())
	})

	t.Run("min size above max size", func(t *testing.T) {
		cfg := valid()
		cfg.Rules[0].MinSize = 10
		cfg.Rules[0].MaxSize = 5
		assert.Error(t, cfg.Validate())
	})
}

func TestFileMode(t *testing.T) {
	cfg := New()
	mode, err := cfg.Settings.FileMode()
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0644), mode)

	cfg.Settings.DefaultFileAccessRights = "0755"
	mode, err = cfg.Settings.FileMode()
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0755), mode)
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saved", "config.yaml")

	cfg := New()
	cfg.Settings.Collision = "skip"
	cfg.Rules = []types.Rule{{Name: "t", Pattern: "*.tmp", Action: types.ActionDelete}}
	require.NoError(t, SaveConfig(cfg, path))

	loaded, err := LoadConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, "skip", loaded.Settings.Collision)
	require.Len(t, loaded.Rules, 1)
	assert.Equal(t, "*.tmp", loaded.Rules[0].Pattern)
}
