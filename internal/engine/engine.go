// Package engine implements the rule engine: it walks target directories,
// evaluates each file against the ordered rule list, and applies the first
// matching rule's action.
package engine

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cleanfiles/internal/config"
	"cleanfiles/internal/confirm"
	"cleanfiles/internal/log"
	"cleanfiles/internal/scan"
	"cleanfiles/pkg/types"

	"github.com/gobwas/glob"
)

// compiledRule pairs a configured rule with its compiled glob matcher.
type compiledRule struct {
	rule    types.Rule
	matcher glob.Glob
}

// Engine evaluates files against the configured rules and applies actions.
// Rules are loaded once at construction and stay immutable for the run.
type Engine struct {
	cfg       *config.Config
	rules     []compiledRule
	confirmer confirm.Provider
	fileMode  fs.FileMode
	dryRun    bool
	recursive bool

	// seen maps content hashes to the first path observed with that
	// content, for the duplicate predicate. It spans all directories of a
	// run so duplicates across targets are recognized.
	seen       map[string]string
	hashNeeded bool
}

// NewWithConfig creates a rule engine from a validated configuration.
func NewWithConfig(cfg *config.Config) (*Engine, error) {
	e := &Engine{
		cfg:       cfg,
		confirmer: confirm.Auto(true),
		dryRun:    cfg.Settings.DryRun,
		seen:      make(map[string]string),
	}

	mode, err := cfg.Settings.FileMode()
	if err != nil {
		return nil, err
	}
	e.fileMode = mode

	for _, rule := range cfg.Rules {
		cr := compiledRule{rule: rule}
		if rule.Pattern != "" {
			matcher, err := glob.Compile(rule.Pattern)
			if err != nil {
				return nil, fmt.Errorf("rule %s: invalid pattern %q: %w", rule.Name, rule.Pattern, err)
			}
			cr.matcher = matcher
		}
		if rule.Duplicate {
			e.hashNeeded = true
		}
		if rule.Recursive {
			e.recursive = true
		}
		e.rules = append(e.rules, cr)
	}

	return e, nil
}

// SetDryRun sets whether actions should be performed or just reported.
func (e *Engine) SetDryRun(dryRun bool) {
	e.dryRun = dryRun
}

// IsDryRun returns whether the engine is in dry run mode.
func (e *Engine) IsDryRun() bool {
	return e.dryRun
}

// SetConfirmProvider sets the provider consulted before destructive actions
// when require_confirmation is enabled.
func (e *Engine) SetConfirmProvider(p confirm.Provider) {
	if p != nil {
		e.confirmer = p
	}
}

// Rules returns the configured rule list in evaluation order.
func (e *Engine) Rules() []types.Rule {
	rules := make([]types.Rule, len(e.rules))
	for i, cr := range e.rules {
		rules[i] = cr.rule
	}
	return rules
}

// CleanAll processes each target directory in order. A directory that cannot
// be read is reported and skipped; the remaining directories are still
// processed. The returned errors describe the skipped directories.
func (e *Engine) CleanAll(dirs []string) ([]types.CleanResult, []error) {
	var (
		results []types.CleanResult
		errs    []error
	)
	for _, dir := range dirs {
		dirResults, err := e.CleanDirectory(dir)
		if err != nil {
			log.Error("skipping directory %s: %v", dir, err)
			errs = append(errs, fmt.Errorf("directory %s: %w", dir, err))
			continue
		}
		results = append(results, dirResults...)
	}
	return results, errs
}

// CleanDirectory evaluates every file of the directory against the rules in
// order and applies the first matching rule's action. Files that match no
// rule are left untouched. Per-file failures are recorded in the result and
// do not stop the run.
func (e *Engine) CleanDirectory(dir string) ([]types.CleanResult, error) {
	entries, err := scan.Files(dir, e.recursive)
	if err != nil {
		return nil, err
	}

	log.Debug("evaluating %d files in %s", len(entries), dir)

	now := time.Now()
	results := make([]types.CleanResult, 0, len(entries))
	for i := range entries {
		results = append(results, e.evaluate(&entries[i], dir, now))
	}
	return results, nil
}

// CleanFile evaluates a single file against the rules, treating its parent
// directory as the target directory. Used by watch mode.
func (e *Engine) CleanFile(path string) (types.CleanResult, error) {
	info, err := os.Stat(path)
	if err != nil {
		return types.CleanResult{SourcePath: path}, fmt.Errorf("error accessing file: %w", err)
	}
	if info.IsDir() {
		return types.CleanResult{SourcePath: path}, fmt.Errorf("path is a directory: %s", path)
	}

	entry := types.FileEntry{
		Path:    path,
		Size:    info.Size(),
		ModTime: info.ModTime(),
		Mode:    info.Mode(),
	}
	return e.evaluate(&entry, filepath.Dir(path), time.Now()), nil
}

// evaluate finds the first matching rule for the entry and applies its
// action. At most one action is applied per file per run.
func (e *Engine) evaluate(entry *types.FileEntry, dir string, now time.Time) types.CleanResult {
	result := types.CleanResult{SourcePath: entry.Path}

	var hash string
	if e.hashNeeded {
		h, err := scan.Hash(entry.Path)
		if err != nil {
			log.Warn("cannot hash %s: %v", entry.Path, err)
		} else {
			hash = h
		}
	}

	for _, cr := range e.rules {
		if !e.matches(&cr, entry, dir, now, hash) {
			continue
		}
		result.RuleName = cr.rule.Name
		result.Action = cr.rule.Action
		e.apply(&cr.rule, entry, dir, &result)
		break
	}

	// Register content after evaluation so the first occurrence is kept and
	// later identical files are classified as duplicates.
	if hash != "" {
		if _, ok := e.seen[hash]; !ok {
			e.seen[hash] = entry.Path
		}
	}

	if result.Action == "" {
		log.Debug("no rule matched for %s", entry.Path)
	}
	return result
}

// matches reports whether every set predicate of the rule holds for the entry.
func (e *Engine) matches(cr *compiledRule, entry *types.FileEntry, dir string, now time.Time, hash string) bool {
	rule := &cr.rule

	// Non-recursive rules only apply to the directory's own entries.
	if !rule.Recursive && filepath.Dir(entry.Path) != filepath.Clean(dir) {
		return false
	}
	if cr.matcher != nil && !cr.matcher.Match(entry.Name()) {
		return false
	}
	if rule.OlderThan > 0 && entry.Age(now) < rule.OlderThan.Std() {
		return false
	}
	if rule.MinSize > 0 && entry.Size < rule.MinSize {
		return false
	}
	if rule.MaxSize > 0 && entry.Size > rule.MaxSize {
		return false
	}
	if rule.Empty && !entry.IsEmpty() {
		return false
	}
	if rule.Temp && !entry.HasSuffix(e.cfg.Settings.TempFileSuffixes) {
		return false
	}
	if rule.Duplicate {
		if hash == "" {
			return false
		}
		first, ok := e.seen[hash]
		if !ok || first == entry.Path {
			return false
		}
	}
	return true
}

// apply performs the rule's action on the entry, honoring dry run and the
// confirmation provider. Failures are recorded on the result, not returned.
func (e *Engine) apply(rule *types.Rule, entry *types.FileEntry, dir string, result *types.CleanResult) {
	switch rule.Action {
	case types.ActionSkip:
		log.Debug("rule %s: leaving %s alone", rule.Name, entry.Path)
		return

	case types.ActionDelete:
		if e.dryRun {
			log.Info("Would delete %s", entry.Path)
			return
		}
		if !e.confirmAction(fmt.Sprintf("Delete %s?", entry.Path)) {
			return
		}
		if err := os.Remove(entry.Path); err != nil {
			result.Error = fmt.Errorf("failed to delete file: %w", err)
			log.Error("failed to delete %s: %v", entry.Path, err)
			return
		}
		result.Applied = true
		log.Info("Deleted %s", entry.Path)

	case types.ActionMove:
		targetDir := rule.Target
		if !filepath.IsAbs(targetDir) {
			targetDir = filepath.Join(dir, targetDir)
		}
		dest := filepath.Join(targetDir, entry.Name())
		result.DestinationPath = dest
		if e.dryRun {
			log.Info("Would move %s -> %s", entry.Path, dest)
			return
		}
		if !e.confirmAction(fmt.Sprintf("Move %s -> %s?", entry.Path, dest)) {
			return
		}
		finalDest, moved, err := e.moveFile(entry.Path, dest)
		if err != nil {
			result.Error = fmt.Errorf("failed to move file: %w", err)
			log.Error("failed to move %s: %v", entry.Path, err)
			return
		}
		result.DestinationPath = finalDest
		result.Applied = moved

	case types.ActionRename:
		newName := e.sanitizeName(entry.Name())
		if newName == entry.Name() {
			log.Debug("rule %s: %s needs no rename", rule.Name, entry.Path)
			return
		}
		dest := filepath.Join(filepath.Dir(entry.Path), newName)
		result.DestinationPath = dest
		if e.dryRun {
			log.Info("Would rename %s -> %s", entry.Path, dest)
			return
		}
		if !e.confirmAction(fmt.Sprintf("Rename %s -> %s?", entry.Path, dest)) {
			return
		}
		finalDest, moved, err := e.moveFile(entry.Path, dest)
		if err != nil {
			result.Error = fmt.Errorf("failed to rename file: %w", err)
			log.Error("failed to rename %s: %v", entry.Path, err)
			return
		}
		result.DestinationPath = finalDest
		result.Applied = moved

	case types.ActionChmod:
		if entry.Mode.Perm() == e.fileMode.Perm() {
			log.Debug("rule %s: %s already has mode %04o", rule.Name, entry.Path, e.fileMode)
			return
		}
		if e.dryRun {
			log.Info("Would chmod %s to %04o", entry.Path, e.fileMode)
			return
		}
		if !e.confirmAction(fmt.Sprintf("Change mode of %s to %04o?", entry.Path, e.fileMode)) {
			return
		}
		if err := os.Chmod(entry.Path, e.fileMode); err != nil {
			result.Error = fmt.Errorf("failed to chmod file: %w", err)
			log.Error("failed to chmod %s: %v", entry.Path, err)
			return
		}
		result.Applied = true
		log.Info("Changed mode of %s to %04o", entry.Path, e.fileMode)

	default:
		result.Error = fmt.Errorf("unknown action: %s", rule.Action)
	}
}

// confirmAction consults the confirmation provider when required. A declined
// or failed confirmation skips the action.
func (e *Engine) confirmAction(prompt string) bool {
	if !e.cfg.Settings.RequireConfirmation {
		return true
	}
	ok, err := e.confirmer.Confirm(prompt)
	if err != nil {
		log.Error("confirmation failed: %v", err)
		return false
	}
	if !ok {
		log.Info("Skipped by user: %s", prompt)
	}
	return ok
}

// moveFile moves a file from source to destination, handling collisions
// based on the configured strategy. It returns the final destination and
// whether the file was actually moved.
func (e *Engine) moveFile(src, dest string) (string, bool, error) {
	cleanSrc := filepath.Clean(src)
	cleanDest := filepath.Clean(dest)

	// Moving to the same place is not an error, just do nothing.
	if cleanSrc == cleanDest {
		log.Debug("source and destination are the same, skipping: %s", src)
		return cleanDest, false, nil
	}

	srcInfo, err := os.Stat(cleanSrc)
	if err != nil {
		return "", false, fmt.Errorf("source file error: %w", err)
	}
	if srcInfo.IsDir() {
		return "", false, fmt.Errorf("cannot move directory as file: %s", src)
	}

	destDir := filepath.Dir(cleanDest)
	if e.cfg.Settings.CreateDirs {
		if err := os.MkdirAll(destDir, 0755); err != nil {
			return "", false, fmt.Errorf("failed to create destination directory: %w", err)
		}
	}

	finalDest, err := e.handleCollision(cleanSrc, cleanDest)
	if err != nil {
		return "", false, err
	}
	// Empty destination signals the move was skipped.
	if finalDest == "" {
		return cleanDest, false, nil
	}

	log.Debug("moving %s to %s", cleanSrc, finalDest)
	if err := os.Rename(cleanSrc, finalDest); err != nil {
		return "", false, fmt.Errorf("failed to move file: %w", err)
	}

	log.Info("Moved %s -> %s", src, finalDest)
	return finalDest, true, nil
}

// handleCollision implements the collision strategies. It returns the final
// destination path, or an empty string when the move should be skipped.
func (e *Engine) handleCollision(src, dest string) (string, error) {
	_, err := os.Stat(dest)
	if os.IsNotExist(err) {
		return dest, nil
	}
	if err != nil {
		return "", fmt.Errorf("error checking destination %s: %w", dest, err)
	}

	log.Warn("destination %s already exists, applying strategy %s", dest, e.cfg.Settings.Collision)

	switch e.cfg.Settings.Collision {
	case "skip":
		log.Info("Skipping move for %s due to collision", src)
		return "", nil

	case "overwrite":
		log.Warn("overwriting %s", dest)
		return dest, nil

	case "rename":
		return findUniqueDestName(dest)

	default:
		return "", fmt.Errorf("unknown collision strategy: %s", e.cfg.Settings.Collision)
	}
}

// findUniqueDestName finds a free filename by appending a counter to the
// base name.
func findUniqueDestName(originalPath string) (string, error) {
	ext := filepath.Ext(originalPath)
	base := strings.TrimSuffix(originalPath, ext)

	for counter := 1; counter <= 1000; counter++ {
		newName := fmt.Sprintf("%s_(%d)%s", base, counter, ext)
		if _, err := os.Stat(newName); os.IsNotExist(err) {
			return newName, nil
		}
	}

	return "", fmt.Errorf("failed to find unique name for %s after 1000 attempts", originalPath)
}

// sanitizeName replaces the configured problematic characters in the file
// name with the substitute character.
func (e *Engine) sanitizeName(name string) string {
	sub := rune('_')
	if e.cfg.Settings.SubstituteChar != "" {
		sub = []rune(e.cfg.Settings.SubstituteChar)[0]
	}

	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(e.cfg.Settings.ProblematicChars, r) {
			return sub
		}
		return r
	}, name)
}
