// Package prefs handles checklist user preferences persistence.
// Preferences are stored in ~/.config/checklist/prefs.toml.
package prefs

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// Filter limits which items the list shows.
type Filter string

const (
	FilterAll     Filter = "all"
	FilterPending Filter = "pending"
	FilterDone    Filter = "done"
)

// Next cycles All → Pending → Done → All.
func (f Filter) Next() Filter {
	switch f {
	case FilterAll:
		return FilterPending
	case FilterPending:
		return FilterDone
	default:
		return FilterAll
	}
}

// Valid reports whether f is a known filter.
func (f Filter) Valid() bool {
	switch f {
	case FilterAll, FilterPending, FilterDone:
		return true
	}
	return false
}

// Prefs holds user preferences for checklist.
type Prefs struct {
	Theme  string `toml:"theme"`
	Filter Filter `toml:"filter"`
}

const (
	defaultPrefsPath = "~/.config/checklist/prefs.toml"
	defaultTheme     = "Nightfox"
	defaultFilter    = FilterAll
)

// Default returns the preferences used when nothing is stored.
func Default() Prefs {
	return Prefs{Theme: defaultTheme, Filter: defaultFilter}
}

// DefaultPath returns the default preferences file path.
func DefaultPath() string {
	return defaultPrefsPath
}

// Load reads preferences from the given path, falling back to defaults on any
// read or parse problem.
func Load(path string) Prefs {
	resolved, err := resolvePath(path)
	if err != nil {
		return Default()
	}

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default()
		}
		return Default() // Graceful degradation
	}
	defer func() { _ = file.Close() }()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Default() // Graceful degradation
	}

	prefs := Default()
	if err := toml.Unmarshal(bytes, &prefs); err != nil {
		return Default() // Graceful degradation
	}

	if strings.TrimSpace(prefs.Theme) == "" {
		prefs.Theme = defaultTheme
	}
	prefs.Filter = Filter(strings.ToLower(strings.TrimSpace(string(prefs.Filter))))
	if !prefs.Filter.Valid() {
		prefs.Filter = defaultFilter
	}

	return prefs
}

// Save writes preferences to the given path, creating directories as needed.
func Save(path string, p Prefs) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	dir := filepath.Dir(resolved)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}

	bytes, err := toml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal prefs: %w", err)
	}

	if err := os.WriteFile(resolved, bytes, 0o644); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}

	return nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultPrefsPath)
	}
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
