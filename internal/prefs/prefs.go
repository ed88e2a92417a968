// Package prefs handles restack user preferences persistence.
// Preferences are stored in ~/.config/restack/prefs.toml.
package prefs

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/restackd/restack/internal/logging"
)

// Prefs holds user preferences for restack.
type Prefs struct {
	Theme     string         `toml:"theme"`
	PerPage   int            `toml:"per_page"`
	Selection *SelectionPref `toml:"selection,omitempty"`
}

// SelectionPref is the remembered answer to the filter-change selection
// prompt. It is only present when the user ticked "remember".
type SelectionPref struct {
	Action   string `toml:"action"`
	Remember bool   `toml:"remember"`
}

const (
	defaultPrefsPath = "~/.config/restack/prefs.toml"
	defaultTheme     = "Nightfox"
	defaultPerPage   = 25
)

// DefaultPath returns the default preferences file path.
func DefaultPath() string {
	return defaultPrefsPath
}

// Store reads and writes the preferences file. Every method degrades
// gracefully: load failures yield defaults, save failures are logged and the
// feature falls back to session-only behavior.
type Store struct {
	path string
}

// NewStore builds a Store; an empty path selects the default location.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load reads preferences, falling back to defaults if missing or unreadable.
func (s *Store) Load() Prefs {
	defaults := Prefs{Theme: defaultTheme, PerPage: defaultPerPage}

	resolved, err := resolvePath(s.path)
	if err != nil {
		return defaults
	}

	file, err := os.Open(resolved)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logging.Warn("open prefs failed", "path", resolved, "error", err)
		}
		return defaults
	}
	defer func() { _ = file.Close() }()

	bytes, err := io.ReadAll(file)
	if err != nil {
		logging.Warn("read prefs failed", "path", resolved, "error", err)
		return defaults
	}

	prefs := defaults
	if err := toml.Unmarshal(bytes, &prefs); err != nil {
		logging.Warn("parse prefs failed", "path", resolved, "error", err)
		return defaults
	}

	if strings.TrimSpace(prefs.Theme) == "" {
		prefs.Theme = defaultTheme
	}
	if prefs.PerPage < 0 {
		prefs.PerPage = defaultPerPage
	}
	return prefs
}

// Save writes preferences, creating directories as needed.
func (s *Store) Save(p Prefs) error {
	resolved, err := resolvePath(s.path)
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

// SetTheme persists the active theme name.
func (s *Store) SetTheme(name string) {
	s.update(func(p *Prefs) { p.Theme = name })
}

// SetPerPage persists the page size (0 means show all).
func (s *Store) SetPerPage(n int) {
	s.update(func(p *Prefs) { p.PerPage = n })
}

// LoadSelection implements selection.PreferenceStore.
func (s *Store) LoadSelection() (action string, remember bool, ok bool) {
	p := s.Load()
	if p.Selection == nil {
		return "", false, false
	}
	return p.Selection.Action, p.Selection.Remember, true
}

// SaveSelection implements selection.PreferenceStore.
func (s *Store) SaveSelection(action string, remember bool) {
	s.update(func(p *Prefs) {
		p.Selection = &SelectionPref{Action: action, Remember: remember}
	})
}

// ClearSelection implements selection.PreferenceStore.
func (s *Store) ClearSelection() {
	s.update(func(p *Prefs) { p.Selection = nil })
}

func (s *Store) update(mutate func(*Prefs)) {
	p := s.Load()
	mutate(&p)
	if err := s.Save(p); err != nil {
		logging.Warn("save prefs failed", "error", err)
	}
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
