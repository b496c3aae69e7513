package store

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/studiowebux/oasedit/internal/storage"
)

// Theme is the UI colour preference
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// ParseTheme validates a theme name
func ParseTheme(s string) (Theme, error) {
	switch Theme(s) {
	case ThemeLight, ThemeDark:
		return Theme(s), nil
	}
	return "", fmt.Errorf("invalid theme %q: expected light or dark", s)
}

// ThemeStore persists the theme preference under its own key
type ThemeStore struct {
	mu      sync.RWMutex
	theme   Theme
	persist Persister
	log     zerolog.Logger
}

// NewThemeStore loads the saved theme, defaulting to fallback
func NewThemeStore(persist Persister, fallback Theme, log zerolog.Logger) *ThemeStore {
	ts := &ThemeStore{theme: fallback, persist: persist, log: log}
	if ts.theme == "" {
		ts.theme = ThemeLight
	}
	if persist == nil {
		return ts
	}
	data, ok, err := persist.Load(storage.ThemeKey)
	if err != nil {
		log.Warn().Err(err).Msg("failed to load theme")
		return ts
	}
	if ok {
		if theme, err := ParseTheme(string(data)); err == nil {
			ts.theme = theme
		}
	}
	return ts
}

func (t *ThemeStore) Get() Theme {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.theme
}

func (t *ThemeStore) Set(theme Theme) error {
	if _, err := ParseTheme(string(theme)); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.theme = theme
	if t.persist != nil {
		if err := t.persist.Save(storage.ThemeKey, []byte(theme)); err != nil {
			t.log.Warn().Err(err).Msg("failed to persist theme")
		}
	}
	return nil
}

// Toggle switches between light and dark and returns the new theme
func (t *ThemeStore) Toggle() Theme {
	next := ThemeDark
	if t.Get() == ThemeDark {
		next = ThemeLight
	}
	_ = t.Set(next)
	return next
}
