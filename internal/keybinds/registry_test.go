package keybinds

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRegistry_Match(t *testing.T) {
	r := NewDefaultRegistry()

	tests := []struct {
		name    string
		context Context
		key     string
		want    Action
		found   bool
	}{
		{"context binding", ContextBrowse, "j", ActionNavigateDown, true},
		{"global fallback", ContextForm, "ctrl+c", ActionQuitForce, true},
		{"same key differs per context", ContextResponse, "q", ActionBack, true},
		{"browse quits", ContextBrowse, "q", ActionQuit, true},
		{"shared is not global", ContextServers, "x", "", false},
		{"unbound key", ContextTags, "z", "", false},
		{"text input keeps letters", ContextSearch, "j", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := r.Match(tt.context, tt.key)
			if ok != tt.found {
				t.Errorf("Expected found=%v, got %v", tt.found, ok)
			}
			if got != tt.want {
				t.Errorf("Expected action %q, got %q", tt.want, got)
			}
		})
	}
}

func TestRegistry_GetBindingString(t *testing.T) {
	r := NewDefaultRegistry()

	if got := r.GetBindingString(ContextShared, ActionSend); got != "ctrl+s, x" {
		t.Errorf("Expected 'ctrl+s, x', got %q", got)
	}
	if got := r.GetBindingString(ContextBrowse, ActionSend); got != "unbound" {
		t.Errorf("Expected 'unbound', got %q", got)
	}
}

func TestRegistry_CloneIsIndependent(t *testing.T) {
	r := NewDefaultRegistry()
	clone := r.Clone()
	clone.Register(ContextBrowse, "n", ActionNavigateDown)
	clone.Unregister(ContextBrowse, "j")

	if _, ok := r.Match(ContextBrowse, "n"); ok {
		t.Error("Expected original registry to be unchanged")
	}
	if _, ok := r.Match(ContextBrowse, "j"); !ok {
		t.Error("Expected original binding to survive")
	}
	if len(clone.ListBindings(ContextBrowse)) != len(r.ListBindings(ContextBrowse)) {
		t.Errorf("Expected same binding count, got %d and %d",
			len(clone.ListBindings(ContextBrowse)), len(r.ListBindings(ContextBrowse)))
	}
}

func TestDefaults_UseKnownContexts(t *testing.T) {
	r := NewDefaultRegistry()
	for context := range r.bindings {
		if !IsKnownContext(context) {
			t.Errorf("Expected known context, got %q", context)
		}
	}
}

func TestApplyConfig(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr string
		check   func(t *testing.T, r *Registry)
	}{
		{
			name:   "override and unbind",
			config: Config{"browse": {"n": "navigate_down", "j": "none"}},
			check: func(t *testing.T, r *Registry) {
				if a, _ := r.Match(ContextBrowse, "n"); a != ActionNavigateDown {
					t.Errorf("Expected n to navigate down, got %q", a)
				}
				if _, ok := r.Match(ContextBrowse, "j"); ok {
					t.Error("Expected j to be unbound")
				}
			},
		},
		{
			name:    "unknown context",
			config:  Config{"sidebar": {"n": "navigate_down"}},
			wantErr: "unknown context 'sidebar'",
		},
		{
			name:    "unknown action",
			config:  Config{"browse": {"n": "fly"}},
			wantErr: "unknown action 'fly'",
		},
		{
			name:    "empty key",
			config:  Config{"browse": {"": "quit"}},
			wantErr: "empty key",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewDefaultRegistry()
			err := ApplyConfig(r, tt.config)
			if tt.wantErr != "" {
				if !errors.Is(err, ErrInvalidConfig) {
					t.Fatalf("Expected ErrInvalidConfig, got %v", err)
				}
				if !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("Expected error containing %q, got %q", tt.wantErr, err.Error())
				}
				return
			}
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			tt.check(t, r)
		})
	}
}

func TestApplyConfig_InvalidLeavesRegistryUntouched(t *testing.T) {
	r := NewDefaultRegistry()
	err := ApplyConfig(r, Config{
		"browse":  {"n": "navigate_down"},
		"unknown": {"x": "send"},
	})
	if err == nil {
		t.Fatal("Expected an error")
	}
	if _, ok := r.Match(ContextBrowse, "n"); ok {
		t.Error("Expected no binding to be applied")
	}
}

func TestLoadOrDefault(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		r, err := LoadOrDefault(filepath.Join(t.TempDir(), ConfigFile))
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if a, _ := r.Match(ContextBrowse, "j"); a != ActionNavigateDown {
			t.Errorf("Expected default binding, got %q", a)
		}
	})

	t.Run("user file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ConfigFile)
		if err := os.WriteFile(path, []byte(`{"shared": {"ctrl+r": "send"}}`), 0644); err != nil {
			t.Fatal(err)
		}
		r, err := LoadOrDefault(path)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if a, _ := r.Match(ContextShared, "ctrl+r"); a != ActionSend {
			t.Errorf("Expected ctrl+r to send, got %q", a)
		}
	})

	t.Run("malformed file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ConfigFile)
		if err := os.WriteFile(path, []byte(`{"shared": [`), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadOrDefault(path); err == nil {
			t.Error("Expected an error for malformed JSON")
		}
	})
}
