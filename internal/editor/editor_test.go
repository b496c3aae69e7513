package editor

import (
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/studiowebux/oasedit/internal/document"
	"github.com/studiowebux/oasedit/internal/format"
	"github.com/studiowebux/oasedit/internal/store"
)

const fixture = `{
  "openapi": "3.0.3",
  "info": {"title": "Pets", "version": "1.0.0"},
  "servers": [{"url": "https://api.example.com/v1", "description": "production"}],
  "paths": {
    "/pets": {
      "get": {"summary": "List pets", "tags": ["pets"], "responses": {"200": {"description": "ok"}}},
      "post": {"summary": "Create pet", "tags": ["pets"], "responses": {"201": {"description": "created"}}}
    },
    "/users": {
      "get": {"summary": "List users", "responses": {"200": {"description": "ok"}}}
    }
  },
  "components": {
    "schemas": {
      "Pet": {"type": "object", "description": "A pet"},
      "users/User": {"type": "object", "description": "An account"},
      "users/Role": {"type": "string"},
      "billing/Invoice": {"type": "object"}
    },
    "securitySchemes": {
      "bearerAuth": {"type": "http", "scheme": "bearer", "description": "JWT"}
    }
  },
  "tags": [{"name": "pets", "description": "Everything about pets"}]
}`

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s := store.New(nil, zerolog.Nop())
	if _, err := s.LoadFromText([]byte(fixture), format.Unrecognized); err != nil {
		t.Fatalf("failed to load fixture: %v", err)
	}
	return s
}

func TestEditorsRequireDocument(t *testing.T) {
	s := store.New(nil, zerolog.Nop())

	checks := map[string]error{}
	_, checks["info"] = NewInfoEditor(s).Info()
	_, checks["servers"] = NewServerEditor(s).List("")
	_, checks["paths"] = NewPathEditor(s).List("", "")
	_, checks["components"] = NewComponentEditor(s).List("schemas", "")
	_, checks["tags"] = NewTagEditor(s).List("")
	_, checks["security"] = NewSecurityEditor(s).List("")
	checks["add server"] = NewServerEditor(s).Add(document.Server{URL: "https://x"})

	for name, err := range checks {
		if !errors.Is(err, ErrNoDocument) {
			t.Errorf("%s: expected ErrNoDocument, got %v", name, err)
		}
	}
}

func TestParseJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"strict", `{"type": "object"}`, false},
		{"comments", "{\n  // a comment\n  \"type\": \"object\"\n}", false},
		{"trailing comma", `{"type": "object",}`, false},
		{"unclosed", `{"type": "object"`, true},
		{"empty", "   ", true},
		{"bare word", `object`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseJSON([]byte(tt.input))
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidJSON) {
					t.Errorf("Expected ErrInvalidJSON, got %v", err)
				}
				return
			}
			if err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
		})
	}
}

func TestNotFoundSuggestions(t *testing.T) {
	s := newTestStore(t)
	err := NewPathEditor(s).RemoveOperation("/pet", "get")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("Expected *NotFoundError, got %T", err)
	}
	if len(nf.Suggestions) == 0 || nf.Suggestions[0] != "/pets" {
		t.Errorf("Expected /pets suggestion, got %v", nf.Suggestions)
	}
	if !strings.Contains(err.Error(), "did you mean") {
		t.Errorf("Expected suggestion in message, got %q", err.Error())
	}
}

func TestSuggest(t *testing.T) {
	if got := Suggest("", []string{"a"}); got != nil {
		t.Errorf("Expected no suggestions for empty input, got %v", got)
	}
	got := Suggest("usr", []string{"/users", "/pets", "/orders", "/user-roles", "/uploads"})
	if len(got) > maxSuggestions {
		t.Errorf("Expected at most %d suggestions, got %v", maxSuggestions, got)
	}
	if len(got) == 0 {
		t.Error("Expected at least one suggestion")
	}
}
