package filter

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/studiowebux/oasedit/internal/editor"
)

const body = `{"items": [
  {"name": "Rex", "status": "active"},
  {"name": "Tom", "status": "sold"},
  {"name": "Kit", "status": "active"}
]}`

func TestApply(t *testing.T) {
	tests := []struct {
		name     string
		filter   string
		query    string
		expected string
		wantErr  bool
	}{
		{"no expressions", "", "", body, false},
		{"filter then query", "items[?status=='active']", "[].name", "[\n  \"Rex\",\n  \"Kit\"\n]", false},
		{"query only", "", "length(items)", "3", false},
		{"missing field", "", "owner", "null", false},
		{"invalid expression", "items[?", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Apply(context.Background(), body, tt.filter, tt.query)
			if tt.wantErr {
				if err == nil {
					t.Error("Expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestApplyRejectsNonJSON(t *testing.T) {
	if _, err := Apply(context.Background(), "plain text", "", "a"); err == nil || !strings.Contains(err.Error(), "invalid JSON") {
		t.Errorf("Expected invalid JSON error, got %v", err)
	}
}

func TestShellQuery(t *testing.T) {
	got, err := Apply(context.Background(), `{"a":1}`, "", "$(cat)")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got != `{"a":1}` {
		t.Errorf("Expected body passed through, got %q", got)
	}
}

func TestSearch(t *testing.T) {
	data := map[string]any{"paths": map[string]any{"/pets": map[string]any{}, "/users": map[string]any{}}}
	got, err := Search(data, "sort(keys(paths))")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if !reflect.DeepEqual(got, []any{"/pets", "/users"}) {
		t.Errorf("Expected sorted path keys, got %#v", got)
	}
	if _, err := Search(data, "keys("); err == nil {
		t.Error("Expected error for invalid expression")
	}
}

func TestEndpointFilters(t *testing.T) {
	endpoints := []editor.Endpoint{
		{Path: "/pets", Method: "get", Tags: []string{"pets"}},
		{Path: "/pets/{id}", Method: "get", Tags: []string{"Pets", "read"}},
		{Path: "/users", Method: "get", Tags: []string{"users"}},
	}

	if got := ByTags(endpoints, []string{"PETS"}); len(got) != 2 {
		t.Errorf("Expected 2 endpoints tagged pets, got %d", len(got))
	}
	if got := ByTags(endpoints, nil); len(got) != 3 {
		t.Errorf("Expected no tag filter to keep all, got %d", len(got))
	}
	if got := ByPattern(endpoints, "/pets/*"); len(got) != 1 || got[0].Path != "/pets/{id}" {
		t.Errorf("Expected /pets/{id}, got %+v", got)
	}
	if got := AllTags(endpoints); !reflect.DeepEqual(got, []string{"Pets", "pets", "read", "users"}) {
		t.Errorf("Unexpected tags %v", got)
	}
}

func TestCompileAndIndent(t *testing.T) {
	if _, err := Compile("items[0].name"); err != nil {
		t.Errorf("Expected valid expression, got %v", err)
	}
	if _, err := Compile("items["); err == nil {
		t.Error("Expected error for invalid expression")
	}

	tests := []struct {
		in   any
		want string
	}{
		{nil, "null"},
		{float64(3), "3"},
		{[]any{"a"}, "[\n  \"a\"\n]"},
	}
	for _, tt := range tests {
		got, err := Indent(tt.in)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if got != tt.want {
			t.Errorf("Expected %q, got %q", tt.want, got)
		}
	}
}
