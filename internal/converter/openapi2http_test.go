package converter

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/studiowebux/oasedit/internal/document"
	"github.com/studiowebux/oasedit/internal/runner"
)

func TestOperationHTTP(t *testing.T) {
	doc := loadPets(t)

	got, err := OperationHTTP(doc, "/pets/{petId}", "get", "")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	expected := []string{
		"@baseUrl = https://api.example.com/v1",
		"### Get pet",
		"# @tag pets",
		"# @param petId {string} required - ",
		"# @param verbose {boolean}  - ",
		"# @response 200 - ok",
		"# @response-field id {integer} required",
		"# @response-example id 7",
		"# @response-field owner.email {string} optional",
		"# @response-field tags[].label {string} optional",
		"# @response 404 - missing",
		"GET {{baseUrl}}/pets/{{petId}}?verbose={{verbose}}",
		"X-Trace: {{X-Trace}}",
	}
	for _, line := range expected {
		if !strings.Contains(got, line) {
			t.Errorf("Expected output to contain %q, got:\n%s", line, got)
		}
	}
	if strings.Contains(got, "\n{") {
		t.Error("Expected no body for GET")
	}
}

func TestOperationHTTPBody(t *testing.T) {
	doc := loadPets(t)

	got, err := OperationHTTP(doc, "/pets/{petId}", "PUT", "https://staging.example.com")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(got, "@baseUrl = https://staging.example.com") {
		t.Errorf("Expected server override, got:\n%s", got)
	}
	for _, field := range []string{`"id": 7`, `"name": "string"`, `"label": "string"`, `"email": "string"`} {
		if !strings.Contains(got, field) {
			t.Errorf("Expected generated body to contain %s, got:\n%s", field, got)
		}
	}
}

func TestOperationHTTPNotFound(t *testing.T) {
	_, err := OperationHTTP(loadPets(t), "/nope", "get", "")
	if !errors.Is(err, runner.ErrOperationNotFound) {
		t.Errorf("Expected ErrOperationNotFound, got %v", err)
	}
}

func TestWriteHTTPFiles(t *testing.T) {
	doc := loadPets(t)

	tests := []struct {
		organizeBy string
		expected   []string
	}{
		{OrganizeByTags, []string{"pets/get_pets_petId.http", "pets/put_pets_petId.http", "untagged/get_health.http"}},
		{OrganizeByPaths, []string{"pets/get_petId.http", "pets/put_petId.http", "get_health.http"}},
		{OrganizeFlat, []string{"get_pets_petId.http", "put_pets_petId.http", "get_health.http"}},
	}

	for _, tt := range tests {
		t.Run(tt.organizeBy, func(t *testing.T) {
			dir := t.TempDir()
			count, err := WriteHTTPFiles(doc, HTTPOptions{OutputDir: dir, OrganizeBy: tt.organizeBy})
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if count != len(tt.expected) {
				t.Errorf("Expected %d files, got %d", len(tt.expected), count)
			}
			for _, rel := range tt.expected {
				if _, err := os.Stat(filepath.Join(dir, rel)); err != nil {
					t.Errorf("Expected file %s: %v", rel, err)
				}
			}
		})
	}
}

func TestGenerateExampleFromSchema(t *testing.T) {
	doc := &document.Document{Components: &document.Components{Schemas: map[string]document.Schema{
		"Node": {"type": "object", "properties": map[string]any{
			"child": map[string]any{"$ref": "#/components/schemas/Node"},
		}},
		"Status": {"type": "string", "enum": []any{"active", "disabled"}},
	}}}

	tests := []struct {
		name     string
		schema   document.Schema
		expected any
	}{
		{"string", document.Schema{"type": "string"}, "string"},
		{"enum via ref", document.Schema{"$ref": "#/components/schemas/Status"}, "active"},
		{"example wins", document.Schema{"type": "integer", "example": 42}, 42},
		{"array", document.Schema{"type": "array", "items": map[string]any{"type": "boolean"}}, []any{false}},
		{"nullable", document.Schema{"anyOf": []any{map[string]any{"type": "null"}, map[string]any{"type": "number"}}}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := generateExampleFromSchema(doc, tt.schema, 0); !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Expected %#v, got %#v", tt.expected, got)
			}
		})
	}

	t.Run("cyclic reference terminates", func(t *testing.T) {
		got := generateExampleFromSchema(doc, document.Schema{"$ref": "#/components/schemas/Node"}, 0)
		if _, ok := got.(map[string]any); !ok {
			t.Errorf("Expected an object, got %#v", got)
		}
	})
}

func TestSanitizeFilename(t *testing.T) {
	tests := map[string]string{
		"/":                  "root",
		"/users/{id}":        "users_id",
		"/a b/c:d":           "a_b_c_d",
		"/files/{path}/meta": "files_path_meta",
	}
	for in, expected := range tests {
		if got := sanitizeFilename(in); got != expected {
			t.Errorf("sanitizeFilename(%q): expected %q, got %q", in, expected, got)
		}
	}
}
