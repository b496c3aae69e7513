package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/studiowebux/oasedit/internal/document"
	"github.com/studiowebux/oasedit/internal/editor"
	"github.com/studiowebux/oasedit/internal/format"
	"github.com/studiowebux/oasedit/internal/runner"
	"github.com/studiowebux/oasedit/internal/store"
)

func petsDocument(serverURL string) string {
	return fmt.Sprintf(`{
  "openapi": "3.0.3",
  "info": {"title": "Pets", "version": "1.0.0"},
  "servers": [{"url": "%s/{base}", "variables": {"base": {"default": "v1"}}, "description": "local"}],
  "paths": {
    "/pets/{petId}": {
      "parameters": [{"name": "petId", "in": "path", "required": true, "schema": {"type": "string"}}],
      "get": {
        "summary": "Get pet",
        "parameters": [{"name": "verbose", "in": "query", "schema": {"type": "boolean"}}],
        "responses": {"200": {"description": "the pet"}, "404": {"description": "no such pet"}}
      },
      "put": {
        "requestBody": {"content": {"application/json": {"schema": {"type": "object"}}}},
        "responses": {"200": {"description": "updated"}}
      }
    }
  }
}`, serverURL)
}

func newTestRunner(t *testing.T, serverURL string) (*runner.Runner, *document.Document) {
	t.Helper()
	s := store.New(nil, zerolog.Nop())
	if _, err := s.LoadFromText([]byte(petsDocument(serverURL)), format.JSON); err != nil {
		t.Fatalf("failed to load fixture: %v", err)
	}
	r, err := runner.New(s, runner.Options{Logger: zerolog.Nop()})
	if err != nil {
		t.Fatalf("failed to create runner: %v", err)
	}
	return r, s.Get()
}

func petServer() *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/v1/pets/7" && r.Method == http.MethodGet:
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprintf(w, `{"id":7,"verbose":%q}`, r.URL.Query().Get("verbose"))
		case r.URL.Path == "/v1/pets/7" && r.Method == http.MethodPut:
			body, _ := io.ReadAll(r.Body)
			w.Header().Set("Content-Type", "application/json")
			w.Write(body)
		default:
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":"not found"}`))
		}
	}))
}

func TestParseAssignments(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected map[string]string
		wantErr  bool
	}{
		{"pairs", []string{"a=1", "b=two"}, map[string]string{"a": "1", "b": "two"}, false},
		{"value with equals", []string{"q=a=b"}, map[string]string{"q": "a=b"}, false},
		{"bare key", []string{"flag"}, map[string]string{"flag": ""}, false},
		{"trimmed key", []string{" id =5"}, map[string]string{"id": "5"}, false},
		{"empty key", []string{"=oops"}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAssignments(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Error("Expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if len(got) != len(tt.expected) {
				t.Fatalf("Expected %d entries, got %d", len(tt.expected), len(got))
			}
			for k, v := range tt.expected {
				if got[k] != v {
					t.Errorf("Expected %s=%q, got %q", k, v, got[k])
				}
			}
		})
	}
}

func TestFormatOutput(t *testing.T) {
	result := &runner.Result{
		Method:       "GET",
		URL:          "https://api.example.com/v1/pets/7",
		Status:       200,
		StatusText:   "OK",
		Headers:      map[string]string{"X-B": "2", "Content-Type": "application/json"},
		Body:         `{"id":7}`,
		Data:         map[string]any{"id": float64(7)},
		Duration:     1500,
		ResponseSize: 2048,
	}

	t.Run("text", func(t *testing.T) {
		out, err := FormatOutput(result, "text", false)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		for _, want := range []string{"200 OK", "Duration: 1.50s | Size: 2.00KB", "\"id\": 7"} {
			if !strings.Contains(out, want) {
				t.Errorf("Expected output to contain %q, got:\n%s", want, out)
			}
		}
		if strings.Contains(out, "Headers:") {
			t.Error("Expected headers hidden without showFull")
		}
	})

	t.Run("text full", func(t *testing.T) {
		out, _ := FormatOutput(result, "text", true)
		ct := strings.Index(out, "Content-Type: application/json")
		xb := strings.Index(out, "X-B: 2")
		if ct < 0 || xb < 0 || ct > xb {
			t.Errorf("Expected sorted headers, got:\n%s", out)
		}
		if !strings.Contains(out, "GET https://api.example.com/v1/pets/7") {
			t.Errorf("Expected request line, got:\n%s", out)
		}
	})

	t.Run("json", func(t *testing.T) {
		out, _ := FormatOutput(result, "json", false)
		var decoded map[string]any
		if err := json.Unmarshal([]byte(out), &decoded); err != nil {
			t.Fatalf("Expected valid JSON: %v", err)
		}
		if decoded["status"] != float64(200) {
			t.Errorf("Expected status 200, got %v", decoded["status"])
		}
	})

	t.Run("body", func(t *testing.T) {
		out, _ := FormatOutput(result, "body", false)
		if out != `{"id":7}` {
			t.Errorf("Expected raw body, got %q", out)
		}
	})

	t.Run("failed", func(t *testing.T) {
		out, _ := FormatOutput(&runner.Result{Method: "GET", Error: "connection refused"}, "text", false)
		if !strings.Contains(out, "Error: connection refused") {
			t.Errorf("Expected error line, got %q", out)
		}
	})

	t.Run("body not JSON", func(t *testing.T) {
		result := &runner.Result{
			Method: "GET", Status: 502, StatusText: "Bad Gateway",
			Body: "<html>down</html>", Error: "response body is not JSON: invalid character '<'",
		}
		out, _ := FormatOutput(result, "text", false)
		for _, want := range []string{"502 Bad Gateway", "Error: response body is not JSON", "<html>down</html>"} {
			if !strings.Contains(out, want) {
				t.Errorf("Expected output to contain %q, got %q", want, out)
			}
		}
	})
}

func TestRun(t *testing.T) {
	server := petServer()
	defer server.Close()

	t.Run("success with declared description", func(t *testing.T) {
		r, doc := newTestRunner(t, server.URL)
		var out, errOut bytes.Buffer
		result, err := Run(context.Background(), r, doc, RunOptions{
			Path:         "/pets/{petId}",
			Method:       "GET",
			Params:       []string{"petId=7", "verbose=true"},
			OutputFormat: "text",
		}, IO{Out: &out, Err: &errOut})
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if result.Status != 200 {
			t.Errorf("Expected 200, got %d", result.Status)
		}
		if !strings.Contains(out.String(), "(the pet)") {
			t.Errorf("Expected declared description, got:\n%s", out.String())
		}
		if !strings.Contains(out.String(), `"verbose": "true"`) {
			t.Errorf("Expected query parameter echoed, got:\n%s", out.String())
		}
		if cached, ok := r.State().Result(runner.Key("/pets/{petId}", "get")); !ok || cached.Status != 200 {
			t.Error("Expected result kept in working state")
		}
	})

	t.Run("server error status", func(t *testing.T) {
		r, doc := newTestRunner(t, server.URL)
		var out bytes.Buffer
		result, err := Run(context.Background(), r, doc, RunOptions{
			Path:         "/pets/{petId}",
			Method:       "get",
			Params:       []string{"petId=8"},
			OutputFormat: "text",
		}, IO{Out: &out, Err: io.Discard})
		if !errors.Is(err, ErrRequestFailed) {
			t.Fatalf("Expected ErrRequestFailed, got %v", err)
		}
		if result.Status != 404 || !strings.Contains(out.String(), "(no such pet)") {
			t.Errorf("Expected documented 404, got %d:\n%s", result.Status, out.String())
		}
	})

	t.Run("body and query filter", func(t *testing.T) {
		r, doc := newTestRunner(t, server.URL)
		var out bytes.Buffer
		_, err := Run(context.Background(), r, doc, RunOptions{
			Path:         "/pets/{petId}",
			Method:       "PUT",
			Params:       []string{"petId=7"},
			Body:         `{"name":"Rex"}`,
			Query:        "name",
			OutputFormat: "body",
		}, IO{Out: &out, Err: io.Discard})
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if !strings.Contains(out.String(), "Rex") {
			t.Errorf("Expected filtered name, got %q", out.String())
		}
	})

	t.Run("save to file", func(t *testing.T) {
		r, doc := newTestRunner(t, server.URL)
		path := filepath.Join(t.TempDir(), "out.json")
		var out, errOut bytes.Buffer
		_, err := Run(context.Background(), r, doc, RunOptions{
			Path:         "/pets/{petId}",
			Method:       "GET",
			Params:       []string{"petId=7"},
			OutputFormat: "body",
			SavePath:     path,
		}, IO{Out: &out, Err: &errOut})
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("Expected saved file: %v", err)
		}
		if !strings.Contains(string(data), `"id":7`) {
			t.Errorf("Expected body in file, got %q", data)
		}
		if out.Len() != 0 {
			t.Errorf("Expected nothing on stdout, got %q", out.String())
		}
	})

	t.Run("unknown operation", func(t *testing.T) {
		r, doc := newTestRunner(t, server.URL)
		_, err := Run(context.Background(), r, doc, RunOptions{Path: "/nope", Method: "GET"}, IO{Out: io.Discard, Err: io.Discard})
		if !errors.Is(err, runner.ErrOperationNotFound) {
			t.Errorf("Expected ErrOperationNotFound, got %v", err)
		}
	})

	t.Run("no document", func(t *testing.T) {
		r, _ := newTestRunner(t, server.URL)
		_, err := Run(context.Background(), r, nil, RunOptions{Path: "/pets/{petId}", Method: "GET"}, IO{Out: io.Discard, Err: io.Discard})
		if !errors.Is(err, store.ErrNoDocument) {
			t.Errorf("Expected ErrNoDocument, got %v", err)
		}
	})
}

func TestPromptForVariable(t *testing.T) {
	var out bytes.Buffer
	value, err := promptForVariable(strings.NewReader("  42\n"), &out, "petId")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if value != "42" {
		t.Errorf("Expected 42, got %q", value)
	}
	if !strings.Contains(out.String(), "'petId'") {
		t.Errorf("Expected prompt naming the parameter, got %q", out.String())
	}

	value, err = promptForVariable(strings.NewReader("last"), io.Discard, "x")
	if err != nil || value != "last" {
		t.Errorf("Expected value without newline accepted, got %q (%v)", value, err)
	}
}

func TestEndpointOptions(t *testing.T) {
	options := EndpointOptions([]editor.Endpoint{
		{Path: "/pets", Method: "get", Summary: "List"},
		{Path: "/old", Method: "delete", Deprecated: true},
	})
	if len(options) != 2 {
		t.Fatalf("Expected 2 options, got %d", len(options))
	}
	if options[0].Value != "GET /pets" || options[0].Note != "List" {
		t.Errorf("Unexpected first option %+v", options[0])
	}
	if options[1].Note != "deprecated" {
		t.Errorf("Expected deprecated note, got %q", options[1].Note)
	}

	method, path, err := SplitEndpoint(options[0].Value)
	if err != nil || method != "get" || path != "/pets" {
		t.Errorf("Expected get /pets, got %s %s (%v)", method, path, err)
	}
	if _, _, err := SplitEndpoint("GET"); err == nil {
		t.Error("Expected error for value without path")
	}
}

func TestServerOptions(t *testing.T) {
	_, doc := newTestRunner(t, "http://localhost:9")
	options := ServerOptions(doc)
	if len(options) != 1 {
		t.Fatalf("Expected 1 option, got %d", len(options))
	}
	if options[0].Value != "http://localhost:9/{base}" || options[0].Label != "http://localhost:9/v1" {
		t.Errorf("Unexpected option %+v", options[0])
	}
	if ServerOptions(nil) != nil {
		t.Error("Expected nil options without a document")
	}
}

func TestSelectorModel(t *testing.T) {
	options := []Option{{Value: "a"}, {Value: "b"}, {Value: "c"}}

	t.Run("enter picks active", func(t *testing.T) {
		m := newSelectorModel("pick", options, 1)
		next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		if got := next.(selectorModel).choice; got != "b" {
			t.Errorf("Expected b, got %q", got)
		}
	})

	t.Run("escape cancels", func(t *testing.T) {
		m := newSelectorModel("pick", options, 0)
		next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
		sm := next.(selectorModel)
		if sm.choice != "" || !sm.quitting {
			t.Errorf("Expected cancelled selector, got %+v", sm.choice)
		}
	})

	t.Run("empty options", func(t *testing.T) {
		if _, err := SelectOption("pick", nil, 0); err == nil {
			t.Error("Expected error for empty options")
		}
	})
}

func TestStyleForTheme(t *testing.T) {
	if StyleForTheme(store.ThemeDark) != "monokai" || StyleForTheme(store.ThemeLight) != "github" {
		t.Error("Unexpected theme style mapping")
	}
}
