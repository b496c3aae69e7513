package tui

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/studiowebux/oasedit/internal/document"
	"github.com/studiowebux/oasedit/internal/format"
	"github.com/studiowebux/oasedit/internal/runner"
	"github.com/studiowebux/oasedit/internal/store"
)

func loadPets(t *testing.T) *document.Document {
	t.Helper()
	st := store.New(nil, zerolog.Nop())
	if _, err := st.LoadFromText([]byte(petsDocument("http://api.test")), format.JSON); err != nil {
		t.Fatalf("Failed to load document: %v", err)
	}
	return st.Get()
}

func TestBuildForm(t *testing.T) {
	doc := loadPets(t)
	ws := runner.NewWorkingState()

	t.Run("get", func(t *testing.T) {
		fields, err := BuildForm(doc, "/pets/{petId}", "get", ws)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		want := []struct {
			kind     FieldKind
			name     string
			required bool
			label    string
		}{
			{FieldServer, "", false, "server"},
			{FieldParam, "petId", true, "path petId*"},
			{FieldParam, "verbose", false, "query verbose"},
			{FieldCredential, "apiKey", false, "auth apiKey"},
		}
		if len(fields) != len(want) {
			t.Fatalf("Expected %d fields, got %d", len(want), len(fields))
		}
		for i, w := range want {
			f := fields[i]
			if f.Kind != w.kind || f.Name != w.name || f.Required != w.required {
				t.Errorf("Field %d: expected %v %s required=%v, got %v %s required=%v", i, w.kind, w.name, w.required, f.Kind, f.Name, f.Required)
			}
			if f.Label() != w.label {
				t.Errorf("Field %d: expected label %q, got %q", i, w.label, f.Label())
			}
		}
		if len(fields[0].Options) != 2 {
			t.Errorf("Expected 2 server options, got %d", len(fields[0].Options))
		}
		if fields[2].Description != "include details" {
			t.Errorf("Expected description 'include details', got %q", fields[2].Description)
		}
	})

	t.Run("put has a body", func(t *testing.T) {
		fields, err := BuildForm(doc, "/pets/{petId}", "put", ws)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		var body *Field
		for i := range fields {
			if fields[i].Kind == FieldBody {
				body = &fields[i]
			}
		}
		if body == nil {
			t.Fatal("Expected a body field")
		}
		if !body.Required {
			t.Error("Expected required body")
		}
	})

	t.Run("unknown operation", func(t *testing.T) {
		_, err := BuildForm(doc, "/nope", "get", ws)
		if !errors.Is(err, runner.ErrOperationNotFound) {
			t.Errorf("Expected ErrOperationNotFound, got %v", err)
		}
	})

	t.Run("prefilled from working state", func(t *testing.T) {
		ws := runner.NewWorkingState()
		key := runner.Key("/pets/{petId}", "put")
		ws.SetInputs(key, runner.Inputs{
			Params: map[string]string{"petId": "7"},
			Server: "http://127.0.0.1:1/unused",
			Body:   map[string]any{"name": "Rex"},
		})
		ws.SetCredential("apiKey", "secret")

		fields, err := BuildForm(doc, "/pets/{petId}", "put", ws)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		values := map[FieldKind]string{}
		for _, f := range fields {
			if f.Kind != FieldParam || f.Name == "petId" {
				values[f.Kind] = f.Value
			}
		}
		if values[FieldServer] != "http://127.0.0.1:1/unused" {
			t.Errorf("Expected server prefilled, got %q", values[FieldServer])
		}
		if values[FieldParam] != "7" {
			t.Errorf("Expected petId 7, got %q", values[FieldParam])
		}
		if values[FieldBody] != `{"name":"Rex"}` {
			t.Errorf(`Expected body {"name":"Rex"}, got %q`, values[FieldBody])
		}
		if values[FieldCredential] != "secret" {
			t.Errorf("Expected credential secret, got %q", values[FieldCredential])
		}
	})
}

func TestFormState_Apply(t *testing.T) {
	doc := loadPets(t)
	ws := runner.NewWorkingState()
	s := NewFormState()

	if err := s.Load(doc, "/pets/{petId}", "put", ws); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(s.Missing()) != 1 || s.Missing()[0] != "petId" {
		t.Errorf("Expected petId missing, got %v", s.Missing())
	}

	// server, petId, body, apiKey
	s.Navigate(1)
	s.SetValue("7")
	s.Navigate(1)
	s.SetValue(`{"name":"Rex"}`)
	s.Navigate(1)
	s.SetValue("secret")
	s.Apply(ws)

	if len(s.Missing()) != 0 {
		t.Errorf("Expected nothing missing, got %v", s.Missing())
	}
	in := ws.Inputs(s.Key())
	if in.Params["petId"] != "7" {
		t.Errorf("Expected petId 7, got %q", in.Params["petId"])
	}
	if in.Body != `{"name":"Rex"}` {
		t.Errorf("Expected body text, got %v", in.Body)
	}
	if v, _ := ws.Credential("apiKey"); v != "secret" {
		t.Errorf("Expected credential secret, got %q", v)
	}

	// Blank body is not sent
	s.Navigate(-1)
	s.SetValue("   ")
	s.Apply(ws)
	if body := ws.Inputs(s.Key()).Body; body != nil {
		t.Errorf("Expected nil body, got %v", body)
	}
}

func TestFormState_LoadKeepsCursor(t *testing.T) {
	doc := loadPets(t)
	ws := runner.NewWorkingState()
	s := NewFormState()

	s.Load(doc, "/pets/{petId}", "get", ws)
	s.Navigate(2)
	s.Load(doc, "/pets/{petId}", "get", ws)
	if s.Index() != 2 {
		t.Errorf("Expected cursor kept at 2, got %d", s.Index())
	}

	s.Load(doc, "/pets/{petId}", "put", ws)
	if s.Index() != 0 {
		t.Errorf("Expected cursor reset for another operation, got %d", s.Index())
	}

	if err := s.Load(doc, "/gone", "get", ws); err == nil {
		t.Error("Expected error for unknown operation")
	}
	if s.Key() != "" || len(s.Fields()) != 0 {
		t.Error("Expected empty form after failed load")
	}
	s.Apply(ws) // no-op on an empty form
}

func TestFormState_CycleServer(t *testing.T) {
	doc := loadPets(t)
	s := NewFormState()
	s.Load(doc, "/pets/{petId}", "get", runner.NewWorkingState())

	want := []string{"http://api.test/{base}", "http://127.0.0.1:1/unused", "", "http://api.test/{base}"}
	for i, w := range want {
		if got := s.CycleServer(); got != w {
			t.Errorf("Cycle %d: expected %q, got %q", i, w, got)
		}
	}
}

func TestFormState_Navigate(t *testing.T) {
	doc := loadPets(t)
	s := NewFormState()
	if s.Current() != nil {
		t.Error("Expected nil field for empty form")
	}
	s.Navigate(1)
	s.SetValue("ignored")

	s.Load(doc, "/pets/{petId}", "get", runner.NewWorkingState())
	s.Navigate(-1)
	if s.Index() != 3 {
		t.Errorf("Expected wrap to 3, got %d", s.Index())
	}
	if s.Current().Kind != FieldCredential {
		t.Errorf("Expected credential field, got %v", s.Current().Kind)
	}
}
