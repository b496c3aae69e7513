package tui

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/studiowebux/oasedit/internal/document"
	"github.com/studiowebux/oasedit/internal/runner"
)

// FieldKind tells where a form value goes when applied
type FieldKind int

const (
	FieldServer FieldKind = iota
	FieldParam
	FieldBody
	FieldCredential
)

func (k FieldKind) String() string {
	switch k {
	case FieldServer:
		return "server"
	case FieldParam:
		return "param"
	case FieldBody:
		return "body"
	case FieldCredential:
		return "credential"
	}
	return "unknown"
}

// Field is one editable line of the request form
type Field struct {
	Kind        FieldKind
	Name        string
	In          string // parameter location
	Required    bool
	Description string
	Value       string
	Options     []string // server URLs
}

// Label is the text shown before the value
func (f Field) Label() string {
	switch f.Kind {
	case FieldServer:
		return "server"
	case FieldBody:
		return "body"
	case FieldCredential:
		return "auth " + f.Name
	}
	label := f.In + " " + f.Name
	if f.Required {
		label += "*"
	}
	return label
}

// BuildForm lists the inputs of an operation, pre-filled from the working state
func BuildForm(doc *document.Document, path, method string, ws *runner.WorkingState) ([]Field, error) {
	item, op := doc.Operation(path, method)
	if op == nil {
		return nil, fmt.Errorf("%w: %s %s", runner.ErrOperationNotFound, strings.ToUpper(method), path)
	}
	params, err := runner.ResolveParameters(doc.Components, item, op)
	if err != nil {
		return nil, err
	}

	in := ws.Inputs(runner.Key(path, method))
	fields := []Field{{
		Kind:    FieldServer,
		Value:   in.Server,
		Options: doc.ServerURLs(),
	}}

	for _, p := range params {
		fields = append(fields, Field{
			Kind:        FieldParam,
			Name:        p.Name,
			In:          p.In,
			Required:    p.Required || p.In == "path",
			Description: p.Description,
			Value:       in.Params[p.Name],
		})
	}

	if op.RequestBody != nil {
		f := Field{Kind: FieldBody, Value: bodyText(in.Body)}
		if body, err := op.RequestBody.Resolve(doc.Components); err == nil {
			f.Required = body.Required
			f.Description = body.Description
		}
		fields = append(fields, f)
	}

	for _, name := range securitySchemeNames(doc, op) {
		value, _ := ws.Credential(name)
		fields = append(fields, Field{Kind: FieldCredential, Name: name, Value: value})
	}
	return fields, nil
}

func bodyText(body any) string {
	switch b := body.(type) {
	case nil:
		return ""
	case string:
		return b
	case []byte:
		return string(b)
	}
	data, err := json.Marshal(body)
	if err != nil {
		return ""
	}
	return string(data)
}

// securitySchemeNames lists the schemes named by the effective requirements
func securitySchemeNames(doc *document.Document, op *document.Operation) []string {
	reqs := op.Security
	if reqs == nil {
		reqs = doc.Security
	}
	seen := make(map[string]bool)
	var names []string
	for _, r := range reqs {
		for name := range r {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)
	return names
}

// FormState holds the form of the selected operation
type FormState struct {
	mu sync.RWMutex

	path   string
	method string
	fields []Field
	index  int
}

func NewFormState() *FormState {
	return &FormState{}
}

// Load rebuilds the form for an operation. The cursor stays on the same
// field when the operation did not change.
func (s *FormState) Load(doc *document.Document, path, method string, ws *runner.WorkingState) error {
	fields, err := BuildForm(doc, path, method, ws)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.path, s.method, s.fields, s.index = "", "", nil, 0
		return err
	}
	if s.path != path || s.method != method || s.index >= len(fields) {
		s.index = 0
	}
	s.path, s.method, s.fields = path, method, fields
	return nil
}

// Clear empties the form
func (s *FormState) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.path, s.method, s.fields, s.index = "", "", nil, 0
}

// Key returns the working state key of the loaded operation
func (s *FormState) Key() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.path == "" {
		return ""
	}
	return runner.Key(s.path, s.method)
}

func (s *FormState) Fields() []Field {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Field, len(s.fields))
	copy(out, s.fields)
	return out
}

func (s *FormState) Index() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index
}

// Navigate moves the cursor by delta, wrapping around
func (s *FormState) Navigate(delta int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.fields) == 0 {
		return
	}
	s.index = (s.index + delta) % len(s.fields)
	if s.index < 0 {
		s.index += len(s.fields)
	}
}

// Current returns the field under the cursor
func (s *FormState) Current() *Field {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.index < 0 || s.index >= len(s.fields) {
		return nil
	}
	f := s.fields[s.index]
	return &f
}

// SetValue sets the value of the field under the cursor
func (s *FormState) SetValue(value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index < 0 || s.index >= len(s.fields) {
		return
	}
	s.fields[s.index].Value = value
}

// CycleServer selects the next declared server. After the last one the
// selection goes back to the document default.
func (s *FormState) CycleServer() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.fields {
		f := &s.fields[i]
		if f.Kind != FieldServer {
			continue
		}
		if len(f.Options) == 0 {
			return f.Value
		}
		next := 0
		for j, o := range f.Options {
			if o == f.Value {
				next = j + 1
				break
			}
		}
		if next >= len(f.Options) {
			f.Value = ""
		} else {
			f.Value = f.Options[next]
		}
		return f.Value
	}
	return ""
}

// Missing lists required parameters that have no value
func (s *FormState) Missing() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []string
	for _, f := range s.fields {
		if f.Kind == FieldParam && f.Required && f.Value == "" {
			out = append(out, f.Name)
		}
	}
	return out
}

// Apply writes the form into the working state
func (s *FormState) Apply(ws *runner.WorkingState) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.path == "" {
		return
	}

	in := runner.Inputs{Params: make(map[string]string)}
	for _, f := range s.fields {
		switch f.Kind {
		case FieldServer:
			in.Server = f.Value
		case FieldParam:
			if f.Value != "" {
				in.Params[f.Name] = f.Value
			}
		case FieldBody:
			if strings.TrimSpace(f.Value) != "" {
				in.Body = f.Value
			}
		case FieldCredential:
			ws.SetCredential(f.Name, f.Value)
		}
	}
	ws.SetInputs(runner.Key(s.path, s.method), in)
}
