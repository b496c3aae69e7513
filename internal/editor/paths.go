package editor

import (
	"sort"
	"strings"

	"github.com/studiowebux/oasedit/internal/document"
	"github.com/studiowebux/oasedit/internal/store"
)

// DefaultResponseDescription seeds the 200 response of new operations
const DefaultResponseDescription = "Successful operation"

// Endpoint summarises one operation for listings
type Endpoint struct {
	Path        string
	Method      string
	Summary     string
	OperationID string
	Tags        []string
	Deprecated  bool
}

// PathEntry is one path with all of its operations
type PathEntry struct {
	Path       string
	Operations []Endpoint
}

// PathEditor edits paths and their operations
type PathEditor struct {
	store *store.Store
}

func NewPathEditor(s *store.Store) *PathEditor {
	return &PathEditor{store: s}
}

// List returns paths, sorted, where the path or any operation summary
// contains query and, when method is set, an operation with that method exists
func (e *PathEditor) List(query, method string) ([]PathEntry, error) {
	doc, err := current(e.store)
	if err != nil {
		return nil, err
	}

	var out []PathEntry
	for _, path := range sortedPaths(doc.Paths) {
		item := doc.Paths[path]
		if item == nil {
			continue
		}
		methods := item.Operations()

		summaries := make([]string, 0, len(methods)+1)
		summaries = append(summaries, path)
		for _, m := range methods {
			summaries = append(summaries, item.Operation(m).Summary)
		}
		if !matches(query, summaries...) {
			continue
		}
		if method != "" && item.Operation(method) == nil {
			continue
		}

		entry := PathEntry{Path: path}
		for _, m := range methods {
			op := item.Operation(m)
			entry.Operations = append(entry.Operations, Endpoint{
				Path:        path,
				Method:      m,
				Summary:     op.Summary,
				OperationID: op.OperationID,
				Tags:        op.Tags,
				Deprecated:  op.Deprecated,
			})
		}
		out = append(out, entry)
	}
	return out, nil
}

// Endpoints flattens every operation in display order
func (e *PathEditor) Endpoints() ([]Endpoint, error) {
	entries, err := e.List("", "")
	if err != nil {
		return nil, err
	}
	var out []Endpoint
	for _, entry := range entries {
		out = append(out, entry.Operations...)
	}
	return out, nil
}

// Operation returns the operation at path and method from the current snapshot
func (e *PathEditor) Operation(path, method string) (*document.Operation, error) {
	doc, err := current(e.store)
	if err != nil {
		return nil, err
	}
	return findOperation(doc, path, method)
}

// AddOperation creates an operation seeded with a 200 response, replacing
// any existing operation for the same method
func (e *PathEditor) AddOperation(path, method, summary string) error {
	if !strings.HasPrefix(path, "/") {
		return ErrInvalidPath
	}
	if !document.IsValidMethod(method) {
		return ErrInvalidMethod
	}
	return e.store.Update(func(doc *document.Document) error {
		if doc.Paths == nil {
			doc.Paths = document.Paths{}
		}
		item := doc.Paths[path]
		if item == nil {
			item = &document.PathItem{}
			doc.Paths[path] = item
		}
		item.SetOperation(method, &document.Operation{
			Summary: summary,
			Responses: map[string]document.ResponseOrRef{
				"200": {Value: &document.Response{Description: DefaultResponseDescription}},
			},
		})
		return nil
	})
}

// UpdateOperation replaces an existing operation
func (e *PathEditor) UpdateOperation(path, method string, op *document.Operation) error {
	if op == nil {
		return ErrEmptyField
	}
	return e.store.Update(func(doc *document.Document) error {
		if _, err := findOperation(doc, path, method); err != nil {
			return err
		}
		doc.Paths[path].SetOperation(method, op)
		return nil
	})
}

// UpdateOperationJSON replaces an existing operation from lenient JSON text
func (e *PathEditor) UpdateOperationJSON(path, method string, text []byte) error {
	var op document.Operation
	if err := DecodeJSON(text, &op); err != nil {
		return err
	}
	return e.UpdateOperation(path, method, &op)
}

// RemoveOperation deletes an operation and drops the path once no
// operation remains on it
func (e *PathEditor) RemoveOperation(path, method string) error {
	return e.store.Update(func(doc *document.Document) error {
		if _, err := findOperation(doc, path, method); err != nil {
			return err
		}
		item := doc.Paths[path]
		item.SetOperation(method, nil)
		if item.IsEmpty() {
			delete(doc.Paths, path)
		}
		return nil
	})
}

func findOperation(doc *document.Document, path, method string) (*document.Operation, error) {
	item := doc.Paths[path]
	if item == nil {
		return nil, notFound("path", path, sortedPaths(doc.Paths))
	}
	op := item.Operation(method)
	if op == nil {
		return nil, notFound("operation", strings.ToUpper(method)+" "+path, item.Operations())
	}
	return op, nil
}

func sortedPaths(paths document.Paths) []string {
	out := make([]string, 0, len(paths))
	for p := range paths {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
