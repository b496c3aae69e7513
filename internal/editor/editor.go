// Package editor implements read-modify-write operations over the sections
// of the stored document. Every mutation clones the current snapshot,
// changes one section and stores the copy; filters never mutate.
package editor

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sahilm/fuzzy"
	"github.com/studiowebux/oasedit/internal/document"
	"github.com/studiowebux/oasedit/internal/store"
	"github.com/tidwall/jsonc"
)

var (
	ErrNoDocument      = store.ErrNoDocument
	ErrNotFound        = errors.New("not found")
	ErrInvalidJSON     = errors.New("invalid JSON")
	ErrDuplicateServer = errors.New("server already exists")
	ErrDuplicateTag    = errors.New("tag already exists")
	ErrDuplicateName   = errors.New("name already exists")
	ErrInvalidMethod   = errors.New("invalid HTTP method")
	ErrInvalidPath     = errors.New("path must start with /")
	ErrEmptyField      = errors.New("required field is empty")
)

// NotFoundError names the missing item and close matches
type NotFoundError struct {
	What        string
	Name        string
	Suggestions []string
}

func (e *NotFoundError) Error() string {
	msg := fmt.Sprintf("%s %q not found", e.What, e.Name)
	if len(e.Suggestions) > 0 {
		msg += fmt.Sprintf(" (did you mean: %s?)", strings.Join(e.Suggestions, ", "))
	}
	return msg
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

const maxSuggestions = 3

func notFound(what, name string, candidates []string) error {
	return &NotFoundError{What: what, Name: name, Suggestions: Suggest(name, candidates)}
}

// Suggest returns up to three candidates that fuzzy-match name, best first
func Suggest(name string, candidates []string) []string {
	if name == "" || len(candidates) == 0 {
		return nil
	}
	matches := fuzzy.Find(name, candidates)
	var out []string
	for i, m := range matches {
		if i == maxSuggestions {
			break
		}
		out = append(out, m.Str)
	}
	return out
}

// ParseJSON accepts JSON with comments and trailing commas and returns
// strict JSON. Malformed input returns ErrInvalidJSON.
func ParseJSON(text []byte) (json.RawMessage, error) {
	if strings.TrimSpace(string(text)) == "" {
		return nil, fmt.Errorf("%w: empty input", ErrInvalidJSON)
	}
	data := jsonc.ToJSON(text)
	if !json.Valid(data) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidJSON, firstLine(text))
	}
	return json.RawMessage(data), nil
}

// DecodeJSON parses lenient JSON into v
func DecodeJSON(text []byte, v any) error {
	data, err := ParseJSON(text)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	return nil
}

// matches reports whether any field contains query, ignoring case.
// An empty query matches everything.
func matches(query string, fields ...string) bool {
	if query == "" {
		return true
	}
	q := strings.ToLower(query)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

func firstLine(text []byte) string {
	s := strings.TrimSpace(string(text))
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i] + "..."
	}
	if len(s) > 60 {
		s = s[:60] + "..."
	}
	return s
}

func current(s *store.Store) (*document.Document, error) {
	doc := s.Get()
	if doc == nil {
		return nil, ErrNoDocument
	}
	return doc, nil
}
