package editor

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/studiowebux/oasedit/internal/document"
	"github.com/studiowebux/oasedit/internal/store"
)

// RootGroup holds components whose key has no group prefix
const RootGroup = "Root"

// Item is one component for display
type Item struct {
	Key         string
	Name        string
	Description string
	Value       any
}

// Group is a named set of components sharing a key prefix
type Group struct {
	Name  string
	Items []Item
}

// SplitKey separates "group/name" keys. Keys without a slash belong to RootGroup.
func SplitKey(key string) (group, name string) {
	if i := strings.IndexByte(key, '/'); i >= 0 {
		return key[:i], key[i+1:]
	}
	return RootGroup, key
}

// JoinKey builds a component key from a group and a name
func JoinKey(group, name string) string {
	if group == "" || group == RootGroup {
		return name
	}
	return group + "/" + name
}

// GroupIndex maps each display name to its group for one component kind
func GroupIndex(c *document.Components, kind document.Kind) map[string]string {
	index := make(map[string]string)
	for _, key := range c.Keys(kind) {
		group, name := SplitKey(key)
		index[name] = group
	}
	return index
}

// ComponentEditor edits components.<kind> maps
type ComponentEditor struct {
	store *store.Store
}

func NewComponentEditor(s *store.Store) *ComponentEditor {
	return &ComponentEditor{store: s}
}

// List groups the components of one kind. The root group comes first,
// named groups follow in name order, and groups left empty by query are
// omitted.
func (e *ComponentEditor) List(kind document.Kind, query string) ([]Group, error) {
	doc, err := current(e.store)
	if err != nil {
		return nil, err
	}

	groups := map[string]*Group{}
	var names []string
	for _, key := range doc.Components.Keys(kind) {
		value, _ := doc.Components.Get(kind, key)
		desc := description(value)
		if !matches(query, key, desc) {
			continue
		}
		groupName, name := SplitKey(key)
		g, ok := groups[groupName]
		if !ok {
			g = &Group{Name: groupName}
			groups[groupName] = g
			if groupName != RootGroup {
				names = append(names, groupName)
			}
		}
		g.Items = append(g.Items, Item{Key: key, Name: name, Description: desc, Value: value})
	}

	sort.Strings(names)
	var out []Group
	if g, ok := groups[RootGroup]; ok {
		out = append(out, *g)
	}
	for _, n := range names {
		out = append(out, *groups[n])
	}
	return out, nil
}

// Get returns one component definition
func (e *ComponentEditor) Get(kind document.Kind, key string) (any, error) {
	doc, err := current(e.store)
	if err != nil {
		return nil, err
	}
	v, ok := doc.Components.Get(kind, key)
	if !ok {
		return nil, notFound(string(kind), key, doc.Components.Keys(kind))
	}
	return v, nil
}

// Add stores a new component under group/name from lenient JSON text.
// Malformed text returns ErrInvalidJSON and leaves the document unchanged.
func (e *ComponentEditor) Add(kind document.Kind, group, name string, raw []byte) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyField
	}
	key := JoinKey(group, name)
	data, err := ParseJSON(raw)
	if err != nil {
		return err
	}
	return e.store.Update(func(doc *document.Document) error {
		if _, exists := doc.Components.Get(kind, key); exists {
			return ErrDuplicateName
		}
		if doc.Components == nil {
			doc.Components = &document.Components{}
		}
		return setRaw(doc.Components, kind, key, data)
	})
}

// Update replaces an existing component definition
func (e *ComponentEditor) Update(kind document.Kind, key string, raw []byte) error {
	data, err := ParseJSON(raw)
	if err != nil {
		return err
	}
	return e.store.Update(func(doc *document.Document) error {
		if _, exists := doc.Components.Get(kind, key); !exists {
			return notFound(string(kind), key, doc.Components.Keys(kind))
		}
		return setRaw(doc.Components, kind, key, data)
	})
}

// Remove deletes a component by its full key
func (e *ComponentEditor) Remove(kind document.Kind, key string) error {
	return e.store.Update(func(doc *document.Document) error {
		if !doc.Components.Delete(kind, key) {
			return notFound(string(kind), key, doc.Components.Keys(kind))
		}
		return nil
	})
}

func setRaw(c *document.Components, kind document.Kind, key string, data []byte) error {
	if err := c.SetRaw(kind, key, data); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidJSON, err)
	}
	return nil
}

// description extracts a top-level description from any component value
func description(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	var probe struct {
		Description string `json:"description"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return ""
	}
	return probe.Description
}
