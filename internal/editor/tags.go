package editor

import (
	"strings"

	"github.com/studiowebux/oasedit/internal/document"
	"github.com/studiowebux/oasedit/internal/store"
)

// TagEditor edits the top-level tags list
type TagEditor struct {
	store *store.Store
}

func NewTagEditor(s *store.Store) *TagEditor {
	return &TagEditor{store: s}
}

// List returns tags whose name or description contains query
func (e *TagEditor) List(query string) ([]document.Tag, error) {
	doc, err := current(e.store)
	if err != nil {
		return nil, err
	}
	var out []document.Tag
	for _, t := range doc.Tags {
		if matches(query, t.Name, t.Description) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (e *TagEditor) Add(tag document.Tag) error {
	tag.Name = strings.TrimSpace(tag.Name)
	if tag.Name == "" {
		return ErrEmptyField
	}
	return e.store.Update(func(doc *document.Document) error {
		if findTag(doc, tag.Name) >= 0 {
			return ErrDuplicateTag
		}
		doc.Tags = append(doc.Tags, tag)
		return nil
	})
}

// Update replaces the tag called name. A rename is carried over to every
// operation that references the old name.
func (e *TagEditor) Update(name string, tag document.Tag) error {
	tag.Name = strings.TrimSpace(tag.Name)
	if tag.Name == "" {
		return ErrEmptyField
	}
	return e.store.Update(func(doc *document.Document) error {
		i := findTag(doc, name)
		if i < 0 {
			return notFound("tag", name, tagNames(doc))
		}
		if tag.Name != name {
			if findTag(doc, tag.Name) >= 0 {
				return ErrDuplicateTag
			}
			renameOperationTag(doc, name, tag.Name)
		}
		doc.Tags[i] = tag
		return nil
	})
}

func (e *TagEditor) Remove(name string) error {
	return e.store.Update(func(doc *document.Document) error {
		i := findTag(doc, name)
		if i < 0 {
			return notFound("tag", name, tagNames(doc))
		}
		doc.Tags = append(doc.Tags[:i], doc.Tags[i+1:]...)
		if len(doc.Tags) == 0 {
			doc.Tags = nil
		}
		return nil
	})
}

func findTag(doc *document.Document, name string) int {
	for i, t := range doc.Tags {
		if t.Name == name {
			return i
		}
	}
	return -1
}

func tagNames(doc *document.Document) []string {
	names := make([]string, 0, len(doc.Tags))
	for _, t := range doc.Tags {
		names = append(names, t.Name)
	}
	return names
}

func renameOperationTag(doc *document.Document, from, to string) {
	for _, item := range doc.Paths {
		if item == nil {
			continue
		}
		for _, m := range item.Operations() {
			op := item.Operation(m)
			for i, t := range op.Tags {
				if t == from {
					op.Tags[i] = to
				}
			}
		}
	}
}
