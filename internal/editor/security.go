package editor

import (
	"fmt"
	"sort"
	"strings"

	"github.com/studiowebux/oasedit/internal/document"
	"github.com/studiowebux/oasedit/internal/store"
)

// NamedScheme pairs a security scheme with its components key
type NamedScheme struct {
	Name   string
	Scheme document.SecuritySchemeOrRef
}

// SecurityEditor edits components.securitySchemes and document-level security
type SecurityEditor struct {
	store *store.Store
}

func NewSecurityEditor(s *store.Store) *SecurityEditor {
	return &SecurityEditor{store: s}
}

// Template returns the default scheme offered when adding one of type t
func Template(t string) (document.SecurityScheme, error) {
	switch t {
	case document.SchemeHTTP:
		return document.SecurityScheme{Type: t, Scheme: "bearer"}, nil
	case document.SchemeAPIKey:
		return document.SecurityScheme{Type: t, Name: "", In: "header"}, nil
	case document.SchemeOAuth2:
		return document.SecurityScheme{Type: t, Flows: &document.OAuthFlows{
			Implicit:          &document.OAuthFlow{Scopes: map[string]string{}},
			Password:          &document.OAuthFlow{Scopes: map[string]string{}},
			ClientCredentials: &document.OAuthFlow{Scopes: map[string]string{}},
			AuthorizationCode: &document.OAuthFlow{Scopes: map[string]string{}},
		}}, nil
	case document.SchemeOpenIDConnect:
		return document.SecurityScheme{Type: t, OpenIDConnectURL: ""}, nil
	}
	return document.SecurityScheme{}, fmt.Errorf("%w: unknown type %q (expected one of %s)",
		document.ErrInvalidScheme, t, strings.Join(document.SchemeTypes, ", "))
}

// Template returns the default scheme for type t
func (e *SecurityEditor) Template(t string) (document.SecurityScheme, error) {
	return Template(t)
}

// List returns schemes whose name or description contains query, sorted by name
func (e *SecurityEditor) List(query string) ([]NamedScheme, error) {
	doc, err := current(e.store)
	if err != nil {
		return nil, err
	}
	var out []NamedScheme
	for _, name := range doc.Components.Keys(document.KindSecuritySchemes) {
		s := doc.Components.SecuritySchemes[name]
		desc := ""
		if s.Value != nil {
			desc = s.Value.Description
		}
		if matches(query, name, desc) {
			out = append(out, NamedScheme{Name: name, Scheme: s})
		}
	}
	return out, nil
}

// Get returns the scheme stored under name, following references
func (e *SecurityEditor) Get(name string) (*document.SecurityScheme, error) {
	doc, err := current(e.store)
	if err != nil {
		return nil, err
	}
	s, ok := lookupScheme(doc, name)
	if !ok {
		return nil, notFound("security scheme", name, doc.Components.Keys(document.KindSecuritySchemes))
	}
	return s.Resolve(doc.Components)
}

// Add stores a new scheme. Only the type is checked; incomplete schemes are
// allowed so a template can be filled in later.
func (e *SecurityEditor) Add(name string, scheme document.SecurityScheme) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyField
	}
	if !document.IsKnownSchemeType(scheme.Type) {
		return fmt.Errorf("%w: unknown type %q", document.ErrInvalidScheme, scheme.Type)
	}
	return e.store.Update(func(doc *document.Document) error {
		if _, ok := lookupScheme(doc, name); ok {
			return ErrDuplicateName
		}
		if doc.Components == nil {
			doc.Components = &document.Components{}
		}
		if doc.Components.SecuritySchemes == nil {
			doc.Components.SecuritySchemes = make(map[string]document.SecuritySchemeOrRef)
		}
		s := scheme
		doc.Components.SecuritySchemes[name] = document.SecuritySchemeOrRef{Value: &s}
		return nil
	})
}

// Update replaces an existing scheme
func (e *SecurityEditor) Update(name string, scheme document.SecurityScheme) error {
	if !document.IsKnownSchemeType(scheme.Type) {
		return fmt.Errorf("%w: unknown type %q", document.ErrInvalidScheme, scheme.Type)
	}
	return e.store.Update(func(doc *document.Document) error {
		if _, ok := lookupScheme(doc, name); !ok {
			return notFound("security scheme", name, doc.Components.Keys(document.KindSecuritySchemes))
		}
		s := scheme
		doc.Components.SecuritySchemes[name] = document.SecuritySchemeOrRef{Value: &s}
		return nil
	})
}

func (e *SecurityEditor) Remove(name string) error {
	return e.store.Update(func(doc *document.Document) error {
		if !doc.Components.Delete(document.KindSecuritySchemes, name) {
			return notFound("security scheme", name, doc.Components.Keys(document.KindSecuritySchemes))
		}
		return nil
	})
}

// Requirements returns the document-level security requirements
func (e *SecurityEditor) Requirements() ([]document.SecurityRequirement, error) {
	doc, err := current(e.store)
	if err != nil {
		return nil, err
	}
	return doc.Security, nil
}

// SetRequirements replaces the document-level requirements. Every scheme
// named must exist in components.securitySchemes.
func (e *SecurityEditor) SetRequirements(reqs []document.SecurityRequirement) error {
	return e.store.Update(func(doc *document.Document) error {
		var out []document.SecurityRequirement
		for _, req := range reqs {
			names := make([]string, 0, len(req))
			for name := range req {
				names = append(names, name)
			}
			sort.Strings(names)
			copied := make(document.SecurityRequirement, len(req))
			for _, name := range names {
				if _, ok := lookupScheme(doc, name); !ok {
					return notFound("security scheme", name, doc.Components.Keys(document.KindSecuritySchemes))
				}
				copied[name] = append([]string{}, req[name]...)
			}
			out = append(out, copied)
		}
		doc.Security = out
		return nil
	})
}

func lookupScheme(doc *document.Document, name string) (document.SecuritySchemeOrRef, bool) {
	if doc.Components == nil {
		return document.SecuritySchemeOrRef{}, false
	}
	s, ok := doc.Components.SecuritySchemes[name]
	return s, ok
}
