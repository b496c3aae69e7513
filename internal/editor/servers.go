package editor

import (
	"sort"
	"strings"

	"github.com/studiowebux/oasedit/internal/document"
	"github.com/studiowebux/oasedit/internal/store"
)

// ServerEditor edits the servers list. Servers are identified by URL.
type ServerEditor struct {
	store *store.Store
}

func NewServerEditor(s *store.Store) *ServerEditor {
	return &ServerEditor{store: s}
}

// List returns servers whose URL or description contains query
func (e *ServerEditor) List(query string) ([]document.Server, error) {
	doc, err := current(e.store)
	if err != nil {
		return nil, err
	}
	var out []document.Server
	for _, s := range doc.Servers {
		if matches(query, s.URL, s.Description) {
			out = append(out, s)
		}
	}
	return out, nil
}

// Add appends a server; a URL already present is rejected
func (e *ServerEditor) Add(server document.Server) error {
	server.URL = strings.TrimSpace(server.URL)
	if server.URL == "" {
		return ErrEmptyField
	}
	return e.store.Update(func(doc *document.Document) error {
		if doc.FindServer(server.URL) >= 0 {
			return ErrDuplicateServer
		}
		doc.Servers = append(doc.Servers, server)
		return nil
	})
}

// Update replaces the server identified by url, which may change its URL
func (e *ServerEditor) Update(url string, server document.Server) error {
	server.URL = strings.TrimSpace(server.URL)
	if server.URL == "" {
		return ErrEmptyField
	}
	return e.store.Update(func(doc *document.Document) error {
		i := doc.FindServer(url)
		if i < 0 {
			return notFound("server", url, doc.ServerURLs())
		}
		if server.URL != url && doc.FindServer(server.URL) >= 0 {
			return ErrDuplicateServer
		}
		doc.Servers[i] = server
		return nil
	})
}

// Remove deletes the server identified by url
func (e *ServerEditor) Remove(url string) error {
	return e.store.Update(func(doc *document.Document) error {
		i := doc.FindServer(url)
		if i < 0 {
			return notFound("server", url, doc.ServerURLs())
		}
		doc.Servers = append(doc.Servers[:i], doc.Servers[i+1:]...)
		if len(doc.Servers) == 0 {
			doc.Servers = nil
		}
		return nil
	})
}

// SetVariable adds or replaces a URL template variable on a server
func (e *ServerEditor) SetVariable(url, name string, v document.ServerVariable) error {
	if name == "" {
		return ErrEmptyField
	}
	return e.store.Update(func(doc *document.Document) error {
		i := doc.FindServer(url)
		if i < 0 {
			return notFound("server", url, doc.ServerURLs())
		}
		if doc.Servers[i].Variables == nil {
			doc.Servers[i].Variables = make(map[string]document.ServerVariable)
		}
		doc.Servers[i].Variables[name] = v
		return nil
	})
}

// RemoveVariable deletes a URL template variable from a server
func (e *ServerEditor) RemoveVariable(url, name string) error {
	return e.store.Update(func(doc *document.Document) error {
		i := doc.FindServer(url)
		if i < 0 {
			return notFound("server", url, doc.ServerURLs())
		}
		vars := doc.Servers[i].Variables
		if _, ok := vars[name]; !ok {
			return notFound("variable", name, keys(vars))
		}
		delete(vars, name)
		if len(vars) == 0 {
			doc.Servers[i].Variables = nil
		}
		return nil
	})
}

func keys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
