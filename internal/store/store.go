// Package store holds the single in-memory OpenAPI document.
//
// A mutex guards the pointer swap only. Update is a read-clone-modify-Set
// helper without optimistic concurrency: two updates that start from the
// same snapshot race and the later Set wins.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/studiowebux/oasedit/internal/document"
	"github.com/studiowebux/oasedit/internal/format"
	"github.com/studiowebux/oasedit/internal/storage"
)

var (
	// ErrNoDocument is returned by operations that need a loaded document
	ErrNoDocument = errors.New("no document loaded")
	// ErrIncompleteInfo is returned when info.title or info.version is missing
	ErrIncompleteInfo = errors.New("document info requires title and version")
)

// Persister mirrors values to durable storage
type Persister interface {
	Load(key string) ([]byte, bool, error)
	Save(key string, value []byte) error
	Delete(key string) error
}

// Listener is notified after every replacement. doc is nil after Clear.
type Listener func(doc *document.Document)

type subscription struct {
	id int
	fn Listener
}

// Store keeps exactly one document at a time
type Store struct {
	mu      sync.RWMutex
	doc     *document.Document
	subs    []subscription
	nextID  int
	persist Persister
	log     zerolog.Logger
}

// New creates an empty store. persist may be nil for a memory-only store.
func New(persist Persister, log zerolog.Logger) *Store {
	return &Store{persist: persist, log: log}
}

// Get returns the current snapshot or nil. Callers must Clone before mutating.
func (s *Store) Get() *document.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc
}

// Set replaces the document wholesale, mirrors it and notifies subscribers
// in subscription order
func (s *Store) Set(doc *document.Document) error {
	if doc == nil {
		s.Clear()
		return nil
	}
	if !doc.HasInfo() {
		return ErrIncompleteInfo
	}

	s.mu.Lock()
	s.doc = doc
	s.save(doc)
	subs := s.snapshotSubs()
	s.mu.Unlock()

	notify(subs, doc)
	return nil
}

// Subscribe registers fn and returns a function that removes it
func (s *Store) Subscribe(fn Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := s.nextID
	s.subs = append(s.subs, subscription{id: id, fn: fn})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

// LoadFromText parses text and replaces the document. An Unrecognized lang
// means detect from content. On any failure the previous document is kept.
func (s *Store) LoadFromText(text []byte, lang format.Language) (format.Language, error) {
	if lang == format.Unrecognized {
		lang = format.DetectLanguage(text)
		if lang == format.Unrecognized {
			return lang, format.ErrUnrecognizedMarkup
		}
	}

	obj, err := format.Parse(text, lang)
	if err != nil {
		return lang, err
	}
	switch format.DetectStandard(obj) {
	case format.OpenAPI:
	case format.Arazzo:
		return lang, format.ErrArazzoNotImplemented
	default:
		return lang, format.ErrUnrecognizedStandard
	}

	doc, err := document.Decode(obj.(map[string]any))
	if err != nil {
		return lang, err
	}
	if err := s.Set(doc); err != nil {
		return lang, err
	}
	s.log.Info().Str("title", doc.Title()).Str("language", string(lang)).Msg("document loaded")
	return lang, nil
}

// Update clones the current document, applies fn and stores the result.
// Nothing is stored when fn fails.
func (s *Store) Update(fn func(doc *document.Document) error) error {
	current := s.Get()
	if current == nil {
		return ErrNoDocument
	}
	next := current.Clone()
	if err := fn(next); err != nil {
		return err
	}
	return s.Set(next)
}

// Restore loads the mirrored document, if any, without re-saving it
func (s *Store) Restore() error {
	if s.persist == nil {
		return nil
	}
	data, ok, err := s.persist.Load(storage.DocumentKey)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	doc, err := document.FromJSON(data)
	if err != nil {
		return fmt.Errorf("failed to restore document: %w", err)
	}
	if !doc.HasInfo() {
		return ErrIncompleteInfo
	}

	s.mu.Lock()
	s.doc = doc
	subs := s.snapshotSubs()
	s.mu.Unlock()

	notify(subs, doc)
	return nil
}

// Clear empties the store and its mirror
func (s *Store) Clear() {
	s.mu.Lock()
	s.doc = nil
	if s.persist != nil {
		if err := s.persist.Delete(storage.DocumentKey); err != nil {
			s.log.Warn().Err(err).Msg("failed to clear persisted document")
		}
	}
	subs := s.snapshotSubs()
	s.mu.Unlock()

	notify(subs, nil)
}

func (s *Store) save(doc *document.Document) {
	if s.persist == nil {
		return
	}
	data, err := json.Marshal(doc)
	if err != nil {
		s.log.Warn().Err(err).Msg("failed to encode document for persistence")
		return
	}
	if err := s.persist.Save(storage.DocumentKey, data); err != nil {
		s.log.Warn().Err(err).Msg("failed to persist document")
	}
}

func (s *Store) snapshotSubs() []subscription {
	subs := make([]subscription, len(s.subs))
	copy(subs, s.subs)
	return subs
}

func notify(subs []subscription, doc *document.Document) {
	for _, sub := range subs {
		sub.fn(doc)
	}
}
