package tui

import (
	"strings"
	"sync"

	"github.com/studiowebux/oasedit/internal/editor"
	"github.com/studiowebux/oasedit/internal/filter"
)

// EndpointState holds the operations shown in the sidebar
type EndpointState struct {
	mu sync.RWMutex

	all     []editor.Endpoint
	visible []editor.Endpoint
	index   int

	query string
	tags  []string
}

func NewEndpointState() *EndpointState {
	return &EndpointState{}
}

// SetEndpoints replaces the operation list. The selected operation stays
// selected when it still exists.
func (s *EndpointState) SetEndpoints(endpoints []editor.Endpoint) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var selected *editor.Endpoint
	if s.index >= 0 && s.index < len(s.visible) {
		ep := s.visible[s.index]
		selected = &ep
	}

	s.all = endpoints
	s.apply()

	s.index = 0
	if selected != nil {
		for i, ep := range s.visible {
			if ep.Path == selected.Path && ep.Method == selected.Method {
				s.index = i
				break
			}
		}
	}
}

// apply recomputes visible; callers hold the write lock
func (s *EndpointState) apply() {
	tagged := filter.ByTags(s.all, s.tags)
	if s.query == "" {
		s.visible = tagged
		return
	}
	q := strings.ToLower(s.query)
	s.visible = nil
	for _, ep := range tagged {
		if strings.Contains(strings.ToLower(ep.Path), q) ||
			strings.Contains(strings.ToLower(ep.Summary), q) ||
			strings.Contains(strings.ToLower(ep.OperationID), q) ||
			strings.EqualFold(ep.Method, q) {
			s.visible = append(s.visible, ep)
		}
	}
}

// Visible returns a copy of the filtered operations
func (s *EndpointState) Visible() []editor.Endpoint {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]editor.Endpoint, len(s.visible))
	copy(out, s.visible)
	return out
}

// Count returns the number of operations before filtering
func (s *EndpointState) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.all)
}

func (s *EndpointState) Index() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index
}

// Navigate moves the selection by delta, wrapping around
func (s *EndpointState) Navigate(delta int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.visible) == 0 {
		return
	}
	s.index = (s.index + delta) % len(s.visible)
	if s.index < 0 {
		s.index += len(s.visible)
	}
}

// Current returns the selected operation or nil
func (s *EndpointState) Current() *editor.Endpoint {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.index < 0 || s.index >= len(s.visible) {
		return nil
	}
	ep := s.visible[s.index]
	return &ep
}

func (s *EndpointState) Query() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.query
}

// SetQuery filters by path, summary, operationId or exact method
func (s *EndpointState) SetQuery(query string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.query = strings.TrimSpace(query)
	s.apply()
	s.index = 0
}

func (s *EndpointState) Tags() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.tags...)
}

// ToggleTag adds or removes tag from the tag filter
func (s *EndpointState) ToggleTag(tag string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, t := range s.tags {
		if t == tag {
			s.tags = append(s.tags[:i], s.tags[i+1:]...)
			s.apply()
			s.index = 0
			return
		}
	}
	s.tags = append(s.tags, tag)
	s.apply()
	s.index = 0
}

func (s *EndpointState) ClearTags() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tags = nil
	s.apply()
	s.index = 0
}

// AllTags lists the tags used by any operation
func (s *EndpointState) AllTags() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return filter.AllTags(s.all)
}
