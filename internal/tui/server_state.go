package tui

import (
	"sync"

	"github.com/studiowebux/oasedit/internal/document"
	"github.com/studiowebux/oasedit/internal/probe"
	"github.com/studiowebux/oasedit/internal/runner"
	"github.com/studiowebux/oasedit/internal/types"
)

// ServerEntry is one declared server with its probe status
type ServerEntry struct {
	URL         string // as declared
	Expanded    string // variables replaced by defaults
	Description string
	Status      types.ServerStatus
}

// ServerState tracks reachability of the declared servers
type ServerState struct {
	mu      sync.RWMutex
	servers []document.Server
	tracker *probe.Tracker
	probing bool
	index   int
}

func NewServerState() *ServerState {
	return &ServerState{tracker: probe.NewTracker()}
}

// SetServers replaces the server list and reports whether the set of
// expanded URLs changed
func (s *ServerState) SetServers(servers []document.Server) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	changed := len(servers) != len(s.servers)
	if !changed {
		for i := range servers {
			if runner.ExpandServerURL(servers[i]) != runner.ExpandServerURL(s.servers[i]) {
				changed = true
				break
			}
		}
	}
	s.servers = append([]document.Server(nil), servers...)
	if s.index >= len(s.servers) {
		s.index = 0
	}
	return changed
}

// URLs returns the expanded URLs in declaration order
func (s *ServerState) URLs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.servers))
	for i, srv := range s.servers {
		out[i] = runner.ExpandServerURL(srv)
	}
	return out
}

// StartProbe marks every server as checking
func (s *ServerState) StartProbe() []string {
	urls := s.URLs()
	s.tracker.Reset(urls)
	s.mu.Lock()
	s.probing = len(urls) > 0
	s.mu.Unlock()
	return urls
}

func (s *ServerState) Apply(u probe.Update) {
	s.tracker.Apply(u)
}

// FinishProbe clears the probing flag
func (s *ServerState) FinishProbe() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.probing = false
}

func (s *ServerState) Probing() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.probing
}

// Entries returns the servers with their current status
func (s *ServerState) Entries() []ServerEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ServerEntry, len(s.servers))
	for i, srv := range s.servers {
		expanded := runner.ExpandServerURL(srv)
		out[i] = ServerEntry{
			URL:         srv.URL,
			Expanded:    expanded,
			Description: srv.Description,
			Status:      s.tracker.Status(expanded),
		}
	}
	return out
}

// Counts returns how many servers are live and how many were probed
func (s *ServerState) Counts() (live, total int) {
	for _, e := range s.Entries() {
		total++
		if e.Status == types.StatusLive {
			live++
		}
	}
	return live, total
}

func (s *ServerState) Index() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index
}

// Navigate moves the selection by delta, wrapping around
func (s *ServerState) Navigate(delta int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.servers) == 0 {
		return
	}
	s.index = (s.index + delta) % len(s.servers)
	if s.index < 0 {
		s.index += len(s.servers)
	}
}

// Current returns the selected server or nil
func (s *ServerState) Current() *ServerEntry {
	entries := s.Entries()
	i := s.Index()
	if i < 0 || i >= len(entries) {
		return nil
	}
	return &entries[i]
}
