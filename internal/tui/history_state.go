package tui

import (
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/studiowebux/oasedit/internal/types"
)

// HistoryState holds the sent requests of the selected operation
type HistoryState struct {
	mu sync.RWMutex

	// Operation the entries belong to
	path   string
	method string

	entries    []types.HistoryEntry
	allEntries []types.HistoryEntry // Unfiltered entries for search
	index      int

	previewView    viewport.Model
	previewVisible bool

	searchActive bool
	searchQuery  string
}

func NewHistoryState() *HistoryState {
	return &HistoryState{
		previewView:    viewport.New(80, 20),
		previewVisible: true,
	}
}

// SetEntries replaces the entries of an operation and reapplies the search
func (s *HistoryState) SetEntries(path, method string, entries []types.HistoryEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.path, s.method = path, method
	s.allEntries = entries
	s.filter()
	s.index = 0
}

// Operation returns the path and method the entries were loaded for
func (s *HistoryState) Operation() (path, method string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.path, s.method
}

// filter recomputes entries; callers hold the write lock
func (s *HistoryState) filter() {
	if s.searchQuery == "" {
		s.entries = s.allEntries
		return
	}
	q := strings.ToLower(s.searchQuery)
	s.entries = nil
	for _, e := range s.allEntries {
		if matchesHistory(e, q) {
			s.entries = append(s.entries, e)
		}
	}
}

func matchesHistory(e types.HistoryEntry, q string) bool {
	fields := []string{
		e.URL,
		e.Timestamp,
		e.Error,
		strconv.Itoa(e.ResponseStatus),
		e.ResponseStatusText,
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

// GetEntries returns a copy of the filtered entries
func (s *HistoryState) GetEntries() []types.HistoryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]types.HistoryEntry, len(s.entries))
	copy(result, s.entries)
	return result
}

// Total returns the number of entries before filtering
func (s *HistoryState) Total() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.allEntries)
}

func (s *HistoryState) GetIndex() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index
}

// Navigate moves the selection by delta
func (s *HistoryState) Navigate(delta int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.entries) == 0 {
		return
	}

	s.index += delta

	// Wrap around
	if s.index < 0 {
		s.index = len(s.entries) - 1
	} else if s.index >= len(s.entries) {
		s.index = 0
	}
}

// GetCurrentEntry returns the currently selected history entry
func (s *HistoryState) GetCurrentEntry() *types.HistoryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.entries) == 0 || s.index < 0 || s.index >= len(s.entries) {
		return nil
	}

	e := s.entries[s.index]
	return &e
}

// Remove drops the entry with id from both lists
func (s *HistoryState) Remove(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.allEntries[:0:0]
	for _, e := range s.allEntries {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	s.allEntries = kept
	s.filter()
	if s.index >= len(s.entries) {
		s.index = max(len(s.entries)-1, 0)
	}
}

func (s *HistoryState) GetPreviewView() viewport.Model {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.previewView
}

func (s *HistoryState) SetPreviewView(v viewport.Model) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.previewView = v
}

func (s *HistoryState) GetPreviewVisible() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.previewVisible
}

// TogglePreview toggles the preview visibility
func (s *HistoryState) TogglePreview() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.previewVisible = !s.previewVisible
}

func (s *HistoryState) GetSearchActive() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.searchActive
}

func (s *HistoryState) ActivateSearch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searchActive = true
}

func (s *HistoryState) DeactivateSearch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searchActive = false
}

func (s *HistoryState) GetSearchQuery() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.searchQuery
}

// SetSearchQuery filters entries by URL, timestamp, status or error
func (s *HistoryState) SetSearchQuery(query string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searchQuery = query
	s.filter()
	s.index = 0
}

// ClearSearch clears the search query and deactivates search
func (s *HistoryState) ClearSearch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searchQuery = ""
	s.searchActive = false
	s.filter()
	s.index = 0
}
