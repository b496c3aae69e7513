package probe

import (
	"sync"

	"github.com/studiowebux/oasedit/internal/types"
)

// Tracker holds the latest status per server URL for readers that poll
// while probes are still settling
type Tracker struct {
	mu       sync.RWMutex
	statuses map[string]Status
}

func NewTracker() *Tracker {
	return &Tracker{statuses: make(map[string]Status)}
}

// Reset forgets every status and marks urls as checking
func (t *Tracker) Reset(urls []string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.statuses = make(map[string]Status, len(urls))
	for _, u := range urls {
		t.statuses[u] = types.StatusChecking
	}
}

func (t *Tracker) Apply(u Update) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.statuses[u.URL] = u.Status
}

// Status returns the status for url, or "" when it was never probed
func (t *Tracker) Status(url string) Status {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.statuses[url]
}

func (t *Tracker) Snapshot() map[string]Status {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make(map[string]Status, len(t.statuses))
	for k, v := range t.statuses {
		out[k] = v
	}
	return out
}

// Settled reports whether no URL is still being checked
func (t *Tracker) Settled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, s := range t.statuses {
		if s == types.StatusChecking {
			return false
		}
	}
	return true
}
