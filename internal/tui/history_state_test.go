package tui

import (
	"sync"
	"testing"

	"github.com/studiowebux/oasedit/internal/types"
)

func sampleHistory() []types.HistoryEntry {
	return []types.HistoryEntry{
		{ID: 3, Method: "GET", URL: "http://api.test/v1/pets/7", Timestamp: "2025-01-01 12:00:00", ResponseStatus: 200, ResponseStatusText: "OK"},
		{ID: 2, Method: "GET", URL: "http://api.test/v1/pets/8", Timestamp: "2025-01-01 11:00:00", ResponseStatus: 404, ResponseStatusText: "Not Found"},
		{ID: 1, Method: "GET", URL: "http://down.test/v1/pets/7", Timestamp: "2025-01-01 10:00:00", Error: "connection refused"},
	}
}

func TestNewHistoryState(t *testing.T) {
	state := NewHistoryState()

	if state.GetIndex() != 0 {
		t.Errorf("Expected index 0, got %d", state.GetIndex())
	}
	if !state.GetPreviewVisible() {
		t.Error("Expected preview visible by default")
	}
	if state.GetSearchActive() {
		t.Error("Expected search inactive by default")
	}
	if len(state.GetEntries()) != 0 {
		t.Errorf("Expected 0 entries, got %d", len(state.GetEntries()))
	}
	if state.GetCurrentEntry() != nil {
		t.Error("Expected nil entry for empty state")
	}
}

func TestHistoryState_SetEntries(t *testing.T) {
	state := NewHistoryState()
	state.SetEntries("/pets/{petId}", "get", sampleHistory())

	path, method := state.Operation()
	if path != "/pets/{petId}" || method != "get" {
		t.Errorf("Expected /pets/{petId} get, got %s %s", path, method)
	}
	if state.Total() != 3 {
		t.Errorf("Expected 3 entries, got %d", state.Total())
	}

	current := state.GetCurrentEntry()
	if current == nil || current.ID != 3 {
		t.Fatalf("Expected entry 3 selected, got %+v", current)
	}

	// Returned entries are copies
	current.URL = "changed"
	if state.GetCurrentEntry().URL == "changed" {
		t.Error("Expected GetCurrentEntry to return a copy")
	}
}

func TestHistoryState_Navigate(t *testing.T) {
	state := NewHistoryState()
	state.SetEntries("/pets", "get", sampleHistory())

	state.Navigate(1)
	if state.GetIndex() != 1 {
		t.Errorf("Expected index 1, got %d", state.GetIndex())
	}

	state.Navigate(2)
	if state.GetIndex() != 0 {
		t.Errorf("Expected index 0 (wrap), got %d", state.GetIndex())
	}

	state.Navigate(-1)
	if state.GetIndex() != 2 {
		t.Errorf("Expected index 2 (wrap), got %d", state.GetIndex())
	}
}

func TestHistoryState_Search(t *testing.T) {
	tests := []struct {
		query string
		want  []int64
	}{
		{"", []int64{3, 2, 1}},
		{"404", []int64{2}},
		{"not found", []int64{2}},
		{"DOWN.test", []int64{1}},
		{"refused", []int64{1}},
		{"12:00", []int64{3}},
		{"nothing", nil},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			state := NewHistoryState()
			state.SetEntries("/pets", "get", sampleHistory())
			state.SetSearchQuery(tt.query)

			entries := state.GetEntries()
			if len(entries) != len(tt.want) {
				t.Fatalf("Expected %d entries, got %d", len(tt.want), len(entries))
			}
			for i, id := range tt.want {
				if entries[i].ID != id {
					t.Errorf("Expected entry %d at %d, got %d", id, i, entries[i].ID)
				}
			}
			if state.Total() != 3 {
				t.Errorf("Expected total 3, got %d", state.Total())
			}
		})
	}
}

func TestHistoryState_SearchSurvivesReload(t *testing.T) {
	state := NewHistoryState()
	state.ActivateSearch()
	state.SetSearchQuery("404")
	state.SetEntries("/pets", "get", sampleHistory())

	if len(state.GetEntries()) != 1 {
		t.Errorf("Expected 1 entry after reload, got %d", len(state.GetEntries()))
	}

	state.ClearSearch()
	if state.GetSearchActive() {
		t.Error("Expected search inactive after ClearSearch")
	}
	if len(state.GetEntries()) != 3 {
		t.Errorf("Expected 3 entries after ClearSearch, got %d", len(state.GetEntries()))
	}
}

func TestHistoryState_Remove(t *testing.T) {
	state := NewHistoryState()
	state.SetEntries("/pets", "get", sampleHistory())
	state.Navigate(2)

	state.Remove(1)
	if state.Total() != 2 {
		t.Errorf("Expected 2 entries, got %d", state.Total())
	}
	if state.GetIndex() != 1 {
		t.Errorf("Expected index clamped to 1, got %d", state.GetIndex())
	}

	state.Remove(99)
	if state.Total() != 2 {
		t.Errorf("Expected 2 entries after removing unknown id, got %d", state.Total())
	}
}

func TestHistoryState_PreviewToggle(t *testing.T) {
	state := NewHistoryState()

	state.TogglePreview()
	if state.GetPreviewVisible() {
		t.Error("Expected preview hidden after toggle")
	}
	state.TogglePreview()
	if !state.GetPreviewVisible() {
		t.Error("Expected preview visible after second toggle")
	}

	view := state.GetPreviewView()
	view.Width = 100
	state.SetPreviewView(view)
	if state.GetPreviewView().Width != 100 {
		t.Errorf("Expected width 100, got %d", state.GetPreviewView().Width)
	}
}

func TestHistoryState_ConcurrentAccess(t *testing.T) {
	state := NewHistoryState()
	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		wg.Add(3)
		go func() {
			defer wg.Done()
			state.SetEntries("/pets", "get", sampleHistory())
		}()
		go func() {
			defer wg.Done()
			state.Navigate(1)
			_ = state.GetCurrentEntry()
		}()
		go func() {
			defer wg.Done()
			state.SetSearchQuery("api")
			_ = state.GetEntries()
		}()
	}
	wg.Wait()
}
