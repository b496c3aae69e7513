package probe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/studiowebux/oasedit/internal/types"
)

func statusServer(code int) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(code)
	}))
}

func TestProbeClassifiesServers(t *testing.T) {
	s1 := statusServer(http.StatusOK)
	defer s1.Close()
	s2 := statusServer(http.StatusNotFound)
	defer s2.Close()
	s3 := statusServer(http.StatusOK)
	defer s3.Close()

	p := New(Options{Timeout: 5 * time.Second, Logger: zerolog.Nop()})
	got := p.Probe(context.Background(), []string{s1.URL, s2.URL, s3.URL}, nil)

	expected := []Status{types.StatusLive, types.StatusUnreachable, types.StatusLive}
	if len(got) != len(expected) {
		t.Fatalf("Expected %d statuses, got %d", len(expected), len(got))
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Errorf("Server %d: expected %s, got %s", i, expected[i], got[i])
		}
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		code     int
		expected Status
	}{
		{200, types.StatusLive},
		{204, types.StatusLive},
		{301, types.StatusLive},
		{401, types.StatusLive},
		{404, types.StatusUnreachable},
		{500, types.StatusLive},
	}
	for _, tt := range tests {
		if got := classify(tt.code); got != tt.expected {
			t.Errorf("classify(%d): expected %s, got %s", tt.code, tt.expected, got)
		}
	}
}

func TestProbeReportsCheckingFirst(t *testing.T) {
	s := statusServer(http.StatusOK)
	defer s.Close()

	var updates []Update
	p := New(Options{Logger: zerolog.Nop()})
	p.Probe(context.Background(), []string{s.URL, "not a url"}, func(u Update) {
		updates = append(updates, u)
	})

	if len(updates) != 4 {
		t.Fatalf("Expected 4 updates, got %d", len(updates))
	}
	for i := 0; i < 2; i++ {
		if updates[i].Status != types.StatusChecking {
			t.Errorf("Expected update %d to be checking, got %s", i, updates[i].Status)
		}
	}
	final := map[int]Status{}
	for _, u := range updates[2:] {
		final[u.Index] = u.Status
	}
	if final[0] != types.StatusLive || final[1] != types.StatusUnreachable {
		t.Errorf("Unexpected final statuses %v", final)
	}
}

func TestProbeSettlesIndependently(t *testing.T) {
	release := make(chan struct{})
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer slow.Close()
	fast := statusServer(http.StatusOK)
	defer fast.Close()

	var once sync.Once
	var order []int
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	p := New(Options{Logger: zerolog.Nop()})
	got := p.Probe(ctx, []string{slow.URL, fast.URL}, func(u Update) {
		if u.Status == types.StatusChecking {
			return
		}
		order = append(order, u.Index)
		if u.Index == 1 {
			once.Do(func() { close(release) })
		}
	})

	if len(order) != 2 || order[0] != 1 || order[1] != 0 {
		t.Errorf("Expected fast server to settle first, got order %v", order)
	}
	if got[0] != types.StatusLive || got[1] != types.StatusLive {
		t.Errorf("Expected both live, got %v", got)
	}
}

func TestProbeUnreachable(t *testing.T) {
	s := statusServer(http.StatusOK)
	url := s.URL
	s.Close()

	p := New(Options{Timeout: time.Second, Logger: zerolog.Nop()})
	tests := []string{url, "", "/relative/path", "http://"}
	for _, u := range tests {
		if got := p.Check(context.Background(), u); got != types.StatusUnreachable {
			t.Errorf("Check(%q): expected unreachable, got %s", u, got)
		}
	}
}

func TestProbeWebSocket(t *testing.T) {
	upgrader := websocket.Upgrader{}
	ws := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conn.Close()
	}))
	defer ws.Close()
	missing := statusServer(http.StatusNotFound)
	defer missing.Close()
	plain := statusServer(http.StatusOK)
	defer plain.Close()

	toWS := func(u string) string { return "ws" + strings.TrimPrefix(u, "http") }

	p := New(Options{Timeout: 5 * time.Second, Logger: zerolog.Nop()})
	tests := []struct {
		name     string
		url      string
		expected Status
	}{
		{"handshake accepted", toWS(ws.URL), types.StatusLive},
		{"handshake rejected with 404", toWS(missing.URL), types.StatusUnreachable},
		{"plain HTTP answers", toWS(plain.URL), types.StatusLive},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.Check(context.Background(), tt.url); got != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestTracker(t *testing.T) {
	tr := NewTracker()
	tr.Reset([]string{"a", "b"})
	if tr.Settled() {
		t.Error("Expected tracker not to be settled after reset")
	}

	tr.Apply(Update{URL: "a", Status: types.StatusLive})
	if tr.Status("a") != types.StatusLive || tr.Status("b") != types.StatusChecking {
		t.Errorf("Unexpected snapshot %v", tr.Snapshot())
	}

	tr.Apply(Update{URL: "b", Status: types.StatusUnreachable})
	if !tr.Settled() {
		t.Error("Expected tracker to be settled")
	}
	if tr.Status("c") != "" {
		t.Errorf("Expected empty status for unknown URL, got %s", tr.Status("c"))
	}

	snap := tr.Snapshot()
	snap["a"] = types.StatusChecking
	if tr.Status("a") != types.StatusLive {
		t.Error("Expected snapshot to be a copy")
	}
}
