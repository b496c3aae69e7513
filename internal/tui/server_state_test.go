package tui

import (
	"testing"

	"github.com/studiowebux/oasedit/internal/document"
	"github.com/studiowebux/oasedit/internal/probe"
	"github.com/studiowebux/oasedit/internal/types"
)

func sampleServers() []document.Server {
	return []document.Server{
		{URL: "https://{env}.example.com", Description: "main", Variables: map[string]document.ServerVariable{"env": {Default: "api"}}},
		{URL: "http://localhost:8080"},
	}
}

func TestServerState_SetServers(t *testing.T) {
	s := NewServerState()

	if !s.SetServers(sampleServers()) {
		t.Error("Expected change on first set")
	}
	if s.SetServers(sampleServers()) {
		t.Error("Expected no change for the same servers")
	}

	changed := sampleServers()
	changed[0].Variables = map[string]document.ServerVariable{"env": {Default: "staging"}}
	if !s.SetServers(changed) {
		t.Error("Expected change when a default changes")
	}

	changed[1].Description = "local"
	if s.SetServers(changed) {
		t.Error("Expected no change for a description edit")
	}

	urls := s.URLs()
	if len(urls) != 2 || urls[0] != "https://staging.example.com" {
		t.Errorf("Expected expanded URLs, got %v", urls)
	}
}

func TestServerState_Probe(t *testing.T) {
	s := NewServerState()
	s.SetServers(sampleServers())

	for _, e := range s.Entries() {
		if e.Status != "" {
			t.Errorf("Expected no status before probing, got %s", e.Status)
		}
	}

	urls := s.StartProbe()
	if !s.Probing() {
		t.Error("Expected probing")
	}
	for _, e := range s.Entries() {
		if e.Status != types.StatusChecking {
			t.Errorf("Expected checking, got %s", e.Status)
		}
	}

	s.Apply(probe.Update{Index: 0, URL: urls[0], Status: types.StatusLive})
	s.Apply(probe.Update{Index: 1, URL: urls[1], Status: types.StatusUnreachable})
	s.FinishProbe()

	if s.Probing() {
		t.Error("Expected probing finished")
	}
	live, total := s.Counts()
	if live != 1 || total != 2 {
		t.Errorf("Expected 1/2 live, got %d/%d", live, total)
	}

	entries := s.Entries()
	if entries[0].URL != "https://{env}.example.com" || entries[0].Expanded != "https://api.example.com" {
		t.Errorf("Expected declared and expanded URL, got %+v", entries[0])
	}
	if entries[0].Description != "main" {
		t.Errorf("Expected description main, got %q", entries[0].Description)
	}
}

func TestServerState_StartProbeWithoutServers(t *testing.T) {
	s := NewServerState()
	if urls := s.StartProbe(); len(urls) != 0 {
		t.Errorf("Expected no URLs, got %v", urls)
	}
	if s.Probing() {
		t.Error("Expected no probing without servers")
	}
}

func TestServerState_Navigate(t *testing.T) {
	s := NewServerState()
	if s.Current() != nil {
		t.Error("Expected nil server for empty state")
	}
	s.Navigate(1)

	s.SetServers(sampleServers())
	s.Navigate(-1)
	if s.Index() != 1 {
		t.Errorf("Expected wrap to 1, got %d", s.Index())
	}
	if s.Current().URL != "http://localhost:8080" {
		t.Errorf("Expected localhost selected, got %s", s.Current().URL)
	}

	// Selection past the end is reset
	s.SetServers(sampleServers()[:1])
	if s.Index() != 0 {
		t.Errorf("Expected index reset to 0, got %d", s.Index())
	}
}
