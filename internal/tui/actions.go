package tui

import (
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/studiowebux/oasedit/internal/probe"
	"github.com/studiowebux/oasedit/internal/store"
)

// waitForDocChange blocks until the store reports a replacement
func waitForDocChange(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return docChangedMsg{}
	}
}

// startProbe probes every declared server. Updates arrive one message at a
// time; results of an older probe are dropped.
func (m *Model) startProbe() tea.Cmd {
	if m.prober == nil {
		return nil
	}
	urls := m.servers.StartProbe()
	if len(urls) == 0 {
		return nil
	}
	m.probeGen++
	gen := m.probeGen

	// Every URL reports checking then its settled status
	ch := make(chan tea.Msg, 2*len(urls)+1)
	var out chan<- tea.Msg = ch
	go func() {
		defer close(out)
		m.prober.Probe(m.ctx, urls, func(u probe.Update) {
			out <- probeUpdateMsg{gen: gen, update: u, ch: ch}
		})
		out <- probeDoneMsg{gen: gen}
	}()
	return waitForProbe(ch)
}

func waitForProbe(ch <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return msg
	}
}

// sendRequest applies the form and sends the selected operation
func (m *Model) sendRequest() tea.Cmd {
	ep := m.endpoints.Current()
	if ep == nil {
		m.errorMsg = categorizeError(store.ErrNoDocument)
		return nil
	}
	key := m.currentKey()
	state := m.runner.State()
	if state.Busy(key) {
		m.statusMsg = "Request already in flight"
		return nil
	}

	m.form.Apply(state)
	if missing := m.form.Missing(); len(missing) > 0 {
		m.statusMsg = "Sending without " + strings.Join(missing, ", ")
	} else {
		m.statusMsg = "Sending " + strings.ToUpper(ep.Method) + " " + ep.Path
	}
	m.errorMsg = ""

	path, method := ep.Path, ep.Method
	return func() tea.Msg {
		return responseMsg{key: key, result: m.runner.Send(m.ctx, path, method)}
	}
}

// loadHistory reads the history of the selected operation
func (m *Model) loadHistory() tea.Cmd {
	ep := m.endpoints.Current()
	if m.hist == nil || ep == nil {
		return nil
	}
	path, method := ep.Path, ep.Method
	hist := m.hist
	return func() tea.Msg {
		entries, err := hist.LoadForOperation(path, method)
		if len(entries) > HistoryLimit {
			entries = entries[:HistoryLimit]
		}
		return historyLoadedMsg{path: path, method: method, entries: entries, err: err}
	}
}

func (m *Model) deleteHistoryEntry() tea.Cmd {
	entry := m.history.GetCurrentEntry()
	if m.hist == nil || entry == nil {
		return nil
	}
	id := entry.ID
	hist := m.hist
	return func() tea.Msg {
		return historyDeletedMsg{id: id, err: hist.Delete(id)}
	}
}

// copyToClipboard copies text in the background
func copyToClipboard(what, text string) tea.Cmd {
	return func() tea.Msg {
		return clipboardMsg{what: what, err: clipboard.WriteAll(text)}
	}
}

// toggleTheme switches light/dark and persists the choice
func (m *Model) toggleTheme() {
	if m.theme == nil {
		return
	}
	theme := m.theme.Toggle()
	lipgloss.SetHasDarkBackground(theme == store.ThemeDark)
	m.statusMsg = "Theme: " + string(theme)
	m.updateResponseView()
}
