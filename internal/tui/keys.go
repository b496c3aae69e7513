package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/studiowebux/oasedit/internal/keybinds"
)

// modeContexts maps each mode to its keybinding context
var modeContexts = map[Mode]keybinds.Context{
	ModeBrowse:    keybinds.ContextBrowse,
	ModeSearch:    keybinds.ContextSearch,
	ModeForm:      keybinds.ContextForm,
	ModeEditField: keybinds.ContextEditField,
	ModeResponse:  keybinds.ContextResponse,
	ModeServers:   keybinds.ContextServers,
	ModeHistory:   keybinds.ContextHistory,
	ModeTagFilter: keybinds.ContextTags,
}

// handleKeyPress routes key presses to the handler of the current mode
func (m *Model) handleKeyPress(msg tea.KeyMsg) tea.Cmd {
	if action, ok := m.keys.Match(keybinds.ContextGlobal, msg.String()); ok && action == keybinds.ActionQuitForce {
		return tea.Quit
	}

	switch m.mode {
	case ModeSearch:
		return m.handleSearchKeys(msg)
	case ModeEditField:
		return m.handleEditFieldKeys(msg)
	case ModeForm:
		return m.handleFormKeys(msg)
	case ModeResponse:
		return m.handleResponseKeys(msg)
	case ModeServers:
		return m.handleServerKeys(msg)
	case ModeHistory:
		return m.handleHistoryKeys(msg)
	case ModeTagFilter:
		return m.handleTagKeys(msg)
	case ModeHelp:
		m.mode = m.prevMode
		return nil
	}
	return m.handleBrowseKeys(msg)
}

// action returns the action bound to msg in the context of the current mode
func (m *Model) action(msg tea.KeyMsg) keybinds.Action {
	return m.actionIn(modeContexts[m.mode], msg)
}

func (m *Model) actionIn(context keybinds.Context, msg tea.KeyMsg) keybinds.Action {
	action, _ := m.keys.Match(context, msg.String())
	return action
}

// handleSharedKeys handles keys shared by the browse, form and response modes
func (m *Model) handleSharedKeys(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch m.actionIn(keybinds.ContextShared, msg) {
	case keybinds.ActionSend:
		return m.sendRequest(), true
	case keybinds.ActionToggleTheme:
		m.toggleTheme()
		return nil, true
	case keybinds.ActionToggleHeaders:
		m.showHeaders = !m.showHeaders
		m.updateResponseView()
		return nil, true
	case keybinds.ActionCopyBody:
		if body := m.responseBody(); body != "" {
			return copyToClipboard("response body", body), true
		}
		m.statusMsg = "Nothing to copy"
		return nil, true
	case keybinds.ActionCopyURL:
		if u := m.responseURL(); u != "" {
			return copyToClipboard("request URL", u), true
		}
		m.statusMsg = "Nothing to copy"
		return nil, true
	case keybinds.ActionOpenServers:
		m.mode = ModeServers
		return nil, true
	case keybinds.ActionOpenHistory:
		m.mode = ModeHistory
		if m.hist == nil {
			m.statusMsg = "History is disabled"
		}
		return nil, true
	case keybinds.ActionRecheckServers:
		return m.startProbe(), true
	case keybinds.ActionHelp:
		m.prevMode = m.mode
		m.mode = ModeHelp
		m.updateHelpView()
		return nil, true
	}
	return nil, false
}

func (m *Model) handleBrowseKeys(msg tea.KeyMsg) tea.Cmd {
	if cmd, ok := m.handleSharedKeys(msg); ok {
		return cmd
	}
	switch m.action(msg) {
	case keybinds.ActionQuit:
		return tea.Quit
	case keybinds.ActionNavigateUp:
		m.endpoints.Navigate(-1)
		return m.selectionChanged()
	case keybinds.ActionNavigateDown:
		m.endpoints.Navigate(1)
		return m.selectionChanged()
	case keybinds.ActionOpenForm:
		if m.endpoints.Current() != nil {
			m.mode = ModeForm
		}
	case keybinds.ActionFocusResponse:
		m.mode = ModeResponse
	case keybinds.ActionSearch:
		m.mode = ModeSearch
		m.input.SetValue(m.endpoints.Query())
		m.input.Placeholder = "path, summary, operationId or method"
		m.input.Focus()
	case keybinds.ActionTagFilter:
		m.tagIndex = 0
		m.mode = ModeTagFilter
	case keybinds.ActionClearSearch:
		if m.endpoints.Query() != "" {
			m.endpoints.SetQuery("")
			return m.selectionChanged()
		}
	case keybinds.ActionPageUp:
		m.responseView.HalfViewUp()
	case keybinds.ActionPageDown:
		m.responseView.HalfViewDown()
	}
	return nil
}

func (m *Model) handleSearchKeys(msg tea.KeyMsg) tea.Cmd {
	switch m.action(msg) {
	case keybinds.ActionSubmit:
		m.input.Blur()
		m.mode = ModeBrowse
		return nil
	case keybinds.ActionCancel:
		m.input.Blur()
		m.endpoints.SetQuery("")
		m.mode = ModeBrowse
		return m.selectionChanged()
	case keybinds.ActionNavigateUp:
		m.endpoints.Navigate(-1)
		return m.selectionChanged()
	case keybinds.ActionNavigateDown:
		m.endpoints.Navigate(1)
		return m.selectionChanged()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.endpoints.SetQuery(m.input.Value())
	return tea.Batch(cmd, m.selectionChanged())
}

func (m *Model) handleFormKeys(msg tea.KeyMsg) tea.Cmd {
	if cmd, ok := m.handleSharedKeys(msg); ok {
		return cmd
	}
	switch m.action(msg) {
	case keybinds.ActionBack:
		m.mode = ModeBrowse
	case keybinds.ActionNavigateUp:
		m.form.Navigate(-1)
	case keybinds.ActionNavigateDown:
		m.form.Navigate(1)
	case keybinds.ActionCycleServer:
		if f := m.form.Current(); f != nil && f.Kind == FieldServer {
			m.form.CycleServer()
			m.form.Apply(m.runner.State())
		}
	case keybinds.ActionEditField:
		f := m.form.Current()
		if f == nil {
			return nil
		}
		m.mode = ModeEditField
		m.input.SetValue(f.Value)
		m.input.Placeholder = f.Description
		m.input.CursorEnd()
		return m.input.Focus()
	case keybinds.ActionClearField:
		m.form.SetValue("")
		m.form.Apply(m.runner.State())
	case keybinds.ActionFocusResponse:
		m.mode = ModeResponse
	}
	return nil
}

func (m *Model) handleEditFieldKeys(msg tea.KeyMsg) tea.Cmd {
	switch m.action(msg) {
	case keybinds.ActionSubmit:
		m.form.SetValue(strings.TrimRight(m.input.Value(), " "))
		m.form.Apply(m.runner.State())
		m.input.Blur()
		m.mode = ModeForm
		return nil
	case keybinds.ActionCancel:
		m.input.Blur()
		m.mode = ModeForm
		return nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

func (m *Model) handleResponseKeys(msg tea.KeyMsg) tea.Cmd {
	if cmd, ok := m.handleSharedKeys(msg); ok {
		return cmd
	}
	switch m.action(msg) {
	case keybinds.ActionBack:
		m.mode = ModeBrowse
	case keybinds.ActionNavigateUp:
		m.responseView.LineUp(1)
	case keybinds.ActionNavigateDown:
		m.responseView.LineDown(1)
	case keybinds.ActionGoToTop:
		m.responseView.GotoTop()
	case keybinds.ActionGoToBottom:
		m.responseView.GotoBottom()
	case keybinds.ActionPageUp:
		m.responseView.HalfViewUp()
	case keybinds.ActionPageDown:
		m.responseView.HalfViewDown()
	}
	return nil
}

func (m *Model) handleServerKeys(msg tea.KeyMsg) tea.Cmd {
	switch m.action(msg) {
	case keybinds.ActionBack:
		m.mode = ModeBrowse
	case keybinds.ActionNavigateUp:
		m.servers.Navigate(-1)
	case keybinds.ActionNavigateDown:
		m.servers.Navigate(1)
	case keybinds.ActionRecheckServers:
		return m.startProbe()
	case keybinds.ActionSelect:
		srv := m.servers.Current()
		key := m.currentKey()
		if srv == nil || key == "" {
			return nil
		}
		m.runner.State().SetServer(key, srv.URL)
		m.loadForm()
		m.statusMsg = "Server: " + srv.Expanded
		m.mode = ModeForm
	}
	return nil
}

func (m *Model) handleHistoryKeys(msg tea.KeyMsg) tea.Cmd {
	if m.history.GetSearchActive() {
		switch m.actionIn(keybinds.ContextHistorySearch, msg) {
		case keybinds.ActionSubmit:
			m.input.Blur()
			m.history.DeactivateSearch()
		case keybinds.ActionCancel:
			m.input.Blur()
			m.history.ClearSearch()
		default:
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			m.history.SetSearchQuery(m.input.Value())
			return cmd
		}
		return nil
	}

	switch m.action(msg) {
	case keybinds.ActionBack:
		m.mode = ModeBrowse
	case keybinds.ActionNavigateUp:
		m.history.Navigate(-1)
	case keybinds.ActionNavigateDown:
		m.history.Navigate(1)
	case keybinds.ActionSelect:
		if entry := m.history.GetCurrentEntry(); entry != nil {
			m.shownEntry = entry
			m.updateResponseView()
			m.mode = ModeResponse
		}
	case keybinds.ActionTogglePreview:
		m.history.TogglePreview()
	case keybinds.ActionDelete:
		return m.deleteHistoryEntry()
	case keybinds.ActionSearch:
		m.history.ActivateSearch()
		m.input.SetValue(m.history.GetSearchQuery())
		m.input.Placeholder = "url, status, date or error"
		return m.input.Focus()
	}
	return nil
}

func (m *Model) handleTagKeys(msg tea.KeyMsg) tea.Cmd {
	tags := m.endpoints.AllTags()
	switch m.action(msg) {
	case keybinds.ActionBack:
		m.mode = ModeBrowse
		return m.selectionChanged()
	case keybinds.ActionNavigateUp:
		if len(tags) > 0 {
			m.tagIndex = (m.tagIndex - 1 + len(tags)) % len(tags)
		}
	case keybinds.ActionNavigateDown:
		if len(tags) > 0 {
			m.tagIndex = (m.tagIndex + 1) % len(tags)
		}
	case keybinds.ActionToggleTag:
		if m.tagIndex < len(tags) {
			m.endpoints.ToggleTag(tags[m.tagIndex])
		}
	case keybinds.ActionClearTags:
		m.endpoints.ClearTags()
	}
	return nil
}
