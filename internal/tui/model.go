package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"
	"github.com/studiowebux/oasedit/internal/document"
	"github.com/studiowebux/oasedit/internal/editor"
	"github.com/studiowebux/oasedit/internal/history"
	"github.com/studiowebux/oasedit/internal/keybinds"
	"github.com/studiowebux/oasedit/internal/probe"
	"github.com/studiowebux/oasedit/internal/runner"
	"github.com/studiowebux/oasedit/internal/store"
	"github.com/studiowebux/oasedit/internal/types"
)

// Mode represents the current UI mode
type Mode int

const (
	ModeBrowse Mode = iota
	ModeSearch
	ModeForm
	ModeEditField
	ModeResponse
	ModeServers
	ModeHistory
	ModeTagFilter
	ModeHelp
)

func (m Mode) String() string {
	switch m {
	case ModeBrowse:
		return "BROWSE"
	case ModeSearch:
		return "SEARCH"
	case ModeForm:
		return "FORM"
	case ModeEditField:
		return "EDIT"
	case ModeResponse:
		return "RESPONSE"
	case ModeServers:
		return "SERVERS"
	case ModeHistory:
		return "HISTORY"
	case ModeTagFilter:
		return "TAGS"
	case ModeHelp:
		return "HELP"
	}
	return "?"
}

// Options wires the model to the application services. History may be nil;
// nil Keys uses the default keybindings.
type Options struct {
	Store   *store.Store
	Theme   *store.ThemeStore
	Runner  *runner.Runner
	Prober  *probe.Prober
	History *history.Manager
	Keys    *keybinds.Registry
	Logger  zerolog.Logger
}

// Model is the Bubble Tea model of the editor
type Model struct {
	ctx    context.Context
	store  *store.Store
	theme  *store.ThemeStore
	runner *runner.Runner
	prober *probe.Prober
	hist   *history.Manager
	keys   *keybinds.Registry
	log    zerolog.Logger

	endpoints *EndpointState
	form      *FormState
	servers   *ServerState
	history   *HistoryState

	mode     Mode
	prevMode Mode
	width    int
	height   int

	input        textinput.Model // field editor and search box
	responseView viewport.Model
	helpView     viewport.Model

	// Entry shown in the response pane instead of the live result
	shownEntry *types.HistoryEntry

	showHeaders bool
	tagIndex    int

	statusMsg string
	errorMsg  string

	docCh       chan struct{}
	unsubscribe func()
	probeGen    int
}

// New creates the model and subscribes it to document changes
func New(ctx context.Context, opts Options) *Model {
	input := textinput.New()
	input.CharLimit = InputCharLimit

	m := &Model{
		ctx:          ctx,
		store:        opts.Store,
		theme:        opts.Theme,
		runner:       opts.Runner,
		prober:       opts.Prober,
		hist:         opts.History,
		keys:         opts.Keys,
		log:          opts.Logger,
		endpoints:    NewEndpointState(),
		form:         NewFormState(),
		servers:      NewServerState(),
		history:      NewHistoryState(),
		input:        input,
		responseView: viewport.New(80, 20),
		helpView:     viewport.New(80, 20),
		docCh:        make(chan struct{}, 1),
	}

	m.unsubscribe = opts.Store.Subscribe(func(*document.Document) {
		select {
		case m.docCh <- struct{}{}:
		default:
		}
	})

	if m.keys == nil {
		m.keys = keybinds.NewDefaultRegistry()
	}
	if m.theme != nil {
		lipgloss.SetHasDarkBackground(m.theme.Get() == store.ThemeDark)
	}
	m.refresh()
	return m
}

// Run starts the TUI and blocks until it exits
func Run(ctx context.Context, opts Options) error {
	m := New(ctx, opts)
	defer m.Cleanup()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(waitForDocChange(m.docCh), m.startProbe(), m.loadHistory())
}

// Cleanup removes the store subscription
func (m *Model) Cleanup() {
	if m.unsubscribe != nil {
		m.unsubscribe()
		m.unsubscribe = nil
	}
}

// Messages
type docChangedMsg struct{}

type responseMsg struct {
	key    string
	result *runner.Result
}

type probeUpdateMsg struct {
	gen    int
	update probe.Update
	ch     <-chan tea.Msg
}

type probeDoneMsg struct {
	gen int
}

type historyLoadedMsg struct {
	path    string
	method  string
	entries []types.HistoryEntry
	err     error
}

type historyDeletedMsg struct {
	id  int64
	err error
}

type clipboardMsg struct {
	what string
	err  error
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		cmd = m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()

	case docChangedMsg:
		before := m.currentKey()
		changed := m.refresh()
		cmds := []tea.Cmd{waitForDocChange(m.docCh)}
		if changed {
			cmds = append(cmds, m.startProbe())
		}
		if m.currentKey() != before {
			cmds = append(cmds, m.loadHistory())
		}
		cmd = tea.Batch(cmds...)

	case responseMsg:
		if msg.result.Failed() {
			m.errorMsg = categorizeRequestError(msg.result.Error)
		} else {
			m.errorMsg = ""
			m.statusMsg = fmt.Sprintf("%d %s in %s", msg.result.Status, msg.result.StatusText, runner.FormatDuration(msg.result.Duration))
		}
		if msg.key == m.currentKey() {
			m.shownEntry = nil
			m.updateResponseView()
			cmd = m.loadHistory()
		}

	case probeUpdateMsg:
		if msg.gen == m.probeGen {
			m.servers.Apply(msg.update)
		}
		cmd = waitForProbe(msg.ch)

	case probeDoneMsg:
		if msg.gen == m.probeGen {
			m.servers.FinishProbe()
			live, total := m.servers.Counts()
			m.statusMsg = fmt.Sprintf("%d/%d servers live", live, total)
		}

	case historyLoadedMsg:
		if msg.err != nil {
			m.log.Warn().Err(msg.err).Msg("failed to load history")
			break
		}
		if ep := m.endpoints.Current(); ep != nil && ep.Path == msg.path && ep.Method == msg.method {
			m.history.SetEntries(msg.path, msg.method, msg.entries)
		}

	case historyDeletedMsg:
		if msg.err != nil {
			m.errorMsg = "Failed to delete history entry: " + msg.err.Error()
			break
		}
		m.history.Remove(msg.id)
		m.statusMsg = "History entry deleted"

	case clipboardMsg:
		if msg.err != nil {
			m.errorMsg = "Clipboard unavailable: " + msg.err.Error()
		} else {
			m.statusMsg = "Copied " + msg.what
		}
	}

	return m, cmd
}

// currentKey returns the working state key of the selected operation
func (m *Model) currentKey() string {
	ep := m.endpoints.Current()
	if ep == nil {
		return ""
	}
	return runner.Key(ep.Path, ep.Method)
}

// refresh re-reads the stored document. It reports whether the declared
// servers changed.
func (m *Model) refresh() bool {
	doc := m.store.Get()
	if doc == nil {
		m.endpoints.SetEndpoints(nil)
		m.form.Clear()
		m.updateLayout()
		return m.servers.SetServers(nil)
	}

	endpoints, err := editor.NewPathEditor(m.store).Endpoints()
	if err != nil {
		m.errorMsg = categorizeError(err)
	}
	m.endpoints.SetEndpoints(endpoints)
	changed := m.servers.SetServers(doc.Servers)
	m.loadForm()
	return changed
}

// loadForm rebuilds the form for the selected operation
func (m *Model) loadForm() {
	ep := m.endpoints.Current()
	if ep == nil {
		m.form.Clear()
		m.updateLayout()
		return
	}
	if err := m.form.Load(m.store.Get(), ep.Path, ep.Method, m.runner.State()); err != nil {
		m.errorMsg = categorizeError(err)
	}
	m.updateLayout()
}

// selectionChanged reloads everything that depends on the selected operation
func (m *Model) selectionChanged() tea.Cmd {
	m.shownEntry = nil
	m.loadForm()
	return m.loadHistory()
}

// Title of the stored document for the sidebar header
func (m *Model) documentTitle() string {
	doc := m.store.Get()
	if doc == nil {
		return "No document"
	}
	title := doc.Title()
	if doc.Info != nil && doc.Info.Version != "" {
		title += " " + doc.Info.Version
	}
	return title
}
