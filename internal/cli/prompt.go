package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/studiowebux/oasedit/internal/document"
	"github.com/studiowebux/oasedit/internal/editor"
	"github.com/studiowebux/oasedit/internal/runner"
)

// ErrSelectionCancelled is returned when the selector is closed without a choice
var ErrSelectionCancelled = errors.New("selection cancelled")

var (
	titleStyle        = lipgloss.NewStyle().MarginLeft(2).Bold(true)
	itemStyle         = lipgloss.NewStyle().PaddingLeft(4)
	selectedItemStyle = lipgloss.NewStyle().PaddingLeft(2).Foreground(lipgloss.Color("170"))
	helpStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).MarginTop(1).MarginLeft(2)
)

// Option is one selectable entry. Value is returned, Label is shown.
type Option struct {
	Value string
	Label string
	Note  string
}

type item struct {
	option   Option
	isActive bool
}

func (i item) FilterValue() string {
	return i.option.Value + " " + i.option.Label
}

func (i item) Title() string {
	title := i.option.Label
	if title == "" {
		title = i.option.Value
	}
	if i.option.Note != "" {
		title += fmt.Sprintf(" (%s)", i.option.Note)
	}
	if i.isActive {
		title += " [active]"
	}
	return title
}

func (i item) Description() string { return "" }

type selectorModel struct {
	list     list.Model
	choice   string
	quitting bool
}

func newSelectorModel(title string, options []Option, active int) selectorModel {
	items := make([]list.Item, 0, len(options))
	for i, opt := range options {
		items = append(items, item{option: opt, isActive: i == active})
	}

	const defaultWidth = 80
	const listHeight = 14

	l := list.New(items, itemDelegate{}, defaultWidth, listHeight)
	l.Title = title
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = titleStyle

	if active >= 0 && active < len(items) {
		l.Select(active)
	}
	return selectorModel{list: l}
}

func (m selectorModel) Init() tea.Cmd {
	return nil
}

func (m selectorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetWidth(msg.Width)
		return m, nil

	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.quitting = true
			m.choice = ""
			return m, tea.Quit

		case "enter":
			if i, ok := m.list.SelectedItem().(item); ok {
				m.choice = i.option.Value
			}
			m.quitting = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m selectorModel) View() string {
	if m.quitting {
		return ""
	}

	help := helpStyle.Render("↑/↓: navigate • /: filter • enter: select • q/esc: cancel")
	return fmt.Sprintf("%s\n\n%s", m.list.View(), help)
}

// SelectOption shows an interactive list and returns the chosen value
func SelectOption(title string, options []Option, active int) (string, error) {
	if len(options) == 0 {
		return "", fmt.Errorf("%s: nothing to select", title)
	}

	p := tea.NewProgram(newSelectorModel(title, options, active))
	finalModel, err := p.Run()
	if err != nil {
		return "", fmt.Errorf("error running selector: %w", err)
	}

	result := finalModel.(selectorModel)
	if result.choice == "" {
		return "", ErrSelectionCancelled
	}
	return result.choice, nil
}

// ServerOptions lists the document's servers. Labels show variables
// replaced by their defaults.
func ServerOptions(doc *document.Document) []Option {
	if doc == nil {
		return nil
	}
	options := make([]Option, 0, len(doc.Servers))
	for _, s := range doc.Servers {
		options = append(options, Option{Value: s.URL, Label: runner.ExpandServerURL(s), Note: s.Description})
	}
	return options
}

// EndpointOptions lists every operation as "METHOD path"
func EndpointOptions(endpoints []editor.Endpoint) []Option {
	options := make([]Option, 0, len(endpoints))
	for _, ep := range endpoints {
		label := fmt.Sprintf("%-7s %s", strings.ToUpper(ep.Method), ep.Path)
		note := ep.Summary
		if ep.Deprecated {
			note = strings.TrimSpace("deprecated " + note)
		}
		options = append(options, Option{
			Value: strings.ToUpper(ep.Method) + " " + ep.Path,
			Label: label,
			Note:  note,
		})
	}
	return options
}

// SplitEndpoint splits a value produced by EndpointOptions
func SplitEndpoint(value string) (method, path string, err error) {
	method, path, ok := strings.Cut(strings.TrimSpace(value), " ")
	if !ok || path == "" {
		return "", "", fmt.Errorf("invalid endpoint %q (expected \"METHOD /path\")", value)
	}
	return strings.ToLower(method), strings.TrimSpace(path), nil
}

// itemDelegate is a custom list item delegate
type itemDelegate struct{}

func (d itemDelegate) Height() int                             { return 1 }
func (d itemDelegate) Spacing() int                            { return 0 }
func (d itemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	i, ok := listItem.(item)
	if !ok {
		return
	}

	str := fmt.Sprintf("%d. %s", index+1, i.Title())

	fn := itemStyle.Render
	if index == m.Index() {
		fn = func(s ...string) string {
			return selectedItemStyle.Render("> " + strings.Join(s, " "))
		}
	}

	fmt.Fprint(w, fn(str))
}
