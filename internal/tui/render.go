package tui

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/studiowebux/oasedit/internal/cli"
	"github.com/studiowebux/oasedit/internal/keybinds"
	"github.com/studiowebux/oasedit/internal/runner"
	"github.com/studiowebux/oasedit/internal/store"
	"github.com/studiowebux/oasedit/internal/types"
)

func (m *Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	sidebarWidth, rightWidth := m.columnWidths()
	mainHeight := m.mainHeight()

	sidebar := m.renderSidebar(sidebarWidth, mainHeight)
	sidebarBox := m.box(sidebar, sidebarWidth, mainHeight, m.mode == ModeBrowse || m.mode == ModeSearch)

	var right string
	if m.mode == ModeHelp {
		right = m.box(m.helpView.View(), rightWidth, mainHeight, true)
	} else {
		topHeight := m.topHeight()
		bottomHeight := mainHeight - topHeight - BorderSize

		top := m.box(m.renderTopPanel(rightWidth, topHeight), rightWidth, topHeight, m.mode != ModeBrowse && m.mode != ModeSearch && m.mode != ModeResponse)
		var bottom string
		if m.mode == ModeHistory && m.history.GetPreviewVisible() {
			bottom = m.renderHistoryPreview(rightWidth, bottomHeight)
		} else {
			bottom = m.renderResponse(bottomHeight)
		}
		right = lipgloss.JoinVertical(lipgloss.Left, top, m.box(bottom, rightWidth, bottomHeight, m.mode == ModeResponse))
	}

	mainView := lipgloss.JoinHorizontal(lipgloss.Top, sidebarBox, right)
	return lipgloss.JoinVertical(lipgloss.Left, mainView, m.renderStatusBar())
}

// box draws content in a rounded border, green when focused
func (m *Model) box(content string, width, height int, focused bool) string {
	border := colorGray
	if focused {
		border = colorGreen
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Width(width).
		Height(height).
		MaxHeight(height + BorderSize).
		Render(content)
}

// columnWidths returns the inner widths of the sidebar and the right panes
func (m *Model) columnWidths() (sidebar, right int) {
	sidebar = max(SidebarMinWidth, m.width*SidebarWidthRatio/100)
	if m.width < NarrowTerminal {
		sidebar = m.width / 2
	}
	right = m.width - sidebar - 2*BorderSize
	return max(sidebar, 1), max(right, 1)
}

// mainHeight is the inner height of a full-height pane
func (m *Model) mainHeight() int {
	return max(m.height-StatusBarHeight-BorderSize, 1)
}

// topHeight is the inner height of the upper right pane
func (m *Model) topHeight() int {
	limit := max(m.mainHeight()/FormMaxHeightRatio, 2)
	switch m.mode {
	case ModeServers, ModeHistory, ModeTagFilter:
		return limit
	}
	lines := len(m.form.Fields()) + 2
	return min(max(lines, 2), limit)
}

// updateLayout resizes the viewports after a resize or a form change
func (m *Model) updateLayout() {
	if m.width == 0 {
		return
	}
	_, rightWidth := m.columnWidths()
	mainHeight := m.mainHeight()

	m.helpView.Width = rightWidth
	m.helpView.Height = mainHeight

	m.responseView.Width = rightWidth
	m.responseView.Height = max(mainHeight-m.topHeight()-BorderSize-1, 1)

	preview := m.history.GetPreviewView()
	preview.Width = rightWidth
	preview.Height = m.responseView.Height
	m.history.SetPreviewView(preview)

	m.updateResponseView()
}

func (m *Model) renderSidebar(width, height int) string {
	var lines []string
	lines = append(lines, styleTitle.Render(truncate(m.documentTitle(), width)))

	visible := m.endpoints.Visible()
	info := fmt.Sprintf("%d/%d operations", len(visible), m.endpoints.Count())
	if tags := m.endpoints.Tags(); len(tags) > 0 {
		info += " [" + strings.Join(tags, ",") + "]"
	}
	lines = append(lines, styleSubtle.Render(truncate(info, width)))

	if m.mode == ModeSearch {
		lines = append(lines, "/"+m.input.View())
	} else if q := m.endpoints.Query(); q != "" {
		lines = append(lines, styleSubtle.Render(truncate("/"+q, width)))
	}

	if m.store.Get() == nil {
		lines = append(lines, "", styleSubtle.Render("Import a document with"), styleSubtle.Render("oasedit import <file|url>"))
		return strings.Join(lines, "\n")
	}

	room := height - len(lines)
	index := m.endpoints.Index()
	start, end := window(index, len(visible), room)
	for i := start; i < end; i++ {
		ep := visible[i]
		method := strings.ToUpper(ep.Method)
		pathText := truncate(ep.Path, width-8)
		var line string
		if i == index {
			line = styleSelected.Render(padRight(fmt.Sprintf("%-7s %s", method, pathText), width))
		} else {
			methodStyle := lipgloss.NewStyle().Foreground(methodColors[ep.Method])
			path := pathText
			if ep.Deprecated {
				path = styleStrike.Render(pathText)
			}
			line = methodStyle.Render(fmt.Sprintf("%-7s", method)) + " " + path
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// window returns the slice bounds that keep index visible in room lines
func window(index, total, room int) (int, int) {
	if room <= 0 || total == 0 {
		return 0, 0
	}
	if total <= room {
		return 0, total
	}
	start := index - room/2
	start = max(start, 0)
	start = min(start, total-room)
	return start, start + room
}

func (m *Model) renderTopPanel(width, height int) string {
	switch m.mode {
	case ModeServers:
		return m.renderServers(width, height)
	case ModeHistory:
		return m.renderHistory(width, height)
	case ModeTagFilter:
		return m.renderTags(width, height)
	}
	return m.renderForm(width, height)
}

func (m *Model) renderForm(width, height int) string {
	ep := m.endpoints.Current()
	if ep == nil {
		return styleSubtle.Render("No operation selected")
	}

	header := lipgloss.NewStyle().Bold(true).Foreground(methodColors[ep.Method]).Render(strings.ToUpper(ep.Method)) + " " + ep.Path
	if ep.Summary != "" {
		header += "  " + styleSubtle.Render(ep.Summary)
	}
	lines := []string{lipgloss.NewStyle().MaxWidth(width).Render(header)}

	fields := m.form.Fields()
	index := m.form.Index()
	labelWidth := 0
	for _, f := range fields {
		labelWidth = max(labelWidth, len(f.Label()))
	}

	start, end := window(index, len(fields), height-1)
	for i := start; i < end; i++ {
		f := fields[i]
		label := fmt.Sprintf("%-*s ", labelWidth, f.Label())
		var value string
		switch {
		case i == index && m.mode == ModeEditField:
			value = m.input.View()
		default:
			value = m.fieldValue(f, width-labelWidth-3)
		}
		prefix := "  "
		if i == index && (m.mode == ModeForm || m.mode == ModeEditField) {
			prefix = "> "
			label = styleSelected.Render(label)
		}
		lines = append(lines, prefix+label+value)
	}
	return strings.Join(lines, "\n")
}

// fieldValue renders a form value; secrets are masked
func (m *Model) fieldValue(f Field, width int) string {
	if f.Value == "" {
		switch f.Kind {
		case FieldServer:
			base := runner.BaseURL(m.store.Get(), "")
			if base == "" {
				return styleWarning.Render("no server declared")
			}
			return styleSubtle.Render(truncate("default "+base, width))
		case FieldCredential:
			return styleSubtle.Render("not set")
		}
		if f.Required {
			return styleWarning.Render("required")
		}
		return styleSubtle.Render(truncate(f.Description, width))
	}
	switch f.Kind {
	case FieldCredential:
		return strings.Repeat("*", min(len(f.Value), 8))
	case FieldBody:
		return truncate(strings.Join(strings.Fields(f.Value), " "), width)
	}
	return truncate(f.Value, width)
}

func (m *Model) renderServers(width, height int) string {
	lines := []string{styleTitle.Render("Servers")}
	if m.servers.Probing() {
		lines[0] += styleWarning.Render(" probing...")
	}

	entries := m.servers.Entries()
	if len(entries) == 0 {
		return strings.Join(append(lines, styleSubtle.Render("No servers declared")), "\n")
	}

	selected := ""
	if f := m.serverField(); f != nil {
		selected = f.Value
	}
	if selected == "" {
		selected = entries[0].URL
	}

	index := m.servers.Index()
	start, end := window(index, len(entries), height-1)
	for i := start; i < end; i++ {
		e := entries[i]
		marker := "  "
		if e.URL == selected {
			marker = "* "
		}
		text := truncate(e.Expanded, width-4)
		if e.Description != "" {
			text += " " + styleSubtle.Render(truncate(e.Description, max(width-len(text)-5, 0)))
		}
		line := statusIcon(e.Status) + " " + marker + text
		if i == index {
			line = styleSelected.Render(line)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (m *Model) serverField() *Field {
	for _, f := range m.form.Fields() {
		if f.Kind == FieldServer {
			return &f
		}
	}
	return nil
}

func statusIcon(s types.ServerStatus) string {
	switch s {
	case types.StatusLive:
		return styleSuccess.Render("●")
	case types.StatusUnreachable:
		return styleError.Render("●")
	case types.StatusChecking:
		return styleWarning.Render("○")
	}
	return styleSubtle.Render("·")
}

func (m *Model) renderHistory(width, height int) string {
	title := fmt.Sprintf("History (%d", len(m.history.GetEntries()))
	if q := m.history.GetSearchQuery(); q != "" {
		title += fmt.Sprintf("/%d", m.history.Total())
	}
	lines := []string{styleTitle.Render(title + ")")}

	if m.history.GetSearchActive() {
		lines = append(lines, "/"+m.input.View())
	}
	if m.hist == nil {
		return strings.Join(append(lines, styleSubtle.Render("History is disabled (history_enabled: false)")), "\n")
	}

	entries := m.history.GetEntries()
	if len(entries) == 0 {
		return strings.Join(append(lines, styleSubtle.Render("No requests sent yet")), "\n")
	}

	index := m.history.GetIndex()
	start, end := window(index, len(entries), height-len(lines))
	for i := start; i < end; i++ {
		e := entries[i]
		status := strconv.Itoa(e.ResponseStatus)
		style := statusStyle(e.ResponseStatus)
		if e.Error != "" {
			status, style = "ERR", styleError
		}
		line := fmt.Sprintf("%s %s %s", e.Timestamp, style.Render(fmt.Sprintf("%-3s", status)), runner.FormatDuration(e.Duration))
		if i == index {
			line = styleSelected.Render(padRight(line, width))
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderHistoryPreview(width, height int) string {
	view := m.history.GetPreviewView()
	view.Width = width
	view.Height = height
	entry := m.history.GetCurrentEntry()
	if entry == nil {
		view.SetContent(styleSubtle.Render("No entry selected"))
	} else {
		view.SetContent(m.renderEntry(entry))
	}
	m.history.SetPreviewView(view)
	return view.View()
}

func (m *Model) renderTags(width, height int) string {
	lines := []string{styleTitle.Render("Filter by tag") + styleSubtle.Render("  space toggle, c clear")}
	tags := m.endpoints.AllTags()
	if len(tags) == 0 {
		return strings.Join(append(lines, styleSubtle.Render("No tags used")), "\n")
	}
	active := make(map[string]bool)
	for _, t := range m.endpoints.Tags() {
		active[t] = true
	}
	start, end := window(m.tagIndex, len(tags), height-1)
	for i := start; i < end; i++ {
		box := "[ ]"
		if active[tags[i]] {
			box = "[x]"
		}
		line := box + " " + truncate(tags[i], width-4)
		if i == m.tagIndex {
			line = styleSelected.Render(padRight(line, width))
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// renderResponse renders the response pane title and viewport
func (m *Model) renderResponse(height int) string {
	title := "Response"
	if m.shownEntry != nil {
		title = fmt.Sprintf("History #%d", m.shownEntry.ID)
	}
	title = styleTitle.Render(title)
	if key := m.currentKey(); key != "" && m.runner.State().Busy(key) {
		title += styleWarning.Render(" sending...")
	}
	if m.showHeaders {
		title += styleSubtle.Render(" [headers]")
	}
	return title + "\n" + m.responseView.View()
}

// updateResponseView fills the response viewport for the selected operation
func (m *Model) updateResponseView() {
	if m.shownEntry != nil {
		m.responseView.SetContent(m.renderEntry(m.shownEntry))
		return
	}
	key := m.currentKey()
	if key == "" {
		m.responseView.SetContent("")
		return
	}
	result, ok := m.runner.State().Result(key)
	if !ok {
		m.responseView.SetContent(styleSubtle.Render("No response yet. Press x to send."))
		m.responseView.GotoTop()
		return
	}
	m.responseView.SetContent(m.renderResult(result))
	m.responseView.GotoTop()
}

func (m *Model) renderResult(result *runner.Result) string {
	var sb strings.Builder

	if result.Failed() && result.Status == 0 {
		sb.WriteString(fmt.Sprintf("%s %s\n\n", result.Method, result.URL))
		sb.WriteString(styleError.Render(categorizeRequestError(result.Error)) + "\n")
		sb.WriteString(styleSubtle.Render(result.Error) + "\n")
		for _, w := range result.Warnings {
			sb.WriteString(styleWarning.Render("! "+w) + "\n")
		}
		return sb.String()
	}

	status := statusStyle(result.Status).Render(fmt.Sprintf("%d %s", result.Status, result.StatusText))
	if ep := m.endpoints.Current(); ep != nil {
		if desc := runner.DeclaredResponse(m.store.Get(), ep.Path, ep.Method, result.Status); desc != "" {
			status += " " + styleSubtle.Render("("+desc+")")
		}
	}
	sb.WriteString(status + "\n")
	sb.WriteString(styleSubtle.Render(fmt.Sprintf("%s %s | %s | %s",
		result.Method, result.URL,
		runner.FormatDuration(result.Duration),
		runner.FormatSize(result.ResponseSize))) + "\n")
	if result.Error != "" {
		sb.WriteString(styleError.Render(categorizeRequestError(result.Error)) + "\n")
	}
	for _, w := range result.Warnings {
		sb.WriteString(styleWarning.Render("! "+w) + "\n")
	}

	if m.showHeaders {
		sb.WriteString(renderHeaders(result.Headers))
	}
	sb.WriteString("\n")
	sb.WriteString(m.renderBody(result.Body))
	return sb.String()
}

func (m *Model) renderEntry(e *types.HistoryEntry) string {
	var sb strings.Builder
	sb.WriteString(styleSubtle.Render(e.Timestamp) + "\n")
	sb.WriteString(fmt.Sprintf("%s %s\n", e.Method, e.URL))
	if e.Error != "" {
		sb.WriteString(styleError.Render(categorizeRequestError(e.Error)) + "\n")
		return sb.String()
	}
	sb.WriteString(statusStyle(e.ResponseStatus).Render(fmt.Sprintf("%d %s", e.ResponseStatus, e.ResponseStatusText)))
	sb.WriteString(styleSubtle.Render(fmt.Sprintf(" | %s | %s", runner.FormatDuration(e.Duration), runner.FormatSize(e.ResponseSize))) + "\n")
	if m.showHeaders {
		sb.WriteString(renderHeaders(e.ResponseHeaders))
	}
	if e.Body != "" {
		sb.WriteString("\n" + styleTitle.Render("Request body") + "\n")
		sb.WriteString(m.renderBody(e.Body))
		sb.WriteString("\n" + styleTitle.Render("Response body") + "\n")
	} else {
		sb.WriteString("\n")
	}
	sb.WriteString(m.renderBody(e.ResponseBody))
	return sb.String()
}

func renderHeaders(headers map[string]string) string {
	if len(headers) == 0 {
		return ""
	}
	names := make([]string, 0, len(headers))
	for name := range headers {
		names = append(names, name)
	}
	sort.Strings(names)
	var sb strings.Builder
	sb.WriteString("\n")
	for _, name := range names {
		sb.WriteString(styleSubtle.Render(name+":") + " " + headers[name] + "\n")
	}
	return sb.String()
}

// renderBody indents and highlights JSON bodies
func (m *Model) renderBody(body string) string {
	if body == "" {
		return ""
	}
	pretty, ok := indentJSON(body)
	if !ok {
		return body
	}
	theme := store.ThemeLight
	if m.theme != nil {
		theme = m.theme.Get()
	}
	var buf strings.Builder
	if err := cli.Highlight(&buf, pretty, "json", cli.StyleForTheme(theme)); err != nil {
		return pretty
	}
	return buf.String()
}

func indentJSON(body string) (string, bool) {
	var out bytes.Buffer
	if err := json.Indent(&out, []byte(body), "", "  "); err != nil {
		return "", false
	}
	return out.String(), true
}

func statusStyle(status int) lipgloss.Style {
	switch {
	case runner.IsSuccessStatus(status):
		return styleSuccess
	case runner.IsClientErrorStatus(status), runner.IsServerErrorStatus(status):
		return styleError
	}
	return styleWarning
}

// responseBody returns the body shown in the response pane
func (m *Model) responseBody() string {
	if m.shownEntry != nil {
		return m.shownEntry.ResponseBody
	}
	if result, ok := m.runner.State().Result(m.currentKey()); ok && !result.Failed() {
		return result.Body
	}
	return ""
}

// responseURL returns the URL of the request shown in the response pane
func (m *Model) responseURL() string {
	if m.shownEntry != nil {
		return m.shownEntry.URL
	}
	if result, ok := m.runner.State().Result(m.currentKey()); ok {
		return result.URL
	}
	return ""
}

func (m *Model) renderStatusBar() string {
	badge := lipgloss.NewStyle().Bold(true).Render("[" + m.mode.String() + "]")

	msg := styleSubtle.Render(m.statusMsg)
	if m.errorMsg != "" {
		msg = styleError.Render(m.errorMsg)
	}

	var right []string
	if m.servers.Probing() {
		right = append(right, styleWarning.Render("probing"))
	} else if live, total := m.servers.Counts(); total > 0 {
		style := styleSuccess
		if live < total {
			style = styleWarning
		}
		right = append(right, style.Render(fmt.Sprintf("%d/%d live", live, total)))
	}
	if m.theme != nil {
		right = append(right, styleSubtle.Render(string(m.theme.Get())))
	}
	right = append(right, styleSubtle.Render("? help"))
	rightText := strings.Join(right, "  ")

	room := m.width - lipgloss.Width(badge) - lipgloss.Width(rightText) - 2
	msg = lipgloss.NewStyle().MaxWidth(max(room, 0)).Render(msg)
	gap := max(m.width-lipgloss.Width(badge)-lipgloss.Width(msg)-lipgloss.Width(rightText)-1, 1)
	return badge + " " + msg + strings.Repeat(" ", gap) + rightText
}

// helpSections lists the actions shown in the help view
var helpSections = []struct {
	title string
	rows  []helpRow
}{
	{"Operations", []helpRow{
		{keybinds.ContextBrowse, keybinds.ActionNavigateUp, "previous operation"},
		{keybinds.ContextBrowse, keybinds.ActionNavigateDown, "next operation"},
		{keybinds.ContextBrowse, keybinds.ActionOpenForm, "edit request form"},
		{keybinds.ContextBrowse, keybinds.ActionSearch, "search path, summary, operationId or method"},
		{keybinds.ContextBrowse, keybinds.ActionTagFilter, "filter by tag"},
		{keybinds.ContextBrowse, keybinds.ActionClearSearch, "clear search"},
	}},
	{"Form", []helpRow{
		{keybinds.ContextForm, keybinds.ActionNavigateDown, "next field"},
		{keybinds.ContextForm, keybinds.ActionEditField, "edit field"},
		{keybinds.ContextForm, keybinds.ActionCycleServer, "cycle declared servers"},
		{keybinds.ContextForm, keybinds.ActionClearField, "clear field"},
		{keybinds.ContextForm, keybinds.ActionBack, "back to operations"},
	}},
	{"Request", []helpRow{
		{keybinds.ContextShared, keybinds.ActionSend, "send request"},
		{keybinds.ContextBrowse, keybinds.ActionFocusResponse, "focus response"},
		{keybinds.ContextShared, keybinds.ActionToggleHeaders, "toggle headers"},
		{keybinds.ContextShared, keybinds.ActionCopyBody, "copy body"},
		{keybinds.ContextShared, keybinds.ActionCopyURL, "copy URL"},
	}},
	{"Servers", []helpRow{
		{keybinds.ContextShared, keybinds.ActionOpenServers, "server list (enter selects)"},
		{keybinds.ContextShared, keybinds.ActionRecheckServers, "check servers again"},
	}},
	{"History", []helpRow{
		{keybinds.ContextShared, keybinds.ActionOpenHistory, "history of the operation"},
		{keybinds.ContextHistory, keybinds.ActionSelect, "show entry"},
		{keybinds.ContextHistory, keybinds.ActionSearch, "search entries"},
		{keybinds.ContextHistory, keybinds.ActionTogglePreview, "toggle preview"},
		{keybinds.ContextHistory, keybinds.ActionDelete, "delete entry"},
	}},
	{"General", []helpRow{
		{keybinds.ContextShared, keybinds.ActionToggleTheme, "toggle light/dark theme"},
		{keybinds.ContextShared, keybinds.ActionHelp, "this help"},
		{keybinds.ContextBrowse, keybinds.ActionQuit, "quit"},
		{keybinds.ContextGlobal, keybinds.ActionQuitForce, "quit from any mode"},
	}},
}

type helpRow struct {
	context keybinds.Context
	action  keybinds.Action
	desc    string
}

func (m *Model) updateHelpView() {
	m.helpView.SetContent(m.helpContent())
	m.helpView.GotoTop()
}

// helpContent lists the current bindings of the help actions
func (m *Model) helpContent() string {
	var sb strings.Builder
	for _, section := range helpSections {
		sb.WriteString(styleTitle.Render(section.title) + "\n")
		for _, row := range section.rows {
			keys := m.keys.GetBindingString(row.context, row.action)
			sb.WriteString(padRight(keys, 15) + " " + row.desc + "\n")
		}
		sb.WriteString("\n")
	}
	sb.WriteString(styleSubtle.Render("Press any key to close"))
	return sb.String()
}

func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 3 {
		return string(r[:width])
	}
	return string(r[:width-3]) + "..."
}

func padRight(s string, width int) string {
	if w := lipgloss.Width(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}
