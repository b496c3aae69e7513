package keybinds

// Action represents a user action that can be triggered by a keybinding
type Action string

// Context represents the UI mode in which keybindings are active
type Context string

const (
	ContextGlobal        Context = "global"         // Checked after every other context
	ContextShared        Context = "shared"         // Browse, form and response modes
	ContextBrowse        Context = "browse"         // Operation list
	ContextSearch        Context = "search"         // Operation search input
	ContextForm          Context = "form"           // Request form
	ContextEditField     Context = "edit_field"     // Form field input
	ContextResponse      Context = "response"       // Response viewer
	ContextServers       Context = "servers"        // Server list
	ContextHistory       Context = "history"        // History browser
	ContextHistorySearch Context = "history_search" // History search input
	ContextTags          Context = "tags"           // Tag filter
)

const (
	ActionQuit      Action = "quit"
	ActionQuitForce Action = "quit_force"
	ActionHelp      Action = "help"
	ActionBack      Action = "back"

	// Navigation
	ActionNavigateUp   Action = "navigate_up"
	ActionNavigateDown Action = "navigate_down"
	ActionPageUp       Action = "page_up"
	ActionPageDown     Action = "page_down"
	ActionGoToTop      Action = "go_to_top"
	ActionGoToBottom   Action = "go_to_bottom"

	// Request
	ActionSend          Action = "send"
	ActionToggleHeaders Action = "toggle_headers"
	ActionCopyBody      Action = "copy_body"
	ActionCopyURL       Action = "copy_url"
	ActionFocusResponse Action = "focus_response"

	// Panels
	ActionToggleTheme    Action = "toggle_theme"
	ActionOpenServers    Action = "open_servers"
	ActionOpenHistory    Action = "open_history"
	ActionRecheckServers Action = "recheck_servers"

	// Operation list
	ActionOpenForm    Action = "open_form"
	ActionSearch      Action = "search"
	ActionClearSearch Action = "clear_search"
	ActionTagFilter   Action = "tag_filter"

	// Form
	ActionEditField   Action = "edit_field"
	ActionCycleServer Action = "cycle_server"
	ActionClearField  Action = "clear_field"

	// Inputs
	ActionSubmit Action = "submit"
	ActionCancel Action = "cancel"

	// Lists
	ActionSelect        Action = "select"
	ActionTogglePreview Action = "toggle_preview"
	ActionDelete        Action = "delete"
	ActionToggleTag     Action = "toggle_tag"
	ActionClearTags     Action = "clear_tags"
)

// contexts lists every known context in display order
var contexts = []Context{
	ContextGlobal,
	ContextShared,
	ContextBrowse,
	ContextSearch,
	ContextForm,
	ContextEditField,
	ContextResponse,
	ContextServers,
	ContextHistory,
	ContextHistorySearch,
	ContextTags,
}

// IsKnownContext reports whether c is one of the contexts the TUI uses
func IsKnownContext(c Context) bool {
	for _, known := range contexts {
		if c == known {
			return true
		}
	}
	return false
}
