package keybinds

// NewDefaultRegistry creates a registry with the default keybindings
func NewDefaultRegistry() *Registry {
	r := NewRegistry()

	r.Register(ContextGlobal, "ctrl+c", ActionQuitForce)

	r.RegisterMultiple(ContextShared, []string{"x", "ctrl+s"}, ActionSend)
	r.Register(ContextShared, "t", ActionToggleTheme)
	r.Register(ContextShared, "H", ActionToggleHeaders)
	r.Register(ContextShared, "y", ActionCopyBody)
	r.Register(ContextShared, "Y", ActionCopyURL)
	r.Register(ContextShared, "s", ActionOpenServers)
	r.Register(ContextShared, "h", ActionOpenHistory)
	r.Register(ContextShared, "r", ActionRecheckServers)
	r.Register(ContextShared, "?", ActionHelp)

	r.Register(ContextBrowse, "q", ActionQuit)
	r.RegisterMultiple(ContextBrowse, []string{"up", "k"}, ActionNavigateUp)
	r.RegisterMultiple(ContextBrowse, []string{"down", "j"}, ActionNavigateDown)
	r.RegisterMultiple(ContextBrowse, []string{"enter", "tab", "l", "right"}, ActionOpenForm)
	r.Register(ContextBrowse, "v", ActionFocusResponse)
	r.Register(ContextBrowse, "/", ActionSearch)
	r.Register(ContextBrowse, "T", ActionTagFilter)
	r.Register(ContextBrowse, "esc", ActionClearSearch)
	r.Register(ContextBrowse, "pgup", ActionPageUp)
	r.Register(ContextBrowse, "pgdown", ActionPageDown)

	r.Register(ContextSearch, "enter", ActionSubmit)
	r.Register(ContextSearch, "esc", ActionCancel)
	r.Register(ContextSearch, "up", ActionNavigateUp)
	r.Register(ContextSearch, "down", ActionNavigateDown)

	r.RegisterMultiple(ContextForm, []string{"esc", "q", "shift+tab", "left"}, ActionBack)
	r.RegisterMultiple(ContextForm, []string{"up", "k"}, ActionNavigateUp)
	r.RegisterMultiple(ContextForm, []string{"down", "j", "tab"}, ActionNavigateDown)
	r.Register(ContextForm, "c", ActionCycleServer)
	r.RegisterMultiple(ContextForm, []string{"enter", "e"}, ActionEditField)
	r.Register(ContextForm, "d", ActionClearField)
	r.Register(ContextForm, "v", ActionFocusResponse)

	r.Register(ContextEditField, "enter", ActionSubmit)
	r.Register(ContextEditField, "esc", ActionCancel)

	r.RegisterMultiple(ContextResponse, []string{"esc", "q", "v"}, ActionBack)
	r.RegisterMultiple(ContextResponse, []string{"up", "k"}, ActionNavigateUp)
	r.RegisterMultiple(ContextResponse, []string{"down", "j"}, ActionNavigateDown)
	r.RegisterMultiple(ContextResponse, []string{"g", "home"}, ActionGoToTop)
	r.RegisterMultiple(ContextResponse, []string{"G", "end"}, ActionGoToBottom)
	r.RegisterMultiple(ContextResponse, []string{"pgup", "ctrl+u"}, ActionPageUp)
	r.RegisterMultiple(ContextResponse, []string{"pgdown", "ctrl+d"}, ActionPageDown)

	r.RegisterMultiple(ContextServers, []string{"esc", "q", "s"}, ActionBack)
	r.RegisterMultiple(ContextServers, []string{"up", "k"}, ActionNavigateUp)
	r.RegisterMultiple(ContextServers, []string{"down", "j"}, ActionNavigateDown)
	r.Register(ContextServers, "r", ActionRecheckServers)
	r.Register(ContextServers, "enter", ActionSelect)

	r.RegisterMultiple(ContextHistory, []string{"esc", "q", "h"}, ActionBack)
	r.RegisterMultiple(ContextHistory, []string{"up", "k"}, ActionNavigateUp)
	r.RegisterMultiple(ContextHistory, []string{"down", "j"}, ActionNavigateDown)
	r.Register(ContextHistory, "enter", ActionSelect)
	r.Register(ContextHistory, "p", ActionTogglePreview)
	r.Register(ContextHistory, "d", ActionDelete)
	r.Register(ContextHistory, "/", ActionSearch)

	r.Register(ContextHistorySearch, "enter", ActionSubmit)
	r.Register(ContextHistorySearch, "esc", ActionCancel)

	r.RegisterMultiple(ContextTags, []string{"esc", "q", "T", "enter"}, ActionBack)
	r.RegisterMultiple(ContextTags, []string{"up", "k"}, ActionNavigateUp)
	r.RegisterMultiple(ContextTags, []string{"down", "j"}, ActionNavigateDown)
	r.RegisterMultiple(ContextTags, []string{" ", "space"}, ActionToggleTag)
	r.Register(ContextTags, "c", ActionClearTags)

	return r
}

// knownActions returns every action bound somewhere in the defaults
func knownActions() map[Action]struct{} {
	known := make(map[Action]struct{})
	for _, contextBindings := range NewDefaultRegistry().bindings {
		for _, action := range contextBindings {
			known[action] = struct{}{}
		}
	}
	return known
}
