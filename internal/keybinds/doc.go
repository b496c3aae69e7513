// Package keybinds maps terminal key names to TUI actions per mode.
//
// Every TUI mode has a Context. Match looks a key up in the mode's context
// first and in ContextGlobal second. Keys shared by the browse, form and
// response modes live in ContextShared, which those modes consult before
// their own context.
//
// Users override the defaults with keybinds.json in the data directory:
//
//	{
//	  "browse": {"n": "navigate_down", "j": "none"},
//	  "shared": {"ctrl+r": "send"}
//	}
//
// Action "none" unbinds a key. Unknown contexts or actions reject the whole
// file.
package keybinds
