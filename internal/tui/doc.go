/*
Package tui implements the terminal user interface of oasedit.

# Architecture

The TUI follows the Bubble Tea Model-Update-View pattern:
  - model.go: Model, messages and the Update loop
  - keys.go: keyboard handling per mode
  - render.go: views
  - actions.go: commands with side effects (send, probe, history, clipboard)

# State Management

Screen state lives in small state objects guarded by sync.RWMutex:
  - EndpointState: operations of the stored document, search and tag filter
  - FormState: editable inputs of the selected operation
  - ServerState: probe status of the declared servers
  - HistoryState: sent requests of the selected operation

Inputs typed in the form are written to the runner's working state before
each send, so results and inputs survive switching between operations.

The stored document is read on every refresh. Edits made elsewhere reach
the TUI through a store subscription.
*/
package tui
