/*
Package types defines the data structures shared by the runner, the
prober, history storage and the user interfaces.

# Results

RequestResult:
  - Status, headers and body of a response
  - Decoded JSON body (Data) when the body parses
  - Duration and size metrics
  - Warnings about missing required parameters
  - Error text when no response was received

HistoryEntry:
  - One executed request and its response
  - Stored in the history table of the local database
  - Keyed back to the operation by path and method

# Server status

ServerStatus values move from checking to either live or unreachable.
A server never moves back to checking until it is probed again.

# Field Tags

All types use JSON tags so results can be printed with -o json and
replayed from history.
*/
package types
