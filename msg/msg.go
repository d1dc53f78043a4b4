// Package msg defines the tea.Msg types exchanged between the root model,
// the streaming feed and the config watcher. It has no upstream imports
// inside the module to avoid import cycles.
package msg

import tea "charm.land/bubbletea/v2"

// Sender delivers messages into a running program from another goroutine.
// *tea.Program satisfies it.
type Sender interface {
	Send(tea.Msg)
}

// -- Streaming ----------------------------------------------------------------

// StreamStarted announces a new assistant reply in chat ChatID.
type StreamStarted struct {
	ChatID    string
	MessageID string
}

// StreamDelta appends visible text to the reply.
type StreamDelta struct {
	ChatID    string
	MessageID string
	Text      string
}

// ThinkingDelta appends reasoning text to the reply.
type ThinkingDelta struct {
	ChatID    string
	MessageID string
	Text      string
}

// StreamFinished ends the reply. Err is set when the stream was cut short.
type StreamFinished struct {
	ChatID    string
	MessageID string
	Err       error
}

// -- Config -------------------------------------------------------------------

// ConfigChanged reports that the config file at Path was written.
type ConfigChanged struct {
	Path string
}

// ConfigWatchError carries a non-fatal watcher error.
type ConfigWatchError struct {
	Err error
}

// -- UI events ----------------------------------------------------------------

type TickMsg struct{}
