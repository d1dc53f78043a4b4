// Package toast provides auto-dismissing notices shown above the composer.
package toast

import (
	"fmt"
	"strings"
	"time"

	"charm.land/lipgloss/v2"
	"github.com/miosa/osa-transcript/style"
)

// Level classifies toast severity.
type Level int

const (
	Info Level = iota
	Warning
	Error
)

const (
	maxToasts = 3
	// TTL is how long a toast stays visible.
	TTL = 4 * time.Second
)

type toast struct {
	message string
	level   Level
	expiry  time.Time
}

// Model manages a queue of auto-dismissing toast notifications.
type Model struct {
	queue []toast
	now   func() time.Time
}

// New creates an empty Model. A nil now uses time.Now.
func New(now func() time.Time) Model {
	if now == nil {
		now = time.Now
	}
	return Model{now: now}
}

// Add enqueues a toast notification. Oldest toasts are dropped when the queue
// exceeds maxToasts.
func (m *Model) Add(message string, level Level) {
	m.queue = append(m.queue, toast{
		message: message,
		level:   level,
		expiry:  m.clock().Add(TTL),
	})
	if len(m.queue) > maxToasts {
		m.queue = m.queue[len(m.queue)-maxToasts:]
	}
}

// Addf is Add with formatting.
func (m *Model) Addf(level Level, format string, args ...any) {
	m.Add(fmt.Sprintf(format, args...), level)
}

// Tick prunes expired toasts and reports whether any were removed.
func (m *Model) Tick() bool {
	now := m.clock()
	before := len(m.queue)
	alive := m.queue[:0]
	for _, t := range m.queue {
		if now.Before(t.expiry) {
			alive = append(alive, t)
		}
	}
	m.queue = alive
	return len(alive) != before
}

// Len returns the number of visible toasts.
func (m Model) Len() int { return len(m.queue) }

// View renders visible toasts as right-aligned colored lines.
func (m Model) View(p style.Palette, width int) string {
	if len(m.queue) == 0 {
		return ""
	}
	lines := make([]string, 0, len(m.queue))
	for _, t := range m.queue {
		icon, st := levelStyle(p, t.level)
		rendered := st.Render(fmt.Sprintf(" %s %s ", icon, t.message))
		pad := max(0, width-lipgloss.Width(rendered))
		lines = append(lines, strings.Repeat(" ", pad)+rendered)
	}
	return strings.Join(lines, "\n")
}

func (m Model) clock() time.Time {
	if m.now == nil {
		return time.Now()
	}
	return m.now()
}

func levelStyle(p style.Palette, level Level) (string, lipgloss.Style) {
	switch level {
	case Warning:
		return "⚠", lipgloss.NewStyle().Foreground(p.Theme.Warning)
	case Error:
		return "✘", lipgloss.NewStyle().Foreground(p.Theme.Error)
	default:
		return "✓", lipgloss.NewStyle().Foreground(p.Theme.Success)
	}
}
