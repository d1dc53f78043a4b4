// Package status provides the bottom status bar: stream phase, a jump
// hint while the reader is away from the bottom, key hints and, in debug
// mode, transcript internals.
package status

import (
	"fmt"
	"strings"
	"time"

	"charm.land/lipgloss/v2"
	"github.com/miosa/osa-transcript/style"
	"github.com/miosa/osa-transcript/ui/transcript"
)

// Model is the status bar state. Drive it via setter methods; it has no Update loop.
type Model struct {
	phase     transcript.Phase
	atBottom  bool
	scrolling bool
	elapsed   time.Duration
	spinner   string
	stats     *transcript.Stats
	hints     []Hint
	width     int
}

// Hint is a key and what it does, e.g. {"i", "compose"}.
type Hint struct {
	Key  string
	Desc string
}

// New returns a Model that assumes the transcript starts at the bottom.
func New() Model {
	return Model{atBottom: true, width: 80}
}

// SetWidth updates the terminal width used for right-aligning hints.
func (m *Model) SetWidth(w int) { m.width = w }

// SetPhase updates the streaming phase badge.
func (m *Model) SetPhase(p transcript.Phase) { m.phase = p }

// SetPosition records whether the viewport is at the bottom and whether the
// user is scrolling.
func (m *Model) SetPosition(atBottom, scrolling bool) {
	m.atBottom = atBottom
	m.scrolling = scrolling
}

// SetElapsed updates the time spent on the current reply.
func (m *Model) SetElapsed(d time.Duration) { m.elapsed = d }

// SetSpinner sets the rendered spinner frame shown before the phase.
func (m *Model) SetSpinner(frame string) { m.spinner = frame }

// SetStats enables the debug line. Pass nil to hide it.
func (m *Model) SetStats(s *transcript.Stats) { m.stats = s }

// SetHints replaces the key hints shown on the right.
func (m *Model) SetHints(h []Hint) { m.hints = h }

// Height is the number of rows View occupies.
func (m Model) Height() int {
	if m.stats != nil {
		return 2
	}
	return 1
}

// View renders the status area.
func (m Model) View(p style.Palette) string {
	left := m.leftLine(p)
	line := left
	// Drop trailing hints until the rest fits.
	for n := len(m.hints); n > 0; n-- {
		right := m.hintLine(p, m.hints[:n])
		if gap := m.width - lipgloss.Width(left) - lipgloss.Width(right); gap >= 1 {
			line += strings.Repeat(" ", gap) + right
			break
		}
	}
	if m.stats == nil {
		return line
	}
	return line + "\n" + StatsLine(p, *m.stats)
}

func (m Model) leftLine(p style.Palette) string {
	parts := []string{PhasePill(p, m.phase)}
	if m.spinner != "" {
		parts[0] = m.spinner + " " + parts[0]
	}
	if m.phase != transcript.PhaseIdle && m.elapsed > 0 {
		parts = append(parts, p.Faint.Render(m.elapsed.Truncate(100*time.Millisecond).String()))
	}
	if !m.atBottom {
		parts = append(parts, p.StatusNotice.Render("↓ new below"))
	}
	if m.scrolling {
		parts = append(parts, p.Faint.Render("scrolling"))
	}
	return strings.Join(parts, p.Faint.Render(" · "))
}

func (m Model) hintLine(p style.Palette, hints []Hint) string {
	parts := make([]string, 0, len(hints))
	for _, h := range hints {
		parts = append(parts, p.StatusKey.Render(h.Key)+" "+p.StatusBar.Render(h.Desc))
	}
	return strings.Join(parts, p.Faint.Render(" · "))
}

// StatsLine renders transcript internals as a row of pills.
func StatsLine(p style.Palette, s transcript.Stats) string {
	parts := []string{
		p.Faint.Render(fmt.Sprintf("wrappers %d", s.Wrappers)),
		CachePill(p, s.CacheEntries, s.CacheHits, s.CacheMisses),
		CellsPill(p, s.LiveCells, s.AllocatedCells),
	}
	if pill := ReservePill(p, s.Multiplier, s.Reserved); pill != "" {
		parts = append(parts, pill)
	}
	return strings.Join(parts, p.Faint.Render(" · "))
}
