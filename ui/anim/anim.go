// Package anim provides the gradient Braille spinner shown in the status bar
// while a reply streams.
//
// Frames are pre-rendered per color pair and every tick is addressed to one
// spinner by ID so stale ticks from a stopped spinner are dropped.
package anim

import (
	"math"
	"sync/atomic"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/miosa/osa-transcript/style"
)

const (
	fps           = 20
	frameDuration = time.Second / fps
	// ellipsisFrames is how many animation frames elapse per ellipsis state.
	ellipsisFrames = 8
)

var frames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

var ellipsisStates = []string{"", ".", "..", "..."}

var idCounter atomic.Int64

// TickFunc schedules fn after d. tea.Tick is the default.
type TickFunc func(d time.Duration, fn func(time.Time) tea.Msg) tea.Cmd

// TickMsg advances the spinner with the matching ID by one frame.
type TickMsg struct {
	ID  int64
	Gen int
}

// Model is a gradient-animated Braille spinner (value receiver Update/View,
// pointer receiver mutators).
type Model struct {
	id          int64
	gen         int
	label       string
	spinning    bool
	frame       int
	ellipsisIdx int
	glyphs      []string
	labelStyle  lipgloss.Style
	schedule    TickFunc
}

// New creates a stopped spinner colored from p.
func New(p style.Palette) Model {
	m := Model{id: idCounter.Add(1), schedule: tea.Tick}
	m.SetPalette(p)
	return m
}

// SetTick replaces the frame scheduler.
func (m *Model) SetTick(fn TickFunc) {
	if fn != nil {
		m.schedule = fn
	}
}

// SetPalette re-renders the frame cache for p's gradient.
func (m *Model) SetPalette(p style.Palette) {
	n := len(frames)
	m.glyphs = make([]string, n)
	for i, g := range frames {
		// Sine oscillation bounces between the endpoints instead of wrapping.
		t := (math.Sin(math.Pi*float64(i)/float64(n-1)) + 1) / 2
		c := style.LerpColor(p.Theme.GradA, p.Theme.GradB, t)
		m.glyphs[i] = lipgloss.NewStyle().Foreground(c).Render(g)
	}
	m.labelStyle = p.Loading
}

// SetLabel changes the text rendered after the glyph.
func (m *Model) SetLabel(s string) { m.label = s }

// Label returns the current label.
func (m Model) Label() string { return m.label }

// IsSpinning reports whether the animation is running.
func (m Model) IsSpinning() bool { return m.spinning }

// Start begins the animation and returns the first frame command. Calling it
// while spinning returns nil.
func (m *Model) Start() tea.Cmd {
	if m.spinning {
		return nil
	}
	m.spinning = true
	m.gen++
	m.frame, m.ellipsisIdx = 0, 0
	return m.tick()
}

// Stop halts the animation; pending ticks are ignored.
func (m *Model) Stop() { m.spinning = false }

// Update advances the animation on each TickMsg addressed to this model.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	tick, ok := msg.(TickMsg)
	if !ok || tick.ID != m.id || tick.Gen != m.gen || !m.spinning {
		return m, nil
	}
	m.frame = (m.frame + 1) % len(frames)
	if m.frame%ellipsisFrames == 0 {
		m.ellipsisIdx = (m.ellipsisIdx + 1) % len(ellipsisStates)
	}
	return m, m.tick()
}

// View renders the current frame, or "" when stopped.
func (m Model) View() string {
	if !m.spinning {
		return ""
	}
	glyph := m.glyphs[m.frame%len(m.glyphs)]
	if m.label == "" {
		return glyph
	}
	return glyph + " " + m.labelStyle.Render(m.label+ellipsisStates[m.ellipsisIdx])
}

func (m Model) tick() tea.Cmd {
	id, gen := m.id, m.gen
	return m.schedule(frameDuration, func(time.Time) tea.Msg {
		return TickMsg{ID: id, Gen: gen}
	})
}
