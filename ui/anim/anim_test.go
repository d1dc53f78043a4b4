package anim

import (
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/miosa/osa-transcript/style"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func immediate(_ time.Duration, fn func(time.Time) tea.Msg) tea.Cmd {
	return func() tea.Msg { return fn(time.Time{}) }
}

func newSpinner() Model {
	m := New(style.NewPalette(style.Themes["dark"]))
	m.SetTick(immediate)
	return m
}

func TestStart_TicksAdvanceFrames(t *testing.T) {
	m := newSpinner()
	assert.Empty(t, m.View())

	cmd := m.Start()
	require.NotNil(t, cmd)
	assert.Nil(t, m.Start(), "already spinning")

	tick := cmd()
	m, cmd = m.Update(tick)
	require.NotNil(t, cmd)
	assert.Equal(t, 1, m.frame)
	assert.NotEmpty(t, m.View())
}

func TestStaleTicksIgnored(t *testing.T) {
	m := newSpinner()
	old := m.Start()()
	m.Stop()
	m.Start()

	m, cmd := m.Update(old)
	assert.Nil(t, cmd)
	assert.Zero(t, m.frame)

	other := newSpinner()
	other.Start()
	_, cmd = other.Update(TickMsg{ID: m.id, Gen: m.gen})
	assert.Nil(t, cmd, "addressed to another spinner")
}

func TestView_LabelEllipsis(t *testing.T) {
	m := newSpinner()
	m.SetLabel("thinking")
	cmd := m.Start()
	for range ellipsisFrames {
		m, cmd = m.Update(cmd())
	}
	assert.Equal(t, "thinking", m.Label())
	assert.Contains(t, ansi.Strip(m.View()), "thinking.")
}

func TestSetPalette_OneGlyphPerFrame(t *testing.T) {
	m := newSpinner()
	m.SetPalette(style.NewPalette(style.Themes["light"]))
	require.Len(t, m.glyphs, len(frames))
	for i, g := range m.glyphs {
		assert.Equal(t, frames[i], ansi.Strip(g))
	}
}
