package toast

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/x/ansi"
	"github.com/miosa/osa-transcript/style"
	"github.com/stretchr/testify/assert"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func TestAdd_KeepsNewest(t *testing.T) {
	m := New(nil)
	for i := range 5 {
		m.Addf(Info, "toast %d", i)
	}
	assert.Equal(t, maxToasts, m.Len())
	out := ansi.Strip(m.View(style.NewPalette(style.Themes["dark"]), 40))
	assert.NotContains(t, out, "toast 1")
	assert.Contains(t, out, "toast 4")
}

func TestTick_Expires(t *testing.T) {
	c := &clock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	m := New(c.now)
	m.Add("first", Info)
	c.t = c.t.Add(TTL / 2)
	m.Add("second", Warning)

	assert.False(t, m.Tick())
	c.t = c.t.Add(TTL / 2)
	assert.True(t, m.Tick(), "first expired")
	assert.Equal(t, 1, m.Len())
	c.t = c.t.Add(TTL)
	assert.True(t, m.Tick())
	assert.Zero(t, m.Len())
}

func TestView_RightAligned(t *testing.T) {
	m := New(nil)
	m.Add("boom", Error)
	m.Add("careful", Warning)
	lines := strings.Split(ansi.Strip(m.View(style.NewPalette(style.Themes["dark"]), 30)), "\n")
	assert.Len(t, lines, 2)
	assert.True(t, strings.HasSuffix(lines[0], " ✘ boom "))
	assert.True(t, strings.HasSuffix(lines[1], " ⚠ careful "))
	for _, l := range lines {
		assert.Equal(t, 30, ansi.StringWidth(l))
	}
	assert.Empty(t, New(nil).View(style.NewPalette(style.Themes["dark"]), 30))
}
