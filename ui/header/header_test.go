package header

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/miosa/osa-transcript/style"
	"github.com/stretchr/testify/assert"
)

func TestView(t *testing.T) {
	m := New("v1.2.3")
	m.SetChat("0123456789abcdef", 42)
	lines := strings.Split(ansi.Strip(m.View(style.NewPalette(style.Themes["dark"]))), "\n")
	assert.Len(t, lines, Height)
	assert.Contains(t, lines[0], "v1.2.3")
	assert.Contains(t, lines[0], "chat 01234567 ")
	assert.Contains(t, lines[0], "42 messages")
	assert.Contains(t, lines[0], "dark")
	assert.Equal(t, strings.Repeat("─", 80), lines[1])
}

func TestView_NoChatAndNarrow(t *testing.T) {
	m := New("v1")
	m.SetWidth(10)
	first := strings.Split(ansi.Strip(m.View(style.NewPalette(style.Themes["dark"]))), "\n")[0]
	assert.NotContains(t, first, "chat")
	assert.LessOrEqual(t, ansi.StringWidth(first), 10)
}

func TestDetailLine(t *testing.T) {
	m := New("v1")
	assert.Equal(t, "v1", m.DetailLine())
	m.SetWorkspace("/srv/projects/osa")
	assert.Equal(t, "v1 · /srv/projects/osa", m.DetailLine())
}

func TestTruncatePath(t *testing.T) {
	p := "/a/very/long/path/that/goes/on/project/main.go"
	assert.Equal(t, p, truncatePath(p, 100))
	assert.Equal(t, "…/project/main.go", truncatePath(p, 20))
	assert.Equal(t, "…/main.go", truncatePath(p, 12))
	assert.Equal(t, "/a/v…", truncatePath(p, 5))
}
