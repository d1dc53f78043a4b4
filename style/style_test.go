package style

import (
	"image/color"
	"testing"

	"charm.land/lipgloss/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	for _, name := range ThemeNames {
		th, ok := Lookup(name)
		require.True(t, ok, name)
		assert.Equal(t, name, th.Name)
	}

	th, ok := Lookup("no-such-theme")
	assert.False(t, ok)
	assert.Equal(t, "dark", th.Name)
}

func TestNext_CyclesThroughAllThemes(t *testing.T) {
	th := Themes[ThemeNames[0]]
	seen := map[string]bool{}
	for range ThemeNames {
		seen[th.Name] = true
		th = Next(th)
	}
	assert.Len(t, seen, len(ThemeNames))
	assert.Equal(t, ThemeNames[0], th.Name, "wraps around")

	assert.Equal(t, "dark", Next(Theme{Name: "unknown"}).Name)
}

func TestThemes_DarkFlag(t *testing.T) {
	assert.False(t, Themes["light"].Dark)
	for _, name := range []string{"dark", "catppuccin", "tokyo-night"} {
		assert.True(t, Themes[name].Dark, name)
	}
}

func TestLerpColor(t *testing.T) {
	black := color.NRGBA{A: 255}
	white := color.NRGBA{R: 255, G: 255, B: 255, A: 255}

	assert.Equal(t, color.Color(black), LerpColor(black, white, -1))
	assert.Equal(t, color.Color(white), LerpColor(black, white, 2))

	mid := LerpColor(black, white, 0.5).(color.NRGBA)
	assert.InDelta(t, 127, int(mid.R), 1)
	assert.Equal(t, mid.R, mid.G)
	assert.Equal(t, mid.G, mid.B)
}

func TestGradientText(t *testing.T) {
	assert.Empty(t, GradientText("", lipgloss.Color("#000000"), lipgloss.Color("#FFFFFF")))

	out := GradientText("abc", lipgloss.Color("#000000"), lipgloss.Color("#FFFFFF"))
	assert.Equal(t, 3, lipgloss.Width(out))
}

func TestNewPalette_BordersAddOneColumn(t *testing.T) {
	p := NewPalette(Themes["dark"])
	out := p.UserBorder.Render("hi")
	assert.Equal(t, 4, lipgloss.Width(out), "border plus padding")
	assert.Equal(t, "dark", p.Theme.Name)
}
