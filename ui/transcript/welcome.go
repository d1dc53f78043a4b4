package transcript

import (
	"os"
	"path/filepath"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/miosa/osa-transcript/ui/logo"
)

const welcomeID = "\x00welcome"

// welcomeItem is the single placeholder cell of an empty transcript. It is
// ephemeral: measured on every layout and never given a HeightCache slot.
type welcomeItem struct {
	ctx     *renderContext
	detail  string
	cwd     string
	signIn  bool // whether the sign-in row is offered
	version int

	// signInRow is the row of the sign-in affordance in the last render.
	signInRow int
}

func (w *welcomeItem) ID() string          { return welcomeID }
func (w *welcomeItem) ContentVersion() int { return w.version }
func (w *welcomeItem) Ephemeral() bool     { return true }

func (w *welcomeItem) Height(width int) int {
	return strings.Count(w.Render(width), "\n") + 1
}

func (w *welcomeItem) Render(width int) string {
	p := w.ctx.palette

	center := func(s string) string {
		sw := lipgloss.Width(s)
		if sw >= width {
			return s
		}
		return strings.Repeat(" ", (width-sw)/2) + s
	}

	var lines []string
	if width >= logo.FullWidth {
		pad := strings.Repeat(" ", max(0, (width-lipgloss.Width(logo.FullLogo))/2))
		for _, l := range strings.Split(logo.Render(p, width), "\n") {
			lines = append(lines, pad+l)
		}
		lines = append(lines, "")
	}
	lines = append(lines, center(p.WelcomeTitle.Render("◈ Start a conversation")))
	if w.detail != "" {
		lines = append(lines, center(p.WelcomeMeta.Render(w.detail)))
	}
	if w.cwd != "" {
		lines = append(lines, center(p.WelcomeMeta.Render(truncatePath(w.cwd, max(20, width-10)))))
	}
	lines = append(lines, "")
	w.signInRow = -1
	if w.signIn {
		w.signInRow = len(lines)
		lines = append(lines, center(p.SignIn.Render("Sign in to sync your chats")))
	}
	lines = append(lines, center(p.WelcomeTip.Render("i compose  ·  ctrl+g latest  ·  ctrl+t theme")))
	return strings.Join(lines, "\n")
}

// restyle forces a redraw after the palette changed.
func (w *welcomeItem) restyle() { w.version++ }

// truncatePath shortens a filesystem path to fit within maxWidth characters.
// Strategy: full → ~/relative → …/parent/base → …/base → hard-truncate.
func truncatePath(path string, maxWidth int) string {
	if len(path) <= maxWidth {
		return path
	}
	if home, err := os.UserHomeDir(); err == nil && home != "" && strings.HasPrefix(path, home) {
		short := "~" + path[len(home):]
		if len(short) <= maxWidth {
			return short
		}
	}
	dir := filepath.Dir(path)
	base := filepath.Base(path)
	parent := filepath.Base(dir)
	short := "…/" + parent + "/" + base
	if len(short) <= maxWidth {
		return short
	}
	short = "…/" + base
	if len(short) <= maxWidth {
		return short
	}
	if maxWidth > 3 {
		return path[:maxWidth-1] + "…"
	}
	return path[:maxWidth]
}
