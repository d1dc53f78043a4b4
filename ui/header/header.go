// Package header renders the one-line title bar above the transcript.
package header

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/miosa/osa-transcript/style"
	"github.com/miosa/osa-transcript/ui/logo"
)

// Height is the number of rows View occupies.
const Height = 2

// Model holds the state for the compact header.
type Model struct {
	version   string
	chatID    string
	messages  int
	workspace string
	width     int
}

// New returns a Model for the given build version.
func New(version string) Model {
	return Model{version: version, width: 80}
}

// SetChat updates the active chat and its message count.
func (m *Model) SetChat(id string, messages int) {
	m.chatID = id
	m.messages = messages
}

// SetWorkspace updates the displayed workspace path.
func (m *Model) SetWorkspace(path string) { m.workspace = path }

// SetWidth updates the terminal width used for separator sizing.
func (m *Model) SetWidth(w int) { m.width = w }

// Version returns the version string.
func (m Model) Version() string { return m.version }

// Workspace returns the current workspace path.
func (m Model) Workspace() string { return m.workspace }

// DetailLine returns a summary like "v0.1.0 · ~/src/osa" for the welcome
// screen.
func (m Model) DetailLine() string {
	parts := []string{m.version}
	if m.workspace != "" {
		parts = append(parts, truncatePath(m.workspace, 40))
	}
	return strings.Join(parts, " · ")
}

// View returns the title line and a thin separator, clipped to the width.
func (m Model) View(p style.Palette) string {
	sep := p.Faint.Render(" · ")
	line := p.WelcomeTitle.Render(logo.CompactLogo) + " " + p.Faint.Render(m.version)
	if m.chatID != "" {
		line += sep + p.StatusKey.Render("chat "+shortID(m.chatID))
		line += sep + p.StatusBar.Render(fmt.Sprintf("%d messages", m.messages))
	}
	line += sep + p.StatusBar.Render(p.Theme.Name)
	w := max(m.width, 1)
	return ansi.Truncate(line, w, "…") + "\n" + p.Separator.Render(strings.Repeat("─", w))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// truncatePath shortens a filesystem path to fit within maxWidth characters.
// It tries: full path → ~/relative → …/last-two-segments → …/basename.
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
	short := "…/" + filepath.Base(dir) + "/" + base
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
