// Package logo provides the OSA ASCII art logo and related rendering helpers.
package logo

import (
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/miosa/osa-transcript/style"
)

// FullLogo is the full 6-line ASCII art OSA logo.
const FullLogo = ` ██████╗ ███████╗ █████╗
██╔═══██╗██╔════╝██╔══██╗
██║   ██║███████╗███████║
██║   ██║╚════██║██╔══██║
╚██████╔╝███████║██║  ██║
 ╚═════╝ ╚══════╝╚═╝  ╚═╝`

// CompactLogo is used when the width is too narrow for the full logo.
const CompactLogo = "◈ OSA"

// FullWidth is the minimum width that fits the full logo with a margin.
var FullWidth = lipgloss.Width(FullLogo) + 4

// Render returns the logo for width with the palette's gradient applied to
// each line, or the compact form when the full one does not fit.
func Render(p style.Palette, width int) string {
	if width < FullWidth {
		return p.WelcomeTitle.Render(CompactLogo)
	}
	lines := strings.Split(FullLogo, "\n")
	for i, l := range lines {
		lines[i] = p.Gradient(l)
	}
	return strings.Join(lines, "\n")
}
