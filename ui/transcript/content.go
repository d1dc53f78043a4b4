package transcript

import (
	"log/slog"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/x/ansi"
)

// ContentRenderer turns a message body into terminal rows at a given width.
// The transcript treats its output as opaque: only the number of lines
// matters for layout.
type ContentRenderer interface {
	Render(markdown string, width int, dark bool) string
}

// maxContentWidth caps the body width for readability.
const maxContentWidth = 120

func cappedWidth(w int) int {
	return min(w, maxContentWidth)
}

// glamourRenderer renders markdown with glamour, keeping one TermRenderer
// per (width, dark) since building one parses a whole style sheet.
type glamourRenderer struct {
	log       *slog.Logger
	renderers map[glamourKey]*glamour.TermRenderer
}

type glamourKey struct {
	width int
	dark  bool
}

func newGlamourRenderer(log *slog.Logger) *glamourRenderer {
	return &glamourRenderer{log: log, renderers: make(map[glamourKey]*glamour.TermRenderer)}
}

func (g *glamourRenderer) Render(md string, width int, dark bool) string {
	if strings.TrimSpace(md) == "" || width <= 0 {
		return md
	}
	k := glamourKey{width: width, dark: dark}
	r, ok := g.renderers[k]
	if !ok {
		styleName := "light"
		if dark {
			styleName = "dark"
		}
		var err error
		r, err = glamour.NewTermRenderer(
			glamour.WithStandardStyle(styleName),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			g.log.Debug("glamour renderer unavailable", "width", width, "err", err)
			return plainWrap(md, width)
		}
		g.renderers[k] = r
	}
	out, err := r.Render(md)
	if err != nil {
		g.log.Debug("markdown render failed", "err", err)
		return plainWrap(md, width)
	}
	return strings.Trim(out, "\n")
}

// PlainRenderer wraps text to width without interpreting markdown.
type PlainRenderer struct{}

func (PlainRenderer) Render(md string, width int, _ bool) string {
	return plainWrap(md, width)
}

func plainWrap(s string, width int) string {
	if width <= 0 {
		return s
	}
	return ansi.Wrap(s, width, "")
}
