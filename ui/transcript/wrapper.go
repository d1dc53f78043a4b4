package transcript

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/miosa/osa-transcript/style"
)

const (
	// thinkingTailLines is how much live reasoning is shown while a reply
	// has no visible content yet.
	thinkingTailLines = 6
	// bodyIndent is the border column plus its padding.
	bodyIndent = 2
)

// renderContext is shared by every wrapper of one Model.
type renderContext struct {
	palette style.Palette
	content ContentRenderer
}

// itemFlags are the per-pass positional flags of a wrapper.
type itemFlags struct {
	isLast        bool
	isLoading     bool
	isArchived    bool
	showSeparator bool
}

// Wrapper is the renderer-owned state for one message identity. It is
// created the first time an ID appears and patched in place afterwards, so
// its buffer and height bookkeeping survive every render pass.
type Wrapper struct {
	msg       Message // latest snapshot from the caller
	displayed Message // what is drawn; lags msg while frozen
	frozen    bool

	dark bool
	itemFlags

	measuredHeight      int
	reserved            int
	bufferMultiplier    float64
	lastExtensionHeight int
	heights             *Observable[int]

	version int
	ctx     *renderContext
	cache   renderCache
}

type chipSpan struct {
	id     string
	x0, x1 int // remove glyph columns, [x0, x1)
}

type renderCache struct {
	width   int
	version int
	valid   bool
	content []string
	chipRow int
	chips   []chipSpan
}

func newWrapper(m Message, ctx *renderContext, dark bool) *Wrapper {
	return &Wrapper{
		msg:              m.clone(),
		displayed:        m.clone(),
		dark:             dark,
		bufferMultiplier: 1,
		heights:          NewObservable(0),
		version:          1,
		ctx:              ctx,
	}
}

// ---------------------------------------------------------------------------
// list.Item
// ---------------------------------------------------------------------------

func (w *Wrapper) ID() string          { return w.msg.ID }
func (w *Wrapper) ContentVersion() int { return w.version }

// Height is the content height, or the reservation when a buffer is active
// and larger.
func (w *Wrapper) Height(width int) int {
	return max(len(w.render(width).content), w.reserved)
}

// Render draws the content followed by blank spacer rows up to the
// reservation.
func (w *Wrapper) Render(width int) string {
	rc := w.render(width)
	out := strings.Join(rc.content, "\n")
	if spare := w.reserved - len(rc.content); spare > 0 {
		out += strings.Repeat("\n", spare)
	}
	return out
}

// ---------------------------------------------------------------------------
// State
// ---------------------------------------------------------------------------

// Message returns the latest message snapshot.
func (w *Wrapper) Message() Message { return w.msg }

// Displayed returns the message as currently drawn.
func (w *Wrapper) Displayed() Message { return w.displayed }

func (w *Wrapper) Frozen() bool              { return w.frozen }
func (w *Wrapper) BufferMultiplier() float64 { return w.bufferMultiplier }
func (w *Wrapper) Reserved() int             { return w.reserved }
func (w *Wrapper) MeasuredHeight() int       { return w.measuredHeight }
func (w *Wrapper) LastExtensionHeight() int  { return w.lastExtensionHeight }
func (w *Wrapper) LastReportedHeight() int   { return w.heights.Get() }
func (w *Wrapper) IsArchived() bool          { return w.isArchived }
func (w *Wrapper) ShowsSeparator() bool      { return w.showSeparator }
func (w *Wrapper) IsLoading() bool           { return w.isLoading }

// OnHeightChange subscribes to measured content height changes.
func (w *Wrapper) OnHeightChange(fn func(int)) func() { return w.heights.Subscribe(fn) }

// update patches the wrapper with a new snapshot and flags. It reports
// whether anything visible changed.
func (w *Wrapper) update(m Message, f itemFlags, dark bool) bool {
	changed := false
	if !w.msg.Equal(m) {
		w.msg = m.clone()
	}
	if !w.frozen && !w.displayed.Equal(w.msg) {
		w.displayed = w.msg.clone()
		changed = true
	}
	if w.itemFlags != f {
		w.itemFlags = f
		changed = true
	}
	if w.dark != dark {
		w.dark = dark
		changed = true
	}
	if changed {
		w.version++
	}
	return changed
}

// setFrozen freezes or thaws the displayed copy. Thawing resyncs it to the
// latest snapshot at once and reports whether that changed anything.
func (w *Wrapper) setFrozen(frozen bool) bool {
	if frozen == w.frozen {
		return false
	}
	w.frozen = frozen
	if frozen || w.displayed.Equal(w.msg) {
		return false
	}
	w.displayed = w.msg.clone()
	w.version++
	return true
}

func (w *Wrapper) setReserved(rows int) {
	rows = max(0, rows)
	if rows != w.reserved {
		w.reserved = rows
		w.version++
	}
}

// restyle forces a redraw after the shared palette changed.
func (w *Wrapper) restyle() { w.version++ }

// measure records the content height at width and notifies height
// listeners when it differs from the last reported value.
func (w *Wrapper) measure(width int) int {
	h := len(w.render(width).content)
	w.measuredHeight = h
	w.heights.Set(h)
	return h
}

// HitAttachment maps a click at (row, col), relative to the item's top-left
// corner, to the attachment whose remove glyph was hit.
func (w *Wrapper) HitAttachment(row, col int) (string, bool) {
	rc := w.cache
	if !rc.valid || row != rc.chipRow {
		return "", false
	}
	for _, c := range rc.chips {
		if col >= c.x0 && col < c.x1 {
			return c.id, true
		}
	}
	return "", false
}

// ---------------------------------------------------------------------------
// Drawing
// ---------------------------------------------------------------------------

func (w *Wrapper) render(width int) *renderCache {
	if w.cache.valid && w.cache.width == width && w.cache.version == w.version {
		return &w.cache
	}
	p := w.ctx.palette
	cw := cappedWidth(width)
	inner := max(1, cw-bodyIndent)
	m := w.displayed

	var parts []string
	if m.Role == RoleUser {
		parts = append(parts, p.UserLabel.Render("❯  You"))
	} else {
		parts = append(parts, p.AgentLabel.Render("◈ OSA"))
	}

	if m.Thoughts != "" {
		parts = append(parts, w.renderThoughts(p, inner))
	}

	if body := w.ctx.content.Render(m.Markdown(), inner, w.dark); strings.TrimSpace(body) != "" {
		if w.isArchived {
			body = p.Archived.Render(body)
		}
		parts = append(parts, body)
	} else if w.isLoading && !m.IsThinking() {
		parts = append(parts, p.Loading.Render("● generating…"))
	}

	chipRow := -1
	var chips []chipSpan
	if len(m.Attachments) > 0 {
		line, spans := renderChips(p, m.Attachments)
		rowsBefore := 0
		for _, s := range parts {
			rowsBefore += strings.Count(s, "\n") + 1
		}
		parts = append(parts, line)
		chipRow = rowsBefore
		chips = spans
	}

	border := p.AgentBorder
	switch {
	case w.isArchived:
		border = p.ArchivedBorder
	case m.Role == RoleUser:
		border = p.UserBorder
	}
	boxed := strings.Split(border.Render(strings.Join(parts, "\n")), "\n")

	var content []string
	if w.showSeparator {
		content = append(content, separatorLine(p, cw))
		if chipRow >= 0 {
			chipRow++
		}
	}
	content = append(content, boxed...)

	w.cache = renderCache{
		width:   width,
		version: w.version,
		valid:   true,
		content: content,
		chipRow: chipRow,
		chips:   chips,
	}
	return &w.cache
}

func (w *Wrapper) renderThoughts(p style.Palette, width int) string {
	thoughts := strings.TrimRight(w.displayed.Thoughts, "\n")
	lines := strings.Split(thoughts, "\n")
	if !w.displayed.IsThinking() {
		header := fmt.Sprintf("▸ Thoughts (%d lines)", len(lines))
		return p.ThinkingBox.Render(p.ThinkingHeader.Render(header))
	}
	if len(lines) > thinkingTailLines {
		lines = lines[len(lines)-thinkingTailLines:]
	}
	body := p.ThinkingContent.Render(plainWrap(strings.Join(lines, "\n"), max(1, width-bodyIndent)))
	return p.ThinkingBox.Render(p.ThinkingHeader.Render("▾ Thinking…") + "\n" + body)
}

// renderChips lays attachments out on one row and returns the columns of
// each remove glyph, relative to the item's left edge.
func renderChips(p style.Palette, atts []Attachment) (string, []chipSpan) {
	var b strings.Builder
	spans := make([]chipSpan, 0, len(atts))
	x := bodyIndent
	for i, a := range atts {
		if i > 0 {
			b.WriteString(" ")
			x++
		}
		label := p.Chip.Render("📎 " + a.Name)
		remove := p.ChipRemove.Render(" ✕ ")
		b.WriteString(label)
		x += lipgloss.Width(label)
		rw := lipgloss.Width(remove)
		spans = append(spans, chipSpan{id: a.ID, x0: x, x1: x + rw})
		b.WriteString(remove)
		x += rw
	}
	return b.String(), spans
}

func separatorLine(p style.Palette, width int) string {
	const label = " earlier messages "
	side := max(2, (width-lipgloss.Width(label))/2)
	return p.Separator.Render(strings.Repeat("─", side) + label + strings.Repeat("─", side))
}
