// Package list provides the virtualized, cell-reusing list widget the
// transcript renderer is built on. It is designed for chat-style content
// that grows at the bottom while the viewport follows the newest item.
//
// Key properties:
//   - Heights are measured once per (id, width, version) and kept in a
//     HeightCache keyed by item identity, never by index.
//   - Layout is a prefix-sum table of item tops; scrolling is a single
//     absolute row offset into it.
//   - Only items intersecting the viewport are rendered, into a small pool of
//     reusable cells.
//   - A negative bottom inset shrinks the scrollable range below the physical
//     content height (reserved-but-empty space at the end stays unreachable).
//   - Atomically runs a size-changing mutation and restores the exact offset
//     afterwards.
package list

import (
	"sort"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
)

// ---------------------------------------------------------------------------
// Public interfaces
// ---------------------------------------------------------------------------

// Item is anything the list can render.
type Item interface {
	// ID returns a unique, stable identifier used for height caching and
	// cell binding.
	ID() string

	// ContentVersion changes whenever the rendered output may change.
	ContentVersion() int

	// Height returns the rendered height in rows for the given width.
	Height(width int) int

	// Render returns the rendered string for the given width. It must have
	// Height(width) lines.
	Render(width int) string
}

// Ephemeral items are measured on every layout and never stored in the
// HeightCache.
type Ephemeral interface {
	Ephemeral() bool
}

// ---------------------------------------------------------------------------
// Options
// ---------------------------------------------------------------------------

// Option is a functional option for New.
type Option func(*Model)

// WithSize sets the initial viewport size.
func WithSize(w, h int) Option {
	return func(m *Model) {
		m.width = w
		m.height = h
	}
}

// WithGap sets the number of blank rows between consecutive items.
func WithGap(g int) Option {
	return func(m *Model) {
		if g >= 0 {
			m.gap = g
		}
	}
}

// WithScrollbar enables a one-column scrollbar on the right edge.
func WithScrollbar(thumb, track lipgloss.Style) Option {
	return func(m *Model) {
		m.scrollbar = true
		m.thumbStyle = thumb
		m.trackStyle = track
	}
}

// WithHeightCache shares an externally owned cache.
func WithHeightCache(c *HeightCache) Option {
	return func(m *Model) {
		if c != nil {
			m.heights = c
		}
	}
}

// ---------------------------------------------------------------------------
// Model
// ---------------------------------------------------------------------------

// Model is a virtualized scrollable list. Construct with New.
type Model struct {
	items []Item
	index map[string]int

	width  int
	height int
	gap    int

	// offset is the absolute row shown at the top of the viewport.
	offset int

	// bottomInset is added to the scrollable range; negative values pull the
	// reachable bottom up above the physical end of the content.
	bottomInset int

	// tops[i] is the first row of item i; tops[len(items)] is the content
	// height. Rebuilt by Layout.
	tops  []int
	dirty bool

	heights *HeightCache
	cells   *cellPool

	scrollbar  bool
	thumbStyle lipgloss.Style
	trackStyle lipgloss.Style
}

// New constructs a Model with the supplied options.
func New(opts ...Option) *Model {
	m := &Model{
		index:   make(map[string]int),
		heights: NewHeightCache(),
		cells:   newCellPool(),
		tops:    []int{0},
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// ---------------------------------------------------------------------------
// Mutations
// ---------------------------------------------------------------------------

// SetSize updates the viewport dimensions. Heights measured at another
// width simply miss in the cache.
func (m *Model) SetSize(w, h int) {
	if w != m.width {
		m.cells.reset()
	}
	m.width = w
	m.height = h
	m.dirty = true
	m.Layout()
}

// SetItems replaces the item slice. Cached heights survive for ids that are
// still present; the rest are dropped.
func (m *Model) SetItems(items []Item) {
	m.items = items
	m.index = make(map[string]int, len(items))
	for i, it := range items {
		m.index[it.ID()] = i
	}
	m.heights.Retain(func(id string) bool {
		_, ok := m.index[id]
		return ok
	})
	m.dirty = true
	m.Layout()
}

// Invalidate drops the cached height and rendered cell for id. The next
// Layout remeasures it.
func (m *Model) Invalidate(id string) {
	m.heights.Invalidate(id)
	m.cells.evict(id)
	m.dirty = true
}

// InvalidateAll drops every cached height and cell.
func (m *Model) InvalidateAll() {
	m.heights.Reset()
	m.cells.reset()
	m.dirty = true
}

// MarkDirty forces the next Layout to remeasure against the cache.
func (m *Model) MarkDirty() { m.dirty = true }

// SetScrollbarStyle restyles the scrollbar, e.g. after a theme change.
func (m *Model) SetScrollbarStyle(thumb, track lipgloss.Style) {
	m.thumbStyle = thumb
	m.trackStyle = track
}

// SetBottomInset updates the bottom inset.
func (m *Model) SetBottomInset(inset int) {
	m.bottomInset = inset
}

// ---------------------------------------------------------------------------
// Layout
// ---------------------------------------------------------------------------

// Layout rebuilds the top-offset table when anything changed since the last
// pass and clamps the offset into the physical content range.
func (m *Model) Layout() {
	if m.dirty {
		m.tops = m.tops[:0]
		row := 0
		for i, it := range m.items {
			m.tops = append(m.tops, row)
			row += m.measure(it)
			if i < len(m.items)-1 {
				row += m.gap
			}
		}
		m.tops = append(m.tops, row)
		m.dirty = false
	}
	m.offset = clamp(m.offset, 0, m.physicalMax())
}

// measure returns the height of it at the current width, going through the
// cache unless the item is ephemeral.
func (m *Model) measure(it Item) int {
	w := m.itemWidth()
	if w <= 0 {
		return 1
	}
	if e, ok := it.(Ephemeral); ok && e.Ephemeral() {
		return atLeastOne(it.Height(w))
	}
	id, v := it.ID(), it.ContentVersion()
	if h, ok := m.heights.Get(id, w, v); ok {
		return h
	}
	h := atLeastOne(it.Height(w))
	m.heights.Put(id, w, v, h)
	return h
}

// IsMeasured reports whether id has a valid height at the current width and
// the viewport has a size, i.e. scrolling to it would land where expected.
func (m *Model) IsMeasured(id string) bool {
	if m.width <= 0 || m.height <= 0 || m.dirty {
		return false
	}
	i, ok := m.index[id]
	if !ok {
		return false
	}
	it := m.items[i]
	if e, ok := it.(Ephemeral); ok && e.Ephemeral() {
		return true
	}
	return m.heights.Has(id, m.itemWidth(), it.ContentVersion())
}

// ---------------------------------------------------------------------------
// Geometry
// ---------------------------------------------------------------------------

// Width returns the viewport width.
func (m *Model) Width() int { return m.width }

// ItemWidth returns the width items are rendered at (the viewport width
// minus the scrollbar column).
func (m *Model) ItemWidth() int { return m.itemWidth() }

// ViewportHeight returns the number of visible rows.
func (m *Model) ViewportHeight() int { return m.height }

// ContentHeight returns the physical content height in rows.
func (m *Model) ContentHeight() int { return m.tops[len(m.tops)-1] }

// Offset returns the current top row.
func (m *Model) Offset() int { return m.offset }

// BottomInset returns the current bottom inset.
func (m *Model) BottomInset() int { return m.bottomInset }

// Len returns the number of items.
func (m *Model) Len() int { return len(m.items) }

// MaxOffset is the largest offset reachable by scrolling:
// contentHeight − viewportHeight + bottomInset, floored at zero.
func (m *Model) MaxOffset() int {
	return max(0, m.ContentHeight()-m.height+m.bottomInset)
}

// DistanceFromBottom returns MaxOffset − Offset.
func (m *Model) DistanceFromBottom() int {
	return m.MaxOffset() - m.offset
}

// ItemTop returns the first row of the item with the given id.
func (m *Model) ItemTop(id string) (int, bool) {
	i, ok := m.index[id]
	if !ok || i >= len(m.tops) {
		return 0, false
	}
	return m.tops[i], true
}

// ItemAt resolves a viewport row to an item index and the row inside that
// item. It returns -1 for gap rows and rows past the content.
func (m *Model) ItemAt(y int) (idx, row int) {
	if y < 0 || y >= m.height || len(m.items) == 0 {
		return -1, 0
	}
	abs := m.offset + y
	i := sort.Search(len(m.items), func(i int) bool { return m.tops[i+1] > abs }) // first item ending after abs
	if i >= len(m.items) {
		return -1, 0
	}
	row = abs - m.tops[i]
	if row >= m.itemHeightAt(i) {
		return -1, 0
	}
	return i, row
}

// Item returns the item at index i.
func (m *Model) Item(i int) Item { return m.items[i] }

func (m *Model) itemHeightAt(i int) int {
	h := m.tops[i+1] - m.tops[i]
	if i < len(m.items)-1 {
		h -= m.gap
	}
	return h
}

func (m *Model) physicalMax() int {
	return max(0, m.ContentHeight()-m.height)
}

func (m *Model) itemWidth() int {
	if m.scrollbar && m.width > 1 {
		return m.width - 1
	}
	return m.width
}

// ---------------------------------------------------------------------------
// Scroll
// ---------------------------------------------------------------------------

// SetOffset moves the viewport to row o, clamped to the physical range.
func (m *Model) SetOffset(o int) {
	m.offset = clamp(o, 0, m.physicalMax())
}

// ScrollBy moves the viewport by delta rows within [0, MaxOffset]. An
// offset already beyond MaxOffset is never pulled back by scrolling down.
func (m *Model) ScrollBy(delta int) {
	if delta == 0 {
		return
	}
	hi := m.MaxOffset()
	if delta > 0 && m.offset >= hi {
		return
	}
	m.offset = clamp(m.offset+delta, 0, max(hi, 0))
}

// ScrollToBottom moves to MaxOffset.
func (m *Model) ScrollToBottom() { m.offset = m.MaxOffset() }

// ScrollToTop moves to row zero.
func (m *Model) ScrollToTop() { m.offset = 0 }

// ScrollToFraction positions the viewport at f ∈ [0,1] of the scrollable
// range (used for scrollbar drags).
func (m *Model) ScrollToFraction(f float64) {
	f = min(max(f, 0), 1)
	m.offset = int(f*float64(m.MaxOffset()) + 0.5)
}

// OnScrollbar reports whether column x is the scrollbar column.
func (m *Model) OnScrollbar(x int) bool {
	return m.scrollbarVisible() && x == m.width-1
}

func (m *Model) scrollbarVisible() bool {
	return m.scrollbar && m.width > 1 && m.MaxOffset() > 0
}

// ---------------------------------------------------------------------------
// View
// ---------------------------------------------------------------------------

// View renders the rows visible in the viewport. Items outside it are not
// rendered at all; visible ones are drawn into pooled cells that are reused
// as items scroll in and out.
func (m *Model) View() string {
	if m.width <= 0 || m.height <= 0 {
		return ""
	}
	w := m.itemWidth()
	rows := make([]string, 0, m.height)

	first := sort.Search(len(m.items), func(i int) bool { return m.tops[i+1] > m.offset })
	for i := first; i < len(m.items) && len(rows) < m.height; i++ {
		it := m.items[i]
		c := m.cells.acquire(it.ID())
		c.fill(it, w)

		h := m.itemHeightAt(i)
		start := 0
		if m.tops[i] < m.offset {
			start = m.offset - m.tops[i]
		}
		for r := start; r < h && len(rows) < m.height; r++ {
			line := ""
			if r < len(c.lines) {
				line = c.lines[r]
			}
			rows = append(rows, ansi.Truncate(line, w, ""))
		}
		if i < len(m.items)-1 {
			gapStart := 0
			if end := m.tops[i] + h; end < m.offset {
				gapStart = m.offset - end
			}
			for g := gapStart; g < m.gap && len(rows) < m.height; g++ {
				rows = append(rows, "")
			}
		}
	}
	m.cells.sweep()

	for len(rows) < m.height {
		rows = append(rows, "")
	}

	if m.scrollbarVisible() {
		bar := scrollbarRows(m.height, m.MaxOffset()+m.height, m.offset, m.thumbStyle, m.trackStyle)
		for i := range rows {
			pad := w - ansi.StringWidth(rows[i])
			if pad > 0 {
				rows[i] += strings.Repeat(" ", pad)
			}
			rows[i] += bar[i]
		}
	}
	return strings.Join(rows, "\n")
}

// LiveCells returns the number of cells currently bound to visible items.
func (m *Model) LiveCells() int { return m.cells.live() }

// AllocatedCells returns the number of cells ever allocated.
func (m *Model) AllocatedCells() int { return m.cells.allocated }

// Heights exposes the height cache.
func (m *Model) Heights() *HeightCache { return m.heights }

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func clamp(v, lo, hi int) int {
	if hi < lo {
		hi = lo
	}
	return min(max(v, lo), hi)
}

func atLeastOne(h int) int {
	if h <= 0 {
		return 1
	}
	return h
}
