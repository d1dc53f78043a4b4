package list

import (
	"fmt"
	"strings"
	"testing"

	"charm.land/lipgloss/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// Test item implementation
// ---------------------------------------------------------------------------

type testItem struct {
	id      string
	content string
	version int
	renders *int
}

func (t testItem) ID() string          { return t.id }
func (t testItem) ContentVersion() int { return t.version }
func (t testItem) Height(int) int      { return strings.Count(t.content, "\n") + 1 }
func (t testItem) Render(int) string {
	if t.renders != nil {
		*t.renders++
	}
	return t.content
}

type ephemeralItem struct{ testItem }

func (ephemeralItem) Ephemeral() bool { return true }

func makeItem(id, content string) testItem {
	return testItem{id: id, content: content, version: 1}
}

func multiLineItem(id string, lines int) testItem {
	parts := make([]string, lines)
	for i := range parts {
		parts[i] = fmt.Sprintf("%s-L%d", id, i)
	}
	return testItem{id: id, content: strings.Join(parts, "\n"), version: 1}
}

func items(its ...testItem) []Item {
	out := make([]Item, len(its))
	for i, it := range its {
		out[i] = it
	}
	return out
}

// ---------------------------------------------------------------------------
// Layout / height cache
// ---------------------------------------------------------------------------

func TestNew_EmptyViewIsBlank(t *testing.T) {
	m := New(WithSize(10, 3))
	assert.Equal(t, "\n\n", m.View())
	assert.Equal(t, 0, m.ContentHeight())
	assert.Equal(t, 0, m.MaxOffset())
}

func TestLayout_HeightsAndGap(t *testing.T) {
	m := New(WithSize(20, 5), WithGap(1))
	m.SetItems(items(multiLineItem("a", 2), multiLineItem("b", 3)))
	// 2 + gap 1 + 3
	assert.Equal(t, 6, m.ContentHeight())
	top, ok := m.ItemTop("b")
	require.True(t, ok)
	assert.Equal(t, 3, top)
	assert.Equal(t, 1, m.MaxOffset())
}

func TestHeightCache_KeyedByIdentity(t *testing.T) {
	m := New(WithSize(20, 5))
	a, b := multiLineItem("a", 2), multiLineItem("b", 3)
	m.SetItems(items(a, b))
	assert.Equal(t, 2, m.Heights().Len())

	// Reordering keeps the cached heights: entries follow ids, not indices.
	m.SetItems(items(b, a))
	hits, _ := m.Heights().Stats()
	assert.Equal(t, 2, hits)
	top, _ := m.ItemTop("a")
	assert.Equal(t, 3, top)
}

func TestHeightCache_VersionAndWidthInvalidate(t *testing.T) {
	c := NewHeightCache()
	c.Put("a", 80, 1, 4)
	_, ok := c.Get("a", 80, 2)
	assert.False(t, ok, "new version must miss")
	_, ok = c.Get("a", 40, 1)
	assert.False(t, ok, "new width must miss")
	h, ok := c.Get("a", 80, 1)
	assert.True(t, ok)
	assert.Equal(t, 4, h)

	c.Invalidate("a")
	assert.False(t, c.Has("a", 80, 1))
}

func TestSetItems_PrunesVanishedIDs(t *testing.T) {
	m := New(WithSize(20, 5))
	m.SetItems(items(makeItem("a", "x"), makeItem("b", "y")))
	m.SetItems(items(makeItem("b", "y")))
	assert.Equal(t, 1, m.Heights().Len())
}

func TestEphemeral_NotCached(t *testing.T) {
	m := New(WithSize(20, 5))
	m.SetItems([]Item{ephemeralItem{makeItem("welcome", "hi\nthere")}})
	assert.Equal(t, 0, m.Heights().Len())
	assert.Equal(t, 2, m.ContentHeight())
	assert.True(t, m.IsMeasured("welcome"))
}

func TestIsMeasured(t *testing.T) {
	m := New()
	m.SetItems(items(makeItem("a", "x")))
	assert.False(t, m.IsMeasured("a"), "no viewport size yet")

	m.SetSize(10, 4)
	assert.True(t, m.IsMeasured("a"))
	assert.False(t, m.IsMeasured("missing"))

	m.Invalidate("a")
	assert.False(t, m.IsMeasured("a"))
	m.Layout()
	assert.True(t, m.IsMeasured("a"))
}

// ---------------------------------------------------------------------------
// Scroll
// ---------------------------------------------------------------------------

func TestScrollBy_ClampsToMaxOffset(t *testing.T) {
	m := New(WithSize(10, 4))
	m.SetItems(items(multiLineItem("a", 10)))
	m.ScrollBy(100)
	assert.Equal(t, 6, m.Offset())
	m.ScrollBy(-2)
	assert.Equal(t, 4, m.Offset())
	m.ScrollBy(-100)
	assert.Equal(t, 0, m.Offset())
}

func TestBottomInset_ShrinksScrollableRange(t *testing.T) {
	m := New(WithSize(10, 4))
	m.SetItems(items(multiLineItem("a", 10)))
	m.SetBottomInset(-3)
	assert.Equal(t, 3, m.MaxOffset())
	m.ScrollToBottom()
	assert.Equal(t, 3, m.Offset())
	assert.Equal(t, 0, m.DistanceFromBottom())

	m.ScrollBy(5)
	assert.Equal(t, 3, m.Offset(), "scrolling must not reach the reserved rows")
}

func TestScrollToFraction(t *testing.T) {
	m := New(WithSize(10, 4))
	m.SetItems(items(multiLineItem("a", 14)))
	m.ScrollToFraction(0.5)
	assert.Equal(t, 5, m.Offset())
	m.ScrollToFraction(2)
	assert.Equal(t, 10, m.Offset())
}

func TestAtomically_PreservesOffset(t *testing.T) {
	m := New(WithSize(10, 4))
	a := multiLineItem("a", 10)
	m.SetItems(items(a))
	m.SetOffset(5)

	grown := multiLineItem("a", 20)
	grown.version = 2
	m.Atomically(func() {
		m.SetItems(items(grown))
	})
	assert.Equal(t, 5, m.Offset())

	shrunk := multiLineItem("a", 6)
	shrunk.version = 3
	m.Atomically(func() {
		m.SetItems(items(shrunk))
	})
	assert.Equal(t, 2, m.Offset(), "restored offset is clamped to the physical range")
}

// ---------------------------------------------------------------------------
// Hit testing
// ---------------------------------------------------------------------------

func TestItemAt(t *testing.T) {
	m := New(WithSize(10, 6), WithGap(1))
	m.SetItems(items(multiLineItem("a", 2), multiLineItem("b", 2)))

	idx, row := m.ItemAt(1)
	assert.Equal(t, 0, idx)
	assert.Equal(t, 1, row)

	idx, _ = m.ItemAt(2)
	assert.Equal(t, -1, idx, "gap row")

	idx, row = m.ItemAt(3)
	assert.Equal(t, 1, idx)
	assert.Equal(t, 0, row)

	idx, _ = m.ItemAt(5)
	assert.Equal(t, -1, idx, "past content")
}

// ---------------------------------------------------------------------------
// View / cell reuse
// ---------------------------------------------------------------------------

func TestView_RendersOnlyVisibleRows(t *testing.T) {
	m := New(WithSize(10, 3), WithGap(1))
	m.SetItems(items(multiLineItem("a", 2), multiLineItem("b", 2), multiLineItem("c", 2)))
	m.SetOffset(1)
	assert.Equal(t, "a-L1\n\nb-L0", m.View())

	m.SetOffset(2)
	assert.Equal(t, "\nb-L0\nb-L1", m.View())
}

func TestView_TruncatesToWidth(t *testing.T) {
	m := New(WithSize(4, 1))
	m.SetItems(items(makeItem("a", "abcdefgh")))
	assert.Equal(t, "abcd", m.View())
}

func TestView_CellsAreReused(t *testing.T) {
	m := New(WithSize(10, 3))
	var its []testItem
	for i := range 50 {
		its = append(its, multiLineItem(fmt.Sprintf("m%d", i), 2))
	}
	m.SetItems(items(its...))

	for off := 0; off <= m.MaxOffset(); off++ {
		m.SetOffset(off)
		_ = m.View()
		assert.LessOrEqual(t, m.LiveCells(), 3)
	}
	assert.LessOrEqual(t, m.AllocatedCells(), 4, "cells must be recycled, not allocated per item")
}

func TestView_SkipsRenderForUnchangedCell(t *testing.T) {
	renders := 0
	it := makeItem("a", "hello")
	it.renders = &renders
	m := New(WithSize(10, 2))
	m.SetItems(items(it))

	_ = m.View()
	_ = m.View()
	assert.Equal(t, 1, renders)

	it.version = 2
	m.SetItems(items(it))
	_ = m.View()
	assert.Equal(t, 2, renders)
}

func TestView_Scrollbar(t *testing.T) {
	m := New(WithSize(6, 2), WithScrollbar(testStyle(), testStyle()))
	m.SetItems(items(multiLineItem("a", 4)))
	assert.Equal(t, 5, m.ItemWidth())
	assert.True(t, m.OnScrollbar(5))
	lines := strings.Split(m.View(), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], scrollThumbChar)
	assert.Contains(t, lines[1], scrollTrackChar)
}

func testStyle() lipgloss.Style { return lipgloss.NewStyle() }
