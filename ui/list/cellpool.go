package list

import "strings"

// cell holds the rendered rows of one visible item. Cells are bound to an
// item id while the item is on screen and returned to the free list once it
// scrolls out, so the number of live cells tracks the viewport, not the
// transcript length.
type cell struct {
	id      string
	version int
	width   int
	lines   []string
	used    bool
}

type cellPool struct {
	bound     map[string]*cell
	free      []*cell
	allocated int
}

func newCellPool() *cellPool {
	return &cellPool{bound: make(map[string]*cell)}
}

// acquire returns the cell bound to id, rebinding a free cell (or allocating
// one) when the item was not on screen last frame.
func (p *cellPool) acquire(id string) *cell {
	if c, ok := p.bound[id]; ok {
		c.used = true
		return c
	}
	var c *cell
	if n := len(p.free); n > 0 {
		c = p.free[n-1]
		p.free = p.free[:n-1]
	} else {
		c = &cell{}
		p.allocated++
	}
	c.id = id
	c.version = -1
	c.width = -1
	c.lines = c.lines[:0]
	c.used = true
	p.bound[id] = c
	return c
}

// fill renders item into c unless c already holds that version at width.
func (c *cell) fill(item Item, width int) {
	v := item.ContentVersion()
	if c.version == v && c.width == width {
		return
	}
	c.lines = append(c.lines[:0], strings.Split(item.Render(width), "\n")...)
	c.version = v
	c.width = width
}

// sweep moves every cell not used since the previous sweep to the free list.
func (p *cellPool) sweep() {
	for id, c := range p.bound {
		if !c.used {
			delete(p.bound, id)
			c.id = ""
			p.free = append(p.free, c)
			continue
		}
		c.used = false
	}
}

// evict unbinds the cell for id so its next acquire re-renders.
func (p *cellPool) evict(id string) {
	if c, ok := p.bound[id]; ok {
		delete(p.bound, id)
		c.id = ""
		c.used = false
		p.free = append(p.free, c)
	}
}

func (p *cellPool) reset() {
	for id := range p.bound {
		p.evict(id)
	}
}

func (p *cellPool) live() int { return len(p.bound) }
