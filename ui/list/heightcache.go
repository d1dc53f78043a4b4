package list

// HeightCache maps an item identity to its last measured height. An entry is
// only valid for the width and content version it was measured at, so a
// resize or a content change makes it stale without an explicit eviction.
// Owners still call Invalidate on content changes so stale entries do not
// linger for items that are never measured again.
type HeightCache struct {
	entries map[string]heightEntry
	hits    int
	misses  int
}

type heightEntry struct {
	height  int
	width   int
	version int
}

// NewHeightCache returns an empty cache.
func NewHeightCache() *HeightCache {
	return &HeightCache{entries: make(map[string]heightEntry)}
}

// Get returns the cached height for id when it was measured at the same
// width and version.
func (c *HeightCache) Get(id string, width, version int) (int, bool) {
	e, ok := c.entries[id]
	if !ok || e.width != width || e.version != version {
		c.misses++
		return 0, false
	}
	c.hits++
	return e.height, true
}

// Put records a measurement.
func (c *HeightCache) Put(id string, width, version, height int) {
	c.entries[id] = heightEntry{height: height, width: width, version: version}
}

// Has reports whether a valid entry exists without touching the hit counters.
func (c *HeightCache) Has(id string, width, version int) bool {
	e, ok := c.entries[id]
	return ok && e.width == width && e.version == version
}

// Invalidate drops the entry for id.
func (c *HeightCache) Invalidate(id string) {
	delete(c.entries, id)
}

// Reset drops every entry.
func (c *HeightCache) Reset() {
	c.entries = make(map[string]heightEntry)
}

// Retain drops every entry whose id is rejected by keep.
func (c *HeightCache) Retain(keep func(id string) bool) {
	for id := range c.entries {
		if !keep(id) {
			delete(c.entries, id)
		}
	}
}

// Len returns the number of entries, valid or not.
func (c *HeightCache) Len() int { return len(c.entries) }

// Stats returns lookup hit and miss counts.
func (c *HeightCache) Stats() (hits, misses int) { return c.hits, c.misses }
