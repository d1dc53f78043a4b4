package list

// Atomically applies a size-changing mutation with the scroll offset held
// fixed: capture, mutate, lay out, restore. Nothing is drawn in between
// because View only runs after the update loop returns.
func (m *Model) Atomically(mutate func()) {
	saved := m.offset
	mutate()
	m.dirty = true
	m.Layout()
	m.offset = clamp(saved, 0, m.physicalMax())
}
