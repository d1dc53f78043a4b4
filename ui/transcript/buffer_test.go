package transcript

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBareWrapper(id string) *Wrapper {
	return newWrapper(Message{ID: id, Role: RoleAssistant}, &renderContext{content: PlainRenderer{}}, true)
}

func TestBuffer_Monotonicity(t *testing.T) {
	const vh = 100
	b := newBufferController(0.8, 50)
	w := newBareWrapper("a")
	require.NoError(t, b.begin(w, vh))
	assert.Equal(t, 1.0, w.BufferMultiplier())
	assert.Equal(t, vh, w.Reserved())

	prev := w.BufferMultiplier()
	for h := 0; h <= 320; h += 7 {
		w.measuredHeight = h
		b.observe(h, vh)
		require.GreaterOrEqual(t, w.BufferMultiplier(), prev, "multiplier must never decrease")
		prev = w.BufferMultiplier()
	}
	w.measuredHeight = 320
	b.observe(320, vh)
	assert.GreaterOrEqual(t, w.BufferMultiplier(), 4.0)
	assert.Equal(t, int(w.BufferMultiplier()*vh), w.Reserved())
}

func TestBuffer_Hysteresis(t *testing.T) {
	const vh = 100
	b := newBufferController(0.8, 50)
	w := newBareWrapper("a")
	require.NoError(t, b.begin(w, vh))

	assert.False(t, b.observe(80, vh), "80 is not above 0.8 × 100")
	assert.True(t, b.observe(81, vh))
	assert.Equal(t, 81, w.LastExtensionHeight())
	assert.Equal(t, 2.0, w.BufferMultiplier())

	// Above 0.8 × 200 but within 50 rows of the last extension.
	b.target.reserved = 150
	assert.False(t, b.observe(125, vh))
	assert.True(t, b.observe(132, vh))
}

func TestBuffer_ResetOnlyForNewTarget(t *testing.T) {
	const vh = 10
	b := newBufferController(0.8, 2)
	a := newBareWrapper("a")
	require.NoError(t, b.begin(a, vh))
	b.observe(9, vh)
	b.observe(17, vh)
	require.Equal(t, 3.0, a.BufferMultiplier())

	b.abandon()
	assert.Equal(t, PhaseIdle, b.phase)
	assert.Equal(t, 3.0, a.BufferMultiplier(), "abandoning keeps the old target's multiplier")

	next := newBareWrapper("b")
	require.NoError(t, b.begin(next, vh))
	assert.Equal(t, 1.0, next.BufferMultiplier())
}

func TestBuffer_NoExtensionWithoutViewport(t *testing.T) {
	b := newBufferController(0.8, 2)
	w := newBareWrapper("a")
	require.NoError(t, b.begin(w, 0))
	assert.False(t, b.observe(50, 0))
	assert.Equal(t, 1.0, w.BufferMultiplier())

	b.resize(10)
	assert.Equal(t, 10, w.Reserved())
}

func TestLifecycle_Transitions(t *testing.T) {
	tests := []struct {
		from, to Phase
		ok       bool
	}{
		{PhaseIdle, PhaseStreaming, true},
		{PhaseStreaming, PhaseSettling, true},
		{PhaseSettling, PhaseIdle, true},
		{PhaseIdle, PhaseSettling, false},
		{PhaseIdle, PhaseIdle, false},
		{PhaseStreaming, PhaseIdle, false},
		{PhaseStreaming, PhaseStreaming, false},
		{PhaseSettling, PhaseStreaming, false},
	}
	for _, tt := range tests {
		t.Run(tt.from.String()+"→"+tt.to.String(), func(t *testing.T) {
			l := lifecycle{phase: tt.from}
			err := l.to(tt.to)
			if tt.ok {
				require.NoError(t, err)
				assert.Equal(t, tt.to, l.phase)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidTransition))
			assert.Equal(t, tt.from, l.phase)
		})
	}
}

func TestBuffer_BeginTwiceIsRejected(t *testing.T) {
	b := newBufferController(0.8, 2)
	require.NoError(t, b.begin(newBareWrapper("a"), 10))
	err := b.begin(newBareWrapper("b"), 10)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestBuffer_CollapseAnimatesDownToMeasured(t *testing.T) {
	const vh = 10
	b := newBufferController(0.8, 2)
	w := newBareWrapper("a")
	require.NoError(t, b.begin(w, vh))
	b.observe(9, vh)
	require.Equal(t, 20, w.Reserved())
	w.measuredHeight = 12

	animate, err := b.end(200 * time.Millisecond)
	require.NoError(t, err)
	require.True(t, animate)
	assert.Equal(t, PhaseSettling, b.phase)

	frames := 0
	last := w.Reserved()
	for !b.step() {
		frames++
		require.LessOrEqual(t, w.Reserved(), last, "collapse never grows")
		require.GreaterOrEqual(t, w.Reserved(), 12)
		last = w.Reserved()
		require.Less(t, frames, 100)
	}
	assert.LessOrEqual(t, frames, 12)
	assert.Equal(t, PhaseIdle, b.phase)
	assert.Equal(t, 0, w.Reserved(), "settled items carry no reservation")
	assert.Equal(t, 0, b.spare())
}

func TestBuffer_EndWithoutSpareSnaps(t *testing.T) {
	b := newBufferController(0.8, 2)
	w := newBareWrapper("a")
	require.NoError(t, b.begin(w, 10))
	w.measuredHeight = 10

	animate, err := b.end(200 * time.Millisecond)
	require.NoError(t, err)
	assert.False(t, animate)
	assert.Equal(t, PhaseIdle, b.phase)
}

func TestBuffer_Spare(t *testing.T) {
	b := newBufferController(0.8, 2)
	w := newBareWrapper("a")
	require.NoError(t, b.begin(w, 10))
	w.measuredHeight = 4
	assert.Equal(t, 6, b.spare())
	w.measuredHeight = 14
	assert.Equal(t, 0, b.spare())
}
