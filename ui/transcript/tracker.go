package transcript

// Tracker classifies the viewport position as at-bottom or not and tracks
// whether the viewer is driving the scroll position.
//
// At bottom means distanceFromBottom ≤ slack. Leaving the bottom marks the
// viewer as scrolling, returning clears it. Drags mark the viewer as
// scrolling immediately and only release it once they end at the bottom.
type Tracker struct {
	slack         int
	atBottom      *Observable[bool]
	userScrolling *Observable[bool]
	dragging      bool
}

// NewTracker returns a tracker that starts at the bottom.
func NewTracker(slack int) *Tracker {
	return &Tracker{
		slack:         max(0, slack),
		atBottom:      NewObservable(true),
		userScrolling: NewObservable(false),
	}
}

// SetSlack updates the at-bottom tolerance.
func (t *Tracker) SetSlack(slack int) { t.slack = max(0, slack) }

// Observe records a new distance from the bottom. Notifications only fire
// on transitions.
func (t *Tracker) Observe(distanceFromBottom int) {
	at := distanceFromBottom <= t.slack
	if t.atBottom.Set(at) {
		t.userScrolling.Set(!at)
	}
}

// BeginDrag marks the viewer as scrolling.
func (t *Tracker) BeginDrag() {
	t.dragging = true
	t.userScrolling.Set(true)
}

// EndDrag ends the interaction. The viewer stops counting as scrolling only
// if the drag left them at the bottom.
func (t *Tracker) EndDrag() {
	t.dragging = false
	if t.atBottom.Get() {
		t.userScrolling.Set(false)
	}
}

// Release clears the scrolling flag unconditionally, for programmatic jumps
// that take over the scroll position.
func (t *Tracker) Release() {
	t.dragging = false
	t.userScrolling.Set(false)
}

// Reset returns to the initial at-bottom state.
func (t *Tracker) Reset() {
	t.dragging = false
	t.atBottom.Set(true)
	t.userScrolling.Set(false)
}

func (t *Tracker) IsAtBottom() bool      { return t.atBottom.Get() }
func (t *Tracker) IsUserScrolling() bool { return t.userScrolling.Get() }
func (t *Tracker) IsDragging() bool      { return t.dragging }

// OnAtBottomChange subscribes to at-bottom transitions.
func (t *Tracker) OnAtBottomChange(fn func(bool)) func() { return t.atBottom.Subscribe(fn) }

// OnUserScrollingChange subscribes to user-scrolling transitions.
func (t *Tracker) OnUserScrollingChange(fn func(bool)) func() { return t.userScrolling.Subscribe(fn) }
