// Package schedule provides the deferred-task queue used by the transcript
// renderer. Everything runs on the Bubble Tea update loop: a task is either
// run after the next layout pass or after a delay, and in both cases the
// queue only hands back a tea.Cmd that wakes the loop up. The actual work
// happens when the resulting message is passed back through Fire or
// RunLayout.
//
// Tasks are keyed by a purpose tag. Enqueuing a task with a tag that already
// has a pending task cancels the pending one, unless the pending task has a
// higher priority, in which case the new task is dropped.
package schedule

import (
	"sort"
	"time"

	tea "charm.land/bubbletea/v2"
)

// Tag names the purpose of a pending task.
type Tag string

const (
	TagScroll          Tag = "scroll"
	TagResync          Tag = "resync"
	TagBufferCollapse  Tag = "bufferCollapse"
	TagScrollAnimation Tag = "scrollAnimation"
)

// FireMsg is delivered when a delayed task is due. It is stale (and ignored)
// if the task was cancelled or superseded in the meantime.
type FireMsg struct {
	Tag Tag
	Gen uint64
}

// LayoutMsg asks the owner to run a layout pass and then RunLayout.
type LayoutMsg struct{}

type task struct {
	tag         Tag
	priority    int
	gen         uint64
	afterLayout bool
	run         func() tea.Cmd
}

// Queue is a tag-keyed, prioritized, cancellable task queue. The zero value
// is not usable; construct with New.
type Queue struct {
	pending map[Tag]*task
	gen     uint64
	tick    TickFunc
}

// TickFunc matches tea.Tick.
type TickFunc func(time.Duration, func(time.Time) tea.Msg) tea.Cmd

// Option configures a Queue.
type Option func(*Queue)

// WithTick replaces tea.Tick as the source of delayed wake-ups.
func WithTick(tick TickFunc) Option {
	return func(q *Queue) {
		if tick != nil {
			q.tick = tick
		}
	}
}

// New returns an empty queue.
func New(opts ...Option) *Queue {
	q := &Queue{
		pending: make(map[Tag]*task),
		tick:    tea.Tick,
	}
	for _, o := range opts {
		o(q)
	}
	return q
}

// AfterLayout schedules fn to run once the next layout pass has completed.
// Tasks enqueued while RunLayout is draining wait for the pass after that.
func (q *Queue) AfterLayout(tag Tag, priority int, fn func() tea.Cmd) tea.Cmd {
	if !q.admit(tag, priority) {
		return nil
	}
	q.gen++
	q.pending[tag] = &task{tag: tag, priority: priority, gen: q.gen, afterLayout: true, run: fn}
	return func() tea.Msg { return LayoutMsg{} }
}

// After schedules fn to run once d has elapsed.
func (q *Queue) After(tag Tag, priority int, d time.Duration, fn func() tea.Cmd) tea.Cmd {
	if !q.admit(tag, priority) {
		return nil
	}
	q.gen++
	t := &task{tag: tag, priority: priority, gen: q.gen, run: fn}
	q.pending[tag] = t
	gen := t.gen
	return q.tick(d, func(time.Time) tea.Msg { return FireMsg{Tag: tag, Gen: gen} })
}

// admit reports whether a task with the given priority may replace whatever
// is pending under tag.
func (q *Queue) admit(tag Tag, priority int) bool {
	if p, ok := q.pending[tag]; ok && p.priority > priority {
		return false
	}
	return true
}

// Cancel drops the pending task for tag, if any.
func (q *Queue) Cancel(tags ...Tag) {
	for _, tag := range tags {
		delete(q.pending, tag)
	}
}

// CancelBelow drops pending tasks for tag whose priority is lower than p.
func (q *Queue) CancelBelow(tag Tag, p int) {
	if t, ok := q.pending[tag]; ok && t.priority < p {
		delete(q.pending, tag)
	}
}

// Pending reports whether a task is waiting under tag.
func (q *Queue) Pending(tag Tag) bool {
	_, ok := q.pending[tag]
	return ok
}

// PendingMsg returns the message that would fire the task pending under tag.
// Layout tasks report a LayoutMsg.
func (q *Queue) PendingMsg(tag Tag) (tea.Msg, bool) {
	t, ok := q.pending[tag]
	if !ok {
		return nil, false
	}
	if t.afterLayout {
		return LayoutMsg{}, true
	}
	return FireMsg{Tag: t.tag, Gen: t.gen}, true
}

// Fire runs the delayed task addressed by m. Stale messages are ignored and
// reported as not run.
func (q *Queue) Fire(m FireMsg) (tea.Cmd, bool) {
	t, ok := q.pending[m.Tag]
	if !ok || t.gen != m.Gen || t.afterLayout {
		return nil, false
	}
	delete(q.pending, m.Tag)
	return t.run(), true
}

// RunLayout runs every after-layout task that was pending when the call
// started, highest priority first.
func (q *Queue) RunLayout() tea.Cmd {
	var due []*task
	for tag, t := range q.pending {
		if t.afterLayout {
			due = append(due, t)
			delete(q.pending, tag)
		}
	}
	if len(due) == 0 {
		return nil
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].priority != due[j].priority {
			return due[i].priority > due[j].priority
		}
		return due[i].gen < due[j].gen
	})
	cmds := make([]tea.Cmd, 0, len(due))
	for _, t := range due {
		cmds = append(cmds, t.run())
	}
	return tea.Batch(cmds...)
}
