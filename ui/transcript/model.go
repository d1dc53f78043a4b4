// Package transcript renders a live, growing conversation inside a fixed
// viewport.
//
// The Model owns one Wrapper per message identity and feeds them to a
// virtualized list. The single streaming assistant message gets reserved
// space below its content that grows in viewport-sized steps, so token by
// token growth never shifts what the viewer is looking at. A Tracker
// classifies the viewport as at-bottom or not; scroll requests from several
// sources are resolved to one effect per pass and deferred work runs through
// a schedule.Queue on the Bubble Tea loop.
package transcript

import (
	"log/slog"
	"math"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/harmonica"
	"github.com/miosa/osa-transcript/style"
	"github.com/miosa/osa-transcript/ui/list"
	"github.com/miosa/osa-transcript/ui/schedule"
)

const (
	scrollAnimFrames = 30
	scrollAnimFreq   = 18.0
)

// Option configures a Model.
type Option func(*Model)

// WithLogger sets the logger for layout diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(m *Model) {
		if l != nil {
			m.log = l
		}
	}
}

// WithConfig sets the initial configuration.
func WithConfig(c Config) Option {
	return func(m *Model) { m.cfg = c }
}

// WithTheme sets the initial theme.
func WithTheme(t style.Theme) Option {
	return func(m *Model) { m.theme = t }
}

// WithContentRenderer replaces the glamour body renderer.
func WithContentRenderer(r ContentRenderer) Option {
	return func(m *Model) { m.ctx.content = r }
}

// WithKeyMap replaces the scroll bindings.
func WithKeyMap(k KeyMap) Option {
	return func(m *Model) { m.keys = k }
}

// WithWelcome sets the detail lines of the empty-transcript placeholder.
func WithWelcome(detail, cwd string) Option {
	return func(m *Model) {
		m.welcome.detail = detail
		m.welcome.cwd = cwd
	}
}

// WithScheduler replaces the deferred task queue.
func WithScheduler(q *schedule.Queue) Option {
	return func(m *Model) {
		if q != nil {
			m.tasks = q
		}
	}
}

// OnRequestSignIn is called when the placeholder's sign-in row is activated.
// It is only reachable while the transcript is empty.
func OnRequestSignIn(fn func()) Option {
	return func(m *Model) { m.onSignIn = fn }
}

// OnRemoveAttachment is called with the attachment ID when a chip's remove
// glyph is clicked.
func OnRemoveAttachment(fn func(id string)) Option {
	return func(m *Model) { m.onRemoveAttachment = fn }
}

// Model is the transcript renderer. All methods must be called from the
// Bubble Tea update loop.
type Model struct {
	cfg  Config
	log  *slog.Logger
	keys KeyMap

	list    *list.Model
	tasks   *schedule.Queue
	tracker *Tracker
	buffer  bufferController
	intents scrollQueue

	ctx      *renderContext
	theme    style.Theme
	wrappers map[string]*Wrapper
	order    []*Wrapper
	welcome  *welcomeItem

	messages  []Message
	streaming bool
	count     int
	firstID   string

	token       uint64
	keyboard    bool
	unsubTarget func()

	// Screen position of the top-left corner, for mouse translation.
	x, y    int
	barDrag bool
	anim    scrollAnimation

	onSignIn           func()
	onRemoveAttachment func(string)
}

type scrollAnimation struct {
	active   bool
	spring   harmonica.Spring
	pos, vel float64
	frames   int
}

// New constructs an empty transcript.
func New(opts ...Option) *Model {
	dark, _ := style.Lookup("dark")
	m := &Model{
		cfg:      DefaultConfig(),
		log:      slog.New(slog.DiscardHandler),
		keys:     DefaultKeyMap(),
		tasks:    schedule.New(),
		theme:    dark,
		wrappers: make(map[string]*Wrapper),
		ctx:      &renderContext{},
	}
	m.welcome = &welcomeItem{ctx: m.ctx, version: 1}
	for _, o := range opts {
		o(m)
	}
	m.cfg = m.cfg.withDefaults()
	if m.ctx.content == nil {
		m.ctx.content = newGlamourRenderer(m.log)
	}
	m.ctx.palette = style.NewPalette(m.theme)
	m.welcome.signIn = m.onSignIn != nil

	p := m.ctx.palette
	m.list = list.New(list.WithGap(1), list.WithScrollbar(p.ScrollThumb, p.ScrollTrack))
	m.list.SetItems([]list.Item{m.welcome})
	m.tracker = NewTracker(m.cfg.Slack)
	m.buffer = newBufferController(m.cfg.ExtensionThreshold, m.cfg.ExtensionHysteresis)
	return m
}

// ---------------------------------------------------------------------------
// Public contract
// ---------------------------------------------------------------------------

// Render applies a new snapshot of the conversation. Calling it again with
// the same inputs changes nothing. The list is rebuilt only when the number
// of messages changes; otherwise wrappers are patched in place.
func (m *Model) Render(messages []Message, isStreaming bool, theme style.Theme) tea.Cmd {
	var cmds []tea.Cmd
	n, prev := len(messages), m.count

	switched := prev > 0 && n > 0 && messages[0].ID != m.firstID
	cleared := prev > 0 && n == 0
	if switched || cleared {
		m.log.Debug("transcript reset", "switched", switched, "prev", prev)
		m.reset()
		prev = 0
	}
	if theme.Name == "" {
		theme = m.theme
	} else if theme.Name != m.theme.Name {
		m.setTheme(theme)
	}

	newUserTurn := prev > 0 && n > prev && messages[n-1].Role == RoleUser
	if newUserTurn && m.buffer.active() {
		m.abandonBuffer()
	}

	archivedStart := ArchivedStart(n, m.cfg.MaxVisibleMessages)
	order := make([]*Wrapper, n)
	seen := make(map[string]struct{}, n)
	var target *Wrapper
	for i, msg := range messages {
		w, ok := m.wrappers[msg.ID]
		if !ok {
			w = newWrapper(msg, m.ctx, theme.Dark)
			m.wrappers[msg.ID] = w
		}
		f := itemFlags{
			isLast:        i == n-1,
			isArchived:    i < archivedStart,
			showSeparator: i == archivedStart && archivedStart > 0,
		}
		f.isLoading = f.isLast && isStreaming
		if w.update(msg, f, theme.Dark) {
			m.touch(w)
		}
		if f.isLoading && msg.Role == RoleAssistant {
			target = w
		}
		order[i] = w
		seen[msg.ID] = struct{}{}
	}
	for id, w := range m.wrappers {
		if _, ok := seen[id]; !ok {
			if m.buffer.target == w {
				m.abandonBuffer()
			}
			delete(m.wrappers, id)
		}
	}

	rebuild := n != prev || switched || cleared || !sameOrder(order, m.order)
	m.order = order
	m.messages = messages
	m.streaming = isStreaming
	m.count = n
	if n > 0 {
		m.firstID = messages[0].ID
	}

	cmds = append(cmds, m.syncBuffer(target))
	m.relayout(func() {
		if rebuild {
			m.list.SetItems(m.items())
		}
	})

	switch {
	case prev == 0 && n > 0:
		m.intents.submit(scrollRequest{intent: IntentChatLoad})
	case newUserTurn:
		m.intents.submit(scrollRequest{intent: IntentNewTurn, animated: m.cfg.AnimatedScroll})
	}
	cmds = append(cmds, m.flushIntents(), m.finalize())
	return tea.Batch(cmds...)
}

// RequestScrollToBottom obeys an opaque trigger token: any change of value
// means "scroll to the newest message now".
func (m *Model) RequestScrollToBottom(token uint64) tea.Cmd {
	if token == m.token {
		return nil
	}
	m.token = token
	m.intents.submit(scrollRequest{intent: IntentExplicit})
	return tea.Batch(m.flushIntents(), m.finalize())
}

// SetSize sets the viewport size.
func (m *Model) SetSize(w, h int) tea.Cmd {
	if w == m.list.Width() && h == m.list.ViewportHeight() {
		return nil
	}
	m.relayout(func() {
		m.list.SetSize(w, h)
		m.buffer.resize(h)
		if t := m.buffer.target; t != nil {
			m.touch(t)
		}
	})
	return m.finalize()
}

// SetPosition records where the transcript is drawn on screen so mouse
// events can be translated.
func (m *Model) SetPosition(x, y int) {
	m.x, m.y = x, y
}

// SetKeyboardVisible reports that the composer opened or closed and the
// viewport now has viewportHeight rows. Opening it while at the bottom
// re-issues a scroll once the layout has settled.
func (m *Model) SetKeyboardVisible(visible bool, viewportHeight int) tea.Cmd {
	wasAtBottom := m.tracker.IsAtBottom()
	opened := visible && !m.keyboard
	m.keyboard = visible
	cmd := m.SetSize(m.list.Width(), viewportHeight)
	if opened && wasAtBottom {
		m.intents.submit(scrollRequest{intent: IntentKeyboard})
	}
	return tea.Batch(cmd, m.flushIntents())
}

// SetConfig replaces the configuration.
func (m *Model) SetConfig(c Config) tea.Cmd {
	c = c.withDefaults()
	old := m.cfg
	m.cfg = c
	m.tracker.SetSlack(c.Slack)
	m.buffer.threshold = c.ExtensionThreshold
	m.buffer.hysteresis = c.ExtensionHysteresis
	if c.MaxVisibleMessages != old.MaxVisibleMessages && m.count > 0 {
		return m.Render(m.messages, m.streaming, m.theme)
	}
	return m.finalize()
}

// Config returns the active configuration.
func (m *Model) Config() Config { return m.cfg }

// ActivateSignIn triggers the placeholder's sign-in affordance. It does
// nothing unless the transcript is empty.
func (m *Model) ActivateSignIn() bool {
	if m.count > 0 || m.onSignIn == nil {
		return false
	}
	m.onSignIn()
	return true
}

func (m *Model) IsAtBottom() bool      { return m.tracker.IsAtBottom() }
func (m *Model) IsUserScrolling() bool { return m.tracker.IsUserScrolling() }

// OnAtBottomChange subscribes to at-bottom transitions.
func (m *Model) OnAtBottomChange(fn func(bool)) func() { return m.tracker.OnAtBottomChange(fn) }

// OnUserScrollingChange subscribes to user-scrolling transitions.
func (m *Model) OnUserScrollingChange(fn func(bool)) func() {
	return m.tracker.OnUserScrollingChange(fn)
}

// Wrapper returns the wrapper for a message ID.
func (m *Model) Wrapper(id string) (*Wrapper, bool) {
	w, ok := m.wrappers[id]
	return w, ok
}

// Phase returns the streaming item's display lifecycle phase.
func (m *Model) Phase() Phase { return m.buffer.phase }

func (m *Model) Offset() int             { return m.list.Offset() }
func (m *Model) MaxOffset() int          { return m.list.MaxOffset() }
func (m *Model) DistanceFromBottom() int { return m.list.DistanceFromBottom() }
func (m *Model) Width() int              { return m.list.Width() }
func (m *Model) Height() int             { return m.list.ViewportHeight() }

// ArchivedStart is the index of the first non-archived message.
func ArchivedStart(total, maxVisible int) int {
	return max(0, total-maxVisible)
}

// Stats is a debugging snapshot.
type Stats struct {
	Wrappers       int
	CacheEntries   int
	CacheHits      int
	CacheMisses    int
	LiveCells      int
	AllocatedCells int
	Phase          Phase
	Multiplier     float64
	Reserved       int
	AtBottom       bool
	UserScrolling  bool
}

// Stats returns a snapshot of internal counters.
func (m *Model) Stats() Stats {
	hits, misses := m.list.Heights().Stats()
	s := Stats{
		Wrappers:       len(m.wrappers),
		CacheEntries:   m.list.Heights().Len(),
		CacheHits:      hits,
		CacheMisses:    misses,
		LiveCells:      m.list.LiveCells(),
		AllocatedCells: m.list.AllocatedCells(),
		Phase:          m.buffer.phase,
		AtBottom:       m.tracker.IsAtBottom(),
		UserScrolling:  m.tracker.IsUserScrolling(),
	}
	if t := m.buffer.target; t != nil {
		s.Multiplier = t.bufferMultiplier
		s.Reserved = t.reserved
	}
	return s
}

// ---------------------------------------------------------------------------
// Update / View
// ---------------------------------------------------------------------------

// Update handles scroll input and the renderer's own deferred work.
func (m *Model) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case schedule.FireMsg:
		cmd, _ = m.tasks.Fire(msg)
	case schedule.LayoutMsg:
		m.relayout(nil)
		cmd = m.tasks.RunLayout()
	case tea.KeyPressMsg:
		cmd = m.handleKey(msg)
	case tea.MouseWheelMsg:
		mouse := msg.Mouse()
		if _, _, ok := m.local(mouse.X, mouse.Y); !ok {
			return nil
		}
		switch mouse.Button {
		case tea.MouseWheelUp:
			cmd = m.userScroll(-m.cfg.WheelStep)
		case tea.MouseWheelDown:
			cmd = m.userScroll(m.cfg.WheelStep)
		}
	case tea.MouseClickMsg:
		mouse := msg.Mouse()
		x, y, ok := m.local(mouse.X, mouse.Y)
		if !ok || mouse.Button != tea.MouseLeft {
			return nil
		}
		if m.list.OnScrollbar(x) {
			m.barDrag = true
			m.beginDrag()
			m.dragScrollbar(y)
		} else {
			m.click(x, y)
		}
	case tea.MouseMotionMsg:
		if m.barDrag {
			m.dragScrollbar(msg.Mouse().Y - m.y)
		}
	case tea.MouseReleaseMsg:
		if m.barDrag {
			m.barDrag = false
			cmd = m.scheduleDragEnd()
		}
	default:
		return nil
	}
	return tea.Batch(cmd, m.finalize())
}

// View renders the visible rows.
func (m *Model) View() string { return m.list.View() }

func (m *Model) handleKey(msg tea.KeyPressMsg) tea.Cmd {
	vh := max(1, m.list.ViewportHeight())
	switch {
	case key.Matches(msg, m.keys.ScrollUp):
		return m.userScroll(-1)
	case key.Matches(msg, m.keys.ScrollDown):
		return m.userScroll(1)
	case key.Matches(msg, m.keys.HalfPageUp):
		return m.userScroll(-max(1, vh/2))
	case key.Matches(msg, m.keys.HalfPageDown):
		return m.userScroll(max(1, vh/2))
	case key.Matches(msg, m.keys.PageUp):
		return m.userScroll(-vh)
	case key.Matches(msg, m.keys.PageDown):
		return m.userScroll(vh)
	case key.Matches(msg, m.keys.Top):
		m.beginDrag()
		m.list.ScrollToTop()
		m.observe()
		return m.scheduleDragEnd()
	case key.Matches(msg, m.keys.Bottom):
		m.beginDrag()
		m.list.ScrollToBottom()
		m.observe()
		return m.scheduleDragEnd()
	}
	return nil
}

func (m *Model) local(x, y int) (int, int, bool) {
	x -= m.x
	y -= m.y
	ok := x >= 0 && y >= 0 && x < m.list.Width() && y < m.list.ViewportHeight()
	return x, y, ok
}

func (m *Model) click(x, y int) {
	idx, row := m.list.ItemAt(y)
	if idx < 0 {
		return
	}
	switch it := m.list.Item(idx).(type) {
	case *welcomeItem:
		if row == it.signInRow {
			m.ActivateSignIn()
		}
	case *Wrapper:
		if id, ok := it.HitAttachment(row, x); ok && m.onRemoveAttachment != nil {
			m.log.Debug("remove attachment", "message", it.ID(), "attachment", id)
			m.onRemoveAttachment(id)
		}
	}
}

func (m *Model) dragScrollbar(y int) {
	vh := m.list.ViewportHeight()
	if vh <= 1 {
		return
	}
	m.list.ScrollToFraction(float64(y) / float64(vh-1))
	m.observe()
}

// ---------------------------------------------------------------------------
// Layout
// ---------------------------------------------------------------------------

func (m *Model) items() []list.Item {
	if len(m.order) == 0 {
		return []list.Item{m.welcome}
	}
	items := make([]list.Item, len(m.order))
	for i, w := range m.order {
		items[i] = w
	}
	return items
}

func sameOrder(a, b []*Wrapper) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// touch drops the cached height and cell of w after a visible change.
func (m *Model) touch(w *Wrapper) { m.list.Invalidate(w.ID()) }

// relayout applies a size-changing mutation with the offset held fixed,
// remeasures the streaming item and refreshes the bottom inset, then follows
// the bottom if the viewer is pinned there.
func (m *Model) relayout(mutate func()) {
	m.list.Atomically(func() {
		if mutate != nil {
			mutate()
		}
		if t := m.buffer.target; t != nil && m.buffer.active() {
			t.measure(m.list.ItemWidth())
		}
		m.list.SetBottomInset(-m.buffer.spare())
	})
	if m.pinned() {
		m.list.ScrollToBottom()
	}
	m.observe()
}

// pinned reports whether content growth should carry the viewport along.
func (m *Model) pinned() bool {
	return !m.anim.active && m.tracker.IsAtBottom() && !m.tracker.IsUserScrolling() && !m.tracker.IsDragging()
}

// observe feeds the tracker. Programmatic animations are observed once they
// land, so they never count as the viewer scrolling.
func (m *Model) observe() {
	if m.anim.active {
		return
	}
	m.tracker.Observe(m.list.DistanceFromBottom())
}

// laidOut reports whether the last item has a valid measurement at the
// current size, so a scroll to the bottom would land on it.
func (m *Model) laidOut() bool {
	if m.list.Width() <= 0 || m.list.ViewportHeight() <= 0 {
		return false
	}
	if len(m.order) == 0 {
		return true
	}
	return m.list.IsMeasured(m.order[len(m.order)-1].ID())
}

// finalize reconciles the streaming item's freeze state with the tracker.
// Every entry point ends with it so a return to the bottom resyncs the
// displayed copy in the same pass.
func (m *Model) finalize() tea.Cmd {
	w := m.buffer.target
	if w == nil {
		return nil
	}
	want := m.buffer.active() && m.tracker.IsUserScrolling()
	if want == w.frozen {
		return nil
	}
	if w.setFrozen(want) {
		m.log.Debug("resync streaming item", "id", w.ID())
		atBottom := m.tracker.IsAtBottom()
		m.relayout(func() { m.touch(w) })
		// The resynced copy is usually taller; a viewer who came back to
		// the bottom stays there.
		if atBottom {
			m.list.ScrollToBottom()
			m.observe()
		}
	}
	if !want && m.buffer.deferred {
		m.buffer.deferred = false
		return m.scheduleCollapse()
	}
	return nil
}

func (m *Model) reset() {
	m.abandonBuffer()
	m.wrappers = make(map[string]*Wrapper)
	m.order = nil
	m.count = 0
	m.firstID = ""
	m.tasks.Cancel(schedule.TagScroll, schedule.TagScrollAnimation, schedule.TagResync)
	m.anim.active = false
	m.barDrag = false
	m.tracker.Reset()
	m.list.InvalidateAll()
	m.list.ScrollToTop()
}

func (m *Model) setTheme(t style.Theme) {
	m.theme = t
	m.ctx.palette = style.NewPalette(t)
	m.list.SetScrollbarStyle(m.ctx.palette.ScrollThumb, m.ctx.palette.ScrollTrack)
	for _, w := range m.wrappers {
		w.restyle()
		m.touch(w)
	}
	m.welcome.restyle()
}

// ---------------------------------------------------------------------------
// Streaming buffer
// ---------------------------------------------------------------------------

func (m *Model) syncBuffer(target *Wrapper) tea.Cmd {
	b := &m.buffer
	switch {
	case target != nil && b.target != target:
		if b.active() {
			m.abandonBuffer()
		}
		m.beginBuffer(target)
	case target != nil && b.phase == PhaseIdle:
		// Same message streaming again after it settled.
		m.beginBuffer(target)
	case target == nil && b.phase == PhaseStreaming:
		return m.endBuffer()
	}
	return nil
}

func (m *Model) beginBuffer(w *Wrapper) {
	if err := m.buffer.begin(w, m.list.ViewportHeight()); err != nil {
		m.log.Debug("buffer begin rejected", "id", w.ID(), "err", err)
		return
	}
	if m.unsubTarget != nil {
		m.unsubTarget()
	}
	m.unsubTarget = w.OnHeightChange(func(h int) {
		if m.buffer.observe(h, m.list.ViewportHeight()) {
			m.touch(w)
			m.log.Debug("buffer extended", "id", w.ID(), "multiplier", w.bufferMultiplier, "measured", h)
		}
	})
	m.touch(w)
	m.log.Debug("buffer begin", "id", w.ID(), "reserved", w.reserved)
}

func (m *Model) endBuffer() tea.Cmd {
	w := m.buffer.target
	w.measure(m.list.ItemWidth())
	animate, err := m.buffer.end(m.cfg.CollapseDuration)
	if err != nil {
		m.log.Debug("buffer end rejected", "id", w.ID(), "err", err)
		return nil
	}
	if !animate {
		m.finishBuffer()
		return nil
	}
	if w.frozen {
		m.buffer.deferred = true
		return nil
	}
	return m.scheduleCollapse()
}

func (m *Model) scheduleCollapse() tea.Cmd {
	return m.tasks.After(schedule.TagBufferCollapse, 0, m.buffer.frameInterval(), m.collapseFrame)
}

func (m *Model) collapseFrame() tea.Cmd {
	w := m.buffer.target
	if w == nil || m.buffer.phase != PhaseSettling {
		return nil
	}
	if w.frozen {
		m.buffer.deferred = true
		return nil
	}
	var done bool
	m.relayout(func() {
		m.buffer.collapseTo = w.measure(m.list.ItemWidth())
		done = m.buffer.step()
		m.touch(w)
	})
	if done {
		m.finishBuffer()
		return nil
	}
	return m.scheduleCollapse()
}

// finishBuffer runs once the target is back at idle.
func (m *Model) finishBuffer() {
	if m.unsubTarget != nil {
		m.unsubTarget()
		m.unsubTarget = nil
	}
	if w := m.buffer.target; w != nil {
		m.touch(w)
		m.log.Debug("buffer settled", "id", w.ID(), "height", w.measuredHeight)
	}
	m.relayout(nil)
}

// abandonBuffer snaps the current target to idle.
func (m *Model) abandonBuffer() {
	w := m.buffer.target
	m.tasks.Cancel(schedule.TagBufferCollapse)
	m.buffer.abandon()
	if m.unsubTarget != nil {
		m.unsubTarget()
		m.unsubTarget = nil
	}
	if w != nil {
		w.setFrozen(false)
		m.touch(w)
	}
}

// ---------------------------------------------------------------------------
// Scrolling
// ---------------------------------------------------------------------------

// flushIntents resolves the intents raised in this pass to one effect.
func (m *Model) flushIntents() tea.Cmd {
	req, ok := m.intents.resolve()
	if !ok {
		return nil
	}
	prio := req.intent.priority()
	m.log.Debug("scroll intent", "intent", req.intent, "animated", req.animated)
	switch req.intent {
	case IntentKeyboard:
		return m.tasks.After(schedule.TagScroll, prio, m.cfg.KeyboardSettle, func() tea.Cmd {
			if !m.tracker.IsAtBottom() || m.tracker.IsDragging() {
				return nil
			}
			m.jumpToBottom()
			return nil
		})
	case IntentNewTurn, IntentChatLoad:
		m.tracker.Release()
		m.tasks.CancelBelow(schedule.TagScroll, prio+1)
		return m.scrollToBottom(req.animated)
	case IntentExplicit:
		m.tracker.Release()
		m.tasks.Cancel(schedule.TagResync, schedule.TagScroll)
		return m.explicitScroll(m.token, true)
	}
	return nil
}

// explicitScroll performs the jump for trigger token now and once more after
// the settle delay. When the newest item has not been laid out yet the first
// attempt waits for the next layout pass, once.
func (m *Model) explicitScroll(token uint64, retry bool) tea.Cmd {
	if token != m.token {
		return nil
	}
	prio := IntentExplicit.priority()
	if !m.laidOut() {
		if !retry {
			m.log.Debug("scroll request dropped, layout incomplete", "token", token)
			return nil
		}
		return m.tasks.AfterLayout(schedule.TagScroll, prio, func() tea.Cmd {
			return m.explicitScroll(token, false)
		})
	}
	m.jumpToBottom()
	return m.tasks.After(schedule.TagScroll, prio, m.cfg.ScrollSettle, func() tea.Cmd {
		if token != m.token || m.tracker.IsDragging() {
			return nil
		}
		m.jumpToBottom()
		return nil
	})
}

func (m *Model) jumpToBottom() {
	m.tasks.Cancel(schedule.TagScrollAnimation)
	m.anim.active = false
	m.list.ScrollToBottom()
	m.observe()
}

func (m *Model) scrollToBottom(animated bool) tea.Cmd {
	if !animated || !m.laidOut() || m.list.DistanceFromBottom() == 0 {
		m.jumpToBottom()
		return nil
	}
	m.anim = scrollAnimation{
		active: true,
		spring: harmonica.NewSpring(harmonica.FPS(collapseFPS), scrollAnimFreq, 1.0),
		pos:    float64(m.list.Offset()),
		frames: scrollAnimFrames,
	}
	return m.tasks.After(schedule.TagScrollAnimation, 0, m.buffer.frameInterval(), m.animFrame)
}

func (m *Model) animFrame() tea.Cmd {
	if !m.anim.active {
		return nil
	}
	target := float64(m.list.MaxOffset())
	m.anim.pos, m.anim.vel = m.anim.spring.Update(m.anim.pos, m.anim.vel, target)
	m.anim.frames--
	if m.anim.frames <= 0 || math.Abs(target-m.anim.pos) < 0.5 {
		m.anim.active = false
		m.list.ScrollToBottom()
		m.observe()
		return nil
	}
	m.list.SetOffset(int(math.Round(m.anim.pos)))
	return m.tasks.After(schedule.TagScrollAnimation, 0, m.buffer.frameInterval(), m.animFrame)
}

// beginDrag marks the viewer as driving the scroll position and cancels any
// pending programmatic scroll.
func (m *Model) beginDrag() {
	if !m.tracker.IsDragging() {
		m.log.Debug("drag begin", "offset", m.list.Offset())
	}
	m.tracker.BeginDrag()
	m.tasks.Cancel(schedule.TagScroll, schedule.TagScrollAnimation)
	m.anim.active = false
}

// scheduleDragEnd (re)arms the debounce that ends the interaction once the
// input has been quiet for DragDebounce.
func (m *Model) scheduleDragEnd() tea.Cmd {
	return m.tasks.After(schedule.TagResync, 0, m.cfg.DragDebounce, func() tea.Cmd {
		if m.barDrag {
			return nil
		}
		m.tracker.EndDrag()
		return nil
	})
}

func (m *Model) userScroll(delta int) tea.Cmd {
	m.beginDrag()
	m.list.ScrollBy(delta)
	m.observe()
	return m.scheduleDragEnd()
}
