package app

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"github.com/google/uuid"

	"github.com/miosa/osa-transcript/config"
	"github.com/miosa/osa-transcript/feed"
	"github.com/miosa/osa-transcript/logger"
	"github.com/miosa/osa-transcript/msg"
	"github.com/miosa/osa-transcript/style"
	"github.com/miosa/osa-transcript/ui/anim"
	"github.com/miosa/osa-transcript/ui/attachments"
	"github.com/miosa/osa-transcript/ui/clipboard"
	"github.com/miosa/osa-transcript/ui/header"
	"github.com/miosa/osa-transcript/ui/input"
	"github.com/miosa/osa-transcript/ui/status"
	"github.com/miosa/osa-transcript/ui/toast"
	"github.com/miosa/osa-transcript/ui/transcript"
)

// historyLength is the size of the conversation loaded by the long-history
// key.
const historyLength = 200

// -- Internal message types ---------------------------------------------------

// ProgramReady is sent to the model after the tea.Program is created so
// replies can be streamed into it from their own goroutine.
type ProgramReady struct{ Sender msg.Sender }

// replyDone is returned by the reply command once the feed stops.
type replyDone struct {
	chatID    string
	messageID string
	err       error
}

type configLoaded struct {
	cfg config.Config
	err error
}

type configSaved struct{ err error }

type copied struct{ err error }

// -- Model --------------------------------------------------------------------

// Options configures New.
type Options struct {
	Config     config.Config
	ConfigPath string // where theme changes are saved; empty disables saving
	Streamer   *feed.Streamer
	Script     feed.Script // source of the long demo history
	Version    string
	Workspace  string
	Logger     *slog.Logger
	Now        func() time.Time
	NewID      func() string
	Copy       func(string) error // clipboard writer, clipboard.Copy by default
	Tick       anim.TickFunc      // chrome timers, tea.Tick by default

	// Extra transcript options, applied last.
	Transcript []transcript.Option
}

// Model is the root Bubble Tea model. It owns the chat state, the composer
// and the chrome around the transcript.
type Model struct {
	transcript *transcript.Model
	chat       *chatState
	hooks      *hooks

	composer input.Model
	header   header.Model
	status   status.Model
	toasts   toast.Model
	spinner  anim.Model

	state      State
	layout     Layout
	keys       KeyMap
	scrollKeys transcript.KeyMap

	cfg     config.Config
	cfgPath string
	theme   style.Theme
	palette style.Palette

	feed   *feed.Streamer
	script feed.Script
	sender msg.Sender
	log    *slog.Logger
	now    func() time.Time
	newID  func() string
	copy   func(string) error
	tick   anim.TickFunc

	width   int
	height  int
	ticking bool
}

// New constructs the root Model.
func New(o Options) Model {
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.NewID == nil {
		o.NewID = uuid.NewString
	}
	if o.Tick == nil {
		o.Tick = tea.Tick
	}
	if o.Copy == nil {
		o.Copy = clipboard.Copy
	}
	if len(o.Script.Replies) == 0 {
		o.Script = feed.DefaultScript()
	}
	theme, ok := style.Lookup(o.Config.Theme)
	if !ok {
		theme, _ = style.Lookup(config.Default().Theme)
	}
	palette := style.NewPalette(theme)

	hdr := header.New(o.Version)
	hdr.SetWorkspace(o.Workspace)

	h := &hooks{}
	scrollKeys := transcript.DefaultKeyMap()
	topts := []transcript.Option{
		transcript.WithLogger(o.Logger.With(logger.ComponentKey, "transcript")),
		transcript.WithConfig(o.Config.ToTranscript()),
		transcript.WithTheme(theme),
		transcript.WithKeyMap(scrollKeys),
		transcript.WithWelcome(hdr.DetailLine(), o.Workspace),
		transcript.OnRequestSignIn(func() { h.signIn = true }),
		transcript.OnRemoveAttachment(func(id string) { h.removed = append(h.removed, id) }),
	}
	tr := transcript.New(append(topts, o.Transcript...)...)

	m := Model{
		transcript: tr,
		chat:       newChat(o.NewID()),
		hooks:      h,
		composer:   input.New(),
		header:     hdr,
		status:     status.New(),
		toasts:     toast.New(o.Now),
		spinner:    anim.New(palette),
		state:      StateBrowsing,
		keys:       DefaultKeyMap(),
		scrollKeys: scrollKeys,
		cfg:        o.Config,
		cfgPath:    o.ConfigPath,
		theme:      theme,
		palette:    palette,
		feed:       o.Streamer,
		script:     o.Script,
		log:        o.Logger,
		now:        o.Now,
		newID:      o.NewID,
		copy:       o.Copy,
		tick:       o.Tick,
	}
	m.spinner.SetTick(o.Tick)
	m.header.SetChat(m.chat.id, 0)
	tr.OnAtBottomChange(func(at bool) { m.log.Debug("at bottom changed", "at_bottom", at) })
	tr.OnUserScrollingChange(func(s bool) { m.log.Debug("user scrolling changed", "scrolling", s) })
	return m
}

// -- Init ---------------------------------------------------------------------

func (m Model) Init() tea.Cmd {
	return func() tea.Msg { return tea.RequestWindowSize() }
}

// -- Update -------------------------------------------------------------------

func (m Model) Update(rawMsg tea.Msg) (tea.Model, tea.Cmd) {
	switch v := rawMsg.(type) {

	case tea.WindowSizeMsg:
		m.width = v.Width
		m.height = v.Height
		return m, m.relayout()

	case tea.KeyPressMsg:
		return m.handleKey(v)

	case tea.MouseClickMsg, tea.MouseWheelMsg, tea.MouseMotionMsg, tea.MouseReleaseMsg:
		cmd := m.transcript.Update(v)
		return m, tea.Batch(cmd, m.drainHooks())

	// -- Program lifecycle --

	case ProgramReady:
		m.sender = v.Sender
		return m, nil

	// -- Streaming --

	case msg.StreamStarted:
		if v.ChatID != m.chat.id {
			return m, nil
		}
		m.chat.begin(v.MessageID, m.now())
		m.spinner.SetLabel("thinking")
		return m, tea.Batch(m.render(), m.spinner.Start(), m.ensureTick())

	case msg.ThinkingDelta:
		if v.ChatID != m.chat.id || !m.chat.appendText(v.MessageID, v.Text, true) {
			return m, nil
		}
		return m, m.render()

	case msg.StreamDelta:
		if v.ChatID != m.chat.id || !m.chat.appendText(v.MessageID, v.Text, false) {
			return m, nil
		}
		m.spinner.SetLabel("streaming")
		return m, m.render()

	case msg.StreamFinished:
		if v.ChatID != m.chat.id || !m.chat.finish(v.MessageID) {
			return m, nil
		}
		m.spinner.Stop()
		var cmds []tea.Cmd
		if v.Err != nil && !errors.Is(v.Err, context.Canceled) {
			cmds = append(cmds, m.notify(toast.Error, "Reply failed: "+v.Err.Error()))
		}
		cmds = append(cmds, m.render())
		return m, tea.Batch(cmds...)

	case replyDone:
		m.log.Debug("reply done", "chat", v.chatID, "message", v.messageID, "err", v.err)
		return m, nil

	// -- Config --

	case msg.ConfigChanged:
		return m, loadConfig(v.Path)

	case configLoaded:
		var cmds []tea.Cmd
		if v.err != nil {
			m.log.Warn("config reload", "err", v.err)
			cmds = append(cmds, m.notify(toast.Warning, "Config: "+v.err.Error()))
		}
		cmds = append(cmds, m.applyConfig(v.cfg))
		return m, tea.Batch(cmds...)

	case configSaved:
		if v.err != nil {
			m.log.Warn("config save", "err", v.err)
			return m, m.notify(toast.Warning, "Theme applied but could not persist: "+v.err.Error())
		}
		return m, nil

	case copied:
		if v.err != nil {
			return m, m.notify(toast.Error, "Copy failed: "+v.err.Error())
		}
		return m, m.notify(toast.Info, "Copied latest reply")

	case msg.ConfigWatchError:
		m.log.Warn("config watch", "err", v.Err)
		return m, m.notify(toast.Warning, "Config watch: "+v.Err.Error())

	// -- Chrome --

	case msg.TickMsg:
		m.ticking = false
		m.toasts.Tick()
		return m, m.ensureTick()

	case anim.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(v)
		return m, cmd

	case attachments.RemovedMsg:
		return m, tea.Batch(m.relayout(), m.notify(toast.Info, "Attachment removed"))
	}

	// Deferred transcript work and composer internals (cursor blink).
	cmds := []tea.Cmd{m.transcript.Update(rawMsg)}
	if m.state == StateComposing {
		var cmd tea.Cmd
		m.composer, cmd = m.composer.Update(rawMsg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// -- View ---------------------------------------------------------------------

// View returns the tea.View for the current frame.
// AltScreen, MouseMode, and ReportFocus are set on every frame.
func (m Model) View() tea.View {
	v := tea.NewView(m.renderView())
	v.AltScreen = true
	v.MouseMode = tea.MouseModeCellMotion
	v.ReportFocus = true
	return v
}

// renderView composes the full terminal frame as a string.
func (m Model) renderView() string {
	p := m.palette
	sections := []string{
		m.header.View(p),
		m.chatView(),
		m.statusView(),
	}
	if m.state == StateComposing {
		sections = append(sections, m.composer.View(p))
	}
	return strings.Join(sections, "\n")
}

// chatView is the transcript with toasts drawn over its last rows.
func (m Model) chatView() string {
	view := m.transcript.View()
	if m.toasts.Len() == 0 {
		return view
	}
	lines := strings.Split(view, "\n")
	overlay := strings.Split(m.toasts.View(m.palette, m.layout.ChatWidth), "\n")
	if len(overlay) > len(lines) {
		overlay = overlay[len(overlay)-len(lines):]
	}
	copy(lines[len(lines)-len(overlay):], overlay)
	return strings.Join(lines, "\n")
}

func (m Model) statusView() string {
	st := m.status
	st.SetPhase(m.transcript.Phase())
	st.SetPosition(m.transcript.IsAtBottom(), m.transcript.IsUserScrolling())
	st.SetSpinner(m.spinner.View())
	if m.chat.streaming {
		st.SetElapsed(m.now().Sub(m.chat.started))
	}
	if m.cfg.Debug {
		stats := m.transcript.Stats()
		st.SetStats(&stats)
	}
	st.SetHints(m.hints())
	return st.View(m.palette)
}

func (m Model) hints() []status.Hint {
	var bindings []key.Binding
	if m.state == StateComposing {
		bindings = []key.Binding{m.keys.Submit, m.keys.Close, m.keys.JumpLatest}
	} else {
		bindings = []key.Binding{m.keys.Compose, m.keys.JumpLatest, m.keys.Copy, m.keys.NewChat, m.keys.LoadHistory, m.keys.ToggleTheme}
		if len(m.chat.messages) == 0 {
			bindings = append(bindings, m.keys.SignIn)
		}
	}
	out := make([]status.Hint, len(bindings))
	for i, b := range bindings {
		out[i] = status.Hint{Key: b.Help().Key, Desc: b.Help().Desc}
	}
	return out
}

// -- Key handling -------------------------------------------------------------

func (m Model) handleKey(k tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(k, m.keys.Quit):
		m.chat.stop()
		return m, tea.Quit
	case key.Matches(k, m.keys.JumpLatest):
		m.chat.token++
		return m, m.transcript.RequestScrollToBottom(m.chat.token)
	case key.Matches(k, m.keys.NewChat):
		return m, m.switchChat(nil, "New chat")
	case key.Matches(k, m.keys.LoadHistory):
		history := demoHistory(m.script, historyLength, m.newID)
		return m, m.switchChat(history, "Loaded long history")
	case key.Matches(k, m.keys.ToggleTheme):
		return m, m.setTheme(style.Next(m.theme))
	}
	if m.state == StateComposing {
		return m.handleComposingKey(k)
	}
	return m.handleBrowsingKey(k)
}

func (m Model) handleBrowsingKey(k tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(k, m.keys.Compose):
		m.state = StateComposing
		return m, tea.Batch(m.composer.Focus(), m.relayout())
	case key.Matches(k, m.keys.SignIn):
		m.transcript.ActivateSignIn()
		return m, m.drainHooks()
	case key.Matches(k, m.keys.Copy):
		text, ok := m.chat.lastReply()
		if !ok {
			return m, m.notify(toast.Warning, "Nothing to copy yet")
		}
		write := m.copy
		return m, func() tea.Msg { return copied{err: write(text)} }
	}
	cmd := m.transcript.Update(k)
	return m, tea.Batch(cmd, m.drainHooks())
}

func (m Model) handleComposingKey(k tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	if !m.composer.InDeleteMode() {
		switch {
		case key.Matches(k, m.keys.Close):
			m.state = StateBrowsing
			m.composer.Blur()
			return m, m.relayout()
		case key.Matches(k, m.keys.Submit):
			return m.submit()
		case key.Matches(k, m.scrollKeys.PageUp, m.scrollKeys.PageDown):
			return m, m.transcript.Update(k)
		}
	}
	before := m.composer.Height()
	var cmd tea.Cmd
	m.composer, cmd = m.composer.Update(k)
	if m.composer.Height() != before {
		cmd = tea.Batch(cmd, m.relayout())
	}
	return m, cmd
}

// -- Submission ---------------------------------------------------------------

// submit routes the composer text to a command or sends it as a user turn.
func (m Model) submit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.composer.Value())
	switch {
	case text == "":
		return m, nil

	case text == "/quit" || text == "/exit":
		m.chat.stop()
		return m, tea.Quit

	case text == "/new":
		m.composer.Submit(text)
		return m, m.switchChat(nil, "New chat")

	case strings.HasPrefix(text, "/attach "):
		path := strings.TrimSpace(strings.TrimPrefix(text, "/attach"))
		m.composer.SetValue("")
		if err := m.composer.AttachFile(path); err != nil {
			return m, m.notify(toast.Error, err.Error())
		}
		return m, tea.Batch(m.relayout(), m.notify(toast.Info, "Attached "+path))

	case strings.HasPrefix(text, "/theme"):
		name := strings.TrimSpace(strings.TrimPrefix(text, "/theme"))
		m.composer.Submit(text)
		if name == "" {
			return m, m.setTheme(style.Next(m.theme))
		}
		t, ok := style.Lookup(name)
		if !ok {
			return m, m.notify(toast.Error, "Unknown theme: "+name+" (available: "+strings.Join(style.ThemeNames, ", ")+")")
		}
		return m, m.setTheme(t)
	}

	if m.busy() {
		return m, m.notify(toast.Warning, "Wait for the current reply to finish")
	}
	files := m.composer.TakeAttachments()
	m.composer.Submit(text)
	m.chat.addUser(m.newID(), text, files)
	return m, tea.Batch(m.render(), m.relayout(), m.reply(text))
}

// busy reports whether a reply is streaming or about to start.
func (m Model) busy() bool {
	return m.chat.streaming || m.chat.cancel != nil
}

// reply starts the feed for prompt in the current chat. The feed sends its
// messages through the program; the command itself only reports completion.
func (m Model) reply(prompt string) tea.Cmd {
	if m.feed == nil || m.sender == nil {
		m.log.Warn("reply skipped: no feed")
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	m.chat.cancel = cancel
	f, out, chatID := m.feed, m.sender, m.chat.id
	return func() tea.Msg {
		id, err := f.Reply(ctx, out, chatID, prompt)
		return replyDone{chatID: chatID, messageID: id, err: err}
	}
}

// -- Chat, theme and config ---------------------------------------------------

// switchChat replaces the conversation, cancelling any reply in flight.
func (m *Model) switchChat(messages []transcript.Message, notice string) tea.Cmd {
	m.chat.stop()
	m.spinner.Stop()
	m.chat = newChat(m.newID())
	m.chat.messages = messages
	m.log.Info("chat switched", "chat", m.chat.id, "messages", len(messages))
	return tea.Batch(m.render(), m.notify(toast.Info, notice))
}

func (m *Model) setTheme(t style.Theme) tea.Cmd {
	if t.Name == m.theme.Name {
		return nil
	}
	m.theme = t
	m.palette = style.NewPalette(t)
	m.spinner.SetPalette(m.palette)
	m.cfg.Theme = t.Name
	cmds := []tea.Cmd{m.render(), m.notify(toast.Info, "Theme set to: "+t.Name)}
	if m.cfgPath != "" {
		cmds = append(cmds, saveConfig(m.cfgPath, m.cfg))
	}
	return tea.Batch(cmds...)
}

func (m *Model) applyConfig(cfg config.Config) tea.Cmd {
	m.cfg = cfg
	logger.SetDebug(cfg.Debug)
	if m.feed != nil {
		m.feed.SetRate(cfg.TokensPerSecond)
	}
	if t, ok := style.Lookup(cfg.Theme); ok && t.Name != m.theme.Name {
		m.theme = t
		m.palette = style.NewPalette(t)
		m.spinner.SetPalette(m.palette)
	}
	m.log.Info("config applied", "theme", m.theme.Name, "max_visible", cfg.MaxVisibleMessages)
	return tea.Batch(m.transcript.SetConfig(cfg.ToTranscript()), m.render(), m.relayout())
}

func loadConfig(path string) tea.Cmd {
	return func() tea.Msg {
		cfg, err := config.Load(path)
		return configLoaded{cfg: cfg, err: err}
	}
}

func saveConfig(path string, cfg config.Config) tea.Cmd {
	return func() tea.Msg {
		return configSaved{err: config.Save(path, cfg)}
	}
}

// -- Plumbing -----------------------------------------------------------------

// render hands the current chat snapshot to the transcript.
func (m *Model) render() tea.Cmd {
	m.header.SetChat(m.chat.id, len(m.chat.messages))
	return m.transcript.Render(m.chat.messages, m.chat.streaming, m.theme)
}

// relayout recomputes the frame and resizes the transcript. The composer
// counts as the keyboard: opening it shrinks the viewport.
func (m *Model) relayout() tea.Cmd {
	if m.width == 0 || m.height == 0 {
		return nil
	}
	composing := m.state == StateComposing
	inputLines := 0
	if composing {
		inputLines = m.composer.Height()
	}
	statusLines := 1
	if m.cfg.Debug {
		statusLines = 2
	}
	m.layout = ComputeLayout(m.width, m.height, statusLines, inputLines)
	m.header.SetWidth(m.width)
	m.status.SetWidth(m.width)
	m.composer.SetWidth(m.width)
	m.transcript.SetPosition(0, m.layout.ChatTop)

	h := m.transcript.Height()
	if h == 0 {
		h = m.layout.ChatHeight
	}
	widthCmd := m.transcript.SetSize(m.layout.ChatWidth, h)
	return tea.Batch(widthCmd, m.transcript.SetKeyboardVisible(composing, m.layout.ChatHeight))
}

// drainHooks applies what the transcript callbacks recorded.
func (m *Model) drainHooks() tea.Cmd {
	var cmds []tea.Cmd
	if m.hooks.signIn {
		m.hooks.signIn = false
		m.log.Info("sign in requested")
		cmds = append(cmds, m.notify(toast.Info, "Signed in as guest"))
	}
	if len(m.hooks.removed) > 0 {
		changed := false
		for _, id := range m.hooks.removed {
			changed = m.chat.removeAttachment(id) || changed
		}
		m.hooks.removed = nil
		if changed {
			cmds = append(cmds, m.render(), m.notify(toast.Info, "Attachment removed"))
		}
	}
	return tea.Batch(cmds...)
}

func (m *Model) notify(level toast.Level, text string) tea.Cmd {
	m.toasts.Add(text, level)
	return m.ensureTick()
}

// ensureTick keeps one chrome tick in flight while toasts are visible or a
// reply is streaming.
func (m *Model) ensureTick() tea.Cmd {
	if m.ticking || (m.toasts.Len() == 0 && !m.chat.streaming) {
		return nil
	}
	m.ticking = true
	return m.tick(time.Second, func(time.Time) tea.Msg { return msg.TickMsg{} })
}
