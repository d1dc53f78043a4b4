package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/miosa/osa-transcript/config"
	"github.com/miosa/osa-transcript/feed"
	"github.com/miosa/osa-transcript/logger"
	"github.com/miosa/osa-transcript/msg"
	"github.com/miosa/osa-transcript/ui/schedule"
	"github.com/miosa/osa-transcript/ui/transcript"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// Harness
// ---------------------------------------------------------------------------

func instantTick(_ time.Duration, fn func(time.Time) tea.Msg) tea.Cmd {
	return func() tea.Msg { return fn(time.Time{}) }
}

func noTick(time.Duration, func(time.Time) tea.Msg) tea.Cmd { return nil }

type recorder struct {
	mu   sync.Mutex
	msgs []tea.Msg
}

func (r *recorder) Send(m tea.Msg) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, m)
}

func (r *recorder) drain() []tea.Msg {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.msgs
	r.msgs = nil
	return out
}

type harness struct {
	t      *testing.T
	m      Model
	sent   *recorder
	copied []string
}

func newHarness(t *testing.T, mutate func(*Options)) *harness {
	t.Helper()
	h := &harness{t: t, sent: &recorder{}}
	n := 0
	s, err := feed.New(feed.Script{Replies: []feed.Reply{{Thoughts: "hmm", Content: "hello streaming world"}}},
		feed.WithRate(0))
	require.NoError(t, err)
	o := Options{
		Config:   config.Default(),
		Streamer: s,
		Version:  "v-test",
		Now:      func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) },
		NewID: func() string {
			n++
			return fmt.Sprintf("id-%03d", n)
		},
		Copy: func(text string) error {
			h.copied = append(h.copied, text)
			return nil
		},
		Tick: noTick,
		Transcript: []transcript.Option{
			transcript.WithContentRenderer(transcript.PlainRenderer{}),
			transcript.WithScheduler(schedule.New(schedule.WithTick(instantTick))),
		},
	}
	if mutate != nil {
		mutate(&o)
	}
	h.m = New(o)
	h.send(tea.WindowSizeMsg{Width: 80, Height: 24})
	h.send(ProgramReady{Sender: h.sent})
	return h
}

// send delivers one message and runs the resulting commands to completion.
func (h *harness) send(m tea.Msg) {
	h.t.Helper()
	next, cmd := h.m.Update(m)
	h.m = next.(Model)
	h.pump(cmd)
}

// pump runs cmd and feeds what it yields back into the model. Commands that
// block (cursor blink, timers) are dropped.
func (h *harness) pump(cmd tea.Cmd) {
	h.t.Helper()
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		require.Less(h.t, steps, 20_000, "command loop did not settle")
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		out, ok := run(c)
		if !ok {
			continue
		}
		switch v := out.(type) {
		case nil, tea.QuitMsg:
		case tea.BatchMsg:
			queue = append(queue, v...)
		default:
			next, cmd := h.m.Update(v)
			h.m = next.(Model)
			queue = append(queue, cmd)
		}
	}
}

func run(c tea.Cmd) (tea.Msg, bool) {
	ch := make(chan tea.Msg, 1)
	go func() { ch <- c() }()
	select {
	case m := <-ch:
		return m, true
	case <-time.After(200 * time.Millisecond):
		return nil, false
	}
}

// flush delivers everything the feed sent through the program.
func (h *harness) flush() {
	h.t.Helper()
	for _, m := range h.sent.drain() {
		h.send(m)
	}
}

func press(s string) tea.KeyPressMsg {
	switch s {
	case "enter":
		return tea.KeyPressMsg{Code: tea.KeyEnter}
	case "esc":
		return tea.KeyPressMsg{Code: tea.KeyEscape}
	case "pgup":
		return tea.KeyPressMsg{Code: tea.KeyPgUp}
	}
	if k, ok := strings.CutPrefix(s, "ctrl+"); ok {
		return tea.KeyPressMsg{Code: rune(k[0]), Mod: tea.ModCtrl}
	}
	return tea.KeyPressMsg{Code: rune(s[0]), Text: s}
}

func (h *harness) compose(text string) {
	h.t.Helper()
	if h.m.state != StateComposing {
		h.send(press("i"))
	}
	h.m.composer.SetValue(text)
	h.send(press("enter"))
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestComputeLayout(t *testing.T) {
	l := ComputeLayout(80, 24, 1, 0)
	assert.Equal(t, 2, l.ChatTop)
	assert.Equal(t, 21, l.ChatHeight)
	assert.Equal(t, 80, l.ChatWidth)

	l = ComputeLayout(80, 24, 2, 3)
	assert.Equal(t, 17, l.ChatHeight)

	l = ComputeLayout(20, 4, 1, 3)
	assert.Equal(t, minChatHeight, l.ChatHeight, "never collapses to nothing")
}

func TestComposer_ShrinksViewport(t *testing.T) {
	h := newHarness(t, nil)
	assert.Equal(t, 21, h.m.transcript.Height())

	h.send(press("i"))
	require.Equal(t, StateComposing, h.m.state)
	assert.Equal(t, 21-h.m.composer.Height(), h.m.transcript.Height())
	assert.Contains(t, h.m.renderView(), "❯")

	h.send(press("esc"))
	assert.Equal(t, StateBrowsing, h.m.state)
	assert.Equal(t, 21, h.m.transcript.Height())
}

func TestSubmit_StreamsReply(t *testing.T) {
	h := newHarness(t, nil)
	h.compose("hi there")

	require.Len(t, h.m.chat.messages, 1)
	assert.Equal(t, transcript.RoleUser, h.m.chat.messages[0].Role)
	assert.Empty(t, h.m.composer.Value())
	assert.True(t, h.m.busy(), "reply in flight")

	h.flush()
	require.Len(t, h.m.chat.messages, 2)
	reply := h.m.chat.messages[1]
	assert.Equal(t, transcript.RoleAssistant, reply.Role)
	assert.Equal(t, "hello streaming world", reply.Content)
	assert.Equal(t, "hmm", reply.Thoughts)
	assert.False(t, h.m.chat.streaming)
	assert.False(t, h.m.spinner.IsSpinning())
	assert.True(t, h.m.transcript.IsAtBottom())
	assert.Equal(t, transcript.PhaseIdle, h.m.transcript.Phase())
	assert.False(t, h.m.busy())
}

func TestSubmit_RejectedWhileStreaming(t *testing.T) {
	h := newHarness(t, nil)
	h.compose("first")
	msgs := h.sent.drain()
	require.NotEmpty(t, msgs)
	h.send(msgs[0]) // StreamStarted only
	require.True(t, h.m.chat.streaming)

	toasts := h.m.toasts.Len()
	h.compose("second")
	assert.Len(t, h.m.chat.messages, 2, "user turn + reply, no second turn")
	assert.Equal(t, toasts+1, h.m.toasts.Len())
	assert.Equal(t, "second", h.m.composer.Value(), "text kept for later")
}

func TestNewChat_DropsStaleStream(t *testing.T) {
	h := newHarness(t, nil)
	h.compose("question")
	msgs := h.sent.drain()
	old := h.m.chat
	h.send(msgs[0])

	h.send(press("ctrl+n"))
	assert.NotEqual(t, old.id, h.m.chat.id)
	assert.Nil(t, old.cancel, "reply cancelled")

	for _, m := range msgs[1:] {
		h.send(m)
	}
	assert.Empty(t, h.m.chat.messages)
	assert.False(t, h.m.chat.streaming)
}

func TestLoadHistory_LandsAtBottom(t *testing.T) {
	h := newHarness(t, nil)
	h.send(press("ctrl+l"))

	require.Len(t, h.m.chat.messages, historyLength)
	assert.True(t, h.m.transcript.IsAtBottom())
	assert.Equal(t, h.m.transcript.MaxOffset(), h.m.transcript.Offset())
	assert.Contains(t, h.m.header.View(h.m.palette), fmt.Sprintf("%d messages", historyLength))
}

func TestJumpLatest_AfterScrollingAway(t *testing.T) {
	h := newHarness(t, nil)
	h.send(press("ctrl+l"))
	h.send(press("pgup"))
	h.send(press("pgup"))
	require.False(t, h.m.transcript.IsAtBottom())

	h.send(press("ctrl+g"))
	assert.Equal(t, uint64(1), h.m.chat.token)
	assert.True(t, h.m.transcript.IsAtBottom())
}

func TestSignIn_OnlyWhileEmpty(t *testing.T) {
	h := newHarness(t, nil)
	h.send(press("s"))
	assert.Equal(t, 1, h.m.toasts.Len())
	assert.Contains(t, h.m.toasts.View(h.m.palette, 80), "Signed in")

	h.send(press("ctrl+l"))
	before := h.m.toasts.Len()
	h.send(press("s"))
	assert.Equal(t, before, h.m.toasts.Len())
}

func TestAttach_SentWithMessageAndRemovable(t *testing.T) {
	h := newHarness(t, func(o *Options) { o.Streamer = nil })
	path := filepath.Join(t.TempDir(), "notes.md")
	require.NoError(t, os.WriteFile(path, []byte("# notes"), 0o644))

	h.compose("/attach " + path)
	require.Len(t, h.m.composer.Attachments(), 1)
	assert.Empty(t, h.m.chat.messages)
	assert.Equal(t, 21-h.m.composer.Height(), h.m.transcript.Height(), "chip row shrinks the viewport")

	h.compose("see attached")
	require.Len(t, h.m.chat.messages, 1)
	atts := h.m.chat.messages[0].Attachments
	require.Len(t, atts, 1)
	assert.Equal(t, "notes.md", atts[0].Name)
	assert.Empty(t, h.m.composer.Attachments())

	h.m.hooks.removed = append(h.m.hooks.removed, atts[0].ID)
	h.pump(h.m.drainHooks())
	assert.Empty(t, h.m.chat.messages[0].Attachments)
}

func TestAttach_MissingFile(t *testing.T) {
	h := newHarness(t, nil)
	h.compose("/attach /definitely/not/here.txt")
	assert.Empty(t, h.m.composer.Attachments())
	assert.Contains(t, h.m.toasts.View(h.m.palette, 80), "stat")
}

func TestToggleTheme_Persists(t *testing.T) {
	path := filepath.Join(t.TempDir(), config.Filename)
	h := newHarness(t, func(o *Options) { o.ConfigPath = path })
	require.Equal(t, "dark", h.m.theme.Name)

	h.send(press("ctrl+t"))
	assert.Equal(t, "light", h.m.theme.Name)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "light", cfg.Theme)
}

func TestThemeCommand(t *testing.T) {
	h := newHarness(t, nil)
	h.compose("/theme catppuccin")
	assert.Equal(t, "catppuccin", h.m.theme.Name)

	h.compose("/theme nope")
	assert.Equal(t, "catppuccin", h.m.theme.Name)
	assert.Contains(t, h.m.toasts.View(h.m.palette, 120), "Unknown theme")
}

func TestConfigChanged_Reloads(t *testing.T) {
	t.Cleanup(func() { logger.SetDebug(false) })
	path := filepath.Join(t.TempDir(), config.Filename)
	cfg := config.Default()
	cfg.MaxVisibleMessages = 5
	cfg.Theme = "tokyo-night"
	cfg.Debug = true
	require.NoError(t, config.Save(path, cfg))

	h := newHarness(t, nil)
	h.send(press("ctrl+l"))
	h.send(msg.ConfigChanged{Path: path})

	assert.Equal(t, 5, h.m.cfg.MaxVisibleMessages)
	assert.Equal(t, 5, h.m.transcript.Config().MaxVisibleMessages)
	assert.Equal(t, "tokyo-night", h.m.theme.Name)
	assert.Equal(t, 2, h.m.layout.StatusHeight, "debug stats line")
	assert.Equal(t, 20, h.m.transcript.Height())
	assert.Contains(t, h.m.statusView(), "wrappers")
}

func TestConfigChanged_InvalidFileWarns(t *testing.T) {
	path := filepath.Join(t.TempDir(), config.Filename)
	require.NoError(t, os.WriteFile(path, []byte("theme = [broken"), 0o644))

	h := newHarness(t, nil)
	h.send(msg.ConfigChanged{Path: path})
	assert.Equal(t, 1, h.m.toasts.Len())
	assert.Equal(t, config.Default().MaxVisibleMessages, h.m.cfg.MaxVisibleMessages)
}

func TestCopy_LatestReply(t *testing.T) {
	h := newHarness(t, nil)
	h.send(press("y"))
	assert.Empty(t, h.copied)

	h.compose("hi")
	h.flush()
	h.send(press("esc"))
	h.send(press("y"))
	require.Len(t, h.copied, 1)
	assert.Equal(t, "hello streaming world", h.copied[0])
}

func TestView_Frame(t *testing.T) {
	h := newHarness(t, nil)
	frame := h.m.renderView()
	assert.Contains(t, frame, "OSA")
	assert.Contains(t, frame, "v-test")
	assert.Contains(t, frame, "compose")

	v := h.m.View()
	assert.True(t, v.AltScreen)
	assert.Equal(t, tea.MouseModeCellMotion, v.MouseMode)
}

func TestSplitChunks(t *testing.T) {
	content, chunks := splitChunks("Intro\n```go\nfunc f() {}\n```\nAfter\n```sh\nls\n```")
	assert.Equal(t, "Intro", content)
	require.Len(t, chunks, 3)
	assert.Equal(t, transcript.Chunk{Kind: transcript.ChunkCode, Lang: "go", Text: "func f() {}\n"}, chunks[0])
	assert.Equal(t, transcript.Chunk{Kind: transcript.ChunkText, Text: "After"}, chunks[1])
	assert.Equal(t, "sh", chunks[2].Lang)

	content, chunks = splitChunks("no fences")
	assert.Equal(t, "no fences", content)
	assert.Nil(t, chunks)

	_, chunks = splitChunks("open ```go\nx")
	require.Len(t, chunks, 1)
	assert.Equal(t, transcript.ChunkText, chunks[0].Kind)
}

func TestDemoHistory_Alternates(t *testing.T) {
	n := 0
	msgs := demoHistory(feed.DefaultScript(), 7, func() string { n++; return fmt.Sprint(n) })
	require.Len(t, msgs, 7)
	for i, m := range msgs {
		want := transcript.RoleUser
		if i%2 == 1 {
			want = transcript.RoleAssistant
		}
		assert.Equal(t, want, m.Role, i)
	}
	assert.Equal(t, "7", msgs[6].ID)
}
