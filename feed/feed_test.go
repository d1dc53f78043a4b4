package feed

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/miosa/osa-transcript/msg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	mu     sync.Mutex
	msgs   []tea.Msg
	onSend func(tea.Msg)
}

func (f *fakeSender) Send(m tea.Msg) {
	f.mu.Lock()
	f.msgs = append(f.msgs, m)
	hook := f.onSend
	f.mu.Unlock()
	if hook != nil {
		hook(m)
	}
}

func (f *fakeSender) all() []tea.Msg {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]tea.Msg(nil), f.msgs...)
}

func fixedID(id string) Option { return WithIDs(func() string { return id }) }

func TestTokens_Concatenate(t *testing.T) {
	for _, s := range []string{"", "one", "a b  c", "line\n\nnext word", " lead", "trail "} {
		assert.Equal(t, s, strings.Join(tokens(s), ""), "%q", s)
	}
	assert.Equal(t, []string{"a", " b", " c"}, tokens("a b c"))
}

func TestParseScript(t *testing.T) {
	s, err := ParseScript(`
[[reply]]
match = "hello"
content = "hi there"

[[reply]]
content = "fallback"
`)
	require.NoError(t, err)
	require.Len(t, s.Replies, 2)
	assert.Equal(t, "hi there", s.pick("well HELLO", 0).Content)
	assert.Equal(t, "fallback", s.pick("anything", 0).Content)

	_, err = ParseScript("")
	assert.ErrorIs(t, err, ErrEmptyScript)

	_, err = ParseScript("[[reply]\n")
	assert.Error(t, err)
}

func TestLoadScript(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.toml")
	require.NoError(t, os.WriteFile(path, []byte("[[reply]]\ncontent = \"x\"\n"), 0o644))
	s, err := LoadScript(path)
	require.NoError(t, err)
	assert.Equal(t, "x", s.Replies[0].Content)

	empty := filepath.Join(t.TempDir(), "empty.toml")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	_, err = LoadScript(empty)
	assert.ErrorIs(t, err, ErrEmptyScript)

	_, err = LoadScript(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestDefaultScript(t *testing.T) {
	s := DefaultScript()
	assert.NotEmpty(t, s.Replies)
	assert.Contains(t, s.pick("show me code", 0).Content, "```go")
}

func TestPick_RotatesUnmatched(t *testing.T) {
	s := Script{Replies: []Reply{{Content: "a"}, {Match: "x", Content: "m"}, {Content: "b"}}}
	assert.Equal(t, "a", s.pick("q", 0).Content)
	assert.Equal(t, "b", s.pick("q", 1).Content)
	assert.Equal(t, "a", s.pick("q", 2).Content)
}

func TestNew_RejectsEmptyScript(t *testing.T) {
	_, err := New(Script{})
	assert.ErrorIs(t, err, ErrEmptyScript)
}

func TestReply_StreamsInOrder(t *testing.T) {
	script := Script{Replies: []Reply{{Thoughts: "think hard", Content: "hello big world"}}}
	s, err := New(script, WithRate(0), fixedID("m-1"))
	require.NoError(t, err)

	out := &fakeSender{}
	id, err := s.Reply(context.Background(), out, "chat-1", "hi")
	require.NoError(t, err)
	assert.Equal(t, "m-1", id)

	msgs := out.all()
	require.NotEmpty(t, msgs)
	assert.Equal(t, msg.StreamStarted{ChatID: "chat-1", MessageID: "m-1"}, msgs[0])
	assert.Equal(t, msg.StreamFinished{ChatID: "chat-1", MessageID: "m-1"}, msgs[len(msgs)-1])

	var thoughts, content strings.Builder
	sawContent := false
	for _, m := range msgs[1 : len(msgs)-1] {
		switch m := m.(type) {
		case msg.ThinkingDelta:
			assert.False(t, sawContent, "thoughts come first")
			thoughts.WriteString(m.Text)
		case msg.StreamDelta:
			sawContent = true
			assert.Equal(t, "chat-1", m.ChatID)
			content.WriteString(m.Text)
		default:
			t.Fatalf("unexpected message %T", m)
		}
	}
	assert.Equal(t, "think hard", thoughts.String())
	assert.Equal(t, "hello big world", content.String())
}

func TestReply_CancelledStillFinishes(t *testing.T) {
	script := Script{Replies: []Reply{{Content: "one two three four five six"}}}
	s, err := New(script, WithRate(0), fixedID("m-2"))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	deltas := 0
	out := &fakeSender{}
	out.onSend = func(m tea.Msg) {
		if _, ok := m.(msg.StreamDelta); ok {
			deltas++
			if deltas == 2 {
				cancel()
			}
		}
	}

	_, err = s.Reply(ctx, out, "c", "p")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, 2, deltas)

	msgs := out.all()
	fin, ok := msgs[len(msgs)-1].(msg.StreamFinished)
	require.True(t, ok)
	assert.ErrorIs(t, fin.Err, context.Canceled)
}
