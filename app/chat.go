package app

import (
	"context"
	"slices"
	"time"

	"github.com/miosa/osa-transcript/ui/attachments"
	"github.com/miosa/osa-transcript/ui/transcript"
)

// chatState is the conversation the transcript renders. The root Model is a
// value type, so it holds the chat by pointer and reply commands can attach
// their cancel function to it.
type chatState struct {
	id        string
	messages  []transcript.Message
	streaming bool
	replyID   string
	started   time.Time
	cancel    context.CancelFunc

	// token is the explicit scroll trigger handed to the transcript.
	token uint64
}

// hooks collects transcript callbacks. It outlives chat switches and is
// drained by the root Model after every call into the transcript.
type hooks struct {
	signIn  bool
	removed []string
}

func newChat(id string) *chatState {
	return &chatState{id: id}
}

// stop cancels the reply in flight, if any.
func (c *chatState) stop() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

func (c *chatState) addUser(id, text string, files []attachments.Attachment) {
	m := transcript.Message{ID: id, Role: transcript.RoleUser, Content: text}
	for _, f := range files {
		m.Attachments = append(m.Attachments, transcript.Attachment{ID: f.ID, Name: f.Name, Size: f.Size})
	}
	c.messages = append(c.messages, m)
}

// begin appends an empty assistant message and marks the chat streaming.
func (c *chatState) begin(id string, now time.Time) {
	c.messages = append(c.messages, transcript.Message{ID: id, Role: transcript.RoleAssistant})
	c.streaming = true
	c.replyID = id
	c.started = now
}

// appendText adds a delta to message id. It reports false if no such
// message exists.
func (c *chatState) appendText(id, text string, thought bool) bool {
	i := c.index(id)
	if i < 0 {
		return false
	}
	if thought {
		c.messages[i].Thoughts += text
	} else {
		c.messages[i].Content += text
	}
	return true
}

// finish ends the reply id. It reports false when id is not the reply in
// flight.
func (c *chatState) finish(id string) bool {
	if !c.streaming || c.replyID != id {
		return false
	}
	c.streaming = false
	c.replyID = ""
	c.stop()
	return true
}

// removeAttachment drops the attachment from whichever message holds it.
func (c *chatState) removeAttachment(attID string) bool {
	for i := range c.messages {
		atts := c.messages[i].Attachments
		j := slices.IndexFunc(atts, func(a transcript.Attachment) bool { return a.ID == attID })
		if j < 0 {
			continue
		}
		c.messages[i].Attachments = slices.Delete(slices.Clone(atts), j, j+1)
		return true
	}
	return false
}

// lastReply returns the newest finished assistant message as markdown.
func (c *chatState) lastReply() (string, bool) {
	for i := len(c.messages) - 1; i >= 0; i-- {
		m := c.messages[i]
		if m.Role != transcript.RoleAssistant || (c.streaming && m.ID == c.replyID) {
			continue
		}
		if text := m.Markdown(); text != "" {
			return text, true
		}
	}
	return "", false
}

func (c *chatState) index(id string) int {
	for i := len(c.messages) - 1; i >= 0; i-- {
		if c.messages[i].ID == id {
			return i
		}
	}
	return -1
}
