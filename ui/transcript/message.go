package transcript

import (
	"slices"
	"strings"
)

// Role identifies the author of a message.
type Role int

const (
	RoleUser Role = iota
	RoleAssistant
)

func (r Role) String() string {
	if r == RoleUser {
		return "user"
	}
	return "assistant"
}

// ChunkKind classifies a content chunk.
type ChunkKind int

const (
	ChunkText ChunkKind = iota
	ChunkCode
)

// Chunk is one structured piece of message content rendered after Content.
type Chunk struct {
	Kind ChunkKind
	Lang string // code chunks only
	Text string
}

// Attachment is a file attached to a message.
type Attachment struct {
	ID   string
	Name string
	Size int64
}

// Message is one transcript entry. The renderer only reads it; callers hand
// in a fresh snapshot on every Render.
type Message struct {
	ID          string
	Role        Role
	Content     string
	Thoughts    string
	Chunks      []Chunk
	Attachments []Attachment
}

// IsThinking reports whether an assistant message has produced reasoning but
// no visible content yet.
func (m Message) IsThinking() bool {
	return m.Role == RoleAssistant && m.Thoughts != "" && strings.TrimSpace(m.Content) == "" && len(m.Chunks) == 0
}

// Equal reports whether m and o would render identically.
func (m Message) Equal(o Message) bool {
	return m.ID == o.ID &&
		m.Role == o.Role &&
		m.Content == o.Content &&
		m.Thoughts == o.Thoughts &&
		slices.Equal(m.Chunks, o.Chunks) &&
		slices.Equal(m.Attachments, o.Attachments)
}

// Markdown returns the body handed to the content renderer: Content
// followed by each chunk, code chunks fenced.
func (m Message) Markdown() string {
	if len(m.Chunks) == 0 {
		return m.Content
	}
	var b strings.Builder
	b.WriteString(m.Content)
	for _, c := range m.Chunks {
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		switch c.Kind {
		case ChunkCode:
			b.WriteString("```" + c.Lang + "\n")
			b.WriteString(strings.TrimRight(c.Text, "\n"))
			b.WriteString("\n```")
		default:
			b.WriteString(c.Text)
		}
	}
	return b.String()
}

func (m Message) clone() Message {
	m.Chunks = slices.Clone(m.Chunks)
	m.Attachments = slices.Clone(m.Attachments)
	return m
}
