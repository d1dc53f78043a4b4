package app

import (
	"fmt"
	"strings"

	"github.com/miosa/osa-transcript/feed"
	"github.com/miosa/osa-transcript/ui/transcript"
)

// demoHistory builds a finished conversation of n messages from the
// script's replies, alternating user and assistant turns.
func demoHistory(s feed.Script, n int, newID func() string) []transcript.Message {
	out := make([]transcript.Message, 0, n)
	for i := 0; i < n; i++ {
		turn := i / 2
		if i%2 == 0 {
			out = append(out, transcript.Message{
				ID:      newID(),
				Role:    transcript.RoleUser,
				Content: fmt.Sprintf("Question %d: tell me something about topic %d.", turn+1, turn+1),
			})
			continue
		}
		r := s.Replies[turn%len(s.Replies)]
		content, chunks := splitChunks(r.Content)
		out = append(out, transcript.Message{
			ID:       newID(),
			Role:     transcript.RoleAssistant,
			Content:  content,
			Thoughts: r.Thoughts,
			Chunks:   chunks,
		})
	}
	return out
}

// splitChunks keeps the prose before the first code fence as content and
// turns every fenced block and the prose between them into chunks.
func splitChunks(s string) (string, []transcript.Chunk) {
	head, rest, ok := strings.Cut(s, "```")
	if !ok {
		return s, nil
	}
	var chunks []transcript.Chunk
	for ok {
		var block string
		block, rest, ok = strings.Cut(rest, "```")
		if !ok {
			// Unterminated fence: keep it verbatim.
			chunks = append(chunks, transcript.Chunk{Kind: transcript.ChunkText, Text: "```" + block})
			break
		}
		lang, code, _ := strings.Cut(block, "\n")
		chunks = append(chunks, transcript.Chunk{Kind: transcript.ChunkCode, Lang: strings.TrimSpace(lang), Text: code})

		var text string
		text, rest, ok = strings.Cut(rest, "```")
		if t := strings.TrimSpace(text); t != "" {
			chunks = append(chunks, transcript.Chunk{Kind: transcript.ChunkText, Text: t})
		}
	}
	return strings.TrimSpace(head), chunks
}
