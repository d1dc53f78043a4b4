package feed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/miosa/osa-transcript/msg"
	"golang.org/x/time/rate"
)

// DefaultTokensPerSecond is the pace used when none is configured.
const DefaultTokensPerSecond = 40

// Option configures a Streamer.
type Option func(*Streamer)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Streamer) {
		if l != nil {
			s.log = l
		}
	}
}

// WithRate sets the token pace. A non-positive value removes the limit.
func WithRate(tokensPerSecond float64) Option {
	return func(s *Streamer) {
		if tokensPerSecond <= 0 {
			s.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		s.limiter = rate.NewLimiter(rate.Limit(tokensPerSecond), 1)
	}
}

// WithIDs replaces the message ID generator.
func WithIDs(next func() string) Option {
	return func(s *Streamer) {
		if next != nil {
			s.newID = next
		}
	}
}

// Streamer plays script replies into a Sender. It is safe for concurrent
// use, though the host only runs one reply at a time.
type Streamer struct {
	script  Script
	limiter *rate.Limiter
	log     *slog.Logger
	newID   func() string

	mu      sync.Mutex
	replies int
}

// New returns a Streamer for script.
func New(script Script, opts ...Option) (*Streamer, error) {
	if len(script.Replies) == 0 {
		return nil, ErrEmptyScript
	}
	s := &Streamer{
		script:  script,
		limiter: rate.NewLimiter(rate.Limit(DefaultTokensPerSecond), 1),
		log:     slog.New(slog.DiscardHandler),
		newID:   uuid.NewString,
	}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// SetRate changes the pace of replies in flight and future ones.
func (s *Streamer) SetRate(tokensPerSecond float64) {
	if tokensPerSecond <= 0 {
		s.limiter.SetLimit(rate.Inf)
		return
	}
	s.limiter.SetLimit(rate.Limit(tokensPerSecond))
}

// Reply streams the answer to prompt into chat chatID through out. It
// blocks until the reply is complete or ctx is cancelled, always ends with
// msg.StreamFinished, and returns the reply's message ID.
func (s *Streamer) Reply(ctx context.Context, out msg.Sender, chatID, prompt string) (string, error) {
	s.mu.Lock()
	r := s.script.pick(prompt, s.replies)
	s.replies++
	s.mu.Unlock()

	id := s.newID()
	log := s.log.With("chat", chatID, "message", id)
	log.Debug("reply started", "tokens", len(tokens(r.Content)))
	out.Send(msg.StreamStarted{ChatID: chatID, MessageID: id})

	err := s.play(ctx, r, func(text string, thought bool) {
		if thought {
			out.Send(msg.ThinkingDelta{ChatID: chatID, MessageID: id, Text: text})
		} else {
			out.Send(msg.StreamDelta{ChatID: chatID, MessageID: id, Text: text})
		}
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			log.Debug("reply cancelled")
		} else {
			log.Warn("reply failed", "err", err)
		}
		err = fmt.Errorf("reply %s: %w", id, err)
	}
	out.Send(msg.StreamFinished{ChatID: chatID, MessageID: id, Err: err})
	return id, err
}

func (s *Streamer) play(ctx context.Context, r Reply, emit func(string, bool)) error {
	for _, tok := range tokens(r.Thoughts) {
		if err := s.limiter.Wait(ctx); err != nil {
			return err
		}
		emit(tok, true)
	}
	for _, tok := range tokens(r.Content) {
		if err := s.limiter.Wait(ctx); err != nil {
			return err
		}
		emit(tok, false)
	}
	return nil
}
