package transcript

import (
	"errors"
	"fmt"
)

// ErrInvalidTransition is returned when the streaming item's display
// lifecycle is asked to move along an edge it does not have.
var ErrInvalidTransition = errors.New("invalid buffer lifecycle transition")

// Phase is the display lifecycle of the streaming item.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseStreaming
	PhaseSettling
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseStreaming:
		return "streaming"
	case PhaseSettling:
		return "settling"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// lifecycle enforces idle → streaming → settling → idle.
type lifecycle struct {
	phase Phase
}

func (l *lifecycle) to(next Phase) error {
	ok := false
	switch l.phase {
	case PhaseIdle:
		ok = next == PhaseStreaming
	case PhaseStreaming:
		ok = next == PhaseSettling
	case PhaseSettling:
		ok = next == PhaseIdle
	}
	if !ok {
		return fmt.Errorf("%w: %s → %s", ErrInvalidTransition, l.phase, next)
	}
	l.phase = next
	return nil
}
