package transcript

import "time"

// Config is the renderer's explicit settings object. Out-of-range fields
// take the defaults from DefaultConfig; Slack, ExtensionHysteresis and
// CollapseDuration accept zero.
type Config struct {
	// MaxVisibleMessages is the archive boundary: older messages are dimmed.
	MaxVisibleMessages int
	// Slack is the at-bottom tolerance in rows.
	Slack int
	// ExtensionThreshold is the fraction of the reservation the streaming
	// item may fill before the buffer grows.
	ExtensionThreshold float64
	// ExtensionHysteresis is the growth in rows required between two
	// extensions.
	ExtensionHysteresis int
	// WheelStep is the number of rows scrolled per wheel notch.
	WheelStep int

	CollapseDuration time.Duration
	DragDebounce     time.Duration
	KeyboardSettle   time.Duration
	ScrollSettle     time.Duration

	// AnimatedScroll enables the spring animation for new-turn scrolls.
	AnimatedScroll bool
}

// DefaultConfig returns the stock settings.
func DefaultConfig() Config {
	return Config{
		MaxVisibleMessages:  20,
		Slack:               3,
		ExtensionThreshold:  0.8,
		ExtensionHysteresis: 2,
		WheelStep:           3,
		CollapseDuration:    200 * time.Millisecond,
		DragDebounce:        300 * time.Millisecond,
		KeyboardSettle:      50 * time.Millisecond,
		ScrollSettle:        300 * time.Millisecond,
		AnimatedScroll:      true,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.MaxVisibleMessages <= 0 {
		c.MaxVisibleMessages = d.MaxVisibleMessages
	}
	if c.Slack < 0 {
		c.Slack = d.Slack
	}
	if c.ExtensionThreshold <= 0 || c.ExtensionThreshold > 1 {
		c.ExtensionThreshold = d.ExtensionThreshold
	}
	if c.ExtensionHysteresis < 0 {
		c.ExtensionHysteresis = d.ExtensionHysteresis
	}
	if c.WheelStep <= 0 {
		c.WheelStep = d.WheelStep
	}
	if c.CollapseDuration < 0 {
		c.CollapseDuration = d.CollapseDuration
	}
	if c.DragDebounce <= 0 {
		c.DragDebounce = d.DragDebounce
	}
	if c.KeyboardSettle <= 0 {
		c.KeyboardSettle = d.KeyboardSettle
	}
	if c.ScrollSettle <= 0 {
		c.ScrollSettle = d.ScrollSettle
	}
	return c
}
