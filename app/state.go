package app

// State represents which surface owns the keyboard.
type State int

const (
	StateBrowsing  State = iota // Composer closed; keys scroll the transcript
	StateComposing              // Composer open and focused
)

func (s State) String() string {
	switch s {
	case StateBrowsing:
		return "browsing"
	case StateComposing:
		return "composing"
	default:
		return "unknown"
	}
}
