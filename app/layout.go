package app

const (
	// headerHeight is the title line plus its separator.
	headerHeight = 2

	// minChatHeight keeps the transcript usable on tiny terminals.
	minChatHeight = 3
)

// Layout holds computed dimensions for the current frame.
type Layout struct {
	TermWidth    int
	TermHeight   int
	HeaderHeight int
	StatusHeight int
	InputHeight  int // 0 while the composer is closed
	ChatTop      int // screen row of the transcript's first line
	ChatWidth    int
	ChatHeight   int
}

// ComputeLayout calculates the layout dimensions based on terminal size and
// the heights of the status bar and composer. Pass inputLines=0 when the
// composer is closed; the transcript gets whatever remains.
func ComputeLayout(termW, termH, statusLines, inputLines int) Layout {
	l := Layout{
		TermWidth:    termW,
		TermHeight:   termH,
		HeaderHeight: headerHeight,
		StatusHeight: max(statusLines, 1),
		InputHeight:  max(inputLines, 0),
		ChatWidth:    max(termW, 1),
	}
	l.ChatTop = l.HeaderHeight
	l.ChatHeight = max(termH-l.HeaderHeight-l.StatusHeight-l.InputHeight, minChatHeight)
	return l
}
