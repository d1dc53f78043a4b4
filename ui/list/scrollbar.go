package list

import "charm.land/lipgloss/v2"

const (
	scrollTrackChar = "│"
	scrollThumbChar = "█"
)

// scrollbarRows renders a vertical scrollbar as one styled cell per row.
//
// The thumb is sized and positioned proportionally to the visible region
// within contentHeight. Callers pass the inset-adjusted content height so
// reserved-but-empty rows do not shrink the thumb.
func scrollbarRows(viewportHeight, contentHeight, offset int, thumb, track lipgloss.Style) []string {
	vh := viewportHeight
	ch := contentHeight
	rows := make([]string, vh)
	if vh <= 0 {
		return rows
	}
	if ch <= vh {
		for i := range rows {
			rows[i] = " "
		}
		return rows
	}

	// Thumb height: at least 1 row.
	thumbH := min(max(vh*vh/ch, 1), vh)

	scrollable := ch - vh
	thumbTop := 0
	if scrollable > 0 {
		thumbTop = (offset * (vh - thumbH)) / scrollable
	}
	thumbTop = clamp(thumbTop, 0, vh-thumbH)

	for i := range rows {
		if i >= thumbTop && i < thumbTop+thumbH {
			rows[i] = thumb.Render(scrollThumbChar)
		} else {
			rows[i] = track.Render(scrollTrackChar)
		}
	}
	return rows
}
