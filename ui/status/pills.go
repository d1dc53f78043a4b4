package status

import (
	"fmt"

	"github.com/miosa/osa-transcript/style"
	"github.com/miosa/osa-transcript/ui/transcript"
)

// PhasePill renders the stream phase, highlighted while a reply is live.
func PhasePill(p style.Palette, ph transcript.Phase) string {
	if ph == transcript.PhaseIdle {
		return p.StatusBar.Render(ph.String())
	}
	return p.Spinner.Render(ph.String())
}

// CachePill renders height cache size and hit rate, e.g. "cache 40 (92%)".
func CachePill(p style.Palette, entries, hits, misses int) string {
	label := p.Faint.Render("cache ")
	val := p.StatusKey.Render(fmt.Sprintf("%d", entries))
	if total := hits + misses; total > 0 {
		val += p.Faint.Render(fmt.Sprintf(" (%d%%)", hits*100/total))
	}
	return label + val
}

// CellsPill renders pooled cell usage, e.g. "cells 8/12".
func CellsPill(p style.Palette, live, allocated int) string {
	return p.Faint.Render("cells ") + p.StatusKey.Render(fmt.Sprintf("%d", live)) +
		p.Faint.Render(fmt.Sprintf("/%d", allocated))
}

// ReservePill renders the streaming reservation, e.g. "×1.50 +20".
// Returns an empty string when nothing is reserved.
func ReservePill(p style.Palette, multiplier float64, reserved int) string {
	if reserved <= 0 {
		return ""
	}
	return p.StatusNotice.Render(fmt.Sprintf("×%.2f +%d", multiplier, reserved))
}
