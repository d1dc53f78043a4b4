package transcript

import (
	"math"
	"time"

	"github.com/charmbracelet/harmonica"
)

const collapseFPS = 60

// bufferController reserves space below the streaming item so that its
// growth never pushes the layout past what was already allotted. Reserved
// space is multiplier × viewport height and grows in whole steps.
type bufferController struct {
	threshold  float64
	hysteresis int

	lifecycle
	target *Wrapper

	// Collapse animation state, valid while settling.
	spring     harmonica.Spring
	pos, vel   float64
	collapseTo int
	frames     int
	// deferred is set when the stream ended while the target was frozen;
	// the collapse starts on resync.
	deferred bool
}

func newBufferController(threshold float64, hysteresis int) bufferController {
	return bufferController{threshold: threshold, hysteresis: hysteresis}
}

// begin makes w the streaming target, resetting its multiplier.
func (b *bufferController) begin(w *Wrapper, viewportHeight int) error {
	if err := b.to(PhaseStreaming); err != nil {
		return err
	}
	b.target = w
	b.deferred = false
	w.bufferMultiplier = 1
	w.lastExtensionHeight = 0
	w.setReserved(viewportHeight)
	return nil
}

// observe feeds a new measured content height for the target. It reports
// whether the reservation grew.
func (b *bufferController) observe(measured, viewportHeight int) bool {
	if b.phase != PhaseStreaming || b.target == nil {
		return false
	}
	w := b.target
	reserved := w.reserved
	// No viewport yet: nothing to measure the reservation against.
	if viewportHeight <= 0 || reserved <= 0 {
		return false
	}
	if float64(measured) > b.threshold*float64(reserved) && measured > w.lastExtensionHeight+b.hysteresis {
		w.bufferMultiplier++
		w.lastExtensionHeight = measured
		w.setReserved(int(w.bufferMultiplier * float64(viewportHeight)))
		return true
	}
	return false
}

// resize rescales the reservation for a new viewport height.
func (b *bufferController) resize(viewportHeight int) {
	if b.phase == PhaseStreaming && b.target != nil {
		b.target.setReserved(int(b.target.bufferMultiplier * float64(viewportHeight)))
	}
}

// end moves to settling and prepares the collapse spring. It reports false
// when the target was already at its final height and nothing needs to be
// animated; in that case the controller is back at idle.
func (b *bufferController) end(duration time.Duration) (bool, error) {
	if err := b.to(PhaseSettling); err != nil {
		return false, err
	}
	w := b.target
	final := w.measuredHeight
	if w.reserved <= final {
		b.finish()
		return false, nil
	}
	secs := duration.Seconds()
	if secs <= 0 {
		b.finish()
		return false, nil
	}
	// Critically damped; ω = 6/T leaves under 2% of the distance at T.
	b.spring = harmonica.NewSpring(harmonica.FPS(collapseFPS), 6/secs, 1.0)
	b.pos = float64(w.reserved)
	b.vel = 0
	b.collapseTo = final
	b.frames = max(1, int(math.Ceil(secs*collapseFPS)))
	return true, nil
}

// frameInterval is the delay between collapse frames.
func (b *bufferController) frameInterval() time.Duration {
	return time.Second / collapseFPS
}

// step advances the collapse by one frame and reports whether it finished.
func (b *bufferController) step() bool {
	if b.phase != PhaseSettling || b.target == nil {
		return true
	}
	b.pos, b.vel = b.spring.Update(b.pos, b.vel, float64(b.collapseTo))
	b.frames--
	if b.frames <= 0 || math.Abs(b.pos-float64(b.collapseTo)) < 0.5 {
		b.finish()
		return true
	}
	b.target.setReserved(int(math.Round(b.pos)))
	return false
}

// finish snaps the reservation away and returns to idle.
func (b *bufferController) finish() {
	if b.target != nil {
		b.target.setReserved(0)
	}
	b.frames = 0
	b.deferred = false
	if b.phase == PhaseSettling {
		_ = b.to(PhaseIdle)
	}
}

// abandon forces the controller to idle along valid edges, snapping any
// reservation. Used when a new turn or a chat switch interrupts.
func (b *bufferController) abandon() {
	if b.phase == PhaseStreaming {
		_ = b.to(PhaseSettling)
	}
	b.finish()
	b.target = nil
}

// spare is the reserved-but-empty space below the target's content.
func (b *bufferController) spare() int {
	if b.target == nil || b.target.reserved == 0 {
		return 0
	}
	return max(0, b.target.reserved-b.target.measuredHeight)
}

// active reports whether the target is still being streamed or settled.
func (b *bufferController) active() bool {
	return b.target != nil && b.phase != PhaseIdle
}
