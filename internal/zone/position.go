package zone

import (
	"time"

	"github.com/metaneutrons/snapdog2-sub015/internal/clock"
)

// positionTimer is the wall-clock anchor plus position-at-anchor pair from
// spec §4.2: "CurrentPosition() = anchor + (now - anchor_time) while
// Playing, frozen while Paused."
type positionTimer struct {
	clk clock.Clock

	anchorWallClock time.Time
	anchorPositionMs int64
	running         bool
}

func newPositionTimer(clk clock.Clock) *positionTimer {
	return &positionTimer{clk: clk}
}

// Start (re)anchors the timer at the given starting position and begins
// advancing it.
func (p *positionTimer) Start(atMs int64) {
	p.anchorWallClock = p.clk.Now()
	p.anchorPositionMs = atMs
	p.running = true
}

// Freeze stops advancing the timer, capturing the current position as the
// new anchor (used by Pause).
func (p *positionTimer) Freeze() {
	if p.running {
		p.anchorPositionMs = p.Position()
	}
	p.running = false
}

// Position returns the current extrapolated position in milliseconds.
func (p *positionTimer) Position() int64 {
	if !p.running {
		return p.anchorPositionMs
	}
	elapsed := p.clk.Now().Sub(p.anchorWallClock)
	return p.anchorPositionMs + elapsed.Milliseconds()
}

// Reset sets the position to zero and stops the timer (used by Stop).
func (p *positionTimer) Reset() {
	p.anchorPositionMs = 0
	p.anchorWallClock = p.clk.Now()
	p.running = false
}
