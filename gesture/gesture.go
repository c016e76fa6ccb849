// Package gesture turns the polled level of a push button into click,
// double click and long press gestures. It has no dependencies beyond the
// standard library so that it also builds for the controller firmware.
package gesture

import (
	"fmt"
	"time"
)

// Gesture is a recognized button gesture.
type Gesture uint8

const (
	// Click is a single short press.
	Click Gesture = iota + 1
	// DoubleClick is two short presses in quick succession.
	DoubleClick
	// LongPress is a press held past the long press duration. It is reported
	// when the button is released.
	LongPress
)

// IsValid returns true if g is a known gesture.
func (g Gesture) IsValid() bool {
	return g >= Click && g <= LongPress
}

func (g Gesture) String() string {
	switch g {
	case Click:
		return "click"
	case DoubleClick:
		return "double-click"
	case LongPress:
		return "long-press"
	default:
		return fmt.Sprintf("Gesture(%d)", uint8(g))
	}
}

// Config holds the gesture timings.
type Config struct {
	// Debounce is how long a level must be stable before it is accepted.
	Debounce time.Duration
	// ClickWindow is how long after a release a second press still counts as
	// a double click.
	ClickWindow time.Duration
	// LongPress is how long a press must be held to become a long press.
	LongPress time.Duration
}

// DefaultConfig is the default gesture timing.
var DefaultConfig = Config{
	Debounce:    50 * time.Millisecond,
	ClickWindow: 400 * time.Millisecond,
	LongPress:   800 * time.Millisecond,
}

type state uint8

const (
	idle state = iota
	down
	up
	downAgain
	held
)

// Detector detects gestures for a single button. It must be updated
// regularly, well within the debounce duration.
type Detector struct {
	cfg Config

	raw      bool
	rawSince time.Time
	level    bool

	state state
	since time.Time
}

// NewDetector creates a new detector.
func NewDetector(cfg Config) *Detector {
	return &Detector{cfg: cfg}
}

// Update feeds the current raw button level into the detector. It returns a
// gesture once one completes.
func (d *Detector) Update(pressed bool, now time.Time) (Gesture, bool) {
	if pressed != d.raw {
		d.raw = pressed
		d.rawSince = now
	}
	if d.raw != d.level && now.Sub(d.rawSince) >= d.cfg.Debounce {
		d.level = d.raw
	}

	switch d.state {
	case idle:
		if d.level {
			d.enter(down, now)
		}

	case down:
		switch {
		case !d.level:
			d.enter(up, now)
		case now.Sub(d.since) >= d.cfg.LongPress:
			d.enter(held, now)
		}

	case up:
		switch {
		case d.level:
			d.enter(downAgain, now)
		case now.Sub(d.since) >= d.cfg.ClickWindow:
			d.enter(idle, now)
			return Click, true
		}

	case downAgain:
		if !d.level {
			d.enter(idle, now)
			return DoubleClick, true
		}

	case held:
		if !d.level {
			d.enter(idle, now)
			return LongPress, true
		}
	}

	return 0, false
}

func (d *Detector) enter(s state, now time.Time) {
	d.state = s
	d.since = now
}
