package animation

import (
	"fmt"
	"time"
)

const (
	// DefaultInterval is the colour interval used before anything is loaded.
	DefaultInterval = time.Second

	fadeBoundary1 = 5 * time.Second
	fadeBoundary2 = 10 * time.Second
)

// Timing holds the limits and steps for the colour interval.
type Timing struct {
	// MinInterval and MaxInterval bound the colour interval.
	MinInterval time.Duration
	MaxInterval time.Duration
	// SmallStep and LargeStep are the interval steps for single and double
	// clicks.
	SmallStep time.Duration
	LargeStep time.Duration
	// JumpLead is how long after a Jump the next colour change happens.
	JumpLead time.Duration
}

// DefaultTiming is the timing the device ships with.
var DefaultTiming = Timing{
	MinInterval: 100 * time.Millisecond,
	MaxInterval: 20 * time.Second,
	SmallStep:   100 * time.Millisecond,
	LargeStep:   time.Second,
	JumpLead:    10 * time.Millisecond,
}

// Validate validates the timing.
func (t Timing) Validate() error {
	if t.MinInterval <= 0 {
		return fmt.Errorf("minimum interval %v must be positive", t.MinInterval)
	}
	if t.MaxInterval < t.MinInterval {
		return fmt.Errorf("maximum interval %v is below minimum %v", t.MaxInterval, t.MinInterval)
	}
	if t.SmallStep <= 0 || t.LargeStep <= 0 {
		return fmt.Errorf("interval steps must be positive")
	}
	if t.JumpLead < 0 {
		return fmt.Errorf("jump lead %v must not be negative", t.JumpLead)
	}
	return nil
}

// Clamp clamps d into [MinInterval, MaxInterval].
func (t Timing) Clamp(d time.Duration) time.Duration {
	switch {
	case d < t.MinInterval:
		return t.MinInterval
	case d > t.MaxInterval:
		return t.MaxInterval
	default:
		return d
	}
}

// FadeWindow returns how long the fade after a colour interval lasts. Short
// intervals fade for a quarter of the interval, medium ones for half and
// long ones for the whole interval.
func FadeWindow(interval time.Duration) time.Duration {
	switch {
	case interval <= fadeBoundary1:
		return interval / 4
	case interval <= fadeBoundary2:
		return interval / 2
	default:
		return interval
	}
}
