// Package animation implements the display modes and the per-tick colour
// scheduling for the two LEDs.
package animation

import (
	"time"

	"libdb.so/lightbox/internal/led"
	"libdb.so/lightbox/internal/palette"
)

// NumLEDs is the number of LEDs the engine drives.
const NumLEDs = 2

// Engine decides what the LEDs show on every tick. It is owned by a single
// tick loop and is not safe for concurrent use.
type Engine struct {
	colours *palette.Store
	timing  Timing

	mode     Mode
	interval time.Duration
	last     time.Time // last colour change
	fade     *Fade     // nil unless fading
	second   bool      // which LED is lit in single modes

	leds led.LEDs
}

// NewEngine creates a new engine in Constant mode with the default interval.
// The timing is expected to be valid.
func NewEngine(colours *palette.Store, timing Timing) *Engine {
	return &Engine{
		colours:  colours,
		timing:   timing,
		mode:     Constant,
		interval: timing.Clamp(DefaultInterval),
		leds:     led.NewLEDs(NumLEDs),
	}
}

// Colours returns the palette store the engine reads from.
func (e *Engine) Colours() *palette.Store { return e.colours }

// Timing returns the interval limits.
func (e *Engine) Timing() Timing { return e.timing }

// Mode returns the current mode.
func (e *Engine) Mode() Mode { return e.mode }

// SetMode sets the mode. Invalid modes become Constant.
func (e *Engine) SetMode(m Mode) {
	if !m.IsValid() {
		m = Constant
	}
	e.mode = m
}

// NextMode cycles to the next mode and returns it.
func (e *Engine) NextMode() Mode {
	e.mode = e.mode.Next()
	return e.mode
}

// Interval returns the colour interval.
func (e *Engine) Interval() time.Duration { return e.interval }

// SetInterval sets the colour interval regardless of mode, clamped into the
// timing limits.
func (e *Engine) SetInterval(d time.Duration) time.Duration {
	e.interval = e.timing.Clamp(d)
	return e.interval
}

// ShrinkInterval shortens the interval by step. It returns the new interval
// and false if nothing changed because the engine is in Constant mode.
func (e *Engine) ShrinkInterval(step time.Duration) (time.Duration, bool) {
	return e.adjustInterval(e.interval - step)
}

// GrowInterval lengthens the interval by step. See ShrinkInterval.
func (e *Engine) GrowInterval(step time.Duration) (time.Duration, bool) {
	return e.adjustInterval(e.interval + step)
}

// MinimizeInterval sets the interval to its minimum. See ShrinkInterval.
func (e *Engine) MinimizeInterval() (time.Duration, bool) {
	return e.adjustInterval(e.timing.MinInterval)
}

// MaximizeInterval sets the interval to its maximum. See ShrinkInterval.
func (e *Engine) MaximizeInterval() (time.Duration, bool) {
	return e.adjustInterval(e.timing.MaxInterval)
}

func (e *Engine) adjustInterval(d time.Duration) (time.Duration, bool) {
	if e.mode == Constant {
		return e.interval, false
	}
	return e.SetInterval(d), true
}

// Fading returns true while a fade is in progress.
func (e *Engine) Fading() bool { return e.fade != nil }

// CurrentFade returns the fade in progress, if any.
func (e *Engine) CurrentFade() (Fade, bool) {
	if e.fade == nil {
		return Fade{}, false
	}
	return *e.fade, true
}

// Second returns true if the second LED is the lit one in single modes.
func (e *Engine) Second() bool { return e.second }

// Reset restarts the colour interval at now and drops any fade.
func (e *Engine) Reset(now time.Time) {
	e.last = now
	e.fade = nil
}

// Jump makes the next colour change happen shortly after now, so that a
// change made by the user shows without waiting for the old interval. Any
// fade in progress is dropped.
func (e *Engine) Jump(now time.Time) {
	lead := e.timing.JumpLead
	if lead > e.interval {
		lead = e.interval
	}
	e.last = now.Add(-(e.interval - lead))
	e.fade = nil
}

// Tick advances the engine to now and returns the frame to show. It returns
// false if nothing should be shown this tick; that happens on the tick that
// completes a colour cycle. The returned strip is reused by the next Tick.
func (e *Engine) Tick(now time.Time) (led.LEDs, bool) {
	if e.mode == Constant {
		e.leds.SetAll(e.colours.Colour())
		return e.leds, true
	}

	elapsed := now.Sub(e.last)
	if elapsed < e.interval {
		e.show(e.colours.Colour())
		return e.leds, true
	}

	if !e.mode.Fades() {
		e.colours.RandomColour()
		e.completeCycle(now)
		return e.leds, false
	}

	if e.fade == nil {
		window := FadeWindow(e.interval)
		if elapsed >= e.interval+window {
			// Missed the whole window; change colour without fading.
			e.colours.RandomColour()
			e.completeCycle(now)
			return e.leds, false
		}

		to := e.colours.RandomColour()
		e.fade = &Fade{
			From:   e.colours.PreviousColour(),
			To:     to,
			Window: window,
		}
	}

	offset := elapsed - e.interval
	if e.fade.Done(offset) {
		e.completeCycle(now)
		return e.leds, false
	}

	e.show(e.fade.At(offset))
	return e.leds, true
}

func (e *Engine) completeCycle(now time.Time) {
	e.fade = nil
	e.second = !e.second
	e.last = now
}

func (e *Engine) show(c led.RGBColor) {
	if !e.mode.Single() {
		e.leds.SetAll(c)
		return
	}

	e.leds.SetAll(led.Black)
	if e.second {
		e.leds.Set(1, c)
	} else {
		e.leds.Set(0, c)
	}
}
