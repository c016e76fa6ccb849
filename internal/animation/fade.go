package animation

import (
	"time"

	"libdb.so/lightbox/internal/led"
)

// Fade is a single transition from one colour to another over a window.
type Fade struct {
	From   led.RGBColor
	To     led.RGBColor
	Window time.Duration
}

// Fraction returns how far into the fade the offset is, from 0 (From) to 255
// (To).
func (f Fade) Fraction(offset time.Duration) uint8 {
	return FadeFraction(offset, f.Window)
}

// At returns the colour at the given offset into the fade.
func (f Fade) At(offset time.Duration) led.RGBColor {
	return f.From.Lerp(f.To, f.Fraction(offset))
}

// Done returns true once the offset has reached the end of the window.
func (f Fade) Done(offset time.Duration) bool {
	return offset >= f.Window
}

// FadeFraction computes offset*255/window, saturating at both ends.
func FadeFraction(offset, window time.Duration) uint8 {
	switch {
	case window <= 0 || offset >= window:
		return 0xFF
	case offset <= 0:
		return 0
	default:
		return uint8(offset * 0xFF / window)
	}
}
