// Package led contains the color and strip types shared by the animation
// engine and the controller transport.
package led

import (
	"encoding"
	"fmt"
	"strconv"
	"strings"
)

// RGBColor is a 3-channel color, 0-255 per channel.
type RGBColor [3]uint8

// RGB creates a new RGBColor.
func RGB(r, g, b uint8) RGBColor {
	return RGBColor{r, g, b}
}

// Hex creates a new RGBColor from a 0xRRGGBB value.
func Hex(v uint32) RGBColor {
	return RGBColor{uint8(v >> 16), uint8(v >> 8), uint8(v)}
}

// Black is the color of an LED that is off.
var Black = RGBColor{}

var (
	_ encoding.TextUnmarshaler = (*RGBColor)(nil)
	_ encoding.TextMarshaler   = (*RGBColor)(nil)
)

// R returns the red channel.
func (c RGBColor) R() uint8 { return c[0] }

// G returns the green channel.
func (c RGBColor) G() uint8 { return c[1] }

// B returns the blue channel.
func (c RGBColor) B() uint8 { return c[2] }

// String returns the color formatted as #rrggbb.
func (c RGBColor) String() string {
	return fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2])
}

// MarshalText implements encoding.TextMarshaler.
func (c RGBColor) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. It accepts #rrggbb and
// 0xrrggbb.
func (c *RGBColor) UnmarshalText(text []byte) error {
	s := string(text)
	switch {
	case strings.HasPrefix(s, "#"):
		s = s[1:]
	case strings.HasPrefix(s, "0x"):
		s = s[2:]
	}
	if len(s) != 6 {
		return fmt.Errorf("invalid color %q", text)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return fmt.Errorf("invalid color %q: %w", text, err)
	}
	*c = Hex(uint32(v))
	return nil
}

// Lerp linearly interpolates each channel from c towards to. A fraction of 0
// returns c and a fraction of 255 returns to exactly.
func (c RGBColor) Lerp(to RGBColor, fraction uint8) RGBColor {
	return RGBColor{
		lerp8(c[0], to[0], fraction),
		lerp8(c[1], to[1], fraction),
		lerp8(c[2], to[2], fraction),
	}
}

// Scale scales every channel by scale/256, rounding so that 255 keeps the
// channel unchanged.
func (c RGBColor) Scale(scale uint8) RGBColor {
	return RGBColor{scale8(c[0], scale), scale8(c[1], scale), scale8(c[2], scale)}
}

func lerp8(a, b, frac uint8) uint8 {
	if b > a {
		return a + scale8(b-a, frac)
	}
	return a - scale8(a-b, frac)
}

func scale8(i, scale uint8) uint8 {
	return uint8((uint16(i) * (1 + uint16(scale))) >> 8)
}
