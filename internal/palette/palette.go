// Package palette holds the fixed colour palettes and the current colour
// selection.
package palette

import (
	"math/rand"

	"libdb.so/lightbox/internal/led"
)

// Palette is an ordered, fixed set of colours selectable as a unit.
type Palette []led.RGBColor

// Named colours, using the same values as the FastLED pixel reference.
var (
	White       = led.Hex(0xFFFFFF)
	Red         = led.Hex(0xFF0000)
	Green       = led.Hex(0x008000)
	Blue        = led.Hex(0x0000FF)
	Cyan        = led.Hex(0x00FFFF)
	Magenta     = led.Hex(0xFF00FF)
	Yellow      = led.Hex(0xFFFF00)
	Pink        = led.Hex(0xFFC0CB)
	LightGreen  = led.Hex(0x90EE90)
	LightBlue   = led.Hex(0xADD8E6)
	Maroon      = led.Hex(0x800000)
	YellowGreen = led.Hex(0x9ACD32)
	Navy        = led.Hex(0x000080)
	Orange      = led.Hex(0xFFA500)
	Chocolate   = led.Hex(0xD2691E)
	Indigo      = led.Hex(0x4B0082)
)

// Primaries is white and the primary colours.
var Primaries = Palette{White, Red, Green, Blue}

// Secondaries is Primaries plus the secondary colours.
var Secondaries = Palette{
	White, Red, Green, Blue,
	Cyan, Magenta, Yellow,
}

// Extended is Secondaries plus some others.
var Extended = Palette{
	White, Red, Green, Blue,
	Cyan, Magenta, Yellow,
	Pink, LightGreen, LightBlue,
	Maroon, YellowGreen, Navy,
	Orange, Chocolate, Indigo,
}

// Default is the palette set the device ships with.
var Default = []Palette{Primaries, Secondaries, Extended}

// Store holds the palettes and the active palette and colour indices.
// A Store is not safe for concurrent use; it is owned by the tick loop.
type Store struct {
	palettes []Palette
	rand     *rand.Rand

	palette  int
	colour   int
	previous led.RGBColor
}

// NewStore creates a new store over the given palettes, starting at palette 0
// and colour 0. Every palette used with RandomColour must hold at least two
// colours. If rng is nil, a generator seeded with 1 is used.
func NewStore(palettes []Palette, rng *rand.Rand) *Store {
	if len(palettes) == 0 {
		panic("palette: no palettes")
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &Store{
		palettes: palettes,
		rand:     rng,
		previous: led.Black,
	}
}

// Size returns the number of colours in the active palette.
func (s *Store) Size() int { return len(s.palettes[s.palette]) }

// Palette returns the active palette index.
func (s *Store) Palette() int { return s.palette }

// SetPalette sets the active palette. An out-of-range index selects palette 0.
// The colour index is reset to 0 if it does not exist in the new palette.
func (s *Store) SetPalette(n int) {
	if n < 0 || n >= len(s.palettes) {
		n = 0
	}
	s.palette = n

	if s.colour >= len(s.palettes[n]) {
		s.colour = 0
	}
}

// NextPalette moves to the next palette, wrapping around, and returns its
// index.
func (s *Store) NextPalette() int {
	s.SetPalette((s.palette + 1) % len(s.palettes))
	return s.palette
}

// ColourIndex returns the active colour index.
func (s *Store) ColourIndex() int { return s.colour }

// SetColour sets the active colour index. An out-of-range index selects
// colour 0.
func (s *Store) SetColour(n int) {
	if n < 0 || n >= s.Size() {
		n = 0
	}
	s.colour = n
}

// IncrementColour moves to the next colour, wrapping around, and returns the
// new index.
func (s *Store) IncrementColour() int {
	s.colour = (s.colour + 1) % s.Size()
	return s.colour
}

// DecrementColour moves to the previous colour, wrapping from 0 to the last
// colour, and returns the new index.
func (s *Store) DecrementColour() int {
	size := s.Size()
	s.colour = (s.colour - 1 + size) % size
	return s.colour
}

// Colour returns the active colour.
func (s *Store) Colour() led.RGBColor {
	return s.palettes[s.palette][s.colour]
}

// PreviousColour returns the colour that was active before the last
// RandomColour call. It is black until RandomColour is first called.
func (s *Store) PreviousColour() led.RGBColor {
	return s.previous
}

// RandomColour selects a random colour from the active palette that differs
// from the active one, remembers the old colour as the previous colour and
// returns the new colour.
func (s *Store) RandomColour() led.RGBColor {
	size := s.Size()
	if size < 2 {
		panic("palette: RandomColour needs at least two colours")
	}

	n := s.colour
	for n == s.colour {
		n = s.rand.Intn(size)
	}

	s.previous = s.Colour()
	s.colour = n
	return s.Colour()
}
