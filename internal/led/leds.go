package led

// LEDs describes a strip of LEDs. It is a preallocated slice of RGBColor.
type LEDs []RGBColor

// NewLEDs creates a new strip of LEDs. Colors are initialized to black
// (off).
func NewLEDs(numLEDs int) LEDs {
	return make(LEDs, numLEDs)
}

// AsPixels returns the LED strip as a freshly allocated slice of uint8
// values. Each LED is represented by three values, one for each color
// channel, in RGB order.
func (l LEDs) AsPixels() []uint8 {
	pix := make([]uint8, 0, 3*len(l))
	for _, c := range l {
		pix = append(pix, c[:]...)
	}
	return pix
}

// Set sets the color of the LED at the given index.
func (l LEDs) Set(i int, c RGBColor) {
	l[i] = c
}

// SetAll sets every LED in the strip to the given color.
func (l LEDs) SetAll(c RGBColor) {
	l.SetRange(0, len(l), c)
}

// SetRange sets the color of the LEDs in the given range.
func (l LEDs) SetRange(start, end int, c RGBColor) {
	for i := start; i < end; i++ {
		l[i] = c
	}
}
