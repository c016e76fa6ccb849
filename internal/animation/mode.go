package animation

import "fmt"

// Mode is the display mode. It decides how the colour selection maps onto the
// two LEDs and whether colour changes are abrupt or faded.
type Mode uint8

const (
	// Constant shows the selected colour on both LEDs, forever.
	Constant Mode = iota
	// RandomPair shows the same random colour on both LEDs.
	RandomPair
	// RandomPairFade is RandomPair with fades between colours.
	RandomPairFade
	// RandomSingle shows a random colour on one LED at a time, alternating
	// between the LEDs on every colour change.
	RandomSingle
	// RandomSingleFade is RandomSingle with fades between colours.
	RandomSingleFade
)

// Modes lists every mode in cycling order.
var Modes = [...]Mode{
	Constant,
	RandomPair,
	RandomPairFade,
	RandomSingle,
	RandomSingleFade,
}

// ModeFromByte converts a persisted mode byte into a Mode. Unknown values
// become Constant.
func ModeFromByte(b uint8) Mode {
	if m := Mode(b); m.IsValid() {
		return m
	}
	return Constant
}

// IsValid returns true if m is one of Modes.
func (m Mode) IsValid() bool {
	for _, v := range Modes {
		if v == m {
			return true
		}
	}
	return false
}

// Next returns the mode after m, wrapping from the last mode back to the
// first. An invalid mode is followed by the first mode.
func (m Mode) Next() Mode {
	for i, v := range Modes {
		if v == m {
			return Modes[(i+1)%len(Modes)]
		}
	}
	return Modes[0]
}

// Single returns true if only one LED is lit at a time.
func (m Mode) Single() bool {
	return m == RandomSingle || m == RandomSingleFade
}

// Fades returns true if colour changes fade.
func (m Mode) Fades() bool {
	return m == RandomPairFade || m == RandomSingleFade
}

func (m Mode) String() string {
	switch m {
	case Constant:
		return "constant"
	case RandomPair:
		return "random-pair"
	case RandomPairFade:
		return "random-pair-fade"
	case RandomSingle:
		return "random-single"
	case RandomSingleFade:
		return "random-single-fade"
	default:
		return fmt.Sprintf("Mode(%d)", uint8(m))
	}
}
