// Package input maps button gestures onto changes of the animation state and
// persists every change.
package input

import (
	"fmt"
	"time"

	"libdb.so/lightbox/gesture"
	"libdb.so/lightbox/internal/animation"
	"libdb.so/lightbox/internal/led"
	"libdb.so/lightbox/internal/settings"
)

// Button is one of the three device buttons.
type Button uint8

const (
	// Button1 changes the mode, brightness and palette.
	Button1 Button = iota + 1
	// Button2 decreases the colour or interval.
	Button2
	// Button3 increases the colour or interval.
	Button3
)

// Buttons lists every button.
var Buttons = [...]Button{Button1, Button2, Button3}

// ResetButton is the button that resets the settings when held at startup.
const ResetButton = Button1

func (b Button) String() string {
	return fmt.Sprintf("button%d", uint8(b))
}

// Event is a gesture on a button.
type Event struct {
	Button  Button
	Gesture gesture.Gesture
}

// Brightness levels cycled through by a double click on Button1.
const (
	FullBrightness   = 0xFF
	MediumBrightness = 0x7F
	LowBrightness    = 0x1F
)

// NextBrightness returns the brightness after b: full, then low, then
// medium, then full again. Unknown levels go to full.
func NextBrightness(b uint8) uint8 {
	switch b {
	case FullBrightness:
		return LowBrightness
	case LowBrightness:
		return MediumBrightness
	default:
		return FullBrightness
	}
}

// Settings is where the dispatcher persists changes.
type Settings interface {
	Snapshot() settings.Snapshot
	ResetToDefaults() error
	SetBrightness(uint8) error
	SetColour(uint8) error
	SetInterval(time.Duration) error
	SetMode(uint8) error
	SetPalette(uint8) error
}

var _ Settings = (*settings.Store)(nil)

// Field names the setting that changed.
type Field string

const (
	FieldMode       Field = "mode"
	FieldBrightness Field = "brightness"
	FieldPalette    Field = "palette"
	FieldColour     Field = "colour"
	FieldInterval   Field = "interval"
	FieldLoad       Field = "load"
)

// State is the user-visible device state.
type State struct {
	Mode       animation.Mode
	Brightness uint8
	Palette    int
	Colour     int
	RGB        led.RGBColor // value of Colour
	Interval   time.Duration
}

// Change describes a state change made by the dispatcher.
type Change struct {
	Field Field
	State State
}

// Observer is notified of every state change.
type Observer interface {
	Observe(Change)
}

// ObserverFunc is a function that implements Observer.
type ObserverFunc func(Change)

// Observe implements Observer.
func (f ObserverFunc) Observe(c Change) { f(c) }
