// Package firmware holds the board wiring of the lightbox LED controller.
package firmware

import "machine"

// NumLEDs is the number of LEDs on the strip.
const NumLEDs = 2

var (
	// LEDPin drives the WS2812 strip.
	LEDPin = machine.D10
	// StatusPin is the heartbeat LED.
	StatusPin = machine.LED
	// ButtonPins are buttons 1, 2 and 3. They are active low.
	ButtonPins = [3]machine.Pin{machine.D1, machine.D2, machine.D3}
)

// Heartbeat timing of the status LED.
const (
	HeartbeatOn  = 10  // ms
	HeartbeatOff = 990 // ms
)
