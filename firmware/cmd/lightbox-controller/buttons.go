package main

import (
	"machine"
	"time"

	"libdb.so/lightbox/gesture"
)

type buttons struct {
	pins      []machine.Pin
	detectors []*gesture.Detector
}

func newButtons(pins []machine.Pin, cfg gesture.Config) *buttons {
	b := &buttons{
		pins:      pins,
		detectors: make([]*gesture.Detector, len(pins)),
	}
	for i, pin := range pins {
		pin.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
		b.detectors[i] = gesture.NewDetector(cfg)
	}
	return b
}

// held reads the button directly.
func (b *buttons) held(i int) bool {
	return !b.pins[i].Get()
}

// run polls the buttons forever and calls send for every gesture. Buttons
// are numbered from 1.
func (b *buttons) run(poll time.Duration, send func(button uint8, g gesture.Gesture)) {
	for {
		now := time.Now()
		for i, d := range b.detectors {
			if g, ok := d.Update(b.held(i), now); ok {
				send(uint8(i+1), g)
			}
		}
		time.Sleep(poll)
	}
}
