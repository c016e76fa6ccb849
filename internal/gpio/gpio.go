// Package gpio reads the device buttons from the host's GPIO pins.
package gpio

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/stianeikeland/go-rpio/v4"

	"libdb.so/lightbox/gesture"
	"libdb.so/lightbox/internal/input"
)

// Buttons polls the buttons and detects their gestures.
type Buttons struct {
	pressed   func(i int) bool
	close     func() error
	detectors []*gesture.Detector
	poll      time.Duration
}

// Open opens the GPIO memory and configures the given BCM pins as active-low
// inputs with pull-ups, one pin per button in input.Buttons order.
func Open(pins []int, cfg gesture.Config, poll time.Duration) (*Buttons, error) {
	if len(pins) != len(input.Buttons) {
		return nil, errors.Errorf("need %d pins, got %d", len(input.Buttons), len(pins))
	}

	if err := rpio.Open(); err != nil {
		return nil, errors.Wrap(err, "failed to open gpio")
	}

	rpins := make([]rpio.Pin, len(pins))
	for i, n := range pins {
		pin := rpio.Pin(n)
		pin.Input()
		pin.PullUp()
		rpins[i] = pin
	}

	b := newButtons(func(i int) bool { return rpins[i].Read() == rpio.Low }, cfg, poll)
	b.close = rpio.Close
	return b, nil
}

func newButtons(pressed func(i int) bool, cfg gesture.Config, poll time.Duration) *Buttons {
	detectors := make([]*gesture.Detector, len(input.Buttons))
	for i := range detectors {
		detectors[i] = gesture.NewDetector(cfg)
	}
	return &Buttons{
		pressed:   pressed,
		close:     func() error { return nil },
		detectors: detectors,
		poll:      poll,
	}
}

// Held returns true if the button is currently pressed. It reads the pin
// directly, without debouncing.
func (b *Buttons) Held(button input.Button) bool {
	i := int(button) - 1
	if i < 0 || i >= len(b.detectors) {
		return false
	}
	return b.pressed(i)
}

// Poll reads every button once and returns the gestures that completed.
func (b *Buttons) Poll(now time.Time) []input.Event {
	var events []input.Event
	for i, d := range b.detectors {
		if g, ok := d.Update(b.pressed(i), now); ok {
			events = append(events, input.Event{
				Button:  input.Buttons[i],
				Gesture: g,
			})
		}
	}
	return events
}

// Run polls the buttons until the context is canceled, sending gestures to
// dst.
func (b *Buttons) Run(ctx context.Context, dst chan<- input.Event) error {
	ticker := time.NewTicker(b.poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			for _, ev := range b.Poll(now) {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case dst <- ev:
				}
			}
		}
	}
}

// Close releases the GPIO memory.
func (b *Buttons) Close() error {
	return b.close()
}
