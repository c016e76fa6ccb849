package main

import (
	"fmt"
	"image/color"
	"machine"
	"runtime/interrupt"
	"sync"

	"libdb.so/lightbox/gesture"
	"libdb.so/lightbox/internal/led"
	"libdb.so/lightbox/ledserial"
	"tinygo.org/x/drivers/ws2812"
)

// Device stores the current state of the device.
type Device struct {
	serial port
	led    ws2812.Device
	wmu    sync.Mutex

	leds       led.LEDs
	brightness uint8
	// resetPending is set when button 1 was held at boot. The reset is
	// requested once the host initializes the strip.
	resetPending bool
}

// NewDevice creates a new device.
func NewDevice(serial machine.Serialer, ledPin machine.Pin) *Device {
	ledPin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	return &Device{
		serial:     port{serial},
		led:        ws2812.New(ledPin),
		brightness: 0xFF,
	}
}

// Run runs the device loop forever.
func (d *Device) Run() {
	for {
		p, err := d.readPacket()
		if err != nil {
			d.logError(err)
			continue
		}

		if err := d.handlePacket(p); err != nil {
			d.logError(err)
		}
	}
}

func (d *Device) log(msg string) {
	d.sendPacket(ledserial.LogPacket{Message: msg})
}

func (d *Device) logError(err error) {
	d.sendPacket(ledserial.ErrorPacket{Message: err.Error()})
}

func (d *Device) sendButton(button uint8, g gesture.Gesture) {
	d.sendPacket(ledserial.ButtonPacket{Button: button, Gesture: g})
}

func (d *Device) sendPacket(p ledserial.OutgoingPacket) {
	d.wmu.Lock()
	ledserial.WriteOutgoingPacket(d.serial, p)
	d.wmu.Unlock()
}

func (d *Device) readPacket() (ledserial.IncomingPacket, error) {
	return ledserial.ReadIncomingPacket(d.serial, ledserial.ReadContext{
		NumLEDs: uint16(len(d.leds)),
	})
}

func (d *Device) handlePacket(p ledserial.IncomingPacket) error {
	switch p := p.(type) {
	case ledserial.InitializePacket:
		if p.NumLEDs < 1 {
			return fmt.Errorf("invalid number of LEDs: %d", p.NumLEDs)
		}
		d.leds = led.NewLEDs(int(p.NumLEDs))
		d.show()

		if d.resetPending {
			d.resetPending = false
			d.log("button 1 held at boot, requesting reset")
			d.sendPacket(ledserial.ResetPacket{})
		}

	case ledserial.ClearPacket:
		d.leds.SetAll(led.Black)
		d.show()

	case ledserial.SetPacket:
		if len(p.Pix) != 3*len(d.leds) {
			return fmt.Errorf("invalid number of pixels: %d", len(p.Pix)/3)
		}
		for i := range d.leds {
			d.leds.Set(i, led.RGB(p.Pix[3*i], p.Pix[3*i+1], p.Pix[3*i+2]))
		}
		d.show()

	case ledserial.BrightnessPacket:
		d.brightness = p.Level
		d.show()

	default:
		return fmt.Errorf("unknown packet type: %T", p)
	}

	d.sendPacket(ledserial.AckPacket{
		IncomingPacketType: p.Type(),
	})
	return nil
}

// show writes the strip scaled by the brightness.
func (d *Device) show() {
	colors := make([]color.RGBA, len(d.leds))
	for i, c := range d.leds {
		c = c.Scale(d.brightness)
		colors[i] = color.RGBA{R: c.R(), G: c.G(), B: c.B(), A: 0xFF}
	}
	critical(func() { d.led.WriteColors(colors) })
}

func critical(f func()) {
	state := interrupt.Disable()
	f()
	interrupt.Restore(state)
}
