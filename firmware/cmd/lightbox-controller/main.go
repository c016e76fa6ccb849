package main

import (
	"machine"
	"time"

	"libdb.so/lightbox/firmware"
	"libdb.so/lightbox/gesture"
)

func main() {
	btns := newButtons(firmware.ButtonPins[:], gesture.DefaultConfig)
	// Button 1 held while the controller boots resets the settings.
	resetHeld := btns.held(0)

	d := NewDevice(machine.Serial, firmware.LEDPin)
	d.resetPending = resetHeld

	go heartbeat(firmware.StatusPin)
	go btns.run(5*time.Millisecond, d.sendButton)

	d.Run()
}
