package main

import (
	"machine"
	"time"

	"libdb.so/lightbox/firmware"
)

// heartbeat blinks the status LED forever.
func heartbeat(pin machine.Pin) {
	pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	for {
		pin.High()
		time.Sleep(firmware.HeartbeatOn * time.Millisecond)
		pin.Low()
		time.Sleep(firmware.HeartbeatOff * time.Millisecond)
	}
}
