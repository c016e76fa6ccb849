// Package ledserial implements the LED serial protocol spoken between the
// lightbox daemon and the LED controller.
//
// Every packet is a type byte, a type-specific payload and a little-endian
// CRC-32 (IEEE) of the type byte and payload.
package ledserial

import (
	"encoding/binary"
	"fmt"

	"libdb.so/lightbox/gesture"
)

// Endianness defines the endianness of the protocol.
var Endianness = binary.LittleEndian

// IncomingPacketType is a type of packet sent to the controller.
type IncomingPacketType uint8

const (
	TypeInitializePacket IncomingPacketType = iota
	TypeClearPacket
	TypeSetPacket
	TypeBrightnessPacket
)

// String returns a string representation of the packet type.
func (t IncomingPacketType) String() string {
	switch t {
	case TypeInitializePacket:
		return "initialize"
	case TypeClearPacket:
		return "clear"
	case TypeSetPacket:
		return "set"
	case TypeBrightnessPacket:
		return "brightness"
	default:
		return fmt.Sprintf("IncomingPacketType(%d)", t)
	}
}

// IncomingPacket is a packet sent to the controller.
type IncomingPacket interface {
	// Type returns the type of packet.
	Type() IncomingPacketType
	encode(*frame)
}

// InitializePacket is a packet that initializes the LED strip.
type InitializePacket struct {
	NumLEDs uint16
}

// ClearPacket is a packet that clears the LED strip.
type ClearPacket struct{}

// SetPacket is a packet that sets the LED strip to the given colors.
type SetPacket struct {
	Pix []uint8
}

// BrightnessPacket is a packet that sets the global brightness the
// controller scales every pixel by.
type BrightnessPacket struct {
	Level uint8
}

func (p InitializePacket) Type() IncomingPacketType { return TypeInitializePacket }
func (p ClearPacket) Type() IncomingPacketType      { return TypeClearPacket }
func (p SetPacket) Type() IncomingPacketType        { return TypeSetPacket }
func (p BrightnessPacket) Type() IncomingPacketType { return TypeBrightnessPacket }

func (p InitializePacket) encode(f *frame) { f.fixed(p) }
func (p ClearPacket) encode(f *frame)      {}
func (p SetPacket) encode(f *frame)        { f.Write(p.Pix) }
func (p BrightnessPacket) encode(f *frame) { f.fixed(p) }

// OutgoingPacketType is a type of packet sent by the controller.
type OutgoingPacketType uint8

const (
	TypeErrorPacket OutgoingPacketType = iota
	TypePanicPacket
	TypeLogPacket
	TypeAckPacket
	TypeButtonPacket
	TypeResetPacket
)

// String returns a string representation of the packet type.
func (t OutgoingPacketType) String() string {
	switch t {
	case TypeErrorPacket:
		return "error"
	case TypePanicPacket:
		return "panic"
	case TypeLogPacket:
		return "log"
	case TypeAckPacket:
		return "ack"
	case TypeButtonPacket:
		return "button"
	case TypeResetPacket:
		return "reset"
	default:
		return fmt.Sprintf("OutgoingPacketType(%d)", t)
	}
}

// OutgoingPacket is a packet sent by the controller.
type OutgoingPacket interface {
	// Type returns the type of packet.
	Type() OutgoingPacketType
	encode(*frame)
}

// ErrorPacket is a packet that indicates an error occurred.
type ErrorPacket struct {
	Message string
}

// PanicPacket is a packet that indicates the program cannot recover.
type PanicPacket struct{}

// LogPacket is a packet that contains a log message.
type LogPacket struct {
	Message string
}

// AckPacket acknowledges a handled incoming packet.
type AckPacket struct {
	IncomingPacketType IncomingPacketType
}

// ButtonPacket reports a gesture on one of the device buttons. Buttons are
// numbered from 1.
type ButtonPacket struct {
	Button  uint8
	Gesture gesture.Gesture
}

// ResetPacket asks the daemon to reset the settings to their defaults. The
// controller sends it when the reset button is held while it initializes.
type ResetPacket struct{}

func (p ErrorPacket) Type() OutgoingPacketType  { return TypeErrorPacket }
func (p PanicPacket) Type() OutgoingPacketType  { return TypePanicPacket }
func (p LogPacket) Type() OutgoingPacketType    { return TypeLogPacket }
func (p AckPacket) Type() OutgoingPacketType    { return TypeAckPacket }
func (p ButtonPacket) Type() OutgoingPacketType { return TypeButtonPacket }
func (p ResetPacket) Type() OutgoingPacketType  { return TypeResetPacket }

func (p ErrorPacket) encode(f *frame)  { f.message(p.Message) }
func (p PanicPacket) encode(f *frame)  {}
func (p LogPacket) encode(f *frame)    { f.message(p.Message) }
func (p AckPacket) encode(f *frame)    { f.fixed(p) }
func (p ButtonPacket) encode(f *frame) { f.fixed(p) }
func (p ResetPacket) encode(f *frame)  {}

