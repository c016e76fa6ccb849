package ledserial

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"hash"
	"hash/crc32"
	"io"
)

// MaxMessageLength is the longest Error or Log message. Longer messages are
// truncated.
const MaxMessageLength = 0xFFFF

var errChecksum = errors.New("packet checksum mismatch")

// ReadContext is the state of the LED strip. Data in this structure are
// required for the device to read incoming packets.
type ReadContext struct {
	// NumLEDs is the number of LEDs in the strip.
	NumLEDs uint16
}

// ReadIncomingPacket reads an incoming packet from the given reader.
func ReadIncomingPacket(r io.Reader, context ReadContext) (IncomingPacket, error) {
	fr := newFrameReader(r)

	t, err := fr.readType()
	if err != nil {
		return nil, fmt.Errorf("failed to read incoming packet type: %w", err)
	}

	var packet IncomingPacket

	switch ptype := IncomingPacketType(t); ptype {
	case TypeInitializePacket:
		var p InitializePacket
		err = fr.fixed(&p)
		packet = p
	case TypeClearPacket:
		packet = ClearPacket{}
	case TypeSetPacket:
		var p SetPacket
		p.Pix, err = fr.bytes(3 * int(context.NumLEDs))
		packet = p
	case TypeBrightnessPacket:
		var p BrightnessPacket
		err = fr.fixed(&p)
		packet = p
	default:
		return nil, fmt.Errorf("unknown packet type: %s", ptype)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read %s packet: %w", packet.Type(), err)
	}
	if err := fr.verify(); err != nil {
		return nil, err
	}
	return packet, nil
}

// ReadOutgoingPacket reads an outgoing packet from the given reader.
func ReadOutgoingPacket(r io.Reader) (OutgoingPacket, error) {
	fr := newFrameReader(r)

	t, err := fr.readType()
	if err != nil {
		return nil, fmt.Errorf("failed to read outgoing packet type: %w", err)
	}

	var packet OutgoingPacket

	switch ptype := OutgoingPacketType(t); ptype {
	case TypeErrorPacket:
		var p ErrorPacket
		p.Message, err = fr.message()
		packet = p
	case TypePanicPacket:
		packet = PanicPacket{}
	case TypeLogPacket:
		var p LogPacket
		p.Message, err = fr.message()
		packet = p
	case TypeAckPacket:
		var p AckPacket
		err = fr.fixed(&p)
		packet = p
	case TypeButtonPacket:
		var p ButtonPacket
		err = fr.fixed(&p)
		packet = p
	case TypeResetPacket:
		packet = ResetPacket{}
	default:
		return nil, fmt.Errorf("unknown packet type: %s", ptype)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read %s packet: %w", packet.Type(), err)
	}
	if err := fr.verify(); err != nil {
		return nil, err
	}
	return packet, nil
}

// WriteIncomingPacket writes an incoming packet to the given writer in a
// single Write call.
func WriteIncomingPacket(w io.Writer, p IncomingPacket) error {
	f := newFrame(uint8(p.Type()))
	p.encode(f)
	return f.flush(w)
}

// WriteOutgoingPacket writes an outgoing packet to the given writer in a
// single Write call.
func WriteOutgoingPacket(w io.Writer, p OutgoingPacket) error {
	f := newFrame(uint8(p.Type()))
	p.encode(f)
	return f.flush(w)
}

// frame buffers a packet being written.
type frame struct {
	bytes.Buffer
}

func newFrame(ptype uint8) *frame {
	f := &frame{}
	f.WriteByte(ptype)
	return f
}

// fixed appends a fixed-size value. Writes to a bytes.Buffer cannot fail.
func (f *frame) fixed(v any) {
	binary.Write(&f.Buffer, Endianness, v)
}

func (f *frame) message(msg string) {
	if len(msg) > MaxMessageLength {
		msg = msg[:MaxMessageLength]
	}
	f.fixed(uint16(len(msg)))
	f.WriteString(msg)
}

// flush appends the checksum and writes the frame out.
func (f *frame) flush(w io.Writer) error {
	b := Endianness.AppendUint32(f.Bytes(), crc32.ChecksumIEEE(f.Bytes()))
	if _, err := w.Write(b); err != nil {
		return fmt.Errorf("failed to write packet: %w", err)
	}
	return nil
}

// frameReader reads a packet, hashing everything up to the checksum.
type frameReader struct {
	r   io.Reader
	crc hash.Hash32
}

func newFrameReader(r io.Reader) *frameReader {
	return &frameReader{r: r, crc: crc32.NewIEEE()}
}

func (fr *frameReader) Read(b []byte) (int, error) {
	n, err := fr.r.Read(b)
	fr.crc.Write(b[:n])
	return n, err
}

func (fr *frameReader) readType() (uint8, error) {
	var b [1]byte
	_, err := io.ReadFull(fr, b[:])
	return b[0], err
}

func (fr *frameReader) fixed(v any) error {
	return binary.Read(fr, Endianness, v)
}

func (fr *frameReader) bytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(fr, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (fr *frameReader) message() (string, error) {
	var length uint16
	if err := fr.fixed(&length); err != nil {
		return "", err
	}
	b, err := fr.bytes(int(length))
	return string(b), err
}

// verify reads the trailing checksum, bypassing the hash, and compares it.
func (fr *frameReader) verify() error {
	var b [4]byte
	if _, err := io.ReadFull(fr.r, b[:]); err != nil {
		return fmt.Errorf("failed to read packet checksum: %w", err)
	}
	if Endianness.Uint32(b[:]) != fr.crc.Sum32() {
		return errChecksum
	}
	return nil
}
