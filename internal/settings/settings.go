// Package settings persists the user settings on a byte-addressable medium
// using a fixed layout.
package settings

import (
	"encoding/binary"
	"time"

	"github.com/pkg/errors"
)

// Marker is the value of the first byte once the medium is initialized. It
// must differ from Blank.
const Marker = 0x00

// Defaults.
const (
	DefaultBrightness = 0xFF
	DefaultColour     = 0
	DefaultInterval   = 1000 * time.Millisecond
	DefaultMode       = 0
	DefaultPalette    = 0
)

// field is a fixed-width field of the layout.
type field struct {
	addr int64
	size int64
}

func (f field) next(size int64) field {
	return field{addr: f.addr + f.size, size: size}
}

// Field addresses are cumulative.
var (
	fieldMarker     = field{addr: 0, size: 1}
	fieldBrightness = fieldMarker.next(1)
	fieldColour     = fieldBrightness.next(1)
	fieldInterval   = fieldColour.next(2)
	fieldMode       = fieldInterval.next(1)
	fieldPalette    = fieldMode.next(1)
)

// Size is the number of bytes the layout occupies.
var Size = int(fieldPalette.addr + fieldPalette.size)

// Endianness is the byte order of multi-byte fields.
var Endianness = binary.LittleEndian

// Snapshot is the decoded set of persisted settings.
type Snapshot struct {
	Brightness uint8
	Colour     uint8
	Interval   time.Duration
	Mode       uint8
	Palette    uint8
}

// Defaults returns the default settings.
func Defaults() Snapshot {
	return Snapshot{
		Brightness: DefaultBrightness,
		Colour:     DefaultColour,
		Interval:   DefaultInterval,
		Mode:       DefaultMode,
		Palette:    DefaultPalette,
	}
}

// Store reads and writes settings on a medium. Reads come from an in-memory
// copy of the layout, writes go straight through to the medium.
type Store struct {
	medium Medium
	image  []byte
}

// New creates a store over the given medium. Init must be called before any
// value is read.
func New(medium Medium) *Store {
	return &Store{
		medium: medium,
		image:  make([]byte, Size),
	}
}

// Init loads the settings from the medium. If the medium was never
// initialized, every setting is reset to its default. It returns true if the
// defaults were written.
func (s *Store) Init() (bool, error) {
	if _, err := s.medium.ReadAt(s.image, 0); err != nil {
		return false, errors.Wrap(err, "failed to read settings")
	}

	if s.image[fieldMarker.addr] == Marker {
		return false, nil
	}

	return true, s.ResetToDefaults()
}

// ResetToDefaults writes the marker and every default value.
func (s *Store) ResetToDefaults() error {
	if err := s.write(fieldMarker, []byte{Marker}); err != nil {
		return err
	}

	d := Defaults()
	if err := s.SetBrightness(d.Brightness); err != nil {
		return err
	}
	if err := s.SetColour(d.Colour); err != nil {
		return err
	}
	if err := s.SetInterval(d.Interval); err != nil {
		return err
	}
	if err := s.SetMode(d.Mode); err != nil {
		return err
	}
	return s.SetPalette(d.Palette)
}

// Snapshot returns every setting.
func (s *Store) Snapshot() Snapshot {
	return Snapshot{
		Brightness: s.Brightness(),
		Colour:     s.Colour(),
		Interval:   s.Interval(),
		Mode:       s.Mode(),
		Palette:    s.Palette(),
	}
}

// Brightness returns the LED brightness.
func (s *Store) Brightness() uint8 { return s.byteAt(fieldBrightness) }

// SetBrightness persists the LED brightness.
func (s *Store) SetBrightness(v uint8) error { return s.write(fieldBrightness, []byte{v}) }

// Colour returns the colour index used in constant mode.
func (s *Store) Colour() uint8 { return s.byteAt(fieldColour) }

// SetColour persists the colour index.
func (s *Store) SetColour(v uint8) error { return s.write(fieldColour, []byte{v}) }

// Interval returns the colour interval. It is stored in milliseconds.
func (s *Store) Interval() time.Duration {
	ms := Endianness.Uint16(s.image[fieldInterval.addr:])
	return time.Duration(ms) * time.Millisecond
}

// SetInterval persists the colour interval, truncated to milliseconds and
// saturated to what the field can hold.
func (s *Store) SetInterval(d time.Duration) error {
	ms := d.Milliseconds()
	switch {
	case ms < 0:
		ms = 0
	case ms > 0xFFFF:
		ms = 0xFFFF
	}

	var buf [2]byte
	Endianness.PutUint16(buf[:], uint16(ms))
	return s.write(fieldInterval, buf[:])
}

// Mode returns the display mode.
func (s *Store) Mode() uint8 { return s.byteAt(fieldMode) }

// SetMode persists the display mode.
func (s *Store) SetMode(v uint8) error { return s.write(fieldMode, []byte{v}) }

// Palette returns the palette index.
func (s *Store) Palette() uint8 { return s.byteAt(fieldPalette) }

// SetPalette persists the palette index.
func (s *Store) SetPalette(v uint8) error { return s.write(fieldPalette, []byte{v}) }

func (s *Store) byteAt(f field) uint8 {
	return s.image[f.addr]
}

func (s *Store) write(f field, b []byte) error {
	copy(s.image[f.addr:f.addr+f.size], b)
	if _, err := s.medium.WriteAt(b, f.addr); err != nil {
		return errors.Wrapf(err, "failed to write settings at %d", f.addr)
	}
	return nil
}
