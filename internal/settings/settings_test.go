package settings

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayout(t *testing.T) {
	assert.Equal(t, int64(0), fieldMarker.addr)
	assert.Equal(t, int64(1), fieldBrightness.addr)
	assert.Equal(t, int64(2), fieldColour.addr)
	assert.Equal(t, int64(3), fieldInterval.addr)
	assert.Equal(t, int64(5), fieldMode.addr)
	assert.Equal(t, int64(6), fieldPalette.addr)
	assert.Equal(t, 7, Size)
	assert.NotEqual(t, Marker, Blank)
}

func TestInitBlankMediumResets(t *testing.T) {
	m := NewMemory(Size)
	s := New(m)

	reset, err := s.Init()
	require.NoError(t, err)
	assert.True(t, reset)
	assert.Equal(t, Defaults(), s.Snapshot())

	assert.Equal(t, []byte{Marker, 0xFF, 0, 0xE8, 0x03, 0, 0}, m.Bytes())

	// A second store over the same medium loads without resetting.
	s2 := New(m)
	reset, err = s2.Init()
	require.NoError(t, err)
	assert.False(t, reset)
	assert.Equal(t, Defaults(), s2.Snapshot())
}

func TestInitAnyOtherMarkerResets(t *testing.T) {
	m := NewMemory(Size)
	copy(m.Bytes(), []byte{0x42, 0x1F, 5, 0x10, 0x27, 3, 2})

	reset, err := New(m).Init()
	require.NoError(t, err)
	assert.True(t, reset)
	assert.Equal(t, byte(Marker), m.Bytes()[0])
}

func TestSettersWriteThrough(t *testing.T) {
	m := NewMemory(Size)
	s := New(m)
	_, err := s.Init()
	require.NoError(t, err)

	require.NoError(t, s.SetBrightness(0x1F))
	require.NoError(t, s.SetColour(9))
	require.NoError(t, s.SetInterval(20*time.Second))
	require.NoError(t, s.SetMode(4))
	require.NoError(t, s.SetPalette(2))

	assert.Equal(t, []byte{Marker, 0x1F, 9, 0x20, 0x4E, 4, 2}, m.Bytes())

	loaded := New(m)
	_, err = loaded.Init()
	require.NoError(t, err)
	assert.Equal(t, Snapshot{
		Brightness: 0x1F,
		Colour:     9,
		Interval:   20 * time.Second,
		Mode:       4,
		Palette:    2,
	}, loaded.Snapshot())
}

func TestSetIntervalSaturates(t *testing.T) {
	s := New(NewMemory(Size))
	_, err := s.Init()
	require.NoError(t, err)

	require.NoError(t, s.SetInterval(time.Hour))
	assert.Equal(t, 0xFFFF*time.Millisecond, s.Interval())

	require.NoError(t, s.SetInterval(-time.Second))
	assert.Equal(t, time.Duration(0), s.Interval())

	require.NoError(t, s.SetInterval(1500*time.Microsecond))
	assert.Equal(t, time.Millisecond, s.Interval())
}

func TestResetToDefaults(t *testing.T) {
	s := New(NewMemory(Size))
	_, err := s.Init()
	require.NoError(t, err)

	require.NoError(t, s.SetMode(3))
	require.NoError(t, s.SetPalette(1))
	require.NoError(t, s.ResetToDefaults())
	assert.Equal(t, Defaults(), s.Snapshot())
}

func TestInitShortMedium(t *testing.T) {
	_, err := New(NewMemory(3)).Init()
	assert.Error(t, err)
}

func TestFileMedium(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lightbox.eeprom")

	f, err := OpenFile(path, Size)
	require.NoError(t, err)

	s := New(f)
	reset, err := s.Init()
	require.NoError(t, err)
	assert.True(t, reset)
	require.NoError(t, s.SetPalette(2))
	require.NoError(t, f.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Len(t, data, Size)
	assert.Equal(t, byte(2), data[fieldPalette.addr])

	f, err = OpenFile(path, Size)
	require.NoError(t, err)
	defer f.Close()

	s = New(f)
	reset, err = s.Init()
	require.NoError(t, err)
	assert.False(t, reset)
	assert.Equal(t, uint8(2), s.Palette())
}
