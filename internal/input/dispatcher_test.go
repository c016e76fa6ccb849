package input

import (
	"io"
	"log/slog"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"libdb.so/lightbox/gesture"
	"libdb.so/lightbox/internal/animation"
	"libdb.so/lightbox/internal/palette"
	"libdb.so/lightbox/internal/settings"
)

var t0 = time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)

type testDevice struct {
	medium   *settings.Memory
	settings *settings.Store
	engine   *animation.Engine
	changes  []Change
	d        *Dispatcher
}

func newTestDevice(t *testing.T) *testDevice {
	t.Helper()

	td := &testDevice{medium: settings.NewMemory(settings.Size)}
	td.settings = settings.New(td.medium)
	_, err := td.settings.Init()
	require.NoError(t, err)

	colours := palette.NewStore(palette.Default, rand.New(rand.NewSource(3)))
	td.engine = animation.NewEngine(colours, animation.DefaultTiming)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	td.d = NewDispatcher(td.engine, td.settings, logger, ObserverFunc(func(c Change) {
		td.changes = append(td.changes, c)
	}))
	td.d.Load(t0)
	return td
}

func (td *testDevice) press(b Button, g gesture.Gesture) bool {
	return td.d.Handle(Event{Button: b, Gesture: g}, t0.Add(time.Second))
}

func TestLoadDefaults(t *testing.T) {
	td := newTestDevice(t)

	assert.Equal(t, State{
		Mode:       animation.Constant,
		Brightness: FullBrightness,
		Palette:    0,
		Colour:     0,
		RGB:        palette.White,
		Interval:   time.Second,
	}, td.d.State())
	require.Len(t, td.changes, 1)
	assert.Equal(t, FieldLoad, td.changes[0].Field)
}

func TestLoadNormalizesStoredValues(t *testing.T) {
	td := newTestDevice(t)
	require.NoError(t, td.settings.SetPalette(7))
	require.NoError(t, td.settings.SetColour(12))
	require.NoError(t, td.settings.SetInterval(50*time.Second))
	require.NoError(t, td.settings.SetMode(9))

	td.d.Load(t0)

	state := td.d.State()
	assert.Equal(t, 0, state.Palette)
	assert.Equal(t, 0, state.Colour)
	assert.Equal(t, 20*time.Second, state.Interval)
	assert.Equal(t, animation.Constant, state.Mode)
}

func TestCycleModePersists(t *testing.T) {
	td := newTestDevice(t)

	for _, want := range []animation.Mode{
		animation.RandomPair,
		animation.RandomPairFade,
		animation.RandomSingle,
		animation.RandomSingleFade,
		animation.Constant,
	} {
		require.True(t, td.press(Button1, gesture.Click))
		assert.Equal(t, want, td.engine.Mode())
		assert.Equal(t, uint8(want), td.settings.Mode())
	}

	last := td.changes[len(td.changes)-1]
	assert.Equal(t, FieldMode, last.Field)
}

func TestCycleBrightness(t *testing.T) {
	td := newTestDevice(t)

	for _, want := range []uint8{LowBrightness, MediumBrightness, FullBrightness, LowBrightness} {
		td.press(Button1, gesture.DoubleClick)
		assert.Equal(t, want, td.d.Brightness())
		assert.Equal(t, want, td.settings.Brightness())
	}

	assert.Equal(t, uint8(FullBrightness), NextBrightness(0x42))
}

func TestCyclePaletteResetsColour(t *testing.T) {
	td := newTestDevice(t)
	td.press(Button1, gesture.LongPress)
	td.press(Button1, gesture.LongPress)
	require.Equal(t, 2, td.engine.Colours().Palette())

	for i := 0; i < 10; i++ {
		td.press(Button3, gesture.Click)
	}
	require.Equal(t, 10, td.engine.Colours().ColourIndex())
	require.Equal(t, uint8(10), td.settings.Colour())

	td.press(Button1, gesture.LongPress)
	assert.Equal(t, 0, td.engine.Colours().Palette())
	assert.Equal(t, 0, td.engine.Colours().ColourIndex())
	assert.Equal(t, uint8(0), td.settings.Palette())
	assert.Equal(t, uint8(0), td.settings.Colour())
}

func TestConstantModeColourButtons(t *testing.T) {
	td := newTestDevice(t)

	require.True(t, td.press(Button2, gesture.Click))
	assert.Equal(t, 3, td.engine.Colours().ColourIndex())
	assert.Equal(t, uint8(3), td.settings.Colour())

	require.True(t, td.press(Button3, gesture.Click))
	assert.Equal(t, 0, td.engine.Colours().ColourIndex())

	for _, ev := range []Event{
		{Button2, gesture.DoubleClick},
		{Button2, gesture.LongPress},
		{Button3, gesture.DoubleClick},
		{Button3, gesture.LongPress},
	} {
		assert.False(t, td.d.Handle(ev, t0), "%v %v", ev.Button, ev.Gesture)
	}
	assert.Equal(t, time.Second, td.engine.Interval())
	assert.Equal(t, time.Second, td.settings.Interval())
}

func TestIntervalButtons(t *testing.T) {
	td := newTestDevice(t)
	td.press(Button1, gesture.Click) // random pair

	tests := []struct {
		ev   Event
		want time.Duration
	}{
		{Event{Button3, gesture.Click}, 1100 * time.Millisecond},
		{Event{Button3, gesture.DoubleClick}, 2100 * time.Millisecond},
		{Event{Button2, gesture.Click}, 2000 * time.Millisecond},
		{Event{Button2, gesture.DoubleClick}, 1000 * time.Millisecond},
		{Event{Button3, gesture.LongPress}, 20 * time.Second},
		{Event{Button3, gesture.Click}, 20 * time.Second},
		{Event{Button2, gesture.LongPress}, 100 * time.Millisecond},
		{Event{Button2, gesture.Click}, 100 * time.Millisecond},
		{Event{Button2, gesture.DoubleClick}, 100 * time.Millisecond},
	}

	for _, test := range tests {
		require.True(t, td.d.Handle(test.ev, t0))
		assert.Equal(t, test.want, td.engine.Interval(), "%v %v", test.ev.Button, test.ev.Gesture)
		assert.Equal(t, test.want, td.settings.Interval())
	}
}

func TestHandlerJumpsTimer(t *testing.T) {
	td := newTestDevice(t)
	td.press(Button1, gesture.Click) // random pair
	td.d.Handle(Event{Button3, gesture.LongPress}, t0)
	require.Equal(t, 20*time.Second, td.engine.Interval())

	before := td.engine.Colours().ColourIndex()
	_, shown := td.engine.Tick(t0.Add(animation.DefaultTiming.JumpLead))
	assert.False(t, shown)
	assert.NotEqual(t, before, td.engine.Colours().ColourIndex())
}

func TestReset(t *testing.T) {
	td := newTestDevice(t)
	td.press(Button1, gesture.Click)
	td.press(Button1, gesture.DoubleClick)
	td.press(Button1, gesture.LongPress)

	td.d.Reset(t0)
	assert.Equal(t, settings.Defaults(), td.settings.Snapshot())
	assert.Equal(t, animation.Constant, td.engine.Mode())
	assert.Equal(t, uint8(FullBrightness), td.d.Brightness())
	assert.Equal(t, 0, td.engine.Colours().Palette())
}

func TestUnknownEvent(t *testing.T) {
	td := newTestDevice(t)
	assert.False(t, td.d.Handle(Event{Button: 4, Gesture: gesture.Click}, t0))
	assert.False(t, td.d.Handle(Event{Button: Button1, Gesture: 0}, t0))
}
