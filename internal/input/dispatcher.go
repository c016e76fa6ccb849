package input

import (
	"log/slog"
	"time"

	"libdb.so/lightbox/gesture"
	"libdb.so/lightbox/internal/animation"
)

// Dispatcher applies button gestures to the engine and its palette store.
// Handlers run synchronously on the tick loop; a Dispatcher is not safe for
// concurrent use.
type Dispatcher struct {
	engine    *animation.Engine
	settings  Settings
	logger    *slog.Logger
	observers []Observer

	brightness uint8
}

// NewDispatcher creates a new dispatcher. Load should be called before the
// first tick.
func NewDispatcher(engine *animation.Engine, settings Settings, logger *slog.Logger, observers ...Observer) *Dispatcher {
	return &Dispatcher{
		engine:     engine,
		settings:   settings,
		logger:     logger,
		observers:  observers,
		brightness: FullBrightness,
	}
}

// Brightness returns the LED brightness.
func (d *Dispatcher) Brightness() uint8 { return d.brightness }

// State returns the current state.
func (d *Dispatcher) State() State {
	colours := d.engine.Colours()
	return State{
		Mode:       d.engine.Mode(),
		Brightness: d.brightness,
		Palette:    colours.Palette(),
		Colour:     colours.ColourIndex(),
		RGB:        colours.Colour(),
		Interval:   d.engine.Interval(),
	}
}

// Load copies the persisted settings into the engine. Persisted values that
// are out of range are normalized.
func (d *Dispatcher) Load(now time.Time) {
	s := d.settings.Snapshot()
	colours := d.engine.Colours()

	d.brightness = s.Brightness
	colours.SetPalette(int(s.Palette))
	colours.SetColour(int(s.Colour))
	d.engine.SetInterval(s.Interval)
	d.engine.SetMode(animation.ModeFromByte(s.Mode))
	d.engine.Jump(now)

	state := d.State()
	d.logger.Info(
		"loaded settings",
		"brightness", state.Brightness,
		"palette", state.Palette,
		"colour", state.Colour,
		"interval", state.Interval,
		"mode", state.Mode)

	d.notify(FieldLoad)
}

// Reset resets the persisted settings to their defaults and loads them.
func (d *Dispatcher) Reset(now time.Time) {
	d.logger.Info("loading defaults")
	if err := d.settings.ResetToDefaults(); err != nil {
		d.logger.Warn("failed to reset settings", "error", err)
	}
	d.Load(now)
}

// Handle applies the event. It returns false if the event changed nothing.
func (d *Dispatcher) Handle(ev Event, now time.Time) bool {
	d.logger.Debug("handling gesture", "button", ev.Button, "gesture", ev.Gesture)

	switch ev {
	case Event{Button1, gesture.Click}:
		d.cycleMode(now)
	case Event{Button1, gesture.DoubleClick}:
		d.cycleBrightness()
	case Event{Button1, gesture.LongPress}:
		d.cyclePalette(now)

	case Event{Button2, gesture.Click}:
		if d.engine.Mode() == animation.Constant {
			d.setColour(d.engine.Colours().DecrementColour(), now)
			return true
		}
		return d.updateInterval(d.engine.ShrinkInterval(d.engine.Timing().SmallStep))(now)
	case Event{Button2, gesture.DoubleClick}:
		return d.updateInterval(d.engine.ShrinkInterval(d.engine.Timing().LargeStep))(now)
	case Event{Button2, gesture.LongPress}:
		return d.updateInterval(d.engine.MinimizeInterval())(now)

	case Event{Button3, gesture.Click}:
		if d.engine.Mode() == animation.Constant {
			d.setColour(d.engine.Colours().IncrementColour(), now)
			return true
		}
		return d.updateInterval(d.engine.GrowInterval(d.engine.Timing().SmallStep))(now)
	case Event{Button3, gesture.DoubleClick}:
		return d.updateInterval(d.engine.GrowInterval(d.engine.Timing().LargeStep))(now)
	case Event{Button3, gesture.LongPress}:
		return d.updateInterval(d.engine.MaximizeInterval())(now)

	default:
		d.logger.Warn("unknown gesture", "button", ev.Button, "gesture", ev.Gesture)
		return false
	}

	return true
}

func (d *Dispatcher) cycleMode(now time.Time) {
	mode := d.engine.NextMode()
	d.persist(FieldMode, d.settings.SetMode(uint8(mode)))
	d.logger.Info("mode changed", "mode", mode)
	d.engine.Jump(now)
	d.notify(FieldMode)
}

func (d *Dispatcher) cycleBrightness() {
	d.brightness = NextBrightness(d.brightness)
	d.persist(FieldBrightness, d.settings.SetBrightness(d.brightness))
	d.logger.Info("brightness changed", "brightness", d.brightness)
	d.notify(FieldBrightness)
}

func (d *Dispatcher) cyclePalette(now time.Time) {
	colours := d.engine.Colours()
	colour := colours.ColourIndex()

	palette := colours.NextPalette()
	d.persist(FieldPalette, d.settings.SetPalette(uint8(palette)))
	if colours.ColourIndex() != colour {
		d.persist(FieldColour, d.settings.SetColour(uint8(colours.ColourIndex())))
	}
	d.logger.Info("palette changed", "palette", palette)
	d.engine.Jump(now)
	d.notify(FieldPalette)
}

func (d *Dispatcher) setColour(colour int, now time.Time) {
	d.persist(FieldColour, d.settings.SetColour(uint8(colour)))
	d.logger.Info("colour changed", "colour", colour)
	d.engine.Jump(now)
	d.notify(FieldColour)
}

// updateInterval takes the result of an engine interval operation and
// returns the function that finishes the change.
func (d *Dispatcher) updateInterval(interval time.Duration, changed bool) func(time.Time) bool {
	return func(now time.Time) bool {
		if !changed {
			return false
		}
		d.persist(FieldInterval, d.settings.SetInterval(interval))
		d.logger.Info("interval changed", "interval", interval)
		d.engine.Jump(now)
		d.notify(FieldInterval)
		return true
	}
}

func (d *Dispatcher) persist(field Field, err error) {
	if err != nil {
		d.logger.Warn("failed to persist setting", "field", field, "error", err)
	}
}

func (d *Dispatcher) notify(field Field) {
	if len(d.observers) == 0 {
		return
	}
	c := Change{Field: field, State: d.State()}
	for _, o := range d.observers {
		o.Observe(c)
	}
}
