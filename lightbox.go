// Package lightbox runs the two-LED lightbox: it animates the LEDs, applies
// button gestures and drives the LED controller over a serial port.
package lightbox

import (
	"context"
	"io"
	"log/slog"
	"math/rand"
	"time"

	"github.com/pkg/errors"
	"go.bug.st/serial"
	"golang.org/x/sync/errgroup"

	"libdb.so/lightbox/internal/animation"
	"libdb.so/lightbox/internal/gpio"
	"libdb.so/lightbox/internal/input"
	"libdb.so/lightbox/internal/mqtt"
	"libdb.so/lightbox/internal/palette"
	"libdb.so/lightbox/internal/settings"
	"libdb.so/lightbox/ledserial"
)

// Port is the serial connection to the LED controller.
type Port interface {
	io.ReadWriteCloser
	// SetReadTimeout sets the timeout for Read calls.
	SetReadTimeout(t time.Duration) error
}

var _ Port = serial.Port(nil)

// OpenSerial opens the serial port named in the configuration.
func OpenSerial(cfg *Config) (Port, error) {
	return serial.Open(cfg.Device, &serial.Mode{
		BaudRate: cfg.Baud,
	})
}

// Option configures a Daemon.
type Option func(*Daemon)

// WithPort replaces how the controller port is opened.
func WithPort(open func(*Config) (Port, error)) Option {
	return func(d *Daemon) { d.openPort = open }
}

// WithMedium stores the settings on the given medium instead of the
// configured settings file.
func WithMedium(m settings.Medium) Option {
	return func(d *Daemon) { d.medium = m }
}

// WithReset resets the settings to their defaults before they are loaded.
func WithReset() Option {
	return func(d *Daemon) { d.reset = true }
}

// WithObserver adds an observer of state changes.
func WithObserver(o input.Observer) Option {
	return func(d *Daemon) { d.observers = append(d.observers, o) }
}

// Daemon is the main lightbox daemon.
type Daemon struct {
	cfg    *Config
	logger *slog.Logger

	openPort  func(*Config) (Port, error)
	medium    settings.Medium
	reset     bool
	observers []input.Observer
}

// NewDaemon creates a new lightbox daemon.
func NewDaemon(cfg *Config, logger *slog.Logger, opts ...Option) (*Daemon, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}

	d := &Daemon{
		cfg:      cfg,
		logger:   logger,
		openPort: OpenSerial,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Run starts the daemon. It blocks until the given context is canceled.
func (d *Daemon) Run(ctx context.Context) error {
	id := &internalDaemon{
		Daemon:     d,
		events:     make(chan input.Event, 16),
		brightness: -1,
	}
	defer id.close()
	return id.Run(ctx)
}

type internalDaemon struct {
	*Daemon
	port    Port
	engine  *animation.Engine
	input   *input.Dispatcher
	buttons *gpio.Buttons
	events  chan input.Event
	closers []func() error

	pending    []input.Event
	brightness int // last level sent, -1 before the first
}

func (d *internalDaemon) close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil {
			d.logger.Warn("failed to close", "error", err)
		}
	}
}

func (d *internalDaemon) setup() error {
	medium := d.medium
	if medium == nil {
		f, err := settings.OpenFile(d.cfg.Settings, settings.Size)
		if err != nil {
			return err
		}
		d.closers = append(d.closers, f.Close)
		medium = f
	}

	store := settings.New(medium)
	blank, err := store.Init()
	if err != nil {
		return errors.Wrap(err, "failed to load settings")
	}
	if blank {
		d.logger.Info("settings were uninitialized, wrote defaults")
	}

	reset := d.reset
	if d.cfg.GPIO != nil {
		b, err := gpio.Open(d.cfg.GPIO.Pins, d.cfg.Gesture.Gesture(), time.Duration(d.cfg.GPIO.Poll))
		if err != nil {
			return err
		}
		d.closers = append(d.closers, b.Close)
		d.buttons = b

		if b.Held(input.ResetButton) {
			d.logger.Info("reset button held at startup")
			reset = true
		}
	}

	observers := append([]input.Observer(nil), d.observers...)
	if d.cfg.MQTT != nil {
		p, err := mqtt.Dial(d.cfg.MQTT.Broker, d.cfg.MQTT.ClientID, d.cfg.MQTT.Topic, d.logger)
		if err != nil {
			return err
		}
		d.closers = append(d.closers, func() error { p.Close(); return nil })
		observers = append(observers, p)
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	d.engine = animation.NewEngine(palette.NewStore(palette.Default, rng), d.cfg.Timing.Timing())
	d.input = input.NewDispatcher(d.engine, store, d.logger, observers...)

	if reset {
		d.input.Reset(time.Now())
	} else {
		d.input.Load(time.Now())
	}

	return nil
}

func (d *internalDaemon) Run(ctx context.Context) error {
	if err := d.setup(); err != nil {
		return err
	}

	port, err := d.openPort(d.cfg)
	if err != nil {
		return errors.Wrap(err, "failed to open serial port")
	}
	defer port.Close()

	d.port = port

	errg, ctx := errgroup.WithContext(ctx)
	errg.Go(func() error {
		<-ctx.Done()
		d.logger.Debug("closing serial port")
		if err := port.Close(); err != nil {
			return errors.Wrap(err, "failed to close serial port")
		}
		return ctx.Err()
	})

	outPackets := make(chan ledserial.OutgoingPacket)
	errg.Go(func() error {
		return d.mainLoop(ctx, outPackets)
	})
	errg.Go(func() error {
		return d.readPackets(ctx, outPackets)
	})
	if d.buttons != nil {
		errg.Go(func() error {
			return d.buttons.Run(ctx, d.events)
		})
	}

	return errg.Wait()
}

func (d *internalDaemon) mainLoop(ctx context.Context, packets <-chan ledserial.OutgoingPacket) error {
	d.logger.Debug("initializing controller", "leds", animation.NumLEDs)
	if !d.writePacket(ledserial.InitializePacket{NumLEDs: animation.NumLEDs}) {
		return errors.New("failed to initialize LEDs")
	}

	ticker := time.NewTicker(time.Second / time.Duration(d.cfg.Rate))
	defer ticker.Stop()

	// frames is nil while a packet is awaiting its ack.
	var frames <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev := <-d.events:
			d.pending = append(d.pending, ev)

		case p := <-packets:
			ready, err := d.handlePacket(p)
			if err != nil {
				return err
			}
			if ready {
				frames = ticker.C
			}

		case now := <-frames:
			if d.frame(now) {
				frames = nil
			}
		}
	}
}

// handlePacket handles a packet from the controller. It returns true once
// the controller is ready for the next frame.
func (d *internalDaemon) handlePacket(p ledserial.OutgoingPacket) (bool, error) {
	switch p := p.(type) {
	case ledserial.AckPacket:
		d.logger.Debug("controller acked", "type", p.IncomingPacketType)
		return true, nil

	case ledserial.ErrorPacket:
		// The failed packet is never acked.
		d.logger.Warn("controller error", "message", p.Message)
		return true, nil

	case ledserial.ButtonPacket:
		if !p.Gesture.IsValid() {
			d.logger.Warn("controller sent unknown gesture", "button", p.Button, "gesture", p.Gesture)
			break
		}
		d.pending = append(d.pending, input.Event{
			Button:  input.Button(p.Button),
			Gesture: p.Gesture,
		})

	case ledserial.ResetPacket:
		d.logger.Info("controller requested settings reset")
		d.input.Reset(time.Now())

	case ledserial.LogPacket:
		d.logger.Info("controller log", "message", p.Message)

	case ledserial.PanicPacket:
		d.logger.Error("controller unrecoverably panicked")
		return false, errors.New("controller panicked")

	default:
		return false, errors.Errorf("unexpected packet from controller: %s", p.Type())
	}

	return false, nil
}

// frame applies the pending gestures and sends whatever changed. It returns
// true if a packet was sent and must be acked before the next frame.
func (d *internalDaemon) frame(now time.Time) bool {
	// Gestures always apply before the frame they precede.
	for _, ev := range d.pending {
		d.input.Handle(ev, now)
	}
	d.pending = d.pending[:0]

	if b := d.input.Brightness(); int(b) != d.brightness {
		if !d.writePacket(ledserial.BrightnessPacket{Level: b}) {
			return false
		}
		d.brightness = int(b)
		return true
	}

	leds, ok := d.engine.Tick(now)
	if !ok {
		return false
	}

	return d.writePacket(ledserial.SetPacket{Pix: leds.AsPixels()})
}

func (d *internalDaemon) readPackets(ctx context.Context, dst chan<- ledserial.OutgoingPacket) error {
	if err := d.port.SetReadTimeout(serial.NoTimeout); err != nil {
		return errors.Wrap(err, "failed to reset read timeout")
	}

	for ctx.Err() == nil {
		p, err := ledserial.ReadOutgoingPacket(d.port)
		switch {
		case err == nil:
		case ctx.Err() != nil:
			return ctx.Err()
		case errors.Is(err, io.EOF):
			// Read timed out between packets.
			continue
		default:
			return errors.Wrap(err, "failed to read packet")
		}

		d.logger.Debug("received packet", "type", p.Type())

		select {
		case <-ctx.Done():
			return ctx.Err()
		case dst <- p:
			// ok
		}
	}

	return ctx.Err()
}

func (d *internalDaemon) writePacket(p ledserial.IncomingPacket) bool {
	d.logger.Debug("sending packet", "type", p.Type())

	if err := ledserial.WriteIncomingPacket(d.port, p); err != nil {
		d.logger.Warn("failed to send packet", "type", p.Type(), "error", err)
		return false
	}

	return true
}
