package lightbox

import (
	"context"
	"io"
	"log/slog"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"libdb.so/lightbox/gesture"
	"libdb.so/lightbox/internal/animation"
	"libdb.so/lightbox/internal/input"
	"libdb.so/lightbox/internal/settings"
	"libdb.so/lightbox/ledserial"
)

type pipePort struct{ net.Conn }

func (pipePort) SetReadTimeout(time.Duration) error { return nil }

// fakeController is the controller end of the serial link.
type fakeController struct {
	t       *testing.T
	conn    net.Conn
	packets chan ledserial.IncomingPacket
	done    chan struct{}
	wmu     sync.Mutex
}

func newFakeController(t *testing.T, conn net.Conn) *fakeController {
	c := &fakeController{
		t:       t,
		conn:    conn,
		packets: make(chan ledserial.IncomingPacket),
		done:    make(chan struct{}),
	}
	go c.read()
	return c
}

func (c *fakeController) read() {
	ctx := ledserial.ReadContext{NumLEDs: animation.NumLEDs}
	for {
		p, err := ledserial.ReadIncomingPacket(c.conn, ctx)
		if err != nil {
			return
		}
		select {
		case c.packets <- p:
		case <-c.done:
			return
		}
	}
}

func (c *fakeController) next() ledserial.IncomingPacket {
	c.t.Helper()
	select {
	case p := <-c.packets:
		return p
	case <-time.After(5 * time.Second):
		c.t.Fatal("timed out waiting for packet")
		return nil
	}
}

func (c *fakeController) send(p ledserial.OutgoingPacket) {
	c.t.Helper()
	c.wmu.Lock()
	defer c.wmu.Unlock()
	require.NoError(c.t, ledserial.WriteOutgoingPacket(c.conn, p))
}

func (c *fakeController) ack(p ledserial.IncomingPacket) {
	c.t.Helper()
	c.send(ledserial.AckPacket{IncomingPacketType: p.Type()})
}

func (c *fakeController) close() {
	close(c.done)
	c.conn.Close()
}

type testDaemon struct {
	medium     *settings.Memory
	controller *fakeController
	changes    chan input.Change
	cancel     context.CancelFunc
	errCh      chan error
}

func startDaemon(t *testing.T, opts ...Option) *testDaemon {
	t.Helper()

	host, device := net.Pipe()

	td := &testDaemon{
		medium:     settings.NewMemory(settings.Size),
		controller: newFakeController(t, device),
		changes:    make(chan input.Change, 32),
		errCh:      make(chan error, 1),
	}

	cfg := DefaultConfig()
	cfg.Rate = 1000

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	opts = append([]Option{
		WithPort(func(*Config) (Port, error) { return pipePort{host}, nil }),
		WithMedium(td.medium),
		WithObserver(input.ObserverFunc(func(c input.Change) { td.changes <- c })),
	}, opts...)

	d, err := NewDaemon(cfg, logger, opts...)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	td.cancel = cancel

	go func() { td.errCh <- d.Run(ctx) }()
	return td
}

func (td *testDaemon) stop(t *testing.T) {
	t.Helper()
	td.cancel()

	select {
	case err := <-td.errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("daemon did not stop")
	}

	td.controller.close()
}

// handshake consumes the initialize and brightness packets.
func (td *testDaemon) handshake(t *testing.T, brightness uint8) {
	t.Helper()
	c := td.controller

	p := c.next()
	assert.Equal(t, ledserial.InitializePacket{NumLEDs: animation.NumLEDs}, p)
	c.ack(p)

	p = c.next()
	assert.Equal(t, ledserial.BrightnessPacket{Level: brightness}, p)
	c.ack(p)
}

func TestDaemonFrames(t *testing.T) {
	defer goleak.VerifyNone(t)

	td := startDaemon(t)
	defer td.stop(t)

	loaded := <-td.changes
	assert.Equal(t, input.FieldLoad, loaded.Field)
	assert.Equal(t, animation.Constant, loaded.State.Mode)

	td.handshake(t, input.FullBrightness)

	c := td.controller
	p := c.next()
	assert.Equal(t, ledserial.SetPacket{Pix: []uint8{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}}, p)

	// The gesture arrives before the ack, so the next frame shows it.
	c.send(ledserial.ButtonPacket{Button: uint8(input.Button3), Gesture: gesture.Click})
	c.ack(p)

	p = c.next()
	assert.Equal(t, ledserial.SetPacket{Pix: []uint8{0xFF, 0x00, 0x00, 0xFF, 0x00, 0x00}}, p)
	c.ack(p)

	change := <-td.changes
	assert.Equal(t, input.FieldColour, change.Field)
	assert.Equal(t, 1, change.State.Colour)
	assert.Equal(t, uint8(1), td.medium.Bytes()[2], "colour is persisted")
}

func TestDaemonBrightness(t *testing.T) {
	defer goleak.VerifyNone(t)

	td := startDaemon(t)
	defer td.stop(t)

	td.handshake(t, input.FullBrightness)

	c := td.controller
	p := c.next()
	c.send(ledserial.ButtonPacket{Button: uint8(input.Button1), Gesture: gesture.DoubleClick})
	c.ack(p)

	p = c.next()
	assert.Equal(t, ledserial.BrightnessPacket{Level: input.LowBrightness}, p)
	c.ack(p)

	p = c.next()
	assert.IsType(t, ledserial.SetPacket{}, p)
	c.ack(p)

	assert.Equal(t, uint8(input.LowBrightness), td.medium.Bytes()[1])
}

func TestDaemonControllerReset(t *testing.T) {
	defer goleak.VerifyNone(t)

	td := startDaemon(t)
	defer td.stop(t)

	td.handshake(t, input.FullBrightness)

	c := td.controller
	p := c.next()
	c.send(ledserial.ButtonPacket{Button: uint8(input.Button1), Gesture: gesture.Click})
	c.ack(p)

	p = c.next()
	assert.IsType(t, ledserial.SetPacket{}, p)
	assert.Equal(t, uint8(animation.RandomPair), td.medium.Bytes()[5])

	c.send(ledserial.ResetPacket{})
	c.ack(p)

	p = c.next()
	assert.Equal(t, ledserial.SetPacket{Pix: []uint8{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}}, p)
	c.ack(p)

	assert.Equal(t, uint8(animation.Constant), td.medium.Bytes()[5])
}

func TestDaemonResetOption(t *testing.T) {
	defer goleak.VerifyNone(t)

	medium := settings.NewMemory(settings.Size)
	store := settings.New(medium)
	_, err := store.Init()
	require.NoError(t, err)
	require.NoError(t, store.SetBrightness(input.LowBrightness))
	require.NoError(t, store.SetMode(uint8(animation.RandomSingleFade)))

	td := startDaemon(t, WithMedium(medium), WithReset())
	defer td.stop(t)

	td.handshake(t, input.FullBrightness)

	reloaded := settings.New(medium)
	_, err = reloaded.Init()
	require.NoError(t, err)
	assert.Equal(t, settings.Defaults(), reloaded.Snapshot())
}

func TestDaemonControllerPanic(t *testing.T) {
	defer goleak.VerifyNone(t)

	td := startDaemon(t)
	td.handshake(t, input.FullBrightness)

	c := td.controller
	c.next()
	c.send(ledserial.PanicPacket{})

	select {
	case err := <-td.errCh:
		assert.ErrorContains(t, err, "controller panicked")
	case <-time.After(5 * time.Second):
		t.Fatal("daemon did not stop")
	}

	td.cancel()
	c.close()
}

func TestNewDaemonInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Rate = 0

	_, err := NewDaemon(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.Error(t, err)
}
