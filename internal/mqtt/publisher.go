// Package mqtt publishes lightbox state changes to an MQTT broker.
package mqtt

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/pkg/errors"

	"libdb.so/lightbox/internal/input"
	"libdb.so/lightbox/internal/led"
)

const connectTimeout = 10 * time.Second

// payload represents the JSON payload which is published.
type payload struct {
	Field      string       `json:"field"`
	Mode       string       `json:"mode"`
	Brightness uint8        `json:"brightness"`
	Palette    int          `json:"palette"`
	Colour     int          `json:"colour"`
	RGB        led.RGBColor `json:"rgb"`
	IntervalMS int64        `json:"interval_ms"`
}

// Publisher publishes state changes. It implements input.Observer.
type Publisher struct {
	client mqtt.Client
	topic  string
	logger *slog.Logger
}

var _ input.Observer = (*Publisher)(nil)

// Dial connects to the broker and returns a publisher that publishes to
// <topic>/<field>.
func Dial(broker, clientID, topic string, logger *slog.Logger) (*Publisher, error) {
	options := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectTimeout(connectTimeout)

	client := mqtt.NewClient(options)
	t := client.Connect()
	if !t.WaitTimeout(connectTimeout) {
		return nil, errors.New("timed out connecting to mqtt broker")
	}
	if err := t.Error(); err != nil {
		return nil, errors.Wrap(err, "failed to connect to mqtt broker")
	}

	return &Publisher{
		client: client,
		topic:  topic,
		logger: logger,
	}, nil
}

// Observe publishes the change. It does not wait for delivery.
func (p *Publisher) Observe(c input.Change) {
	topic, b, err := encode(p.topic, c)
	if err != nil {
		p.logger.Warn("failed to encode mqtt payload", "error", err)
		return
	}

	t := p.client.Publish(topic, 1, true, b)
	go func() {
		_ = t.Wait()
		if err := t.Error(); err != nil {
			p.logger.Warn("failed to publish state change", "topic", topic, "error", err)
		}
	}()
}

// Close disconnects from the broker.
func (p *Publisher) Close() {
	p.client.Disconnect(250)
}

func encode(prefix string, c input.Change) (string, []byte, error) {
	b, err := json.Marshal(payload{
		Field:      string(c.Field),
		Mode:       c.State.Mode.String(),
		Brightness: c.State.Brightness,
		Palette:    c.State.Palette,
		Colour:     c.State.Colour,
		RGB:        c.State.RGB,
		IntervalMS: c.State.Interval.Milliseconds(),
	})
	if err != nil {
		return "", nil, err
	}
	return fmt.Sprintf("%s/%s", prefix, c.Field), b, nil
}
