package lightbox

import (
	"context"
	"encoding"
	"fmt"
	"io"
	"time"

	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
	"github.com/sethvargo/go-envconfig"

	"libdb.so/lightbox/gesture"
	"libdb.so/lightbox/internal/animation"
	"libdb.so/lightbox/internal/input"
)

// maxStoredInterval is the longest interval the settings layout can hold.
const maxStoredInterval = 0xFFFF * time.Millisecond

// Config is the configuration for the lightbox daemon.
type Config struct {
	// Device is the path to the device file of the LED controller.
	// This is usually /dev/ttyUSB0 or /dev/ttyACM0.
	Device string `toml:"device"`
	// Baud is the baud rate for the serial connection.
	Baud int `toml:"baud"`
	// Rate is the refresh rate for the LEDs, in frames per second.
	Rate int `toml:"rate"`
	// Settings is the path to the settings image file.
	Settings string `toml:"settings"`

	// Timing configures the colour interval limits.
	Timing TimingConfig `toml:"timing"`
	// Gesture configures button gesture detection for the GPIO buttons.
	Gesture GestureConfig `toml:"gesture"`
	// GPIO, if set, reads the buttons from GPIO pins on the host.
	GPIO *GPIOConfig `toml:"gpio,omitempty"`
	// MQTT, if set, publishes every state change to an MQTT broker.
	MQTT *MQTTConfig `toml:"mqtt,omitempty"`
}

// TimingConfig is the configuration for the colour interval. Zero values
// take the defaults.
type TimingConfig struct {
	MinInterval TOMLDuration `toml:"min_interval"`
	MaxInterval TOMLDuration `toml:"max_interval"`
	SmallStep   TOMLDuration `toml:"small_step"`
	LargeStep   TOMLDuration `toml:"large_step"`
	JumpLead    TOMLDuration `toml:"jump_lead"`
}

// Timing returns the animation timing.
func (c TimingConfig) Timing() animation.Timing {
	return animation.Timing{
		MinInterval: c.MinInterval.Or(animation.DefaultTiming.MinInterval),
		MaxInterval: c.MaxInterval.Or(animation.DefaultTiming.MaxInterval),
		SmallStep:   c.SmallStep.Or(animation.DefaultTiming.SmallStep),
		LargeStep:   c.LargeStep.Or(animation.DefaultTiming.LargeStep),
		JumpLead:    c.JumpLead.Or(animation.DefaultTiming.JumpLead),
	}
}

// GestureConfig is the configuration for gesture detection. Zero values take
// the defaults.
type GestureConfig struct {
	Debounce    TOMLDuration `toml:"debounce"`
	ClickWindow TOMLDuration `toml:"click_window"`
	LongPress   TOMLDuration `toml:"long_press"`
}

// Gesture returns the gesture configuration.
func (c GestureConfig) Gesture() gesture.Config {
	return gesture.Config{
		Debounce:    c.Debounce.Or(gesture.DefaultConfig.Debounce),
		ClickWindow: c.ClickWindow.Or(gesture.DefaultConfig.ClickWindow),
		LongPress:   c.LongPress.Or(gesture.DefaultConfig.LongPress),
	}
}

// GPIOConfig is the configuration for buttons wired to the host's GPIO pins.
type GPIOConfig struct {
	// Pins are the BCM pin numbers of buttons 1, 2 and 3. The buttons are
	// active low with the internal pull-up enabled.
	Pins []int `toml:"pins"`
	// Poll is how often the pins are read.
	Poll TOMLDuration `toml:"poll"`
}

// MQTTConfig is the configuration for the MQTT state publisher.
type MQTTConfig struct {
	// Broker is the broker URL, e.g. tcp://localhost:1883.
	Broker string `toml:"broker"`
	// Topic is the topic prefix. Changes are published to <topic>/<field>.
	Topic string `toml:"topic"`
	// ClientID is the MQTT client ID.
	ClientID string `toml:"client_id"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Device == "" {
		c.Device = "/dev/ttyACM0"
	}
	if c.Baud == 0 {
		c.Baud = 115200
	}
	if c.Rate == 0 {
		c.Rate = 100
	}
	if c.Settings == "" {
		c.Settings = "lightbox.eeprom"
	}
	if c.GPIO != nil && c.GPIO.Poll == 0 {
		c.GPIO.Poll = TOMLDuration(5 * time.Millisecond)
	}
	if c.MQTT != nil {
		if c.MQTT.Topic == "" {
			c.MQTT.Topic = "lightbox"
		}
		if c.MQTT.ClientID == "" {
			c.MQTT.ClientID = "lightbox"
		}
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Device == "" {
		return errors.New("no device configured")
	}
	if c.Baud <= 0 {
		return fmt.Errorf("invalid baud rate %d", c.Baud)
	}
	if c.Rate <= 0 {
		return fmt.Errorf("invalid refresh rate %d", c.Rate)
	}
	if c.Settings == "" {
		return errors.New("no settings file configured")
	}

	timing := c.Timing.Timing()
	if err := timing.Validate(); err != nil {
		return errors.Wrap(err, "invalid timing")
	}
	if timing.MaxInterval > maxStoredInterval {
		return fmt.Errorf("maximum interval %v exceeds %v", timing.MaxInterval, maxStoredInterval)
	}

	if c.GPIO != nil {
		if len(c.GPIO.Pins) != len(input.Buttons) {
			return fmt.Errorf("gpio needs %d pins, got %d", len(input.Buttons), len(c.GPIO.Pins))
		}
		if c.GPIO.Poll <= 0 {
			return fmt.Errorf("invalid gpio poll interval %v", time.Duration(c.GPIO.Poll))
		}
	}

	if c.MQTT != nil && c.MQTT.Broker == "" {
		return errors.New("mqtt broker not set")
	}

	return nil
}

// envOverrides are environment variables that override the config file.
type envOverrides struct {
	Device     string `env:"LIGHTBOX_DEVICE"`
	Baud       int    `env:"LIGHTBOX_BAUD"`
	Settings   string `env:"LIGHTBOX_SETTINGS"`
	MQTTBroker string `env:"LIGHTBOX_MQTT_BROKER"`
}

// ApplyEnv overrides the configuration with values looked up from the
// environment. Unset variables leave the configuration unchanged.
func (c *Config) ApplyEnv(ctx context.Context, l envconfig.Lookuper) error {
	var env envOverrides
	if err := envconfig.ProcessWith(ctx, &env, l); err != nil {
		return errors.Wrap(err, "failed to read environment")
	}

	if env.Device != "" {
		c.Device = env.Device
	}
	if env.Baud != 0 {
		c.Baud = env.Baud
	}
	if env.Settings != "" {
		c.Settings = env.Settings
	}
	if env.MQTTBroker != "" {
		if c.MQTT == nil {
			c.MQTT = &MQTTConfig{}
		}
		c.MQTT.Broker = env.MQTTBroker
	}

	c.applyDefaults()
	return nil
}

// TOMLDuration is a duration that can be parsed from TOML.
type TOMLDuration time.Duration

var (
	_ encoding.TextUnmarshaler = (*TOMLDuration)(nil)
	_ encoding.TextMarshaler   = (*TOMLDuration)(nil)
)

func (d *TOMLDuration) UnmarshalText(text []byte) error {
	duration, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = TOMLDuration(duration)
	return nil
}

func (d TOMLDuration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Or returns the duration, or def if it is zero.
func (d TOMLDuration) Or(def time.Duration) time.Duration {
	if d == 0 {
		return def
	}
	return time.Duration(d)
}

// ParseConfig parses a configuration from a reader. Missing values take
// their defaults.
func ParseConfig(r io.Reader) (*Config, error) {
	var config Config
	if err := toml.NewDecoder(r).Decode(&config); err != nil {
		return nil, err
	}
	config.applyDefaults()
	return &config, nil
}
