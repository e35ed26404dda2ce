package device

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/robotalks/minefield/pkg/comm"
	"github.com/robotalks/minefield/pkg/env"
	"github.com/robotalks/minefield/pkg/events"
	"github.com/robotalks/minefield/pkg/game"
)

// Config defines the options of the device daemon.
type Config struct {
	// Port is the transport URL, e.g. serial:///dev/ttyUSB0?baud=115200.
	Port string
	// Listen is the address to accept websocket connections on, instead
	// of opening Port.
	Listen string
	// Tiers names the difficulty table: canonical or legacy.
	Tiers string
	// EventsURL specifies where game events are published, e.g.
	// mqtt://localhost:1883/minefield/ or nats://localhost:4222/minefield.
	EventsURL string
	// DeviceID identifies the device in events.
	DeviceID string
	// Seed seeds field generation, 0 uses the clock.
	Seed        int64
	Tick        time.Duration
	IdleTimeout time.Duration
}

var defaultConfig = Config{
	Port:        "serial:///dev/ttyUSB0",
	Tiers:       "canonical",
	Tick:        DefaultTickInterval,
	IdleTimeout: comm.DefaultIdleTimeout,
}

func init() {
	if val := os.Getenv("MINES_PORT"); val != "" {
		defaultConfig.Port = val
	}
	if val := os.Getenv("MINES_LISTEN"); val != "" {
		defaultConfig.Listen = val
	}
	if val := os.Getenv("MINES_TIERS"); val != "" {
		defaultConfig.Tiers = val
	}
	if val := os.Getenv("MINES_EVENTS_URL"); val != "" {
		defaultConfig.EventsURL = val
	}
	if val := os.Getenv("MINES_DEVICE_ID"); val != "" {
		defaultConfig.DeviceID = val
	}
}

// SetupFlags sets up command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Port, "port", defaultConfig.Port, "Transport URL: serial:///dev/ttyUSB0?baud=115200 or ws://host:port/path.")
	flag.StringVar(&defaultConfig.Listen, "listen", defaultConfig.Listen, "Accept websocket connections on this address instead of opening -port.")
	flag.StringVar(&defaultConfig.Tiers, "tiers", defaultConfig.Tiers, "Difficulty table: canonical or legacy.")
	flag.StringVar(&defaultConfig.EventsURL, "events", defaultConfig.EventsURL, "Publish game events to mqtt:// or nats:// URL.")
	flag.StringVar(&defaultConfig.DeviceID, "id", defaultConfig.DeviceID, "Device ID in events, derived from machine ID if empty.")
	flag.Int64Var(&defaultConfig.Seed, "seed", defaultConfig.Seed, "Field generation seed, 0 uses the clock.")
	flag.DurationVar(&defaultConfig.Tick, "tick", defaultConfig.Tick, "Period of one timer second.")
	flag.DurationVar(&defaultConfig.IdleTimeout, "idle-timeout", defaultConfig.IdleTimeout, "Discard a partial frame after this idle time.")
}

// Default gets the default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// NewSession creates an idle session with the configured tiers.
func (c *Config) NewSession() (*game.Session, error) {
	tiers, err := game.TiersByName(c.Tiers)
	if err != nil {
		return nil, err
	}
	seed := c.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return game.NewSession(tiers, rand.New(rand.NewSource(seed))), nil
}

// ResolveDeviceID returns the configured ID or the machine derived one.
func (c *Config) ResolveDeviceID() string {
	if c.DeviceID != "" {
		return c.DeviceID
	}
	return env.DeviceID()
}

// NewDevice creates a Device and connects the events bus if configured.
func (c *Config) NewDevice() (*Device, error) {
	session, err := c.NewSession()
	if err != nil {
		return nil, err
	}
	d := New(session)
	d.TickInterval, d.IdleTimeout = c.Tick, c.IdleTimeout
	d.DeviceID = c.ResolveDeviceID()
	if c.EventsURL != "" {
		if d.Events, err = events.Open(c.EventsURL); err != nil {
			return nil, fmt.Errorf("events: %v", err)
		}
	}
	return d, nil
}

// MustNewDevice creates a Device and fails on error.
func (c *Config) MustNewDevice() *Device {
	d, err := c.NewDevice()
	if err != nil {
		log.Fatalln(err)
	}
	return d
}
