package host

import (
	"context"
	"flag"
	"log"
	"os"
	"sync/atomic"
	"time"

	"github.com/robotalks/minefield/pkg/comm"
	"github.com/robotalks/minefield/pkg/framework"
	"github.com/robotalks/minefield/pkg/game"
	"github.com/robotalks/minefield/pkg/transport"
)

// Config provides options to connect a device.
type Config struct {
	// Port is the transport URL, e.g. serial:///dev/ttyUSB0?baud=115200.
	Port    string
	Timeout time.Duration
	Retries int
}

var defaultConfig = Config{
	Port:    "serial:///dev/ttyUSB0",
	Timeout: time.Second,
	Retries: 2,
}

func init() {
	if val := os.Getenv("MINES_PORT"); val != "" {
		defaultConfig.Port = val
	}
}

// SetupFlags sets up command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Port, "port", defaultConfig.Port, "Device transport URL: serial:///dev/ttyUSB0?baud=115200 or ws://host:port/path.")
	flag.DurationVar(&defaultConfig.Timeout, "timeout", defaultConfig.Timeout, "Time to wait for each reply.")
	flag.IntVar(&defaultConfig.Retries, "retries", defaultConfig.Retries, "Resends after a reply timeout.")
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

// Conn is a running connection to a device.
type Conn struct {
	*Game
	Port string

	runner  *framework.Runner
	elapsed atomic.Uint32
}

// Connect opens the transport and starts the client in background.
func (c *Config) Connect() (*Conn, error) {
	rw, err := transport.Open(c.Port)
	if err != nil {
		return nil, err
	}
	link := comm.NewLink(rw)
	client := comm.NewClient(link)
	client.Timeout, client.Retries = c.Timeout, c.Retries
	conn := &Conn{Game: NewGame(client), Port: c.Port, runner: framework.NewRunner()}
	conn.runner.Go(
		framework.NamedRun("link", link),
		framework.NamedRun("client", client),
		framework.NamedRun("timer", framework.RunFunc(conn.watchTicks)),
	)
	return conn, nil
}

// MustConnect connects and fails on error.
func (c *Config) MustConnect() *Conn {
	conn, err := c.Connect()
	if err != nil {
		log.Fatalln(err)
	}
	return conn
}

// Elapsed returns the game seconds last reported by the device.
func (c *Conn) Elapsed() uint32 {
	return c.elapsed.Load()
}

// New starts a game and resets the elapsed time.
func (c *Conn) New(ctx context.Context, d game.Difficulty) (*Board, error) {
	board, err := c.Game.New(ctx, d)
	if err == nil {
		c.elapsed.Store(0)
	}
	return board, err
}

// Close disconnects.
func (c *Conn) Close() error {
	c.runner.Stop()
	return c.runner.Wait()
}

func (c *Conn) watchTicks(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case tick := <-c.Client.TickChan():
			c.elapsed.Store(tick.Seconds)
		}
	}
}
