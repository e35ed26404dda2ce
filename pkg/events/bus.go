package events

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/url"
)

// ErrNoDeviceID indicates an event without device ID, which can't be
// published as its topic would be a wildcard.
var ErrNoDeviceID = errors.New("event without device id")

// Handler is called for each received event.
type Handler func(*GameEvent)

// Bus publishes and subscribes game events.
type Bus interface {
	io.Closer
	// Publish sends the event without waiting for delivery.
	Publish(*GameEvent) error
	// Subscribe receives events of a device, or all devices if deviceID
	// is empty.
	Subscribe(deviceID string, h Handler) (io.Closer, error)
}

// Open connects to the bus specified by URL:
//
//	mqtt://host:port/topic-prefix/
//	nats://host:port/subject-prefix
func Open(busURL string) (Bus, error) {
	parsedURL, err := url.Parse(busURL)
	if err != nil {
		return nil, fmt.Errorf("invalid events URL: %v", err)
	}
	switch parsedURL.Scheme {
	case "mqtt", "mqtts", "tcp", "ssl", "ws", "wss":
		return NewMQTTBus(busURL)
	case "nats", "tls":
		return NewNATSBus(busURL)
	default:
		return nil, fmt.Errorf("unknown events URL scheme: %q", parsedURL.Scheme)
	}
}

// MustOpen opens the bus and fails on error.
func MustOpen(busURL string) Bus {
	bus, err := Open(busURL)
	if err != nil {
		log.Fatalln(err)
	}
	return bus
}

type closerFunc func() error

func (f closerFunc) Close() error {
	return f()
}
