package events

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/golang/glog"
	"github.com/nats-io/nats.go"
)

// DefaultSubjectPrefix is used when the NATS URL has no path.
const DefaultSubjectPrefix = "minefield"

// NATSBus implements Bus over NATS.
type NATSBus struct {
	Conn          *nats.Conn
	SubjectPrefix string
}

// NewNATSBus connects to the NATS server. The URL path becomes the
// subject prefix, with "/" replaced by ".".
func NewNATSBus(serverURL string) (*NATSBus, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return nil, err
	}
	prefix := strings.Replace(strings.Trim(u.Path, "/"), "/", ".", -1)
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	server := *u
	server.Path, server.RawQuery = "", ""
	conn, err := nats.Connect(server.String(),
		nats.Name("minefield"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				glog.Warningf("nats disconnected: %v", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			glog.Infof("nats reconnected to %s", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect %s: %v", server.Host, err)
	}
	return &NATSBus{Conn: conn, SubjectPrefix: prefix}, nil
}

// Subject returns the events subject of a device; empty deviceID matches all.
func (b *NATSBus) Subject(deviceID string) string {
	if deviceID == "" {
		deviceID = "*"
	}
	return b.SubjectPrefix + "." + deviceID + ".events"
}

// Publish implements Bus.
func (b *NATSBus) Publish(ev *GameEvent) error {
	if ev.DeviceID == "" {
		return ErrNoDeviceID
	}
	payload, err := ev.Encode()
	if err != nil {
		return err
	}
	return b.Conn.Publish(b.Subject(ev.DeviceID), payload)
}

// Subscribe implements Bus.
func (b *NATSBus) Subscribe(deviceID string, h Handler) (io.Closer, error) {
	sub, err := b.Conn.Subscribe(b.Subject(deviceID), func(msg *nats.Msg) {
		ev, err := DecodeEvent(msg.Data)
		if err != nil {
			glog.Warningf("%s: bad event: %v", msg.Subject, err)
			return
		}
		h(ev)
	})
	if err != nil {
		return nil, err
	}
	return closerFunc(sub.Unsubscribe), nil
}

// Close implements io.Closer.
func (b *NATSBus) Close() error {
	b.Conn.Close()
	return nil
}
