package transport

import (
	"fmt"
	"io"
	"log"
	"net/url"
	"strconv"
	"strings"
)

// Open opens the byte stream specified by URL:
//
//	serial:///dev/ttyUSB0?baud=115200
//	/dev/ttyUSB0 or COM5 (serial with default baud)
//	ws://host:port/path
func Open(portURL string) (io.ReadWriteCloser, error) {
	if !strings.Contains(portURL, "://") {
		return OpenSerial(portURL, DefaultBaudRate)
	}
	u, err := url.Parse(portURL)
	if err != nil {
		return nil, fmt.Errorf("invalid port URL: %v", err)
	}
	switch u.Scheme {
	case "serial":
		name, baud, err := serialFromURL(u)
		if err != nil {
			return nil, err
		}
		return OpenSerial(name, baud)
	case "ws", "wss":
		return DialWebsocket(portURL)
	default:
		return nil, fmt.Errorf("unknown port URL scheme: %q", u.Scheme)
	}
}

// MustOpen opens the stream and fails on error.
func MustOpen(portURL string) io.ReadWriteCloser {
	rw, err := Open(portURL)
	if err != nil {
		log.Fatalln(err)
	}
	return rw
}

func serialFromURL(u *url.URL) (name string, baud int, err error) {
	if name = u.Path; name == "" {
		name = u.Opaque
	}
	if u.Host != "" {
		// serial://COM5 puts the port name in host.
		name = u.Host + name
	}
	if name == "" {
		return "", 0, fmt.Errorf("serial port name missing in %q", u.String())
	}
	baud = DefaultBaudRate
	if val := u.Query().Get("baud"); val != "" {
		if baud, err = strconv.Atoi(val); err != nil || baud <= 0 {
			return "", 0, fmt.Errorf("invalid baud rate %q", val)
		}
	}
	return name, baud, nil
}
