package comm

import (
	"errors"
	"fmt"
)

var (
	// ErrPayloadTooLarge indicates the payload doesn't fit in the one-byte
	// length field of a frame.
	ErrPayloadTooLarge = errors.New("payload too large")
	// ErrTimeout indicates no reply received from peer in time.
	ErrTimeout = errors.New("timeout")
	// ErrNotRunning indicates the Link is not running.
	ErrNotRunning = errors.New("link not running")
)

// ReplyError is returned for a reply with the error status.
type ReplyError struct {
	Cmd    Command
	Status Status
}

// Error implements error.
func (e *ReplyError) Error() string {
	return fmt.Sprintf("command %s failed: status %s", e.Cmd, e.Status)
}
