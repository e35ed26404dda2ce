package comm

import (
	"fmt"
	"io"
)

// Command is the first byte of every frame.
type Command byte

// Commands
const (
	CmdMinefield Command = 'M'
	CmdClick     Command = 'C'
	CmdAbort     Command = 'A'
)

// String implements fmt.Stringer.
func (c Command) String() string {
	if c >= 0x20 && c < 0x7f {
		return string(rune(c))
	}
	return fmt.Sprintf("0x%02x", byte(c))
}

// Status is the second byte of a response frame.
type Status byte

// Status codes
const (
	StatusOK    Status = 0x00
	StatusLose  Status = 0x01
	StatusWin   Status = 0x02
	StatusError Status = 0xff
)

// String implements fmt.Stringer.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusLose:
		return "lose"
	case StatusWin:
		return "win"
	case StatusError:
		return "error"
	}
	return fmt.Sprintf("0x%02x", byte(s))
}

// Frame size limits.
const (
	// MaxPayload is the largest payload a single frame can carry.
	MaxPayload = 0xff
	// RequestOverhead is the number of non-payload bytes in a request.
	RequestOverhead = 3
	// ResponseOverhead is the number of non-payload bytes in a response.
	ResponseOverhead = 4
)

// Request is a frame sent from host to device.
type Request struct {
	Cmd     Command
	Payload []byte
}

// Bytes returns encoded bytes for sending.
func (r *Request) Bytes() ([]byte, error) {
	if len(r.Payload) > MaxPayload {
		return nil, ErrPayloadTooLarge
	}
	b := make([]byte, len(r.Payload)+RequestOverhead)
	b[0], b[1] = byte(r.Cmd), byte(len(r.Payload))
	copy(b[2:], r.Payload)
	b[len(b)-1] = Checksum(b[:len(b)-1])
	return b, nil
}

// WriteTo writes encoded bytes.
func (r *Request) WriteTo(w io.Writer) (int64, error) {
	b, err := r.Bytes()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(b)
	return int64(n), err
}

// Response is a frame sent from device to host.
type Response struct {
	Cmd     Command
	Status  Status
	Payload []byte
}

// Bytes returns encoded bytes for sending.
func (r *Response) Bytes() ([]byte, error) {
	if len(r.Payload) > MaxPayload {
		return nil, ErrPayloadTooLarge
	}
	b := make([]byte, len(r.Payload)+ResponseOverhead)
	b[0], b[1], b[2] = byte(r.Cmd), byte(r.Status), byte(len(r.Payload))
	copy(b[3:], r.Payload)
	b[len(b)-1] = Checksum(b[:len(b)-1])
	return b, nil
}

// WriteTo writes encoded bytes.
func (r *Response) WriteTo(w io.Writer) (int64, error) {
	b, err := r.Bytes()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(b)
	return int64(n), err
}

// TimerLine encodes the out-of-band timer notification.
func TimerLine(seconds uint32) []byte {
	return []byte(fmt.Sprintf("%c%d\n", TimerPrefix, seconds))
}

// TimerPrefix starts a timer line on the wire.
const TimerPrefix byte = 'T'

// ChunkResponse splits a reply into frames of at most MaxPayload bytes.
// Every frame but the last is full; when the payload is a multiple of
// MaxPayload (including empty), the last frame is empty and terminates it.
func ChunkResponse(cmd Command, status Status, payload []byte) []*Response {
	frames := make([]*Response, 0, len(payload)/MaxPayload+1)
	for {
		n := len(payload)
		if n > MaxPayload {
			n = MaxPayload
		}
		frames = append(frames, &Response{Cmd: cmd, Status: status, Payload: payload[:n]})
		payload = payload[n:]
		if n < MaxPayload {
			return frames
		}
	}
}
