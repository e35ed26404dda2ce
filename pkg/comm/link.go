package comm

import (
	"context"
	"io"
	"os"
	"sync"
	"time"

	"github.com/golang/glog"
)

// DefaultIdleTimeout is the default time a partial frame may stay pending.
const DefaultIdleTimeout = 100 * time.Millisecond

// Link owns a byte stream. Received bytes are delivered in chunks from
// Recv; all writes go through Send and are performed by the goroutine
// running Run, so messages never interleave on the wire.
type Link struct {
	ReadWriter io.ReadWriter

	outCh  chan *outMsg
	recvCh chan []byte
	doneCh chan struct{}
	once   sync.Once
}

type outMsg struct {
	data []byte
	done chan error
}

// NewLink creates a Link.
func NewLink(rw io.ReadWriter) *Link {
	return &Link{
		ReadWriter: rw,
		outCh:      make(chan *outMsg, 16),
		recvCh:     make(chan []byte, 16),
		doneCh:     make(chan struct{}),
	}
}

// Recv returns the chan of received bytes. It's closed when reading stops.
func (l *Link) Recv() <-chan []byte {
	return l.recvCh
}

// Done is closed when Run exits.
func (l *Link) Done() <-chan struct{} {
	return l.doneCh
}

// Send enqueues data and waits until it's written as a whole.
func (l *Link) Send(ctx context.Context, data []byte) error {
	msg := &outMsg{data: data, done: make(chan error, 1)}
	select {
	case l.outCh <- msg:
	case <-l.doneCh:
		return ErrNotRunning
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-msg.done:
		return err
	case <-l.doneCh:
		return ErrNotRunning
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run processes the Link in the background.
func (l *Link) Run(ctx context.Context) error {
	defer l.once.Do(func() { close(l.doneCh) })
	defer l.Close()

	errCh := make(chan error, 1)
	go l.readLoop(ctx, errCh)
	for {
		select {
		case msg := <-l.outCh:
			_, err := l.ReadWriter.Write(msg.data)
			msg.done <- err
			if err != nil {
				return err
			}
		case err := <-errCh:
			return err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Close implements io.Closer.
func (l *Link) Close() error {
	if closer, ok := l.ReadWriter.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

func (l *Link) readLoop(ctx context.Context, errCh chan error) {
	defer close(l.recvCh)
	buf := make([]byte, 256)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		n, err := l.ReadWriter.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			select {
			case l.recvCh <- chunk:
			case <-ctx.Done():
				return
			}
		}
		if err != nil {
			if os.IsTimeout(err) {
				continue
			}
			select {
			case <-ctx.Done():
			default:
				glog.V(2).Infof("link read error: %v", err)
			}
			errCh <- err
			return
		}
	}
}
