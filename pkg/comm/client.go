package comm

import (
	"context"
	"sync"
	"time"

	"github.com/golang/glog"
)

// Client provides host side operations over a Link.
//
// The protocol carries no sequence number, so only one command can be
// outstanding at a time. A reply with a full payload (MaxPayload bytes) is
// continued by the next frame of the same command; the reply ends with the
// first frame carrying less than MaxPayload bytes.
type Client struct {
	// Timeout is the time to wait for each reply frame.
	Timeout time.Duration
	// Retries is the number of resends after a timeout.
	Retries int
	// IdleTimeout is the time a partial frame may stay pending.
	IdleTimeout time.Duration

	link   *Link
	parser *ResponseParser
	respCh chan *Response
	tickCh chan Tick
	lock   sync.Mutex
}

// NewClient creates client and wraps the link.
func NewClient(link *Link) *Client {
	return &Client{
		Timeout:     time.Second,
		Retries:     2,
		IdleTimeout: DefaultIdleTimeout,
		link:        link,
		parser:      NewResponseParser(),
		respCh:      make(chan *Response, 4),
		tickCh:      make(chan Tick, 1),
	}
}

// Link gets wrapped Link.
func (c *Client) Link() *Link {
	return c.link
}

// TickChan retrieves the timer notification chan. Only the latest tick is
// kept if the receiver falls behind.
func (c *Client) TickChan() <-chan Tick {
	return c.tickCh
}

// Do sends a request and waits for the complete reply. A reply with
// StatusError is returned together with a *ReplyError.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	data, err := req.Bytes()
	if err != nil {
		return nil, err
	}

	c.lock.Lock()
	defer c.lock.Unlock()

	for attempt := 0; attempt <= c.Retries; attempt++ {
		c.drain()
		if err = c.link.Send(ctx, data); err != nil {
			return nil, err
		}
		resp, err := c.collect(ctx, req.Cmd)
		if err == ErrTimeout {
			glog.V(2).Infof("command %s: no reply, attempt %d", req.Cmd, attempt+1)
			continue
		}
		if err != nil {
			return nil, err
		}
		if resp.Status == StatusError {
			return resp, &ReplyError{Cmd: resp.Cmd, Status: resp.Status}
		}
		return resp, nil
	}
	return nil, ErrTimeout
}

// Run implements Runnable. It returns nil when the link stops; the link
// reports the cause.
func (c *Client) Run(ctx context.Context) error {
	var idleTimer <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.link.Done():
			return nil
		case <-idleTimer:
			idleTimer = nil
			c.apply(c.parser.Timeout())
		case chunk, ok := <-c.link.Recv():
			if !ok {
				return nil
			}
			var last ParseResult
			for _, b := range chunk {
				last = c.parser.Parse(b)
				c.apply(last)
			}
			switch last.WhatAboutTimer() {
			case TimerRestart:
				idleTimer = time.After(c.IdleTimeout)
			case TimerStop:
				idleTimer = nil
			}
		}
	}
}

func (c *Client) apply(pr ParseResult) {
	if pr.Dropped != DropNone {
		glog.V(2).Infof("dropped: %s", pr.Dropped)
	}
	if pr.Tick != nil {
		select {
		case <-c.tickCh:
		default:
		}
		c.tickCh <- *pr.Tick
	}
	if pr.Response != nil {
		select {
		case c.respCh <- pr.Response:
		default:
			glog.Warningf("reply %s dropped: no pending command", pr.Response.Cmd)
		}
	}
}

func (c *Client) drain() {
	for {
		select {
		case <-c.respCh:
		default:
			return
		}
	}
}

func (c *Client) collect(ctx context.Context, cmd Command) (*Response, error) {
	var reply *Response
	for {
		select {
		case resp := <-c.respCh:
			if resp.Cmd != cmd {
				glog.V(2).Infof("stale reply %s ignored, waiting %s", resp.Cmd, cmd)
				continue
			}
			if reply == nil {
				reply = &Response{Cmd: resp.Cmd, Status: resp.Status}
			}
			reply.Payload = append(reply.Payload, resp.Payload...)
			if len(resp.Payload) < MaxPayload {
				return reply, nil
			}
		case <-time.After(c.Timeout):
			return nil, ErrTimeout
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}
