package device

import (
	"context"
	"io"
	"sync/atomic"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/minefield/pkg/comm"
	"github.com/robotalks/minefield/pkg/events"
	"github.com/robotalks/minefield/pkg/framework"
	"github.com/robotalks/minefield/pkg/game"
)

// DefaultTickInterval is one game second.
const DefaultTickInterval = time.Second

// Stats counts what the device has seen since it was created.
type Stats struct {
	Requests uint64
	Dropped  uint64
	Ignored  uint64
	Errors   uint64
	Ticks    uint64
}

// Device serves the game over a byte stream.
type Device struct {
	Session *game.Session
	// Events is optional, game transitions are published when set.
	Events   events.Bus
	DeviceID string
	// TickInterval is the period of one timer second.
	TickInterval time.Duration
	// IdleTimeout discards a partial frame pending for this long.
	IdleTimeout time.Duration

	requests atomic.Uint64
	dropped  atomic.Uint64
	ignored  atomic.Uint64
	errors   atomic.Uint64
	ticks    atomic.Uint64
}

// New creates a Device serving the session.
func New(session *game.Session) *Device {
	return &Device{
		Session:      session,
		TickInterval: DefaultTickInterval,
		IdleTimeout:  comm.DefaultIdleTimeout,
	}
}

// Stats returns a snapshot of the counters.
func (d *Device) Stats() Stats {
	return Stats{
		Requests: d.requests.Load(),
		Dropped:  d.dropped.Load(),
		Ignored:  d.ignored.Load(),
		Errors:   d.errors.Load(),
		Ticks:    d.ticks.Load(),
	}
}

// Serve runs the protocol on rw until ctx is canceled or the stream fails.
// The session survives across Serve calls, but only one Serve may run at a
// time.
func (d *Device) Serve(ctx context.Context, rw io.ReadWriter) error {
	link := comm.NewLink(rw)
	return framework.NewRunnerWith(ctx).
		Go(
			framework.NamedRun("link", link),
			framework.NamedRun("dispatcher", framework.RunFunc(func(ctx context.Context) error {
				return d.dispatch(ctx, link)
			})),
		).
		Wait()
}

type dispatcher struct {
	*Device
	link   *comm.Link
	parser *comm.RequestParser
	ticker *time.Ticker
}

func (d *Device) dispatch(ctx context.Context, link *comm.Link) error {
	idleTimeout := d.IdleTimeout
	if idleTimeout <= 0 {
		idleTimeout = comm.DefaultIdleTimeout
	}
	s := &dispatcher{
		Device: d,
		link:   link,
		parser: comm.NewRequestParser(),
	}
	s.ticker = time.NewTicker(s.tickInterval())
	defer s.ticker.Stop()

	var idleTimer <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-link.Done():
			return nil
		case <-idleTimer:
			idleTimer = nil
			s.logDrop(s.parser.Timeout())
		case <-s.ticker.C:
			if err := s.tick(ctx); err != nil {
				return err
			}
		case chunk, ok := <-link.Recv():
			if !ok {
				return nil
			}
			var last comm.ParseResult
			for _, b := range chunk {
				last = s.parser.Parse(b)
				s.logDrop(last)
				if last.Request == nil {
					continue
				}
				if err := s.handle(ctx, last.Request); err != nil {
					return err
				}
			}
			switch last.WhatAboutTimer() {
			case comm.TimerRestart:
				idleTimer = time.After(idleTimeout)
			case comm.TimerStop:
				idleTimer = nil
			}
		}
	}
}

func (s *dispatcher) logDrop(pr comm.ParseResult) {
	if pr.Dropped != comm.DropNone {
		s.dropped.Add(1)
		glog.V(2).Infof("frame dropped: %s", pr.Dropped)
	}
}

func (s *dispatcher) handle(ctx context.Context, req *comm.Request) error {
	s.requests.Add(1)
	glog.V(2).Infof("request %s % x", req.Cmd, req.Payload)
	switch req.Cmd {
	case comm.CmdMinefield:
		if len(req.Payload) != 1 {
			return s.reject(ctx, req, "bad payload length")
		}
		return s.newGame(ctx, game.Difficulty(req.Payload[0]))
	case comm.CmdClick:
		if len(req.Payload) != 2 {
			return s.reject(ctx, req, "bad payload length")
		}
		return s.click(ctx, int(req.Payload[0]), int(req.Payload[1]))
	case comm.CmdAbort:
		if len(req.Payload) != 0 {
			return s.reject(ctx, req, "bad payload length")
		}
		s.Session.Abort()
		glog.Info("game aborted")
		s.publish(&events.GameEvent{Kind: events.EventAborted})
		return s.reply(ctx, AbortReply())
	}
	return s.reject(ctx, req, "unknown command")
}

func (s *dispatcher) reject(ctx context.Context, req *comm.Request, reason string) error {
	s.errors.Add(1)
	glog.V(2).Infof("request %s rejected: %s", req.Cmd, reason)
	return s.reply(ctx, ErrorReply(req.Cmd))
}

func (s *dispatcher) newGame(ctx context.Context, d game.Difficulty) error {
	if err := s.Session.NewGame(d); err != nil {
		s.errors.Add(1)
		glog.Warningf("new game %s failed: %v", d, err)
		s.publish(&events.GameEvent{Kind: events.EventGameFailed, Difficulty: d.String(), Error: err.Error()})
		return s.reply(ctx, ErrorReply(comm.CmdMinefield))
	}
	// the first timer second starts now.
	s.ticker.Reset(s.tickInterval())
	select {
	case <-s.ticker.C:
	default:
	}
	f := s.Session.Field()
	glog.Infof("new game %s: %dx%d, %d mines", d, f.Size, f.Size, f.Mines)
	s.publish(&events.GameEvent{
		Kind:       events.EventGameStarted,
		Difficulty: d.String(),
		Size:       uint32(f.Size),
		Mines:      uint32(f.Mines),
	})
	return s.reply(ctx, MinefieldReply(f))
}

func (s *dispatcher) click(ctx context.Context, row, col int) error {
	outcome, ok := s.Session.Click(row, col)
	if !ok {
		s.ignored.Add(1)
		glog.V(2).Infof("click (%d,%d) ignored in state %s", row, col, s.Session.State())
		return nil
	}
	ev := &events.GameEvent{
		Kind:       events.EventClicked,
		Difficulty: s.Session.Difficulty().String(),
		Outcome:    outcome.String(),
		Opened:     uint32(s.Session.Opened()),
		Elapsed:    s.Session.Elapsed(),
		Row:        uint32(row),
		Col:        uint32(col),
	}
	if s.Session.State() == game.StateEnded {
		ev.Kind = events.EventGameEnded
		glog.Infof("game over: %s in %ds, %d opened", outcome, s.Session.Elapsed(), s.Session.Opened())
	}
	s.publish(ev)
	return s.reply(ctx, ClickReply(outcome, s.Session.Revealed()))
}

func (s *dispatcher) tick(ctx context.Context) error {
	secs, running := s.Session.Tick()
	if !running {
		return nil
	}
	s.ticks.Add(1)
	return s.link.Send(ctx, comm.TimerLine(secs))
}

func (s *dispatcher) tickInterval() time.Duration {
	if s.TickInterval <= 0 {
		return DefaultTickInterval
	}
	return s.TickInterval
}

func (s *dispatcher) reply(ctx context.Context, frames []*comm.Response) error {
	data, err := encodeFrames(frames)
	if err != nil {
		return err
	}
	return s.link.Send(ctx, data)
}

func (s *dispatcher) publish(ev *events.GameEvent) {
	if s.Events == nil {
		return
	}
	ev.DeviceID = s.DeviceID
	ev.TimeMs = time.Now().UnixNano() / int64(time.Millisecond)
	if err := s.Events.Publish(ev); err != nil {
		glog.Warningf("publish %s failed: %v", ev.Kind, err)
	}
}
