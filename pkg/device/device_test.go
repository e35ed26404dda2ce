package device

import (
	"bytes"
	"context"
	"io"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/minefield/pkg/comm"
	"github.com/robotalks/minefield/pkg/events"
	"github.com/robotalks/minefield/pkg/game"
)

type chanReadWriter struct {
	readCh  <-chan byte
	writeCh chan byte
}

func (c *chanReadWriter) Read(p []byte) (int, error) {
	p[0] = <-c.readCh
	return 1, nil
}

func (c *chanReadWriter) Write(p []byte) (int, error) {
	for _, b := range p {
		c.writeCh <- b
	}
	return len(p), nil
}

type recordingBus struct {
	lock   sync.Mutex
	events []*events.GameEvent
}

func (b *recordingBus) Publish(ev *events.GameEvent) error {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.events = append(b.events, ev)
	return nil
}

func (b *recordingBus) Subscribe(string, events.Handler) (io.Closer, error) {
	return nil, nil
}

func (b *recordingBus) Close() error {
	return nil
}

func (b *recordingBus) kinds() (kinds []events.EventKind) {
	b.lock.Lock()
	defer b.lock.Unlock()
	for _, ev := range b.events {
		kinds = append(kinds, ev.Kind)
	}
	return
}

type deviceTestEnv struct {
	t       *testing.T
	readCh  chan byte
	writeCh chan byte
	device  *Device
	bus     *recordingBus
	respCh  chan *comm.Response
	tickCh  chan uint32
	cancel  context.CancelFunc
}

func newDeviceTestEnv(t *testing.T, tiers game.Tiers) *deviceTestEnv {
	env := &deviceTestEnv{
		t:       t,
		readCh:  make(chan byte, 1),
		writeCh: make(chan byte, 1),
		bus:     &recordingBus{},
		respCh:  make(chan *comm.Response, 16),
		tickCh:  make(chan uint32, 16),
	}
	env.device = New(game.NewSession(tiers, rand.New(rand.NewSource(5))))
	env.device.Events = env.bus
	env.device.DeviceID = "test"
	env.device.TickInterval = time.Hour
	return env
}

func (e *deviceTestEnv) start() *deviceTestEnv {
	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	go e.device.Serve(ctx, &chanReadWriter{readCh: e.readCh, writeCh: e.writeCh})
	go func() {
		parser := comm.NewResponseParser()
		for {
			select {
			case <-ctx.Done():
				return
			case b := <-e.writeCh:
				pr := parser.Parse(b)
				if pr.Response != nil {
					e.respCh <- pr.Response
				}
				if pr.Tick != nil {
					e.tickCh <- pr.Tick.Seconds
				}
				if pr.Dropped != comm.DropNone {
					e.t.Errorf("device output dropped: %s", pr.Dropped)
				}
			}
		}
	}()
	return e
}

func (e *deviceTestEnv) stop() {
	e.cancel()
}

func (e *deviceTestEnv) inject(bs ...byte) {
	for _, b := range bs {
		e.readCh <- b
	}
}

func (e *deviceTestEnv) send(cmd comm.Command, payload ...byte) {
	b, err := (&comm.Request{Cmd: cmd, Payload: payload}).Bytes()
	require.NoError(e.t, err)
	e.inject(b...)
}

// reply receives a complete (possibly chunked) reply.
func (e *deviceTestEnv) reply(name string) *comm.Response {
	var reply *comm.Response
	for {
		select {
		case resp := <-e.respCh:
			if reply == nil {
				reply = &comm.Response{Cmd: resp.Cmd, Status: resp.Status}
			}
			require.Equalf(e.t, reply.Cmd, resp.Cmd, "%s chunk cmd", name)
			require.Equalf(e.t, reply.Status, resp.Status, "%s chunk status", name)
			reply.Payload = append(reply.Payload, resp.Payload...)
			if len(resp.Payload) < comm.MaxPayload {
				return reply
			}
		case <-time.After(500 * time.Millisecond):
			e.t.Fatalf("%s: reply timeout", name)
		}
	}
}

func (e *deviceTestEnv) expectReply(name string, cmd comm.Command, status comm.Status) *comm.Response {
	r := e.reply(name)
	require.Equalf(e.t, cmd, r.Cmd, "%s cmd", name)
	require.Equalf(e.t, status, r.Status, "%s status", name)
	return r
}

func (e *deviceTestEnv) expectSilence(name string) {
	select {
	case r := <-e.respCh:
		e.t.Fatalf("%s: unexpected reply %s %s", name, r.Cmd, r.Status)
	case <-time.After(100 * time.Millisecond):
	}
}

func (e *deviceTestEnv) newGame(name string, d game.Difficulty) []byte {
	e.send(comm.CmdMinefield, byte(d))
	return e.expectReply(name, comm.CmdMinefield, comm.StatusOK).Payload
}

// findCell returns the index of the first cell matching fn.
func findCell(t *testing.T, field []byte, fn func(byte) bool) int {
	for i, v := range field {
		if fn(v) {
			return i
		}
	}
	require.FailNow(t, "no matching cell")
	return -1
}

func TestEasyMinefield(t *testing.T) {
	env := newDeviceTestEnv(t, game.CanonicalTiers).start()
	defer env.stop()

	field := env.newGame("minefield", game.Easy)
	require.Len(t, field, 25)
	require.Equal(t, 5, bytes.Count(field, []byte{game.WireMine}))
	for _, v := range field {
		require.True(t, v <= 8 || v == game.WireMine)
	}
	require.Equal(t, []events.EventKind{events.EventGameStarted}, env.bus.kinds())
}

func TestLoseThenIgnored(t *testing.T) {
	env := newDeviceTestEnv(t, game.CanonicalTiers).start()
	defer env.stop()

	field := env.newGame("minefield", game.Easy)
	mine := findCell(t, field, func(v byte) bool { return v == game.WireMine })
	row, col := byte(mine/5), byte(mine%5)
	r := env.expectReplyOf("click mine", comm.CmdClick, comm.StatusLose, row, col)
	require.Equal(t, []byte{row, col, game.WireMine}, r.Payload)

	safe := findCell(t, field, func(v byte) bool { return v != game.WireMine })
	env.send(comm.CmdClick, byte(safe/5), byte(safe%5))
	env.expectSilence("click after lose")
	env.send(comm.CmdClick, row, col)
	env.expectSilence("click mine again")

	require.Equal(t, []events.EventKind{events.EventGameStarted, events.EventGameEnded}, env.bus.kinds())
	require.Equal(t, uint64(2), env.device.Stats().Ignored)
}

func (e *deviceTestEnv) expectReplyOf(name string, cmd comm.Command, status comm.Status, payload ...byte) *comm.Response {
	e.send(cmd, payload...)
	return e.expectReply(name, cmd, status)
}

func TestClickIdempotent(t *testing.T) {
	env := newDeviceTestEnv(t, game.CanonicalTiers).start()
	defer env.stop()

	field := env.newGame("minefield", game.Easy)
	numbered := findCell(t, field, func(v byte) bool { return v > 0 && v <= 8 })
	row, col := byte(numbered/5), byte(numbered%5)
	first := env.expectReplyOf("click", comm.CmdClick, comm.StatusOK, row, col)
	require.Equal(t, []byte{row, col, field[numbered]}, first.Payload)
	second := env.expectReplyOf("click again", comm.CmdClick, comm.StatusOK, row, col)
	require.Equal(t, first.Payload, second.Payload)
}

func TestBadChecksum(t *testing.T) {
	env := newDeviceTestEnv(t, game.CanonicalTiers).start()
	defer env.stop()

	env.inject('M', 1, 'E', 0)
	env.expectSilence("bad checksum")
	require.Empty(t, env.bus.kinds())

	env.expectReplyOf("abort", comm.CmdAbort, comm.StatusOK)
	require.Equal(t, uint64(1), env.device.Stats().Dropped)
}

func TestPartialFrameDiscarded(t *testing.T) {
	env := newDeviceTestEnv(t, game.CanonicalTiers)
	env.device.IdleTimeout = 20 * time.Millisecond
	env.start()
	defer env.stop()

	env.inject('C', 2, 1)
	time.Sleep(100 * time.Millisecond)
	env.expectReplyOf("abort", comm.CmdAbort, comm.StatusOK)
	require.Equal(t, uint64(1), env.device.Stats().Dropped)
}

func TestRejectedRequests(t *testing.T) {
	testCases := []struct {
		name    string
		cmd     comm.Command
		payload []byte
	}{
		{"unknown command", 'Z', nil},
		{"unknown difficulty", comm.CmdMinefield, []byte{'X'}},
		{"minefield without difficulty", comm.CmdMinefield, nil},
		{"click with one coordinate", comm.CmdClick, []byte{1}},
		{"abort with payload", comm.CmdAbort, []byte{1}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			env := newDeviceTestEnv(t, game.CanonicalTiers).start()
			defer env.stop()
			r := env.expectReplyOf(tc.name, tc.cmd, comm.StatusError, tc.payload...)
			require.Empty(t, r.Payload)
			env.send(comm.CmdClick, 0, 0)
			env.expectSilence("session stays idle")
		})
	}
}

func TestGenerationFailure(t *testing.T) {
	env := newDeviceTestEnv(t, game.Tiers{game.Easy: {Size: 3, Mines: 9}}).start()
	defer env.stop()

	env.expectReplyOf("minefield", comm.CmdMinefield, comm.StatusError, byte(game.Easy))
	env.send(comm.CmdClick, 0, 0)
	env.expectSilence("click")
	require.Equal(t, []events.EventKind{events.EventGameFailed}, env.bus.kinds())
}

func TestFailedNewGameKeepsActiveGame(t *testing.T) {
	env := newDeviceTestEnv(t, game.CanonicalTiers)
	env.device.TickInterval = 20 * time.Millisecond
	env.start()
	defer env.stop()

	field := env.newGame("minefield", game.Easy)
	select {
	case secs := <-env.tickCh:
		require.Equal(t, uint32(1), secs)
	case <-time.After(500 * time.Millisecond):
		t.Fatal("tick timeout")
	}

	env.expectReplyOf("unknown difficulty", comm.CmdMinefield, comm.StatusError, 'X')

	// the running game keeps its timer and its field.
	var last uint32
	for len(env.tickCh) > 0 {
		last = <-env.tickCh
	}
	select {
	case secs := <-env.tickCh:
		require.True(t, secs > last && secs >= 2, "timer continues, got %d after %d", secs, last)
	case <-time.After(500 * time.Millisecond):
		t.Fatal("timer stopped after failed minefield")
	}
	mine := findCell(t, field, func(v byte) bool { return v == game.WireMine })
	r := env.expectReplyOf("click old field", comm.CmdClick, comm.StatusLose, byte(mine/5), byte(mine%5))
	require.Equal(t, []byte{byte(mine / 5), byte(mine % 5), game.WireMine}, r.Payload)
	require.Equal(t, []events.EventKind{
		events.EventGameStarted,
		events.EventGameFailed,
		events.EventGameEnded,
	}, env.bus.kinds())
}

func TestAbort(t *testing.T) {
	env := newDeviceTestEnv(t, game.CanonicalTiers).start()
	defer env.stop()

	field := env.newGame("minefield", game.Medium)
	require.Len(t, field, 100)
	r := env.expectReplyOf("abort", comm.CmdAbort, comm.StatusOK)
	require.Empty(t, r.Payload)
	env.send(comm.CmdClick, 0, 0)
	env.expectSilence("click after abort")
	env.expectReplyOf("abort idle", comm.CmdAbort, comm.StatusOK)

	require.Len(t, env.newGame("new game", game.Hard), 225)
	require.Equal(t, []events.EventKind{
		events.EventGameStarted,
		events.EventAborted,
		events.EventAborted,
		events.EventGameStarted,
	}, env.bus.kinds())
}

func TestTimerLines(t *testing.T) {
	env := newDeviceTestEnv(t, game.CanonicalTiers)
	env.device.TickInterval = 20 * time.Millisecond
	env.start()
	defer env.stop()

	select {
	case secs := <-env.tickCh:
		t.Fatalf("tick %d before a game", secs)
	case <-time.After(100 * time.Millisecond):
	}

	env.newGame("minefield", game.Easy)
	for i := uint32(1); i <= 3; i++ {
		select {
		case secs := <-env.tickCh:
			require.Equal(t, i, secs)
		case <-time.After(500 * time.Millisecond):
			t.Fatalf("tick %d timeout", i)
		}
	}

	env.expectReplyOf("abort", comm.CmdAbort, comm.StatusOK)
	// ticks written before the abort reply may be pending.
	for len(env.tickCh) > 0 {
		<-env.tickCh
	}
	select {
	case secs := <-env.tickCh:
		t.Fatalf("tick %d after abort", secs)
	case <-time.After(100 * time.Millisecond):
	}

	env.newGame("restart", game.Easy)
	select {
	case secs := <-env.tickCh:
		require.Equal(t, uint32(1), secs)
	case <-time.After(500 * time.Millisecond):
		t.Fatal("tick timeout after restart")
	}
}

func TestChunkedReplies(t *testing.T) {
	env := newDeviceTestEnv(t, game.Tiers{game.Easy: {Size: 16, Mines: 1}}).start()
	defer env.stop()

	field := env.newGame("minefield", game.Easy)
	require.Len(t, field, 256)
	zero := findCell(t, field, func(v byte) bool { return v == 0 })
	r := env.expectReplyOf("flood", comm.CmdClick, comm.StatusWin, byte(zero/16), byte(zero%16))
	require.Len(t, r.Payload, 255*3)
	for i := 0; i < len(r.Payload); i += 3 {
		row, col, v := r.Payload[i], r.Payload[i+1], r.Payload[i+2]
		require.Equalf(t, field[int(row)*16+int(col)], v, "cell (%d,%d)", row, col)
		require.NotEqual(t, game.WireMine, v)
	}
}

func TestEncodeFrames(t *testing.T) {
	data, err := encodeFrames(ClickReply(game.OutcomeWin, []game.RevealedCell{{Row: 1, Col: 2, Value: 3}}))
	require.NoError(t, err)
	require.Equal(t, []byte{'C', 2, 3, 1, 2, 3, 'C' ^ 2 ^ 3 ^ 1 ^ 2 ^ 3}, data)

	data, err = encodeFrames(ErrorReply('Z'))
	require.NoError(t, err)
	require.Equal(t, []byte{'Z', 0xff, 0, 'Z' ^ 0xff}, data)
	require.Equal(t, comm.StatusLose, StatusOf(game.OutcomeLose))
	require.Equal(t, comm.StatusOK, StatusOf(game.OutcomeOK))
}
