package comm

import "strconv"

// DropReason tells why accumulated bytes were discarded.
type DropReason int

const (
	// DropNone means nothing was dropped.
	DropNone DropReason = iota
	// DropChecksum means a complete frame failed checksum verification.
	DropChecksum
	// DropTimeout means a partial frame was pending for too long.
	DropTimeout
	// DropBadLine means a timer line contained unexpected bytes.
	DropBadLine
)

// String implements fmt.Stringer.
func (r DropReason) String() string {
	switch r {
	case DropNone:
		return "none"
	case DropChecksum:
		return "checksum mismatch"
	case DropTimeout:
		return "timeout"
	case DropBadLine:
		return "bad timer line"
	}
	return "unknown(" + strconv.Itoa(int(r)) + ")"
}

// TimerAction defines what to do with the idle timer.
type TimerAction int

const (
	// TimerNoChange indicates keep the timer as-is.
	TimerNoChange TimerAction = iota
	// TimerRestart to restart the timer.
	TimerRestart
	// TimerStop to stop/cancel the timer.
	TimerStop
)

// Tick is a decoded timer line.
type Tick struct {
	Seconds uint32
}

// ParseResult indicates the result after one parsing step.
type ParseResult struct {
	// Request is set when a valid request frame completes.
	Request *Request
	// Response is set when a valid response frame completes.
	Response *Response
	// Tick is set when a timer line completes.
	Tick *Tick
	// Dropped is set when bytes were discarded.
	Dropped DropReason
	// Receiving is true when in the middle of a frame or line.
	Receiving bool
}

// WhatAboutTimer decides what to do with the idle timer.
func (r ParseResult) WhatAboutTimer() TimerAction {
	if r.Receiving {
		return TimerRestart
	}
	return TimerStop
}

// frameAccumulator collects bytes until the declared length is reached.
type frameAccumulator struct {
	buf []byte
	// headerLen is the number of bytes up to and including the length byte.
	headerLen int
}

func (a *frameAccumulator) pending() bool {
	return len(a.buf) > 0
}

func (a *frameAccumulator) reset() {
	a.buf = a.buf[:0]
}

// add appends b and returns the complete frame bytes, if any.
func (a *frameAccumulator) add(b byte) (frame []byte, dropped DropReason) {
	a.buf = append(a.buf, b)
	if len(a.buf) < a.headerLen {
		return
	}
	expected := a.headerLen + int(a.buf[a.headerLen-1]) + 1
	if len(a.buf) < expected {
		return
	}
	if Checksum(a.buf[:expected-1]) != a.buf[expected-1] {
		dropped = DropChecksum
	} else {
		frame = append([]byte(nil), a.buf...)
	}
	a.reset()
	return
}

// RequestParser parses bytes received by the device.
type RequestParser struct {
	acc frameAccumulator
}

// NewRequestParser creates a RequestParser.
func NewRequestParser() *RequestParser {
	return &RequestParser{acc: frameAccumulator{headerLen: 2}}
}

// Parse consumes one byte.
func (p *RequestParser) Parse(b byte) (pr ParseResult) {
	if p.acc.headerLen == 0 {
		p.acc.headerLen = 2
	}
	frame, dropped := p.acc.add(b)
	if frame != nil {
		pr.Request = &Request{Cmd: Command(frame[0]), Payload: frame[2 : len(frame)-1]}
	}
	pr.Dropped, pr.Receiving = dropped, p.acc.pending()
	return
}

// Feed consumes a chunk of bytes and returns results which carry either a
// request or a drop.
func (p *RequestParser) Feed(data []byte) (results []ParseResult) {
	for _, b := range data {
		if pr := p.Parse(b); pr.Request != nil || pr.Dropped != DropNone {
			results = append(results, pr)
		}
	}
	return
}

// Timeout notifies the parser the idle timer expires.
func (p *RequestParser) Timeout() (pr ParseResult) {
	if p.acc.pending() {
		p.acc.reset()
		pr.Dropped = DropTimeout
	}
	return
}

// Reset discards any partial frame.
func (p *RequestParser) Reset() {
	p.acc.reset()
}

type responseState int

const (
	stateBoundary  responseState = iota // between frames/lines
	stateFrame                          // inside a response frame
	stateTimerLine                      // inside a timer line
)

// maxTimerDigits bounds a timer line, enough for any uint32.
const maxTimerDigits = 10

// ResponseParser parses bytes received by the host: response frames
// interleaved with timer lines.
type ResponseParser struct {
	state responseState
	acc   frameAccumulator
	line  []byte
}

// NewResponseParser creates a ResponseParser.
func NewResponseParser() *ResponseParser {
	return &ResponseParser{acc: frameAccumulator{headerLen: 3}}
}

// Parse consumes one byte.
func (p *ResponseParser) Parse(b byte) (pr ParseResult) {
	if p.acc.headerLen == 0 {
		p.acc.headerLen = 3
	}
	switch p.state {
	case stateBoundary:
		if b == TimerPrefix {
			p.state, p.line = stateTimerLine, p.line[:0]
			break
		}
		p.state = stateFrame
		pr = p.parseFrame(b)
	case stateFrame:
		pr = p.parseFrame(b)
	case stateTimerLine:
		pr = p.parseLine(b)
	}
	pr.Receiving = p.state != stateBoundary
	return
}

// Feed consumes a chunk of bytes and returns results which carry a
// response, a tick or a drop.
func (p *ResponseParser) Feed(data []byte) (results []ParseResult) {
	for _, b := range data {
		if pr := p.Parse(b); pr.Response != nil || pr.Tick != nil || pr.Dropped != DropNone {
			results = append(results, pr)
		}
	}
	return
}

// Timeout notifies the parser the idle timer expires.
func (p *ResponseParser) Timeout() (pr ParseResult) {
	if p.state != stateBoundary {
		p.Reset()
		pr.Dropped = DropTimeout
	}
	return
}

// Reset discards any partial frame or line.
func (p *ResponseParser) Reset() {
	p.state = stateBoundary
	p.acc.reset()
	p.line = p.line[:0]
}

func (p *ResponseParser) parseFrame(b byte) (pr ParseResult) {
	frame, dropped := p.acc.add(b)
	if frame != nil {
		pr.Response = &Response{
			Cmd:     Command(frame[0]),
			Status:  Status(frame[1]),
			Payload: frame[3 : len(frame)-1],
		}
	}
	pr.Dropped = dropped
	if !p.acc.pending() {
		p.state = stateBoundary
	}
	return
}

func (p *ResponseParser) parseLine(b byte) (pr ParseResult) {
	switch {
	case b == '\n':
		p.state = stateBoundary
		if len(p.line) == 0 {
			pr.Dropped = DropBadLine
			return
		}
		secs, err := strconv.ParseUint(string(p.line), 10, 32)
		if err != nil {
			pr.Dropped = DropBadLine
			return
		}
		pr.Tick = &Tick{Seconds: uint32(secs)}
	case b == '\r':
	case b >= '0' && b <= '9' && len(p.line) < maxTimerDigits:
		p.line = append(p.line, b)
	default:
		p.Reset()
		pr.Dropped = DropBadLine
	}
	return
}
