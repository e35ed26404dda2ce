package game

import (
	"math/rand"
	"time"
)

// State is the state of a Session.
type State int

// States
const (
	// StateIdle means no game: never started or aborted.
	StateIdle State = iota
	// StateActive means a game is accepting clicks.
	StateActive
	// StateEnded means the game was won or lost.
	StateEnded
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateActive:
		return "active"
	case StateEnded:
		return "ended"
	}
	return "unknown"
}

// Outcome is the result of a click.
type Outcome int

// Outcomes
const (
	OutcomeOK Outcome = iota
	OutcomeLose
	OutcomeWin
)

// String implements fmt.Stringer.
func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeLose:
		return "lose"
	case OutcomeWin:
		return "win"
	}
	return "unknown"
}

// RevealedCell is a disclosed cell as reported to hosts.
type RevealedCell struct {
	Row   byte
	Col   byte
	Value byte
}

// Session is the single game held by the device. It's not safe for
// concurrent use; the device loop owns it.
type Session struct {
	Tiers Tiers
	Rand  *rand.Rand

	state      State
	outcome    Outcome
	difficulty Difficulty
	field      *Field
	mask       *Mask
	opened     int
	elapsed    uint32
	running    bool
}

// NewSession creates an idle Session.
func NewSession(tiers Tiers, rng *rand.Rand) *Session {
	if tiers == nil {
		tiers = CanonicalTiers
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Session{Tiers: tiers, Rand: rng}
}

// State returns the current state.
func (s *Session) State() State {
	return s.state
}

// Outcome returns the outcome of the last handled click.
func (s *Session) Outcome() Outcome {
	return s.outcome
}

// Difficulty returns the difficulty of the current field.
func (s *Session) Difficulty() Difficulty {
	return s.difficulty
}

// Field returns the current field, nil before the first game.
func (s *Session) Field() *Field {
	return s.field
}

// Mask returns the current reveal mask, nil before the first game.
func (s *Session) Mask() *Mask {
	return s.mask
}

// Opened returns the number of revealed cells counted in this game.
func (s *Session) Opened() int {
	return s.opened
}

// Elapsed returns the elapsed seconds of the current game.
func (s *Session) Elapsed() uint32 {
	return s.elapsed
}

// TimerRunning indicates the timer is counting.
func (s *Session) TimerRunning() bool {
	return s.running
}

// NewGame generates a new field and starts the timer. On error the
// session is left unchanged.
func (s *Session) NewGame(d Difficulty) error {
	tier, err := s.Tiers.Lookup(d)
	if err != nil {
		return err
	}
	field, err := Generate(tier, s.Rand)
	if err != nil {
		return err
	}
	s.start(d, field)
	return nil
}

// NewGameWith starts a game on a prepared field.
func (s *Session) NewGameWith(d Difficulty, field *Field) {
	s.start(d, field)
}

func (s *Session) start(d Difficulty, field *Field) {
	s.difficulty, s.field = d, field
	s.mask = NewMask(field.Size)
	s.opened, s.elapsed = 0, 0
	s.running = true
	s.state, s.outcome = StateActive, OutcomeOK
}

// Click opens row, col. It returns false when the click is ignored: the
// session isn't active or the coordinates are out of range.
func (s *Session) Click(row, col int) (Outcome, bool) {
	if s.state != StateActive || !s.field.InBounds(row, col) {
		return s.outcome, false
	}
	s.opened += Open(s.field, s.mask, row, col)
	switch {
	case s.field.At(row, col).IsMine():
		s.end(OutcomeLose)
	case s.opened >= s.field.SafeCells():
		s.end(OutcomeWin)
	default:
		s.outcome = OutcomeOK
	}
	return s.outcome, true
}

func (s *Session) end(o Outcome) {
	s.state, s.outcome, s.running = StateEnded, o, false
}

// Abort stops the timer and returns to idle. The reveal mask is kept
// until the next NewGame.
func (s *Session) Abort() {
	s.running, s.opened = false, 0
	s.state, s.outcome = StateIdle, OutcomeOK
}

// Tick advances the timer by one second if running.
func (s *Session) Tick() (uint32, bool) {
	if !s.running {
		return s.elapsed, false
	}
	s.elapsed++
	return s.elapsed, true
}

// Revealed lists all revealed cells in row-major order.
func (s *Session) Revealed() []RevealedCell {
	if s.mask == nil {
		return nil
	}
	cells := make([]RevealedCell, 0, s.opened)
	for row := 0; row < s.field.Size; row++ {
		for col := 0; col < s.field.Size; col++ {
			if s.mask.Revealed(row, col) {
				cells = append(cells, RevealedCell{
					Row:   byte(row),
					Col:   byte(col),
					Value: s.field.At(row, col).Wire(),
				})
			}
		}
	}
	return cells
}
