package game

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestSession() *Session {
	return NewSession(CanonicalTiers, rand.New(rand.NewSource(1)))
}

func TestSessionNewGame(t *testing.T) {
	s := newTestSession()
	require.Equal(t, StateIdle, s.State())
	require.False(t, s.TimerRunning())

	require.NoError(t, s.NewGame(Easy))
	require.Equal(t, StateActive, s.State())
	require.True(t, s.TimerRunning())
	require.Equal(t, 5, s.Field().Size)
	require.Equal(t, 5, s.Field().Mines)
	require.Equal(t, 0, s.Opened())
	require.Equal(t, 0, s.Mask().Count())
	require.Equal(t, Easy, s.Difficulty())
}

func TestSessionNewGameErrors(t *testing.T) {
	s := newTestSession()
	require.Error(t, s.NewGame(Difficulty('X')))
	require.Equal(t, StateIdle, s.State())

	s.Tiers = Tiers{Easy: {Size: 5, Mines: 25}}
	require.Equal(t, ErrTooManyMines, s.NewGame(Easy))
	require.Equal(t, StateIdle, s.State())
	require.Nil(t, s.Field())
	require.False(t, s.TimerRunning())
}

func TestSessionLose(t *testing.T) {
	s := newTestSession()
	s.NewGameWith(Easy, wallField())
	o, ok := s.Click(0, 0)
	require.True(t, ok)
	require.Equal(t, OutcomeOK, o)
	require.Equal(t, 10, s.Opened())

	o, ok = s.Click(2, 2)
	require.True(t, ok)
	require.Equal(t, OutcomeLose, o)
	require.Equal(t, StateEnded, s.State())
	require.False(t, s.TimerRunning())
	require.Equal(t, 11, s.Opened())

	_, ok = s.Click(0, 4)
	require.False(t, ok)
	require.Equal(t, 11, s.Opened())
	require.False(t, s.Mask().Revealed(0, 4))
}

func TestSessionLoseFirstClick(t *testing.T) {
	s := newTestSession()
	s.NewGameWith(Easy, wallField())
	o, ok := s.Click(0, 2)
	require.True(t, ok)
	require.Equal(t, OutcomeLose, o)
	require.Equal(t, []RevealedCell{{Row: 0, Col: 2, Value: WireMine}}, s.Revealed())
}

func TestSessionWin(t *testing.T) {
	s := newTestSession()
	s.NewGameWith(Easy, wallField())
	o, _ := s.Click(0, 0)
	require.Equal(t, OutcomeOK, o)
	o, _ = s.Click(4, 4)
	require.Equal(t, OutcomeWin, o)
	require.Equal(t, s.Field().SafeCells(), s.Opened())
	require.Equal(t, StateEnded, s.State())
	require.False(t, s.TimerRunning())

	// the game is over, even a mine can't be opened.
	_, ok := s.Click(0, 2)
	require.False(t, ok)
	require.Equal(t, OutcomeWin, s.Outcome())
}

func TestSessionWinSingleFlood(t *testing.T) {
	s := newTestSession()
	s.NewGameWith(Easy, FieldFromMines(5, 24))
	o, ok := s.Click(0, 0)
	require.True(t, ok)
	require.Equal(t, OutcomeWin, o)
	require.Equal(t, 24, s.Opened())
}

func TestSessionClickIdempotent(t *testing.T) {
	s := newTestSession()
	s.NewGameWith(Easy, wallField())
	s.Click(0, 0)
	before := s.Revealed()
	o, ok := s.Click(1, 1)
	require.True(t, ok)
	require.Equal(t, OutcomeOK, o)
	require.Equal(t, 10, s.Opened())
	require.Equal(t, before, s.Revealed())
}

func TestSessionClickIgnored(t *testing.T) {
	s := newTestSession()
	_, ok := s.Click(0, 0)
	require.False(t, ok, "idle")

	s.NewGameWith(Easy, wallField())
	for _, rc := range [][2]int{{-1, 0}, {5, 0}, {0, 5}, {255, 255}} {
		_, ok = s.Click(rc[0], rc[1])
		require.Falsef(t, ok, "%v", rc)
	}
	require.Equal(t, 0, s.Opened())
}

func TestSessionAbort(t *testing.T) {
	s := newTestSession()
	s.NewGameWith(Easy, wallField())
	s.Click(0, 0)
	s.Tick()
	s.Abort()
	require.Equal(t, StateIdle, s.State())
	require.False(t, s.TimerRunning())
	require.Equal(t, 0, s.Opened())
	// the mask survives an abort.
	require.True(t, s.Mask().Revealed(0, 0))
	_, ok := s.Click(0, 3)
	require.False(t, ok)

	require.NoError(t, s.NewGame(Medium))
	require.Equal(t, 0, s.Mask().Count())
	require.Equal(t, uint32(0), s.Elapsed())
}

func TestSessionTick(t *testing.T) {
	s := newTestSession()
	_, running := s.Tick()
	require.False(t, running)

	s.NewGameWith(Easy, wallField())
	for i := uint32(1); i <= 3; i++ {
		secs, running := s.Tick()
		require.True(t, running)
		require.Equal(t, i, secs)
	}
	s.Click(0, 2)
	secs, running := s.Tick()
	require.False(t, running)
	require.Equal(t, uint32(3), secs)

	require.NoError(t, s.NewGame(Easy))
	secs, _ = s.Tick()
	require.Equal(t, uint32(1), secs)
}

func TestSessionRevealed(t *testing.T) {
	s := newTestSession()
	require.Empty(t, s.Revealed())
	s.NewGameWith(Easy, wallField())
	s.Click(2, 3)
	require.Equal(t, []RevealedCell{{Row: 2, Col: 3, Value: 3}}, s.Revealed())
	s.Click(0, 0)
	cells := s.Revealed()
	require.Len(t, cells, 11)
	require.Equal(t, RevealedCell{Row: 0, Col: 0, Value: 0}, cells[0])
	require.Equal(t, RevealedCell{Row: 0, Col: 1, Value: 2}, cells[1])
}
