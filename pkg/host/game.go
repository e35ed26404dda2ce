package host

import (
	"context"

	"github.com/robotalks/minefield/pkg/comm"
	"github.com/robotalks/minefield/pkg/game"
)

// Game issues game commands and keeps the Board up to date.
type Game struct {
	Client *comm.Client
	Board  *Board
}

// NewGame wraps a client.
func NewGame(client *comm.Client) *Game {
	return &Game{Client: client}
}

// New starts a game.
func (g *Game) New(ctx context.Context, d game.Difficulty) (*Board, error) {
	resp, err := g.Client.Do(ctx, &comm.Request{Cmd: comm.CmdMinefield, Payload: []byte{byte(d)}})
	if err != nil {
		return nil, err
	}
	board, err := DecodeMinefield(resp.Payload)
	if err != nil {
		return nil, err
	}
	g.Board = board
	return board, nil
}

// Click opens a cell. Clicks the device would ignore are refused locally
// as the device doesn't reply to them.
func (g *Game) Click(ctx context.Context, row, col int) (comm.Status, error) {
	switch {
	case g.Board == nil:
		return 0, ErrNoGame
	case g.Board.Over():
		return g.Board.Status, ErrGameOver
	case !g.Board.InBounds(row, col):
		return 0, ErrOutOfRange
	}
	resp, err := g.Client.Do(ctx, &comm.Request{Cmd: comm.CmdClick, Payload: []byte{byte(row), byte(col)}})
	if err != nil {
		return 0, err
	}
	if err = g.Board.Apply(resp.Status, resp.Payload); err != nil {
		return 0, err
	}
	return resp.Status, nil
}

// Abort abandons the game.
func (g *Game) Abort(ctx context.Context) error {
	if _, err := g.Client.Do(ctx, &comm.Request{Cmd: comm.CmdAbort}); err != nil {
		return err
	}
	g.Board = nil
	return nil
}
