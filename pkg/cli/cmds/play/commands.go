package play

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/minefield/pkg/cli/sh"
	"github.com/robotalks/minefield/pkg/comm"
	"github.com/robotalks/minefield/pkg/game"
	"github.com/robotalks/minefield/pkg/host"
)

// BoardView is the printable summary of a board.
type BoardView struct {
	Size    int    `json:"size"`
	Mines   int    `json:"mines"`
	Opened  int    `json:"opened"`
	Status  string `json:"status"`
	Elapsed uint32 `json:"elapsed"`
	Board   string `json:"board,omitempty"`
}

// ViewOf summarizes a board.
func ViewOf(b *host.Board, elapsed uint32, all bool) *BoardView {
	v := &BoardView{
		Size:    b.Size,
		Mines:   b.Mines(),
		Opened:  b.Opened(),
		Status:  b.Status.String(),
		Elapsed: elapsed,
	}
	var buf bytes.Buffer
	b.Render(&buf, all)
	v.Board = buf.String()
	return v
}

// String implements fmt.Stringer.
func (v *BoardView) String() string {
	return fmt.Sprintf("%s%dx%d mines=%d opened=%d status=%s time=%ds\n",
		v.Board, v.Size, v.Size, v.Mines, v.Opened, v.Status, v.Elapsed)
}

func show(c *ishell.Context, all bool) {
	s := sh.ShellFrom(c)
	if s.Conn.Board == nil {
		c.Err(host.ErrNoGame)
		return
	}
	v := ViewOf(s.Conn.Board, s.Conn.Elapsed(), all)
	s.Output(c, v, v.String())
}

var (
	// NewGameCmd starts a game.
	NewGameCmd = ishell.Cmd{
		Name:    "new",
		Aliases: []string{"n"},
		Help:    "easy|medium|hard",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			d := game.Easy
			if len(c.Args) > 0 {
				var err error
				if d, err = game.ParseDifficulty(c.Args[0]); err != nil {
					c.Err(err)
					return
				}
			}
			s := sh.ShellFrom(c)
			ctx, cancel := s.CommandContext()
			defer cancel()
			if _, err := s.Conn.New(ctx, d); err != nil {
				c.Err(err)
				return
			}
			show(c, false)
		}),
	}

	// ClickCmd opens a cell.
	ClickCmd = ishell.Cmd{
		Name:    "click",
		Aliases: []string{"c"},
		Help:    "ROW COL",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			if len(c.Args) < 2 {
				c.Err(fmt.Errorf("ROW and COL required"))
				return
			}
			row, err := strconv.Atoi(c.Args[0])
			if err != nil {
				c.Err(fmt.Errorf("Invalid ROW: %v", err))
				return
			}
			col, err := strconv.Atoi(c.Args[1])
			if err != nil {
				c.Err(fmt.Errorf("Invalid COL: %v", err))
				return
			}
			s := sh.ShellFrom(c)
			ctx, cancel := s.CommandContext()
			defer cancel()
			status, err := s.Conn.Click(ctx, row, col)
			if err != nil {
				c.Err(err)
				return
			}
			show(c, status != comm.StatusOK)
		}),
	}

	// AbortCmd abandons the game.
	AbortCmd = ishell.Cmd{
		Name:    "abort",
		Aliases: []string{"a"},
		Help:    "",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			s := sh.ShellFrom(c)
			ctx, cancel := s.CommandContext()
			defer cancel()
			if err := s.Conn.Abort(ctx); err != nil {
				c.Err(err)
				return
			}
			s.Output(c, map[string]string{"status": "ok"}, "OK\n")
		}),
	}

	// ShowCmd prints the board.
	ShowCmd = ishell.Cmd{
		Name:    "show",
		Aliases: []string{"s"},
		Help:    "[all]",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			show(c, len(c.Args) > 0 && c.Args[0] == "all")
		}),
	}

	// TimeCmd prints the elapsed game time.
	TimeCmd = ishell.Cmd{
		Name:    "time",
		Aliases: []string{"t"},
		Help:    "",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			s := sh.ShellFrom(c)
			secs := s.Conn.Elapsed()
			s.Output(c, map[string]uint32{"elapsed": secs}, fmt.Sprintf("%ds\n", secs))
		}),
	}
)

func init() {
	sh.AddCmds(
		&NewGameCmd,
		&ClickCmd,
		&AbortCmd,
		&ShowCmd,
		&TimeCmd,
	)
}
