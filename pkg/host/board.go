package host

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/robotalks/minefield/pkg/comm"
	"github.com/robotalks/minefield/pkg/game"
)

// Board is the host side view of a game: the solved field received from
// MINEFIELD and the cells disclosed by CLICK replies.
type Board struct {
	Size   int
	Status comm.Status

	cells    []byte
	revealed []bool
	opened   int
}

// DecodeMinefield decodes a MINEFIELD payload.
func DecodeMinefield(payload []byte) (*Board, error) {
	size := int(math.Sqrt(float64(len(payload))))
	if size == 0 || size*size != len(payload) {
		return nil, fmt.Errorf("%w: %d cells is not a square", ErrBadPayload, len(payload))
	}
	for i, v := range payload {
		if v > 8 && v != game.WireMine {
			return nil, fmt.Errorf("%w: cell %d value %d", ErrBadPayload, i, v)
		}
	}
	return &Board{
		Size:     size,
		cells:    append([]byte(nil), payload...),
		revealed: make([]bool, len(payload)),
	}, nil
}

// InBounds checks the coordinates.
func (b *Board) InBounds(row, col int) bool {
	return row >= 0 && row < b.Size && col >= 0 && col < b.Size
}

// At returns the solved value of a cell and whether it was revealed.
func (b *Board) At(row, col int) (byte, bool) {
	i := row*b.Size + col
	return b.cells[i], b.revealed[i]
}

// Mines counts mines on the board.
func (b *Board) Mines() (n int) {
	for _, v := range b.cells {
		if v == game.WireMine {
			n++
		}
	}
	return
}

// Opened returns the number of revealed cells.
func (b *Board) Opened() int {
	return b.opened
}

// Over indicates the game was won or lost.
func (b *Board) Over() bool {
	return b.Status == comm.StatusLose || b.Status == comm.StatusWin
}

// Apply records a CLICK reply.
func (b *Board) Apply(status comm.Status, payload []byte) error {
	if len(payload)%3 != 0 {
		return fmt.Errorf("%w: %d bytes is not a list of triples", ErrBadPayload, len(payload))
	}
	for i := 0; i < len(payload); i += 3 {
		row, col, v := int(payload[i]), int(payload[i+1]), payload[i+2]
		if !b.InBounds(row, col) {
			return fmt.Errorf("%w: cell (%d,%d)", ErrBadPayload, row, col)
		}
		n := row*b.Size + col
		if b.cells[n] != v {
			return fmt.Errorf("%w: cell (%d,%d) is %d, expected %d", ErrBadPayload, row, col, v, b.cells[n])
		}
		if !b.revealed[n] {
			b.revealed[n] = true
			b.opened++
		}
	}
	b.Status = status
	return nil
}

// Render writes the board as text. Hidden cells are '#', unless all is
// set, mines are '*', empty cells are '.'.
func (b *Board) Render(w io.Writer, all bool) error {
	var sb strings.Builder
	sb.WriteString("   ")
	for col := 0; col < b.Size; col++ {
		fmt.Fprintf(&sb, "%2d", col)
	}
	sb.WriteByte('\n')
	for row := 0; row < b.Size; row++ {
		fmt.Fprintf(&sb, "%2d ", row)
		for col := 0; col < b.Size; col++ {
			v, revealed := b.At(row, col)
			sb.WriteByte(' ')
			switch {
			case !revealed && !all:
				sb.WriteByte('#')
			case v == game.WireMine:
				sb.WriteByte('*')
			case v == 0:
				sb.WriteByte('.')
			default:
				sb.WriteByte('0' + v)
			}
		}
		sb.WriteByte('\n')
	}
	_, err := io.WriteString(w, sb.String())
	return err
}
