package game

import "math/rand"

// Cell is the value of a cell: Mine or the number of adjacent mines.
type Cell int8

// Mine is the in-memory value of a mined cell.
const Mine Cell = -1

// WireMine is the value of a mined cell on the wire.
const WireMine byte = 9

// IsMine indicates the cell is a mine.
func (c Cell) IsMine() bool {
	return c == Mine
}

// Wire returns the byte sent to hosts.
func (c Cell) Wire() byte {
	if c.IsMine() {
		return WireMine
	}
	return byte(c)
}

// Field is a square grid of cells, stored row-major.
type Field struct {
	Size  int
	Mines int
	cells []Cell
}

// NewField creates an empty (all-zero) field.
func NewField(size int) *Field {
	return &Field{Size: size, cells: make([]Cell, size*size)}
}

// Generate builds a solved field for the tier.
func Generate(tier Tier, rng *rand.Rand) (*Field, error) {
	if err := tier.Validate(); err != nil {
		return nil, err
	}
	f := NewField(tier.Size)
	f.placeMines(tier.Mines, rng)
	f.countNeighbors()
	return f, nil
}

// FieldFromMines builds a solved field with mines at the given indices
// (row*size+col). Duplicates are ignored.
func FieldFromMines(size int, mines ...int) *Field {
	f := NewField(size)
	for _, i := range mines {
		if i >= 0 && i < len(f.cells) && !f.cells[i].IsMine() {
			f.cells[i] = Mine
			f.Mines++
		}
	}
	f.countNeighbors()
	return f
}

// InBounds checks the coordinates.
func (f *Field) InBounds(row, col int) bool {
	return row >= 0 && row < f.Size && col >= 0 && col < f.Size
}

// At returns the cell at row, col.
func (f *Field) At(row, col int) Cell {
	return f.cells[row*f.Size+col]
}

// Cells returns the number of cells.
func (f *Field) Cells() int {
	return len(f.cells)
}

// SafeCells returns the number of cells without mine.
func (f *Field) SafeCells() int {
	return len(f.cells) - f.Mines
}

// Wire returns all cells in row-major order as sent to hosts.
func (f *Field) Wire() []byte {
	b := make([]byte, len(f.cells))
	for i, c := range f.cells {
		b[i] = c.Wire()
	}
	return b
}

// placeMines uses rejection sampling; it terminates only when
// mines < cells, which Tier.Validate guarantees.
func (f *Field) placeMines(mines int, rng *rand.Rand) {
	for placed := 0; placed < mines; {
		i := rng.Intn(len(f.cells))
		if !f.cells[i].IsMine() {
			f.cells[i] = Mine
			placed++
		}
	}
	f.Mines = mines
}

func (f *Field) countNeighbors() {
	for row := 0; row < f.Size; row++ {
		for col := 0; col < f.Size; col++ {
			i := row*f.Size + col
			if f.cells[i].IsMine() {
				continue
			}
			var count Cell
			f.forNeighbors(row, col, func(r, c int) {
				if f.At(r, c).IsMine() {
					count++
				}
			})
			f.cells[i] = count
		}
	}
}

// forNeighbors calls fn for each in-bound cell of the 8-neighborhood.
func (f *Field) forNeighbors(row, col int, fn func(r, c int)) {
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			if dr == 0 && dc == 0 {
				continue
			}
			if r, c := row+dr, col+dc; f.InBounds(r, c) {
				fn(r, c)
			}
		}
	}
}
