package game

// Mask marks the cells disclosed to the host.
type Mask struct {
	size     int
	revealed []bool
}

// NewMask creates a mask with nothing revealed.
func NewMask(size int) *Mask {
	return &Mask{size: size, revealed: make([]bool, size*size)}
}

// Size returns the side of the mask.
func (m *Mask) Size() int {
	return m.size
}

// Revealed checks whether row, col is revealed.
func (m *Mask) Revealed(row, col int) bool {
	return m.revealed[row*m.size+col]
}

// Count returns the number of revealed cells.
func (m *Mask) Count() (n int) {
	for _, r := range m.revealed {
		if r {
			n++
		}
	}
	return
}

// Open reveals row, col and floods through zero-valued cells. It returns
// the number of newly revealed cells: 0 when out of bounds or already
// revealed. The field and mask must have the same size.
func Open(f *Field, m *Mask, row, col int) int {
	if !f.InBounds(row, col) || m.Revealed(row, col) {
		return 0
	}
	var opened int
	stack := []int{row*f.Size + col}
	m.revealed[stack[0]] = true
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		opened++
		if f.cells[i] != 0 {
			continue
		}
		f.forNeighbors(i/f.Size, i%f.Size, func(r, c int) {
			if j := r*f.Size + c; !m.revealed[j] {
				m.revealed[j] = true
				stack = append(stack, j)
			}
		})
	}
	return opened
}
