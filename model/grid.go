package model

import (
	"crypto/md5"
	"fmt"
	"math"
	"strings"

	"github.com/pkg/errors"
)

var (
	ErrInvalidDimensions = errors.New("grid dimensions must be non-negative and fit in memory")
	ErrNonRectangular    = errors.New("grid rows must all have the same length")
	ErrInvalidCell       = errors.New("cell value is neither dead nor alive")
	ErrOutOfBounds       = errors.New("cell coordinates are outside the grid")
)

// Grid is a fixed-size, dense board of cells stored row-major in a flat buffer.
// The shape is set at construction and never changes.
type Grid struct {
	rows  int
	cols  int
	cells []Cell
}

// NewGrid creates an all-dead grid with the specified dimensions
func NewGrid(rows, cols int) (*Grid, error) {
	if !validDimensions(rows, cols) {
		return nil, errors.Wrapf(ErrInvalidDimensions, "[NewGrid] failed to create %dx%d grid", rows, cols)
	}
	return newGrid(rows, cols), nil
}

// validDimensions reports whether a rows x cols buffer can be allocated
// without the cell count overflowing
func validDimensions(rows, cols int) bool {
	if rows < 0 || cols < 0 {
		return false
	}
	return cols == 0 || rows <= math.MaxInt/cols
}

func newGrid(rows, cols int) *Grid {
	return &Grid{
		rows:  rows,
		cols:  cols,
		cells: make([]Cell, rows*cols),
	}
}

// FromRows builds a grid from nested rows. Every row must have the same length
// and every value must be Dead or Alive.
func FromRows(rows [][]Cell) (*Grid, error) {
	cols := 0
	if len(rows) > 0 {
		cols = len(rows[0])
	}
	g := newGrid(len(rows), cols)
	for i, row := range rows {
		if len(row) != cols {
			return nil, errors.Wrapf(ErrNonRectangular, "[FromRows] row %d has %d cells, want %d", i, len(row), cols)
		}
		for j, c := range row {
			if !c.Valid() {
				return nil, errors.Wrapf(ErrInvalidCell, "[FromRows] value %d at (%d,%d)", uint8(c), i, j)
			}
		}
		copy(g.cells[i*cols:], row)
	}
	return g, nil
}

// Parse reads a grid from text: one line per row, 'O', '#', '*' or '1' for alive
// and '.', '0' or '_' for dead. Blank lines are ignored.
func Parse(s string) (*Grid, error) {
	var rows [][]Cell
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		row := make([]Cell, 0, len(line))
		for _, r := range line {
			switch r {
			case 'O', '#', '*', '1':
				row = append(row, Alive)
			case '.', '0', '_':
				row = append(row, Dead)
			default:
				return nil, errors.Wrapf(ErrInvalidCell, "[Parse] unexpected character %q in row %d", r, len(rows))
			}
		}
		rows = append(rows, row)
	}
	return FromRows(rows)
}

// Rows returns the number of rows
func (g *Grid) Rows() int {
	return g.rows
}

// Cols returns the number of columns
func (g *Grid) Cols() int {
	return g.cols
}

func (g *Grid) inBounds(row, col int) bool {
	return row >= 0 && row < g.rows && col >= 0 && col < g.cols
}

// Get returns the state of a cell; coordinates outside the grid read as dead
func (g *Grid) Get(row, col int) Cell {
	if !g.inBounds(row, col) {
		return Dead
	}
	return g.cells[row*g.cols+col]
}

// Set sets a cell; coordinates outside the grid are ignored
func (g *Grid) Set(row, col int, c Cell) {
	if g.inBounds(row, col) {
		g.cells[row*g.cols+col] = CellOf(c.IsAlive())
	}
}

// Toggle flips a single cell in place
func (g *Grid) Toggle(row, col int) error {
	if !g.inBounds(row, col) {
		return errors.Wrapf(ErrOutOfBounds, "[Toggle] (%d,%d) in %dx%d grid", row, col, g.rows, g.cols)
	}
	i := row*g.cols + col
	g.cells[i] = g.cells[i].Flip()
	return nil
}

// Row returns a view of row i. Writes through the view change the grid, but the
// view cannot be grown past the row.
func (g *Grid) Row(i int) []Cell {
	if i < 0 || i >= g.rows {
		return nil
	}
	start, end := i*g.cols, (i+1)*g.cols
	return g.cells[start:end:end]
}

// ToRows returns an independent copy of the grid as nested rows
func (g *Grid) ToRows() [][]Cell {
	out := make([][]Cell, g.rows)
	for i := range out {
		out[i] = make([]Cell, g.cols)
		copy(out[i], g.Row(i))
	}
	return out
}

// Clone returns a deep copy sharing no storage with g
func (g *Grid) Clone() *Grid {
	next := newGrid(g.rows, g.cols)
	copy(next.cells, g.cells)
	return next
}

// Equal reports whether both grids have the same shape and cells
func (g *Grid) Equal(other *Grid) bool {
	if g == nil || other == nil {
		return g == other
	}
	if g.rows != other.rows || g.cols != other.cols {
		return false
	}
	for i := range g.cells {
		if g.cells[i] != other.cells[i] {
			return false
		}
	}
	return true
}

// CountNeighbors counts living cells in the Moore neighborhood of (row, col).
// Neighbors outside the grid do not exist; there is no wrap-around.
func (g *Grid) CountNeighbors(row, col int) int {
	count := 0

	minRow := max(0, row-1)
	maxRow := min(g.rows-1, row+1)
	minCol := max(0, col-1)
	maxCol := min(g.cols-1, col+1)

	for r := minRow; r <= maxRow; r++ {
		for c := minCol; c <= maxCol; c++ {
			if r == row && c == col {
				continue
			}
			if g.cells[r*g.cols+c] == Alive {
				count++
			}
		}
	}

	return count
}

// CountAlive returns the total number of living cells
func (g *Grid) CountAlive() (count int) {
	for _, c := range g.cells {
		if c == Alive {
			count++
		}
	}
	return
}

// Hash returns an MD5 digest of the grid shape and cells
func (g *Grid) Hash() string {
	h := md5.New()
	fmt.Fprintf(h, "%dx%d:", g.rows, g.cols)
	buf := make([]byte, len(g.cells))
	for i, c := range g.cells {
		buf[i] = byte(c)
	}
	h.Write(buf)
	return fmt.Sprintf("%x", h.Sum(nil))
}

// String renders the grid in the format accepted by Parse
func (g *Grid) String() string {
	var sb strings.Builder
	sb.Grow(g.rows * (g.cols + 1))
	for i := range g.rows {
		for _, c := range g.Row(i) {
			if c == Alive {
				sb.WriteByte('O')
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
