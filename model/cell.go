package model

// Cell is the state of a single grid position
type Cell uint8

const (
	Dead Cell = iota
	Alive
)

// IsAlive reports whether the cell is alive
func (c Cell) IsAlive() bool { return c == Alive }

// Flip returns the opposite state
func (c Cell) Flip() Cell {
	if c == Alive {
		return Dead
	}
	return Alive
}

// Valid reports whether c is one of the two canonical states
func (c Cell) Valid() bool { return c == Dead || c == Alive }

func (c Cell) String() string {
	if c == Alive {
		return "alive"
	}
	return "dead"
}

// CellOf converts a boolean into a Cell
func CellOf(alive bool) Cell {
	if alive {
		return Alive
	}
	return Dead
}
