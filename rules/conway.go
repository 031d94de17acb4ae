package rules

/*
Next applies Conway's Game of Life rules to determine whether a cell is alive in the
next generation.

Fewer than two or more than three neighbors kill the cell, exactly three neighbors
bring a dead cell to life, anything else keeps the current state.
*/
func Next(alive bool, neighbors int) bool {
	switch {
	case neighbors < 2 || neighbors > 3:
		return false
	case !alive && neighbors == 3:
		return true
	default:
		return alive
	}
}
