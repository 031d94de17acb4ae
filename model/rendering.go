package model

import (
	"bufio"
	"io"
)

const (
	gridPosBlock = "██"
	gridPosEmpty = "  "

	gridPosAlive = "O"
	gridPosDead  = "."

	ansiClear = "\033[H\033[2J"
)

// TextRenderer writes grids to an io.Writer
type TextRenderer struct {
	w io.Writer
	// Blocks draws each cell as two block glyphs instead of O and .
	Blocks bool
}

// NewTextRenderer returns a renderer writing to w
func NewTextRenderer(w io.Writer, blocks bool) *TextRenderer {
	return &TextRenderer{w: w, Blocks: blocks}
}

// Display renders the grid, one line per row
func (r *TextRenderer) Display(g *Grid) error {
	alive, dead := gridPosAlive, gridPosDead
	if r.Blocks {
		alive, dead = gridPosBlock, gridPosEmpty
	}

	bw := bufio.NewWriter(r.w)
	for i := range g.Rows() {
		for _, c := range g.Row(i) {
			if c == Alive {
				bw.WriteString(alive)
			} else {
				bw.WriteString(dead)
			}
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// Clear clears an ANSI terminal
func (r *TextRenderer) Clear() error {
	_, err := io.WriteString(r.w, ansiClear)
	return err
}
