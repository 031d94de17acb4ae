package model

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/sheikhrachel/go-life/rules"
)

// ComputeNextGeneration returns the generation following g.
// g is never modified and the result shares no storage with it.
func ComputeNextGeneration(g *Grid) *Grid {
	next := newGrid(g.rows, g.cols)
	if len(g.cells) == 0 {
		return next
	}

	for row := range g.rows {
		for col := range g.cols {
			alive := g.cells[row*g.cols+col] == Alive
			if rules.Next(alive, g.CountNeighbors(row, col)) {
				next.cells[row*g.cols+col] = Alive
			}
		}
	}

	return next
}

// Advance applies n generations in sequence and returns the last one.
// For n <= 0 it returns a clone of g.
func Advance(g *Grid, n int) *Grid {
	cur := g.Clone()
	for range n {
		cur = ComputeNextGeneration(cur)
	}
	return cur
}

// ComputeNextGenerations advances independent grids concurrently.
// The result at index i is the next generation of grids[i].
func ComputeNextGenerations(ctx context.Context, grids []*Grid) ([]*Grid, error) {
	next := make([]*Grid, len(grids))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(runtime.NumCPU())

	for i, g := range grids {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			next[i] = ComputeNextGeneration(g)
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return next, nil
}
