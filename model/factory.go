package model

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// DefaultAliveThreshold gives each randomized cell a 25% chance of being alive:
// a cell is alive when its uniform draw in [0,1) exceeds the threshold.
const DefaultAliveThreshold = 0.75

// Factory produces new grids, either all dead or randomized.
// It is safe for concurrent use.
type Factory struct {
	threshold float64

	mu  sync.Mutex
	rng *rand.Rand
}

// FactoryOption configures a Factory
type FactoryOption func(*Factory)

// WithAliveThreshold sets the draw a cell must exceed to be born alive.
// Values outside [0,1] are clamped.
func WithAliveThreshold(t float64) FactoryOption {
	return func(f *Factory) {
		f.threshold = min(max(t, 0), 1)
	}
}

// WithSeed makes randomized grids reproducible
func WithSeed(seed uint64) FactoryOption {
	return func(f *Factory) {
		f.rng = rand.New(rand.NewPCG(seed, 0))
	}
}

// WithSource uses r for every random draw
func WithSource(r *rand.Rand) FactoryOption {
	return func(f *Factory) {
		if r != nil {
			f.rng = r
		}
	}
}

// NewFactory returns a Factory using DefaultAliveThreshold and a time-seeded source
// unless overridden by opts.
func NewFactory(opts ...FactoryOption) *Factory {
	f := &Factory{threshold: DefaultAliveThreshold}
	for _, opt := range opts {
		opt(f)
	}
	if f.rng == nil {
		f.rng = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))
	}
	return f
}

// Threshold returns the alive threshold used for randomized grids
func (f *Factory) Threshold() float64 { return f.threshold }

// Create returns a new rows x cols grid. When randomize is false every cell is dead,
// otherwise each cell is independently alive when its draw exceeds the threshold.
func (f *Factory) Create(rows, cols int, randomize bool) (*Grid, error) {
	if !validDimensions(rows, cols) {
		return nil, errors.Wrapf(ErrInvalidDimensions, "[Create] failed to create %dx%d grid", rows, cols)
	}

	g := newGrid(rows, cols)
	if !randomize {
		return g, nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range g.cells {
		if f.rng.Float64() > f.threshold {
			g.cells[i] = Alive
		}
	}
	return g, nil
}

var defaultFactory = NewFactory()

// CreateGrid creates a rows x cols grid using the default factory
func CreateGrid(rows, cols int, randomize bool) (*Grid, error) {
	return defaultFactory.Create(rows, cols, randomize)
}
