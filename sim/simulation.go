// Package sim holds the current generation of a Game of Life board and drives it
// forward on a timer. It owns the caller-side state the engine does not: the
// running flag, the speed, and single-cell edits between runs.
package sim

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/sheikhrachel/go-life/model"
	"github.com/sheikhrachel/go-life/utils"
)

var ErrRunning = errors.New("simulation is running")

// FrameFunc receives every generation produced by Run
type FrameFunc func(grid *model.Grid, generation int)

// Simulation is safe for concurrent use
type Simulation struct {
	cfg     utils.Config
	factory *model.Factory

	mu         sync.Mutex
	grid       *model.Grid
	generation int
	running    bool
	speed      time.Duration
	history    history
	stagnant   bool
	stats      *utils.Stats
	lastStep   time.Time
}

// New creates a stopped simulation holding an all-dead cfg.Rows x cfg.Cols grid
func New(cfg utils.Config, factory *model.Factory) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "[New] failed to validate config")
	}
	if factory == nil {
		factory = model.NewFactory(model.WithAliveThreshold(cfg.AliveThreshold))
	}

	grid, err := factory.Create(cfg.Rows, cfg.Cols, false)
	if err != nil {
		return nil, errors.Wrap(err, "[New] failed to create grid")
	}

	s := &Simulation{
		cfg:     cfg,
		factory: factory,
		grid:    grid,
		stats:   utils.NewStats(),
	}
	s.speed = s.clampSpeed(cfg.Speed.Duration)
	return s, nil
}

// Grid returns a copy of the current generation
func (s *Simulation) Grid() *model.Grid {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.grid.Clone()
}

// Generation returns the number of steps since the last reset
func (s *Simulation) Generation() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

func (s *Simulation) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Simulation) Speed() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.speed
}

// Stagnant reports whether the latest generation repeats one of the few before it
func (s *Simulation) Stagnant() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stagnant
}

// Stats returns a copy of the runtime statistics
func (s *Simulation) Stats() utils.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.stats
}

// Toggle flips one cell of the current generation. Edits are refused while running.
func (s *Simulation) Toggle(row, col int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return errors.Wrapf(ErrRunning, "[Toggle] failed to toggle (%d,%d)", row, col)
	}
	if err := s.grid.Toggle(row, col); err != nil {
		return err
	}
	s.history.reset()
	s.stagnant = false
	return nil
}

// Randomize replaces the current generation with a random one
func (s *Simulation) Randomize() error {
	return s.reset(true)
}

// Clear replaces the current generation with an all-dead one
func (s *Simulation) Clear() error {
	return s.reset(false)
}

func (s *Simulation) reset(randomize bool) error {
	grid, err := s.factory.Create(s.cfg.Rows, s.cfg.Cols, randomize)
	if err != nil {
		return errors.Wrap(err, "[reset] failed to create grid")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.grid = grid
	s.generation = 0
	s.history.reset()
	s.stagnant = false
	s.stats.Reset()
	s.lastStep = time.Time{}

	log.Debug().Bool("randomize", randomize).Int("alive", grid.CountAlive()).Msg("grid reset")
	return nil
}

// SetSpeed sets the delay between generations. It is clamped to the configured
// bounds and snapped to the configured step, and refused while running.
func (s *Simulation) SetSpeed(d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return errors.Wrapf(ErrRunning, "[SetSpeed] failed to set speed %s", d)
	}
	s.speed = s.clampSpeed(d)
	return nil
}

// AdjustSpeed moves the delay by n configured steps
func (s *Simulation) AdjustSpeed(n int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return errors.Wrapf(ErrRunning, "[AdjustSpeed] failed to adjust speed by %d steps", n)
	}
	step := s.cfg.SpeedStep.Duration
	if step <= 0 {
		step = s.cfg.MinSpeed.Duration
	}
	s.speed = s.clampSpeed(s.speed + time.Duration(n)*step)
	return nil
}

func (s *Simulation) clampSpeed(d time.Duration) time.Duration {
	lo, hi, step := s.cfg.MinSpeed.Duration, s.cfg.MaxSpeed.Duration, s.cfg.SpeedStep.Duration
	if step > 0 {
		d = lo + ((d-lo+step/2)/step)*step
	}
	return min(max(d, lo), hi)
}

func (s *Simulation) Start() { s.setRunning(true) }

func (s *Simulation) Stop() { s.setRunning(false) }

// ToggleRunning flips the running flag and returns the new value
func (s *Simulation) ToggleRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setRunningLocked(!s.running)
	return s.running
}

func (s *Simulation) setRunning(running bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setRunningLocked(running)
}

func (s *Simulation) setRunningLocked(running bool) {
	if s.running == running {
		return
	}
	s.running = running
	s.lastStep = time.Time{}
	log.Info().Bool("running", running).Int("generation", s.generation).Msg("simulation state changed")
}

// Step advances one generation immediately and returns a copy of it
func (s *Simulation) Step() *model.Grid {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stepLocked().Clone()
}

func (s *Simulation) stepLocked() *model.Grid {
	now := time.Now()
	s.grid = model.ComputeNextGeneration(s.grid)
	s.generation++

	alive := s.grid.CountAlive()
	var elapsed time.Duration
	if !s.lastStep.IsZero() {
		elapsed = now.Sub(s.lastStep)
	}
	s.lastStep = now
	s.stats.Update(s.generation, alive, elapsed)

	wasStagnant := s.stagnant
	s.stagnant = s.history.record(s.grid.Hash())
	if s.stagnant && !wasStagnant {
		log.Info().Int("generation", s.generation).Int("alive", alive).Msg("simulation stagnated")
	}
	return s.grid
}

// Run steps the simulation every Speed while it is running and hands each new
// generation to onFrame. It returns when ctx is done. Stopping the simulation
// only pauses stepping; Run keeps waiting for the next Start.
func (s *Simulation) Run(ctx context.Context, onFrame FrameFunc) error {
	timer := time.NewTimer(s.Speed())
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-timer.C:
		}

		if grid, gen, ok := s.tick(); ok && onFrame != nil {
			onFrame(grid, gen)
		}
		timer.Reset(s.Speed())
	}
}

func (s *Simulation) tick() (*model.Grid, int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil, 0, false
	}

	grid := s.stepLocked().Clone()
	if s.cfg.MaxGenerations > 0 && s.generation >= s.cfg.MaxGenerations {
		s.running = false
		log.Info().Int("generation", s.generation).Msg("reached maximum generations")
	}
	return grid, s.generation, true
}
