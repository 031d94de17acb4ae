package sim

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/sheikhrachel/go-life/model"
	"github.com/sheikhrachel/go-life/utils"
)

func TestMain(m *testing.M) {
	log.Logger = zerolog.Nop()
	os.Exit(m.Run())
}

func testConfig() utils.Config {
	cfg := utils.DefaultConfig()
	cfg.Rows = 6
	cfg.Cols = 6
	cfg.Speed = utils.Ms(50)
	return cfg
}

func newTestSim(t *testing.T, cfg utils.Config) *Simulation {
	t.Helper()
	s, err := New(cfg, model.NewFactory(model.WithSeed(1)))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func toggleAll(t *testing.T, s *Simulation, cells ...[2]int) {
	t.Helper()
	for _, c := range cells {
		if err := s.Toggle(c[0], c[1]); err != nil {
			t.Fatalf("Toggle(%d,%d): %v", c[0], c[1], err)
		}
	}
}

func TestNewStartsDeadAndStopped(t *testing.T) {
	s := newTestSim(t, testConfig())

	g := s.Grid()
	if g.Rows() != 6 || g.Cols() != 6 || g.CountAlive() != 0 {
		t.Fatalf("unexpected initial grid %dx%d with %d alive", g.Rows(), g.Cols(), g.CountAlive())
	}
	if s.Running() || s.Generation() != 0 {
		t.Fatalf("new simulation should be stopped at generation 0")
	}
	if s.Speed() != 50*time.Millisecond {
		t.Fatalf("speed %s, want 50ms", s.Speed())
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Rows = -1
	if _, err := New(cfg, nil); !errors.Is(err, utils.ErrInvalidConfig) {
		t.Fatalf("error = %v, want ErrInvalidConfig", err)
	}
}

func TestGridIsSnapshot(t *testing.T) {
	s := newTestSim(t, testConfig())
	g := s.Grid()
	_ = g.Toggle(0, 0)
	if s.Grid().Get(0, 0) != model.Dead {
		t.Fatalf("snapshot shares storage with the simulation")
	}
}

func TestToggleRefusedWhileRunning(t *testing.T) {
	s := newTestSim(t, testConfig())
	toggleAll(t, s, [2]int{1, 1})

	s.Start()
	if err := s.Toggle(2, 2); !errors.Is(err, ErrRunning) {
		t.Fatalf("error = %v, want ErrRunning", err)
	}
	s.Stop()

	toggleAll(t, s, [2]int{2, 2})
	if s.Grid().CountAlive() != 2 {
		t.Fatalf("expected two alive cells after toggles")
	}
	if err := s.Toggle(6, 0); !errors.Is(err, model.ErrOutOfBounds) {
		t.Fatalf("error = %v, want ErrOutOfBounds", err)
	}
}

func TestStepBlinker(t *testing.T) {
	s := newTestSim(t, testConfig())
	toggleAll(t, s, [2]int{2, 1}, [2]int{2, 2}, [2]int{2, 3})
	start := s.Grid()

	first := s.Step()
	for _, c := range [][2]int{{1, 2}, {2, 2}, {3, 2}} {
		if first.Get(c[0], c[1]) != model.Alive {
			t.Fatalf("cell (%d,%d) should be alive after one step:\n%s", c[0], c[1], first)
		}
	}
	if first.CountAlive() != 3 {
		t.Fatalf("blinker should keep three cells:\n%s", first)
	}

	second := s.Step()
	if !second.Equal(start) {
		t.Fatalf("blinker did not return after two steps:\n%s", second)
	}
	if s.Generation() != 2 {
		t.Fatalf("generation %d, want 2", s.Generation())
	}
}

func TestStagnation(t *testing.T) {
	s := newTestSim(t, testConfig())
	toggleAll(t, s, [2]int{2, 1}, [2]int{2, 2}, [2]int{2, 3})

	s.Step()
	s.Step()
	if s.Stagnant() {
		t.Fatalf("stagnant after two steps of a blinker")
	}
	s.Step()
	if !s.Stagnant() {
		t.Fatalf("period-2 blinker not detected as stagnant")
	}

	// editing resets detection
	toggleAll(t, s, [2]int{0, 0})
	if s.Stagnant() {
		t.Fatalf("toggle did not reset stagnation")
	}
}

func TestRandomizeAndClear(t *testing.T) {
	cfg := testConfig()
	cfg.Rows, cfg.Cols = 30, 50
	s := newTestSim(t, cfg)

	if err := s.Randomize(); err != nil {
		t.Fatalf("Randomize: %v", err)
	}
	if s.Grid().CountAlive() == 0 {
		t.Fatalf("randomized 30x50 grid has no alive cells")
	}
	s.Step()

	if err := s.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if s.Grid().CountAlive() != 0 || s.Generation() != 0 {
		t.Fatalf("Clear left %d alive cells at generation %d", s.Grid().CountAlive(), s.Generation())
	}
}

func TestSetSpeed(t *testing.T) {
	s := newTestSim(t, testConfig())

	tests := []struct {
		in, want time.Duration
	}{
		{10 * time.Millisecond, 50 * time.Millisecond},
		{5 * time.Second, 1000 * time.Millisecond},
		{120 * time.Millisecond, 100 * time.Millisecond},
		{130 * time.Millisecond, 150 * time.Millisecond},
		{300 * time.Millisecond, 300 * time.Millisecond},
	}
	for _, tt := range tests {
		if err := s.SetSpeed(tt.in); err != nil {
			t.Fatalf("SetSpeed(%s): %v", tt.in, err)
		}
		if s.Speed() != tt.want {
			t.Fatalf("SetSpeed(%s) gave %s, want %s", tt.in, s.Speed(), tt.want)
		}
	}

	if err := s.AdjustSpeed(2); err != nil {
		t.Fatalf("AdjustSpeed: %v", err)
	}
	if s.Speed() != 400*time.Millisecond {
		t.Fatalf("speed %s, want 400ms", s.Speed())
	}

	s.Start()
	if err := s.SetSpeed(time.Second); !errors.Is(err, ErrRunning) {
		t.Fatalf("error = %v, want ErrRunning", err)
	}
	if err := s.AdjustSpeed(-1); !errors.Is(err, ErrRunning) {
		t.Fatalf("error = %v, want ErrRunning", err)
	}
}

func TestToggleRunning(t *testing.T) {
	s := newTestSim(t, testConfig())
	if !s.ToggleRunning() || !s.Running() {
		t.Fatalf("ToggleRunning should start a stopped simulation")
	}
	if s.ToggleRunning() || s.Running() {
		t.Fatalf("ToggleRunning should stop a running simulation")
	}
}

func TestRunStepsOnlyWhileRunning(t *testing.T) {
	s := newTestSim(t, testConfig())

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	if err := s.Run(ctx, func(*model.Grid, int) {
		t.Errorf("frame produced while stopped")
	}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if s.Generation() != 0 {
		t.Fatalf("stopped simulation advanced to generation %d", s.Generation())
	}
}

func TestRunDeliversFramesInOrder(t *testing.T) {
	cfg := testConfig()
	cfg.MaxGenerations = 3
	s := newTestSim(t, cfg)
	toggleAll(t, s, [2]int{2, 1}, [2]int{2, 2}, [2]int{2, 3})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var (
		mu     sync.Mutex
		frames []int
	)
	s.Start()
	err := s.Run(ctx, func(g *model.Grid, generation int) {
		mu.Lock()
		frames = append(frames, generation)
		mu.Unlock()
		if g.CountAlive() != 3 {
			t.Errorf("blinker frame %d has %d alive cells", generation, g.CountAlive())
		}
		if !s.Running() {
			cancel()
		}
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(frames) != 3 || frames[0] != 1 || frames[1] != 2 || frames[2] != 3 {
		t.Fatalf("frames %v, want [1 2 3]", frames)
	}
	if s.Running() {
		t.Fatalf("simulation still running after reaching max generations")
	}
	if stats := s.Stats(); stats.TotalGenerations != 3 {
		t.Fatalf("stats recorded %d generations, want 3", stats.TotalGenerations)
	}
}

func TestHistoryRecord(t *testing.T) {
	var h history
	for _, hash := range []string{"a", "b", "c", "d"} {
		if h.record(hash) {
			t.Fatalf("fresh hash %q reported as repeat", hash)
		}
	}
	if !h.record("b") {
		t.Fatalf("repeat within window not detected")
	}
	// "a" has fallen outside the window
	if h.record("a") {
		t.Fatalf("repeat outside window reported")
	}
	if len(h.hashes) > historySize {
		t.Fatalf("history grew to %d entries", len(h.hashes))
	}
}
