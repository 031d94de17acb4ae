package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/sheikhrachel/go-life/model"
	"github.com/sheikhrachel/go-life/sim"
	"github.com/sheikhrachel/go-life/ui"
	"github.com/sheikhrachel/go-life/utils"
)

// setupLogging points the global logger at stderr for headless runs and at
// config.LogFile (or nowhere) when the terminal belongs to the UI
func setupLogging(config utils.Config, stderr io.Writer) (func(), error) {
	lvl, err := zerolog.ParseLevel(config.LogLevel)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	var (
		out     io.Writer = io.Discard
		closeFn           = func() {}
	)
	switch {
	case config.LogFile != "":
		f, err := os.OpenFile(config.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return closeFn, errors.Wrapf(err, "[setupLogging] failed to open log file: %+v", config.LogFile)
		}
		out = f
		closeFn = func() { _ = f.Close() }
	case config.Headless:
		out = zerolog.ConsoleWriter{Out: stderr, TimeFormat: time.Kitchen, NoColor: true}
	}

	log.Logger = zerolog.New(out).With().Timestamp().Logger()
	return closeFn, nil
}

// initializeGame sets up the simulation. The interactive board starts empty for
// the user to draw on; headless runs start from a random generation.
func initializeGame(config utils.Config) (*sim.Simulation, error) {
	opts := []model.FactoryOption{model.WithAliveThreshold(config.AliveThreshold)}
	if config.Seed != 0 {
		opts = append(opts, model.WithSeed(config.Seed))
	}

	game, err := sim.New(config, model.NewFactory(opts...))
	if err != nil {
		return nil, err
	}
	if config.Headless {
		if err = game.Randomize(); err != nil {
			return nil, err
		}
	}

	log.Info().
		Int("rows", config.Rows).
		Int("cols", config.Cols).
		Dur("speed", game.Speed()).
		Int("alive", game.Grid().CountAlive()).
		Msg("simulation initialized")
	return game, nil
}

// runInteractive hands the simulation to the terminal UI
func runInteractive(ctx context.Context, game *sim.Simulation) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return errors.Wrap(err, "[runInteractive] failed to create screen")
	}
	if err = screen.Init(); err != nil {
		return errors.Wrap(err, "[runInteractive] failed to initialize screen")
	}
	defer screen.Fini()
	screen.EnableMouse()

	return ui.NewTerminal(screen, game).Run(ctx)
}

// runHeadless prints every generation to out until interrupted or the
// generation limit stops the simulation
func runHeadless(ctx context.Context, game *sim.Simulation, out io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	renderer := model.NewTextRenderer(out, true)
	var renderErr error

	game.Start()
	err := game.Run(ctx, func(grid *model.Grid, generation int) {
		if err := renderer.Clear(); err != nil {
			renderErr = err
		} else if err = renderer.Display(grid); err != nil {
			renderErr = err
		}
		if renderErr != nil {
			cancel()
			return
		}
		displayGameStatus(out, game, generation, grid)

		if !game.Running() {
			cancel()
		}
	})
	if renderErr != nil {
		return errors.Wrap(renderErr, "[runHeadless] failed to render")
	}

	stats := game.Stats()
	log.Info().
		Int("generations", stats.TotalGenerations).
		Float64("avg_population", stats.AveragePopulation).
		Dur("runtime", stats.Elapsed()).
		Msg("simulation finished")
	return err
}

// displayGameStatus shows the current game status below the board
func displayGameStatus(out io.Writer, game *sim.Simulation, generation int, grid *model.Grid) {
	stats := game.Stats()
	cells := max(grid.Rows()*grid.Cols(), 1)
	living := grid.CountAlive()

	status := "Active"
	if game.Stagnant() {
		status = "Stagnant"
	}
	if living == 0 {
		status = "Extinct"
	}

	fmt.Fprintf(out, "Gen: %d | Living: %d | Density: %.1f%% | Status: %s\n",
		generation, living, float64(living)/float64(cells)*100, status)
	fmt.Fprintf(out, "Performance: %.1f gen/sec | Avg Pop: %.1f | Runtime: %.1fs\n",
		stats.GenerationsPerSecond, stats.AveragePopulation, stats.Elapsed().Seconds())
}
