// Package ui draws a running simulation on a terminal screen and turns key
// presses and mouse clicks into simulation controls.
package ui

import (
	"context"
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/sheikhrachel/go-life/model"
	"github.com/sheikhrachel/go-life/sim"
)

const (
	cellWidth = 2
	helpText  = "space start/stop  n step  r randomize  c clear  +/- delay  q quit"
)

var (
	aliveStyle  = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorWhite)
	deadStyle   = tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorBlack)
	statusStyle = tcell.StyleDefault.Foreground(tcell.ColorGreen)
)

// Terminal presents a Simulation on a tcell screen. The caller owns the screen
// and is responsible for Init and Fini.
type Terminal struct {
	screen tcell.Screen
	sim    *sim.Simulation

	lastButtons tcell.ButtonMask
}

func NewTerminal(screen tcell.Screen, s *sim.Simulation) *Terminal {
	return &Terminal{screen: screen, sim: s}
}

// Run draws the simulation and handles input until the user quits or ctx is done
func (t *Terminal) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		return t.sim.Run(ctx, func(*model.Grid, int) {
			// redraw happens on the event loop
			_ = t.screen.PostEvent(tcell.NewEventInterrupt(nil))
		})
	})
	eg.Go(func() error {
		<-ctx.Done()
		_ = t.screen.PostEvent(tcell.NewEventInterrupt(nil))
		return nil
	})
	eg.Go(func() error {
		defer cancel()
		return t.loop(ctx)
	})

	return eg.Wait()
}

func (t *Terminal) loop(ctx context.Context) error {
	t.draw()
	for {
		ev := t.screen.PollEvent()
		if ev == nil || ctx.Err() != nil {
			return nil
		}

		switch ev := ev.(type) {
		case *tcell.EventResize:
			t.screen.Sync()
		case *tcell.EventKey:
			if t.handleKey(ev) {
				return nil
			}
		case *tcell.EventMouse:
			t.handleMouse(ev)
		}
		t.draw()
	}
}

// handleKey applies a key press and reports whether the user asked to quit
func (t *Terminal) handleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyRune:
	default:
		return false
	}

	var err error
	switch ev.Rune() {
	case 'q', 'Q':
		return true
	case ' ':
		t.sim.ToggleRunning()
	case 'n':
		if !t.sim.Running() {
			t.sim.Step()
		}
	case 'r':
		err = t.sim.Randomize()
	case 'c':
		err = t.sim.Clear()
	case '+', '=':
		err = t.sim.AdjustSpeed(1)
	case '-', '_':
		err = t.sim.AdjustSpeed(-1)
	}
	if err != nil {
		log.Debug().Err(err).Str("key", string(ev.Rune())).Msg("key ignored")
	}
	return false
}

// handleMouse toggles the clicked cell on a left button press
func (t *Terminal) handleMouse(ev *tcell.EventMouse) {
	buttons := ev.Buttons()
	pressed := buttons&tcell.Button1 != 0 && t.lastButtons&tcell.Button1 == 0
	t.lastButtons = buttons
	if !pressed {
		return
	}

	x, y := ev.Position()
	row, col := y, x/cellWidth
	if err := t.sim.Toggle(row, col); err != nil {
		log.Debug().Err(err).Int("row", row).Int("col", col).Msg("click ignored")
	}
}

func (t *Terminal) draw() {
	grid := t.sim.Grid()

	t.screen.Clear()
	for row := range grid.Rows() {
		for col, c := range grid.Row(row) {
			style := deadStyle
			if c == model.Alive {
				style = aliveStyle
			}
			for i := range cellWidth {
				t.screen.SetContent(col*cellWidth+i, row, ' ', nil, style)
			}
		}
	}

	state := "stopped"
	if t.sim.Running() {
		state = "running"
	}
	if t.sim.Stagnant() {
		state += " (stagnant)"
	}
	status := fmt.Sprintf("gen %d | alive %d | delay %s | %s",
		t.sim.Generation(), grid.CountAlive(), t.sim.Speed(), state)
	t.drawText(0, grid.Rows()+1, status)
	t.drawText(0, grid.Rows()+2, helpText)

	t.screen.Show()
}

func (t *Terminal) drawText(x, y int, s string) {
	for _, r := range s {
		t.screen.SetContent(x, y, r, nil, statusStyle)
		x++
	}
}
