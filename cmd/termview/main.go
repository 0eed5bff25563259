// Command termview runs the demo world in a terminal.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gdamore/tcell/v2"

	"github.com/Garsondee/Pack-Sense/internal/game"
	"github.com/Garsondee/Pack-Sense/internal/tuning"
)

var teamStyles = map[game.Team]tcell.Style{
	game.TeamVillage: tcell.StyleDefault.Foreground(tcell.ColorDodgerBlue).Bold(true),
	game.TeamRaiders: tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true),
	game.TeamWild:    tcell.StyleDefault.Foreground(tcell.ColorSilver).Bold(true),
	game.TeamFauna:   tcell.StyleDefault.Foreground(tcell.ColorGoldenrod).Bold(true),
}

var terrainStyles = map[game.Terrain]tcell.Style{
	game.TerrainOpen:  tcell.StyleDefault.Foreground(tcell.ColorDarkOliveGreen),
	game.TerrainWall:  tcell.StyleDefault.Foreground(tcell.ColorGray),
	game.TerrainWater: tcell.StyleDefault.Foreground(tcell.ColorSteelBlue),
	game.TerrainBrush: tcell.StyleDefault.Foreground(tcell.ColorForestGreen),
}

var (
	textStyle  = tcell.StyleDefault.Foreground(tcell.ColorLightGray)
	boardStyle = tcell.StyleDefault.Foreground(tcell.ColorOrange)
)

type app struct {
	screen tcell.Screen
	world  *game.World
	log    *log.Logger

	paused    bool
	stepsPer  int // sim steps per frame
	showBoard bool
	boardTeam game.Team
}

func main() {
	seed := flag.Int64("seed", time.Now().UnixNano(), "world seed")
	config := flag.String("config", "", "tuning YAML (default: embedded)")
	logPath := flag.String("log", "", "write debug log to this file")
	level := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	var out io.Writer = io.Discard
	if *logPath != "" {
		f, err := os.Create(*logPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}
	logger := newLogger(out, *level)

	t, err := loadTuning(*config)
	if err != nil {
		logger.Fatal("load tuning", "err", err)
	}
	w, err := game.NewDemoWorld(*seed, t, game.WithLogger(logger))
	if err != nil {
		logger.Fatal("build world", "err", err)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		logger.Fatal("terminal", "err", err)
	}
	if err := screen.Init(); err != nil {
		logger.Fatal("terminal init", "err", err)
	}
	a := &app{screen: screen, world: w, log: logger, stepsPer: 1}
	defer screen.Fini()
	a.run(time.Duration(t.TickSeconds() * float64(time.Second)))
}

func newLogger(out io.Writer, level string) *log.Logger {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	return log.NewWithOptions(out, log.Options{
		Level:           lvl,
		ReportTimestamp: true,
		Prefix:          "termview",
	})
}

func loadTuning(path string) (*tuning.Tuning, error) {
	if path == "" {
		return tuning.Default()
	}
	return tuning.Load(path)
}

func (a *app) run(frame time.Duration) {
	ticker := time.NewTicker(frame)
	defer ticker.Stop()

	events := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := a.screen.PollEvent()
			if ev == nil {
				return
			}
			events <- ev
		}
	}()

	a.draw()
	for {
		select {
		case ev := <-events:
			if !a.handleInput(ev) {
				return
			}
		case <-ticker.C:
			if !a.paused {
				for i := 0; i < a.stepsPer; i++ {
					a.world.Step()
				}
			}
			a.draw()
		}
	}
}

// handleInput returns false when the user quits.
func (a *app) handleInput(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
			return false
		}
		if ev.Key() == tcell.KeyTab {
			a.boardTeam = (a.boardTeam + 1) % game.Team(len(a.world.Alive()))
			return true
		}
		if ev.Key() != tcell.KeyRune {
			return true
		}
		switch ev.Rune() {
		case 'q':
			return false
		case ' ':
			a.paused = !a.paused
		case 'n':
			if a.paused {
				a.world.Step()
			}
		case '+', '=':
			a.stepsPer = min(a.stepsPer*2, 16)
		case '-':
			a.stepsPer = max(a.stepsPer/2, 1)
		case 'b':
			a.showBoard = !a.showBoard
		}
		a.draw()
	case *tcell.EventResize:
		a.screen.Sync()
	}
	return true
}

func (a *app) draw() {
	a.screen.Clear()
	render(a.screen, a.world, a.showBoard, a.boardTeam)
	status := fmt.Sprintf("t=%.1fs x%d", a.world.Now(), a.stepsPer)
	if a.paused {
		status += " PAUSED"
	}
	status += fmt.Sprintf("  board[%s]  space=pause n=step +/-=speed b=board tab=team q=quit", a.boardTeam)
	putString(a.screen, 0, a.world.Grid().Rows(), status, textStyle)
	a.screen.Show()
}

// render paints terrain, board marks and live agents onto s. Thoughts fill the
// rows below the status line.
func render(s tcell.Screen, w *game.World, showBoard bool, team game.Team) {
	g := w.Grid()
	for r := 0; r < g.Rows(); r++ {
		for c := 0; c < g.Cols(); c++ {
			t := g.TerrainAt(r, c)
			s.SetContent(c, r, t.Rune(), nil, terrainStyles[t])
		}
	}
	if showBoard {
		if tb := w.TeamBoard(team); tb != nil {
			for _, sg := range tb.Sightings() {
				c := sg.Pos.Cell()
				s.SetContent(c.C, c.R, '?', nil, boardStyle)
			}
		}
	}
	// Tails first so no body hides another agent's head.
	for _, ag := range w.Units() {
		if !ag.Alive() {
			continue
		}
		for _, c := range ag.Footprint()[1:] {
			if g.InBounds(c.R, c.C) {
				s.SetContent(c.C, c.R, '+', nil, teamStyles[ag.Team()])
			}
		}
	}
	for _, ag := range w.Units() {
		if !ag.Alive() {
			continue
		}
		c := ag.Cell()
		s.SetContent(c.C, c.R, rune(ag.Label()[0]), nil, teamStyles[ag.Team()])
	}

	_, height := s.Size()
	y := g.Rows() + 1
	entries := w.Thoughts().Recent()
	if rows := height - y; rows > 0 && len(entries) > rows {
		entries = entries[len(entries)-rows:]
	}
	for _, e := range entries {
		if y >= height {
			break
		}
		putString(s, 0, y, fmt.Sprintf("%04d %-3s %s", e.Tick, e.Label, e.Message), teamStyles[e.Team])
		y++
	}
}

func putString(s tcell.Screen, x, y int, str string, st tcell.Style) {
	for _, r := range str {
		s.SetContent(x, y, r, nil, st)
		x++
	}
}
