package main

import (
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/Garsondee/Pack-Sense/internal/game"
)

func newSimScreen(t *testing.T, w, h int) tcell.SimulationScreen {
	t.Helper()
	s := tcell.NewSimulationScreen("UTF-8")
	if err := s.Init(); err != nil {
		t.Fatalf("init: %v", err)
	}
	s.SetSize(w, h)
	t.Cleanup(s.Fini)
	return s
}

func TestRender_DrawsTerrainAndAgents(t *testing.T) {
	w, err := game.NewDemoWorld(3, nil)
	if err != nil {
		t.Fatalf("demo world: %v", err)
	}
	g := w.Grid()
	s := newSimScreen(t, g.Cols(), g.Rows()+5)
	render(s, w, false, game.TeamVillage)

	if ch, _, _, _ := s.GetContent(0, 0); ch != '#' {
		t.Fatalf("corner should be wall, got %q", ch)
	}
	for _, a := range w.Units() {
		c := a.Cell()
		ch, _, _, _ := s.GetContent(c.C, c.R)
		if ch != rune(a.Label()[0]) {
			t.Fatalf("%s at %v drawn as %q", a.Label(), c, ch)
		}
	}
}

func TestHandleInput_PauseSpeedQuit(t *testing.T) {
	w, err := game.NewDemoWorld(3, nil)
	if err != nil {
		t.Fatalf("demo world: %v", err)
	}
	a := &app{screen: newSimScreen(t, 80, 30), world: w, stepsPer: 1}

	a.handleInput(tcell.NewEventKey(tcell.KeyRune, ' ', tcell.ModNone))
	if !a.paused {
		t.Fatal("space should pause")
	}
	a.handleInput(tcell.NewEventKey(tcell.KeyRune, 'n', tcell.ModNone))
	if w.TickCount() != 1 {
		t.Fatalf("n while paused should step once, tick=%d", w.TickCount())
	}
	a.handleInput(tcell.NewEventKey(tcell.KeyRune, '+', tcell.ModNone))
	if a.stepsPer != 2 {
		t.Fatalf("+ should double speed, got %d", a.stepsPer)
	}
	if a.handleInput(tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone)) {
		t.Fatal("q should quit")
	}
}
