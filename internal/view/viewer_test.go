package view

import (
	"testing"

	"github.com/Garsondee/Pack-Sense/internal/game"
)

func newTestViewer(t *testing.T) *Viewer {
	t.Helper()
	w, err := game.NewDemoWorld(1, nil)
	if err != nil {
		t.Fatalf("demo world: %v", err)
	}
	return New(w, nil)
}

func TestCellAt_MapsPixelsToCells(t *testing.T) {
	v := newTestViewer(t)
	if _, ok := v.cellAt(border-1, border); ok {
		t.Fatal("pixel left of the map must not resolve")
	}
	c, ok := v.cellAt(border+3*cellPx+1, border+2*cellPx+cellPx-1)
	if !ok || c != (game.Cell{R: 2, C: 3}) {
		t.Fatalf("expected (2,3), got %v ok=%v", c, ok)
	}
	if _, ok := v.cellAt(border+v.mapW, border); ok {
		t.Fatal("pixel right of the map must not resolve")
	}
}

func TestWindowSize_FitsMapAndPanel(t *testing.T) {
	v := newTestViewer(t)
	w, h := v.WindowSize()
	if w < v.mapW+panelW || h < v.mapH {
		t.Fatalf("window %dx%d too small for map %dx%d", w, h, v.mapW, v.mapH)
	}
	if lw, lh := v.Layout(0, 0); lw != w || lh != h {
		t.Fatal("layout must match the window size")
	}
}

func TestNextFormation_Cycles(t *testing.T) {
	ft := game.FormationBlob
	seen := map[game.FormationType]bool{}
	for i := 0; i < 4; i++ {
		seen[ft] = true
		ft = nextFormation(ft)
	}
	if ft != game.FormationBlob || len(seen) != 4 {
		t.Fatalf("formation cycle broken: back at %v after %d distinct", ft, len(seen))
	}
}

func TestNextTeam_Cycles(t *testing.T) {
	team := game.TeamVillage
	for i := 0; i < 4; i++ {
		team = nextTeam(team)
	}
	if team != game.TeamVillage {
		t.Fatalf("expected to return to village, got %v", team)
	}
}

func TestOrderTo_RoutesSelection(t *testing.T) {
	v := newTestViewer(t)
	var guard *game.Agent
	for _, a := range v.world.Units() {
		if a.Kind() == game.KindGuard {
			guard = a
			break
		}
	}
	if guard == nil {
		t.Fatal("demo world has no guard")
	}
	v.selectAt(guard.Cell(), false)
	if !guard.Selected() {
		t.Fatal("click on the guard must select it")
	}
	v.orderTo(game.Cell{R: 15, C: 10})
	if len(guard.Waypoints()) == 0 {
		t.Fatal("ordered guard must have a path")
	}
	if v.status == "" {
		t.Fatal("order should flash a status line")
	}
}
