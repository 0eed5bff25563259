package game

import (
	"math"
	"testing"
)

func TestHeadingTo_Convention(t *testing.T) {
	if h := HeadingTo(Pos{0, 0}, Pos{0, 3}); math.Abs(h) > 1e-12 {
		t.Fatalf("+C should be heading 0, got %.3f", h)
	}
	if h := HeadingTo(Pos{0, 0}, Pos{3, 0}); math.Abs(h-math.Pi/2) > 1e-12 {
		t.Fatalf("+R should be heading pi/2, got %.3f", h)
	}
	p := Pos{5, 0}.Add(-math.Pi/2, 1.5)
	if p.Cell() != (Cell{4, 0}) {
		t.Fatalf("offset toward -R should land in (4,0), got %v", p.Cell())
	}
}

func TestTurnToward_ClampsStep(t *testing.T) {
	h := turnToward(0, math.Pi/2, 0.1)
	if math.Abs(h-0.1) > 1e-12 {
		t.Fatalf("expected 0.1 rad step, got %.3f", h)
	}
	h = turnToward(0, 0.05, 0.1)
	if math.Abs(h-0.05) > 1e-12 {
		t.Fatalf("expected to snap onto target, got %.3f", h)
	}
	// Shortest way round crosses +-pi.
	h = turnToward(3.0, -3.0, 0.1)
	if h < 3.0 && h > -3.0 {
		t.Fatalf("expected to turn through pi, got %.3f", h)
	}
}

func TestAimDot(t *testing.T) {
	if d := aimDot(1.0, 1.0); math.Abs(d-1) > 1e-12 {
		t.Fatalf("same heading dot = %.3f", d)
	}
	if d := aimDot(0, math.Pi); math.Abs(d+1) > 1e-12 {
		t.Fatalf("opposite heading dot = %.3f", d)
	}
}

func TestVisionMap_TeamLayers(t *testing.T) {
	g := mustGrid(t,
		"..........",
		"..........",
		".....#....",
		"..........",
	)
	a := &Agent{id: 1, team: TeamVillage, pos: Pos{2, 2}, sightRadius: 6, alive: true}
	vm := NewVisionMap(g)
	vm.Recompute([]*Agent{a})

	if !vm.IsVisible(TeamVillage, Cell{2, 4}) {
		t.Fatal("open cell in range should be visible")
	}
	if vm.IsVisible(TeamVillage, Cell{2, 7}) {
		t.Fatal("cell behind the wall should be hidden")
	}
	if !vm.IsVisible(TeamVillage, Cell{2, 5}) {
		t.Fatal("the wall itself is an endpoint and should be visible")
	}
	if vm.IsVisible(TeamRaiders, Cell{2, 4}) {
		t.Fatal("other teams share nothing")
	}
	if vm.IsVisible(TeamVillage, Cell{9, 9}) {
		t.Fatal("out-of-bounds cells are never visible")
	}

	a.alive = false
	vm.Recompute([]*Agent{a})
	if vm.IsVisible(TeamVillage, Cell{2, 3}) {
		t.Fatal("dead agents contribute no vision")
	}
}

func TestCanSee_RadiusAndCover(t *testing.T) {
	g := mustGrid(t,
		"..........",
		"....,.....",
		"..........",
	)
	obs := &Agent{id: 1, pos: Pos{1, 0}, sightRadius: 5, alive: true}
	near := &Agent{id: 2, pos: Pos{0, 3}, alive: true}
	hidden := &Agent{id: 3, pos: Pos{1, 5}, alive: true}
	far := &Agent{id: 4, pos: Pos{1, 9}, alive: true}

	if !canSee(g, obs, near) {
		t.Fatal("near target in the open should be seen")
	}
	if canSee(g, obs, hidden) {
		t.Fatal("target behind brush should not be seen")
	}
	if canSee(g, obs, far) {
		t.Fatal("target beyond sight radius should not be seen")
	}
}
