package game

import (
	"errors"
	"math"
	"math/rand"
	"testing"
)

func mustGrid(t *testing.T, lines ...string) *Grid {
	t.Helper()
	g, err := ParseGrid(lines)
	if err != nil {
		t.Fatalf("parse grid: %v", err)
	}
	return g
}

func assertNoCornerCut(t *testing.T, g *Grid, path []Cell) {
	t.Helper()
	for i := 1; i < len(path); i++ {
		a, b := path[i-1], path[i]
		dr, dc := b.R-a.R, b.C-a.C
		if absInt(dr) > 1 || absInt(dc) > 1 {
			t.Fatalf("step %v -> %v is not 8-connected", a, b)
		}
		if dr != 0 && dc != 0 {
			if g.TerrainBlocked(a.R+dr, a.C) || g.TerrainBlocked(a.R, a.C+dc) {
				t.Fatalf("diagonal step %v -> %v cuts a blocked corner", a, b)
			}
		}
	}
}

func TestFindPath_OpenGridIsOptimal(t *testing.T) {
	g := NewGrid(24, 24)
	pf := NewPathfinder(g)
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		start := Cell{R: rng.Intn(24), C: rng.Intn(24)}
		goal := Cell{R: rng.Intn(24), C: rng.Intn(24)}
		path, err := pf.FindPath(start, goal, 0)
		if err != nil {
			t.Fatalf("%v -> %v: %v", start, goal, err)
		}
		if path[0] != start || path[len(path)-1] != goal {
			t.Fatalf("path must run start to goal inclusive, got %v..%v", path[0], path[len(path)-1])
		}
		want := OctileDistance(start, goal)
		if got := PathLength(path); math.Abs(got-want) > 1e-9 {
			t.Fatalf("%v -> %v: length %.4f, shortest %.4f", start, goal, got, want)
		}
	}
}

func TestFindPath_StartEqualsGoal(t *testing.T) {
	pf := NewPathfinder(NewGrid(5, 5))
	path, err := pf.FindPath(Cell{2, 2}, Cell{2, 2}, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(path) != 1 || path[0] != (Cell{2, 2}) {
		t.Fatalf("expected [start], got %v", path)
	}
}

func TestFindPath_RoutesAroundWall(t *testing.T) {
	g := mustGrid(t,
		".......",
		"..###..",
		"..#....",
		"..#....",
		".......",
	)
	pf := NewPathfinder(g)
	path, err := pf.FindPath(Cell{2, 0}, Cell{2, 5}, 0)
	if err != nil {
		t.Fatalf("expected a path: %v", err)
	}
	for _, c := range path {
		if g.TerrainBlocked(c.R, c.C) {
			t.Fatalf("path crosses wall at %v", c)
		}
	}
	assertNoCornerCut(t, g, path)
	if PathLength(path) < OctileDistance(Cell{2, 0}, Cell{2, 5}) {
		t.Fatal("detour cannot be shorter than the open-grid distance")
	}
}

func TestFindPath_NoCornerCutting(t *testing.T) {
	// Diagonal from (0,0) to (1,1) is flanked by walls at (0,1) and (1,0).
	g := mustGrid(t,
		".#.",
		"#..",
		"...",
	)
	pf := NewPathfinder(g)
	if _, err := pf.FindPath(Cell{0, 0}, Cell{1, 1}, 0); !errors.Is(err, ErrNoPath) {
		t.Fatalf("expected ErrNoPath through a sealed corner, got %v", err)
	}

	// One flank open is still a cut: the path must go around.
	g = mustGrid(t,
		".#..",
		"....",
		"....",
	)
	pf = NewPathfinder(g)
	path, err := pf.FindPath(Cell{0, 0}, Cell{1, 1}, 0)
	if err != nil {
		t.Fatalf("expected path: %v", err)
	}
	assertNoCornerCut(t, g, path)
	if len(path) != 3 {
		t.Fatalf("expected two orthogonal steps, got %v", path)
	}
}

func TestFindPath_RandomMazesNeverCutCorners(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for trial := 0; trial < 30; trial++ {
		g := NewGrid(16, 16)
		for i := 0; i < 60; i++ {
			g.SetTerrain(rng.Intn(16), rng.Intn(16), TerrainWall)
		}
		g.SetTerrain(0, 0, TerrainOpen)
		g.SetTerrain(15, 15, TerrainOpen)
		path, err := NewPathfinder(g).FindPath(Cell{0, 0}, Cell{15, 15}, 0)
		if err != nil {
			continue
		}
		assertNoCornerCut(t, g, path)
	}
}

func TestFindPath_GoalBlocked(t *testing.T) {
	g := mustGrid(t,
		"....",
		"..#.",
		"....",
	)
	_, err := NewPathfinder(g).FindPath(Cell{0, 0}, Cell{1, 2}, 0)
	if !errors.Is(err, ErrNoPath) {
		t.Fatalf("expected ErrNoPath for wall goal, got %v", err)
	}
}

func TestFindPath_Unreachable(t *testing.T) {
	g := mustGrid(t,
		"..#..",
		"..#..",
		"..#..",
	)
	_, err := NewPathfinder(g).FindPath(Cell{1, 0}, Cell{1, 4}, 0)
	if !errors.Is(err, ErrNoPath) {
		t.Fatalf("expected ErrNoPath across a sealed wall, got %v", err)
	}
}

func TestFindPath_IgnoresMoverOccupancyOnly(t *testing.T) {
	g := NewGrid(3, 5)
	g.stamp(1, []Cell{{1, 0}})
	g.stamp(2, []Cell{{1, 4}})
	pf := NewPathfinder(g)

	if _, err := pf.FindPath(Cell{1, 0}, Cell{1, 3}, 1); err != nil {
		t.Fatalf("mover's own cell must not block: %v", err)
	}
	if _, err := pf.FindPath(Cell{1, 0}, Cell{1, 4}, 1); !errors.Is(err, ErrNoPath) {
		t.Fatalf("goal held by another agent must fail, got %v", err)
	}
}

func TestFindPath_ExpansionBudget(t *testing.T) {
	pf := NewPathfinder(NewGrid(40, 40))
	pf.MaxExpansions = 5
	if _, err := pf.FindPath(Cell{0, 0}, Cell{39, 39}, 0); !errors.Is(err, ErrNoPath) {
		t.Fatalf("expected budget exhaustion, got %v", err)
	}
}

func TestOctileDistance(t *testing.T) {
	if d := OctileDistance(Cell{0, 0}, Cell{3, 3}); math.Abs(d-3*math.Sqrt2) > 1e-12 {
		t.Fatalf("diagonal distance = %.4f", d)
	}
	if d := OctileDistance(Cell{0, 0}, Cell{0, 4}); d != 4 {
		t.Fatalf("straight distance = %.4f", d)
	}
	if d := OctileDistance(Cell{0, 0}, Cell{2, 5}); math.Abs(d-(3+2*math.Sqrt2)) > 1e-12 {
		t.Fatalf("mixed distance = %.4f", d)
	}
}
