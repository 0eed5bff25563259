package game

import (
	"errors"
	"testing"
)

func TestFormationOffsets(t *testing.T) {
	line := formationOffsets(FormationLine, 5)
	if line[0] != [2]float64{0, 0} {
		t.Fatalf("slot 0 must sit on the destination, got %v", line[0])
	}
	seen := map[[2]float64]bool{}
	for _, o := range line {
		if o[0] != 0 {
			t.Fatalf("line slots stay abreast, got %v", o)
		}
		if seen[o] {
			t.Fatalf("duplicate slot %v", o)
		}
		seen[o] = true
	}
	for i, o := range formationOffsets(FormationColumn, 4) {
		if o != [2]float64{-float64(i), 0} {
			t.Fatalf("column slot %d = %v", i, o)
		}
	}
	for i, o := range formationOffsets(FormationWedge, 5)[1:] {
		if o[0] >= 0 {
			t.Fatalf("wedge slot %d should trail the point, got %v", i+1, o)
		}
	}
}

func TestIssueMoveOrder_DistinctSlotsAndYield(t *testing.T) {
	ts, err := NewTestSim(
		WithMapSize(20, 20),
		WithAgent(KindGuard, 2, 2),
		WithAgent(KindGuard, 2, 3),
		WithAgent(KindGuard, 3, 2),
	)
	if err != nil {
		t.Fatalf("new sim: %v", err)
	}
	units := []*Agent{ts.Agent("G1"), ts.Agent("G2"), ts.Agent("G3")}

	for _, ft := range []FormationType{FormationBlob, FormationLine, FormationWedge, FormationColumn} {
		n, err := ts.World.IssueMoveOrder(units, Cell{12, 12}, ft)
		if err != nil {
			t.Fatalf("%s: %v", ft, err)
		}
		if n != 3 {
			t.Fatalf("%s: %d units moved, want 3", ft, n)
		}
		dests := map[Cell]bool{}
		for _, u := range units {
			wp := u.Waypoints()
			if len(wp) == 0 {
				t.Fatalf("%s: %s has no path", ft, u.Label())
			}
			last := wp[len(wp)-1]
			if dests[last] {
				t.Fatalf("%s: two units sent to %v", ft, last)
			}
			dests[last] = true
			if last.Chebyshev(Cell{12, 12}) > 3 {
				t.Fatalf("%s: slot %v too far from destination", ft, last)
			}
			if u.Phase() != "ORDERED" {
				t.Fatalf("%s: phase %q", ft, u.Phase())
			}
		}
	}

	arrived := map[string]Cell{}
	ts.RunUntil(func(ts *TestSim) bool {
		for _, u := range units {
			if _, ok := arrived[u.Label()]; !ok && u.ordered && !u.IsMoving() {
				arrived[u.Label()] = u.Cell()
			}
		}
		return ts.SimLog.CountCategory("order", "complete") == len(units)
	}, 30*15)
	if len(arrived) != len(units) {
		t.Fatalf("only %d of %d units reached their slots", len(arrived), len(units))
	}
	for label, c := range arrived {
		if c.Chebyshev(Cell{12, 12}) > 3 {
			t.Fatalf("%s stopped at %v", label, c)
		}
	}
	for _, u := range units {
		if u.ordered {
			t.Fatalf("%s should be released back to its behaviour", u.Label())
		}
	}
}

func TestIssueMoveOrder_Errors(t *testing.T) {
	ts, err := NewTestSim(WithMapSize(10, 10), WithAgent(KindGuard, 1, 1))
	if err != nil {
		t.Fatalf("new sim: %v", err)
	}
	g := ts.Agent("G1")
	if _, err := ts.World.IssueMoveOrder([]*Agent{g}, Cell{20, 20}, FormationBlob); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("expected out of bounds, got %v", err)
	}
	if n, err := ts.World.IssueMoveOrder(nil, Cell{5, 5}, FormationBlob); n != 0 || err != nil {
		t.Fatalf("empty order: n=%d err=%v", n, err)
	}
}

func TestIssueMoveOrder_ReroutesAroundBlocker(t *testing.T) {
	ts, err := NewTestSim(WithMapSize(7, 14), WithAgent(KindGuard, 3, 1))
	if err != nil {
		t.Fatalf("new sim: %v", err)
	}
	g := ts.Agent("G1")
	if n, err := ts.World.IssueMoveOrder([]*Agent{g}, Cell{3, 10}, FormationBlob); n != 1 || err != nil {
		t.Fatalf("order: n=%d err=%v", n, err)
	}
	ts.RunTicks(1)
	block := g.Waypoints()[1]
	deer, err := ts.World.Spawn(KindDeer, block)
	if err != nil {
		t.Fatalf("spawn blocker: %v", err)
	}
	deer.behavior = nil

	ts.RunUntil(func(ts *TestSim) bool {
		return ts.SimLog.CountCategory("order", "reroute") > 0
	}, 30*2)
	if ts.SimLog.CountCategory("order", "reroute") == 0 {
		t.Fatalf("blocked order should reroute\n%s", ts.SimLog.Format())
	}
	if !g.ordered || cellIn(block, g.Waypoints()) {
		t.Fatalf("rerouted order should avoid %v, ordered=%v path=%v", block, g.ordered, g.Waypoints())
	}
	ts.RunUntil(func(ts *TestSim) bool {
		return ts.SimLog.CountCategory("order", "complete") > 0
	}, 30*6)
	if g.Cell().Chebyshev(Cell{3, 10}) > 1 {
		t.Fatalf("order finished at %v", g.Cell())
	}
}

func TestIssueMoveOrder_SealedCorridorFails(t *testing.T) {
	ts, err := NewTestSim(
		WithMap(
			"############",
			"#..........#",
			"############",
		),
		WithAgent(KindGuard, 1, 1),
	)
	if err != nil {
		t.Fatalf("new sim: %v", err)
	}
	g := ts.Agent("G1")
	if n, err := ts.World.IssueMoveOrder([]*Agent{g}, Cell{1, 10}, FormationBlob); n != 1 || err != nil {
		t.Fatalf("order: n=%d err=%v", n, err)
	}
	ts.RunTicks(1)
	deer, err := ts.World.Spawn(KindDeer, Cell{1, 3})
	if err != nil {
		t.Fatalf("spawn blocker: %v", err)
	}
	deer.behavior = nil

	ts.RunUntil(func(ts *TestSim) bool {
		return ts.SimLog.CountCategory("order", "failed") > 0
	}, 30*3)
	if ts.SimLog.CountCategory("order", "failed") == 0 {
		t.Fatalf("sealed corridor should fail the order\n%s", ts.SimLog.Format())
	}
	if g.ordered || g.Cell().C > 2 {
		t.Fatalf("failed order should release the guard short of the blocker, ordered=%v at %v", g.ordered, g.Cell())
	}
}
