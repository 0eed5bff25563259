package game

import "testing"

func newGrazing(t *testing.T) (*TestSim, *Agent, *Agent) {
	t.Helper()
	ts, err := NewTestSim(
		WithMapSize(40, 40),
		WithAgent(KindDeer, 10, 10),
		WithAgent(KindWolf, 15, 10),
	)
	if err != nil {
		t.Fatalf("new sim: %v", err)
	}
	deer, wolf := ts.Agent("D1"), ts.Agent("W1")
	wolf.behavior = nil
	return ts, deer, wolf
}

// placeFrom puts wolf dist cells straight down the rows from deer.
func placeFrom(deer, wolf *Agent, dist float64) {
	wolf.pos = Pos{R: deer.pos.R + dist, C: deer.pos.C}
}

func TestFlee_EntersWithinFearRadius(t *testing.T) {
	ts, deer, _ := newGrazing(t)
	ts.RunTicks(1)
	if deer.State() != StateFlee {
		t.Fatalf("deer 5 cells from a wolf should flee, got %s", deer.State())
	}
	if !deer.IsMoving() {
		t.Fatal("a fleeing deer should have a path")
	}
	if !ts.SimLog.HasEntry("flee", "enter", "W1") {
		t.Fatal("flee entry should name the threat")
	}

	start := deer.Pos()
	ts.RunTicks(10)
	if deer.Pos().R >= start.R {
		t.Fatalf("deer should run away from the wolf: %v -> %v", start, deer.Pos())
	}
}

func TestFlee_HysteresisBetweenFearAndSafe(t *testing.T) {
	ts, deer, wolf := newGrazing(t)
	ts.RunTicks(1)
	if deer.State() != StateFlee {
		t.Fatalf("setup: expected FLEE, got %s", deer.State())
	}

	// Past fear but inside safe: keep running.
	placeFrom(deer, wolf, 10)
	ts.RunTicks(1)
	if deer.State() != StateFlee {
		t.Fatalf("deer between fear and safe radius must stay in FLEE, got %s", deer.State())
	}

	// Past safe: calm down.
	placeFrom(deer, wolf, 13)
	ts.RunTicks(1)
	if deer.State() != StateGraze {
		t.Fatalf("deer beyond safe radius should graze, got %s", deer.State())
	}
	if !ts.SimLog.HasEntry("flee", "exit", "") {
		t.Fatal("flee exit should be logged")
	}

	// Inside safe but outside fear: a calm deer stays calm.
	placeFrom(deer, wolf, 10)
	ts.RunTicks(1)
	if deer.State() == StateFlee {
		t.Fatal("a calm deer must not flee before the fear radius")
	}
}

func TestFlee_IgnoresNonThreats(t *testing.T) {
	ts, err := NewTestSim(
		WithMapSize(30, 30),
		WithAgent(KindDeer, 10, 10),
		WithAgent(KindGuard, 12, 10),
	)
	if err != nil {
		t.Fatalf("new sim: %v", err)
	}
	deer := ts.Agent("D1")
	ts.Agent("G1").behavior = nil
	ts.RunTicks(5)
	if deer.State() == StateFlee {
		t.Fatal("guards are not on the deer's threat list")
	}
}

func TestFlee_DeadThreatEndsFlight(t *testing.T) {
	ts, deer, wolf := newGrazing(t)
	ts.RunTicks(1)
	ts.World.kill(wolf, deer)
	ts.RunTicks(1)
	if deer.State() != StateGraze {
		t.Fatalf("expected GRAZE once the only threat died, got %s", deer.State())
	}
}

func TestFlee_CorneredStaysAlive(t *testing.T) {
	ts, err := NewTestSim(
		WithMap(
			"#####",
			"#...#",
			"#...#",
			"#...#",
			"#####",
		),
		WithAgent(KindDeer, 1, 1),
		WithAgent(KindWolf, 3, 3),
	)
	if err != nil {
		t.Fatalf("new sim: %v", err)
	}
	ts.Agent("W1").behavior = nil
	ts.RunTicks(30)
	deer := ts.Agent("D1")
	if deer.State() != StateFlee {
		t.Fatalf("cornered deer should stay in FLEE, got %s", deer.State())
	}
	if ts.World.Grid().TerrainBlocked(deer.Cell().R, deer.Cell().C) {
		t.Fatal("deer ended up inside a wall")
	}
}
