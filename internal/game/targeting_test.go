package game

import "testing"

type unitMap map[AgentID]*Agent

func (m unitMap) Unit(id AgentID) *Agent { return m[id] }

func TestIsBetterThanCurrent_Hysteresis(t *testing.T) {
	ts := TargetSelector{Margin: 0.5}
	cur := &Candidate{ID: 1, DistSq: 10}

	if !ts.IsBetterThanCurrent(nil, false, Candidate{ID: 2, DistSq: 100}) {
		t.Fatal("any candidate beats no target")
	}
	if !ts.IsBetterThanCurrent(cur, false, Candidate{ID: 2, DistSq: 100}) {
		t.Fatal("any candidate beats an inactive target")
	}
	if ts.IsBetterThanCurrent(cur, true, Candidate{ID: 1, DistSq: 0}) {
		t.Fatal("the current target never replaces itself")
	}
	// 9.75 + 0.25 == 10 is not strictly better.
	if ts.IsBetterThanCurrent(cur, true, Candidate{ID: 2, DistSq: 9.75}) {
		t.Fatal("a candidate inside the margin must not switch")
	}
	if !ts.IsBetterThanCurrent(cur, true, Candidate{ID: 2, DistSq: 9.7}) {
		t.Fatal("a candidate past the margin must switch")
	}
}

func TestIsBetterThanCurrent_NoFlipFlop(t *testing.T) {
	ts := NewTargetSelector()
	a := Candidate{ID: 1, DistSq: 16}
	b := Candidate{ID: 2, DistSq: 16.1}
	if ts.IsBetterThanCurrent(&a, true, b) || ts.IsBetterThanCurrent(&b, true, a) {
		t.Fatal("near-equal candidates must not displace each other")
	}
}

func TestPickClosest_PolicyAndLiveness(t *testing.T) {
	hunter := &Agent{id: 1, team: TeamVillage, kind: KindHunter, pos: Pos{0, 0}, alive: true}
	deerNear := &Agent{id: 2, team: TeamFauna, kind: KindDeer, pos: Pos{0, 3}, alive: true}
	deerFar := &Agent{id: 3, team: TeamFauna, kind: KindDeer, pos: Pos{0, 6}, alive: true}
	wolf := &Agent{id: 4, team: TeamWild, kind: KindWolf, pos: Pos{0, 1}, alive: true}
	units := unitMap{1: hunter, 2: deerNear, 3: deerFar, 4: wolf}

	tb := NewTeamBoard(TeamVillage, 10)
	tb.Observe(deerNear, 0)
	tb.Observe(deerFar, 0)
	tb.Observe(wolf, 0)
	tb.Observe(hunter, 0)

	ts := NewTargetSelector()
	policy := TargetPolicy{AllowedKinds: []Archetype{KindDeer}, Hostility: PreyClass, RequireAlive: true}

	c, ok := ts.PickClosest(hunter, tb, policy, units, 1)
	if !ok || c.ID != 2 {
		t.Fatalf("expected near deer, got %+v ok=%v", c, ok)
	}
	if !c.Live || c.DistSq != 9 {
		t.Fatalf("candidate should use live position, got %+v", c)
	}

	// Live position wins over the stale board entry.
	deerNear.pos = Pos{0, 9}
	c, _ = ts.PickClosest(hunter, tb, policy, units, 1)
	if c.ID != 3 {
		t.Fatalf("expected far deer once near deer moved away, got %d", c.ID)
	}

	deerFar.alive = false
	c, _ = ts.PickClosest(hunter, tb, policy, units, 1)
	if c.ID != 2 {
		t.Fatalf("dead targets are skipped, got %d", c.ID)
	}

	delete(units, 2)
	if _, ok := ts.PickClosest(hunter, tb, policy, units, 1); ok {
		t.Fatal("RequireAlive drops ids that no longer resolve")
	}

	policy.RequireAlive = false
	c, ok = ts.PickClosest(hunter, tb, policy, units, 1)
	if !ok || c.ID != 2 || c.Live {
		t.Fatalf("without RequireAlive the last-seen position is used, got %+v", c)
	}
}

func TestPickClosest_TraceWindowAndHostility(t *testing.T) {
	guard := &Agent{id: 1, team: TeamVillage, kind: KindGuard, alive: true}
	knight := &Agent{id: 2, team: TeamRaiders, kind: KindKnight, pos: Pos{0, 4}, alive: true}
	deer := &Agent{id: 3, team: TeamFauna, kind: KindDeer, pos: Pos{0, 1}, alive: true}
	units := unitMap{1: guard, 2: knight, 3: deer}

	tb := NewTeamBoard(TeamVillage, 10)
	tb.Observe(knight, 0)
	tb.Observe(deer, 0)

	ts := NewTargetSelector()
	policy := TargetPolicy{Hostility: Defender, TraceWindow: 5}
	if c, ok := ts.PickClosest(guard, tb, policy, units, 4); !ok || c.ID != 2 {
		t.Fatalf("guard should pick the knight, got %+v", c)
	}
	if _, ok := ts.PickClosest(guard, tb, policy, units, 6); ok {
		t.Fatal("trace older than the window must be ignored")
	}
	policy.TraceWindow = 0
	if _, ok := ts.PickClosest(guard, tb, policy, units, 6); !ok {
		t.Fatal("without a window the board TTL applies")
	}
}

func TestPickClosest_TieGoesToLowerID(t *testing.T) {
	wolf := &Agent{id: 1, team: TeamWild, kind: KindWolf, pos: Pos{5, 5}, alive: true}
	a := &Agent{id: 8, team: TeamFauna, kind: KindDeer, pos: Pos{5, 8}, alive: true}
	b := &Agent{id: 6, team: TeamFauna, kind: KindDeer, pos: Pos{8, 5}, alive: true}
	tb := NewTeamBoard(TeamWild, 10)
	tb.Observe(a, 0)
	tb.Observe(b, 0)

	c, ok := NewTargetSelector().PickClosest(wolf, tb, TargetPolicy{Hostility: PredatorClass}, unitMap{1: wolf, 6: b, 8: a}, 0)
	if !ok || c.ID != 6 {
		t.Fatalf("expected lower id on a tie, got %+v", c)
	}
}

func TestHostilityRules(t *testing.T) {
	villager := &Agent{team: TeamVillage}
	raider := &Agent{team: TeamRaiders}
	wolf := &Agent{team: TeamWild}
	s := func(team Team) Sighting { return Sighting{Team: team} }

	cases := []struct {
		name string
		h    Hostility
		obs  *Agent
		tgt  Team
		want bool
	}{
		{"raider vs village", OpposingFaction, raider, TeamVillage, true},
		{"raider vs fauna", OpposingFaction, raider, TeamFauna, false},
		{"raider vs own", OpposingFaction, raider, TeamRaiders, false},
		{"hunter vs fauna", PreyClass, villager, TeamFauna, true},
		{"hunter vs wild", PreyClass, villager, TeamWild, false},
		{"wolf vs village", PredatorClass, wolf, TeamVillage, true},
		{"wolf vs wild", PredatorClass, wolf, TeamWild, false},
		{"guard vs wild", Defender, villager, TeamWild, true},
		{"guard vs fauna", Defender, villager, TeamFauna, false},
	}
	for _, tc := range cases {
		if got := tc.h(tc.obs, s(tc.tgt)); got != tc.want {
			t.Fatalf("%s: got %v", tc.name, got)
		}
	}

	for _, name := range []string{"opposing_faction", "prey", "predator", "defender"} {
		if _, err := HostilityByName(name); err != nil {
			t.Fatalf("%s: %v", name, err)
		}
	}
	if _, err := HostilityByName("everyone"); err == nil {
		t.Fatal("unknown rule must fail")
	}
}

func TestTargetSwitch_StableUnderRepeatedCalls(t *testing.T) {
	wolf := &Agent{id: 1, team: TeamWild, kind: KindWolf, pos: Pos{0, 0}, alive: true}
	cur := &Agent{id: 2, team: TeamFauna, kind: KindDeer, pos: Pos{0, 4}, alive: true}
	rival := &Agent{id: 3, team: TeamFauna, kind: KindDeer, pos: Pos{3.98, 0}, alive: true}
	units := unitMap{1: wolf, 2: cur, 3: rival}
	tb := NewTeamBoard(TeamWild, 10)
	tb.Observe(cur, 0)
	tb.Observe(rival, 0)

	ts := NewTargetSelector()
	current := Candidate{ID: 2, Pos: cur.pos, DistSq: wolf.pos.DistSq(cur.pos), Live: true}
	for i := 0; i < 10; i++ {
		cand, ok := ts.PickClosest(wolf, tb, TargetPolicy{Hostility: PredatorClass}, units, 1)
		if !ok || cand.ID != 3 {
			t.Fatalf("call %d: closest = %+v", i, cand)
		}
		if ts.IsBetterThanCurrent(&current, true, cand) {
			t.Fatalf("call %d: 3.98 vs 4.0 is inside the margin and must not switch", i)
		}
	}
}
