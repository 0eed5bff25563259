package game

import (
	"fmt"
	"math"
)

// FleeProfile tunes prey behaviour. FLEE starts when a threat is within
// FearRadius and ends only once every threat is beyond SafeRadius.
type FleeProfile struct {
	FearRadius     float64
	SafeRadius     float64
	ThreatKinds    []Archetype // empty = any other team
	TraceWindow    float64
	ReplanInterval float64
	Wander         WanderConfig
}

// DefaultFleeProfile returns the stock prey tuning.
func DefaultFleeProfile() FleeProfile {
	return FleeProfile{
		FearRadius:     7,
		SafeRadius:     12,
		ThreatKinds:    []Archetype{KindWolf, KindHunter, KindKnight},
		TraceWindow:    DefaultTraceWindow,
		ReplanInterval: 0.5,
		Wander:         DefaultWanderConfig(),
	}
}

// fleeOffsets are the bearings tried around "directly away", in order.
var fleeOffsets = []float64{0, 30, -30, 60, -60, 90, -90}

// Flee is the grazing/fleeing behaviour of prey.
type Flee struct {
	Profile FleeProfile
	wander  WanderController
}

// NewFlee builds a prey behaviour.
func NewFlee(p FleeProfile) *Flee {
	return &Flee{Profile: p, wander: WanderController{Config: p.Wander}}
}

// Name returns the behaviour name.
func (f *Flee) Name() string { return "flee" }

// nearestThreat returns the closest remembered threat, using its live position
// when it still resolves.
func (f *Flee) nearestThreat(w *World, a *Agent) (*Agent, Pos, float64, bool) {
	board := w.boardFor(a, BoardTeam)
	var best *Agent
	var bestPos Pos
	bestD := math.MaxFloat64
	for _, s := range board.Sightings() {
		if s.Team == a.team {
			continue
		}
		if len(f.Profile.ThreatKinds) > 0 && !containsKind(f.Profile.ThreatKinds, s.Kind) {
			continue
		}
		if !board.TraceActiveWithin(s.TargetID, w.now, f.Profile.TraceWindow) {
			continue
		}
		t := w.Unit(s.TargetID)
		if t == nil || !t.alive {
			continue
		}
		if d := a.pos.Dist(t.pos); d < bestD {
			best, bestPos, bestD = t, t.pos, d
		}
	}
	return best, bestPos, bestD, best != nil
}

// Update runs one decision step for a.
func (f *Flee) Update(w *World, a *Agent) {
	threat, threatPos, d, ok := f.nearestThreat(w, a)
	bs := &a.bs

	if bs.State == StateFlee {
		if !ok || d > f.Profile.SafeRadius {
			a.ClearPath()
			bs.Flee = FleeState{}
			bs.Wander = WanderState{PauseUntil: w.now}
			detail := "no threat"
			if ok {
				detail = fmt.Sprintf("nearest %.1f", d)
			}
			w.record(a, "flee", "exit", detail, 0)
			w.setState(a, StateGraze, "GRAZE")
			return
		}
		if threat.id != bs.Flee.ThreatID || w.now >= bs.Flee.ReplanAt || !a.IsMoving() {
			f.run(w, a, threat, threatPos)
		}
		return
	}

	if ok && d <= f.Profile.FearRadius {
		bs.Wander = WanderState{}
		w.record(a, "flee", "enter", threat.label, d)
		w.setState(a, StateFlee, "RUN")
		f.run(w, a, threat, threatPos)
		return
	}

	base := a.pos
	if a.hasHome {
		base = a.home
	}
	switch f.wander.Update(w, a, &bs.Wander, base) {
	case WanderPaused:
		w.setState(a, StateGraze, "GRAZE")
	default:
		w.setState(a, StateWander, "WANDER")
	}
}

// run picks a destination away from the threat, beyond the safe radius when the
// map allows, then closer fallbacks.
func (f *Flee) run(w *World, a *Agent, threat *Agent, threatPos Pos) {
	bs := &a.bs
	bs.Flee.ThreatID = threat.id
	bs.Flee.ReplanAt = w.now + f.Profile.ReplanInterval

	away := HeadingTo(threatPos, a.pos)
	if a.pos.DistSq(threatPos) < 1e-9 {
		away = normalizeAngle(a.heading + math.Pi)
	}
	start := a.pos.Cell()

	tryAt := func(p Pos) bool {
		c, ok := snap(p, 1, func(c Cell) bool {
			return w.grid.InBounds(c.R, c.C) && !w.grid.IsBlocked(c.R, c.C, a.id) && c != start
		})
		if !ok {
			return false
		}
		path, err := w.paths.FindPath(start, c, a.id)
		if err != nil {
			return false
		}
		a.SetPath(path)
		bs.Nav = NavTarget{Dest: c, Active: true, LastDist: a.pos.Dist(c.Center())}
		return true
	}

	// Past the safe radius from the threat, then at it, then a short dash.
	for _, reach := range []float64{f.Profile.SafeRadius + 2, f.Profile.SafeRadius} {
		for _, off := range fleeOffsets {
			ang := away + off*math.Pi/180
			if tryAt(threatPos.Add(ang, reach)) {
				return
			}
		}
	}
	for _, off := range fleeOffsets {
		if tryAt(a.pos.Add(away+off*math.Pi/180, 3)) {
			return
		}
	}
	bs.LastFailure = fmt.Errorf("flee %s: %w", a.label, ErrNoPath)
}
