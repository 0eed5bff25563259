package game

import (
	"math"
)

// WanderConfig tunes idle exploration. Times are seconds, distances tiles.
type WanderConfig struct {
	LegMin, LegMax       float64 // leg retarget timeout range
	RadiusMin, RadiusMax float64 // destination distance from the base point
	MaxNudges            int
	NudgeMinTravel       float64
	NudgeMinTurn         float64 // radians
	ArriveDist           float64
	PauseMin, PauseMax   float64
	NudgeInterval        float64
	NudgeChance          float64
	PickAttempts         int
}

// DefaultWanderConfig returns the stock wander tuning.
func DefaultWanderConfig() WanderConfig {
	return WanderConfig{
		LegMin:         2.5,
		LegMax:         4.0,
		RadiusMin:      4,
		RadiusMax:      10,
		MaxNudges:      2,
		NudgeMinTravel: 1.75,
		NudgeMinTurn:   25 * math.Pi / 180,
		ArriveDist:     0.6,
		PauseMin:       1.0,
		PauseMax:       2.2,
		NudgeInterval:  0.75,
		NudgeChance:    0.35,
		PickAttempts:   12,
	}
}

// WanderState is the per-agent leg bookkeeping.
type WanderState struct {
	Dest         Cell
	Active       bool
	LegDeadline  float64
	PauseUntil   float64
	NextNudgeAt  float64
	Nudges       int
	LastNudgePos Pos
}

// WanderPhase is what Update did this tick.
type WanderPhase int

const (
	WanderPaused  WanderPhase = iota // resting between legs
	WanderStarted                    // a new leg was planned this tick
	WanderMoving                     // travelling along the current leg
)

func (p WanderPhase) String() string {
	switch p {
	case WanderPaused:
		return "paused"
	case WanderStarted:
		return "started"
	case WanderMoving:
		return "moving"
	default:
		return "unknown"
	}
}

// WanderController drives idle legs for one agent at a time.
type WanderController struct {
	Config WanderConfig
}

// nudgeAllowed applies the per-leg nudge limits.
func (wc WanderController) nudgeAllowed(traveled, headingChange float64, nudges int) bool {
	cfg := wc.Config
	return nudges < cfg.MaxNudges &&
		traveled >= cfg.NudgeMinTravel &&
		math.Abs(headingChange) >= cfg.NudgeMinTurn
}

func (wc WanderController) between(a *Agent, lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	return lo + a.rng.Float64()*(hi-lo)
}

func (wc WanderController) pause(w *World, a *Agent, ws *WanderState) {
	a.ClearPath()
	ws.Active = false
	ws.PauseUntil = w.now + wc.between(a, wc.Config.PauseMin, wc.Config.PauseMax)
}

// pickDestination tries random points around base until one has a path.
func (wc WanderController) pickDestination(w *World, a *Agent, base Pos) (Cell, []Cell, bool) {
	attempts := max(wc.Config.PickAttempts, 1)
	start := a.pos.Cell()
	for i := 0; i < attempts; i++ {
		ang := a.rng.Float64() * 2 * math.Pi
		dist := wc.between(a, wc.Config.RadiusMin, wc.Config.RadiusMax)
		c := base.Add(ang, dist).Cell()
		if c == start || w.grid.IsBlocked(c.R, c.C, a.id) {
			continue
		}
		path, err := w.paths.FindPath(start, c, a.id)
		if err != nil {
			continue
		}
		return c, path, true
	}
	return Cell{}, nil, false
}

// Update advances the wander cycle: pause, pick a leg, travel with occasional
// nudges, then pause again on arrival or timeout.
func (wc WanderController) Update(w *World, a *Agent, ws *WanderState, base Pos) WanderPhase {
	now := w.now
	if now < ws.PauseUntil {
		return WanderPaused
	}

	if !ws.Active {
		dest, path, ok := wc.pickDestination(w, a, base)
		if !ok {
			wc.pause(w, a, ws)
			return WanderPaused
		}
		a.SetPath(path)
		*ws = WanderState{
			Dest:         dest,
			Active:       true,
			LegDeadline:  now + wc.between(a, wc.Config.LegMin, wc.Config.LegMax),
			NextNudgeAt:  now + wc.Config.NudgeInterval,
			LastNudgePos: a.pos,
		}
		return WanderStarted
	}

	if a.pos.Dist(ws.Dest.Center()) <= wc.Config.ArriveDist || !a.IsMoving() || now >= ws.LegDeadline {
		wc.pause(w, a, ws)
		return WanderPaused
	}

	if now >= ws.NextNudgeAt {
		ws.NextNudgeAt = now + wc.Config.NudgeInterval
		if a.rng.Float64() < wc.Config.NudgeChance {
			wc.tryNudge(w, a, ws)
		}
	}
	return WanderMoving
}

// tryNudge bends the current leg by rotating the destination about the agent.
func (wc WanderController) tryNudge(w *World, a *Agent, ws *WanderState) {
	cur := HeadingTo(a.pos, ws.Dest.Center())
	turn := wc.Config.NudgeMinTurn * (1 + a.rng.Float64())
	if a.rng.Intn(2) == 0 {
		turn = -turn
	}
	remaining := a.pos.Dist(ws.Dest.Center())
	next := a.pos.Add(cur+turn, remaining).Cell()
	change := normalizeAngle(HeadingTo(a.pos, next.Center()) - cur)

	if !wc.nudgeAllowed(a.pos.Dist(ws.LastNudgePos), change, ws.Nudges) {
		return
	}
	if w.grid.IsBlocked(next.R, next.C, a.id) {
		return
	}
	path, err := w.paths.FindPath(a.pos.Cell(), next, a.id)
	if err != nil {
		return
	}
	a.SetPath(path)
	ws.Dest = next
	ws.Nudges++
	ws.LastNudgePos = a.pos
}
