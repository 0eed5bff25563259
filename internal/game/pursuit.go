package game

import (
	"errors"
	"fmt"
	"math"
)

// BoardSource selects which perception board a behaviour reads.
type BoardSource int

const (
	BoardTeam BoardSource = iota
	BoardPack
)

// LootConfig enables the carry-home tail after a kill.
type LootConfig struct {
	Kinds         []Archetype // kills of these kinds are hauled; empty = any
	PickupRange   float64
	UnloadSeconds float64
}

// PursuitProfile parameterises the shared search/approach/engage engine.
type PursuitProfile struct {
	EngageRange     float64
	Ranged          bool
	Cooldown        float64
	AllowedKinds    []Archetype
	Hostility       Hostility
	RequireAlive    bool
	AimDot          float64
	StandoffRadius  float64
	MaxSamples      int
	MaxSnapRadius   int
	TraceWindow     float64
	RepathCooldown  float64
	WatchdogWindow  float64 // seconds between stuck checks
	ProgressEpsilon float64 // minimum distance gain per watchdog window
	HoldInterval    float64
	SelectInterval  float64
	DisengageFactor float64
	Board           BoardSource
	Wander          WanderConfig
	Loot            *LootConfig
}

// DefaultPursuitProfile returns a melee profile with stock timings.
func DefaultPursuitProfile() PursuitProfile {
	return PursuitProfile{
		EngageRange:     1.5,
		Cooldown:        1.0,
		RequireAlive:    true,
		AimDot:          0.95,
		StandoffRadius:  1.5,
		MaxSamples:      12,
		MaxSnapRadius:   2,
		TraceWindow:     DefaultTraceWindow,
		RepathCooldown:  0.5,
		WatchdogWindow:  1.5,
		ProgressEpsilon: 0.25,
		HoldInterval:    0.6,
		SelectInterval:  0.5,
		DisengageFactor: 1.15,
		Wander:          DefaultWanderConfig(),
	}
}

// Pursuit is the one engine behind every hunting archetype.
type Pursuit struct {
	name    string
	Profile PursuitProfile
	wander  WanderController
}

// NewPursuit builds a pursuit behaviour with the given profile.
func NewPursuit(name string, p PursuitProfile) *Pursuit {
	return &Pursuit{name: name, Profile: p, wander: WanderController{Config: p.Wander}}
}

// Name returns the behaviour name.
func (p *Pursuit) Name() string { return p.name }

func (p *Pursuit) policy() TargetPolicy {
	return TargetPolicy{
		AllowedKinds: p.Profile.AllowedKinds,
		Hostility:    p.Profile.Hostility,
		RequireAlive: p.Profile.RequireAlive,
		TraceWindow:  p.Profile.TraceWindow,
	}
}

func (p *Pursuit) approachPhase() string {
	if p.Profile.Ranged {
		return "MOVE_TO_SHOT"
	}
	return "MOVE_TO_STRIKE"
}

func (p *Pursuit) engagePhase() string {
	if p.Profile.Ranged {
		return "SHOOT"
	}
	return "STRIKE"
}

// Update runs one decision step for a.
func (p *Pursuit) Update(w *World, a *Agent) {
	switch a.bs.State {
	case StateInit:
		w.setState(a, StateSearch, "SCAN")
		p.search(w, a)
	case StateSearch:
		p.search(w, a)
	case StateApproach:
		p.approach(w, a)
	case StateEngage:
		p.engage(w, a)
	case StateLoot:
		p.loot(w, a)
	case StateReturnHome:
		p.returnHome(w, a)
	case StateUnload:
		p.unload(w, a)
	default:
		w.setState(a, StateSearch, "SCAN")
	}
}

func (p *Pursuit) board(w *World, a *Agent) Board {
	return w.boardFor(a, p.Profile.Board)
}

func (p *Pursuit) search(w *World, a *Agent) {
	now := w.now
	if now >= a.bs.NextSelectAt {
		a.bs.NextSelectAt = now + p.Profile.SelectInterval
		if cand, ok := w.selector.PickClosest(a, p.board(w, a), p.policy(), w, now); ok {
			p.adopt(w, a, cand)
			a.bs.Wander = WanderState{}
			w.setState(a, StateApproach, p.approachPhase())
			p.approach(w, a)
			return
		}
	}

	base := a.pos
	if a.hasHome {
		base = a.home
	}
	switch p.wander.Update(w, a, &a.bs.Wander, base) {
	case WanderPaused:
		a.bs.Phase = "IDLE"
	default:
		a.bs.Phase = "WANDER"
	}
}

// adopt switches a to cand, clearing any plan built around the old target.
func (p *Pursuit) adopt(w *World, a *Agent, cand Candidate) {
	bs := &a.bs
	if bs.TargetID == cand.ID {
		bs.TargetPos = cand.Pos
		return
	}
	if bs.TargetID != 0 {
		w.log.Debug("agent changing target", "agent", a.label, "from", bs.TargetID, "to", cand.ID)
		w.record(a, "target", "switch", fmt.Sprintf("%d -> %d", bs.TargetID, cand.ID), math.Sqrt(cand.DistSq))
	} else {
		w.record(a, "target", "acquire", fmt.Sprintf("%d", cand.ID), math.Sqrt(cand.DistSq))
	}
	w.clearTarget(a)
	a.ClearPath()
	bs.TargetID = cand.ID
	bs.TargetPos = cand.Pos
}

// resolveTarget re-validates the current target's trace and liveness.
func (p *Pursuit) resolveTarget(w *World, a *Agent) (*Agent, error) {
	id := a.bs.TargetID
	if id == 0 {
		return nil, ErrTargetVanished
	}
	board := p.board(w, a)
	window := p.Profile.TraceWindow
	active := board.IsTraceActive(id, w.now)
	if window > 0 {
		active = board.TraceActiveWithin(id, w.now, window)
	}
	if !active {
		return nil, fmt.Errorf("target %d: %w", id, ErrStaleTarget)
	}
	t := w.Unit(id)
	if t == nil || !t.alive {
		return nil, fmt.Errorf("target %d: %w", id, ErrTargetVanished)
	}
	a.bs.TargetPos = t.pos
	return t, nil
}

// dropTarget returns a to SEARCH after a stale or vanished target.
func (p *Pursuit) dropTarget(w *World, a *Agent, err error) {
	key := "lost"
	if errors.Is(err, ErrStaleTarget) {
		key = "stale"
	}
	w.record(a, "target", key, err.Error(), 0)
	a.bs.LastFailure = err
	w.clearTarget(a)
	a.ClearPath()
	a.bs.NextSelectAt = w.now
	w.setState(a, StateSearch, "SCAN")
}

// bodyDist returns the distance from a to the nearest cell of t's body.
func bodyDist(a, t *Agent) (float64, Cell) {
	best := math.MaxFloat64
	var nearest Cell
	for _, c := range t.Footprint() {
		if d := a.pos.Dist(c.Center()); d < best {
			best, nearest = d, c
		}
	}
	return best, nearest
}

func (p *Pursuit) inStrikePosition(w *World, a, t *Agent, rangeScale float64) bool {
	d, nearest := bodyDist(a, t)
	if d > p.Profile.EngageRange*rangeScale {
		return false
	}
	return w.HasLineOfSight(a.pos.Cell(), nearest)
}

func (p *Pursuit) approach(w *World, a *Agent) {
	t, err := p.resolveTarget(w, a)
	if err != nil {
		p.dropTarget(w, a, err)
		return
	}
	now := w.now
	bs := &a.bs

	if now >= bs.NextSelectAt {
		bs.NextSelectAt = now + p.Profile.SelectInterval
		cur := Candidate{ID: t.id, Pos: t.pos, DistSq: a.pos.DistSq(t.pos), Live: true}
		if cand, ok := w.selector.PickClosest(a, p.board(w, a), p.policy(), w, now); ok &&
			w.selector.IsBetterThanCurrent(&cur, true, cand) {
			p.adopt(w, a, cand)
			if t = w.Unit(cand.ID); t == nil {
				return
			}
		}
	}

	if p.inStrikePosition(w, a, t, 1) {
		a.ClearPath()
		w.releaseReservation(a)
		bs.Nav = NavTarget{RepathAt: bs.Nav.RepathAt}
		w.setState(a, StateEngage, p.engagePhase())
		return
	}
	bs.Phase = p.approachPhase()

	replan := p.needsPlan(w, a, t)
	if !replan && bs.HoldUntil == 0 && p.watchdogTripped(w, a) {
		w.log.Debug("watchdog repath", "agent", a.label, "dest", bs.Nav.Dest)
		w.record(a, "nav", "watchdog", fmt.Sprintf("%v", bs.Nav.Dest), bs.Nav.LastDist)
		w.releaseReservation(a)
		bs.Nav.RepathAt = now
		replan = true
	}
	if replan && now >= bs.Nav.RepathAt {
		p.plan(w, a, t)
	}
}

// needsPlan decides whether the standoff reservation must be recomputed.
func (p *Pursuit) needsPlan(w *World, a *Agent, t *Agent) bool {
	bs := &a.bs
	res := bs.Reservation
	if !res.Valid() || res.TargetID != t.id {
		// Direct fallback route; retried once per repath cooldown.
		return true
	}
	now := w.now

	if w.grid.OccupiedByOther(res.Cell.R, res.Cell.C, a.id) {
		if bs.HoldUntil == 0 {
			bs.HoldUntil = now + p.Profile.HoldInterval
			a.ClearPath()
			w.record(a, "nav", "hold", fmt.Sprintf("%v occupied", res.Cell), 0)
			return false
		}
		if now < bs.HoldUntil {
			return false
		}
		bs.HoldUntil = 0
		a.bs.LastFailure = fmt.Errorf("reservation %v: %w", res.Cell, ErrOccupiedDestination)
		w.releaseReservation(a)
		bs.Nav.RepathAt = now
		return true
	}
	bs.HoldUntil = 0

	if res.Stale(t.pos, p.Profile.EngageRange) {
		return true
	}
	if res.Sticky(now) {
		return false
	}
	// Arrived but still not in strike position (no line of sight, or the body
	// of a long target shifted): pick another cell.
	return !a.IsMoving()
}

// watchdogTripped reports whether the agent failed to close on its
// destination over the last watchdog window.
func (p *Pursuit) watchdogTripped(w *World, a *Agent) bool {
	nav := &a.bs.Nav
	if !nav.Active || w.now < nav.CheckAt {
		return false
	}
	d := a.pos.Dist(nav.Dest.Center())
	nav.CheckAt = w.now + p.Profile.WatchdogWindow
	if d > nav.LastDist-p.Profile.ProgressEpsilon && d > arriveEpsilon {
		return true
	}
	nav.LastDist = d
	return false
}

func (p *Pursuit) plan(w *World, a *Agent, t *Agent) {
	bs := &a.bs
	now := w.now
	req := ApproachRequest{
		DesiredRadius:  p.Profile.StandoffRadius,
		MaxSamples:     p.Profile.MaxSamples,
		MaxSnapRadius:  p.Profile.MaxSnapRadius,
		MaxAllowedDist: p.Profile.EngageRange,
	}
	tgt := ApproachTarget{ID: t.id, Pos: t.pos, Cells: t.Footprint()}

	var dest Cell
	res, _, err := w.approach.Plan(a, tgt, req, now)
	if err == nil {
		bs.Reservation = res
		dest = res.Cell
		w.record(a, "nav", "reserve", fmt.Sprintf("%v", res.Cell), res.Cell.Center().Dist(t.pos))
	} else {
		w.log.Debug("approach fallback", "agent", a.label, "target", t.label, "err", err)
		bs.LastFailure = err
		w.releaseReservation(a)
		path, err := w.approach.PathToward(a, t.pos.Cell())
		if err != nil {
			bs.LastFailure = err
			bs.Nav = NavTarget{RepathAt: now + p.Profile.RepathCooldown}
			return
		}
		dest = path[len(path)-1]
	}
	bs.Nav = NavTarget{
		Dest:     dest,
		Active:   true,
		LastDist: a.pos.Dist(dest.Center()),
		CheckAt:  now + p.Profile.WatchdogWindow,
		RepathAt: now + p.Profile.RepathCooldown,
	}
}

func (p *Pursuit) engage(w *World, a *Agent) {
	t, err := p.resolveTarget(w, a)
	if err != nil {
		p.dropTarget(w, a, err)
		return
	}
	if !p.inStrikePosition(w, a, t, p.Profile.DisengageFactor) {
		w.setState(a, StateApproach, p.approachPhase())
		return
	}
	a.ClearPath()

	desired := HeadingTo(a.pos, t.pos)
	a.heading = turnToward(a.heading, desired, a.turnRate*w.dt)
	if aimDot(a.heading, desired) < p.Profile.AimDot {
		a.bs.Phase = "AIM"
		return
	}
	a.bs.Phase = p.engagePhase()

	now := w.now
	var killed bool
	if p.Profile.Ranged {
		if now < a.nextShotAt {
			return
		}
		a.nextShotAt = now + a.shotCooldown
		killed = w.FireRangedShot(a, t)
	} else {
		if now < a.nextMeleeAt {
			return
		}
		a.nextMeleeAt = now + a.meleeCooldown
		killed = w.ResolveMeleeHit(a, t)
	}
	if killed {
		p.onKill(w, a, t)
	}
}

func (p *Pursuit) onKill(w *World, a *Agent, t *Agent) {
	w.clearTarget(a)
	lc := p.Profile.Loot
	if lc == nil || (len(lc.Kinds) > 0 && !containsKind(lc.Kinds, t.kind)) || w.consumed[t.id] {
		w.setState(a, StateSearch, "SCAN")
		return
	}
	a.bs.LootID = t.id
	a.bs.LootCell = t.pos.Cell()
	w.setState(a, StateLoot, "MOVE_TO_CARCASS")
	if _, err := w.approach.PathToward(a, a.bs.LootCell); err != nil {
		a.bs.LastFailure = err
	}
}

func (p *Pursuit) loot(w *World, a *Agent) {
	bs := &a.bs
	lc := p.Profile.Loot
	if lc == nil || w.consumed[bs.LootID] {
		bs.LootID = 0
		w.setState(a, StateSearch, "SCAN")
		return
	}
	if a.pos.Dist(bs.LootCell.Center()) <= lc.PickupRange {
		a.ClearPath()
		w.consumed[bs.LootID] = true
		bs.HasCarry = true
		w.record(a, "loot", "pickup", fmt.Sprintf("%d", bs.LootID), 0)
		bs.LootID = 0
		w.setState(a, StateReturnHome, "CARRY")
		p.headHome(w, a)
		return
	}
	if !a.IsMoving() && w.now >= bs.Nav.RepathAt {
		bs.Nav.RepathAt = w.now + p.Profile.RepathCooldown
		if _, err := w.approach.PathToward(a, bs.LootCell); err != nil {
			bs.LastFailure = err
			bs.LootID = 0
			w.setState(a, StateSearch, "SCAN")
		}
	}
}

// homeOf returns a's drop-off point: its own home, else its pack den.
func (w *World) homeOf(a *Agent) (Pos, bool) {
	if a.hasHome {
		return a.home, true
	}
	if pb := w.packs[a.packID]; pb != nil {
		return pb.den, true
	}
	return Pos{}, false
}

func (p *Pursuit) headHome(w *World, a *Agent) {
	home, ok := w.homeOf(a)
	if !ok {
		return
	}
	if _, err := w.approach.PathToward(a, home.Cell()); err != nil {
		a.bs.LastFailure = err
	}
	a.bs.Nav.RepathAt = w.now + p.Profile.RepathCooldown
}

func (p *Pursuit) returnHome(w *World, a *Agent) {
	bs := &a.bs
	home, ok := w.homeOf(a)
	if !ok || !bs.HasCarry {
		bs.HasCarry = false
		w.setState(a, StateSearch, "SCAN")
		return
	}
	if a.pos.Dist(home) <= 1.5 {
		a.ClearPath()
		bs.UnloadUntil = w.now + p.Profile.Loot.UnloadSeconds
		w.setState(a, StateUnload, "UNLOAD")
		return
	}
	if !a.IsMoving() && w.now >= bs.Nav.RepathAt {
		p.headHome(w, a)
	}
}

func (p *Pursuit) unload(w *World, a *Agent) {
	bs := &a.bs
	if w.now < bs.UnloadUntil {
		return
	}
	bs.HasCarry = false
	bs.Delivered++
	w.record(a, "loot", "delivered", fmt.Sprintf("total %d", bs.Delivered), float64(bs.Delivered))
	w.setState(a, StateSearch, "SCAN")
}
