package game

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
)

// Approach defaults.
const (
	DefaultReservationStick = 1.2  // seconds a chosen standoff cell is kept
	DefaultSampleJitter     = 0.15 // fraction of the sample step
	fallbackRings           = 3
)

// ApproachRequest describes the standoff ring to search.
type ApproachRequest struct {
	DesiredRadius  float64 // ring radius in tiles
	MaxSamples     int
	MaxSnapRadius  int     // spiral search limit around each rounded sample
	MaxAllowedDist float64 // snapped cell centre must be within this of the target
}

// Reservation is a standoff cell an agent has committed to.
type Reservation struct {
	Cell       Cell
	TargetID   AgentID
	TargetPos  Pos // target position when the cell was chosen
	ChosenAt   float64
	StickUntil float64
}

// Valid reports whether the reservation is set.
func (r Reservation) Valid() bool { return r.TargetID != 0 }

// Sticky reports whether the stick timer still suppresses replanning.
func (r Reservation) Sticky(now float64) bool { return r.Valid() && now < r.StickUntil }

// Stale reports whether the target has moved so far that the cell is no longer
// within maxAllowed of it.
func (r Reservation) Stale(targetPos Pos, maxAllowed float64) bool {
	return r.Cell.Center().Dist(targetPos) > maxAllowed
}

// ReservationTable keeps two agents off the same standoff cell.
type ReservationTable struct {
	byCell  map[Cell]AgentID
	byAgent map[AgentID]Cell
}

// NewReservationTable returns an empty table.
func NewReservationTable() *ReservationTable {
	return &ReservationTable{
		byCell:  make(map[Cell]AgentID),
		byAgent: make(map[AgentID]Cell),
	}
}

// Reserve assigns c to id, releasing any cell id held before. It fails when
// another agent already holds c.
func (rt *ReservationTable) Reserve(id AgentID, c Cell) bool {
	if holder, ok := rt.byCell[c]; ok && holder != id {
		return false
	}
	rt.Release(id)
	rt.byCell[c] = id
	rt.byAgent[id] = c
	return true
}

// Release frees whatever cell id holds.
func (rt *ReservationTable) Release(id AgentID) {
	if c, ok := rt.byAgent[id]; ok {
		delete(rt.byAgent, id)
		if rt.byCell[c] == id {
			delete(rt.byCell, c)
		}
	}
}

// ReservedBy returns the holder of c, or 0.
func (rt *ReservationTable) ReservedBy(c Cell) AgentID { return rt.byCell[c] }

// IsReservedByOther reports whether c is held by an agent other than id.
func (rt *ReservationTable) IsReservedByOther(c Cell, id AgentID) bool {
	holder, ok := rt.byCell[c]
	return ok && holder != id
}

// Len returns the number of held cells.
func (rt *ReservationTable) Len() int { return len(rt.byCell) }

// ApproachTarget is the target as the planner sees it.
type ApproachTarget struct {
	ID    AgentID
	Pos   Pos
	Cells []Cell // footprint; never a valid destination
}

// ApproachPlanner finds standoff cells around a target.
type ApproachPlanner struct {
	grid         *Grid
	paths        *Pathfinder
	reservations *ReservationTable

	Stick      float64
	JitterFrac float64
}

// NewApproachPlanner returns a planner with default stickiness and jitter.
func NewApproachPlanner(g *Grid, pf *Pathfinder, rt *ReservationTable) *ApproachPlanner {
	return &ApproachPlanner{
		grid:         g,
		paths:        pf,
		reservations: rt,
		Stick:        DefaultReservationStick,
		JitterFrac:   DefaultSampleJitter,
	}
}

// sampleAngles returns n bearings around the target, starting from base and
// alternating either side of it, each jittered by up to jitterFrac of a step.
func sampleAngles(base float64, n int, jitterFrac float64, rng *rand.Rand) []float64 {
	if n <= 0 {
		return nil
	}
	step := 2 * math.Pi / float64(n)
	out := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		k := (i + 1) / 2
		if i%2 == 0 {
			k = -k
		}
		jitter := 0.0
		if rng != nil && jitterFrac > 0 {
			jitter = (rng.Float64()*2 - 1) * jitterFrac * step
		}
		out = append(out, normalizeAngle(base+float64(k)*step+jitter))
	}
	return out
}

// snap returns the acceptable cell nearest to p, searching Chebyshev rings
// around the rounded cell out to maxRadius.
func snap(p Pos, maxRadius int, accept func(Cell) bool) (Cell, bool) {
	origin := p.Cell()
	for r := 0; r <= maxRadius; r++ {
		var best Cell
		bestD := math.MaxFloat64
		found := false
		for dr := -r; dr <= r; dr++ {
			for dc := -r; dc <= r; dc++ {
				if max(absInt(dr), absInt(dc)) != r {
					continue
				}
				c := Cell{R: origin.R + dr, C: origin.C + dc}
				if !accept(c) {
					continue
				}
				if d := p.DistSq(c.Center()); d < bestD {
					best, bestD, found = c, d, true
				}
			}
		}
		if found {
			return best, true
		}
	}
	return Cell{}, false
}

// Plan picks a reachable standoff cell for a around tgt, reserves it and commits
// its path to locomotion. It never returns a cell whose centre is farther than
// req.MaxAllowedDist from tgt.Pos.
func (p *ApproachPlanner) Plan(a *Agent, tgt ApproachTarget, req ApproachRequest, now float64) (Reservation, []Cell, error) {
	base := HeadingTo(tgt.Pos, a.pos)
	if a.pos.DistSq(tgt.Pos) < 1e-9 {
		base = normalizeAngle(a.heading + math.Pi)
	}
	start := a.pos.Cell()
	tried := make(map[Cell]bool)

	accept := func(c Cell) bool {
		if !p.grid.InBounds(c.R, c.C) || p.grid.IsBlocked(c.R, c.C, a.id) {
			return false
		}
		if cellIn(c, tgt.Cells) {
			return false
		}
		return !p.reservations.IsReservedByOther(c, a.id)
	}

	for _, ang := range sampleAngles(base, req.MaxSamples, p.JitterFrac, a.rng) {
		proj := tgt.Pos.Add(ang, req.DesiredRadius)
		c, ok := snap(proj, req.MaxSnapRadius, accept)
		if !ok || tried[c] {
			continue
		}
		tried[c] = true
		if c.Center().Dist(tgt.Pos) > req.MaxAllowedDist {
			continue
		}
		path, err := p.paths.FindPath(start, c, a.id)
		if err != nil || len(path) == 0 {
			continue
		}
		if !p.reservations.Reserve(a.id, c) {
			continue
		}
		res := Reservation{
			Cell:       c,
			TargetID:   tgt.ID,
			TargetPos:  tgt.Pos,
			ChosenAt:   now,
			StickUntil: now + p.Stick,
		}
		a.SetPath(path)
		return res, path, nil
	}
	return Reservation{}, nil, fmt.Errorf("approach %s around %v: %w", a.label, tgt.Pos.Cell(), ErrNoReachableApproach)
}

// PathToward paths a toward goal, or failing that toward the nearest reachable
// cell within a few rings of it, and commits the result to locomotion.
func (p *ApproachPlanner) PathToward(a *Agent, goal Cell) ([]Cell, error) {
	start := a.pos.Cell()
	if path, err := p.paths.FindPath(start, goal, a.id); err == nil {
		a.SetPath(path)
		return path, nil
	}
	for r := 1; r <= fallbackRings; r++ {
		var ring []Cell
		for dr := -r; dr <= r; dr++ {
			for dc := -r; dc <= r; dc++ {
				if max(absInt(dr), absInt(dc)) != r {
					continue
				}
				c := Cell{R: goal.R + dr, C: goal.C + dc}
				if p.grid.InBounds(c.R, c.C) && !p.grid.IsBlocked(c.R, c.C, a.id) {
					ring = append(ring, c)
				}
			}
		}
		sort.SliceStable(ring, func(i, j int) bool {
			return a.pos.DistSq(ring[i].Center()) < a.pos.DistSq(ring[j].Center())
		})
		for _, c := range ring {
			if path, err := p.paths.FindPath(start, c, a.id); err == nil {
				a.SetPath(path)
				return path, nil
			}
		}
	}
	return nil, fmt.Errorf("path %s toward %v: %w", a.label, goal, ErrNoPath)
}
