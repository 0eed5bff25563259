package game

import (
	"fmt"
	"math"
)

// FormationType is the slot layout of a fan-out move order.
type FormationType int

const (
	FormationBlob   FormationType = iota // nearest free cells around the destination
	FormationLine                        // side-by-side across the direction of travel
	FormationWedge                       // V-shape, first unit at the point
	FormationColumn                      // single file behind the destination
)

func (ft FormationType) String() string {
	switch ft {
	case FormationLine:
		return "line"
	case FormationWedge:
		return "wedge"
	case FormationColumn:
		return "column"
	default:
		return "blob"
	}
}

// formationOffsets returns local (forward, right) offsets in cells for count
// slots. Slot 0 sits on the destination.
func formationOffsets(ft FormationType, count int) [][2]float64 {
	offsets := make([][2]float64, count)
	for i := 1; i < count; i++ {
		step := float64((i + 1) / 2)
		side := step
		if i%2 == 1 {
			side = -side
		}
		switch ft {
		case FormationLine:
			offsets[i] = [2]float64{0, side}
		case FormationWedge:
			offsets[i] = [2]float64{-step, side}
		case FormationColumn:
			offsets[i] = [2]float64{-float64(i), 0}
		}
	}
	return offsets
}

// slotPos converts a local (forward, right) offset into a grid position.
// Forward runs along heading; right is 90° clockwise from it.
func slotPos(origin Pos, heading, fwd, right float64) Pos {
	return origin.Add(heading, fwd).Add(heading+math.Pi/2, right)
}

// orderSlots returns count distinct free cells around dest in layout ft.
func (w *World) orderSlots(units []*Agent, dest Cell, heading float64, ft FormationType) []Cell {
	taken := make(map[Cell]bool)
	free := func(c Cell) bool {
		if !w.grid.InBounds(c.R, c.C) || w.grid.TerrainBlocked(c.R, c.C) || taken[c] {
			return false
		}
		for _, id := range w.grid.Occupants(c.R, c.C) {
			if !unitIn(id, units) {
				return false
			}
		}
		return true
	}

	var slots []Cell
	if ft == FormationBlob {
		maxRing := len(units) + 2
		for r := 0; r <= maxRing && len(slots) < len(units); r++ {
			for dr := -r; dr <= r; dr++ {
				for dc := -r; dc <= r; dc++ {
					if max(absInt(dr), absInt(dc)) != r {
						continue
					}
					c := Cell{R: dest.R + dr, C: dest.C + dc}
					if free(c) {
						taken[c] = true
						slots = append(slots, c)
					}
				}
			}
		}
		if len(slots) > len(units) {
			slots = slots[:len(units)]
		}
		return slots
	}

	for _, off := range formationOffsets(ft, len(units)) {
		p := slotPos(dest.Center(), heading, off[0], off[1])
		if c, ok := snap(p, 2, free); ok {
			taken[c] = true
			slots = append(slots, c)
		}
	}
	return slots
}

// rerouteOrder repaths an ordered agent whose next cell is held by another
// body. Occupied cells are avoided; if nothing is reachable the order lapses.
func (w *World) rerouteOrder(a *Agent) {
	dest := a.path[len(a.path)-1]
	if _, err := w.approach.PathToward(a, dest); err != nil {
		a.ClearPath()
		a.ordered = false
		w.record(a, "order", "failed", fmt.Sprintf("%v: %v", dest, err), 0)
		return
	}
	w.record(a, "order", "reroute", fmt.Sprintf("%v", dest), 0)
}

func unitIn(id AgentID, units []*Agent) bool {
	for _, u := range units {
		if u.id == id {
			return true
		}
	}
	return false
}

// IssueMoveOrder fans units out around dest: slot cells are laid out, each
// slot goes greedily to the nearest unassigned unit, and every unit receives a
// path. Ordered units ignore their behaviour until they arrive. Returns how many
// units got a path.
func (w *World) IssueMoveOrder(units []*Agent, dest Cell, ft FormationType) (int, error) {
	var live []*Agent
	for _, u := range units {
		if u != nil && u.alive {
			live = append(live, u)
		}
	}
	if len(live) == 0 {
		return 0, nil
	}
	if !w.grid.InBounds(dest.R, dest.C) {
		return 0, fmt.Errorf("move order to %v: %w", dest, ErrOutOfBounds)
	}

	var centroid Pos
	for _, u := range live {
		centroid.R += u.pos.R
		centroid.C += u.pos.C
	}
	centroid.R /= float64(len(live))
	centroid.C /= float64(len(live))
	heading := HeadingTo(centroid, dest.Center())

	slots := w.orderSlots(live, dest, heading, ft)
	assigned := make(map[AgentID]bool)
	moved := 0
	for _, slot := range slots {
		var best *Agent
		bestD := math.MaxFloat64
		for _, u := range live {
			if assigned[u.id] {
				continue
			}
			if d := u.pos.DistSq(slot.Center()); d < bestD {
				best, bestD = u, d
			}
		}
		if best == nil {
			break
		}
		assigned[best.id] = true
		if _, err := w.approach.PathToward(best, slot); err != nil {
			w.record(best, "order", "failed", fmt.Sprintf("%v: %v", slot, err), 0)
			continue
		}
		w.clearTarget(best)
		best.ordered = true
		best.bs.Wander = WanderState{}
		w.setState(best, StateSearch, "ORDERED")
		w.record(best, "order", "move", fmt.Sprintf("%v", slot), 0)
		moved++
	}
	return moved, nil
}
