package game

import (
	"fmt"
	"math"
)

// arriveEpsilon is how close (in cells) an agent must get to a waypoint centre
// before the waypoint is popped.
const arriveEpsilon = 0.05

// MoveResult is the locomotion outcome of one tick.
type MoveResult int

const (
	MoveIdle    MoveResult = iota // no waypoints queued
	MoveMoving                    // advanced toward the queue head
	MoveArrived                   // consumed the final waypoint this tick
	MoveBlocked                   // next cell held by another agent; did not move
)

func (m MoveResult) String() string {
	switch m {
	case MoveIdle:
		return "idle"
	case MoveMoving:
		return "moving"
	case MoveArrived:
		return "arrived"
	case MoveBlocked:
		return "blocked"
	default:
		return "unknown"
	}
}

// SetPath replaces the waypoint queue. A leading cell equal to the agent's
// current cell is dropped once the agent already sits on its centre.
func (a *Agent) SetPath(path []Cell) {
	if len(path) > 0 && path[0] == a.pos.Cell() && a.pos.Dist(path[0].Center()) < arriveEpsilon {
		path = path[1:]
	}
	a.path = append([]Cell(nil), path...)
}

// ClearPath empties the waypoint queue. Always safe.
func (a *Agent) ClearPath() {
	a.path = nil
}

// IsMoving reports whether the agent still has waypoints queued.
func (a *Agent) IsMoving() bool { return len(a.path) > 0 }

// LastMove returns the locomotion result of the previous tick.
func (a *Agent) LastMove() MoveResult { return a.lastMove }

// advance moves the agent toward its queued waypoints at speed*dt. A
// non-positive dt changes nothing.
func (a *Agent) advance(g *Grid, dt float64) MoveResult {
	if len(a.path) == 0 {
		return MoveIdle
	}
	if dt <= 0 {
		return MoveMoving
	}

	remaining := a.speed * dt
	turn := a.turnRate * dt
	if a.turnRate <= 0 {
		turn = math.Inf(1)
	}
	for remaining > 0 && len(a.path) > 0 {
		wp := a.path[0]
		target := wp.Center()
		dr := target.R - a.pos.R
		dc := target.C - a.pos.C
		dist := math.Sqrt(dr*dr + dc*dc)

		if dist < arriveEpsilon {
			a.pos = target
			a.path = a.path[1:]
			continue
		}
		// Entering a new cell requires it to be free of other bodies.
		if wp != a.pos.Cell() && g.IsBlocked(wp.R, wp.C, a.id) {
			return MoveBlocked
		}

		next := target
		if dist > remaining {
			next = Pos{R: a.pos.R + (dr/dist)*remaining, C: a.pos.C + (dc/dist)*remaining}
		}
		heading := turnToward(a.heading, math.Atan2(dr, dc), turn)
		if a.bodyBlocked(g, next, heading) {
			return MoveBlocked
		}
		turn = math.Max(0, turn-math.Abs(normalizeAngle(heading-a.heading)))
		a.heading = heading
		a.pos = next
		if dist <= remaining {
			remaining -= dist
			a.path = a.path[1:]
		} else {
			remaining = 0
		}
	}
	if len(a.path) == 0 {
		return MoveArrived
	}
	return MoveMoving
}

// bodyBlocked reports whether any cell the agent's body would newly cover at
// pos and heading is held by another agent.
func (a *Agent) bodyBlocked(g *Grid, pos Pos, heading float64) bool {
	held := a.Footprint()
	for _, c := range Footprint(pos, heading, a.length) {
		if cellIn(c, held) {
			continue
		}
		if g.OccupiedByOther(c.R, c.C, a.id) {
			return true
		}
	}
	return false
}

// commandMove queues a single adjacent cell without running the pathfinder.
func commandMove(g *Grid, a *Agent, to Cell) error {
	if !g.InBounds(to.R, to.C) {
		return fmt.Errorf("command move %s to %v: %w", a.label, to, ErrOutOfBounds)
	}
	if a.pos.Cell().Chebyshev(to) > 1 {
		return fmt.Errorf("command move %s to %v: %w", a.label, to, ErrNotAdjacent)
	}
	if g.IsBlocked(to.R, to.C, a.id) {
		return fmt.Errorf("command move %s to %v: %w", a.label, to, ErrCellBlocked)
	}
	a.path = []Cell{to}
	return nil
}
