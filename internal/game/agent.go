package game

import (
	"fmt"
	"math/rand"
)

// Agent is an autonomous unit on the grid. Locomotion mutates its position;
// its behaviour mutates target, orientation and timers.
type Agent struct {
	id    AgentID
	label string
	team  Team
	kind  Archetype

	pos      Pos
	heading  float64 // radians, 0 = +C, pi/2 = +R
	length   int     // body length in cells (1 or 2)
	speed    float64 // cells per second
	turnRate float64 // radians per second

	sightRadius float64
	hp          float64
	alive       bool
	selected    bool

	// Combat timers, in world seconds.
	nextMeleeAt   float64
	nextShotAt    float64
	meleeCooldown float64
	shotCooldown  float64

	// Navigation
	path     []Cell // waypoint queue; head is the next cell to reach
	ordered  bool   // following an external move order; behaviour yields
	lastMove MoveResult

	home    Pos
	hasHome bool
	packID  int

	behavior Behavior
	bs       BehaviorState
	rng      *rand.Rand
}

// ID returns the agent's identity.
func (a *Agent) ID() AgentID { return a.id }

// Label returns the short display label, e.g. "H1".
func (a *Agent) Label() string { return a.label }

// Team returns the agent's faction.
func (a *Agent) Team() Team { return a.team }

// Kind returns the agent's archetype.
func (a *Agent) Kind() Archetype { return a.kind }

// Pos returns the continuous position.
func (a *Agent) Pos() Pos { return a.pos }

// Cell returns the rounded grid position.
func (a *Agent) Cell() Cell { return a.pos.Cell() }

// Heading returns the orientation in radians.
func (a *Agent) Heading() float64 { return a.heading }

// Facing returns the discrete 8-way orientation.
func (a *Agent) Facing() Facing { return FacingFromHeading(a.heading) }

// Length returns the body length in cells.
func (a *Agent) Length() int { return a.length }

// Speed returns the movement speed in cells per second.
func (a *Agent) Speed() float64 { return a.speed }

// HP returns the remaining hit points.
func (a *Agent) HP() float64 { return a.hp }

// Alive reports whether the agent is still in play.
func (a *Agent) Alive() bool { return a.alive }

// Selected reports whether the UI has selected this agent.
func (a *Agent) Selected() bool { return a.selected }

// SetSelected marks the agent as selected by an external UI.
func (a *Agent) SetSelected(v bool) { a.selected = v }

// Home returns the home anchor, if any.
func (a *Agent) Home() (Pos, bool) { return a.home, a.hasHome }

// PackID returns the pack the agent reports to, or 0.
func (a *Agent) PackID() int { return a.packID }

// Footprint returns the cells the agent's body covers.
func (a *Agent) Footprint() []Cell {
	return Footprint(a.pos, a.heading, a.length)
}

// State returns the current behaviour state.
func (a *Agent) State() State { return a.bs.State }

// Phase returns the role-specific label of the current state, e.g. "MOVE_TO_SHOT".
func (a *Agent) Phase() string { return a.bs.Phase }

// TargetID returns the current target, or 0.
func (a *Agent) TargetID() AgentID { return a.bs.TargetID }

// Reservation returns the active standoff reservation, if any.
func (a *Agent) Reservation() (Reservation, bool) {
	return a.bs.Reservation, a.bs.Reservation.Valid()
}

// Waypoints returns a copy of the remaining waypoint queue.
func (a *Agent) Waypoints() []Cell {
	return append([]Cell(nil), a.path...)
}

// Delivered returns how many kills this agent has hauled home.
func (a *Agent) Delivered() int { return a.bs.Delivered }

func (a *Agent) String() string {
	return fmt.Sprintf("%s(%s %s @%.1f,%.1f %s)", a.label, a.team, a.kind, a.pos.R, a.pos.C, a.bs.State)
}
