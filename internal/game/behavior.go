package game

import "fmt"

// State is the coarse behaviour state of an agent.
type State int

const (
	StateInit State = iota
	StateSearch
	StateApproach
	StateEngage
	StateLoot
	StateReturnHome
	StateUnload
	StateGraze
	StateWander
	StateFlee
	StateDead
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "INIT"
	case StateSearch:
		return "SEARCH"
	case StateApproach:
		return "APPROACH"
	case StateEngage:
		return "ENGAGE"
	case StateLoot:
		return "LOOT"
	case StateReturnHome:
		return "RETURN_HOME"
	case StateUnload:
		return "UNLOAD"
	case StateGraze:
		return "GRAZE"
	case StateWander:
		return "WANDER"
	case StateFlee:
		return "FLEE"
	case StateDead:
		return "DEAD"
	default:
		return "UNKNOWN"
	}
}

// NavTarget tracks travel toward one destination for the stuck watchdog.
type NavTarget struct {
	Dest     Cell
	Active   bool
	LastDist float64
	CheckAt  float64 // next watchdog check
	RepathAt float64 // earliest time another plan may be requested
}

// FleeState is the prey-specific part of BehaviorState.
type FleeState struct {
	ThreatID AgentID
	ReplanAt float64
}

// BehaviorState is everything an agent's decision loop remembers between
// ticks. Every field can be cleared and rebuilt from the next perception pass.
type BehaviorState struct {
	State     State
	Phase     string
	EnteredAt float64

	TargetID    AgentID
	TargetPos   Pos
	Reservation Reservation
	Nav         NavTarget
	HoldUntil   float64 // occupied-destination wait deadline; 0 = not holding

	NextSelectAt float64
	Wander       WanderState
	Flee         FleeState

	LootID      AgentID
	LootCell    Cell
	HasCarry    bool
	UnloadUntil float64
	Delivered   int

	LastFailure error
}

// Behavior is the decision loop selected per archetype.
type Behavior interface {
	Name() string
	Update(w *World, a *Agent)
}

// setState moves a to a new state and phase, recording the edge.
func (w *World) setState(a *Agent, s State, phase string) {
	bs := &a.bs
	if bs.State == s {
		bs.Phase = phase
		return
	}
	from := bs.State
	bs.State = s
	bs.Phase = phase
	bs.EnteredAt = w.now
	w.record(a, "state", "change", fmt.Sprintf("%s -> %s", from, s), 0)
	w.think(a, fmt.Sprintf("%s (%s)", s, phase))
}

// clearTarget drops the current target and everything planned around it.
func (w *World) clearTarget(a *Agent) {
	bs := &a.bs
	bs.TargetID = 0
	bs.TargetPos = Pos{}
	w.releaseReservation(a)
	bs.Nav = NavTarget{RepathAt: bs.Nav.RepathAt}
	bs.HoldUntil = 0
}

func (w *World) releaseReservation(a *Agent) {
	w.reservations.Release(a.id)
	a.bs.Reservation = Reservation{}
}
