package game

import "errors"

// Expected steady-state failures. None of them is fatal: callers fall back,
// wait, or clear state and rebuild it from the next perception pass.
var (
	// ErrNoPath means A* exhausted its search without reaching the goal.
	ErrNoPath = errors.New("no path")
	// ErrNoReachableApproach means every ring sample around a target was
	// blocked, out of range after snapping, or unreachable.
	ErrNoReachableApproach = errors.New("no reachable approach cell")
	// ErrStaleTarget means the target's trace is older than the trace window.
	ErrStaleTarget = errors.New("target trace expired")
	// ErrTargetVanished means the target id no longer resolves to a live agent.
	ErrTargetVanished = errors.New("target vanished")
	// ErrOccupiedDestination means a reserved or commanded cell holds another agent.
	ErrOccupiedDestination = errors.New("destination occupied")

	ErrOutOfBounds = errors.New("cell out of bounds")
	ErrCellBlocked = errors.New("cell blocked")
	ErrNotAdjacent = errors.New("cell not adjacent")
)
