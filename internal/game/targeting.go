package game

import (
	"fmt"
	"math"
)

// DefaultSwitchMargin is the distance advantage, in tiles, a candidate needs
// before it displaces the current target.
const DefaultSwitchMargin = 0.5

// Hostility decides whether an observer should treat a sighting as a target.
type Hostility func(observer *Agent, s Sighting) bool

// OpposingFaction targets every team except the observer's own and the fauna.
func OpposingFaction(observer *Agent, s Sighting) bool {
	return s.Team != observer.team && s.Team != TeamFauna
}

// PreyClass targets fauna only.
func PreyClass(observer *Agent, s Sighting) bool {
	return s.Team == TeamFauna
}

// PredatorClass targets prey and people alike, never its own team.
func PredatorClass(observer *Agent, s Sighting) bool {
	return s.Team != observer.team
}

// Defender targets raiders and wild predators.
func Defender(observer *Agent, s Sighting) bool {
	return s.Team == TeamRaiders || s.Team == TeamWild
}

var hostilityRules = map[string]Hostility{
	"opposing_faction": OpposingFaction,
	"prey":             PreyClass,
	"predator":         PredatorClass,
	"defender":         Defender,
}

// HostilityByName resolves a tuning-file hostility rule.
func HostilityByName(name string) (Hostility, error) {
	h, ok := hostilityRules[name]
	if !ok {
		return nil, fmt.Errorf("unknown hostility rule %q", name)
	}
	return h, nil
}

// TargetPolicy is what an archetype may target and how recent a trace must be.
type TargetPolicy struct {
	AllowedKinds []Archetype // empty = any kind
	Hostility    Hostility   // nil = any non-own-team sighting
	RequireAlive bool
	TraceWindow  float64 // seconds; <= 0 uses the board TTL
}

// UnitLookup resolves live agents by id.
type UnitLookup interface {
	Unit(id AgentID) *Agent
}

// Candidate is a resolved target option.
type Candidate struct {
	ID       AgentID
	Pos      Pos // live position when resolvable, otherwise last seen
	DistSq   float64
	Live     bool
	Sighting Sighting
}

// TargetSelector picks the nearest acceptable target and applies the switch
// margin so near-ties never displace the current choice.
type TargetSelector struct {
	Margin float64
}

// NewTargetSelector returns a selector with the default margin.
func NewTargetSelector() TargetSelector {
	return TargetSelector{Margin: DefaultSwitchMargin}
}

// PickClosest scans board for the squared-distance nearest sighting that passes
// policy. Ties go to the lower id.
func (ts TargetSelector) PickClosest(observer *Agent, board Board, policy TargetPolicy, units UnitLookup, now float64) (Candidate, bool) {
	var best Candidate
	bestD := math.MaxFloat64
	found := false

	for _, s := range board.Sightings() {
		if s.TargetID == observer.id {
			continue
		}
		if !ts.acceptable(observer, board, policy, s, now) {
			continue
		}
		c := Candidate{ID: s.TargetID, Pos: s.Pos, Sighting: s}
		if units != nil {
			if a := units.Unit(s.TargetID); a != nil {
				if !a.alive {
					continue
				}
				c.Pos, c.Live = a.pos, true
			} else if policy.RequireAlive {
				continue
			}
		}
		c.DistSq = observer.pos.DistSq(c.Pos)
		if c.DistSq < bestD {
			best, bestD, found = c, c.DistSq, true
		}
	}
	return best, found
}

func (ts TargetSelector) acceptable(observer *Agent, board Board, policy TargetPolicy, s Sighting, now float64) bool {
	if len(policy.AllowedKinds) > 0 && !containsKind(policy.AllowedKinds, s.Kind) {
		return false
	}
	if policy.Hostility != nil {
		if !policy.Hostility(observer, s) {
			return false
		}
	} else if s.Team == observer.team {
		return false
	}
	if !board.IsTraceActive(s.TargetID, now) {
		return false
	}
	if policy.TraceWindow > 0 && !board.TraceActiveWithin(s.TargetID, now, policy.TraceWindow) {
		return false
	}
	return true
}

// IsBetterThanCurrent reports whether cand should replace current. It does when
// there is no current target, when the current trace has expired, or when
// cand.DistSq + margin² < current.DistSq.
func (ts TargetSelector) IsBetterThanCurrent(current *Candidate, currentActive bool, cand Candidate) bool {
	if current == nil || !currentActive {
		return true
	}
	if cand.ID == current.ID {
		return false
	}
	return cand.DistSq+ts.Margin*ts.Margin < current.DistSq
}
