package game

import (
	"math"
	"strings"
)

// AgentID identifies an agent for the lifetime of a run. Zero means "none".
type AgentID int

// Team is the faction an agent belongs to. Team boards are scoped per team.
type Team int

const (
	TeamVillage Team = iota // hunters and guards
	TeamRaiders             // knights and archers
	TeamWild                // wolf packs
	TeamFauna               // prey herds
	teamCount
)

func (t Team) String() string {
	switch t {
	case TeamVillage:
		return "village"
	case TeamRaiders:
		return "raiders"
	case TeamWild:
		return "wild"
	case TeamFauna:
		return "fauna"
	default:
		return "unknown"
	}
}

// ParseTeam maps a tuning-file team name to a Team.
func ParseTeam(s string) (Team, bool) {
	for t := Team(0); t < teamCount; t++ {
		if strings.EqualFold(s, t.String()) {
			return t, true
		}
	}
	return 0, false
}

// Archetype is the role of an agent; it selects the behaviour and tuning profile.
type Archetype int

const (
	KindHunter Archetype = iota // ranged, hunts prey, hauls kills home
	KindGuard                   // melee, defends against raiders and wolves
	KindWolf                    // melee predator sharing a pack board
	KindKnight                  // mounted melee, two-cell body
	KindArcher                  // ranged raider
	KindDeer                    // prey, flees
	kindCount
)

func (k Archetype) String() string {
	switch k {
	case KindHunter:
		return "hunter"
	case KindGuard:
		return "guard"
	case KindWolf:
		return "wolf"
	case KindKnight:
		return "knight"
	case KindArcher:
		return "archer"
	case KindDeer:
		return "deer"
	default:
		return "unknown"
	}
}

// labelPrefix is the one-letter prefix used in agent labels ("H1", "W3").
func (k Archetype) labelPrefix() string {
	switch k {
	case KindHunter:
		return "H"
	case KindGuard:
		return "G"
	case KindWolf:
		return "W"
	case KindKnight:
		return "K"
	case KindArcher:
		return "A"
	case KindDeer:
		return "D"
	default:
		return "?"
	}
}

// ParseArchetype maps a tuning-file archetype name to an Archetype.
func ParseArchetype(s string) (Archetype, bool) {
	for k := Archetype(0); k < kindCount; k++ {
		if strings.EqualFold(s, k.String()) {
			return k, true
		}
	}
	return 0, false
}

// Cell is an integer grid coordinate.
type Cell struct {
	R, C int
}

// Center returns the continuous position of the cell centre.
func (c Cell) Center() Pos { return Pos{R: float64(c.R), C: float64(c.C)} }

// Chebyshev returns the king-move distance between two cells.
func (c Cell) Chebyshev(o Cell) int {
	return max(absInt(c.R-o.R), absInt(c.C-o.C))
}

// Pos is a continuous grid position in cell units. Cell (r,c) is centred on (r,c).
type Pos struct {
	R, C float64
}

// Cell rounds the position to the cell it currently occupies.
func (p Pos) Cell() Cell {
	return Cell{R: int(math.Round(p.R)), C: int(math.Round(p.C))}
}

// DistSq returns the squared Euclidean distance between two positions.
func (p Pos) DistSq(o Pos) float64 {
	dr := p.R - o.R
	dc := p.C - o.C
	return dr*dr + dc*dc
}

// Dist returns the Euclidean distance between two positions.
func (p Pos) Dist(o Pos) float64 { return math.Sqrt(p.DistSq(o)) }

// Add offsets the position along a heading by dist cells.
func (p Pos) Add(heading, dist float64) Pos {
	return Pos{R: p.R + math.Sin(heading)*dist, C: p.C + math.Cos(heading)*dist}
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
