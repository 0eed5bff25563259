package game

import (
	"fmt"
	"math"

	"github.com/Garsondee/Pack-Sense/internal/tuning"
)

// ArchetypeSpec is the resolved stat block and behaviour factory for one role.
type ArchetypeSpec struct {
	Kind        Archetype
	Team        Team
	Speed       float64
	TurnRate    float64 // radians per second
	Length      int
	SightRadius float64
	HP          float64
	Damage      float64
	HitChance   float64
	Cooldown    float64

	pursuit *PursuitProfile
	flee    *FleeProfile
}

// NewBehavior returns a fresh behaviour instance for one agent.
func (s ArchetypeSpec) NewBehavior() Behavior {
	switch {
	case s.pursuit != nil:
		return NewPursuit(s.Kind.String(), *s.pursuit)
	case s.flee != nil:
		return NewFlee(*s.flee)
	default:
		return nil
	}
}

// Pursuit returns the pursuit profile, if the archetype hunts.
func (s ArchetypeSpec) Pursuit() (PursuitProfile, bool) {
	if s.pursuit == nil {
		return PursuitProfile{}, false
	}
	return *s.pursuit, true
}

// Flee returns the flee profile, if the archetype is prey.
func (s ArchetypeSpec) Flee() (FleeProfile, bool) {
	if s.flee == nil {
		return FleeProfile{}, false
	}
	return *s.flee, true
}

func parseKinds(names []string) ([]Archetype, error) {
	out := make([]Archetype, 0, len(names))
	for _, n := range names {
		k, ok := ParseArchetype(n)
		if !ok {
			return nil, fmt.Errorf("unknown archetype %q", n)
		}
		out = append(out, k)
	}
	return out, nil
}

func wanderConfig(t *tuning.Tuning) WanderConfig {
	wt := t.Wander
	cfg := DefaultWanderConfig()
	cfg.LegMin, cfg.LegMax = wt.LegMin, wt.LegMax
	cfg.RadiusMin, cfg.RadiusMax = wt.RadiusMin, wt.RadiusMax
	cfg.MaxNudges = wt.MaxNudges
	cfg.NudgeMinTravel = wt.NudgeMinTravel
	cfg.NudgeMinTurn = wt.NudgeMinTurnDeg * math.Pi / 180
	cfg.ArriveDist = wt.ArriveDist
	cfg.PauseMin, cfg.PauseMax = wt.PauseMin, wt.PauseMax
	cfg.NudgeInterval = wt.NudgeInterval
	cfg.NudgeChance = wt.NudgeChance
	return cfg
}

// BuildSpecs resolves every archetype in t. Archetypes absent from the file are
// simply unavailable for spawning.
func BuildSpecs(t *tuning.Tuning) (map[Archetype]ArchetypeSpec, error) {
	specs := make(map[Archetype]ArchetypeSpec, len(t.Archetypes))
	for name, at := range t.Archetypes {
		kind, ok := ParseArchetype(name)
		if !ok {
			return nil, fmt.Errorf("tuning: unknown archetype %q", name)
		}
		spec, err := buildSpec(t, kind, at)
		if err != nil {
			return nil, fmt.Errorf("tuning: archetype %s: %w", name, err)
		}
		specs[kind] = spec
	}
	return specs, nil
}

func buildSpec(t *tuning.Tuning, kind Archetype, at tuning.Archetype) (ArchetypeSpec, error) {
	team, ok := ParseTeam(at.Team)
	if !ok {
		return ArchetypeSpec{}, fmt.Errorf("unknown team %q", at.Team)
	}
	spec := ArchetypeSpec{
		Kind:        kind,
		Team:        team,
		Speed:       at.Speed,
		TurnRate:    at.TurnRateDeg * math.Pi / 180,
		Length:      max(at.Length, 1),
		SightRadius: at.SightRadius,
		HP:          at.HP,
		Damage:      at.Damage,
		HitChance:   at.HitChance,
		Cooldown:    at.Cooldown,
	}
	if spec.TurnRate <= 0 {
		spec.TurnRate = 2 * math.Pi
	}

	switch at.Behavior {
	case "pursuit":
		p, err := pursuitProfile(t, at)
		if err != nil {
			return ArchetypeSpec{}, err
		}
		spec.pursuit = &p
	case "flee":
		threats, err := parseKinds(at.Threats)
		if err != nil {
			return ArchetypeSpec{}, err
		}
		fp := DefaultFleeProfile()
		fp.FearRadius = t.Flee.FearRadius
		fp.SafeRadius = t.Flee.SafeRadius
		fp.ReplanInterval = t.Flee.ReplanInterval
		fp.TraceWindow = t.Boards.TraceWindow
		fp.ThreatKinds = threats
		fp.Wander = wanderConfig(t)
		spec.flee = &fp
	default:
		return ArchetypeSpec{}, fmt.Errorf("unknown behavior %q", at.Behavior)
	}
	return spec, nil
}

func pursuitProfile(t *tuning.Tuning, at tuning.Archetype) (PursuitProfile, error) {
	kinds, err := parseKinds(at.Targets)
	if err != nil {
		return PursuitProfile{}, err
	}
	p := DefaultPursuitProfile()
	p.EngageRange = at.EngageRange
	p.Ranged = at.Ranged
	p.Cooldown = at.Cooldown
	p.AllowedKinds = kinds
	p.StandoffRadius = at.StandoffRadius
	if p.StandoffRadius <= 0 {
		p.StandoffRadius = at.EngageRange
	}
	if at.Hostility != "" {
		if p.Hostility, err = HostilityByName(at.Hostility); err != nil {
			return PursuitProfile{}, err
		}
	}
	if at.Board == "pack" {
		p.Board = BoardPack
	}

	ap := t.Approach
	p.AimDot = ap.AimDot
	p.MaxSamples = ap.MaxSamples
	p.MaxSnapRadius = ap.MaxSnapRadius
	p.RepathCooldown = ap.RepathCooldown
	p.WatchdogWindow = ap.WatchdogWindow
	p.ProgressEpsilon = ap.ProgressEpsilon
	p.HoldInterval = ap.HoldInterval
	p.SelectInterval = ap.SelectInterval
	p.DisengageFactor = ap.DisengageFactor
	p.TraceWindow = t.Boards.TraceWindow
	p.Wander = wanderConfig(t)

	if at.Loot != nil {
		lk, err := parseKinds(at.Loot.Targets)
		if err != nil {
			return PursuitProfile{}, err
		}
		p.Loot = &LootConfig{Kinds: lk, PickupRange: at.Loot.PickupRange, UnloadSeconds: at.Loot.UnloadSeconds}
	}
	return p, nil
}
