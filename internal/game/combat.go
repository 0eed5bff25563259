package game

import (
	"math"
	"math/rand"
	"sync"
)

// --- Combat constants ---

const (
	tracerLifetime = 12 // ticks a shot trace persists for viewers

	// Ranged accuracy falls linearly past this fraction of the shooter's range.
	accurateRangeFrac = 0.5
	// At full range the hit chance is scaled by this factor.
	maxRangeAccuracy = 0.45
)

// CombatResolver applies hits. It is the only collaborator that kills agents.
// Implementations report whether the blow left the target at or below zero hp.
type CombatResolver interface {
	ResolveMeleeHit(attacker, target *Agent) (hit bool, killed bool)
	FireRangedShot(shooter, target *Agent) (hit bool, killed bool)
}

// ShotTrace is a short-lived record of a ranged shot for viewers.
type ShotTrace struct {
	From, To Pos
	Hit      bool
	Age      int
}

// Done reports whether the trace has expired.
func (t *ShotTrace) Done() bool { return t.Age >= tracerLifetime }

// rangedAccuracy scales a base hit chance by distance over range.
func rangedAccuracy(base, dist, maxRange float64) float64 {
	if maxRange <= 0 {
		return clamp01(base)
	}
	frac := dist / maxRange
	if frac <= accurateRangeFrac {
		return clamp01(base)
	}
	t := math.Min(1, (frac-accurateRangeFrac)/(1-accurateRangeFrac))
	return clamp01(base * (1 - (1-maxRangeAccuracy)*t))
}

// DamageResolver is the default CombatResolver: seeded hit rolls against the
// attacker archetype's hit chance and damage. The mutex serialises resolution
// should agent updates ever run in parallel.
type DamageResolver struct {
	mu    sync.Mutex
	rng   *rand.Rand
	specs map[Archetype]ArchetypeSpec

	traces []*ShotTrace
	hits   int
	misses int
}

// NewDamageResolver builds a resolver with its own seeded rng.
func NewDamageResolver(seed int64, specs map[Archetype]ArchetypeSpec) *DamageResolver {
	return &DamageResolver{
		rng:   rand.New(rand.NewSource(seed)), // #nosec G404 -- simulation rolls
		specs: specs,
	}
}

func (dr *DamageResolver) apply(attacker, target *Agent, chance float64) (bool, bool) {
	spec := dr.specs[attacker.kind]
	if dr.rng.Float64() >= chance {
		dr.misses++
		return false, false
	}
	dr.hits++
	target.hp -= spec.Damage
	return true, target.hp <= 0
}

// ResolveMeleeHit rolls one melee blow.
func (dr *DamageResolver) ResolveMeleeHit(attacker, target *Agent) (bool, bool) {
	dr.mu.Lock()
	defer dr.mu.Unlock()
	return dr.apply(attacker, target, dr.specs[attacker.kind].HitChance)
}

// FireRangedShot rolls one shot and leaves a trace behind.
func (dr *DamageResolver) FireRangedShot(shooter, target *Agent) (bool, bool) {
	dr.mu.Lock()
	defer dr.mu.Unlock()
	spec := dr.specs[shooter.kind]
	dist := shooter.pos.Dist(target.pos)
	reach := spec.SightRadius
	if p, ok := spec.Pursuit(); ok {
		reach = p.EngageRange
	}
	hit, killed := dr.apply(shooter, target, rangedAccuracy(spec.HitChance, dist, reach))
	to := target.pos
	if !hit {
		// Misses land a little past the target.
		to = target.pos.Add(HeadingTo(shooter.pos, target.pos)+(dr.rng.Float64()-0.5)*0.4, 0.8)
	}
	dr.traces = append(dr.traces, &ShotTrace{From: shooter.pos, To: to, Hit: hit})
	return hit, killed
}

// AgeTraces advances and expires shot traces; called once per tick.
func (dr *DamageResolver) AgeTraces() {
	dr.mu.Lock()
	defer dr.mu.Unlock()
	alive := dr.traces[:0]
	for _, t := range dr.traces {
		t.Age++
		if !t.Done() {
			alive = append(alive, t)
		}
	}
	clear(dr.traces[len(alive):])
	dr.traces = alive
}

// Traces returns the live shot traces.
func (dr *DamageResolver) Traces() []ShotTrace {
	dr.mu.Lock()
	defer dr.mu.Unlock()
	out := make([]ShotTrace, len(dr.traces))
	for i, t := range dr.traces {
		out[i] = *t
	}
	return out
}

// Counts returns total hits and misses rolled.
func (dr *DamageResolver) Counts() (hits, misses int) {
	dr.mu.Lock()
	defer dr.mu.Unlock()
	return dr.hits, dr.misses
}
