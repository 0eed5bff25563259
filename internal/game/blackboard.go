package game

import (
	"math"
	"sort"
)

// Board defaults, in seconds.
const (
	DefaultTeamBoardTTL = 10.0
	DefaultPackBoardTTL = 5.0
	// DefaultTraceWindow is how recent a sighting must be for a behaviour to keep
	// acting on it. Deliberately independent of the board TTLs: a board may still
	// list an entry the agent's own logic no longer trusts.
	DefaultTraceWindow = 5.0
)

// --- Sightings ---

// Sighting is one remembered target on a perception board. Position and tags are
// what the observer last saw, never a live extrapolation.
type Sighting struct {
	TargetID   AgentID
	Pos        Pos
	Team       Team
	Kind       Archetype
	SeenAt     float64
	ReporterID AgentID // pack boards only: the peer that reported it
}

// Age returns the seconds elapsed since the sighting was recorded.
func (s Sighting) Age(now float64) float64 { return now - s.SeenAt }

func sightingOf(target *Agent, now float64) Sighting {
	return Sighting{
		TargetID: target.id,
		Pos:      target.pos,
		Team:     target.team,
		Kind:     target.kind,
		SeenAt:   now,
	}
}

// SightingFilter narrows Closest. Empty slices accept everything.
type SightingFilter struct {
	Kinds  []Archetype
	Teams  []Team
	Accept func(Sighting) bool

	// RequireAlive drops sightings whose id does not resolve to a live agent.
	RequireAlive bool
	Resolve      func(AgentID) *Agent
}

func (f SightingFilter) allows(s Sighting) bool {
	if len(f.Kinds) > 0 && !containsKind(f.Kinds, s.Kind) {
		return false
	}
	if len(f.Teams) > 0 && !containsTeam(f.Teams, s.Team) {
		return false
	}
	if f.Accept != nil && !f.Accept(s) {
		return false
	}
	if f.RequireAlive {
		if f.Resolve == nil {
			return false
		}
		a := f.Resolve(s.TargetID)
		if a == nil || !a.alive {
			return false
		}
	}
	return true
}

func containsKind(kinds []Archetype, k Archetype) bool {
	for _, o := range kinds {
		if o == k {
			return true
		}
	}
	return false
}

func containsTeam(teams []Team, t Team) bool {
	for _, o := range teams {
		if o == t {
			return true
		}
	}
	return false
}

// Board is the read side shared by team and pack boards.
type Board interface {
	Lookup(id AgentID) (Sighting, bool)
	Sightings() []Sighting
	IsTraceActive(id AgentID, now float64) bool
	TraceActiveWithin(id AgentID, now, window float64) bool
	Closest(from Pos, now float64, f SightingFilter) (Sighting, bool)
	Forget(id AgentID)
}

// memoryBoard is the TTL-bounded store both board variants are built on.
type memoryBoard struct {
	ttl     float64
	entries map[AgentID]Sighting
}

func newMemoryBoard(ttl float64) memoryBoard {
	return memoryBoard{ttl: ttl, entries: make(map[AgentID]Sighting)}
}

// TTL returns the board's retention window in seconds.
func (b *memoryBoard) TTL() float64 { return b.ttl }

// Len returns how many entries are stored, expired or not.
func (b *memoryBoard) Len() int { return len(b.entries) }

func (b *memoryBoard) upsert(s Sighting) {
	b.entries[s.TargetID] = s
}

// Lookup returns the stored sighting for id.
func (b *memoryBoard) Lookup(id AgentID) (Sighting, bool) {
	s, ok := b.entries[id]
	return s, ok
}

// Sightings returns every stored entry ordered by target id.
func (b *memoryBoard) Sightings() []Sighting {
	out := make([]Sighting, 0, len(b.entries))
	for _, s := range b.entries {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TargetID < out[j].TargetID })
	return out
}

// IsTraceActive reports whether id was seen within the board TTL.
func (b *memoryBoard) IsTraceActive(id AgentID, now float64) bool {
	return b.TraceActiveWithin(id, now, b.ttl)
}

// TraceActiveWithin reports whether id was seen no more than window seconds ago.
func (b *memoryBoard) TraceActiveWithin(id AgentID, now, window float64) bool {
	s, ok := b.entries[id]
	if !ok {
		return false
	}
	return now-s.SeenAt <= window
}

// Sweep drops entries older than the TTL and returns how many were removed.
func (b *memoryBoard) Sweep(now float64) int {
	removed := 0
	for id, s := range b.entries {
		if now-s.SeenAt > b.ttl {
			delete(b.entries, id)
			removed++
		}
	}
	return removed
}

// Forget removes one entry.
func (b *memoryBoard) Forget(id AgentID) {
	delete(b.entries, id)
}

// Clear removes every entry.
func (b *memoryBoard) Clear() {
	clear(b.entries)
}

// Closest returns the unexpired sighting nearest to from that passes f.
// Distances use the stored (last seen) positions; ties go to the lower id.
func (b *memoryBoard) Closest(from Pos, now float64, f SightingFilter) (Sighting, bool) {
	var best Sighting
	bestD := math.MaxFloat64
	found := false
	for _, s := range b.Sightings() {
		if now-s.SeenAt > b.ttl || !f.allows(s) {
			continue
		}
		if d := from.DistSq(s.Pos); d < bestD {
			best, bestD, found = s, d, true
		}
	}
	return best, found
}

// --- Team board ---

// TeamBoard is the shared memory of one faction, fed by team visibility.
type TeamBoard struct {
	memoryBoard
	team Team
}

// NewTeamBoard creates an empty board; ttl <= 0 selects DefaultTeamBoardTTL.
func NewTeamBoard(team Team, ttl float64) *TeamBoard {
	if ttl <= 0 {
		ttl = DefaultTeamBoardTTL
	}
	return &TeamBoard{memoryBoard: newMemoryBoard(ttl), team: team}
}

// Team returns the faction the board belongs to.
func (tb *TeamBoard) Team() Team { return tb.team }

// Observe upserts a sighting of target seen at now.
func (tb *TeamBoard) Observe(target *Agent, now float64) {
	tb.upsert(sightingOf(target, now))
}

// Refresh upserts every live non-member whose body is in a visible cell, then
// sweeps expired entries. Returns how many targets were seen.
func (tb *TeamBoard) Refresh(now float64, agents []*Agent, visible func(Cell) bool) int {
	seen := 0
	for _, a := range agents {
		if !a.alive || a.team == tb.team {
			continue
		}
		for _, c := range a.Footprint() {
			if visible(c) {
				tb.Observe(a, now)
				seen++
				break
			}
		}
	}
	tb.Sweep(now)
	return seen
}

// --- Pack board ---

// PackBoard is word-of-mouth memory shared by one group of peers (a den).
// Entries only arrive through explicit Report calls, never from shared vision.
type PackBoard struct {
	memoryBoard
	id      int
	den     Pos
	members []AgentID
}

// NewPackBoard creates a pack anchored at den; ttl <= 0 selects DefaultPackBoardTTL.
func NewPackBoard(id int, den Pos, ttl float64) *PackBoard {
	if ttl <= 0 {
		ttl = DefaultPackBoardTTL
	}
	return &PackBoard{memoryBoard: newMemoryBoard(ttl), id: id, den: den}
}

// ID returns the pack id.
func (pb *PackBoard) ID() int { return pb.id }

// Den returns the pack's home anchor.
func (pb *PackBoard) Den() Pos { return pb.den }

// Members returns the member ids in join order.
func (pb *PackBoard) Members() []AgentID {
	return append([]AgentID(nil), pb.members...)
}

// IsMember reports whether id belongs to the pack.
func (pb *PackBoard) IsMember(id AgentID) bool {
	for _, m := range pb.members {
		if m == id {
			return true
		}
	}
	return false
}

// Join adds id to the pack.
func (pb *PackBoard) Join(id AgentID) {
	if !pb.IsMember(id) {
		pb.members = append(pb.members, id)
	}
}

// Leave removes id from the pack. The pack's memory is kept.
func (pb *PackBoard) Leave(id AgentID) {
	for i, m := range pb.members {
		if m == id {
			pb.members = append(pb.members[:i], pb.members[i+1:]...)
			return
		}
	}
}

// Report records that reporter saw target at now. Reports from non-members or
// dead reporters are ignored.
func (pb *PackBoard) Report(reporter, target *Agent, now float64) bool {
	if reporter == nil || target == nil || !reporter.alive || !pb.IsMember(reporter.id) {
		return false
	}
	s := sightingOf(target, now)
	s.ReporterID = reporter.id
	pb.upsert(s)
	return true
}

// Dissolve clears the pack's memory and membership.
func (pb *PackBoard) Dissolve() {
	pb.Clear()
	pb.members = nil
}
