package game

import (
	"fmt"
	"strings"

	"github.com/Garsondee/Pack-Sense/internal/tuning"
)

// TestSim is a headless harness around World used by tests and the headless
// report. It supports deterministic seeding, ASCII maps and structured logging.
type TestSim struct {
	World  *World
	SimLog *SimLog
	Dt     float64

	rows, cols int
	mapLines   []string
	seed       int64
	tuning     *tuning.Tuning
	dens       map[string]int
	err        error
}

// simOptionKind controls the pass in which an option is applied.
type simOptionKind int

const (
	simOptInfra simOptionKind = iota // map, seed, tuning, dt: applied first
	simOptPack                       // dens: applied once the world exists
	simOptAgent                      // spawns: applied after dens
)

// SimOption is a builder function applied to a TestSim during construction.
type SimOption struct {
	kind simOptionKind
	fn   func(*TestSim)
}

// WithMap sets the terrain from ASCII rows ('.' open, '#' wall, '~' water, ',' brush).
func WithMap(lines ...string) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.mapLines = lines
	}}
}

// WithMapSize sets an all-open map of the given size.
func WithMapSize(rows, cols int) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.rows, ts.cols = rows, cols
		ts.mapLines = nil
	}}
}

// WithSimSeed sets the seed for deterministic runs.
func WithSimSeed(seed int64) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) { ts.seed = seed }}
}

// WithSimTuning replaces the default tuning.
func WithSimTuning(t *tuning.Tuning) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) { ts.tuning = t }}
}

// WithVerbose enables verbose SimLog entries.
func WithVerbose(v bool) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) { ts.SimLog = NewSimLog(v) }}
}

// WithDt sets the fixed step used by RunTicks.
func WithDt(dt float64) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) { ts.Dt = dt }}
}

// WithDen creates a named pack anchored at (r,c).
func WithDen(name string, r, c int) SimOption {
	return SimOption{simOptPack, func(ts *TestSim) {
		ts.dens[name] = ts.World.NewPack(Cell{R: r, C: c})
	}}
}

// WithAgent spawns an agent of kind at (r,c).
func WithAgent(kind Archetype, r, c int, opts ...SpawnOption) SimOption {
	return SimOption{simOptAgent, func(ts *TestSim) {
		if _, err := ts.World.Spawn(kind, Cell{R: r, C: c}, opts...); err != nil && ts.err == nil {
			ts.err = err
		}
	}}
}

// WithPackMember spawns an agent at (r,c) as a member of a named den.
func WithPackMember(kind Archetype, den string, r, c int) SimOption {
	return SimOption{simOptAgent, func(ts *TestSim) {
		id, ok := ts.dens[den]
		if !ok {
			if ts.err == nil {
				ts.err = fmt.Errorf("test sim: unknown den %q", den)
			}
			return
		}
		if _, err := ts.World.Spawn(kind, Cell{R: r, C: c}, WithPack(id)); err != nil && ts.err == nil {
			ts.err = err
		}
	}}
}

// NewTestSim constructs a TestSim from options in ordered passes:
//  1. Infrastructure (map, seed, tuning, dt)
//  2. World
//  3. Dens
//  4. Agents
func NewTestSim(opts ...SimOption) (*TestSim, error) {
	ts := &TestSim{
		rows:   20,
		cols:   20,
		seed:   1,
		Dt:     1.0 / 30,
		SimLog: NewSimLog(false),
		dens:   make(map[string]int),
	}
	for _, o := range opts {
		if o.kind == simOptInfra {
			o.fn(ts)
		}
	}

	var g *Grid
	if ts.mapLines != nil {
		var err error
		if g, err = ParseGrid(ts.mapLines); err != nil {
			return nil, err
		}
	} else {
		g = NewGrid(ts.rows, ts.cols)
	}
	w, err := NewWorld(g, WithSeed(ts.seed), WithTuning(ts.tuning), WithSimLog(ts.SimLog))
	if err != nil {
		return nil, err
	}
	ts.World = w

	for _, kind := range []simOptionKind{simOptPack, simOptAgent} {
		for _, o := range opts {
			if o.kind == kind {
				o.fn(ts)
			}
		}
	}
	if ts.err != nil {
		return nil, ts.err
	}
	return ts, nil
}

// Agent returns the agent with the given label, or nil.
func (ts *TestSim) Agent(label string) *Agent {
	for _, a := range ts.World.agents {
		if a.label == label {
			return a
		}
	}
	return nil
}

// Den returns the pack id of a named den.
func (ts *TestSim) Den(name string) int { return ts.dens[name] }

// RunTicks advances the simulation n fixed steps.
func (ts *TestSim) RunTicks(n int) {
	for i := 0; i < n; i++ {
		ts.World.Tick(ts.Dt)
	}
}

// RunSeconds advances the simulation by at least s seconds.
func (ts *TestSim) RunSeconds(s float64) {
	ts.RunTicks(int(s/ts.Dt + 0.5))
}

// RunUntil advances up to maxTicks, stopping early once predicate holds.
// Returns the tick at which it held, or -1.
func (ts *TestSim) RunUntil(predicate func(*TestSim) bool, maxTicks int) int {
	for i := 0; i < maxTicks; i++ {
		ts.World.Tick(ts.Dt)
		if predicate(ts) {
			return ts.World.tick
		}
	}
	return -1
}

// CurrentTick returns the current simulation tick.
func (ts *TestSim) CurrentTick() int { return ts.World.tick }

// AgentSnapshot is a lightweight copy of an agent's state at a tick.
type AgentSnapshot struct {
	Label  string
	Team   Team
	Pos    Pos
	State  State
	Phase  string
	Target AgentID
	Alive  bool
}

// Snapshot returns the current state of every agent.
func (ts *TestSim) Snapshot() []AgentSnapshot {
	out := make([]AgentSnapshot, 0, len(ts.World.agents))
	for _, a := range ts.World.agents {
		out = append(out, AgentSnapshot{
			Label:  a.label,
			Team:   a.team,
			Pos:    a.pos,
			State:  a.bs.State,
			Phase:  a.bs.Phase,
			Target: a.bs.TargetID,
			Alive:  a.alive,
		})
	}
	return out
}

// RenderASCII draws the map with agent labels' first letters, for t.Log output.
func (ts *TestSim) RenderASCII() string {
	return RenderASCII(ts.World)
}

// RenderASCII draws w's terrain with every live agent's head cell marked by the
// first letter of its label.
func RenderASCII(w *World) string {
	g := w.grid
	rows := make([][]rune, g.rows)
	for r := range rows {
		rows[r] = make([]rune, g.cols)
		for c := range rows[r] {
			rows[r][c] = g.TerrainAt(r, c).Rune()
		}
	}
	for _, a := range w.agents {
		if !a.alive {
			continue
		}
		for i, c := range a.Footprint() {
			if !g.InBounds(c.R, c.C) {
				continue
			}
			ch := rune(a.label[0])
			if i > 0 {
				ch = rune(strings.ToLower(a.label[:1])[0])
			}
			rows[c.R][c.C] = ch
		}
	}
	var sb strings.Builder
	for _, r := range rows {
		sb.WriteString(string(r))
		sb.WriteByte('\n')
	}
	return sb.String()
}
