package game

import (
	"fmt"
	"io"
	"math/rand"
	"sort"

	"github.com/charmbracelet/log"

	"github.com/Garsondee/Pack-Sense/internal/tuning"
)

// World owns the grid, every agent and the perception boards, and advances
// them one fixed step at a time.
type World struct {
	grid         *Grid
	paths        *Pathfinder
	vision       *VisionMap
	reservations *ReservationTable
	approach     *ApproachPlanner
	selector     TargetSelector
	combat       CombatResolver
	damage       *DamageResolver // nil when a custom resolver is installed

	agents []*Agent // ascending id
	byID   map[AgentID]*Agent
	nextID AgentID
	counts [kindCount]int

	teamBoards [teamCount]*TeamBoard
	packs      map[int]*PackBoard
	nextPackID int
	consumed   map[AgentID]bool // carcasses already hauled

	now  float64
	dt   float64
	tick int

	seed   int64
	tuning *tuning.Tuning
	specs  map[Archetype]ArchetypeSpec

	log      *log.Logger
	simLog   *SimLog
	thoughts *ThoughtLog
}

type worldConfig struct {
	seed   int64
	tuning *tuning.Tuning
	logger *log.Logger
	combat CombatResolver
	simLog *SimLog
}

// WorldOption configures NewWorld.
type WorldOption func(*worldConfig)

// WithSeed fixes the world seed; agent and combat rngs derive from it.
func WithSeed(seed int64) WorldOption {
	return func(c *worldConfig) { c.seed = seed }
}

// WithTuning replaces the embedded default tuning.
func WithTuning(t *tuning.Tuning) WorldOption {
	return func(c *worldConfig) { c.tuning = t }
}

// WithLogger sets the debug logger. The default discards everything.
func WithLogger(l *log.Logger) WorldOption {
	return func(c *worldConfig) { c.logger = l }
}

// WithCombat installs a custom combat resolver.
func WithCombat(cr CombatResolver) WorldOption {
	return func(c *worldConfig) { c.combat = cr }
}

// WithSimLog records events into sl instead of a fresh log.
func WithSimLog(sl *SimLog) WorldOption {
	return func(c *worldConfig) { c.simLog = sl }
}

// NewWorld builds an empty world over g.
func NewWorld(g *Grid, opts ...WorldOption) (*World, error) {
	cfg := worldConfig{seed: 1}
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.tuning == nil {
		t, err := tuning.Default()
		if err != nil {
			return nil, fmt.Errorf("new world: %w", err)
		}
		cfg.tuning = t
	}
	specs, err := BuildSpecs(cfg.tuning)
	if err != nil {
		return nil, fmt.Errorf("new world: %w", err)
	}
	if cfg.logger == nil {
		cfg.logger = log.New(io.Discard)
	}
	if cfg.simLog == nil {
		cfg.simLog = NewSimLog(false)
	}

	w := &World{
		grid:         g,
		paths:        NewPathfinder(g),
		vision:       NewVisionMap(g),
		reservations: NewReservationTable(),
		selector:     TargetSelector{Margin: cfg.tuning.World.SwitchMargin},
		byID:         make(map[AgentID]*Agent),
		packs:        make(map[int]*PackBoard),
		consumed:     make(map[AgentID]bool),
		dt:           cfg.tuning.TickSeconds(),
		seed:         cfg.seed,
		tuning:       cfg.tuning,
		specs:        specs,
		log:          cfg.logger,
		simLog:       cfg.simLog,
		thoughts:     NewThoughtLog(defaultThoughtCapacity),
	}
	w.paths.MaxExpansions = cfg.tuning.Pathfinder.MaxExpansions
	w.approach = NewApproachPlanner(g, w.paths, w.reservations)
	w.approach.Stick = cfg.tuning.Approach.Stick
	w.approach.JitterFrac = cfg.tuning.Approach.Jitter
	for t := Team(0); t < teamCount; t++ {
		w.teamBoards[t] = NewTeamBoard(t, cfg.tuning.Boards.TeamTTL)
	}
	if cfg.combat != nil {
		w.combat = cfg.combat
	} else {
		w.damage = NewDamageResolver(cfg.seed^0x5eed, specs)
		w.combat = w.damage
	}
	return w, nil
}

// --- Spawning ---

// SpawnOption adjusts an agent before it enters the world.
type SpawnOption func(*Agent)

// WithHome gives the agent a home anchor for wandering and unloading.
func WithHome(p Pos) SpawnOption {
	return func(a *Agent) { a.home, a.hasHome = p, true }
}

// WithPack makes the agent a member of pack id.
func WithPack(id int) SpawnOption {
	return func(a *Agent) { a.packID = id }
}

// WithHeading sets the initial heading in radians.
func WithHeading(h float64) SpawnOption {
	return func(a *Agent) { a.heading = normalizeAngle(h) }
}

// WithLabel overrides the generated label.
func WithLabel(label string) SpawnOption {
	return func(a *Agent) { a.label = label }
}

// WithTeam overrides the archetype's default team.
func WithTeam(t Team) SpawnOption {
	return func(a *Agent) { a.team = t }
}

// Spawn places a new agent of kind on cell at. The cell must be walkable and free.
func (w *World) Spawn(kind Archetype, at Cell, opts ...SpawnOption) (*Agent, error) {
	spec, ok := w.specs[kind]
	if !ok {
		return nil, fmt.Errorf("spawn %s: no tuning for archetype", kind)
	}
	if !w.grid.InBounds(at.R, at.C) {
		return nil, fmt.Errorf("spawn %s at %v: %w", kind, at, ErrOutOfBounds)
	}
	if w.grid.IsBlocked(at.R, at.C, 0) {
		return nil, fmt.Errorf("spawn %s at %v: %w", kind, at, ErrCellBlocked)
	}

	w.nextID++
	w.counts[kind]++
	id := w.nextID
	a := &Agent{
		id:            id,
		label:         fmt.Sprintf("%s%d", kind.labelPrefix(), w.counts[kind]),
		team:          spec.Team,
		kind:          kind,
		pos:           at.Center(),
		length:        spec.Length,
		speed:         spec.Speed,
		turnRate:      spec.TurnRate,
		sightRadius:   spec.SightRadius,
		hp:            spec.HP,
		alive:         true,
		meleeCooldown: spec.Cooldown,
		shotCooldown:  spec.Cooldown,
		behavior:      spec.NewBehavior(),
		rng:           rand.New(rand.NewSource(w.seed*7919 + int64(id))), // #nosec G404 -- simulation jitter
	}
	for _, o := range opts {
		o(a)
	}
	if a.packID != 0 {
		pb, ok := w.packs[a.packID]
		if !ok {
			return nil, fmt.Errorf("spawn %s: unknown pack %d", a.label, a.packID)
		}
		pb.Join(a.id)
	}

	w.agents = append(w.agents, a)
	w.byID[a.id] = a
	w.grid.stamp(a.id, a.Footprint())
	w.record(a, "spawn", kind.String(), fmt.Sprintf("%v", at), 0)
	return a, nil
}

// NewPack creates a pack board anchored at den and returns its id.
func (w *World) NewPack(den Cell) int {
	w.nextPackID++
	w.packs[w.nextPackID] = NewPackBoard(w.nextPackID, den.Center(), w.tuning.Boards.PackTTL)
	return w.nextPackID
}

// DissolvePack clears a pack's memory and detaches its members.
func (w *World) DissolvePack(id int) {
	pb, ok := w.packs[id]
	if !ok {
		return
	}
	for _, m := range pb.Members() {
		if a := w.byID[m]; a != nil {
			a.packID = 0
		}
	}
	pb.Dissolve()
	delete(w.packs, id)
}

// --- Tick loop ---

// Tick advances the world by dt seconds: clock, perception, behaviours in id
// order, locomotion, then occupancy resync. Negative dt is treated as zero.
func (w *World) Tick(dt float64) {
	if dt < 0 {
		dt = 0
	}
	w.tick++
	w.dt = dt
	w.now += dt

	w.perceive()

	for _, a := range w.agents {
		if !a.alive || a.behavior == nil {
			continue
		}
		if a.ordered {
			if a.IsMoving() {
				if a.lastMove == MoveBlocked {
					w.rerouteOrder(a)
				}
				continue
			}
			a.ordered = false
			w.record(a, "order", "complete", fmt.Sprintf("%v", a.Cell()), 0)
		}
		a.behavior.Update(w, a)
	}

	for _, a := range w.agents {
		if !a.alive {
			continue
		}
		a.lastMove = a.advance(w.grid, dt)
		if dt > 0 && (a.lastMove == MoveMoving || a.lastMove == MoveArrived) {
			w.simLog.AddVerbose(w.tick, a.label, a.team.String(), "nav", "pos",
				fmt.Sprintf("(%.2f,%.2f)", a.pos.R, a.pos.C), a.speed)
		}
	}
	w.grid.Resync(w.agents)

	if w.damage != nil {
		w.damage.AgeTraces()
	}
}

// Step advances the world by the tuned fixed step.
func (w *World) Step() { w.Tick(w.tuning.TickSeconds()) }

// perceive refreshes team boards from shared vision and pack boards from what
// each member sees with its own eyes.
func (w *World) perceive() {
	w.vision.Recompute(w.agents)
	for t := Team(0); t < teamCount; t++ {
		team := t
		w.teamBoards[t].Refresh(w.now, w.agents, func(c Cell) bool {
			return w.vision.IsVisible(team, c)
		})
	}

	for _, id := range w.packIDs() {
		pb := w.packs[id]
		for _, mid := range pb.members {
			m := w.byID[mid]
			if m == nil || !m.alive {
				continue
			}
			for _, o := range w.agents {
				if !o.alive || o.team == m.team {
					continue
				}
				if canSee(w.grid, m, o) {
					pb.Report(m, o, w.now)
				}
			}
		}
		pb.Sweep(w.now)
	}
}

func (w *World) packIDs() []int {
	ids := make([]int, 0, len(w.packs))
	for id := range w.packs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// boardFor returns the board a behaviour reads. Agents outside any pack fall
// back to their team board.
func (w *World) boardFor(a *Agent, src BoardSource) Board {
	if src == BoardPack {
		if pb := w.packs[a.packID]; pb != nil {
			return pb
		}
	}
	return w.teamBoards[a.team]
}

// --- Environment contract ---

func (w *World) InBounds(r, c int) bool { return w.grid.InBounds(r, c) }

func (w *World) IsBlocked(r, c int, ignore AgentID) bool { return w.grid.IsBlocked(r, c, ignore) }

func (w *World) IsOpaque(r, c int) bool { return w.grid.IsOpaque(r, c) }

// FindPath runs A* for mover.
func (w *World) FindPath(start, goal Cell, mover AgentID) ([]Cell, error) {
	return w.paths.FindPath(start, goal, mover)
}

// CommandMove queues a one-cell move for a without running the pathfinder.
func (w *World) CommandMove(a *Agent, to Cell) error {
	return commandMove(w.grid, a, to)
}

// IsVisible reports whether team currently sees cell c.
func (w *World) IsVisible(team Team, c Cell) bool { return w.vision.IsVisible(team, c) }

// HasLineOfSight traces a Bresenham line between two cells.
func (w *World) HasLineOfSight(a, b Cell) bool { return w.grid.HasLineOfSight(a, b) }

// Now returns world time in seconds.
func (w *World) Now() float64 { return w.now }

// Dt returns the last step length.
func (w *World) Dt() float64 { return w.dt }

// TickCount returns how many ticks have run.
func (w *World) TickCount() int { return w.tick }

// Units returns every agent, dead ones included, in id order.
func (w *World) Units() []*Agent { return w.agents }

// Unit resolves an id through the id-indexed table.
func (w *World) Unit(id AgentID) *Agent { return w.byID[id] }

// ResolveMeleeHit delegates a melee blow and applies a kill. Reports the kill.
func (w *World) ResolveMeleeHit(attacker, target *Agent) bool {
	hit, killed := w.combat.ResolveMeleeHit(attacker, target)
	w.recordHit(attacker, target, "melee", hit)
	if killed {
		w.kill(target, attacker)
	}
	return killed
}

// FireRangedShot delegates a shot and applies a kill. Reports the kill.
func (w *World) FireRangedShot(shooter, target *Agent) bool {
	hit, killed := w.combat.FireRangedShot(shooter, target)
	w.recordHit(shooter, target, "shot", hit)
	if killed {
		w.kill(target, shooter)
	}
	return killed
}

func (w *World) recordHit(attacker, target *Agent, key string, hit bool) {
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	w.record(attacker, "combat", key, fmt.Sprintf("%s %s", outcome, target.label), target.hp)
}

func (w *World) kill(target, by *Agent) {
	if !target.alive {
		return
	}
	target.alive = false
	target.ClearPath()
	target.ordered = false
	w.releaseReservation(target)
	target.bs.TargetID = 0
	from := target.bs.State
	target.bs.State = StateDead
	target.bs.Phase = ""
	if pb := w.packs[target.packID]; pb != nil {
		pb.Leave(target.id)
	}
	w.record(by, "combat", "kill", target.label, 0)
	w.record(target, "state", "change", fmt.Sprintf("%s -> %s", from, StateDead), 0)
	w.think(by, "killed "+target.label)
}

// --- Accessors for viewers and reports ---

// Grid returns the world's grid.
func (w *World) Grid() *Grid { return w.grid }

// Reservations returns the standoff reservation table.
func (w *World) Reservations() *ReservationTable { return w.reservations }

// TeamBoard returns the board of team t.
func (w *World) TeamBoard(t Team) *TeamBoard {
	if t < 0 || t >= teamCount {
		return nil
	}
	return w.teamBoards[t]
}

// PackBoard returns pack id, or nil.
func (w *World) PackBoard(id int) *PackBoard { return w.packs[id] }

// Packs returns every pack in id order.
func (w *World) Packs() []*PackBoard {
	out := make([]*PackBoard, 0, len(w.packs))
	for _, id := range w.packIDs() {
		out = append(out, w.packs[id])
	}
	return out
}

// Tuning returns the tuning the world was built with.
func (w *World) Tuning() *tuning.Tuning { return w.tuning }

// SimLog returns the structured event log.
func (w *World) SimLog() *SimLog { return w.simLog }

// Thoughts returns the viewer ring buffer.
func (w *World) Thoughts() *ThoughtLog { return w.thoughts }

// ShotTraces returns live shot traces from the default resolver.
func (w *World) ShotTraces() []ShotTrace {
	if w.damage == nil {
		return nil
	}
	return w.damage.Traces()
}

// Selected returns the agents an external UI has selected.
func (w *World) Selected() []*Agent {
	var out []*Agent
	for _, a := range w.agents {
		if a.selected && a.alive {
			out = append(out, a)
		}
	}
	return out
}

// ClearSelection deselects every agent.
func (w *World) ClearSelection() {
	for _, a := range w.agents {
		a.selected = false
	}
}

// AgentAt returns the live agent whose body covers c, or nil.
func (w *World) AgentAt(c Cell) *Agent {
	for _, id := range w.grid.Occupants(c.R, c.C) {
		if a := w.byID[id]; a != nil && a.alive {
			return a
		}
	}
	return nil
}

// Alive counts live agents per team.
func (w *World) Alive() [teamCount]int {
	var out [teamCount]int
	for _, a := range w.agents {
		if a.alive {
			out[a.team]++
		}
	}
	return out
}

func (w *World) record(a *Agent, category, key, value string, num float64) {
	w.simLog.Add(w.tick, a.label, a.team.String(), category, key, value, num)
}

func (w *World) think(a *Agent, msg string) {
	w.thoughts.Add(w.tick, a.label, a.team, msg)
}
