package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/Garsondee/Pack-Sense/internal/eventlog"
	"github.com/Garsondee/Pack-Sense/internal/game"
	"github.com/Garsondee/Pack-Sense/internal/tuning"
)

type runStats struct {
	runIndex int
	seed     int64
	ticks    int

	firstAcquireTick  int
	firstEngageTick   int
	firstKillTick     int
	firstFleeTick     int
	firstDeliveryTick int
	lastKillTick      int

	acquires     int
	switches     int
	stateChanges int
	hits         int
	misses       int
	kills        int
	fleeEnter    int
	fleeExit     int
	pickups      int
	deliveries   int
	watchdogs    int
	holds        int
	orderFails   int

	victims   map[string]struct{}
	killers   map[string]int
	survivors map[string]int // team -> live agents at the end
	spawned   map[string]int // team -> agents spawned
}

// eventRecord is one event log line: the run it came from plus the entry.
type eventRecord struct {
	Run  int   `json:"run"`
	Seed int64 `json:"seed"`
	game.SimLogEntry
}

func main() {
	var runs int
	var seconds float64
	var seedBase int64
	var seedStep int64
	var config string
	var events string
	var level string
	var summary bool
	var verbose bool

	flag.IntVar(&runs, "runs", 5, "number of headless simulation runs")
	flag.Float64Var(&seconds, "seconds", 60, "simulated seconds per run")
	flag.Int64Var(&seedBase, "seed-base", 42, "base RNG seed for run 1")
	flag.Int64Var(&seedStep, "seed-step", 1, "seed increment between runs")
	flag.StringVar(&config, "config", "", "tuning YAML (default: embedded)")
	flag.StringVar(&events, "events", "", "write every run's event log to this .jsonl.zst file")
	flag.StringVar(&level, "log-level", "warn", "log level: debug, info, warn, error")
	flag.BoolVar(&summary, "summary", false, "print the end-of-run world summary")
	flag.BoolVar(&verbose, "verbose", false, "also log per-tick movement (written to -events)")
	flag.Parse()

	logger := newLogger(level)

	if runs <= 0 {
		fmt.Println("error: -runs must be > 0")
		return
	}
	if seconds <= 0 {
		fmt.Println("error: -seconds must be > 0")
		return
	}

	t, err := loadTuning(config)
	if err != nil {
		logger.Fatal("load tuning", "err", err)
	}

	var sink *eventlog.Writer
	if events != "" {
		if sink, err = eventlog.Create(events); err != nil {
			logger.Fatal("open event log", "err", err)
		}
	}

	ticks := int(seconds/t.TickSeconds() + 0.5)
	fmt.Printf("=== Headless Pack Report ===\n")
	fmt.Printf("scenario=demo runs=%d seconds=%.1f ticks=%d seed_base=%d seed_step=%d\n\n", runs, seconds, ticks, seedBase, seedStep)

	all := make([]runStats, 0, runs)
	for i := 0; i < runs; i++ {
		seed := seedBase + int64(i)*seedStep
		rs, err := runDemo(i+1, seed, ticks, t, logger, sink, summary, verbose)
		if err != nil {
			logger.Fatal("run failed", "run", i+1, "seed", seed, "err", err)
		}
		all = append(all, rs)
		printRun(rs)
	}
	printAggregate(all)

	if sink != nil {
		n := sink.Count()
		if err := sink.Close(); err != nil {
			logger.Fatal("close event log", "err", err)
		}
		logger.Info("event log written", "path", events, "entries", n)
	}
}

func newLogger(level string) *log.Logger {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.WarnLevel
	}
	return log.NewWithOptions(os.Stderr, log.Options{
		Level:           lvl,
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
		Prefix:          "headless",
	})
}

func loadTuning(path string) (*tuning.Tuning, error) {
	if path == "" {
		return tuning.Default()
	}
	return tuning.Load(path)
}

func runDemo(runIndex int, seed int64, ticks int, t *tuning.Tuning, logger *log.Logger, sink *eventlog.Writer, summary, verbose bool) (runStats, error) {
	sl := game.NewSimLog(verbose)
	w, err := game.NewDemoWorld(seed, t, game.WithLogger(logger.With("run", runIndex)), game.WithSimLog(sl))
	if err != nil {
		return runStats{}, err
	}
	for i := 0; i < ticks; i++ {
		w.Step()
	}

	survivors := map[string]int{}
	for i, n := range w.Alive() {
		survivors[game.Team(i).String()] = n
	}
	rs := collectStats(runIndex, seed, sl, survivors)
	rs.ticks = ticks

	if summary {
		fmt.Print(sl.Summary(w))
	}
	if sink != nil {
		for _, e := range sl.Entries() {
			if err := sink.Write(eventRecord{Run: runIndex, Seed: seed, SimLogEntry: e}); err != nil {
				return rs, fmt.Errorf("write event: %w", err)
			}
		}
	}
	return rs, nil
}

// collectStats folds one run's event log into counters and first-tick markers.
func collectStats(runIndex int, seed int64, sl *game.SimLog, survivors map[string]int) runStats {
	entries := sl.Entries()
	rs := runStats{
		runIndex:          runIndex,
		seed:              seed,
		firstAcquireTick:  tickOf(sl.FirstOf("target", "acquire")),
		firstEngageTick:   firstTick(entries, "state", "change", "-> ENGAGE"),
		firstKillTick:     tickOf(sl.FirstOf("combat", "kill")),
		firstFleeTick:     tickOf(sl.FirstOf("flee", "enter")),
		firstDeliveryTick: tickOf(sl.FirstOf("loot", "delivered")),
		lastKillTick:      tickOf(sl.LastOf("combat", "kill")),
		victims:           map[string]struct{}{},
		killers:           map[string]int{},
		survivors:         survivors,
		spawned:           map[string]int{},
	}
	for _, e := range entries {
		switch e.Category {
		case "spawn":
			rs.spawned[e.Team]++
		case "target":
			switch e.Key {
			case "acquire":
				rs.acquires++
			case "switch":
				rs.switches++
			}
		case "state":
			rs.stateChanges++
		case "combat":
			switch e.Key {
			case "kill":
				rs.kills++
				rs.killers[e.Agent]++
				rs.victims[e.Value] = struct{}{}
			case "melee", "shot":
				if strings.HasPrefix(e.Value, "hit") {
					rs.hits++
				} else {
					rs.misses++
				}
			}
		case "flee":
			switch e.Key {
			case "enter":
				rs.fleeEnter++
			case "exit":
				rs.fleeExit++
			}
		case "loot":
			switch e.Key {
			case "pickup":
				rs.pickups++
			case "delivered":
				rs.deliveries++
			}
		case "nav":
			switch e.Key {
			case "watchdog":
				rs.watchdogs++
			case "hold":
				rs.holds++
			}
		case "order":
			if e.Key == "failed" {
				rs.orderFails++
			}
		}
	}
	return rs
}

// tickOf returns the entry's tick, or -1 when nothing matched.
func tickOf(e game.SimLogEntry, ok bool) int {
	if !ok {
		return -1
	}
	return e.Tick
}

func firstTick(entries []game.SimLogEntry, category, key, contains string) int {
	for _, e := range entries {
		if e.Category != category || e.Key != key {
			continue
		}
		if contains == "" || strings.Contains(e.Value, contains) {
			return e.Tick
		}
	}
	return -1
}

// classifyRun labels a run by how decisive it was.
func classifyRun(rs runStats) (string, string) {
	teams := make([]string, 0, len(rs.spawned))
	for team := range rs.spawned {
		teams = append(teams, team)
	}
	sort.Strings(teams)
	for _, team := range teams {
		if rs.spawned[team] > 0 && rs.survivors[team] == 0 {
			return "wipeout", "team_eliminated=" + team
		}
	}
	if rs.kills == 0 {
		if rs.acquires == 0 {
			return "quiet", "no_contact"
		}
		return "standoff", fmt.Sprintf("contact_without_kills acquires=%d", rs.acquires)
	}
	return "skirmish", fmt.Sprintf("kills=%d", rs.kills)
}

func printRun(rs runStats) {
	outcome, reason := classifyRun(rs)
	fmt.Printf("--- Run %d (seed=%d) ---\n", rs.runIndex, rs.seed)
	fmt.Printf("outcome=%s (%s)\n", outcome, reason)
	fmt.Printf("phase_markers: acquire=%d engage=%d first_kill=%d last_kill=%d first_flee=%d first_delivery=%d\n",
		rs.firstAcquireTick, rs.firstEngageTick, rs.firstKillTick, rs.lastKillTick, rs.firstFleeTick, rs.firstDeliveryTick)
	fmt.Printf("targeting: acquire=%d switch=%d state_change=%d\n", rs.acquires, rs.switches, rs.stateChanges)
	fmt.Printf("combat: hits=%d misses=%d kills=%d victims=[%s]\n", rs.hits, rs.misses, rs.kills, joinSet(rs.victims))
	fmt.Printf("prey: flee_enter=%d flee_exit=%d  loot: pickup=%d delivered=%d\n", rs.fleeEnter, rs.fleeExit, rs.pickups, rs.deliveries)
	fmt.Printf("nav: watchdog=%d hold=%d order_failed=%d\n", rs.watchdogs, rs.holds, rs.orderFails)
	fmt.Printf("survivors: %s\n", formatTeams(rs.survivors, rs.spawned))
	fmt.Println()
}

func printAggregate(all []runStats) {
	var acquires, switches, kills, hits, misses, fleeEnter, deliveries, watchdogs int
	acquireTicks := make([]int, 0, len(all))
	engageTicks := make([]int, 0, len(all))
	killTicks := make([]int, 0, len(all))
	fleeTicks := make([]int, 0, len(all))
	deliveryTicks := make([]int, 0, len(all))
	outcomes := map[string]int{}
	killers := map[string]int{}
	survivors := map[string]int{}
	spawned := map[string]int{}

	for _, rs := range all {
		acquires += rs.acquires
		switches += rs.switches
		kills += rs.kills
		hits += rs.hits
		misses += rs.misses
		fleeEnter += rs.fleeEnter
		deliveries += rs.deliveries
		watchdogs += rs.watchdogs
		acquireTicks = appendMarker(acquireTicks, rs.firstAcquireTick)
		engageTicks = appendMarker(engageTicks, rs.firstEngageTick)
		killTicks = appendMarker(killTicks, rs.firstKillTick)
		fleeTicks = appendMarker(fleeTicks, rs.firstFleeTick)
		deliveryTicks = appendMarker(deliveryTicks, rs.firstDeliveryTick)
		outcome, _ := classifyRun(rs)
		outcomes[outcome]++
		for label, n := range rs.killers {
			killers[label] += n
		}
		for team, n := range rs.survivors {
			survivors[team] += n
		}
		for team, n := range rs.spawned {
			spawned[team] += n
		}
	}

	n := len(all)
	fmt.Println("=== Aggregate ===")
	fmt.Printf("runs=%d outcomes=%s\n", n, formatCounts(outcomes))
	fmt.Printf("avg_events_per_run: acquire=%.1f switch=%.1f kill=%.1f flee_enter=%.1f delivered=%.1f watchdog=%.1f\n",
		avg(acquires, n), avg(switches, n), avg(kills, n), avg(fleeEnter, n), avg(deliveries, n), avg(watchdogs, n))
	fmt.Printf("hit_rate=%s\n", rate(hits, hits+misses))
	fmt.Printf("phase_marker_avg_ticks: first_acquire=%s first_engage=%s first_kill=%s first_flee=%s first_delivery=%s\n",
		avgTickString(acquireTicks), avgTickString(engageTicks), avgTickString(killTicks), avgTickString(fleeTicks), avgTickString(deliveryTicks))
	fmt.Printf("survival: %s\n", formatTeams(survivors, spawned))
	fmt.Printf("top_killers: %s\n", formatCounts(killers))
}

func appendMarker(vals []int, tick int) []int {
	if tick < 0 {
		return vals
	}
	return append(vals, tick)
}

func avg(sum int, n int) float64 {
	if n <= 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

func rate(num, den int) string {
	if den == 0 {
		return "n/a"
	}
	return fmt.Sprintf("%.0f%%", float64(num)/float64(den)*100)
}

func avgTickString(vals []int) string {
	if len(vals) == 0 {
		return "n/a"
	}
	sum := 0
	for _, v := range vals {
		sum += v
	}
	return fmt.Sprintf("%.1f", float64(sum)/float64(len(vals)))
}

func formatTeams(alive, spawned map[string]int) string {
	teams := make([]string, 0, len(spawned))
	for t := range spawned {
		teams = append(teams, t)
	}
	sort.Strings(teams)
	parts := make([]string, 0, len(teams))
	for _, t := range teams {
		parts = append(parts, fmt.Sprintf("%s=%d/%d", t, alive[t], spawned[t]))
	}
	return strings.Join(parts, " ")
}

// formatCounts prints key=count pairs, largest first.
func formatCounts(counts map[string]int) string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%d", k, counts[k]))
	}
	return strings.Join(parts, " ")
}

func joinSet(set map[string]struct{}) string {
	if len(set) == 0 {
		return ""
	}
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return strings.Join(keys, ",")
}
