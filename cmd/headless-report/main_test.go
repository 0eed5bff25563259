package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/Garsondee/Pack-Sense/internal/eventlog"
	"github.com/Garsondee/Pack-Sense/internal/game"
	"github.com/Garsondee/Pack-Sense/internal/tuning"
)

func entry(tick int, agent, team, category, key, value string) game.SimLogEntry {
	return game.SimLogEntry{Tick: tick, Agent: agent, Team: team, Category: category, Key: key, Value: value}
}

func simLogOf(entries ...game.SimLogEntry) *game.SimLog {
	sl := game.NewSimLog(false)
	for _, e := range entries {
		sl.Add(e.Tick, e.Agent, e.Team, e.Category, e.Key, e.Value, e.NumVal)
	}
	return sl
}

func TestCollectStats_CountsAndMarkers(t *testing.T) {
	sl := simLogOf(
		entry(0, "W1", "wild", "spawn", "wolf", "(1,1)"),
		entry(0, "D1", "fauna", "spawn", "deer", "(5,5)"),
		entry(3, "W1", "wild", "target", "acquire", "2"),
		entry(4, "D1", "fauna", "flee", "enter", "W1"),
		entry(9, "W1", "wild", "state", "change", "APPROACH -> ENGAGE"),
		entry(10, "W1", "wild", "combat", "melee", "miss D1"),
		entry(11, "W1", "wild", "combat", "melee", "hit D1"),
		entry(11, "W1", "wild", "combat", "kill", "D1"),
		entry(11, "D1", "fauna", "state", "change", "FLEE -> DEAD"),
		entry(14, "W1", "wild", "nav", "pos", "(2.00,3.50)"),
		entry(20, "W1", "wild", "combat", "kill", "D2"),
	)
	rs := collectStats(1, 7, sl, map[string]int{"wild": 1, "fauna": 0})

	if rs.firstAcquireTick != 3 || rs.firstFleeTick != 4 || rs.firstEngageTick != 9 || rs.firstKillTick != 11 {
		t.Fatalf("markers: acquire=%d flee=%d engage=%d kill=%d",
			rs.firstAcquireTick, rs.firstFleeTick, rs.firstEngageTick, rs.firstKillTick)
	}
	if rs.firstDeliveryTick != -1 {
		t.Fatalf("no delivery happened, got marker %d", rs.firstDeliveryTick)
	}
	if rs.lastKillTick != 20 {
		t.Fatalf("last kill marker = %d", rs.lastKillTick)
	}
	if rs.hits != 1 || rs.misses != 1 || rs.kills != 2 {
		t.Fatalf("combat counts: hits=%d misses=%d kills=%d", rs.hits, rs.misses, rs.kills)
	}
	if rs.stateChanges != 2 || rs.killers["W1"] != 2 {
		t.Fatalf("state=%d killers=%v", rs.stateChanges, rs.killers)
	}
	if joinSet(rs.victims) != "D1,D2" {
		t.Fatalf("victims = %q", joinSet(rs.victims))
	}
	if rs.spawned["wild"] != 1 || rs.spawned["fauna"] != 1 {
		t.Fatalf("spawned = %v", rs.spawned)
	}
}

func TestClassifyRun_WipeoutWhenTeamEliminated(t *testing.T) {
	rs := runStats{
		kills:     3,
		spawned:   map[string]int{"fauna": 3, "wild": 2},
		survivors: map[string]int{"fauna": 0, "wild": 2},
	}
	outcome, reason := classifyRun(rs)
	if outcome != "wipeout" || !strings.Contains(reason, "fauna") {
		t.Fatalf("expected fauna wipeout, got %s (%s)", outcome, reason)
	}
}

func TestClassifyRun_QuietAndStandoff(t *testing.T) {
	rs := runStats{
		spawned:   map[string]int{"wild": 2},
		survivors: map[string]int{"wild": 2},
	}
	if outcome, _ := classifyRun(rs); outcome != "quiet" {
		t.Fatalf("expected quiet, got %s", outcome)
	}
	rs.acquires = 4
	if outcome, _ := classifyRun(rs); outcome != "standoff" {
		t.Fatalf("expected standoff, got %s", outcome)
	}
	rs.kills = 1
	if outcome, _ := classifyRun(rs); outcome != "skirmish" {
		t.Fatalf("expected skirmish, got %s", outcome)
	}
}

func TestFormatCounts_LargestFirst(t *testing.T) {
	got := formatCounts(map[string]int{"W1": 1, "H2": 3, "A1": 1})
	if got != "H2=3 A1=1 W1=1" {
		t.Fatalf("formatCounts = %q", got)
	}
}

func TestAvgTickString(t *testing.T) {
	if s := avgTickString(nil); s != "n/a" {
		t.Fatalf("empty = %q", s)
	}
	if s := avgTickString([]int{10, 20}); s != "15.0" {
		t.Fatalf("avg = %q", s)
	}
}

func TestRunDemo_WritesEventLog(t *testing.T) {
	tn, err := tuning.Default()
	if err != nil {
		t.Fatalf("tuning: %v", err)
	}
	var buf bytes.Buffer
	sink, err := eventlog.NewWriter(&buf)
	if err != nil {
		t.Fatalf("writer: %v", err)
	}
	rs, err := runDemo(1, 42, 60, tn, newLogger("error"), sink, false, true)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if rs.ticks != 60 || len(rs.spawned) == 0 {
		t.Fatalf("unexpected stats: ticks=%d spawned=%v", rs.ticks, rs.spawned)
	}

	records, err := eventlog.ReadAll[eventRecord](&buf)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(records) == 0 {
		t.Fatal("expected events in the log")
	}
	spawns, moves := 0, 0
	for _, r := range records {
		if r.Run != 1 || r.Seed != 42 {
			t.Fatalf("record tagged with run=%d seed=%d", r.Run, r.Seed)
		}
		switch {
		case r.Category == "spawn":
			spawns++
		case r.Category == "nav" && r.Key == "pos":
			moves++
		}
	}
	if moves == 0 {
		t.Fatal("a verbose run should log movement")
	}
	total := 0
	for _, n := range rs.spawned {
		total += n
	}
	if spawns != total {
		t.Fatalf("log holds %d spawns, stats counted %d", spawns, total)
	}
}
