package game

import (
	"fmt"
	"strings"
)

// reportStage is a run of ticks spent in one state.
type reportStage struct {
	state    string
	from, to int
}

// AgentReport renders a plain-text debug report for one agent covering the last
// lastTicks ticks of its event history. Viewers copy it to the clipboard.
func (w *World) AgentReport(a *Agent, lastTicks int) string {
	if a == nil {
		return ""
	}
	if lastTicks <= 0 {
		lastTicks = 120
	}
	toTick := w.tick
	fromTick := max(toTick-lastTicks+1, 0)

	var b strings.Builder
	fmt.Fprintf(&b, "--- Pack-Sense debug report ---\n")
	fmt.Fprintf(&b, "seed=%d tick_range=[%d..%d] now=%.2fs\n", w.seed, fromTick, toTick, w.now)
	fmt.Fprintf(&b, "agent=%s id=%d team=%s kind=%s alive=%v hp=%.1f\n", a.label, a.id, a.team, a.kind, a.alive, a.hp)
	fmt.Fprintf(&b, "pos=(%.2f,%.2f) cell=%v heading=%.2f facing=%s len=%d\n",
		a.pos.R, a.pos.C, a.Cell(), a.heading, a.Facing(), a.length)

	bs := a.bs
	fmt.Fprintf(&b, "state=%s phase=%s since=%.2fs\n", bs.State, bs.Phase, bs.EnteredAt)
	if bs.TargetID != 0 {
		tl := "?"
		if t := w.byID[bs.TargetID]; t != nil {
			tl = t.label
		}
		fmt.Fprintf(&b, "target=%s (%d) last=(%.1f,%.1f) dist=%.2f\n",
			tl, bs.TargetID, bs.TargetPos.R, bs.TargetPos.C, a.pos.Dist(bs.TargetPos))
	}
	if res, ok := a.Reservation(); ok {
		fmt.Fprintf(&b, "reservation=%v stick_until=%.2f sticky=%v\n", res.Cell, res.StickUntil, res.Sticky(w.now))
	}
	if bs.Nav.Active {
		fmt.Fprintf(&b, "nav dest=%v last_dist=%.2f check_at=%.2f repath_at=%.2f\n",
			bs.Nav.Dest, bs.Nav.LastDist, bs.Nav.CheckAt, bs.Nav.RepathAt)
	}
	fmt.Fprintf(&b, "waypoints=%d last_move=%s ordered=%v\n", len(a.path), a.lastMove, a.ordered)
	if bs.LastFailure != nil {
		fmt.Fprintf(&b, "last_failure=%v\n", bs.LastFailure)
	}
	if bs.Delivered > 0 || bs.HasCarry {
		fmt.Fprintf(&b, "carrying=%v delivered=%d\n", bs.HasCarry, bs.Delivered)
	}

	b.WriteString("\n== board ==\n")
	var board Board = w.teamBoards[a.team]
	if pb := w.packs[a.packID]; pb != nil {
		board = pb
		fmt.Fprintf(&b, "pack=%d den=(%.0f,%.0f) members=%d\n", pb.id, pb.den.R, pb.den.C, len(pb.members))
	}
	sightings := board.Sightings()
	if len(sightings) == 0 {
		b.WriteString("(empty)\n")
	}
	for _, s := range sightings {
		label := "?"
		if t := w.byID[s.TargetID]; t != nil {
			label = t.label
		}
		fmt.Fprintf(&b, "  %s %s/%s at (%.1f,%.1f) age=%.1fs\n", label, s.Team, s.Kind, s.Pos.R, s.Pos.C, s.Age(w.now))
	}

	var events []SimLogEntry
	for _, e := range w.simLog.FilterAgent(a.label) {
		if e.Tick >= fromTick && e.Tick <= toTick {
			events = append(events, e)
		}
	}

	b.WriteString("\n== stages ==\n")
	stages := buildStages(events, bs.State.String(), fromTick, toTick)
	for _, st := range stages {
		fmt.Fprintf(&b, "  T%d..T%d %s\n", st.from, st.to, st.state)
	}

	b.WriteString("\n== events ==\n")
	if len(events) == 0 {
		b.WriteString("(none in range)\n")
	}
	for _, e := range events {
		b.WriteString("  ")
		b.WriteString(e.String())
		b.WriteByte('\n')
	}
	return b.String()
}

// buildStages splits [fromTick, toTick] at every state change entry.
func buildStages(events []SimLogEntry, current string, fromTick, toTick int) []reportStage {
	var stages []reportStage
	start := fromTick
	state := ""
	for _, e := range events {
		if e.Category != "state" || e.Key != "change" {
			continue
		}
		prev, next, ok := strings.Cut(e.Value, " -> ")
		if !ok {
			continue
		}
		if state == "" {
			state = prev
		}
		if e.Tick > start {
			stages = append(stages, reportStage{state: state, from: start, to: e.Tick - 1})
		}
		start = e.Tick
		state = next
	}
	if state == "" {
		state = current
	}
	stages = append(stages, reportStage{state: state, from: start, to: toTick})
	return stages
}
