package game

import "math"

// HeadingTo returns the heading in radians from one position toward another.
// 0 points along +C, π/2 along +R.
func HeadingTo(from, to Pos) float64 {
	return math.Atan2(to.R-from.R, to.C-from.C)
}

// normalizeAngle wraps an angle to [-pi, pi].
func normalizeAngle(a float64) float64 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a < -math.Pi {
		a += 2 * math.Pi
	}
	return a
}

// turnToward rotates heading toward target by at most maxStep radians.
func turnToward(heading, target, maxStep float64) float64 {
	diff := normalizeAngle(target - heading)
	if math.Abs(diff) <= maxStep {
		return normalizeAngle(target)
	}
	if diff > 0 {
		return normalizeAngle(heading + maxStep)
	}
	return normalizeAngle(heading - maxStep)
}

// aimDot is the dot product of the unit vectors for two headings.
func aimDot(heading, desired float64) float64 {
	return math.Cos(heading)*math.Cos(desired) + math.Sin(heading)*math.Sin(desired)
}

// VisionMap holds per-team tile visibility, rebuilt once per tick from each
// live member's sight radius and grid line of sight.
type VisionMap struct {
	grid    *Grid
	visible [teamCount][]bool
}

// NewVisionMap allocates visibility layers for every team.
func NewVisionMap(g *Grid) *VisionMap {
	vm := &VisionMap{grid: g}
	for t := range vm.visible {
		vm.visible[t] = make([]bool, g.rows*g.cols)
	}
	return vm
}

// Recompute rebuilds every team layer from scratch.
func (vm *VisionMap) Recompute(agents []*Agent) {
	for t := range vm.visible {
		clear(vm.visible[t])
	}
	g := vm.grid
	for _, a := range agents {
		if !a.alive || a.sightRadius <= 0 {
			continue
		}
		layer := vm.visible[a.team]
		eye := a.pos.Cell()
		reach := int(math.Ceil(a.sightRadius))
		r2 := a.sightRadius * a.sightRadius
		for dr := -reach; dr <= reach; dr++ {
			for dc := -reach; dc <= reach; dc++ {
				if float64(dr*dr+dc*dc) > r2 {
					continue
				}
				c := Cell{R: eye.R + dr, C: eye.C + dc}
				if !g.InBounds(c.R, c.C) {
					continue
				}
				idx := c.R*g.cols + c.C
				if layer[idx] {
					continue
				}
				if g.HasLineOfSight(eye, c) {
					layer[idx] = true
				}
			}
		}
	}
}

// IsVisible reports whether any live member of team currently sees cell c.
func (vm *VisionMap) IsVisible(team Team, c Cell) bool {
	if team < 0 || team >= teamCount || !vm.grid.InBounds(c.R, c.C) {
		return false
	}
	return vm.visible[team][c.R*vm.grid.cols+c.C]
}

// canSee reports whether an individual agent sees target with its own eyes.
// Used for pack word-of-mouth reports, which are not shared vision.
func canSee(g *Grid, observer, target *Agent) bool {
	if observer.pos.DistSq(target.pos) > observer.sightRadius*observer.sightRadius {
		return false
	}
	return g.HasLineOfSight(observer.pos.Cell(), target.pos.Cell())
}
