package game

import (
	"fmt"
	"math"
)

// Terrain is the static content of a grid cell.
type Terrain uint8

const (
	TerrainOpen  Terrain = iota // walkable, transparent
	TerrainWall                 // blocks movement and sight
	TerrainWater                // blocks movement, transparent
	TerrainBrush                // walkable, blocks sight
)

// BlocksMovement reports whether agents may never stand on this terrain.
func (t Terrain) BlocksMovement() bool { return t == TerrainWall || t == TerrainWater }

// Opaque reports whether this terrain stops line of sight.
func (t Terrain) Opaque() bool { return t == TerrainWall || t == TerrainBrush }

// Rune is the ASCII map glyph for the terrain.
func (t Terrain) Rune() rune {
	switch t {
	case TerrainWall:
		return '#'
	case TerrainWater:
		return '~'
	case TerrainBrush:
		return ','
	default:
		return '.'
	}
}

// Grid is the tile map plus the per-tick occupancy layer.
// Occupancy is rebuilt from agent positions by Resync after every tick.
type Grid struct {
	rows    int
	cols    int
	terrain []Terrain

	occ     []AgentID
	stacked map[int][]AgentID // extra occupants of cells already claimed in occ
}

// NewGrid builds an all-open grid.
func NewGrid(rows, cols int) *Grid {
	return &Grid{
		rows:    rows,
		cols:    cols,
		terrain: make([]Terrain, rows*cols),
		occ:     make([]AgentID, rows*cols),
		stacked: make(map[int][]AgentID),
	}
}

// ParseGrid builds a grid from ASCII rows: '.' open, '#' wall, '~' water, ',' brush.
// Any other glyph is treated as open ground so scenario maps can carry markers.
func ParseGrid(lines []string) (*Grid, error) {
	if len(lines) == 0 {
		return nil, fmt.Errorf("parse grid: no rows")
	}
	cols := len(lines[0])
	for i, l := range lines {
		if len(l) != cols {
			return nil, fmt.Errorf("parse grid: row %d has %d columns, want %d", i, len(l), cols)
		}
	}
	g := NewGrid(len(lines), cols)
	for r, l := range lines {
		for c, ch := range l {
			switch ch {
			case '#':
				g.terrain[r*cols+c] = TerrainWall
			case '~':
				g.terrain[r*cols+c] = TerrainWater
			case ',':
				g.terrain[r*cols+c] = TerrainBrush
			}
		}
	}
	return g, nil
}

// Rows returns the grid height in cells.
func (g *Grid) Rows() int { return g.rows }

// Cols returns the grid width in cells.
func (g *Grid) Cols() int { return g.cols }

// InBounds reports whether (r,c) lies on the grid.
func (g *Grid) InBounds(r, c int) bool {
	return r >= 0 && c >= 0 && r < g.rows && c < g.cols
}

// TerrainAt returns the terrain at (r,c); out-of-bounds cells read as walls.
func (g *Grid) TerrainAt(r, c int) Terrain {
	if !g.InBounds(r, c) {
		return TerrainWall
	}
	return g.terrain[r*g.cols+c]
}

// SetTerrain changes a cell's terrain. Out-of-bounds writes are ignored.
func (g *Grid) SetTerrain(r, c int, t Terrain) {
	if !g.InBounds(r, c) {
		return
	}
	g.terrain[r*g.cols+c] = t
}

// TerrainBlocked reports whether terrain alone forbids standing on (r,c).
func (g *Grid) TerrainBlocked(r, c int) bool {
	return g.TerrainAt(r, c).BlocksMovement()
}

// IsOpaque reports whether (r,c) stops line of sight. Occupancy is ignored.
func (g *Grid) IsOpaque(r, c int) bool {
	return g.TerrainAt(r, c).Opaque()
}

// IsBlocked is true when (r,c) is out of bounds, terrain-blocked, or occupied by
// any agent other than ignore.
func (g *Grid) IsBlocked(r, c int, ignore AgentID) bool {
	if !g.InBounds(r, c) {
		return true
	}
	idx := r*g.cols + c
	if g.terrain[idx].BlocksMovement() {
		return true
	}
	return g.occupiedByOther(idx, ignore)
}

// OccupiedByOther reports whether an agent other than ignore stands on (r,c).
// Terrain is not considered.
func (g *Grid) OccupiedByOther(r, c int, ignore AgentID) bool {
	if !g.InBounds(r, c) {
		return false
	}
	return g.occupiedByOther(r*g.cols+c, ignore)
}

func (g *Grid) occupiedByOther(idx int, ignore AgentID) bool {
	occ := g.occ[idx]
	if occ == 0 {
		return false
	}
	if occ != ignore {
		return true
	}
	for _, id := range g.stacked[idx] {
		if id != ignore {
			return true
		}
	}
	return false
}

// OccupantAt returns the first agent stamped on (r,c), or 0.
func (g *Grid) OccupantAt(r, c int) AgentID {
	if !g.InBounds(r, c) {
		return 0
	}
	return g.occ[r*g.cols+c]
}

// Occupants returns every agent stamped on (r,c).
func (g *Grid) Occupants(r, c int) []AgentID {
	if !g.InBounds(r, c) {
		return nil
	}
	idx := r*g.cols + c
	if g.occ[idx] == 0 {
		return nil
	}
	out := []AgentID{g.occ[idx]}
	return append(out, g.stacked[idx]...)
}

func (g *Grid) clearOccupancy() {
	clear(g.occ)
	clear(g.stacked)
}

func (g *Grid) stamp(id AgentID, cells []Cell) {
	for _, c := range cells {
		if !g.InBounds(c.R, c.C) {
			continue
		}
		idx := c.R*g.cols + c.C
		switch g.occ[idx] {
		case 0:
			g.occ[idx] = id
		case id:
		default:
			dup := false
			for _, other := range g.stacked[idx] {
				if other == id {
					dup = true
					break
				}
			}
			if !dup {
				g.stacked[idx] = append(g.stacked[idx], id)
			}
		}
	}
}

// Resync clears occupancy and re-stamps the footprint of every live agent.
func (g *Grid) Resync(agents []*Agent) {
	g.clearOccupancy()
	for _, a := range agents {
		if !a.alive {
			continue
		}
		g.stamp(a.id, a.Footprint())
	}
}

// Facing is the discrete 8-way orientation of an agent.
type Facing int

const (
	FacingE Facing = iota
	FacingSE
	FacingS
	FacingSW
	FacingW
	FacingNW
	FacingN
	FacingNE
)

// facingSteps is the unit cell step for each facing. Heading 0 points along +C,
// heading π/2 along +R.
var facingSteps = [8]Cell{
	{0, 1}, {1, 1}, {1, 0}, {1, -1},
	{0, -1}, {-1, -1}, {-1, 0}, {-1, 1},
}

func (f Facing) String() string {
	return [...]string{"E", "SE", "S", "SW", "W", "NW", "N", "NE"}[f&7]
}

// Step returns the unit cell offset for the facing.
func (f Facing) Step() Cell { return facingSteps[f&7] }

// FacingFromHeading snaps a heading in radians to the nearest of 8 facings.
func FacingFromHeading(h float64) Facing {
	i := int(math.Round(h/(math.Pi/4))) % 8
	if i < 0 {
		i += 8
	}
	return Facing(i)
}

// Footprint returns the cells covered by a body of the given length. The head is
// the rounded position; a second cell trails one 8-way step behind the heading.
func Footprint(pos Pos, heading float64, length int) []Cell {
	head := pos.Cell()
	if length < 2 {
		return []Cell{head}
	}
	step := FacingFromHeading(heading).Step()
	return []Cell{head, {R: head.R - step.R, C: head.C - step.C}}
}

func cellIn(c Cell, cells []Cell) bool {
	for _, o := range cells {
		if o == c {
			return true
		}
	}
	return false
}
