package game

// BresenhamLine returns the cells visited by a Bresenham trace from a to b,
// both endpoints included.
func BresenhamLine(a, b Cell) []Cell {
	dr := absInt(b.R - a.R)
	dc := absInt(b.C - a.C)
	sr, sc := 1, 1
	if b.R < a.R {
		sr = -1
	}
	if b.C < a.C {
		sc = -1
	}

	cells := make([]Cell, 0, max(dr, dc)+1)
	r, c := a.R, a.C
	err := dc - dr
	for {
		cells = append(cells, Cell{R: r, C: c})
		if r == b.R && c == b.C {
			return cells
		}
		e2 := 2 * err
		if e2 > -dr {
			err -= dr
			c += sc
		}
		if e2 < dc {
			err += dc
			r += sr
		}
	}
}

// HasLineOfSight traces a Bresenham line between two cells and fails on the
// first opaque cell strictly between them. Endpoints never block, so an agent
// standing in brush can still be seen from open ground next to it.
func (g *Grid) HasLineOfSight(a, b Cell) bool {
	if a == b {
		return true
	}
	line := BresenhamLine(a, b)
	for _, c := range line[1 : len(line)-1] {
		if g.IsOpaque(c.R, c.C) {
			return false
		}
	}
	return true
}
