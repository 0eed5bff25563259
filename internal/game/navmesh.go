package game

import (
	"container/heap"
	"fmt"
	"math"
)

// --- A* pathfinding ---

type pathNode struct {
	cell   Cell
	g, h   float64
	parent *pathNode
	index  int // heap index
}

type openList []*pathNode

func (ol openList) Len() int { return len(ol) }
func (ol openList) Less(i, j int) bool {
	fi, fj := ol[i].g+ol[i].h, ol[j].g+ol[j].h
	if fi != fj {
		return fi < fj
	}
	// Prefer the node closer to the goal on ties; keeps paths straight.
	return ol[i].h < ol[j].h
}
func (ol openList) Swap(i, j int)       { ol[i], ol[j] = ol[j], ol[i]; ol[i].index = i; ol[j].index = j }
func (ol *openList) Push(x interface{}) { n := x.(*pathNode); n.index = len(*ol); *ol = append(*ol, n) }
func (ol *openList) Pop() interface{} {
	old := *ol
	n := old[len(old)-1]
	old[len(old)-1] = nil
	*ol = old[:len(old)-1]
	return n
}

var dirs = [8][2]int{
	{1, 0}, {-1, 0}, {0, 1}, {0, -1},
	{1, 1}, {1, -1}, {-1, 1}, {-1, -1},
}

// Pathfinder runs 8-connected A* over a grid's terrain and occupancy.
type Pathfinder struct {
	grid *Grid

	// MaxExpansions bounds the number of closed nodes per search; 0 = unbounded.
	MaxExpansions int
}

// NewPathfinder returns an unbounded pathfinder over g.
func NewPathfinder(g *Grid) *Pathfinder {
	return &Pathfinder{grid: g}
}

// FindPath returns the cells from start to goal inclusive. The mover's own
// occupancy is ignored. Diagonal steps are rejected when either flanking
// orthogonal cell is blocked. Fails with ErrNoPath when the goal is blocked or
// unreachable.
func (pf *Pathfinder) FindPath(start, goal Cell, mover AgentID) ([]Cell, error) {
	g := pf.grid
	if !g.InBounds(start.R, start.C) {
		return nil, fmt.Errorf("%w: start %v out of bounds", ErrNoPath, start)
	}
	if g.IsBlocked(goal.R, goal.C, mover) {
		return nil, fmt.Errorf("%w: goal %v blocked", ErrNoPath, goal)
	}
	if start == goal {
		return []Cell{start}, nil
	}

	key := func(c Cell) int { return c.R*g.cols + c.C }
	heuristic := func(c Cell) float64 {
		dr := float64(c.R - goal.R)
		dc := float64(c.C - goal.C)
		return math.Sqrt(dr*dr + dc*dc)
	}

	startNode := &pathNode{cell: start, h: heuristic(start)}
	ol := &openList{startNode}
	heap.Init(ol)

	closed := make(map[int]bool)
	best := make(map[int]*pathNode)
	best[key(start)] = startNode

	for ol.Len() > 0 {
		cur := heap.Pop(ol).(*pathNode)
		if cur.cell == goal {
			return buildPath(cur), nil
		}
		k := key(cur.cell)
		if closed[k] {
			continue
		}
		closed[k] = true
		if pf.MaxExpansions > 0 && len(closed) > pf.MaxExpansions {
			return nil, fmt.Errorf("%w: search budget of %d nodes exhausted", ErrNoPath, pf.MaxExpansions)
		}

		for _, d := range dirs {
			next := Cell{R: cur.cell.R + d[0], C: cur.cell.C + d[1]}
			if g.IsBlocked(next.R, next.C, mover) {
				continue
			}
			diagonal := d[0] != 0 && d[1] != 0
			// Prevent diagonal corner-cutting through blocked cells.
			if diagonal {
				if g.IsBlocked(cur.cell.R+d[0], cur.cell.C, mover) || g.IsBlocked(cur.cell.R, cur.cell.C+d[1], mover) {
					continue
				}
			}
			nk := key(next)
			if closed[nk] {
				continue
			}
			cost := 1.0
			if diagonal {
				cost = math.Sqrt2
			}
			ng := cur.g + cost
			if prev, ok := best[nk]; ok && ng >= prev.g {
				continue
			}
			node := &pathNode{cell: next, g: ng, h: heuristic(next), parent: cur}
			best[nk] = node
			heap.Push(ol, node)
		}
	}
	return nil, fmt.Errorf("%w: %v unreachable from %v", ErrNoPath, goal, start)
}

func buildPath(end *pathNode) []Cell {
	var cells []Cell
	for n := end; n != nil; n = n.parent {
		cells = append(cells, n.cell)
	}
	// Reverse
	for i, j := 0, len(cells)-1; i < j; i, j = i+1, j-1 {
		cells[i], cells[j] = cells[j], cells[i]
	}
	return cells
}

// PathLength returns the summed step cost of a cell path (1 orthogonal, √2 diagonal).
func PathLength(path []Cell) float64 {
	total := 0.0
	for i := 1; i < len(path); i++ {
		dr := absInt(path[i].R - path[i-1].R)
		dc := absInt(path[i].C - path[i-1].C)
		if dr == 1 && dc == 1 {
			total += math.Sqrt2
		} else {
			total += float64(dr + dc)
		}
	}
	return total
}

// OctileDistance is the shortest 8-connected path cost between two cells on an
// open grid.
func OctileDistance(a, b Cell) float64 {
	dr := float64(absInt(a.R - b.R))
	dc := float64(absInt(a.C - b.C))
	return dr + dc + (math.Sqrt2-2)*math.Min(dr, dc)
}
