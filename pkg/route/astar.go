package route

import (
	"container/heap"

	"github.com/matzehuels/lanechart/pkg/geom"
)

const (
	// TurnPenalty is the extra cost of changing direction between two steps.
	TurnPenalty = 4

	// MaxExpansions caps the number of nodes a single search may expand.
	MaxExpansions = 10000

	// MaxProbe is how many cells above and below a blocked endpoint are
	// tried before giving up and searching from the blocked cell.
	MaxProbe = 10

	// FallbackOffset is how far below the lower endpoint the fallback
	// route runs.
	FallbackOffset = 30.0
)

// Result is the outcome of a grid search.
type Result struct {
	Points     []geom.Point
	Expansions int
	Fallback   bool
}

type direction uint8

const (
	dirNone direction = iota
	dirRight
	dirDown
	dirLeft
	dirUp
)

// directions is the neighbor expansion order. Fixed so searches are
// reproducible.
var directions = [...]direction{dirRight, dirDown, dirLeft, dirUp}

func (c Cell) step(d direction) Cell {
	switch d {
	case dirRight:
		c.Col++
	case dirDown:
		c.Row++
	case dirLeft:
		c.Col--
	case dirUp:
		c.Row--
	}
	return c
}

// node is a search state. parent and dir are rewritten whenever a cheaper
// way into the cell is found before it is closed.
type node struct {
	cell   Cell
	g, h   int
	f      int
	parent *node
	dir    direction
	seq    int
	index  int
}

// nodeQueue orders nodes by f, then h, then insertion order.
type nodeQueue []*node

func (q nodeQueue) Len() int { return len(q) }

func (q nodeQueue) Less(i, j int) bool {
	if q[i].f != q[j].f {
		return q[i].f < q[j].f
	}
	if q[i].h != q[j].h {
		return q[i].h < q[j].h
	}
	return q[i].seq < q[j].seq
}

func (q nodeQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *nodeQueue) Push(x any) {
	n := x.(*node)
	n.index = len(*q)
	*q = append(*q, n)
}

func (q *nodeQueue) Pop() any {
	old := *q
	n := len(old)
	last := old[n-1]
	old[n-1] = nil
	last.index = -1
	*q = old[:n-1]
	return last
}

func manhattan(a, b Cell) int {
	return abs(a.Col-b.Col) + abs(a.Row-b.Row)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// FindPath returns a rectilinear route from start to end over g. It never
// returns nil; see [Search] for the fallback behavior.
func FindPath(g *Grid, start, end geom.Point) []geom.Point {
	return Search(g, start, end).Points
}

// Search runs A* from the cell nearest start to the cell nearest end.
//
// Blocked endpoint cells are moved to the closest free cell in the same
// column within MaxProbe rows. On success the first and last grid points are
// replaced by the literal start and end. If the open set empties or
// MaxExpansions is reached, the result holds [Fallback] and Fallback is set.
func Search(g *Grid, start, end geom.Point) Result {
	from := g.probe(g.Snap(start))
	to := g.probe(g.Snap(end))

	open := &nodeQueue{}
	nodes := make(map[Cell]*node)
	closed := make(map[Cell]bool)

	first := &node{cell: from, h: manhattan(from, to)}
	first.f = first.h
	heap.Push(open, first)
	nodes[from] = first

	seq := 0
	expansions := 0
	for open.Len() > 0 && expansions < MaxExpansions {
		cur := heap.Pop(open).(*node)
		expansions++

		if cur.cell == to {
			return Result{
				Points:     g.stitch(cur.cells(), start, end),
				Expansions: expansions,
			}
		}
		closed[cur.cell] = true

		for _, d := range directions {
			next := cur.cell.step(d)
			if closed[next] || g.Blocked(next) {
				continue
			}

			cost := cur.g + 1
			if cur.dir != dirNone && cur.dir != d {
				cost += TurnPenalty
			}

			n, seen := nodes[next]
			if !seen {
				seq++
				n = &node{cell: next, g: cost, h: manhattan(next, to), parent: cur, dir: d, seq: seq}
				n.f = n.g + n.h
				nodes[next] = n
				heap.Push(open, n)
				continue
			}
			if cost < n.g {
				n.g = cost
				n.f = cost + n.h
				n.parent = cur
				n.dir = d
				heap.Fix(open, n.index)
			}
		}
	}

	return Result{
		Points:     Fallback(start, end),
		Expansions: expansions,
		Fallback:   true,
	}
}

// probe looks for a free cell above or below c, alternating +1, -1, +2, -2.
func (g *Grid) probe(c Cell) Cell {
	if !g.Blocked(c) {
		return c
	}
	for i := 1; i <= MaxProbe; i++ {
		for _, dr := range [2]int{i, -i} {
			cand := Cell{Col: c.Col, Row: c.Row + dr}
			if g.InBounds(cand) && !g.Blocked(cand) {
				return cand
			}
		}
	}
	return c
}

// cells walks the parent chain and returns the cells from start to n.
func (n *node) cells() []Cell {
	var out []Cell
	for cur := n; cur != nil; cur = cur.parent {
		out = append(out, cur.cell)
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// stitch maps cells to canvas points and swaps the literal endpoints in.
func (g *Grid) stitch(cells []Cell, start, end geom.Point) []geom.Point {
	if len(cells) < 2 {
		return rectify([]geom.Point{start, end})
	}
	pts := make([]geom.Point, len(cells))
	for i, c := range cells {
		pts[i] = g.Point(c)
	}
	pts[0] = start
	pts[len(pts)-1] = end
	return rectify(pts)
}

// rectify removes zero-length segments and inserts one elbow wherever the
// endpoint substitution left a diagonal segment. A diagonal first segment is
// bent so the main leg keeps the direction of the next segment; any other
// diagonal is bent vertical-then-horizontal so the route arrives level.
func rectify(pts []geom.Point) []geom.Point {
	out := make([]geom.Point, 0, len(pts)+2)
	out = append(out, pts[0])
	for i := 1; i < len(pts); i++ {
		prev, cur := out[len(out)-1], pts[i]
		if prev == cur {
			continue
		}
		if prev.X != cur.X && prev.Y != cur.Y {
			elbow := geom.Point{X: prev.X, Y: cur.Y}
			if i == 1 && i+1 < len(pts) && pts[i+1].X == cur.X {
				elbow = geom.Point{X: cur.X, Y: prev.Y}
			}
			out = append(out, elbow)
		}
		out = append(out, cur)
	}
	if len(out) == 1 {
		out = append(out, pts[len(pts)-1])
	}
	return out
}

// Fallback is the route used when no grid path is found: down from start to
// FallbackOffset below the lower endpoint, across, and up or down to end.
// Vertically aligned endpoints get a leg FallbackOffset to the right so the
// route does not retrace itself.
func Fallback(start, end geom.Point) []geom.Point {
	y := max(start.Y, end.Y) + FallbackOffset
	if start.X == end.X {
		x := start.X + FallbackOffset
		return []geom.Point{start, {X: start.X, Y: y}, {X: x, Y: y}, {X: x, Y: end.Y}, end}
	}
	return []geom.Point{start, {X: start.X, Y: y}, {X: end.X, Y: y}, end}
}
