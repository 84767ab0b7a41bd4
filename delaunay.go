package trimesh

import (
	"image/color"
	"math"
	"sort"
)

// Point is a 2D coordinate with X the column and Y the row.
type Point struct {
	X, Y float64
}

// Triangle is a triangle of the mesh together with its resolved color.
// The vertex order carries no meaning.
type Triangle struct {
	Nodes [3]Point
	Color color.NRGBA
}

// Subdivision is a planar subdivision over a rectangle which can be
// triangulated once all the points have been inserted.
type Subdivision interface {
	Insert(points ...Point)
	Triangulate() []Triangle
}

// Delaunay builds the Delaunay triangulation of a point set bounded by the
// rectangle [0, width]×[0, height] with the Bowyer-Watson algorithm.
type Delaunay struct {
	width  int
	height int
	points []Point
	seen   map[Point]struct{}
}

var _ Subdivision = (*Delaunay)(nil)

// NewDelaunay returns an empty subdivision of a width×height rectangle.
func NewDelaunay(width, height int) *Delaunay {
	return &Delaunay{
		width:  width,
		height: height,
		seen:   make(map[Point]struct{}),
	}
}

// Insert adds points to the subdivision. Points sharing a coordinate with
// an already inserted point are dropped.
func (d *Delaunay) Insert(points ...Point) {
	for _, p := range points {
		if _, ok := d.seen[p]; ok {
			continue
		}
		d.seen[p] = struct{}{}
		d.points = append(d.points, p)
	}
}

type circle struct {
	x, y, radius float64 // radius is squared
}

type edge [2]int

// triangle references its vertices by index and caches its circumcircle.
type triangle struct {
	nodes  [3]int
	circle circle
}

func (t triangle) edges() [3]edge {
	return [3]edge{
		newEdge(t.nodes[0], t.nodes[1]),
		newEdge(t.nodes[1], t.nodes[2]),
		newEdge(t.nodes[2], t.nodes[0]),
	}
}

func newEdge(a, b int) edge {
	if a > b {
		a, b = b, a
	}
	return edge{a, b}
}

// circumcircle returns the circle through p0, p1 and p2. Collinear points
// yield an infinite circle, so that the triangle is removed by the next
// insertion.
func circumcircle(p0, p1, p2 Point) circle {
	d := 2 * (p0.X*(p1.Y-p2.Y) + p1.X*(p2.Y-p0.Y) + p2.X*(p0.Y-p1.Y))
	if math.Abs(d) < 1e-12 {
		return circle{
			x:      (p0.X + p1.X + p2.X) / 3,
			y:      (p0.Y + p1.Y + p2.Y) / 3,
			radius: math.Inf(1),
		}
	}
	m0 := p0.X*p0.X + p0.Y*p0.Y
	m1 := p1.X*p1.X + p1.Y*p1.Y
	m2 := p2.X*p2.X + p2.Y*p2.Y

	cx := (m0*(p1.Y-p2.Y) + m1*(p2.Y-p0.Y) + m2*(p0.Y-p1.Y)) / d
	cy := (m0*(p2.X-p1.X) + m1*(p0.X-p2.X) + m2*(p1.X-p0.X)) / d
	dx, dy := p0.X-cx, p0.Y-cy
	return circle{x: cx, y: cy, radius: dx*dx + dy*dy}
}

// area2 returns twice the signed area of the triangle.
func area2(p0, p1, p2 Point) float64 {
	return (p1.X-p0.X)*(p2.Y-p0.Y) - (p2.X-p0.X)*(p1.Y-p0.Y)
}

// Triangulate returns the Delaunay triangles of the inserted points. Triangles
// with a vertex outside the bounding rectangle and zero area triangles are
// discarded. Fewer than three points, or only collinear points, produce an
// empty result.
//
// Points are inserted sorted by X then Y, which makes the output independent
// of the insertion order.
func (d *Delaunay) Triangulate() []Triangle {
	n := len(d.points)
	if n < 3 {
		return nil
	}
	verts := make([]Point, n, n+3)
	copy(verts, d.points)
	sort.Slice(verts, func(i, j int) bool {
		if verts[i].X != verts[j].X {
			return verts[i].X < verts[j].X
		}
		return verts[i].Y < verts[j].Y
	})

	// The super triangle encloses every point by a wide margin.
	xmin, ymin, xmax, ymax := verts[0].X, verts[0].Y, verts[0].X, verts[0].Y
	for _, p := range verts {
		xmin, xmax = math.Min(xmin, p.X), math.Max(xmax, p.X)
		ymin, ymax = math.Min(ymin, p.Y), math.Max(ymax, p.Y)
	}
	dmax := math.Max(math.Max(xmax-xmin, ymax-ymin), 1)
	xmid, ymid := (xmin+xmax)/2, (ymin+ymax)/2
	verts = append(verts,
		Point{xmid - 20*dmax, ymid - dmax},
		Point{xmid, ymid + 20*dmax},
		Point{xmid + 20*dmax, ymid - dmax},
	)

	newTriangle := func(a, b, c int) triangle {
		return triangle{
			nodes:  [3]int{a, b, c},
			circle: circumcircle(verts[a], verts[b], verts[c]),
		}
	}

	open := []triangle{newTriangle(n, n+1, n+2)}
	var closed []triangle

	for i := 0; i < n; i++ {
		p := verts[i]
		var (
			polygon []edge
			counts  = make(map[edge]int)
			temps   []triangle
		)
		for _, t := range open {
			dx := p.X - t.circle.x
			// Points are sorted by X, so no later point can fall into this
			// circumcircle any more.
			if dx > 0 && dx*dx > t.circle.radius {
				closed = append(closed, t)
				continue
			}
			dy := p.Y - t.circle.y
			if dx*dx+dy*dy <= t.circle.radius {
				for _, e := range t.edges() {
					if counts[e] == 0 {
						polygon = append(polygon, e)
					}
					counts[e]++
				}
				continue
			}
			temps = append(temps, t)
		}
		// Edges shared by two removed triangles are interior to the cavity.
		for _, e := range polygon {
			if counts[e] == 1 {
				temps = append(temps, newTriangle(e[0], e[1], i))
			}
		}
		open = temps
	}
	closed = append(closed, open...)

	var (
		triangles  []Triangle
		degenerate int
	)
	for _, t := range closed {
		if t.nodes[0] >= n || t.nodes[1] >= n || t.nodes[2] >= n {
			continue
		}
		p0, p1, p2 := verts[t.nodes[0]], verts[t.nodes[1]], verts[t.nodes[2]]
		if !d.contains(p0) || !d.contains(p1) || !d.contains(p2) {
			continue
		}
		if area2(p0, p1, p2) == 0 {
			degenerate++
			continue
		}
		triangles = append(triangles, Triangle{Nodes: [3]Point{p0, p1, p2}})
	}
	if degenerate > 0 {
		Logger().Warn("delaunay: dropped zero area triangles", "count", degenerate)
	}
	Logger().Debug("delaunay: triangulated", "points", n, "triangles", len(triangles))
	return triangles
}

func (d *Delaunay) contains(p Point) bool {
	return p.X >= 0 && p.Y >= 0 && p.X <= float64(d.width) && p.Y <= float64(d.height)
}
