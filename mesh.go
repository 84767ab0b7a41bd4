package trimesh

import (
	"container/heap"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// boundaryWeight scales the constraint planes which keep open mesh borders
// in place while collapsing.
const boundaryWeight = 1000

// Vertex is a mesh vertex. Z holds a pixel intensity.
type Vertex struct {
	X, Y, Z float64
}

// Mesh is an indexed triangle mesh.
type Mesh struct {
	Vertices []Vertex
	Faces    [][3]int
}

// Simplifier reduces a mesh to at most target faces.
type Simplifier interface {
	Simplify(m *Mesh, target int) *Mesh
}

// QuadricSimplifier implements Garland and Heckbert's quadric error metric
// edge collapse. Coincident vertices are welded before simplification.
type QuadricSimplifier struct{}

var _ Simplifier = QuadricSimplifier{}

func (v Vertex) vec() *mat.VecDense {
	return mat.NewVecDense(4, []float64{v.X, v.Y, v.Z, 1})
}

func (v Vertex) sub(u Vertex) Vertex    { return Vertex{v.X - u.X, v.Y - u.Y, v.Z - u.Z} }
func (v Vertex) add(u Vertex) Vertex    { return Vertex{v.X + u.X, v.Y + u.Y, v.Z + u.Z} }
func (v Vertex) scale(s float64) Vertex { return Vertex{v.X * s, v.Y * s, v.Z * s} }
func (v Vertex) dot(u Vertex) float64   { return v.X*u.X + v.Y*u.Y + v.Z*u.Z }
func (v Vertex) cross(u Vertex) Vertex {
	return Vertex{v.Y*u.Z - v.Z*u.Y, v.Z*u.X - v.X*u.Z, v.X*u.Y - v.Y*u.X}
}

func (v Vertex) normalize() (Vertex, bool) {
	l := math.Sqrt(v.dot(v))
	if l == 0 {
		return v, false
	}
	return v.scale(1 / l), true
}

// planeQuadric returns w·ppᵀ for the plane through p with unit normal n.
func planeQuadric(n, p Vertex, w float64) *mat.SymDense {
	plane := mat.NewVecDense(4, []float64{n.X, n.Y, n.Z, -n.dot(p)})
	q := mat.NewSymDense(4, nil)
	q.SymRankOne(q, w, plane)
	return q
}

type collapse struct {
	cost   float64
	a, b   int
	stamp  [2]int
	target Vertex
}

type collapseQueue []collapse

func (q collapseQueue) Len() int { return len(q) }
func (q collapseQueue) Less(i, j int) bool {
	if q[i].cost != q[j].cost {
		return q[i].cost < q[j].cost
	}
	if q[i].a != q[j].a {
		return q[i].a < q[j].a
	}
	return q[i].b < q[j].b
}
func (q collapseQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *collapseQueue) Push(x any)   { *q = append(*q, x.(collapse)) }
func (q *collapseQueue) Pop() any {
	old := *q
	n := len(old)
	it := old[n-1]
	*q = old[:n-1]
	return it
}

// simplifyState is the working mesh of one Simplify call.
type simplifyState struct {
	verts    []Vertex
	faces    [][3]int
	live     []bool
	dead     []bool
	stamps   []int
	quadrics []*mat.SymDense
	incident [][]int
	queue    collapseQueue
}

// Simplify collapses the cheapest edges until at most target faces remain or
// no edge is left. The input mesh is not modified. Equal costs are broken by
// the lower vertex indices, which makes the result deterministic.
func (QuadricSimplifier) Simplify(m *Mesh, target int) *Mesh {
	s := weld(m)
	liveFaces := len(s.faces)
	if liveFaces <= target {
		return s.mesh()
	}
	s.buildQuadrics()

	for a := range s.verts {
		for _, b := range s.neighbours(a) {
			if a < b {
				s.queue = append(s.queue, s.edgeCollapse(a, b))
			}
		}
	}
	heap.Init(&s.queue)

	for liveFaces > target && s.queue.Len() > 0 {
		c := heap.Pop(&s.queue).(collapse)
		if s.dead[c.a] || s.dead[c.b] || c.stamp != [2]int{s.stamps[c.a], s.stamps[c.b]} {
			continue
		}
		liveFaces -= s.collapse(c)
	}
	Logger().Debug("simplify: edge collapse finished",
		"faces", liveFaces, "target", target, "vertices", len(s.verts))
	return s.mesh()
}

// weld merges coincident vertices and drops faces which reference the same
// vertex twice.
func weld(m *Mesh) *simplifyState {
	s := &simplifyState{}
	index := make(map[Vertex]int, len(m.Vertices))
	remap := make([]int, len(m.Vertices))
	for i, v := range m.Vertices {
		j, ok := index[v]
		if !ok {
			j = len(s.verts)
			index[v] = j
			s.verts = append(s.verts, v)
		}
		remap[i] = j
	}
	s.incident = make([][]int, len(s.verts))
	for _, f := range m.Faces {
		f = [3]int{remap[f[0]], remap[f[1]], remap[f[2]]}
		if f[0] == f[1] || f[1] == f[2] || f[2] == f[0] {
			continue
		}
		for _, v := range f {
			s.incident[v] = append(s.incident[v], len(s.faces))
		}
		s.faces = append(s.faces, f)
	}
	s.live = make([]bool, len(s.faces))
	for i := range s.live {
		s.live[i] = true
	}
	s.dead = make([]bool, len(s.verts))
	s.stamps = make([]int, len(s.verts))
	return s
}

func (s *simplifyState) buildQuadrics() {
	s.quadrics = make([]*mat.SymDense, len(s.verts))
	for i := range s.quadrics {
		s.quadrics[i] = mat.NewSymDense(4, nil)
	}
	edgeFaces := make(map[edge][]int)
	var edges []edge
	for fi, f := range s.faces {
		p0, p1, p2 := s.verts[f[0]], s.verts[f[1]], s.verts[f[2]]
		n, ok := p1.sub(p0).cross(p2.sub(p0)).normalize()
		if ok {
			q := planeQuadric(n, p0, 1)
			for _, v := range f {
				s.quadrics[v].AddSym(s.quadrics[v], q)
			}
		}
		for _, e := range (triangle{nodes: f}).edges() {
			if _, seen := edgeFaces[e]; !seen {
				edges = append(edges, e)
			}
			edgeFaces[e] = append(edgeFaces[e], fi)
		}
	}

	// Border edges get a plane perpendicular to their face.
	for _, e := range edges {
		fs := edgeFaces[e]
		if len(fs) != 1 {
			continue
		}
		f := s.faces[fs[0]]
		p0, p1, p2 := s.verts[f[0]], s.verts[f[1]], s.verts[f[2]]
		fn, ok := p1.sub(p0).cross(p2.sub(p0)).normalize()
		if !ok {
			continue
		}
		a, b := s.verts[e[0]], s.verts[e[1]]
		n, ok := b.sub(a).cross(fn).normalize()
		if !ok {
			continue
		}
		q := planeQuadric(n, a, boundaryWeight)
		s.quadrics[e[0]].AddSym(s.quadrics[e[0]], q)
		s.quadrics[e[1]].AddSym(s.quadrics[e[1]], q)
	}
}

// neighbours returns the vertices sharing a live face with v, in ascending
// order.
func (s *simplifyState) neighbours(v int) []int {
	seen := make(map[int]bool)
	var out []int
	for _, fi := range s.incident[v] {
		if !s.live[fi] {
			continue
		}
		for _, u := range s.faces[fi] {
			if u != v && !seen[u] {
				seen[u] = true
				out = append(out, u)
			}
		}
	}
	sort.Ints(out)
	return out
}

// edgeCollapse prices the collapse of edge (a, b) into its optimal vertex.
func (s *simplifyState) edgeCollapse(a, b int) collapse {
	if a > b {
		a, b = b, a
	}
	q := mat.NewSymDense(4, nil)
	q.AddSym(s.quadrics[a], s.quadrics[b])
	target, cost := optimalVertex(q, s.verts[a], s.verts[b])
	return collapse{
		cost:   cost,
		a:      a,
		b:      b,
		stamp:  [2]int{s.stamps[a], s.stamps[b]},
		target: target,
	}
}

// optimalVertex minimizes vᵀQv. When the quadric cannot be inverted the best
// of the two endpoints and their midpoint is used.
func optimalVertex(q *mat.SymDense, v1, v2 Vertex) (Vertex, float64) {
	a := mat.NewDense(4, 4, nil)
	for i := 0; i < 3; i++ {
		for j := 0; j < 4; j++ {
			a.Set(i, j, q.At(i, j))
		}
	}
	a.Set(3, 3, 1)

	var x mat.VecDense
	if err := x.SolveVec(a, mat.NewVecDense(4, []float64{0, 0, 0, 1})); err == nil {
		v := Vertex{x.AtVec(0), x.AtVec(1), x.AtVec(2)}
		return v, quadricError(q, v)
	}

	best, cost := v1, quadricError(q, v1)
	for _, v := range []Vertex{v2, v1.add(v2).scale(0.5)} {
		if c := quadricError(q, v); c < cost {
			best, cost = v, c
		}
	}
	return best, cost
}

func quadricError(q *mat.SymDense, v Vertex) float64 {
	p := v.vec()
	return math.Max(mat.Inner(p, q, p), 0)
}

// collapse merges vertex b into a and returns the number of faces removed.
func (s *simplifyState) collapse(c collapse) int {
	a, b := c.a, c.b
	s.verts[a] = c.target
	s.quadrics[a].AddSym(s.quadrics[a], s.quadrics[b])
	s.dead[b] = true
	s.stamps[a]++

	var removed int
	for _, fi := range s.incident[b] {
		if !s.live[fi] {
			continue
		}
		f := &s.faces[fi]
		shared := false
		for k := range f {
			if f[k] == a {
				shared = true
			}
			if f[k] == b {
				f[k] = a
			}
		}
		if shared {
			s.live[fi] = false
			removed++
			continue
		}
		s.incident[a] = append(s.incident[a], fi)
	}
	s.incident[b] = nil

	for _, u := range s.neighbours(a) {
		heap.Push(&s.queue, s.edgeCollapse(a, u))
	}
	return removed
}

// mesh compacts the live part of the working mesh.
func (s *simplifyState) mesh() *Mesh {
	out := &Mesh{}
	remap := make([]int, len(s.verts))
	for i := range remap {
		remap[i] = -1
	}
	for fi, f := range s.faces {
		if !s.live[fi] {
			continue
		}
		var nf [3]int
		for k, v := range f {
			if remap[v] < 0 {
				remap[v] = len(out.Vertices)
				out.Vertices = append(out.Vertices, s.verts[v])
			}
			nf[k] = remap[v]
		}
		out.Faces = append(out.Faces, nf)
	}
	return out
}
