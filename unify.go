package trimesh

import (
	"image"
	"math"
)

// pointsPerTile is the expected population of a PointIndex tile.
const pointsPerTile = 2

// Unifier snaps sampled points onto nearby traced curve pixels.
//
// At construction every pixel within Chebyshev distance eps of a sampled
// point records that point as reachable. The reach lists are stored in
// compressed form: the points reachable from pixel i are
// reach[start[i]:start[i+1]], in insertion order. The lists are not updated
// when points move; a Unifier serves a single point set.
type Unifier struct {
	width, height int
	eps           int
	points        []Point
	start         []int32
	reach         []int32
}

// NewUnifier builds the curve proximity index of points. Duplicate points are
// merged, keeping the first occurrence.
func NewUnifier(width, height int, points []Point, eps int) (*Unifier, error) {
	if eps < 0 {
		return nil, invalidf("unification radius must not be negative, got %d", eps)
	}
	if width < 0 || height < 0 {
		return nil, invalidf("unifier area must not be negative, got %dx%d", width, height)
	}
	u := &Unifier{
		width:  width,
		height: height,
		eps:    eps,
		start:  make([]int32, width*height+1),
	}
	seen := make(map[Point]struct{}, len(points))
	for _, p := range points {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		u.points = append(u.points, p)
	}

	// First pass counts the reach of every pixel, second pass fills it.
	u.neighbourhoods(func(pixel, _ int) {
		u.start[pixel+1]++
	})
	for i := 1; i < len(u.start); i++ {
		u.start[i] += u.start[i-1]
	}
	u.reach = make([]int32, u.start[len(u.start)-1])
	next := make([]int32, width*height)
	copy(next, u.start)
	u.neighbourhoods(func(pixel, pt int) {
		u.reach[next[pixel]] = int32(pt)
		next[pixel]++
	})

	Logger().Debug("unifier: proximity index built",
		"points", len(u.points), "eps", eps, "entries", len(u.reach))
	return u, nil
}

// neighbourhoods calls fn for every valid pixel of every point's
// (2eps+1)×(2eps+1) neighbourhood, points in insertion order.
func (u *Unifier) neighbourhoods(fn func(pixel, pt int)) {
	for i, p := range u.points {
		cx, cy := int(math.Round(p.X)), int(math.Round(p.Y))
		for y := Max(cy-u.eps, 0); y <= Min(cy+u.eps, u.height-1); y++ {
			for x := Max(cx-u.eps, 0); x <= Min(cx+u.eps, u.width-1); x++ {
				fn(y*u.width+x, i)
			}
		}
	}
}

// Reachable returns the points within Chebyshev distance eps of pixel (x, y).
func (u *Unifier) Reachable(x, y int) []Point {
	if x < 0 || y < 0 || x >= u.width || y >= u.height {
		return nil
	}
	i := y*u.width + x
	pts := make([]Point, 0, u.start[i+1]-u.start[i])
	for _, pt := range u.reach[u.start[i]:u.start[i+1]] {
		pts = append(pts, u.points[pt])
	}
	return pts
}

// Unify moves every point to the closest curve pixel reachable from it.
// Curves are scanned band by band and pixel by pixel in row-major order;
// on equal distances the first curve pixel found wins. Points without a
// reachable curve pixel keep their coordinate.
//
// The returned slice holds the moved and untouched points. Its order is the
// row-major tile order of a PointIndex and should not be relied upon.
func (u *Unifier) Unify(curves []*image.Gray) ([]Point, error) {
	for i, c := range curves {
		if b := c.Bounds(); b.Dx() != u.width || b.Dy() != u.height {
			return nil, invalidf("curve band %d is %dx%d, want %dx%d", i, b.Dx(), b.Dy(), u.width, u.height)
		}
	}
	best := make([]float64, len(u.points))
	for i := range best {
		best[i] = math.Inf(1)
	}
	target := make([]image.Point, len(u.points))

	var curvePixels int
	for _, band := range curves {
		edges := DetectEdges(band, 0)
		curvePixels += len(edges)
		for _, e := range edges {
			i := e.Y*u.width + e.X
			for _, pt := range u.reach[u.start[i]:u.start[i+1]] {
				p := u.points[pt]
				if d := math.Hypot(p.X-float64(e.X), p.Y-float64(e.Y)); d < best[pt] {
					best[pt] = d
					target[pt] = e
				}
			}
		}
	}

	idx, err := NewPointIndex(u.width, u.height, TileSizeFor(u.width, u.height, len(u.points), pointsPerTile), u.points)
	if err != nil {
		return nil, err
	}
	// Sources are removed before any target is inserted, so that a point
	// moving onto the old place of another one never drops it.
	var moves []Point
	for i, p := range u.points {
		if math.IsInf(best[i], 1) {
			continue
		}
		to := Point{X: float64(target[i].X), Y: float64(target[i].Y)}
		if to == p {
			continue
		}
		idx.Remove(p)
		moves = append(moves, to)
	}
	for _, to := range moves {
		idx.Insert(to)
	}

	stats := idx.Stats()
	Logger().Debug("unifier: points unified",
		"bands", len(curves), "curvePixels", curvePixels, "moved", len(moves), "points", idx.Len(),
		"tiles", stats.TilesX*stats.TilesY, "maxTilePopulation", stats.MaxPopulation)
	return idx.Points(), nil
}
