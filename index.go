package trimesh

import "math"

// PointIndex is a grid of square tiles, each holding the points whose floored
// coordinate falls into it. Every live point is stored in exactly one tile and
// duplicate coordinates collapse into a single entry.
//
// A PointIndex belongs to one pipeline run and is not safe for concurrent use.
type PointIndex struct {
	tileSize   int
	cols, rows int
	count      int
	buckets    [][]Point
}

// IndexStats describes how points are spread over the tiles of an index.
type IndexStats struct {
	Points        int
	TilesX        int
	TilesY        int
	Expected      float64 // mean points per tile
	MaxPopulation int
	// Histogram[n] is the number of tiles holding exactly n points.
	Histogram []int
}

// NewPointIndex creates an index over a width×height area and inserts points
// in order.
func NewPointIndex(width, height, tileSize int, points []Point) (*PointIndex, error) {
	if tileSize <= 0 {
		return nil, invalidf("tile size must be positive, got %d", tileSize)
	}
	if width < 0 || height < 0 {
		return nil, invalidf("index area must not be negative, got %dx%d", width, height)
	}
	idx := &PointIndex{
		tileSize: tileSize,
		cols:     Max((width+tileSize-1)/tileSize, 1),
		rows:     Max((height+tileSize-1)/tileSize, 1),
	}
	idx.buckets = make([][]Point, idx.cols*idx.rows)
	for _, p := range points {
		idx.Insert(p)
	}
	return idx, nil
}

// TileSizeFor returns the tile size giving roughly perTile points per tile
// when n points are spread over a width×height area.
func TileSizeFor(width, height, n int, perTile float64) int {
	if n <= 0 || perTile <= 0 {
		return Max(width, height, 1)
	}
	side := math.Sqrt(perTile * float64(width) * float64(height) / float64(n))
	return Max(int(math.Ceil(side)), 1)
}

// bucket returns the tile number of p. Coordinates outside the area are
// clamped to the border tiles.
func (idx *PointIndex) bucket(p Point) int {
	tx := Clamp(int(math.Floor(p.X))/idx.tileSize, 0, idx.cols-1)
	ty := Clamp(int(math.Floor(p.Y))/idx.tileSize, 0, idx.rows-1)
	return ty*idx.cols + tx
}

// Lookup scans the tile of p and reports whether p is present.
func (idx *PointIndex) Lookup(p Point) (Point, bool) {
	for _, q := range idx.buckets[idx.bucket(p)] {
		if q == p {
			return q, true
		}
	}
	return Point{}, false
}

// Insert adds p unless a point with the same coordinate is already present.
func (idx *PointIndex) Insert(p Point) bool {
	if _, ok := idx.Lookup(p); ok {
		return false
	}
	b := idx.bucket(p)
	idx.buckets[b] = append(idx.buckets[b], p)
	idx.count++
	return true
}

// Remove deletes p, keeping the insertion order of the remaining points of
// its tile. It reports whether p was present.
func (idx *PointIndex) Remove(p Point) bool {
	b := idx.bucket(p)
	bucket := idx.buckets[b]
	for i, q := range bucket {
		if q == p {
			idx.buckets[b] = append(bucket[:i], bucket[i+1:]...)
			idx.count--
			return true
		}
	}
	return false
}

// Update relocates from to to. Relocating a point which is not present is a
// no-op. If to is already present the two points collapse into one.
func (idx *PointIndex) Update(from, to Point) {
	if idx.Remove(from) {
		idx.Insert(to)
	}
}

// Len returns the number of live points.
func (idx *PointIndex) Len() int {
	return idx.count
}

// Points flattens the index in row-major tile order. Points sharing a tile
// keep their insertion order.
func (idx *PointIndex) Points() []Point {
	points := make([]Point, 0, idx.count)
	for _, bucket := range idx.buckets {
		points = append(points, bucket...)
	}
	return points
}

// Stats returns the tile population diagnostics of the index.
func (idx *PointIndex) Stats() IndexStats {
	stats := IndexStats{
		Points: idx.count,
		TilesX: idx.cols,
		TilesY: idx.rows,
	}
	stats.Expected = float64(idx.count) / float64(idx.cols*idx.rows)
	for _, bucket := range idx.buckets {
		stats.MaxPopulation = Max(stats.MaxPopulation, len(bucket))
	}
	stats.Histogram = make([]int, stats.MaxPopulation+1)
	for _, bucket := range idx.buckets {
		stats.Histogram[len(bucket)]++
	}
	return stats
}
