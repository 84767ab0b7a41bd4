package trimesh

import (
	"image"
	"image/color"
	"math"
	"sort"
)

// minInteriorPixels is the pixel count at or below which a triangle is
// treated as a sliver and colored from its vertices.
const minInteriorPixels = 3

// Triangulate builds the Delaunay triangulation of points over the image
// rectangle and resolves the color of every triangle.
func Triangulate(img *image.NRGBA, points []Point) ([]Triangle, error) {
	b := img.Bounds()
	d := NewDelaunay(b.Dx(), b.Dy())
	d.Insert(points...)
	return Colorize(img, d.Triangulate())
}

// Colorize returns a copy of triangles where every color is the rounded mean
// of the pixels covered by the triangle. Triangles covering three pixels or
// fewer take the mean of their vertex colors instead. The colors are opaque
// and in R, G, B order.
//
// Rasterized pixels up to one pixel outside the image are clamped to the
// border. Anything further out is reported as ErrDegenerateGeometry.
func Colorize(img *image.NRGBA, triangles []Triangle) ([]Triangle, error) {
	img = ImgToNRGBA(img)
	width, height := img.Bounds().Dx(), img.Bounds().Dy()
	if len(triangles) > 0 && (width == 0 || height == 0) {
		return nil, degeneratef("cannot colorize triangles over an empty %dx%d image", width, height)
	}

	res := make([]Triangle, len(triangles))
	var slivers int
	for i, t := range triangles {
		var (
			sum     [3]int
			count   int
			outside *image.Point
		)
		scanTriangle(t.Nodes, func(x, y int) {
			if x < -1 || y < -1 || x > width || y > height {
				if outside == nil {
					outside = &image.Point{X: x, Y: y}
				}
				return
			}
			j := img.PixOffset(Clamp(x, 0, width-1), Clamp(y, 0, height-1))
			sum[0] += int(img.Pix[j])
			sum[1] += int(img.Pix[j+1])
			sum[2] += int(img.Pix[j+2])
			count++
		})
		if outside != nil {
			return nil, degeneratef("triangle %v rasterizes pixel %v outside the %dx%d image",
				t.Nodes, *outside, width, height)
		}

		var c [3]float64
		if count <= minInteriorPixels {
			slivers++
			for _, n := range t.Nodes {
				x := Clamp(int(n.X), 0, width-1)
				y := Clamp(int(n.Y), 0, height-1)
				j := img.PixOffset(x, y)
				c[0] += float64(img.Pix[j]) / 3
				c[1] += float64(img.Pix[j+1]) / 3
				c[2] += float64(img.Pix[j+2]) / 3
			}
		} else {
			for ch := range c {
				c[ch] = float64(sum[ch]) / float64(count)
			}
		}
		res[i] = Triangle{
			Nodes: t.Nodes,
			Color: color.NRGBA{
				R: uint8(Clamp(math.RoundToEven(c[0]), 0, 255)),
				G: uint8(Clamp(math.RoundToEven(c[1]), 0, 255)),
				B: uint8(Clamp(math.RoundToEven(c[2]), 0, 255)),
				A: 0xff,
			},
		}
	}
	if slivers > 0 {
		Logger().Warn("colorize: sliver triangles colored from their vertices", "count", slivers)
	}
	return res, nil
}

// scanTriangle visits the integer pixels of a triangle whose vertices are
// truncated to integers. The triangle is split at the middle vertex's row
// into a flat-bottom and a flat-top half and every row is filled between the
// two bounding edges. Rows shared by both halves are visited once.
func scanTriangle(nodes [3]Point, visit func(x, y int)) {
	var v [3]image.Point
	for i, n := range nodes {
		v[i] = image.Pt(int(n.X), int(n.Y))
	}
	sort.SliceStable(v[:], func(i, j int) bool { return v[i].Y < v[j].Y })

	x1, y1 := float64(v[0].X), v[0].Y
	x2, y2 := float64(v[1].X), v[1].Y
	x3, y3 := float64(v[2].X), v[2].Y

	switch {
	case y1 == y3:
		lo, hi := Min(x1, x2, x3), Max(x1, x2, x3)
		scanRow(y1, lo, hi, visit)
	case y2 == y3:
		fillFlatBottom(x1, y1, x2, x3, y3, visit)
	case y1 == y2:
		fillFlatTop(x1, x2, y1, x3, y3, y1, visit)
	default:
		x4 := x1 + float64(y2-y1)/float64(y3-y1)*(x3-x1)
		fillFlatBottom(x1, y1, x2, x4, y2, visit)
		fillFlatTop(x2, x4, y2, x3, y3, y2+1, visit)
	}
}

// fillFlatBottom fills the rows y1..y2 of a triangle with its apex at
// (x1, y1) and a horizontal edge from xa to xb on row y2.
func fillFlatBottom(x1 float64, y1 int, xa, xb float64, y2 int, visit func(x, y int)) {
	dy := float64(y2 - y1)
	slope1 := (xa - x1) / dy
	slope2 := (xb - x1) / dy

	cx1, cx2 := x1, x1
	for y := y1; y <= y2; y++ {
		scanRow(y, cx1, cx2, visit)
		cx1 += slope1
		cx2 += slope2
	}
}

// fillFlatTop fills the rows from..y3 of a triangle with a horizontal edge
// from xa to xb on row y1 and its apex at (x3, y3), walking upwards from the
// apex.
func fillFlatTop(xa, xb float64, y1 int, x3 float64, y3, from int, visit func(x, y int)) {
	dy := float64(y3 - y1)
	slope1 := (x3 - xa) / dy
	slope2 := (x3 - xb) / dy

	cx1, cx2 := x3, x3
	for y := y3; y >= from; y-- {
		scanRow(y, cx1, cx2, visit)
		cx1 -= slope1
		cx2 -= slope2
	}
}

func scanRow(y int, xa, xb float64, visit func(x, y int)) {
	lo := int(math.Floor(math.Min(xa, xb)))
	hi := int(math.Floor(math.Max(xa, xb)))
	for x := lo; x <= hi; x++ {
		visit(x, y)
	}
}
