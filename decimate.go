package trimesh

import (
	"image"
	"math"
)

// Decimate reduces a point set through mesh simplification using the
// default QuadricSimplifier.
func Decimate(img *image.NRGBA, points []Point, shrinkFactor int) ([]Point, error) {
	return DecimateWith(QuadricSimplifier{}, img, points, shrinkFactor)
}

// DecimateWith triangulates points, lifts every triangle vertex to the red
// intensity of its pixel and simplifies the resulting mesh to a third of its
// vertex count divided by shrinkFactor faces. The reduced point set holds
// every pixel hit by a rounded vertex of the simplified mesh, in row-major
// order.
func DecimateWith(s Simplifier, img *image.NRGBA, points []Point, shrinkFactor int) ([]Point, error) {
	if shrinkFactor <= 0 {
		return nil, invalidf("shrink factor must be positive, got %d", shrinkFactor)
	}
	img = ImgToNRGBA(img)
	width, height := img.Bounds().Dx(), img.Bounds().Dy()

	d := NewDelaunay(width, height)
	d.Insert(points...)
	triangles := d.Triangulate()
	if len(triangles) == 0 {
		return nil, nil
	}

	mesh := &Mesh{
		Vertices: make([]Vertex, 0, 3*len(triangles)),
		Faces:    make([][3]int, 0, len(triangles)),
	}
	for _, t := range triangles {
		n := len(mesh.Vertices)
		for _, p := range t.Nodes {
			x := Clamp(int(p.X), 0, width-1)
			y := Clamp(int(p.Y), 0, height-1)
			mesh.Vertices = append(mesh.Vertices, Vertex{
				X: p.X,
				Y: p.Y,
				Z: float64(img.Pix[img.PixOffset(x, y)]),
			})
		}
		mesh.Faces = append(mesh.Faces, [3]int{n, n + 1, n + 2})
	}

	target := len(mesh.Vertices) / shrinkFactor
	simplified := s.Simplify(mesh, target)

	occupied := make([][]bool, height)
	for y := range occupied {
		occupied[y] = make([]bool, width)
	}
	for _, f := range simplified.Faces {
		for _, vi := range f {
			v := simplified.Vertices[vi]
			x := Clamp(int(math.Round(v.X)), 0, width-1)
			y := Clamp(int(math.Round(v.Y)), 0, height-1)
			occupied[y][x] = true
		}
	}

	var reduced []Point
	for y, row := range occupied {
		for x, hit := range row {
			if hit {
				reduced = append(reduced, Point{X: float64(x), Y: float64(y)})
			}
		}
	}
	Logger().Debug("decimate: point set reduced",
		"points", len(points), "triangles", len(triangles),
		"target", target, "faces", len(simplified.Faces), "reduced", len(reduced))
	return reduced, nil
}
