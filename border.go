package trimesh

// BorderPoints returns n evenly spaced points along each edge of a
// width×height image, corners included. They anchor the triangulation to the
// image rectangle.
func BorderPoints(width, height, n int) []Point {
	if n <= 0 || width <= 0 || height <= 0 {
		return nil
	}
	right, bottom := float64(width-1), float64(height-1)
	points := make([]Point, 0, 4*n)
	for _, x := range linspace(0, right, n) {
		points = append(points, Point{X: x, Y: 0}, Point{X: x, Y: bottom})
	}
	for _, y := range linspace(0, bottom, n) {
		points = append(points, Point{X: 0, Y: y}, Point{X: right, Y: y})
	}
	return points
}

// linspace returns n evenly spaced values over [start, stop].
func linspace(start, stop float64, n int) []float64 {
	if n == 1 {
		return []float64{start}
	}
	vals := make([]float64, n)
	step := (stop - start) / float64(n-1)
	for i := range vals {
		vals[i] = start + float64(i)*step
	}
	vals[n-1] = stop
	return vals
}
