package trimesh

import (
	"math/rand"
	"sort"
)

// defaultAugmentThreshold is the importance luminance above which a pixel
// counts as a strong gradient.
const defaultAugmentThreshold = 32

// StrongGradientPoints picks a random fraction of the pixels whose importance
// luminance exceeds threshold. The selection is driven by seed only and the
// points are returned in row-major order.
func StrongGradientPoints(field *Field, threshold, fraction float64, seed int64) ([]Point, error) {
	if !(fraction >= 0 && fraction <= 1) {
		return nil, invalidf("augment fraction must be within [0, 1], got %v", fraction)
	}
	var strong []Point
	for y := 0; y < field.Height; y++ {
		for x := 0; x < field.Width; x++ {
			var l float64
			if field.Channels >= 3 {
				l = luminance(field.At(x, y, 0), field.At(x, y, 1), field.At(x, y, 2))
			} else {
				l = field.At(x, y, 0)
			}
			if l > threshold {
				strong = append(strong, Point{X: float64(x), Y: float64(y)})
			}
		}
	}

	n := int(float64(len(strong)) * fraction)
	rnd := rand.New(rand.NewSource(seed))
	picked := rnd.Perm(len(strong))[:n]
	sort.Ints(picked)

	points := make([]Point, n)
	for i, j := range picked {
		points[i] = strong[j]
	}
	Logger().Debug("augment: strong gradient points picked", "candidates", len(strong), "picked", n)
	return points, nil
}
