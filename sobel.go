package trimesh

import (
	"image"
	"math"
)

var (
	kernelX = []float64{
		-1, 0, 1,
		-2, 0, 2,
		-1, 0, 1,
	}

	kernelY = []float64{
		-1, -2, -1,
		0, 0, 0,
		1, 2, 1,
	}
)

// SobelFilter computes the gradient magnitude of a gray image. Magnitudes
// which do not exceed the threshold are set to zero, the rest are rounded up
// and clamped to the 8 bit range, so every kept pixel is non-zero.
func SobelFilter(src *image.Gray, threshold float64) *image.Gray {
	mag := sobelMagnitude(FieldFromGray(src))
	dst := image.NewGray(image.Rect(0, 0, mag.Width, mag.Height))
	for i, m := range mag.Pix {
		if m > threshold {
			dst.Pix[i] = uint8(Min(math.Ceil(m), 255))
		}
	}
	return dst
}

// DetectEdges returns the pixels of a traced band whose gradient magnitude
// exceeds the threshold, in row-major order.
func DetectEdges(band *image.Gray, threshold float64) []image.Point {
	mag := SobelFilter(band, threshold)

	var edges []image.Point
	for y := 0; y < mag.Rect.Dy(); y++ {
		for x := 0; x < mag.Rect.Dx(); x++ {
			if mag.Pix[mag.PixOffset(x, y)] != 0 {
				edges = append(edges, image.Pt(x, y))
			}
		}
	}
	return edges
}

func sobelMagnitude(src *Field) *Field {
	gx := convolve(src, kernelX)
	gy := convolve(src, kernelY)
	for i := range gx.Pix {
		gx.Pix[i] = math.Hypot(gx.Pix[i], gy.Pix[i])
	}
	return gx
}
