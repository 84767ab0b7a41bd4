package trimesh

import (
	"image"
	"math"
)

// improvedSobel holds the four 45° rotated gradient kernels: horizontal,
// vertical and the two diagonals.
var improvedSobel = [4][]float64{
	{
		-1, -2, -1,
		0, 0, 0,
		1, 2, 1,
	},
	{
		-1, 0, 1,
		-2, 0, 2,
		-1, 0, 1,
	},
	{
		2, 1, 0,
		1, 0, -1,
		0, -1, -2,
	},
	{
		0, 1, 2,
		-1, 0, 1,
		-2, -1, 0,
	},
}

// BuildImportance computes the per-channel saliency field of img.
//
// Each channel is correlated with the four directional kernels, the absolute
// responses are reduced with a pixelwise maximum and the result is remapped
// as 255 * (v / max)^(1/gamma). Smaller gamma values push low saliency
// regions towards zero. A uniform image yields an all-zero field.
func BuildImportance(img *image.NRGBA, gamma float64) (*Field, error) {
	if !(gamma > 0) {
		return nil, invalidf("gamma must be positive, got %v", gamma)
	}
	src := FieldFromImage(img)
	dst := NewField(src.Width, src.Height, src.Channels)

	for _, kernel := range improvedSobel {
		res := convolve(src, kernel)
		for i, v := range res.Pix {
			if v = math.Abs(v); v > dst.Pix[i] {
				dst.Pix[i] = v
			}
		}
	}

	peak := dst.Max()
	if peak == 0 {
		Logger().Debug("importance: uniform image, returning zero field",
			"width", dst.Width, "height", dst.Height)
		return dst, nil
	}

	power := 1 / gamma
	for i, v := range dst.Pix {
		dst.Pix[i] = 255 * math.Pow(v/peak, power)
	}
	Logger().Debug("importance: field built", "width", dst.Width, "height", dst.Height, "peak", peak)
	return dst, nil
}
