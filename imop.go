package trimesh

import (
	"image"
	"math"

	"github.com/disintegration/gift"
	"golang.org/x/exp/constraints"
)

// Grayscale converts the image to a single channel luminance image.
func Grayscale(src *image.NRGBA) *image.Gray {
	dx, dy := src.Bounds().Dx(), src.Bounds().Dy()
	dst := image.NewGray(image.Rect(0, 0, dx, dy))
	for y := 0; y < dy; y++ {
		si := src.PixOffset(src.Bounds().Min.X, src.Bounds().Min.Y+y)
		di := dst.PixOffset(0, y)
		for x := 0; x < dx; x++ {
			r, g, b := src.Pix[si], src.Pix[si+1], src.Pix[si+2]
			dst.Pix[di] = uint8(luminance(float64(r), float64(g), float64(b)) + 0.5)
			si += 4
			di++
		}
	}
	return dst
}

// luminance returns the Rec. 709 relative luminance of an RGB triple.
func luminance(r, g, b float64) float64 {
	return 0.2126*r + 0.7152*g + 0.0722*b
}

// ImgToNRGBA converts any image type to *image.NRGBA with min-point at (0, 0).
// The channel order of the result is always R, G, B, A. An NRGBA image
// already anchored at the origin is returned as is.
func ImgToNRGBA(img image.Image) *image.NRGBA {
	if src, ok := img.(*image.NRGBA); ok && src.Bounds().Min == (image.Point{}) {
		return src
	}
	// An empty filter list makes gift a plain converting copy.
	g := gift.New()
	dst := image.NewNRGBA(g.Bounds(img.Bounds()))
	g.Draw(dst, img)
	return dst
}

// convolve correlates every channel of src with a square matrix and returns
// the unclamped result. Pixels outside the grid replicate the nearest border
// pixel.
func convolve(src *Field, matrix []float64) *Field {
	var (
		width  = src.Width
		height = src.Height
		size   = int(math.Sqrt(float64(len(matrix))))
		dim    = size / 2
		dst    = NewField(width, height, src.Channels)
	)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			di := dst.offset(x, y)

			for row := -dim; row <= dim; row++ {
				sy := Clamp(y+row, 0, height-1)
				kstep := (row + dim) * size

				for col := -dim; col <= dim; col++ {
					v := matrix[(col+dim)+kstep]
					if v == 0 {
						continue
					}
					sx := Clamp(x+col, 0, width-1)
					si := src.offset(sx, sy)
					for c := 0; c < src.Channels; c++ {
						dst.Pix[di+c] += src.Pix[si+c] * v
					}
				}
			}
		}
	}
	return dst
}

// Min returns the smallest value between the given numbers.
func Min[T constraints.Ordered](values ...T) T {
	var acc T = values[0]

	for _, v := range values {
		if v < acc {
			acc = v
		}
	}
	return acc
}

// Max returns the biggest value between the given numbers.
func Max[T constraints.Ordered](values ...T) T {
	var acc T = values[0]

	for _, v := range values {
		if v > acc {
			acc = v
		}
	}
	return acc
}

// Clamp restricts v to the closed range [lo, hi].
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
