package trimesh

import (
	"image"
	"image/color"
	"math"
)

func solidImage(width, height int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

// gradientImage returns a diagonal gradient with a dark disc in its center.
func gradientImage(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	cx, cy, r := float64(width)/2, float64(height)/2, float64(width)/4
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := uint8(255 * (x + y) / (width + height))
			c := color.NRGBA{R: v, G: 255 - v, B: 128, A: 255}
			if math.Hypot(float64(x)-cx, float64(y)-cy) < r {
				c = color.NRGBA{R: 20, G: 20, B: 60, A: 255}
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

// dotBand returns a white band with black pixels at the given coordinates.
func dotBand(width, height int, dots ...image.Point) *image.Gray {
	band := image.NewGray(image.Rect(0, 0, width, height))
	for i := range band.Pix {
		band.Pix[i] = 0xff
	}
	for _, d := range dots {
		band.SetGray(d.X, d.Y, color.Gray{Y: 0})
	}
	return band
}

var (
	black = color.NRGBA{A: 255}
	white = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	red   = color.NRGBA{R: 255, A: 255}
)
