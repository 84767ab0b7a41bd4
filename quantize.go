package trimesh

import (
	"image"
	"image/color"
	"math/rand"

	colorful "github.com/lucasb-eyer/go-colorful"
)

const (
	kmeansIterations = 20
	// kmeansEpsilon stops the clustering once no center moves further,
	// measured in RGB units of [0, 1].
	kmeansEpsilon = 1.0 / 255
)

// Quantizer splits an image into single color bands with k-means clustering
// over RGB distance.
type Quantizer struct {
	K    int
	Seed int64
	// Stacked bands hold every pixel whose cluster index is at least the
	// band index instead of only the pixels of that cluster.
	Stacked bool
}

// QuantizeBands is a shorthand for a non stacked Quantizer.
func QuantizeBands(img *image.NRGBA, k int, seed int64) ([]*image.Gray, []color.NRGBA, error) {
	q := Quantizer{K: k, Seed: seed}
	return q.Bands(img)
}

// Bands clusters the pixels of img and returns one band per cluster with the
// cluster's mean color. A band is black where the pixel belongs to it and
// white elsewhere, which is what the curve tracer expects.
func (q Quantizer) Bands(img *image.NRGBA) ([]*image.Gray, []color.NRGBA, error) {
	if q.K <= 0 {
		return nil, nil, invalidf("number of color bands must be positive, got %d", q.K)
	}
	img = ImgToNRGBA(img)
	width, height := img.Bounds().Dx(), img.Bounds().Dy()

	pixels := make([]colorful.Color, 0, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := img.PixOffset(x, y)
			pixels = append(pixels, colorful.Color{
				R: float64(img.Pix[i]) / 255,
				G: float64(img.Pix[i+1]) / 255,
				B: float64(img.Pix[i+2]) / 255,
			})
		}
	}

	labels, centers := kmeans(pixels, q.K, q.Seed)

	bands := make([]*image.Gray, q.K)
	palette := make([]color.NRGBA, q.K)
	for b := range bands {
		band := image.NewGray(image.Rect(0, 0, width, height))
		for i, l := range labels {
			if l == b || (q.Stacked && l >= b) {
				band.Pix[i] = 0
			} else {
				band.Pix[i] = 0xff
			}
		}
		bands[b] = band
		r, g, bl := centers[b].Clamped().RGB255()
		palette[b] = color.NRGBA{R: r, G: g, B: bl, A: 0xff}
	}
	Logger().Debug("quantize: color bands built", "k", q.K, "pixels", len(pixels))
	return bands, palette, nil
}

// kmeans clusters pixels around k centers seeded with distinct random
// pixels. Ties go to the lowest center index and empty clusters keep their
// previous center.
func kmeans(pixels []colorful.Color, k int, seed int64) ([]int, []colorful.Color) {
	rnd := rand.New(rand.NewSource(seed))
	centers := make([]colorful.Color, k)
	labels := make([]int, len(pixels))
	if len(pixels) == 0 {
		return labels, centers
	}
	perm := rnd.Perm(len(pixels))
	for c := range centers {
		centers[c] = pixels[perm[c%len(perm)]]
	}

	for it := 0; it < kmeansIterations; it++ {
		for i, p := range pixels {
			best, dist := 0, p.DistanceRgb(centers[0])
			for c := 1; c < k; c++ {
				if d := p.DistanceRgb(centers[c]); d < dist {
					best, dist = c, d
				}
			}
			labels[i] = best
		}

		sums := make([]colorful.Color, k)
		counts := make([]int, k)
		for i, p := range pixels {
			l := labels[i]
			sums[l].R += p.R
			sums[l].G += p.G
			sums[l].B += p.B
			counts[l]++
		}
		var shift float64
		for c := range centers {
			if counts[c] == 0 {
				continue
			}
			n := float64(counts[c])
			next := colorful.Color{R: sums[c].R / n, G: sums[c].G / n, B: sums[c].B / n}
			shift = Max(shift, next.DistanceRgb(centers[c]))
			centers[c] = next
		}
		if shift < kmeansEpsilon {
			break
		}
	}
	return labels, centers
}
