package trimesh

import "math"

// sampleThreshold is the channel sum at or above which a diffused pixel is
// emitted as a sample point.
const sampleThreshold = 127

// Diffusion weights of the Floyd-Steinberg kernel.
const (
	weightRight      = 7.0 / 16
	weightBelowLeft  = 3.0 / 16
	weightBelow      = 5.0 / 16
	weightBelowRight = 1.0 / 16
)

// Sample converts an importance field into a point set by error diffusion.
// Larger sampling factors quantize to more gray levels and yield denser
// point sets. The field itself is left untouched.
//
// Points are returned in row-major order with X the column and Y the row.
func Sample(field *Field, samplingFactor float64) ([]Point, error) {
	buf, err := Diffuse(field, samplingFactor)
	if err != nil {
		return nil, err
	}

	var points []Point
	for y := 0; y < buf.Height; y++ {
		for x := 0; x < buf.Width; x++ {
			var sum float64
			i := buf.offset(x, y)
			for c := 0; c < buf.Channels; c++ {
				sum += buf.Pix[i+c]
			}
			if sum >= sampleThreshold {
				points = append(points, Point{X: float64(x), Y: float64(y)})
			}
		}
	}
	Logger().Debug("sample: points emitted", "count", len(points), "samplingFactor", samplingFactor)
	return points, nil
}

// Diffuse runs Floyd-Steinberg error diffusion over a private copy of field,
// quantizing every channel to samplingFactor levels. The last row and the
// first and last columns are never quantized; they only receive error.
// Every neighbour is clamped to [0, 255] after accumulation.
func Diffuse(field *Field, samplingFactor float64) (*Field, error) {
	if !(samplingFactor > 0) || math.IsInf(samplingFactor, 0) {
		return nil, invalidf("sampling factor must be positive and finite, got %v", samplingFactor)
	}
	buf := field.Clone()
	step := 255 / samplingFactor

	spread := func(x, y, c int, e float64) {
		i := buf.offset(x, y) + c
		buf.Pix[i] = Clamp(buf.Pix[i]+e, 0, 255)
	}

	for y := 0; y < buf.Height-1; y++ {
		for x := 1; x < buf.Width-1; x++ {
			i := buf.offset(x, y)
			for c := 0; c < buf.Channels; c++ {
				old := buf.Pix[i+c]
				quant := math.RoundToEven(samplingFactor*old/255) * step
				buf.Pix[i+c] = quant
				e := old - quant

				spread(x+1, y, c, e*weightRight)
				spread(x-1, y+1, c, e*weightBelowLeft)
				spread(x, y+1, c, e*weightBelow)
				spread(x+1, y+1, c, e*weightBelowRight)
			}
		}
	}
	return buf, nil
}
