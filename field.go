package trimesh

import (
	"image"

	"gonum.org/v1/gonum/floats"
)

// Field is a Width×Height grid of real-valued samples stored row-major with
// Channels values per pixel. Values are not clamped to [0, 255].
type Field struct {
	Width, Height int
	Channels      int
	Pix           []float64
}

// NewField allocates a zero valued field.
func NewField(width, height, channels int) *Field {
	return &Field{
		Width:    width,
		Height:   height,
		Channels: channels,
		Pix:      make([]float64, width*height*channels),
	}
}

// FieldFromImage copies the R, G and B channels of img into a new field.
func FieldFromImage(img *image.NRGBA) *Field {
	b := img.Bounds()
	f := NewField(b.Dx(), b.Dy(), 3)
	for y := 0; y < f.Height; y++ {
		si := img.PixOffset(b.Min.X, b.Min.Y+y)
		di := f.offset(0, y)
		for x := 0; x < f.Width; x++ {
			f.Pix[di+0] = float64(img.Pix[si+0])
			f.Pix[di+1] = float64(img.Pix[si+1])
			f.Pix[di+2] = float64(img.Pix[si+2])
			si += 4
			di += 3
		}
	}
	return f
}

// FieldFromGray copies a gray image into a single channel field.
func FieldFromGray(img *image.Gray) *Field {
	b := img.Bounds()
	f := NewField(b.Dx(), b.Dy(), 1)
	for y := 0; y < f.Height; y++ {
		si := img.PixOffset(b.Min.X, b.Min.Y+y)
		di := f.offset(0, y)
		for x := 0; x < f.Width; x++ {
			f.Pix[di+x] = float64(img.Pix[si+x])
		}
	}
	return f
}

func (f *Field) offset(x, y int) int {
	return (y*f.Width + x) * f.Channels
}

// At returns channel c of the pixel at (x, y).
func (f *Field) At(x, y, c int) float64 {
	return f.Pix[f.offset(x, y)+c]
}

// Set stores v into channel c of the pixel at (x, y).
func (f *Field) Set(x, y, c int, v float64) {
	f.Pix[f.offset(x, y)+c] = v
}

// Clone returns a deep copy which the caller owns exclusively.
func (f *Field) Clone() *Field {
	dst := &Field{
		Width:    f.Width,
		Height:   f.Height,
		Channels: f.Channels,
		Pix:      make([]float64, len(f.Pix)),
	}
	copy(dst.Pix, f.Pix)
	return dst
}

// Max returns the largest sample of the field, or 0 for an empty field.
func (f *Field) Max() float64 {
	if len(f.Pix) == 0 {
		return 0
	}
	return floats.Max(f.Pix)
}

// Image converts the field to an opaque NRGBA image, clamping every sample
// to [0, 255]. Single channel fields are rendered as gray.
func (f *Field) Image() *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, f.Width, f.Height))
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			si := f.offset(x, y)
			di := dst.PixOffset(x, y)
			for c := 0; c < 3; c++ {
				v := f.Pix[si+Min(c, f.Channels-1)]
				dst.Pix[di+c] = uint8(Clamp(v, 0, 255) + 0.5)
			}
			dst.Pix[di+3] = 0xff
		}
	}
	return dst
}
