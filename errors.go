package trimesh

import "github.com/pkg/errors"

// The error taxonomy of the pipeline. Callers match them with errors.Is;
// call sites wrap them with the offending value.
var (
	// ErrInvalidParameter is returned before any stage runs when a numeric
	// option is out of its accepted range. Values are never silently clamped.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrDegenerateGeometry is returned when a geometric stage has no
	// documented fallback, e.g. a triangle rasterizing outside the image.
	ErrDegenerateGeometry = errors.New("degenerate geometry")
)

func invalidf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrInvalidParameter, format, args...)
}

func degeneratef(format string, args ...interface{}) error {
	return errors.Wrapf(ErrDegenerateGeometry, format, args...)
}
