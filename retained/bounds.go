package retained

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrNoImage reports an operation that needs an attached image.
	ErrNoImage = errors.New("retained: no image attached")

	// ErrImageAttached is returned when a second image is attached.
	ErrImageAttached = errors.New("retained: image already attached")

	// ErrNotMeasured reports a draw before the layout pass.
	ErrNotMeasured = errors.New("retained: view not measured")

	// ErrRelayout is returned when Measure is called again with a different size.
	ErrRelayout = errors.New("retained: viewport size cannot change after layout")

	// ErrInvalidViewport reports a non-positive viewport size.
	ErrInvalidViewport = errors.New("retained: invalid viewport size")
)

// ImageBounds is the intrinsic size of the source image in pixels.
type ImageBounds struct {
	Width, Height int
}

// Known reports whether the bounds were probed.
func (b ImageBounds) Known() bool {
	return b.Width > 0 && b.Height > 0
}

// ViewportSize is the drawing area allotted by the layout pass.
type ViewportSize struct {
	Width, Height int
}

// Geometry is the fixed mapping between the image and the viewport.
type Geometry struct {
	// Scale maps source pixels to viewport pixels on both axes.
	Scale float64

	// WindowHeight is the number of source rows shown in one viewport.
	WindowHeight int
}

// ResolveGeometry fits the image width to the viewport width and computes
// how many source rows fill the viewport height at that scale.
//
// The window never exceeds the image height; a short image gets a window
// covering all of it.
func ResolveGeometry(img ImageBounds, vp ViewportSize) (Geometry, error) {
	if !img.Known() {
		return Geometry{}, ErrNoImage
	}
	if vp.Width <= 0 || vp.Height <= 0 {
		return Geometry{}, fmt.Errorf("%w: %dx%d", ErrInvalidViewport, vp.Width, vp.Height)
	}

	scale := float64(vp.Width) / float64(img.Width)
	window := int(math.Round(float64(vp.Height) / scale))
	if window < 1 {
		window = 1
	}
	if window > img.Height {
		window = img.Height
	}

	return Geometry{Scale: scale, WindowHeight: window}, nil
}
