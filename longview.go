// Package longview shows images far taller than any bitmap a device could
// hold by decoding only the band of rows that fits the viewport, and
// scrolls that band with drag and fling gestures.
//
// A typical host attaches an image, hands platform events to a Loop and
// presents the canvas after each frame:
//
//	view, err := longview.Open(f, cfg)
//	if err != nil {
//		return err
//	}
//	defer view.Close()
//	loop := longview.NewLoop(view, cfg)
//	loop.OnFrame(func(f longview.Frame) { present(f.Canvas) })
//	return loop.Run(ctx, events)
package longview

import (
	"fmt"
	"image"
	"io"

	"github.com/agiangrant/longview/internal/render"
	"github.com/agiangrant/longview/retained"
	"github.com/agiangrant/longview/source"
)

type (
	View          = retained.View
	Loop          = retained.Loop
	Frame         = retained.Frame
	Canvas        = retained.Canvas
	CanvasFactory = retained.CanvasFactory
	Region        = retained.Region
	Geometry      = retained.Geometry
	ViewportSize  = retained.ViewportSize
	Stats         = retained.Stats
)

// Precondition errors returned by View and Loop.
var (
	ErrNoImage       = retained.ErrNoImage
	ErrImageAttached = retained.ErrImageAttached
	ErrNotMeasured   = retained.ErrNotMeasured
	ErrRelayout      = retained.ErrRelayout
)

// Open reads an image stream, probes its size and returns a view with the
// image attached. r is closed if it is an io.Closer. Any failure here means
// no image can be shown and is returned to the caller.
func Open(r io.Reader, cfg Config) (*View, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	src, err := source.Open(r)
	if err != nil {
		return nil, fmt.Errorf("longview: attach image: %w", err)
	}
	v := retained.NewView(cfg.ViewConfig())
	if err := v.SetImage(src); err != nil {
		return nil, err
	}
	return v, nil
}

// NewCanvasFactory returns a factory for the configured render backend.
func NewCanvasFactory(rs RenderSettings) CanvasFactory {
	return func(width, height int) (Canvas, error) {
		if width <= 0 || height <= 0 {
			return nil, fmt.Errorf("longview: canvas size %dx%d", width, height)
		}
		switch rs.Backend {
		case "gg":
			return render.NewGG(width, height, rs.Interpolation), nil
		case "rgba", "":
			return render.NewRGBA(width, height, render.InterpolatorByName(rs.Interpolation)), nil
		default:
			return nil, fmt.Errorf("%w: unknown render.backend %q", ErrInvalidConfig, rs.Backend)
		}
	}
}

// NewLoop creates a frame loop for v using the configured backend.
func NewLoop(v *View, cfg Config) *Loop {
	return retained.NewLoop(v, NewCanvasFactory(cfg.Render), cfg.LoopConfig())
}

// FrameImage returns the pixels painted on a canvas created by
// NewCanvasFactory, or nil for other canvases.
func FrameImage(c Canvas) image.Image {
	switch c := c.(type) {
	case *render.RGBA:
		return c.Image()
	case *render.GG:
		return c.Image()
	}
	return nil
}
