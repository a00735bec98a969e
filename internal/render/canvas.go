// Package render provides paint targets for the region scroller.
//
// Both canvases take an affine matrix mapping source pixels to canvas
// pixels, in the x/image/math/f64 layout:
//
//	x' = m[0]*x + m[1]*y + m[2]
//	y' = m[3]*x + m[4]*y + m[5]
package render

import (
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// InterpolatorByName returns the x/image interpolator for a config name.
// Returns nil if the name is unknown.
func InterpolatorByName(name string) draw.Interpolator {
	switch name {
	case "nearest":
		return draw.NearestNeighbor
	case "approx-bilinear", "":
		return draw.ApproxBiLinear
	case "bilinear":
		return draw.BiLinear
	case "catmullrom", "bicubic":
		return draw.CatmullRom
	default:
		return nil
	}
}

// RGBA paints into an in-memory *image.RGBA.
type RGBA struct {
	dst    *image.RGBA
	interp draw.Interpolator
	bg     color.Color
}

// NewRGBA creates a width x height canvas. interp may be nil for the
// default approximate bilinear filter.
func NewRGBA(width, height int, interp draw.Interpolator) *RGBA {
	if interp == nil {
		interp = draw.ApproxBiLinear
	}
	return &RGBA{
		dst:    image.NewRGBA(image.Rect(0, 0, width, height)),
		interp: interp,
		bg:     color.Black,
	}
}

// DrawImage clears the canvas and paints img through m.
func (c *RGBA) DrawImage(img image.Image, m f64.Aff3) error {
	if img == nil {
		return fmt.Errorf("render: nil image")
	}
	draw.Draw(c.dst, c.dst.Bounds(), image.NewUniform(c.bg), image.Point{}, draw.Src)
	c.interp.Transform(c.dst, m, img, img.Bounds(), draw.Src, nil)
	return nil
}

// Image returns the canvas contents. The returned image is reused by the
// next DrawImage.
func (c *RGBA) Image() *image.RGBA {
	return c.dst
}

// Snapshot returns a copy of the canvas contents.
func (c *RGBA) Snapshot() *image.RGBA {
	out := image.NewRGBA(c.dst.Bounds())
	copy(out.Pix, c.dst.Pix)
	return out
}
