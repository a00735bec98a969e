package render

import (
	"fmt"
	"image"

	"github.com/gogpu/gg"
	"golang.org/x/image/math/f64"
)

// GG paints through a gogpu/gg drawing context.
type GG struct {
	dc     *gg.Context
	interp gg.InterpolationMode
}

// NewGG creates a width x height gg-backed canvas.
func NewGG(width, height int, interp string) *GG {
	return &GG{
		dc:     gg.NewContext(width, height),
		interp: ggInterpolation(interp),
	}
}

func ggInterpolation(name string) gg.InterpolationMode {
	switch name {
	case "nearest":
		return gg.InterpNearest
	case "catmullrom", "bicubic":
		return gg.InterpBicubic
	default:
		return gg.InterpBilinear
	}
}

// Matrix converts an x/image affine matrix to the gg layout.
func Matrix(m f64.Aff3) gg.Matrix {
	return gg.Matrix{
		A: m[0], B: m[1], C: m[2],
		D: m[3], E: m[4], F: m[5],
	}
}

// DrawImage clears the context and paints img through m.
func (c *GG) DrawImage(img image.Image, m f64.Aff3) error {
	if img == nil {
		return fmt.Errorf("render: nil image")
	}
	c.dc.Identity()
	c.dc.ClearWithColor(gg.Black)
	c.dc.Push()
	c.dc.SetTransform(Matrix(m))
	c.dc.DrawImageEx(gg.ImageBufFromImage(img), gg.DrawImageOptions{
		Interpolation: c.interp,
		Opacity:       1,
		BlendMode:     gg.BlendNormal,
	})
	c.dc.Pop()
	return nil
}

// Image returns the rendered frame.
func (c *GG) Image() image.Image {
	return c.dc.Image()
}

// Close releases the context.
func (c *GG) Close() error {
	return c.dc.Close()
}
