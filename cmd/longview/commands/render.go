package commands

import (
	"flag"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"

	"golang.org/x/image/draw"

	"github.com/agiangrant/longview"
)

// Render implements the 'longview render' command
func Render(args []string) error {
	fs := flag.NewFlagSet("render", flag.ExitOnError)
	vf := addViewFlags(fs)
	top := fs.Int("top", 0, "First source row shown")
	out := fs.String("out", "frame.png", "Output PNG path")
	backend := fs.String("backend", "", "Render backend: rgba or gg (default from config)")
	fs.Parse(args)

	cfg, err := vf.load()
	if err != nil {
		return err
	}
	if *backend != "" {
		cfg.Render.Backend = *backend
	}

	view, err := openImage(fs, cfg)
	if err != nil {
		return err
	}
	defer view.Close()

	var frameErr error
	view.OnError(func(err error) { frameErr = err })

	if err := view.Measure(vf.viewport()); err != nil {
		return err
	}
	if _, err := view.ScrollTo(*top); err != nil {
		return err
	}

	canvas, err := longview.NewCanvasFactory(cfg.Render)(*vf.width, *vf.height)
	if err != nil {
		return err
	}
	if c, ok := canvas.(io.Closer); ok {
		defer c.Close()
	}
	if err := view.Draw(canvas); err != nil {
		return err
	}
	if frameErr != nil {
		return frameErr
	}

	if err := writePNG(*out, longview.FrameImage(canvas)); err != nil {
		return err
	}
	r := view.Region()
	fmt.Printf("  ✓ Rendered rows %d-%d to %s\n", r.Top, r.Bottom, *out)
	return nil
}

// snapshot copies img so the canvas can be reused for the next frame.
func snapshot(img image.Image) *image.RGBA {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Copy(dst, image.Point{}, img, b, draw.Src, nil)
	return dst
}

func writePNG(path string, img image.Image) error {
	if img == nil {
		return fmt.Errorf("no frame to write")
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return f.Close()
}
