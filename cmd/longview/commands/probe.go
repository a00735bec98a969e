package commands

import (
	"flag"
	"fmt"
	"os"

	"github.com/agiangrant/longview/retained"
	"github.com/agiangrant/longview/source"
)

// Probe implements the 'longview probe' command
func Probe(args []string) error {
	fs := flag.NewFlagSet("probe", flag.ExitOnError)
	width := fs.Int("width", 1080, "Viewport width in pixels")
	height := fs.Int("height", 1920, "Viewport height in pixels")
	fs.Parse(args)

	if fs.NArg() != 1 {
		return fmt.Errorf("expected one image path, got %d arguments", fs.NArg())
	}
	f, err := os.Open(fs.Arg(0))
	if err != nil {
		return err
	}
	src, err := source.Open(f)
	if err != nil {
		return err
	}

	b := src.Bounds()
	g, err := retained.ResolveGeometry(retained.ImageBounds{Width: b.X, Height: b.Y}, retained.ViewportSize{Width: *width, Height: *height})
	if err != nil {
		return err
	}

	fmt.Printf("%s\n", fs.Arg(0))
	fmt.Printf("  format:   %s\n", src.Format())
	fmt.Printf("  size:     %dx%d\n", b.X, b.Y)
	fmt.Printf("  viewport: %dx%d\n", *width, *height)
	fmt.Printf("  scale:    %.4f\n", g.Scale)
	fmt.Printf("  window:   %d rows\n", g.WindowHeight)
	fmt.Printf("  screens:  %.1f\n", float64(b.Y)/float64(g.WindowHeight))
	fmt.Printf("  buffer:   %d KiB per region\n", b.X*g.WindowHeight*4/1024)
	return nil
}
