package commands

import (
	"context"
	"flag"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"golang.org/x/mobile/event/size"
	"golang.org/x/mobile/event/touch"
	"golang.org/x/sync/errgroup"

	"github.com/agiangrant/longview"
	"github.com/agiangrant/longview/retained"
)

// dragSteps is how many move events the synthetic drag is made of.
const dragSteps = 6

type capturedFrame struct {
	img    *image.RGBA
	region longview.Region
}

// Fling implements the 'longview fling' command
//
// It drags a virtual finger at the given speed, releases it and runs the
// frame loop on a simulated clock until the fling comes to rest, writing
// every painted frame as a PNG.
func Fling(args []string) error {
	fs := flag.NewFlagSet("fling", flag.ExitOnError)
	vf := addViewFlags(fs)
	vy := fs.Float64("vy", -6000, "Finger speed in px/s (negative moves up, scrolling down the image)")
	start := fs.Int("top", 0, "First source row shown before the drag")
	outDir := fs.String("out", "frames", "Output directory for PNG frames")
	maxFrames := fs.Int("max-frames", 600, "Stop after this many frames")
	workers := fs.Int("workers", runtime.NumCPU(), "Parallel PNG encoders")
	fs.Parse(args)

	cfg, err := vf.load()
	if err != nil {
		return err
	}
	// Decoding must finish inside each simulated frame.
	cfg.Render.AsyncDecode = false

	view, err := openImage(fs, cfg)
	if err != nil {
		return err
	}
	defer view.Close()

	loop := longview.NewLoop(view, cfg)
	now := time.Unix(0, 0)
	loop.SetClock(func() time.Time { return now })

	var frames []capturedFrame
	loop.OnFrame(func(f longview.Frame) {
		if len(frames) < *maxFrames {
			frames = append(frames, capturedFrame{
				img:    snapshot(longview.FrameImage(f.Canvas)),
				region: f.Region,
			})
		}
	})
	view.OnError(func(err error) {
		fmt.Fprintf(os.Stderr, "  ! %v\n", err)
	})

	if err := loop.Dispatch(size.Event{WidthPx: *vf.width, HeightPx: *vf.height}); err != nil {
		return err
	}
	if c, ok := loop.Canvas().(io.Closer); ok {
		defer c.Close()
	}
	if _, err := view.ScrollTo(*start); err != nil {
		return err
	}

	frameTime := time.Second / time.Duration(cfg.Loop.TargetFPS)
	step := func() error {
		now = now.Add(frameTime)
		return loop.Tick()
	}
	if err := step(); err != nil {
		return err
	}

	// Synthetic drag through the middle of the viewport.
	x := float32(*vf.width) / 2
	y := float32(*vf.height) / 2
	dy := float32(*vy * frameTime.Seconds())
	events := []touch.Event{{X: x, Y: y, Type: touch.TypeBegin}}
	for i := 1; i <= dragSteps; i++ {
		events = append(events, touch.Event{X: x, Y: y + dy*float32(i), Type: touch.TypeMove})
	}
	events = append(events, touch.Event{X: x, Y: y + dy*float32(dragSteps+1), Type: touch.TypeEnd})

	for _, e := range events {
		if err := loop.Dispatch(e); err != nil {
			return err
		}
		if err := step(); err != nil {
			return err
		}
	}
	for view.State() == retained.StateFlinging && len(frames) < *maxFrames {
		if err := step(); err != nil {
			return err
		}
	}

	if err := writeFrames(*outDir, frames, *workers); err != nil {
		return err
	}

	st := view.Stats()
	last := view.Region()
	fmt.Printf("  ✓ Wrote %d frames to %s\n", len(frames), *outDir)
	fmt.Printf("  rest:    rows %d-%d\n", last.Top, last.Bottom)
	fmt.Printf("  decodes: %d (%d buffer reuses, %d allocations)\n", st.Decodes, st.BufferReuses, st.BufferAllocs)
	return nil
}

func writeFrames(dir string, frames []capturedFrame, workers int) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}
	if workers < 1 {
		workers = 1
	}

	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(workers)
	for i, f := range frames {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			name := fmt.Sprintf("frame-%04d-top-%d.png", i, f.region.Top)
			return writePNG(filepath.Join(dir, name), f.img)
		})
	}
	return g.Wait()
}
