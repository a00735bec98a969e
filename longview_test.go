package longview

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"golang.org/x/mobile/event/size"
	"golang.org/x/mobile/event/touch"

	"github.com/agiangrant/longview/internal/render"
)

// tallPNG encodes a 20 x h image whose row y has red channel y%256.
func tallPNG(t *testing.T, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 20, h))
	for y := 0; y < h; y++ {
		for x := 0; x < 20; x++ {
			img.SetRGBA(x, y, color.RGBA{R: uint8(y % 256), G: 10, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func TestOpenAndScroll(t *testing.T) {
	cfg := DefaultConfigFor(PlatformLinux)
	cfg.Render.Interpolation = "nearest"

	view, err := Open(bytes.NewReader(tallPNG(t, 2000)), cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer view.Close()

	loop := NewLoop(view, cfg)
	var frames []Frame
	loop.OnFrame(func(f Frame) { frames = append(frames, f) })

	if err := loop.Dispatch(size.Event{WidthPx: 20, HeightPx: 100}); err != nil {
		t.Fatalf("Dispatch(size): %v", err)
	}
	if g := view.Geometry(); g.Scale != 1 || g.WindowHeight != 100 {
		t.Fatalf("Geometry() = %+v", g)
	}
	if err := loop.Tick(); err != nil {
		t.Fatalf("Tick: %v", err)
	}

	loop.Dispatch(touch.Event{X: 10, Y: 500, Type: touch.TypeBegin})
	loop.Dispatch(touch.Event{X: 10, Y: 400, Type: touch.TypeMove})
	if err := loop.Tick(); err != nil {
		t.Fatalf("Tick: %v", err)
	}

	if len(frames) != 2 {
		t.Fatalf("frames = %d, want 2", len(frames))
	}
	if frames[1].Region != (Region{Top: 100, Bottom: 200}) {
		t.Errorf("Region = %+v, want {100 200}", frames[1].Region)
	}
	img := FrameImage(frames[1].Canvas)
	if img == nil {
		t.Fatal("FrameImage returned nil")
	}
	for _, y := range []int{0, 50, 99} {
		r, _, _, _ := img.At(5, y).RGBA()
		if got, want := uint8(r>>8), uint8(100+y); got != want {
			t.Errorf("row %d red = %d, want %d", y, got, want)
		}
	}
}

func TestOpenErrors(t *testing.T) {
	cfg := DefaultConfig()
	if _, err := Open(bytes.NewReader([]byte("not an image")), cfg); err == nil {
		t.Error("Open(garbage) succeeded")
	}
	if _, err := Open(bytes.NewReader(nil), cfg); err == nil {
		t.Error("Open(empty) succeeded")
	}

	bad := cfg
	bad.Render.Backend = "opengl"
	if _, err := Open(bytes.NewReader(tallPNG(t, 10)), bad); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Open with bad config = %v, want ErrInvalidConfig", err)
	}
}

func TestCanvasFactory(t *testing.T) {
	tests := []struct {
		backend string
		check   func(Canvas) bool
	}{
		{backend: "rgba", check: func(c Canvas) bool { _, ok := c.(*render.RGBA); return ok }},
		{backend: "gg", check: func(c Canvas) bool { _, ok := c.(*render.GG); return ok }},
	}
	for _, tt := range tests {
		c, err := NewCanvasFactory(RenderSettings{Backend: tt.backend})(32, 16)
		if err != nil {
			t.Fatalf("%s: %v", tt.backend, err)
		}
		if !tt.check(c) {
			t.Errorf("%s: got %T", tt.backend, c)
		}
		if img := FrameImage(c); img == nil || img.Bounds().Dx() != 32 || img.Bounds().Dy() != 16 {
			t.Errorf("%s: FrameImage bounds wrong", tt.backend)
		}
	}

	if _, err := NewCanvasFactory(RenderSettings{Backend: "metal"})(1, 1); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("unknown backend error = %v", err)
	}
	if _, err := NewCanvasFactory(RenderSettings{})(0, 10); err == nil {
		t.Error("zero-size canvas accepted")
	}
}
