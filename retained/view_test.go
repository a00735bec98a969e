package retained

import (
	"errors"
	"image"
	"image/color"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/image/math/f64"
)

// stripeDecoder fakes a region decoder over a w x h image whose row y has
// red channel y%256.
type stripeDecoder struct {
	w, h  int
	calls atomic.Int64

	mu   sync.Mutex
	fail error

	// Async tests: started receives each rect as decoding begins, and
	// decoding then blocks until gate is signalled.
	started chan image.Rectangle
	gate    chan struct{}
}

func (d *stripeDecoder) Bounds() image.Point { return image.Pt(d.w, d.h) }

func (d *stripeDecoder) setFail(err error) {
	d.mu.Lock()
	d.fail = err
	d.mu.Unlock()
}

func (d *stripeDecoder) DecodeRegion(r image.Rectangle, reuse *image.RGBA) (*image.RGBA, error) {
	if d.started != nil {
		d.started <- r
	}
	if d.gate != nil {
		<-d.gate
	}
	d.calls.Add(1)
	d.mu.Lock()
	fail := d.fail
	d.mu.Unlock()
	if fail != nil {
		return nil, fail
	}

	w, h := r.Dx(), r.Dy()
	dst := reuse
	if dst == nil || cap(dst.Pix) < 4*w*h {
		dst = image.NewRGBA(image.Rect(0, 0, w, h))
	} else {
		dst.Pix = dst.Pix[:4*w*h]
		dst.Stride = 4 * w
		dst.Rect = image.Rect(0, 0, w, h)
	}
	for y := 0; y < h; y++ {
		c := color.RGBA{R: uint8((r.Min.Y + y) % 256), A: 255}
		for x := 0; x < w; x++ {
			dst.SetRGBA(x, y, c)
		}
	}
	return dst, nil
}

type recordCanvas struct {
	imgs []image.Image
	ms   []f64.Aff3
	err  error
}

func (c *recordCanvas) DrawImage(img image.Image, m f64.Aff3) error {
	if c.err != nil {
		return c.err
	}
	c.imgs = append(c.imgs, img)
	c.ms = append(c.ms, m)
	return nil
}

func (c *recordCanvas) last() *image.RGBA {
	if len(c.imgs) == 0 {
		return nil
	}
	return c.imgs[len(c.imgs)-1].(*image.RGBA)
}

// newTestView returns a measured view over a 100x10000 image in a 50x100
// viewport: scale 0.5, window 200 rows.
func newTestView(t *testing.T, cfg ViewConfig) (*View, *stripeDecoder) {
	t.Helper()
	dec := &stripeDecoder{w: 100, h: 10000}
	v := NewView(cfg)
	if err := v.SetImage(dec); err != nil {
		t.Fatalf("SetImage: %v", err)
	}
	if err := v.Measure(ViewportSize{Width: 50, Height: 100}); err != nil {
		t.Fatalf("Measure: %v", err)
	}
	t.Cleanup(func() { v.Close() })
	return v, dec
}

func TestViewPreconditions(t *testing.T) {
	v := NewView(DefaultViewConfig())
	c := &recordCanvas{}

	if err := v.Draw(c); !errors.Is(err, ErrNoImage) {
		t.Errorf("Draw before SetImage = %v, want ErrNoImage", err)
	}
	if err := v.Measure(ViewportSize{Width: 10, Height: 10}); !errors.Is(err, ErrNoImage) {
		t.Errorf("Measure before SetImage = %v, want ErrNoImage", err)
	}
	if _, err := v.ScrollBy(5); !errors.Is(err, ErrNotMeasured) {
		t.Errorf("ScrollBy before Measure = %v, want ErrNotMeasured", err)
	}
	if err := v.SetImage(nil); !errors.Is(err, ErrNoImage) {
		t.Errorf("SetImage(nil) = %v, want ErrNoImage", err)
	}
	if err := v.SetImage(&stripeDecoder{w: 0, h: 5}); !errors.Is(err, ErrNoImage) {
		t.Errorf("SetImage(empty) = %v, want ErrNoImage", err)
	}

	dec := &stripeDecoder{w: 100, h: 1000}
	if err := v.SetImage(dec); err != nil {
		t.Fatalf("SetImage: %v", err)
	}
	if err := v.SetImage(dec); !errors.Is(err, ErrImageAttached) {
		t.Errorf("second SetImage = %v, want ErrImageAttached", err)
	}
	if err := v.Draw(c); !errors.Is(err, ErrNotMeasured) {
		t.Errorf("Draw before Measure = %v, want ErrNotMeasured", err)
	}

	vp := ViewportSize{Width: 50, Height: 100}
	if err := v.Measure(vp); err != nil {
		t.Fatalf("Measure: %v", err)
	}
	if err := v.Measure(vp); err != nil {
		t.Errorf("repeat Measure with same size = %v", err)
	}
	if err := v.Measure(ViewportSize{Width: 60, Height: 100}); !errors.Is(err, ErrRelayout) {
		t.Errorf("Measure with new size = %v, want ErrRelayout", err)
	}
	if err := v.Draw(c); err != nil {
		t.Errorf("Draw: %v", err)
	}
	if dec.calls.Load() != 1 || len(c.imgs) != 1 {
		t.Errorf("decodes=%d paints=%d, want 1 and 1", dec.calls.Load(), len(c.imgs))
	}
}

func TestViewReusesPixelBuffer(t *testing.T) {
	v, dec := newTestView(t, DefaultViewConfig())
	c := &recordCanvas{}

	const n = 25
	for i := 0; i < n; i++ {
		if _, err := v.ScrollBy(37); err != nil {
			t.Fatalf("ScrollBy: %v", err)
		}
		if err := v.Draw(c); err != nil {
			t.Fatalf("Draw: %v", err)
		}
	}

	st := v.Stats()
	if st.Decodes != n || dec.calls.Load() != n {
		t.Fatalf("decodes = %d (decoder saw %d), want %d", st.Decodes, dec.calls.Load(), n)
	}
	if st.BufferReuses < n-1 {
		t.Errorf("BufferReuses = %d, want at least %d", st.BufferReuses, n-1)
	}
	first := c.imgs[0].(*image.RGBA)
	for i, img := range c.imgs {
		if img != first {
			t.Fatalf("paint %d used a different buffer", i)
		}
	}
	if got, want := first.RGBAAt(0, 0).R, uint8((n*37)%256); got != want {
		t.Errorf("first row red = %d, want %d", got, want)
	}
}

func TestViewPaintTransformIsScaleOnly(t *testing.T) {
	v, _ := newTestView(t, DefaultViewConfig())
	c := &recordCanvas{}
	t0 := time.Unix(0, 0)

	v.HandleInput(Down{}, t0)
	v.HandleInput(Scroll{DY: 300}, t0)
	v.Draw(c)
	v.HandleInput(Fling{VY: -4000}, t0)
	for i := 1; i <= 20; i++ {
		v.ComputeScroll(t0.Add(time.Duration(i) * 50 * time.Millisecond))
		v.Draw(c)
	}

	want := f64.Aff3{0.5, 0, 0, 0, 0.5, 0}
	for i, m := range c.ms {
		if m != want {
			t.Fatalf("paint %d transform = %v, want %v", i, m, want)
		}
	}
}

func TestViewFlingCancelledByDown(t *testing.T) {
	v, _ := newTestView(t, DefaultViewConfig())
	t0 := time.Unix(0, 0)

	v.HandleInput(Down{}, t0)
	v.HandleInput(Fling{VY: -3000}, t0)
	if v.State() != StateFlinging {
		t.Fatalf("State() = %v, want flinging", v.State())
	}
	if !v.ComputeScroll(t0.Add(100 * time.Millisecond)) {
		t.Fatal("fling ended early")
	}
	moved := v.Region()
	if moved.Top <= 0 {
		t.Fatalf("fling did not move the region: %+v", moved)
	}

	v.HandleInput(Down{}, t0.Add(120*time.Millisecond))
	if v.State() != StateDragging {
		t.Fatalf("State() = %v, want dragging", v.State())
	}
	for i := 2; i < 30; i++ {
		if v.ComputeScroll(t0.Add(time.Duration(i) * 100 * time.Millisecond)) {
			t.Fatal("cancelled fling still running")
		}
	}
	if v.Region() != moved {
		t.Errorf("region moved after cancel: %+v -> %+v", moved, v.Region())
	}
}

func TestViewFlingRunsToRest(t *testing.T) {
	v, _ := newTestView(t, DefaultViewConfig())
	t0 := time.Unix(0, 0)

	v.HandleInput(Down{}, t0)
	v.HandleInput(Fling{VY: -2500}, t0)
	prev := 0
	for i := 1; i <= 40 && v.ComputeScroll(t0.Add(time.Duration(i)*50*time.Millisecond)); i++ {
		if top := v.Region().Top; top < prev {
			t.Fatalf("upward fling reversed at tick %d: %d < %d", i, top, prev)
		}
		prev = v.Region().Top
	}
	if v.State() != StateIdle {
		t.Errorf("State() = %v, want idle", v.State())
	}
	// 2500 px/s at 2500 px/s² stops after 1250 rows.
	if got := v.Region().Top; got != 1250 {
		t.Errorf("rest position = %d, want 1250", got)
	}
}

func TestViewFlingFromEdgeIntoEdge(t *testing.T) {
	v, _ := newTestView(t, DefaultViewConfig())
	t0 := time.Unix(0, 0)

	v.HandleInput(Down{}, t0)
	v.HandleInput(Fling{VY: 3000}, t0)
	if v.State() != StateFlinging {
		t.Fatalf("State() = %v", v.State())
	}
	if v.ComputeScroll(t0.Add(16 * time.Millisecond)) {
		t.Error("fling into the top edge kept running")
	}
	if v.Region().Top != 0 {
		t.Errorf("Top = %d, want 0", v.Region().Top)
	}
}

func TestViewDragInvalidation(t *testing.T) {
	v, _ := newTestView(t, DefaultViewConfig())
	var redraws int
	v.OnInvalidate(func() { redraws++ })
	t0 := time.Unix(0, 0)

	v.HandleInput(Down{}, t0)
	v.HandleInput(Scroll{DY: 0}, t0)
	if redraws != 0 {
		t.Errorf("zero drag requested %d redraws", redraws)
	}
	v.HandleInput(Scroll{DY: -50}, t0)
	if redraws != 0 {
		t.Errorf("drag past top at top requested %d redraws", redraws)
	}

	v.HandleInput(Scroll{DY: 100}, t0)
	if redraws != 1 || v.Region().Top != 100 {
		t.Fatalf("redraws=%d top=%d, want 1 and 100", redraws, v.Region().Top)
	}

	// A single step that overshoots the top still repaints the clamped region.
	v.HandleInput(Scroll{DY: -150}, t0)
	if redraws != 2 || v.Region() != (Region{Top: 0, Bottom: 200}) {
		t.Errorf("redraws=%d region=%+v, want 2 and {0 200}", redraws, v.Region())
	}
}

func TestViewFractionalDrag(t *testing.T) {
	v, _ := newTestView(t, DefaultViewConfig())
	t0 := time.Unix(0, 0)
	v.HandleInput(Down{}, t0)
	for i := 0; i < 4; i++ {
		v.HandleInput(Scroll{DY: 0.5}, t0)
	}
	if got := v.Region().Top; got != 2 {
		t.Errorf("Top = %d after four half-row drags, want 2", got)
	}
}

func TestViewScaleGestures(t *testing.T) {
	cfg := DefaultViewConfig()
	cfg.ScaleGestures = true
	v, _ := newTestView(t, cfg)
	t0 := time.Unix(0, 0)
	v.HandleInput(Down{}, t0)
	v.HandleInput(Scroll{DY: 10}, t0)
	if got := v.Region().Top; got != 20 {
		t.Errorf("Top = %d, want 20 source rows for 10 viewport pixels at scale 0.5", got)
	}
}

func TestViewIgnoresTapAndLongPress(t *testing.T) {
	v, _ := newTestView(t, DefaultViewConfig())
	t0 := time.Unix(0, 0)
	if v.HandleInput(Tap{}, t0) || v.HandleInput(LongPress{}, t0) {
		t.Error("tap and long press should not be consumed")
	}
}

func TestViewDecodeFailureKeepsPriorFrame(t *testing.T) {
	v, dec := newTestView(t, DefaultViewConfig())
	var reported []error
	v.OnError(func(err error) { reported = append(reported, err) })
	c := &recordCanvas{}

	if err := v.Draw(c); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	prior := c.last()

	boom := errors.New("corrupt stream")
	dec.setFail(boom)
	v.ScrollBy(300)
	for i := 0; i < 3; i++ {
		if err := v.Draw(c); err != nil {
			t.Fatalf("Draw with failing decoder = %v, want nil", err)
		}
	}
	if len(reported) != 1 || !errors.Is(reported[0], boom) {
		t.Fatalf("reported = %v, want one %v", reported, boom)
	}
	if dec.calls.Load() != 2 {
		t.Errorf("decoder calls = %d, want 2 (failed region is not retried)", dec.calls.Load())
	}
	if c.last() != prior || prior.RGBAAt(0, 0).R != 0 {
		t.Error("prior buffer was not kept on screen")
	}

	dec.setFail(nil)
	v.ScrollBy(10)
	if err := v.Draw(c); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if got := c.last().RGBAAt(0, 0).R; got != uint8(310%256) {
		t.Errorf("recovered frame red = %d, want %d", got, 310%256)
	}
	if st := v.Stats(); st.DecodeErrors != 1 || st.Decodes != 2 {
		t.Errorf("stats = %+v", st)
	}
}

func TestViewPaintFailureIsReported(t *testing.T) {
	v, _ := newTestView(t, DefaultViewConfig())
	var reported error
	v.OnError(func(err error) { reported = err })

	boom := errors.New("surface lost")
	if err := v.Draw(&recordCanvas{err: boom}); err != nil {
		t.Fatalf("Draw = %v, want nil", err)
	}
	if !errors.Is(reported, boom) {
		t.Errorf("reported = %v, want %v", reported, boom)
	}
	if st := v.Stats(); st.PaintErrors != 1 || st.Paints != 0 {
		t.Errorf("stats = %+v", st)
	}
}

func TestViewSkipsDecodeForUnchangedRegion(t *testing.T) {
	v, dec := newTestView(t, DefaultViewConfig())
	c := &recordCanvas{}
	for i := 0; i < 3; i++ {
		v.Draw(c)
	}
	if dec.calls.Load() != 1 || len(c.imgs) != 3 {
		t.Errorf("decodes=%d paints=%d, want 1 and 3", dec.calls.Load(), len(c.imgs))
	}
}

func TestGestureStateString(t *testing.T) {
	for s, want := range map[GestureState]string{StateIdle: "idle", StateDragging: "dragging", StateFlinging: "flinging"} {
		if s.String() != want {
			t.Errorf("GestureState(%d).String() = %q, want %q", uint8(s), s.String(), want)
		}
	}
}
