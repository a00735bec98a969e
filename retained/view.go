package retained

import (
	"fmt"
	"image"
	"math"
	"time"

	"golang.org/x/image/math/f64"

	"github.com/agiangrant/longview/internal/diag"
)

// RegionDecoder decodes rectangles of one attached image.
type RegionDecoder interface {
	// Bounds returns the intrinsic image size.
	Bounds() image.Point

	// DecodeRegion decodes r into reuse when reuse is large enough and
	// into a new buffer otherwise. The result has its origin at (0, 0).
	// reuse must be left untouched when an error is returned.
	DecodeRegion(r image.Rectangle, reuse *image.RGBA) (*image.RGBA, error)
}

// Canvas is a paint target. m maps source pixels to canvas pixels.
type Canvas interface {
	DrawImage(img image.Image, m f64.Aff3) error
}

// GestureState is the state of the view's gesture machine.
type GestureState uint8

const (
	StateIdle GestureState = iota
	StateDragging
	StateFlinging
)

func (s GestureState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDragging:
		return "dragging"
	case StateFlinging:
		return "flinging"
	default:
		return fmt.Sprintf("GestureState(%d)", uint8(s))
	}
}

// ViewConfig configures a View.
type ViewConfig struct {
	Fling FlingConfig

	// ScaleGestures converts drag distances and fling velocities from
	// viewport pixels to source rows so content follows the finger.
	ScaleGestures bool

	// AsyncDecode moves region decoding to a worker goroutine.
	AsyncDecode bool
}

// DefaultViewConfig returns the default view configuration.
func DefaultViewConfig() ViewConfig {
	return ViewConfig{Fling: DefaultFlingConfig()}
}

// View shows a window of an arbitrarily tall image, fitted to the viewport
// width, and scrolls it vertically under drag and fling gestures.
//
// All methods must be called from one goroutine. The invalidate callback
// may additionally be called from the decode worker when AsyncDecode is on.
type View struct {
	config ViewConfig

	decoder RegionDecoder
	image   ImageBounds

	viewport ViewportSize
	geometry Geometry
	measured bool
	tracker  *Tracker

	state     GestureState
	scroller  Trajectory
	pendingDY float64

	buf        pixelBuffer
	failedRect image.Rectangle
	queue      *decodeQueue

	onInvalidate func()
	onError      func(error)
	stats        Stats
}

// NewView creates a view with no image attached.
func NewView(config ViewConfig) *View {
	return &View{
		config:   config,
		scroller: NewScroller(config.Fling),
	}
}

// SetTrajectory replaces the fling simulator.
func (v *View) SetTrajectory(t Trajectory) {
	v.scroller = t
}

// OnInvalidate sets the callback used to request a redraw. Requests may be
// coalesced by the host; the view never relies on one draw per request.
func (v *View) OnInvalidate(fn func()) {
	v.onInvalidate = fn
}

// OnError sets the callback that receives per-frame failures.
func (v *View) OnError(fn func(error)) {
	v.onError = fn
}

// SetImage attaches the image. It can be called once.
func (v *View) SetImage(dec RegionDecoder) error {
	if v.decoder != nil {
		return ErrImageAttached
	}
	if dec == nil {
		return ErrNoImage
	}
	b := dec.Bounds()
	bounds := ImageBounds{Width: b.X, Height: b.Y}
	if !bounds.Known() {
		return fmt.Errorf("%w: empty bounds %dx%d", ErrNoImage, b.X, b.Y)
	}

	v.decoder = dec
	v.image = bounds
	if v.config.AsyncDecode {
		v.queue = newDecodeQueue(dec, v.invalidate)
	}
	diag.Logger().Info("view: image attached", "width", bounds.Width, "height", bounds.Height)
	v.invalidate()
	return nil
}

// Measure applies the layout size. The first call fixes the geometry;
// later calls with the same size are no-ops.
func (v *View) Measure(vp ViewportSize) error {
	if v.measured {
		if vp == v.viewport {
			return nil
		}
		return fmt.Errorf("%w: %dx%d -> %dx%d", ErrRelayout,
			v.viewport.Width, v.viewport.Height, vp.Width, vp.Height)
	}

	g, err := ResolveGeometry(v.image, vp)
	if err != nil {
		return err
	}

	v.viewport = vp
	v.geometry = g
	v.tracker = NewTracker(v.image.Height, g.WindowHeight)
	v.measured = true

	diag.Logger().Info("view: measured",
		"viewport", fmt.Sprintf("%dx%d", vp.Width, vp.Height),
		"scale", g.Scale, "window", g.WindowHeight)
	v.invalidate()
	return nil
}

// Geometry returns the resolved geometry. It is zero before Measure.
func (v *View) Geometry() Geometry {
	return v.geometry
}

// Region returns the current decode region. It is zero before Measure.
func (v *View) Region() Region {
	if v.tracker == nil {
		return Region{}
	}
	return v.tracker.Region()
}

// State returns the gesture state.
func (v *View) State() GestureState {
	return v.state
}

// Stats returns decode and paint counters.
func (v *View) Stats() Stats {
	s := v.stats
	if v.queue != nil {
		s.SupersededDecodes = v.queue.superseded
	}
	return s
}

// PaintTransform is the matrix every frame is painted with: a uniform scale
// with no translation.
func (v *View) PaintTransform() f64.Aff3 {
	s := v.geometry.Scale
	return f64.Aff3{s, 0, 0, 0, s, 0}
}

// ScrollBy moves the region by dy source rows.
func (v *View) ScrollBy(dy int) (ScrollResult, error) {
	if !v.measured {
		return ScrollResult{}, ErrNotMeasured
	}
	res := v.tracker.ApplyDelta(dy)
	if res.Changed {
		v.invalidate()
	}
	return res, nil
}

// ScrollTo moves the region to start at top, clamped to the image.
func (v *View) ScrollTo(top int) (ScrollResult, error) {
	if !v.measured {
		return ScrollResult{}, ErrNotMeasured
	}
	res := v.tracker.ApplyAbsolute(top)
	if res.Changed {
		v.invalidate()
	}
	return res, nil
}

// ============================================================================
// Gesture Bridge
// ============================================================================

// HandleInput feeds one classified gesture into the view. It returns true
// if the input was consumed.
func (v *View) HandleInput(in Input, now time.Time) bool {
	switch in := in.(type) {
	case Down:
		// Always stop the simulator, even if it already finished.
		v.scroller.ForceFinished()
		v.state = StateDragging
		v.pendingDY = 0
		return true

	case Scroll:
		if !v.measured {
			return false
		}
		if v.state == StateFlinging {
			v.scroller.ForceFinished()
		}
		v.state = StateDragging
		v.dragBy(float64(in.DY))
		return true

	case Fling:
		if !v.measured {
			return false
		}
		velocity := -float64(in.VY)
		if v.config.ScaleGestures {
			velocity /= v.geometry.Scale
		}
		v.scroller.Fling(v.tracker.Region().Top, int(math.Round(velocity)), 0, v.tracker.MaxTop(), now)
		if v.scroller.Finished() {
			v.state = StateIdle
			return true
		}
		v.state = StateFlinging
		v.invalidate()
		return true

	case Up:
		v.state = StateIdle
		v.pendingDY = 0
		return true
	}
	return false
}

// dragBy applies a drag step, carrying sub-row remainders to the next step.
func (v *View) dragBy(dy float64) {
	if v.config.ScaleGestures {
		dy /= v.geometry.Scale
	}
	v.pendingDY += dy
	whole := math.Trunc(v.pendingDY)
	v.pendingDY -= whole

	res := v.tracker.ApplyDelta(int(whole))
	if res.AtBoundary() {
		v.pendingDY = 0
	}
	if res.Changed {
		diag.Logger().Debug("view: scrolled",
			"top", v.tracker.Region().Top, "bottom", v.tracker.Region().Bottom, "edge", res.Edge)
		v.invalidate()
	}
}

// ComputeScroll advances an active fling to now. It returns true while the
// fling is still running.
func (v *View) ComputeScroll(now time.Time) bool {
	if v.state != StateFlinging {
		return false
	}
	pos, ok := v.scroller.Compute(now)
	if !ok {
		v.state = StateIdle
		return false
	}
	if res := v.tracker.ApplyAbsolute(pos); res.Changed {
		v.invalidate()
	}
	if v.scroller.Finished() {
		v.state = StateIdle
		return false
	}
	return true
}

// ============================================================================
// Decode / Paint
// ============================================================================

// Draw decodes the current region and paints it. It fails only when the
// view cannot draw at all; decode and paint failures are reported through
// OnError and the previous frame's pixels are painted instead.
func (v *View) Draw(c Canvas) error {
	if v.decoder == nil {
		return ErrNoImage
	}
	if !v.measured {
		return ErrNotMeasured
	}

	rect := v.tracker.Region().Rect(v.image.Width)
	if v.queue != nil {
		v.decodeAsync(rect)
	} else {
		v.decodeSync(rect)
	}

	if v.buf.img == nil {
		return nil
	}
	if err := c.DrawImage(v.buf.img, v.PaintTransform()); err != nil {
		v.stats.PaintErrors++
		v.report(fmt.Errorf("retained: paint: %w", err))
		return nil
	}
	v.stats.Paints++
	return nil
}

func (v *View) decodeSync(rect image.Rectangle) {
	if v.buf.holds(rect) || rect == v.failedRect {
		return
	}
	lent := v.buf.img
	out, err := v.decoder.DecodeRegion(rect, lent)
	if err != nil {
		v.decodeFailed(rect, err)
		return
	}
	v.stats.Decodes++
	v.failedRect = image.Rectangle{}
	v.buf.adopt(out, lent, rect, &v.stats)
}

func (v *View) decodeAsync(rect image.Rectangle) {
	for _, res := range v.queue.drain() {
		if !v.queue.current(res) {
			v.stats.StaleDecodes++
			if res.out != nil {
				v.queue.recycle(res.out)
			} else {
				v.queue.recycle(res.lent)
			}
			continue
		}
		if res.err != nil {
			v.queue.recycle(res.lent)
			v.decodeFailed(res.rect, res.err)
			continue
		}
		v.stats.Decodes++
		v.failedRect = image.Rectangle{}
		prev := v.buf.img
		v.buf.adopt(res.out, res.lent, res.rect, &v.stats)
		if prev != nil && prev != res.out {
			v.queue.recycle(prev)
		}
	}

	if v.buf.holds(rect) || rect == v.failedRect || v.queue.pending(rect) {
		return
	}
	v.queue.submit(rect)
}

func (v *View) decodeFailed(rect image.Rectangle, err error) {
	v.stats.DecodeErrors++
	v.failedRect = rect
	v.report(fmt.Errorf("retained: decode region %v: %w", rect, err))
}

func (v *View) report(err error) {
	diag.Logger().Warn("view: frame failed", "err", err)
	if v.onError != nil {
		v.onError(err)
	}
}

func (v *View) invalidate() {
	if v.onInvalidate != nil {
		v.onInvalidate()
	}
}

// Close stops the decode worker, if any.
func (v *View) Close() error {
	if v.queue != nil {
		v.queue.close()
		v.stats.SupersededDecodes = v.queue.superseded
		v.queue = nil
	}
	return nil
}
