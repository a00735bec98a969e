package retained

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"
	"golang.org/x/mobile/event/touch"

	"github.com/agiangrant/longview/internal/diag"
)

// LoopConfig configures the frame loop.
type LoopConfig struct {
	// TargetFPS is the desired frames per second (default: 60).
	TargetFPS int

	// Gesture configures touch classification.
	Gesture GestureConfig
}

// DefaultLoopConfig returns sensible defaults.
func DefaultLoopConfig() LoopConfig {
	return LoopConfig{
		TargetFPS: 60,
		Gesture:   DefaultGestureConfig(),
	}
}

// CanvasFactory creates the paint target once the viewport size is known.
type CanvasFactory func(width, height int) (Canvas, error)

// Frame provides context for each painted frame.
type Frame struct {
	// Number is the monotonically increasing frame counter.
	Number uint64

	// DeltaTime is seconds since the previous frame.
	DeltaTime float64

	// Time is seconds since loop start.
	Time float64

	// Canvas holds the pixels painted this frame.
	Canvas Canvas

	// Region is the source rows shown in this frame.
	Region Region
}

// Loop drives a View from platform events. Redraw requests are coalesced
// into a dirty flag that the next tick consumes, so many requests between
// two ticks produce at most one draw.
type Loop struct {
	view       *View
	config     LoopConfig
	recognizer *Recognizer
	newCanvas  CanvasFactory
	canvas     Canvas

	now func() time.Time

	// Timing
	targetFrameTime time.Duration
	startTime       time.Time
	lastFrameTime   time.Time

	// State
	running atomic.Bool
	paused  atomic.Bool
	dirty   atomic.Bool

	onFrame func(Frame)

	// Stats
	frameCount    atomic.Uint64
	paintCount    atomic.Uint64
	droppedFrames atomic.Uint64
}

// NewLoop creates a loop for view. The view's invalidate callback is
// taken over by the loop.
func NewLoop(view *View, newCanvas CanvasFactory, config LoopConfig) *Loop {
	if config.TargetFPS < 1 {
		config.TargetFPS = 60
	}
	l := &Loop{
		view:            view,
		config:          config,
		recognizer:      NewRecognizer(config.Gesture),
		newCanvas:       newCanvas,
		now:             time.Now,
		targetFrameTime: time.Second / time.Duration(config.TargetFPS),
	}
	view.OnInvalidate(l.Invalidate)
	return l
}

// SetClock replaces the time source. Used by tests and offline rendering.
func (l *Loop) SetClock(now func() time.Time) {
	l.now = now
}

// OnFrame sets a callback invoked after every painted frame.
func (l *Loop) OnFrame(fn func(Frame)) {
	l.onFrame = fn
}

// Invalidate requests a redraw on the next tick. Safe for concurrent use.
func (l *Loop) Invalidate() {
	l.dirty.Store(true)
}

// Canvas returns the current paint target, or nil before the first size event.
func (l *Loop) Canvas() Canvas {
	return l.canvas
}

// Dispatch handles one platform event. Unknown events are ignored.
func (l *Loop) Dispatch(e any) error {
	switch e := e.(type) {
	case size.Event:
		return l.resize(e)

	case touch.Event:
		now := l.now()
		for _, in := range l.recognizer.Feed(e, now) {
			l.view.HandleInput(in, now)
		}

	case paint.Event:
		l.Invalidate()
	}
	return nil
}

func (l *Loop) resize(e size.Event) error {
	err := l.view.Measure(ViewportSize{Width: e.WidthPx, Height: e.HeightPx})
	if errors.Is(err, ErrRelayout) {
		diag.Logger().Warn("loop: ignoring relayout", "err", err)
		return nil
	}
	if err != nil {
		return err
	}
	if l.canvas != nil || l.newCanvas == nil {
		return nil
	}

	c, err := l.newCanvas(e.WidthPx, e.HeightPx)
	if err != nil {
		return fmt.Errorf("retained: create canvas: %w", err)
	}
	l.canvas = c
	l.Invalidate()
	return nil
}

// Tick runs one frame: long-press detection, fling advance and, if a
// redraw was requested, one draw.
func (l *Loop) Tick() error {
	if l.paused.Load() {
		return nil
	}

	now := l.now()
	if l.startTime.IsZero() {
		l.startTime = now
		l.lastFrameTime = now
	}
	deltaTime := now.Sub(l.lastFrameTime).Seconds()
	l.lastFrameTime = now

	for _, in := range l.recognizer.Tick(now) {
		l.view.HandleInput(in, now)
	}
	l.view.ComputeScroll(now)
	frameNum := l.frameCount.Add(1)

	if l.canvas == nil || !l.dirty.Swap(false) {
		return nil
	}
	if err := l.view.Draw(l.canvas); err != nil {
		return err
	}
	l.paintCount.Add(1)

	if l.onFrame != nil {
		l.onFrame(Frame{
			Number:    frameNum,
			DeltaTime: deltaTime,
			Time:      now.Sub(l.startTime).Seconds(),
			Canvas:    l.canvas,
			Region:    l.view.Region(),
		})
	}
	return nil
}

// Run dispatches events and ticks at the target frame rate until ctx is
// done or events is closed.
func (l *Loop) Run(ctx context.Context, events <-chan any) error {
	if !l.running.CompareAndSwap(false, true) {
		return errors.New("retained: loop already running")
	}
	defer l.running.Store(false)

	ticker := time.NewTicker(l.targetFrameTime)
	defer ticker.Stop()

	diag.Logger().Info("loop: started", "fps", l.config.TargetFPS)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case e, ok := <-events:
			if !ok {
				return nil
			}
			if err := l.Dispatch(e); err != nil {
				return err
			}

		case <-ticker.C:
			start := time.Now()
			if err := l.Tick(); err != nil {
				return err
			}
			if time.Since(start) > l.targetFrameTime {
				l.droppedFrames.Add(1)
			}
		}
	}
}

// Pause stops ticking. Events are still dispatched.
func (l *Loop) Pause() {
	l.paused.Store(true)
}

// Resume resumes a paused loop.
func (l *Loop) Resume() {
	l.paused.Store(false)
}

// IsPaused returns whether the loop is paused.
func (l *Loop) IsPaused() bool {
	return l.paused.Load()
}

// IsRunning returns whether Run is active.
func (l *Loop) IsRunning() bool {
	return l.running.Load()
}

// Stats returns loop statistics.
func (l *Loop) Stats() LoopStats {
	return LoopStats{
		FrameCount:    l.frameCount.Load(),
		PaintCount:    l.paintCount.Load(),
		DroppedFrames: l.droppedFrames.Load(),
		TargetFPS:     l.config.TargetFPS,
	}
}

// LoopStats contains performance metrics.
type LoopStats struct {
	FrameCount    uint64
	PaintCount    uint64
	DroppedFrames uint64
	TargetFPS     int
}
