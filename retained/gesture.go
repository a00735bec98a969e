package retained

import (
	"math"
	"time"

	"golang.org/x/mobile/event/touch"
)

// GestureConfig tunes touch classification.
type GestureConfig struct {
	// TouchSlop is how far a finger may move before a press becomes a drag.
	TouchSlop float32

	// MinFlingVelocity is the release speed (px/s) below which a drag ends
	// with Up instead of Fling.
	MinFlingVelocity float32

	// MaxFlingVelocity caps the reported fling speed (px/s).
	MaxFlingVelocity float32

	// LongPressTimeout is how long a press must be held in place.
	LongPressTimeout time.Duration

	// VelocityWindow is how much recent movement the release velocity is
	// estimated from.
	VelocityWindow time.Duration
}

// DefaultGestureConfig returns values close to common touch platforms.
func DefaultGestureConfig() GestureConfig {
	return GestureConfig{
		TouchSlop:        8,
		MinFlingVelocity: 50,
		MaxFlingVelocity: 8000,
		LongPressTimeout: 500 * time.Millisecond,
		VelocityWindow:   100 * time.Millisecond,
	}
}

// ============================================================================
// Velocity Tracking
// ============================================================================

const velocitySamples = 20

type touchSample struct {
	x, y float32
	t    time.Time
}

// velocityTracker keeps the most recent pointer samples in a ring.
type velocityTracker struct {
	samples [velocitySamples]touchSample
	n       int
	head    int
}

func (v *velocityTracker) reset() {
	v.n = 0
	v.head = 0
}

func (v *velocityTracker) add(x, y float32, t time.Time) {
	v.samples[v.head] = touchSample{x: x, y: y, t: t}
	v.head = (v.head + 1) % velocitySamples
	if v.n < velocitySamples {
		v.n++
	}
}

// velocity estimates px/s from the oldest and newest samples inside window.
func (v *velocityTracker) velocity(window time.Duration) (vx, vy float32) {
	if v.n < 2 {
		return 0, 0
	}
	newest := v.samples[(v.head-1+velocitySamples)%velocitySamples]
	oldest := newest
	for i := 2; i <= v.n; i++ {
		s := v.samples[(v.head-i+velocitySamples)%velocitySamples]
		if newest.t.Sub(s.t) > window {
			break
		}
		oldest = s
	}
	dt := newest.t.Sub(oldest.t).Seconds()
	if dt <= 0 {
		return 0, 0
	}
	return float32(float64(newest.x-oldest.x) / dt), float32(float64(newest.y-oldest.y) / dt)
}

// ============================================================================
// Recognizer
// ============================================================================

// Recognizer turns raw touch events into Down, Scroll, Fling, Up, Tap and
// LongPress inputs. Only the first pointer of a gesture is followed.
type Recognizer struct {
	config GestureConfig

	pressed        bool
	sequence       touch.Sequence
	touchStartX    float32
	touchStartY    float32
	touchStartTime time.Time
	lastTouchX     float32
	lastTouchY     float32
	isDragging     bool
	longPressFired bool

	tracker velocityTracker
}

// NewRecognizer creates a recognizer. Zero fields in config fall back to
// DefaultGestureConfig.
func NewRecognizer(config GestureConfig) *Recognizer {
	def := DefaultGestureConfig()
	if config.TouchSlop <= 0 {
		config.TouchSlop = def.TouchSlop
	}
	if config.MinFlingVelocity <= 0 {
		config.MinFlingVelocity = def.MinFlingVelocity
	}
	if config.MaxFlingVelocity <= 0 {
		config.MaxFlingVelocity = def.MaxFlingVelocity
	}
	if config.LongPressTimeout <= 0 {
		config.LongPressTimeout = def.LongPressTimeout
	}
	if config.VelocityWindow <= 0 {
		config.VelocityWindow = def.VelocityWindow
	}
	return &Recognizer{config: config}
}

// Dragging reports whether the current press has turned into a drag.
func (r *Recognizer) Dragging() bool {
	return r.isDragging
}

// Feed classifies one touch event observed at now.
func (r *Recognizer) Feed(e touch.Event, now time.Time) []Input {
	switch e.Type {
	case touch.TypeBegin:
		if r.pressed {
			return nil
		}
		r.pressed = true
		r.sequence = e.Sequence
		r.touchStartX, r.touchStartY = e.X, e.Y
		r.touchStartTime = now
		r.lastTouchX, r.lastTouchY = e.X, e.Y
		r.isDragging = false
		r.longPressFired = false
		r.tracker.reset()
		r.tracker.add(e.X, e.Y, now)
		return []Input{Down{X: e.X, Y: e.Y}}

	case touch.TypeMove:
		if !r.pressed || e.Sequence != r.sequence {
			return nil
		}
		r.tracker.add(e.X, e.Y, now)
		if r.longPressFired {
			return nil
		}

		if !r.isDragging {
			dx := e.X - r.touchStartX
			dy := e.Y - r.touchStartY
			if dx*dx+dy*dy <= r.config.TouchSlop*r.config.TouchSlop {
				return nil
			}
			r.isDragging = true
		}

		step := Scroll{DX: r.lastTouchX - e.X, DY: r.lastTouchY - e.Y}
		r.lastTouchX, r.lastTouchY = e.X, e.Y
		if step.DX == 0 && step.DY == 0 {
			return nil
		}
		return []Input{step}

	case touch.TypeEnd:
		if !r.pressed || e.Sequence != r.sequence {
			return nil
		}
		r.pressed = false
		r.tracker.add(e.X, e.Y, now)

		if r.isDragging {
			r.isDragging = false
			vx, vy := r.tracker.velocity(r.config.VelocityWindow)
			if abs(vx) >= r.config.MinFlingVelocity || abs(vy) >= r.config.MinFlingVelocity {
				return []Input{Fling{
					VX: clampVelocity(vx, r.config.MaxFlingVelocity),
					VY: clampVelocity(vy, r.config.MaxFlingVelocity),
				}}
			}
			return []Input{Up{X: e.X, Y: e.Y}}
		}

		if r.longPressFired {
			return []Input{Up{X: e.X, Y: e.Y}}
		}
		return []Input{Up{X: e.X, Y: e.Y}, Tap{X: e.X, Y: e.Y}}
	}
	return nil
}

// Tick reports a long press once the current press has been held in place
// past the timeout. Call it once per frame.
func (r *Recognizer) Tick(now time.Time) []Input {
	if !r.pressed || r.isDragging || r.longPressFired {
		return nil
	}
	if now.Sub(r.touchStartTime) < r.config.LongPressTimeout {
		return nil
	}
	r.longPressFired = true
	return []Input{LongPress{X: r.touchStartX, Y: r.touchStartY}}
}

func abs(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

func clampVelocity(v, limit float32) float32 {
	return float32(math.Max(-float64(limit), math.Min(float64(limit), float64(v))))
}
