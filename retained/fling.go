package retained

import (
	"math"
	"time"
)

// EasingFunc maps time progress (0-1) to distance progress (0-1).
type EasingFunc func(t float64) float64

var (
	// EaseOutQuad decelerates at a constant rate.
	EaseOutQuad EasingFunc = func(t float64) float64 { return t * (2 - t) }

	// EaseOutCubic decelerates harder toward the end.
	EaseOutCubic EasingFunc = func(t float64) float64 {
		t--
		return t*t*t + 1
	}
)

// easingSlope is each easing's derivative at t=0. A fling of velocity v
// lasting T covers v*T/slope so the trajectory starts at speed v.
var easingSlope = map[string]float64{
	"quad":  2,
	"cubic": 3,
}

// EasingByName returns a fling easing for a config name, or nil if the
// name is unknown.
func EasingByName(name string) EasingFunc {
	switch name {
	case "quad", "":
		return EaseOutQuad
	case "cubic":
		return EaseOutCubic
	default:
		return nil
	}
}

// Trajectory is an inertial-motion simulator. After Fling it yields
// successive positions inside [min, max] until exhausted or cancelled.
type Trajectory interface {
	// Fling starts a trajectory at start with velocity in px/s.
	Fling(start, velocity, min, max int, now time.Time)

	// Compute advances to now. It returns the new position and true while
	// the trajectory produces samples, including the final one.
	Compute(now time.Time) (pos int, ok bool)

	// ForceFinished stops the trajectory where it is.
	ForceFinished()

	// Finished reports whether no more samples will be produced.
	Finished() bool
}

// FlingConfig tunes the default Scroller.
type FlingConfig struct {
	// Deceleration in px/s².
	Deceleration float64

	// Easing names the deceleration curve: "quad" or "cubic".
	Easing string
}

// DefaultFlingConfig returns the default fling physics.
func DefaultFlingConfig() FlingConfig {
	return FlingConfig{
		Deceleration: 2500,
		Easing:       "quad",
	}
}

// Scroller is the default Trajectory. A fling of velocity v lasts
// |v|/Deceleration and its end point is clamped to the bounds; the
// trajectory also ends early when it reaches a bound.
type Scroller struct {
	deceleration float64
	easing       EasingFunc
	slope        float64

	start, final int
	min, max     int
	distance     float64
	startTime    time.Time
	duration     time.Duration
	curr         int
	finished     bool
}

// NewScroller returns a finished Scroller.
func NewScroller(config FlingConfig) *Scroller {
	if config.Deceleration <= 0 {
		config.Deceleration = DefaultFlingConfig().Deceleration
	}
	easing := EasingByName(config.Easing)
	slope, ok := easingSlope[config.Easing]
	if easing == nil || !ok {
		easing, slope = EaseOutQuad, easingSlope["quad"]
	}
	return &Scroller{
		deceleration: config.Deceleration,
		easing:       easing,
		slope:        slope,
		finished:     true,
	}
}

// Fling starts a new trajectory, replacing any current one.
func (s *Scroller) Fling(start, velocity, min, max int, now time.Time) {
	s.start = start
	s.curr = start
	s.min, s.max = min, max
	s.startTime = now

	if velocity == 0 || min >= max {
		s.final = start
		s.duration = 0
		s.distance = 0
		s.finished = true
		return
	}

	seconds := math.Abs(float64(velocity)) / s.deceleration
	s.duration = time.Duration(seconds * float64(time.Second))
	s.distance = float64(velocity) * seconds / s.slope
	s.final = clampInt(start+int(math.Round(s.distance)), min, max)
	s.finished = false
}

// Compute advances the trajectory to now.
func (s *Scroller) Compute(now time.Time) (int, bool) {
	if s.finished {
		return s.curr, false
	}

	elapsed := now.Sub(s.startTime)
	if elapsed >= s.duration {
		s.curr = s.final
		s.finished = true
		return s.curr, true
	}
	if elapsed < 0 {
		elapsed = 0
	}

	t := elapsed.Seconds() / s.duration.Seconds()
	pos := s.start + int(math.Round(s.distance*s.easing(t)))
	if (s.distance < 0 && pos <= s.min) || (s.distance > 0 && pos >= s.max) {
		s.finished = true
	}
	pos = clampInt(pos, s.min, s.max)
	s.curr = pos
	return pos, true
}

// ForceFinished stops the trajectory at its current position.
func (s *Scroller) ForceFinished() {
	s.finished = true
}

// Finished reports whether the trajectory is exhausted.
func (s *Scroller) Finished() bool {
	return s.finished
}

// Final returns where the current trajectory ends.
func (s *Scroller) Final() int {
	return s.final
}

// Duration returns the length of the current trajectory.
func (s *Scroller) Duration() time.Duration {
	return s.duration
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
