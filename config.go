package longview

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/agiangrant/longview/internal/render"
	"github.com/agiangrant/longview/retained"
)

// ConfigFile is the file name LoadConfig falls back to.
const ConfigFile = "longview.toml"

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("longview: invalid config")

// Config represents the longview.toml configuration file
type Config struct {
	Gesture GestureSettings `toml:"gesture"`
	Fling   FlingSettings   `toml:"fling"`
	Render  RenderSettings  `toml:"render"`
	Loop    LoopSettings    `toml:"loop"`
}

// GestureSettings tunes touch classification
type GestureSettings struct {
	// Pixels a finger may move before a press becomes a drag
	TouchSlop float32 `toml:"touch_slop"`
	// Release speed (px/s) below which a drag does not fling
	MinFlingVelocity float32 `toml:"min_fling_velocity"`
	// Upper bound on fling speed (px/s)
	MaxFlingVelocity float32 `toml:"max_fling_velocity"`
	LongPressMs      int     `toml:"long_press_ms"`
	VelocityWindowMs int     `toml:"velocity_window_ms"`
	// Convert drag and fling distances to source rows
	Scaled bool `toml:"scaled"`
}

type FlingSettings struct {
	// px/s²
	Deceleration float64 `toml:"deceleration"`
	// "quad" or "cubic"
	Easing string `toml:"easing"`
}

type RenderSettings struct {
	// "rgba" or "gg"
	Backend string `toml:"backend"`
	// "nearest", "approx-bilinear", "bilinear" or "catmullrom"
	Interpolation string `toml:"interpolation"`
	// Decode regions on a worker goroutine
	AsyncDecode bool `toml:"async_decode"`
}

type LoopSettings struct {
	TargetFPS int `toml:"target_fps"`
}

// DefaultConfig returns the configuration for the current platform.
func DefaultConfig() Config {
	return DefaultConfigFor(CurrentPlatform())
}

// DefaultConfigFor returns the configuration for p.
func DefaultConfigFor(p Platform) Config {
	gesture := retained.DefaultGestureConfig()
	fling := retained.DefaultFlingConfig()
	return Config{
		Gesture: GestureSettings{
			TouchSlop:        p.DefaultTouchSlop(),
			MinFlingVelocity: gesture.MinFlingVelocity,
			MaxFlingVelocity: gesture.MaxFlingVelocity,
			LongPressMs:      int(gesture.LongPressTimeout / time.Millisecond),
			VelocityWindowMs: int(gesture.VelocityWindow / time.Millisecond),
		},
		Fling: FlingSettings{
			Deceleration: fling.Deceleration,
			Easing:       fling.Easing,
		},
		Render: RenderSettings{
			Backend:       "rgba",
			Interpolation: "approx-bilinear",
		},
		Loop: LoopSettings{
			TargetFPS: retained.DefaultLoopConfig().TargetFPS,
		},
	}
}

// ParseConfig decodes TOML on top of DefaultConfig and validates the result.
func ParseConfig(data []byte) (Config, error) {
	config := DefaultConfig()
	if err := toml.Unmarshal(data, &config); err != nil {
		return config, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return config, err
	}
	return config, nil
}

// LoadConfig loads the configuration from path. An empty path means
// longview.toml in the current directory, and a missing longview.toml
// yields the defaults.
func LoadConfig(path string) (Config, error) {
	if path == "" {
		path = ConfigFile
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return DefaultConfig(), fmt.Errorf("failed to read %s: %w", path, err)
	}
	config, err := ParseConfig(data)
	if err != nil {
		return config, fmt.Errorf("%s: %w", path, err)
	}
	return config, nil
}

// SaveConfig writes config to path as TOML.
func SaveConfig(path string, config Config) error {
	data, err := toml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch {
	case c.Gesture.TouchSlop < 0:
		return fmt.Errorf("%w: gesture.touch_slop %v is negative", ErrInvalidConfig, c.Gesture.TouchSlop)
	case c.Gesture.MinFlingVelocity < 0 || c.Gesture.MaxFlingVelocity < c.Gesture.MinFlingVelocity:
		return fmt.Errorf("%w: fling velocity range [%v, %v]", ErrInvalidConfig,
			c.Gesture.MinFlingVelocity, c.Gesture.MaxFlingVelocity)
	case c.Gesture.LongPressMs < 0 || c.Gesture.VelocityWindowMs < 0:
		return fmt.Errorf("%w: negative gesture timing", ErrInvalidConfig)
	case c.Fling.Deceleration <= 0:
		return fmt.Errorf("%w: fling.deceleration must be positive", ErrInvalidConfig)
	case retained.EasingByName(c.Fling.Easing) == nil:
		return fmt.Errorf("%w: unknown fling.easing %q", ErrInvalidConfig, c.Fling.Easing)
	case c.Render.Backend != "rgba" && c.Render.Backend != "gg":
		return fmt.Errorf("%w: unknown render.backend %q", ErrInvalidConfig, c.Render.Backend)
	case render.InterpolatorByName(c.Render.Interpolation) == nil:
		return fmt.Errorf("%w: unknown render.interpolation %q", ErrInvalidConfig, c.Render.Interpolation)
	case c.Loop.TargetFPS < 1:
		return fmt.Errorf("%w: loop.target_fps must be at least 1", ErrInvalidConfig)
	}
	return nil
}

// ViewConfig converts the settings used by a View.
func (c Config) ViewConfig() retained.ViewConfig {
	return retained.ViewConfig{
		Fling: retained.FlingConfig{
			Deceleration: c.Fling.Deceleration,
			Easing:       c.Fling.Easing,
		},
		ScaleGestures: c.Gesture.Scaled,
		AsyncDecode:   c.Render.AsyncDecode,
	}
}

// LoopConfig converts the settings used by a Loop.
func (c Config) LoopConfig() retained.LoopConfig {
	return retained.LoopConfig{
		TargetFPS: c.Loop.TargetFPS,
		Gesture: retained.GestureConfig{
			TouchSlop:        c.Gesture.TouchSlop,
			MinFlingVelocity: c.Gesture.MinFlingVelocity,
			MaxFlingVelocity: c.Gesture.MaxFlingVelocity,
			LongPressTimeout: time.Duration(c.Gesture.LongPressMs) * time.Millisecond,
			VelocityWindow:   time.Duration(c.Gesture.VelocityWindowMs) * time.Millisecond,
		},
	}
}
