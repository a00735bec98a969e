package retained

import "fmt"

// ============================================================================
// Input Types
// ============================================================================

// InputType identifies the kind of classified input.
type InputType uint8

const (
	InputDown InputType = iota + 1
	InputUp
	InputScroll
	InputFling
	InputTap
	InputLongPress
)

func (t InputType) String() string {
	switch t {
	case InputDown:
		return "down"
	case InputUp:
		return "up"
	case InputScroll:
		return "scroll"
	case InputFling:
		return "fling"
	case InputTap:
		return "tap"
	case InputLongPress:
		return "long-press"
	default:
		return fmt.Sprintf("InputType(%d)", uint8(t))
	}
}

// Input is a gesture produced by the recognizer and consumed by
// View.HandleInput. The concrete types below are the complete set.
type Input interface {
	Type() InputType
}

// Down is a finger touching the view.
type Down struct {
	X, Y float32
}

// Up is a finger lifting without enough velocity to fling.
type Up struct {
	X, Y float32
}

// Scroll is a drag step. DX and DY are the distance moved since the previous
// step, positive when the finger moves left or up (content moves toward the
// end of the image).
type Scroll struct {
	DX, DY float32
}

// Fling is a release with velocity, in pixels per second. VY is positive
// when the finger was moving down the screen.
type Fling struct {
	VX, VY float32
}

// Tap is a press and release without a drag.
type Tap struct {
	X, Y float32
}

// LongPress is a press held in place past the long-press timeout.
type LongPress struct {
	X, Y float32
}

func (Down) Type() InputType      { return InputDown }
func (Up) Type() InputType        { return InputUp }
func (Scroll) Type() InputType    { return InputScroll }
func (Fling) Type() InputType     { return InputFling }
func (Tap) Type() InputType       { return InputTap }
func (LongPress) Type() InputType { return InputLongPress }
