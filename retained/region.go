package retained

import "image"

// Region is the band of source rows currently decoded. The horizontal
// extent is always the full image width.
type Region struct {
	Top, Bottom int
}

// Height returns Bottom - Top.
func (r Region) Height() int {
	return r.Bottom - r.Top
}

// Rect returns the region as a source-image rectangle of the given width.
func (r Region) Rect(width int) image.Rectangle {
	return image.Rect(0, r.Top, width, r.Bottom)
}

// Edge identifies which image boundary an update ran into.
type Edge uint8

const (
	EdgeNone Edge = iota
	EdgeTop
	EdgeBottom
)

func (e Edge) String() string {
	switch e {
	case EdgeTop:
		return "top"
	case EdgeBottom:
		return "bottom"
	default:
		return "none"
	}
}

// ScrollResult describes the outcome of a region update.
type ScrollResult struct {
	// Changed is true when the region differs from before the update.
	Changed bool

	// Edge is set when the update was clamped to the first or last window.
	Edge Edge
}

// AtBoundary reports whether the update was clamped to an edge.
func (r ScrollResult) AtBoundary() bool {
	return r.Edge != EdgeNone
}

// Tracker owns the decode region and slides it over the image. The region
// height is fixed at the window height; only its position changes.
type Tracker struct {
	region       Region
	imageHeight  int
	windowHeight int
}

// NewTracker returns a tracker positioned at the top of the image.
func NewTracker(imageHeight, windowHeight int) *Tracker {
	return &Tracker{
		region:       Region{Top: 0, Bottom: windowHeight},
		imageHeight:  imageHeight,
		windowHeight: windowHeight,
	}
}

// Region returns the current region.
func (t *Tracker) Region() Region {
	return t.region
}

// MaxTop is the largest valid Top.
func (t *Tracker) MaxTop() int {
	return t.imageHeight - t.windowHeight
}

// ApplyDelta slides the region by dy rows and clamps it to the image.
//
// If the new top is zero or negative the region is forced to the first
// window; otherwise if the new bottom reaches the image height it is forced
// to the last window. A zero delta is a no-op.
func (t *Tracker) ApplyDelta(dy int) ScrollResult {
	if dy == 0 {
		return ScrollResult{}
	}

	prev := t.region
	next := Region{Top: prev.Top + dy, Bottom: prev.Bottom + dy}

	var edge Edge
	switch {
	case next.Top <= 0:
		next = Region{Top: 0, Bottom: t.windowHeight}
		edge = EdgeTop
	case next.Bottom >= t.imageHeight:
		next = Region{Top: t.imageHeight - t.windowHeight, Bottom: t.imageHeight}
		edge = EdgeBottom
	}

	t.region = next
	return ScrollResult{Changed: next != prev, Edge: edge}
}

// ApplyAbsolute moves the region so it starts at top, clamped to
// [0, MaxTop]. Bottom is derived from the window height.
func (t *Tracker) ApplyAbsolute(top int) ScrollResult {
	prev := t.region

	var edge Edge
	switch {
	case top <= 0:
		top = 0
		edge = EdgeTop
	case top >= t.MaxTop():
		top = t.MaxTop()
		edge = EdgeBottom
	}

	t.region = Region{Top: top, Bottom: top + t.windowHeight}
	return ScrollResult{Changed: t.region != prev, Edge: edge}
}
