package retained

import "image"

// ============================================================================
// Pixel Buffer Reuse
// ============================================================================
//
// The region never changes size once the view is measured, so every decode
// can land in the buffer of the previous one. pixelBuffer holds that single
// slot; it is not a cache and never keeps more than the current region.

type pixelBuffer struct {
	img  *image.RGBA
	rect image.Rectangle
}

// holds reports whether the buffer already contains the decoded rect.
func (b *pixelBuffer) holds(rect image.Rectangle) bool {
	return b.img != nil && b.rect == rect
}

// adopt installs out as the current buffer. lent is the buffer that was
// offered to the decoder; getting it back counts as a reuse.
func (b *pixelBuffer) adopt(out, lent *image.RGBA, rect image.Rectangle, stats *Stats) {
	if lent != nil && out == lent {
		stats.BufferReuses++
	} else {
		stats.BufferAllocs++
	}
	b.img = out
	b.rect = rect
}

// Stats counts decode and paint activity.
type Stats struct {
	Decodes      uint64
	DecodeErrors uint64
	Paints       uint64
	PaintErrors  uint64
	BufferReuses uint64
	BufferAllocs uint64

	// Async decoding only.
	SupersededDecodes uint64
	StaleDecodes      uint64
}
