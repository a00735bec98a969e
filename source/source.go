// Package source ingests an encoded image once and serves decoded
// rectangles of it on demand.
//
// Open probes the stream for its dimensions without decoding pixels. Pixel
// data is produced only when DecodeRegion is first called; after that each
// call copies the requested rectangle into a caller-supplied buffer when the
// buffer is large enough, so a scroller that slides a fixed-size window
// over the image keeps reusing one allocation.
package source

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"
	"sync"

	"golang.org/x/image/draw"

	"github.com/agiangrant/longview/internal/diag"
)

var (
	// ErrEmptyStream is returned by Open when the stream holds no data.
	ErrEmptyStream = errors.New("source: empty stream")

	// ErrRegionOutOfBounds is returned when a requested rectangle is empty
	// or not fully inside the image.
	ErrRegionOutOfBounds = errors.New("source: region out of bounds")
)

// Source is a decoder handle over one attached image.
type Source struct {
	data   []byte
	format string
	width  int
	height int

	once    sync.Once
	decoded image.Image
	err     error
}

// Open consumes r, probes its dimensions and returns a handle able to
// decode arbitrary rectangles of it. If r is an io.Closer it is closed
// before Open returns; a close failure is logged and otherwise ignored.
func Open(r io.Reader) (*Source, error) {
	if r == nil {
		return nil, ErrEmptyStream
	}
	data, err := io.ReadAll(r)
	closeStream(r)
	if err != nil {
		return nil, fmt.Errorf("source: read stream: %w", err)
	}
	return FromBytes(data)
}

// FromBytes is Open for data already in memory.
func FromBytes(data []byte) (*Source, error) {
	if len(data) == 0 {
		return nil, ErrEmptyStream
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("source: probe bounds: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("source: probe bounds: invalid size %dx%d", cfg.Width, cfg.Height)
	}

	diag.Logger().Info("source: attached image",
		"format", format, "width", cfg.Width, "height", cfg.Height, "bytes", len(data))

	return &Source{
		data:   data,
		format: format,
		width:  cfg.Width,
		height: cfg.Height,
	}, nil
}

func closeStream(r io.Reader) {
	c, ok := r.(io.Closer)
	if !ok {
		return
	}
	if err := c.Close(); err != nil {
		diag.Logger().Warn("source: close stream", "err", err)
	}
}

// Bounds returns the intrinsic image size.
func (s *Source) Bounds() image.Point {
	return image.Pt(s.width, s.height)
}

// Format returns the name of the detected format, e.g. "png".
func (s *Source) Format() string {
	return s.format
}

// DecodeRegion decodes rectangle r of the image into reuse when reuse has
// enough capacity, otherwise into a freshly allocated buffer. The returned
// image always has its origin at (0, 0) and the size of r.
//
// A decode failure is remembered: later calls fail with the same error
// without touching the stream again.
func (s *Source) DecodeRegion(r image.Rectangle, reuse *image.RGBA) (*image.RGBA, error) {
	if r.Empty() || !r.In(image.Rect(0, 0, s.width, s.height)) {
		return nil, fmt.Errorf("%w: %v not in %dx%d", ErrRegionOutOfBounds, r, s.width, s.height)
	}

	img, err := s.pixels()
	if err != nil {
		return nil, err
	}

	dst := FitBuffer(reuse, r.Dx(), r.Dy())
	draw.Copy(dst, image.Point{}, img, r.Add(img.Bounds().Min), draw.Src, nil)
	return dst, nil
}

func (s *Source) pixels() (image.Image, error) {
	s.once.Do(func() {
		img, _, err := image.Decode(bytes.NewReader(s.data))
		if err != nil {
			s.err = fmt.Errorf("source: decode %s: %w", s.format, err)
			return
		}
		s.decoded = img
		diag.Logger().Debug("source: decoded pixels", "format", s.format)
	})
	return s.decoded, s.err
}

// FitBuffer returns an RGBA buffer of size w x h with origin (0, 0). It
// reslices buf in place when cap(buf.Pix) suffices and allocates otherwise.
func FitBuffer(buf *image.RGBA, w, h int) *image.RGBA {
	n := w * h * 4
	if buf != nil && cap(buf.Pix) >= n {
		buf.Pix = buf.Pix[:n]
		buf.Stride = w * 4
		buf.Rect = image.Rect(0, 0, w, h)
		return buf
	}
	return image.NewRGBA(image.Rect(0, 0, w, h))
}
