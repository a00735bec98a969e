package retained

import (
	"context"
	"image"
)

// ============================================================================
// Async Decode Queue
// ============================================================================
//
// One worker goroutine decodes regions off the UI thread. Buffers travel
// with requests and results, so a buffer is only ever written by whoever
// currently holds it. Requests are latest-wins: a request still queued when
// a newer one arrives is dropped and its buffer handed to the newer one.
// Every result carries its sequence number; the view discards results older
// than the newest request.

type decodeRequest struct {
	seq  uint64
	rect image.Rectangle
	buf  *image.RGBA
}

type decodeResult struct {
	seq  uint64
	rect image.Rectangle
	lent *image.RGBA
	out  *image.RGBA
	err  error
}

type decodeQueue struct {
	dec      RegionDecoder
	requests chan decodeRequest
	results  chan decodeResult
	notify   func()

	cancel context.CancelFunc
	done   chan struct{}

	// UI thread only.
	seq        uint64
	completed  uint64
	lastRect   image.Rectangle
	spare      *image.RGBA
	superseded uint64
}

func newDecodeQueue(dec RegionDecoder, notify func()) *decodeQueue {
	ctx, cancel := context.WithCancel(context.Background())
	q := &decodeQueue{
		dec:      dec,
		requests: make(chan decodeRequest, 1),
		results:  make(chan decodeResult, 4),
		notify:   notify,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	go q.run(ctx)
	return q
}

func (q *decodeQueue) run(ctx context.Context) {
	defer close(q.done)
	for {
		select {
		case <-ctx.Done():
			return
		case req := <-q.requests:
			out, err := q.dec.DecodeRegion(req.rect, req.buf)
			res := decodeResult{seq: req.seq, rect: req.rect, lent: req.buf, out: out, err: err}
			select {
			case q.results <- res:
			case <-ctx.Done():
				return
			}
			if q.notify != nil {
				q.notify()
			}
		}
	}
}

// submit queues a decode of rect, superseding any request the worker has
// not picked up yet.
func (q *decodeQueue) submit(rect image.Rectangle) {
	q.seq++
	req := decodeRequest{seq: q.seq, rect: rect, buf: q.spare}
	q.spare = nil

	select {
	case old := <-q.requests:
		q.superseded++
		if req.buf == nil {
			req.buf = old.buf
		}
	default:
	}

	// The UI thread is the only sender and the slot is now free.
	q.requests <- req
	q.lastRect = rect
}

// pending reports whether rect is the newest request and not yet answered.
func (q *decodeQueue) pending(rect image.Rectangle) bool {
	return q.completed < q.seq && q.lastRect == rect
}

// drain returns every result delivered so far without blocking.
func (q *decodeQueue) drain() []decodeResult {
	var out []decodeResult
	for {
		select {
		case res := <-q.results:
			if res.seq > q.completed {
				q.completed = res.seq
			}
			out = append(out, res)
		default:
			return out
		}
	}
}

// current reports whether res answers the newest request.
func (q *decodeQueue) current(res decodeResult) bool {
	return res.seq == q.seq
}

// recycle keeps buf for the next request if no spare is held.
func (q *decodeQueue) recycle(buf *image.RGBA) {
	if q.spare == nil {
		q.spare = buf
	}
}

func (q *decodeQueue) close() {
	q.cancel()
	<-q.done
}
