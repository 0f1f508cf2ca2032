// Package fanout republishes an observable on a one-to-many channel so that
// goroutines can consume its events at their own pace.
package fanout

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/bobg/multichan"
	"github.com/pkg/errors"

	"github.com/neox5/motion/observable"
)

// ErrClosed is returned when reading from a bridge that has been closed.
var ErrClosed = errors.New("fanout: bridge closed")

// Bridge subscribes to an observable and writes every event it receives to a
// multichan. Readers created before Start see every event, including the
// replay a shared stream delivers on subscribe; readers created later see
// events from that point on.
type Bridge[T any] struct {
	src observable.Observable[T]
	w   *multichan.W

	started    atomic.Bool
	closeOnce  sync.Once
	mu         sync.Mutex
	closed     bool
	disconnect observable.Disconnect
}

// New creates a Bridge over src. The bridge must be started via Start.
func New[T any](src observable.Observable[T]) *Bridge[T] {
	return &Bridge[T]{
		src: src,
		w:   multichan.New(observable.Event[T]{}),
	}
}

// Start subscribes to the source.
// Returns the bridge for method chaining.
// Panics if already started.
func (b *Bridge[T]) Start() *Bridge[T] {
	if !b.started.CompareAndSwap(false, true) {
		panic("already started")
	}
	d := b.src.Subscribe(b)

	// Close may have run while the source was subscribing.
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		if d != nil {
			d()
		}
		return b
	}
	b.disconnect = d
	b.mu.Unlock()
	return b
}

// Reader adds a reader to the bridge.
func (b *Bridge[T]) Reader() *Reader[T] {
	return &Reader[T]{r: b.w.Reader()}
}

// Close disconnects from the source and ends every reader's stream.
// Safe to call multiple times.
func (b *Bridge[T]) Close() {
	b.closeOnce.Do(func() {
		b.mu.Lock()
		b.closed = true
		d := b.disconnect
		b.disconnect = nil
		b.mu.Unlock()

		if d != nil {
			d()
		}
		b.w.Close()
	})
}

func (b *Bridge[T]) OnNext(value T) {
	b.w.Write(observable.NextOf(value))
}

func (b *Bridge[T]) OnState(state observable.State) {
	b.w.Write(observable.StateOf[T](state))
}

func (b *Bridge[T]) OnChannelEvent(event observable.ChannelEvent) {
	b.w.Write(observable.ChannelOf[T](event))
}

// Reader is the reading end of a Bridge.
type Reader[T any] struct {
	r *multichan.R
}

// Read blocks until the next event is available, the bridge is closed and
// drained, or ctx is done. ok is false in the latter two cases.
func (r *Reader[T]) Read(ctx context.Context) (event observable.Event[T], ok bool) {
	v, ok := r.r.Read(ctx)
	if !ok {
		return observable.Event[T]{}, false
	}
	return v.(observable.Event[T]), true
}

// TryRead returns the next event if one is ready.
func (r *Reader[T]) TryRead() (observable.Event[T], bool) {
	v, ok := r.r.NBRead()
	if !ok {
		return observable.Event[T]{}, false
	}
	return v.(observable.Event[T]), true
}

// Dispose releases the reader.
func (r *Reader[T]) Dispose() {
	r.r.Dispose()
}

// WaitAtRest reads from r until an AtRest state arrives and returns the last
// value seen before it, if any.
func WaitAtRest[T any](ctx context.Context, r *Reader[T]) (last T, err error) {
	for {
		e, ok := r.Read(ctx)
		if !ok {
			if ctx.Err() != nil {
				return last, errors.Wrap(ctx.Err(), "waiting for rest")
			}
			return last, ErrClosed
		}
		switch e.Kind {
		case observable.NextEvent:
			last = e.Value
		case observable.StateEvent:
			if e.State == observable.AtRest {
				return last, nil
			}
		}
	}
}
