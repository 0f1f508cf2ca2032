// Package record captures the notifications an observable delivers.
package record

import (
	"sync"

	"github.com/eapache/queue"

	"github.com/neox5/motion/observable"
)

// Recorder is an Observer that keeps delivered events in arrival order.
// It is safe for use by drivers emitting from other goroutines.
type Recorder[T any] struct {
	mu     sync.Mutex
	events *queue.Queue
	limit  int
}

// New returns a Recorder that keeps every event.
func New[T any]() *Recorder[T] {
	return NewWithLimit[T](0)
}

// NewWithLimit returns a Recorder that keeps at most limit events, dropping the
// oldest first. A limit <= 0 keeps everything.
func NewWithLimit[T any](limit int) *Recorder[T] {
	return &Recorder[T]{
		events: queue.New(),
		limit:  limit,
	}
}

func (r *Recorder[T]) OnNext(value T) {
	r.add(observable.NextOf(value))
}

func (r *Recorder[T]) OnState(state observable.State) {
	r.add(observable.StateOf[T](state))
}

func (r *Recorder[T]) OnChannelEvent(event observable.ChannelEvent) {
	r.add(observable.ChannelOf[T](event))
}

func (r *Recorder[T]) add(e observable.Event[T]) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events.Add(e)
	if r.limit > 0 && r.events.Length() > r.limit {
		r.events.Remove()
	}
}

// Len returns the number of recorded events.
func (r *Recorder[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events.Length()
}

// Events returns a copy of the recorded events, oldest first.
func (r *Recorder[T]) Events() []observable.Event[T] {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]observable.Event[T], r.events.Length())
	for i := range out {
		out[i] = r.events.Get(i).(observable.Event[T])
	}
	return out
}

// Pop removes and returns the oldest event.
func (r *Recorder[T]) Pop() (observable.Event[T], bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.events.Length() == 0 {
		return observable.Event[T]{}, false
	}
	return r.events.Remove().(observable.Event[T]), true
}

// Values returns the payloads of the recorded NextEvents.
func (r *Recorder[T]) Values() []T {
	var out []T
	for _, e := range r.Events() {
		if e.Kind == observable.NextEvent {
			out = append(out, e.Value)
		}
	}
	return out
}

// States returns the recorded state transitions.
func (r *Recorder[T]) States() []observable.State {
	var out []observable.State
	for _, e := range r.Events() {
		if e.Kind == observable.StateEvent {
			out = append(out, e.State)
		}
	}
	return out
}

// Last returns the most recent event.
func (r *Recorder[T]) Last() (observable.Event[T], bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.events.Length() == 0 {
		return observable.Event[T]{}, false
	}
	return r.events.Get(r.events.Length() - 1).(observable.Event[T]), true
}

// Reset discards all recorded events.
func (r *Recorder[T]) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = queue.New()
}
