package property

import (
	"sync"

	"github.com/neox5/motion/observable"
)

// Aggregator subscribes streams to properties and tracks whether any of them
// is still in motion.
type Aggregator struct {
	mu      sync.Mutex
	streams map[uint64]*stream
	nextID  uint64
	active  int
	onState func(observable.State)
}

type stream struct {
	disconnect observable.Disconnect
	active     bool
}

// NewAggregator returns an empty Aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{streams: make(map[uint64]*stream)}
}

// OnStateChange registers fn to be called when the aggregate flips between
// Active (at least one stream active) and AtRest (none active).
// Returns the aggregator for method chaining.
func (a *Aggregator) OnStateChange(fn func(observable.State)) *Aggregator {
	a.mu.Lock()
	a.onState = fn
	a.mu.Unlock()
	return a
}

// Write subscribes to obs and writes every value it emits into prop,
// synchronously on the emitting goroutine. The returned Disconnect stops this
// stream only; Stop stops all of them.
func Write[T any](a *Aggregator, obs observable.Observable[T], prop Property[T]) observable.Disconnect {
	a.mu.Lock()
	a.nextID++
	id := a.nextID
	a.streams[id] = &stream{}
	a.mu.Unlock()

	d := obs.Subscribe(observable.ObserverFuncs[T]{
		Next: prop.Write,
		State: func(s observable.State) {
			a.setActive(id, s == observable.Active)
		},
	})
	if d == nil {
		d = observable.NoopDisconnect
	}

	a.mu.Lock()
	st, ok := a.streams[id]
	if ok {
		st.disconnect = d
	}
	a.mu.Unlock()

	// Stopped while subscribing.
	if !ok {
		d()
		return observable.NoopDisconnect
	}

	return func() { a.remove(id) }
}

// Active reports whether any written stream is active.
func (a *Aggregator) Active() bool {
	return a.ActiveCount() > 0
}

// ActiveCount returns the number of written streams whose last state was Active.
func (a *Aggregator) ActiveCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.active
}

// Len returns the number of streams still written by the aggregator.
func (a *Aggregator) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.streams)
}

// Stop disconnects every stream. Safe to call multiple times.
func (a *Aggregator) Stop() {
	a.mu.Lock()
	var ds []observable.Disconnect
	for id, st := range a.streams {
		if st.disconnect != nil {
			ds = append(ds, st.disconnect)
		}
		delete(a.streams, id)
	}
	wasActive := a.active > 0
	a.active = 0
	fn := a.onState
	a.mu.Unlock()

	for _, d := range ds {
		d()
	}
	if wasActive && fn != nil {
		fn(observable.AtRest)
	}
}

func (a *Aggregator) remove(id uint64) {
	a.mu.Lock()
	st, ok := a.streams[id]
	if !ok {
		a.mu.Unlock()
		return
	}
	delete(a.streams, id)
	flipped := false
	if st.active {
		a.active--
		flipped = a.active == 0
	}
	fn := a.onState
	a.mu.Unlock()

	if st.disconnect != nil {
		st.disconnect()
	}
	if flipped && fn != nil {
		fn(observable.AtRest)
	}
}

func (a *Aggregator) setActive(id uint64, active bool) {
	a.mu.Lock()
	st, ok := a.streams[id]
	if !ok || st.active == active {
		a.mu.Unlock()
		return
	}
	st.active = active

	var flip *observable.State
	if active {
		a.active++
		if a.active == 1 {
			s := observable.Active
			flip = &s
		}
	} else {
		a.active--
		if a.active == 0 {
			s := observable.AtRest
			flip = &s
		}
	}
	fn := a.onState
	a.mu.Unlock()

	if flip != nil && fn != nil {
		fn(*flip)
	}
}
