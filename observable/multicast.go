package observable

import (
	"sync"
	"sync/atomic"
)

// Shared is a hot observable produced by Multicast.
//
// The upstream is subscribed when the first observer joins and released when the
// last one leaves. Observers joining late are replayed the last state, value and
// channel event seen from upstream, so every observer reaches the same view.
type Shared[T any] struct {
	upstream Observable[T]

	mu sync.Mutex
	// subscribers is replaced, never mutated in place, so fan-out can iterate
	// the slice it loaded without holding mu.
	subscribers []*registration[T]
	// connected is set from the moment the upstream subscribe starts until the
	// upstream disconnect is taken.
	connected  bool
	disconnect Disconnect
	// connecting is closed once an in-flight upstream subscribe has either
	// registered its observer or failed. Nil when no connect is in flight.
	connecting chan struct{}

	lastValue   T
	hasValue    bool
	lastState   State
	hasState    bool
	lastChannel ChannelEvent
	hasChannel  bool
}

type registration[T any] struct {
	observer Observer[T]
	removed  atomic.Bool

	mu sync.Mutex
	// replaying holds live events back in pending until the cached replay has
	// been delivered.
	replaying bool
	pending   []Event[T]
}

// Multicast returns a stream that shares one subscription to upstream among all
// of its observers. Nothing happens until the first Subscribe.
func Multicast[T any](upstream Observable[T]) *Shared[T] {
	return &Shared[T]{upstream: upstream}
}

// Subscribe registers observer and replays cached notifications to it before
// returning. The returned Disconnect removes this registration only.
//
// Live events that arrive from other goroutines while the replay is running
// are delivered after it, in the order they were emitted.
func (s *Shared[T]) Subscribe(observer Observer[T]) Disconnect {
	reg := &registration[T]{observer: observer, replaying: true}

	s.mu.Lock()
	for s.connecting != nil {
		wait := s.connecting
		s.mu.Unlock()
		<-wait
		s.mu.Lock()
	}

	// The observer is registered only after the upstream subscribe returns:
	// anything upstream emits synchronously while subscribing lands in the
	// cache and reaches the observer through the replay below, exactly once.
	if !s.connected {
		s.connected = true
		done := make(chan struct{})
		s.connecting = done
		s.mu.Unlock()

		d := s.connect(done)

		s.mu.Lock()
		s.disconnect = d
		s.connecting = nil
		close(done)
	}

	next := make([]*registration[T], len(s.subscribers), len(s.subscribers)+1)
	copy(next, s.subscribers)
	s.subscribers = append(next, reg)

	lastValue, hasValue := s.lastValue, s.hasValue
	lastState, hasState := s.lastState, s.hasState
	lastChannel, hasChannel := s.lastChannel, s.hasChannel
	s.mu.Unlock()

	// Active goes before the value and AtRest after it: AtRest promises that no
	// further values follow.
	if hasState && lastState == Active {
		observer.OnState(Active)
	}
	if hasValue {
		observer.OnNext(lastValue)
	}
	if hasChannel {
		observer.OnChannelEvent(lastChannel)
	}
	if hasState && lastState == AtRest {
		observer.OnState(AtRest)
	}
	reg.flush()

	return func() { s.remove(reg) }
}

// Subscribers returns the number of registered observers.
func (s *Shared[T]) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subscribers)
}

// Connected reports whether an upstream subscription is held.
func (s *Shared[T]) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

// connect subscribes upstream. If the upstream panics, the adapter is returned
// to the disconnected state and subscribers waiting on done are woken before
// the panic continues to the caller.
func (s *Shared[T]) connect(done chan struct{}) Disconnect {
	ok := false
	defer func() {
		if !ok {
			s.mu.Lock()
			s.connected = false
			s.disconnect = nil
			s.connecting = nil
			close(done)
			s.mu.Unlock()
		}
	}()

	d := s.upstream.Subscribe(forwarder[T]{s})
	ok = true
	if d == nil {
		d = NoopDisconnect
	}
	return d
}

func (s *Shared[T]) remove(reg *registration[T]) {
	s.mu.Lock()
	idx := -1
	for i, r := range s.subscribers {
		if r == reg {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return
	}
	reg.removed.Store(true)

	next := make([]*registration[T], 0, len(s.subscribers)-1)
	next = append(next, s.subscribers[:idx]...)
	next = append(next, s.subscribers[idx+1:]...)
	s.subscribers = next

	var release Disconnect
	if len(next) == 0 && s.disconnect != nil {
		release = s.disconnect
		s.disconnect = nil
		s.connected = false
	}
	s.mu.Unlock()

	if release != nil {
		release()
	}
}

// publish updates the cache with update and hands e to every registration.
func (s *Shared[T]) publish(e Event[T], update func()) {
	s.mu.Lock()
	update()
	subs := s.subscribers
	s.mu.Unlock()

	for _, r := range subs {
		r.deliver(e)
	}
}

func (r *registration[T]) deliver(e Event[T]) {
	if r.removed.Load() {
		return
	}
	r.mu.Lock()
	if r.replaying {
		r.pending = append(r.pending, e)
		r.mu.Unlock()
		return
	}
	r.mu.Unlock()
	e.Deliver(r.observer)
}

// flush delivers events held back during replay, then lets live events
// through directly.
func (r *registration[T]) flush() {
	for {
		r.mu.Lock()
		pending := r.pending
		r.pending = nil
		if len(pending) == 0 {
			r.replaying = false
			r.mu.Unlock()
			return
		}
		r.mu.Unlock()

		for _, e := range pending {
			if !r.removed.Load() {
				e.Deliver(r.observer)
			}
		}
	}
}

// forwarder is the single observer handed to upstream.
type forwarder[T any] struct {
	s *Shared[T]
}

func (f forwarder[T]) OnNext(value T) {
	s := f.s
	s.publish(NextOf(value), func() {
		s.lastValue, s.hasValue = value, true
	})
}

func (f forwarder[T]) OnState(state State) {
	s := f.s
	s.publish(StateOf[T](state), func() {
		s.lastState, s.hasState = state, true
	})
}

func (f forwarder[T]) OnChannelEvent(event ChannelEvent) {
	s := f.s
	s.publish(ChannelOf[T](event), func() {
		s.lastChannel, s.hasChannel = event, true
	})
}
