package observable

// State describes whether a stream is currently producing motion.
type State int

const (
	// Active means the stream is producing values.
	Active State = iota
	// AtRest means no more values are forthcoming until the stream becomes active again.
	AtRest
)

func (s State) String() string {
	switch s {
	case Active:
		return "active"
	case AtRest:
		return "at_rest"
	default:
		return "unknown"
	}
}

// ChannelEvent carries out-of-band metadata alongside the value stream.
// The payload is opaque to this package.
type ChannelEvent struct {
	Key     string
	Payload any
}

// Observer receives the notifications of an Observable.
type Observer[T any] interface {
	OnNext(value T)
	OnState(state State)
	OnChannelEvent(event ChannelEvent)
}

// Disconnect releases a subscription. Implementations must be idempotent.
type Disconnect func()

// NoopDisconnect is returned by observables that hold no resources.
func NoopDisconnect() {}

// Observable is a source of values that observers subscribe to.
type Observable[T any] interface {
	Subscribe(observer Observer[T]) Disconnect
}

// Func adapts a subscribe function to the Observable interface.
type Func[T any] func(observer Observer[T]) Disconnect

// Subscribe calls f(observer).
func (f Func[T]) Subscribe(observer Observer[T]) Disconnect {
	return f(observer)
}

// New returns an Observable that runs subscribe for every subscriber.
func New[T any](subscribe func(observer Observer[T]) Disconnect) Observable[T] {
	return Func[T](subscribe)
}

// ObserverFuncs implements Observer with optional callbacks.
// Nil callbacks are ignored.
type ObserverFuncs[T any] struct {
	Next    func(T)
	State   func(State)
	Channel func(ChannelEvent)
}

func (o ObserverFuncs[T]) OnNext(value T) {
	if o.Next != nil {
		o.Next(value)
	}
}

func (o ObserverFuncs[T]) OnState(state State) {
	if o.State != nil {
		o.State(state)
	}
}

func (o ObserverFuncs[T]) OnChannelEvent(event ChannelEvent) {
	if o.Channel != nil {
		o.Channel(event)
	}
}

// SubscribeNext subscribes fn to the values of obs, ignoring state and channel events.
func SubscribeNext[T any](obs Observable[T], fn func(T)) Disconnect {
	return obs.Subscribe(ObserverFuncs[T]{Next: fn})
}
