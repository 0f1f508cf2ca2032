package observable

import "fmt"

// EventKind identifies which observer callback an Event maps to.
type EventKind int

const (
	NextEvent EventKind = iota
	StateEvent
	ChannelEventKind
)

func (k EventKind) String() string {
	switch k {
	case NextEvent:
		return "next"
	case StateEvent:
		return "state"
	case ChannelEventKind:
		return "channel"
	default:
		return "unknown"
	}
}

// Event is a materialized notification. Only the field matching Kind is meaningful.
type Event[T any] struct {
	Kind    EventKind
	Value   T
	State   State
	Channel ChannelEvent
}

// NextOf returns a NextEvent carrying v.
func NextOf[T any](v T) Event[T] {
	return Event[T]{Kind: NextEvent, Value: v}
}

// StateOf returns a StateEvent carrying s.
func StateOf[T any](s State) Event[T] {
	return Event[T]{Kind: StateEvent, State: s}
}

// ChannelOf returns a ChannelEventKind event carrying e.
func ChannelOf[T any](e ChannelEvent) Event[T] {
	return Event[T]{Kind: ChannelEventKind, Channel: e}
}

// Deliver invokes the observer callback matching e.Kind.
func (e Event[T]) Deliver(observer Observer[T]) {
	switch e.Kind {
	case NextEvent:
		observer.OnNext(e.Value)
	case StateEvent:
		observer.OnState(e.State)
	case ChannelEventKind:
		observer.OnChannelEvent(e.Channel)
	}
}

func (e Event[T]) String() string {
	switch e.Kind {
	case NextEvent:
		return fmt.Sprintf("next(%v)", e.Value)
	case StateEvent:
		return fmt.Sprintf("state(%s)", e.State)
	case ChannelEventKind:
		return fmt.Sprintf("channel(%s)", e.Channel.Key)
	default:
		return "unknown"
	}
}
