package observable_test

import (
	"testing"

	"github.com/neox5/motion/observable"
	"github.com/neox5/motion/record"
)

func TestStateString(t *testing.T) {
	tests := []struct {
		state observable.State
		want  string
	}{
		{observable.Active, "active"},
		{observable.AtRest, "at_rest"},
		{observable.State(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", int(tt.state), got, tt.want)
		}
	}
}

func TestObserverFuncs_NilCallbacksAreIgnored(t *testing.T) {
	var o observable.ObserverFuncs[string]
	o.OnNext("x")
	o.OnState(observable.Active)
	o.OnChannelEvent(observable.ChannelEvent{Key: "k"})
}

func TestFunc_RunsPerSubscriber(t *testing.T) {
	calls := 0
	cold := observable.New(func(o observable.Observer[int]) observable.Disconnect {
		calls++
		o.OnNext(calls)
		return observable.NoopDisconnect
	})

	var got []int
	observable.SubscribeNext(cold, func(v int) { got = append(got, v) })
	observable.SubscribeNext(cold, func(v int) { got = append(got, v) })

	if calls != 2 {
		t.Fatalf("subscribe function ran %d times, want 2", calls)
	}
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("values = %v, want [1 2]", got)
	}
}

func TestEventDeliver(t *testing.T) {
	ev := observable.ChannelEvent{Key: "tween", Payload: 12}
	events := []observable.Event[float64]{
		observable.StateOf[float64](observable.Active),
		observable.NextOf(0.5),
		observable.ChannelOf[float64](ev),
		observable.StateOf[float64](observable.AtRest),
	}

	r := record.New[float64]()
	for _, e := range events {
		e.Deliver(r)
	}
	assertEvents(t, r, events...)

	if got := events[1].String(); got != "next(0.5)" {
		t.Errorf("String() = %q, want next(0.5)", got)
	}
	if got := events[2].String(); got != "channel(tween)" {
		t.Errorf("String() = %q, want channel(tween)", got)
	}
}
