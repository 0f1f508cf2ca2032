package source_test

import (
	"math"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/neox5/motion/clock"
	"github.com/neox5/motion/observable"
	"github.com/neox5/motion/record"
	"github.com/neox5/motion/seed"
	"github.com/neox5/motion/source"
)

// untilAtRest records events and closes done on the first AtRest.
type untilAtRest struct {
	*record.Recorder[float64]
	done chan struct{}
}

func newUntilAtRest() *untilAtRest {
	return &untilAtRest{Recorder: record.New[float64](), done: make(chan struct{})}
}

func (u *untilAtRest) OnState(s observable.State) {
	u.Recorder.OnState(s)
	if s == observable.AtRest {
		close(u.done)
	}
}

func (u *untilAtRest) wait(t *testing.T) {
	t.Helper()
	select {
	case <-u.done:
	case <-time.After(5 * time.Second):
		t.Fatal("stream never came to rest")
	}
}

func TestConst(t *testing.T) {
	r := record.New[string]()
	d := source.Const("x").Subscribe(r)
	d()
	if got := r.Values(); !reflect.DeepEqual(got, []string{"x"}) {
		t.Fatalf("Values() = %v, want [x]", got)
	}
}

func TestTween_Linear(t *testing.T) {
	clk := clock.NewManualClock(16 * time.Millisecond)
	obs := source.Tween(clk, 0, 1, 4)

	u := newUntilAtRest()
	d := obs.Subscribe(u)
	defer d()

	clk.Advance(4)
	u.wait(t)

	if got := u.Values(); !reflect.DeepEqual(got, []float64{0.25, 0.5, 0.75, 1}) {
		t.Fatalf("Values() = %v", got)
	}
	events := u.Events()
	if events[0].Kind != observable.StateEvent || events[0].State != observable.Active {
		t.Fatalf("first event = %v, want state(active)", events[0])
	}
	if events[1].Kind != observable.ChannelEventKind || events[1].Channel.Key != source.TweenChannel {
		t.Fatalf("second event = %v, want channel(tween)", events[1])
	}
	info, ok := events[1].Channel.Payload.(source.TweenInfo)
	if !ok || info != (source.TweenInfo{From: 0, To: 1, Frames: 4}) {
		t.Fatalf("channel payload = %#v", events[1].Channel.Payload)
	}
}

func TestTween_EasingEndsAtTarget(t *testing.T) {
	clk := clock.NewManualClock(time.Millisecond)
	obs := source.Tween(clk, 10, 20, 5, source.WithEasing(source.EaseInOutQuad))

	u := newUntilAtRest()
	d := obs.Subscribe(u)
	defer d()

	clk.Advance(5)
	u.wait(t)

	values := u.Values()
	if len(values) != 5 || values[4] != 20 {
		t.Fatalf("Values() = %v, want 5 values ending at 20", values)
	}
	for i := 1; i < len(values); i++ {
		if values[i] < values[i-1] {
			t.Fatalf("values not monotonic: %v", values)
		}
	}
	if math.Abs(values[0]-10.8) > 1e-9 {
		t.Fatalf("first eased value = %v, want 10.8", values[0])
	}
}

func TestTween_ClockStopComesToRest(t *testing.T) {
	clk := clock.NewManualClock(time.Millisecond)
	u := newUntilAtRest()
	d := source.Tween(clk, 0, 100, 10).Subscribe(u)
	defer d()

	clk.Advance(2)
	clk.Stop()
	u.wait(t)

	if got := u.Values(); !reflect.DeepEqual(got, []float64{10, 20}) {
		t.Fatalf("Values() = %v, want [10 20]", got)
	}
}

func TestTween_DisconnectStopsDriver(t *testing.T) {
	clk := clock.NewManualClock(time.Millisecond)
	r := record.New[float64]()
	d := source.Tween(clk, 0, 1, 10).Subscribe(r)

	clk.Advance(1)
	d()
	d()
	clk.Stop()
	time.Sleep(10 * time.Millisecond)

	for _, e := range r.Events() {
		if e.Kind == observable.StateEvent && e.State == observable.AtRest {
			t.Fatal("AtRest emitted after disconnect")
		}
	}
	if n := len(r.Values()); n > 1 {
		t.Fatalf("got %d values, want at most 1", n)
	}
}

func TestTween_DisconnectFromCallback(t *testing.T) {
	clk := clock.NewManualClock(time.Millisecond)
	defer clk.Stop()

	r := record.New[float64]()
	var d observable.Disconnect
	var ready sync.WaitGroup
	ready.Add(1)
	d = source.Tween(clk, 0, 1, 4).Subscribe(observable.ObserverFuncs[float64]{
		Next: func(v float64) {
			r.OnNext(v)
			ready.Wait()
			d()
		},
		State: r.OnState,
	})
	ready.Done()

	clk.Advance(1)
	time.Sleep(10 * time.Millisecond)

	if got := r.Values(); !reflect.DeepEqual(got, []float64{0.25}) {
		t.Fatalf("Values() = %v, want [0.25]", got)
	}
	for _, e := range r.Events() {
		if e.Kind == observable.StateEvent && e.State == observable.AtRest {
			t.Fatal("AtRest emitted after disconnect")
		}
	}
}

func TestTween_MulticastSharesOneDriver(t *testing.T) {
	clk := clock.NewManualClock(time.Millisecond)
	shared := observable.Multicast(source.Tween(clk, 0, 3, 3))

	a := newUntilAtRest()
	da := shared.Subscribe(a)
	defer da()
	b := newUntilAtRest()
	db := shared.Subscribe(b)
	defer db()

	clk.Advance(3)
	a.wait(t)
	b.wait(t)

	// Both observers see every frame even though the clock channel is
	// consumed by a single driver.
	want := []float64{1, 2, 3}
	if got := a.Values(); !reflect.DeepEqual(got, want) {
		t.Errorf("a values = %v, want %v", got, want)
	}
	if got := b.Values(); !reflect.DeepEqual(got, want) {
		t.Errorf("b values = %v, want %v", got, want)
	}

	// A late joiner is replayed the final value followed by AtRest.
	late := record.New[float64]()
	dl := shared.Subscribe(late)
	defer dl()
	events := late.Events()
	if len(events) != 3 ||
		events[0].Kind != observable.NextEvent || events[0].Value != 3 ||
		events[1].Kind != observable.ChannelEventKind ||
		events[2].Kind != observable.StateEvent || events[2].State != observable.AtRest {
		t.Fatalf("late replay = %v", events)
	}
}

func TestJitter_StaysInRange(t *testing.T) {
	clk := clock.NewManualClock(time.Millisecond)
	rng := seed.NewRegistry(99).NewRand()

	u := newUntilAtRest()
	d := source.Jitter(clk, rng, -1, 1).Subscribe(u)
	defer d()

	clk.Advance(50)
	clk.Stop()
	u.wait(t)

	values := u.Values()
	if len(values) != 50 {
		t.Fatalf("got %d values, want 50", len(values))
	}
	for _, v := range values {
		if v < -1 || v >= 1 {
			t.Fatalf("value %v out of range [-1, 1)", v)
		}
	}
}
