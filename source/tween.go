package source

import (
	"sync"
	"sync/atomic"

	"github.com/neox5/motion/clock"
	"github.com/neox5/motion/observable"
)

// TweenChannel is the channel event key emitted by Tween.
const TweenChannel = "tween"

// TweenInfo is the payload of the channel event a tween emits when it starts.
type TweenInfo struct {
	From   float64
	To     float64
	Frames int
}

// Easing maps linear progress in [0, 1] to eased progress.
type Easing func(t float64) float64

// Linear is the identity easing.
func Linear(t float64) float64 { return t }

// EaseInOutQuad accelerates through the first half and decelerates through the second.
func EaseInOutQuad(t float64) float64 {
	if t < 0.5 {
		return 2 * t * t
	}
	return 1 - 2*(1-t)*(1-t)
}

// TweenOption configures a Tween.
type TweenOption func(*tween)

// WithEasing sets the easing curve. The default is Linear.
func WithEasing(e Easing) TweenOption {
	return func(t *tween) { t.ease = e }
}

type tween struct {
	clk    clock.Publisher[clock.Frame]
	from   float64
	to     float64
	frames int
	ease   Easing
}

// Tween returns a stream that animates from one value to another over a fixed
// number of clock frames.
//
// On subscribe it emits Active and a TweenChannel event synchronously, then one
// value per frame from its own goroutine, ending exactly at to, then AtRest.
// If the clock stops first, AtRest is emitted without reaching to.
// Disconnecting stops the driver. A value the driver goroutine is already
// delivering may still arrive; a Disconnect made from inside a callback takes
// effect before the next emission.
//
// Panics if frames is not positive.
func Tween(clk clock.Publisher[clock.Frame], from, to float64, frames int, opts ...TweenOption) observable.Observable[float64] {
	if frames <= 0 {
		panic("tween needs at least one frame")
	}
	t := &tween{clk: clk, from: from, to: to, frames: frames, ease: Linear}
	for _, opt := range opts {
		opt(t)
	}
	return observable.New(t.subscribe)
}

func (t *tween) at(frame int) float64 {
	if frame >= t.frames {
		return t.to
	}
	p := t.ease(float64(frame) / float64(t.frames))
	return t.from + (t.to-t.from)*p
}

func (t *tween) subscribe(o observable.Observer[float64]) observable.Disconnect {
	stop := make(chan struct{})
	var stopped atomic.Bool
	var once sync.Once

	o.OnState(observable.Active)
	o.OnChannelEvent(observable.ChannelEvent{
		Key:     TweenChannel,
		Payload: TweenInfo{From: t.from, To: t.to, Frames: t.frames},
	})

	frames := t.clk.Subscribe()
	go func() {
		for i := 1; i <= t.frames; i++ {
			select {
			case _, ok := <-frames:
				if !ok {
					if !stopped.Load() {
						o.OnState(observable.AtRest)
					}
					return
				}
			case <-stop:
				return
			}
			if stopped.Load() {
				return
			}
			o.OnNext(t.at(i))
		}
		if !stopped.Load() {
			o.OnState(observable.AtRest)
		}
	}()

	return func() {
		once.Do(func() {
			stopped.Store(true)
			close(stop)
		})
	}
}
