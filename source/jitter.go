package source

import (
	"math/rand/v2"
	"sync"
	"sync/atomic"

	"github.com/neox5/motion/clock"
	"github.com/neox5/motion/observable"
)

// Jitter returns a stream that emits a uniformly random value in [lo, hi)
// on every clock frame for as long as it is subscribed. It is Active from
// subscribe until the clock stops.
//
// rng is shared by all subscriptions; draws are serialized.
//
// As with Tween, a draw already being delivered may still arrive after
// Disconnect returns.
func Jitter(clk clock.Publisher[clock.Frame], rng *rand.Rand, lo, hi float64) observable.Observable[float64] {
	if hi < lo {
		panic("jitter range is inverted")
	}
	var rngMu sync.Mutex
	draw := func() float64 {
		rngMu.Lock()
		defer rngMu.Unlock()
		return lo + rng.Float64()*(hi-lo)
	}

	return observable.New(func(o observable.Observer[float64]) observable.Disconnect {
		stop := make(chan struct{})
		var stopped atomic.Bool
		var once sync.Once

		o.OnState(observable.Active)

		frames := clk.Subscribe()
		go func() {
			for {
				select {
				case _, ok := <-frames:
					if stopped.Load() {
						return
					}
					if !ok {
						o.OnState(observable.AtRest)
						return
					}
					o.OnNext(draw())
				case <-stop:
					return
				}
			}
		}()

		return func() {
			once.Do(func() {
				stopped.Store(true)
				close(stop)
			})
		}
	})
}
