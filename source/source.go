// Package source provides cold motion streams: each subscription runs its own
// driver. Wrap a source in observable.Multicast to share one driver among
// many subscribers.
package source

import "github.com/neox5/motion/observable"

// Const returns a stream that emits v synchronously on every subscribe.
func Const[T any](v T) observable.Observable[T] {
	return observable.New(func(o observable.Observer[T]) observable.Disconnect {
		o.OnNext(v)
		return observable.NoopDisconnect
	})
}
