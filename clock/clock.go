package clock

import "time"

// Frame is one tick of an animation clock.
type Frame struct {
	// Index counts frames from 0 since Start.
	Index uint64
	// Elapsed is the time since Start.
	Elapsed time.Duration
}

// Publisher provides a subscription interface for typed values.
type Publisher[T any] interface {
	Subscribe() <-chan T
}

// Clock provides frame signals for animation drivers.
type Clock interface {
	Publisher[Frame]
	Start()
	Stop()
}
