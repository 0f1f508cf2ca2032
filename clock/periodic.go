package clock

import (
	"sync"
	"time"
)

// PeriodicClock generates frames at fixed intervals.
// Every call to Subscribe returns the same channel, so concurrent readers split
// the frames between them.
type PeriodicClock struct {
	interval  time.Duration
	ticker    *time.Ticker
	frameChan chan Frame
	stop      chan struct{}
	done      chan struct{}
	stopOnce  sync.Once
}

// NewPeriodicClock creates a new clock that ticks at the specified interval.
func NewPeriodicClock(interval time.Duration) *PeriodicClock {
	if interval <= 0 {
		panic("clock interval must be positive")
	}
	return &PeriodicClock{
		interval:  interval,
		frameChan: make(chan Frame),
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Start begins generating frames.
func (c *PeriodicClock) Start() {
	c.ticker = time.NewTicker(c.interval)
	go c.run(time.Now())
}

func (c *PeriodicClock) run(start time.Time) {
	defer close(c.done)

	var index uint64
	for {
		select {
		case now := <-c.ticker.C:
			frame := Frame{Index: index, Elapsed: now.Sub(start)}
			select {
			case c.frameChan <- frame:
				index++
			case <-c.stop:
				return
			}
		case <-c.stop:
			return
		}
	}
}

// Stop stops the clock and closes the frame channel.
// Safe to call multiple times, and before Start.
func (c *PeriodicClock) Stop() {
	c.stopOnce.Do(func() {
		close(c.stop)
		if c.ticker != nil {
			c.ticker.Stop()
			<-c.done
		}
		close(c.frameChan)
	})
}

// Subscribe returns the channel that receives frames.
func (c *PeriodicClock) Subscribe() <-chan Frame {
	return c.frameChan
}
