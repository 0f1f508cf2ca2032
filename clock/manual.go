package clock

import (
	"sync"
	"time"
)

// ManualClock emits a frame each time Advance is called.
// It is meant for tests that need to step a driver deterministically.
type ManualClock struct {
	step      time.Duration
	frameChan chan Frame

	mu      sync.Mutex
	index   uint64
	stopped bool
}

// NewManualClock returns a clock whose frames are step apart.
func NewManualClock(step time.Duration) *ManualClock {
	return &ManualClock{
		step:      step,
		frameChan: make(chan Frame),
	}
}

// Start is a no-op; frames are produced by Advance.
func (c *ManualClock) Start() {}

// Advance emits n frames, blocking until a subscriber has received each one.
// It returns false if the clock was stopped.
func (c *ManualClock) Advance(n int) bool {
	for range n {
		c.mu.Lock()
		if c.stopped {
			c.mu.Unlock()
			return false
		}
		frame := Frame{Index: c.index, Elapsed: time.Duration(c.index+1) * c.step}
		c.index++
		c.mu.Unlock()

		c.frameChan <- frame
	}
	return true
}

// Stop closes the frame channel. Advance must not be running concurrently.
func (c *ManualClock) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.stopped {
		c.stopped = true
		close(c.frameChan)
	}
}

// Subscribe returns the channel that receives frames.
func (c *ManualClock) Subscribe() <-chan Frame {
	return c.frameChan
}
