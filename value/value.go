package value

import (
	"sync"
	"sync/atomic"
)

// ValueStats contains observable metrics for a Value.
type ValueStats[T any] struct {
	WriteCount   uint64
	CurrentValue T
}

// Value is a thread-safe backing store for an animated property.
// It satisfies property.Property[T], so streams can be written into it.
type Value[T any] struct {
	mu         sync.RWMutex
	current    T
	writeCount atomic.Uint64

	// Observability
	updateHook atomic.Value // stores hookBox[T]
}

// hookBox lets atomic.Value hold a nil hook.
type hookBox[T any] struct {
	hook UpdateHook[T]
}

// New creates a Value holding initial.
func New[T any](initial T) *Value[T] {
	return &Value[T]{current: initial}
}

// SetUpdateHook sets the update hook for this value.
// Pass nil to disable hook.
// Returns the value for method chaining.
func (v *Value[T]) SetUpdateHook(hook UpdateHook[T]) *Value[T] {
	v.updateHook.Store(hookBox[T]{hook: hook})
	return v
}

// Read returns the current value.
func (v *Value[T]) Read() T {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.current
}

// Write replaces the current value and notifies the update hook.
// Hooks run with the write lock held and must not call back into v.
func (v *Value[T]) Write(next T) {
	v.mu.Lock()
	defer v.mu.Unlock()

	hook := v.getUpdateHook()
	if hook != nil {
		current := v.current
		safeHookCall(func() { hook.BeforeWrite(next, current) })
	}

	v.current = next
	v.writeCount.Add(1)

	if hook != nil {
		safeHookCall(func() { hook.AfterWrite(next) })
	}
}

// Stats returns current value metrics without side effects.
func (v *Value[T]) Stats() ValueStats[T] {
	v.mu.RLock()
	defer v.mu.RUnlock()

	return ValueStats[T]{
		WriteCount:   v.writeCount.Load(),
		CurrentValue: v.current,
	}
}

func (v *Value[T]) getUpdateHook() UpdateHook[T] {
	if b, ok := v.updateHook.Load().(hookBox[T]); ok {
		return b.hook
	}
	return nil
}

// safeHookCall executes hook synchronously with panic recovery.
func safeHookCall(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			// Hook panicked, silently ignore
		}
	}()
	fn()
}
