package value

// UpdateHook observes writes to a Value.
// Hook panics are recovered and do not affect the write.
type UpdateHook[T any] interface {
	// BeforeWrite is called with the incoming and the current value.
	BeforeWrite(next, current T)
	// AfterWrite is called once next has been stored.
	AfterWrite(current T)
}

// HookFuncs implements UpdateHook with optional callbacks.
type HookFuncs[T any] struct {
	Before func(next, current T)
	After  func(current T)
}

func (h HookFuncs[T]) BeforeWrite(next, current T) {
	if h.Before != nil {
		h.Before(next, current)
	}
}

func (h HookFuncs[T]) AfterWrite(current T) {
	if h.After != nil {
		h.After(current)
	}
}
