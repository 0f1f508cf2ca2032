// Package property writes motion streams into readable, writable properties.
package property

// Property is a readable and writable slot that a stream can drive.
type Property[T any] interface {
	Read() T
	Write(value T)
}

// Scoped is a Property backed by read and write closures, typically over a
// variable or a field the caller owns.
type Scoped[T any] struct {
	read  func() T
	write func(T)
}

// NewScoped returns a Property that delegates to read and write.
func NewScoped[T any](read func() T, write func(T)) *Scoped[T] {
	return &Scoped[T]{read: read, write: write}
}

func (p *Scoped[T]) Read() T {
	return p.read()
}

func (p *Scoped[T]) Write(value T) {
	p.write(value)
}
