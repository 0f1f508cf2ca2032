// Package trace writes the events of a motion stream as JSON lines.
package trace

import (
	"fmt"
	"io"
	"sync"

	"github.com/launchdarkly/go-jsonstream/v3/jwriter"

	"github.com/neox5/motion/observable"
)

// Encoder writes one value as JSON.
type Encoder[T any] func(w *jwriter.Writer, v T)

// Float64 encodes a float64 value.
func Float64(w *jwriter.Writer, v float64) { w.Float64(v) }

// Int encodes an int value.
func Int(w *jwriter.Writer, v int) { w.Int(v) }

// String encodes a string value.
func String(w *jwriter.Writer, v string) { w.String(v) }

// Tracer is an Observer that writes one JSON object per event to out:
//
//	{"stream":"x","seq":1,"kind":"state","state":"active"}
//	{"stream":"x","seq":2,"kind":"channel","key":"tween","payload":"{0 1 4}"}
//	{"stream":"x","seq":3,"kind":"next","value":0.25}
//
// Channel payloads are opaque and written with fmt's %v.
type Tracer[T any] struct {
	stream string
	encode Encoder[T]

	mu  sync.Mutex
	out io.Writer
	seq int
	err error
}

// New returns a Tracer labelling its lines with stream.
func New[T any](out io.Writer, stream string, encode Encoder[T]) *Tracer[T] {
	return &Tracer[T]{out: out, stream: stream, encode: encode}
}

func (t *Tracer[T]) OnNext(value T) {
	t.write(observable.NextEvent, func(obj *jwriter.ObjectState) {
		t.encode(obj.Name("value"), value)
	})
}

func (t *Tracer[T]) OnState(state observable.State) {
	t.write(observable.StateEvent, func(obj *jwriter.ObjectState) {
		obj.Name("state").String(state.String())
	})
}

func (t *Tracer[T]) OnChannelEvent(event observable.ChannelEvent) {
	t.write(observable.ChannelEventKind, func(obj *jwriter.ObjectState) {
		obj.Name("key").String(event.Key)
		if event.Payload != nil {
			obj.Name("payload").String(fmt.Sprintf("%v", event.Payload))
		}
	})
}

// Err returns the first error encountered while writing, if any.
// Once an error occurs further events are dropped.
func (t *Tracer[T]) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

// Lines returns the number of lines written.
func (t *Tracer[T]) Lines() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.seq
}

func (t *Tracer[T]) write(kind observable.EventKind, fields func(obj *jwriter.ObjectState)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.err != nil {
		return
	}

	t.seq++
	w := jwriter.NewWriter()
	obj := w.Object()
	obj.Name("stream").String(t.stream)
	obj.Name("seq").Int(t.seq)
	obj.Name("kind").String(kind.String())
	fields(&obj)
	obj.End()

	if err := w.Error(); err != nil {
		t.err = err
		return
	}
	line := append(w.Bytes(), '\n')
	if _, err := t.out.Write(line); err != nil {
		t.err = err
	}
}
