package knot

import (
	"fmt"
	"io"
	"strings"
)

// KnotAdder is a sink that accepts or rejects knots.
type KnotAdder interface {

	// Tries to add the given knot.
	// If true is returned, k was not already present and was added.
	TryAddKnot(k *Knot) bool
}

// KnotStream passes knots from a producer goroutine to a consumer.
type KnotStream struct {
	Outlet chan *Knot
}

func NewKnotStream() *KnotStream {
	stream := &KnotStream{
		Outlet: make(chan *Knot, 1),
	}
	return stream
}

// StreamKnots returns a stream that emits the given knots in order and then closes.
func StreamKnots(knots []*Knot) *KnotStream {
	next := NewKnotStream()

	go func() {
		for _, k := range knots {
			next.Outlet <- k
		}
		next.Close()
	}()

	return next
}

func (stream *KnotStream) Close() {
	if stream.Outlet != nil {
		close(stream.Outlet)
	}
}

// PullAll drains the stream and returns the number of knots it emitted.
func (stream *KnotStream) PullAll() int {
	count := int(0)
	for range stream.Outlet {
		count++
	}
	return count
}

// Collect drains the stream and returns every knot it emitted.
func (stream *KnotStream) Collect() []*Knot {
	var knots []*Knot
	for k := range stream.Outlet {
		knots = append(knots, k)
	}
	return knots
}

func (stream *KnotStream) Print(
	out io.WriteCloser,
	opts PrintOpts) *KnotStream {

	next := NewKnotStream()

	go func() {
		buf := strings.Builder{}
		buf.Grow(128)

		count := 0
		for k := range stream.Outlet {
			count++
			fmt.Fprintf(&buf, "%06d,", count)
			k.WriteAsString(&buf, opts)
			buf.WriteByte('\n')
			out.Write([]byte(buf.String()))
			buf.Reset()
			next.Outlet <- k
		}
		out.Close()
		next.Close()
	}()

	return next
}

// AddTo forwards only the knots that target accepts.
func (stream *KnotStream) AddTo(target KnotAdder) *KnotStream {
	next := NewKnotStream()

	go func() {
		for k := range stream.Outlet {
			if target.TryAddKnot(k) {
				next.Outlet <- k
			}
		}
		next.Close()
	}()

	return next
}

// Select forwards the knots selected by sel, honoring sel.Limit.
//
// Once the limit is reached the remainder of the input is drained so the producer is never blocked.
func (stream *KnotStream) Select(sel Selector) *KnotStream {
	next := NewKnotStream()

	go func() {
		hits := 0
		for k := range stream.Outlet {
			if sel.Limit > 0 && hits >= sel.Limit {
				continue
			}
			if sel.Selects(k) {
				hits++
				next.Outlet <- k
			}
		}
		next.Close()
	}()

	return next
}
