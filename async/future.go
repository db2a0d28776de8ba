// Package async offers futures for the wallet operations which touch the
// storage backend. A Future is set once from a channel and read many times.
package async

import (
	"sync"

	"github.com/lainio/err2/try"
)

type State uint32

const (
	empty State = iota
	triggered
	Consumed
)

// Result is what an operation delivers to its channel.
type Result struct {
	V   any
	Err error
}

type Channel chan Result

type Future struct {
	On  State
	V   any
	err error
	ch  Channel
	lo  sync.Mutex
}

// Go runs fn in its own goroutine and returns the Future of its result.
func Go(fn func() (any, error)) *Future {
	ch := make(Channel, 1)
	go func() {
		v, err := fn()
		ch <- Result{V: v, Err: err}
	}()
	return NewFuture(ch)
}

// value blocks until the result is ready. It throws an err2 exception if the
// operation failed.
func (f *Future) value() any {
	v, err := f.Result()
	try.To(err)
	return v
}

// Result blocks until the result is ready and returns it. It can be called
// many times.
func (f *Future) Result() (any, error) {
	f.lo.Lock()
	defer f.lo.Unlock()
	if f.On == triggered {
		r := <-f.ch
		f.On = Consumed
		f.V, f.err = r.V, r.Err
	}
	return f.V, f.err
}

func (f *Future) IsEmpty() bool {
	f.lo.Lock()
	defer f.lo.Unlock()
	return f.On == empty
}

// NewFuture changes the existing Channel to a Future.
func NewFuture(ch Channel) *Future {
	f := &Future{}
	f.SetChan(ch)
	return f
}

// SetChan sets the existing Channel to this Future. A pending previous result
// is read off first.
func (f *Future) SetChan(ch Channel) {
	f.lo.Lock()
	defer f.lo.Unlock()
	if f.On == triggered {
		<-f.ch
	}
	f.ch = ch
	f.V, f.err = nil, nil
	f.On = triggered
}

// MARK: type helpers, each throws an err2 exception on failure.

func (f *Future) Int() (i int) {
	switch v := f.value().(type) {
	case int:
		i = v
	case int32:
		i = int(v)
	}
	return
}

func (f *Future) Bytes() (b []byte) {
	b, _ = f.value().([]byte)
	return
}

func (f *Future) Str() (s string) {
	s, _ = f.value().(string)
	return
}
