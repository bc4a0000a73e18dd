// Package loop runs closures one at a time on a single goroutine.
//
// Everything that mutates state owned by a Loop is funnelled through Submit or
// Do, so the owner never needs a lock: callbacks from other goroutines (I/O
// completions, timers) are queued and executed in arrival order.
package loop

import (
	"context"
	"errors"
	"sync"
)

// ErrClosed is returned once the loop has stopped running.
var ErrClosed = errors.New("loop: closed")

// Loop is a FIFO task queue drained by Run.
type Loop struct {
	tasks chan func()
	done  chan struct{}
	once  sync.Once
}

// New returns a loop whose queue holds up to size pending tasks before
// Submit starts blocking.
func New(size int) *Loop {
	if size < 1 {
		size = 1
	}
	return &Loop{
		tasks: make(chan func(), size),
		done:  make(chan struct{}),
	}
}

// Run executes queued tasks until ctx is cancelled. It must be called at most
// once; tasks still queued when it returns are dropped.
func (l *Loop) Run(ctx context.Context) error {
	defer l.once.Do(func() { close(l.done) })
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-l.tasks:
			fn()
		}
	}
}

// Done is closed when Run returns.
func (l *Loop) Done() <-chan struct{} { return l.done }

// Submit queues fn without waiting for it to run. It reports false if the
// loop has already stopped.
func (l *Loop) Submit(fn func()) bool {
	select {
	case <-l.done:
		return false
	default:
	}
	select {
	case <-l.done:
		return false
	case l.tasks <- fn:
		return true
	}
}

// Do queues fn and waits until it has run. Calling Do from a task running on
// the same loop deadlocks.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	ran := make(chan struct{})
	if !l.Submit(func() {
		defer close(ran)
		fn()
	}) {
		return ErrClosed
	}
	select {
	case <-ran:
		return nil
	case <-l.done:
		// Run may have picked the task up just before exiting.
		select {
		case <-ran:
			return nil
		default:
			return ErrClosed
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}
