// Package dispatch runs commands on a single authoritative goroutine.
package dispatch

import (
	"context"
	"errors"
	"sync"

	"economy_server/internal/logger"
)

var ErrStopped = errors.New("dispatch loop stopped")

// Loop executes submitted functions one at a time in submission order.
// A function running on the loop must not call Do, and should not Submit
// more than the queue can hold.
type Loop struct {
	mu     sync.Mutex
	closed bool
	queue  chan func()
	done   chan struct{}
}

func NewLoop(size int) *Loop {
	if size <= 0 {
		size = 1024
	}
	return &Loop{
		queue: make(chan func(), size),
		done:  make(chan struct{}),
	}
}

// Run processes the queue until Stop is called and the queue is drained.
func (l *Loop) Run() {
	defer close(l.done)
	for fn := range l.queue {
		l.exec(fn)
	}
}

func (l *Loop) exec(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("dispatch: command panicked", "panic", r)
		}
	}()
	fn()
}

// Submit enqueues fn. It returns false once the loop is stopping.
func (l *Loop) Submit(fn func()) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return false
	}
	l.queue <- fn
	return true
}

// Do runs fn on the loop and waits for its result.
func (l *Loop) Do(ctx context.Context, fn func() error) error {
	result := make(chan error, 1)
	if !l.Submit(func() { result <- fn() }) {
		return ErrStopped
	}
	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop refuses new work, lets queued commands finish and waits for Run to return.
func (l *Loop) Stop(ctx context.Context) error {
	l.mu.Lock()
	if !l.closed {
		l.closed = true
		close(l.queue)
	}
	l.mu.Unlock()

	select {
	case <-l.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Inline runs submitted functions immediately on the caller's goroutine.
type Inline struct{}

func (Inline) Submit(fn func()) bool {
	fn()
	return true
}
