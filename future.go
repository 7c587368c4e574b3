package segstore

import (
	"context"
	"fmt"
)

// Future is the handle of an asynchronous store operation.
//
// The operation runs to completion whether or not anyone waits for it;
// a cancelled Wait abandons the wait, not the work.
type Future[T any] struct {
	done chan struct{}
	val  T
	err  error
}

func goFuture[T any](fn func() (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}
	go func() {
		defer close(f.done)
		defer func() {
			if r := recover(); r != nil {
				f.err = fmt.Errorf("segstore: operation panicked: %v", r)
			}
		}()
		f.val, f.err = fn()
	}()
	return f
}

func failedFuture[T any](err error) *Future[T] {
	f := &Future[T]{done: make(chan struct{}), err: err}
	close(f.done)
	return f
}

// Wait blocks until the operation completes or ctx is done.
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Done is closed when the operation has completed.
func (f *Future[T]) Done() <-chan struct{} { return f.done }

// Result returns the outcome without blocking. ok is false while the
// operation is still running.
func (f *Future[T]) Result() (val T, ok bool, err error) {
	select {
	case <-f.done:
		return f.val, true, f.err
	default:
		var zero T
		return zero, false, nil
	}
}
