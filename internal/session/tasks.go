package session

import (
	"context"
	"sync"
)

// task handles owned by one visitor. Every call runs under a context that is
// cancelled when either its caller or the owner goes away.
type Tasks struct {
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

func NewTasks() *Tasks {
	ctx, cancel := context.WithCancel(context.Background())
	return &Tasks{ctx: ctx, cancel: cancel}
}

// runs fn and waits for it
func (t *Tasks) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	if !t.add() {
		return ErrDisposed
	}
	defer t.wg.Done()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	stop := context.AfterFunc(t.ctx, cancel)
	defer stop()

	return fn(ctx)
}

// starts fn in the background under the owner's lifetime; onErr, if set,
// receives a non-nil result. Returns false once closed.
func (t *Tasks) Go(fn func(ctx context.Context) error, onErr func(error)) bool {
	if !t.add() {
		return false
	}

	go func() {
		defer t.wg.Done()

		if err := fn(t.ctx); err != nil && onErr != nil {
			onErr(err)
		}
	}()

	return true
}

// cancels all tasks and waits for them to return
func (t *Tasks) Close() {
	t.mu.Lock()
	t.closed = true
	t.mu.Unlock()

	t.cancel()
	t.wg.Wait()
}

func (t *Tasks) add() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return false
	}

	t.wg.Add(1)
	return true
}
