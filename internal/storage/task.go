package storage

import "context"

// Task is the handle of a deferred write. It resolves exactly once.
type Task struct {
	done chan struct{}
	err  error
}

func newTask() *Task {
	return &Task{done: make(chan struct{})}
}

func (t *Task) resolve(err error) {
	t.err = err
	close(t.done)
}

// Done is closed when the task resolves.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Err returns the write result. It is only meaningful after Done is closed.
func (t *Task) Err() error {
	select {
	case <-t.done:
		return t.err
	default:
		return nil
	}
}

// Wait blocks until the task resolves or ctx ends. Giving up on the wait
// does not stop the write.
func (t *Task) Wait(ctx context.Context) error {
	select {
	case <-t.done:
		return t.err
	case <-ctx.Done():
		return ctx.Err()
	}
}
