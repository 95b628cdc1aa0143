package herald

import (
	"context"

	"github.com/xraph/herald/id"
)

// Task is a running continuation. It completes independently of the request
// that started it; callers may wait on it or drop it.
type Task struct {
	// ID identifies the continuation in logs and spans.
	ID id.ID `json:"id"`

	// EventID is the dispatch the continuation belongs to.
	EventID id.ID `json:"event_id"`

	done chan struct{}
	err  error
}

func newTask(eventID id.ID) *Task {
	return &Task{
		ID:      id.NewTaskID(),
		EventID: eventID,
		done:    make(chan struct{}),
	}
}

func (t *Task) finish(err error) {
	t.err = err
	close(t.done)
}

// Done returns a channel closed when the continuation has finished.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Err returns the continuation's error. It is nil until Done is closed.
func (t *Task) Err() error {
	select {
	case <-t.done:
		return t.err
	default:
		return nil
	}
}

// Wait blocks until the continuation finishes or ctx is done. A nil Task
// returns immediately.
func (t *Task) Wait(ctx context.Context) error {
	if t == nil {
		return nil
	}
	select {
	case <-t.done:
		return t.err
	case <-ctx.Done():
		return ctx.Err()
	}
}
