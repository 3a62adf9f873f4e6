package action

import (
	"context"
	"fmt"
	"sync"

	"github.com/leonitousconforti/basilisk/internal/board"
)

// Backend receives the direction of every dispatched action
type Backend interface {
	Press(ctx context.Context, dir board.Direction) error
}

// Queue holds the pending actions of the selected strategy. It is written by
// one strategy goroutine at a time and consumed by the driver loop.
type Queue struct {
	mu    sync.Mutex
	items []*Action
	// epoch is bumped by Wipe so writers handed out before it go stale
	epoch uint64
}

// NewQueue creates an empty action queue
func NewQueue() *Queue {
	return &Queue{}
}

// Enqueue appends an action to the tail
func (q *Queue) Enqueue(a *Action) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, a)
}

// Peek returns the first pending action, or nil when the queue is empty
func (q *Queue) Peek() *Action {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return nil
	}
	return q.items[0]
}

// Dispatch sends the action's direction to the backend, then removes the action
// or rotates it to the tail when it is cyclic. If the queue changed underneath
// (wiped or replaced) the action is no longer the head and only the key press happens.
func (q *Queue) Dispatch(ctx context.Context, a *Action, backend Backend) error {
	if a == nil {
		return nil
	}

	if err := backend.Press(ctx, a.Dir); err != nil {
		return fmt.Errorf("dispatch %v: %w", a, err)
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 || q.items[0] != a {
		return nil
	}
	if a.DeleteOnExecution {
		q.items[0] = nil
		q.items = q.items[1:]
	} else {
		q.rotateLocked()
	}
	return nil
}

// SkipTo drops every action queued before the first one executing at head and
// returns it, now at the front. It returns nil and leaves the queue alone when
// no action executes at head.
func (q *Queue) SkipTo(head board.Position) *Action {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, a := range q.items {
		if !a.At.IsUnknown() && a.At == head {
			clear(q.items[:i])
			q.items = q.items[i:]
			return a
		}
	}
	return nil
}

func (q *Queue) rotateLocked() {
	if len(q.items) < 2 {
		return
	}
	head := q.items[0]
	copy(q.items, q.items[1:])
	q.items[len(q.items)-1] = head
}

// Wipe drops every pending action and invalidates all outstanding writers
func (q *Queue) Wipe() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = nil
	q.epoch++
}

// Replace swaps the whole queue for a new list in one step
func (q *Queue) Replace(actions []*Action) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append([]*Action(nil), actions...)
}

// Len returns the number of pending actions
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Actions returns a copy of the pending actions in order
func (q *Queue) Actions() []Action {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]Action, len(q.items))
	for i, a := range q.items {
		out[i] = *a
	}
	return out
}

// Writer returns a handle bound to the current epoch. Once the queue is wiped
// every write through the handle is discarded.
func (q *Queue) Writer() *Writer {
	q.mu.Lock()
	defer q.mu.Unlock()
	return &Writer{queue: q, epoch: q.epoch}
}

// Writer is the only way strategies touch a queue
type Writer struct {
	queue *Queue
	epoch uint64
}

// Enqueue appends an action unless the writer is stale
func (w *Writer) Enqueue(a *Action) bool {
	w.queue.mu.Lock()
	defer w.queue.mu.Unlock()
	if w.queue.epoch != w.epoch {
		return false
	}
	w.queue.items = append(w.queue.items, a)
	return true
}

// Replace swaps the queue contents unless the writer is stale
func (w *Writer) Replace(actions []*Action) bool {
	w.queue.mu.Lock()
	defer w.queue.mu.Unlock()
	if w.queue.epoch != w.epoch {
		return false
	}
	w.queue.items = append([]*Action(nil), actions...)
	return true
}
