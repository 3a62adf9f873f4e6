package strategy

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/leonitousconforti/basilisk/internal/action"
	"github.com/leonitousconforti/basilisk/internal/board"
)

// Sink is where a strategy writes the actions it plans. The scheduler hands
// out a fresh sink on every invocation; writes to a sink that went stale are
// dropped and reported as false.
type Sink interface {
	Enqueue(a *action.Action) bool
	Replace(actions []*action.Action) bool
}

// Strategy plans moves for the snake from the latest world state
type Strategy interface {
	Name() string
	// Init runs once each time the strategy becomes the selected one
	Init(w Sink)
	// CalcPath is one planning iteration. It may block waiting for new world
	// state but must return when ctx is done or Wake is called.
	CalcPath(ctx context.Context, w Sink)
	SupportsPathSkipping() bool
	Delay() time.Duration
	Update(s *board.Snapshot)
	// Wake releases any wait in progress inside CalcPath
	Wake()
}

// Base carries the state every strategy shares: its name, the pause between
// iterations, and the latest snapshot along with signals for when it changes.
type Base struct {
	name  string
	delay time.Duration

	snapshot atomic.Pointer[board.Snapshot]

	mu          sync.Mutex
	updated     chan struct{}
	headChanged chan struct{}
}

func newBase(name string, delay time.Duration) *Base {
	b := &Base{
		name:        name,
		delay:       delay,
		updated:     make(chan struct{}),
		headChanged: make(chan struct{}),
	}
	b.snapshot.Store(board.EmptySnapshot())
	return b
}

func (b *Base) Name() string {
	return b.name
}

func (b *Base) Delay() time.Duration {
	return b.delay
}

func (b *Base) SupportsPathSkipping() bool {
	return false
}

// Snapshot returns the latest world state
func (b *Base) Snapshot() *board.Snapshot {
	return b.snapshot.Load()
}

// Update replaces the world state and signals anyone waiting on it
func (b *Base) Update(s *board.Snapshot) {
	if s == nil {
		return
	}
	prev := b.snapshot.Swap(s)

	b.mu.Lock()
	defer b.mu.Unlock()
	close(b.updated)
	b.updated = make(chan struct{})
	if prev.Head != s.Head {
		close(b.headChanged)
		b.headChanged = make(chan struct{})
	}
}

// Wake releases every current waiter as if the head had moved
func (b *Base) Wake() {
	b.mu.Lock()
	defer b.mu.Unlock()
	close(b.updated)
	b.updated = make(chan struct{})
	close(b.headChanged)
	b.headChanged = make(chan struct{})
}

// Updated returns a channel closed by the next Update. Grab it before looking
// at the snapshot so an update in between is not missed.
func (b *Base) Updated() <-chan struct{} {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.updated
}

// HeadChanged returns a channel closed by the next Update that moves the head
func (b *Base) HeadChanged() <-chan struct{} {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.headChanged
}

// Wait blocks until signal is closed or ctx is done
func Wait(ctx context.Context, signal <-chan struct{}) error {
	select {
	case <-signal:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
