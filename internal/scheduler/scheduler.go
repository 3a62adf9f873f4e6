package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/leonitousconforti/basilisk/internal/action"
	"github.com/leonitousconforti/basilisk/internal/board"
	"github.com/leonitousconforti/basilisk/internal/strategy"
)

// doneCtx is handed to forced runs so every wait inside CalcPath returns
// right away
var doneCtx = func() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	return ctx
}()

type entry struct {
	strategy strategy.Strategy
	selected bool
	runOnce  bool
	preview  *action.Queue
}

// Scheduler runs every strategy on its own goroutine and makes sure at most
// one of them, the selected one, writes to the shared action queue
type Scheduler struct {
	queue *action.Queue

	mu      sync.Mutex
	cond    *sync.Cond
	entries []*entry
	byName  map[string]*entry
	paused  bool
	stopped bool
	started bool
	last    *board.Snapshot

	wg sync.WaitGroup
}

// New creates a scheduler for the given strategies. Nothing is selected and no
// goroutine runs until Start.
func New(queue *action.Queue, strategies ...strategy.Strategy) *Scheduler {
	s := &Scheduler{
		queue:   queue,
		entries: make([]*entry, 0, len(strategies)),
		byName:  make(map[string]*entry, len(strategies)),
		last:    board.EmptySnapshot(),
	}
	s.cond = sync.NewCond(&s.mu)

	for _, st := range strategies {
		if _, dup := s.byName[st.Name()]; dup {
			log.Printf("[Scheduler] Ignoring duplicate strategy %q", st.Name())
			continue
		}
		e := &entry{strategy: st, preview: action.NewQueue()}
		s.entries = append(s.entries, e)
		s.byName[st.Name()] = e
	}
	return s
}

// Start launches one goroutine per strategy. They stop once ctx is done.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.mu.Unlock()

	log.Printf("[Scheduler] Starting %d strategies", len(s.entries))

	context.AfterFunc(ctx, s.stop)

	for _, e := range s.entries {
		s.wg.Add(1)
		go s.loop(ctx, e)
	}
}

// Wait blocks until every strategy goroutine has returned
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

func (s *Scheduler) stop() {
	s.mu.Lock()
	s.stopped = true
	s.cond.Broadcast()
	s.mu.Unlock()

	for _, e := range s.entries {
		e.strategy.Wake()
	}
}

func (s *Scheduler) loop(ctx context.Context, e *entry) {
	defer s.wg.Done()
	name := e.strategy.Name()

	for {
		s.mu.Lock()
		for !s.stopped && (s.paused || (!e.selected && !e.runOnce)) {
			s.cond.Wait()
		}
		if s.stopped {
			s.mu.Unlock()
			log.Printf("[Scheduler] %s stopped", name)
			return
		}

		once := e.runOnce && !e.selected
		if once {
			e.preview.Wipe()
			sink := e.preview.Writer()
			s.mu.Unlock()

			// A forced run plans from scratch and must not block on the
			// next snapshot
			e.strategy.Init(sink)
			e.strategy.CalcPath(doneCtx, sink)
		} else {
			sink := s.queue.Writer()
			s.mu.Unlock()

			e.strategy.CalcPath(ctx, sink)
		}

		if d := e.strategy.Delay(); d > 0 {
			t := time.NewTimer(d)
			select {
			case <-t.C:
			case <-ctx.Done():
				t.Stop()
			}
		}

		s.mu.Lock()
		e.runOnce = false
		s.mu.Unlock()
	}
}

// Select makes the named strategy the only selected one. The shared queue is
// wiped first so nothing planned by the previous strategy survives, then the
// strategy's Init runs against the fresh queue.
func (s *Scheduler) Select(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.byName[name]
	if !ok {
		return fmt.Errorf("select %q: %w", name, strategy.ErrUnknownStrategy)
	}

	s.queue.Wipe()
	for _, other := range s.entries {
		other.selected = other == e
	}
	e.strategy.Update(s.last)
	e.strategy.Init(s.queue.Writer())
	s.cond.Broadcast()

	// Release strategies blocked inside CalcPath so they notice the deselect
	for _, other := range s.entries {
		if other != e {
			other.strategy.Wake()
		}
	}

	log.Printf("[Scheduler] Selected %s", name)
	return nil
}

// Run hands the latest world state to the selected strategy
func (s *Scheduler) Run(snap *board.Snapshot) {
	s.mu.Lock()
	s.last = snap
	var selected strategy.Strategy
	for _, e := range s.entries {
		if e.selected {
			selected = e.strategy
			break
		}
	}
	s.mu.Unlock()

	if selected != nil {
		selected.Update(snap)
	}
}

// RunOnce feeds the named strategy and, unless it is the selected one, makes
// it plan exactly once into its own preview queue. The shared queue and the
// selection are left alone.
func (s *Scheduler) RunOnce(name string, snap *board.Snapshot) error {
	s.mu.Lock()
	e, ok := s.byName[name]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("run once %q: %w", name, strategy.ErrUnknownStrategy)
	}
	// The snapshot has to be in place before the goroutine wakes up
	e.strategy.Update(snap)
	if !e.selected {
		e.runOnce = true
		s.cond.Broadcast()
	}
	s.mu.Unlock()
	return nil
}

// Preview returns what the named strategy planned during its last RunOnce
func (s *Scheduler) Preview(name string) ([]action.Action, error) {
	s.mu.Lock()
	e, ok := s.byName[name]
	s.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("preview %q: %w", name, strategy.ErrUnknownStrategy)
	}
	return e.preview.Actions(), nil
}

// RunningOnce reports whether a RunOnce for the named strategy is still pending
func (s *Scheduler) RunningOnce(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.byName[name]
	return ok && e.runOnce
}

// SetPaused stops or resumes every strategy before its next iteration
func (s *Scheduler) SetPaused(paused bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.paused == paused {
		return
	}
	s.paused = paused
	s.cond.Broadcast()
	log.Printf("[Scheduler] Paused: %v", paused)
}

// Paused reports whether the scheduler is paused
func (s *Scheduler) Paused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

// Selected returns the selected strategy, or nil when none is
func (s *Scheduler) Selected() strategy.Strategy {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entries {
		if e.selected {
			return e.strategy
		}
	}
	return nil
}

// SelectedCount returns how many strategies are selected, which is never more than one
func (s *Scheduler) SelectedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, e := range s.entries {
		if e.selected {
			n++
		}
	}
	return n
}

// Names lists the scheduled strategies in the order they were given
func (s *Scheduler) Names() []string {
	names := make([]string, len(s.entries))
	for i, e := range s.entries {
		names[i] = e.strategy.Name()
	}
	return names
}

// Last returns the latest snapshot handed to Run, or nil before the first one
func (s *Scheduler) Last() *board.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Queue returns the shared action queue
func (s *Scheduler) Queue() *action.Queue {
	return s.queue
}
