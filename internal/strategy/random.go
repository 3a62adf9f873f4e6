package strategy

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/leonitousconforti/basilisk/internal/action"
	"github.com/leonitousconforti/basilisk/internal/board"
)

// RandomName is the registry name of the random movement strategy
const RandomName = "Random Movement"

// Random picks a uniformly random direction each time the head moves,
// refusing moves that leave the board or run into the body
type Random struct {
	*Base
	geometry board.Geometry

	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandom creates a random strategy. The same seed gives the same moves.
func NewRandom(geometry board.Geometry, seed int64) *Random {
	return &Random{
		Base:     newBase(RandomName, 0),
		geometry: geometry,
		rng:      rand.New(rand.NewSource(seed)),
	}
}

func (r *Random) Init(Sink) {}

func (r *Random) CalcPath(ctx context.Context, w Sink) {
	moved := r.HeadChanged()
	updated := r.Updated()
	snap := r.Snapshot()

	dir := r.pick()
	if !r.Allowed(snap, dir) {
		Wait(ctx, updated)
		return
	}

	w.Enqueue(action.Immediate(dir))
	Wait(ctx, moved)
}

func (r *Random) pick() board.Direction {
	r.mu.Lock()
	defer r.mu.Unlock()
	return board.Directions[r.rng.Intn(len(board.Directions))]
}

// Allowed reports whether moving the head in dir keeps the snake on the board
// and off its own body. Nothing is allowed while the head is unknown.
func (r *Random) Allowed(snap *board.Snapshot, dir board.Direction) bool {
	if snap.Head.IsUnknown() {
		return false
	}
	next := snap.Head.Add(dir)
	return r.geometry.Contains(next) && !snap.HasBody(next)
}

// DefaultSeed seeds random strategies created without an explicit seed
func DefaultSeed() int64 {
	return time.Now().UnixNano()
}
