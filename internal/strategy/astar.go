package strategy

import (
	"context"
	"fmt"
	"log"
	"slices"
	"sync"

	"github.com/leonitousconforti/basilisk/internal/action"
	"github.com/leonitousconforti/basilisk/internal/board"
)

// AStarName is the registry name of the A* strategy
const AStarName = "A* Search"

// AStar plans the shortest path from the head to the target, treating every
// body part as a wall. It only searches again when the head or target moves.
type AStar struct {
	*Base
	grid *board.Grid

	mu         sync.Mutex
	lastHead   board.Position
	lastTarget board.Position
}

// NewAStar creates an A* strategy for the given board
func NewAStar(geometry board.Geometry) *AStar {
	return &AStar{
		Base:       newBase(AStarName, 0),
		grid:       board.NewGrid(geometry),
		lastHead:   board.Unknown,
		lastTarget: board.Unknown,
	}
}

func (a *AStar) SupportsPathSkipping() bool {
	return true
}

// Init forgets the last search so the first iteration after selection plans
// from scratch
func (a *AStar) Init(Sink) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lastHead = board.Unknown
	a.lastTarget = board.Unknown
}

func (a *AStar) CalcPath(ctx context.Context, w Sink) {
	updated := a.Updated()
	snap := a.Snapshot()

	if snap.Head.IsUnknown() || snap.Target.IsUnknown() || !a.remember(snap) {
		// Nothing new to plan for
		Wait(ctx, updated)
		return
	}

	path := a.FindPath(snap.Head, snap.Target, snap.Body)
	if path == nil {
		// An unreachable target leaves nothing to dispatch
		log.Printf("[A*] No path from %v to %v", snap.Head, snap.Target)
		w.Replace(nil)
		return
	}

	actions, err := PathActions(path)
	if err != nil {
		log.Printf("[A*] Discarding path from %v to %v: %v", snap.Head, snap.Target, err)
		return
	}
	w.Replace(actions)
}

// remember records the head and target being planned for and reports whether
// either of them changed since the last search
func (a *AStar) remember(snap *board.Snapshot) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if snap.Head == a.lastHead && snap.Target == a.lastTarget {
		return false
	}
	a.lastHead = snap.Head
	a.lastTarget = snap.Target
	return true
}

// FindPath returns the positions from start to goal inclusive, or nil when the
// goal cannot be reached. Ties on f are broken by whichever tile entered the
// open list first.
func (a *AStar) FindPath(start, goal board.Position, body []board.Position) []board.Position {
	grid := a.grid
	grid.Reset()
	grid.MarkWalls(body)

	startIdx := grid.Geometry().Index(start)
	goalIdx := grid.Geometry().Index(goal)

	closed := make([]bool, grid.Len())
	seen := make([]bool, grid.Len())

	first := grid.At(startIdx)
	first.H = float64(board.Manhattan(start, goal))
	first.F = first.H
	open := []int{startIdx}
	seen[startIdx] = true

	for len(open) > 0 {
		best := 0
		for i := 1; i < len(open); i++ {
			if grid.At(open[i]).F < grid.At(open[best]).F {
				best = i
			}
		}
		current := open[best]
		if current == goalIdx {
			return reconstruct(grid, goalIdx)
		}
		open = slices.Delete(open, best, best+1)
		closed[current] = true

		from := grid.At(current)
		for _, n := range from.Neighbors {
			to := grid.At(n)
			if closed[n] || to.Wall {
				continue
			}

			g := from.G + float64(board.Manhattan(from.Pos, to.Pos))
			if seen[n] && g >= to.G {
				continue
			}
			if !seen[n] {
				seen[n] = true
				open = append(open, n)
			}
			to.G = g
			to.H = float64(board.Manhattan(to.Pos, goal))
			to.F = to.G + to.H
			to.Prev = current
		}
	}

	return nil
}

func reconstruct(grid *board.Grid, goal int) []board.Position {
	var path []board.Position
	for i := goal; i != board.NoTile; i = grid.At(i).Prev {
		path = append(path, grid.At(i).Pos)
	}
	slices.Reverse(path)
	return path
}

// PathActions turns consecutive path positions into one-shot actions, each
// executing at the tile being left
func PathActions(path []board.Position) ([]*action.Action, error) {
	if len(path) < 2 {
		return nil, nil
	}
	actions := make([]*action.Action, 0, len(path)-1)
	for i := 0; i < len(path)-1; i++ {
		dir, err := board.DirectionBetween(path[i], path[i+1])
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
		actions = append(actions, action.New(dir, path[i]))
	}
	return actions, nil
}
