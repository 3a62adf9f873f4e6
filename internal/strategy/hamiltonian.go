package strategy

import (
	"context"
	"log"

	"github.com/leonitousconforti/basilisk/internal/action"
	"github.com/leonitousconforti/basilisk/internal/board"
)

// HamiltonianName is the registry name of the Hamiltonian cycle strategy
const HamiltonianName = "Hamiltonian Path"

const cycleIndex = "cycle-index"

// Hamiltonian loops the snake around a fixed cycle through the board. It
// never plans anything after Init; the queue replays the cycle forever.
type Hamiltonian struct {
	*Base
	grid  *board.Grid
	cycle []board.Position
}

// NewHamiltonian builds the cycle for the given board
func NewHamiltonian(geometry board.Geometry) *Hamiltonian {
	h := &Hamiltonian{
		Base:  newBase(HamiltonianName, 0),
		grid:  board.NewGrid(geometry),
		cycle: Cycle(geometry),
	}
	for i, p := range h.cycle {
		h.grid.Tile(p).SetAttribute(cycleIndex, i)
	}
	return h
}

// Cycle returns the closed cycle the strategy follows
func (h *Hamiltonian) Cycle() []board.Position {
	return h.cycle
}

// Init loads the whole cycle as cyclic actions. When the head is already on
// the cycle the actions start there so the snake can join in right away.
func (h *Hamiltonian) Init(w Sink) {
	actions, err := CycleActions(h.cycle, h.startIndex())
	if err != nil {
		log.Printf("[Hamiltonian] Failed to build cycle actions: %v", err)
		return
	}
	w.Replace(actions)
}

func (h *Hamiltonian) startIndex() int {
	head := h.Snapshot().Head
	if !h.grid.Geometry().Contains(head) {
		return 0
	}
	if v, ok := h.grid.Tile(head).Attribute(cycleIndex); ok {
		return v.(int)
	}
	return 0
}

// CalcPath has nothing to plan, it only waits for the snake to move
func (h *Hamiltonian) CalcPath(ctx context.Context, _ Sink) {
	Wait(ctx, h.HeadChanged())
}

// Cycle returns a closed path visiting every cell of the largest sub-board
// with an even side exactly once. Consecutive positions (including last to
// first) are adjacent. Boards with both sides odd have no closed cycle over
// every cell, so their last column is left out.
func Cycle(geometry board.Geometry) []board.Position {
	cols, rows := geometry.Cols, geometry.Rows
	if cols < 2 || rows < 2 {
		return nil
	}

	switch {
	case cols%2 == 0:
		return serpentine(cols, rows, false)
	case rows%2 == 0:
		return serpentine(rows, cols, true)
	case cols > 2:
		return serpentine(cols-1, rows, false)
	default:
		return nil
	}
}

// serpentine walks columns 0..lanes-1 up and down over rows 1..depth-1, then
// returns home along row 0. lanes must be even. With transpose set, lanes are
// rows and depth runs along the columns.
func serpentine(lanes, depth int, transpose bool) []board.Position {
	at := func(lane, d int) board.Position {
		if transpose {
			return board.Position{X: d, Y: lane}
		}
		return board.Position{X: lane, Y: d}
	}

	cycle := make([]board.Position, 0, lanes*depth)
	for lane := 0; lane < lanes; lane++ {
		if lane%2 == 0 {
			for d := 1; d < depth; d++ {
				cycle = append(cycle, at(lane, d))
			}
		} else {
			for d := depth - 1; d >= 1; d-- {
				cycle = append(cycle, at(lane, d))
			}
		}
	}
	for lane := lanes - 1; lane >= 0; lane-- {
		cycle = append(cycle, at(lane, 0))
	}
	return cycle
}

// CycleActions turns a closed cycle into cyclic actions, starting at start
func CycleActions(cycle []board.Position, start int) ([]*action.Action, error) {
	n := len(cycle)
	actions := make([]*action.Action, 0, n)
	for k := 0; k < n; k++ {
		i := (start + k) % n
		from, to := cycle[i], cycle[(i+1)%n]
		dir, err := board.DirectionBetween(from, to)
		if err != nil {
			return nil, err
		}
		actions = append(actions, action.Cyclic(dir, from))
	}
	return actions, nil
}
