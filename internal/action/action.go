package action

import (
	"fmt"

	"github.com/leonitousconforti/basilisk/internal/board"
)

// Action is a single move the snake should make once its head reaches At
type Action struct {
	Dir board.Direction
	// At is the execution point. board.Unknown means execute immediately.
	At board.Position
	// DeleteOnExecution drops the action once it has run. Cyclic actions
	// (false) are rotated to the back of the queue instead.
	DeleteOnExecution bool
}

// New creates a one-shot action
func New(dir board.Direction, at board.Position) *Action {
	return &Action{Dir: dir, At: at, DeleteOnExecution: true}
}

// Immediate creates a one-shot action that fires as soon as it is at the head of the queue
func Immediate(dir board.Direction) *Action {
	return New(dir, board.Unknown)
}

// Cyclic creates an action that is replayed forever
func Cyclic(dir board.Direction, at board.Position) *Action {
	return &Action{Dir: dir, At: at}
}

func (a *Action) String() string {
	if a.At.IsUnknown() {
		return fmt.Sprintf("%v@now", a.Dir)
	}
	return fmt.Sprintf("%v@%v", a.Dir, a.At)
}

// IsReady reports whether the action may run with the snake's head at head.
// Immediate actions are always ready.
func IsReady(a *Action, head board.Position) bool {
	if a == nil {
		return false
	}
	if a.At.IsUnknown() {
		return true
	}
	return a.At == head
}
