package board

import (
	"errors"
	"fmt"
)

// ErrNotAdjacent is returned when two positions are not exactly one lateral step apart
var ErrNotAdjacent = errors.New("positions are not adjacent")

// Direction is one of the four moves the snake can make
type Direction int

const (
	None Direction = iota
	Up
	Down
	Left
	Right
)

// Directions lists the four valid moves
var Directions = [4]Direction{Up, Down, Left, Right}

// Token returns the wire token for the direction. The second result is false
// for anything that is not one of the four moves.
func (d Direction) Token() (string, bool) {
	switch d {
	case Up:
		return "up", true
	case Down:
		return "down", true
	case Left:
		return "left", true
	case Right:
		return "right", true
	default:
		return "", false
	}
}

func (d Direction) String() string {
	if token, ok := d.Token(); ok {
		return token
	}
	return "none"
}

// Delta converts the direction into a unit step. Up decrements Y.
func (d Direction) Delta() Position {
	switch d {
	case Up:
		return Position{X: 0, Y: -1}
	case Down:
		return Position{X: 0, Y: 1}
	case Left:
		return Position{X: -1, Y: 0}
	case Right:
		return Position{X: 1, Y: 0}
	default:
		return Position{}
	}
}

// ParseDirection maps a wire token back to a Direction. Unrecognized tokens map to None.
func ParseDirection(token string) Direction {
	switch token {
	case "up":
		return Up
	case "down":
		return Down
	case "left":
		return Left
	case "right":
		return Right
	default:
		return None
	}
}

// DirectionBetween returns the move that takes the snake from one cell to the next
func DirectionBetween(from, to Position) (Direction, error) {
	dx := to.X - from.X
	dy := to.Y - from.Y

	switch {
	case dx == 0 && dy == -1:
		return Up, nil
	case dx == 0 && dy == 1:
		return Down, nil
	case dx == -1 && dy == 0:
		return Left, nil
	case dx == 1 && dy == 0:
		return Right, nil
	}
	return None, fmt.Errorf("%v -> %v: %w", from, to, ErrNotAdjacent)
}
