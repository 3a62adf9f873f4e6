package board

import "fmt"

// Position is a cell on the board, 0-indexed from the top left corner
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Unknown is the sentinel position. For an action it means "execute immediately",
// for detection it means the element has not been seen yet.
var Unknown = Position{X: -1, Y: -1}

// IsUnknown reports whether p is the sentinel position
func (p Position) IsUnknown() bool {
	return p == Unknown
}

// Add returns the position one step away in direction d
func (p Position) Add(d Direction) Position {
	delta := d.Delta()
	return Position{X: p.X + delta.X, Y: p.Y + delta.Y}
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Manhattan returns |dx| + |dy| between two positions
func Manhattan(a, b Position) int {
	return abs(a.X-b.X) + abs(a.Y-b.Y)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
