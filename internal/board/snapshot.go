package board

import "slices"

// Snapshot is the world state produced by one detection cycle. It is handed to
// strategies by pointer and must never be modified after creation.
type Snapshot struct {
	Head   Position
	Body   []Position
	Target Position
}

// EmptySnapshot is what a strategy sees before the first detection cycle
func EmptySnapshot() *Snapshot {
	return &Snapshot{Head: Unknown, Target: Unknown}
}

// HasBody reports whether p is covered by a body part
func (s *Snapshot) HasBody(p Position) bool {
	return slices.Contains(s.Body, p)
}
