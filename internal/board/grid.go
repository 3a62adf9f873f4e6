package board

import "fmt"

// Geometry describes the fixed dimensions of the board
type Geometry struct {
	Cols int
	Rows int
}

// Default is the 17x15 board of the game being played
var Default = Geometry{Cols: 17, Rows: 15}

// Contains reports whether p lies on the board
func (g Geometry) Contains(p Position) bool {
	return p.X >= 0 && p.X < g.Cols && p.Y >= 0 && p.Y < g.Rows
}

// Cells returns the number of cells on the board
func (g Geometry) Cells() int {
	return g.Cols * g.Rows
}

// Index maps a position to its arena index. Positions off the board are a
// programming error upstream and panic rather than being clamped.
func (g Geometry) Index(p Position) int {
	if !g.Contains(p) {
		panic(fmt.Sprintf("board: position %v outside %dx%d board", p, g.Cols, g.Rows))
	}
	return p.Y*g.Cols + p.X
}

// Position maps an arena index back to a position
func (g Geometry) Position(index int) Position {
	return Position{X: index % g.Cols, Y: index / g.Cols}
}

// NoTile marks an empty predecessor link
const NoTile = -1

// Tile is the per-cell search state. Tiles live in a Grid arena and refer to
// each other by index only.
type Tile struct {
	Pos       Position
	G         float64
	H         float64
	F         float64
	Prev      int
	Wall      bool
	Neighbors []int

	attributes map[string]any
}

// SetAttribute stores strategy-private scratch data on the tile
func (t *Tile) SetAttribute(name string, value any) {
	if t.attributes == nil {
		t.attributes = make(map[string]any)
	}
	t.attributes[name] = value
}

// Attribute returns a value previously stored with SetAttribute
func (t *Tile) Attribute(name string) (any, bool) {
	v, ok := t.attributes[name]
	return v, ok
}

// Reset clears everything a search writes to the tile
func (t *Tile) Reset() {
	t.G = 0
	t.H = 0
	t.F = 0
	t.Prev = NoTile
	t.Wall = false
	clear(t.attributes)
}

// Grid is an arena of tiles with 4-directional adjacency computed once
type Grid struct {
	geometry Geometry
	tiles    []Tile
}

// NewGrid builds every tile and its neighbor list
func NewGrid(geometry Geometry) *Grid {
	g := &Grid{
		geometry: geometry,
		tiles:    make([]Tile, geometry.Cells()),
	}

	for i := range g.tiles {
		pos := geometry.Position(i)
		g.tiles[i] = Tile{Pos: pos, Prev: NoTile}
	}

	// Left, up, right, down. No diagonals.
	for i := range g.tiles {
		pos := g.tiles[i].Pos
		neighbors := make([]int, 0, 4)
		if pos.X > 0 {
			neighbors = append(neighbors, geometry.Index(Position{X: pos.X - 1, Y: pos.Y}))
		}
		if pos.Y > 0 {
			neighbors = append(neighbors, geometry.Index(Position{X: pos.X, Y: pos.Y - 1}))
		}
		if pos.X < geometry.Cols-1 {
			neighbors = append(neighbors, geometry.Index(Position{X: pos.X + 1, Y: pos.Y}))
		}
		if pos.Y < geometry.Rows-1 {
			neighbors = append(neighbors, geometry.Index(Position{X: pos.X, Y: pos.Y + 1}))
		}
		g.tiles[i].Neighbors = neighbors
	}

	return g
}

// Geometry returns the board dimensions of the grid
func (g *Grid) Geometry() Geometry {
	return g.geometry
}

// Len returns the number of tiles
func (g *Grid) Len() int {
	return len(g.tiles)
}

// Tile returns the tile at p, panicking when p is off the board
func (g *Grid) Tile(p Position) *Tile {
	return &g.tiles[g.geometry.Index(p)]
}

// At returns the tile with the given arena index
func (g *Grid) At(index int) *Tile {
	return &g.tiles[index]
}

// Reset clears the search state of every tile
func (g *Grid) Reset() {
	for i := range g.tiles {
		g.tiles[i].Reset()
	}
}

// MarkWalls flags every tile covered by the snake's body
func (g *Grid) MarkWalls(body []Position) {
	for _, p := range body {
		g.Tile(p).Wall = true
	}
}
