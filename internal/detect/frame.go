package detect

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/leonitousconforti/basilisk/internal/board"
)

// ErrFrameTooSmall is returned when a cell center falls outside the captured image
var ErrFrameTooSmall = errors.New("frame too small for board layout")

// Layout maps board cells to pixels in a captured game window
type Layout struct {
	Geometry board.Geometry
	// CellSize is the width and height of one board square in pixels
	CellSize int
	// BorderX is the width of the border left of the board
	BorderX int
	// HeaderY is the height of the score header above the board
	HeaderY int
}

// DefaultLayout matches a 600x600 capture of the game window
var DefaultLayout = Layout{
	Geometry: board.Default,
	CellSize: 32,
	BorderX:  28,
	HeaderY:  95,
}

// CellCenter returns the pixel at the center of a board cell
func (l Layout) CellCenter(p board.Position) image.Point {
	return image.Point{
		X: p.X*l.CellSize + l.CellSize/2 + l.BorderX,
		Y: p.Y*l.CellSize + l.CellSize/2 + l.HeaderY,
	}
}

// Shrink reduces a capture to one color per board cell by sampling each cell's center pixel
func (l Layout) Shrink(img image.Image) (*Frame, error) {
	bounds := img.Bounds()
	frame := NewFrame(l.Geometry)

	// Rows outer, that is how image data is laid out in memory
	for y := 0; y < l.Geometry.Rows; y++ {
		for x := 0; x < l.Geometry.Cols; x++ {
			p := board.Position{X: x, Y: y}
			px := l.CellCenter(p).Add(bounds.Min)
			if !px.In(bounds) {
				return nil, fmt.Errorf("cell %v samples pixel %v outside %v: %w", p, px, bounds, ErrFrameTooSmall)
			}
			frame.Set(p, color.RGBAModel.Convert(img.At(px.X, px.Y)).(color.RGBA))
		}
	}

	return frame, nil
}

// Frame is a board-sized grid of colors, one per cell
type Frame struct {
	geometry board.Geometry
	pix      []color.RGBA
}

// NewFrame creates a black frame
func NewFrame(geometry board.Geometry) *Frame {
	return &Frame{
		geometry: geometry,
		pix:      make([]color.RGBA, geometry.Cells()),
	}
}

// Geometry returns the board dimensions of the frame
func (f *Frame) Geometry() board.Geometry {
	return f.geometry
}

// At returns the color of a cell
func (f *Frame) At(p board.Position) color.RGBA {
	return f.pix[f.geometry.Index(p)]
}

// Set changes the color of a cell
func (f *Frame) Set(p board.Position, c color.RGBA) {
	f.pix[f.geometry.Index(p)] = c
}
