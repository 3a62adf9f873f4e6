package detect

import (
	"fmt"
	"image/color"

	"github.com/leonitousconforti/basilisk/internal/board"
	"github.com/lucasb-eyer/go-colorful"
)

// HueTolerance is how far a cell's hue may be from a snake detector's hue, on the 0-255 hue scale
const HueTolerance = 2

// Detector is a named color profile used to find one kind of game element
type Detector struct {
	Name  string
	Color color.RGBA
	Hue   float64
}

// NewDetector creates a detector and derives its hue from the color
func NewDetector(name string, c color.RGBA) Detector {
	return Detector{Name: name, Color: opaque(c), Hue: Hue(c)}
}

// ParseDetector creates a detector from a "#rrggbb" color string
func ParseDetector(name, hex string) (Detector, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return Detector{}, fmt.Errorf("detector %q: %w", name, err)
	}
	r, g, b := c.RGB255()
	return NewDetector(name, color.RGBA{R: r, G: g, B: b, A: 0xff}), nil
}

// DetectorFromFrame samples the color of one cell of a shrunk frame. This is how
// detectors are calibrated against whatever color scheme the game is using.
func DetectorFromFrame(name string, frame *Frame, p board.Position) Detector {
	return NewDetector(name, frame.At(p))
}

// Hue returns the HSV hue of c scaled to 0..255
func Hue(c color.RGBA) float64 {
	cf := colorful.Color{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
	}
	h, _, _ := cf.Hsv()
	return h / 360 * 255
}

// SameRGB compares two colors ignoring alpha
func SameRGB(a, b color.RGBA) bool {
	return a.R == b.R && a.G == b.G && a.B == b.B
}

func opaque(c color.RGBA) color.RGBA {
	c.A = 0xff
	return c
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
