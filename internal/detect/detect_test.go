package detect

import (
	"image"
	"image/color"
	"testing"

	"github.com/leonitousconforti/basilisk/internal/board"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	grass = color.RGBA{R: 170, G: 215, B: 81, A: 0xff}
	blue  = color.RGBA{R: 78, G: 124, B: 246, A: 0xff}
	red   = color.RGBA{R: 231, G: 71, B: 29, A: 0xff}
)

func newTestInterpreter(t *testing.T) *Interpreter {
	t.Helper()
	in := NewInterpreter(board.Default)
	in.AddSnakeDetector(NewDetector("blue", blue))
	in.AddTargetDetector(NewDetector("apple", red))
	require.NoError(t, in.SelectSnakeDetector("blue"))
	require.NoError(t, in.SelectTargetDetector("apple"))
	return in
}

func grassFrame() *Frame {
	f := NewFrame(board.Default)
	for y := 0; y < board.Default.Rows; y++ {
		for x := 0; x < board.Default.Cols; x++ {
			f.Set(board.Position{X: x, Y: y}, grass)
		}
	}
	return f
}

func paint(target board.Position, body ...board.Position) *Frame {
	f := grassFrame()
	f.Set(target, red)
	for _, p := range body {
		f.Set(p, blue)
	}
	return f
}

func TestDetectResolvesHeadFromPreviousBody(t *testing.T) {
	t.Parallel()

	in := newTestInterpreter(t)
	apple := board.Position{X: 12, Y: 7}

	first := in.Detect(paint(apple, board.Position{X: 2, Y: 8}))
	assert.Equal(t, board.Position{X: 2, Y: 8}, first.Head)

	second := in.Detect(paint(apple, board.Position{X: 2, Y: 7}, board.Position{X: 2, Y: 8}))
	assert.Equal(t, board.Position{X: 2, Y: 7}, second.Head)
	assert.ElementsMatch(t, []board.Position{{X: 2, Y: 7}, {X: 2, Y: 8}}, second.Body)
	assert.Equal(t, apple, second.Target)
}

func TestDetectKeepsHeadWhenNothingMoved(t *testing.T) {
	t.Parallel()

	in := newTestInterpreter(t)
	apple := board.Position{X: 12, Y: 7}
	body := []board.Position{{X: 2, Y: 7}, {X: 2, Y: 8}}

	in.Detect(paint(apple, body[1]))
	in.Detect(paint(apple, body...))
	again := in.Detect(paint(apple, body...))
	assert.Equal(t, board.Position{X: 2, Y: 7}, again.Head)
}

func TestDetectAmbiguousPicksFirstInRowMajorOrder(t *testing.T) {
	t.Parallel()

	in := newTestInterpreter(t)
	snap := in.Detect(paint(board.Position{X: 0, Y: 0}, board.Position{X: 9, Y: 4}, board.Position{X: 3, Y: 5}))
	assert.Equal(t, board.Position{X: 9, Y: 4}, snap.Head)
}

func TestDetectBeforeAnythingSeen(t *testing.T) {
	t.Parallel()

	in := newTestInterpreter(t)
	f := grassFrame()
	snap := in.Detect(f)
	assert.True(t, snap.Head.IsUnknown())
	assert.True(t, snap.Target.IsUnknown())
	assert.Empty(t, snap.Body)
}

func TestDetectKeepsLastTargetWhenHidden(t *testing.T) {
	t.Parallel()

	in := newTestInterpreter(t)
	in.Detect(paint(board.Position{X: 4, Y: 4}, board.Position{X: 1, Y: 1}))

	f := grassFrame()
	f.Set(board.Position{X: 1, Y: 1}, blue)
	snap := in.Detect(f)
	assert.Equal(t, board.Position{X: 4, Y: 4}, snap.Target)
}

func TestDetectHueTolerance(t *testing.T) {
	t.Parallel()

	in := newTestInterpreter(t)

	// Slightly darker blue still has nearly the same hue
	shade := color.RGBA{R: 70, G: 112, B: 222, A: 0xff}
	require.Less(t, abs(Hue(shade)-Hue(blue)), float64(HueTolerance))

	snap := in.Detect(paint(board.Position{X: 0, Y: 0}, board.Position{X: 5, Y: 5}))
	assert.Len(t, snap.Body, 1)

	f := paint(board.Position{X: 0, Y: 0})
	f.Set(board.Position{X: 6, Y: 6}, shade)
	snap = in.Detect(f)
	assert.Equal(t, []board.Position{{X: 6, Y: 6}}, snap.Body)
}

func TestDetectSnapshotsAreIndependent(t *testing.T) {
	t.Parallel()

	in := newTestInterpreter(t)
	first := in.Detect(paint(board.Position{X: 0, Y: 0}, board.Position{X: 5, Y: 5}))
	in.Detect(paint(board.Position{X: 0, Y: 0}, board.Position{X: 6, Y: 5}))
	assert.Equal(t, []board.Position{{X: 5, Y: 5}}, first.Body)
}

func TestSelectUnknownDetector(t *testing.T) {
	t.Parallel()

	in := NewInterpreter(board.Default)
	assert.ErrorIs(t, in.SelectSnakeDetector("nope"), ErrUnknownDetector)
	assert.ErrorIs(t, in.SelectTargetDetector("nope"), ErrUnknownDetector)
	assert.Equal(t, FallbackSnakeDetector, in.SnakeDetector().Name)

	in.AddSnakeDetector(NewDetector("blue", blue))
	in.AddSnakeDetector(NewDetector("blue", red))
	assert.Equal(t, []string{FallbackSnakeDetector, "blue"}, in.SnakeDetectors())
	require.NoError(t, in.SelectSnakeDetector("blue"))
	assert.Equal(t, red, in.SnakeDetector().Color)
}

func TestParseDetector(t *testing.T) {
	t.Parallel()

	d, err := ParseDetector("apple", "#e7471d")
	require.NoError(t, err)
	assert.Equal(t, red, d.Color)
	assert.InDelta(t, Hue(red), d.Hue, 1e-9)

	_, err = ParseDetector("bad", "not-a-color")
	assert.Error(t, err)
}

func TestHueScale(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 0, Hue(color.RGBA{R: 255, A: 255}), 1e-9)
	assert.InDelta(t, 85, Hue(color.RGBA{G: 255, A: 255}), 1e-9)
	assert.InDelta(t, 170, Hue(color.RGBA{B: 255, A: 255}), 1e-9)
	assert.InDelta(t, 0, Hue(color.RGBA{A: 255}), 1e-9)
}

func TestShrinkSamplesCellCenters(t *testing.T) {
	t.Parallel()

	img := image.NewRGBA(image.Rect(0, 0, 600, 600))
	for y := 0; y < 600; y++ {
		for x := 0; x < 600; x++ {
			img.SetRGBA(x, y, grass)
		}
	}
	apple := board.Position{X: 12, Y: 7}
	head := board.Position{X: 2, Y: 7}
	center := DefaultLayout.CellCenter(apple)
	img.SetRGBA(center.X, center.Y, red)
	center = DefaultLayout.CellCenter(head)
	img.SetRGBA(center.X, center.Y, blue)

	frame, err := DefaultLayout.Shrink(img)
	require.NoError(t, err)
	assert.Equal(t, red, frame.At(apple))
	assert.Equal(t, blue, frame.At(head))
	assert.Equal(t, grass, frame.At(board.Position{X: 0, Y: 0}))

	d := DetectorFromFrame("calibrated", frame, apple)
	assert.Equal(t, red, d.Color)
}

func TestCalibrateSelectsSampledColors(t *testing.T) {
	t.Parallel()

	in := NewInterpreter(board.Default)
	frame := paint(StartTarget, StartHead, board.Position{X: 2, Y: 8})

	snake, apple := in.Calibrate(frame, StartHead, StartTarget)
	assert.Equal(t, blue, snake.Color)
	assert.Equal(t, red, apple.Color)
	assert.Equal(t, CalibratedDetector, in.SnakeDetector().Name)
	assert.Equal(t, CalibratedDetector, in.TargetDetector().Name)

	snap := in.Detect(frame)
	assert.Equal(t, StartHead, snap.Head)
	assert.Equal(t, StartTarget, snap.Target)
	assert.ElementsMatch(t, []board.Position{StartHead, {X: 2, Y: 8}}, snap.Body)

	// Calibrating again replaces the earlier detectors
	in.Calibrate(paint(StartTarget, StartHead), StartTarget, StartHead)
	assert.Equal(t, red, in.SnakeDetector().Color)
	assert.Equal(t, []string{FallbackSnakeDetector, CalibratedDetector}, in.SnakeDetectors())
}

func TestShrinkHonorsImageOrigin(t *testing.T) {
	t.Parallel()

	img := image.NewRGBA(image.Rect(100, 50, 700, 650))
	center := DefaultLayout.CellCenter(board.Position{X: 0, Y: 0}).Add(img.Bounds().Min)
	img.SetRGBA(center.X, center.Y, red)

	frame, err := DefaultLayout.Shrink(img)
	require.NoError(t, err)
	assert.Equal(t, red, frame.At(board.Position{X: 0, Y: 0}))
}

func TestShrinkTooSmall(t *testing.T) {
	t.Parallel()

	_, err := DefaultLayout.Shrink(image.NewRGBA(image.Rect(0, 0, 300, 300)))
	assert.ErrorIs(t, err, ErrFrameTooSmall)
}
