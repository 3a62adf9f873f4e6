package detect

import (
	"errors"
	"fmt"
	"image/color"
	"slices"
	"sync"

	"github.com/leonitousconforti/basilisk/internal/board"
)

// ErrUnknownDetector is returned when selecting a detector that was never added
var ErrUnknownDetector = errors.New("unknown detector")

// Names of the detectors every interpreter starts with
const (
	FallbackSnakeDetector  = "fallback-snake"
	FallbackTargetDetector = "fallback-target"
)

// CalibratedDetector names the detectors built by Calibrate
const CalibratedDetector = "calibrated"

// Where a fresh game puts the snake's head and the first apple
var (
	StartHead   = board.Position{X: 2, Y: 7}
	StartTarget = board.Position{X: 12, Y: 7}
)

// Interpreter turns shrunk frames into world state snapshots. It remembers the
// previous cycle's body so it can tell the head apart from the rest of the snake.
type Interpreter struct {
	mu       sync.Mutex
	geometry board.Geometry

	snakeDetectors  []Detector
	snake           int
	targetDetectors []Detector
	target          int

	lastBody  []board.Position
	head      board.Position
	targetPos board.Position
}

// NewInterpreter creates an interpreter with a black snake detector and a white
// target detector selected until real ones are configured
func NewInterpreter(geometry board.Geometry) *Interpreter {
	return &Interpreter{
		geometry:        geometry,
		snakeDetectors:  []Detector{NewDetector(FallbackSnakeDetector, color.RGBA{A: 0xff})},
		targetDetectors: []Detector{NewDetector(FallbackTargetDetector, color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff})},
		head:            board.Unknown,
		targetPos:       board.Unknown,
	}
}

// AddSnakeDetector loads a snake detector, replacing any detector with the same name
func (in *Interpreter) AddSnakeDetector(d Detector) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.snakeDetectors = upsert(in.snakeDetectors, d)
}

// AddTargetDetector loads a target detector, replacing any detector with the same name
func (in *Interpreter) AddTargetDetector(d Detector) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.targetDetectors = upsert(in.targetDetectors, d)
}

// SelectSnakeDetector switches the detector used to find the snake
func (in *Interpreter) SelectSnakeDetector(name string) error {
	in.mu.Lock()
	defer in.mu.Unlock()
	i := indexOf(in.snakeDetectors, name)
	if i < 0 {
		return fmt.Errorf("snake detector %q: %w", name, ErrUnknownDetector)
	}
	in.snake = i
	return nil
}

// SelectTargetDetector switches the detector used to find the target
func (in *Interpreter) SelectTargetDetector(name string) error {
	in.mu.Lock()
	defer in.mu.Unlock()
	i := indexOf(in.targetDetectors, name)
	if i < 0 {
		return fmt.Errorf("target detector %q: %w", name, ErrUnknownDetector)
	}
	in.target = i
	return nil
}

// SnakeDetector returns the selected snake detector
func (in *Interpreter) SnakeDetector() Detector {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.snakeDetectors[in.snake]
}

// TargetDetector returns the selected target detector
func (in *Interpreter) TargetDetector() Detector {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.targetDetectors[in.target]
}

// SnakeDetectors returns the names of every loaded snake detector
func (in *Interpreter) SnakeDetectors() []string {
	in.mu.Lock()
	defer in.mu.Unlock()
	return names(in.snakeDetectors)
}

// TargetDetectors returns the names of every loaded target detector
func (in *Interpreter) TargetDetectors() []string {
	in.mu.Lock()
	defer in.mu.Unlock()
	return names(in.targetDetectors)
}

// Calibrate samples the snake color at head and the target color at target,
// then selects the resulting detectors
func (in *Interpreter) Calibrate(frame *Frame, head, target board.Position) (snake, apple Detector) {
	snake = DetectorFromFrame(CalibratedDetector, frame, head)
	apple = DetectorFromFrame(CalibratedDetector, frame, target)

	in.mu.Lock()
	defer in.mu.Unlock()
	in.snakeDetectors = upsert(in.snakeDetectors, snake)
	in.snake = indexOf(in.snakeDetectors, CalibratedDetector)
	in.targetDetectors = upsert(in.targetDetectors, apple)
	in.target = indexOf(in.targetDetectors, CalibratedDetector)
	return snake, apple
}

// Detect scans every cell of the frame and returns a fresh snapshot.
//
// A cell exactly matching the target color is the target. Otherwise a cell whose
// hue is within HueTolerance of the snake hue is a body part. The head is the
// first body part that was not there last cycle; when nothing new appeared the
// snake has not moved and the previous head is kept. If several new parts show
// up in one cycle the first one in row-major order wins.
func (in *Interpreter) Detect(frame *Frame) *board.Snapshot {
	in.mu.Lock()
	defer in.mu.Unlock()

	snake := in.snakeDetectors[in.snake]
	target := in.targetDetectors[in.target]
	geometry := frame.Geometry()

	body := make([]board.Position, 0, len(in.lastBody)+1)
	for y := 0; y < geometry.Rows; y++ {
		for x := 0; x < geometry.Cols; x++ {
			p := board.Position{X: x, Y: y}
			c := frame.At(p)

			if SameRGB(c, target.Color) {
				in.targetPos = p
			} else if abs(Hue(c)-snake.Hue) < HueTolerance {
				body = append(body, p)
			}
		}
	}

	for _, p := range body {
		if !slices.Contains(in.lastBody, p) {
			in.head = p
			break
		}
	}
	in.lastBody = body

	return &board.Snapshot{
		Head:   in.head,
		Body:   slices.Clone(body),
		Target: in.targetPos,
	}
}

// Reset forgets the history kept between cycles
func (in *Interpreter) Reset() {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.lastBody = nil
	in.head = board.Unknown
	in.targetPos = board.Unknown
}

func upsert(detectors []Detector, d Detector) []Detector {
	if i := indexOf(detectors, d.Name); i >= 0 {
		detectors[i] = d
		return detectors
	}
	return append(detectors, d)
}

func indexOf(detectors []Detector, name string) int {
	return slices.IndexFunc(detectors, func(d Detector) bool { return d.Name == name })
}

func names(detectors []Detector) []string {
	out := make([]string, len(detectors))
	for i, d := range detectors {
		out[i] = d.Name
	}
	return out
}
