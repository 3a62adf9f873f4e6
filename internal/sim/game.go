package sim

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"log"
	"math/rand"
	"slices"
	"sync"
	"time"

	"github.com/leonitousconforti/basilisk/internal/board"
	"github.com/leonitousconforti/basilisk/internal/detect"
)

// Colors of the simulated game
var (
	Header = color.RGBA{R: 74, G: 117, B: 44, A: 0xff}
	Light  = color.RGBA{R: 170, G: 215, B: 81, A: 0xff}
	Dark   = color.RGBA{R: 162, G: 209, B: 73, A: 0xff}
	Snake  = color.RGBA{R: 78, G: 124, B: 246, A: 0xff}
	Apple  = color.RGBA{R: 231, G: 71, B: 29, A: 0xff}
)

// Options configure a new game
type Options struct {
	Layout detect.Layout
	Seed   int64

	// Start is the head position. The body trails below it.
	Start  board.Position
	Length int

	// FirstApple is where the first apple appears, random when Unknown
	FirstApple board.Position
}

// DefaultOptions starts a three long snake at (2,7) with the apple at (12,7)
func DefaultOptions() Options {
	return Options{
		Layout:     detect.DefaultLayout,
		Seed:       1,
		Start:      board.Position{X: 2, Y: 7},
		Length:     3,
		FirstApple: board.Position{X: 12, Y: 7},
	}
}

// Game is a small snake game that renders itself the way the real game window
// looks and takes its input from key presses. The snake does not move until the
// first key is pressed.
type Game struct {
	mu    sync.Mutex
	opts  Options
	rng   *rand.Rand
	body  []board.Position // head first
	dir   board.Direction
	next  board.Direction
	apple board.Position
	score int
	over  bool
	steps int
}

// New creates a game ready to play
func New(opts Options) *Game {
	g := &Game{
		opts: opts,
		rng:  rand.New(rand.NewSource(opts.Seed)),
	}
	g.reset()
	return g
}

func (g *Game) reset() {
	geometry := g.opts.Layout.Geometry
	length := max(g.opts.Length, 1)

	g.body = g.body[:0]
	for i := 0; i < length; i++ {
		p := board.Position{X: g.opts.Start.X, Y: g.opts.Start.Y + i}
		if !geometry.Contains(p) {
			break
		}
		g.body = append(g.body, p)
	}
	g.dir = board.None
	g.next = board.None
	g.score = 0
	g.over = false
	g.steps = 0

	if geometry.Contains(g.opts.FirstApple) && !slices.Contains(g.body, g.opts.FirstApple) {
		g.apple = g.opts.FirstApple
	} else {
		g.spawnApple()
	}
}

// Reset starts a new round. The apple sequence carries on from the same RNG.
func (g *Game) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.reset()
}

// Press queues a turn for the next step. Turning back into the neck is ignored.
func (g *Game) Press(_ context.Context, dir board.Direction) error {
	if _, ok := dir.Token(); !ok {
		return nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.body) > 1 && g.body[0].Add(dir) == g.body[1] {
		return nil
	}
	g.next = dir
	return nil
}

// Step moves the snake one cell. It returns false once the game is over.
func (g *Game) Step() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.over {
		return false
	}
	if g.next != board.None {
		g.dir = g.next
	}
	if g.dir == board.None {
		return true
	}

	head := g.body[0].Add(g.dir)
	eating := head == g.apple
	// The tail moves out of the way unless the snake grows
	rest := g.body
	if !eating {
		rest = g.body[:len(g.body)-1]
	}
	if !g.opts.Layout.Geometry.Contains(head) || slices.Contains(rest, head) {
		g.over = true
		log.Printf("[Sim] Crashed at %v after %d steps with score %d", head, g.steps, g.score)
		return false
	}

	g.body = append([]board.Position{head}, rest...)
	g.steps++
	if eating {
		g.score++
		g.spawnApple()
	}
	return !g.over
}

func (g *Game) spawnApple() {
	geometry := g.opts.Layout.Geometry
	free := make([]board.Position, 0, geometry.Cells())
	for i := 0; i < geometry.Cells(); i++ {
		p := geometry.Position(i)
		if !slices.Contains(g.body, p) {
			free = append(free, p)
		}
	}
	if len(free) == 0 {
		g.apple = board.Unknown
		g.over = true
		log.Printf("[Sim] Board filled with score %d", g.score)
		return
	}
	g.apple = free[g.rng.Intn(len(free))]
}

// Run steps the game every interval until ctx is done, starting over after a crash
func (g *Game) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if !g.Step() {
				score := g.Score()
				g.Reset()
				log.Printf("[Sim] New round, the last one scored %d", score)
			}
		}
	}
}

// Frame renders the current state as a screenshot of the game window
func (g *Game) Frame(_ context.Context) (image.Image, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	l := g.opts.Layout
	width := 2*l.BorderX + l.Geometry.Cols*l.CellSize
	height := l.HeaderY + l.Geometry.Rows*l.CellSize + l.BorderX
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(Header), image.Point{}, draw.Src)

	for i := 0; i < l.Geometry.Cells(); i++ {
		p := l.Geometry.Position(i)
		c := Light
		if (p.X+p.Y)%2 == 1 {
			c = Dark
		}
		g.fillCell(img, p, c)
	}
	for _, p := range g.body {
		g.fillCell(img, p, Snake)
	}
	if !g.apple.IsUnknown() {
		g.fillCell(img, g.apple, Apple)
	}
	return img, nil
}

func (g *Game) fillCell(img *image.RGBA, p board.Position, c color.RGBA) {
	l := g.opts.Layout
	corner := image.Point{X: l.BorderX + p.X*l.CellSize, Y: l.HeaderY + p.Y*l.CellSize}
	r := image.Rectangle{Min: corner, Max: corner.Add(image.Point{X: l.CellSize, Y: l.CellSize})}
	draw.Draw(img, r, image.NewUniform(c), image.Point{}, draw.Src)
}

// Head returns the head position
func (g *Game) Head() board.Position {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.body[0]
}

// Body returns every body position, head first
func (g *Game) Body() []board.Position {
	g.mu.Lock()
	defer g.mu.Unlock()
	return slices.Clone(g.body)
}

// Apple returns where the apple is
func (g *Game) Apple() board.Position {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.apple
}

// Score returns the number of apples eaten this round
func (g *Game) Score() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.score
}

// Over reports whether the round has ended
func (g *Game) Over() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.over
}
