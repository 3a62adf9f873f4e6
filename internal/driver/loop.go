package driver

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/leonitousconforti/basilisk/internal/action"
	"github.com/leonitousconforti/basilisk/internal/board"
	"github.com/leonitousconforti/basilisk/internal/detect"
	"github.com/leonitousconforti/basilisk/internal/scheduler"
)

// ActionLog records every dispatched action
type ActionLog interface {
	Record(ctx context.Context, sessionID string, a action.Action, head board.Position) error
}

// Config wires the loop to the rest of the agent. Journal is optional.
type Config struct {
	Source      FrameSource
	Layout      detect.Layout
	Interpreter *detect.Interpreter
	Scheduler   *scheduler.Scheduler
	Backend     action.Backend
	Journal     ActionLog
	SessionID   string
	Interval    time.Duration
	// Calibrate samples the detector colors from the first frame, which has
	// to show a fresh game
	Calibrate bool
	// ReportEvery is how many ticks pass between timing reports, 0 disables them
	ReportEvery int
}

// Loop is the perception to action cycle: capture a frame, work out where
// everything is, let the selected strategy plan, and press the next key once
// the snake is where that key should be pressed
type Loop struct {
	cfg Config

	ticks      int
	dispatched int
	busy       time.Duration
	calibrated bool
}

func New(cfg Config) *Loop {
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Millisecond
	}
	return &Loop{cfg: cfg}
}

// Tick runs one cycle. A failed key press leaves the action queued so the next
// cycle tries again.
func (l *Loop) Tick(ctx context.Context) error {
	start := time.Now()
	defer func() {
		l.ticks++
		l.busy += time.Since(start)
	}()

	img, err := l.cfg.Source.Frame(ctx)
	if err != nil {
		return fmt.Errorf("capture frame: %w", err)
	}
	frame, err := l.cfg.Layout.Shrink(img)
	if err != nil {
		return fmt.Errorf("shrink frame: %w", err)
	}
	if l.cfg.Calibrate && !l.calibrated {
		snake, target := l.cfg.Interpreter.Calibrate(frame, detect.StartHead, detect.StartTarget)
		log.Printf("[Driver] Calibrated snake %v and target %v", snake.Color, target.Color)
		l.calibrated = true
	}
	snap := l.cfg.Interpreter.Detect(frame)

	l.cfg.Scheduler.Run(snap)

	q := l.cfg.Scheduler.Queue()
	next := q.Peek()
	ready := action.IsReady(next, snap.Head)

	// Try to find an action for where the snake is now
	if !ready && !snap.Head.IsUnknown() {
		if s := l.cfg.Scheduler.Selected(); s != nil && s.SupportsPathSkipping() {
			if skipped := q.SkipTo(snap.Head); skipped != nil {
				log.Printf("[Driver] Snake was out of line, skipping ahead to %v", skipped)
				next, ready = skipped, true
			}
		}
	}
	if !ready {
		return nil
	}

	if err := q.Dispatch(ctx, next, l.cfg.Backend); err != nil {
		return err
	}
	l.dispatched++

	if l.cfg.Journal != nil {
		if err := l.cfg.Journal.Record(ctx, l.cfg.SessionID, *next, snap.Head); err != nil {
			log.Printf("[Driver] %v", err)
		}
	}
	return nil
}

// Run ticks every interval until ctx is done. Ticks are skipped while the
// scheduler is paused.
func (l *Loop) Run(ctx context.Context) error {
	log.Printf("[Driver] Running every %v", l.cfg.Interval)

	ticker := time.NewTicker(l.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Printf("[Driver] Stopped after %d ticks, %d actions dispatched", l.Ticks(), l.Dispatched())
			return ctx.Err()
		case <-ticker.C:
		}

		if l.cfg.Scheduler.Paused() {
			continue
		}
		if err := l.Tick(ctx); err != nil {
			log.Printf("[Driver] Tick failed: %v", err)
		}

		if l.cfg.ReportEvery > 0 && l.ticks%l.cfg.ReportEvery == 0 {
			avg := l.busy / time.Duration(l.ticks)
			log.Printf("[Driver] Loop took %v on average, %.2f frames per second possible", avg, float64(time.Second)/float64(avg))
		}
	}
}

// Ticks returns how many cycles ran
func (l *Loop) Ticks() int {
	return l.ticks
}

// Dispatched returns how many actions were sent to the backend
func (l *Loop) Dispatched() int {
	return l.dispatched
}
