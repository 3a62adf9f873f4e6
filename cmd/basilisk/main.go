package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/leonitousconforti/basilisk/internal/action"
	"github.com/leonitousconforti/basilisk/internal/board"
	"github.com/leonitousconforti/basilisk/internal/config"
	"github.com/leonitousconforti/basilisk/internal/detect"
	"github.com/leonitousconforti/basilisk/internal/driver"
	"github.com/leonitousconforti/basilisk/internal/journal"
	"github.com/leonitousconforti/basilisk/internal/scheduler"
	"github.com/leonitousconforti/basilisk/internal/sim"
	"github.com/leonitousconforti/basilisk/internal/strategy"
	"golang.org/x/sync/errgroup"
)

func main() {
	log.Println("Starting basilisk...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	interpreter, err := newInterpreter(cfg)
	if err != nil {
		log.Fatalf("Failed to set up detection: %v", err)
	}

	var game *sim.Game
	var source driver.FrameSource
	switch cfg.Source {
	case config.SourceSim:
		opts := sim.DefaultOptions()
		opts.Seed = cfg.Seed
		game = sim.New(opts)
		source = game
		g.Go(func() error { return game.Run(ctx, cfg.SimStep) })
	case config.SourcePNG:
		source, err = driver.NewPNGSource(cfg.FramesDir, true)
		if err != nil {
			log.Fatalf("Failed to open frames: %v", err)
		}
	}

	sched := scheduler.New(action.NewQueue(), strategy.All(strategy.Options{
		Geometry: board.Default,
		Seed:     cfg.Seed,
	})...)

	backend, err := startBackend(ctx, g, cfg, game, sched)
	if err != nil {
		log.Fatalf("Failed to start %s backend: %v", cfg.Backend, err)
	}

	var actionLog driver.ActionLog
	var sessionID string
	if cfg.DBPath != "" {
		j, err := journal.Open(cfg.DBPath)
		if err != nil {
			log.Fatalf("Failed to open journal: %v", err)
		}
		defer j.Close()

		session, err := j.Begin(ctx, cfg.Strategy, cfg.Backend)
		if err != nil {
			log.Fatalf("Failed to begin session: %v", err)
		}
		defer func() {
			if err := j.End(context.Background(), session.ID); err != nil {
				log.Printf("Failed to end session: %v", err)
			}
		}()
		actionLog, sessionID = j, session.ID
	}

	sched.Start(ctx)
	if err := sched.Select(cfg.Strategy); err != nil {
		log.Fatalf("Failed to select strategy: %v (available: %v)", err, sched.Names())
	}

	loop := driver.New(driver.Config{
		Source:      source,
		Layout:      detect.DefaultLayout,
		Interpreter: interpreter,
		Scheduler:   sched,
		Backend:     backend,
		Journal:     actionLog,
		SessionID:   sessionID,
		Interval:    cfg.Tick,
		Calibrate:   cfg.Calibrate,
		ReportEvery: 1000,
	})
	g.Go(func() error { return loop.Run(ctx) })

	log.Printf("Basilisk running %s with %s frames and %s keys", cfg.Strategy, cfg.Source, cfg.Backend)

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, errQuit) {
		log.Printf("Stopped with error: %v", err)
	}
	stop()
	sched.Wait()
	log.Println("Basilisk stopped")
}

// newInterpreter loads the configured detectors. The simulated game's colors
// are always available under the name "sim".
func newInterpreter(cfg *config.Config) (*detect.Interpreter, error) {
	in := detect.NewInterpreter(board.Default)
	in.AddSnakeDetector(detect.NewDetector("sim", sim.Snake))
	in.AddTargetDetector(detect.NewDetector("sim", sim.Apple))

	if cfg.DetectorsFile != "" {
		d, err := config.LoadDetectors(cfg.DetectorsFile)
		if err != nil {
			return nil, err
		}
		if err := d.Apply(in); err != nil {
			return nil, err
		}
	}

	snake, target := cfg.SnakeDetector, cfg.TargetDetector
	if cfg.Source == config.SourceSim {
		if snake == "" {
			snake = "sim"
		}
		if target == "" {
			target = "sim"
		}
	}
	if snake != "" {
		if err := in.SelectSnakeDetector(snake); err != nil {
			return nil, fmt.Errorf("%w (available: %v)", err, in.SnakeDetectors())
		}
	}
	if target != "" {
		if err := in.SelectTargetDetector(target); err != nil {
			return nil, fmt.Errorf("%w (available: %v)", err, in.TargetDetectors())
		}
	}

	log.Printf("Detecting snake with %q and target with %q", in.SnakeDetector().Name, in.TargetDetector().Name)
	return in, nil
}
