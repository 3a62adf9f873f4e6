package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/leonitousconforti/basilisk/internal/action"
	"github.com/leonitousconforti/basilisk/internal/config"
	"github.com/leonitousconforti/basilisk/internal/keys"
	"github.com/leonitousconforti/basilisk/internal/scheduler"
	"github.com/leonitousconforti/basilisk/internal/sim"
	"golang.org/x/sync/errgroup"
)

// startBackend starts every configured key backend. Several backends are
// pressed together.
func startBackend(ctx context.Context, g *errgroup.Group, cfg *config.Config, game *sim.Game, sched *scheduler.Scheduler) (action.Backend, error) {
	var backends keys.Multi
	for _, name := range cfg.Backends {
		switch name {
		case config.BackendWebsocket:
			backends = append(backends, startHub(ctx, g, cfg.WSAddr))
		case config.BackendTerminal:
			terminal, err := startTerminal(ctx, g, cfg.LogFile, game, sched)
			if err != nil {
				return nil, err
			}
			backends = append(backends, terminal)
		case config.BackendSim:
			if game == nil {
				return nil, errors.New("no simulated game running")
			}
			backends = append(backends, game)
		default:
			return nil, fmt.Errorf("unknown backend %q", name)
		}
	}

	switch len(backends) {
	case 0:
		return nil, errors.New("no backend configured")
	case 1:
		return backends[0], nil
	}
	return backends, nil
}

func startHub(ctx context.Context, g *errgroup.Group, addr string) *keys.Hub {
	hub := keys.NewHub()
	g.Go(func() error {
		hub.Run(ctx)
		return nil
	})

	mux := http.NewServeMux()
	mux.HandleFunc("/", hub.ServeWs)
	srv := &http.Server{Addr: addr, Handler: mux}

	g.Go(func() error {
		log.Printf("[Hub] Listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("key hub: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Printf("[Hub] Shutting down with %d listeners connected", hub.Clients())
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return hub
}

// startTerminal takes over the terminal. Arrow keys, whether pressed by the
// agent or by hand, steer the simulated game when there is one. See handleKey
// for the other controls. Logs go to logFile while the screen is in use.
func startTerminal(ctx context.Context, g *errgroup.Group, logFile string, game *sim.Game, sched *scheduler.Scheduler) (action.Backend, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	restore, err := redirectLog(logFile)
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		restore()
		return nil, err
	}

	g.Go(func() error {
		<-ctx.Done()
		screen.Fini()
		restore()
		return nil
	})

	g.Go(func() error {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return nil
			}
			key, ok := ev.(*tcell.EventKey)
			if !ok {
				continue
			}
			if handleKey(ctx, key, game, sched) {
				return errQuit
			}
		}
	})

	return keys.NewTerminal(screen), nil
}

var errQuit = errors.New("quit from terminal")

// redirectLog sends the standard logger to path until the returned function
// is called
func redirectLog(path string) (func(), error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	log.Printf("Logging to %s while the terminal is in use", path)
	log.SetOutput(f)

	return func() {
		log.SetOutput(os.Stderr)
		f.Close()
	}, nil
}

// handleKey reacts to one key and reports whether the agent should quit.
//
//	q, Ctrl-C  quit
//	p          pause or resume
//	1-9        select a strategy
//	o          plan once with every other strategy
//	v          show what those strategies planned
//	s          log the agent's state
func handleKey(ctx context.Context, ev *tcell.EventKey, game *sim.Game, sched *scheduler.Scheduler) bool {
	switch {
	case ev.Key() == tcell.KeyCtrlC || (ev.Key() == tcell.KeyRune && ev.Rune() == 'q'):
		return true
	case ev.Key() == tcell.KeyRune && ev.Rune() == 'p':
		sched.SetPaused(!sched.Paused())
	case ev.Key() == tcell.KeyRune && ev.Rune() == 'o':
		runOthersOnce(sched)
	case ev.Key() == tcell.KeyRune && ev.Rune() == 'v':
		logPreviews(sched)
	case ev.Key() == tcell.KeyRune && ev.Rune() == 's':
		logStatus(game, sched)
	case ev.Key() == tcell.KeyRune && ev.Rune() >= '1' && ev.Rune() <= '9':
		names := sched.Names()
		if i := int(ev.Rune() - '1'); i < len(names) {
			if err := sched.Select(names[i]); err != nil {
				log.Printf("Failed to select strategy: %v", err)
			}
		}
	default:
		if dir := keys.DirectionForKey(ev); game != nil {
			game.Press(ctx, dir)
		}
	}
	return false
}

// runOthersOnce lets every strategy that is not selected plan once against the
// latest snapshot without taking over the queue
func runOthersOnce(sched *scheduler.Scheduler) {
	snap := sched.Last()
	if snap == nil {
		log.Println("Nothing seen yet, no plans to make")
		return
	}
	selected := sched.Selected()
	for _, name := range sched.Names() {
		if selected != nil && selected.Name() == name {
			continue
		}
		if err := sched.RunOnce(name, snap); err != nil {
			log.Printf("Failed to run %s once: %v", name, err)
		}
	}
}

func logPreviews(sched *scheduler.Scheduler) {
	for _, name := range sched.Names() {
		if sched.RunningOnce(name) {
			log.Printf("%s is still planning", name)
			continue
		}
		preview, err := sched.Preview(name)
		if err != nil {
			log.Printf("Failed to read %s preview: %v", name, err)
			continue
		}
		if len(preview) == 0 {
			log.Printf("%s planned nothing", name)
			continue
		}
		log.Printf("%s planned %d actions starting with %v", name, len(preview), &preview[0])
	}
}

func logStatus(game *sim.Game, sched *scheduler.Scheduler) {
	name := "none"
	if s := sched.Selected(); s != nil {
		name = s.Name()
	}
	log.Printf("Strategy %s (%d selected), paused %v, %d actions queued",
		name, sched.SelectedCount(), sched.Paused(), sched.Queue().Len())
	if game != nil {
		log.Printf("Game score %d, over %v, head at %v", game.Score(), game.Over(), game.Head())
	}
}
