package config

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/leonitousconforti/basilisk/internal/keys"
	"github.com/leonitousconforti/basilisk/internal/strategy"
)

// Key backends
const (
	BackendWebsocket = "websocket"
	BackendTerminal  = "terminal"
	BackendSim       = "sim"
)

// Frame sources
const (
	SourceSim = "sim"
	SourcePNG = "png"
)

// Config is everything the agent reads from its environment
type Config struct {
	Strategy string

	// Backend is the raw BASILISK_BACKEND value, a comma separated list
	Backend  string
	Backends []string

	WSAddr         string
	Source         string
	FramesDir      string
	DBPath         string
	Tick           time.Duration
	SimStep        time.Duration
	DetectorsFile  string
	SnakeDetector  string
	TargetDetector string
	Calibrate      bool
	LogFile        string
	Seed           int64
}

// Load reads the configuration from BASILISK_* environment variables
func Load() (*Config, error) {
	tick, err := strconv.Atoi(getEnv("BASILISK_TICK_MS", "5"))
	if err != nil || tick <= 0 {
		return nil, fmt.Errorf("BASILISK_TICK_MS must be a positive number of milliseconds")
	}
	step, err := strconv.Atoi(getEnv("BASILISK_SIM_STEP_MS", "120"))
	if err != nil || step <= 0 {
		return nil, fmt.Errorf("BASILISK_SIM_STEP_MS must be a positive number of milliseconds")
	}

	calibrate, err := strconv.ParseBool(getEnv("BASILISK_CALIBRATE", "false"))
	if err != nil {
		return nil, fmt.Errorf("BASILISK_CALIBRATE: %w", err)
	}

	seed := strategy.DefaultSeed()
	if v := os.Getenv("BASILISK_SEED"); v != "" {
		seed, err = strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("BASILISK_SEED: %w", err)
		}
	}

	cfg := &Config{
		Strategy:       getEnv("BASILISK_STRATEGY", strategy.AStarName),
		Backend:        getEnv("BASILISK_BACKEND", BackendWebsocket),
		WSAddr:         getEnv("BASILISK_WS_ADDR", keys.DefaultAddr),
		Source:         getEnv("BASILISK_SOURCE", SourceSim),
		FramesDir:      os.Getenv("BASILISK_FRAMES_DIR"),
		DBPath:         getEnvAllowEmpty("BASILISK_DB", "data/basilisk.db"),
		Tick:           time.Duration(tick) * time.Millisecond,
		SimStep:        time.Duration(step) * time.Millisecond,
		DetectorsFile:  os.Getenv("BASILISK_DETECTORS"),
		SnakeDetector:  os.Getenv("BASILISK_SNAKE_DETECTOR"),
		TargetDetector: os.Getenv("BASILISK_TARGET_DETECTOR"),
		Calibrate:      calibrate,
		LogFile:        getEnv("BASILISK_LOG_FILE", "data/basilisk.log"),
		Seed:           seed,
	}

	cfg.Backends = splitList(cfg.Backend)
	if len(cfg.Backends) == 0 {
		return nil, fmt.Errorf("BASILISK_BACKEND names no backend")
	}
	for _, b := range cfg.Backends {
		switch b {
		case BackendWebsocket, BackendTerminal, BackendSim:
		default:
			return nil, fmt.Errorf("unknown backend %q", b)
		}
	}

	switch cfg.Source {
	case SourceSim:
	case SourcePNG:
		if cfg.FramesDir == "" {
			return nil, fmt.Errorf("BASILISK_FRAMES_DIR is required for the png source")
		}
	default:
		return nil, fmt.Errorf("unknown frame source %q", cfg.Source)
	}

	if slices.Contains(cfg.Backends, BackendSim) && cfg.Source != SourceSim {
		return nil, fmt.Errorf("the sim backend only works with the sim frame source")
	}

	return cfg, nil
}

// splitList splits a comma separated value, dropping blanks and repeats
func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		item = strings.TrimSpace(item)
		if item != "" && !slices.Contains(out, item) {
			out = append(out, item)
		}
	}
	return out
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAllowEmpty lets an explicitly empty variable override the default
func getEnvAllowEmpty(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return defaultValue
}
