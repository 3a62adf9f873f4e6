package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/leonitousconforti/basilisk/internal/board"
	"github.com/leonitousconforti/basilisk/internal/detect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allKeys = []string{
	"BASILISK_STRATEGY", "BASILISK_BACKEND", "BASILISK_WS_ADDR", "BASILISK_SOURCE",
	"BASILISK_FRAMES_DIR", "BASILISK_DB", "BASILISK_TICK_MS", "BASILISK_SIM_STEP_MS",
	"BASILISK_DETECTORS", "BASILISK_SNAKE_DETECTOR", "BASILISK_TARGET_DETECTOR", "BASILISK_SEED",
	"BASILISK_CALIBRATE", "BASILISK_LOG_FILE",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range allKeys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "A* Search", cfg.Strategy)
	assert.Equal(t, BackendWebsocket, cfg.Backend)
	assert.Equal(t, []string{BackendWebsocket}, cfg.Backends)
	assert.Equal(t, ":61888", cfg.WSAddr)
	assert.Equal(t, SourceSim, cfg.Source)
	assert.Equal(t, "data/basilisk.db", cfg.DBPath)
	assert.Equal(t, 5*time.Millisecond, cfg.Tick)
	assert.Equal(t, 120*time.Millisecond, cfg.SimStep)
	assert.Empty(t, cfg.DetectorsFile)
	assert.False(t, cfg.Calibrate)
	assert.Equal(t, "data/basilisk.log", cfg.LogFile)
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("BASILISK_STRATEGY", "Hamiltonian Path")
	t.Setenv("BASILISK_BACKEND", BackendTerminal)
	t.Setenv("BASILISK_SOURCE", SourcePNG)
	t.Setenv("BASILISK_FRAMES_DIR", "/tmp/frames")
	t.Setenv("BASILISK_DB", "")
	t.Setenv("BASILISK_TICK_MS", "20")
	t.Setenv("BASILISK_SEED", "1234")
	t.Setenv("BASILISK_CALIBRATE", "true")
	t.Setenv("BASILISK_LOG_FILE", "/tmp/basilisk.log")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "Hamiltonian Path", cfg.Strategy)
	assert.Equal(t, BackendTerminal, cfg.Backend)
	assert.Equal(t, SourcePNG, cfg.Source)
	assert.Equal(t, "/tmp/frames", cfg.FramesDir)
	assert.Empty(t, cfg.DBPath)
	assert.Equal(t, 20*time.Millisecond, cfg.Tick)
	assert.Equal(t, int64(1234), cfg.Seed)
	assert.True(t, cfg.Calibrate)
	assert.Equal(t, "/tmp/basilisk.log", cfg.LogFile)
}

func TestLoadBackendList(t *testing.T) {
	clearEnv(t)
	t.Setenv("BASILISK_BACKEND", " websocket, terminal,,websocket ")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{BackendWebsocket, BackendTerminal}, cfg.Backends)
}

func TestLoadRejectsBadValues(t *testing.T) {
	for name, env := range map[string]map[string]string{
		"backend":         {"BASILISK_BACKEND": "carrier-pigeon"},
		"backend in list": {"BASILISK_BACKEND": "websocket,carrier-pigeon"},
		"no backend":      {"BASILISK_BACKEND": " , "},
		"calibrate":       {"BASILISK_CALIBRATE": "sometimes"},
		"source":          {"BASILISK_SOURCE": "webcam"},
		"png without dir": {"BASILISK_SOURCE": SourcePNG},
		"sim backend":     {"BASILISK_BACKEND": "websocket,sim", "BASILISK_SOURCE": SourcePNG, "BASILISK_FRAMES_DIR": "x"},
		"tick":            {"BASILISK_TICK_MS": "soon"},
		"negative tick":   {"BASILISK_TICK_MS": "-5"},
		"seed":            {"BASILISK_SEED": "abc"},
	} {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func writeFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "detectors.toml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
	return path
}

func TestLoadDetectors(t *testing.T) {
	t.Parallel()

	path := writeFile(t, `
[[snake]]
name = "google-blue"
color = "#4e7cf6"

[[snake]]
name = "purple"
color = "#8a2be2"

[[target]]
name = "google-apple"
color = "#e7471d"
`)

	d, err := LoadDetectors(path)
	require.NoError(t, err)
	snake, target := d.Names()
	assert.Equal(t, []string{"google-blue", "purple"}, snake)
	assert.Equal(t, []string{"google-apple"}, target)

	in := detect.NewInterpreter(board.Default)
	require.NoError(t, d.Apply(in))
	require.NoError(t, in.SelectSnakeDetector("google-blue"))
	require.NoError(t, in.SelectTargetDetector("google-apple"))
	assert.Equal(t, uint8(0x4e), in.SnakeDetector().Color.R)
	assert.Equal(t, uint8(0xe7), in.TargetDetector().Color.R)
}

func TestLoadDetectorsRejectsUnknownKeys(t *testing.T) {
	t.Parallel()

	path := writeFile(t, `
[[snake]]
name = "blue"
colour = "#0000ff"
`)
	_, err := LoadDetectors(path)
	assert.ErrorContains(t, err, "unknown keys")
}

func TestApplyRejectsBadColors(t *testing.T) {
	t.Parallel()

	in := detect.NewInterpreter(board.Default)

	bad := &Detectors{Snake: []DetectorEntry{{Name: "bad", Color: "blue"}}}
	assert.Error(t, bad.Apply(in))

	nameless := &Detectors{Target: []DetectorEntry{{Color: "#ffffff"}}}
	assert.ErrorContains(t, nameless.Apply(in), "no name")
}

func TestLoadDetectorsMissingFile(t *testing.T) {
	t.Parallel()

	_, err := LoadDetectors(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}
