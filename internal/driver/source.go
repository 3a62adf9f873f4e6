package driver

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sync"
)

// FrameSource captures the game window
type FrameSource interface {
	Frame(ctx context.Context) (image.Image, error)
}

// ErrNoFrames is returned by a PNGSource pointed at a directory without screenshots
var ErrNoFrames = errors.New("no frames")

// PNGSource replays a directory of screenshots in name order
type PNGSource struct {
	mu    sync.Mutex
	files []string
	next  int
	loop  bool
}

// NewPNGSource lists every .png file in dir. With loop set the replay starts
// over after the last file, otherwise io.EOF is returned.
func NewPNGSource(dir string, loop bool) (*PNGSource, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.png"))
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%s: %w", dir, ErrNoFrames)
	}
	slices.Sort(files)
	return &PNGSource{files: files, loop: loop}, nil
}

// Len returns the number of screenshots
func (s *PNGSource) Len() int {
	return len(s.files)
}

func (s *PNGSource) Frame(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.next == len(s.files) {
		if !s.loop {
			s.mu.Unlock()
			return nil, io.EOF
		}
		s.next = 0
	}
	path := s.files[s.next]
	s.next++
	s.mu.Unlock()

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open frame: %w", err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", filepath.Base(path), err)
	}
	return img, nil
}
