package keys

import (
	"context"
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/leonitousconforti/basilisk/internal/board"
)

var arrowKeys = map[board.Direction]tcell.Key{
	board.Up:    tcell.KeyUp,
	board.Down:  tcell.KeyDown,
	board.Left:  tcell.KeyLeft,
	board.Right: tcell.KeyRight,
}

// Terminal presses arrow keys by posting key events into a tcell screen's
// event queue, for games that read their input from the same screen
type Terminal struct {
	screen tcell.Screen
}

// NewTerminal creates a backend posting into screen. The screen must be initialized.
func NewTerminal(screen tcell.Screen) *Terminal {
	return &Terminal{screen: screen}
}

func (t *Terminal) Press(_ context.Context, dir board.Direction) error {
	key, ok := arrowKeys[dir]
	if !ok {
		return nil
	}
	if err := t.screen.PostEvent(tcell.NewEventKey(key, 0, tcell.ModNone)); err != nil {
		return fmt.Errorf("post %v key: %w", dir, err)
	}
	return nil
}

// DirectionForKey maps an arrow key event back to a direction
func DirectionForKey(ev *tcell.EventKey) board.Direction {
	for dir, key := range arrowKeys {
		if ev.Key() == key {
			return dir
		}
	}
	return board.None
}
