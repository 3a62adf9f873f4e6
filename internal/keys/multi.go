package keys

import (
	"context"
	"errors"

	"github.com/leonitousconforti/basilisk/internal/action"
	"github.com/leonitousconforti/basilisk/internal/board"
)

// Multi presses every key on all of its backends
type Multi []action.Backend

func (m Multi) Press(ctx context.Context, dir board.Direction) error {
	var errs []error
	for _, b := range m {
		if err := b.Press(ctx, dir); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
