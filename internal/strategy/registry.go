package strategy

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/leonitousconforti/basilisk/internal/board"
)

// ErrUnknownStrategy is returned when asking for a strategy nobody registered
var ErrUnknownStrategy = errors.New("unknown strategy")

// Options are handed to every strategy constructor
type Options struct {
	Geometry board.Geometry
	Seed     int64
}

// Constructor builds a fresh strategy instance
type Constructor func(opts Options) Strategy

var (
	registryMu sync.RWMutex
	registry   = map[string]Constructor{}
	order      []string
)

func init() {
	Register(AStarName, func(opts Options) Strategy { return NewAStar(opts.Geometry) })
	Register(HamiltonianName, func(opts Options) Strategy { return NewHamiltonian(opts.Geometry) })
	Register(RandomName, func(opts Options) Strategy { return NewRandom(opts.Geometry, opts.Seed) })
}

// Register adds a named constructor, replacing any earlier one with the same name
func Register(name string, c Constructor) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, ok := registry[name]; !ok {
		order = append(order, name)
	}
	registry[name] = c
}

// Names lists registered strategies in registration order
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return slices.Clone(order)
}

// New builds the named strategy
func New(name string, opts Options) (Strategy, error) {
	registryMu.RLock()
	c, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrUnknownStrategy)
	}
	return c(opts), nil
}

// All builds one instance of every registered strategy
func All(opts Options) []Strategy {
	names := Names()
	out := make([]Strategy, 0, len(names))
	for _, name := range names {
		s, err := New(name, opts)
		if err != nil {
			continue
		}
		out = append(out, s)
	}
	return out
}
