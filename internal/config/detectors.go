package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/leonitousconforti/basilisk/internal/detect"
)

// DetectorEntry is one named color in a detectors file
type DetectorEntry struct {
	Name  string `toml:"name"`
	Color string `toml:"color"`
}

// Detectors is the contents of a detectors file:
//
//	[[snake]]
//	name = "google-blue"
//	color = "#4e7cf6"
//
//	[[target]]
//	name = "google-apple"
//	color = "#e7471d"
type Detectors struct {
	Snake  []DetectorEntry `toml:"snake"`
	Target []DetectorEntry `toml:"target"`
}

// LoadDetectors reads a detectors file. Unknown keys are rejected so typos
// do not silently fall back to the default colors.
func LoadDetectors(path string) (*Detectors, error) {
	var d Detectors
	md, err := toml.DecodeFile(path, &d)
	if err != nil {
		return nil, fmt.Errorf("failed to read detectors: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown keys in %s: %v", path, undecoded)
	}
	return &d, nil
}

// Apply parses every color and loads the detectors into the interpreter
func (d *Detectors) Apply(in *detect.Interpreter) error {
	for _, e := range d.Snake {
		det, err := parse(e)
		if err != nil {
			return fmt.Errorf("snake %w", err)
		}
		in.AddSnakeDetector(det)
	}
	for _, e := range d.Target {
		det, err := parse(e)
		if err != nil {
			return fmt.Errorf("target %w", err)
		}
		in.AddTargetDetector(det)
	}
	return nil
}

// Names returns the snake and target detector names in file order
func (d *Detectors) Names() (snake, target []string) {
	for _, e := range d.Snake {
		snake = append(snake, e.Name)
	}
	for _, e := range d.Target {
		target = append(target, e.Name)
	}
	return snake, target
}

func parse(e DetectorEntry) (detect.Detector, error) {
	if e.Name == "" {
		return detect.Detector{}, fmt.Errorf("detector with color %q has no name", e.Color)
	}
	return detect.ParseDetector(e.Name, e.Color)
}
