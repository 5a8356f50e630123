// Package scenario loads benchmark scenario files for twotier-bench.
//
// A scenario file describes a named workload: how many keys to insert, how
// to distribute them, and what value width to use. Keeping scenarios in
// YAML rather than flags lets a single file describe a whole benchmark
// sweep (e.g. sequential vs random keys at several sizes) and be checked
// into version control.
package scenario

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// KeyDistribution selects how a scenario's keys are generated.
type KeyDistribution string

const (
	// Sequential generates keys 0, 1, 2, ... in order.
	Sequential KeyDistribution = "sequential"
	// Random generates pseudo-random keys (seeded, for reproducibility).
	Random KeyDistribution = "random"
	// Clustered generates pseudo-random keys whose low three bits cycle
	// through 0..6. The primary hash mixes all key bits, so these keys do
	// not collide in the primary tier more often than Random keys.
	Clustered KeyDistribution = "clustered"
)

// Scenario describes a single benchmark run.
type Scenario struct {
	Name            string          `yaml:"name"`
	Operations      int             `yaml:"operations"`
	Capacity        int             `yaml:"capacity"`
	ValueBytes      int             `yaml:"value_bytes"`
	KeyDistribution KeyDistribution `yaml:"key_distribution"`
	Seed            int64           `yaml:"seed"`
}

// File is the top-level shape of a scenario YAML file.
type File struct {
	Scenarios []Scenario `yaml:"scenarios"`
}

// Load reads and validates a scenario file from path.
func Load(path string) ([]Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario file: %w", err)
	}

	var file File

	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing scenario file: %w", err)
	}

	for i := range file.Scenarios {
		if err := validate(&file.Scenarios[i]); err != nil {
			return nil, fmt.Errorf("scenario %d (%q): %w", i, file.Scenarios[i].Name, err)
		}
	}

	return file.Scenarios, nil
}

func validate(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Operations <= 0 {
		return fmt.Errorf("operations must be positive")
	}

	if s.Capacity <= 0 {
		return fmt.Errorf("capacity must be positive")
	}

	if s.ValueBytes < 0 {
		return fmt.Errorf("value_bytes must be non-negative")
	}

	switch s.KeyDistribution {
	case "":
		s.KeyDistribution = Random
	case Sequential, Random, Clustered:
	default:
		return fmt.Errorf("unknown key_distribution %q", s.KeyDistribution)
	}

	return nil
}
