// twotier-bench runs scenario-driven benchmarks against an in-process
// twotier.Table and writes a JSON report.
//
// Unlike tk-bench (which drives a separate CLI binary through hyperfine),
// twotier-bench benchmarks the library directly: there is no subprocess to
// shell out to, so it times Insert/Find calls in-process and reports
// throughput and hit rate per scenario.
package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/natefinch/atomic"
	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/twotier/internal/bench/scenario"
	"github.com/calvinalkan/twotier/pkg/twotier"
)

// Config holds all benchmark configuration.
type Config struct {
	ScenarioFile string
	OutFile      string
}

// Report is the top-level JSON report shape.
type Report struct {
	GeneratedAt time.Time     `json:"generated_at"`
	Results     []BenchResult `json:"results"`
}

// BenchResult holds a single scenario's benchmark result.
type BenchResult struct {
	Scenario      string  `json:"scenario"`
	Operations    int     `json:"operations"`
	T1Size        uint64  `json:"t1_size"`
	T2Size        uint64  `json:"t2_size"`
	InsertSeconds float64 `json:"insert_seconds"`
	InsertOpsSec  float64 `json:"insert_ops_per_sec"`
	FindSeconds   float64 `json:"find_seconds"`
	FindOpsSec    float64 `json:"find_ops_per_sec"`
	FindHits      int     `json:"find_hits"`
	SpillLosses   int     `json:"spill_losses"`
}

var errNoScenarios = errors.New("scenario file contains no scenarios")

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "twotier-bench: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := Config{}

	flags := flag.NewFlagSet("twotier-bench", flag.ContinueOnError)
	flags.StringVarP(&cfg.ScenarioFile, "scenarios", "s", "", "path to a scenario YAML file (required)")
	flags.StringVarP(&cfg.OutFile, "out", "o", ".twotier-bench/report.json", "output path for the JSON report")

	flags.Usage = func() {
		fmt.Fprint(os.Stderr, "Usage: twotier-bench -s <scenarios.yaml> [-o report.json]\n\n")
		fmt.Fprint(os.Stderr, "Benchmarks Table.Insert/Table.Find throughput for each scenario in the file.\n\n")
		flags.PrintDefaults()
	}

	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}

		return err
	}

	if cfg.ScenarioFile == "" {
		flags.Usage()

		return errors.New("twotier-bench: -s/--scenarios is required")
	}

	scenarios, err := scenario.Load(cfg.ScenarioFile)
	if err != nil {
		return fmt.Errorf("loading scenarios: %w", err)
	}

	if len(scenarios) == 0 {
		return errNoScenarios
	}

	report := Report{GeneratedAt: time.Now()}

	for _, s := range scenarios {
		fmt.Printf("running %s (%d ops, capacity %d, value_bytes %d, %s keys)...\n",
			s.Name, s.Operations, s.Capacity, s.ValueBytes, s.KeyDistribution)

		result, err := runScenario(s)
		if err != nil {
			return fmt.Errorf("scenario %q: %w", s.Name, err)
		}

		report.Results = append(report.Results, result)
	}

	return writeReport(cfg.OutFile, report)
}

func runScenario(s scenario.Scenario) (BenchResult, error) {
	table, err := twotier.Create(s.Capacity, s.ValueBytes)
	if err != nil {
		return BenchResult{}, err
	}

	keys := generateKeys(s)
	values := generateValues(s)

	insertStart := time.Now()

	spillLosses := 0

	for i, key := range keys {
		if ok := table.Insert(key, values[i]); !ok {
			spillLosses++
		}
	}

	insertElapsed := time.Since(insertStart)

	findStart := time.Now()

	hits := 0

	for _, key := range keys {
		if _, found := table.Find(key); found {
			hits++
		}
	}

	findElapsed := time.Since(findStart)

	stats := table.Stats()

	return BenchResult{
		Scenario:      s.Name,
		Operations:    s.Operations,
		T1Size:        stats.T1Size,
		T2Size:        stats.T2Size,
		InsertSeconds: insertElapsed.Seconds(),
		InsertOpsSec:  opsPerSec(s.Operations, insertElapsed),
		FindSeconds:   findElapsed.Seconds(),
		FindOpsSec:    opsPerSec(s.Operations, findElapsed),
		FindHits:      hits,
		SpillLosses:   spillLosses,
	}, nil
}

func opsPerSec(ops int, elapsed time.Duration) float64 {
	if elapsed <= 0 {
		return 0
	}

	return float64(ops) / elapsed.Seconds()
}

func generateKeys(s scenario.Scenario) []uint64 {
	keys := make([]uint64, s.Operations)
	rng := rand.New(rand.NewSource(s.Seed))

	switch s.KeyDistribution {
	case scenario.Sequential:
		for i := range keys {
			keys[i] = uint64(i)
		}
	case scenario.Clustered:
		// Pseudo-random keys whose low three bits cycle through 0..6. The
		// primary hash mixes all key bits, so these keys do not land in
		// shared primary-tier neighborhoods more often than Random keys.
		clusterWidth := uint64(7)
		for i := range keys {
			keys[i] = (rng.Uint64() &^ clusterWidth) | (uint64(i) % clusterWidth)
		}
	default: // scenario.Random
		for i := range keys {
			keys[i] = rng.Uint64()
		}
	}

	return keys
}

func generateValues(s scenario.Scenario) [][]byte {
	values := make([][]byte, s.Operations)
	rng := rand.New(rand.NewSource(s.Seed + 1))

	for i := range values {
		v := make([]byte, s.ValueBytes)
		rng.Read(v)
		values[i] = v
	}

	return values
}

func writeReport(path string, report Report) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}

	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}

	fmt.Printf("report written to %s\n", path)

	return nil
}
