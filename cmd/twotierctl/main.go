// twotierctl is an interactive shell for experimenting with a twotier.Table.
//
// Usage:
//
//	twotierctl [flags]
//
// Flags:
//
//	-c, --capacity     Minimum table capacity (default: from config/defaults)
//	-w, --value-bytes  Fixed value width in bytes (default: from config/defaults)
//	    --config       Use specified config file
//
// Commands (in the shell):
//
//	put <key> [hex-value]   Insert or update an entry
//	get <key>                Look up an entry by key
//	stats                    Show table geometry and load
//	dump [limit]             List live entries
//	bulk <count>             Insert N pseudo-random entries
//	seq <count> [start]      Insert N sequential entries
//	bench <count>            Benchmark put+get performance
//	grow <capacity>          Rebuild the table at a larger capacity
//	help                     Show this help
//	exit / quit / q          Exit
package main

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/peterh/liner"
	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/twotier/internal/config"
	"github.com/calvinalkan/twotier/pkg/twotier"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	env := envMap()

	flags := flag.NewFlagSet("twotierctl", flag.ContinueOnError)
	flagCapacity := flags.IntP("capacity", "c", 0, "minimum table capacity")
	flagValueBytes := flags.IntP("value-bytes", "w", 0, "fixed value width in bytes")
	flagConfig := flags.String("config", "", "use specified config file")

	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}

		return err
	}

	cfg, err := config.Load(config.LoadInput{ConfigPath: *flagConfig, Env: env})
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	capacity := cfg.DefaultCapacity
	if *flagCapacity > 0 {
		capacity = *flagCapacity
	}

	valueBytes := cfg.DefaultValueBytes
	if *flagValueBytes > 0 {
		valueBytes = *flagValueBytes
	}

	table, err := twotier.Create(capacity, valueBytes)
	if err != nil {
		return fmt.Errorf("creating table: %w", err)
	}

	repl := &REPL{table: table, valueBytes: valueBytes}

	return repl.Run()
}

func envMap() map[string]string {
	env := map[string]string{}

	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if ok {
			env[k] = v
		}
	}

	return env
}

// REPL is the interactive command loop.
type REPL struct {
	table      *twotier.Table
	valueBytes int
	liner      *liner.State
}

func historyFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return filepath.Join(home, ".twotierctl_history")
}

// Run starts the REPL loop.
func (r *REPL) Run() error {
	r.liner = liner.NewLiner()
	defer r.liner.Close()

	r.liner.SetCtrlCAborts(true)
	r.liner.SetCompleter(r.completer)

	if f, err := os.Open(historyFile()); err == nil {
		r.liner.ReadHistory(f)
		f.Close()
	}

	stats := r.table.Stats()
	fmt.Printf("twotierctl - two-tier hash table shell (t1_size=%d, t2_size=%d, value_bytes=%d)\n",
		stats.T1Size, stats.T2Size, r.valueBytes)
	fmt.Println("Type 'help' for available commands.")
	fmt.Println()

	for {
		line, err := r.liner.Prompt("twotier> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				fmt.Println("\nBye!")

				break
			}

			return fmt.Errorf("reading input: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		r.liner.AppendHistory(line)

		parts := strings.Fields(line)
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		switch cmd {
		case "exit", "quit", "q":
			fmt.Println("Bye!")
			r.saveHistory()

			return nil
		case "help", "?":
			r.printHelp()
		case "put":
			r.cmdPut(args)
		case "get":
			r.cmdGet(args)
		case "stats", "info":
			r.cmdStats()
		case "dump", "scan", "ls":
			r.cmdDump(args)
		case "bulk":
			r.cmdBulk(args)
		case "seq":
			r.cmdSeq(args)
		case "bench":
			r.cmdBench(args)
		case "grow":
			r.cmdGrow(args)
		case "clear", "cls":
			fmt.Print("\033[H\033[2J")
		default:
			fmt.Printf("Unknown command: %s (type 'help' for commands)\n", cmd)
		}
	}

	r.saveHistory()

	return nil
}

func (r *REPL) saveHistory() {
	if path := historyFile(); path != "" {
		if f, err := os.Create(path); err == nil {
			r.liner.WriteHistory(f)
			f.Close()
		}
	}
}

func (r *REPL) completer(line string) []string {
	commands := []string{
		"put", "get", "stats", "info", "dump", "scan", "ls",
		"bulk", "seq", "bench", "grow", "clear", "cls",
		"help", "exit", "quit", "q",
	}

	var completions []string

	lower := strings.ToLower(line)
	for _, cmd := range commands {
		if strings.HasPrefix(cmd, lower) {
			completions = append(completions, cmd)
		}
	}

	return completions
}

func (r *REPL) printHelp() {
	fmt.Println("Commands:")
	fmt.Println("  put <key> [hex-value]   Insert or update an entry")
	fmt.Println("  get <key>                Look up an entry by key")
	fmt.Println("  stats                    Show table geometry and load")
	fmt.Println("  dump [limit]             List live entries")
	fmt.Println("  bulk <count>             Insert N pseudo-random entries")
	fmt.Println("  seq <count> [start]      Insert N sequential entries")
	fmt.Println("  bench <count>            Benchmark put+get performance")
	fmt.Println("  grow <capacity>          Rebuild the table at a larger capacity")
	fmt.Println("  help                     Show this help")
	fmt.Println("  exit / quit / q          Exit")
	fmt.Println()
	fmt.Println("Keys are decimal uint64. Values are hex, zero-padded or truncated to value_bytes.")
}

func (r *REPL) parseValue(s string) ([]byte, error) {
	value := make([]byte, r.valueBytes)

	if s == "" {
		if _, err := rand.Read(value); err != nil {
			return nil, err
		}

		return value, nil
	}

	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("value must be hex: %w", err)
	}

	copy(value, raw)

	return value, nil
}

func (r *REPL) cmdPut(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: put <key> [hex-value]")

		return
	}

	key, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		fmt.Printf("Error parsing key: %v\n", err)

		return
	}

	var valueArg string
	if len(args) >= 2 {
		valueArg = args[1]
	}

	value, err := r.parseValue(valueArg)
	if err != nil {
		fmt.Printf("Error parsing value: %v\n", err)

		return
	}

	ok := r.table.Insert(key, value)
	if !ok {
		fmt.Printf("OK: inserted %d = %s (note: a displaced entry could not be spilled to overflow)\n", key, hex.EncodeToString(value))

		return
	}

	fmt.Printf("OK: put %d = %s\n", key, hex.EncodeToString(value))
}

func (r *REPL) cmdGet(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: get <key>")

		return
	}

	key, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		fmt.Printf("Error parsing key: %v\n", err)

		return
	}

	value, found := r.table.Find(key)
	if !found {
		fmt.Println("(not found)")

		return
	}

	fmt.Printf("Key:   %d\n", key)
	fmt.Printf("Value: %s\n", hex.EncodeToString(value))
}

func (r *REPL) cmdStats() {
	stats := r.table.Stats()
	fmt.Printf("Table Stats:\n")
	fmt.Printf("  T1 size:                    %d\n", stats.T1Size)
	fmt.Printf("  T2 size:                    %d\n", stats.T2Size)
	fmt.Printf("  Value bytes:                %d\n", stats.ValueBytes)
	fmt.Printf("  Overflow inserts remaining: %d\n", stats.OverflowInsertsRemaining)
	fmt.Printf("  Zero key in overflow:       %v\n", stats.ZeroKeyInOverflow)
	fmt.Printf("  T1 buckets with overflow:   %d\n", stats.T1OverflowChains)
	fmt.Printf("  Needs grow:                 %v\n", r.table.NeedsGrow())
}

func (r *REPL) cmdDump(args []string) {
	limit := 20
	if len(args) >= 1 {
		var err error

		limit, err = strconv.Atoi(args[0])
		if err != nil {
			fmt.Printf("Error parsing limit: %v\n", err)

			return
		}
	}

	count := 0
	r.table.Walk(func(key uint64, value []byte) {
		if count >= limit {
			return
		}

		fmt.Printf("%3d. %d = %s\n", count+1, key, hex.EncodeToString(value))
		count++
	})

	if count == 0 {
		fmt.Println("(empty)")
	} else if count == limit {
		fmt.Printf("... (showing first %d, use 'dump <limit>' for more)\n", limit)
	}
}

func (r *REPL) cmdBulk(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: bulk <count>")

		return
	}

	count, err := strconv.Atoi(args[0])
	if err != nil || count < 1 {
		fmt.Printf("Error: count must be a positive integer\n")

		return
	}

	start := time.Now()

	for i := 0; i < count; i++ {
		var keyBuf [8]byte
		if _, err := rand.Read(keyBuf[:]); err != nil {
			fmt.Printf("Error generating key: %v\n", err)

			return
		}

		value, err := r.parseValue("")
		if err != nil {
			fmt.Printf("Error generating value: %v\n", err)

			return
		}

		r.table.Insert(binary.LittleEndian.Uint64(keyBuf[:]), value)
	}

	elapsed := time.Since(start)
	rate := float64(count) / elapsed.Seconds()
	fmt.Printf("OK: inserted %d entries in %v (%.0f ops/sec)\n", count, elapsed.Round(time.Millisecond), rate)
}

func (r *REPL) cmdSeq(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: seq <count> [start]")

		return
	}

	count, err := strconv.Atoi(args[0])
	if err != nil || count < 1 {
		fmt.Printf("Error: count must be a positive integer\n")

		return
	}

	startNum := uint64(0)
	if len(args) >= 2 {
		startNum, err = strconv.ParseUint(args[1], 10, 64)
		if err != nil {
			fmt.Printf("Error parsing start: %v\n", err)

			return
		}
	}

	start := time.Now()

	for i := uint64(0); i < uint64(count); i++ {
		value, err := r.parseValue("")
		if err != nil {
			fmt.Printf("Error generating value: %v\n", err)

			return
		}

		r.table.Insert(startNum+i, value)
	}

	elapsed := time.Since(start)
	rate := float64(count) / elapsed.Seconds()
	fmt.Printf("OK: inserted %d sequential entries in %v (%.0f ops/sec)\n", count, elapsed.Round(time.Millisecond), rate)
}

func (r *REPL) cmdBench(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: bench <count>")

		return
	}

	count, err := strconv.Atoi(args[0])
	if err != nil || count < 1 {
		fmt.Printf("Error: count must be a positive integer\n")

		return
	}

	keys := make([]uint64, count)
	values := make([][]byte, count)

	for i := range keys {
		var keyBuf [8]byte
		if _, err := rand.Read(keyBuf[:]); err != nil {
			fmt.Printf("Error generating key: %v\n", err)

			return
		}

		keys[i] = binary.LittleEndian.Uint64(keyBuf[:])

		values[i], err = r.parseValue("")
		if err != nil {
			fmt.Printf("Error generating value: %v\n", err)

			return
		}
	}

	fmt.Printf("Benchmarking %d operations...\n", count)

	putStart := time.Now()

	spillLosses := 0

	for i, key := range keys {
		if ok := r.table.Insert(key, values[i]); !ok {
			spillLosses++
		}
	}

	putElapsed := time.Since(putStart)

	getStart := time.Now()
	hits := 0

	for _, key := range keys {
		if _, found := r.table.Find(key); found {
			hits++
		}
	}

	getElapsed := time.Since(getStart)

	fmt.Printf("\nResults:\n")
	fmt.Printf("  Puts:  %d ops in %v (%.0f ops/sec), %d spill losses\n",
		count, putElapsed.Round(time.Millisecond), float64(count)/putElapsed.Seconds(), spillLosses)
	fmt.Printf("  Gets:  %d ops in %v (%.0f ops/sec), %d hits\n",
		count, getElapsed.Round(time.Millisecond), float64(count)/getElapsed.Seconds(), hits)
}

func (r *REPL) cmdGrow(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: grow <capacity>")

		return
	}

	capacity, err := strconv.Atoi(args[0])
	if err != nil || capacity < 1 {
		fmt.Printf("Error: capacity must be a positive integer\n")

		return
	}

	grown, err := r.table.Grow(capacity)
	if err != nil {
		fmt.Printf("Error: %v\n", err)

		return
	}

	r.table = grown
	fmt.Println("OK: grown")
	r.cmdStats()
}
