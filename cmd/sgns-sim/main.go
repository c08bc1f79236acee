// Command sgns-sim loads a model config, runs one or more independent
// replicates, and samples population state to CSV, TSV, binary, or stdout.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/achemlab/sgnssim/internal/batch"
	"github.com/achemlab/sgnssim/internal/config"
	"github.com/achemlab/sgnssim/internal/logger"
	"github.com/achemlab/sgnssim/internal/sample"
	"github.com/achemlab/sgnssim/internal/sgns"
)

func main() {
	opts, err := parseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		usage()
		os.Exit(1)
	}

	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: sgns-sim -i<file> [-t[start-]stop[:interval]] [-b<count>] [-T<threads>] [-o<file>] [-f<csv|tsv|bin>] [+name=value ...] [--id <run-id>]")
}

type timeRange struct {
	start, stop, interval float64
}

type options struct {
	timeRange  timeRange
	batchCount int
	threads    int
	inputFile  string
	outputFile string
	format     string
	overrides  map[string]string
	runID      string
}

func parseArgs(args []string) (*options, error) {
	opts := &options{
		timeRange:  timeRange{start: 0, stop: 100, interval: 1},
		batchCount: 1,
		format:     "csv",
		overrides:  make(map[string]string),
	}

	for i := 0; i < len(args); i++ {
		a := args[i]
		switch {
		case a == "--id":
			i++
			if i >= len(args) {
				return nil, fmt.Errorf("--id requires a value")
			}
			opts.runID = args[i]
		case strings.HasPrefix(a, "+"):
			kv := a[1:]
			eq := strings.IndexByte(kv, '=')
			if eq < 0 {
				return nil, fmt.Errorf("malformed parameter override %q, want +name=value", a)
			}
			opts.overrides[kv[:eq]] = kv[eq+1:]
		case strings.HasPrefix(a, "-t"):
			tr, err := parseTimeRange(a[2:])
			if err != nil {
				return nil, fmt.Errorf("-t: %w", err)
			}
			opts.timeRange = tr
		case strings.HasPrefix(a, "-b"):
			n, err := strconv.Atoi(a[2:])
			if err != nil {
				return nil, fmt.Errorf("-b: %w", err)
			}
			opts.batchCount = n
		case strings.HasPrefix(a, "-T"):
			n, err := strconv.Atoi(a[2:])
			if err != nil {
				return nil, fmt.Errorf("-T: %w", err)
			}
			opts.threads = n
		case strings.HasPrefix(a, "-i"):
			opts.inputFile = a[2:]
		case strings.HasPrefix(a, "-o"):
			opts.outputFile = a[2:]
		case strings.HasPrefix(a, "-f"):
			opts.format = a[2:]
		default:
			return nil, fmt.Errorf("unrecognized argument %q", a)
		}
	}

	if opts.inputFile == "" {
		return nil, fmt.Errorf("-i<file> is required")
	}
	if opts.batchCount <= 0 {
		return nil, fmt.Errorf("-b<count> must be positive, got %d", opts.batchCount)
	}
	return opts, nil
}

// parseTimeRange parses the spec's "[start-]stop[:interval]" grammar:
// "100" (stop only), "10-100" (start and stop), "10-100:5" (with interval).
func parseTimeRange(s string) (timeRange, error) {
	tr := timeRange{start: 0, interval: 1}
	rest := s
	if idx := strings.IndexByte(rest, ':'); idx >= 0 {
		ivalStr := rest[idx+1:]
		rest = rest[:idx]
		ival, err := strconv.ParseFloat(ivalStr, 64)
		if err != nil {
			return tr, fmt.Errorf("bad interval %q: %w", ivalStr, err)
		}
		if ival <= 0 {
			return tr, fmt.Errorf("interval must be positive, got %v", ival)
		}
		tr.interval = ival
	}
	if idx := strings.IndexByte(rest, '-'); idx >= 0 {
		startStr, stopStr := rest[:idx], rest[idx+1:]
		start, err := strconv.ParseFloat(startStr, 64)
		if err != nil {
			return tr, fmt.Errorf("bad start %q: %w", startStr, err)
		}
		stop, err := strconv.ParseFloat(stopStr, 64)
		if err != nil {
			return tr, fmt.Errorf("bad stop %q: %w", stopStr, err)
		}
		tr.start, tr.stop = start, stop
	} else {
		stop, err := strconv.ParseFloat(rest, 64)
		if err != nil {
			return tr, fmt.Errorf("bad stop %q: %w", rest, err)
		}
		tr.stop = stop
	}
	if tr.stop < tr.start {
		return tr, fmt.Errorf("stop (%v) precedes start (%v)", tr.stop, tr.start)
	}
	return tr, nil
}

func run(opts *options) error {
	raw, err := readModelFile(opts.inputFile)
	if err != nil {
		return err
	}
	if err := applyOverrides(raw, opts.overrides); err != nil {
		return err
	}

	cfg, err := decodeModelConfig(raw)
	if err != nil {
		return err
	}

	model, err := config.BuildModelFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("building model: %w", err)
	}

	rootType, err := rootTypeName(cfg)
	if err != nil {
		return err
	}

	seed := defaultSeed()
	if cfg.Seed != nil {
		seed = *cfg.Seed
	}

	log := logger.New("info")
	tr := opts.timeRange

	runner := batch.NewRunner(model, rootType, seed, nil)
	runner.Workers = opts.threads
	runner.Run = func(run int, sim *sgns.Simulation, env *sgns.HierCompartment) error {
		target, closeTarget, err := targetForRun(opts, run)
		if err != nil {
			return err
		}
		defer closeTarget()

		sim.SetTime(tr.start)
		sampler := sample.NewSampler(target)
		for t := tr.start; t <= tr.stop; t += tr.interval {
			sim.RunUntil(t)
			if err := sampler.SampleState(sim.Time(), env); err != nil {
				return fmt.Errorf("replicate %d: sampling at t=%v: %w", run, t, err)
			}
		}
		return nil
	}

	results, err := runner.RunAll(opts.batchCount)
	if err != nil {
		return err
	}

	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
			log.Errorf("replicate %d (seed %d) failed: %v", res.Run, res.Seed, res.Err)
		}
	}
	printSummary(cfg.Name, opts.runID, &opts.timeRange, results)
	if failed > 0 {
		return fmt.Errorf("%d of %d replicates failed", failed, len(results))
	}
	return nil
}

func readModelFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading model file: %w", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing model file: %w", err)
	}
	return raw, nil
}

// applyOverrides applies +name=value command-line overrides to the raw,
// still-untyped model config, one top-level scalar field at a time (e.g.
// +seed=12345, +name=my-run). Nested field overrides aren't supported;
// models needing per-reaction or per-compartment overrides should express
// the variation in the config file itself.
func applyOverrides(raw map[string]any, overrides map[string]string) error {
	for name, valStr := range overrides {
		raw[name] = parseOverrideValue(valStr)
	}
	return nil
}

func parseOverrideValue(s string) any {
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return s
}

func decodeModelConfig(raw map[string]any) (config.ModelConfig, error) {
	merged, err := json.Marshal(raw)
	if err != nil {
		return config.ModelConfig{}, fmt.Errorf("re-encoding overridden model: %w", err)
	}
	var cfg config.ModelConfig
	if err := json.Unmarshal(merged, &cfg); err != nil {
		return config.ModelConfig{}, fmt.Errorf("decoding model config: %w", err)
	}
	return cfg, nil
}

func rootTypeName(cfg config.ModelConfig) (string, error) {
	for _, ct := range cfg.CompartmentTypes {
		if ct.Parent == "" {
			return ct.Name, nil
		}
	}
	return "", fmt.Errorf("model %q declares no root compartment type (one type must have an empty parent)", cfg.Name)
}

// seedSkew is added to every default seed, so two calls that read the same
// clock value in one process still get different seeds.
var seedSkew atomic.Int64

// defaultSeed combines wall clock, process id and an internal skew,
// matching the original's scheme for avoiding seed collisions across
// near-simultaneous invocations.
func defaultSeed() int64 {
	return (time.Now().UnixNano() ^ int64(os.Getpid())<<32) + seedSkew.Add(1)
}

func targetForRun(opts *options, run int) (sample.Target, func() error, error) {
	if opts.outputFile == "" {
		t := sample.NewStdoutTarget()
		return t, func() error { return nil }, nil
	}

	switch opts.format {
	case "bin":
		path := expandTemplate(opts.outputFile, run)
		f, err := os.Create(path)
		if err != nil {
			return nil, nil, fmt.Errorf("opening %s: %w", path, err)
		}
		return sample.NewBinaryTarget(f), f.Close, nil
	case "tsv":
		return csvTargetForRun(opts, run, "\t")
	default:
		return csvTargetForRun(opts, run, ",")
	}
}

func csvTargetForRun(opts *options, run int, delimiter string) (sample.Target, func() error, error) {
	dir := expandTemplate(opts.outputFile, run)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("creating output directory %s: %w", dir, err)
	}
	t := sample.NewCSVTarget(dir, delimiter)
	return t, t.Close, nil
}

// expandTemplate fills "%d" in the readout-file template with run, or
// appends ".<run>" when the template has no placeholder and run is not 0;
// run 0 uses the template unchanged.
func expandTemplate(tmpl string, run int) string {
	if strings.Contains(tmpl, "%d") {
		return fmt.Sprintf(tmpl, run)
	}
	if run == 0 {
		return tmpl
	}
	return fmt.Sprintf("%s.%d", tmpl, run)
}

func printSummary(modelName, runID string, tr *timeRange, results []batch.Result) {
	label := modelName
	if runID != "" {
		label = fmt.Sprintf("%s (run %s)", modelName, runID)
	}
	fmt.Printf("sgns-sim: model=%s replicates=%s time=[%g,%g]:%g\n",
		label, humanize.Comma(int64(len(results))), tr.start, tr.stop, tr.interval)
	for _, res := range results {
		status := "ok"
		if res.Err != nil {
			status = "failed: " + res.Err.Error()
		}
		fmt.Printf("  replicate %d [%s] (seed=%d, steps=%s, took=%s): %s\n",
			res.Run, res.ID, res.Seed, humanize.Comma(res.Steps), res.Took, status)
	}
}
