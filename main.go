package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/cepro/flexsizing/assets"
	"github.com/cepro/flexsizing/config"
	"github.com/cepro/flexsizing/inputs"
	"github.com/cepro/flexsizing/milp"
	"github.com/cepro/flexsizing/milp/bnb"
	"github.com/cepro/flexsizing/milp/highs"
	"github.com/cepro/flexsizing/model"
	"github.com/cepro/flexsizing/recorder"
	"github.com/cepro/flexsizing/report"
	"github.com/cepro/flexsizing/sweep"
	"github.com/cepro/flexsizing/timeseries"
	"gopkg.in/cheggaaa/pb.v1"
)

// durationCurveSamples is the number of points exported per price duration curve.
const durationCurveSamples = 200

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "sweep.yaml", "sweep configuration file")
	outDir := flag.String("out", "results", "directory the CSV results are written to")
	dbPath := flag.String("db", "", "SQLite file the runs are recorded in, <out>/results.sqlite when empty")
	solverName := flag.String("solver", "", "solver to use (bnb or highs), overriding the configuration")
	writeFlows := flag.Bool("flows", false, "write the flow table of every solved variant")
	debug := flag.Bool("debug", false, "log at debug level")
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	slog.Info("Starting sweep...", "config", *configPath)

	cfg, err := config.Read(*configPath)
	if err != nil {
		slog.Error("Failed to read config", "error", err)
		return 1
	}
	if *solverName != "" {
		cfg.Solver.Name = *solverName
		err = cfg.Validate()
		if err != nil {
			slog.Error("Invalid solver", "error", err)
			return 1
		}
	}

	files, err := inputs.Load(cfg)
	if err != nil {
		slog.Error("Failed to load inputs", "error", err)
		return 1
	}

	plan := sweep.Plan{
		Variants:       cfg.Variants,
		MinLoad:        cfg.MinLoad,
		Constants:      assets.Defaults(),
		CapacityBounds: cfg.CapacityBoundsByID(),
		Benchmark:      !cfg.Sweep.SkipBenchmark,
	}
	for _, capex := range cfg.CapexScenarios {
		plan.Capex = append(plan.Capex, sweep.CapexScenario{Name: capex.Name, Capex: model.Capex(capex.Capex)})
	}
	var failures []sweep.Failure
	plan.Pairs, failures = preparePairs(cfg, files, plan)

	jobs, planFailures := plan.Jobs()
	failures = append(failures, planFailures...)
	slog.Info("Planned sweep", "jobs", len(jobs), "pairs", len(plan.Pairs), "solver", cfg.Solver.Name)

	err = os.MkdirAll(*outDir, 0o755)
	if err != nil {
		slog.Error("Failed to create output directory", "error", err)
		return 1
	}
	if *dbPath == "" {
		*dbPath = filepath.Join(*outDir, "results.sqlite")
	}

	rec, err := recorder.New(*dbPath)
	if err != nil {
		slog.Error("Failed to create recorder", "error", err)
		return 1
	}
	recorderDone := make(chan struct{})
	go func() {
		rec.Run(context.Background())
		close(recorderDone)
	}()

	// an interrupt stops new solves from starting, everything finished so far is still recorded and written out
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	bar := pb.New(len(jobs))
	bar.Output = os.Stderr
	bar.ShowTimeLeft = true
	bar.Start()

	// every outcome goes to the recorder, and ticks the progress bar
	outcomes := make(chan sweep.Outcome)
	fanOutDone := make(chan struct{})
	go func() {
		for outcome := range outcomes {
			rec.Outcomes <- outcome
			bar.Increment()
		}
		close(rec.Outcomes)
		close(fanOutDone)
	}()

	results, err := sweep.Run(ctx, sweep.Config{
		Workers: cfg.Sweep.Workers,
		Solver:  newSolver(cfg.Solver),
		Options: model.RunOptions{
			Solver:  milp.Options{RelGap: cfg.Solver.MIPGap, TimeLimit: cfg.Solver.Timeout},
			Epsilon: cfg.Sweep.Epsilon,
		},
		Outcomes: outcomes,
	}, jobs)
	close(outcomes)
	<-fanOutDone
	<-recorderDone
	bar.FinishPrint("Finished sweep")
	if err != nil {
		slog.Warn("Sweep interrupted", "error", err)
	}

	results.Failures = append(failures, results.Failures...)
	recorded, notRecorded := rec.Counts()
	slog.Info("Recorded runs", "db", *dbPath, "recorded", recorded, "failed", notRecorded)

	err = writeOutputs(*outDir, *writeFlows, &results, plan.Pairs)
	if err != nil {
		slog.Error("Failed to write results", "error", err)
		return 1
	}

	byKind := map[sweep.FailureKind]int{}
	for _, f := range results.Failures {
		byKind[f.Kind]++
	}
	for kind, n := range byKind {
		slog.Warn("Failed scenarios", "kind", kind, "count", n)
	}
	slog.Info("Exiting", "succeeded", results.Succeeded(), "failed", len(results.Failures))

	if results.Succeeded() == 0 {
		return 1
	}
	return 0
}

// preparePairs aligns the inputs of every configured electricity and gas scenario pair. A pair that cannot be
// prepared fails every job it would have produced.
func preparePairs(cfg config.Config, files inputs.Files, plan sweep.Plan) ([]sweep.Pair, []sweep.Failure) {
	var pairs []sweep.Pair
	var failures []sweep.Failure

	options := timeseries.Options{
		Hours:                 cfg.Hours,
		Step:                  cfg.Step,
		PowerDemandRatio:      cfg.PowerDemandRatio,
		AmpValues:             cfg.AmpValues,
		PositionalElectricity: cfg.Inputs.PositionalElectricity,
	}
	for _, el := range cfg.ElectricityScenarios {
		for _, gas := range el.GasScenarios {
			prepared, err := timeseries.Prepare(timeseries.Inputs{
				HeatDemand:  files.HeatDemand,
				Electricity: files.Electricity[el.Name],
				Gas:         files.Gas[gas],
			}, options)
			if err != nil {
				slog.Warn("Failed to prepare inputs", "electricity", el.Name, "gas", gas, "error", err)
				for _, key := range plan.Keys(el.Name, gas) {
					failures = append(failures, sweep.Failure{Key: key, Kind: sweep.Classify(err), Reason: err.Error()})
				}
				continue
			}
			pairs = append(pairs, sweep.Pair{ElectricityScenario: el.Name, GasScenario: gas, Prepared: prepared})
		}
	}
	return pairs, failures
}

func newSolver(cfg config.SolverConfig) milp.Solver {
	if cfg.Name == "highs" {
		s := highs.New(cfg.Binary)
		s.Threads = cfg.Threads
		return s
	}
	return bnb.New()
}

func writeOutputs(dir string, flows bool, results *sweep.Results, pairs []sweep.Pair) error {
	err := writeFile(filepath.Join(dir, "results.csv"), func(w io.Writer) error {
		return report.WriteRows(w, report.Flatten(results))
	})
	if err != nil {
		return err
	}
	err = writeFile(filepath.Join(dir, "failures.csv"), func(w io.Writer) error {
		return report.WriteFailures(w, results.Failures)
	})
	if err != nil {
		return err
	}
	err = writeFile(filepath.Join(dir, "duration_curves.csv"), func(w io.Writer) error {
		return report.WriteDurationCurves(w, report.DurationCurves(pairs, durationCurveSamples))
	})
	if err != nil {
		return err
	}

	if !flows {
		return nil
	}
	for _, scenario := range results.Scenarios {
		for _, label := range scenario.Order {
			variant := scenario.Variants[label]
			err = writeFile(filepath.Join(dir, report.FlowFileName(scenario.Key, label)), func(w io.Writer) error {
				return report.WriteFlows(w, variant.Flows)
			})
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	err = write(f)
	if err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
