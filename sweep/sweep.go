// Package sweep solves many independent scenarios on a fixed pool of workers.
package sweep

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/cepro/flexsizing/config"
	"github.com/cepro/flexsizing/milp"
	"github.com/cepro/flexsizing/model"
	"github.com/cepro/flexsizing/timeseries"
	"github.com/google/uuid"
)

type Config struct {
	// Workers is the number of concurrent solves, runtime.NumCPU() when zero.
	Workers int
	Solver  milp.Solver
	Options model.RunOptions

	// Outcomes receives every outcome as soon as its job finishes, when set. The sweep blocks on it, so it must be
	// drained while the sweep runs. It is not closed.
	Outcomes chan<- Outcome

	Logger *slog.Logger
}

// Run solves every job and collects the results in job order. Scenario failures are recorded in the results and
// never stop the sweep. When ctx is cancelled no further jobs are started and ctx's error is returned together with
// whatever finished.
func Run(ctx context.Context, cfg Config, jobs []Job) (Results, error) {
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	options := cfg.Options
	if options.Logger == nil {
		options.Logger = logger
	}

	outcomes := make([]*Outcome, len(jobs))
	indexes := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				outcome := runJob(ctx, cfg.Solver, options, jobs[i])
				if outcome.Failure != nil {
					logger.Warn("Scenario failed", "run_id", outcome.RunID, "error", outcome.Failure)
				}
				outcomes[i] = &outcome
				if cfg.Outcomes != nil {
					cfg.Outcomes <- outcome
				}
			}
		}()
	}

dispatch:
	for i := range jobs {
		if ctx.Err() != nil {
			break
		}
		select {
		case <-ctx.Done():
			break dispatch
		case indexes <- i:
		}
	}
	close(indexes)
	wg.Wait()

	var results Results
	for _, o := range outcomes {
		if o != nil {
			results.add(*o)
		}
	}
	logger.Info("Sweep finished", "jobs", len(jobs), "succeeded", results.Succeeded(), "failed", len(results.Failures))

	return results, ctx.Err()
}

func runJob(ctx context.Context, solver milp.Solver, options model.RunOptions, job Job) Outcome {
	outcome := Outcome{
		RunID:   uuid.New(),
		Key:     job.Key,
		Variant: job.Variant,
	}
	start := time.Now()
	result, err := model.Run(ctx, solver, job.Key.System, job.Scenario, options)
	outcome.Elapsed = time.Since(start)
	if err != nil {
		outcome.Failure = &Failure{
			Key:     job.Key,
			Variant: job.Variant,
			Kind:    Classify(err),
			Reason:  err.Error(),
		}
		return outcome
	}
	outcome.Result = &result
	return outcome
}

// Classify returns the failure kind of a scenario error.
func Classify(err error) FailureKind {
	var alignErr *timeseries.InputAlignmentError
	var configErr *config.ConfigurationError
	switch {
	case errors.As(err, &alignErr):
		return KindInputAlignment
	case errors.As(err, &configErr):
		return KindConfiguration
	case errors.Is(err, milp.ErrTimeLimit):
		return KindTimeout
	case errors.Is(err, context.Canceled):
		return KindInterrupted
	}
	return KindSolver
}
