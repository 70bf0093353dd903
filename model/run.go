package model

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/cepro/flexsizing/milp"
)

// RunOptions configure a single build, solve and extract.
type RunOptions struct {
	Solver milp.Options
	// Epsilon is the zero tolerance for simultaneous use checks, DefaultEpsilon when zero.
	Epsilon float64
	Logger  *slog.Logger
}

// Build formulates the scenario for the given system.
func Build(system System, s Scenario) (*Formulation, error) {
	switch system {
	case Flexible:
		return BuildFlexible(s)
	case Benchmark:
		return BuildBenchmark(s)
	}
	return nil, fmt.Errorf("unknown system %q", system)
}

// Run builds, solves and extracts one scenario. Any error is fatal to the scenario: an infeasible or timed out solve is
// returned as a milp.SolverFailure and nothing is relaxed or retried.
func Run(ctx context.Context, solver milp.Solver, system System, s Scenario, opts RunOptions) (Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	f, err := Build(system, s)
	if err != nil {
		return Result{}, fmt.Errorf("build %s: %w", system, err)
	}

	start := time.Now()
	sol, err := solver.Solve(ctx, f.Problem, opts.Solver)
	if err != nil {
		return Result{}, fmt.Errorf("solve %s: %w", system, err)
	}

	result := Extract(f, sol, opts.Epsilon)
	m := result.Metrics
	if math.Abs(m.CAPEX-m.SourceCAPEX) > 1e-6*math.Max(1, math.Abs(m.CAPEX)) {
		logger.Warn("CAPEX metric differs from the capital cost in the objective",
			"scenario", s.Name, "capex", m.CAPEX, "source_capex", m.SourceCAPEX)
	}

	logger.Info("Solved scenario",
		"scenario", s.Name,
		"system", system,
		"columns", f.Problem.NumVars(),
		"rows", len(f.Problem.Rows),
		"objective", m.Objective,
		"capex", m.CAPEX,
		"elapsed", time.Since(start),
	)
	return result, nil
}
