// Package bnb is a pure Go MILP solver: depth first branch and bound over LP relaxations solved
// with a two phase dense simplex on gonum matrices. It suits small and medium problems such as
// short dispatch horizons.
package bnb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/cepro/flexsizing/milp"
)

const (
	defaultSimplexTol     = 1e-9
	defaultIntegralityTol = 1e-6
	// rounding is attempted at the root and then on every n'th node
	defaultRoundingEvery = 25
)

// Solver implements milp.Solver.
type Solver struct {
	SimplexTol     float64
	IntegralityTol float64
	RoundingEvery  int
	Logger         *slog.Logger
}

func New() *Solver {
	return &Solver{
		SimplexTol:     defaultSimplexTol,
		IntegralityTol: defaultIntegralityTol,
		RoundingEvery:  defaultRoundingEvery,
		Logger:         slog.Default(),
	}
}

type node struct {
	lower []float64
	upper []float64
	// bound is the objective of the parent relaxation, a lower bound for everything below this node
	bound float64
	depth int
}

// search holds the state of one Solve call.
type search struct {
	solver    *Solver
	problem   *milp.Problem
	gap       float64
	incumbent *milp.Solution
	nodes     int
}

func (s *Solver) Solve(ctx context.Context, problem *milp.Problem, options milp.Options) (milp.Solution, error) {
	if err := problem.Validate(); err != nil {
		return milp.Solution{}, milp.Failure(milp.StatusError, fmt.Errorf("validate problem: %w", err))
	}

	if options.TimeLimit > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, options.TimeLimit)
		defer cancel()
	}

	srch := &search{
		solver:  s,
		problem: problem,
		gap:     options.Gap(),
	}
	start := time.Now()

	root := node{
		lower: make([]float64, problem.NumVars()),
		upper: make([]float64, problem.NumVars()),
		bound: math.Inf(-1),
	}
	for j, col := range problem.Columns {
		root.lower[j], root.upper[j] = col.Lower, col.Upper
		if col.Kind != milp.Continuous {
			root.lower[j] = math.Ceil(col.Lower - s.IntegralityTol)
			root.upper[j] = math.Floor(col.Upper + s.IntegralityTol)
		}
	}

	stack := []node{root}
	for len(stack) > 0 {
		if err := contextErr(ctx); err != nil {
			return milp.Solution{}, srch.interrupted(err, stack)
		}

		if srch.incumbent != nil && srch.withinGap(openBound(stack)) {
			break
		}

		nd := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if srch.pruned(nd.bound) {
			continue
		}

		result, err := solveRelaxation(problem, nd.lower, nd.upper, s.SimplexTol)
		srch.nodes++
		if err != nil {
			return milp.Solution{}, milp.Failure(milp.StatusError, fmt.Errorf("solve relaxation at node %d: %w", srch.nodes, err))
		}

		switch result.status {
		case milp.StatusInfeasible:
			if srch.nodes == 1 {
				return milp.Solution{}, milp.Failure(milp.StatusInfeasible, milp.ErrInfeasible)
			}
			continue
		case milp.StatusUnbounded:
			return milp.Solution{}, milp.Failure(milp.StatusUnbounded, milp.ErrUnbounded)
		}

		if srch.pruned(result.objective) {
			continue
		}

		branchVar := s.mostFractional(problem, result.x)
		if branchVar < 0 {
			srch.accept(result, nd.depth)
			continue
		}

		if srch.nodes == 1 || (s.RoundingEvery > 0 && srch.nodes%s.RoundingEvery == 0) {
			if err := srch.round(nd, result.x); err != nil {
				return milp.Solution{}, milp.Failure(milp.StatusError, err)
			}
		}

		value := result.x[branchVar]
		down := nd.child(result.objective)
		down.upper[branchVar] = math.Floor(value)
		up := nd.child(result.objective)
		up.lower[branchVar] = math.Ceil(value)

		// the child nearer to the relaxation value is explored first
		if value-math.Floor(value) < 0.5 {
			stack = append(stack, up, down)
		} else {
			stack = append(stack, down, up)
		}
	}

	if srch.incumbent == nil {
		return milp.Solution{}, milp.Failure(milp.StatusInfeasible, milp.ErrInfeasible)
	}

	solution := *srch.incumbent
	solution.Status = milp.StatusOptimal
	solution.Nodes = srch.nodes
	solution.BestBound = math.Min(solution.Objective, openBound(stack))
	solution.Gap = relativeGap(solution.Objective, solution.BestBound)

	s.logger().Debug("Solved MILP",
		"problem", problem.Name,
		"objective", solution.Objective,
		"gap", solution.Gap,
		"nodes", srch.nodes,
		"elapsed", time.Since(start),
	)
	return solution, nil
}

func (s *Solver) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

// mostFractional returns the integer column whose value is furthest from integral, or -1.
func (s *Solver) mostFractional(problem *milp.Problem, x []float64) int {
	best, bestDist := -1, s.IntegralityTol
	for j, col := range problem.Columns {
		if col.Kind == milp.Continuous {
			continue
		}
		frac := x[j] - math.Floor(x[j])
		dist := math.Min(frac, 1-frac)
		if dist > bestDist {
			best, bestDist = j, dist
		}
	}
	return best
}

func (nd node) child(bound float64) node {
	lower := make([]float64, len(nd.lower))
	copy(lower, nd.lower)
	upper := make([]float64, len(nd.upper))
	copy(upper, nd.upper)
	return node{lower: lower, upper: upper, bound: bound, depth: nd.depth + 1}
}

// pruned reports whether a subtree with the given bound cannot improve the incumbent by more
// than the accepted gap.
func (srch *search) pruned(bound float64) bool {
	if srch.incumbent == nil {
		return false
	}
	return srch.withinGap(bound)
}

func (srch *search) withinGap(bound float64) bool {
	return relativeGap(srch.incumbent.Objective, bound) <= srch.gap
}

// accept records an integral relaxation as incumbent if it improves on the current one.
func (srch *search) accept(result relaxationResult, depth int) {
	if srch.incumbent != nil && result.objective >= srch.incumbent.Objective {
		return
	}
	values := make([]float64, len(result.x))
	copy(values, result.x)
	for j, col := range srch.problem.Columns {
		if col.Kind != milp.Continuous {
			values[j] = math.Round(values[j])
		}
	}
	srch.incumbent = &milp.Solution{
		Objective: result.objective,
		Values:    values,
	}
	srch.solver.logger().Debug("New incumbent",
		"problem", srch.problem.Name,
		"objective", result.objective,
		"node", srch.nodes,
		"depth", depth,
	)
}

// round fixes every integer column to its rounded relaxation value and solves for the
// continuous columns, giving an early incumbent.
func (srch *search) round(nd node, x []float64) error {
	fixed := nd.child(nd.bound)
	for j, col := range srch.problem.Columns {
		if col.Kind == milp.Continuous {
			continue
		}
		v := math.Min(math.Max(math.Round(x[j]), nd.lower[j]), nd.upper[j])
		fixed.lower[j], fixed.upper[j] = v, v
	}
	result, err := solveRelaxation(srch.problem, fixed.lower, fixed.upper, srch.solver.SimplexTol)
	if err != nil {
		return fmt.Errorf("solve rounded relaxation: %w", err)
	}
	if result.status == milp.StatusOptimal {
		srch.accept(result, fixed.depth)
	}
	return nil
}

// interrupted builds the failure returned when the context ends before the search does.
func (srch *search) interrupted(err error, stack []node) error {
	var incumbent *milp.Solution
	if srch.incumbent != nil {
		sol := *srch.incumbent
		sol.Status = milp.StatusTimeLimit
		sol.Nodes = srch.nodes
		sol.BestBound = math.Min(sol.Objective, openBound(stack))
		sol.Gap = relativeGap(sol.Objective, sol.BestBound)
		incumbent = &sol
	}
	status := milp.StatusError
	if errors.Is(err, context.DeadlineExceeded) {
		status = milp.StatusTimeLimit
	}
	return &milp.SolverFailure{
		Status:    status,
		Err:       fmt.Errorf("stopped after %d nodes: %w", srch.nodes, err),
		Incumbent: incumbent,
	}
}

// contextErr is ctx.Err, also reporting a deadline that has passed before the context's timer fired.
func contextErr(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if deadline, ok := ctx.Deadline(); ok && !time.Now().Before(deadline) {
		return context.DeadlineExceeded
	}
	return nil
}

// openBound is the smallest bound among unexplored nodes, +Inf when there are none.
func openBound(stack []node) float64 {
	bound := math.Inf(1)
	for _, nd := range stack {
		bound = math.Min(bound, nd.bound)
	}
	return bound
}

func relativeGap(objective, bound float64) float64 {
	if math.IsInf(bound, 1) {
		return 0
	}
	if math.IsInf(bound, -1) {
		return math.Inf(1)
	}
	diff := objective - bound
	if diff <= 1e-9 {
		return 0
	}
	return diff / math.Max(math.Abs(objective), 1e-10)
}
