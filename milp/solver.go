package milp

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"
)

// DefaultRelGap is the relative MIP gap accepted when Options.RelGap is unset.
const DefaultRelGap = 0.0005

// Status is the termination status reported by a Solver.
type Status int

const (
	StatusUnknown Status = iota
	StatusOptimal
	StatusInfeasible
	StatusUnbounded
	StatusTimeLimit
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "optimal"
	case StatusInfeasible:
		return "infeasible"
	case StatusUnbounded:
		return "unbounded"
	case StatusTimeLimit:
		return "time limit"
	case StatusError:
		return "error"
	}
	return "unknown"
}

var (
	ErrInfeasible = errors.New("problem is infeasible")
	ErrUnbounded  = errors.New("problem is unbounded")
	ErrTimeLimit  = errors.New("solver time limit reached")
)

// SolverFailure is returned when a solve terminates with anything other than an optimal
// solution within the requested gap.
type SolverFailure struct {
	Status Status
	Err    error

	// Incumbent holds the best known solution when the solver stopped early, nil otherwise.
	Incumbent *Solution
}

func (f *SolverFailure) Error() string {
	if f.Err == nil {
		return fmt.Sprintf("solver failure: %s", f.Status)
	}
	return fmt.Sprintf("solver failure: %s: %v", f.Status, f.Err)
}

func (f *SolverFailure) Unwrap() error {
	return f.Err
}

// Is lets errors.Is match a failure against the status sentinels.
func (f *SolverFailure) Is(target error) bool {
	switch target {
	case ErrInfeasible:
		return f.Status == StatusInfeasible
	case ErrUnbounded:
		return f.Status == StatusUnbounded
	case ErrTimeLimit:
		return f.Status == StatusTimeLimit
	}
	return false
}

// Failure is a convenience constructor for a SolverFailure.
func Failure(status Status, err error) *SolverFailure {
	return &SolverFailure{Status: status, Err: err}
}

// Options configure a single solve.
type Options struct {
	// RelGap is the accepted relative gap between incumbent and bound, DefaultRelGap when nil. A zero gap asks for
	// a proven optimum.
	RelGap *float64
	// TimeLimit is the wall clock budget for the solve, no limit when zero.
	TimeLimit time.Duration
}

// Gap returns the effective relative gap.
func (o Options) Gap() float64 {
	if o.RelGap == nil {
		return DefaultRelGap
	}
	return math.Max(*o.RelGap, 0)
}

// Gap returns a pointer to v for Options.RelGap.
func Gap(v float64) *float64 {
	return &v
}

// Solution holds the column values of a solved problem.
type Solution struct {
	Status    Status
	Objective float64
	Values    []float64
	// BestBound is the proven lower bound on the optimum.
	BestBound float64
	// Gap is the relative gap between Objective and BestBound at termination.
	Gap   float64
	Nodes int
}

// Value returns the value of v in the solution.
func (s Solution) Value(v Var) float64 {
	return s.Values[v]
}

// ValuesOf returns the values of the given variables, in order.
func (s Solution) ValuesOf(vars []Var) []float64 {
	values := make([]float64, len(vars))
	for i, v := range vars {
		values[i] = s.Values[v]
	}
	return values
}

// Solver solves a Problem. Implementations must honour ctx cancellation and Options.TimeLimit and
// report a time out as a SolverFailure with StatusTimeLimit.
type Solver interface {
	Solve(ctx context.Context, problem *Problem, options Options) (Solution, error)
}
