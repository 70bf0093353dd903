package bnb

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/cepro/flexsizing/milp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSolveLP(t *testing.T) {
	// min -x - 2y  s.t. x + y <= 4, x + 3y <= 6, x <= 3
	b := milp.NewBuilder("lp")
	x := b.AddVar("x", milp.Continuous, 0, 3)
	y := b.NonNegative("y")
	b.Add(
		milp.LE("a", milp.Sum(x, y), milp.Const(4)),
		milp.LE("b", milp.Sum(x).Plus(milp.Scaled(y, 3)), milp.Const(6)),
	)
	b.Minimize(milp.Scaled(x, -1).Plus(milp.Scaled(y, -2)))

	sol, err := New().Solve(context.Background(), b.Build(), milp.Options{})
	require.NoError(t, err)
	assert.Equal(t, milp.StatusOptimal, sol.Status)
	assert.InDelta(t, 3.0, sol.Value(x), 1e-7)
	assert.InDelta(t, 1.0, sol.Value(y), 1e-7)
	assert.InDelta(t, -5.0, sol.Objective, 1e-7)
}

func TestSolveKnapsack(t *testing.T) {
	// 0/1 knapsack with capacity 10, the best pick is items 1 and 3 (weight 7, value 90)
	weights := []float64{5, 4, 6, 3}
	values := []float64{10, 40, 30, 50}

	b := milp.NewBuilder("knapsack")
	items := make([]milp.Var, len(weights))
	weight := milp.Expr{}
	objective := milp.Expr{}
	for i := range weights {
		items[i] = b.Bool("item")
		weight = weight.Plus(milp.Scaled(items[i], weights[i]))
		objective = objective.Plus(milp.Scaled(items[i], -values[i]))
	}
	b.Add(milp.LE("capacity", weight, milp.Const(10)))
	b.Minimize(objective)

	sol, err := New().Solve(context.Background(), b.Build(), milp.Options{RelGap: milp.Gap(0)})
	require.NoError(t, err)
	assert.InDelta(t, -90.0, sol.Objective, 1e-7)
	assert.Equal(t, []float64{0, 1, 0, 1}, sol.ValuesOf(items))
	assert.LessOrEqual(t, sol.Gap, 1e-9)
}

func TestSolveExclusivity(t *testing.T) {
	// a store that could profit from charging and discharging in the same period if the indicator
	// were relaxed; the binary forces one direction only
	b := milp.NewBuilder("exclusive")
	charge := b.NonNegative("charge")
	discharge := b.NonNegative("discharge")
	on := b.Bool("on")
	b.Add(
		milp.LE("charge limit", milp.Sum(charge), milp.Scaled(on, 5)),
		milp.LE("discharge limit", milp.Sum(discharge), milp.Const(5).Minus(milp.Scaled(on, 5))),
		milp.LE("throughput", milp.Sum(charge, discharge), milp.Const(8)),
	)
	b.Minimize(milp.Scaled(charge, -1).Plus(milp.Scaled(discharge, -1.5)))

	sol, err := New().Solve(context.Background(), b.Build(), milp.Options{})
	require.NoError(t, err)
	assert.InDelta(t, 0.0, sol.Value(charge), 1e-7)
	assert.InDelta(t, 5.0, sol.Value(discharge), 1e-7)
	assert.Equal(t, 0.0, sol.Value(on))
	assert.InDelta(t, -7.5, sol.Objective, 1e-7)
}

func TestSolveEqualities(t *testing.T) {
	// duplicated and dependent equality rows, plus a fixed column
	b := milp.NewBuilder("equalities")
	x := b.NonNegative("x")
	y := b.NonNegative("y")
	z := b.AddVar("z", milp.Continuous, 2, 2)
	b.Add(
		milp.EQ("sum", milp.Sum(x, y), milp.Const(10)),
		milp.EQ("sum again", milp.Sum(x, y), milp.Const(10)),
		milp.EQ("double", milp.Scaled(x, 2).Plus(milp.Scaled(y, 2)), milp.Const(20)),
		milp.GE("x from z", milp.Sum(x), milp.Scaled(z, 2)),
	)
	b.Minimize(milp.Scaled(x, 3).Plus(milp.Sum(y)).Plus(milp.Scaled(z, 1)))

	sol, err := New().Solve(context.Background(), b.Build(), milp.Options{})
	require.NoError(t, err)
	assert.InDelta(t, 4.0, sol.Value(x), 1e-7)
	assert.InDelta(t, 6.0, sol.Value(y), 1e-7)
	assert.InDelta(t, 2.0, sol.Value(z), 1e-12)
	assert.InDelta(t, 20.0, sol.Objective, 1e-7)
}

func TestSolveFailures(t *testing.T) {
	type subTest struct {
		name     string
		build    func() *milp.Problem
		status   milp.Status
		sentinel error
	}

	subTests := []subTest{
		{
			name: "infeasible rows",
			build: func() *milp.Problem {
				b := milp.NewBuilder("infeasible")
				x := b.AddVar("x", milp.Continuous, 0, 1)
				b.Add(milp.GE("too big", milp.Sum(x), milp.Const(2)))
				return b.Build()
			},
			status:   milp.StatusInfeasible,
			sentinel: milp.ErrInfeasible,
		},
		{
			name: "infeasible integrality",
			build: func() *milp.Problem {
				b := milp.NewBuilder("infeasible integer")
				x := b.Bool("x")
				b.Add(milp.EQ("half", milp.Scaled(x, 2), milp.Const(1)))
				return b.Build()
			},
			status:   milp.StatusInfeasible,
			sentinel: milp.ErrInfeasible,
		},
		{
			name: "inconsistent equalities",
			build: func() *milp.Problem {
				b := milp.NewBuilder("inconsistent")
				x := b.NonNegative("x")
				y := b.NonNegative("y")
				b.Add(
					milp.EQ("one", milp.Sum(x, y), milp.Const(1)),
					milp.EQ("three halves", milp.Scaled(x, 2).Plus(milp.Scaled(y, 2)), milp.Const(3)),
				)
				return b.Build()
			},
			status:   milp.StatusInfeasible,
			sentinel: milp.ErrInfeasible,
		},
		{
			name: "unbounded",
			build: func() *milp.Problem {
				b := milp.NewBuilder("unbounded")
				x := b.NonNegative("x")
				y := b.NonNegative("y")
				b.Add(milp.GE("link", milp.Sum(x), milp.Sum(y)))
				b.Minimize(milp.Scaled(x, -1))
				return b.Build()
			},
			status:   milp.StatusUnbounded,
			sentinel: milp.ErrUnbounded,
		},
		{
			name: "unbounded empty column",
			build: func() *milp.Problem {
				b := milp.NewBuilder("unbounded column")
				x := b.NonNegative("x")
				b.Minimize(milp.Scaled(x, -1))
				return b.Build()
			},
			status:   milp.StatusUnbounded,
			sentinel: milp.ErrUnbounded,
		},
	}

	for _, subTest := range subTests {
		t.Run(subTest.name, func(t *testing.T) {
			_, err := New().Solve(context.Background(), subTest.build(), milp.Options{})
			require.Error(t, err)
			var failure *milp.SolverFailure
			require.True(t, errors.As(err, &failure))
			assert.Equal(t, subTest.status, failure.Status)
			assert.True(t, errors.Is(err, subTest.sentinel))
		})
	}
}

func TestSolveTimeLimit(t *testing.T) {
	b := milp.NewBuilder("slow")
	x := b.Bool("x")
	b.Add(milp.LE("x", milp.Sum(x), milp.Const(1)))
	b.Minimize(milp.Scaled(x, -1))

	_, err := New().Solve(context.Background(), b.Build(), milp.Options{TimeLimit: time.Nanosecond})
	require.Error(t, err)
	assert.True(t, errors.Is(err, milp.ErrTimeLimit))
	assert.False(t, errors.Is(err, milp.ErrInfeasible))
}

func TestSolveCancelled(t *testing.T) {
	b := milp.NewBuilder("cancelled")
	x := b.NonNegative("x")
	b.Add(milp.LE("x", milp.Sum(x), milp.Const(1)))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New().Solve(ctx, b.Build(), milp.Options{})
	require.Error(t, err)
	assert.False(t, errors.Is(err, milp.ErrTimeLimit))
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestRelativeGap(t *testing.T) {
	assert.Equal(t, 0.0, relativeGap(10, math.Inf(1)))
	assert.Equal(t, 0.0, relativeGap(10, 11))
	assert.InDelta(t, 0.1, relativeGap(10, 9), 1e-12)
	assert.InDelta(t, 0.1, relativeGap(-10, -11), 1e-12)
	assert.True(t, math.IsInf(relativeGap(10, math.Inf(-1)), 1))
}
