package bnb

import (
	"fmt"
	"math"

	"github.com/cepro/flexsizing/milp"
	"gonum.org/v1/gonum/mat"
)

// fixedTol is the width below which a column is treated as fixed at its lower bound.
const fixedTol = 1e-12

// relaxationResult is the outcome of one LP relaxation.
type relaxationResult struct {
	status    milp.Status
	objective float64
	x         []float64
}

// sparseRow is a row restricted to the columns still free in the relaxation.
type sparseRow struct {
	cols  []int
	coefs []float64
	sense milp.Sense
	rhs   float64
}

// solveRelaxation solves the LP relaxation of p with the column bounds replaced by lower and
// upper. The problem is brought into the form min cᵀy, Ay = b, y >= 0, b >= 0 that the tableau expects:
//   - every free column is shifted to its lower bound, fixed columns become constants,
//   - finite upper bounds become rows,
//   - inequality rows get a slack or surplus column,
//   - rows left without columns are checked and dropped, as are empty columns,
//   - linearly dependent equality rows are removed so A has full row rank.
func solveRelaxation(p *milp.Problem, lower, upper []float64, tol float64) (relaxationResult, error) {
	n := len(p.Columns)
	x := make([]float64, n)
	pos := make([]int, n)

	for j := 0; j < n; j++ {
		lo, hi := lower[j], upper[j]
		if math.IsInf(lo, -1) {
			return relaxationResult{}, fmt.Errorf("column %q: lower bound must be finite", p.Columns[j].Name)
		}
		if lo > hi+tol {
			return relaxationResult{status: milp.StatusInfeasible}, nil
		}
		x[j] = lo
		if hi-lo <= fixedTol {
			pos[j] = -1
		} else {
			pos[j] = 0
		}
	}

	// shift every row by the lower bounds, and find which columns carry coefficients
	used := make([]bool, n)
	shifted := make([]sparseRow, 0, len(p.Rows))
	for _, row := range p.Rows {
		sr := sparseRow{sense: row.Sense, rhs: row.RHS}
		for _, term := range row.Terms {
			j := int(term.Var)
			sr.rhs -= term.Coef * x[j]
			if pos[j] >= 0 && term.Coef != 0 {
				sr.cols = append(sr.cols, j)
				sr.coefs = append(sr.coefs, term.Coef)
				used[j] = true
			}
		}
		if len(sr.cols) == 0 {
			if !emptyRowFeasible(sr, tol) {
				return relaxationResult{status: milp.StatusInfeasible}, nil
			}
			continue
		}
		shifted = append(shifted, sr)
	}

	// empty columns sit at whichever bound is cheaper
	free := make([]int, 0, n)
	for j := 0; j < n; j++ {
		if pos[j] < 0 {
			continue
		}
		hasUpper := !math.IsInf(upper[j], 1)
		if !used[j] && !hasUpper {
			if p.Columns[j].Cost < 0 {
				return relaxationResult{status: milp.StatusUnbounded}, nil
			}
			pos[j] = -1
			continue
		}
		pos[j] = len(free)
		free = append(free, j)
	}

	var equalities, inequalities []sparseRow
	for _, sr := range shifted {
		if sr.sense == milp.Equal {
			equalities = append(equalities, sr)
		} else {
			inequalities = append(inequalities, sr)
		}
	}
	for _, j := range free {
		if !math.IsInf(upper[j], 1) {
			inequalities = append(inequalities, sparseRow{
				cols:  []int{j},
				coefs: []float64{1},
				sense: milp.LessEqual,
				rhs:   upper[j] - lower[j],
			})
		}
	}

	equalities, consistent := independentRows(equalities, pos, len(free), tol)
	if !consistent {
		return relaxationResult{status: milp.StatusInfeasible}, nil
	}

	m := len(equalities) + len(inequalities)
	if m == 0 {
		return relaxationResult{status: milp.StatusOptimal, objective: p.Objective(x), x: x}, nil
	}

	cols := len(free) + len(inequalities)
	a := mat.NewDense(m, cols, nil)
	b := make([]float64, m)
	c := make([]float64, cols)
	for k, j := range free {
		c[k] = p.Columns[j].Cost
	}
	slack := make([]int, m)

	setRow := func(i int, sr sparseRow, slackCol int, slackCoef float64) {
		sign := 1.0
		if sr.rhs < 0 {
			sign = -1
		}
		for k, j := range sr.cols {
			a.Set(i, pos[j], a.At(i, pos[j])+sign*sr.coefs[k])
		}
		slack[i] = noSlack
		if slackCol >= 0 {
			a.Set(i, slackCol, sign*slackCoef)
			// a slack with a positive coefficient can start in the basis
			if sign*slackCoef > 0 {
				slack[i] = slackCol
			}
		}
		b[i] = sign * sr.rhs
	}

	for i, sr := range equalities {
		setRow(i, sr, -1, 0)
	}
	for k, sr := range inequalities {
		slackCoef := 1.0
		if sr.sense == milp.GreaterEqual {
			slackCoef = -1
		}
		setRow(len(equalities)+k, sr, len(free)+k, slackCoef)
	}

	status, y, err := solveStandardForm(c, a, b, slack, tol)
	if err != nil {
		return relaxationResult{}, fmt.Errorf("simplex: %w", err)
	}
	if status != milp.StatusOptimal {
		return relaxationResult{status: status}, nil
	}

	for k, j := range free {
		x[j] = math.Min(math.Max(lower[j]+y[k], lower[j]), upper[j])
	}
	return relaxationResult{status: milp.StatusOptimal, objective: p.Objective(x), x: x}, nil
}

func emptyRowFeasible(sr sparseRow, tol float64) bool {
	scale := tol * math.Max(1, math.Abs(sr.rhs))
	switch sr.sense {
	case milp.LessEqual:
		return sr.rhs >= -scale
	case milp.GreaterEqual:
		return sr.rhs <= scale
	default:
		return math.Abs(sr.rhs) <= scale
	}
}

// independentRows keeps a maximal linearly independent subset of the equality rows by gaussian
// elimination on their dense form. A dependent row whose right hand side does not reduce to zero
// makes the system inconsistent.
func independentRows(rows []sparseRow, pos []int, width int, tol float64) ([]sparseRow, bool) {
	type reduced struct {
		coefs []float64
		rhs   float64
		pivot int
	}

	basis := make([]reduced, 0, len(rows))
	kept := make([]sparseRow, 0, len(rows))
	for _, sr := range rows {
		dense := make([]float64, width)
		scale := math.Abs(sr.rhs)
		for k, j := range sr.cols {
			dense[pos[j]] += sr.coefs[k]
			scale = math.Max(scale, math.Abs(sr.coefs[k]))
		}
		rhs := sr.rhs

		for _, r := range basis {
			factor := dense[r.pivot] / r.coefs[r.pivot]
			if factor == 0 {
				continue
			}
			for k := range dense {
				dense[k] -= factor * r.coefs[k]
			}
			rhs -= factor * r.rhs
		}

		pivot, largest := -1, 0.0
		for k, v := range dense {
			if math.Abs(v) > largest {
				pivot, largest = k, math.Abs(v)
			}
		}
		eps := 1e-9 * math.Max(1, scale)
		if largest <= eps {
			if math.Abs(rhs) > math.Max(eps, tol) {
				return nil, false
			}
			continue
		}
		basis = append(basis, reduced{coefs: dense, rhs: rhs, pivot: pivot})
		kept = append(kept, sr)
	}
	return kept, true
}
