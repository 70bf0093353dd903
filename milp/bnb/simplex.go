package bnb

import (
	"errors"
	"math"

	"github.com/cepro/flexsizing/milp"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const (
	// pivotTol is the smallest tableau entry accepted as a pivot.
	pivotTol = 1e-9
	// ratioTieTol is the width within which two ratio test candidates tie.
	ratioTieTol = 1e-12
	// blandAfter is the number of consecutive degenerate pivots after which Bland's rule replaces Dantzig's.
	blandAfter = 20
	// noSlack marks a row that needs an artificial column to start the basis.
	noSlack = -1
)

var errIterationLimit = errors.New("simplex iteration limit reached")

// tableau is a dense simplex tableau over min cᵀy, Ay = b, y >= 0 with b >= 0. Columns from
// `structural` on are artificial, the last column is the right hand side.
type tableau struct {
	t          *mat.Dense
	basis      []int
	structural int
	rhs        int
	tol        float64
}

// solveStandardForm solves min cᵀy, Ay = b, y >= 0. Every b[i] must be non-negative. slack[i] is a
// column that is the unit vector of row i, or noSlack when row i needs an artificial column.
//
// Phase one minimises the sum of the artificials from the slack and artificial basis. Phase two
// then works on the same tableau with the artificials barred from entering. Pricing is Dantzig's
// rule, falling back to Bland's rule during long runs of degenerate pivots so the method cannot
// cycle.
func solveStandardForm(c []float64, a *mat.Dense, b []float64, slack []int, tol float64) (milp.Status, []float64, error) {
	m, n := a.Dims()
	artificials := 0
	for _, s := range slack {
		if s == noSlack {
			artificials++
		}
	}

	tab := &tableau{
		t:          mat.NewDense(m, n+artificials+1, nil),
		basis:      make([]int, m),
		structural: n,
		rhs:        n + artificials,
		tol:        math.Max(tol, 1e-9),
	}
	next := n
	for i := 0; i < m; i++ {
		row := tab.t.RawRowView(i)
		copy(row, a.RawRowView(i))
		row[tab.rhs] = b[i]
		if slack[i] == noSlack {
			row[next] = 1
			tab.basis[i] = next
			next++
		} else {
			tab.basis[i] = slack[i]
		}
	}

	if artificials > 0 {
		// reduced costs of the artificial objective, priced out against the starting basis
		cost := make([]float64, tab.rhs+1)
		for j := n; j < tab.rhs; j++ {
			cost[j] = 1
		}
		for i, j := range tab.basis {
			if j >= n {
				floats.AddScaled(cost, -1, tab.t.RawRowView(i))
			}
		}
		status, err := tab.iterate(cost, tab.rhs)
		if err != nil {
			return milp.StatusError, nil, err
		}
		if status != milp.StatusOptimal {
			return milp.StatusError, nil, errors.New("phase one is unbounded")
		}
		if -cost[tab.rhs] > feasibilityTol(b) {
			return milp.StatusInfeasible, nil, nil
		}
		tab.evictArtificials()
	}

	cost := make([]float64, tab.rhs+1)
	copy(cost, c)
	for i, j := range tab.basis {
		if j < n && c[j] != 0 {
			floats.AddScaled(cost, -c[j], tab.t.RawRowView(i))
		}
	}
	status, err := tab.iterate(cost, n)
	if err != nil || status != milp.StatusOptimal {
		return status, nil, err
	}

	y := make([]float64, n)
	for i, j := range tab.basis {
		if j < n {
			y[j] = math.Max(tab.t.At(i, tab.rhs), 0)
		}
	}
	return milp.StatusOptimal, y, nil
}

func feasibilityTol(b []float64) float64 {
	largest := 1.0
	for _, v := range b {
		largest = math.Max(largest, math.Abs(v))
	}
	return 1e-8 * largest
}

// iterate pivots until no column below `enterable` has a negative reduced cost. cost holds the
// reduced costs with minus the objective value in its last element, and is kept up to date.
func (tab *tableau) iterate(cost []float64, enterable int) (milp.Status, error) {
	m, _ := tab.t.Dims()
	optTol := tab.tol * math.Max(1, floats.Norm(cost[:enterable], math.Inf(1)))
	maxIter := 50*(m+tab.rhs) + 1000

	degenerate := 0
	for iter := 0; iter < maxIter; iter++ {
		bland := degenerate >= blandAfter

		enter := -1
		best := -optTol
		for j := 0; j < enterable; j++ {
			if cost[j] < best {
				enter = j
				if bland {
					break
				}
				best = cost[j]
			}
		}
		if enter < 0 {
			return milp.StatusOptimal, nil
		}

		leave := -1
		ratio := math.Inf(1)
		for i := 0; i < m; i++ {
			aie := tab.t.At(i, enter)
			if aie <= pivotTol {
				continue
			}
			r := tab.t.At(i, tab.rhs) / aie
			switch {
			case leave < 0 || r < ratio-ratioTieTol:
				leave, ratio = i, r
			case r <= ratio+ratioTieTol:
				if bland && tab.basis[i] < tab.basis[leave] || !bland && aie > tab.t.At(leave, enter) {
					leave = i
				}
				ratio = math.Min(ratio, r)
			}
		}
		if leave < 0 {
			return milp.StatusUnbounded, nil
		}

		if ratio <= ratioTieTol {
			degenerate++
		} else {
			degenerate = 0
		}
		tab.pivot(leave, enter, cost)
	}
	return milp.StatusError, errIterationLimit
}

// pivot brings column e into the basis on row r.
func (tab *tableau) pivot(r, e int, cost []float64) {
	m, _ := tab.t.Dims()
	row := tab.t.RawRowView(r)
	floats.Scale(1/row[e], row)
	row[e] = 1

	for i := 0; i < m; i++ {
		if i == r {
			continue
		}
		other := tab.t.RawRowView(i)
		if f := other[e]; f != 0 {
			floats.AddScaled(other, -f, row)
			other[e] = 0
			if other[tab.rhs] < 0 {
				other[tab.rhs] = 0
			}
		}
	}
	if cost != nil {
		if f := cost[e]; f != 0 {
			floats.AddScaled(cost, -f, row)
			cost[e] = 0
		}
	}
	tab.basis[r] = e
}

// evictArtificials pivots every artificial still basic at zero out of the basis. A row with no
// structural entry left is redundant, its artificial stays basic at zero and never moves again.
func (tab *tableau) evictArtificials() {
	for i, j := range tab.basis {
		if j < tab.structural {
			continue
		}
		row := tab.t.RawRowView(i)
		enter, largest := -1, pivotTol
		for k := 0; k < tab.structural; k++ {
			if math.Abs(row[k]) > largest {
				enter, largest = k, math.Abs(row[k])
			}
		}
		if enter >= 0 {
			row[tab.rhs] = 0
			tab.pivot(i, enter, nil)
		}
	}
}
