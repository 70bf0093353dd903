package milp

import (
	"fmt"
	"math"
)

// Var is a handle to a column of a Problem.
type Var int

// Kind is the integrality class of a column.
type Kind int

const (
	Continuous Kind = iota
	Binary
	Integer
)

func (k Kind) String() string {
	switch k {
	case Continuous:
		return "continuous"
	case Binary:
		return "binary"
	case Integer:
		return "integer"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Sense is the relation between a row's expression and its right hand side.
type Sense int

const (
	LessEqual Sense = iota
	GreaterEqual
	Equal
)

func (s Sense) String() string {
	switch s {
	case LessEqual:
		return "<="
	case GreaterEqual:
		return ">="
	case Equal:
		return "=="
	}
	return fmt.Sprintf("sense(%d)", int(s))
}

// Column is a decision variable with its bounds and objective coefficient.
type Column struct {
	Name  string
	Kind  Kind
	Lower float64
	Upper float64 // math.Inf(1) when unbounded
	Cost  float64
}

// Term is a coefficient applied to a variable.
type Term struct {
	Var  Var
	Coef float64
}

// Constraint is a single linear row: Σ terms (sense) RHS.
type Constraint struct {
	Name  string
	Terms []Term
	Sense Sense
	RHS   float64
}

// Problem is a minimisation MILP held as plain data. It has no behaviour beyond validation and
// evaluation, so it can be handed to any Solver.
type Problem struct {
	Name              string
	Columns           []Column
	Rows              []Constraint
	ObjectiveConstant float64
}

// NumVars returns the number of columns.
func (p *Problem) NumVars() int {
	return len(p.Columns)
}

// HasIntegers reports whether any column is binary or integer.
func (p *Problem) HasIntegers() bool {
	for _, col := range p.Columns {
		if col.Kind != Continuous {
			return true
		}
	}
	return false
}

// Objective evaluates the objective function at x.
func (p *Problem) Objective(x []float64) float64 {
	obj := p.ObjectiveConstant
	for j, col := range p.Columns {
		obj += col.Cost * x[j]
	}
	return obj
}

// Activity evaluates the left hand side of row i at x.
func (p *Problem) Activity(i int, x []float64) float64 {
	sum := 0.0
	for _, term := range p.Rows[i].Terms {
		sum += term.Coef * x[term.Var]
	}
	return sum
}

// Violation returns the largest bound or row violation of x, zero when x is feasible.
func (p *Problem) Violation(x []float64) float64 {
	worst := 0.0
	for j, col := range p.Columns {
		worst = math.Max(worst, col.Lower-x[j])
		worst = math.Max(worst, x[j]-col.Upper)
	}
	for i, row := range p.Rows {
		act := p.Activity(i, x)
		switch row.Sense {
		case LessEqual:
			worst = math.Max(worst, act-row.RHS)
		case GreaterEqual:
			worst = math.Max(worst, row.RHS-act)
		case Equal:
			worst = math.Max(worst, math.Abs(act-row.RHS))
		}
	}
	return worst
}

// Validate checks that every term refers to an existing column and that bounds are ordered.
func (p *Problem) Validate() error {
	for _, col := range p.Columns {
		if math.IsNaN(col.Lower) || math.IsNaN(col.Upper) || math.IsNaN(col.Cost) {
			return fmt.Errorf("column %q: NaN bound or cost", col.Name)
		}
		if col.Lower > col.Upper {
			return fmt.Errorf("column %q: lower bound %g above upper bound %g", col.Name, col.Lower, col.Upper)
		}
		if math.IsInf(col.Lower, -1) && col.Kind != Continuous {
			return fmt.Errorf("column %q: integer column without a finite lower bound", col.Name)
		}
	}
	for _, row := range p.Rows {
		if math.IsNaN(row.RHS) || math.IsInf(row.RHS, 0) {
			return fmt.Errorf("row %q: non-finite right hand side", row.Name)
		}
		for _, term := range row.Terms {
			if int(term.Var) < 0 || int(term.Var) >= len(p.Columns) {
				return fmt.Errorf("row %q: unknown variable %d", row.Name, term.Var)
			}
			if math.IsNaN(term.Coef) || math.IsInf(term.Coef, 0) {
				return fmt.Errorf("row %q: non-finite coefficient on %q", row.Name, p.Columns[term.Var].Name)
			}
		}
	}
	return nil
}
