package milp

import (
	"math"
	"sort"
)

// Expr is an affine expression Σ coef*var + Constant.
type Expr struct {
	Terms    []Term
	Constant float64
}

// Sum returns the expression adding up the given variables with unit coefficients.
func Sum(vars ...Var) Expr {
	terms := make([]Term, len(vars))
	for i, v := range vars {
		terms[i] = Term{Var: v, Coef: 1}
	}
	return Expr{Terms: terms}
}

// Const returns a constant expression.
func Const(c float64) Expr {
	return Expr{Constant: c}
}

// Scaled returns coef*v.
func Scaled(v Var, coef float64) Expr {
	return Expr{Terms: []Term{{Var: v, Coef: coef}}}
}

// Plus returns e + o.
func (e Expr) Plus(o Expr) Expr {
	terms := make([]Term, 0, len(e.Terms)+len(o.Terms))
	terms = append(terms, e.Terms...)
	terms = append(terms, o.Terms...)
	return Expr{Terms: terms, Constant: e.Constant + o.Constant}
}

// Minus returns e - o.
func (e Expr) Minus(o Expr) Expr {
	return e.Plus(o.Times(-1))
}

// Times returns k*e.
func (e Expr) Times(k float64) Expr {
	terms := make([]Term, len(e.Terms))
	for i, term := range e.Terms {
		terms[i] = Term{Var: term.Var, Coef: term.Coef * k}
	}
	return Expr{Terms: terms, Constant: e.Constant * k}
}

// Eval evaluates the expression at x.
func (e Expr) Eval(x []float64) float64 {
	sum := e.Constant
	for _, term := range e.Terms {
		sum += term.Coef * x[term.Var]
	}
	return sum
}

// LE returns the row lhs <= rhs.
func LE(name string, lhs, rhs Expr) Constraint {
	return newConstraint(name, lhs, LessEqual, rhs)
}

// GE returns the row lhs >= rhs.
func GE(name string, lhs, rhs Expr) Constraint {
	return newConstraint(name, lhs, GreaterEqual, rhs)
}

// EQ returns the row lhs == rhs.
func EQ(name string, lhs, rhs Expr) Constraint {
	return newConstraint(name, lhs, Equal, rhs)
}

// newConstraint moves every variable to the left and every constant to the right, merging
// repeated variables and dropping zero coefficients.
func newConstraint(name string, lhs Expr, sense Sense, rhs Expr) Constraint {
	diff := lhs.Minus(rhs)
	return Constraint{
		Name:  name,
		Terms: mergeTerms(diff.Terms),
		Sense: sense,
		RHS:   -diff.Constant,
	}
}

func mergeTerms(terms []Term) []Term {
	coefs := map[Var]float64{}
	for _, term := range terms {
		coefs[term.Var] += term.Coef
	}
	merged := make([]Term, 0, len(coefs))
	for v, coef := range coefs {
		if coef == 0 {
			continue
		}
		merged = append(merged, Term{Var: v, Coef: coef})
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].Var < merged[j].Var })
	return merged
}

// Builder accumulates columns, rows and objective terms and produces a Problem.
type Builder struct {
	name     string
	columns  []Column
	rows     []Constraint
	objConst float64
}

func NewBuilder(name string) *Builder {
	return &Builder{name: name}
}

// AddVar adds a column. Binary columns are clamped to [0, 1].
func (b *Builder) AddVar(name string, kind Kind, lower, upper float64) Var {
	if kind == Binary {
		lower = math.Max(lower, 0)
		upper = math.Min(upper, 1)
	}
	b.columns = append(b.columns, Column{
		Name:  name,
		Kind:  kind,
		Lower: lower,
		Upper: upper,
	})
	return Var(len(b.columns) - 1)
}

// NonNegative adds a continuous column on [0, +inf).
func (b *Builder) NonNegative(name string) Var {
	return b.AddVar(name, Continuous, 0, math.Inf(1))
}

// Bool adds a binary column.
func (b *Builder) Bool(name string) Var {
	return b.AddVar(name, Binary, 0, 1)
}

// SetUpper tightens the upper bound of v.
func (b *Builder) SetUpper(v Var, upper float64) {
	b.columns[v].Upper = math.Min(b.columns[v].Upper, upper)
}

// Add appends rows to the problem.
func (b *Builder) Add(rows ...Constraint) {
	b.rows = append(b.rows, rows...)
}

// Minimize adds expr to the objective.
func (b *Builder) Minimize(expr Expr) {
	for _, term := range expr.Terms {
		b.columns[term.Var].Cost += term.Coef
	}
	b.objConst += expr.Constant
}

// Name returns the name of column v.
func (b *Builder) Name(v Var) string {
	return b.columns[v].Name
}

// Build returns the accumulated Problem. The builder can keep being used afterwards without
// affecting the returned value.
func (b *Builder) Build() *Problem {
	columns := make([]Column, len(b.columns))
	copy(columns, b.columns)
	rows := make([]Constraint, len(b.rows))
	copy(rows, b.rows)
	return &Problem{
		Name:              b.name,
		Columns:           columns,
		Rows:              rows,
		ObjectiveConstant: b.objConst,
	}
}
