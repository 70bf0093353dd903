package model

import (
	"fmt"
	"math"

	"github.com/cepro/flexsizing/assets"
	"github.com/cepro/flexsizing/milp"
)

// Formulation is a fully built problem together with the handles needed to read a solution back into flows.
type Formulation struct {
	System   System
	Scenario Scenario
	Problem  *milp.Problem

	// Capacities holds the sizing variable of each asset, empty for the benchmark.
	Capacities map[assets.ID]milp.Var

	vars *variables
	// groups of labels that extraction aggregates over
	heatSupply  []string
	powerSupply []string
	gridImports []string
	gridExports []string
}

// Labels returns the flow table columns in order.
func (f *Formulation) Labels() []string {
	return f.vars.labels
}

// Vars returns the per-period variables of the given label, nil when the system has no such flow.
func (f *Formulation) Vars(label string) []milp.Var {
	return f.vars.flows[label]
}

var inf = math.Inf(1)

// variables creates one column per period for each label and remembers them by label.
type variables struct {
	b      *milp.Builder
	n      int
	labels []string
	flows  map[string][]milp.Var
}

func newVariables(b *milp.Builder, n int) *variables {
	return &variables{b: b, n: n, flows: map[string][]milp.Var{}}
}

func (v *variables) add(label string, kind milp.Kind, upper float64) {
	if _, ok := v.flows[label]; ok {
		panic(fmt.Sprintf("duplicate flow label %q", label))
	}
	vars := make([]milp.Var, v.n)
	for t := range vars {
		vars[t] = v.b.AddVar(fmt.Sprintf("%s[%d]", label, t), kind, 0, upper)
	}
	v.labels = append(v.labels, label)
	v.flows[label] = vars
}

func (v *variables) continuous(labels ...string) {
	for _, label := range labels {
		v.add(label, milp.Continuous, inf)
	}
}

func (v *variables) binary(labels ...string) {
	for _, label := range labels {
		v.add(label, milp.Binary, 1)
	}
}

// at returns the variables of the given labels in period t.
func (v *variables) at(t int, labels ...string) []milp.Var {
	vars := make([]milp.Var, len(labels))
	for i, label := range labels {
		vars[i] = v.flows[label][t]
	}
	return vars
}

func (v *variables) one(t int, label string) milp.Var {
	return v.flows[label][t]
}

// store returns the storage handles in period t.
func (v *variables) store(t int, soe string, charge, discharge []string, charging string) assets.StoragePeriod {
	return assets.StoragePeriod{
		SOE:       v.one(t, soe),
		Charge:    v.at(t, charge...),
		Discharge: v.at(t, discharge...),
		Charging:  v.one(t, charging),
	}
}
