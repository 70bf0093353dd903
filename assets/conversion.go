package assets

import (
	"fmt"

	"github.com/cepro/flexsizing/milp"
)

func rowName(name string, t int) string {
	return fmt.Sprintf("%s[%d]", name, t)
}

// ConversionBalance returns the row efficiency*Σinputs == Σoutputs for period t.
func ConversionBalance(name string, t int, inputs []milp.Var, efficiency float64, outputs []milp.Var) milp.Constraint {
	return milp.EQ(rowName(name, t), milp.Sum(inputs...).Times(efficiency), milp.Sum(outputs...))
}

// CapacityLimit returns the row Σflows <= capacity for period t, where capacity is a sizing variable.
func CapacityLimit(name string, t int, flows []milp.Var, capacity milp.Var) milp.Constraint {
	return milp.LE(rowName(name, t), milp.Sum(flows...), milp.Sum(capacity))
}

// FixedLimit returns the row Σflows <= limit for period t, where limit is a nominal capacity.
func FixedLimit(name string, t int, flows []milp.Var, limit float64) milp.Constraint {
	return milp.LE(rowName(name, t), milp.Sum(flows...), milp.Const(limit))
}

// Demand returns the row Σsupply == demand for period t.
func Demand(name string, t int, supply []milp.Var, demand float64) milp.Constraint {
	return milp.EQ(rowName(name, t), milp.Sum(supply...), milp.Const(demand))
}
