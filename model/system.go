package model

import (
	"github.com/cepro/flexsizing/assets"
	"github.com/cepro/flexsizing/milp"
)

// demandBalances returns the rows that make heat and power delivered to the core process equal the demand in period t.
func demandBalances(t int, heatDemand, powerDemand float64, heatSupply, powerSupply []milp.Var) []milp.Constraint {
	return []milp.Constraint{
		assets.Demand("heat demand", t, heatSupply, heatDemand),
		assets.Demand("power demand", t, powerSupply, powerDemand),
	}
}

// gridConnection returns the rows that bound imports and exports by the connection capacity, one direction at a time.
func gridConnection(t int, limit float64, imports, exports []milp.Var, importing milp.Var) []milp.Constraint {
	return assets.BidirectionalLimit("grid", t, imports, exports, limit, importing)
}

// chpRows returns the CHP rows of period t, with the given labels as the destinations of turbine power and CHP heat.
func chpRows(t int, s Scenario, capacity float64, v *variables, power, heat []string) []milp.Constraint {
	return assets.CHPConstraints("CHP", t, s.Constants.CHP, capacity, s.MinLoad, assets.CHPPeriod{
		TurbineGas: v.one(t, TurbineGas),
		BoilerGas:  v.one(t, BoilerGas),
		Power:      v.at(t, power...),
		Heat:       v.at(t, heat...),
	})
}
