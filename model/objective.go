package model

import (
	"github.com/cepro/flexsizing/assets"
	"github.com/cepro/flexsizing/milp"
)

// periodOperatingCost is the cost of one period: electricity imports less exports at the electricity price, plus gas at
// the gas price, all over the period length.
func periodOperatingCost(step, electricityPrice, gasPrice float64, imports, exports, gas []milp.Var) milp.Expr {
	el := electricityPrice * step
	return milp.Sum(imports...).Times(el).
		Minus(milp.Sum(exports...).Times(el)).
		Plus(milp.Sum(gas...).Times(gasPrice * step))
}

// AnnualisedUnitCost is the yearly cost of one MW (or MWh) of the asset: unit cost * installation factor * annuity.
func AnnualisedUnitCost(s Scenario, id assets.ID) float64 {
	inv := s.Constants.Investment(id)
	return s.Capex[id] * inv.InstallationFactor * AnnuityFactor(s.Constants.DiscountRate, inv.Lifetime)
}

// capitalCost is the annualised investment in every sized asset.
func capitalCost(s Scenario, capacities map[assets.ID]milp.Var) milp.Expr {
	var expr milp.Expr
	for _, id := range assets.IDs {
		expr = expr.Plus(milp.Scaled(capacities[id], AnnualisedUnitCost(s, id)))
	}
	return expr
}

// addOperatingCost adds the operating cost of every period to the objective. Periods are added one at a time so the
// objective never has to be held as a single expression.
func addOperatingCost(b *milp.Builder, s Scenario, v *variables, imports, exports []string) {
	step := s.Step()
	for t := 0; t < s.Grid.Len; t++ {
		b.Minimize(periodOperatingCost(step, s.ElectricityPrice[t], s.GasPrice[t],
			v.at(t, imports...), v.at(t, exports...), v.at(t, gasIntakes...)))
	}
}
