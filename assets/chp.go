package assets

import "github.com/cepro/flexsizing/milp"

// CHPPeriod holds the CHP variables of one period.
type CHPPeriod struct {
	TurbineGas milp.Var
	BoilerGas  milp.Var
	Power      []milp.Var // every destination of turbine electricity
	Heat       []milp.Var // every destination of recovered and boiler heat
}

// TurbineCapacity is the nominal turbine size needed to meet the peak heat demand.
func (c CHP) TurbineCapacity(peakHeatDemand float64) float64 {
	return peakHeatDemand / c.BoilerEfficiency
}

// MaxTurbineGas is the largest gas intake of the turbine.
func (c CHP) MaxTurbineGas(capacity float64) float64 {
	return capacity / c.ThermalEfficiency
}

// MaxBoilerGas is the largest gas intake of the auxiliary boiler.
func (c CHP) MaxBoilerGas(capacity float64) float64 {
	return c.AuxiliaryBoilerFraction * capacity / c.BoilerEfficiency
}

// CHPConstraints returns the conversion, intake and minimum load rows of the CHP in period t. The minimum load applies
// in every period: there is no on/off state, so the turbine cannot be turned off below it.
func CHPConstraints(name string, t int, c CHP, capacity, minLoad float64, p CHPPeriod) []milp.Constraint {
	maxTurbine := c.MaxTurbineGas(capacity)
	return []milp.Constraint{
		milp.EQ(rowName(name+" power", t),
			milp.Scaled(p.TurbineGas, c.ElectricalEfficiency),
			milp.Sum(p.Power...)),
		milp.EQ(rowName(name+" heat", t),
			milp.Scaled(p.TurbineGas, c.ThermalEfficiency*c.BoilerEfficiency).Plus(milp.Scaled(p.BoilerGas, c.BoilerEfficiency)),
			milp.Sum(p.Heat...)),
		milp.LE(rowName(name+" turbine intake", t), milp.Sum(p.TurbineGas), milp.Const(maxTurbine)),
		milp.LE(rowName(name+" boiler intake", t), milp.Sum(p.BoilerGas), milp.Const(c.MaxBoilerGas(capacity))),
		milp.GE(rowName(name+" min load", t), milp.Sum(p.TurbineGas), milp.Const(maxTurbine*minLoad)),
	}
}
