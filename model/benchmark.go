package model

import (
	"github.com/cepro/flexsizing/assets"
	"github.com/cepro/flexsizing/milp"
)

var benchmarkFlows = []string{
	TurbineGas, BoilerGas,
	TurbineToProcess, TurbineExcess, TurbineToGrid,
	CHPHeatToProcess, CHPHeatExcess,
	GridToProcess,
}

// BuildBenchmark formulates the dispatch of the existing gas turbine and boiler, with the grid as the only other
// source of power. There is nothing to size, so the objective is operating cost only.
func BuildBenchmark(s Scenario) (*Formulation, error) {
	if err := s.Validate(Benchmark); err != nil {
		return nil, err
	}

	c := s.Constants
	turbineCapacity := s.TurbineCapacity()

	b := milp.NewBuilder(s.Name + " " + string(Benchmark))
	v := newVariables(b, s.Grid.Len)
	v.continuous(benchmarkFlows...)
	v.binary(GridImporting)

	for t := 0; t < s.Grid.Len; t++ {
		b.Add(demandBalances(t, s.HeatDemand[t], s.PowerDemand[t],
			v.at(t, benchmarkHeatSupply...), v.at(t, benchmarkPowerSupply...))...)

		b.Add(chpRows(t, s, turbineCapacity, v, benchmarkTurbinePower, benchmarkCHPHeat)...)

		b.Add(gridConnection(t, c.GridConnection,
			v.at(t, benchmarkGridImports...), v.at(t, benchmarkGridExports...), v.one(t, GridImporting))...)
	}

	addOperatingCost(b, s, v, benchmarkGridImports, benchmarkGridExports)

	return &Formulation{
		System:      Benchmark,
		Scenario:    s,
		Problem:     b.Build(),
		Capacities:  map[assets.ID]milp.Var{},
		vars:        v,
		heatSupply:  benchmarkHeatSupply,
		powerSupply: benchmarkPowerSupply,
		gridImports: benchmarkGridImports,
		gridExports: benchmarkGridExports,
	}, nil
}
