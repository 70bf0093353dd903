package model

import (
	"github.com/cepro/flexsizing/assets"
	"github.com/cepro/flexsizing/milp"
)

var flexibleFlows = []string{
	TurbineGas, BoilerGas,
	TurbineToBattery, TurbineToHP, TurbineToElB, TurbineToH2E, TurbineToProcess, TurbineExcess, TurbineToGrid,
	CHPHeatToProcess, CHPHeatToTES, CHPHeatExcess,
	GridToElB, GridToBattery, GridToH2E, GridToHP, GridToProcess,
	BatteryToElB, BatteryToH2E, BatteryToHP, BatteryToProcess, BatteryToGrid,
	ElBHeatToProcess, ElBHeatToTES,
	TESToProcess, H2BHeatToProcess, HPHeatToProcess, HPHeatToTES,
	H2EToH2S, H2EToH2B, H2SToH2B,
	BatterySOE, TESSOE, H2SSOE,
}

var flexibleIndicators = []string{BatteryCharging, TESCharging, GridImporting, H2SCharging}

// BuildFlexible formulates the sizing and dispatch problem for the full asset set.
func BuildFlexible(s Scenario) (*Formulation, error) {
	if err := s.Validate(Flexible); err != nil {
		return nil, err
	}

	c := s.Constants
	step := s.Step()
	turbineCapacity := s.TurbineCapacity()

	b := milp.NewBuilder(s.Name + " " + string(Flexible))
	v := newVariables(b, s.Grid.Len)
	v.continuous(flexibleFlows...)
	v.binary(flexibleIndicators...)

	capacities := make(map[assets.ID]milp.Var, len(assets.IDs))
	for _, id := range assets.IDs {
		capacities[id] = b.AddVar(string(id)+"_cap", milp.Continuous, 0, s.CapacityBound(id))
	}

	batteryM := c.Battery.RateLimit(s.CapacityBound(assets.Battery), step)
	tesM := c.ThermalStore.RateLimit(s.CapacityBound(assets.ThermalStore), step)
	h2sM := c.HydrogenStore.RateLimit(s.CapacityBound(assets.HydrogenStore), step)

	for t := 0; t < s.Grid.Len; t++ {
		prev := t - 1
		if prev < 0 {
			prev = 0
		}

		b.Add(demandBalances(t, s.HeatDemand[t], s.PowerDemand[t],
			v.at(t, flexibleHeatSupply...), v.at(t, flexiblePowerSupply...))...)

		b.Add(chpRows(t, s, turbineCapacity, v, flexibleTurbinePower, flexibleCHPHeat)...)

		elbOut := v.at(t, ElBHeatToProcess, ElBHeatToTES)
		b.Add(
			assets.ConversionBalance("ElB", t, v.at(t, GridToElB, BatteryToElB, TurbineToElB), c.ElectricBoiler.Efficiency, elbOut),
			assets.CapacityLimit("ElB size", t, elbOut, capacities[assets.ElectricBoiler]),
		)

		hpOut := v.at(t, HPHeatToProcess, HPHeatToTES)
		b.Add(
			assets.ConversionBalance("HP", t, v.at(t, GridToHP, BatteryToHP, TurbineToHP), c.HeatPump.Efficiency, hpOut),
			assets.CapacityLimit("HP size", t, hpOut, capacities[assets.HeatPump]),
		)

		// the electrolyser is sized on its electrical intake, the other converters on their output
		h2eIn := v.at(t, GridToH2E, TurbineToH2E, BatteryToH2E)
		b.Add(
			assets.ConversionBalance("H2E", t, h2eIn, c.Electrolyser.Efficiency, v.at(t, H2EToH2B, H2EToH2S)),
			assets.CapacityLimit("H2E size", t, h2eIn, capacities[assets.Electrolyser]),
		)

		h2bOut := v.at(t, H2BHeatToProcess)
		b.Add(
			assets.ConversionBalance("H2B", t, v.at(t, H2EToH2B, H2SToH2B), c.HydrogenBoiler.Efficiency, h2bOut),
			assets.CapacityLimit("H2B size", t, h2bOut, capacities[assets.HydrogenBoiler]),
		)

		b.Add(assets.StorageConstraints("battery", t, step, c.Battery, capacities[assets.Battery], batteryM,
			v.store(t, BatterySOE, batteryCharge, batteryDischarge, BatteryCharging),
			v.store(prev, BatterySOE, batteryCharge, batteryDischarge, BatteryCharging))...)
		b.Add(assets.StorageConstraints("TES", t, step, c.ThermalStore, capacities[assets.ThermalStore], tesM,
			v.store(t, TESSOE, tesCharge, tesDischarge, TESCharging),
			v.store(prev, TESSOE, tesCharge, tesDischarge, TESCharging))...)
		b.Add(assets.StorageConstraints("H2S", t, step, c.HydrogenStore, capacities[assets.HydrogenStore], h2sM,
			v.store(t, H2SSOE, h2sCharge, h2sDischarge, H2SCharging),
			v.store(prev, H2SSOE, h2sCharge, h2sDischarge, H2SCharging))...)

		b.Add(gridConnection(t, c.GridConnection,
			v.at(t, flexibleGridImports...), v.at(t, flexibleGridExports...), v.one(t, GridImporting))...)
	}

	addOperatingCost(b, s, v, flexibleGridImports, flexibleGridExports)
	b.Minimize(capitalCost(s, capacities))

	return &Formulation{
		System:      Flexible,
		Scenario:    s,
		Problem:     b.Build(),
		Capacities:  capacities,
		vars:        v,
		heatSupply:  flexibleHeatSupply,
		powerSupply: flexiblePowerSupply,
		gridImports: flexibleGridImports,
		gridExports: flexibleGridExports,
	}, nil
}
