package config

import (
	"time"

	"github.com/cepro/flexsizing/assets"
	"github.com/cepro/flexsizing/timeseries"
)

// Validate returns a ConfigurationError describing the first problem found.
func (c Config) Validate() error {
	if c.Hours <= 0 {
		return Invalid("hours", "must be positive, got %d", c.Hours)
	}
	if c.Step <= 0 {
		return Invalid("step", "must be positive, got %v", c.Step)
	}
	if (time.Duration(c.Hours)*time.Hour)%c.Step != 0 {
		return Invalid("step", "%v does not divide %d hours", c.Step, c.Hours)
	}
	if c.MinLoad < 0 || c.MinLoad > 1 {
		return Invalid("min_load", "must be within [0,1], got %v", c.MinLoad)
	}
	if c.PowerDemandRatio < 0 {
		return Invalid("power_demand_ratio", "must not be negative, got %v", c.PowerDemandRatio)
	}
	for _, k := range c.AmpValues {
		if k < 0 {
			return Invalid("amp_values", "amplitude factor must not be negative, got %v", k)
		}
	}

	labels := map[string]bool{timeseries.OriginalLabel: true}
	for _, k := range c.AmpValues {
		labels[timeseries.AmplitudeLabel(k)] = true
	}
	for _, v := range c.Variants {
		if !labels[v] {
			return Invalid("variants", "unknown electricity price variant %q", v)
		}
	}

	if c.Inputs.DemandFile == "" {
		return Invalid("inputs.demand_file", "not set")
	}

	if len(c.GasScenarios) == 0 {
		return Invalid("gas_scenarios", "none configured")
	}
	gasNames := map[string]bool{}
	for _, gas := range c.GasScenarios {
		if gas.Name == "" || gas.File == "" {
			return Invalid("gas_scenarios", "every scenario needs a name and a file")
		}
		if gasNames[gas.Name] {
			return Invalid("gas_scenarios", "duplicate scenario %q", gas.Name)
		}
		gasNames[gas.Name] = true
	}

	if len(c.ElectricityScenarios) == 0 {
		return Invalid("electricity_scenarios", "none configured")
	}
	elNames := map[string]bool{}
	for _, el := range c.ElectricityScenarios {
		if el.Name == "" || el.File == "" {
			return Invalid("electricity_scenarios", "every scenario needs a name and a file")
		}
		if elNames[el.Name] {
			return Invalid("electricity_scenarios", "duplicate scenario %q", el.Name)
		}
		elNames[el.Name] = true
		if len(el.GasScenarios) == 0 {
			return Invalid("electricity_scenarios", "%s is not paired with any gas scenario", el.Name)
		}
		for _, gas := range el.GasScenarios {
			if !gasNames[gas] {
				return Invalid("electricity_scenarios", "%s refers to unknown gas scenario %q", el.Name, gas)
			}
		}
	}

	if len(c.CapexScenarios) == 0 {
		return Invalid("capex_scenarios", "none configured")
	}
	capexNames := map[string]bool{}
	for _, capex := range c.CapexScenarios {
		if capex.Name == "" {
			return Invalid("capex_scenarios", "every scenario needs a name")
		}
		if capexNames[capex.Name] {
			return Invalid("capex_scenarios", "duplicate scenario %q", capex.Name)
		}
		capexNames[capex.Name] = true
		for _, id := range assets.IDs {
			cost, ok := capex.Capex[id]
			if !ok {
				return Invalid("capex_scenarios", "%s: no unit cost for %s", capex.Name, id)
			}
			if cost < 0 {
				return Invalid("capex_scenarios", "%s: unit cost for %s must not be negative, got %v", capex.Name, id, cost)
			}
		}
	}

	for key, bound := range c.CapacityBounds {
		if _, err := assets.ParseID(key); err != nil {
			return Invalid("capacity_bounds", "%v", err)
		}
		if bound <= 0 {
			return Invalid("capacity_bounds", "bound for %s must be positive, got %v", key, bound)
		}
	}

	switch c.Solver.Name {
	case "bnb", "highs":
	default:
		return Invalid("solver.name", "unknown solver %q", c.Solver.Name)
	}
	if c.Solver.MIPGap != nil && *c.Solver.MIPGap < 0 {
		return Invalid("solver.mip_gap", "must not be negative, got %v", *c.Solver.MIPGap)
	}
	if c.Solver.Timeout < 0 {
		return Invalid("solver.timeout", "must not be negative, got %v", c.Solver.Timeout)
	}
	if c.Sweep.Workers < 0 {
		return Invalid("sweep.workers", "must not be negative, got %d", c.Sweep.Workers)
	}
	if c.Sweep.Epsilon < 0 {
		return Invalid("sweep.epsilon", "must not be negative, got %v", c.Sweep.Epsilon)
	}
	return nil
}
