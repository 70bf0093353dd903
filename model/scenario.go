package model

import (
	"fmt"
	"math"

	"github.com/cepro/flexsizing/assets"
	"github.com/cepro/flexsizing/config"
	"github.com/cepro/flexsizing/timeseries"
	timeutils "github.com/cepro/flexsizing/time_utils"
)

// System distinguishes the two model variants.
type System string

const (
	// Flexible sizes and dispatches the full asset set.
	Flexible System = "new system"
	// Benchmark dispatches the existing gas turbine and boiler only, as a cost baseline.
	Benchmark System = "benchmark system"
)

// Capex maps each sizeable asset to its equipment unit cost, per MW or per MWh for storage.
type Capex map[assets.ID]float64

// Scenario is everything one solve needs. It is treated as immutable: builders read from it and never write to it, so the
// series can be shared between concurrent solves.
type Scenario struct {
	Name             string
	Grid             timeutils.Grid
	HeatDemand       []float64
	PowerDemand      []float64
	ElectricityPrice []float64
	GasPrice         []float64
	Capex            Capex
	MinLoad          float64
	Constants        assets.Constants
	// CapacityBounds caps the installed size of each asset, see DefaultCapacityBounds for the assets that are missing.
	CapacityBounds map[assets.ID]float64
}

// Step returns the period length in hours.
func (s Scenario) Step() float64 {
	return s.Grid.StepHours()
}

// PeakHeatDemand is the largest heat demand over the horizon, which sizes the gas turbine.
func (s Scenario) PeakHeatDemand() float64 {
	peak := 0.0
	for _, h := range s.HeatDemand {
		peak = math.Max(peak, h)
	}
	return peak
}

// TurbineCapacity is the nominal gas turbine capacity.
func (s Scenario) TurbineCapacity() float64 {
	return s.Constants.CHP.TurbineCapacity(s.PeakHeatDemand())
}

// DefaultCapacityBounds returns generous upper bounds on installed capacity. A converter can never usefully exceed
// twice the peak heat demand plus the grid connection, and a store is allowed a day of that. The bounds exist to give
// the indicator constraints a finite big-M; they are not meant to bind.
func DefaultCapacityBounds(peakHeatDemand, gridConnection float64) map[assets.ID]float64 {
	power := 2 * (peakHeatDemand + gridConnection)
	energy := power * 24
	return map[assets.ID]float64{
		assets.ElectricBoiler: power,
		assets.HeatPump:       power,
		assets.Electrolyser:   power,
		assets.HydrogenBoiler: power,
		assets.Battery:        energy,
		assets.ThermalStore:   energy,
		assets.HydrogenStore:  energy,
	}
}

// CapacityBound returns the upper bound on the installed size of the given asset.
func (s Scenario) CapacityBound(id assets.ID) float64 {
	if bound, ok := s.CapacityBounds[id]; ok {
		return bound
	}
	return DefaultCapacityBounds(s.PeakHeatDemand(), s.Constants.GridConnection)[id]
}

// Validate checks the scenario for the given system. Series that do not match the grid give an InputAlignmentError,
// parameters outside of their domain give a ConfigurationError.
func (s Scenario) Validate(system System) error {
	if s.Grid.Len <= 0 {
		return config.Invalid("hours", "horizon has no periods")
	}
	if s.Grid.Step <= 0 {
		return config.Invalid("step", "must be positive, got %v", s.Grid.Step)
	}

	series := []struct {
		name   string
		values []float64
	}{
		{"heat demand", s.HeatDemand},
		{"power demand", s.PowerDemand},
		{"electricity price", s.ElectricityPrice},
		{"gas price", s.GasPrice},
	}
	for _, ser := range series {
		if len(ser.values) != s.Grid.Len {
			return &timeseries.InputAlignmentError{
				Series: ser.name,
				Reason: fmt.Sprintf("has %d values for %d periods", len(ser.values), s.Grid.Len),
			}
		}
		for _, v := range ser.values {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return &timeseries.InputAlignmentError{Series: ser.name, Reason: "contains a non-finite value"}
			}
		}
	}

	if math.IsNaN(s.MinLoad) || s.MinLoad < 0 || s.MinLoad > 1 {
		return config.Invalid("min_load", "must be within [0,1], got %v", s.MinLoad)
	}
	if s.Constants.GridConnection < 0 {
		return config.Invalid("grid_connection", "must not be negative, got %v", s.Constants.GridConnection)
	}

	if system == Flexible {
		for _, id := range assets.IDs {
			cost, ok := s.Capex[id]
			if !ok {
				return config.Invalid("capex", "no unit cost for %s", id)
			}
			if math.IsNaN(cost) || math.IsInf(cost, 0) || cost < 0 {
				return config.Invalid("capex", "unit cost for %s must be a non-negative number, got %v", id, cost)
			}
			if bound := s.CapacityBound(id); !(bound > 0) || math.IsInf(bound, 0) {
				return config.Invalid("capacity_bounds", "bound for %s must be positive and finite, got %v", id, bound)
			}
		}
	}
	return nil
}
