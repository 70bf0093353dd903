package timeseries

import (
	"fmt"
	"time"

	timeutils "github.com/cepro/flexsizing/time_utils"
)

// Inputs are the raw series for one electricity/gas scenario pair.
type Inputs struct {
	// HeatDemand is positional, one value per dispatch period from the start of the horizon.
	HeatDemand []float64
	// PowerDemand is optional, when nil it is derived from heat demand with Options.PowerDemandRatio.
	PowerDemand []float64
	Electricity Series
	Gas         Series
}

type Options struct {
	Hours            int
	Step             time.Duration
	PowerDemandRatio float64
	AmpValues        []float64
	// PositionalElectricity re-stamps electricity prices onto an hourly index that starts with the gas prices,
	// ignoring the electricity timestamps.
	PositionalElectricity bool
}

// Prepared holds every series at dispatch resolution over exactly the horizon. It is shared read-only between solves.
type Prepared struct {
	Grid        timeutils.Grid
	HeatDemand  []float64
	PowerDemand []float64
	Gas         []float64
	Electricity PriceTable
}

// Prepare aligns the raw inputs onto the dispatch grid. Gas (daily) and electricity (hourly) prices are forward-filled
// onto the grid, demand is truncated to it, and the electricity amplitude variants are generated.
func Prepare(in Inputs, opts Options) (Prepared, error) {
	if in.Gas.Len() == 0 {
		return Prepared{}, alignmentError(in.Gas.Name, "series is empty")
	}

	grid, err := timeutils.NewGrid(in.Gas.Times[0], opts.Step, opts.Hours)
	if err != nil {
		return Prepared{}, fmt.Errorf("create grid: %w", err)
	}

	gas, err := in.Gas.FillForward()
	if err != nil {
		return Prepared{}, err
	}
	gas, err = gas.Resample(grid)
	if err != nil {
		return Prepared{}, err
	}

	el, err := in.Electricity.FillForward()
	if err != nil {
		return Prepared{}, err
	}
	if opts.PositionalElectricity {
		el = el.Reindex(grid.Start, timeutils.OneHour)
	}
	el, err = el.Resample(grid)
	if err != nil {
		return Prepared{}, err
	}

	heat, err := Series{Name: "heat demand", Values: in.HeatDemand}.Truncate(grid.Len)
	if err != nil {
		return Prepared{}, err
	}
	heat, err = heat.FillForward()
	if err != nil {
		return Prepared{}, err
	}

	var power []float64
	if in.PowerDemand != nil {
		p, err := Series{Name: "power demand", Values: in.PowerDemand}.Truncate(grid.Len)
		if err != nil {
			return Prepared{}, err
		}
		p, err = p.FillForward()
		if err != nil {
			return Prepared{}, err
		}
		power = p.Values
	} else {
		power = make([]float64, grid.Len)
		for i, h := range heat.Values {
			power[i] = h * opts.PowerDemandRatio
		}
	}

	return Prepared{
		Grid:        grid,
		HeatDemand:  heat.Values,
		PowerDemand: power,
		Gas:         gas.Values,
		Electricity: AmplitudeVariants(el.Values, opts.AmpValues),
	}, nil
}
