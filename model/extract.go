package model

import (
	"math"
	"time"

	"github.com/cepro/flexsizing/assets"
	"github.com/cepro/flexsizing/milp"
	"gonum.org/v1/gonum/floats"
)

// DefaultEpsilon is the tolerance below which a flow counts as zero when detecting simultaneous use.
const DefaultEpsilon = 1e-5

// FlowTable holds the value of every labelled variable in every period.
type FlowTable struct {
	Times   []time.Time
	Columns []string
	// Values[i] is the column Columns[i], one value per period
	Values [][]float64
}

// Column returns the values of the named column.
func (f FlowTable) Column(name string) ([]float64, bool) {
	for i, col := range f.Columns {
		if col == name {
			return f.Values[i], true
		}
	}
	return nil, false
}

// Result is the outcome of one successful solve.
type Result struct {
	System   System
	Status   milp.Status
	Gap      float64
	Metrics  Metrics
	Flows    FlowTable
	Capacity map[assets.ID]float64
	// CapexByAsset is the annualised investment in each asset as the objective counts it.
	CapexByAsset map[assets.ID]float64
}

// extraction reads the solution through the formulation's handles.
type extraction struct {
	f   *Formulation
	sol milp.Solution
	eps float64
}

// series returns the values of the label in every period, zeros when the system has no such flow.
func (e extraction) series(label string) []float64 {
	vars := e.f.Vars(label)
	if vars == nil {
		return make([]float64, e.f.Scenario.Grid.Len)
	}
	return e.sol.ValuesOf(vars)
}

// sumOver returns the per period sum of the given labels.
func (e extraction) sumOver(labels []string) []float64 {
	total := make([]float64, e.f.Scenario.Grid.Len)
	for _, label := range labels {
		floats.Add(total, e.series(label))
	}
	return total
}

// energy is the total energy of the labels over the horizon.
func (e extraction) energy(labels ...string) float64 {
	return floats.Sum(e.sumOver(labels)) * e.f.Scenario.Step()
}

// simultaneous counts the periods where both a and b are above the tolerance.
func (e extraction) simultaneous(a, b []string) int {
	as, bs := e.sumOver(a), e.sumOver(b)
	count := 0
	for t := range as {
		if as[t] > e.eps && bs[t] > e.eps {
			count++
		}
	}
	return count
}

// residual is the largest absolute difference between supply and demand.
func (e extraction) residual(supply []string, demand []float64) float64 {
	worst := 0.0
	for t, s := range e.sumOver(supply) {
		worst = math.Max(worst, math.Abs(s-demand[t]))
	}
	return worst
}

// Extract turns a solution into the typed result, with eps as the zero tolerance for simultaneous use checks.
func Extract(f *Formulation, sol milp.Solution, eps float64) Result {
	if eps <= 0 {
		eps = DefaultEpsilon
	}
	s := f.Scenario
	c := s.Constants
	e := extraction{f: f, sol: sol, eps: eps}

	capacity := map[assets.ID]float64{}
	capexByAsset := map[assets.ID]float64{}
	capex, sourceCapex, space := 0.0, 0.0, 0.0
	for id, v := range f.Capacities {
		size := sol.Value(v)
		capacity[id] = size
		capexByAsset[id] = size * AnnualisedUnitCost(s, id)
		capex += capexByAsset[id]
		sourceCapex += size * sourceUnitCost(s, id)
		space += size * c.Investment(id).SpaceRequirement
	}

	imports := e.sumOver(f.gridImports)
	m := Metrics{
		Objective:       sol.Objective,
		CAPEX:           capex,
		SourceCAPEX:     sourceCapex,
		OPEX:            sol.Objective - capex,
		Scope1Emissions: e.energy(gasIntakes...) * c.GasEmissionFactor,
		RequiredSpace:   space,
		GridConnection:  c.GridConnection,
		DiscountRate:    c.DiscountRate,

		MaxGridImport:           floats.Max(imports),
		SimultaneousGridPeriods: e.simultaneous(f.gridImports, f.gridExports),

		CHPHeatToProcess: e.energy(CHPHeatToProcess),
		CHPHeatToTES:     e.energy(CHPHeatToTES),
		CHPHeatExcess:    e.energy(CHPHeatExcess),

		TurbineToHP:      e.energy(TurbineToHP),
		TurbineToBattery: e.energy(TurbineToBattery),
		TurbineToElB:     e.energy(TurbineToElB),
		TurbineToH2E:     e.energy(TurbineToH2E),
		TurbineExcess:    e.energy(TurbineExcess),
		TurbineToProcess: e.energy(TurbineToProcess),
		TurbineToGrid:    e.energy(TurbineToGrid),

		TotalGas:        e.energy(gasIntakes...),
		TotalGridImport: floats.Sum(imports) * s.Step(),
		GridToBattery:   e.energy(GridToBattery),
		GridToElB:       e.energy(GridToElB),
		GridToH2E:       e.energy(GridToH2E),
		GridToHP:        e.energy(GridToHP),
		GridToProcess:   e.energy(GridToProcess),

		ElBSize:          capacity[assets.ElectricBoiler],
		ElBHeatToProcess: e.energy(ElBHeatToProcess),
		ElBHeatToTES:     e.energy(ElBHeatToTES),

		BatterySize:      capacity[assets.Battery],
		BatteryToElB:     e.energy(BatteryToElB),
		BatteryToH2E:     e.energy(BatteryToH2E),
		BatteryToHP:      e.energy(BatteryToHP),
		BatteryToProcess: e.energy(BatteryToProcess),
		BatteryToGrid:    e.energy(BatteryToGrid),

		TESSize:      capacity[assets.ThermalStore],
		TESToProcess: e.energy(TESToProcess),

		H2ESize:  capacity[assets.Electrolyser],
		H2EToH2B: e.energy(H2EToH2B),
		H2EToH2S: e.energy(H2EToH2S),

		H2BSize:          capacity[assets.HydrogenBoiler],
		H2BHeatToProcess: e.energy(H2BHeatToProcess),

		H2SSize:  capacity[assets.HydrogenStore],
		H2SToH2B: e.energy(H2SToH2B),

		HPSize:          capacity[assets.HeatPump],
		HPHeatToProcess: e.energy(HPHeatToProcess),
		HPHeatToTES:     e.energy(HPHeatToTES),

		HeatBalanceResidual:  e.residual(f.heatSupply, s.HeatDemand),
		PowerBalanceResidual: e.residual(f.powerSupply, s.PowerDemand),
	}

	// overlap only means something for a store that was built
	if capacity[assets.Battery] > eps {
		m.BatterySimultaneousPeriods = e.simultaneous(batteryCharge, batteryDischarge)
	}
	if capacity[assets.ThermalStore] > eps {
		m.TESSimultaneousPeriods = e.simultaneous(tesCharge, tesDischarge)
	}
	if capacity[assets.HydrogenStore] > eps {
		m.H2SSimultaneousPeriods = e.simultaneous(h2sCharge, h2sDischarge)
	}

	return Result{
		System:       f.System,
		Status:       sol.Status,
		Gap:          sol.Gap,
		Metrics:      m,
		Flows:        e.table(),
		Capacity:     capacity,
		CapexByAsset: capexByAsset,
	}
}

// sourceUnitCost is AnnualisedUnitCost without the installation factor for TES and H2E, matching how the historical
// CAPEX metric was computed.
func sourceUnitCost(s Scenario, id assets.ID) float64 {
	if id == assets.ThermalStore || id == assets.Electrolyser {
		inv := s.Constants.Investment(id)
		return s.Capex[id] * AnnuityFactor(s.Constants.DiscountRate, inv.Lifetime)
	}
	return AnnualisedUnitCost(s, id)
}

func (e extraction) table() FlowTable {
	labels := e.f.Labels()
	table := FlowTable{
		Times:   e.f.Scenario.Grid.Times(),
		Columns: make([]string, len(labels)),
		Values:  make([][]float64, len(labels)),
	}
	copy(table.Columns, labels)
	for i, label := range labels {
		table.Values[i] = e.series(label)
	}
	return table
}
