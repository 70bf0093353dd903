package model

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/cepro/flexsizing/assets"
	"github.com/cepro/flexsizing/config"
	"github.com/cepro/flexsizing/milp"
	"github.com/cepro/flexsizing/milp/bnb"
	"github.com/cepro/flexsizing/timeseries"
	timeutils "github.com/cepro/flexsizing/time_utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tol = 1e-6

func constant(n int, v float64) []float64 {
	values := make([]float64, n)
	for i := range values {
		values[i] = v
	}
	return values
}

func zeroCapex() Capex {
	capex := Capex{}
	for _, id := range assets.IDs {
		capex[id] = 0
	}
	return capex
}

// testScenario is a short horizon at half hourly resolution with a flat 10 MW heat and 1 MW power demand.
func testScenario(electricity, gas []float64) Scenario {
	n := len(electricity)
	return Scenario{
		Name:             "test",
		Grid:             timeutils.Grid{Start: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), Step: timeutils.ThirtyMins, Len: n},
		HeatDemand:       constant(n, 10),
		PowerDemand:      constant(n, 1),
		ElectricityPrice: electricity,
		GasPrice:         gas,
		Capex:            zeroCapex(),
		MinLoad:          0,
		Constants:        assets.Defaults(),
	}
}

func TestAnnuityFactor(t *testing.T) {
	type subTest struct {
		name     string
		rate     float64
		lifetime float64
		expected float64
	}
	subTests := []subTest{
		{"ten percent over twenty years", 0.1, 20, 0.11746},
		{"ten percent over one year", 0.1, 1, 1.1},
		{"no discounting", 0, 20, 0.05},
		{"no lifetime", 0.1, 0, 0},
	}
	for _, subTest := range subTests {
		t.Run(subTest.name, func(t *testing.T) {
			assert.InDelta(t, subTest.expected, AnnuityFactor(subTest.rate, subTest.lifetime), 1e-5)
		})
	}
}

func TestAnnualisedUnitCost(t *testing.T) {
	s := testScenario(constant(4, 50), constant(4, 20))
	s.Capex[assets.Battery] = 180e3

	// C * unit cost * installation factor * annuity
	expected := 180e3 * 2.5 * AnnuityFactor(0.1, 20)
	assert.InDelta(t, expected, AnnualisedUnitCost(s, assets.Battery), 1e-6)

	s.Capex[assets.ThermalStore] = 15000
	assert.InDelta(t, 15000*2.5*AnnuityFactor(0.1, 25), AnnualisedUnitCost(s, assets.ThermalStore), 1e-6)
	assert.InDelta(t, 15000*AnnuityFactor(0.1, 25), sourceUnitCost(s, assets.ThermalStore), 1e-6)
	assert.InDelta(t, AnnualisedUnitCost(s, assets.Battery), sourceUnitCost(s, assets.Battery), 1e-6)
}

func TestValidate(t *testing.T) {
	type subTest struct {
		name        string
		mutate      func(s *Scenario)
		system      System
		alignment   bool
		configError bool
	}
	subTests := []subTest{
		{"valid", func(s *Scenario) {}, Flexible, false, false},
		{"short demand", func(s *Scenario) { s.HeatDemand = constant(3, 10) }, Flexible, true, false},
		{"NaN price", func(s *Scenario) { s.GasPrice = []float64{20, math.NaN(), 20, 20} }, Benchmark, true, false},
		{"min load above one", func(s *Scenario) { s.MinLoad = 1.5 }, Benchmark, false, true},
		{"negative min load", func(s *Scenario) { s.MinLoad = -0.1 }, Flexible, false, true},
		{"negative capex", func(s *Scenario) { s.Capex[assets.HeatPump] = -1 }, Flexible, false, true},
		{"missing capex", func(s *Scenario) { delete(s.Capex, assets.HydrogenStore) }, Flexible, false, true},
		{"missing capex is fine for the benchmark", func(s *Scenario) { s.Capex = nil }, Benchmark, false, false},
		{"zero capacity bound", func(s *Scenario) { s.CapacityBounds = map[assets.ID]float64{assets.Battery: 0} }, Flexible, false, true},
		{"empty grid", func(s *Scenario) { s.Grid.Len = 0 }, Flexible, false, true},
	}
	for _, subTest := range subTests {
		t.Run(subTest.name, func(t *testing.T) {
			s := testScenario(constant(4, 50), constant(4, 20))
			subTest.mutate(&s)
			err := s.Validate(subTest.system)

			var alignErr *timeseries.InputAlignmentError
			var configErr *config.ConfigurationError
			assert.Equal(t, subTest.alignment, errors.As(err, &alignErr), "got %v", err)
			assert.Equal(t, subTest.configError, errors.As(err, &configErr), "got %v", err)
			if !subTest.alignment && !subTest.configError {
				assert.NoError(t, err)
			}
		})
	}
}

func TestBuildFlexibleShape(t *testing.T) {
	s := testScenario(constant(4, 50), constant(4, 20))
	f, err := BuildFlexible(s)
	require.NoError(t, err)

	perPeriod := len(flexibleFlows) + len(flexibleIndicators)
	assert.Equal(t, perPeriod*4+len(assets.IDs), f.Problem.NumVars())
	assert.Len(t, f.Capacities, len(assets.IDs))
	assert.Len(t, f.Labels(), perPeriod)
	assert.Nil(t, f.Vars("nope"))
	require.NoError(t, f.Problem.Validate())

	binaries := 0
	for _, col := range f.Problem.Columns {
		if col.Kind == milp.Binary {
			binaries++
		}
	}
	assert.Equal(t, 4*4, binaries)

	// capacity columns carry the annualised cost, bounded by the default bounds
	s.Capex[assets.HeatPump] = 500e3
	f, err = BuildFlexible(s)
	require.NoError(t, err)
	hp := f.Problem.Columns[f.Capacities[assets.HeatPump]]
	assert.InDelta(t, 500e3*3*AnnuityFactor(0.1, 20), hp.Cost, 1e-6)
	assert.Equal(t, DefaultCapacityBounds(10, 30)[assets.HeatPump], hp.Upper)
}

func TestBuildBenchmarkShape(t *testing.T) {
	s := testScenario(constant(4, 50), constant(4, 20))
	f, err := BuildBenchmark(s)
	require.NoError(t, err)

	assert.Equal(t, (len(benchmarkFlows)+1)*4, f.Problem.NumVars())
	assert.Empty(t, f.Capacities)
	for _, col := range f.Problem.Columns {
		if col.Kind == milp.Continuous {
			continue
		}
		assert.Equal(t, 1.0, col.Upper)
	}

	_, err = Build(System("other"), s)
	assert.Error(t, err)
}

// operatingCost recomputes the objective's operating cost from the flow table.
func operatingCost(t *testing.T, s Scenario, flows FlowTable, imports, exports []string) float64 {
	column := func(label string) []float64 {
		values, ok := flows.Column(label)
		require.True(t, ok, label)
		return values
	}
	cost := 0.0
	for p := 0; p < s.Grid.Len; p++ {
		for _, label := range imports {
			cost += s.ElectricityPrice[p] * s.Step() * column(label)[p]
		}
		for _, label := range exports {
			cost -= s.ElectricityPrice[p] * s.Step() * column(label)[p]
		}
		for _, label := range gasIntakes {
			cost += s.GasPrice[p] * s.Step() * column(label)[p]
		}
	}
	return cost
}

// checkInvariants asserts the properties every feasible dispatch must have.
func checkInvariants(t *testing.T, f *Formulation, result Result) {
	s := f.Scenario
	column := func(label string) []float64 {
		values, ok := result.Flows.Column(label)
		if !ok {
			return make([]float64, s.Grid.Len)
		}
		return values
	}
	sum := func(labels []string, p int) float64 {
		total := 0.0
		for _, label := range labels {
			total += column(label)[p]
		}
		return total
	}

	assert.Less(t, result.Metrics.HeatBalanceResidual, tol)
	assert.Less(t, result.Metrics.PowerBalanceResidual, tol)

	maxGas := s.Constants.CHP.MaxTurbineGas(s.TurbineCapacity())
	for p := 0; p < s.Grid.Len; p++ {
		assert.InDelta(t, s.HeatDemand[p], sum(f.heatSupply, p), tol, "heat balance in period %d", p)
		assert.InDelta(t, s.PowerDemand[p], sum(f.powerSupply, p), tol, "power balance in period %d", p)

		gas := column(TurbineGas)[p]
		assert.LessOrEqual(t, gas, maxGas+tol)
		assert.GreaterOrEqual(t, gas, maxGas*s.MinLoad-tol)

		imp, exp := sum(f.gridImports, p), sum(f.gridExports, p)
		assert.False(t, imp > tol && exp > tol, "grid import %v and export %v in period %d", imp, exp, p)
	}

	if f.System != Flexible {
		return
	}
	stores := []struct {
		id                assets.ID
		soe               string
		charge, discharge []string
	}{
		{assets.Battery, BatterySOE, batteryCharge, batteryDischarge},
		{assets.ThermalStore, TESSOE, tesCharge, tesDischarge},
		{assets.HydrogenStore, H2SSOE, h2sCharge, h2sDischarge},
	}
	for _, store := range stores {
		soe := column(store.soe)
		assert.InDelta(t, 0, soe[0], tol, "%s starts empty", store.id)
		for p := 0; p < s.Grid.Len; p++ {
			assert.GreaterOrEqual(t, soe[p], -tol)
			assert.LessOrEqual(t, soe[p], result.Capacity[store.id]+tol, "%s soe within capacity in period %d", store.id, p)
			in, out := sum(store.charge, p), sum(store.discharge, p)
			assert.False(t, in > tol && out > tol, "%s charges %v and discharges %v in period %d", store.id, in, out, p)
		}
	}
}

func TestRunFlexibleEndToEnd(t *testing.T) {
	s := testScenario(constant(4, 50), constant(4, 20))

	result, err := Run(context.Background(), bnb.New(), Flexible, s, RunOptions{})
	require.NoError(t, err)
	f, err := BuildFlexible(s)
	require.NoError(t, err)

	assert.Equal(t, milp.StatusOptimal, result.Status)
	assert.Equal(t, 0.0, result.Metrics.CAPEX)
	assert.Equal(t, 0.0, result.Metrics.SourceCAPEX)
	assert.InDelta(t, result.Metrics.Objective, result.Metrics.OPEX, tol)
	assert.InDelta(t, result.Metrics.Objective, operatingCost(t, s, result.Flows, flexibleGridImports, flexibleGridExports), 1e-4)
	assert.Equal(t, 30.0, result.Metrics.GridConnection)
	assert.Equal(t, 0.1, result.Metrics.DiscountRate)
	assert.InDelta(t, result.Metrics.TotalGas*0.2, result.Metrics.Scope1Emissions, tol)
	assert.Len(t, result.Flows.Times, 4)
	checkInvariants(t, f, result)

	// the benchmark's dispatch is available to the flexible system, so it can only do better
	benchmark, err := Run(context.Background(), bnb.New(), Benchmark, s, RunOptions{})
	require.NoError(t, err)
	assert.LessOrEqual(t, result.Metrics.Objective, benchmark.Metrics.Objective+1e-3*math.Abs(benchmark.Metrics.Objective))
}

func TestRunBenchmarkEndToEnd(t *testing.T) {
	s := testScenario(constant(4, 50), constant(4, 20))

	result, err := Run(context.Background(), bnb.New(), Benchmark, s, RunOptions{})
	require.NoError(t, err)
	f, err := BuildBenchmark(s)
	require.NoError(t, err)

	m := result.Metrics
	assert.Equal(t, 0.0, m.CAPEX)
	assert.InDelta(t, m.Objective, operatingCost(t, s, result.Flows, benchmarkGridImports, benchmarkGridExports), 1e-4)
	for _, v := range []float64{
		m.ElBSize, m.BatterySize, m.TESSize, m.HPSize, m.H2ESize, m.H2BSize, m.H2SSize,
		m.GridToBattery, m.GridToElB, m.GridToH2E, m.GridToHP,
		m.TurbineToBattery, m.TurbineToElB, m.TurbineToH2E, m.TurbineToHP,
		m.BatteryToProcess, m.TESToProcess, m.HPHeatToProcess, m.H2BHeatToProcess, m.CHPHeatToTES,
		m.RequiredSpace,
	} {
		assert.Equal(t, 0.0, v)
	}
	assert.Zero(t, m.BatterySimultaneousPeriods+m.TESSimultaneousPeriods+m.H2SSimultaneousPeriods)
	// 10 MW of heat over 2 hours
	assert.InDelta(t, 20.0, m.CHPHeatToProcess, 1e-4)
	checkInvariants(t, f, result)
}

func TestRunMinimumLoad(t *testing.T) {
	// gas is so expensive that the turbine would rather be off, so outside the peak it sits at minimum load
	s := testScenario(constant(4, 10), constant(4, 500))
	s.HeatDemand = []float64{1, 1, 10, 1}
	s.MinLoad = 0.3

	result, err := Run(context.Background(), bnb.New(), Benchmark, s, RunOptions{})
	require.NoError(t, err)
	f, err := BuildBenchmark(s)
	require.NoError(t, err)
	checkInvariants(t, f, result)

	minGas := s.Constants.CHP.MaxTurbineGas(s.TurbineCapacity()) * 0.3
	gas, ok := result.Flows.Column(TurbineGas)
	require.True(t, ok)
	for _, p := range []int{0, 1, 3} {
		assert.InDelta(t, minGas, gas[p], 1e-5, "period %d", p)
	}
	assert.Greater(t, gas[2], minGas)
	assert.Greater(t, result.Metrics.CHPHeatExcess, 0.0)
}

func TestRunInfeasible(t *testing.T) {
	// power demand far above the grid connection plus what the turbine can make
	s := testScenario(constant(4, 50), constant(4, 20))
	s.PowerDemand = constant(4, 50)

	_, err := Run(context.Background(), bnb.New(), Benchmark, s, RunOptions{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, milp.ErrInfeasible))
	var failure *milp.SolverFailure
	require.True(t, errors.As(err, &failure))
	assert.Equal(t, milp.StatusInfeasible, failure.Status)
}

func TestRunStorageArbitrage(t *testing.T) {
	// cheap then expensive electricity with free storage: whatever the solver buys, the dispatch must stay physical
	s := testScenario([]float64{10, 10, 200, 200}, constant(4, 60))

	result, err := Run(context.Background(), bnb.New(), Flexible, s, RunOptions{})
	require.NoError(t, err)
	f, err := BuildFlexible(s)
	require.NoError(t, err)

	checkInvariants(t, f, result)
	assert.InDelta(t, result.Metrics.Objective, operatingCost(t, s, result.Flows, flexibleGridImports, flexibleGridExports), 1e-3)
	assert.Zero(t, result.Metrics.SimultaneousGridPeriods)
	assert.Zero(t, result.Metrics.BatterySimultaneousPeriods)
	assert.Zero(t, result.Metrics.TESSimultaneousPeriods)
	assert.Zero(t, result.Metrics.H2SSimultaneousPeriods)
}

func TestRunFlexibleHorizons(t *testing.T) {
	type subTest struct {
		name        string
		electricity []float64
	}
	subTests := []subTest{
		{"two periods", []float64{50, 50}},
		{"five periods", []float64{30, 80, 30, 80, 30}},
	}
	for _, subTest := range subTests {
		t.Run(subTest.name, func(t *testing.T) {
			n := len(subTest.electricity)
			s := testScenario(subTest.electricity, constant(n, 20))

			result, err := Run(context.Background(), bnb.New(), Flexible, s, RunOptions{})
			require.NoError(t, err)
			f, err := BuildFlexible(s)
			require.NoError(t, err)

			assert.Len(t, result.Flows.Times, n)
			assert.Equal(t, 0.0, result.Metrics.CAPEX)
			assert.InDelta(t, result.Metrics.Objective, operatingCost(t, s, result.Flows, flexibleGridImports, flexibleGridExports), 1e-4)
			checkInvariants(t, f, result)
		})
	}
}

func TestRunBuildsStorageWithCapex(t *testing.T) {
	// everything but the battery is priced out, and the battery is cheap next to the price spread
	s := testScenario([]float64{10, 10, 10, 200, 200, 200}, constant(6, 60))
	for _, id := range assets.IDs {
		s.Capex[id] = 1e6
	}
	s.Capex[assets.Battery] = 100

	result, err := Run(context.Background(), bnb.New(), Flexible, s, RunOptions{})
	require.NoError(t, err)
	f, err := BuildFlexible(s)
	require.NoError(t, err)
	checkInvariants(t, f, result)

	m := result.Metrics
	assert.Greater(t, m.BatterySize, tol)
	assert.Equal(t, m.BatterySize, result.Capacity[assets.Battery])
	assert.Zero(t, m.BatterySimultaneousPeriods)

	expected := 0.0
	for _, id := range assets.IDs {
		inv := s.Constants.Investment(id)
		expected += result.Capacity[id] * s.Capex[id] * inv.InstallationFactor * AnnuityFactor(s.Constants.DiscountRate, inv.Lifetime)
	}
	battery := m.BatterySize * 100 * 2.5 * AnnuityFactor(0.1, 20)
	assert.InDelta(t, battery, result.CapexByAsset[assets.Battery], 1e-6*math.Max(1, battery))
	assert.Greater(t, m.CAPEX, 0.0)
	assert.InDelta(t, expected, m.CAPEX, 1e-6*math.Max(1, expected))

	opex := operatingCost(t, s, result.Flows, flexibleGridImports, flexibleGridExports)
	assert.InDelta(t, m.Objective, m.CAPEX+opex, 1e-4*math.Max(1, math.Abs(m.Objective)))
	assert.InDelta(t, opex, m.OPEX, 1e-4*math.Max(1, math.Abs(opex)))
}

func TestExtractSimultaneousCounts(t *testing.T) {
	s := testScenario(constant(4, 50), constant(4, 20))
	f, err := BuildFlexible(s)
	require.NoError(t, err)

	values := make([]float64, f.Problem.NumVars())
	set := func(label string, p int, v float64) { values[f.Vars(label)[p]] = v }

	values[f.Capacities[assets.Battery]] = 5
	set(GridToBattery, 1, 2)
	set(BatteryToProcess, 1, 1)
	set(GridToBattery, 2, 2)
	set(BatteryToGrid, 2, 1e-7) // below the tolerance
	set(GridToProcess, 3, 1)
	set(TurbineToGrid, 3, 1)
	// the TES was not built, so overlapping flows are not counted
	set(CHPHeatToTES, 0, 1)
	set(TESToProcess, 0, 1)

	result := Extract(f, milp.Solution{Values: values}, 0)
	assert.Equal(t, 1, result.Metrics.BatterySimultaneousPeriods)
	assert.Equal(t, 0, result.Metrics.TESSimultaneousPeriods)
	// only period 3 imports and exports above the tolerance
	assert.Equal(t, 1, result.Metrics.SimultaneousGridPeriods)
	assert.Equal(t, 5.0, result.Metrics.BatterySize)
	assert.InDelta(t, 5*11.0, result.Metrics.RequiredSpace, 1e-12)
	assert.InDelta(t, 4.0*0.5, result.Metrics.GridToBattery, 1e-12)
	assert.InDelta(t, 2.0, result.Metrics.MaxGridImport, 1e-12)
}

func TestMetricsNamed(t *testing.T) {
	named := Metrics{CAPEX: 3, HPSize: 2, TESSimultaneousPeriods: 4}.Named()

	seen := map[string]float64{}
	for _, nv := range named {
		_, dup := seen[nv.Name]
		assert.False(t, dup, "duplicate metric name %q", nv.Name)
		seen[nv.Name] = nv.Value
	}
	assert.Equal(t, 3.0, seen["CAPEX"])
	assert.Equal(t, 2.0, seen["HP size"])
	assert.Equal(t, 4.0, seen["simultaneous charging and discharging TES periods"])
}
