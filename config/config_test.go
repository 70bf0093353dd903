package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cepro/flexsizing/assets"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validConfig = `
hours: 48
min_load: 0.3
amp_values: [1.3]
variants: [original, amp 1.300]
inputs:
  demand_file: demand.csv
electricity_scenarios:
  - name: MeanLow-VarLow
    file: el/mean_low.csv
    gas_scenarios: [MeanLow-VarLow-EGR1.6, MeanLow-VarLow-EGR1]
gas_scenarios:
  - name: MeanLow-VarLow-EGR1.6
    file: gas/egr16.csv
  - name: MeanLow-VarLow-EGR1
    file: /data/gas/egr1.csv
capex_scenarios:
  - name: HighHP-LowRest
    costs: {ElB: 30000, Bat: 180000, TES: 15000, HP: 500000, H2E: 760000, H2B: 35000, H2S: 10000}
capacity_bounds:
  Bat: 200
solver:
  mip_gap: 0.001
  timeout: 10m
sweep:
  workers: 4
`

func TestParseMIPGap(t *testing.T) {
	type subTest struct {
		name     string
		new      string
		expected float64
	}
	subTests := []subTest{
		{"absent", "timeout: 10m", DefaultMIPGap},
		{"exact", "mip_gap: 0\n  timeout: 10m", 0},
		{"explicit", "mip_gap: 0.02\n  timeout: 10m", 0.02},
	}
	for _, subTest := range subTests {
		t.Run(subTest.name, func(t *testing.T) {
			content := strings.Replace(validConfig, "mip_gap: 0.001\n  timeout: 10m", subTest.new, 1)
			require.NotEqual(t, validConfig, content)

			config, err := Parse([]byte(content))
			require.NoError(t, err)
			require.NotNil(t, config.Solver.MIPGap)
			assert.Equal(t, subTest.expected, *config.Solver.MIPGap)
		})
	}
}

func TestParse(t *testing.T) {
	config, err := Parse([]byte(validConfig))
	require.NoError(t, err)

	assert.Equal(t, 48, config.Hours)
	assert.Equal(t, DefaultStep, config.Step)
	assert.Equal(t, DefaultPowerDemandRatio, config.PowerDemandRatio)
	assert.Equal(t, 0.3, config.MinLoad)
	assert.Equal(t, []float64{1.3}, config.AmpValues)
	assert.Equal(t, DefaultSolver, config.Solver.Name)
	assert.Equal(t, 10*time.Minute, config.Solver.Timeout)
	require.NotNil(t, config.Solver.MIPGap)
	assert.Equal(t, 0.001, *config.Solver.MIPGap)
	assert.Equal(t, 4, config.Sweep.Workers)

	require.Len(t, config.CapexScenarios, 1)
	capex := config.CapexScenarios[0].Capex
	assert.Len(t, capex, len(assets.IDs))
	assert.Equal(t, 180000.0, capex[assets.Battery])
	assert.Equal(t, 500000.0, capex[assets.HeatPump])

	assert.Equal(t, map[assets.ID]float64{assets.Battery: 200}, config.CapacityBoundsByID())

	gas, ok := config.GasScenario("MeanLow-VarLow-EGR1")
	assert.True(t, ok)
	assert.Equal(t, "/data/gas/egr1.csv", gas.File)
	_, ok = config.GasScenario("missing")
	assert.False(t, ok)
}

func TestRead(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sweep.yaml")
	require.NoError(t, os.WriteFile(path, []byte(validConfig), 0o644))

	config, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "demand.csv"), config.Inputs.DemandFile)
	assert.Equal(t, filepath.Join(dir, "el/mean_low.csv"), config.ElectricityScenarios[0].File)
	assert.Equal(t, filepath.Join(dir, "gas/egr16.csv"), config.GasScenarios[0].File)
	// absolute paths are kept
	assert.Equal(t, "/data/gas/egr1.csv", config.GasScenarios[1].File)

	_, err = Read(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestParseInvalid(t *testing.T) {
	type subTest struct {
		name    string
		old     string
		new     string
		field   string
		noField bool
	}

	subTests := []subTest{
		{"zero hours", "hours: 48", "hours: 0", "hours", false},
		{"uneven step", "hours: 48", "hours: 48\nstep: 7m", "step", false},
		{"negative step", "hours: 48", "hours: 48\nstep: -30m", "step", false},
		{"min load above one", "min_load: 0.3", "min_load: 1.3", "min_load", false},
		{"negative power ratio", "hours: 48", "hours: 48\npower_demand_ratio: -0.1", "power_demand_ratio", false},
		{"negative amplitude", "amp_values: [1.3]", "amp_values: [-1.3]", "amp_values", false},
		{"unknown variant", "variants: [original, amp 1.300]", "variants: [amp 1.400]", "variants", false},
		{"no demand file", "demand_file: demand.csv", "demand_file: ''", "inputs.demand_file", false},
		{"unknown gas reference", "gas_scenarios: [MeanLow-VarLow-EGR1.6, MeanLow-VarLow-EGR1]", "gas_scenarios: [MeanHigh]", "electricity_scenarios", false},
		{"unpaired electricity", "gas_scenarios: [MeanLow-VarLow-EGR1.6, MeanLow-VarLow-EGR1]", "gas_scenarios: []", "electricity_scenarios", false},
		{"duplicate gas", "name: MeanLow-VarLow-EGR1\n", "name: MeanLow-VarLow-EGR1.6\n", "gas_scenarios", false},
		{"misspelled asset", "Bat: 180000", "Bta: 180000", "capex_scenarios", false},
		{"missing asset", ", H2S: 10000", "", "capex_scenarios", false},
		{"negative cost", "TES: 15000", "TES: -15000", "capex_scenarios", false},
		{"unknown bound", "Bat: 200\n", "Battery: 200\n", "capacity_bounds", false},
		{"zero bound", "Bat: 200\n", "Bat: 0\n", "capacity_bounds", false},
		{"unknown solver", "mip_gap: 0.001", "mip_gap: 0.001\n  name: gurobi", "solver.name", false},
		{"negative gap", "mip_gap: 0.001", "mip_gap: -0.001", "solver.mip_gap", false},
		{"negative workers", "workers: 4", "workers: -4", "sweep.workers", false},
		{"not yaml", "hours: 48", "hours: [48", "", true},
	}

	for _, subTest := range subTests {
		t.Run(subTest.name, func(t *testing.T) {
			content := strings.Replace(validConfig, subTest.old, subTest.new, 1)
			require.NotEqual(t, validConfig, content)

			_, err := Parse([]byte(content))
			require.Error(t, err)

			var configErr *ConfigurationError
			if subTest.noField {
				assert.False(t, errors.As(err, &configErr))
				return
			}
			require.True(t, errors.As(err, &configErr), "got %v", err)
			assert.Equal(t, subTest.field, configErr.Field)
		})
	}
}

func TestConfigurationError(t *testing.T) {
	err := Invalid("min_load", "must be within [0,1], got %v", 2.0)
	assert.EqualError(t, err, "invalid configuration min_load: must be within [0,1], got 2")
}
