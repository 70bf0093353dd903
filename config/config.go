package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cepro/flexsizing/assets"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

const (
	DefaultStep             = 30 * time.Minute
	DefaultPowerDemandRatio = 0.1
	DefaultSolver           = "bnb"
	DefaultMIPGap           = 0.0005
)

type InputsConfig struct {
	// DemandFile holds the heat demand at dispatch resolution, one value per period from the start of the horizon.
	DemandFile string `yaml:"demand_file"`
	// PositionalElectricity re-stamps the electricity prices onto the gas price index by position, ignoring their
	// own timestamps.
	PositionalElectricity bool `yaml:"positional_electricity"`
}

type ElectricityScenarioConfig struct {
	Name string `yaml:"name"`
	File string `yaml:"file"`
	// GasScenarios names the gas price scenarios this electricity scenario is paired with.
	GasScenarios []string `yaml:"gas_scenarios"`
}

type GasScenarioConfig struct {
	Name string `yaml:"name"`
	File string `yaml:"file"`
}

type CapexScenarioConfig struct {
	Name  string         `yaml:"name"`
	Costs map[string]any `yaml:"costs"`

	// Capex is the decoded form of Costs, filled in by Read.
	Capex map[assets.ID]float64 `yaml:"-"`
}

type SolverConfig struct {
	// Name is either "bnb" or "highs".
	Name string `yaml:"name"`
	// Binary is the HiGHS executable, only used by the "highs" solver.
	Binary  string        `yaml:"binary"`
	// MIPGap is the accepted relative gap, DefaultMIPGap when absent. Zero asks for a proven optimum.
	MIPGap  *float64      `yaml:"mip_gap"`
	Timeout time.Duration `yaml:"timeout"`
	Threads int           `yaml:"threads"`
}

type SweepConfig struct {
	Workers int `yaml:"workers"`
	// Epsilon is the zero tolerance for the simultaneous use metrics.
	Epsilon       float64 `yaml:"epsilon"`
	SkipBenchmark bool    `yaml:"skip_benchmark"`
}

type Config struct {
	Hours            int           `yaml:"hours"`
	Step             time.Duration `yaml:"step"`
	MinLoad          float64       `yaml:"min_load"`
	PowerDemandRatio float64       `yaml:"power_demand_ratio"`
	AmpValues        []float64     `yaml:"amp_values"`
	// Variants restricts the solved electricity price variants by label, all of them when empty.
	Variants []string `yaml:"variants"`

	Inputs               InputsConfig                `yaml:"inputs"`
	ElectricityScenarios []ElectricityScenarioConfig `yaml:"electricity_scenarios"`
	GasScenarios         []GasScenarioConfig         `yaml:"gas_scenarios"`
	CapexScenarios       []CapexScenarioConfig       `yaml:"capex_scenarios"`
	CapacityBounds       map[string]float64          `yaml:"capacity_bounds"`

	Solver SolverConfig `yaml:"solver"`
	Sweep  SweepConfig  `yaml:"sweep"`
}

// Read loads the config file at `path`, resolving input files relative to the file's directory, and validates it.
func Read(path string) (Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	config, err := Parse(content)
	if err != nil {
		return Config{}, err
	}
	config.resolvePaths(filepath.Dir(path))
	return config, nil
}

// Parse decodes and validates a YAML config.
func Parse(content []byte) (Config, error) {
	var config Config
	err := yaml.Unmarshal(content, &config)
	if err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	config.applyDefaults()

	for i := range config.CapexScenarios {
		scenario := &config.CapexScenarios[i]
		scenario.Capex, err = decodeCapex(scenario.Name, scenario.Costs)
		if err != nil {
			return Config{}, err
		}
	}

	err = config.Validate()
	if err != nil {
		return Config{}, err
	}
	return config, nil
}

func (c *Config) applyDefaults() {
	if c.Step == 0 {
		c.Step = DefaultStep
	}
	if c.PowerDemandRatio == 0 {
		c.PowerDemandRatio = DefaultPowerDemandRatio
	}
	if c.Solver.Name == "" {
		c.Solver.Name = DefaultSolver
	}
	if c.Solver.MIPGap == nil {
		gap := DefaultMIPGap
		c.Solver.MIPGap = &gap
	}
}

func (c *Config) resolvePaths(dir string) {
	resolve := func(path string) string {
		if path == "" || filepath.IsAbs(path) {
			return path
		}
		return filepath.Join(dir, path)
	}
	c.Inputs.DemandFile = resolve(c.Inputs.DemandFile)
	for i := range c.ElectricityScenarios {
		c.ElectricityScenarios[i].File = resolve(c.ElectricityScenarios[i].File)
	}
	for i := range c.GasScenarios {
		c.GasScenarios[i].File = resolve(c.GasScenarios[i].File)
	}
}

// capexRow has one field per asset so that a misspelled or missing asset key is caught when decoding.
type capexRow struct {
	ElB *float64 `mapstructure:"ElB"`
	Bat *float64 `mapstructure:"Bat"`
	TES *float64 `mapstructure:"TES"`
	HP  *float64 `mapstructure:"HP"`
	H2E *float64 `mapstructure:"H2E"`
	H2B *float64 `mapstructure:"H2B"`
	H2S *float64 `mapstructure:"H2S"`
}

func decodeCapex(name string, costs map[string]any) (map[assets.ID]float64, error) {
	var row capexRow
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnused: true,
		Result:      &row,
	})
	if err != nil {
		return nil, fmt.Errorf("create capex decoder: %w", err)
	}
	err = decoder.Decode(costs)
	if err != nil {
		return nil, Invalid("capex_scenarios", "%s: %v", name, err)
	}

	values := map[assets.ID]*float64{
		assets.ElectricBoiler: row.ElB,
		assets.Battery:        row.Bat,
		assets.ThermalStore:   row.TES,
		assets.HeatPump:       row.HP,
		assets.Electrolyser:   row.H2E,
		assets.HydrogenBoiler: row.H2B,
		assets.HydrogenStore:  row.H2S,
	}
	capex := make(map[assets.ID]float64, len(values))
	for _, id := range assets.IDs {
		v := values[id]
		if v == nil {
			return nil, Invalid("capex_scenarios", "%s: no unit cost for %s", name, id)
		}
		capex[id] = *v
	}
	return capex, nil
}

// CapacityBoundsByID returns the configured capacity bounds keyed by asset.
func (c Config) CapacityBoundsByID() map[assets.ID]float64 {
	bounds := make(map[assets.ID]float64, len(c.CapacityBounds))
	for key, bound := range c.CapacityBounds {
		id, err := assets.ParseID(key)
		if err != nil {
			continue
		}
		bounds[id] = bound
	}
	return bounds
}

// GasScenario returns the gas scenario with the given name.
func (c Config) GasScenario(name string) (GasScenarioConfig, bool) {
	for _, gas := range c.GasScenarios {
		if gas.Name == name {
			return gas, true
		}
	}
	return GasScenarioConfig{}, false
}
