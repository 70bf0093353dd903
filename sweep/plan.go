package sweep

import (
	"fmt"

	"github.com/cepro/flexsizing/assets"
	"github.com/cepro/flexsizing/model"
	"github.com/cepro/flexsizing/timeseries"
)

// Key identifies a scenario combination. CapexScenario is empty for the benchmark system, which sizes nothing.
type Key struct {
	System              model.System
	ElectricityScenario string
	GasScenario         string
	CapexScenario       string
}

func (k Key) String() string {
	if k.CapexScenario == "" {
		return fmt.Sprintf("%s/%s/%s", k.System, k.ElectricityScenario, k.GasScenario)
	}
	return fmt.Sprintf("%s/%s/%s/%s", k.System, k.ElectricityScenario, k.GasScenario, k.CapexScenario)
}

// Pair is the prepared input of one electricity and gas price scenario combination.
type Pair struct {
	ElectricityScenario string
	GasScenario         string
	Prepared            timeseries.Prepared
}

type CapexScenario struct {
	Name  string
	Capex model.Capex
}

// Plan describes a sweep: every pair is solved with every capex scenario and every price variant on the flexible
// system, and with every variant on the benchmark system.
type Plan struct {
	Pairs          []Pair
	Capex          []CapexScenario
	// Variants restricts the price variants by label, every variant of a pair when empty.
	Variants       []string
	MinLoad        float64
	Constants      assets.Constants
	CapacityBounds map[assets.ID]float64
	Benchmark      bool
}

// Keys returns the scenario keys planned for an electricity and gas scenario pair: one per capex scenario on the
// flexible system, then the benchmark.
func (p Plan) Keys(electricityScenario, gasScenario string) []Key {
	keys := make([]Key, 0, len(p.Capex)+1)
	for _, capex := range p.Capex {
		keys = append(keys, Key{
			System:              model.Flexible,
			ElectricityScenario: electricityScenario,
			GasScenario:         gasScenario,
			CapexScenario:       capex.Name,
		})
	}
	if p.Benchmark {
		keys = append(keys, Key{
			System:              model.Benchmark,
			ElectricityScenario: electricityScenario,
			GasScenario:         gasScenario,
		})
	}
	return keys
}

// Job is one scenario solve.
type Job struct {
	Key      Key
	Variant  string
	Scenario model.Scenario
}

// Jobs expands the plan. A requested variant that a pair does not have is reported as a configuration failure for
// every job that would have used it.
func (p Plan) Jobs() ([]Job, []Failure) {
	var jobs []Job
	var failures []Failure

	for _, pair := range p.Pairs {
		variants := p.Variants
		if len(variants) == 0 {
			variants = pair.Prepared.Electricity.Labels()
		}

		keys := p.Keys(pair.ElectricityScenario, pair.GasScenario)
		for i, key := range keys {
			var capex model.Capex
			if key.System == model.Flexible {
				capex = p.Capex[i].Capex
			}
			for _, label := range variants {
				variant, ok := pair.Prepared.Electricity.Variant(label)
				if !ok {
					failures = append(failures, Failure{
						Key:     key,
						Variant: label,
						Kind:    KindConfiguration,
						Reason:  fmt.Sprintf("no electricity price variant %q", label),
					})
					continue
				}
				jobs = append(jobs, Job{
					Key:     key,
					Variant: label,
					Scenario: model.Scenario{
						Name:             key.String() + "/" + label,
						Grid:             pair.Prepared.Grid,
						HeatDemand:       pair.Prepared.HeatDemand,
						PowerDemand:      pair.Prepared.PowerDemand,
						ElectricityPrice: variant.Values,
						GasPrice:         pair.Prepared.Gas,
						Capex:            capex,
						MinLoad:          p.MinLoad,
						Constants:        p.Constants,
						CapacityBounds:   p.CapacityBounds,
					},
				})
			}
		}
	}
	return jobs, failures
}
