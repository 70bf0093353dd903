// Package assets holds the fixed technical parameters of each plant item and the constraint generators that turn an
// item's per-period flows into model rows. Generators are pure functions of the period, the variable handles and the
// parameters.
package assets

import "fmt"

// ID identifies a sizeable asset. The values double as the keys of capital cost tables.
type ID string

const (
	ElectricBoiler ID = "ElB"
	Battery        ID = "Bat"
	ThermalStore   ID = "TES"
	HeatPump       ID = "HP"
	Electrolyser   ID = "H2E"
	HydrogenBoiler ID = "H2B"
	HydrogenStore  ID = "H2S"
)

// IDs lists every sizeable asset in reporting order.
var IDs = []ID{ElectricBoiler, Battery, ThermalStore, HeatPump, Electrolyser, HydrogenBoiler, HydrogenStore}

// ParseID returns the asset with the given capex key.
func ParseID(s string) (ID, error) {
	for _, id := range IDs {
		if string(id) == s {
			return id, nil
		}
	}
	return "", fmt.Errorf("unknown asset %q", s)
}

// Investment describes how an asset's installed capacity turns into capital cost and footprint.
type Investment struct {
	Lifetime           float64 // years
	InstallationFactor float64 // multiplier on the equipment unit cost
	SpaceRequirement   float64 // m² per MW, or per MWh for storage
}

// Conversion is a single-efficiency converter, e.g. an electric boiler turning power into heat.
type Conversion struct {
	Investment
	Efficiency float64
}

// Storage is a store with a state of energy.
type Storage struct {
	Investment
	ChargeEfficiency float64
	// DischargeEfficiency divides the energy drawn from the store, 1 for a lossless discharge.
	DischargeEfficiency float64
	// CRate is the fraction of capacity per unit time that can flow in or out.
	CRate float64
	// DischargeLimitedBySOE caps the discharge at what is currently stored rather than at the C-rate.
	DischargeLimitedBySOE bool
}

// CHP is the gas turbine with its heat recovery and auxiliary boiler.
type CHP struct {
	ElectricalEfficiency float64
	ThermalEfficiency    float64
	BoilerEfficiency     float64
	// AuxiliaryBoilerFraction sizes the auxiliary burner relative to the turbine capacity.
	AuxiliaryBoilerFraction float64
}

// Constants are the site wide and per asset parameters shared by every scenario.
type Constants struct {
	DiscountRate      float64
	GasEmissionFactor float64 // tCO2 per MWh of gas
	GridConnection    float64 // MW in either direction

	CHP            CHP
	ElectricBoiler Conversion
	HeatPump       Conversion
	Electrolyser   Conversion
	HydrogenBoiler Conversion
	Battery        Storage
	ThermalStore   Storage
	HydrogenStore  Storage
}

// CarnotCOP returns the ideal coefficient of performance lifting heat from `sourceC` to `sinkC` degrees celsius.
func CarnotCOP(sinkC, sourceC float64) float64 {
	return (sinkC + 273) / (sinkC - sourceC)
}

func Defaults() Constants {
	return Constants{
		DiscountRate:      0.1,
		GasEmissionFactor: 0.2,
		GridConnection:    30,
		CHP: CHP{
			ElectricalEfficiency:    0.3,
			ThermalEfficiency:       0.6,
			BoilerEfficiency:        0.82,
			AuxiliaryBoilerFraction: 0.2,
		},
		ElectricBoiler: Conversion{
			Investment: Investment{Lifetime: 20, InstallationFactor: 2, SpaceRequirement: 70},
			Efficiency: 0.99,
		},
		HeatPump: Conversion{
			Investment: Investment{Lifetime: 20, InstallationFactor: 3, SpaceRequirement: 1},
			// 160°C process heat from a 55°C source at half of the carnot limit
			Efficiency: CarnotCOP(160, 55) * 0.5,
		},
		Electrolyser: Conversion{
			Investment: Investment{Lifetime: 14, InstallationFactor: 1, SpaceRequirement: 105},
			Efficiency: 0.69,
		},
		HydrogenBoiler: Conversion{
			Investment: Investment{Lifetime: 20, InstallationFactor: 2, SpaceRequirement: 70},
			Efficiency: 0.9,
		},
		Battery: Storage{
			Investment:          Investment{Lifetime: 20, InstallationFactor: 2.5, SpaceRequirement: 11},
			ChargeEfficiency:    0.95,
			DischargeEfficiency: 0.95,
			CRate:               0.7,
		},
		ThermalStore: Storage{
			Investment:          Investment{Lifetime: 25, InstallationFactor: 2.5, SpaceRequirement: 7},
			ChargeEfficiency:    0.95,
			DischargeEfficiency: 1,
			CRate:               0.5,
		},
		HydrogenStore: Storage{
			Investment:            Investment{Lifetime: 23, InstallationFactor: 4, SpaceRequirement: 8.4},
			ChargeEfficiency:      0.9,
			DischargeEfficiency:   1,
			CRate:                 1,
			DischargeLimitedBySOE: true,
		},
	}
}

// Investment returns the investment parameters of the given asset.
func (c Constants) Investment(id ID) Investment {
	switch id {
	case ElectricBoiler:
		return c.ElectricBoiler.Investment
	case Battery:
		return c.Battery.Investment
	case ThermalStore:
		return c.ThermalStore.Investment
	case HeatPump:
		return c.HeatPump.Investment
	case Electrolyser:
		return c.Electrolyser.Investment
	case HydrogenBoiler:
		return c.HydrogenBoiler.Investment
	case HydrogenStore:
		return c.HydrogenStore.Investment
	}
	return Investment{}
}
