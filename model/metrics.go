package model

// Metrics are the aggregate results of one solve. Energies are in MWh over the horizon, sizes in MW or MWh, costs per
// year and counts in periods.
type Metrics struct {
	Objective float64
	// CAPEX is the annualised investment exactly as the objective counts it.
	CAPEX float64
	// SourceCAPEX repeats the historical metric, which leaves the installation factor off TES and H2E.
	SourceCAPEX float64
	OPEX        float64

	Scope1Emissions float64 // tCO2
	RequiredSpace   float64 // m²
	GridConnection  float64
	DiscountRate    float64

	MaxGridImport           float64
	SimultaneousGridPeriods int

	CHPHeatToProcess float64
	CHPHeatToTES     float64
	CHPHeatExcess    float64

	TurbineToHP      float64
	TurbineToBattery float64
	TurbineToElB     float64
	TurbineToH2E     float64
	TurbineExcess    float64
	TurbineToProcess float64
	TurbineToGrid    float64

	TotalGas        float64
	TotalGridImport float64
	GridToBattery   float64
	GridToElB       float64
	GridToH2E       float64
	GridToHP        float64
	GridToProcess   float64

	ElBSize          float64
	ElBHeatToProcess float64
	ElBHeatToTES     float64

	BatterySize                float64
	BatteryToElB               float64
	BatteryToH2E               float64
	BatteryToHP                float64
	BatteryToProcess           float64
	BatteryToGrid              float64
	BatterySimultaneousPeriods int

	TESSize                float64
	TESToProcess           float64
	TESSimultaneousPeriods int

	H2ESize  float64
	H2EToH2B float64
	H2EToH2S float64

	H2BSize          float64
	H2BHeatToProcess float64

	H2SSize                float64
	H2SToH2B               float64
	H2SSimultaneousPeriods int

	HPSize          float64
	HPHeatToProcess float64
	HPHeatToTES     float64

	// largest absolute demand balance error over the horizon, MW
	HeatBalanceResidual  float64
	PowerBalanceResidual float64
}

// NamedValue is a metric with its reporting name.
type NamedValue struct {
	Name  string
	Value float64
}

// Named lists every metric under its reporting name, in reporting order.
func (m Metrics) Named() []NamedValue {
	return []NamedValue{
		{"Optimal result", m.Objective},
		{"CAPEX", m.CAPEX},
		{"source CAPEX", m.SourceCAPEX},
		{"OPEX", m.OPEX},
		{"scope 1 emissions", m.Scope1Emissions},
		{"required space", m.RequiredSpace},
		{"grid connection cap", m.GridConnection},
		{"discount rate", m.DiscountRate},
		{"max power flow from grid", m.MaxGridImport},
		{"simultaneous bidirectional grid periods", float64(m.SimultaneousGridPeriods)},
		{"CHP heat gen to CP", m.CHPHeatToProcess},
		{"CHP heat gen to TES", m.CHPHeatToTES},
		{"CHP excess heat gen", m.CHPHeatExcess},
		{"GT electricity gen to HP", m.TurbineToHP},
		{"GT electricity gen to battery", m.TurbineToBattery},
		{"GT electricity gen to ElB", m.TurbineToElB},
		{"GT electricity gen to H2E", m.TurbineToH2E},
		{"GT excess electricity gen", m.TurbineExcess},
		{"GT electricity gen to CP", m.TurbineToProcess},
		{"GT electricity gen to grid", m.TurbineToGrid},
		{"total natural gas consumption", m.TotalGas},
		{"total grid consumption", m.TotalGridImport},
		{"grid to battery", m.GridToBattery},
		{"grid to ElB", m.GridToElB},
		{"grid to H2E", m.GridToH2E},
		{"grid to HP", m.GridToHP},
		{"grid to CP", m.GridToProcess},
		{"ElB size", m.ElBSize},
		{"ElB gen to CP", m.ElBHeatToProcess},
		{"ElB gen to TES", m.ElBHeatToTES},
		{"battery size", m.BatterySize},
		{"battery to ElB", m.BatteryToElB},
		{"battery to H2E", m.BatteryToH2E},
		{"battery to HP", m.BatteryToHP},
		{"battery to CP", m.BatteryToProcess},
		{"battery to grid", m.BatteryToGrid},
		{"simultaneous charging and discharging battery periods", float64(m.BatterySimultaneousPeriods)},
		{"TES size", m.TESSize},
		{"TES to CP", m.TESToProcess},
		{"simultaneous charging and discharging TES periods", float64(m.TESSimultaneousPeriods)},
		{"electrolyser size", m.H2ESize},
		{"H2 from H2E to H2B", m.H2EToH2B},
		{"H2 from H2E to H2S", m.H2EToH2S},
		{"H2B size", m.H2BSize},
		{"H2B to CP", m.H2BHeatToProcess},
		{"H2S size", m.H2SSize},
		{"H2 from H2S to H2B", m.H2SToH2B},
		{"simultaneous charging and discharging H2S periods", float64(m.H2SSimultaneousPeriods)},
		{"HP size", m.HPSize},
		{"heat from HP to CP", m.HPHeatToProcess},
		{"heat from HP to TES", m.HPHeatToTES},
		{"heat balance residual", m.HeatBalanceResidual},
		{"power balance residual", m.PowerBalanceResidual},
	}
}
