package model

// Flow labels. Power (P) and heat (H) flows are in MW, gas (NG) and hydrogen (H2) flows in MW of fuel. The labels
// name the columns of the flow table.
const (
	TurbineGas = "NG_GT_in"
	BoilerGas  = "NG_GB_in"

	TurbineToBattery = "P_GT_bat"
	TurbineToHP      = "P_GT_HP"
	TurbineToElB     = "P_GT_ElB"
	TurbineToH2E     = "P_GT_H2E"
	TurbineToProcess = "P_GT_process"
	TurbineExcess    = "P_GT_excess"
	TurbineToGrid    = "P_GT_gr"

	CHPHeatToProcess = "H_CHP_CP"
	CHPHeatToTES     = "H_CHP_TES"
	CHPHeatExcess    = "H_CHP_excess"

	GridToElB     = "P_gr_ElB"
	GridToBattery = "P_gr_bat"
	GridToH2E     = "P_gr_H2E"
	GridToHP      = "P_gr_HP"
	GridToProcess = "P_gr_process"

	BatteryToElB     = "P_bat_ElB"
	BatteryToH2E     = "P_bat_H2E"
	BatteryToHP      = "P_bat_HP"
	BatteryToProcess = "P_bat_process"
	BatteryToGrid    = "P_bat_gr"

	ElBHeatToProcess = "H_ElB_CP"
	ElBHeatToTES     = "H_ElB_TES"
	TESToProcess     = "H_TES_CP"
	H2BHeatToProcess = "H_H2B_CP"
	HPHeatToProcess  = "H_HP_CP"
	HPHeatToTES      = "H_HP_TES"

	H2EToH2S = "H2_H2E_H2S"
	H2EToH2B = "H2_H2E_H2B"
	H2SToH2B = "H2_H2S_H2B"

	BatterySOE = "bat_soe"
	TESSOE     = "TES_soe"
	H2SSOE     = "H2S_soe"

	BatteryCharging = "b1"
	TESCharging     = "b2"
	GridImporting   = "b3"
	H2SCharging     = "b4"
)

// Flow groupings shared by the constraints, the objective and the metrics.
var (
	flexibleGridImports = []string{GridToElB, GridToHP, GridToBattery, GridToH2E, GridToProcess}
	flexibleGridExports = []string{TurbineToGrid, BatteryToGrid}

	flexibleTurbinePower = []string{TurbineExcess, TurbineToBattery, TurbineToElB, TurbineToH2E, TurbineToHP, TurbineToProcess, TurbineToGrid}
	flexibleCHPHeat      = []string{CHPHeatToProcess, CHPHeatToTES, CHPHeatExcess}

	batteryCharge    = []string{GridToBattery, TurbineToBattery}
	batteryDischarge = []string{BatteryToElB, BatteryToH2E, BatteryToHP, BatteryToProcess, BatteryToGrid}
	tesCharge        = []string{CHPHeatToTES, ElBHeatToTES, HPHeatToTES}
	tesDischarge     = []string{TESToProcess}
	h2sCharge        = []string{H2EToH2S}
	h2sDischarge     = []string{H2SToH2B}

	flexibleHeatSupply  = []string{ElBHeatToProcess, CHPHeatToProcess, TESToProcess, H2BHeatToProcess, HPHeatToProcess}
	flexiblePowerSupply = []string{GridToProcess, TurbineToProcess, BatteryToProcess}

	benchmarkGridImports  = []string{GridToProcess}
	benchmarkGridExports  = []string{TurbineToGrid}
	benchmarkTurbinePower = []string{TurbineExcess, TurbineToProcess, TurbineToGrid}
	benchmarkCHPHeat      = []string{CHPHeatToProcess, CHPHeatExcess}
	benchmarkHeatSupply   = []string{CHPHeatToProcess}
	benchmarkPowerSupply  = []string{GridToProcess, TurbineToProcess}
	gasIntakes            = []string{TurbineGas, BoilerGas}
)
