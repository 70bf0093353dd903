package assets

import "github.com/cepro/flexsizing/milp"

// StoragePeriod holds the variables of one store in one period.
type StoragePeriod struct {
	SOE       milp.Var
	Charge    []milp.Var
	Discharge []milp.Var
	// Charging is 1 when the store may charge, 0 when it may discharge.
	Charging milp.Var
}

// RateLimit is the largest charge (after losses) per period for a store of the given capacity.
func (s Storage) RateLimit(capacity, step float64) float64 {
	return capacity * s.CRate / step
}

// StorageConstraints returns the rows of one store in period t: state of energy recurrence, charge and discharge rate
// limits, the mutual exclusion of charging and discharging, and the capacity bound on the state of energy.
//
// A rate limit gated by the indicator, flow <= capacity*k*b, is written as the pair flow <= capacity*k and
// flow <= bigM*b. This is exact while capacity*k <= bigM, so bigM must be RateLimit of the capacity upper bound.
//
// In period 0 the store is empty and cannot discharge. `prev` is ignored when t is 0.
func StorageConstraints(name string, t int, step float64, s Storage, capacity milp.Var, bigM float64, cur, prev StoragePeriod) []milp.Constraint {
	charged := milp.Sum(cur.Charge...).Times(s.ChargeEfficiency)
	drawn := milp.Sum(cur.Discharge...).Times(1 / s.DischargeEfficiency)
	rate := milp.Scaled(capacity, s.CRate/step)

	rows := []milp.Constraint{
		milp.LE(rowName(name+" charge rate", t), charged, rate),
		milp.LE(rowName(name+" charge gate", t), charged, milp.Scaled(cur.Charging, bigM)),
		milp.LE(rowName(name+" capacity", t), milp.Sum(cur.SOE), milp.Sum(capacity)),
	}

	if t == 0 {
		return append(rows,
			milp.EQ(rowName(name+" initial soe", t), milp.Sum(cur.SOE), milp.Const(0)),
			milp.EQ(rowName(name+" initial discharge", t), drawn, milp.Const(0)),
		)
	}

	prevCharged := milp.Sum(prev.Charge...).Times(s.ChargeEfficiency * step)
	prevDrawn := milp.Sum(prev.Discharge...).Times(step / s.DischargeEfficiency)
	rows = append(rows,
		milp.EQ(rowName(name+" soe", t), milp.Sum(cur.SOE), milp.Sum(prev.SOE).Plus(prevCharged).Minus(prevDrawn)),
		milp.LE(rowName(name+" discharge gate", t), drawn, milp.Const(bigM).Minus(milp.Scaled(cur.Charging, bigM))),
	)
	if s.DischargeLimitedBySOE {
		rows = append(rows, milp.LE(rowName(name+" discharge rate", t), drawn, milp.Scaled(cur.SOE, 1/step)))
	} else {
		rows = append(rows, milp.LE(rowName(name+" discharge rate", t), drawn, rate))
	}
	return rows
}
