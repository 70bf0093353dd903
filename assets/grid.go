package assets

import "github.com/cepro/flexsizing/milp"

// BidirectionalLimit returns the rows that bound a connection to `limit` in each direction, with the indicator
// selecting import (1) or export (0) so that both cannot happen in the same period.
func BidirectionalLimit(name string, t int, imports, exports []milp.Var, limit float64, importing milp.Var) []milp.Constraint {
	return []milp.Constraint{
		milp.LE(rowName(name+" import", t), milp.Sum(imports...), milp.Scaled(importing, limit)),
		milp.LE(rowName(name+" export", t), milp.Sum(exports...), milp.Const(limit).Minus(milp.Scaled(importing, limit))),
	}
}
