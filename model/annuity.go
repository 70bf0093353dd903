package model

import "math"

// AnnuityFactor is the capital recovery factor r / (1 - (1+r)^-n), which spreads a one-off investment into equal annual
// payments over n years at discount rate r. With no discounting it is 1/n.
func AnnuityFactor(rate, lifetime float64) float64 {
	if lifetime <= 0 {
		return 0
	}
	if rate == 0 {
		return 1 / lifetime
	}
	return rate / (1 - math.Pow(1+rate, -lifetime))
}
