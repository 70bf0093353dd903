package report

import (
	"io"

	"github.com/cepro/flexsizing/cartesian"
	"github.com/cepro/flexsizing/sweep"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// PriceCurve is the duration curve of one price series.
type PriceCurve struct {
	Scenario string
	Variant  string
	Curve    cartesian.Curve
}

// DurationCurves returns the price duration curve of every electricity price variant, and of the gas price, of each
// pair. Pairs sharing an electricity or gas scenario contribute it once. Curves are sampled at `samples` points, or
// kept whole when `samples` is not positive.
func DurationCurves(pairs []sweep.Pair, samples int) []PriceCurve {
	sample := func(values []float64) cartesian.Curve {
		curve := cartesian.DurationCurve(values)
		if samples > 0 {
			return curve.Sample(samples)
		}
		return curve
	}

	var curves []PriceCurve
	seenElectricity := map[string]bool{}
	seenGas := map[string]bool{}
	for _, pair := range pairs {
		if !seenElectricity[pair.ElectricityScenario] {
			seenElectricity[pair.ElectricityScenario] = true
			for _, variant := range pair.Prepared.Electricity.Variants {
				curves = append(curves, PriceCurve{
					Scenario: pair.ElectricityScenario,
					Variant:  variant.Label,
					Curve:    sample(variant.Values),
				})
			}
		}
		if !seenGas[pair.GasScenario] {
			seenGas[pair.GasScenario] = true
			curves = append(curves, PriceCurve{
				Scenario: pair.GasScenario,
				Variant:  "gas",
				Curve:    sample(pair.Prepared.Gas),
			})
		}
	}
	return curves
}

// WriteDurationCurves writes the curves in long form: scenario, variant, fraction of time and price.
func WriteDurationCurves(w io.Writer, curves []PriceCurve) error {
	scenario, variant := []string{}, []string{}
	x, y := []float64{}, []float64{}
	for _, c := range curves {
		for _, p := range c.Curve.Points {
			scenario = append(scenario, c.Scenario)
			variant = append(variant, c.Variant)
			x = append(x, p.X)
			y = append(y, p.Y)
		}
	}
	return writeFrame(w, dataframe.New(
		series.New(scenario, series.String, "scenario"),
		series.New(variant, series.String, "variant"),
		series.New(x, series.Float, "fraction_of_time"),
		series.New(y, series.Float, "price"),
	))
}
