package timeseries

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// OriginalLabel names the unscaled price variant.
const OriginalLabel = "original"

// AmplitudeLabel names the variant scaled by k, e.g. "amp 1.300".
func AmplitudeLabel(k float64) string {
	return fmt.Sprintf("amp %.3f", k)
}

// PriceVariant is one electricity price column.
type PriceVariant struct {
	Label string
	// Amplitude is the factor the deviations from the mean were scaled by, 1 for the original.
	Amplitude float64
	// Mean is recomputed after scaling and clamping, so it can differ from the original mean.
	Mean   float64
	Values []float64
}

// PriceTable holds the original price column followed by its amplitude variants.
type PriceTable struct {
	Variants []PriceVariant
}

// AmplitudeVariants returns the original prices plus one variant per amplitude factor k, where
// new[t] = mean + k*(original[t] - mean). Negative results are clamped to zero.
func AmplitudeVariants(original []float64, amplitudes []float64) PriceTable {
	mean := stat.Mean(original, nil)

	table := PriceTable{
		Variants: []PriceVariant{{
			Label:     OriginalLabel,
			Amplitude: 1,
			Mean:      mean,
			Values:    original,
		}},
	}
	for _, k := range amplitudes {
		values := make([]float64, len(original))
		for i, v := range original {
			scaled := mean + k*(v-mean)
			if scaled < 0 {
				scaled = 0
			}
			values[i] = scaled
		}
		table.Variants = append(table.Variants, PriceVariant{
			Label:     AmplitudeLabel(k),
			Amplitude: k,
			Mean:      stat.Mean(values, nil),
			Values:    values,
		})
	}
	return table
}

// Variant looks up a variant by label.
func (t PriceTable) Variant(label string) (PriceVariant, bool) {
	for _, v := range t.Variants {
		if v.Label == label {
			return v, true
		}
	}
	return PriceVariant{}, false
}

// Labels returns the variant labels in order.
func (t PriceTable) Labels() []string {
	labels := make([]string, len(t.Variants))
	for i, v := range t.Variants {
		labels[i] = v.Label
	}
	return labels
}
