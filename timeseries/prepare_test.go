package timeseries

import (
	"errors"
	"math"
	"testing"

	timeutils "github.com/cepro/flexsizing/time_utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrepare(t *testing.T) {
	in := Inputs{
		HeatDemand:  []float64{10, 12, 14, 16, 18, 20},
		Electricity: FromValues("el", start.AddDate(0, 0, 5), timeutils.OneHour, []float64{50, math.NaN(), 70}),
		Gas:         FromValues("gas", start, timeutils.OneDay, []float64{20, 25}),
	}
	opts := Options{
		Hours:                 2,
		Step:                  timeutils.ThirtyMins,
		PowerDemandRatio:      0.1,
		AmpValues:             []float64{2},
		PositionalElectricity: true,
	}

	prepared, err := Prepare(in, opts)
	require.NoError(t, err)

	assert.Equal(t, 4, prepared.Grid.Len)
	assert.True(t, prepared.Grid.Start.Equal(start))
	assert.Equal(t, []float64{10, 12, 14, 16}, prepared.HeatDemand)
	assert.InDeltaSlice(t, []float64{1, 1.2, 1.4, 1.6}, prepared.PowerDemand, 1e-12)
	assert.Equal(t, []float64{20, 20, 20, 20}, prepared.Gas)

	original, ok := prepared.Electricity.Variant(OriginalLabel)
	require.True(t, ok)
	assert.Equal(t, []float64{50, 50, 50, 50}, original.Values)
	assert.Len(t, prepared.Electricity.Variants, 2)
}

func TestPrepareAlignmentErrors(t *testing.T) {
	base := Inputs{
		HeatDemand:  []float64{10, 10, 10, 10},
		Electricity: FromValues("el", start, timeutils.OneHour, []float64{50, 50, 50}),
		Gas:         FromValues("gas", start, timeutils.OneDay, []float64{20, 20}),
	}
	opts := Options{Hours: 2, Step: timeutils.ThirtyMins, PowerDemandRatio: 0.1}

	type subTest struct {
		name   string
		mutate func(in *Inputs)
	}
	subTests := []subTest{
		{"short demand", func(in *Inputs) { in.HeatDemand = []float64{10, 10, 10} }},
		{"short electricity", func(in *Inputs) { in.Electricity = FromValues("el", start, timeutils.OneHour, []float64{50}) }},
		{"leading NaN price", func(in *Inputs) {
			in.Electricity = FromValues("el", start, timeutils.OneHour, []float64{math.NaN(), 50})
		}},
		{"short power demand", func(in *Inputs) { in.PowerDemand = []float64{1} }},
		{"no gas", func(in *Inputs) { in.Gas = Series{Name: "gas"} }},
	}
	for _, subTest := range subTests {
		t.Run(subTest.name, func(t *testing.T) {
			in := base
			subTest.mutate(&in)
			_, err := Prepare(in, opts)
			var alignErr *InputAlignmentError
			assert.True(t, errors.As(err, &alignErr), "got %v", err)
		})
	}
}
