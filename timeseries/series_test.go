package timeseries

import (
	"errors"
	"math"
	"testing"
	"time"

	timeutils "github.com/cepro/flexsizing/time_utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var start = time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)

func TestFillForward(t *testing.T) {
	nan := math.NaN()

	type subTest struct {
		name      string
		values    []float64
		expected  []float64
		expectErr bool
	}

	subTests := []subTest{
		{"no gaps", []float64{1, 2, 3}, []float64{1, 2, 3}, false},
		{"single gap", []float64{1, nan, 3}, []float64{1, 1, 3}, false},
		{"trailing gaps", []float64{1, 2, nan, nan}, []float64{1, 2, 2, 2}, false},
		{"leading gap", []float64{nan, 2, 3}, nil, true},
	}
	for _, subTest := range subTests {
		t.Run(subTest.name, func(t *testing.T) {
			s := FromValues("prices", start, time.Hour, subTest.values)
			filled, err := s.FillForward()
			if subTest.expectErr {
				var alignErr *InputAlignmentError
				require.True(t, errors.As(err, &alignErr))
				assert.Equal(t, "prices", alignErr.Series)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, subTest.expected, filled.Values)
		})
	}
}

func TestResample(t *testing.T) {
	daily := FromValues("gas", start, timeutils.OneDay, []float64{10, 20, 30})

	grid := timeutils.Grid{Start: start.Add(23 * time.Hour), Step: timeutils.ThirtyMins, Len: 4}
	resampled, err := daily.Resample(grid)
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 10, 20, 20}, resampled.Values)
	assert.True(t, resampled.Times[2].Equal(start.Add(24*time.Hour)))

	hourly := FromValues("el", start, time.Hour, []float64{1, 2, 3})
	grid = timeutils.Grid{Start: start, Step: timeutils.ThirtyMins, Len: 5}
	resampled, err = hourly.Resample(grid)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 1, 2, 2, 3}, resampled.Values)
}

func TestResampleAlignmentErrors(t *testing.T) {
	hourly := FromValues("el", start, time.Hour, []float64{1, 2, 3})

	type subTest struct {
		name string
		grid timeutils.Grid
	}
	subTests := []subTest{
		{"starts before data", timeutils.Grid{Start: start.Add(-time.Hour), Step: timeutils.ThirtyMins, Len: 2}},
		{"runs past data", timeutils.Grid{Start: start, Step: timeutils.ThirtyMins, Len: 6}},
	}
	for _, subTest := range subTests {
		t.Run(subTest.name, func(t *testing.T) {
			_, err := hourly.Resample(subTest.grid)
			var alignErr *InputAlignmentError
			assert.True(t, errors.As(err, &alignErr))
		})
	}

	_, err := Series{Name: "empty"}.Resample(timeutils.Grid{Start: start, Step: time.Hour, Len: 1})
	assert.Error(t, err)
}

func TestTruncate(t *testing.T) {
	s := FromValues("demand", start, timeutils.ThirtyMins, []float64{1, 2, 3, 4})

	truncated, err := s.Truncate(3)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, truncated.Values)
	assert.Len(t, truncated.Times, 3)

	_, err = s.Truncate(5)
	var alignErr *InputAlignmentError
	require.True(t, errors.As(err, &alignErr))
	assert.Contains(t, alignErr.Error(), "need 5 periods")
}

func TestNew(t *testing.T) {
	_, err := New("bad", []time.Time{start, start}, []float64{1, 2})
	assert.Error(t, err)

	_, err = New("short", []time.Time{start}, []float64{1, 2})
	assert.Error(t, err)

	s, err := New("ok", []time.Time{start, start.Add(time.Hour)}, []float64{1, 3})
	require.NoError(t, err)
	assert.Equal(t, 2.0, s.Mean())
	assert.Equal(t, 3.0, s.Max())
}

func TestReindex(t *testing.T) {
	irregular, err := New("el", []time.Time{start, start.Add(5 * time.Hour), start.Add(7 * time.Hour)}, []float64{1, 2, 3})
	require.NoError(t, err)

	gasStart := start.Add(24 * time.Hour)
	s := irregular.Reindex(gasStart, time.Hour)
	assert.Equal(t, []float64{1, 2, 3}, s.Values)
	assert.Equal(t, []time.Time{gasStart, gasStart.Add(time.Hour), gasStart.Add(2 * time.Hour)}, s.Times)
	assert.Equal(t, "el", s.Name)
}
