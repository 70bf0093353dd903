package timeseries

import (
	"fmt"
	"math"
	"time"

	timeutils "github.com/cepro/flexsizing/time_utils"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// InputAlignmentError is returned when a series does not cover the dispatch horizon, or has gaps that cannot be
// forward-filled.
type InputAlignmentError struct {
	Series string
	Reason string
}

func (e *InputAlignmentError) Error() string {
	return fmt.Sprintf("align series %q: %s", e.Series, e.Reason)
}

func alignmentError(series string, format string, args ...any) error {
	return &InputAlignmentError{Series: series, Reason: fmt.Sprintf(format, args...)}
}

// Series is a named sequence of timestamped values, with timestamps strictly increasing.
type Series struct {
	Name   string
	Times  []time.Time
	Values []float64
}

// New returns a series after checking that the timestamps and values line up.
func New(name string, times []time.Time, values []float64) (Series, error) {
	if len(times) != len(values) {
		return Series{}, fmt.Errorf("series %q: %d timestamps for %d values", name, len(times), len(values))
	}
	for i := 1; i < len(times); i++ {
		if !times[i].After(times[i-1]) {
			return Series{}, fmt.Errorf("series %q: timestamp %v at row %d is not after %v", name, times[i], i, times[i-1])
		}
	}
	return Series{Name: name, Times: times, Values: values}, nil
}

// FromValues returns a series with evenly spaced timestamps starting at `start`.
func FromValues(name string, start time.Time, step time.Duration, values []float64) Series {
	times := make([]time.Time, len(values))
	for i := range values {
		times[i] = start.Add(time.Duration(i) * step)
	}
	return Series{Name: name, Times: times, Values: values}
}

func (s Series) Len() int {
	return len(s.Values)
}

// FillForward replaces every NaN with the nearest earlier valid value. A NaN with no earlier valid value cannot be filled.
func (s Series) FillForward() (Series, error) {
	values := make([]float64, len(s.Values))
	last := math.NaN()
	for i, v := range s.Values {
		if math.IsNaN(v) {
			if math.IsNaN(last) {
				return Series{}, alignmentError(s.Name, "value %d is missing and there is no earlier value to fill it from", i)
			}
			v = last
		}
		values[i] = v
		last = v
	}
	return Series{Name: s.Name, Times: s.Times, Values: values}, nil
}

// Reindex re-stamps the observations positionally: observation i is given the timestamp start + i*step.
func (s Series) Reindex(start time.Time, step time.Duration) Series {
	return FromValues(s.Name, start, step, s.Values)
}

// Resample returns one value per grid period, the last observation at or before the start of the period. There is no
// extrapolation: the grid must lie between the first and last observation.
func (s Series) Resample(grid timeutils.Grid) (Series, error) {
	if s.Len() == 0 {
		return Series{}, alignmentError(s.Name, "series is empty")
	}
	first, last := s.Times[0], s.Times[s.Len()-1]
	if grid.Start.Before(first) {
		return Series{}, alignmentError(s.Name, "grid starts at %v, before the first value at %v", grid.Start, first)
	}
	if grid.Len > 0 && grid.Time(grid.Len-1).After(last) {
		covered := int(last.Sub(grid.Start)/grid.Step) + 1
		return Series{}, alignmentError(s.Name, "only %d of %d periods are covered, last value is at %v", covered, grid.Len, last)
	}

	values := make([]float64, grid.Len)
	j := 0
	for i := 0; i < grid.Len; i++ {
		t := grid.Time(i)
		for j+1 < s.Len() && !s.Times[j+1].After(t) {
			j++
		}
		values[i] = s.Values[j]
	}
	return Series{Name: s.Name, Times: grid.Times(), Values: values}, nil
}

// Truncate returns the first n values.
func (s Series) Truncate(n int) (Series, error) {
	if s.Len() < n {
		return Series{}, alignmentError(s.Name, "need %d periods, only %d available", n, s.Len())
	}
	out := Series{Name: s.Name, Values: s.Values[:n:n]}
	if s.Times != nil {
		out.Times = s.Times[:n:n]
	}
	return out, nil
}

func (s Series) Mean() float64 {
	return stat.Mean(s.Values, nil)
}

func (s Series) Max() float64 {
	return floats.Max(s.Values)
}
