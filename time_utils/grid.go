package timeutils

import (
	"fmt"
	"time"
)

const (
	ThirtyMins = time.Minute * 30
	OneHour    = time.Hour
	OneDay     = time.Hour * 24
)

// Grid is the fixed, evenly spaced sequence of dispatch periods that an optimisation runs over. Period 0 starts at `Start`.
type Grid struct {
	Start time.Time
	Step  time.Duration
	Len   int
}

// NewGrid returns a grid that covers `hours` hours at the given step, e.g. 8000 hours at 30 minutes is 16000 periods.
func NewGrid(start time.Time, step time.Duration, hours int) (Grid, error) {
	if step <= 0 {
		return Grid{}, fmt.Errorf("step must be positive, got %v", step)
	}
	if hours <= 0 {
		return Grid{}, fmt.Errorf("hours must be positive, got %d", hours)
	}
	horizon := time.Duration(hours) * time.Hour
	if horizon%step != 0 {
		return Grid{}, fmt.Errorf("%d hours is not a whole number of %v steps", hours, step)
	}
	return Grid{
		Start: start,
		Step:  step,
		Len:   int(horizon / step),
	}, nil
}

// StepHours returns the length of each period in hours.
func (g Grid) StepHours() float64 {
	return g.Step.Hours()
}

// Time returns the start of period `i`.
func (g Grid) Time(i int) time.Time {
	return g.Start.Add(time.Duration(i) * g.Step)
}

// Period returns the absolute period `i`.
func (g Grid) Period(i int) Period {
	start := g.Time(i)
	return Period{Start: start, End: start.Add(g.Step)}
}

// End returns the end of the last period.
func (g Grid) End() time.Time {
	return g.Time(g.Len)
}

// Times returns the start of every period.
func (g Grid) Times() []time.Time {
	times := make([]time.Time, g.Len)
	for i := range times {
		times[i] = g.Time(i)
	}
	return times
}

// Index returns the period that `t` falls into, and false if it is outside of the grid.
func (g Grid) Index(t time.Time) (int, bool) {
	if t.Before(g.Start) || !t.Before(g.End()) {
		return 0, false
	}
	return int(t.Sub(g.Start) / g.Step), true
}

// Floor returns the given `t` rounded down to the nearest multiple of `step` since midnight, in t's location.
func Floor(t time.Time, step time.Duration) time.Time {
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	sinceMidnight := t.Sub(midnight)
	return midnight.Add(sinceMidnight - sinceMidnight%step)
}

// FloorHH returns the given `t` rounded down to the nearest half-hour boundary
func FloorHH(t time.Time) time.Time {
	return Floor(t, ThirtyMins)
}
