package timeutils

import "time"

// Period represents an absolute period between two instances in time, e.g. "2023/10/19 16:00:00 to 2023/10/19 16:30:00".
// The start is inclusive and the end exclusive.
type Period struct {
	Start time.Time
	End   time.Time
}

// Duration returns the length of the period.
func (p Period) Duration() time.Duration {
	return p.End.Sub(p.Start)
}

// Hours returns the length of the period in hours, which is the multiplier that turns a power (MW) into an energy (MWh).
func (p Period) Hours() float64 {
	return p.Duration().Hours()
}

// Contains returns true if `t` falls within the period.
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && t.Before(p.End)
}
