package cartesian

import (
	"math"
	"sort"
)

// Point represents a cartesian X,Y point
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Curve struct {
	Points []Point `json:"points"`
}

// DurationCurve sorts the values in descending order and plots them against the fraction of time (0 to 1) that the
// value is equalled or exceeded, e.g. a price duration curve.
func DurationCurve(values []float64) Curve {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Sort(sort.Reverse(sort.Float64Slice(sorted)))

	points := make([]Point, len(sorted))
	for i, v := range sorted {
		x := 0.0
		if len(sorted) > 1 {
			x = float64(i) / float64(len(sorted)-1)
		}
		points[i] = Point{X: x, Y: v}
	}
	return Curve{Points: points}
}

// At returns the y-value of the curve at `x`, interpolating linearly between points.
// NaN is returned if `x` is not within the horizontal span of the curve.
func (c *Curve) At(x float64) float64 {
	if len(c.Points) == 1 && c.Points[0].X == x {
		return c.Points[0].Y
	}
	// Loop over each pair of points in the curve
	for i := 0; i < len(c.Points)-1; i++ {
		p1 := c.Points[i]
		p2 := c.Points[i+1]

		if p1.X <= x && x <= p2.X {
			if p1.X == p2.X {
				return p1.Y
			}
			return linearInterpolation(p1, p2, x)
		}
	}
	return math.NaN()
}

// Sample returns the curve evaluated at `n` evenly spaced x-values across its span, which keeps exported duration
// curves a manageable size for long horizons.
func (c *Curve) Sample(n int) Curve {
	if len(c.Points) == 0 || n <= 0 {
		return Curve{}
	}
	if n == 1 {
		return Curve{Points: []Point{c.Points[0]}}
	}
	minX, maxX := c.Points[0].X, c.Points[len(c.Points)-1].X
	points := make([]Point, n)
	for i := range points {
		x := minX + (maxX-minX)*float64(i)/float64(n-1)
		points[i] = Point{X: x, Y: c.At(x)}
	}
	return Curve{Points: points}
}

// linearInterpolation returns the y-value at `x` given two points.
func linearInterpolation(p1, p2 Point, x float64) float64 {
	return p1.Y + (x-p1.X)*((p2.Y-p1.Y)/(p2.X-p1.X))
}
