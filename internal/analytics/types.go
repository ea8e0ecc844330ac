// Package analytics provides the time-series types shared by the
// forecasting packages.
package analytics

import (
	"time"

	"gonum.org/v1/gonum/stat"
)

// TimeSeriesPoint represents a single observation.
type TimeSeriesPoint struct {
	Time  time.Time `json:"time"`
	Value float64   `json:"value"`
}

// TimeSeriesData represents a collection of time-series data points
type TimeSeriesData []TimeSeriesPoint

// Values extracts just the values from the time series
func (ts TimeSeriesData) Values() []float64 {
	values := make([]float64, len(ts))
	for i, p := range ts {
		values[i] = p.Value
	}
	return values
}

// Times extracts just the times from the time series
func (ts TimeSeriesData) Times() []time.Time {
	times := make([]time.Time, len(ts))
	for i, p := range ts {
		times[i] = p.Time
	}
	return times
}

// Len returns the number of data points
func (ts TimeSeriesData) Len() int {
	return len(ts)
}

// Mean returns the sample mean, or 0 for an empty series.
func (ts TimeSeriesData) Mean() float64 {
	if len(ts) == 0 {
		return 0
	}
	return stat.Mean(ts.Values(), nil)
}

// StdDev returns the sample standard deviation, or 0 with fewer than two points.
func (ts TimeSeriesData) StdDev() float64 {
	if len(ts) < 2 {
		return 0
	}
	return stat.StdDev(ts.Values(), nil)
}

// Sorted reports whether timestamps are strictly increasing.
func (ts TimeSeriesData) Sorted() bool {
	for i := 1; i < len(ts); i++ {
		if !ts[i].Time.After(ts[i-1].Time) {
			return false
		}
	}
	return true
}
