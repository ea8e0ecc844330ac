package forecast

import (
	"math"
	"time"
)

var (
	testBaseTime = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	testInterval = time.Hour
)

// generateLinearData creates points on y = slope*x + intercept.
func generateLinearData(n int, slope, intercept float64) []DataPoint {
	data := make([]DataPoint, n)
	for i := range data {
		data[i] = DataPoint{
			Time:  testBaseTime.Add(testInterval * time.Duration(i)),
			Value: slope*float64(i) + intercept,
		}
	}
	return data
}

// generateSeasonalTestData creates a sine cycle of the given period on a slow trend.
func generateSeasonalTestData(n int, period int) []DataPoint {
	data := make([]DataPoint, n)
	for i := range data {
		trend := float64(i) * 0.1
		seasonal := 10 * math.Sin(2*math.Pi*float64(i%period)/float64(period))
		data[i] = DataPoint{
			Time:  testBaseTime.Add(testInterval * time.Duration(i)),
			Value: 50 + trend + seasonal,
		}
	}
	return data
}

func testConfig(horizon int) ForecastConfig {
	cfg := DefaultForecastConfig()
	cfg.Horizon = horizon
	cfg.SeasonalPeriod = 12
	return cfg
}
