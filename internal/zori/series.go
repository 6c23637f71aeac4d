// Package zori loads Zillow Observed Rent Index tables and derives
// per-ZIP time series and yearly aggregates.
package zori

import "math"

// TimeSeries maps a YYYY-MM-DD date to a rent value rounded to the
// nearest whole dollar. All dates present are members of the run's
// available-dates sequence.
type TimeSeries map[string]float64

// YearlyAverages groups a series by the year prefix of each date and
// returns the mean per year, rounded to the nearest whole dollar.
// Grouping is derived from existing entries only, so every returned
// year has at least one value. The result does not depend on map
// iteration order.
func YearlyAverages(series TimeSeries) map[string]float64 {
	sums := make(map[string]float64)
	counts := make(map[string]int)

	for date, rent := range series {
		year := date[:4]
		sums[year] += rent
		counts[year]++
	}

	avgs := make(map[string]float64, len(sums))
	for year, sum := range sums {
		avgs[year] = math.Round(sum / float64(counts[year]))
	}
	return avgs
}
