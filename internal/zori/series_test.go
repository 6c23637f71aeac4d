package zori

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestYearlyAverages(t *testing.T) {
	series := TimeSeries{
		"2016-01-31": 2500,
		"2016-07-31": 2600,
		"2020-06-30": 3100,
	}

	avgs := YearlyAverages(series)

	assert.Equal(t, map[string]float64{
		"2016": 2550,
		"2020": 3100,
	}, avgs)
}

func TestYearlyAverages_RoundsHalfUp(t *testing.T) {
	series := TimeSeries{
		"2019-01-31": 2000,
		"2019-02-28": 2001,
	}

	// mean 2000.5 rounds to 2001
	assert.Equal(t, map[string]float64{"2019": 2001}, YearlyAverages(series))
}

func TestYearlyAverages_Empty(t *testing.T) {
	assert.Empty(t, YearlyAverages(TimeSeries{}))
	assert.Empty(t, YearlyAverages(nil))
}

func TestYearlyAverages_SingleValuePerYear(t *testing.T) {
	series := TimeSeries{"2016-01-31": 2500, "2020-06-30": 3100}

	assert.Equal(t, map[string]float64{"2016": 2500, "2020": 3100}, YearlyAverages(series))
}
