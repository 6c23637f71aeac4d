package zori

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var nycFilter = Filter{
	State:       "NY",
	ZipPrefixes: []string{"100", "101", "102", "103", "104", "110", "111", "112", "113", "114", "116"},
	MinYear:     2015,
}

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "zori.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadTimeSeries(t *testing.T) {
	path := writeCSV(t, `RegionName,State,City,2014-05-31,2016-01-31,2020-06-30
10001,NY,New York,1800,2500.4,3100
11201,NY,Brooklyn,,2100.5,
90210,CA,Beverly Hills,4000,4200,4400
10002,PA,Wrongstate,1000,1100,1200
`)

	rents, dates, summary, err := LoadTimeSeries(path, nycFilter)
	require.NoError(t, err)

	// CA and out-of-state rows are dropped regardless of prefix; the
	// 2014 column is excluded entirely by the year cutoff.
	require.Len(t, rents, 2)
	assert.Equal(t, TimeSeries{"2016-01-31": 2500, "2020-06-30": 3100}, rents["10001"])
	assert.Equal(t, TimeSeries{"2016-01-31": 2101}, rents["11201"])

	assert.Equal(t, []string{"2016-01-31", "2020-06-30"}, dates)

	assert.Equal(t, 3, summary.TotalDateColumns)
	assert.Equal(t, 2, summary.RetainedDateColumns)
	assert.Equal(t, 2, summary.Keys)
	assert.Equal(t, "2016-01-31", summary.FirstDate)
	assert.Equal(t, "2020-06-30", summary.LastDate)
}

func TestLoadTimeSeries_SkipsUnparseableCells(t *testing.T) {
	path := writeCSV(t, `RegionName,State,2016-01-31,2016-02-29
10001,NY,N/A,2600
10003,NY,,
`)

	rents, dates, _, err := LoadTimeSeries(path, nycFilter)
	require.NoError(t, err)

	// Unparseable cells are skipped, never stored as zero. A retained
	// row with no parseable cells still appears, with an empty series.
	assert.Equal(t, TimeSeries{"2016-02-29": 2600}, rents["10001"])
	assert.Equal(t, TimeSeries{}, rents["10003"])

	// Only dates that produced at least one value are available.
	assert.Equal(t, []string{"2016-02-29"}, dates)
}

func TestLoadTimeSeries_AvailableDatesSorted(t *testing.T) {
	path := writeCSV(t, `RegionName,State,2020-06-30,2015-01-31,2018-03-31
10001,NY,3100,2100,2700
11201,NY,2900,,2500
`)

	_, dates, _, err := LoadTimeSeries(path, nycFilter)
	require.NoError(t, err)

	assert.Equal(t, []string{"2015-01-31", "2018-03-31", "2020-06-30"}, dates)
	for i := 1; i < len(dates); i++ {
		assert.Less(t, dates[i-1], dates[i])
	}
}

func TestLoadTimeSeries_StoredDatesAreAvailable(t *testing.T) {
	path := writeCSV(t, `RegionName,State,2016-01-31,2017-01-31,2018-01-31
10001,NY,2500,,2700
11201,NY,,2300,
`)

	rents, dates, _, err := LoadTimeSeries(path, nycFilter)
	require.NoError(t, err)

	available := map[string]bool{}
	for _, d := range dates {
		available[d] = true
	}
	for zip, series := range rents {
		for d := range series {
			assert.True(t, available[d], "zip %s stored date %s missing from available dates", zip, d)
		}
	}
}

func TestLoadTimeSeries_NonDateColumnsIgnored(t *testing.T) {
	path := writeCSV(t, `RegionName,State,SizeRank,2016-1-31,2016-01-31
10001,NY,7,9999,2500
`)

	rents, dates, summary, err := LoadTimeSeries(path, nycFilter)
	require.NoError(t, err)

	// "2016-1-31" is not a structural YYYY-MM-DD header and SizeRank is
	// plain metadata; neither becomes a date column.
	assert.Equal(t, TimeSeries{"2016-01-31": 2500}, rents["10001"])
	assert.Equal(t, []string{"2016-01-31"}, dates)
	assert.Equal(t, 1, summary.TotalDateColumns)
}

func TestLoadTimeSeries_CutoffConfigurable(t *testing.T) {
	path := writeCSV(t, `RegionName,State,2014-05-31,2016-01-31
10001,NY,1800,2500
`)

	f := nycFilter
	f.MinYear = 2014

	rents, dates, _, err := LoadTimeSeries(path, f)
	require.NoError(t, err)

	assert.Equal(t, TimeSeries{"2014-05-31": 1800, "2016-01-31": 2500}, rents["10001"])
	assert.Equal(t, []string{"2014-05-31", "2016-01-31"}, dates)
}

func TestLoadTimeSeries_ShortRows(t *testing.T) {
	path := writeCSV(t, `RegionName,State,2016-01-31,2016-02-29
10001,NY,2500
`)

	rents, _, _, err := LoadTimeSeries(path, nycFilter)
	require.NoError(t, err)
	assert.Equal(t, TimeSeries{"2016-01-31": 2500}, rents["10001"])
}

func TestLoadTimeSeries_MissingFile(t *testing.T) {
	_, _, _, err := LoadTimeSeries(filepath.Join(t.TempDir(), "nope.csv"), nycFilter)
	assert.Error(t, err)
}

func TestLoadTimeSeries_MissingRequiredColumns(t *testing.T) {
	path := writeCSV(t, `Zip,Region,2016-01-31
10001,NY,2500
`)

	_, _, _, err := LoadTimeSeries(path, nycFilter)
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrMissingColumns))
}

func TestParseCell(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"2500", 2500, true},
		{"2500.4", 2500, true},
		{"2500.5", 2501, true},
		{" 3100 ", 3100, true},
		{"", 0, false},
		{"N/A", 0, false},
		{"two grand", 0, false},
	}

	for _, tt := range tests {
		got, ok := parseCell(tt.in)
		assert.Equal(t, tt.ok, ok, "input %q", tt.in)
		if tt.ok {
			assert.Equal(t, tt.want, got, "input %q", tt.in)
		}
	}
}
