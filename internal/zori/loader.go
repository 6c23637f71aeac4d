package zori

import (
	"encoding/csv"
	"io"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Required header columns besides the date columns.
const (
	regionNameColumn = "RegionName"
	stateColumn      = "State"
)

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ErrMissingColumns is returned when the ZORI table lacks the
// RegionName or State header columns.
var ErrMissingColumns = eris.New("zori: table missing RegionName or State column")

// Filter restricts ZORI rows to a geographic subset: the row's state
// must equal State and its ZIP must start with one of ZipPrefixes.
// Date columns before MinYear are excluded entirely.
type Filter struct {
	State       string
	ZipPrefixes []string
	MinYear     int
}

// Summary reports what the loader found. It is observability output,
// not something consumers should depend on for correctness.
type Summary struct {
	TotalDateColumns    int    `json:"total_date_columns"`
	RetainedDateColumns int    `json:"retained_date_columns"`
	Keys                int    `json:"keys"`
	FirstDate           string `json:"first_date,omitempty"`
	LastDate            string `json:"last_date,omitempty"`
}

// LoadTimeSeries parses a ZORI table (CSV, or XLSX when the path ends
// in .xlsx) into per-ZIP time series. It returns the series keyed by
// ZIP, the sorted list of dates that yielded at least one value, and a
// load summary.
func LoadTimeSeries(path string, f Filter) (map[string]TimeSeries, []string, *Summary, error) {
	var (
		header []string
		rows   [][]string
		err    error
	)

	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		header, rows, err = readXLSX(path)
	} else {
		header, rows, err = readCSV(path)
	}
	if err != nil {
		return nil, nil, nil, err
	}

	return buildSeries(header, rows, f)
}

// readCSV reads a delimited table with a header row.
func readCSV(path string) ([]string, [][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, eris.Wrapf(err, "zori: open %s", path)
	}
	defer func() { _ = file.Close() }()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // allow variable fields

	header, err := reader.Read()
	if err != nil {
		return nil, nil, eris.Wrapf(err, "zori: read header of %s", path)
	}

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, eris.Wrapf(err, "zori: read row of %s", path)
		}
		rows = append(rows, record)
	}

	return header, rows, nil
}

// buildSeries applies the region filter and date-column rule to the
// raw table, producing per-ZIP series and the available-dates set.
func buildSeries(header []string, rows [][]string, f Filter) (map[string]TimeSeries, []string, *Summary, error) {
	colIdx := make(map[string]int, len(header))
	for i, name := range header {
		colIdx[name] = i
	}

	zipIdx, okZip := colIdx[regionNameColumn]
	stateIdx, okState := colIdx[stateColumn]
	if !okZip || !okState {
		return nil, nil, nil, ErrMissingColumns
	}

	// Date columns: structural YYYY-MM-DD header names at or after the
	// cutoff year.
	type dateCol struct {
		name string
		idx  int
	}
	var (
		totalDates int
		dateCols   []dateCol
	)
	for i, name := range header {
		if !datePattern.MatchString(name) {
			continue
		}
		totalDates++
		year, err := strconv.Atoi(name[:4])
		if err != nil || year < f.MinYear {
			continue
		}
		dateCols = append(dateCols, dateCol{name: name, idx: i})
	}

	log := zap.L().With(zap.String("component", "zori.loader"))
	log.Info("scanned date columns",
		zap.Int("total", totalDates),
		zap.Int("retained", len(dateCols)),
		zap.Int("min_year", f.MinYear),
	)

	rents := make(map[string]TimeSeries)
	seen := make(map[string]struct{})

	for _, row := range rows {
		zip := cell(row, zipIdx)
		state := cell(row, stateIdx)

		if state != f.State || !hasAnyPrefix(zip, f.ZipPrefixes) {
			continue
		}

		// A retained ZIP keeps its (possibly empty) series so the raw
		// time-series output still lists it.
		series := TimeSeries{}
		rents[zip] = series

		for _, dc := range dateCols {
			value, ok := parseCell(cell(row, dc.idx))
			if !ok {
				continue
			}
			series[dc.name] = value
			seen[dc.name] = struct{}{}
		}
	}

	available := make([]string, 0, len(seen))
	for date := range seen {
		available = append(available, date)
	}
	sort.Strings(available)

	summary := &Summary{
		TotalDateColumns:    totalDates,
		RetainedDateColumns: len(dateCols),
		Keys:                len(rents),
	}
	if len(available) > 0 {
		summary.FirstDate = available[0]
		summary.LastDate = available[len(available)-1]
	}

	log.Info("loaded rent time series",
		zap.Int("keys", summary.Keys),
		zap.String("first_date", summary.FirstDate),
		zap.String("last_date", summary.LastDate),
	)

	return rents, available, summary, nil
}

// parseCell attempts a numeric parse of one table cell. Empty or
// non-numeric cells are skipped, never treated as zero.
func parseCell(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return math.Round(v), true
}

// cell returns row[i], tolerating short rows.
func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
