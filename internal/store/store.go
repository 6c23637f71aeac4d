// Package store persists run history for the data pipeline.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/benxu001/NYC-Rent-Map/internal/pipeline"
)

// Run statuses.
const (
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// Run is one recorded pipeline run.
type Run struct {
	ID              string    `json:"id"`
	Status          string    `json:"status"`
	Error           string    `json:"error,omitempty"`
	Features        int       `json:"features"`
	Keys            int       `json:"keys"`
	Matched         int       `json:"matched"`
	Unmatched       int       `json:"unmatched"`
	Dates           int       `json:"dates"`
	GeoJSONBytes    int64     `json:"geojson_bytes"`
	TimeseriesBytes int64     `json:"timeseries_bytes"`
	DurationMs      int64     `json:"duration_ms"`
	CreatedAt       time.Time `json:"created_at"`
}

// Store defines the run-history persistence interface.
type Store interface {
	Migrate(ctx context.Context) error
	InsertRun(ctx context.Context, run *Run) error
	ListRuns(ctx context.Context, limit int) ([]Run, error)
	Close() error
}

// Open creates a Store for the given driver. dsn is a file path for
// sqlite and a connection URL for postgres.
func Open(ctx context.Context, driver, dsn string) (Store, error) {
	switch driver {
	case "sqlite", "":
		return NewSQLite(dsn)
	case "postgres":
		return NewPostgres(ctx, dsn)
	default:
		return nil, eris.Errorf("store: unknown driver %q", driver)
	}
}

// NewRun builds a succeeded Run record from a pipeline result.
func NewRun(res *pipeline.Result) *Run {
	return &Run{
		ID:              uuid.New().String(),
		Status:          StatusSucceeded,
		Features:        res.Features,
		Keys:            res.Keys,
		Matched:         res.Matched,
		Unmatched:       res.Unmatched,
		Dates:           res.Dates,
		GeoJSONBytes:    res.GeoJSONBytes,
		TimeseriesBytes: res.TimeseriesBytes,
		DurationMs:      res.Duration.Milliseconds(),
		CreatedAt:       time.Now().UTC(),
	}
}

// NewFailedRun builds a failed Run record carrying the error message.
func NewFailedRun(runErr error) *Run {
	return &Run{
		ID:        uuid.New().String(),
		Status:    StatusFailed,
		Error:     runErr.Error(),
		CreatedAt: time.Now().UTC(),
	}
}
