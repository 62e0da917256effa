// Package ingest synchronizes the test-case catalog from TestRail. It owns
// the full pipeline: remote fetch, text normalization, lookup resolution and
// catalog writes, with per-record fault isolation.
package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"autoqa/internal/bootstrap/logging"
	"autoqa/internal/errs"
	"autoqa/internal/ports"
)

const lastReportKey = "ingest:last_report"

type Service struct {
	api   ports.TestRailAPI
	repo  ports.CatalogRepository
	cache ports.Cache
}

// NewService wires the synchronizer with the remote API, catalog repository
// and optional report cache.
func NewService(api ports.TestRailAPI, repo ports.CatalogRepository, cache ports.Cache) *Service {
	return &Service{
		api:   api,
		repo:  repo,
		cache: cache,
	}
}

type RunOptions struct {
	// FetchFields selects the field-definition path: resolve customer and
	// platform options and populate the lookup tables, skipping case
	// ingestion entirely.
	FetchFields bool
}

const (
	OutcomeCompleted           = "completed"
	OutcomeCompletedWithErrors = "completed_with_errors"
	OutcomeFailed              = "failed"
)

const (
	ModeCases  = "cases"
	ModeFields = "fields"
)

// Report is the typed result of one ingestion run. Run never returns a Go
// error; failures are folded into the outcome so callers decide what to do.
type Report struct {
	Outcome          string  `json:"outcome"`
	Mode             string  `json:"mode"`
	Pages            int     `json:"pages"`
	CasesImported    int     `json:"cases_imported"`
	CasesFailed      int     `json:"cases_failed"`
	FailedSourceIDs  []int64 `json:"failed_source_ids,omitempty"`
	CustomersCreated int     `json:"customers_created"`
	PlatformsCreated int     `json:"platforms_created"`
	Message          string  `json:"message,omitempty"`
	StartedAt        string  `json:"started_at"`
	FinishedAt       string  `json:"finished_at"`
}

// LastReport loads the report persisted by the most recent run.
func (s *Service) LastReport(ctx context.Context) (Report, bool, error) {
	if s.cache == nil {
		return Report{}, false, errors.New("report cache is not configured")
	}

	raw, found, err := s.cache.Get(ctx, lastReportKey)
	if err != nil {
		return Report{}, false, errs.Wrap(err, "load last ingestion report")
	}
	if !found {
		return Report{}, false, nil
	}

	var report Report
	if err := json.Unmarshal([]byte(raw), &report); err != nil {
		return Report{}, false, errs.Wrap(err, "decode last ingestion report")
	}
	return report, true, nil
}

func (s *Service) storeReport(ctx context.Context, report Report) {
	if s.cache == nil {
		return
	}

	raw, err := json.Marshal(report)
	if err != nil {
		logging.Warn(ctx, "encode ingestion report failed", slog.Any("err", errs.Loggable(err)))
		return
	}
	if err := s.cache.Set(ctx, lastReportKey, string(raw), 0); err != nil {
		logging.Warn(ctx, "persist ingestion report failed", slog.Any("err", errs.Loggable(err)))
	}
}

func nowUTCString() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
