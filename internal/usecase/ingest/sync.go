package ingest

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"autoqa/internal/bootstrap/logging"
	"autoqa/internal/errs"
	"autoqa/internal/ports"
)

const (
	pageSize       = 250
	unnamedSection = "Unnamed"
	maxTickets     = 10
)

// Run executes one ingestion pass and returns its typed report. Failures
// never escape this boundary: a hard error is folded into an OutcomeFailed
// report, partial per-case failures into OutcomeCompletedWithErrors.
func (s *Service) Run(ctx context.Context, opts RunOptions) Report {
	mode := ModeCases
	if opts.FetchFields {
		mode = ModeFields
	}

	logCtx := logging.WithAttrs(ctx,
		slog.String("component", "ingest"),
		slog.String("mode", mode),
	)
	logging.Info(logCtx, "testrail ingestion started")
	start := time.Now()

	report := Report{Mode: mode, StartedAt: nowUTCString()}
	err := s.run(logCtx, opts, &report)
	report.FinishedAt = nowUTCString()

	switch {
	case err != nil:
		report.Outcome = OutcomeFailed
		report.Message = err.Error()
		logging.Error(logCtx, "testrail ingestion failed",
			slog.Duration("elapsed", time.Since(start)),
			slog.Any("err", errs.Loggable(errs.WithStack(err))),
		)
	case report.CasesFailed > 0:
		report.Outcome = OutcomeCompletedWithErrors
	default:
		report.Outcome = OutcomeCompleted
	}

	logging.Info(logCtx, "testrail ingestion finished",
		slog.String("outcome", report.Outcome),
		slog.Int("pages", report.Pages),
		slog.Int("cases_imported", report.CasesImported),
		slog.Int("cases_failed", report.CasesFailed),
		slog.Int("customers_created", report.CustomersCreated),
		slog.Int("platforms_created", report.PlatformsCreated),
		slog.Duration("elapsed", time.Since(start)),
	)

	s.storeReport(logCtx, report)
	return report
}

func (s *Service) run(ctx context.Context, opts RunOptions, report *Report) error {
	if opts.FetchFields {
		return s.runFieldSync(ctx, report)
	}
	return s.runCaseSync(ctx, report)
}

func (s *Service) runFieldSync(ctx context.Context, report *Report) error {
	fields, err := timedFetch(ctx, "get_case_fields", func() ([]ports.CaseField, error) {
		return s.api.GetCaseFields(ctx)
	})
	if err != nil {
		return errs.Wrap(err, "fetch case fields")
	}

	resolved := ResolveFieldOptions(ctx, fields)
	report.CustomersCreated = s.populateCustomers(ctx, resolved[customerFieldName])
	report.PlatformsCreated = s.populatePlatforms(ctx, resolved[platformFieldName])
	return nil
}

func (s *Service) runCaseSync(ctx context.Context, report *Report) error {
	projectName, err := timedFetch(ctx, "get_project", func() (string, error) {
		return s.api.GetProjectName(ctx)
	})
	if err != nil {
		return errs.Wrap(err, "fetch project")
	}
	if strings.TrimSpace(projectName) == "" {
		projectName = unnamedSection
	}

	suiteName, err := timedFetch(ctx, "get_suite", func() (string, error) {
		return s.api.GetSuiteName(ctx)
	})
	if err != nil {
		return errs.Wrap(err, "fetch suite")
	}
	if strings.TrimSpace(suiteName) == "" {
		suiteName = unnamedSection
	}

	sections, err := timedFetch(ctx, "get_sections", func() ([]ports.RemoteSection, error) {
		return s.api.GetSections(ctx)
	})
	if err != nil {
		return errs.Wrap(err, "fetch sections")
	}
	sectionNames := make(map[int64]string, len(sections))
	for _, section := range sections {
		name := strings.TrimSpace(section.Name)
		if name == "" {
			name = unnamedSection
		}
		sectionNames[section.ID] = name
	}

	offset := 0
	for {
		page, err := timedFetch(ctx, "get_cases", func() (ports.CasesPage, error) {
			return s.api.GetCases(ctx, pageSize, offset)
		})
		if err != nil {
			return errs.Wrapf(err, "fetch cases at offset %d", offset)
		}

		report.Pages++
		s.importPage(ctx, projectName, suiteName, sectionNames, page.Cases, report)

		if page.NextLink == nil {
			break
		}
		offset += pageSize
	}
	return nil
}

// importPage imports each case in isolation: a failing case is logged and
// counted, the remaining cases of the page still import. Rows created before
// a failure stay committed; there is no page-spanning transaction.
func (s *Service) importPage(ctx context.Context, projectName, suiteName string, sectionNames map[int64]string, cases []ports.RemoteCase, report *Report) {
	for _, remote := range cases {
		if err := s.importCase(ctx, projectName, suiteName, sectionNames, remote); err != nil {
			report.CasesFailed++
			report.FailedSourceIDs = append(report.FailedSourceIDs, remote.ID)
			logging.Error(ctx, "import test case failed",
				slog.Int64("source_id", remote.ID),
				slog.Any("err", errs.Loggable(err)),
			)
			continue
		}
		report.CasesImported++
	}
}

// importCase always inserts a new catalog row; re-ingesting the same upstream
// case yields a new TC-<n>. Lookup ids with no matching row are dropped by
// the existing-id filter.
func (s *Service) importCase(ctx context.Context, projectName, suiteName string, sectionNames map[int64]string, remote ports.RemoteCase) error {
	sectionName, ok := sectionNames[remote.SectionID]
	if !ok {
		sectionName = unnamedSection
	}

	created, err := s.repo.CreateTestCase(ctx, ports.TestCaseCreate{
		Title:           remote.Title,
		Tickets:         parseTickets(remote.Refs),
		Preconditions:   NormalizeText(remote.Preconds),
		Steps:           NormalizeText(remote.Steps),
		ExpectedResult:  NormalizeText(remote.Expected),
		Comments:        NormalizeText(remote.Comments),
		Project:         projectName,
		Suite:           suiteName,
		Section:         sectionName,
		SourceID:        remote.ID,
		SourceCreatedAt: epochToUTC(remote.CreatedOn),
		SourceUpdatedAt: epochToUTC(remote.UpdatedOn),
	})
	if err != nil {
		return errs.Wrap(err, "create test case")
	}

	if len(remote.Customers) > 0 {
		existing, err := s.repo.FilterCustomerIDs(ctx, remote.Customers)
		if err != nil {
			return errs.Wrap(err, "filter customer ids")
		}
		if len(existing) > 0 {
			if err := s.repo.AttachCustomers(ctx, created.TestCaseID, existing); err != nil {
				return errs.Wrap(err, "attach customers")
			}
		}
	}

	if len(remote.Platforms) > 0 {
		existing, err := s.repo.FilterPlatformIDs(ctx, remote.Platforms)
		if err != nil {
			return errs.Wrap(err, "filter platform ids")
		}
		if len(existing) > 0 {
			if err := s.repo.AttachPlatforms(ctx, created.TestCaseID, existing); err != nil {
				return errs.Wrap(err, "attach platforms")
			}
		}
	}

	return nil
}

// parseTickets splits a comma-separated reference list into trimmed ticket
// strings, bounded to the schema limit. Absent refs yield nil, not an empty
// list.
func parseTickets(refs string) []string {
	refs = strings.TrimSpace(refs)
	if refs == "" {
		return nil
	}

	parts := strings.Split(refs, ",")
	tickets := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		tickets = append(tickets, part)
	}
	if len(tickets) == 0 {
		return nil
	}
	if len(tickets) > maxTickets {
		tickets = tickets[:maxTickets]
	}
	return tickets
}

// epochToUTC converts epoch seconds to an RFC3339 UTC instant. Absent or
// zero timestamps map to absent, never to the epoch zero value.
func epochToUTC(ts *int64) *string {
	if ts == nil || *ts == 0 {
		return nil
	}
	v := time.Unix(*ts, 0).UTC().Format(time.RFC3339)
	return &v
}

// timedFetch logs entry and exit with duration and outcome around one remote
// call.
func timedFetch[T any](ctx context.Context, call string, fn func() (T, error)) (T, error) {
	logCtx := logging.WithAttrs(ctx, slog.String("call", call))
	logging.Debug(logCtx, "remote fetch started")

	start := time.Now()
	out, err := fn()
	if err != nil {
		logging.Error(logCtx, "remote fetch failed",
			slog.Duration("elapsed", time.Since(start)),
			slog.Any("err", errs.Loggable(err)),
		)
		return out, err
	}

	logging.Debug(logCtx, "remote fetch finished", slog.Duration("elapsed", time.Since(start)))
	return out, nil
}
