package ingest

import (
	"context"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"autoqa/internal/bootstrap/logging"
	"autoqa/internal/errs"
	"autoqa/internal/ports"
)

const (
	customerFieldName = "custom_customers"
	// Upstream system name; the misspelling is theirs.
	platformFieldName = "custom_platfroms"
)

// ResolveFieldOptions extracts id->label maps for the recognized dynamic
// fields from a field-definition payload. Item lines that do not parse as
// "<int>, <label>" are logged and skipped. Fields that are not present in the
// payload are absent from the result.
func ResolveFieldOptions(ctx context.Context, fields []ports.CaseField) map[string]map[int64]string {
	result := make(map[string]map[int64]string)
	for _, field := range fields {
		if field.SystemName != customerFieldName && field.SystemName != platformFieldName {
			continue
		}

		entries := make(map[int64]string)
		if len(field.Configs) > 0 {
			for _, line := range strings.Split(field.Configs[0].Options.Items, "\n") {
				if strings.TrimSpace(line) == "" {
					continue
				}
				externalID, label, ok := parseOptionLine(line)
				if !ok {
					logging.Warn(ctx, "skip malformed field option",
						slog.String("field", field.SystemName),
						slog.String("line", line),
					)
					continue
				}
				entries[externalID] = label
			}
		}
		result[field.SystemName] = entries
	}
	return result
}

func parseOptionLine(line string) (int64, string, bool) {
	parts := strings.SplitN(line, ", ", 2)
	externalID, err := strconv.ParseInt(strings.TrimSpace(parts[0]), 10, 64)
	if err != nil {
		return 0, "", false
	}

	label := ""
	if len(parts) > 1 {
		label = strings.TrimSpace(parts[1])
	}
	return externalID, label, true
}

// populateCustomers creates missing customer lookup rows. Every entry is
// isolated: failures and duplicates are logged and the loop continues, so
// partial success on re-run is the expected outcome. Existing labels are
// never refreshed. Returns the number of rows actually inserted.
func (s *Service) populateCustomers(ctx context.Context, entries map[int64]string) int {
	if len(entries) == 0 {
		logging.Debug(ctx, "no customers fetched from testrail")
		return 0
	}

	created := 0
	for _, externalID := range sortedKeys(entries) {
		inserted, err := s.repo.CreateCustomer(ctx, ports.LookupEntry{ExternalID: externalID, Name: entries[externalID]})
		if err != nil {
			logging.Error(ctx, "customer row not created",
				slog.Int64("external_id", externalID),
				slog.Any("err", errs.Loggable(err)),
			)
			continue
		}
		if !inserted {
			logging.Info(ctx, "customer row already exists, skipped", slog.Int64("external_id", externalID))
			continue
		}
		logging.Info(ctx, "customer row created",
			slog.Int64("external_id", externalID),
			slog.String("name", entries[externalID]),
		)
		created++
	}
	return created
}

func (s *Service) populatePlatforms(ctx context.Context, entries map[int64]string) int {
	if len(entries) == 0 {
		logging.Debug(ctx, "no platforms fetched from testrail")
		return 0
	}

	created := 0
	for _, externalID := range sortedKeys(entries) {
		inserted, err := s.repo.CreatePlatform(ctx, ports.LookupEntry{ExternalID: externalID, Name: entries[externalID]})
		if err != nil {
			logging.Error(ctx, "platform row not created",
				slog.Int64("external_id", externalID),
				slog.Any("err", errs.Loggable(err)),
			)
			continue
		}
		if !inserted {
			logging.Info(ctx, "platform row already exists, skipped", slog.Int64("external_id", externalID))
			continue
		}
		logging.Info(ctx, "platform row created",
			slog.Int64("external_id", externalID),
			slog.String("name", entries[externalID]),
		)
		created++
	}
	return created
}

func sortedKeys(entries map[int64]string) []int64 {
	keys := make([]int64, 0, len(entries))
	for key := range entries {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
