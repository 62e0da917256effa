package ports

import "context"

// RemoteCase is one raw case record as served by the TestRail API.
type RemoteCase struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Refs      string `json:"refs"`
	SectionID int64  `json:"section_id"`
	CreatedOn *int64 `json:"created_on"`
	UpdatedOn *int64 `json:"updated_on"`
	Preconds  string `json:"custom_preconds"`
	Steps     string `json:"custom_steps"`
	Expected  string `json:"custom_expected"`
	Comments  string `json:"custom_comments"`
	Customers []int64 `json:"custom_customers"`
	// The platform field is misspelled upstream; the wire tag must match it.
	Platforms []int64 `json:"custom_platfroms"`
}

type RemoteSection struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// CasesPage is one bounded batch of cases. NextLink is nil on the last page.
type CasesPage struct {
	Cases    []RemoteCase
	NextLink *string
}

type CaseFieldOptions struct {
	Items string `json:"items"`
}

type CaseFieldConfig struct {
	Options CaseFieldOptions `json:"options"`
}

// CaseField is one field descriptor from the get_case_fields payload.
type CaseField struct {
	SystemName string            `json:"system_name"`
	Configs    []CaseFieldConfig `json:"configs"`
}

// TestRailAPI is the remote data client boundary. Implementations perform
// single authenticated GETs and propagate transport and decode failures
// without retrying.
type TestRailAPI interface {
	GetProjectName(ctx context.Context) (string, error)
	GetSuiteName(ctx context.Context) (string, error)
	GetSections(ctx context.Context) ([]RemoteSection, error)
	GetCases(ctx context.Context, limit int, offset int) (CasesPage, error)
	GetCaseFields(ctx context.Context) ([]CaseField, error)
}
