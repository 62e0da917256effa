package ports

import (
	"context"
	"errors"
)

var (
	ErrTestCaseNotFound = errors.New("test case not found")
	ErrTestRunNotFound  = errors.New("test run not found")
	ErrScriptNotFound   = errors.New("generated script not found")
)

// Step is one normalized line of a free-text test-case field.
// Order is 1-based and contiguous in a normalized sequence.
type Step struct {
	Order       int    `json:"order"`
	Description string `json:"description"`
}

// LookupEntry is a customer or platform row resolved from upstream field
// definitions. ExternalID is the upstream identifier and is unique per table.
type LookupEntry struct {
	ExternalID int64
	Name       string
}

type TestCaseCreate struct {
	Title           string
	Tickets         []string
	Preconditions   []Step
	Steps           []Step
	ExpectedResult  []Step
	Comments        []Step
	Project         string
	Suite           string
	Section         string
	SourceID        int64
	SourceCreatedAt *string
	SourceUpdatedAt *string
}

type TestCase struct {
	TestCaseID      string
	Title           string
	Tickets         []string
	Preconditions   []Step
	Steps           []Step
	ExpectedResult  []Step
	Comments        []Step
	Project         string
	Suite           string
	Section         string
	Status          string
	SourceID        int64
	SourceCreatedAt *string
	SourceUpdatedAt *string
	CreatedAt       string
	UpdatedAt       string
}

type TestCaseFilter struct {
	Status  string
	Project string
	Suite   string
	Section string
}

type TestRunCreate struct {
	Name                 string
	SaveBeyondExpiration bool
}

type TestRun struct {
	TestRunID            string
	Name                 string
	StartedAt            *string
	CompletedAt          *string
	SaveBeyondExpiration bool
	CreatedAt            string
}

type GeneratedScriptSave struct {
	TestCaseID string
	Name       string
	StorageKey string
	ETag       string
}

type GeneratedScript struct {
	TestCaseID string
	Name       string
	StorageKey string
	ETag       string
	Version    int
	Status     string
}

type ExecutionResultRecord struct {
	TestCaseID            string
	Result                string
	ExecutionSeconds      float64
	LogStorageKey         string
	ScreenshotsStorageKey string
}

type CatalogReadRepository interface {
	ListTestCases(ctx context.Context, filter TestCaseFilter) ([]TestCase, error)
	GetTestCase(ctx context.Context, testCaseID string) (TestCase, error)
	// FilterCustomerIDs returns the subset of external ids that exist in the
	// customer lookup table. FilterPlatformIDs is the platform counterpart.
	FilterCustomerIDs(ctx context.Context, externalIDs []int64) ([]int64, error)
	FilterPlatformIDs(ctx context.Context, externalIDs []int64) ([]int64, error)
	GetGeneratedScript(ctx context.Context, testCaseID string) (GeneratedScript, error)
}

type CatalogRepository interface {
	CatalogReadRepository
	// CreateTestCase assigns the next TC-<n> catalog id and inserts the row.
	CreateTestCase(ctx context.Context, input TestCaseCreate) (TestCase, error)
	// CreateCustomer / CreatePlatform insert a lookup row. The bool reports
	// whether a row was inserted; false means the external id already exists
	// and the stored label was left untouched.
	CreateCustomer(ctx context.Context, entry LookupEntry) (bool, error)
	CreatePlatform(ctx context.Context, entry LookupEntry) (bool, error)
	AttachCustomers(ctx context.Context, testCaseID string, externalIDs []int64) error
	AttachPlatforms(ctx context.Context, testCaseID string, externalIDs []int64) error
	CreateTestRun(ctx context.Context, input TestRunCreate) (TestRun, error)
	AddRunCases(ctx context.Context, testRunID string, testCaseIDs []string) error
	SaveGeneratedScript(ctx context.Context, input GeneratedScriptSave) (GeneratedScript, error)
	RecordExecutionResult(ctx context.Context, input ExecutionResultRecord) error
}
