package ingest

import (
	"context"
	"fmt"
	"time"

	"autoqa/internal/ports"
)

type fakeAPI struct {
	projectName string
	suiteName   string
	sections    []ports.RemoteSection
	pages       []ports.CasesPage
	fields      []ports.CaseField

	projectErr  error
	sectionsErr error
	casesErr    error
	fieldsErr   error

	caseCalls []struct{ Limit, Offset int }
}

func (f *fakeAPI) GetProjectName(ctx context.Context) (string, error) {
	return f.projectName, f.projectErr
}

func (f *fakeAPI) GetSuiteName(ctx context.Context) (string, error) {
	return f.suiteName, nil
}

func (f *fakeAPI) GetSections(ctx context.Context) ([]ports.RemoteSection, error) {
	return f.sections, f.sectionsErr
}

func (f *fakeAPI) GetCases(ctx context.Context, limit int, offset int) (ports.CasesPage, error) {
	f.caseCalls = append(f.caseCalls, struct{ Limit, Offset int }{limit, offset})
	if f.casesErr != nil {
		return ports.CasesPage{}, f.casesErr
	}
	idx := len(f.caseCalls) - 1
	if idx >= len(f.pages) {
		return ports.CasesPage{}, fmt.Errorf("unexpected page request at offset %d", offset)
	}
	return f.pages[idx], nil
}

func (f *fakeAPI) GetCaseFields(ctx context.Context) ([]ports.CaseField, error) {
	return f.fields, f.fieldsErr
}

type fakeRepo struct {
	existingCustomers map[int64]string
	existingPlatforms map[int64]string

	created          []ports.TestCase
	createdInputs    []ports.TestCaseCreate
	attachedCustomer map[string][]int64
	attachedPlatform map[string][]int64

	failSourceIDs map[int64]bool
	nextID        int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		existingCustomers: map[int64]string{},
		existingPlatforms: map[int64]string{},
		attachedCustomer:  map[string][]int64{},
		attachedPlatform:  map[string][]int64{},
		failSourceIDs:     map[int64]bool{},
	}
}

func (f *fakeRepo) CreateTestCase(ctx context.Context, input ports.TestCaseCreate) (ports.TestCase, error) {
	if f.failSourceIDs[input.SourceID] {
		return ports.TestCase{}, fmt.Errorf("injected failure for source %d", input.SourceID)
	}
	f.nextID++
	created := ports.TestCase{
		TestCaseID:     fmt.Sprintf("TC-%d", f.nextID),
		Title:          input.Title,
		Tickets:        input.Tickets,
		Preconditions:  input.Preconditions,
		Steps:          input.Steps,
		ExpectedResult: input.ExpectedResult,
		Comments:       input.Comments,
		Project:        input.Project,
		Suite:          input.Suite,
		Section:        input.Section,
		SourceID:       input.SourceID,
	}
	f.created = append(f.created, created)
	f.createdInputs = append(f.createdInputs, input)
	return created, nil
}

func (f *fakeRepo) CreateCustomer(ctx context.Context, entry ports.LookupEntry) (bool, error) {
	if _, ok := f.existingCustomers[entry.ExternalID]; ok {
		return false, nil
	}
	f.existingCustomers[entry.ExternalID] = entry.Name
	return true, nil
}

func (f *fakeRepo) CreatePlatform(ctx context.Context, entry ports.LookupEntry) (bool, error) {
	if _, ok := f.existingPlatforms[entry.ExternalID]; ok {
		return false, nil
	}
	f.existingPlatforms[entry.ExternalID] = entry.Name
	return true, nil
}

func (f *fakeRepo) AttachCustomers(ctx context.Context, testCaseID string, externalIDs []int64) error {
	f.attachedCustomer[testCaseID] = append(f.attachedCustomer[testCaseID], externalIDs...)
	return nil
}

func (f *fakeRepo) AttachPlatforms(ctx context.Context, testCaseID string, externalIDs []int64) error {
	f.attachedPlatform[testCaseID] = append(f.attachedPlatform[testCaseID], externalIDs...)
	return nil
}

func (f *fakeRepo) FilterCustomerIDs(ctx context.Context, externalIDs []int64) ([]int64, error) {
	return filterKnown(f.existingCustomers, externalIDs), nil
}

func (f *fakeRepo) FilterPlatformIDs(ctx context.Context, externalIDs []int64) ([]int64, error) {
	return filterKnown(f.existingPlatforms, externalIDs), nil
}

func filterKnown(known map[int64]string, externalIDs []int64) []int64 {
	out := make([]int64, 0, len(externalIDs))
	for _, id := range externalIDs {
		if _, ok := known[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

func (f *fakeRepo) ListTestCases(ctx context.Context, filter ports.TestCaseFilter) ([]ports.TestCase, error) {
	return f.created, nil
}

func (f *fakeRepo) GetTestCase(ctx context.Context, testCaseID string) (ports.TestCase, error) {
	for _, item := range f.created {
		if item.TestCaseID == testCaseID {
			return item, nil
		}
	}
	return ports.TestCase{}, ports.ErrTestCaseNotFound
}

func (f *fakeRepo) GetGeneratedScript(ctx context.Context, testCaseID string) (ports.GeneratedScript, error) {
	return ports.GeneratedScript{}, ports.ErrScriptNotFound
}

func (f *fakeRepo) CreateTestRun(ctx context.Context, input ports.TestRunCreate) (ports.TestRun, error) {
	return ports.TestRun{}, fmt.Errorf("not supported in fake")
}

func (f *fakeRepo) AddRunCases(ctx context.Context, testRunID string, testCaseIDs []string) error {
	return fmt.Errorf("not supported in fake")
}

func (f *fakeRepo) SaveGeneratedScript(ctx context.Context, input ports.GeneratedScriptSave) (ports.GeneratedScript, error) {
	return ports.GeneratedScript{}, fmt.Errorf("not supported in fake")
}

func (f *fakeRepo) RecordExecutionResult(ctx context.Context, input ports.ExecutionResultRecord) error {
	return fmt.Errorf("not supported in fake")
}

type fakeCache struct {
	values map[string]string
}

func newFakeCache() *fakeCache {
	return &fakeCache{values: map[string]string{}}
}

func (f *fakeCache) Get(ctx context.Context, key string) (string, bool, error) {
	value, ok := f.values[key]
	return value, ok, nil
}

func (f *fakeCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	f.values[key] = value
	return nil
}

func (f *fakeCache) Delete(ctx context.Context, key string) error {
	delete(f.values, key)
	return nil
}
