package ingest

import (
	"context"
	"errors"
	"testing"

	"autoqa/internal/ports"
)

func strPtr(s string) *string { return &s }

func int64Ptr(v int64) *int64 { return &v }

func remoteCase(id int64, title string) ports.RemoteCase {
	return ports.RemoteCase{ID: id, Title: title, SectionID: 10}
}

func TestRunPaginatesUntilNextLinkIsAbsent(t *testing.T) {
	api := &fakeAPI{
		projectName: "Payments",
		suiteName:   "Regression",
		sections:    []ports.RemoteSection{{ID: 10, Name: "Checkout"}},
		pages: []ports.CasesPage{
			{
				Cases:    []ports.RemoteCase{remoteCase(101, "first"), remoteCase(102, "second")},
				NextLink: strPtr("/api/v2/get_cases/1&limit=250&offset=250"),
			},
			{
				Cases: []ports.RemoteCase{remoteCase(103, "third")},
			},
		},
	}
	repo := newFakeRepo()
	svc := NewService(api, repo, newFakeCache())

	report := svc.Run(context.Background(), RunOptions{})

	if report.Outcome != OutcomeCompleted {
		t.Fatalf("outcome = %q, message = %q", report.Outcome, report.Message)
	}
	if report.Pages != 2 {
		t.Fatalf("pages = %d", report.Pages)
	}
	if report.CasesImported != 3 {
		t.Fatalf("cases imported = %d", report.CasesImported)
	}
	if len(api.caseCalls) != 2 {
		t.Fatalf("case calls = %d", len(api.caseCalls))
	}
	if api.caseCalls[0].Offset != 0 || api.caseCalls[1].Offset != 250 {
		t.Fatalf("offsets = %d,%d", api.caseCalls[0].Offset, api.caseCalls[1].Offset)
	}
	if api.caseCalls[0].Limit != 250 {
		t.Fatalf("limit = %d", api.caseCalls[0].Limit)
	}
}

func TestRunIsolatesPerCaseFailures(t *testing.T) {
	api := &fakeAPI{
		projectName: "Payments",
		suiteName:   "Regression",
		pages: []ports.CasesPage{
			{
				Cases: []ports.RemoteCase{
					remoteCase(1, "a"), remoteCase(2, "b"), remoteCase(3, "c"),
				},
				NextLink: strPtr("next"),
			},
			{
				Cases: []ports.RemoteCase{remoteCase(4, "d"), remoteCase(5, "e")},
			},
		},
	}
	repo := newFakeRepo()
	repo.failSourceIDs[3] = true
	svc := NewService(api, repo, newFakeCache())

	report := svc.Run(context.Background(), RunOptions{})

	if report.Outcome != OutcomeCompletedWithErrors {
		t.Fatalf("outcome = %q", report.Outcome)
	}
	if report.CasesImported != 4 {
		t.Fatalf("cases imported = %d", report.CasesImported)
	}
	if report.CasesFailed != 1 {
		t.Fatalf("cases failed = %d", report.CasesFailed)
	}
	if len(report.FailedSourceIDs) != 1 || report.FailedSourceIDs[0] != 3 {
		t.Fatalf("failed source ids = %v", report.FailedSourceIDs)
	}
	// The second page is still fetched after a case on the first page fails.
	if report.Pages != 2 {
		t.Fatalf("pages = %d", report.Pages)
	}
	if len(repo.created) != 4 {
		t.Fatalf("created rows = %d", len(repo.created))
	}
}

func TestRunFoldsHardErrorIntoFailedReport(t *testing.T) {
	api := &fakeAPI{projectErr: errors.New("connection refused")}
	svc := NewService(api, newFakeRepo(), newFakeCache())

	report := svc.Run(context.Background(), RunOptions{})

	if report.Outcome != OutcomeFailed {
		t.Fatalf("outcome = %q", report.Outcome)
	}
	if report.Message == "" {
		t.Fatalf("failed report has no message")
	}
	if report.StartedAt == "" || report.FinishedAt == "" {
		t.Fatalf("report timestamps missing: %+v", report)
	}
}

func TestRunDefaultsMissingNames(t *testing.T) {
	api := &fakeAPI{
		projectName: "  ",
		suiteName:   "",
		sections:    []ports.RemoteSection{{ID: 10, Name: "   "}},
		pages: []ports.CasesPage{
			{Cases: []ports.RemoteCase{remoteCase(1, "a"), {ID: 2, Title: "b", SectionID: 99}}},
		},
	}
	repo := newFakeRepo()
	svc := NewService(api, repo, newFakeCache())

	report := svc.Run(context.Background(), RunOptions{})
	if report.Outcome != OutcomeCompleted {
		t.Fatalf("outcome = %q, message = %q", report.Outcome, report.Message)
	}

	first := repo.createdInputs[0]
	if first.Project != "Unnamed" || first.Suite != "Unnamed" || first.Section != "Unnamed" {
		t.Fatalf("first case scope = %q/%q/%q", first.Project, first.Suite, first.Section)
	}
	// Section id with no mapping also falls back.
	if repo.createdInputs[1].Section != "Unnamed" {
		t.Fatalf("unmapped section = %q", repo.createdInputs[1].Section)
	}
}

func TestRunAttachesOnlyKnownLookupIDs(t *testing.T) {
	withLookups := remoteCase(1, "a")
	withLookups.Customers = []int64{1, 2, 3}
	withLookups.Platforms = []int64{7, 8}
	bare := remoteCase(2, "b")

	api := &fakeAPI{
		projectName: "Payments",
		suiteName:   "Regression",
		pages:       []ports.CasesPage{{Cases: []ports.RemoteCase{withLookups, bare}}},
	}
	repo := newFakeRepo()
	repo.existingCustomers[2] = "Globex"
	repo.existingPlatforms[7] = "iOS"
	svc := NewService(api, repo, newFakeCache())

	report := svc.Run(context.Background(), RunOptions{})
	if report.Outcome != OutcomeCompleted {
		t.Fatalf("outcome = %q, message = %q", report.Outcome, report.Message)
	}

	caseID := repo.created[0].TestCaseID
	if got := repo.attachedCustomer[caseID]; len(got) != 1 || got[0] != 2 {
		t.Fatalf("attached customers = %v", got)
	}
	if got := repo.attachedPlatform[caseID]; len(got) != 1 || got[0] != 7 {
		t.Fatalf("attached platforms = %v", got)
	}
	// Cases without lookup references trigger no attach calls at all.
	bareID := repo.created[1].TestCaseID
	if _, ok := repo.attachedCustomer[bareID]; ok {
		t.Fatalf("unexpected customer attach for bare case")
	}
	if _, ok := repo.attachedPlatform[bareID]; ok {
		t.Fatalf("unexpected platform attach for bare case")
	}
}

func TestRunFieldModePopulatesLookups(t *testing.T) {
	api := &fakeAPI{
		fields: []ports.CaseField{
			{
				SystemName: "custom_customers",
				Configs: []ports.CaseFieldConfig{
					{Options: ports.CaseFieldOptions{Items: "1, Acme\n2, Globex"}},
				},
			},
			{
				SystemName: "custom_platfroms",
				Configs: []ports.CaseFieldConfig{
					{Options: ports.CaseFieldOptions{Items: "7, iOS"}},
				},
			},
		},
	}
	repo := newFakeRepo()
	repo.existingCustomers[2] = "Globex"
	svc := NewService(api, repo, newFakeCache())

	report := svc.Run(context.Background(), RunOptions{FetchFields: true})

	if report.Outcome != OutcomeCompleted {
		t.Fatalf("outcome = %q, message = %q", report.Outcome, report.Message)
	}
	if report.Mode != ModeFields {
		t.Fatalf("mode = %q", report.Mode)
	}
	if report.CustomersCreated != 1 {
		t.Fatalf("customers created = %d", report.CustomersCreated)
	}
	if report.PlatformsCreated != 1 {
		t.Fatalf("platforms created = %d", report.PlatformsCreated)
	}
	if len(api.caseCalls) != 0 {
		t.Fatalf("field mode fetched cases: %d calls", len(api.caseCalls))
	}
}

func TestRunPersistsReportForStatus(t *testing.T) {
	api := &fakeAPI{
		projectName: "Payments",
		suiteName:   "Regression",
		pages:       []ports.CasesPage{{Cases: []ports.RemoteCase{remoteCase(1, "a")}}},
	}
	cache := newFakeCache()
	svc := NewService(api, newFakeRepo(), cache)

	want := svc.Run(context.Background(), RunOptions{})

	got, found, err := svc.LastReport(context.Background())
	if err != nil {
		t.Fatalf("LastReport() error = %v", err)
	}
	if !found {
		t.Fatalf("LastReport() found = false")
	}
	if got.Outcome != want.Outcome || got.CasesImported != want.CasesImported {
		t.Fatalf("LastReport() = %+v, want %+v", got, want)
	}
}

func TestParseTickets(t *testing.T) {
	if got := parseTickets(""); got != nil {
		t.Fatalf("parseTickets(empty) = %v", got)
	}
	if got := parseTickets("  ,  ,"); got != nil {
		t.Fatalf("parseTickets(blank parts) = %v", got)
	}

	got := parseTickets(" QA-1, QA-2 ,,QA-3")
	if len(got) != 3 || got[0] != "QA-1" || got[1] != "QA-2" || got[2] != "QA-3" {
		t.Fatalf("parseTickets() = %v", got)
	}

	long := "a,b,c,d,e,f,g,h,i,j,k,l"
	if got := parseTickets(long); len(got) != 10 {
		t.Fatalf("parseTickets(long) len = %d", len(got))
	}
}

func TestEpochToUTC(t *testing.T) {
	if got := epochToUTC(nil); got != nil {
		t.Fatalf("epochToUTC(nil) = %v", *got)
	}
	if got := epochToUTC(int64Ptr(0)); got != nil {
		t.Fatalf("epochToUTC(0) = %v", *got)
	}

	got := epochToUTC(int64Ptr(1700000000))
	if got == nil || *got != "2023-11-14T22:13:20Z" {
		t.Fatalf("epochToUTC(1700000000) = %v", got)
	}
}
