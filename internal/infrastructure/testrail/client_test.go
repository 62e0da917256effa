package testrail

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"autoqa/internal/bootstrap/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewClient(config.TestRailConfig{
		BaseURL:   server.URL + "/api/v2",
		ProjectID: 12,
		SuiteID:   34,
		Username:  "qa@example.com",
		APIKey:    "secret-key",
	})
}

func TestGetProjectNameSendsAuthAndAccept(t *testing.T) {
	var gotUser, gotPass string
	var gotAccept string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotUser, gotPass, _ = r.BasicAuth()
		gotAccept = r.Header.Get("Accept")
		_, _ = w.Write([]byte(`{"id": 12, "name": "Payments"}`))
	})

	name, err := client.GetProjectName(context.Background())
	if err != nil {
		t.Fatalf("GetProjectName() error = %v", err)
	}
	if name != "Payments" {
		t.Fatalf("name = %q", name)
	}
	if gotUser != "qa@example.com" || gotPass != "secret-key" {
		t.Fatalf("basic auth = %q/%q", gotUser, gotPass)
	}
	if gotAccept != "application/json" {
		t.Fatalf("accept = %q", gotAccept)
	}
}

func TestGetSectionsQueriesSuite(t *testing.T) {
	var gotPath, gotSuite string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotSuite = r.URL.Query().Get("suite_id")
		_, _ = w.Write([]byte(`{"sections": [{"id": 1, "name": "Checkout"}, {"id": 2, "name": "Refunds"}]}`))
	})

	sections, err := client.GetSections(context.Background())
	if err != nil {
		t.Fatalf("GetSections() error = %v", err)
	}
	if len(sections) != 2 || sections[0].Name != "Checkout" || sections[1].ID != 2 {
		t.Fatalf("sections = %+v", sections)
	}
	if gotSuite != "34" {
		t.Fatalf("suite_id = %q", gotSuite)
	}
	if gotPath != "/api/v2/get_sections/12" {
		t.Fatalf("path = %q", gotPath)
	}
}

func TestGetCasesPaginationParams(t *testing.T) {
	var gotQuery map[string]string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{
			"suite_id": r.URL.Query().Get("suite_id"),
			"limit":    r.URL.Query().Get("limit"),
			"offset":   r.URL.Query().Get("offset"),
		}
		_, _ = w.Write([]byte(`{
			"cases": [
				{"id": 101, "title": "login", "section_id": 1, "custom_platfroms": [7]}
			],
			"_links": {"next": "/api/v2/get_cases/12&limit=250&offset=250", "prev": null}
		}`))
	})

	page, err := client.GetCases(context.Background(), 250, 250)
	if err != nil {
		t.Fatalf("GetCases() error = %v", err)
	}
	if gotQuery["suite_id"] != "34" || gotQuery["limit"] != "250" || gotQuery["offset"] != "250" {
		t.Fatalf("query = %v", gotQuery)
	}
	if len(page.Cases) != 1 || page.Cases[0].ID != 101 {
		t.Fatalf("cases = %+v", page.Cases)
	}
	if len(page.Cases[0].Platforms) != 1 || page.Cases[0].Platforms[0] != 7 {
		t.Fatalf("platforms = %v", page.Cases[0].Platforms)
	}
	if page.NextLink == nil {
		t.Fatalf("next link = nil")
	}
}

func TestGetCasesLastPageHasNoNextLink(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"cases": [], "_links": {"next": null, "prev": "/prev"}}`))
	})

	page, err := client.GetCases(context.Background(), 250, 500)
	if err != nil {
		t.Fatalf("GetCases() error = %v", err)
	}
	if page.NextLink != nil {
		t.Fatalf("next link = %q", *page.NextLink)
	}
}

func TestGetCaseFieldsDecodesArray(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[
			{"system_name": "custom_customers", "configs": [{"options": {"items": "1, Acme"}}]}
		]`))
	})

	fields, err := client.GetCaseFields(context.Background())
	if err != nil {
		t.Fatalf("GetCaseFields() error = %v", err)
	}
	if len(fields) != 1 || fields[0].SystemName != "custom_customers" {
		t.Fatalf("fields = %+v", fields)
	}
	if fields[0].Configs[0].Options.Items != "1, Acme" {
		t.Fatalf("items = %q", fields[0].Configs[0].Options.Items)
	}
}

func TestErrorStatusIncludesBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error": "no access"}`))
	})

	_, err := client.GetSuiteName(context.Background())
	if err == nil {
		t.Fatalf("GetSuiteName() did not fail on 403")
	}
}

func TestDecodeErrorPropagates(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"cases": [`))
	})

	if _, err := client.GetCases(context.Background(), 250, 0); err == nil {
		t.Fatalf("GetCases() did not fail on truncated payload")
	}
}
