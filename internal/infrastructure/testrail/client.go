// Package testrail implements the remote data client for the TestRail API.
// Every call is a single authenticated GET; transport and decode failures
// propagate to the caller and no retries or caching happen at this layer.
package testrail

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"autoqa/internal/bootstrap/config"
	"autoqa/internal/errs"
	"autoqa/internal/ports"
)

type Client struct {
	baseURL    string
	projectID  int64
	suiteID    int64
	username   string
	apiKey     string
	httpClient *http.Client
}

var _ ports.TestRailAPI = (*Client)(nil)

func NewClient(cfg config.TestRailConfig) *Client {
	return &Client{
		baseURL:    cfg.BaseURL,
		projectID:  cfg.ProjectID,
		suiteID:    cfg.SuiteID,
		username:   cfg.Username,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

type namedResource struct {
	Name string `json:"name"`
}

func (c *Client) GetProjectName(ctx context.Context) (string, error) {
	var out namedResource
	if err := c.getJSON(ctx, fmt.Sprintf("get_project/%d", c.projectID), nil, &out); err != nil {
		return "", err
	}
	return out.Name, nil
}

func (c *Client) GetSuiteName(ctx context.Context) (string, error) {
	var out namedResource
	if err := c.getJSON(ctx, fmt.Sprintf("get_suite/%d", c.suiteID), nil, &out); err != nil {
		return "", err
	}
	return out.Name, nil
}

func (c *Client) GetSections(ctx context.Context) ([]ports.RemoteSection, error) {
	query := url.Values{}
	query.Set("suite_id", strconv.FormatInt(c.suiteID, 10))

	var out struct {
		Sections []ports.RemoteSection `json:"sections"`
	}
	if err := c.getJSON(ctx, fmt.Sprintf("get_sections/%d", c.projectID), query, &out); err != nil {
		return nil, err
	}
	return out.Sections, nil
}

func (c *Client) GetCases(ctx context.Context, limit int, offset int) (ports.CasesPage, error) {
	query := url.Values{}
	query.Set("suite_id", strconv.FormatInt(c.suiteID, 10))
	query.Set("limit", strconv.Itoa(limit))
	query.Set("offset", strconv.Itoa(offset))

	var out struct {
		Cases []ports.RemoteCase `json:"cases"`
		Links struct {
			Next *string `json:"next"`
		} `json:"_links"`
	}
	if err := c.getJSON(ctx, fmt.Sprintf("get_cases/%d", c.projectID), query, &out); err != nil {
		return ports.CasesPage{}, err
	}
	return ports.CasesPage{Cases: out.Cases, NextLink: out.Links.Next}, nil
}

func (c *Client) GetCaseFields(ctx context.Context) ([]ports.CaseField, error) {
	var out []ports.CaseField
	if err := c.getJSON(ctx, "get_case_fields", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) getJSON(ctx context.Context, apiPath string, query url.Values, out any) error {
	if ctx == nil {
		return errors.New("context is required")
	}

	u, err := url.Parse(c.baseURL)
	if err != nil {
		return errs.Wrap(err, "parse base url")
	}
	u = u.JoinPath(apiPath)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return errs.Wrap(err, "build request")
	}
	req.SetBasicAuth(c.username, c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errs.Wrapf(err, "GET %s", apiPath)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("GET %s: status %d: %s", apiPath, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errs.Wrapf(err, "decode %s response", apiPath)
	}
	return nil
}
