package plane

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/ksysoev/wbs-import/pkg/core"
	"golang.org/x/oauth2"
)

const moduleExistsMessage = "Module with this name already exists"

// Client handles interaction with the Plane REST API (v1)
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     core.Logger
}

// Module is a module as returned by the list endpoints
type Module struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Issue is an issue as returned by the list endpoints
type Issue struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Comment is an issue comment as returned by the comments endpoint
type Comment struct {
	Comment   string `json:"comment_stripped"`
	HTML      string `json:"comment_html"`
	CreatedAt string `json:"created_at"`
}

// Text returns the plain text of the comment, falling back to its HTML
func (c Comment) Text() string {
	if c.Comment != "" {
		return c.Comment
	}
	return c.HTML
}

type listResponse[T any] struct {
	Results []T `json:"results"`
}

type createResponse struct {
	ID string `json:"id"`
}

type moduleRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type issueRequest struct {
	Name string `json:"name"`
}

type moduleIssuesRequest struct {
	Issues []string `json:"issues"`
}

// moduleIssue covers the shapes the module-issues endpoint has used:
// a bare issue, or one nested under "issue" or "issue_detail".
type moduleIssue struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Issue       json.RawMessage `json:"issue"`
	IssueDetail *Issue          `json:"issue_detail"`
}

// Option configures a Client
type Option func(*Client)

// WithLogger makes the client log every request at debug level
func WithLogger(logger core.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithHTTPClient replaces the underlying HTTP client; authentication is still applied on top of it
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a new Plane client for the configured workspace and project
func NewClient(cfg core.Config, opts ...Option) *Client {
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: cfg.APIKey},
	)

	c := &Client{
		baseURL: fmt.Sprintf("%s/api/v1/workspaces/%s/projects/%s",
			strings.TrimRight(cfg.Host, "/"), url.PathEscape(cfg.WorkspaceSlug), url.PathEscape(cfg.ProjectID)),
	}

	for _, opt := range opts {
		opt(c)
	}

	c.httpClient = authenticated(c.httpClient, ts)

	return c
}

// authenticated wraps base so every request carries the bearer token and the X-API-Key header Plane checks
func authenticated(base *http.Client, ts oauth2.TokenSource) *http.Client {
	inner := http.DefaultTransport
	if base != nil && base.Transport != nil {
		inner = base.Transport
	}

	hc := &http.Client{}
	if base != nil {
		*hc = *base
	}
	hc.Transport = &oauth2.Transport{
		Source: ts,
		Base:   &apiKeyTransport{source: ts, base: inner},
	}

	return hc
}

type apiKeyTransport struct {
	source oauth2.TokenSource
	base   http.RoundTripper
}

func (t *apiKeyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	tok, err := t.source.Token()
	if err != nil {
		return nil, err
	}

	// RoundTrippers must not modify the caller's request
	r := req.Clone(req.Context())
	r.Header.Set("X-API-Key", tok.AccessToken)

	return t.base.RoundTrip(r)
}

// CreateModule creates a module and returns its id.
// An existing module with the same name is reused.
func (c *Client) CreateModule(ctx context.Context, name string) (string, error) {
	var resp createResponse
	err := c.do(ctx, http.MethodPost, "/modules/", moduleRequest{
		Name:        name,
		Description: fmt.Sprintf("Module for %s", name),
	}, &resp)

	var apiErr *core.ApiError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusBadRequest && strings.Contains(apiErr.Body, moduleExistsMessage) {
		var existing createResponse
		if jsonErr := json.Unmarshal([]byte(apiErr.Body), &existing); jsonErr == nil && existing.ID != "" {
			c.debugf("Module %q already exists, reusing ID %s", name, existing.ID)
			return existing.ID, nil
		}
	}
	if err != nil {
		return "", err
	}

	if resp.ID == "" {
		return "", &core.ApiError{Method: http.MethodPost, Path: "/modules/", StatusCode: http.StatusOK, Body: "response has no id"}
	}

	return resp.ID, nil
}

// CreateIssue creates an issue and returns its id
func (c *Client) CreateIssue(ctx context.Context, title string) (string, error) {
	var resp createResponse
	if err := c.do(ctx, http.MethodPost, "/issues/", issueRequest{Name: title}, &resp); err != nil {
		return "", err
	}

	if resp.ID == "" {
		return "", &core.ApiError{Method: http.MethodPost, Path: "/issues/", StatusCode: http.StatusOK, Body: "response has no id"}
	}

	return resp.ID, nil
}

// LinkIssueToModule adds an issue to a module
func (c *Client) LinkIssueToModule(ctx context.Context, moduleID, issueID string) error {
	path := fmt.Sprintf("/modules/%s/module-issues/", url.PathEscape(moduleID))
	return c.do(ctx, http.MethodPost, path, moduleIssuesRequest{Issues: []string{issueID}}, nil)
}

// Validate checks that the project is reachable with the configured key
func (c *Client) Validate(ctx context.Context) error {
	if err := c.do(ctx, http.MethodGet, "/", nil, nil); err != nil {
		var apiErr *core.ApiError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized {
			return fmt.Errorf("authentication failed, check PLANE_API_KEY: %w", err)
		}
		return fmt.Errorf("failed to validate API connection: %w", err)
	}

	return nil
}

// ListModules returns all modules of the project
func (c *Client) ListModules(ctx context.Context) ([]Module, error) {
	var resp listResponse[Module]
	if err := c.do(ctx, http.MethodGet, "/modules/", nil, &resp); err != nil {
		return nil, err
	}

	return resp.Results, nil
}

// ListModuleIssues returns the issues linked to a module. Entries without an id are dropped.
func (c *Client) ListModuleIssues(ctx context.Context, moduleID string) ([]Issue, error) {
	var resp listResponse[moduleIssue]
	path := fmt.Sprintf("/modules/%s/module-issues/", url.PathEscape(moduleID))
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}

	issues := make([]Issue, 0, len(resp.Results))
	for _, mi := range resp.Results {
		issue := mi.issue()
		if issue.ID == "" {
			c.debugf("Skipping module issue without ID: %q", issue.Name)
			continue
		}
		issues = append(issues, issue)
	}

	return issues, nil
}

func (mi moduleIssue) issue() Issue {
	if mi.IssueDetail != nil {
		return *mi.IssueDetail
	}

	if len(mi.Issue) > 0 {
		switch mi.Issue[0] {
		case '{':
			var nested Issue
			if err := json.Unmarshal(mi.Issue, &nested); err == nil {
				return nested
			}
		case '"':
			// link record: "issue" holds the issue id, "id" the link id
			var id string
			if err := json.Unmarshal(mi.Issue, &id); err == nil && id != "" {
				return Issue{ID: id, Name: mi.Name}
			}
		}
	}

	return Issue{ID: mi.ID, Name: mi.Name}
}

// ListIssues returns all issues of the project regardless of module
func (c *Client) ListIssues(ctx context.Context) ([]Issue, error) {
	var resp listResponse[Issue]
	if err := c.do(ctx, http.MethodGet, "/issues/", nil, &resp); err != nil {
		return nil, err
	}

	return resp.Results, nil
}

// ListIssueComments returns the comments of an issue
func (c *Client) ListIssueComments(ctx context.Context, issueID string) ([]Comment, error) {
	var resp listResponse[Comment]
	path := fmt.Sprintf("/issues/%s/comments/", url.PathEscape(issueID))
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}

	return resp.Results, nil
}

// DeleteIssue deletes an issue
func (c *Client) DeleteIssue(ctx context.Context, issueID string) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/issues/%s/", url.PathEscape(issueID)), nil, nil)
}

// DeleteModule deletes a module
func (c *Client) DeleteModule(ctx context.Context, moduleID string) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/modules/%s/", url.PathEscape(moduleID)), nil, nil)
}

// do sends a single request. Any failure, including non-2xx statuses, is returned as *core.ApiError.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request for %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(data)
		c.debugf("%s %s %s", method, path, string(data))
	} else {
		c.debugf("%s %s", method, path)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return &core.ApiError{Method: method, Path: path, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &core.ApiError{Method: method, Path: path, Err: err}
	}

	respBody, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return &core.ApiError{Method: method, Path: path, StatusCode: resp.StatusCode, Err: err}
	}

	c.debugf("%s %s -> %d", method, path, resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &core.ApiError{Method: method, Path: path, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return &core.ApiError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       string(respBody),
			Err:        fmt.Errorf("failed to parse response: %w", err),
		}
	}

	return nil
}

func (c *Client) debugf(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debugf(msg, args...)
	}
}
