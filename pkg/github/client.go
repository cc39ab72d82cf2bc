package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/go-github/v60/github"
	"github.com/ksysoev/wbs-import/pkg/core"
	"golang.org/x/oauth2"
)

// Client replays a work breakdown structure into a GitHub repository.
// Modules become milestones and linking sets the issue's milestone.
type Client struct {
	client *github.Client
	owner  string
	repo   string
	config core.GitHubConfig
}

// Option configures a Client
type Option func(*Client) error

// WithBaseURL points the client at a different API root, e.g. GitHub Enterprise or a test server
func WithBaseURL(baseURL string) Option {
	return func(c *Client) error {
		if !strings.HasSuffix(baseURL, "/") {
			baseURL += "/"
		}
		u, err := url.Parse(baseURL)
		if err != nil {
			return fmt.Errorf("invalid GitHub base URL %q: %w", baseURL, err)
		}
		c.client.BaseURL = u
		return nil
	}
}

// NewClient creates a new GitHub client
func NewClient(config core.GitHubConfig, opts ...Option) (*Client, error) {
	parts := strings.Split(config.Repository, "/")
	if len(parts) != 2 {
		return nil, fmt.Errorf("repository must be owner/repo, got %q", config.Repository)
	}

	c := &Client{
		client: NewRawClient(config.Token),
		owner:  parts[0],
		repo:   parts[1],
		config: config,
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// NewRawClient creates a new raw GitHub client
func NewRawClient(token string) *github.Client {
	ctx := context.Background()
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(ctx, ts)
	return github.NewClient(tc)
}

// CreateModule creates a milestone and returns its number.
// An existing milestone with the same title is reused.
func (c *Client) CreateModule(ctx context.Context, name string) (string, error) {
	description := fmt.Sprintf("Module for %s", name)
	milestone, resp, err := c.client.Issues.CreateMilestone(ctx, c.owner, c.repo, &github.Milestone{
		Title:       &name,
		Description: &description,
	})
	if err != nil {
		if resp != nil && resp.Response != nil && resp.StatusCode == http.StatusUnprocessableEntity {
			if number, found, findErr := c.findMilestone(ctx, name); findErr == nil && found {
				return strconv.Itoa(number), nil
			}
		}
		return "", toAPIError(http.MethodPost, c.repoPath("milestones"), resp, err)
	}

	return strconv.Itoa(milestone.GetNumber()), nil
}

// CreateIssue creates an issue and returns its number
func (c *Client) CreateIssue(ctx context.Context, title string) (string, error) {
	// Prepare issue title with optional prefix
	if c.config.IssueTitlePrefix != "" {
		title = fmt.Sprintf("%s %s", c.config.IssueTitlePrefix, title)
	}

	issue, resp, err := c.client.Issues.Create(ctx, c.owner, c.repo, &github.IssueRequest{
		Title: &title,
	})
	if err != nil {
		return "", toAPIError(http.MethodPost, c.repoPath("issues"), resp, err)
	}

	return strconv.Itoa(issue.GetNumber()), nil
}

// LinkIssueToModule assigns the issue to the milestone
func (c *Client) LinkIssueToModule(ctx context.Context, moduleID, issueID string) error {
	milestone, err := strconv.Atoi(moduleID)
	if err != nil {
		return fmt.Errorf("invalid milestone number %q: %w", moduleID, err)
	}

	number, err := strconv.Atoi(issueID)
	if err != nil {
		return fmt.Errorf("invalid issue number %q: %w", issueID, err)
	}

	_, resp, err := c.client.Issues.Edit(ctx, c.owner, c.repo, number, &github.IssueRequest{
		Milestone: &milestone,
	})
	if err != nil {
		return toAPIError(http.MethodPatch, c.repoPath("issues/"+issueID), resp, err)
	}

	return nil
}

func (c *Client) findMilestone(ctx context.Context, title string) (int, bool, error) {
	opts := &github.MilestoneListOptions{
		State:       "all",
		ListOptions: github.ListOptions{PerPage: 100},
	}

	for {
		milestones, resp, err := c.client.Issues.ListMilestones(ctx, c.owner, c.repo, opts)
		if err != nil {
			return 0, false, fmt.Errorf("failed to list milestones: %w", err)
		}

		for _, m := range milestones {
			if m.GetTitle() == title {
				return m.GetNumber(), true, nil
			}
		}

		if resp.NextPage == 0 {
			return 0, false, nil
		}
		opts.Page = resp.NextPage
	}
}

func (c *Client) repoPath(suffix string) string {
	return fmt.Sprintf("/repos/%s/%s/%s", c.owner, c.repo, suffix)
}

func toAPIError(method, path string, resp *github.Response, err error) error {
	apiErr := &core.ApiError{Method: method, Path: path, Err: err}

	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) {
		apiErr.Body = ghErr.Message
		for _, e := range ghErr.Errors {
			apiErr.Body += fmt.Sprintf("; %s %s %s", e.Resource, e.Field, e.Code)
		}
	}

	if resp != nil && resp.Response != nil {
		apiErr.StatusCode = resp.StatusCode
		if apiErr.Body == "" {
			apiErr.Body = err.Error()
		}
	}

	return apiErr
}
