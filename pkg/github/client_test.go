package github

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ksysoev/wbs-import/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ core.Tracker = (*Client)(nil)

func newTestClient(t *testing.T, prefix string, mux *http.ServeMux) *Client {
	t.Helper()

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client, err := NewClient(core.GitHubConfig{
		Token:            "ghp_test",
		Repository:       "octo/planning",
		IssueTitlePrefix: prefix,
	}, WithBaseURL(srv.URL))
	require.NoError(t, err)

	return client
}

func decodeBody(t *testing.T, r *http.Request) map[string]any {
	t.Helper()

	data, err := io.ReadAll(r.Body)
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(data, &body))
	return body
}

func TestNewClient_InvalidRepository(t *testing.T) {
	_, err := NewClient(core.GitHubConfig{Token: "t", Repository: "planning"})
	assert.ErrorContains(t, err, "owner/repo")
}

func TestCreateModule(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /repos/octo/planning/milestones", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer ghp_test", r.Header.Get("Authorization"))
		body := decodeBody(t, r)
		assert.Equal(t, "WP1", body["title"])
		assert.Equal(t, "Module for WP1", body["description"])

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"number": 3, "title": "WP1"}`))
	})

	client := newTestClient(t, "", mux)

	id, err := client.CreateModule(context.Background(), "WP1")
	require.NoError(t, err)
	assert.Equal(t, "3", id)
}

func TestCreateModule_ReusesExistingMilestone(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /repos/octo/planning/milestones", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message": "Validation Failed", "errors": [{"resource": "Milestone", "code": "already_exists", "field": "title"}]}`))
	})
	mux.HandleFunc("GET /repos/octo/planning/milestones", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "all", r.URL.Query().Get("state"))
		_, _ = w.Write([]byte(`[{"number": 1, "title": "Other"}, {"number": 7, "title": "WP1"}]`))
	})

	client := newTestClient(t, "", mux)

	id, err := client.CreateModule(context.Background(), "WP1")
	require.NoError(t, err)
	assert.Equal(t, "7", id)
}

func TestCreateModule_ServerError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /repos/octo/planning/milestones", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"message": "internal"}`))
	})

	client := newTestClient(t, "", mux)

	_, err := client.CreateModule(context.Background(), "WP2")

	var apiErr *core.ApiError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Equal(t, "internal", apiErr.Body)
	assert.Equal(t, "/repos/octo/planning/milestones", apiErr.Path)
}

func TestCreateIssue_WithPrefix(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /repos/octo/planning/issues", func(w http.ResponseWriter, r *http.Request) {
		body := decodeBody(t, r)
		assert.Equal(t, "[WBS] Write docs", body["title"])

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"number": 12}`))
	})

	client := newTestClient(t, "[WBS]", mux)

	id, err := client.CreateIssue(context.Background(), "Write docs")
	require.NoError(t, err)
	assert.Equal(t, "12", id)
}

func TestLinkIssueToModule(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("PATCH /repos/octo/planning/issues/12", func(w http.ResponseWriter, r *http.Request) {
		body := decodeBody(t, r)
		assert.Equal(t, float64(3), body["milestone"])

		_, _ = w.Write([]byte(`{"number": 12, "milestone": {"number": 3}}`))
	})

	client := newTestClient(t, "", mux)

	require.NoError(t, client.LinkIssueToModule(context.Background(), "3", "12"))
}

func TestLinkIssueToModule_InvalidIDs(t *testing.T) {
	client := newTestClient(t, "", http.NewServeMux())

	assert.ErrorContains(t, client.LinkIssueToModule(context.Background(), "abc", "12"), "invalid milestone number")
	assert.ErrorContains(t, client.LinkIssueToModule(context.Background(), "3", "xyz"), "invalid issue number")
}
