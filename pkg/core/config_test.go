package core

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setPlaneEnv(t *testing.T, key, slug, project, host string) {
	t.Helper()
	t.Setenv("PLANE_API_KEY", key)
	t.Setenv("PLANE_WORKSPACE_SLUG", slug)
	t.Setenv("PLANE_PROJECT_ID", project)
	t.Setenv("PLANE_HOST", host)
}

func TestLoadConfig_FromEnv(t *testing.T) {
	setPlaneEnv(t, "plane_api_0123456789abcdef", "acme", "proj-1", "https://plane.example.com/")

	cfg, err := LoadConfig(nil, false)
	require.NoError(t, err)

	assert.Equal(t, "plane_api_0123456789abcdef", cfg.APIKey)
	assert.Equal(t, "acme", cfg.WorkspaceSlug)
	assert.Equal(t, "proj-1", cfg.ProjectID)
	assert.Equal(t, "https://plane.example.com", cfg.Host, "trailing slash is trimmed")
}

func TestLoadConfig_InputsTakePrecedence(t *testing.T) {
	setPlaneEnv(t, "env-key", "env-ws", "env-proj", "https://env.example.com")

	inputs := map[string]string{
		"plane_workspace_slug": "input-ws",
		"plane_host":           "https://input.example.com",
	}

	cfg, err := LoadConfig(func(name string) string { return inputs[name] }, false)
	require.NoError(t, err)

	assert.Equal(t, "env-key", cfg.APIKey)
	assert.Equal(t, "input-ws", cfg.WorkspaceSlug)
	assert.Equal(t, "env-proj", cfg.ProjectID)
	assert.Equal(t, "https://input.example.com", cfg.Host)
}

func TestLoadConfig_Missing(t *testing.T) {
	setPlaneEnv(t, "", "acme", "", "")

	_, err := LoadConfig(nil, false)
	require.Error(t, err)

	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, []string{"PLANE_API_KEY", "PLANE_PROJECT_ID", "PLANE_HOST"}, cfgErr.Missing)
	assert.Contains(t, err.Error(), "PLANE_API_KEY, PLANE_PROJECT_ID, PLANE_HOST")
}

func TestLoadConfig_DryRunPlaceholders(t *testing.T) {
	setPlaneEnv(t, "", "acme", "", "")

	cfg, err := LoadConfig(nil, true)
	require.NoError(t, err)

	assert.Equal(t, "dry-run-api-key", cfg.APIKey)
	assert.Equal(t, "acme", cfg.WorkspaceSlug)
	assert.Equal(t, "dry-run-project", cfg.ProjectID)
	assert.Equal(t, "http://localhost", cfg.Host)
}

func TestLoadConfig_InvalidHost(t *testing.T) {
	setPlaneEnv(t, "key", "acme", "proj", "plane.example.com")

	_, err := LoadConfig(nil, false)

	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, err.Error(), "PLANE_HOST must be an absolute URL")
}

func TestLoadEnvFile(t *testing.T) {
	setPlaneEnv(t, "already-set", "", "", "")
	require.NoError(t, os.Unsetenv("PLANE_WORKSPACE_SLUG"))

	path := filepath.Join(t.TempDir(), "plane.env")
	content := "PLANE_API_KEY=from-file\nPLANE_WORKSPACE_SLUG=file-ws\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	require.NoError(t, LoadEnvFile(path))

	assert.Equal(t, "already-set", os.Getenv("PLANE_API_KEY"), "existing variables are not overridden")
	assert.Equal(t, "file-ws", os.Getenv("PLANE_WORKSPACE_SLUG"))
}

func TestLoadEnvFile_Missing(t *testing.T) {
	t.Chdir(t.TempDir())

	assert.NoError(t, LoadEnvFile(""), "missing default file is ignored")

	err := LoadEnvFile(filepath.Join(t.TempDir(), "nope.env"))
	var cfgErr *ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestLoadGitHubConfig(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "ghp_token")
	t.Setenv("GITHUB_REPOSITORY", "octo/planning")

	cfg, err := LoadGitHubConfig(nil, "[WBS]")
	require.NoError(t, err)
	assert.Equal(t, GitHubConfig{Token: "ghp_token", Repository: "octo/planning", IssueTitlePrefix: "[WBS]"}, cfg)

	t.Setenv("GITHUB_REPOSITORY", "planning")
	_, err = LoadGitHubConfig(nil, "")
	assert.ErrorContains(t, err, "must be owner/repo")

	t.Setenv("GITHUB_TOKEN", "")
	t.Setenv("GITHUB_REPOSITORY", "")
	_, err = LoadGitHubConfig(nil, "")
	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, []string{"GITHUB_TOKEN", "GITHUB_REPOSITORY"}, cfgErr.Missing)
}

func TestConfigString_MasksKey(t *testing.T) {
	cfg := Config{APIKey: "plane_api_secretvalue1234", WorkspaceSlug: "acme", ProjectID: "p", Host: "https://h"}

	s := cfg.String()
	assert.NotContains(t, s, "secretvalue")
	assert.Contains(t, s, "*1234")
	assert.Equal(t, "***", MaskSecret("abc"))
}
