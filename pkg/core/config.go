package core

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// DefaultEnvFile is loaded when no explicit env file is given
const DefaultEnvFile = ".env"

// Config represents the Plane connection settings, loaded once at startup
type Config struct {
	APIKey        string
	WorkspaceSlug string
	ProjectID     string
	Host          string
}

// GitHubConfig represents the settings of the GitHub tracker backend
type GitHubConfig struct {
	Token            string
	Repository       string
	IssueTitlePrefix string
}

// InputFunc looks up a named action input, returning "" when it is not set
type InputFunc func(name string) string

type setting struct {
	input string
	env   string
	dry   string
	dest  *string
}

// LoadEnvFile loads variables from a dotenv file without overriding ones already set.
// A missing default file is not an error.
func LoadEnvFile(path string) error {
	explicit := path != ""
	if !explicit {
		path = DefaultEnvFile
	}

	if err := godotenv.Load(path); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return &ConfigurationError{Reason: fmt.Sprintf("failed to load env file %s: %v", path, err)}
	}

	return nil
}

// LoadConfig reads the Plane settings, trying action inputs first and the environment second.
// In dry-run mode missing values are replaced with placeholders.
func LoadConfig(getInput InputFunc, dryRun bool) (Config, error) {
	var cfg Config

	settings := []setting{
		{input: "plane_api_key", env: "PLANE_API_KEY", dry: "dry-run-api-key", dest: &cfg.APIKey},
		{input: "plane_workspace_slug", env: "PLANE_WORKSPACE_SLUG", dry: "dry-run-workspace", dest: &cfg.WorkspaceSlug},
		{input: "plane_project_id", env: "PLANE_PROJECT_ID", dry: "dry-run-project", dest: &cfg.ProjectID},
		{input: "plane_host", env: "PLANE_HOST", dry: "http://localhost", dest: &cfg.Host},
	}

	var missing []string
	for _, s := range settings {
		*s.dest = lookup(getInput, s.input, s.env)
		if *s.dest != "" {
			continue
		}
		if dryRun {
			*s.dest = s.dry
			continue
		}
		missing = append(missing, s.env)
	}

	if len(missing) > 0 {
		return Config{}, &ConfigurationError{Missing: missing}
	}

	cfg.Host = strings.TrimRight(cfg.Host, "/")
	if u, err := url.Parse(cfg.Host); err != nil || u.Scheme == "" || u.Host == "" {
		return Config{}, &ConfigurationError{Reason: fmt.Sprintf("PLANE_HOST must be an absolute URL, got %q", cfg.Host)}
	}

	return cfg, nil
}

// LoadGitHubConfig reads the settings of the GitHub tracker backend
func LoadGitHubConfig(getInput InputFunc, issueTitlePrefix string) (GitHubConfig, error) {
	cfg := GitHubConfig{
		Token:            lookup(getInput, "github_token", "GITHUB_TOKEN"),
		Repository:       lookup(getInput, "github_repository", "GITHUB_REPOSITORY"),
		IssueTitlePrefix: issueTitlePrefix,
	}

	var missing []string
	if cfg.Token == "" {
		missing = append(missing, "GITHUB_TOKEN")
	}
	if cfg.Repository == "" {
		missing = append(missing, "GITHUB_REPOSITORY")
	}
	if len(missing) > 0 {
		return GitHubConfig{}, &ConfigurationError{Missing: missing}
	}

	if parts := strings.Split(cfg.Repository, "/"); len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return GitHubConfig{}, &ConfigurationError{Reason: fmt.Sprintf("GITHUB_REPOSITORY must be owner/repo, got %q", cfg.Repository)}
	}

	return cfg, nil
}

// String renders the configuration with the API key masked
func (c Config) String() string {
	return fmt.Sprintf("host=%s workspace=%s project=%s api_key=%s", c.Host, c.WorkspaceSlug, c.ProjectID, MaskSecret(c.APIKey))
}

// MaskSecret hides all but the last four characters of a secret
func MaskSecret(s string) string {
	if len(s) <= 4 {
		return strings.Repeat("*", len(s))
	}
	return strings.Repeat("*", len(s)-4) + s[len(s)-4:]
}

func lookup(getInput InputFunc, input, env string) string {
	if getInput != nil {
		if v := strings.TrimSpace(getInput(input)); v != "" {
			return v
		}
	}
	return strings.TrimSpace(os.Getenv(env))
}
