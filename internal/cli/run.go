package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/ksysoev/wbs-import/pkg/core"
	"github.com/ksysoev/wbs-import/pkg/dryrun"
	"github.com/ksysoev/wbs-import/pkg/github"
	"github.com/ksysoev/wbs-import/pkg/maintenance"
	"github.com/ksysoev/wbs-import/pkg/orchestrator"
	"github.com/ksysoev/wbs-import/pkg/plane"
	"github.com/ksysoev/wbs-import/pkg/report"
	"github.com/sethvargo/go-githubactions"
)

const defaultGitHubAPIURL = "https://api.github.com"

// logger hides debug lines outside GitHub Actions unless debug logging was requested.
// Inside Actions the runner decides whether ::debug:: lines are shown.
type logger struct {
	*githubactions.Action
	debug bool
}

func (l *logger) Debugf(msg string, args ...any) {
	if l.debug {
		l.Action.Debugf(msg, args...)
	}
}

func run(ctx context.Context, opts *options, out io.Writer, getenv func(string) string) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	inActions := getenv("GITHUB_ACTIONS") == "true"
	action := githubactions.New(githubactions.WithWriter(out), githubactions.WithGetenv(getenv))
	log := &logger{Action: action, debug: inActions || strings.EqualFold(opts.logLevel, "debug")}

	if err := core.LoadEnvFile(opts.envFile); err != nil {
		return err
	}

	if !opts.importMode {
		return runMaintenance(ctx, opts, action, log)
	}

	return runImport(ctx, opts, out, action, log, inActions)
}

func runImport(ctx context.Context, opts *options, out io.Writer, action *githubactions.Action, log *logger, inActions bool) error {
	wbs, err := core.ParseWBS(opts.input)
	if err != nil {
		return err
	}

	tracker, err := newTracker(ctx, opts, action, log)
	if err != nil {
		return err
	}

	log.Infof("Loaded %d work packages with %d issues", len(wbs), wbs.IssueCount())
	if opts.dryRun {
		log.Infof("Dry run mode - no API calls will be made")
	}

	reporters := report.Multi{report.NewConsole(out)}
	if opts.reportPath != "" {
		reporters = append(reporters, report.NewFile(opts.reportPath))
	}
	if inActions {
		reporters = append(reporters, report.NewActions(action))
	}

	result := orchestrator.New(tracker, reporters, log).Run(ctx, wbs)
	result.DryRun = opts.dryRun

	if result.Interrupted {
		log.Warningf("Interrupted, reporting partial results")
	}

	// The run itself completed; a failing sink does not change the exit status.
	if err := reporters.Finish(result); err != nil {
		log.Errorf("Failed to write report: %v", err)
	}

	return nil
}

// newTracker selects the tracker once: dry-run, Plane or GitHub
func newTracker(ctx context.Context, opts *options, action *githubactions.Action, log *logger) (core.Tracker, error) {
	if opts.dryRun {
		cfg, err := core.LoadConfig(action.GetInput, true)
		if err != nil {
			return nil, err
		}
		log.Debugf("Loaded configuration: %s", cfg)
		return dryrun.NewTracker(log), nil
	}

	switch opts.tracker {
	case trackerPlane:
		return newPlaneClient(ctx, action, log)
	case trackerGitHub:
		cfg, err := core.LoadGitHubConfig(action.GetInput, opts.issuePrefix)
		if err != nil {
			return nil, err
		}

		var ghOpts []github.Option
		if apiURL := action.Getenv("GITHUB_API_URL"); apiURL != "" && apiURL != defaultGitHubAPIURL {
			ghOpts = append(ghOpts, github.WithBaseURL(apiURL))
		}

		log.Debugf("Using GitHub repository %s", cfg.Repository)
		return github.NewClient(cfg, ghOpts...)
	default:
		return nil, &core.ConfigurationError{Reason: fmt.Sprintf("unknown tracker %q, expected plane or github", opts.tracker)}
	}
}

func newPlaneClient(ctx context.Context, action *githubactions.Action, log *logger) (*plane.Client, error) {
	cfg, err := core.LoadConfig(action.GetInput, false)
	if err != nil {
		return nil, err
	}
	log.Debugf("Loaded configuration: %s", cfg)

	client := plane.NewClient(cfg, plane.WithLogger(log))
	if err := client.Validate(ctx); err != nil {
		return nil, err
	}

	log.Infof("Connected to workspace %s, project %s", cfg.WorkspaceSlug, cfg.ProjectID)

	return client, nil
}

func runMaintenance(ctx context.Context, opts *options, action *githubactions.Action, log *logger) error {
	if opts.dryRun {
		return &core.ConfigurationError{Reason: "--dry-run only applies to imports"}
	}
	if opts.tracker != trackerPlane {
		return &core.ConfigurationError{Reason: "export and cleanup are only supported for the plane tracker"}
	}

	var maintain func(client *plane.Client) error

	switch {
	case opts.exportPath != "":
		maintain = func(client *plane.Client) error {
			return exportTo(ctx, client, opts.exportPath, log)
		}
	case opts.cleanup:
		maintain = func(client *plane.Client) error {
			log.Infof("Cleaning up project - deleting all issues and modules")
			stats, err := maintenance.Cleanup(ctx, client, log)
			if err != nil {
				return err
			}
			log.Infof("Deleted %d modules and %d issues, %d failures", stats.ModulesDeleted, stats.IssuesDeleted, stats.Failures)
			return nil
		}
	case opts.deleteAllIssues:
		maintain = func(client *plane.Client) error {
			log.Infof("Deleting all issues in the project (regardless of module association)")
			stats, err := maintenance.DeleteAllIssues(ctx, client, log)
			if err != nil {
				return err
			}
			log.Infof("Deleted %d issues, %d failures", stats.IssuesDeleted, stats.Failures)
			return nil
		}
	default:
		return &core.ConfigurationError{Reason: "one of --input, --export, --cleanup or --delete-all-issues is required"}
	}

	client, err := newPlaneClient(ctx, action, log)
	if err != nil {
		return err
	}

	return maintain(client)
}

func exportTo(ctx context.Context, client maintenance.Client, path string, log *logger) error {
	export, err := maintenance.Collect(ctx, client)
	if err != nil {
		return err
	}

	format := maintenance.FormatJSON
	if ext := strings.ToLower(filepath.Ext(path)); ext == ".yaml" || ext == ".yml" {
		format = maintenance.FormatYAML
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	defer f.Close()

	if err := export.Write(f, format); err != nil {
		return err
	}

	log.Infof("Exported %d modules to %s", len(export), path)

	return nil
}
