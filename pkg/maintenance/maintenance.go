// Package maintenance holds project-wide operations on a Plane project: export, cleanup and bulk delete.
package maintenance

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/ksysoev/wbs-import/pkg/core"
	"github.com/ksysoev/wbs-import/pkg/plane"
	"gopkg.in/yaml.v3"
)

// Client is the part of plane.Client the maintenance operations use
type Client interface {
	ListModules(ctx context.Context) ([]plane.Module, error)
	ListModuleIssues(ctx context.Context, moduleID string) ([]plane.Issue, error)
	ListIssues(ctx context.Context) ([]plane.Issue, error)
	ListIssueComments(ctx context.Context, issueID string) ([]plane.Comment, error)
	DeleteIssue(ctx context.Context, issueID string) error
	DeleteModule(ctx context.Context, moduleID string) error
}

// ExportedComment is a comment in an export file
type ExportedComment struct {
	Text      string `json:"text" yaml:"text"`
	CreatedAt string `json:"created_at" yaml:"created_at"`
}

// ExportedIssue is an issue in an export file
type ExportedIssue struct {
	Name     string            `json:"name" yaml:"name"`
	ID       string            `json:"id" yaml:"id"`
	Comments []ExportedComment `json:"comments" yaml:"comments"`
}

// Export maps module names to their issues
type Export map[string][]ExportedIssue

// Format selects the encoding of an export
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Stats counts the outcome of a bulk delete
type Stats struct {
	ModulesDeleted int
	IssuesDeleted  int
	Failures       int
}

// Collect reads every module, its issues and their comments
func Collect(ctx context.Context, client Client) (Export, error) {
	modules, err := client.ListModules(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list modules: %w", err)
	}

	export := make(Export, len(modules))
	for _, module := range modules {
		issues, err := client.ListModuleIssues(ctx, module.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list issues of module %s: %w", module.Name, err)
		}

		exported := make([]ExportedIssue, 0, len(issues))
		for _, issue := range issues {
			comments, err := client.ListIssueComments(ctx, issue.ID)
			if err != nil {
				return nil, fmt.Errorf("failed to list comments of issue %s: %w", issue.ID, err)
			}

			ei := ExportedIssue{Name: issue.Name, ID: issue.ID, Comments: make([]ExportedComment, 0, len(comments))}
			for _, c := range comments {
				ei.Comments = append(ei.Comments, ExportedComment{Text: c.Text(), CreatedAt: c.CreatedAt})
			}
			exported = append(exported, ei)
		}

		export[module.Name] = exported
	}

	return export, nil
}

// Write encodes the export
func (e Export) Write(w io.Writer, format Format) error {
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(e); err != nil {
			return fmt.Errorf("failed to encode export: %w", err)
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(e); err != nil {
			return fmt.Errorf("failed to encode export: %w", err)
		}
		return nil
	}
}

// Cleanup deletes every issue of every module and then the module itself.
// Failures on single entities are logged and counted; only a failure to list modules aborts.
func Cleanup(ctx context.Context, client Client, logger core.Logger) (Stats, error) {
	var stats Stats

	modules, err := client.ListModules(ctx)
	if err != nil {
		return stats, fmt.Errorf("failed to list modules: %w", err)
	}

	logger.Infof("Found %d modules to clean up", len(modules))

	for _, module := range modules {
		if ctx.Err() != nil {
			return stats, ctx.Err()
		}

		issues, err := client.ListModuleIssues(ctx, module.ID)
		if err != nil {
			logger.Errorf("Error processing module %s: %v", module.Name, err)
			stats.Failures++
			continue
		}

		logger.Infof("Found %d issues in module %s", len(issues), module.Name)
		deleteIssues(ctx, client, logger, issues, &stats)

		if err := client.DeleteModule(ctx, module.ID); err != nil {
			logger.Errorf("Error deleting module %s: %v", module.Name, err)
			stats.Failures++
			continue
		}

		logger.Infof("Deleted module: %s", module.Name)
		stats.ModulesDeleted++
	}

	return stats, nil
}

// DeleteAllIssues deletes every issue in the project regardless of module
func DeleteAllIssues(ctx context.Context, client Client, logger core.Logger) (Stats, error) {
	var stats Stats

	issues, err := client.ListIssues(ctx)
	if err != nil {
		return stats, fmt.Errorf("failed to list issues: %w", err)
	}

	logger.Infof("Found %d issues in project to delete", len(issues))
	deleteIssues(ctx, client, logger, issues, &stats)

	return stats, nil
}

func deleteIssues(ctx context.Context, client Client, logger core.Logger, issues []plane.Issue, stats *Stats) {
	for _, issue := range issues {
		if ctx.Err() != nil {
			return
		}

		if issue.ID == "" {
			logger.Warningf("Skipping issue without ID: %s", issue.Name)
			continue
		}

		if err := client.DeleteIssue(ctx, issue.ID); err != nil {
			logger.Errorf("Error deleting issue %s: %v", issue.Name, err)
			stats.Failures++
			continue
		}

		logger.Debugf("Deleted issue: %s (ID: %s)", issue.Name, issue.ID)
		stats.IssuesDeleted++
	}
}
