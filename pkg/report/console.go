package report

import (
	"fmt"
	"io"

	"github.com/ksysoev/wbs-import/pkg/core"
)

// Console writes progress lines and a final summary to a writer
type Console struct {
	w io.Writer
}

// NewConsole creates a console reporter
func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

func (c *Console) ModuleDone(module core.ModuleRecord) {
	switch module.Status {
	case core.ModuleCreated:
		fmt.Fprintf(c.w, "Created module: %s (ID: %s)\n", module.Name, module.RemoteID)
	case core.ModuleFailed:
		fmt.Fprintf(c.w, "Failed module: %s\n", module.Name)
	}
}

func (c *Console) IssueDone(issue core.IssueRecord) {
	switch issue.Status {
	case core.IssueLinked:
		fmt.Fprintf(c.w, "  Created issue: %s (ID: %s)\n", issue.Title, issue.RemoteID)
	case core.IssueFailed:
		fmt.Fprintf(c.w, "  Failed issue: %s\n", issue.Title)
	}
}

// Finish prints the summary block, followed by every failed entity and its error
func (c *Console) Finish(result *core.RunResult) error {
	s := Summarize(result)

	title := "Summary"
	if result.DryRun {
		title += " (dry run)"
	}

	fmt.Fprintf(c.w, "\n%s\n", title)
	fmt.Fprintf(c.w, "  Modules: %d created, %d failed (of %d)\n", s.ModulesCreated, s.ModulesFailed, s.ModulesTotal)
	fmt.Fprintf(c.w, "  Issues:  %d created, %d linked, %d failed (of %d)\n", s.IssuesCreated, s.IssuesLinked, s.IssuesFailed, s.IssuesTotal)

	if result.Interrupted {
		fmt.Fprintf(c.w, "  Interrupted: %d modules and %d issues not processed\n", s.ModulesPending, s.IssuesPending)
	}

	if s.Failures() == 0 {
		return nil
	}

	fmt.Fprintln(c.w, "\nFailures:")
	for _, m := range result.Modules {
		if m.Status == core.ModuleFailed {
			fmt.Fprintf(c.w, "  module %s: %s\n", m.Name, m.Err)
		}
	}
	for _, i := range result.Issues {
		if i.Status == core.IssueFailed {
			fmt.Fprintf(c.w, "  issue %q (%s): %s\n", i.Title, i.Module, i.Err)
		}
	}

	return nil
}
