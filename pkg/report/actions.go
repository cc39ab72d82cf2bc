package report

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ksysoev/wbs-import/pkg/core"
	"github.com/sethvargo/go-githubactions"
)

// Actions publishes the result as step outputs and a step summary when running inside GitHub Actions
type Actions struct {
	action *githubactions.Action
}

// NewActions creates a GitHub Actions reporter
func NewActions(action *githubactions.Action) *Actions {
	return &Actions{action: action}
}

func (a *Actions) ModuleDone(module core.ModuleRecord) {
	if module.Status == core.ModuleFailed {
		a.action.Warningf("Module %s failed: %s", module.Name, module.Err)
	}
}

func (a *Actions) IssueDone(issue core.IssueRecord) {
	if issue.Status == core.IssueFailed {
		a.action.Warningf("Issue %q in %s failed: %s", issue.Title, issue.Module, issue.Err)
	}
}

// Finish sets the modules_created, issues_linked and failures outputs and appends a summary table
func (a *Actions) Finish(result *core.RunResult) error {
	s := Summarize(result)

	a.action.SetOutput("modules_created", strconv.Itoa(s.ModulesCreated))
	a.action.SetOutput("issues_linked", strconv.Itoa(s.IssuesLinked))
	a.action.SetOutput("failures", strconv.Itoa(s.Failures()))

	a.action.AddStepSummary(markdownSummary(result, s))

	return nil
}

func markdownSummary(result *core.RunResult, s Summary) string {
	var b strings.Builder

	b.WriteString("### Work breakdown import")
	if result.DryRun {
		b.WriteString(" (dry run)")
	}
	b.WriteString("\n\n| | Created | Linked | Failed | Total |\n|---|---|---|---|---|\n")
	fmt.Fprintf(&b, "| Modules | %d | - | %d | %d |\n", s.ModulesCreated, s.ModulesFailed, s.ModulesTotal)
	fmt.Fprintf(&b, "| Issues | %d | %d | %d | %d |\n", s.IssuesCreated, s.IssuesLinked, s.IssuesFailed, s.IssuesTotal)

	if result.Interrupted {
		b.WriteString("\n> Run was interrupted before all entities were processed.\n")
	}

	if s.Failures() > 0 {
		b.WriteString("\n**Failures**\n\n")
		for _, m := range result.Modules {
			if m.Status == core.ModuleFailed {
				fmt.Fprintf(&b, "- module `%s`: %s\n", m.Name, m.Err)
			}
		}
		for _, i := range result.Issues {
			if i.Status == core.IssueFailed {
				fmt.Fprintf(&b, "- issue `%s` (%s): %s\n", i.Title, i.Module, i.Err)
			}
		}
	}

	return b.String()
}
