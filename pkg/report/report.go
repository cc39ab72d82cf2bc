// Package report renders run results to the console, files and the GitHub Actions runtime.
package report

import (
	"errors"

	"github.com/ksysoev/wbs-import/pkg/core"
)

// Reporter receives events while a run progresses and the final result at the end
type Reporter interface {
	ModuleDone(module core.ModuleRecord)
	IssueDone(issue core.IssueRecord)
	Finish(result *core.RunResult) error
}

// Summary holds the counts shown at the end of a run
type Summary struct {
	ModulesTotal   int `json:"modules_total" yaml:"modules_total"`
	ModulesCreated int `json:"modules_created" yaml:"modules_created"`
	ModulesFailed  int `json:"modules_failed" yaml:"modules_failed"`
	ModulesPending int `json:"modules_pending" yaml:"modules_pending"`
	IssuesTotal    int `json:"issues_total" yaml:"issues_total"`
	IssuesCreated  int `json:"issues_created" yaml:"issues_created"`
	IssuesLinked   int `json:"issues_linked" yaml:"issues_linked"`
	IssuesFailed   int `json:"issues_failed" yaml:"issues_failed"`
	IssuesPending  int `json:"issues_pending" yaml:"issues_pending"`
}

// Failures returns the number of failed entities
func (s Summary) Failures() int {
	return s.ModulesFailed + s.IssuesFailed
}

// Summarize counts records by status. IssuesCreated counts every issue that
// exists remotely, linked or not.
func Summarize(result *core.RunResult) Summary {
	s := Summary{
		ModulesTotal: len(result.Modules),
		IssuesTotal:  len(result.Issues),
	}

	for _, m := range result.Modules {
		switch m.Status {
		case core.ModuleCreated:
			s.ModulesCreated++
		case core.ModuleFailed:
			s.ModulesFailed++
		default:
			s.ModulesPending++
		}
	}

	for _, i := range result.Issues {
		switch i.Status {
		case core.IssueLinked:
			s.IssuesCreated++
			s.IssuesLinked++
		case core.IssueCreated:
			s.IssuesCreated++
		case core.IssueFailed:
			s.IssuesFailed++
			if i.RemoteID != "" {
				s.IssuesCreated++
			}
		default:
			s.IssuesPending++
		}
	}

	return s
}

// Multi fans events out to several reporters
type Multi []Reporter

func (m Multi) ModuleDone(module core.ModuleRecord) {
	for _, r := range m {
		r.ModuleDone(module)
	}
}

func (m Multi) IssueDone(issue core.IssueRecord) {
	for _, r := range m {
		r.IssueDone(issue)
	}
}

// Finish calls every reporter and joins their errors
func (m Multi) Finish(result *core.RunResult) error {
	var errs []error
	for _, r := range m {
		if err := r.Finish(result); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
