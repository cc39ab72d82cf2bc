// Package orchestrator replays a work breakdown structure into a tracker, one call at a time.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/ksysoev/wbs-import/pkg/core"
	"github.com/ksysoev/wbs-import/pkg/report"
)

// SkippedReason is recorded on issues skipped because their module could not be created
const SkippedReason = "module creation failed"

// Orchestrator creates modules and issues and links them, isolating failures per entity
type Orchestrator struct {
	tracker  core.Tracker
	reporter report.Reporter
	logger   core.Logger
	now      func() time.Time
}

// New creates an orchestrator. reporter receives an event for every finished entity.
func New(tracker core.Tracker, reporter report.Reporter, logger core.Logger) *Orchestrator {
	return &Orchestrator{
		tracker:  tracker,
		reporter: reporter,
		logger:   logger,
		now:      time.Now,
	}
}

// Run processes every work package in order and always returns a result.
// Per-entity errors are recorded, never returned. When ctx is cancelled the
// run stops before the next call, leaves the remaining records pending and
// marks the result as interrupted. A call cut short by the cancellation is not
// a failure: its record keeps the last status that completed.
func (o *Orchestrator) Run(ctx context.Context, wbs core.WorkBreakdownStructure) *core.RunResult {
	result := core.NewRunResult(wbs)
	result.StartedAt = o.now()

	issueOffset := 0

modules:
	for i, wp := range wbs {
		issues := result.Issues[issueOffset : issueOffset+len(wp.Issues)]
		issueOffset += len(wp.Issues)

		if ctx.Err() != nil {
			result.Interrupted = true
			break
		}

		module := &result.Modules[i]

		moduleID, err := o.tracker.CreateModule(ctx, wp.Name)
		if err != nil && ctx.Err() != nil {
			o.logger.Warningf("Module %s not created, run interrupted: %v", wp.Name, err)
			result.Interrupted = true
			break
		}
		if err != nil {
			module.Status = core.ModuleFailed
			module.Err = err.Error()
			o.logger.Errorf("Error creating module %s: %v", wp.Name, err)
			o.reporter.ModuleDone(*module)

			for j := range issues {
				issues[j].Status = core.IssueFailed
				issues[j].Err = SkippedReason
				o.reporter.IssueDone(issues[j])
			}

			continue
		}

		module.RemoteID = moduleID
		module.Status = core.ModuleCreated
		o.logger.Debugf("Created module: %s (ID: %s)", wp.Name, moduleID)
		o.reporter.ModuleDone(*module)

		for j := range issues {
			if ctx.Err() != nil {
				result.Interrupted = true
				break modules
			}

			interrupted := o.processIssue(ctx, moduleID, &issues[j])
			if issues[j].Status != core.IssuePending {
				o.reporter.IssueDone(issues[j])
			}
			if interrupted {
				result.Interrupted = true
				break modules
			}
		}
	}

	result.FinishedAt = o.now()

	return result
}

// processIssue creates and links one issue. It reports true when a call failed
// because ctx was cancelled; the record then keeps its last completed status.
func (o *Orchestrator) processIssue(ctx context.Context, moduleID string, issue *core.IssueRecord) bool {
	issueID, err := o.tracker.CreateIssue(ctx, issue.Title)
	if err != nil && ctx.Err() != nil {
		o.logger.Warningf("Issue %q not created, run interrupted: %v", issue.Title, err)
		return true
	}
	if err != nil {
		issue.Status = core.IssueFailed
		issue.Err = err.Error()
		o.logger.Errorf("Error creating issue %q in module %s: %v", issue.Title, issue.Module, err)
		return false
	}

	issue.RemoteID = issueID
	issue.Status = core.IssueCreated
	o.logger.Debugf("Created issue: %s (ID: %s)", issue.Title, issueID)

	err = o.tracker.LinkIssueToModule(ctx, moduleID, issueID)
	if err != nil && ctx.Err() != nil {
		o.logger.Warningf("Issue %s not linked to module %s, run interrupted: %v", issueID, issue.Module, err)
		return true
	}
	if err != nil {
		issue.Status = core.IssueFailed
		issue.Err = fmt.Sprintf("failed to link to module: %v", err)
		o.logger.Errorf("Error linking issue %s to module %s: %v", issueID, issue.Module, err)
		return false
	}

	issue.Status = core.IssueLinked
	o.logger.Debugf("Linked issue %s to module %s", issueID, moduleID)

	return false
}
