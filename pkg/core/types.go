package core

import (
	"context"
	"time"
)

// WorkPackage is one top-level entry of the work breakdown structure
type WorkPackage struct {
	Name   string
	Issues []string
}

// WorkBreakdownStructure holds work packages in the order they appear in the input file
type WorkBreakdownStructure []WorkPackage

// IssueCount returns the total number of issue titles across all work packages
func (w WorkBreakdownStructure) IssueCount() int {
	n := 0
	for _, wp := range w {
		n += len(wp.Issues)
	}
	return n
}

// ModuleStatus is the lifecycle state of a module during a run
type ModuleStatus string

const (
	ModulePending ModuleStatus = "pending"
	ModuleCreated ModuleStatus = "created"
	ModuleFailed  ModuleStatus = "failed"
)

// IssueStatus is the lifecycle state of an issue during a run
type IssueStatus string

const (
	IssuePending IssueStatus = "pending"
	IssueCreated IssueStatus = "created"
	IssueLinked  IssueStatus = "linked"
	IssueFailed  IssueStatus = "failed"
)

// ModuleRecord tracks a single module through a run
type ModuleRecord struct {
	Name     string       `json:"name" yaml:"name"`
	RemoteID string       `json:"remote_id,omitempty" yaml:"remote_id,omitempty"`
	Status   ModuleStatus `json:"status" yaml:"status"`
	Err      string       `json:"error,omitempty" yaml:"error,omitempty"`
}

// IssueRecord tracks a single issue through a run
type IssueRecord struct {
	Title    string      `json:"title" yaml:"title"`
	Module   string      `json:"module" yaml:"module"`
	RemoteID string      `json:"remote_id,omitempty" yaml:"remote_id,omitempty"`
	Status   IssueStatus `json:"status" yaml:"status"`
	Err      string      `json:"error,omitempty" yaml:"error,omitempty"`
}

// RunResult is the outcome of one invocation
type RunResult struct {
	Modules     []ModuleRecord `json:"modules" yaml:"modules"`
	Issues      []IssueRecord  `json:"issues" yaml:"issues"`
	DryRun      bool           `json:"dry_run" yaml:"dry_run"`
	Interrupted bool           `json:"interrupted" yaml:"interrupted"`
	StartedAt   time.Time      `json:"started_at" yaml:"started_at"`
	FinishedAt  time.Time      `json:"finished_at" yaml:"finished_at"`
}

// NewRunResult creates pending records for every module and issue of the structure
func NewRunResult(wbs WorkBreakdownStructure) *RunResult {
	result := &RunResult{
		Modules: make([]ModuleRecord, 0, len(wbs)),
		Issues:  make([]IssueRecord, 0, wbs.IssueCount()),
	}

	for _, wp := range wbs {
		result.Modules = append(result.Modules, ModuleRecord{Name: wp.Name, Status: ModulePending})
		for _, title := range wp.Issues {
			result.Issues = append(result.Issues, IssueRecord{Title: title, Module: wp.Name, Status: IssuePending})
		}
	}

	return result
}

// Tracker is the capability set the importer needs from a project-management service
type Tracker interface {
	CreateModule(ctx context.Context, name string) (string, error)
	CreateIssue(ctx context.Context, title string) (string, error)
	LinkIssueToModule(ctx context.Context, moduleID, issueID string) error
}

// Logger is the subset of githubactions.Action used for logging
type Logger interface {
	Debugf(msg string, args ...any)
	Infof(msg string, args ...any)
	Warningf(msg string, args ...any)
	Errorf(msg string, args ...any)
}
