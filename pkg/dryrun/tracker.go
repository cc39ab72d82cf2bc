// Package dryrun provides a tracker that simulates every call without touching the network.
package dryrun

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/ksysoev/wbs-import/pkg/core"
)

// Call is a single simulated tracker call
type Call struct {
	Op       string
	Name     string
	ModuleID string
	IssueID  string
}

const (
	OpCreateModule = "create_module"
	OpCreateIssue  = "create_issue"
	OpLink         = "link"
)

// Tracker implements core.Tracker with synthesized identifiers
type Tracker struct {
	logger core.Logger
	newID  func() string

	mu    sync.Mutex
	calls []Call
}

// NewTracker creates a dry-run tracker. logger may be nil.
func NewTracker(logger core.Logger) *Tracker {
	return &Tracker{
		logger: logger,
		newID:  func() string { return "dry-" + uuid.NewString() },
	}
}

// CreateModule pretends to create a module
func (t *Tracker) CreateModule(_ context.Context, name string) (string, error) {
	id := t.newID()
	t.record(Call{Op: OpCreateModule, Name: name, ModuleID: id})
	t.debugf("Would create module: %s", name)
	return id, nil
}

// CreateIssue pretends to create an issue
func (t *Tracker) CreateIssue(_ context.Context, title string) (string, error) {
	id := t.newID()
	t.record(Call{Op: OpCreateIssue, Name: title, IssueID: id})
	t.debugf("  Would create issue: %s", title)
	return id, nil
}

// LinkIssueToModule pretends to link an issue to a module
func (t *Tracker) LinkIssueToModule(_ context.Context, moduleID, issueID string) error {
	t.record(Call{Op: OpLink, ModuleID: moduleID, IssueID: issueID})
	return nil
}

// Calls returns a copy of every simulated call in order
func (t *Tracker) Calls() []Call {
	t.mu.Lock()
	defer t.mu.Unlock()

	calls := make([]Call, len(t.calls))
	copy(calls, t.calls)
	return calls
}

func (t *Tracker) record(c Call) {
	t.mu.Lock()
	t.calls = append(t.calls, c)
	t.mu.Unlock()
}

func (t *Tracker) debugf(msg string, args ...any) {
	if t.logger != nil {
		t.logger.Debugf(msg, args...)
	}
}
