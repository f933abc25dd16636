// Package plans orchestrates the creation of a customized QA test-plan
// spreadsheet for a ticket: fetch the ticket, resolve its platform, build the
// mutation plan, copy the template, apply the plan, and report back on the
// ticket.
package plans

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"qaplan-backend/internal/customize"
	"qaplan-backend/internal/lock"
	"qaplan-backend/internal/platform"
	"qaplan-backend/internal/runs"
	"qaplan-backend/internal/shared/metrics"
	"qaplan-backend/internal/shared/telemetry"
	"qaplan-backend/internal/sheetplan"
	"qaplan-backend/internal/sheets"
	"qaplan-backend/internal/ticket"
)

// lockTTL bounds how long a crashed run can block later deliveries for the
// same ticket.
const lockTTL = 60 * time.Second

// Service coordinates one customization run end to end.
type Service struct {
	Tickets    ticket.Source
	Store      sheets.Store
	Customizer *customize.Customizer
	Runs       runs.Repo
	Locker     lock.Locker
	Resolver   platform.Resolver

	TemplateID string
	FolderID   string
}

// PlanResult is the outcome reported to callers.
type PlanResult struct {
	IssueKey   string                              `json:"issueKey"`
	DocumentID string                              `json:"documentId,omitempty"`
	URL        string                              `json:"url,omitempty"`
	Platform   string                              `json:"platform,omitempty"`
	Status     customize.Status                    `json:"status"`
	Sections   map[string]customize.SectionOutcome `json:"sections,omitempty"`
	Commented  bool                                `json:"commented"`
	Detail     string                              `json:"detail,omitempty"`
}

// CreatePlan runs the whole pipeline for one ticket. Exactly one document is
// created per ticket: concurrent deliveries are serialized by a short lease on
// the issue key, and a pre-existing document short-circuits the run as
// skipped. A ticket fetch failure degrades to a minimal snapshot rather than
// aborting, and a comment failure degrades the status rather than undoing the
// document.
func (s *Service) CreatePlan(ctx context.Context, issueKey string) (PlanResult, error) {
	issueKey = strings.TrimSpace(issueKey)
	if issueKey == "" {
		return PlanResult{}, ErrMissingIssueKey
	}

	metrics.IncPlanRunsStarted()
	startedAt := time.Now()
	defer func() {
		metrics.ObservePlanRunDurationMs(float64(time.Since(startedAt).Microseconds()) / 1000.0)
	}()

	release, err := s.Locker.Acquire(ctx, issueKey, lockTTL)
	if err != nil {
		if errors.Is(err, lock.ErrHeld) {
			return PlanResult{}, ErrInProgress
		}
		return PlanResult{}, err
	}
	defer release()

	if existing, err := s.Store.FindExisting(ctx, issueKey); err != nil {
		return PlanResult{}, err
	} else if existing != "" {
		telemetry.Info("plans.duplicate_skipped", map[string]any{
			"issue_key":   issueKey,
			"document_id": existing,
		})
		result := PlanResult{
			IssueKey:   issueKey,
			DocumentID: existing,
			URL:        sheets.URL(existing),
			Status:     customize.StatusSkipped,
			Detail:     "a test plan already exists for this ticket",
		}
		metrics.IncPlanRunsSkipped()
		s.recordRun(ctx, result)
		return result, nil
	}

	snap, err := s.Tickets.FetchIssue(ctx, issueKey)
	if err != nil {
		telemetry.Warn("plans.fetch_failed", map[string]any{
			"issue_key": issueKey,
			"error":     err.Error(),
		})
		snap = ticket.Fallback(issueKey)
	}

	p := s.Resolver.Resolve(snap.Labels)
	registry := sheetplan.Registry()
	sections := BuildSections(snap, registry)
	plan := sheetplan.Build(registry, sections, p)

	documentID, err := s.Store.CopyTemplate(ctx, s.TemplateID, s.FolderID, issueKey+" - QA Test Plan")
	if err != nil {
		result := PlanResult{
			IssueKey: issueKey,
			Platform: p.String(),
			Status:   customize.StatusFailed,
			Detail:   err.Error(),
		}
		metrics.IncPlanRunsFailed()
		s.recordRun(ctx, result)
		return result, err
	}

	applied := s.Customizer.Apply(ctx, issueKey, documentID, plan)
	result := PlanResult{
		IssueKey:   issueKey,
		DocumentID: documentID,
		URL:        applied.URL,
		Platform:   p.String(),
		Status:     applied.Status,
		Sections:   applied.Sections,
	}

	comment := "QA Test Plan has been created: " + applied.URL
	if err := s.Tickets.PostComment(ctx, issueKey, comment); err != nil {
		telemetry.Warn("plans.comment_failed", map[string]any{
			"issue_key": issueKey,
			"error":     err.Error(),
		})
		result.Detail = "ticket comment failed: " + err.Error()
		if result.Status == customize.StatusSuccess {
			result.Status = customize.StatusPartialSuccess
		}
	} else {
		result.Commented = true
	}

	telemetry.Info("plans.run_complete", map[string]any{
		"issue_key":   issueKey,
		"document_id": documentID,
		"platform":    result.Platform,
		"status":      string(result.Status),
	})
	if result.Status == customize.StatusFailed {
		metrics.IncPlanRunsFailed()
	} else {
		metrics.IncPlanRunsCompleted()
	}
	s.recordRun(ctx, result)
	return result, nil
}

// RunsByIssue lists previous runs for an issue, newest first.
func (s *Service) RunsByIssue(ctx context.Context, issueKey string, limit int) ([]runs.Run, error) {
	issueKey = strings.TrimSpace(issueKey)
	if issueKey == "" {
		return nil, ErrMissingIssueKey
	}
	return s.Runs.ListByIssue(ctx, issueKey, limit)
}

// recordRun persists the outcome; persistence failures are logged, not
// surfaced, so an audit-trail outage never blocks plan creation.
func (s *Service) recordRun(ctx context.Context, result PlanResult) {
	var sections string
	if len(result.Sections) > 0 {
		if data, err := json.Marshal(result.Sections); err == nil {
			sections = string(data)
		}
	}
	run := runs.Run{
		ID:         uuid.NewString(),
		IssueKey:   result.IssueKey,
		DocumentID: result.DocumentID,
		URL:        result.URL,
		Platform:   result.Platform,
		Status:     string(result.Status),
		Sections:   sections,
		Detail:     result.Detail,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.Runs.Create(ctx, run); err != nil {
		telemetry.Error("plans.record_run_failed", map[string]any{
			"issue_key": result.IssueKey,
			"error":     err.Error(),
		})
	}
}
