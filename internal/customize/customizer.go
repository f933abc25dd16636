// Package customize executes mutation plans against a document store with
// per-section fault isolation and reports a structured outcome per section.
package customize

import (
	"context"

	"qaplan-backend/internal/sheetplan"
	"qaplan-backend/internal/sheets"
	"qaplan-backend/internal/shared/telemetry"
)

// OutcomeState describes what happened to one section of the plan.
type OutcomeState string

const (
	StateApplied OutcomeState = "applied"
	StateSkipped OutcomeState = "skipped"
	StateFailed  OutcomeState = "failed"
)

// Status aggregates section outcomes for a whole run.
type Status string

const (
	StatusSuccess        Status = "success"
	StatusPartialSuccess Status = "partial_success"
	StatusFailed         Status = "failed"
	StatusSkipped        Status = "skipped"
)

// TabOutcome is the pseudo-section name under which platform tab visibility
// changes are reported.
const TabOutcome = "platform_tabs"

// SectionOutcome records the state of one section and the error, if any.
type SectionOutcome struct {
	State OutcomeState `json:"state"`
	Error string       `json:"error,omitempty"`
}

// Result is the outcome of applying one plan.
type Result struct {
	IssueKey   string                    `json:"issueKey"`
	DocumentID string                    `json:"documentId"`
	URL        string                    `json:"url"`
	Status     Status                    `json:"status"`
	Sections   map[string]SectionOutcome `json:"sections"`
}

// Customizer applies plans to a document store.
type Customizer struct {
	Store sheets.Store
}

func New(store sheets.Store) *Customizer {
	return &Customizer{Store: store}
}

// Apply runs the plan section by section. A failing section is recorded and
// skipped over; the remaining sections still run, because the plan's row
// numbers are computed analytically up front and do not depend on earlier
// sections having been applied. Sections with no ops (content absent, rows
// retained) are marked skipped without affecting the aggregate status.
func (c *Customizer) Apply(ctx context.Context, issueKey, documentID string, plan sheetplan.Plan) Result {
	result := Result{
		IssueKey:   issueKey,
		DocumentID: documentID,
		URL:        sheets.URL(documentID),
		Sections:   make(map[string]SectionOutcome, len(plan.Sections)+1),
	}

	applied, failed := 0, 0
	for _, sp := range plan.Sections {
		if len(sp.Ops) == 0 {
			result.Sections[sp.Section] = SectionOutcome{State: StateSkipped}
			continue
		}
		if err := c.Store.BatchApply(ctx, documentID, sp.Ops); err != nil {
			telemetry.Error("customize.section_failed", map[string]any{
				"issue_key": issueKey,
				"section":   sp.Section,
				"error":     err.Error(),
			})
			result.Sections[sp.Section] = SectionOutcome{State: StateFailed, Error: err.Error()}
			failed++
			continue
		}
		result.Sections[sp.Section] = SectionOutcome{State: StateApplied}
		applied++
	}

	if len(plan.TabOps) > 0 {
		if err := c.Store.BatchApply(ctx, documentID, plan.TabOps); err != nil {
			telemetry.Error("customize.tab_ops_failed", map[string]any{
				"issue_key": issueKey,
				"error":     err.Error(),
			})
			result.Sections[TabOutcome] = SectionOutcome{State: StateFailed, Error: err.Error()}
			failed++
		} else {
			result.Sections[TabOutcome] = SectionOutcome{State: StateApplied}
			applied++
		}
	}

	result.Status = aggregate(applied, failed)
	return result
}

func aggregate(applied, failed int) Status {
	switch {
	case failed == 0:
		return StatusSuccess
	case applied > 0:
		return StatusPartialSuccess
	default:
		return StatusFailed
	}
}
