// Package sheets provides the spreadsheet document store the customization
// engine mutates: a Google Sheets/Drive implementation and an in-memory fake
// for development and tests.
package sheets

import (
	"context"

	"qaplan-backend/internal/sheetplan"
)

// Store abstracts the spreadsheet document backend.
type Store interface {
	// CopyTemplate copies the template document, renames it, and moves it to
	// the destination folder, returning the new document's ID.
	CopyTemplate(ctx context.Context, templateID, folderID, name string) (string, error)
	// FindExisting returns the ID of a previously created document for the
	// issue key, or "" when none exists.
	FindExisting(ctx context.Context, issueKey string) (string, error)
	// BatchApply applies the ops in order against the document. The whole
	// batch fails or succeeds together.
	BatchApply(ctx context.Context, documentID string, ops []sheetplan.MutationOp) error
	// ListTabs returns the document's tab names in sheet order.
	ListTabs(ctx context.Context, documentID string) ([]string, error)
}

// URL returns the shareable locator for a document.
func URL(documentID string) string {
	return "https://docs.google.com/spreadsheets/d/" + documentID + "/edit"
}
