// Package runs persists the outcome of each customization run so operators
// can audit what was created for a ticket and why a run degraded.
package runs

import "time"

// Run is one recorded customization attempt for a ticket.
type Run struct {
	ID         string    `json:"id"`
	IssueKey   string    `json:"issueKey"`
	DocumentID string    `json:"documentId,omitempty"`
	URL        string    `json:"url,omitempty"`
	Platform   string    `json:"platform"`
	Status     string    `json:"status"`
	Sections   string    `json:"sections,omitempty"` // JSON map of section outcomes
	Detail     string    `json:"detail,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}
