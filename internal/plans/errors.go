package plans

import "errors"

var (
	// ErrMissingIssueKey indicates a request without a ticket identity.
	ErrMissingIssueKey = errors.New("issue key is required")
	// ErrInProgress indicates another run currently holds the ticket's lease.
	ErrInProgress = errors.New("a run for this issue is already in progress")
)
