package runs

import "context"

// Repo defines persistence operations for customization runs.
type Repo interface {
	Create(ctx context.Context, run Run) error
	GetLatestByIssue(ctx context.Context, issueKey string) (Run, error)
	ListByIssue(ctx context.Context, issueKey string, limit int) ([]Run, error)
}
