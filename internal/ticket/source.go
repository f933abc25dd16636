package ticket

import (
	"context"
	"errors"
)

// ErrNotFound indicates the issue does not exist in the tracker.
var ErrNotFound = errors.New("issue not found")

// ErrUnauthorized indicates rejected tracker credentials.
var ErrUnauthorized = errors.New("tracker rejected credentials")

// Source fetches issue data and posts results back to the tracker.
type Source interface {
	FetchIssue(ctx context.Context, issueKey string) (Snapshot, error)
	PostComment(ctx context.Context, issueKey, text string) error
}
