package runs

import (
	"context"
	"sync"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string][]Run // issueKey -> runs, oldest first
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string][]Run)}
}

func (r *MemoryRepo) Create(ctx context.Context, run Run) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[run.IssueKey] = append(r.data[run.IssueKey], run)
	return nil
}

func (r *MemoryRepo) GetLatestByIssue(ctx context.Context, issueKey string) (Run, error) {
	if err := ctx.Err(); err != nil {
		return Run{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	items := r.data[issueKey]
	if len(items) == 0 {
		return Run{}, ErrNotFound
	}
	return items[len(items)-1], nil
}

func (r *MemoryRepo) ListByIssue(ctx context.Context, issueKey string, limit int) ([]Run, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	items := r.data[issueKey]

	// Newest first.
	out := make([]Run, 0, len(items))
	for i := len(items) - 1; i >= 0; i-- {
		out = append(out, items[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

var _ Repo = (*MemoryRepo)(nil)
