package runs

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new run record.
func (r *PGRepo) Create(ctx context.Context, run Run) error {
	const query = `
INSERT INTO customization_runs (
    id,
    issue_key,
    document_id,
    url,
    platform,
    status,
    sections,
    detail,
    created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	var documentID, url, sections, detail sql.NullString
	if run.DocumentID != "" {
		documentID = sql.NullString{String: run.DocumentID, Valid: true}
	}
	if run.URL != "" {
		url = sql.NullString{String: run.URL, Valid: true}
	}
	if run.Sections != "" {
		sections = sql.NullString{String: run.Sections, Valid: true}
	}
	if run.Detail != "" {
		detail = sql.NullString{String: run.Detail, Valid: true}
	}

	_, err := r.DB.ExecContext(
		ctx,
		query,
		run.ID,
		run.IssueKey,
		documentID,
		url,
		run.Platform,
		run.Status,
		sections,
		detail,
		run.CreatedAt,
	)
	return err
}

// GetLatestByIssue returns the most recent run for an issue key.
func (r *PGRepo) GetLatestByIssue(ctx context.Context, issueKey string) (Run, error) {
	const query = `
SELECT id, issue_key, document_id, url, platform, status, sections, detail, created_at
FROM customization_runs
WHERE issue_key = $1
ORDER BY created_at DESC
LIMIT 1`
	run, err := scanRun(r.DB.QueryRowContext(ctx, query, issueKey))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, ErrNotFound
		}
		return Run{}, err
	}
	return run, nil
}

// ListByIssue lists runs for an issue key, newest first.
func (r *PGRepo) ListByIssue(ctx context.Context, issueKey string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	const query = `
SELECT id, issue_key, document_id, url, platform, status, sections, detail, created_at
FROM customization_runs
WHERE issue_key = $1
ORDER BY created_at DESC
LIMIT $2`

	rows, err := r.DB.QueryContext(ctx, query, issueKey, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var run Run
	var documentID, url, sections, detail sql.NullString
	if err := row.Scan(
		&run.ID,
		&run.IssueKey,
		&documentID,
		&url,
		&run.Platform,
		&run.Status,
		&sections,
		&detail,
		&run.CreatedAt,
	); err != nil {
		return Run{}, err
	}
	if documentID.Valid {
		run.DocumentID = documentID.String
	}
	if url.Valid {
		run.URL = url.String
	}
	if sections.Valid {
		run.Sections = sections.String
	}
	if detail.Valid {
		run.Detail = detail.String
	}
	return run, nil
}

var _ Repo = (*PGRepo)(nil)
