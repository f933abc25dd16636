package runs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPGRepoCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	run := Run{
		ID:         "run-1",
		IssueKey:   "ABC-123",
		DocumentID: "doc-1",
		URL:        "https://docs.google.com/spreadsheets/d/doc-1/edit",
		Platform:   "Convert",
		Status:     "success",
		Sections:   `{"goals":{"state":"applied"}}`,
		CreatedAt:  time.Now().UTC(),
	}

	mock.ExpectExec("INSERT INTO customization_runs").
		WithArgs(
			run.ID,
			run.IssueKey,
			sqlmock.AnyArg(), // document_id
			sqlmock.AnyArg(), // url
			run.Platform,
			run.Status,
			sqlmock.AnyArg(), // sections
			nil,              // detail
			sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Create(context.Background(), run); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetLatestByIssue(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	created := time.Now().UTC()

	rows := sqlmock.NewRows([]string{
		"id", "issue_key", "document_id", "url", "platform", "status", "sections", "detail", "created_at",
	}).AddRow("run-1", "ABC-123", "doc-1", "https://docs.google.com/spreadsheets/d/doc-1/edit", "Mobile", "partial_success", `{}`, "ticket comment failed", created)

	mock.ExpectQuery("SELECT id, issue_key, document_id").
		WithArgs("ABC-123").
		WillReturnRows(rows)

	run, err := repo.GetLatestByIssue(context.Background(), "ABC-123")
	if err != nil {
		t.Fatalf("GetLatestByIssue: %v", err)
	}
	if run.ID != "run-1" || run.Platform != "Mobile" || run.Status != "partial_success" {
		t.Fatalf("unexpected run: %+v", run)
	}
	if run.Detail != "ticket comment failed" {
		t.Fatalf("detail: got %q", run.Detail)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetLatestByIssueNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}

	mock.ExpectQuery("SELECT id, issue_key, document_id").
		WithArgs("XYZ-1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "issue_key", "document_id", "url", "platform", "status", "sections", "detail", "created_at",
		}))

	if _, err := repo.GetLatestByIssue(context.Background(), "XYZ-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetLatestByIssue: got %v want ErrNotFound", err)
	}
}

func TestPGRepoListByIssueClampsLimit(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}

	mock.ExpectQuery("SELECT id, issue_key, document_id").
		WithArgs("ABC-123", 20).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "issue_key", "document_id", "url", "platform", "status", "sections", "detail", "created_at",
		}).AddRow("run-1", "ABC-123", nil, nil, "Convert", "skipped", nil, nil, time.Now().UTC()))

	items, err := repo.ListByIssue(context.Background(), "ABC-123", 0)
	if err != nil {
		t.Fatalf("ListByIssue: %v", err)
	}
	if len(items) != 1 || items[0].Status != "skipped" {
		t.Fatalf("unexpected items: %+v", items)
	}
	if items[0].DocumentID != "" || items[0].Sections != "" {
		t.Fatalf("null columns not normalized: %+v", items[0])
	}
}

func TestMemoryRepoLatestAndList(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepo()

	for i, status := range []string{"failed", "success"} {
		run := Run{
			ID:        string(rune('a' + i)),
			IssueKey:  "ABC-123",
			Status:    status,
			CreatedAt: time.Now().UTC(),
		}
		if err := repo.Create(ctx, run); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	latest, err := repo.GetLatestByIssue(ctx, "ABC-123")
	if err != nil {
		t.Fatalf("GetLatestByIssue: %v", err)
	}
	if latest.Status != "success" {
		t.Fatalf("latest: got %q want success", latest.Status)
	}

	items, err := repo.ListByIssue(ctx, "ABC-123", 1)
	if err != nil {
		t.Fatalf("ListByIssue: %v", err)
	}
	if len(items) != 1 || items[0].Status != "success" {
		t.Fatalf("unexpected items: %+v", items)
	}

	if _, err := repo.GetLatestByIssue(ctx, "NOPE-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetLatestByIssue: got %v want ErrNotFound", err)
	}
}
