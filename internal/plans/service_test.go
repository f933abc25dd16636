package plans

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"qaplan-backend/internal/customize"
	"qaplan-backend/internal/lock"
	"qaplan-backend/internal/platform"
	"qaplan-backend/internal/runs"
	"qaplan-backend/internal/sheets"
	"qaplan-backend/internal/ticket"
)

type fakeSource struct {
	snap       ticket.Snapshot
	fetchErr   error
	commentErr error
	comments   []string
}

func (f *fakeSource) FetchIssue(ctx context.Context, issueKey string) (ticket.Snapshot, error) {
	if f.fetchErr != nil {
		return ticket.Snapshot{}, f.fetchErr
	}
	return f.snap, nil
}

func (f *fakeSource) PostComment(ctx context.Context, issueKey, text string) error {
	if f.commentErr != nil {
		return f.commentErr
	}
	f.comments = append(f.comments, text)
	return nil
}

func templateTabs() []string {
	tabs := make([]string, 0, len(platform.All)+len(platform.UtilityTabs))
	for _, p := range platform.All {
		tabs = append(tabs, p.Tab())
	}
	tabs = append(tabs, platform.UtilityTabs...)
	return tabs
}

func newTestService(source ticket.Source) (*Service, *sheets.MemoryStore, *runs.MemoryRepo) {
	store := sheets.NewMemoryStore(templateTabs())
	repo := runs.NewMemoryRepo()
	svc := &Service{
		Tickets:    source,
		Store:      store,
		Customizer: customize.New(store),
		Runs:       repo,
		Locker:     lock.NewMemoryLocker(),
		Resolver:   platform.Resolver{Default: platform.Convert},
		TemplateID: "template-1",
		FolderID:   "folder-1",
	}
	return svc, store, repo
}

func TestCreatePlanHappyPath(t *testing.T) {
	ctx := context.Background()
	source := &fakeSource{
		snap: ticket.Snapshot{
			IssueKey: "ABC-123",
			Labels:   []string{"mobile"},
			Fields: map[string]any{
				ticket.FieldGoals:        "1. Increase signups\n2. Reduce bounce",
				ticket.FieldDescription:  "Primary metric: CTR",
				ticket.FieldRequirements: "1. Verify layout",
			},
		},
	}
	svc, store, repo := newTestService(source)

	result, err := svc.CreatePlan(ctx, "ABC-123")
	if err != nil {
		t.Fatalf("CreatePlan: %v", err)
	}
	if result.Status != customize.StatusSuccess {
		t.Fatalf("status: got %s", result.Status)
	}
	if result.Platform != "Mobile" {
		t.Fatalf("platform: got %s", result.Platform)
	}
	if !result.Commented {
		t.Fatal("expected comment to be posted")
	}
	if len(source.comments) != 1 || !strings.Contains(source.comments[0], result.URL) {
		t.Fatalf("comments: got %v", source.comments)
	}
	if !strings.HasPrefix(source.comments[0], "QA Test Plan has been created: ") {
		t.Fatalf("comment text: got %q", source.comments[0])
	}

	// Content landed on the Mobile tab at the goal anchors.
	if got := store.CellValue(result.DocumentID, "Mobile QA Pass1", 28, "B"); got != "Increase signups" {
		t.Fatalf("goals row 28: got %q", got)
	}

	run, err := repo.GetLatestByIssue(ctx, "ABC-123")
	if err != nil {
		t.Fatalf("GetLatestByIssue: %v", err)
	}
	if run.Status != "success" || run.DocumentID != result.DocumentID {
		t.Fatalf("recorded run: %+v", run)
	}
	if run.Sections == "" {
		t.Fatal("recorded run has no section outcomes")
	}
}

func TestCreatePlanSecondRunIsSkipped(t *testing.T) {
	ctx := context.Background()
	source := &fakeSource{snap: ticket.Snapshot{IssueKey: "ABC-123"}}
	svc, _, repo := newTestService(source)

	first, err := svc.CreatePlan(ctx, "ABC-123")
	if err != nil {
		t.Fatalf("first CreatePlan: %v", err)
	}

	second, err := svc.CreatePlan(ctx, "ABC-123")
	if err != nil {
		t.Fatalf("second CreatePlan: %v", err)
	}
	if second.Status != customize.StatusSkipped {
		t.Fatalf("second status: got %s", second.Status)
	}
	if second.DocumentID != first.DocumentID {
		t.Fatalf("document: got %s want %s", second.DocumentID, first.DocumentID)
	}
	// Only one comment: the skipped run must not re-announce the sheet.
	if len(source.comments) != 1 {
		t.Fatalf("comments: got %v", source.comments)
	}

	history, err := repo.ListByIssue(ctx, "ABC-123", 0)
	if err != nil {
		t.Fatalf("ListByIssue: %v", err)
	}
	if len(history) != 2 || history[0].Status != "skipped" {
		t.Fatalf("history: %+v", history)
	}
}

func TestCreatePlanCommentFailureDegrades(t *testing.T) {
	ctx := context.Background()
	source := &fakeSource{
		snap:       ticket.Snapshot{IssueKey: "ABC-123"},
		commentErr: errors.New("comment rejected"),
	}
	svc, _, _ := newTestService(source)

	result, err := svc.CreatePlan(ctx, "ABC-123")
	if err != nil {
		t.Fatalf("CreatePlan: %v", err)
	}
	if result.Status != customize.StatusPartialSuccess {
		t.Fatalf("status: got %s", result.Status)
	}
	if result.Commented {
		t.Fatal("commented should be false")
	}
	if result.DocumentID == "" {
		t.Fatal("document should still be created")
	}
	if !strings.Contains(result.Detail, "comment failed") {
		t.Fatalf("detail: got %q", result.Detail)
	}
}

func TestCreatePlanFetchFailureFallsBack(t *testing.T) {
	ctx := context.Background()
	source := &fakeSource{fetchErr: errors.New("tracker down")}
	svc, store, _ := newTestService(source)

	result, err := svc.CreatePlan(ctx, "ABC-9")
	if err != nil {
		t.Fatalf("CreatePlan: %v", err)
	}
	if result.DocumentID == "" {
		t.Fatal("document should be created from fallback snapshot")
	}
	if result.Platform != "Convert" {
		t.Fatalf("platform: got %s", result.Platform)
	}

	// The fallback snapshot writes only the requirements placeholder; both
	// delete-when-empty blocks above it are removed, shifting its anchor from
	// 48 to 42.
	if got := store.CellValue(result.DocumentID, "Convert QA Pass1", 42, "B"); got != "QA Test Plan for ABC-9" {
		t.Fatalf("requirements cell: got %q", got)
	}
}

func TestCreatePlanValidatesIssueKey(t *testing.T) {
	svc, _, _ := newTestService(&fakeSource{})
	if _, err := svc.CreatePlan(context.Background(), "  "); !errors.Is(err, ErrMissingIssueKey) {
		t.Fatalf("CreatePlan: got %v want ErrMissingIssueKey", err)
	}
}

func TestCreatePlanHeldLockReturnsInProgress(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(&fakeSource{snap: ticket.Snapshot{IssueKey: "ABC-123"}})

	release, err := svc.Locker.Acquire(ctx, "ABC-123", time.Minute)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer release()

	if _, err := svc.CreatePlan(ctx, "ABC-123"); !errors.Is(err, ErrInProgress) {
		t.Fatalf("CreatePlan: got %v want ErrInProgress", err)
	}
}
