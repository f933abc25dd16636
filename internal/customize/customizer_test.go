package customize

import (
	"context"
	"testing"

	"qaplan-backend/internal/platform"
	"qaplan-backend/internal/sheetplan"
	"qaplan-backend/internal/sheets"
)

func templateTabs() []string {
	tabs := make([]string, 0, len(platform.All)+len(platform.UtilityTabs))
	for _, p := range platform.All {
		tabs = append(tabs, p.Tab())
	}
	tabs = append(tabs, platform.UtilityTabs...)
	return tabs
}

func buildPlan(sections []sheetplan.ContentSection) sheetplan.Plan {
	return sheetplan.Build(sheetplan.Registry(), sections, platform.Convert)
}

func TestApplyAllSectionsSucceed(t *testing.T) {
	ctx := context.Background()
	store := sheets.NewMemoryStore(templateTabs())
	docID, _ := store.CopyTemplate(ctx, "template", "folder", "ABC-1 - QA Test Plan")

	plan := buildPlan([]sheetplan.ContentSection{
		{Name: sheetplan.SectionGoals, Items: []string{"goal one", "goal two"}},
		{Name: sheetplan.SectionPrimaryMetric, Items: []string{"CTR"}},
		{Name: sheetplan.SectionRequirements, Items: []string{"req one"}},
	})

	result := New(store).Apply(ctx, "ABC-1", docID, plan)

	if result.Status != StatusSuccess {
		t.Fatalf("status: got %s want %s", result.Status, StatusSuccess)
	}
	if result.URL != sheets.URL(docID) {
		t.Fatalf("url: got %q", result.URL)
	}
	for _, name := range []string{sheetplan.SectionGoals, sheetplan.SectionPrimaryMetric, sheetplan.SectionRequirements} {
		if got := result.Sections[name].State; got != StateApplied {
			t.Fatalf("section %s: got %s want %s", name, got, StateApplied)
		}
	}
	// custom_attributes was empty and delete-when-empty, so it carried ops and
	// applied; additional_metrics had nothing to do.
	if got := result.Sections[sheetplan.SectionCustomAttributes].State; got != StateApplied {
		t.Fatalf("custom_attributes: got %s", got)
	}
	if got := result.Sections[sheetplan.SectionAdditionalMetrics].State; got != StateSkipped {
		t.Fatalf("additional_metrics: got %s", got)
	}
	if got := result.Sections[TabOutcome].State; got != StateApplied {
		t.Fatalf("tab outcome: got %s", got)
	}

	if got := store.CellValue(docID, "Convert QA Pass1", 28, "B"); got != "goal one" {
		t.Fatalf("goals row 28: got %q", got)
	}
	if got := store.CellValue(docID, "Convert QA Pass1", 37, "D"); got != "CTR" {
		t.Fatalf("primary metric row: got %q", got)
	}
}

func TestApplyIsolatesSectionFailure(t *testing.T) {
	ctx := context.Background()
	store := sheets.NewMemoryStore(templateTabs())
	store.RejectValue = "goal one"
	docID, _ := store.CopyTemplate(ctx, "template", "folder", "ABC-2 - QA Test Plan")

	plan := buildPlan([]sheetplan.ContentSection{
		{Name: sheetplan.SectionGoals, Items: []string{"goal one"}},
		{Name: sheetplan.SectionRequirements, Items: []string{"req one"}},
	})

	result := New(store).Apply(ctx, "ABC-2", docID, plan)

	if result.Status != StatusPartialSuccess {
		t.Fatalf("status: got %s want %s", result.Status, StatusPartialSuccess)
	}
	goals := result.Sections[sheetplan.SectionGoals]
	if goals.State != StateFailed || goals.Error == "" {
		t.Fatalf("goals outcome: got %+v", goals)
	}
	if got := result.Sections[sheetplan.SectionRequirements].State; got != StateApplied {
		t.Fatalf("requirements: got %s", got)
	}
	// The failed section must not stop later writes from landing at their
	// analytically computed rows.
	if got := store.CellValue(docID, "Convert QA Pass1", 45, "B"); got != "req one" {
		t.Fatalf("requirements row: got %q", got)
	}
}

func TestApplyAllSectionsFail(t *testing.T) {
	ctx := context.Background()
	store := sheets.NewMemoryStore([]string{"hidden"})
	docID, _ := store.CopyTemplate(ctx, "template", "folder", "ABC-3 - QA Test Plan")

	// The plan targets the Convert tab, which this document lacks, so every
	// section and the tab ops fail.
	plan := buildPlan([]sheetplan.ContentSection{
		{Name: sheetplan.SectionGoals, Items: []string{"goal"}},
	})

	result := New(store).Apply(ctx, "ABC-3", docID, plan)
	if result.Status != StatusFailed {
		t.Fatalf("status: got %s want %s", result.Status, StatusFailed)
	}
}
