package sheetplan

import "testing"

func countsFor(items map[string]int) []SectionCount {
	var out []SectionCount
	for _, spec := range Registry() {
		out = append(out, SectionCount{Spec: spec, Items: items[spec.Name]})
	}
	return out
}

func TestExtraRows(t *testing.T) {
	spec := SectionSpec{Capacity: 3, DeleteWhenEmpty: true}

	cases := []struct {
		name  string
		items int
		want  int
	}{
		{"empty deletes placeholder block", 0, -3},
		{"under capacity keeps rows", 2, 0},
		{"exact capacity", 3, 0},
		{"overflow inserts difference", 5, 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ExtraRows(SectionCount{Spec: spec, Items: tc.items})
			if got != tc.want {
				t.Fatalf("ExtraRows(%d items): got %d want %d", tc.items, got, tc.want)
			}
		})
	}
}

func TestExtraRowsEmptyWithoutDeleteWhenEmpty(t *testing.T) {
	spec := SectionSpec{Capacity: 2}
	if got := ExtraRows(SectionCount{Spec: spec, Items: 0}); got != 0 {
		t.Fatalf("ExtraRows: got %d want 0", got)
	}
}

func TestComputeOffsetsOverflowShiftsLaterSections(t *testing.T) {
	// goals has 5 items against capacity 3: two extra rows shift everything
	// after it down by two.
	offsets := ComputeOffsets(countsFor(map[string]int{
		SectionGoals:            5,
		SectionCustomAttributes: 1,
		SectionRequirements:     1,
	}))

	if offsets[SectionGoals] != 0 {
		t.Fatalf("goals offset: got %d want 0", offsets[SectionGoals])
	}
	if offsets[SectionCustomAttributes] != 2 {
		t.Fatalf("custom_attributes offset: got %d want 2", offsets[SectionCustomAttributes])
	}
	if offsets[SectionPrimaryMetric] != 2 {
		t.Fatalf("primary_metric offset: got %d want 2", offsets[SectionPrimaryMetric])
	}
	if offsets[SectionRequirements] != 2 {
		t.Fatalf("requirements offset: got %d want 2", offsets[SectionRequirements])
	}
}

func TestComputeOffsetsEmptyDeletedSectionShiftsUp(t *testing.T) {
	// goals empty: its three placeholder rows disappear, pulling later
	// sections up by three.
	offsets := ComputeOffsets(countsFor(map[string]int{
		SectionCustomAttributes: 1,
	}))

	if offsets[SectionGoals] != 0 {
		t.Fatalf("goals offset: got %d want 0", offsets[SectionGoals])
	}
	if offsets[SectionCustomAttributes] != -3 {
		t.Fatalf("custom_attributes offset: got %d want -3", offsets[SectionCustomAttributes])
	}
	if offsets[SectionRequirements] != -3 {
		t.Fatalf("requirements offset: got %d want -3", offsets[SectionRequirements])
	}
}

func TestComputeOffsetsSectionNeverShiftsItself(t *testing.T) {
	offsets := ComputeOffsets(countsFor(map[string]int{
		SectionGoals:        10,
		SectionRequirements: 10,
	}))
	if offsets[SectionGoals] != 0 {
		t.Fatalf("goals offset: got %d want 0", offsets[SectionGoals])
	}
	// goals overflows by 7 and the empty custom_attributes block removes 3;
	// requirements' own overflow affects nothing.
	if offsets[SectionRequirements] != 4 {
		t.Fatalf("requirements offset: got %d want 4", offsets[SectionRequirements])
	}
}
