package sheetplan

import (
	"qaplan-backend/internal/platform"
	"qaplan-backend/internal/ticket"
)

// Section names, in registry order.
const (
	SectionGoals             = "goals"
	SectionCustomAttributes  = "custom_attributes"
	SectionPrimaryMetric     = "primary_metric"
	SectionAdditionalMetrics = "additional_metrics"
	SectionRequirements      = "requirements"
)

// SectionSpec describes one content section of the test-plan tab. AnchorRow
// is the topmost row the section's first item occupies before any offset;
// Capacity is the number of rows the template pre-reserves, so only item
// counts beyond it force row insertion.
type SectionSpec struct {
	Name      string
	Field     string
	AnchorRow int
	AnchorCol string
	Capacity  int
	// DeleteWhenEmpty sections have their placeholder block removed when the
	// ticket provides no items, shifting later sections up.
	DeleteWhenEmpty bool
	// AppliesTo restricts the section to certain platforms; nil means all.
	AppliesTo func(platform.Platform) bool
}

// Applies reports whether the section is relevant on the given platform.
func (s SectionSpec) Applies(p platform.Platform) bool {
	if s.AppliesTo == nil {
		return true
	}
	return s.AppliesTo(p)
}

// Registry returns the ordered section descriptors for the current template
// revision. Ordering is significant: sections earlier in the registry are
// mutated first, and every later anchor shifts by the row-count changes of
// the sections before it. The row constants are pinned to the template; a new
// template revision means new constants here, not a runtime scheme.
func Registry() []SectionSpec {
	return []SectionSpec{
		{
			Name:            SectionGoals,
			Field:           ticket.FieldGoals,
			AnchorRow:       28,
			AnchorCol:       "B",
			Capacity:        3,
			DeleteWhenEmpty: true,
		},
		{
			Name:            SectionCustomAttributes,
			Field:           ticket.FieldCustomAttributes,
			AnchorRow:       34,
			AnchorCol:       "B",
			Capacity:        3,
			DeleteWhenEmpty: true,
		},
		{
			Name:      SectionPrimaryMetric,
			Field:     ticket.FieldDescription,
			AnchorRow: 40,
			AnchorCol: "D",
			Capacity:  1,
		},
		{
			Name:      SectionAdditionalMetrics,
			Field:     ticket.FieldDescription,
			AnchorRow: 42,
			AnchorCol: "D",
			Capacity:  2,
		},
		{
			Name:      SectionRequirements,
			Field:     ticket.FieldRequirements,
			AnchorRow: 48,
			AnchorCol: "B",
			Capacity:  3,
		},
	}
}
