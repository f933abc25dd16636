package sheetplan

import "qaplan-backend/internal/platform"

// ContentSection is a named, ordered block of content destined for one
// section's row range. Item order is display order; duplicates are allowed.
type ContentSection struct {
	Name  string
	Items []string
}

// SectionPlan groups the ops of one section so the executor can isolate
// failures per section.
type SectionPlan struct {
	Section string
	Ops     []MutationOp
}

// Plan is the ordered mutation sequence for one ticket. Section plans come in
// registry order; tab visibility ops always follow every row-structural op so
// they cannot race the row arithmetic on the retained tab.
type Plan struct {
	Tab      string
	Sections []SectionPlan
	TabOps   []MutationOp
}

// Build produces the mutation plan for a resolved platform. All target rows
// are computed analytically from the pre-insertion anchors plus the cumulative
// shift of strictly earlier sections, so applying the plan top to bottom keeps
// every computed row number valid without re-querying the sheet. The result
// is deterministic: identical inputs produce an identical plan.
func Build(registry []SectionSpec, sections []ContentSection, p platform.Platform) Plan {
	itemsByName := make(map[string][]string, len(sections))
	for _, cs := range sections {
		itemsByName[cs.Name] = cs.Items
	}

	var counts []SectionCount
	for _, spec := range registry {
		if !spec.Applies(p) {
			continue
		}
		counts = append(counts, SectionCount{Spec: spec, Items: len(itemsByName[spec.Name])})
	}

	offsets := ComputeOffsets(counts)
	tab := p.Tab()

	plan := Plan{Tab: tab}
	for _, sc := range counts {
		spec := sc.Spec
		anchor := spec.AnchorRow + offsets[spec.Name]
		sp := SectionPlan{Section: spec.Name}

		switch {
		case sc.Items == 0 && spec.DeleteWhenEmpty:
			sp.Ops = append(sp.Ops, MutationOp{
				Kind: OpDeleteRows,
				Tab:  tab,
				Rows: descendingRows(anchor, spec.Capacity),
			})
		case sc.Items == 0:
			// Nothing to write; placeholder rows stay as the template left
			// them.
		default:
			if sc.Items > spec.Capacity {
				sp.Ops = append(sp.Ops, MutationOp{
					Kind:      OpInsertRows,
					Tab:       tab,
					BeforeRow: anchor + spec.Capacity,
					Count:     sc.Items - spec.Capacity,
				})
			}
			for i, item := range itemsByName[spec.Name] {
				sp.Ops = append(sp.Ops, MutationOp{
					Kind:  OpWriteCell,
					Tab:   tab,
					Row:   anchor + i,
					Col:   spec.AnchorCol,
					Value: item,
				})
			}
		}
		plan.Sections = append(plan.Sections, sp)
	}

	for _, hidden := range platform.TabsToHide(p) {
		plan.TabOps = append(plan.TabOps, MutationOp{
			Kind:   OpSetTabVisibility,
			Tab:    hidden,
			Hidden: true,
		})
	}

	return plan
}

// descendingRows lists the placeholder block's rows bottom-up so sequential
// deletion never invalidates a later index.
func descendingRows(anchor, capacity int) []int {
	rows := make([]int, 0, capacity)
	for row := anchor + capacity - 1; row >= anchor; row-- {
		rows = append(rows, row)
	}
	return rows
}
