package sheetplan

// SectionCount pairs a section descriptor with the number of items the ticket
// provides for it.
type SectionCount struct {
	Spec  SectionSpec
	Items int
}

// ExtraRows returns the row-count change a section contributes to the tab:
// positive when items overflow the placeholder capacity, negative when an
// empty delete-when-empty section loses its placeholder block, zero
// otherwise. A short-but-present section never shrinks the tab; unused
// placeholder rows stay where they are.
func ExtraRows(sc SectionCount) int {
	if sc.Items == 0 && sc.Spec.DeleteWhenEmpty {
		return -sc.Spec.Capacity
	}
	if sc.Items > sc.Spec.Capacity {
		return sc.Items - sc.Spec.Capacity
	}
	return 0
}

// ComputeOffsets returns, for each section, the cumulative row shift applied
// to its anchor by all strictly earlier sections in registry order. It is a
// pure function: the shift for section k is the sum of ExtraRows over
// sections 0..k-1, and a section's own overflow never shifts itself.
func ComputeOffsets(sections []SectionCount) map[string]int {
	offsets := make(map[string]int, len(sections))
	shift := 0
	for _, sc := range sections {
		offsets[sc.Spec.Name] = shift
		shift += ExtraRows(sc)
	}
	return offsets
}
