package plans

import (
	"qaplan-backend/internal/parse"
	"qaplan-backend/internal/sheetplan"
	"qaplan-backend/internal/ticket"
)

// BuildSections extracts the ordered content for every registered section from
// a ticket snapshot. List sections parse their own fields; the metric sections
// both read the description. A labeled "Primary metric:" line wins the primary
// slot and every "[NEW]" line becomes an additional metric; without the label,
// the first "[NEW]" line is promoted to primary and the rest stay additional.
func BuildSections(snap ticket.Snapshot, registry []sheetplan.SectionSpec) []sheetplan.ContentSection {
	primary, additional := metricsFromDescription(snap.Field(ticket.FieldDescription))

	out := make([]sheetplan.ContentSection, 0, len(registry))
	for _, spec := range registry {
		cs := sheetplan.ContentSection{Name: spec.Name}
		switch spec.Name {
		case sheetplan.SectionPrimaryMetric:
			cs.Items = primary
		case sheetplan.SectionAdditionalMetrics:
			cs.Items = additional
		default:
			if field := snap.Field(spec.Field); field != nil {
				cs.Items = parse.Items(field)
			}
		}
		out = append(out, cs)
	}
	return out
}

func metricsFromDescription(description any) (primary, additional []string) {
	if description == nil {
		return nil, nil
	}
	prefixed := parse.Prefixed(description)
	if value, ok := parse.PrimaryValue(description); ok {
		primary = []string{value}
		additional = prefixed
		return primary, additional
	}
	if len(prefixed) > 0 {
		primary = prefixed[:1]
		additional = prefixed[1:]
	}
	return primary, additional
}
