package ticket

import "strings"

// Canonical field names used by the customization engine. Jira custom field
// IDs are mapped onto these names by the client so the engine never sees
// tracker-specific identifiers.
const (
	FieldSummary          = "Summary"
	FieldDescription      = "Description"
	FieldGoals            = "Goals"
	FieldCustomAttributes = "Custom Attributes"
	FieldRequirements     = "Requirements"
)

// Snapshot is an immutable view of one issue, built once per event. A field
// value is a plain string, a decoded Atlassian Document Format tree
// (map[string]any), or nil when the field is absent.
type Snapshot struct {
	IssueKey string
	Labels   []string
	Fields   map[string]any
}

// Field returns the raw value for a canonical field name, or nil.
func (s Snapshot) Field(name string) any {
	if s.Fields == nil {
		return nil
	}
	return s.Fields[name]
}

// HasLabel reports whether the snapshot carries the given label,
// case-insensitively.
func (s Snapshot) HasLabel(label string) bool {
	for _, l := range s.Labels {
		if strings.EqualFold(l, label) {
			return true
		}
	}
	return false
}

// Fallback builds a minimal snapshot used when the issue cannot be fetched or
// parsed: the basic sheet is still created, without customization.
func Fallback(issueKey string) Snapshot {
	return Snapshot{
		IssueKey: issueKey,
		Fields: map[string]any{
			FieldRequirements: "QA Test Plan for " + issueKey,
		},
	}
}
