// Package platform resolves a ticket's label set to one testing platform and
// the spreadsheet tabs that platform keeps visible.
package platform

import "strings"

// Platform is the testing tool context for an experiment. The set is closed:
// every tab-management and section-applicability decision switches over it
// exhaustively, so an unmapped label can only ever fall back to the default.
type Platform int

const (
	Convert Platform = iota
	Optimizely
	VWO
	Mobile
)

// All lists the platforms in resolution priority order. When labels for more
// than one platform are present, the first in this order wins; the order is
// fixed, never data-dependent.
var All = []Platform{Convert, Optimizely, VWO, Mobile}

func (p Platform) String() string {
	switch p {
	case Convert:
		return "Convert"
	case Optimizely:
		return "Optimizely"
	case VWO:
		return "VWO"
	case Mobile:
		return "Mobile"
	}
	return "Convert"
}

// Tab returns the spreadsheet tab the platform's test plan lives on.
func (p Platform) Tab() string {
	return p.String() + " QA Pass1"
}

// Parse maps a platform name (as configured) back to a Platform.
func Parse(s string) (Platform, bool) {
	for _, p := range All {
		if strings.EqualFold(s, p.String()) {
			return p, true
		}
	}
	return Convert, false
}

// UtilityTabs are always kept visible regardless of platform.
var UtilityTabs = []string{"hidden", "Complexity & Risk"}

// labelKeywords associates lowercase label substrings with platforms, checked
// in All order.
var labelKeywords = map[Platform][]string{
	Convert:    {"convert"},
	Optimizely: {"optimizely", "optly"},
	VWO:        {"vwo"},
	Mobile:     {"mobile", "ios", "android", "app"},
}

// Resolver maps label sets to platforms.
type Resolver struct {
	Default Platform
}

// Resolve returns the first platform whose keywords match any label. Labels
// are lowercased before matching; no match yields the configured default.
func (r Resolver) Resolve(labels []string) Platform {
	for _, p := range All {
		for _, label := range labels {
			lower := strings.ToLower(label)
			for _, kw := range labelKeywords[p] {
				if strings.Contains(lower, kw) {
					return p
				}
			}
		}
	}
	return r.Default
}

// TabsToKeep returns the tabs that stay visible for the platform: its own
// test-plan tab plus the utility tabs.
func TabsToKeep(p Platform) []string {
	out := []string{p.Tab()}
	out = append(out, UtilityTabs...)
	return out
}

// TabsToHide returns the other platforms' test-plan tabs.
func TabsToHide(p Platform) []string {
	var out []string
	for _, other := range All {
		if other != p {
			out = append(out, other.Tab())
		}
	}
	return out
}
