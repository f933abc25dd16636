// Package parse converts raw ticket fields into ordered content lists for the
// sheet customization engine.
package parse

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"qaplan-backend/internal/shared/telemetry"
)

var (
	numberedItemRe = regexp.MustCompile(`^\s*(\d+)\.\s+(.*\S)\s*$`)
	primaryValueRe = regexp.MustCompile(`(?i)^\s*(?:primary metric|main metric|primary kpi)\s*:\s*(.+?)\s*$`)
	newPrefixRe    = regexp.MustCompile(`(?i)^\s*\[NEW\]\s*(.+?)\s*$`)
)

// Items extracts an ordered list of discrete items from a raw field value.
// Lines shaped like "<n>. <text>" are returned in the numeric order of their
// labels, not their position in the source: tickets get edited, and a "2."
// line often ends up above "1.". Duplicate numbers keep the later occurrence.
// When no numbered line exists, non-empty text becomes a single item; absent
// or whitespace-only fields yield no items.
func Items(field any) []string {
	text := Normalize(field)
	if strings.TrimSpace(text) == "" {
		return nil
	}

	byNumber := make(map[int]string)
	var numbers []int
	for _, line := range strings.Split(text, "\n") {
		m := numberedItemRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if _, seen := byNumber[n]; seen {
			telemetry.Warn("parse.duplicate_item_number", map[string]any{
				"number": n,
				"kept":   m[2],
			})
		} else {
			numbers = append(numbers, n)
		}
		byNumber[n] = m[2]
	}

	if len(numbers) == 0 {
		return []string{strings.TrimSpace(text)}
	}

	sort.Ints(numbers)
	items := make([]string, 0, len(numbers))
	for _, n := range numbers {
		items = append(items, byNumber[n])
	}
	return items
}

// PrimaryValue scans for a labeled single-line value such as
// "Primary metric: CTR", case-insensitively, returning the first match.
func PrimaryValue(field any) (string, bool) {
	text := Normalize(field)
	for _, line := range strings.Split(text, "\n") {
		if m := primaryValueRe.FindStringSubmatch(line); m != nil {
			return m[1], true
		}
	}
	return "", false
}

// Prefixed extracts "[NEW] ..." lines as an ordered list with the prefix
// stripped.
func Prefixed(field any) []string {
	text := Normalize(field)
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if m := newPrefixRe.FindStringSubmatch(line); m != nil {
			out = append(out, m[1])
		}
	}
	return out
}
