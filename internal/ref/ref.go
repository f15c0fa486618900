// Package ref normalizes PLMXML reference syntax into bare identifiers.
//
// PLMXML encodes intra-document references as URI fragments ("#id0042") and
// reference lists as space separated sequences of fragments. Lookup tables are
// keyed by bare identifiers, so every reference is normalized before storage.
package ref

import "strings"

// Strip removes one leading '#' fragment marker if present.
func Strip(s string) string {
	if strings.HasPrefix(s, "#") {
		return s[1:]
	}
	return s
}

// SplitList splits a space separated reference list and normalizes each entry.
// An empty input yields a nil slice.
func SplitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, " ")
	ids := make([]string, 0, len(parts))
	for _, part := range parts {
		ids = append(ids, Strip(part))
	}
	return ids
}
