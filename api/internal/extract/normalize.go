package extract

import (
	"strings"

	"dance-poster/api/internal/ocr/types"
)

// Normalize maps a loosely typed model answer onto the canonical fields.
// Every field accepts the shapes models actually emit; anything else is
// treated as absent.
func Normalize(raw map[string]any) types.Fields {
	return types.Fields{
		Title:          nonEmptyString(raw["title"]),
		Region:         stringSet(raw["region"]),
		DanceType:      firstString(raw["danceType"]),
		InstructorName: joined(raw["instructorName"], ", "),
		ClassDays:      stringSet(raw["classDays"]),
		StartDate:      nonEmptyString(raw["startDate"]),
		EndDate:        nonEmptyString(raw["endDate"]),
		Keywords:       joined(raw["keywords"], ","),
	}
}

// nonEmptyString: "x" -> x; everything else absent.
func nonEmptyString(v any) *string {
	if s, ok := v.(string); ok && s != "" {
		return types.Ptr(s)
	}
	return nil
}

// stringSet: "X" -> [X]; [..] -> deduplicated string entries; empty -> absent.
func stringSet(v any) []string {
	var items []string
	switch t := v.(type) {
	case string:
		if t != "" {
			items = []string{t}
		}
	case []any:
		items = onlyStrings(t)
	case []string:
		items = t
	}
	if len(items) == 0 {
		return nil
	}
	out := make([]string, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, s := range items {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// firstString: "X" -> X; ["X", ...] -> X when the first entry is a string.
func firstString(v any) *string {
	switch t := v.(type) {
	case string:
		if t != "" {
			return types.Ptr(t)
		}
	case []any:
		if len(t) > 0 {
			if s, ok := t[0].(string); ok {
				return types.Ptr(s)
			}
		}
	}
	return nil
}

// joined: "x" -> x (as is); [..] -> string entries joined by sep.
func joined(v any, sep string) *string {
	switch t := v.(type) {
	case string:
		return types.Ptr(t)
	case []any:
		return types.Ptr(strings.Join(onlyStrings(t), sep))
	}
	return nil
}

func onlyStrings(items []any) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		if s, ok := it.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
