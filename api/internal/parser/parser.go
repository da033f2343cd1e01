// Package parser reads poster fields out of raw OCR text with keyword and
// regex heuristics. It never fails: a missing signal leaves the field unset.
package parser

import (
	"regexp"
	"strings"
	"time"

	"dance-poster/api/internal/dates"
	"dance-poster/api/internal/ocr/types"
)

const (
	maxInstructorRunes = 100
	maxTitleRunes      = 200
)

type label struct {
	word, code string
}

// Order matters for dance styles: the first listed match wins.
var (
	regionLabels = []label{
		{"강남", types.RegionGangnam},
		{"홍대", types.RegionHongdae},
		{"기타", types.RegionEtc},
	}
	danceLabels = []label{
		{"살사", types.DanceSalsa},
		{"바차타", types.DanceBachata},
		{"주크", types.DanceZouk},
		{"키좀바", types.DanceKizomba},
		{"기타", types.DanceEtc},
	}
	dayCodes = map[string]string{
		"월": "MON", "화": "TUE", "수": "WED", "목": "THU",
		"금": "FRI", "토": "SAT", "일": "SUN",
	}
	titleMarkers = []string{"수업", "모집", "반"}
)

var (
	reWeekday     = regexp.MustCompile(`(월|화|수|목|금|토|일)\s*요\s*일`)
	reNumericDate = regexp.MustCompile(`\d{4}[.\-/]\d{1,2}[.\-/]\d{1,2}`)
	reHashtag     = regexp.MustCompile(`#[\w가-힣]+`)
	reLineBreak   = regexp.MustCompile(`\r?\n`)

	// 강사명 goes first so "강사명: X" does not yield "명: X".
	instructorPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)강사명\s*[:\s]*([^\n\r]+)`),
		regexp.MustCompile(`(?i)강사\s*[:\s]*([^\n\r]+)`),
		regexp.MustCompile(`(?i)teacher\s*[:\s]*([^\n\r]+)`),
	}
)

type step func(text string, now time.Time) types.Fields

// steps run in priority order; a field set by an earlier step is never
// overwritten by a later one.
var steps = []step{
	scheduleFromMonthDay,
	classDays,
	numericDates,
	regions,
	danceType,
	instructor,
	title,
	hashtags,
}

// Parse extracts poster fields from OCR text relative to now.
func Parse(text string, now time.Time) types.Fields {
	var out types.Fields
	for _, s := range steps {
		out = types.Merge(out, s(text, now))
	}
	return out
}

func scheduleFromMonthDay(text string, now time.Time) types.Fields {
	start, ok := dates.MonthDay(text, now)
	if !ok {
		return types.Fields{}
	}
	f := types.Fields{StartDate: types.Ptr(start)}
	if weeks, ok := dates.Weeks(text); ok && weeks > 0 {
		if end, err := dates.AddWeeks(start, weeks); err == nil {
			f.EndDate = types.Ptr(end)
		}
	}
	return f
}

func classDays(text string, _ time.Time) types.Fields {
	matches := reWeekday.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return types.Fields{}
	}
	days := make([]string, 0, len(matches))
	seen := make(map[string]bool, len(matches))
	for _, m := range matches {
		code := dayCodes[m[1]]
		if code == "" || seen[code] {
			continue
		}
		seen[code] = true
		days = append(days, code)
	}
	return types.Fields{ClassDays: days}
}

func numericDates(text string, now time.Time) types.Fields {
	var found []string
	for _, raw := range reNumericDate.FindAllString(text, -1) {
		if d, ok := dates.NormalizeNumeric(raw, now); ok {
			found = append(found, d)
		}
	}
	var f types.Fields
	if len(found) >= 1 {
		f.StartDate = types.Ptr(found[0])
	}
	if len(found) >= 2 {
		f.EndDate = types.Ptr(found[1])
	}
	return f
}

func regions(text string, _ time.Time) types.Fields {
	var out []string
	for _, l := range regionLabels {
		if strings.Contains(text, l.word) {
			out = append(out, l.code)
		}
	}
	return types.Fields{Region: out}
}

func danceType(text string, _ time.Time) types.Fields {
	for _, l := range danceLabels {
		if strings.Contains(text, l.word) {
			return types.Fields{DanceType: types.Ptr(l.code)}
		}
	}
	return types.Fields{}
}

func instructor(text string, _ time.Time) types.Fields {
	for _, re := range instructorPatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if name := truncateRunes(strings.TrimSpace(m[1]), maxInstructorRunes); name != "" {
			return types.Fields{InstructorName: types.Ptr(name)}
		}
	}
	return types.Fields{}
}

func title(text string, _ time.Time) types.Fields {
	var lines []string
	for _, l := range reLineBreak.Split(text, -1) {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	if len(lines) == 0 {
		return types.Fields{}
	}
	pick := lines[0]
	for _, l := range lines {
		if len([]rune(l)) >= 2 && containsAny(l, titleMarkers) {
			pick = l
			break
		}
	}
	return types.Fields{Title: types.Ptr(truncateRunes(pick, maxTitleRunes))}
}

func hashtags(text string, _ time.Time) types.Fields {
	tags := reHashtag.FindAllString(text, -1)
	if len(tags) == 0 {
		return types.Fields{}
	}
	for i, t := range tags {
		tags[i] = strings.TrimPrefix(t, "#")
	}
	return types.Fields{Keywords: types.Ptr(strings.Join(tags, ","))}
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
