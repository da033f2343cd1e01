// Package dates turns loose poster date fragments into ISO calendar dates.
package dates

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

const (
	Layout = "2006-01-02"

	// Years below this are treated as OCR corruption.
	MinPlausibleYear = 2020

	// MaxWeeks bounds an "N주" course length.
	MaxWeeks = 104
)

var (
	reNumeric  = regexp.MustCompile(`(\d{4})[.\-/](\d{1,2})[.\-/](\d{1,2})`)
	reMonthDay = regexp.MustCompile(`(\d{1,2})\s*월\s*(\d{1,2})\s*일?`)
	reWeeks    = regexp.MustCompile(`(\d+)\s*주\s*간?`)
)

// MaxYear is the upper bound for any year accepted from a poster.
func MaxYear(now time.Time) int { return now.Year() + 1 }

// NormalizeNumeric converts the first YYYY.M.D / YYYY-M-D / YYYY/M/D fragment of s
// to YYYY-MM-DD. Years above MaxYear are clamped, years below MinPlausibleYear
// become the current year.
func NormalizeNumeric(s string, now time.Time) (string, bool) {
	m := reNumeric.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	year, _ := strconv.Atoi(m[1])
	if max := MaxYear(now); year > max {
		year = max
	}
	if year < MinPlausibleYear {
		year = now.Year()
	}
	return fmt.Sprintf("%d-%s-%s", year, pad2(m[2]), pad2(m[3])), true
}

// MonthDay finds a "M월 D일" expression and resolves it to the current year,
// or to the next year when that date is already behind today.
func MonthDay(text string, now time.Time) (string, bool) {
	m := reMonthDay.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	month, _ := strconv.Atoi(m[1])
	day, _ := strconv.Atoi(m[2])
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return "", false
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	year := now.Year()
	if candidate(year, month, day, now.Location()).Before(today) {
		year++
	}
	d := candidate(year, month, day, now.Location())
	// 2월 30일 and friends do not exist.
	if int(d.Month()) != month || d.Day() != day {
		return "", false
	}
	return d.Format(Layout), true
}

// Weeks reads an "N주" / "N주간" duration.
func Weeks(text string) (int, bool) {
	m := reWeeks.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// AddWeeks returns iso shifted by weeks*7 days. Week counts outside
// 0..MaxWeeks are rejected.
func AddWeeks(iso string, weeks int) (string, error) {
	if weeks < 0 || weeks > MaxWeeks {
		return "", fmt.Errorf("add weeks: %d weeks out of range", weeks)
	}
	t, err := time.Parse(Layout, iso)
	if err != nil {
		return "", fmt.Errorf("add weeks: %w", err)
	}
	return t.AddDate(0, 0, weeks*7).Format(Layout), nil
}

// ClampYear rewrites the leading year of iso (every digit before the first
// '-') to MaxYear when it exceeds it. Month and day are left untouched, as is
// anything without a leading year.
func ClampYear(iso string, now time.Time) string {
	n := 0
	for n < len(iso) && iso[n] >= '0' && iso[n] <= '9' {
		n++
	}
	if n < 4 || (n < len(iso) && iso[n] != '-') {
		return iso
	}
	max := MaxYear(now)
	// a run too long for Atoi is over the bound anyway
	if y, err := strconv.Atoi(iso[:n]); err == nil && y <= max {
		return iso
	}
	return strconv.Itoa(max) + iso[n:]
}

func candidate(year, month, day int, loc *time.Location) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc)
}

func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}
