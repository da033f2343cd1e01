package extract

import (
	"strings"
	"time"

	"dance-poster/api/internal/dates"
	"dance-poster/api/internal/ocr/types"
)

// Sanitize enforces the rules shared by every strategy: class days are
// known, distinct weekday codes, and no year lies beyond next year.
func Sanitize(f types.Fields, now time.Time) types.Fields {
	if f.StartDate != nil {
		f.StartDate = types.Ptr(dates.ClampYear(*f.StartDate, now))
	}
	if f.EndDate != nil {
		f.EndDate = types.Ptr(dates.ClampYear(*f.EndDate, now))
	}
	if f.ClassDays != nil {
		days := make([]string, 0, len(f.ClassDays))
		seen := make(map[string]bool, len(f.ClassDays))
		for _, d := range f.ClassDays {
			d = strings.ToUpper(strings.TrimSpace(d))
			if !types.IsWeekday(d) || seen[d] {
				continue
			}
			seen[d] = true
			days = append(days, d)
		}
		f.ClassDays = days
	}
	return f
}
