package parser

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dance-poster/api/internal/ocr/types"
)

var now = time.Date(2026, time.October, 16, 9, 0, 0, 0, time.UTC)

func TestParseMonthDayWithWeeks(t *testing.T) {
	f := Parse("2월5일 목요일부터 4주", now)

	assert.Equal(t, []string{"THU"}, f.ClassDays)
	require.NotNil(t, f.StartDate)
	require.NotNil(t, f.EndDate)
	assert.Equal(t, "2027-02-05", *f.StartDate)
	assert.Equal(t, "2027-03-05", *f.EndDate)
}

func TestParseMonthDayIgnoresImplausibleWeekCount(t *testing.T) {
	f := Parse("2월5일 목요일부터 99999999주", now)

	require.NotNil(t, f.StartDate)
	assert.Equal(t, "2027-02-05", *f.StartDate)
	assert.Nil(t, f.EndDate)
}

func TestParseMonthDayWithoutWeeksLeavesEndForNumericDates(t *testing.T) {
	f := Parse("3월 2일 개강\n종강 2027.04.20 / 2027.05.01", now)

	require.NotNil(t, f.StartDate)
	assert.Equal(t, "2027-03-02", *f.StartDate)
	require.NotNil(t, f.EndDate)
	assert.Equal(t, "2027-05-01", *f.EndDate, "second numeric date fills the empty end slot")
}

func TestParseRegionAndDance(t *testing.T) {
	f := Parse("강남 살사 초급반\n홍대에서도 바차타", now)

	assert.Subset(t, f.Region, []string{types.RegionGangnam})
	assert.Equal(t, []string{types.RegionGangnam, types.RegionHongdae}, f.Region)
	require.NotNil(t, f.DanceType)
	assert.Equal(t, types.DanceSalsa, *f.DanceType)
}

func TestParseDanceTypeFollowsVocabularyOrder(t *testing.T) {
	f := Parse("바차타 & 살사", now)
	require.NotNil(t, f.DanceType)
	assert.Equal(t, types.DanceSalsa, *f.DanceType)
}

func TestParseWeekdaysTolerateOCRSpacing(t *testing.T) {
	f := Parse("화 요 일, 목요일, 화요일 저녁", now)
	assert.Equal(t, []string{"TUE", "THU"}, f.ClassDays)
}

func TestParseNumericDates(t *testing.T) {
	f := Parse("기간: 2026.11.3 - 2031/12/1", now)

	require.NotNil(t, f.StartDate)
	require.NotNil(t, f.EndDate)
	assert.Equal(t, "2026-11-03", *f.StartDate)
	assert.Equal(t, "2027-12-01", *f.EndDate)
}

func TestParseInstructorLabels(t *testing.T) {
	f := Parse("강사명: 주희, 인우\n장소 강남", now)
	require.NotNil(t, f.InstructorName)
	assert.Equal(t, "주희, 인우", *f.InstructorName)

	f = Parse("Teacher : Austin", now)
	require.NotNil(t, f.InstructorName)
	assert.Equal(t, "Austin", *f.InstructorName)

	f = Parse("강사 "+strings.Repeat("가", 150), now)
	require.NotNil(t, f.InstructorName)
	assert.Len(t, []rune(*f.InstructorName), 100)
}

func TestParseTitlePrefersMarkerLine(t *testing.T) {
	f := Parse("\n  LATIN NIGHT  \n살사 입문 수업 모집\n", now)
	require.NotNil(t, f.Title)
	assert.Equal(t, "살사 입문 수업 모집", *f.Title)

	f = Parse("\n  LATIN NIGHT  \nfree entry", now)
	require.NotNil(t, f.Title)
	assert.Equal(t, "LATIN NIGHT", *f.Title)
}

func TestParseHashtags(t *testing.T) {
	f := Parse("#살사 #bachata_night 문의 #강남", now)
	require.NotNil(t, f.Keywords)
	assert.Equal(t, "살사,bachata_night,강남", *f.Keywords)
}

func TestParseEmptyTextLeavesEverythingUnset(t *testing.T) {
	assert.Equal(t, types.Fields{}, Parse("   \n\n", now))
}
