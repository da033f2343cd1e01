package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeKeepsEarlierValues(t *testing.T) {
	dst := Fields{Title: Ptr("살사 초급"), ClassDays: []string{"MON"}}
	src := Fields{Title: Ptr("other"), ClassDays: []string{"TUE"}, Region: []string{RegionGangnam}, StartDate: Ptr("2027-01-01")}

	got := Merge(dst, src)
	assert.Equal(t, "살사 초급", *got.Title)
	assert.Equal(t, []string{"MON"}, got.ClassDays)
	assert.Equal(t, []string{RegionGangnam}, got.Region)
	assert.Equal(t, "2027-01-01", *got.StartDate)
}

func TestFieldsOmitUnsetKeys(t *testing.T) {
	b, err := json.Marshal(Fields{DanceType: Ptr(DanceKizomba)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"danceType":"KIZOMBA"}`, string(b))
}

func TestIsWeekday(t *testing.T) {
	assert.True(t, IsWeekday("SUN"))
	assert.False(t, IsWeekday("sun"))
	assert.False(t, IsWeekday("HOLIDAY"))
}
