package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ms-tombola/internal/models"
)

func TestTodayWindow(t *testing.T) {
	now := time.Date(2025, 6, 15, 14, 30, 0, 0, time.Local)
	w := Today(now)

	assert.True(t, w.Contains(time.Date(2025, 6, 15, 0, 0, 0, 0, time.Local)), "midnight belongs to today")
	assert.True(t, w.Contains(now))
	assert.False(t, w.Contains(time.Date(2025, 6, 14, 23, 59, 59, 0, time.Local)), "yesterday evening is outside")
}

func TestBetweenIncludesEndDay(t *testing.T) {
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.Local)
	end := time.Date(2025, 6, 30, 0, 0, 0, 0, time.Local)
	w := Between(start, end)

	// A sale late on the last day must still match.
	assert.True(t, w.Contains(time.Date(2025, 6, 30, 23, 45, 0, 0, time.Local)))
	assert.False(t, w.Contains(time.Date(2025, 7, 1, 0, 0, 0, 0, time.Local)))
}

func TestZeroWindowMatchesEverything(t *testing.T) {
	var w Window
	require.True(t, w.IsZero())
	assert.True(t, w.Contains(time.Unix(0, 0)))
	assert.True(t, w.Contains(time.Now().AddDate(100, 0, 0)))
}

func TestWindowFilter(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.Local)
	sales := []models.Sale{
		sale("alice", 1, now.AddDate(0, 0, -10)),
		sale("bob", 2, now.AddDate(0, 0, -2)),
		sale("carol", 3, now),
	}

	got := LastDays(now, 7).Filter(sales)
	require.Len(t, got, 2)
	assert.Equal(t, "bob", got[0].SellerID, "filter keeps input order")
	assert.Equal(t, "carol", got[1].SellerID)
}

func TestParseWindow(t *testing.T) {
	w, err := ParseWindow("2025-06-01", "2025-06-30")
	require.NoError(t, err)
	assert.True(t, w.Contains(time.Date(2025, 6, 30, 23, 0, 0, 0, time.Local)), "end date is inclusive")
	assert.False(t, w.Contains(time.Date(2025, 5, 31, 23, 0, 0, 0, time.Local)))

	w, err = ParseWindow("", "")
	require.NoError(t, err)
	assert.True(t, w.IsZero())

	_, err = ParseWindow("June 1st", "")
	assert.Error(t, err)
}

func TestParsePeriodPresets(t *testing.T) {
	now := time.Now()

	w, err := ParsePeriod("today", "", "")
	require.NoError(t, err)
	assert.True(t, w.Contains(now))
	assert.False(t, w.Contains(now.AddDate(0, 0, -1)))

	w, err = ParsePeriod("7days", "", "")
	require.NoError(t, err)
	assert.True(t, w.Contains(now.AddDate(0, 0, -6)))
	assert.False(t, w.Contains(now.AddDate(0, 0, -8)))

	w, err = ParsePeriod("30days", "", "")
	require.NoError(t, err)
	assert.True(t, w.Contains(now.AddDate(0, 0, -29)))
	assert.False(t, w.Contains(now.AddDate(0, 0, -31)))
}

func TestParsePeriodCustomAndEmpty(t *testing.T) {
	w, err := ParsePeriod("custom", "2025-06-01", "2025-06-30")
	require.NoError(t, err)
	assert.True(t, w.Contains(time.Date(2025, 6, 15, 12, 0, 0, 0, time.Local)))

	// No period falls back to plain from/to parsing.
	w, err = ParsePeriod("", "2025-06-01", "")
	require.NoError(t, err)
	assert.False(t, w.Start.IsZero())
	assert.True(t, w.End.IsZero())

	// Custom without dates matches everything, like the panel sending
	// the preset before the user picked a range.
	w, err = ParsePeriod("custom", "", "")
	require.NoError(t, err)
	assert.True(t, w.IsZero())

	_, err = ParsePeriod("fortnight", "", "")
	assert.Error(t, err)
}
