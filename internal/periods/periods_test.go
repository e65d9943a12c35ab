package periods

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonthRangeCoversBoundsInclusive(t *testing.T) {
	from := time.Date(2026, 1, 31, 23, 59, 0, 0, time.UTC)
	to := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	months := MonthRange(from, to)
	require.Len(t, months, 4)
	assert.Equal(t, "2026-01", MonthKey(months[0]))
	assert.Equal(t, "2026-04", MonthKey(months[3]))
}

func TestMonthRangeEmptyWhenReversed(t *testing.T) {
	from := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 4, 30, 0, 0, 0, 0, time.UTC)
	assert.Empty(t, MonthRange(from, to))
}

func TestChangePctZeroBase(t *testing.T) {
	assert.Equal(t, float64(0), ChangePct(500, 0))
	assert.Equal(t, float64(100), ChangePct(200, 100))
	assert.Equal(t, float64(-50), ChangePct(50, 100))
	assert.Equal(t, 33.33, ChangePct(400, 300))
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 1.56, Round2(1.555))
	assert.Equal(t, -1.56, Round2(-1.555))
	assert.Equal(t, 10.0, Round2(10))
}

func TestParseWindow(t *testing.T) {
	days, err := ParseWindow("90d")
	require.NoError(t, err)
	assert.Equal(t, 90, days)

	days, err = ParseWindow("")
	require.NoError(t, err)
	assert.Equal(t, 30, days)

	_, err = ParseWindow("14d")
	assert.Error(t, err)
}
