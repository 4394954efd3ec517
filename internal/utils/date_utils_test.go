package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalDate(t *testing.T) {
	t.Run("Early UTC morning is still the previous day in New York", func(t *testing.T) {
		instant := time.Date(2025, 6, 15, 2, 0, 0, 0, time.UTC)
		date, err := LocalDate(instant, "America/New_York")
		require.NoError(t, err)
		assert.Equal(t, "2025-06-14", FormatDate(date))
	})

	t.Run("Late UTC evening is already the next day in Tokyo", func(t *testing.T) {
		instant := time.Date(2025, 6, 15, 22, 0, 0, 0, time.UTC)
		date, err := LocalDate(instant, "Asia/Tokyo")
		require.NoError(t, err)
		assert.Equal(t, "2025-06-16", FormatDate(date))
	})

	t.Run("Result is normalized to midnight UTC", func(t *testing.T) {
		instant := time.Date(2025, 6, 15, 13, 45, 12, 0, time.UTC)
		date, err := LocalDate(instant, "Europe/Berlin")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC), date)
	})

	t.Run("Unknown timezone is an error", func(t *testing.T) {
		_, err := LocalDate(time.Now(), "Not/AZone")
		assert.Error(t, err)
	})
}

func TestAddDays(t *testing.T) {
	base := time.Date(2025, 3, 1, 15, 30, 0, 0, time.UTC)

	assert.Equal(t, "2025-02-28", FormatDate(AddDays(base, -1)))
	assert.Equal(t, "2025-03-14", FormatDate(AddDays(base, 13)))
	// time-of-day is dropped before shifting
	assert.Equal(t, time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC), AddDays(base, 1))
}

func TestParseAndFormatDate(t *testing.T) {
	date, err := ParseDate("2025-06-15")
	require.NoError(t, err)
	assert.Equal(t, "2025-06-15", FormatDate(date))

	_, err = ParseDate("June 15, 2025")
	assert.Error(t, err)
}

func TestSameDate(t *testing.T) {
	morning := time.Date(2025, 6, 15, 3, 0, 0, 0, time.UTC)
	evening := time.Date(2025, 6, 15, 23, 0, 0, 0, time.UTC)
	nextDay := time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC)

	assert.True(t, SameDate(morning, evening))
	assert.False(t, SameDate(evening, nextDay))
}
