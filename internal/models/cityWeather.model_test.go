package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThunderstormDay(t *testing.T) {
	codeOf := func(c int) *int { return &c }

	assert.False(t, ThunderstormDay(nil))
	assert.False(t, ThunderstormDay(codeOf(3)))
	assert.False(t, ThunderstormDay(codeOf(94)))
	assert.True(t, ThunderstormDay(codeOf(95)))
	assert.True(t, ThunderstormDay(codeOf(99)))
	assert.False(t, ThunderstormDay(codeOf(100)))
}

func TestFromCityWeather(t *testing.T) {
	code := 95
	tempMax := 24.5
	precipitation := decimal.NewFromFloat(8.2)

	cw := &CityWeather{
		CityID:           12,
		Day:              time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
		WeatherCode:      &code,
		TempMax:          &tempMax,
		PrecipitationSum: &precipitation,
		IsThunderstorm:   true,
	}

	userID := uuid.New()
	date := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

	uw := FromCityWeather(userID, date, "Europe/Berlin", cw)

	assert.Equal(t, userID, uw.UserID)
	assert.Equal(t, date, uw.Date)
	assert.Equal(t, 12, uw.CityID)
	assert.Equal(t, "Europe/Berlin", uw.Timezone)
	require.NotNil(t, uw.WeatherCode)
	assert.Equal(t, 95, *uw.WeatherCode)
	require.NotNil(t, uw.TempMax)
	assert.Equal(t, 24.5, *uw.TempMax)
	require.NotNil(t, uw.PrecipitationSum)
	assert.True(t, precipitation.Equal(*uw.PrecipitationSum))
	assert.True(t, uw.IsThunderstorm)
}

func TestWeatherJobTerminal(t *testing.T) {
	for status, terminal := range map[JobStatus]bool{
		JobStatusQueued:     false,
		JobStatusProcessing: false,
		JobStatusDone:       true,
		JobStatusFailed:     true,
	} {
		job := &WeatherJob{Status: status}
		assert.Equal(t, terminal, job.Terminal(), "status %s", status)
	}
}
