package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"vitalsky/config"
	"vitalsky/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const openMeteoFixture = `{
	"timezone": "Europe/Berlin",
	"daily": {
		"time": ["2025-06-14", "2025-06-15", "2025-06-16"],
		"weather_code": [3, 95, null],
		"temperature_2m_min": [12.1, 14.0, 13.2],
		"temperature_2m_mean": [16.5, 18.2, 17.1],
		"temperature_2m_max": [21.3, 23.9, 22.0],
		"apparent_temperature_min": [11.0, 13.5, 12.8],
		"apparent_temperature_max": [20.8, 24.1, 21.5],
		"pressure_msl_mean": [1013.2, 1008.7, 1011.0],
		"relative_humidity_2m_mean": [61.0, 72.0, 66.0],
		"wind_speed_10m_max": [14.2, 22.8, 16.0],
		"wind_gusts_10m_max": [30.1, 48.3, 33.0],
		"uv_index_max": [6.1, 5.2, 5.8],
		"cloud_cover_mean": [40.0, 85.0, 55.0],
		"sunshine_duration": [34000.0, 12000.0, 28000.0],
		"precipitation_sum": [0.0, 12.4, 1.1],
		"precipitation_hours": [0.0, 6.0, 1.0]
	}
}`

func berlinCity() *models.City {
	city := &models.City{Name: "Berlin", Latitude: 52.52, Longitude: 13.405, Timezone: "Europe/Berlin"}
	city.ID = 7
	return city
}

func TestOpenMeteoService_FetchDailyWindow(t *testing.T) {
	ctx := context.Background()

	t.Run("Parses the daily series into one record per day", func(t *testing.T) {
		var gotQuery map[string][]string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotQuery = r.URL.Query()
			assert.Equal(t, "/v1/forecast", r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(openMeteoFixture))
		}))
		defer server.Close()

		svc := NewOpenMeteoService(config.Config{WeatherAPIURL: server.URL})

		records, err := svc.FetchDailyWindow(ctx, berlinCity())
		require.NoError(t, err)
		require.Len(t, records, 3)

		assert.Equal(t, []string{"Europe/Berlin"}, gotQuery["timezone"])
		assert.Equal(t, []string{"14"}, gotQuery["past_days"])
		assert.Equal(t, []string{"7"}, gotQuery["forecast_days"])

		first := records[0]
		assert.Equal(t, 7, first.CityID)
		require.NotNil(t, first.WeatherCode)
		assert.Equal(t, 3, *first.WeatherCode)
		require.NotNil(t, first.TempMax)
		assert.InDelta(t, 21.3, *first.TempMax, 0.001)
		assert.False(t, first.IsThunderstorm)
		require.NotNil(t, first.PrecipitationSum)
		assert.True(t, first.PrecipitationSum.IsZero())

		storm := records[1]
		assert.True(t, storm.IsThunderstorm)
		require.NotNil(t, storm.PrecipitationSum)
		assert.Equal(t, "12.4", storm.PrecipitationSum.String())

		// trailing null weather code survives as nil
		assert.Nil(t, records[2].WeatherCode)
		assert.False(t, records[2].IsThunderstorm)
	})

	t.Run("Defaults to UTC when the city has no timezone", func(t *testing.T) {
		var gotTimezone string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotTimezone = r.URL.Query().Get("timezone")
			_, _ = w.Write([]byte(openMeteoFixture))
		}))
		defer server.Close()

		svc := NewOpenMeteoService(config.Config{WeatherAPIURL: server.URL})
		city := berlinCity()
		city.Timezone = ""

		_, err := svc.FetchDailyWindow(ctx, city)
		require.NoError(t, err)
		assert.Equal(t, "UTC", gotTimezone)
	})

	t.Run("Non-200 response is an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "rate limited", http.StatusTooManyRequests)
		}))
		defer server.Close()

		svc := NewOpenMeteoService(config.Config{WeatherAPIURL: server.URL})

		_, err := svc.FetchDailyWindow(ctx, berlinCity())
		assert.Error(t, err)
	})

	t.Run("Empty daily series is an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"timezone": "UTC", "daily": {"time": []}}`))
		}))
		defer server.Close()

		svc := NewOpenMeteoService(config.Config{WeatherAPIURL: server.URL})

		_, err := svc.FetchDailyWindow(ctx, berlinCity())
		assert.Error(t, err)
	})
}
