package services

import (
	"context"
	"testing"
	"time"
	"vitalsky/internal/models"
	"vitalsky/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeatherCacheService_EnsureCached(t *testing.T) {
	ctx := context.Background()
	day := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	city := &models.City{Name: "Madrid", Latitude: 40.4, Longitude: -3.7, Timezone: "Europe/Madrid"}
	city.ID = 3

	record := func(offset int) *models.CityWeather {
		return &models.CityWeather{CityID: city.ID, Day: utils.AddDays(day, offset)}
	}

	t.Run("Hit returns cached record without fetching", func(t *testing.T) {
		repo := newFakeCityWeatherRepo()
		repo.add(record(0))
		client := &fakeWeatherClient{}
		svc := NewWeatherCacheService(repo, client)

		got, err := svc.EnsureCached(ctx, city, day)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, 0, client.calls)
	})

	t.Run("Miss fetches once and stores the whole window", func(t *testing.T) {
		repo := newFakeCityWeatherRepo()
		client := &fakeWeatherClient{
			window: []*models.CityWeather{record(-1), record(0), record(1)},
		}
		svc := NewWeatherCacheService(repo, client)

		got, err := svc.EnsureCached(ctx, city, day)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.True(t, utils.SameDate(day, got.Day))
		assert.Equal(t, 1, client.calls)
		assert.Len(t, repo.records, 3)
	})

	t.Run("Day absent after fetch means no data", func(t *testing.T) {
		repo := newFakeCityWeatherRepo()
		client := &fakeWeatherClient{
			window: []*models.CityWeather{record(-20)},
		}
		svc := NewWeatherCacheService(repo, client)

		got, err := svc.EnsureCached(ctx, city, day)
		require.NoError(t, err)
		assert.Nil(t, got)
		assert.Equal(t, 1, client.calls)
	})

	t.Run("Fetch failure propagates", func(t *testing.T) {
		repo := newFakeCityWeatherRepo()
		client := &fakeWeatherClient{err: assert.AnError}
		svc := NewWeatherCacheService(repo, client)

		_, err := svc.EnsureCached(ctx, city, day)
		assert.Error(t, err)
		assert.Equal(t, 0, repo.upserts)
	})
}
