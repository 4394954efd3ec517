package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
	"vitalsky/config"
	"vitalsky/internal/logger"
	"vitalsky/internal/models"
	"vitalsky/internal/utils"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Open-Meteo fetch window: enough history to cover the backfill window plus
// retention slack, and a week of forecast so adjacent jobs hit the cache.
const (
	OPEN_METEO_PAST_DAYS     = 14
	OPEN_METEO_FORECAST_DAYS = 7
	OPEN_METEO_TIMEOUT_SEC   = 30
	OPEN_METEO_USER_AGENT    = "Vitalsky/1.0 (Weather Sync)"

	openMeteoDailyParams = "weather_code,temperature_2m_min,temperature_2m_mean,temperature_2m_max," +
		"apparent_temperature_min,apparent_temperature_max,pressure_msl_mean,relative_humidity_2m_mean," +
		"wind_speed_10m_max,wind_gusts_10m_max,uv_index_max,cloud_cover_mean,sunshine_duration," +
		"precipitation_sum,precipitation_hours"
)

// OpenMeteoService fetches daily weather windows for reference cities.
type OpenMeteoService struct {
	config     config.Config
	httpClient *http.Client
	log        logger.Logger
}

func NewOpenMeteoService(cfg config.Config) *OpenMeteoService {
	httpClient := &http.Client{
		Timeout: OPEN_METEO_TIMEOUT_SEC * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:    10,
			IdleConnTimeout: 90 * time.Second,
			MaxConnsPerHost: 10,
		},
	}

	return &OpenMeteoService{
		config:     cfg,
		httpClient: httpClient,
		log:        logger.New("openMeteoService"),
	}
}

type openMeteoResponse struct {
	Timezone string         `json:"timezone"`
	Daily    openMeteoDaily `json:"daily"`
}

type openMeteoDaily struct {
	Time                   []string   `json:"time"`
	WeatherCode            []*int     `json:"weather_code"`
	Temperature2mMin       []*float64 `json:"temperature_2m_min"`
	Temperature2mMean      []*float64 `json:"temperature_2m_mean"`
	Temperature2mMax       []*float64 `json:"temperature_2m_max"`
	ApparentTemperatureMin []*float64 `json:"apparent_temperature_min"`
	ApparentTemperatureMax []*float64 `json:"apparent_temperature_max"`
	PressureMslMean        []*float64 `json:"pressure_msl_mean"`
	RelativeHumidity2mMean []*float64 `json:"relative_humidity_2m_mean"`
	WindSpeed10mMax        []*float64 `json:"wind_speed_10m_max"`
	WindGusts10mMax        []*float64 `json:"wind_gusts_10m_max"`
	UVIndexMax             []*float64 `json:"uv_index_max"`
	CloudCoverMean         []*float64 `json:"cloud_cover_mean"`
	SunshineDuration       []*float64 `json:"sunshine_duration"`
	PrecipitationSum       []*float64 `json:"precipitation_sum"`
	PrecipitationHours     []*float64 `json:"precipitation_hours"`
}

// FetchDailyWindow performs one external call for the full past+forecast
// window anchored at now, in the city's own timezone (UTC when unset), and
// returns one CityWeather row per day the provider reported.
func (s *OpenMeteoService) FetchDailyWindow(
	ctx context.Context,
	city *models.City,
) ([]*models.CityWeather, error) {
	log := s.log.Function("FetchDailyWindow")

	timezone := city.Timezone
	if timezone == "" {
		timezone = "UTC"
	}

	params := url.Values{}
	params.Set("latitude", strconv.FormatFloat(city.Latitude, 'f', 4, 64))
	params.Set("longitude", strconv.FormatFloat(city.Longitude, 'f', 4, 64))
	params.Set("daily", openMeteoDailyParams)
	params.Set("timezone", timezone)
	params.Set("past_days", strconv.Itoa(OPEN_METEO_PAST_DAYS))
	params.Set("forecast_days", strconv.Itoa(OPEN_METEO_FORECAST_DAYS))

	apiURL := fmt.Sprintf("%s/v1/forecast?%s", s.config.WeatherAPIURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, log.Err("failed to build weather request", err, "cityID", city.ID)
	}
	req.Header.Set("User-Agent", OPEN_METEO_USER_AGENT)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, log.Err("weather request failed", err, "cityID", city.ID)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, log.Error(
			"weather request returned non-200",
			"cityID", city.ID,
			"status", resp.StatusCode,
			"body", string(body),
		)
	}

	var payload openMeteoResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, log.Err("failed to decode weather response", err, "cityID", city.ID)
	}

	if len(payload.Daily.Time) == 0 {
		return nil, log.Error("weather response contained no daily series", "cityID", city.ID)
	}

	records := make([]*models.CityWeather, 0, len(payload.Daily.Time))
	for i, dateStr := range payload.Daily.Time {
		day, err := utils.ParseDate(dateStr)
		if err != nil {
			log.Warn("skipping malformed day in weather response",
				"cityID", city.ID, "day", dateStr, "error", err)
			continue
		}

		record := s.buildRecord(city.ID, day, payload.Daily, i)
		records = append(records, record)
	}

	if len(records) == 0 {
		return nil, log.Error("weather response contained no usable days", "cityID", city.ID)
	}

	log.Info("Fetched weather window",
		"cityID", city.ID,
		"days", len(records),
		"from", utils.FormatDate(records[0].Day),
		"to", utils.FormatDate(records[len(records)-1].Day),
	)

	return records, nil
}

func (s *OpenMeteoService) buildRecord(
	cityID int,
	day time.Time,
	daily openMeteoDaily,
	i int,
) *models.CityWeather {
	record := &models.CityWeather{
		CityID:           cityID,
		Day:              day,
		WeatherCode:      intAt(daily.WeatherCode, i),
		TempMin:          floatAt(daily.Temperature2mMin, i),
		TempMean:         floatAt(daily.Temperature2mMean, i),
		TempMax:          floatAt(daily.Temperature2mMax, i),
		ApparentTempMin:  floatAt(daily.ApparentTemperatureMin, i),
		ApparentTempMax:  floatAt(daily.ApparentTemperatureMax, i),
		PressureMean:     floatAt(daily.PressureMslMean, i),
		HumidityMean:     floatAt(daily.RelativeHumidity2mMean, i),
		WindSpeedMax:     floatAt(daily.WindSpeed10mMax, i),
		WindGustsMax:     floatAt(daily.WindGusts10mMax, i),
		UVIndexMax:       floatAt(daily.UVIndexMax, i),
		CloudCoverMean:   floatAt(daily.CloudCoverMean, i),
		SunshineDuration: floatAt(daily.SunshineDuration, i),
		PrecipitationHrs: floatAt(daily.PrecipitationHours, i),
	}

	if v := floatAt(daily.PrecipitationSum, i); v != nil {
		sum := decimal.NewFromFloat(*v)
		record.PrecipitationSum = &sum
	}

	record.IsThunderstorm = models.ThunderstormDay(record.WeatherCode)

	raw, err := json.Marshal(map[string]any{
		"day":                 utils.FormatDate(day),
		"weather_code":        record.WeatherCode,
		"temperature_min":     record.TempMin,
		"temperature_mean":    record.TempMean,
		"temperature_max":     record.TempMax,
		"pressure_mean":       record.PressureMean,
		"humidity_mean":       record.HumidityMean,
		"wind_speed_max":      record.WindSpeedMax,
		"wind_gusts_max":      record.WindGustsMax,
		"uv_index_max":        record.UVIndexMax,
		"precipitation_hours": record.PrecipitationHrs,
	})
	if err == nil {
		record.Raw = datatypes.JSON(raw)
	}

	return record
}

func floatAt(values []*float64, i int) *float64 {
	if i < 0 || i >= len(values) {
		return nil
	}
	return values[i]
}

func intAt(values []*int, i int) *int {
	if i < 0 || i >= len(values) {
		return nil
	}
	return values[i]
}
