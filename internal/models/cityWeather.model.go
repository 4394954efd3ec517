package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Thunderstorm range of WMO weather interpretation codes.
const (
	WeatherCodeThunderstormMin = 95
	WeatherCodeThunderstormMax = 99
)

// CityWeather is one day of aggregates for one reference city. Populated
// either by the nightly batch ingest or lazily by the worker on cache miss.
type CityWeather struct {
	BaseUUIDModel
	CityID int       `gorm:"not null;uniqueIndex:idx_city_weather_day,composite:0" json:"cityId"`
	City   City      `gorm:"foreignKey:CityID"                                     json:"city"`
	Day    time.Time `gorm:"type:date;not null;uniqueIndex:idx_city_weather_day,composite:1" json:"day"`

	WeatherCode      *int             `gorm:"type:int"              json:"weatherCode"`
	TempMin          *float64         `gorm:"type:double precision" json:"tempMin"`
	TempMean         *float64         `gorm:"type:double precision" json:"tempMean"`
	TempMax          *float64         `gorm:"type:double precision" json:"tempMax"`
	ApparentTempMin  *float64         `gorm:"type:double precision" json:"apparentTempMin"`
	ApparentTempMax  *float64         `gorm:"type:double precision" json:"apparentTempMax"`
	PressureMean     *float64         `gorm:"type:double precision" json:"pressureMean"`
	HumidityMean     *float64         `gorm:"type:double precision" json:"humidityMean"`
	WindSpeedMax     *float64         `gorm:"type:double precision" json:"windSpeedMax"`
	WindGustsMax     *float64         `gorm:"type:double precision" json:"windGustsMax"`
	UVIndexMax       *float64         `gorm:"type:double precision" json:"uvIndexMax"`
	CloudCoverMean   *float64         `gorm:"type:double precision" json:"cloudCoverMean"`
	SunshineDuration *float64         `gorm:"type:double precision" json:"sunshineDuration"`
	PrecipitationSum *decimal.Decimal `gorm:"type:numeric(8,2)"     json:"precipitationSum"`
	PrecipitationHrs *float64         `gorm:"type:double precision" json:"precipitationHours"`
	IsThunderstorm   bool             `gorm:"type:bool;default:false" json:"isThunderstorm"`

	// Raw keeps the provider's payload for the day so aggregates can be
	// recomputed without another external call.
	Raw datatypes.JSON `gorm:"type:jsonb" json:"raw,omitempty"`
}

// ThunderstormDay reports whether a WMO code falls in the thunderstorm range.
func ThunderstormDay(code *int) bool {
	if code == nil {
		return false
	}
	return *code >= WeatherCodeThunderstormMin && *code <= WeatherCodeThunderstormMax
}
