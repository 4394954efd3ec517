package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UserWeather is the durable per-user output the rest of the app reads. One
// row per (user, date), upserted and never duplicated.
type UserWeather struct {
	BaseUUIDModel
	UserID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_weather_date,composite:0" json:"userId"`
	User     User      `gorm:"foreignKey:UserID"                                                json:"user"`
	Date     time.Time `gorm:"type:date;not null;uniqueIndex:idx_user_weather_date,composite:1" json:"date"`
	CityID   int       `gorm:"not null;index" json:"cityId"`
	City     City      `gorm:"foreignKey:CityID" json:"city"`
	Timezone string    `gorm:"type:text"      json:"timezone"`

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
}

// FromCityWeather builds the per-user copy of a cached city day.
func FromCityWeather(userID uuid.UUID, date time.Time, timezone string, cw *CityWeather) *UserWeather {
	return &UserWeather{
		UserID:           userID,
		Date:             date,
		CityID:           cw.CityID,
		Timezone:         timezone,
		WeatherCode:      cw.WeatherCode,
		TempMin:          cw.TempMin,
		TempMean:         cw.TempMean,
		TempMax:          cw.TempMax,
		ApparentTempMin:  cw.ApparentTempMin,
		ApparentTempMax:  cw.ApparentTempMax,
		PressureMean:     cw.PressureMean,
		HumidityMean:     cw.HumidityMean,
		WindSpeedMax:     cw.WindSpeedMax,
		WindGustsMax:     cw.WindGustsMax,
		UVIndexMax:       cw.UVIndexMax,
		CloudCoverMean:   cw.CloudCoverMean,
		SunshineDuration: cw.SunshineDuration,
		PrecipitationSum: cw.PrecipitationSum,
		PrecipitationHrs: cw.PrecipitationHrs,
		IsThunderstorm:   cw.IsThunderstorm,
	}
}
