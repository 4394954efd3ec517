package repositories

import (
	"vitalsky/internal/database"
)

type Repository struct {
	User         UserRepository
	UserLocation UserLocationRepository
	City         CityRepository
	CityWeather  CityWeatherRepository
	UserWeather  UserWeatherRepository
	WeatherJob   WeatherJobRepository
}

func New(db database.DB) Repository {
	return Repository{
		User:         NewUserRepository(db),
		UserLocation: NewUserLocationRepository(db),
		City:         NewCityRepository(db),
		CityWeather:  NewCityWeatherRepository(db),
		UserWeather:  NewUserWeatherRepository(db), // user weather reads go through the valkey cache
		WeatherJob:   NewWeatherJobRepository(db),
	}
}
