package seed

import (
	"vitalsky/config"
	"vitalsky/internal/logger"

	. "vitalsky/internal/models"

	"gorm.io/gorm"
)

// Reference cities for nearest-city weather resolution. A small spread of
// major cities is enough for development; production loads a full dataset.
var cities = []City{
	{Name: "New York", Country: "US", Latitude: 40.7128, Longitude: -74.0060, Timezone: "America/New_York"},
	{Name: "Los Angeles", Country: "US", Latitude: 34.0522, Longitude: -118.2437, Timezone: "America/Los_Angeles"},
	{Name: "Chicago", Country: "US", Latitude: 41.8781, Longitude: -87.6298, Timezone: "America/Chicago"},
	{Name: "Denver", Country: "US", Latitude: 39.7392, Longitude: -104.9903, Timezone: "America/Denver"},
	{Name: "Mexico City", Country: "MX", Latitude: 19.4326, Longitude: -99.1332, Timezone: "America/Mexico_City"},
	{Name: "Sao Paulo", Country: "BR", Latitude: -23.5505, Longitude: -46.6333, Timezone: "America/Sao_Paulo"},
	{Name: "Buenos Aires", Country: "AR", Latitude: -34.6037, Longitude: -58.3816, Timezone: "America/Argentina/Buenos_Aires"},
	{Name: "London", Country: "GB", Latitude: 51.5074, Longitude: -0.1278, Timezone: "Europe/London"},
	{Name: "Paris", Country: "FR", Latitude: 48.8566, Longitude: 2.3522, Timezone: "Europe/Paris"},
	{Name: "Berlin", Country: "DE", Latitude: 52.5200, Longitude: 13.4050, Timezone: "Europe/Berlin"},
	{Name: "Madrid", Country: "ES", Latitude: 40.4168, Longitude: -3.7038, Timezone: "Europe/Madrid"},
	{Name: "Rome", Country: "IT", Latitude: 41.9028, Longitude: 12.4964, Timezone: "Europe/Rome"},
	{Name: "Moscow", Country: "RU", Latitude: 55.7558, Longitude: 37.6173, Timezone: "Europe/Moscow"},
	{Name: "Cairo", Country: "EG", Latitude: 30.0444, Longitude: 31.2357, Timezone: "Africa/Cairo"},
	{Name: "Lagos", Country: "NG", Latitude: 6.5244, Longitude: 3.3792, Timezone: "Africa/Lagos"},
	{Name: "Johannesburg", Country: "ZA", Latitude: -26.2041, Longitude: 28.0473, Timezone: "Africa/Johannesburg"},
	{Name: "Dubai", Country: "AE", Latitude: 25.2048, Longitude: 55.2708, Timezone: "Asia/Dubai"},
	{Name: "Mumbai", Country: "IN", Latitude: 19.0760, Longitude: 72.8777, Timezone: "Asia/Kolkata"},
	{Name: "Singapore", Country: "SG", Latitude: 1.3521, Longitude: 103.8198, Timezone: "Asia/Singapore"},
	{Name: "Hong Kong", Country: "HK", Latitude: 22.3193, Longitude: 114.1694, Timezone: "Asia/Hong_Kong"},
	{Name: "Shanghai", Country: "CN", Latitude: 31.2304, Longitude: 121.4737, Timezone: "Asia/Shanghai"},
	{Name: "Tokyo", Country: "JP", Latitude: 35.6762, Longitude: 139.6503, Timezone: "Asia/Tokyo"},
	{Name: "Seoul", Country: "KR", Latitude: 37.5665, Longitude: 126.9780, Timezone: "Asia/Seoul"},
	{Name: "Sydney", Country: "AU", Latitude: -33.8688, Longitude: 151.2093, Timezone: "Australia/Sydney"},
	{Name: "Auckland", Country: "NZ", Latitude: -36.8509, Longitude: 174.7645, Timezone: "Pacific/Auckland"},
}

func Seed(db *gorm.DB, config config.Config, log logger.Logger) error {
	log = log.Function("seed")
	log.Info("Seeding reference cities")

	for _, city := range cities {
		var existing City
		err := db.First(&existing, "name = ? AND country = ?", city.Name, city.Country).Error
		if err == nil {
			continue
		}
		if err != gorm.ErrRecordNotFound {
			return log.Err("failed to check existing city", err, "city", city.Name)
		}

		if err := db.Create(&city).Error; err != nil {
			return log.Err("failed to seed city", err, "city", city.Name)
		}
	}

	log.Info("Reference cities seeded", "count", len(cities))
	return nil
}
