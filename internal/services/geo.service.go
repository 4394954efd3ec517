package services

import (
	"context"
	"math"
	"vitalsky/internal/logger"
	"vitalsky/internal/models"
	"vitalsky/internal/repositories"
)

const (
	// GEO_BOUNDING_BOX_DEGREES narrows the candidate set before the exact
	// distance scan. A city just outside the box can in principle be nearer
	// than everything inside it; accepted as a performance trade-off.
	GEO_BOUNDING_BOX_DEGREES = 2.0

	// GEO_FALLBACK_SAMPLE_SIZE caps the unbounded scan used when the
	// bounding box comes back empty.
	GEO_FALLBACK_SAMPLE_SIZE = 50

	EARTH_RADIUS_KM = 6371.0
)

// GeoService resolves arbitrary coordinates to the nearest reference city.
type GeoService struct {
	cities repositories.CityRepository
	log    logger.Logger
}

func NewGeoService(cities repositories.CityRepository) *GeoService {
	return &GeoService{
		cities: cities,
		log:    logger.New("geoService"),
	}
}

// NearestCity returns the reference city closest to (lat, lon), or nil when
// the reference set is empty. Ties resolve to the first candidate scanned.
func (s *GeoService) NearestCity(
	ctx context.Context,
	lat, lon float64,
) (*models.City, error) {
	log := s.log.Function("NearestCity")

	candidates, err := s.cities.FindWithinBox(
		ctx,
		lat-GEO_BOUNDING_BOX_DEGREES,
		lat+GEO_BOUNDING_BOX_DEGREES,
		lon-GEO_BOUNDING_BOX_DEGREES,
		lon+GEO_BOUNDING_BOX_DEGREES,
	)
	if err != nil {
		return nil, err
	}

	if len(candidates) == 0 {
		log.Debug("bounding box empty, falling back to sample", "lat", lat, "lon", lon)
		candidates, err = s.cities.Sample(ctx, GEO_FALLBACK_SAMPLE_SIZE)
		if err != nil {
			return nil, err
		}
	}

	if len(candidates) == 0 {
		return nil, nil
	}

	best := 0
	bestDist := Haversine(lat, lon, candidates[0].Latitude, candidates[0].Longitude)
	for i := 1; i < len(candidates); i++ {
		dist := Haversine(lat, lon, candidates[i].Latitude, candidates[i].Longitude)
		if dist < bestDist {
			best = i
			bestDist = dist
		}
	}

	nearest := candidates[best]
	log.Debug("resolved nearest city",
		"city", nearest.Name,
		"cityID", nearest.ID,
		"distanceKm", bestDist,
	)

	return &nearest, nil
}

// Haversine computes the great-circle distance between two coordinates in
// kilometers.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EARTH_RADIUS_KM * c
}

func toRadians(degrees float64) float64 {
	return degrees * math.Pi / 180
}
