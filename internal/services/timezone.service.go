package services

import (
	"context"
	"time"
	"vitalsky/internal/logger"
	"vitalsky/internal/models"
	"vitalsky/internal/repositories"
	"vitalsky/internal/utils"

	"github.com/google/uuid"
)

// TimezoneService answers "where was this user on (roughly) this date" from
// sparse location history. A sample may be recorded a calendar day off from
// the date being asked about (device clock vs UTC date), so every lookup
// probes date-1, date, date+1 in that order and takes the first hit.
type TimezoneService struct {
	locations repositories.UserLocationRepository
	log       logger.Logger
}

func NewTimezoneService(locations repositories.UserLocationRepository) *TimezoneService {
	return &TimezoneService{
		locations: locations,
		log:       logger.New("timezoneService"),
	}
}

// Resolve returns the user's IANA timezone around the given UTC date, or ""
// when no nearby sample carries one. Callers treat "" as "skip this user for
// now", never as an error.
func (s *TimezoneService) Resolve(
	ctx context.Context,
	userID uuid.UUID,
	approxUTCDate time.Time,
) (string, error) {
	for _, date := range candidateDates(approxUTCDate) {
		location, err := s.locations.LatestWithTimezone(ctx, userID, date)
		if err != nil {
			return "", err
		}
		if location != nil && location.Timezone != nil && *location.Timezone != "" {
			return *location.Timezone, nil
		}
	}

	return "", nil
}

// ResolveCoordinate returns the location sample nearest in time to the given
// date using the same probe order, or nil when the user has no sample in the
// window.
func (s *TimezoneService) ResolveCoordinate(
	ctx context.Context,
	userID uuid.UUID,
	date time.Time,
) (*models.UserLocation, error) {
	for _, candidate := range candidateDates(date) {
		location, err := s.locations.LatestForDate(ctx, userID, candidate)
		if err != nil {
			return nil, err
		}
		if location != nil {
			return location, nil
		}
	}

	return nil, nil
}

func candidateDates(date time.Time) []time.Time {
	return []time.Time{
		utils.AddDays(date, -1),
		utils.DateOnly(date),
		utils.AddDays(date, 1),
	}
}
