package models

import (
	"time"

	"github.com/google/uuid"
)

// UserLocation is one daily location sample per user. The timezone is what the
// device reported when the sample was taken; it can be empty when the app only
// had raw coordinates.
type UserLocation struct {
	BaseUUIDModel
	UserID    uuid.UUID `gorm:"type:uuid;not null;index:idx_user_location_date,composite:0" json:"userId"`
	User      User      `gorm:"foreignKey:UserID"                                           json:"user"`
	Date      time.Time `gorm:"type:date;not null;index:idx_user_location_date,composite:1" json:"date"`
	Latitude  float64   `gorm:"type:double precision;not null"                              json:"latitude"`
	Longitude float64   `gorm:"type:double precision;not null"                              json:"longitude"`
	Timezone  *string   `gorm:"type:text"                                                   json:"timezone"`
}
