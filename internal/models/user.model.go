package models

type User struct {
	BaseUUIDModel
	FirstName   string  `gorm:"type:text"               json:"firstName"`
	LastName    string  `gorm:"type:text"               json:"lastName"`
	DisplayName string  `gorm:"type:text"               json:"displayName"`
	Email       *string `gorm:"type:text;uniqueIndex"   json:"email"`
	IsActive    bool    `gorm:"type:bool;default:true"  json:"isActive"`

	// WeatherTrackingEnabled is owned by the mobile app's settings flow;
	// this service only reads it.
	WeatherTrackingEnabled bool `gorm:"type:bool;default:false;index" json:"weatherTrackingEnabled"`
}
