package models

// City is a static reference location. Weather is cached per city and every
// user is resolved to their nearest city rather than fetched per coordinate.
type City struct {
	BaseModel
	Name      string  `gorm:"type:text;not null"                   json:"name"`
	Country   string  `gorm:"type:text"                            json:"country"`
	Latitude  float64 `gorm:"type:double precision;not null;index" json:"latitude"`
	Longitude float64 `gorm:"type:double precision;not null;index" json:"longitude"`
	Timezone  string  `gorm:"type:text"                            json:"timezone"`
}
