package models

// City is seed reference data. Names are not unique on their own
// (there are two Zarechny), the region disambiguates them.
type City struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	Name      string  `gorm:"size:100;not null;uniqueIndex:idx_city_name_region" json:"name"`
	Region    string  `gorm:"size:100;not null;uniqueIndex:idx_city_name_region" json:"region"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (City) TableName() string { return "cities" }

// Category is a seeded NGO / event category.
type Category struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:100;not null" json:"name"`
	Slug string `gorm:"uniqueIndex;size:100;not null" json:"slug"`
	Icon string `gorm:"size:20" json:"icon"`
}

func (Category) TableName() string { return "categories" }
