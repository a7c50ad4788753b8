package models

import "time"

// Barangay holds administrative-area metadata, mainly the population
// figure used for crime-rate and risk computations.
type Barangay struct {
	BarangayID   uint      `json:"barangay_id" gorm:"primaryKey;column:barangay_id"`
	Name         string    `json:"name" gorm:"column:name;size:100;not null;uniqueIndex:idx_barangays_area"`
	Municipality string    `json:"municipality" gorm:"column:municipality;size:100;not null;uniqueIndex:idx_barangays_area"`
	Province     string    `json:"province" gorm:"column:province;size:100;not null;uniqueIndex:idx_barangays_area"`
	Country      string    `json:"country" gorm:"column:country;size:100;not null;default:'PHILIPPINES'"`
	Population   int       `json:"population" gorm:"column:population;not null;default:0"`
	Latitude     float64   `json:"latitude" gorm:"column:latitude"`
	Longitude    float64   `json:"longitude" gorm:"column:longitude"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Barangay) TableName() string {
	return "barangays"
}
