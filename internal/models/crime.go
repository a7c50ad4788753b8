package models

import "time"

// Crime represents a single recorded incident. The area tuple
// (barangay, municipality, province, country) plus CrimeType is the
// grouping key used by analytics and forecasting.
type Crime struct {
	CrimeID         uint      `json:"crime_id" gorm:"primaryKey;column:crime_id"`
	CaseNumber      *string   `json:"case_number,omitempty" gorm:"column:case_number;size:50;uniqueIndex"`
	CrimeType       string    `json:"crime_type" gorm:"column:crime_type;size:100;not null;index"`
	Status          string    `json:"status" gorm:"column:status;size:20;not null;default:'ONGOING'"`
	Gender          string    `json:"gender" gorm:"column:gender;size:10"`
	Age             int       `json:"age" gorm:"column:age"`
	CivilStatus     string    `json:"civil_status" gorm:"column:civil_status;size:20"`
	ConfinementDate time.Time `json:"confinement_date" gorm:"column:confinement_date;not null;index"`
	ConfinementTime string    `json:"confinement_time" gorm:"column:confinement_time;size:5"`
	Barangay        string    `json:"barangay" gorm:"column:barangay;size:100;not null;index:idx_crimes_area"`
	Municipality    string    `json:"municipality" gorm:"column:municipality;size:100;not null;index:idx_crimes_area"`
	Province        string    `json:"province" gorm:"column:province;size:100;not null;index:idx_crimes_area"`
	Country         string    `json:"country" gorm:"column:country;size:100;not null;default:'PHILIPPINES'"`
	CreatedAt       time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt       time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Crime) TableName() string {
	return "crimes"
}
