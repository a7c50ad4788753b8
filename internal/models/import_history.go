package models

import "time"

// Import file types.
const (
	ImportTypeCrime      = "crime_data"
	ImportTypePopulation = "population_data"
)

// ImportHistory records the outcome of one spreadsheet import.
type ImportHistory struct {
	ImportID          string    `json:"import_id" gorm:"primaryKey;column:import_id;size:36"`
	Type              string    `json:"type" gorm:"column:type;size:20;not null"`
	Filename          string    `json:"filename" gorm:"column:filename;size:255;not null"`
	TotalRows         int       `json:"total_rows" gorm:"column:total_rows;not null"`
	ImportedCount     int       `json:"imported_count" gorm:"column:imported_count"`
	SkippedCount      int       `json:"skipped_count" gorm:"column:skipped_count"`
	DuplicatesSkipped int       `json:"duplicates_skipped" gorm:"column:duplicates_skipped"`
	Retrained         bool      `json:"retrained" gorm:"column:retrained;default:false"`
	ImportedAt        time.Time `json:"imported_at" gorm:"column:imported_at;autoCreateTime"`
}

func (ImportHistory) TableName() string {
	return "import_history"
}
