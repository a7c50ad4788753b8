package models

import "time"

// ForecastPoint is one month of a forecast. Predicted may be fractional
// for rare crime types whose historical monthly average is below 0.5.
type ForecastPoint struct {
	Month      string  `json:"month"`
	Predicted  float64 `json:"predicted"`
	Lower      float64 `json:"lower"`
	Upper      float64 `json:"upper"`
	Confidence float64 `json:"confidence"`
	Method     string  `json:"method"`
}

// Forecast methods.
const (
	MethodLearned     = "learned"
	MethodStatistical = "statistical"
)

// Risk levels.
const (
	RiskLow    = "Low"
	RiskMedium = "Medium"
	RiskHigh   = "High"
)

// RiskFactors are the four normalized inputs combined into the risk
// probability.
type RiskFactors struct {
	HistoricalTrend   float64 `json:"historicalTrend"`
	SeasonalPattern   float64 `json:"seasonalPattern"`
	PopulationDensity float64 `json:"populationDensity"`
	RecentActivity    float64 `json:"recentActivity"`
}

// Prediction is the persisted forecast for one (area, crime type)
// combination. The whole set is deleted and recreated on every
// regeneration pass, so there are never stale rows for combinations
// whose underlying data changed.
type Prediction struct {
	PredictionID uint            `json:"prediction_id" gorm:"primaryKey;column:prediction_id"`
	Barangay     string          `json:"barangay" gorm:"column:barangay;size:100;not null;index:idx_predictions_area"`
	Municipality string          `json:"municipality" gorm:"column:municipality;size:100;not null;index:idx_predictions_area"`
	Province     string          `json:"province" gorm:"column:province;size:100;not null;index:idx_predictions_area"`
	Country      string          `json:"country" gorm:"column:country;size:100;not null;default:'PHILIPPINES'"`
	CrimeType    string          `json:"crime_type" gorm:"column:crime_type;size:100;not null;index"`
	Forecast     []ForecastPoint `json:"forecast" gorm:"column:forecast;serializer:json"`
	RiskLevel    string          `json:"risk_level" gorm:"column:risk_level;size:10;not null;index"`
	Probability  float64         `json:"probability" gorm:"column:probability;not null"`
	Confidence   float64         `json:"confidence" gorm:"column:confidence;not null"`
	Factors      RiskFactors     `json:"factors" gorm:"column:factors;serializer:json"`
	CreatedAt    time.Time       `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time       `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Prediction) TableName() string {
	return "predictions"
}
