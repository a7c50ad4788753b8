package models

import "time"

// Recommendation categories.
const (
	CategoryPatrol         = "patrol"
	CategoryCommunity      = "community"
	CategoryInvestigation  = "investigation"
	CategoryPrevention     = "prevention"
	CategoryInfrastructure = "infrastructure"
)

// Recommendation priorities.
const (
	PriorityLow      = "Low"
	PriorityMedium   = "Medium"
	PriorityHigh     = "High"
	PriorityCritical = "Critical"
)

// Recommendation is a templated action item generated from a Medium or
// High risk prediction. Like predictions, the collection is cleared and
// rebuilt wholesale on each regeneration pass.
type Recommendation struct {
	RecommendationID   uint      `json:"recommendation_id" gorm:"primaryKey;column:recommendation_id"`
	Barangay           string    `json:"barangay" gorm:"column:barangay;size:100;not null;index:idx_recommendations_area"`
	Municipality       string    `json:"municipality" gorm:"column:municipality;size:100;not null;index:idx_recommendations_area"`
	Province           string    `json:"province" gorm:"column:province;size:100;not null;index:idx_recommendations_area"`
	Country            string    `json:"country" gorm:"column:country;size:100;not null;default:'PHILIPPINES'"`
	CrimeType          string    `json:"crime_type" gorm:"column:crime_type;size:100"`
	Category           string    `json:"category" gorm:"column:category;size:20;not null;index"`
	Priority           string    `json:"priority" gorm:"column:priority;size:10;not null;index"`
	Title              string    `json:"title" gorm:"column:title;size:255;not null"`
	Description        string    `json:"description" gorm:"column:description;not null"`
	Rationale          string    `json:"rationale" gorm:"column:rationale;not null"`
	ExpectedImpact     string    `json:"expected_impact" gorm:"column:expected_impact;not null"`
	ImplementationCost string    `json:"implementation_cost" gorm:"column:implementation_cost;size:10;not null"`
	Timeframe          string    `json:"timeframe" gorm:"column:timeframe;size:20;not null"`
	SuccessMetrics     []string  `json:"success_metrics" gorm:"column:success_metrics;serializer:json"`
	RiskFactors        []string  `json:"risk_factors" gorm:"column:risk_factors;serializer:json"`
	Confidence         float64   `json:"confidence" gorm:"column:confidence;not null"`
	Status             string    `json:"status" gorm:"column:status;size:20;not null;default:'pending';index"`
	CreatedAt          time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt          time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Recommendation) TableName() string {
	return "recommendations"
}
