package services

import (
	"context"
	"testing"
	"time"

	"github.com/jltdev15/crime-analytics/internal/models"
)

func TestParseHour(t *testing.T) {
	if h, ok := parseHour("22:30"); !ok || h != 22 {
		t.Errorf("expected hour 22, got: %d %v", h, ok)
	}
	if h, ok := parseHour("09:05"); !ok || h != 9 {
		t.Errorf("expected hour 9, got: %d %v", h, ok)
	}
	for _, bad := range []string{"", "25:00", "midnight", "12"} {
		if _, ok := parseHour(bad); ok {
			t.Errorf("expected rejection of %q", bad)
		}
	}
}

func TestAnalyzeCrimePatterns(t *testing.T) {
	monday := time.Date(2026, time.August, 24, 0, 0, 0, 0, time.UTC)
	crimes := []models.Crime{
		{ConfinementDate: monday, ConfinementTime: "22:00"},
		{ConfinementDate: monday, ConfinementTime: "22:15"},
		{ConfinementDate: monday, ConfinementTime: "22:40"},
		{ConfinementDate: monday.AddDate(0, 0, 1), ConfinementTime: "14:00"},
		{ConfinementDate: monday.AddDate(0, 0, 2), ConfinementTime: "bogus"},
	}

	patterns := analyzeCrimePatterns(crimes)
	if patterns.total != 5 {
		t.Errorf("expected total 5, got: %d", patterns.total)
	}
	if len(patterns.peakHours) == 0 || patterns.peakHours[0] != "22:00" {
		t.Errorf("expected 22:00 as peak hour, got: %v", patterns.peakHours)
	}
	if len(patterns.peakDays) == 0 || patterns.peakDays[0] != "Monday" {
		t.Errorf("expected Monday as peak day, got: %v", patterns.peakDays)
	}
}

// Drug-related predictions produce both the investigation protocol and
// the prevention program.
func TestBuildRecommendations_DrugCrime(t *testing.T) {
	db := setupTestDB(t)
	seedMonthlyCrimes(t, db, "SANTA CRUZ", "DRUGS", 6, 3)

	svc := NewPredictiveService(db).(*predictiveService)
	prediction := &models.Prediction{
		Barangay: "SANTA CRUZ", Municipality: "LUBAO", Province: "PAMPANGA", Country: "PHILIPPINES",
		CrimeType: "DRUGS", RiskLevel: models.RiskHigh, Probability: 0.75, Confidence: 0.8,
		Forecast: []models.ForecastPoint{
			{Month: "2026-09", Predicted: 3, Lower: 2, Upper: 4, Confidence: 0.8, Method: models.MethodStatistical},
			{Month: "2026-10", Predicted: 3, Lower: 2, Upper: 4, Confidence: 0.8, Method: models.MethodStatistical},
		},
	}

	recs, err := svc.buildRecommendations(context.Background(), prediction)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	categories := map[string]int{}
	for _, r := range recs {
		categories[r.Category]++
		if r.Confidence <= 0 || r.Confidence > 1 {
			t.Errorf("confidence out of range: %+v", r)
		}
		if r.Barangay != "SANTA CRUZ" || r.CrimeType != "DRUGS" {
			t.Errorf("recommendation not bound to the prediction's key: %+v", r)
		}
	}
	if categories[models.CategoryInvestigation] != 1 {
		t.Errorf("expected one investigation recommendation, got: %d", categories[models.CategoryInvestigation])
	}
	if categories[models.CategoryPrevention] == 0 {
		t.Error("expected a drug prevention recommendation")
	}
	if categories[models.CategoryPatrol] != 1 {
		t.Errorf("expected one patrol recommendation for high risk, got: %d", categories[models.CategoryPatrol])
	}
}
