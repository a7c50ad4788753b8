package services

import (
	"testing"
	"time"

	"github.com/jltdev15/crime-analytics/internal/models"
)

func TestHistoricalTrend(t *testing.T) {
	start := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

	doubling := makeSeries(start, 2, 2, 4, 4)
	if got := historicalTrend(doubling); got != 1 {
		t.Errorf("expected trend 1.0 for a doubling series, got: %f", got)
	}

	flat := makeSeries(start, 3, 3, 3, 3)
	if got := historicalTrend(flat); got != 0 {
		t.Errorf("expected trend 0 for a flat series, got: %f", got)
	}

	if got := historicalTrend(nil); got != 0 {
		t.Errorf("expected trend 0 for empty series, got: %f", got)
	}

	// First half averaging zero must not divide by zero.
	fromZero := makeSeries(start, 0, 0, 5, 5)
	if got := historicalTrend(fromZero); got != 0 {
		t.Errorf("expected trend 0 when first half is zero, got: %f", got)
	}
}

func TestSeasonalPattern_NeedsTwelveIncidents(t *testing.T) {
	start := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	series := makeSeries(start, 2, 3, 2)
	crimes := make([]models.Crime, 7)

	if got := seasonalPattern(crimes, series); got != 0 {
		t.Errorf("expected 0 below the 12-incident threshold, got: %f", got)
	}
}

func TestSeasonalPattern_VariedMonths(t *testing.T) {
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	series := makeSeries(start, 1, 8, 1, 8, 1, 8, 1, 8, 1, 8, 1, 8)
	crimes := make([]models.Crime, 54)

	got := seasonalPattern(crimes, series)
	if got <= 0 {
		t.Errorf("expected positive seasonal signal for an oscillating series, got: %f", got)
	}
	if invalid(got) {
		t.Errorf("seasonal pattern must be finite, got: %f", got)
	}
}

func TestPopulationDensity(t *testing.T) {
	if got := populationDensity(1000); got != 0.05 {
		t.Errorf("expected 0.05 for population 1000, got: %f", got)
	}
	if got := populationDensity(40000); got != 1 {
		t.Errorf("expected saturation at 1, got: %f", got)
	}
	if got := populationDensity(0); got != 0 {
		t.Errorf("expected 0 for empty population, got: %f", got)
	}
}

func TestRecentActivity(t *testing.T) {
	now := time.Date(2026, time.August, 31, 0, 0, 0, 0, time.UTC)

	if got := recentActivity(nil, now); got != 0 {
		t.Errorf("expected 0 with no incidents, got: %f", got)
	}

	// Only recent incidents: scaled-down weak signal.
	recent := []models.Crime{
		{ConfinementDate: now.AddDate(0, -1, 0)},
		{ConfinementDate: now.AddDate(0, -2, 0)},
	}
	if got := recentActivity(recent, now); got != 0.2 {
		t.Errorf("expected 2/10 with no older incidents, got: %f", got)
	}

	// A burst after a quiet history scores above 1.
	var burst []models.Crime
	burst = append(burst, models.Crime{ConfinementDate: now.AddDate(0, -20, 0)})
	for i := 0; i < 9; i++ {
		burst = append(burst, models.Crime{ConfinementDate: now.AddDate(0, -1, -i)})
	}
	if got := recentActivity(burst, now); got <= 1 {
		t.Errorf("expected elevated recent activity, got: %f", got)
	}
}

func TestRiskProbability_Clamped(t *testing.T) {
	high := models.RiskFactors{HistoricalTrend: 5, SeasonalPattern: 5, PopulationDensity: 1, RecentActivity: 10}
	if got := riskProbability(high); got != 0.9 {
		t.Errorf("expected clamp at 0.9, got: %f", got)
	}

	low := models.RiskFactors{HistoricalTrend: -5, SeasonalPattern: 0, PopulationDensity: 0, RecentActivity: 0}
	if got := riskProbability(low); got != 0.1 {
		t.Errorf("expected clamp at 0.1, got: %f", got)
	}
}

func TestRiskLevelBoundaries(t *testing.T) {
	cases := []struct {
		probability float64
		want        string
	}{
		{0.1, models.RiskLow},
		{0.29, models.RiskLow},
		{0.3, models.RiskMedium},
		{0.5, models.RiskMedium},
		{0.69, models.RiskMedium},
		{0.7, models.RiskHigh},
		{0.9, models.RiskHigh},
	}
	for _, tc := range cases {
		if got := riskLevelFor(tc.probability); got != tc.want {
			t.Errorf("riskLevelFor(%f) = %s, want %s", tc.probability, got, tc.want)
		}
	}
}
