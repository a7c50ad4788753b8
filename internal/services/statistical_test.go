package services

import (
	"math"
	"testing"
	"time"

	"github.com/jltdev15/crime-analytics/internal/models"
)

func makeSeries(start time.Time, counts ...int) []monthPoint {
	points := make([]monthPoint, len(counts))
	for i, c := range counts {
		points[i] = monthPoint{month: startOfMonth(start.AddDate(0, i, 0)), count: c}
	}
	return points
}

func TestDefaultForecast_ZeroBase(t *testing.T) {
	start := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	forecast := defaultForecast(6, 0, true, start)

	if len(forecast) != 6 {
		t.Fatalf("expected 6 points, got: %d", len(forecast))
	}
	for _, f := range forecast {
		if f.Predicted != 0 || f.Lower != 0 || f.Upper != 0 {
			t.Errorf("zero base must yield zero forecast, got: %+v", f)
		}
		if f.Confidence != confidenceDefaultLowFreq {
			t.Errorf("expected confidence %f, got: %f", confidenceDefaultLowFreq, f.Confidence)
		}
	}
	if forecast[0].Month != "2026-04" {
		t.Errorf("expected first month 2026-04, got: %s", forecast[0].Month)
	}
}

func TestDefaultForecast_Deterministic(t *testing.T) {
	start := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	first := defaultForecast(6, 3, false, start)
	second := defaultForecast(6, 3, false, start)

	for i := range first {
		if first[i] != second[i] {
			t.Errorf("point %d differs between identical calls: %+v vs %+v", i, first[i], second[i])
		}
	}
}

// Sub-0.5 bases forecast fractional expected counts at one-decimal
// granularity instead of collapsing to zero.
func TestDefaultForecast_FractionalBase(t *testing.T) {
	start := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	forecast := defaultForecast(6, 0.3, true, start)

	for _, f := range forecast {
		if f.Predicted != round1(f.Predicted) {
			t.Errorf("expected one-decimal granularity, got: %f", f.Predicted)
		}
		if f.Lower > f.Predicted || f.Predicted > f.Upper || f.Lower < 0 {
			t.Errorf("bounds out of order: %+v", f)
		}
	}
}

func TestDefaultForecast_LowFrequencyCap(t *testing.T) {
	start := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	forecast := defaultForecast(12, 1.5, true, start)

	for _, f := range forecast {
		// Low-frequency forecasts never exceed twice the base.
		if f.Predicted > 3 {
			t.Errorf("low-frequency point above cap: %+v", f)
		}
	}
}

func TestLinearRegressionForecast_SteadySeries(t *testing.T) {
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	counts := make([]int, 24)
	for i := range counts {
		counts[i] = 10
	}
	series := makeSeries(start, counts...)

	forecast := linearRegressionForecast(series, 6)
	if len(forecast) != 6 {
		t.Fatalf("expected 6 points, got: %d", len(forecast))
	}
	for _, f := range forecast {
		if f.Predicted < 7 || f.Predicted > 13 {
			t.Errorf("expected forecast near the steady level of 10, got: %+v", f)
		}
		if f.Confidence != confidenceStatistical {
			t.Errorf("expected confidence %f, got: %f", confidenceStatistical, f.Confidence)
		}
		if f.Method != models.MethodStatistical {
			t.Errorf("expected statistical method, got: %s", f.Method)
		}
		if f.Lower > f.Predicted || f.Predicted > f.Upper || f.Lower < 0 {
			t.Errorf("bounds out of order: %+v", f)
		}
	}
}

// A strong upward trend must not extrapolate past historical magnitude.
func TestLinearRegressionForecast_TrendCapped(t *testing.T) {
	start := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	series := makeSeries(start, 1, 2, 4, 5, 7, 8, 10, 11, 13, 14, 16, 18)

	forecast := linearRegressionForecast(series, 12)
	historicalMax := 18.0
	for _, f := range forecast {
		if f.Predicted > historicalMax*1.5 {
			t.Errorf("forecast exceeds 1.5x historical max: %+v", f)
		}
	}
}

func TestLinearRegressionForecast_FractionalCapFloored(t *testing.T) {
	start := time.Date(2024, time.December, 1, 0, 0, 0, 0, time.UTC)
	// Historical max 5 makes the cap 7.5; the fitted trend extrapolates
	// past it, and integer rounding must not climb back above the cap.
	series := makeSeries(start, 1, 2, 3, 4, 5)

	forecast := linearRegressionForecast(series, 6)
	capped := false
	for _, f := range forecast {
		if f.Predicted > 7.5 {
			t.Errorf("forecast exceeds fractional cap of 7.5: %+v", f)
		}
		if f.Predicted != math.Round(f.Predicted) {
			t.Errorf("expected integer granularity, got: %+v", f)
		}
		if f.Predicted == 7 {
			capped = true
		}
	}
	if !capped {
		t.Errorf("expected the trend to hit the floored cap of 7, got: %+v", forecast)
	}
}

func TestLinearRegressionForecast_LowFrequencyHardCap(t *testing.T) {
	start := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	series := makeSeries(start, 1, 1, 2, 1, 1, 2, 1, 2, 1, 1, 2, 1)

	forecast := linearRegressionForecast(series, 6)
	for _, f := range forecast {
		if f.Predicted > 3 {
			t.Errorf("low-frequency forecast above hard cap of 3: %+v", f)
		}
		if f.Confidence != confidenceStatisticalLowFreq {
			t.Errorf("expected low-frequency confidence, got: %f", f.Confidence)
		}
	}
}

func TestLinearRegressionForecast_SinglePointFallsBack(t *testing.T) {
	start := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	series := makeSeries(start, 4)

	forecast := linearRegressionForecast(series, 6)
	if len(forecast) != 6 {
		t.Fatalf("expected 6 points, got: %d", len(forecast))
	}
	for _, f := range forecast {
		if f.Method != models.MethodStatistical {
			t.Errorf("expected statistical method, got: %s", f.Method)
		}
	}
}

func TestValidateLearnedForecast_NaNGuards(t *testing.T) {
	points := []models.ForecastPoint{
		{Month: "2026-09", Predicted: nan(), Confidence: nan(), Method: models.MethodLearned},
		{Month: "2026-10", Predicted: 4, Confidence: 0.9, Method: models.MethodLearned},
	}
	out := validateLearnedForecast(points, 3, false)

	if len(out) != 2 {
		t.Fatalf("expected 2 points, got: %d", len(out))
	}
	for _, f := range out {
		if invalid(f.Predicted) || invalid(f.Confidence) {
			t.Errorf("invalid number escaped validation: %+v", f)
		}
		if f.Predicted > 4.5 {
			t.Errorf("cap not applied: %+v", f)
		}
		if f.Method != models.MethodLearned {
			t.Errorf("validation must preserve the learned method, got: %s", f.Method)
		}
	}
}

func TestValidateLearnedForecast_CapHoldsAfterRounding(t *testing.T) {
	// Historical mean 5 makes the cap 7.5; a raw output of 7.8 rounds
	// to 8, which must floor back to 7 instead of escaping the cap.
	points := []models.ForecastPoint{
		{Month: "2026-09", Predicted: 7.8, Confidence: 0.8, Method: models.MethodLearned},
	}
	out := validateLearnedForecast(points, 5, false)

	if len(out) != 1 {
		t.Fatalf("expected 1 point, got: %d", len(out))
	}
	if out[0].Predicted != 7 {
		t.Errorf("expected floored cap of 7, got: %+v", out[0])
	}
	if out[0].Lower > out[0].Predicted || out[0].Upper < out[0].Predicted {
		t.Errorf("bounds do not bracket the capped value: %+v", out[0])
	}
}

func nan() float64 {
	z := 0.0
	return z / z
}
