package services

import (
	"math"
	"testing"
	"time"
)

func TestTrainSequenceModel_InsufficientData(t *testing.T) {
	start := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	// 10 months yields only 4 sliding-window pairs, below the
	// training minimum.
	series := makeSeries(start, 3, 4, 3, 5, 4, 3, 4, 5, 3, 4)

	if m := trainSequenceModel(series); m != nil {
		t.Fatal("expected nil model below the sample threshold")
	}
	if m := trainSequenceModel(nil); m != nil {
		t.Fatal("expected nil model for an empty series")
	}
}

func TestTrainSequenceModel_Trains(t *testing.T) {
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	series := makeSeries(start, 3, 5, 4, 6, 5, 7, 6, 8, 7, 9, 8, 10, 9, 11, 10, 12, 11, 13)

	m := trainSequenceModel(series)
	if m == nil {
		t.Fatal("expected trained model with 18 months of data")
	}
	if m.samples != 12 {
		t.Errorf("expected 12 training samples, got: %d", m.samples)
	}
	if m.iterations < 1 || m.iterations > trainingEpochs {
		t.Errorf("iteration count out of range: %d", m.iterations)
	}
	if invalid(m.mse) || m.mse < 0 {
		t.Errorf("invalid mse: %f", m.mse)
	}
}

// Two trainings over identical data must produce identical predictions.
func TestTrainSequenceModel_Deterministic(t *testing.T) {
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	series := makeSeries(start, 4, 6, 5, 7, 8, 6, 9, 7, 10, 8, 11, 9, 12, 10)

	first := trainSequenceModel(series)
	second := trainSequenceModel(series)
	if first == nil || second == nil {
		t.Fatal("expected both trainings to succeed")
	}

	window := []float64{9, 12, 10, 11, 13, 12}
	if p1, p2 := first.predict(window), second.predict(window); p1 != p2 {
		t.Errorf("identical trainings disagree: %f vs %f", p1, p2)
	}
	if first.mse != second.mse || first.iterations != second.iterations {
		t.Errorf("training metadata differs: mse %f/%f iterations %d/%d",
			first.mse, second.mse, first.iterations, second.iterations)
	}
}

func TestNormalizeWindow_DegenerateRange(t *testing.T) {
	out := normalizeWindow([]float64{5, 5, 5, 5, 5, 5})
	for i, v := range out {
		if v != 0 {
			t.Errorf("degenerate range should map through divisor 1, got out[%d]=%f", i, v)
		}
	}
}

func TestNormalizeWindow_InvalidInputs(t *testing.T) {
	out := normalizeWindow([]float64{2, math.NaN(), 4, math.Inf(1), 3, 1})
	for i, v := range out {
		if invalid(v) {
			t.Fatalf("invalid value escaped normalization at %d", i)
		}
		if v < 0 || v > 1 {
			t.Errorf("normalized value out of [0,1]: out[%d]=%f", i, v)
		}
	}
}

func TestPredictionConfidence(t *testing.T) {
	if got := predictionConfidence(10, 10); got != 1 {
		t.Errorf("prediction at the mean should score 1, got: %f", got)
	}
	if got := predictionConfidence(math.NaN(), 10); got != 0.5 {
		t.Errorf("invalid prediction should score 0.5, got: %f", got)
	}
	if got := predictionConfidence(5, 0); got != 0.5 {
		t.Errorf("zero mean should score 0.5, got: %f", got)
	}
	if got := predictionConfidence(100, 2); got < 0.1 {
		t.Errorf("confidence floor of 0.1 violated: %f", got)
	}
}

func TestLearnedForecast_RequiresFullWindow(t *testing.T) {
	start := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	series := makeSeries(start, 3, 4, 3, 5, 4)

	m := &sequenceModel{outMin: 0, outMax: 10}
	if got := learnedForecast(m, series, 6, time.Now().UTC()); got != nil {
		t.Fatal("expected nil forecast with fewer than 6 months of history")
	}
}

func TestLearnedForecast_RollsForward(t *testing.T) {
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	series := makeSeries(start, 3, 5, 4, 6, 5, 7, 6, 8, 7, 9, 8, 10, 9, 11, 10, 12, 11, 13)
	m := trainSequenceModel(series)
	if m == nil {
		t.Fatal("training failed")
	}

	now := time.Date(2026, time.August, 31, 0, 0, 0, 0, time.UTC)
	forecast := learnedForecast(m, series, 6, now)
	if len(forecast) != 6 {
		t.Fatalf("expected 6 points, got: %d", len(forecast))
	}
	if forecast[0].Month != "2026-09" {
		t.Errorf("expected first month 2026-09, got: %s", forecast[0].Month)
	}
	for _, f := range forecast {
		if f.Predicted < 1 {
			t.Errorf("learned forecast floor of 1 violated: %+v", f)
		}
		if f.Confidence < 0.1 || f.Confidence > 1 {
			t.Errorf("confidence out of range: %f", f.Confidence)
		}
	}

	repeat := learnedForecast(m, series, 6, now)
	for i := range forecast {
		if forecast[i] != repeat[i] {
			t.Errorf("point %d differs between identical calls", i)
		}
	}
}
