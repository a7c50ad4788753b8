package services

import (
	"math"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/jltdev15/crime-analytics/internal/models"
)

// A series averaging fewer than this many incidents per month is
// treated as low frequency: dampened seasonal variation, tighter caps
// and lower confidence, so regression noise is not amplified into
// implausible forecasts for rare crime types.
const lowFrequencyMean = 2.0

// Fixed per-call confidence labels. These are heuristic, not calibrated
// coverage probabilities.
const (
	confidenceStatistical        = 0.8
	confidenceStatisticalLowFreq = 0.6
	confidenceDefault            = 0.6
	confidenceDefaultLowFreq     = 0.5
)

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}

func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}

func invalid(x float64) bool {
	return math.IsNaN(x) || math.IsInf(x, 0)
}

// linearRegressionForecast fits an ordinary least-squares trend over
// the monthly series and extrapolates horizon months ahead, with a
// seasonal oscillation and capping against historical magnitude. Falls
// back to a default forecast when fewer than two monthly points exist.
func linearRegressionForecast(series []monthPoint, horizon int) []models.ForecastPoint {
	counts := seriesCounts(series)
	historicalMean := 0.0
	if len(counts) > 0 {
		historicalMean = stat.Mean(counts, nil)
	}
	historicalMax := seriesMax(series)
	isLowFrequency := historicalMean < lowFrequencyMean

	if len(series) < 2 {
		base := 0.0
		if historicalMean > 0 {
			base = round1(historicalMean)
		}
		return defaultForecast(horizon, base, isLowFrequency, time.Now().UTC())
	}

	xs := make([]float64, len(series))
	for i := range series {
		xs[i] = float64(i)
	}
	intercept, slope := stat.LinearRegression(xs, counts, nil, false)
	r2 := stat.RSquared(xs, counts, nil, intercept, slope)
	variance := stat.Variance(counts, nil)

	// Seasonal amplitude is dampened for rare crime types.
	seasonalAmp := 0.2
	if isLowFrequency {
		seasonalAmp = 0.05
	}

	// Cap extrapolation so a fitted trend cannot produce spikes far
	// beyond anything observed.
	maxCap := math.Max(historicalMax*1.5, historicalMean*1.5)
	if isLowFrequency {
		maxCap = math.Min(math.Max(historicalMax*2, historicalMean*2), 3)
	}

	lastDate := series[len(series)-1].month
	lastIndex := len(series) - 1

	forecast := make([]models.ForecastPoint, 0, horizon)
	for i := 1; i <= horizon; i++ {
		futureIndex := float64(lastIndex + i)
		predicted := slope*futureIndex + intercept

		forecastDate := lastDate.AddDate(0, i, 0)
		monthOfYear := float64(int(forecastDate.Month()) - 1)
		seasonal := math.Sin(monthOfYear/12*2*math.Pi) * seasonalAmp
		predicted *= 1 + seasonal

		validPredicted := predicted
		if invalid(validPredicted) {
			validPredicted = round1(math.Max(0, historicalMean))
		} else {
			validPredicted = math.Max(0, math.Round(validPredicted))
		}

		// Sub-1 monthly averages keep one decimal so rare crimes can
		// forecast fractional expected counts.
		if historicalMean < 0.5 {
			validPredicted = round1(validPredicted)
		} else {
			validPredicted = math.Round(validPredicted)
		}

		// The cap is a hard bound, so it runs after rounding: flooring
		// at the output granularity keeps a rounded value from climbing
		// back above it.
		if validPredicted > maxCap {
			if historicalMean < 0.5 {
				validPredicted = math.Floor(maxCap*10) / 10
			} else {
				validPredicted = math.Floor(maxCap)
			}
		}

		stdErr := math.Sqrt(variance) * (1 - r2)
		margin := math.Max(0.1, stdErr*1.96)
		if invalid(stdErr) || invalid(margin) {
			margin = math.Max(0.1, historicalMean*0.3)
		}

		confidence := confidenceStatistical
		if isLowFrequency {
			confidence = confidenceStatisticalLowFreq
		}

		forecast = append(forecast, models.ForecastPoint{
			Month:      monthKey(forecastDate),
			Predicted:  validPredicted,
			Lower:      math.Max(0, round1(validPredicted-margin)),
			Upper:      round1(validPredicted + margin),
			Confidence: confidence,
			Method:     models.MethodStatistical,
		})
	}

	return forecast
}

// defaultForecast produces the no-regression fallback: the historical
// monthly average modulated by a deterministic seasonal term and a
// small trend. A base of zero yields an all-zero forecast; the absence
// of any signal must not be dressed up as baseline risk.
func defaultForecast(horizon int, baseValue float64, isLowFrequency bool, startDate time.Time) []models.ForecastPoint {
	validBase := baseValue
	if invalid(validBase) || validBase < 0 {
		validBase = 0
	}

	confidence := confidenceDefault
	if isLowFrequency {
		confidence = confidenceDefaultLowFreq
	}

	forecast := make([]models.ForecastPoint, 0, horizon)

	if validBase == 0 {
		for i := 1; i <= horizon; i++ {
			forecast = append(forecast, models.ForecastPoint{
				Month:      monthKey(startDate.AddDate(0, i, 0)),
				Predicted:  0,
				Lower:      0,
				Upper:      0,
				Confidence: confidence,
				Method:     models.MethodStatistical,
			})
		}
		return forecast
	}

	trend := 0.1
	seasonalAmp := 0.4
	if isLowFrequency {
		trend = 0
		seasonalAmp = 0.1
	}

	fractional := validBase < 0.5

	for i := 1; i <= horizon; i++ {
		forecastDate := startDate.AddDate(0, i, 0)
		monthOfYear := float64(int(forecastDate.Month()) - 1)
		variation := math.Sin(monthOfYear/12*2*math.Pi)*seasonalAmp + trend*float64(i)

		var predicted float64
		if fractional {
			predicted = round1(math.Max(0, validBase*(1+variation)))
		} else {
			predicted = math.Max(0, math.Round(validBase*(1+variation)))
		}

		if isLowFrequency {
			predicted = math.Min(predicted, math.Max(validBase*2, 2))
		}
		if invalid(predicted) {
			predicted = validBase
		}

		var lower, upper float64
		if fractional {
			lower = math.Max(0, round1(predicted-math.Max(0.1, predicted*0.3)))
			upper = round1(predicted + math.Max(0.1, predicted*0.3))
		} else {
			lower = math.Max(0, math.Round(predicted-math.Max(0.5, predicted*0.3)))
			upper = math.Round(predicted + math.Max(0.5, predicted*0.3))
		}

		forecast = append(forecast, models.ForecastPoint{
			Month:      monthKey(forecastDate),
			Predicted:  predicted,
			Lower:      lower,
			Upper:      upper,
			Confidence: confidence,
			Method:     models.MethodStatistical,
		})
	}

	return forecast
}
