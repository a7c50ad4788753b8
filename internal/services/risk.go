package services

import (
	"math"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/jltdev15/crime-analytics/internal/models"
)

// Population density proxy: every barangay is assumed to cover two
// square kilometers, normalized against an urban ceiling of 10,000
// people per km2. A placeholder until real land areas are available.
const (
	assumedAreaKm2 = 2.0
	densityCeiling = 10000.0
)

// Risk factor weights. Recent activity and density dominate; the
// seasonal signal is the weakest of the four.
const (
	weightHistoricalTrend   = 0.25
	weightSeasonalPattern   = 0.15
	weightPopulationDensity = 0.3
	weightRecentActivity    = 0.3
)

// historicalTrend is the relative change between the mean of the first
// and second halves of the monthly series.
func historicalTrend(series []monthPoint) float64 {
	if len(series) < 2 {
		return 0
	}
	half := len(series) / 2
	firstAvg := seriesMean(series[:half])
	secondAvg := seriesMean(series[half:])
	if firstAvg == 0 {
		return 0
	}
	trend := (secondAvg - firstAvg) / firstAvg
	if invalid(trend) {
		return 0
	}
	return trend
}

// seasonalPattern is the coefficient of variation of per-calendar-month
// averages. Requires at least 12 raw incidents; anything thinner cannot
// support a seasonal claim.
func seasonalPattern(crimes []models.Crime, series []monthPoint) float64 {
	if len(crimes) < 12 || len(series) == 0 {
		return 0
	}

	var sums [12]float64
	var occurrences [12]int
	for _, p := range series {
		m := int(p.month.Month()) - 1
		sums[m] += float64(p.count)
		occurrences[m]++
	}

	var averages []float64
	for m := 0; m < 12; m++ {
		if occurrences[m] > 0 && sums[m] > 0 {
			averages = append(averages, sums[m]/float64(occurrences[m]))
		}
	}
	if len(averages) < 2 {
		return 0
	}

	overall := stat.Mean(averages, nil)
	variance := stat.Variance(averages, nil)
	pattern := math.Sqrt(variance) / overall
	if invalid(pattern) {
		return 0
	}
	return pattern
}

func populationDensity(population int) float64 {
	density := float64(population) / assumedAreaKm2
	return math.Min(1, density/densityCeiling)
}

// recentActivity compares the incident rate of the trailing three
// months against the rate before that window. With no older incidents
// the recent count itself is scaled down as a weak signal.
func recentActivity(crimes []models.Crime, now time.Time) float64 {
	if len(crimes) == 0 {
		return 0
	}

	threeMonthsAgo := now.AddDate(0, -3, 0)
	recent := 0
	older := 0
	var firstOlder time.Time
	for _, c := range crimes {
		if c.ConfinementDate.IsZero() {
			continue
		}
		if c.ConfinementDate.Before(threeMonthsAgo) {
			if older == 0 {
				firstOlder = c.ConfinementDate
			}
			older++
		} else {
			recent++
		}
	}

	if older == 0 {
		return float64(recent) / 10
	}

	recentRate := float64(recent) / 3
	elapsedMonths := now.Sub(firstOlder).Hours() / (24 * 30)
	historicalRate := float64(older) / math.Max(1, elapsedMonths)
	return recentRate / math.Max(1, historicalRate)
}

// riskProbability combines the four factors into a probability around a
// 0.5 baseline, with extra variation from density and recent activity
// deviating from their midpoints, clamped to [0.1, 0.9].
func riskProbability(f models.RiskFactors) float64 {
	weighted := f.HistoricalTrend*weightHistoricalTrend +
		f.SeasonalPattern*weightSeasonalPattern +
		f.PopulationDensity*weightPopulationDensity +
		f.RecentActivity*weightRecentActivity

	variation := (f.PopulationDensity-0.5)*0.3 + (f.RecentActivity-0.5)*0.2

	probability := 0.5 + weighted*0.3 + variation
	return clamp(probability, 0.1, 0.9)
}

// riskLevelFor classifies a probability. Boundaries are inclusive on
// the upper class: exactly 0.3 is Medium, exactly 0.7 is High.
func riskLevelFor(probability float64) string {
	switch {
	case probability < 0.3:
		return models.RiskLow
	case probability < 0.7:
		return models.RiskMedium
	default:
		return models.RiskHigh
	}
}
