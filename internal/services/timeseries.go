package services

import (
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/jltdev15/crime-analytics/internal/models"
)

// monthPoint is one month of an incident time series. Month is always
// the first day of the calendar month in UTC.
type monthPoint struct {
	month time.Time
	count int
}

// monthlyCounts buckets incidents into per-month counts, sorted
// ascending. Records without a resolvable date are skipped. Months with
// no incidents are simply absent; gaps are real absences, not zeros,
// and nothing here interpolates them.
func monthlyCounts(crimes []models.Crime) []monthPoint {
	buckets := make(map[time.Time]int)
	for _, c := range crimes {
		if c.ConfinementDate.IsZero() {
			continue
		}
		m := startOfMonth(c.ConfinementDate)
		buckets[m]++
	}

	points := make([]monthPoint, 0, len(buckets))
	for m, n := range buckets {
		points = append(points, monthPoint{month: m, count: n})
	}
	sort.Slice(points, func(i, j int) bool {
		return points[i].month.Before(points[j].month)
	})
	return points
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// monthKey formats a month the way forecasts are labelled.
func monthKey(t time.Time) string {
	return t.Format("2006-01")
}

func seriesCounts(points []monthPoint) []float64 {
	counts := make([]float64, len(points))
	for i, p := range points {
		counts[i] = float64(p.count)
	}
	return counts
}

func seriesMean(points []monthPoint) float64 {
	if len(points) == 0 {
		return 0
	}
	return stat.Mean(seriesCounts(points), nil)
}

func seriesMax(points []monthPoint) float64 {
	max := 0.0
	for _, p := range points {
		if float64(p.count) > max {
			max = float64(p.count)
		}
	}
	return max
}
