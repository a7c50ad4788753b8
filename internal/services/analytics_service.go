package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/jltdev15/crime-analytics/internal/models"
	"gorm.io/gorm"
)

// BarangayCrimeStats carries per-barangay aggregates. CrimeRate is nil
// when the barangay has no population on record, never zero.
type BarangayCrimeStats struct {
	Barangay   string   `json:"barangay"`
	CrimeCount int      `json:"crime_count,omitempty"`
	Population *int     `json:"population,omitempty"`
	CrimeRate  *float64 `json:"crime_rate,omitempty"`
}

// SummaryStats is the dataset-wide overview returned by the summary
// endpoint.
type SummaryStats struct {
	TotalCrimes              int64              `json:"total_crimes"`
	AverageCrimesPerBarangay float64            `json:"average_crimes_per_barangay"`
	HighestCrimeCount        BarangayCrimeStats `json:"highest_crime_count"`
	LowestCrimeCount         BarangayCrimeStats `json:"lowest_crime_count"`
	HighestCrimeRate         BarangayCrimeStats `json:"highest_crime_rate"`
	LowestCrimeRate          BarangayCrimeStats `json:"lowest_crime_rate"`
	DateRange                DateRange          `json:"date_range"`
}

// DateRange describes the coverage of the incident data.
type DateRange struct {
	Earliest string `json:"earliest,omitempty"`
	Latest   string `json:"latest,omitempty"`
	Duration string `json:"duration,omitempty"`
}

// BarangayCounts summarizes reference-data coverage.
type BarangayCounts struct {
	TotalBarangays int64 `json:"total_barangays"`
	WithPopulation int64 `json:"with_population"`
	WithCrimes     int   `json:"with_crimes"`
}

// CrimeTypeCount is one slice of the crime-type distribution.
type CrimeTypeCount struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

// AnalyticsService provides descriptive statistics over the incident
// data. Aggregation runs in memory over materialized rows so the
// population join and null-rate semantics stay explicit.
type AnalyticsService interface {
	GetSummaryStats(ctx context.Context) (*SummaryStats, error)
	GetTopBarangaysByCrimeCount(ctx context.Context, limit int) ([]BarangayCrimeStats, error)
	GetTopBarangaysByCrimeRate(ctx context.Context, limit int) ([]BarangayCrimeStats, error)
	GetCrimeDistribution(ctx context.Context) ([]BarangayCrimeStats, error)
	GetCrimeTypeDistribution(ctx context.Context, barangay, municipality, province string) ([]CrimeTypeCount, error)
	GetBarangayCounts(ctx context.Context) (*BarangayCounts, error)
	GetLowCrimeRateBarangays(ctx context.Context, threshold float64) ([]BarangayCrimeStats, error)
}

type analyticsService struct {
	db *gorm.DB
}

// NewAnalyticsService injects the *gorm.DB dependency and returns a
// ready-to-use AnalyticsService.
func NewAnalyticsService(db *gorm.DB) AnalyticsService {
	return &analyticsService{db: db}
}

// areaKey identifies one barangay across both tables.
type areaKey struct {
	Barangay     string
	Municipality string
	Province     string
	Country      string
}

type areaAggregate struct {
	key        areaKey
	crimeCount int
	population *int
	crimeRate  *float64
}

// groupByArea materializes incident rows, groups them per barangay and
// joins the population reference data. A missing or zero population
// leaves crimeRate nil.
func (s *analyticsService) groupByArea(ctx context.Context) ([]areaAggregate, error) {
	var crimes []models.Crime
	if err := s.db.WithContext(ctx).Find(&crimes).Error; err != nil {
		return nil, err
	}
	var barangays []models.Barangay
	if err := s.db.WithContext(ctx).Find(&barangays).Error; err != nil {
		return nil, err
	}

	populations := make(map[areaKey]int, len(barangays))
	for _, b := range barangays {
		key := areaKey{
			Barangay:     normalizeUpper(b.Name),
			Municipality: normalizeUpper(b.Municipality),
			Province:     normalizeUpper(b.Province),
			Country:      normalizeUpper(b.Country),
		}
		populations[key] = b.Population
	}

	counts := make(map[areaKey]int)
	for _, c := range crimes {
		key := areaKey{
			Barangay:     normalizeUpper(c.Barangay),
			Municipality: normalizeUpper(c.Municipality),
			Province:     normalizeUpper(c.Province),
			Country:      normalizeUpper(c.Country),
		}
		counts[key]++
	}

	aggregates := make([]areaAggregate, 0, len(counts))
	for key, count := range counts {
		agg := areaAggregate{key: key, crimeCount: count}
		if pop, ok := populations[key]; ok {
			p := pop
			agg.population = &p
			if pop > 0 {
				rate := round2(float64(count) / float64(pop) * 1000)
				agg.crimeRate = &rate
			}
		}
		aggregates = append(aggregates, agg)
	}
	return aggregates, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func (s *analyticsService) GetSummaryStats(ctx context.Context) (*SummaryStats, error) {
	aggregates, err := s.groupByArea(ctx)
	if err != nil {
		return nil, err
	}

	var totalCrimes int64
	if err := s.db.WithContext(ctx).Model(&models.Crime{}).Count(&totalCrimes).Error; err != nil {
		return nil, err
	}

	stats := &SummaryStats{TotalCrimes: totalCrimes}

	if len(aggregates) > 0 {
		sum := 0
		highest := aggregates[0]
		lowest := aggregates[0]
		for _, agg := range aggregates {
			sum += agg.crimeCount
			if agg.crimeCount > highest.crimeCount {
				highest = agg
			}
			if agg.crimeCount < lowest.crimeCount {
				lowest = agg
			}
		}
		stats.AverageCrimesPerBarangay = round2(float64(sum) / float64(len(aggregates)))
		stats.HighestCrimeCount = BarangayCrimeStats{Barangay: highest.key.Barangay, CrimeCount: highest.crimeCount}
		stats.LowestCrimeCount = BarangayCrimeStats{Barangay: lowest.key.Barangay, CrimeCount: lowest.crimeCount}

		var highestRate, lowestRate *areaAggregate
		for i := range aggregates {
			agg := &aggregates[i]
			if agg.crimeRate == nil {
				continue
			}
			if highestRate == nil || *agg.crimeRate > *highestRate.crimeRate {
				highestRate = agg
			}
			if lowestRate == nil || *agg.crimeRate < *lowestRate.crimeRate {
				lowestRate = agg
			}
		}
		if highestRate != nil {
			stats.HighestCrimeRate = BarangayCrimeStats{Barangay: highestRate.key.Barangay, CrimeRate: highestRate.crimeRate}
			stats.LowestCrimeRate = BarangayCrimeStats{Barangay: lowestRate.key.Barangay, CrimeRate: lowestRate.crimeRate}
		}
	}

	stats.DateRange = s.dateRange(ctx)
	return stats, nil
}

// dateRange queries the earliest and latest confinement dates; errors
// leave the range empty rather than failing the summary.
func (s *analyticsService) dateRange(ctx context.Context) DateRange {
	var bounds struct {
		Earliest *time.Time
		Latest   *time.Time
	}
	err := s.db.WithContext(ctx).Model(&models.Crime{}).
		Select("MIN(confinement_date) AS earliest, MAX(confinement_date) AS latest").
		Scan(&bounds).Error
	if err != nil || bounds.Earliest == nil || bounds.Latest == nil {
		return DateRange{}
	}

	duration := fmt.Sprintf("%d", bounds.Earliest.Year())
	if bounds.Latest.Year() != bounds.Earliest.Year() {
		duration = fmt.Sprintf("%d - %d", bounds.Earliest.Year(), bounds.Latest.Year())
	}
	return DateRange{
		Earliest: bounds.Earliest.Format("2006-01-02"),
		Latest:   bounds.Latest.Format("2006-01-02"),
		Duration: duration,
	}
}

func (s *analyticsService) GetTopBarangaysByCrimeCount(ctx context.Context, limit int) ([]BarangayCrimeStats, error) {
	aggregates, err := s.groupByArea(ctx)
	if err != nil {
		return nil, err
	}
	if limit < 1 {
		limit = 5
	}

	sort.Slice(aggregates, func(i, j int) bool {
		return aggregates[i].crimeCount > aggregates[j].crimeCount
	})

	results := make([]BarangayCrimeStats, 0, limit)
	for _, agg := range aggregates {
		if len(results) == limit {
			break
		}
		results = append(results, BarangayCrimeStats{
			Barangay:   agg.key.Barangay,
			CrimeCount: agg.crimeCount,
			Population: agg.population,
		})
	}
	return results, nil
}

func (s *analyticsService) GetTopBarangaysByCrimeRate(ctx context.Context, limit int) ([]BarangayCrimeStats, error) {
	aggregates, err := s.groupByArea(ctx)
	if err != nil {
		return nil, err
	}
	if limit < 1 {
		limit = 5
	}

	rated := aggregates[:0]
	for _, agg := range aggregates {
		if agg.crimeRate != nil {
			rated = append(rated, agg)
		}
	}
	sort.Slice(rated, func(i, j int) bool {
		return *rated[i].crimeRate > *rated[j].crimeRate
	})

	results := make([]BarangayCrimeStats, 0, limit)
	for _, agg := range rated {
		if len(results) == limit {
			break
		}
		results = append(results, BarangayCrimeStats{Barangay: agg.key.Barangay, CrimeRate: agg.crimeRate})
	}
	return results, nil
}

func (s *analyticsService) GetCrimeDistribution(ctx context.Context) ([]BarangayCrimeStats, error) {
	aggregates, err := s.groupByArea(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(aggregates, func(i, j int) bool {
		return aggregates[i].crimeCount > aggregates[j].crimeCount
	})

	results := make([]BarangayCrimeStats, 0, len(aggregates))
	for _, agg := range aggregates {
		results = append(results, BarangayCrimeStats{Barangay: agg.key.Barangay, CrimeCount: agg.crimeCount})
	}
	return results, nil
}

func (s *analyticsService) GetCrimeTypeDistribution(ctx context.Context, barangay, municipality, province string) ([]CrimeTypeCount, error) {
	query := s.db.WithContext(ctx).Model(&models.Crime{})
	if barangay != "" {
		query = query.Where("barangay = ?", normalizeUpper(barangay))
	}
	if municipality != "" {
		query = query.Where("municipality = ?", normalizeUpper(municipality))
	}
	if province != "" {
		query = query.Where("province = ?", normalizeUpper(province))
	}

	var results []CrimeTypeCount
	err := query.Select("crime_type AS type, COUNT(*) AS count").
		Group("crime_type").
		Order("count DESC").
		Scan(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (s *analyticsService) GetBarangayCounts(ctx context.Context) (*BarangayCounts, error) {
	counts := &BarangayCounts{}

	err := s.db.WithContext(ctx).Model(&models.Barangay{}).Count(&counts.TotalBarangays).Error
	if err != nil {
		return nil, err
	}
	err = s.db.WithContext(ctx).Model(&models.Barangay{}).
		Where("population > 0").
		Count(&counts.WithPopulation).Error
	if err != nil {
		return nil, err
	}

	aggregates, err := s.groupByArea(ctx)
	if err != nil {
		return nil, err
	}
	counts.WithCrimes = len(aggregates)
	return counts, nil
}

// GetLowCrimeRateBarangays lists barangays with a known population
// whose rate per 1000 residents is at or below the threshold, safest
// first.
func (s *analyticsService) GetLowCrimeRateBarangays(ctx context.Context, threshold float64) ([]BarangayCrimeStats, error) {
	aggregates, err := s.groupByArea(ctx)
	if err != nil {
		return nil, err
	}
	if threshold <= 0 {
		threshold = 1
	}

	var results []BarangayCrimeStats
	for _, agg := range aggregates {
		if agg.crimeRate == nil || *agg.crimeRate > threshold {
			continue
		}
		results = append(results, BarangayCrimeStats{
			Barangay:   agg.key.Barangay,
			Population: agg.population,
			CrimeRate:  agg.crimeRate,
		})
	}
	sort.Slice(results, func(i, j int) bool {
		return *results[i].CrimeRate < *results[j].CrimeRate
	})
	return results, nil
}
