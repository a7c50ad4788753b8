package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jltdev15/crime-analytics/internal/models"
)

// crimePatterns summarizes when a key's incidents tend to happen.
type crimePatterns struct {
	peakHours []string
	peakDays  []string
	total     int
}

// municipalityStats aggregates crime volume across a whole
// municipality for comparison against a single barangay.
type municipalityStats struct {
	totalCrimes   int64
	population    int
	avgCrimeRate  float64
	barangayCount int
}

var seriousCrimeTypes = []string{
	"RAPE", "MURDER", "HOMICIDE", "ASSAULT", "DRUGS", "DRUG POSSESSION", "DRUG TRAFFICKING",
}

// buildRecommendations turns one Medium/High prediction into a set of
// templated action items, personalized with the barangay's history,
// population and incident timing patterns.
func (s *predictiveService) buildRecommendations(ctx context.Context, prediction *models.Prediction) ([]models.Recommendation, error) {
	key := models.CrimeKey{
		Barangay:     prediction.Barangay,
		Municipality: prediction.Municipality,
		Province:     prediction.Province,
		Country:      prediction.Country,
		CrimeType:    prediction.CrimeType,
	}

	historical, err := s.historicalData(ctx, key)
	if err != nil {
		return nil, err
	}
	population := s.population(ctx, prediction.Barangay, prediction.Municipality, prediction.Province)
	muniStats, err := s.municipalityCrimeStats(ctx, prediction.Municipality, prediction.Province)
	if err != nil {
		return nil, err
	}
	patterns := analyzeCrimePatterns(historical)

	densityPerThousand := float64(population) / 1000
	totalCrimes := len(historical)
	crimeRate := 0.0
	if population > 0 {
		crimeRate = float64(totalCrimes) / float64(population) * 1000
	}
	isAboveAverage := crimeRate > muniStats.avgCrimeRate*1.2

	// Relative change between first and last forecast month, in
	// percent, used to flag rising trends.
	forecastTrend := 0.0
	if len(prediction.Forecast) >= 2 {
		first := prediction.Forecast[0].Predicted
		last := prediction.Forecast[len(prediction.Forecast)-1].Predicted
		forecastTrend = (last - first) / math.Max(1, first) * 100
	}
	isIncreasing := forecastTrend > 10

	priorityScore := 0
	if prediction.RiskLevel == models.RiskHigh {
		priorityScore += 3
	} else {
		priorityScore++
	}
	if isAboveAverage {
		priorityScore += 2
	}
	if isIncreasing {
		priorityScore++
	}
	if prediction.Probability > 0.7 {
		priorityScore++
	}
	finalPriority := models.PriorityLow
	switch {
	case priorityScore >= 5:
		finalPriority = models.PriorityCritical
	case priorityScore >= 4:
		finalPriority = models.PriorityHigh
	case priorityScore >= 2:
		finalPriority = models.PriorityMedium
	}

	area := func(r *models.Recommendation) {
		r.Barangay = prediction.Barangay
		r.Municipality = prediction.Municipality
		r.Province = prediction.Province
		r.Country = prediction.Country
		r.CrimeType = prediction.CrimeType
		r.Status = "pending"
	}

	var recommendations []models.Recommendation
	upperType := strings.ToUpper(prediction.CrimeType)

	// Patrol coverage for high risk or above-average areas.
	if prediction.RiskLevel == models.RiskHigh || isAboveAverage {
		description := "Deploy additional police patrols"
		rationale := fmt.Sprintf("High risk prediction (%.1f%%) for %s in %s",
			prediction.Probability*100, prediction.CrimeType, prediction.Barangay)

		if len(patterns.peakHours) > 0 {
			hours := strings.Join(patterns.peakHours, ", ")
			description += fmt.Sprintf(" during peak hours (%s)", hours)
			rationale += fmt.Sprintf(". Historical data shows peak activity during %s", hours)
		}
		if len(patterns.peakDays) > 0 {
			description += ", especially on " + patterns.peakDays[0]
		}
		if densityPerThousand > 5 {
			description += ". High population density area requires increased visibility"
			rationale += fmt.Sprintf(". High population density (%d per km2) increases risk", int(densityPerThousand*1000))
		}
		if isIncreasing {
			rationale += ". Forecast shows increasing trend"
		}

		title := "Increase Patrol Frequency"
		impact := "Reduce crime incidents by 20-30%"
		if isAboveAverage {
			title = "Enhanced Patrol Coverage for High-Crime Area"
			impact = fmt.Sprintf("Reduce crime incidents by 25-35%% in this high-crime area (current rate: %.2f per 1000, vs municipality avg: %.2f)",
				crimeRate, muniStats.avgCrimeRate)
		}
		cost := "Medium"
		riskFactors := []string{"Resource constraints", "Community resistance"}
		if densityPerThousand > 5 {
			cost = "High"
			riskFactors = append(riskFactors, "High population density requires more resources")
		}
		timeframe := "Short-term"
		if prediction.RiskLevel == models.RiskHigh {
			timeframe = "Immediate"
		}

		rec := models.Recommendation{
			Category:           models.CategoryPatrol,
			Priority:           finalPriority,
			Title:              title,
			Description:        description,
			Rationale:          rationale,
			ExpectedImpact:     impact,
			ImplementationCost: cost,
			Timeframe:          timeframe,
			SuccessMetrics: []string{
				"Reduction in reported incidents",
				"Response time improvement",
				fmt.Sprintf("Crime rate reduction to below %.2f per 1000", muniStats.avgCrimeRate*1.1),
			},
			RiskFactors: riskFactors,
			Confidence:  prediction.Confidence,
		}
		area(&rec)
		recommendations = append(recommendations, rec)
	}

	// Community awareness for any Medium or High prediction.
	{
		priority := models.PriorityMedium
		timeframe := "Short-term"
		if prediction.RiskLevel == models.RiskHigh {
			priority = models.PriorityHigh
			timeframe = "Immediate"
		}

		description := "Organize community meetings and awareness campaigns"
		rationale := fmt.Sprintf("Proactive prevention for %s in %s (%s risk)",
			prediction.CrimeType, prediction.Barangay, prediction.RiskLevel)
		if strings.Contains(upperType, "THEFT") {
			description = "Organize community watch programs and property protection workshops"
			rationale += ". Theft prevention requires community vigilance"
		} else if strings.Contains(upperType, "ASSAULT") {
			description = "Organize conflict resolution workshops and community mediation programs"
			rationale += ". Assault prevention requires addressing root causes"
		}
		if population > 5000 {
			description += ". Large community requires multiple sessions across different zones"
		}
		if totalCrimes > 10 {
			rationale += fmt.Sprintf(". %d historical cases indicate ongoing concern", totalCrimes)
		}

		cost := "Low"
		riskFactors := []string{"Low community engagement", "Language barriers"}
		if population > 5000 {
			cost = "Medium"
			riskFactors = append(riskFactors, "Large population requires more resources")
		}

		rec := models.Recommendation{
			Category:           models.CategoryCommunity,
			Priority:           priority,
			Title:              fmt.Sprintf("%s Community Safety Program", prediction.Barangay),
			Description:        description,
			Rationale:          rationale,
			ExpectedImpact:     fmt.Sprintf("Improve community vigilance and reporting. Target: %d active participants", int(math.Round(float64(population)*0.1))),
			ImplementationCost: cost,
			Timeframe:          timeframe,
			SuccessMetrics: []string{
				"Community participation rate (target: 10% of population)",
				"Reported suspicious activities increase",
				"Community satisfaction survey scores",
			},
			RiskFactors: riskFactors,
			Confidence:  prediction.Confidence * 0.8,
		}
		area(&rec)
		recommendations = append(recommendations, rec)
	}

	// Infrastructure for dense or above-average areas.
	if isAboveAverage || densityPerThousand > 5 {
		priority := models.PriorityMedium
		rationaleKind := "high-density"
		if isAboveAverage {
			priority = models.PriorityHigh
			rationaleKind = "above-average"
		}

		rec := models.Recommendation{
			Category:           models.CategoryInfrastructure,
			Priority:           priority,
			Title:              fmt.Sprintf("Security Infrastructure Enhancement for %s", prediction.Barangay),
			Description:        "Install security cameras, improve street lighting, and establish security checkpoints in high-risk areas",
			Rationale:          fmt.Sprintf("%s has %s crime rate (%.2f per 1000) requiring infrastructure improvements", prediction.Barangay, rationaleKind, crimeRate),
			ExpectedImpact:     "Reduce crime by 15-25% through deterrence",
			ImplementationCost: "High",
			Timeframe:          "Medium-term",
			SuccessMetrics: []string{
				"Number of security cameras installed",
				"Street lighting coverage improvement",
				"Crime reduction in monitored areas",
				"Community safety perception improvement",
			},
			RiskFactors: []string{"Budget constraints", "Maintenance requirements", "Privacy concerns"},
			Confidence:  prediction.Confidence * 0.75,
		}
		area(&rec)
		recommendations = append(recommendations, rec)
	}

	// Serious crime types get enhanced investigation protocols.
	if containsString(seriousCrimeTypes, upperType) {
		title := "Enhanced Investigation Protocol"
		description := "Implement specialized investigation procedures and victim support services"
		impact := "Improve case resolution and victim support"

		if strings.Contains(upperType, "DRUG") {
			title = fmt.Sprintf("Drug Enforcement Strategy for %s", prediction.Barangay)
			description = "Implement specialized drug investigation procedures, community outreach, and rehabilitation programs"
			impact = fmt.Sprintf("Improve drug case resolution and community safety. Target: %d cases resolved", int(math.Round(float64(totalCrimes)*0.3)))
		} else if strings.Contains(upperType, "RAPE") || strings.Contains(upperType, "ASSAULT") {
			title = fmt.Sprintf("Victim Support and Protection Program for %s", prediction.Barangay)
			description = "Establish victim support services, safe reporting mechanisms, and specialized investigation units"
			impact = "Improve victim support and case resolution rates"
		}

		rec := models.Recommendation{
			Category:           models.CategoryInvestigation,
			Priority:           finalPriority,
			Title:              title,
			Description:        description,
			Rationale:          fmt.Sprintf("Serious crime type (%s) in %s requires enhanced investigation protocols. %d historical cases indicate ongoing concern", prediction.CrimeType, prediction.Barangay, totalCrimes),
			ExpectedImpact:     impact,
			ImplementationCost: "High",
			Timeframe:          "Immediate",
			SuccessMetrics: []string{
				"Case resolution rate improvement",
				"Community safety perception",
				"Evidence collection quality",
				"Victim satisfaction scores",
			},
			RiskFactors: []string{"Resource requirements", "Training needs", "Specialized personnel availability"},
			Confidence:  prediction.Confidence * 0.9,
		}
		area(&rec)
		recommendations = append(recommendations, rec)
	}

	// Drug-related crime additionally gets a prevention program.
	if strings.Contains(upperType, "DRUG") {
		priority := models.PriorityMedium
		if prediction.RiskLevel == models.RiskHigh {
			priority = models.PriorityHigh
		}

		rec := models.Recommendation{
			Category:           models.CategoryPrevention,
			Priority:           priority,
			Title:              fmt.Sprintf("Drug Prevention Program for %s", prediction.Barangay),
			Description:        "Implement community drug awareness programs, youth engagement activities, and rehabilitation support",
			Rationale:          fmt.Sprintf("Drug-related crime (%s) in %s requires preventive community measures. %d cases indicate need for intervention", prediction.CrimeType, prediction.Barangay, totalCrimes),
			ExpectedImpact:     "Reduce drug-related incidents by 20-30% through community education and early intervention",
			ImplementationCost: "Medium",
			Timeframe:          "Short-term",
			SuccessMetrics: []string{
				fmt.Sprintf("Community participation (target: %d people)", int(math.Round(float64(population)*0.15))),
				"Drug awareness levels (pre/post surveys)",
				"Reported incidents reduction",
				"Youth engagement program participation",
			},
			RiskFactors: []string{"Community resistance", "Resource allocation", "Stigma around drug issues"},
			Confidence:  prediction.Confidence * 0.7,
		}
		area(&rec)
		recommendations = append(recommendations, rec)
	}

	// Urgent intervention when the forecast itself is rising sharply.
	if isIncreasing && forecastTrend > 15 {
		rec := models.Recommendation{
			Category:           models.CategoryPrevention,
			Priority:           models.PriorityHigh,
			Title:              fmt.Sprintf("Urgent Intervention for Rising %s in %s", prediction.CrimeType, prediction.Barangay),
			Description:        fmt.Sprintf("Implement immediate intervention measures to address the %.1f%% projected increase in %s", forecastTrend, prediction.CrimeType),
			Rationale:          fmt.Sprintf("Forecast shows significant increase (%.1f%%) in %s for %s. Immediate action required", forecastTrend, prediction.CrimeType, prediction.Barangay),
			ExpectedImpact:     "Prevent forecasted increase and stabilize crime rates",
			ImplementationCost: "High",
			Timeframe:          "Immediate",
			SuccessMetrics: []string{
				"Prevent forecasted crime increase",
				"Stabilize crime rate",
				"Response time to incidents",
				"Community engagement in prevention",
			},
			RiskFactors: []string{"Urgent resource allocation needed", "Coordination challenges", "Time constraints"},
			Confidence:  prediction.Confidence * 0.85,
		}
		area(&rec)
		recommendations = append(recommendations, rec)
	}

	return recommendations, nil
}

func (s *predictiveService) municipalityCrimeStats(ctx context.Context, municipality, province string) (*municipalityStats, error) {
	stats := &municipalityStats{}

	err := s.db.WithContext(ctx).Model(&models.Crime{}).
		Where("municipality = ? AND province = ?", municipality, province).
		Count(&stats.totalCrimes).Error
	if err != nil {
		return nil, err
	}

	var barangays []models.Barangay
	err = s.db.WithContext(ctx).
		Where("municipality = ? AND province = ?", municipality, province).
		Find(&barangays).Error
	if err != nil {
		return nil, err
	}

	stats.barangayCount = len(barangays)
	for _, b := range barangays {
		stats.population += b.Population
	}
	if stats.population > 0 {
		stats.avgCrimeRate = float64(stats.totalCrimes) / float64(stats.population) * 1000
	}
	return stats, nil
}

// analyzeCrimePatterns extracts the top incident hours and weekdays
// from a key's history.
func analyzeCrimePatterns(crimes []models.Crime) crimePatterns {
	hourCounts := make(map[int]int)
	dayCounts := make(map[time.Weekday]int)

	for _, c := range crimes {
		if hour, ok := parseHour(c.ConfinementTime); ok {
			hourCounts[hour]++
		}
		if !c.ConfinementDate.IsZero() {
			dayCounts[c.ConfinementDate.Weekday()]++
		}
	}

	patterns := crimePatterns{total: len(crimes)}

	type hourCount struct {
		hour  int
		count int
	}
	hours := make([]hourCount, 0, len(hourCounts))
	for h, n := range hourCounts {
		hours = append(hours, hourCount{h, n})
	}
	sort.Slice(hours, func(i, j int) bool {
		if hours[i].count != hours[j].count {
			return hours[i].count > hours[j].count
		}
		return hours[i].hour < hours[j].hour
	})
	for i := 0; i < len(hours) && i < 3; i++ {
		patterns.peakHours = append(patterns.peakHours, fmt.Sprintf("%d:00", hours[i].hour))
	}

	type dayCount struct {
		day   time.Weekday
		count int
	}
	days := make([]dayCount, 0, len(dayCounts))
	for d, n := range dayCounts {
		days = append(days, dayCount{d, n})
	}
	sort.Slice(days, func(i, j int) bool {
		if days[i].count != days[j].count {
			return days[i].count > days[j].count
		}
		return days[i].day < days[j].day
	})
	for i := 0; i < len(days) && i < 2; i++ {
		patterns.peakDays = append(patterns.peakDays, days[i].day.String())
	}

	return patterns
}

// parseHour pulls the hour out of an "HH:MM" confinement time.
func parseHour(confinementTime string) (int, bool) {
	parts := strings.SplitN(confinementTime, ":", 2)
	if len(parts) != 2 {
		return 0, false
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, false
	}
	return hour, true
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
