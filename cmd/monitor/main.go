// Command monitor runs data-health checks against the database and
// prints a report: record counts, field completeness, date sanity,
// freshness of incidents and predictions, and advisory actions. Meant
// for cron or manual operational checks.
package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jltdev15/crime-analytics/internal/config"
)

const freshnessThresholdDays = 30

type healthReport struct {
	totalCrimes       int
	totalBarangays    int
	totalPredictions  int
	totalImports      int
	missingBarangay   int
	missingCrimeType  int
	futureDates       int
	veryOldDates      int
	barangaysNoPop    int
	daysSinceCrime    *int
	daysSincePredict  *int
	crimesLast30Days  int
	staleForecastRows int
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx := context.Background()

	pool, err := pgxpool.New(ctx, cfg.DSN())
	if err != nil {
		log.Fatalf("failed to create connection pool: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("failed to ping database: %v", err)
	}

	report, err := collect(ctx, pool)
	if err != nil {
		log.Fatalf("health check failed: %v", err)
	}

	printReport(report)
}

func collect(ctx context.Context, pool *pgxpool.Pool) (*healthReport, error) {
	r := &healthReport{}

	counts := []struct {
		query string
		dest  *int
	}{
		{`SELECT COUNT(*) FROM crimes`, &r.totalCrimes},
		{`SELECT COUNT(*) FROM barangays`, &r.totalBarangays},
		{`SELECT COUNT(*) FROM predictions`, &r.totalPredictions},
		{`SELECT COUNT(*) FROM import_history`, &r.totalImports},
		{`SELECT COUNT(*) FROM crimes WHERE barangay IS NULL OR barangay = ''`, &r.missingBarangay},
		{`SELECT COUNT(*) FROM crimes WHERE crime_type IS NULL OR crime_type = ''`, &r.missingCrimeType},
		{`SELECT COUNT(*) FROM crimes WHERE confinement_date > now()`, &r.futureDates},
		{`SELECT COUNT(*) FROM crimes WHERE confinement_date < '2010-01-01'`, &r.veryOldDates},
		{`SELECT COUNT(*) FROM barangays WHERE population <= 0`, &r.barangaysNoPop},
		{`SELECT COUNT(*) FROM crimes WHERE created_at >= now() - interval '30 days'`, &r.crimesLast30Days},
		{`SELECT COUNT(*) FROM predictions WHERE updated_at < now() - interval '30 days'`, &r.staleForecastRows},
	}
	for _, c := range counts {
		if err := pool.QueryRow(ctx, c.query).Scan(c.dest); err != nil {
			return nil, fmt.Errorf("query %q: %w", c.query, err)
		}
	}

	var latestCrime, latestPrediction *time.Time
	if err := pool.QueryRow(ctx, `SELECT MAX(created_at) FROM crimes`).Scan(&latestCrime); err != nil {
		return nil, fmt.Errorf("latest crime: %w", err)
	}
	if err := pool.QueryRow(ctx, `SELECT MAX(created_at) FROM predictions`).Scan(&latestPrediction); err != nil {
		return nil, fmt.Errorf("latest prediction: %w", err)
	}
	r.daysSinceCrime = daysSince(latestCrime)
	r.daysSincePredict = daysSince(latestPrediction)

	return r, nil
}

func daysSince(t *time.Time) *int {
	if t == nil {
		return nil
	}
	d := int(time.Since(*t).Hours() / 24)
	return &d
}

func completenessPct(total, missing int) float64 {
	if total == 0 {
		return 0
	}
	return float64(total-missing) / float64(total) * 100
}

func printDays(label string, d *int) {
	if d == nil {
		fmt.Printf("  %s: never\n", label)
		return
	}
	fmt.Printf("  %s: %d day(s) ago\n", label, *d)
}

func printReport(r *healthReport) {
	fmt.Println("=== Data Health Report ===")
	fmt.Printf("generated at: %s\n\n", time.Now().Format(time.RFC3339))

	fmt.Println("Record counts:")
	fmt.Printf("  crimes:       %d\n", r.totalCrimes)
	fmt.Printf("  barangays:    %d\n", r.totalBarangays)
	fmt.Printf("  predictions:  %d\n", r.totalPredictions)
	fmt.Printf("  imports:      %d\n\n", r.totalImports)

	fmt.Println("Data quality:")
	fmt.Printf("  barangay completeness:   %.2f%%\n", completenessPct(r.totalCrimes, r.missingBarangay))
	fmt.Printf("  crime type completeness: %.2f%%\n", completenessPct(r.totalCrimes, r.missingCrimeType))
	fmt.Printf("  future-dated incidents:  %d\n", r.futureDates)
	fmt.Printf("  pre-2010 incidents:      %d\n", r.veryOldDates)
	fmt.Printf("  barangays without population: %d\n\n", r.barangaysNoPop)

	fmt.Println("Freshness:")
	printDays("last incident recorded", r.daysSinceCrime)
	printDays("last prediction generated", r.daysSincePredict)
	fmt.Printf("  incidents in last 30 days: %d\n", r.crimesLast30Days)
	fmt.Printf("  predictions older than 30 days: %d\n\n", r.staleForecastRows)

	fmt.Println("Advisories:")
	advisories := 0
	if r.daysSinceCrime == nil || *r.daysSinceCrime > freshnessThresholdDays {
		fmt.Println("  - incident data is stale; import new data and retrain")
		advisories++
	}
	if r.staleForecastRows > 0 || r.totalPredictions == 0 {
		fmt.Println("  - predictions are missing or outdated; regenerate them")
		advisories++
	}
	if r.barangaysNoPop > 0 {
		fmt.Println("  - some barangays lack population figures; crime rates will be incomplete")
		advisories++
	}
	if r.futureDates > 0 || r.veryOldDates > 0 {
		fmt.Println("  - incidents with suspect dates found; review and clean the records")
		advisories++
	}
	if advisories == 0 {
		fmt.Println("  - none, everything looks healthy")
	}
}
