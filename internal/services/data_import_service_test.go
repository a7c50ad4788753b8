package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/jltdev15/crime-analytics/internal/models"
)

func TestImportFile_CrimeCSV(t *testing.T) {
	db := setupTestDB(t)
	svc := NewDataImportService(db, NewPredictiveService(db))

	csvData := strings.Join([]string{
		"barangay,municipality,province,crimeType,confinementDate",
		"santa cruz,lubao,pampanga,theft,2026-03-10",
		"santa cruz,lubao,pampanga,theft,2026-03-10",
		"san roque,lubao,pampanga,jaywalking,2026-03-11",
		"san roque,lubao,pampanga,drugs,2026-04-02",
	}, "\n")

	result, err := svc.ImportFile(context.Background(), "crimes.csv", strings.NewReader(csvData), false)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if result.Type != models.ImportTypeCrime {
		t.Errorf("expected crime import, got: %s", result.Type)
	}
	if result.TotalRows != 4 || result.Imported != 2 || result.Invalid != 1 || result.Duplicates != 1 {
		t.Errorf("unexpected result: %+v", result)
	}

	var crimes []models.Crime
	if err := db.Find(&crimes).Error; err != nil {
		t.Fatalf("loading crimes: %v", err)
	}
	if len(crimes) != 2 {
		t.Fatalf("expected 2 stored crimes, got: %d", len(crimes))
	}
	for _, c := range crimes {
		if c.Barangay != strings.ToUpper(c.Barangay) {
			t.Errorf("expected uppercased barangay, got: %s", c.Barangay)
		}
	}

	var history []models.ImportHistory
	if err := db.Find(&history).Error; err != nil {
		t.Fatalf("loading history: %v", err)
	}
	if len(history) != 1 || history[0].ImportedCount != 2 || history[0].Retrained {
		t.Errorf("unexpected import history: %+v", history)
	}
}

func TestImportFile_PopulationCSV(t *testing.T) {
	db := setupTestDB(t)
	svc := NewDataImportService(db, NewPredictiveService(db))

	// Existing row gets its population updated by the import.
	existing := models.Barangay{Name: "SANTA CRUZ", Municipality: "LUBAO", Province: "PAMPANGA", Population: 100}
	if err := db.Create(&existing).Error; err != nil {
		t.Fatalf("seeding barangay: %v", err)
	}

	csvData := strings.Join([]string{
		"Barangay,Population",
		"Santa Cruz,3200",
		"San Roque,1500",
		"No Population,",
	}, "\n")

	result, err := svc.ImportFile(context.Background(), "lubao-population.csv", strings.NewReader(csvData), false)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if result.Type != models.ImportTypePopulation {
		t.Errorf("expected population import, got: %s", result.Type)
	}
	if result.Imported != 2 || result.Invalid != 1 {
		t.Errorf("unexpected result: %+v", result)
	}

	var rows []models.Barangay
	if err := db.Order("name").Find(&rows).Error; err != nil {
		t.Fatalf("loading barangays: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 barangays, got: %d", len(rows))
	}
	// Missing area columns fall back to the configured defaults.
	if rows[0].Name != "SAN ROQUE" || rows[0].Municipality != "LUBAO" || rows[0].Population != 1500 {
		t.Errorf("unexpected upserted row: %+v", rows[0])
	}
	if rows[1].Population != 3200 {
		t.Errorf("expected updated population 3200, got: %d", rows[1].Population)
	}
}

func TestDetectFileType(t *testing.T) {
	crimeRows := []importRow{{"barangay": "X", "crimetype": "THEFT"}}
	popRows := []importRow{{"barangay": "X", "population": "1000"}}

	if got := detectFileType(crimeRows, "incidents.xlsx"); got != models.ImportTypeCrime {
		t.Errorf("expected crime, got: %s", got)
	}
	if got := detectFileType(popRows, "data.xlsx"); got != models.ImportTypePopulation {
		t.Errorf("expected population from column heuristic, got: %s", got)
	}
	if got := detectFileType(crimeRows, "population-2026.xlsx"); got != models.ImportTypePopulation {
		t.Errorf("expected population from filename heuristic, got: %s", got)
	}
	if got := detectFileType(nil, "empty.xlsx"); got != models.ImportTypeCrime {
		t.Errorf("expected crime default, got: %s", got)
	}
}

func TestParseImportDate(t *testing.T) {
	if d, ok := parseImportDate("2026-03-15"); !ok || d.Day() != 15 {
		t.Errorf("ISO date failed: %v %v", d, ok)
	}
	if d, ok := parseImportDate("3/15/2026"); !ok || d.Month() != time.March {
		t.Errorf("US date failed: %v %v", d, ok)
	}
	// Excel serial for a 2023 date.
	if d, ok := parseImportDate("45000"); !ok || d.Year() != 2023 {
		t.Errorf("excel serial failed: %v %v", d, ok)
	}
	if _, ok := parseImportDate("not a date"); ok {
		t.Error("expected parse failure for garbage input")
	}
	if _, ok := parseImportDate(""); ok {
		t.Error("expected parse failure for empty input")
	}
}

func TestCleanCrimeRow_RejectsOutOfRangeDates(t *testing.T) {
	base := importRow{
		"barangay": "SANTA CRUZ", "municipality": "LUBAO", "province": "PAMPANGA",
		"crimetype": "THEFT",
	}

	tooOld := importRow{}
	for k, v := range base {
		tooOld[k] = v
	}
	tooOld["confinementdate"] = "1990-01-01"
	if _, ok := cleanCrimeRow(tooOld); ok {
		t.Error("expected rejection of a decades-old date")
	}

	future := importRow{}
	for k, v := range base {
		future[k] = v
	}
	future["confinementdate"] = time.Now().AddDate(3, 0, 0).Format("2006-01-02")
	if _, ok := cleanCrimeRow(future); ok {
		t.Error("expected rejection of a far-future date")
	}
}

func TestGetSystemHealth(t *testing.T) {
	db := setupTestDB(t)
	svc := NewDataImportService(db, NewPredictiveService(db))

	crime := models.Crime{
		CrimeType: "THEFT", Barangay: "SANTA CRUZ", Municipality: "LUBAO",
		Province: "PAMPANGA", ConfinementDate: time.Now().UTC(),
	}
	if err := db.Create(&crime).Error; err != nil {
		t.Fatalf("seeding crime: %v", err)
	}

	health, err := svc.GetSystemHealth(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if health.TotalCrimes != 1 {
		t.Errorf("expected 1 crime, got: %d", health.TotalCrimes)
	}
	if health.OverallHealth != "Excellent" || health.DataCompleteness != 100 {
		t.Errorf("unexpected health: %+v", health)
	}
	if health.ModelStatus != "Not Trained" {
		t.Errorf("expected untrained model status, got: %s", health.ModelStatus)
	}
}

func TestCreateBackup(t *testing.T) {
	db := setupTestDB(t)
	svc := NewDataImportService(db, NewPredictiveService(db))

	crime := models.Crime{
		CrimeType: "THEFT", Barangay: "SANTA CRUZ", Municipality: "LUBAO",
		Province: "PAMPANGA", ConfinementDate: time.Now().UTC(),
	}
	if err := db.Create(&crime).Error; err != nil {
		t.Fatalf("seeding crime: %v", err)
	}

	backup, err := svc.CreateBackup(context.Background(), t.TempDir())
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if backup.TotalRecords != 1 {
		t.Errorf("expected 1 record in backup, got: %d", backup.TotalRecords)
	}
}
