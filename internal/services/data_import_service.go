package services

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/jltdev15/crime-analytics/internal/metrics"
	"github.com/jltdev15/crime-analytics/internal/models"
)

var validCrimeTypes = []string{
	"DRUGS", "ROBBERY", "THEFT", "HOMICIDE", "FRUSTRATED HOMICIDE", "ASSAULT", "BURGLARY",
}

// Defaults applied to population rows that omit area columns.
const (
	defaultMunicipality = "LUBAO"
	defaultProvince     = "PAMPANGA"
	defaultCountry      = "PHILIPPINES"
)

// ImportResult summarizes one spreadsheet ingestion pass.
type ImportResult struct {
	ImportID   string `json:"import_id"`
	Type       string `json:"type"`
	TotalRows  int    `json:"total_rows"`
	Imported   int    `json:"imported"`
	Invalid    int    `json:"invalid"`
	Duplicates int    `json:"duplicates"`
	Retrained  bool   `json:"retrained"`
}

// SystemHealth reports dataset completeness and model readiness.
type SystemHealth struct {
	TotalCrimes      int64     `json:"total_crimes"`
	TotalBarangays   int64     `json:"total_barangays"`
	TotalPredictions int64     `json:"total_predictions"`
	LastUpdated      time.Time `json:"last_updated"`
	OverallHealth    string    `json:"overall_health"`
	DataCompleteness int       `json:"data_completeness"`
	MissingRecords   int64     `json:"missing_records"`
	ModelStatus      string    `json:"model_status"`
}

// DataStatistics is the at-a-glance dataset inventory.
type DataStatistics struct {
	TotalCrimes           int64                `json:"total_crimes"`
	TotalBarangays        int64                `json:"total_barangays"`
	TotalPredictions      int64                `json:"total_predictions"`
	DateRange             DateRange            `json:"date_range"`
	CrimeTypeDistribution []CrimeTypeCount     `json:"crime_type_distribution"`
	TopBarangays          []BarangayCrimeStats `json:"top_barangays"`
}

// BackupResult describes a completed JSON export.
type BackupResult struct {
	BackupPath   string    `json:"backup_path"`
	TotalRecords int       `json:"total_records"`
	Timestamp    time.Time `json:"timestamp"`
}

// DataImportService ingests crime and population spreadsheets and
// exposes dataset housekeeping operations.
type DataImportService interface {
	// ImportFile reads an XLSX or CSV stream, detects whether it holds
	// crime or population rows, validates and persists them, and
	// optionally retrains the model plus regenerates predictions.
	ImportFile(ctx context.Context, filename string, r io.Reader, retrain bool) (*ImportResult, error)
	ListImportHistory(ctx context.Context) ([]models.ImportHistory, error)
	GetSystemHealth(ctx context.Context) (*SystemHealth, error)
	GetDataStatistics(ctx context.Context) (*DataStatistics, error)
	CreateBackup(ctx context.Context, dir string) (*BackupResult, error)
}

type dataImportService struct {
	db         *gorm.DB
	predictive PredictiveService
	barangays  BarangayService
	logger     *log.Logger
}

// NewDataImportService wires the import pipeline to the database and
// the predictive service used for post-import retraining.
func NewDataImportService(db *gorm.DB, predictive PredictiveService) DataImportService {
	return &dataImportService{
		db:         db,
		predictive: predictive,
		barangays:  NewBarangayService(db),
		logger:     log.New(os.Stdout, "[IMPORT] ", log.LstdFlags|log.Lmsgprefix),
	}
}

// importRow is one spreadsheet row keyed by lowercased header name.
type importRow map[string]string

func (r importRow) get(keys ...string) string {
	for _, key := range keys {
		if v, ok := r[key]; ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func (s *dataImportService) ImportFile(ctx context.Context, filename string, r io.Reader, retrain bool) (*ImportResult, error) {
	rows, err := readTabularFile(filename, r)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", filename, err)
	}
	s.logger.Printf("found %d rows in %s", len(rows), filename)

	fileType := detectFileType(rows, filename)
	s.logger.Printf("detected file type: %s", fileType)

	result := &ImportResult{
		ImportID:  uuid.NewString(),
		Type:      fileType,
		TotalRows: len(rows),
	}

	if fileType == models.ImportTypePopulation {
		err = s.importPopulationRows(ctx, rows, result)
	} else {
		err = s.importCrimeRows(ctx, rows, result)
	}
	if err != nil {
		return nil, err
	}
	metrics.RowsImported.WithLabelValues(fileType).Add(float64(result.Imported))

	if retrain && result.Imported > 0 {
		// A failed retrain is logged but does not fail the import.
		if err := s.predictive.Initialize(ctx); err != nil {
			s.logger.Printf("model retraining failed: %v", err)
		} else if _, err := s.predictive.GenerateAllPredictions(ctx); err != nil {
			s.logger.Printf("prediction regeneration failed: %v", err)
		} else {
			result.Retrained = true
		}
	}

	history := models.ImportHistory{
		ImportID:          result.ImportID,
		Type:              fileType,
		Filename:          filepath.Base(filename),
		TotalRows:         result.TotalRows,
		ImportedCount:     result.Imported,
		SkippedCount:      result.Invalid,
		DuplicatesSkipped: result.Duplicates,
		Retrained:         result.Retrained,
		ImportedAt:        time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&history).Error; err != nil {
		return nil, fmt.Errorf("recording import history: %w", err)
	}

	s.logger.Printf("import %s complete: %d imported, %d invalid, %d duplicates",
		result.ImportID, result.Imported, result.Invalid, result.Duplicates)
	return result, nil
}

func (s *dataImportService) importCrimeRows(ctx context.Context, rows []importRow, result *ImportResult) error {
	seen := make(map[string]bool)
	var crimes []models.Crime

	for _, row := range rows {
		crime, ok := cleanCrimeRow(row)
		if !ok {
			result.Invalid++
			continue
		}
		dedupKey := fmt.Sprintf("%s-%s-%s-%s-%s", crime.Barangay, crime.Municipality,
			crime.Province, crime.CrimeType, crime.ConfinementDate.Format(time.RFC3339))
		if seen[dedupKey] {
			result.Duplicates++
			continue
		}
		seen[dedupKey] = true
		crimes = append(crimes, crime)
	}

	if len(crimes) > 0 {
		if err := s.db.WithContext(ctx).CreateInBatches(crimes, 500).Error; err != nil {
			return fmt.Errorf("inserting crime rows: %w", err)
		}
	}
	result.Imported = len(crimes)
	return nil
}

func (s *dataImportService) importPopulationRows(ctx context.Context, rows []importRow, result *ImportResult) error {
	seen := make(map[string]bool)

	for _, row := range rows {
		name := normalizeUpper(row.get("barangay", "name"))
		population, err := strconv.Atoi(strings.ReplaceAll(row.get("population"), ",", ""))
		if name == "" || err != nil || population <= 0 {
			result.Invalid++
			continue
		}

		municipality := normalizeUpper(row.get("municipality"))
		if municipality == "" {
			municipality = defaultMunicipality
		}
		province := normalizeUpper(row.get("province"))
		if province == "" {
			province = defaultProvince
		}

		dedupKey := name + "-" + municipality + "-" + province
		if seen[dedupKey] {
			result.Duplicates++
			continue
		}
		seen[dedupKey] = true

		if _, err := s.barangays.UpsertPopulation(ctx, name, municipality, province, population); err != nil {
			return fmt.Errorf("upserting population for %s: %w", name, err)
		}
		result.Imported++
	}
	return nil
}

// cleanCrimeRow normalizes and validates one spreadsheet row into a
// Crime. Rejects unknown crime types and dates outside a plausible
// range (10 years back, 1 year forward).
func cleanCrimeRow(row importRow) (models.Crime, bool) {
	crime := models.Crime{
		Barangay:     normalizeUpper(row.get("barangay")),
		Municipality: normalizeUpper(row.get("municipality")),
		Province:     normalizeUpper(row.get("province")),
		CrimeType:    normalizeUpper(row.get("crimetype", "crime_type", "type")),
		Country:      defaultCountry,
		Status:       "ONGOING",
	}
	if crime.Barangay == "" || crime.Municipality == "" || crime.Province == "" || crime.CrimeType == "" {
		return crime, false
	}
	if !containsString(validCrimeTypes, crime.CrimeType) {
		return crime, false
	}

	date, ok := parseImportDate(row.get("confinementdate", "confinement_date", "date"))
	if !ok {
		return crime, false
	}
	now := time.Now()
	earliest := time.Date(now.Year()-10, time.January, 1, 0, 0, 0, 0, time.UTC)
	latest := time.Date(now.Year()+1, time.December, 31, 0, 0, 0, 0, time.UTC)
	if date.Before(earliest) || date.After(latest) {
		return crime, false
	}
	crime.ConfinementDate = date

	if t := row.get("confinementtime", "confinement_time", "time"); t != "" {
		if _, ok := parseHour(t); ok {
			crime.ConfinementTime = t
		}
	}
	if caseNumber := row.get("casenumber", "case_number"); caseNumber != "" {
		crime.CaseNumber = &caseNumber
	}
	if status := normalizeUpper(row.get("status")); status == "RELEASED" || status == "ONGOING" {
		crime.Status = status
	}
	if gender := normalizeUpper(row.get("gender")); gender != "" {
		crime.Gender = gender
	}
	if age, err := strconv.Atoi(row.get("age")); err == nil && age > 0 {
		crime.Age = age
	}
	if civil := normalizeUpper(row.get("civilstatus", "civil_status")); civil != "" {
		crime.CivilStatus = civil
	}
	return crime, true
}

// parseImportDate accepts the date formats seen in source spreadsheets
// plus Excel serial day numbers.
func parseImportDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}

	if serial, err := strconv.ParseFloat(value, 64); err == nil && serial > 59 {
		// Excel serial day 1 is 1900-01-01; the off-by-two accounts
		// for the epoch and the phantom 1900 leap day.
		epoch := time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC)
		return epoch.Add(time.Duration((serial - 2) * 24 * float64(time.Hour))), true
	}

	formats := []string{
		"2006-01-02", "2006/01/02", "01/02/2006", "1/2/2006",
		"2006-01-02 15:04:05", time.RFC3339, "01-02-2006", "Jan 2, 2006",
	}
	for _, format := range formats {
		if t, err := time.Parse(format, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// detectFileType decides between crime and population content from
// the filename and the header row.
func detectFileType(rows []importRow, filename string) string {
	lower := strings.ToLower(filepath.Base(filename))
	if strings.Contains(lower, "population") || strings.Contains(lower, "lubao") {
		return models.ImportTypePopulation
	}
	if len(rows) > 0 {
		if _, ok := rows[0]["population"]; ok {
			return models.ImportTypePopulation
		}
	}
	return models.ImportTypeCrime
}

// readTabularFile parses the first sheet of an XLSX workbook, or a CSV
// stream, into header-keyed rows. Header names are lowercased with
// spaces stripped so lookups tolerate formatting differences.
func readTabularFile(filename string, r io.Reader) ([]importRow, error) {
	if strings.EqualFold(filepath.Ext(filename), ".csv") {
		records, err := csv.NewReader(r).ReadAll()
		if err != nil {
			return nil, err
		}
		return rowsFromRecords(records), nil
	}

	workbook, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer workbook.Close()

	sheets := workbook.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets in workbook")
	}
	records, err := workbook.GetRows(sheets[0])
	if err != nil {
		return nil, err
	}
	return rowsFromRecords(records), nil
}

func rowsFromRecords(records [][]string) []importRow {
	if len(records) < 2 {
		return nil
	}

	headers := make([]string, len(records[0]))
	for i, h := range records[0] {
		headers[i] = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(h)), " ", "")
	}

	rows := make([]importRow, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(importRow, len(headers))
		for i, value := range record {
			if i < len(headers) && headers[i] != "" {
				row[headers[i]] = value
			}
		}
		if len(row) > 0 {
			rows = append(rows, row)
		}
	}
	return rows
}

func (s *dataImportService) ListImportHistory(ctx context.Context) ([]models.ImportHistory, error) {
	var history []models.ImportHistory
	err := s.db.WithContext(ctx).Order("imported_at DESC").Limit(100).Find(&history).Error
	if err != nil {
		return nil, err
	}
	return history, nil
}

func (s *dataImportService) GetSystemHealth(ctx context.Context) (*SystemHealth, error) {
	health := &SystemHealth{}

	db := s.db.WithContext(ctx)
	if err := db.Model(&models.Crime{}).Count(&health.TotalCrimes).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Barangay{}).Count(&health.TotalBarangays).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Prediction{}).Count(&health.TotalPredictions).Error; err != nil {
		return nil, err
	}

	var latest models.Crime
	if err := db.Order("created_at DESC").First(&latest).Error; err == nil {
		health.LastUpdated = latest.CreatedAt
	}

	var missing int64
	err := db.Model(&models.Crime{}).
		Where("barangay = '' OR crime_type = '' OR confinement_date IS NULL").
		Count(&missing).Error
	if err != nil {
		return nil, err
	}
	health.MissingRecords = missing

	completeness := 100.0
	if health.TotalCrimes > 0 {
		completeness = float64(health.TotalCrimes-missing) / float64(health.TotalCrimes) * 100
	}
	health.DataCompleteness = int(completeness + 0.5)

	switch {
	case completeness >= 90:
		health.OverallHealth = "Excellent"
	case completeness >= 80:
		health.OverallHealth = "Good"
	case completeness >= 70:
		health.OverallHealth = "Fair"
	case completeness >= 60:
		health.OverallHealth = "Poor"
	default:
		health.OverallHealth = "Critical"
	}

	if s.predictive.ModelInfo().Trained {
		health.ModelStatus = "Trained"
	} else {
		health.ModelStatus = "Not Trained"
	}
	return health, nil
}

func (s *dataImportService) GetDataStatistics(ctx context.Context) (*DataStatistics, error) {
	stats := &DataStatistics{}
	analytics := NewAnalyticsService(s.db)

	db := s.db.WithContext(ctx)
	if err := db.Model(&models.Crime{}).Count(&stats.TotalCrimes).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Barangay{}).Count(&stats.TotalBarangays).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Prediction{}).Count(&stats.TotalPredictions).Error; err != nil {
		return nil, err
	}

	summary, err := analytics.GetSummaryStats(ctx)
	if err != nil {
		return nil, err
	}
	stats.DateRange = summary.DateRange

	stats.CrimeTypeDistribution, err = analytics.GetCrimeTypeDistribution(ctx, "", "", "")
	if err != nil {
		return nil, err
	}
	stats.TopBarangays, err = analytics.GetTopBarangaysByCrimeCount(ctx, 10)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// CreateBackup exports crimes, barangays and predictions as JSON files
// under a timestamped directory plus a manifest.
func (s *dataImportService) CreateBackup(ctx context.Context, dir string) (*BackupResult, error) {
	timestamp := time.Now().UTC()
	backupPath := filepath.Join(dir, "backup-"+timestamp.Format("2006-01-02T15-04-05"))
	if err := os.MkdirAll(backupPath, 0o755); err != nil {
		return nil, err
	}

	var crimes []models.Crime
	if err := s.db.WithContext(ctx).Find(&crimes).Error; err != nil {
		return nil, err
	}
	var barangays []models.Barangay
	if err := s.db.WithContext(ctx).Find(&barangays).Error; err != nil {
		return nil, err
	}
	var predictions []models.Prediction
	if err := s.db.WithContext(ctx).Find(&predictions).Error; err != nil {
		return nil, err
	}

	files := map[string]any{
		"crimes.json":      crimes,
		"barangays.json":   barangays,
		"predictions.json": predictions,
	}
	for name, data := range files {
		if err := writeJSONFile(filepath.Join(backupPath, name), data); err != nil {
			return nil, err
		}
	}

	total := len(crimes) + len(barangays) + len(predictions)
	manifest := map[string]any{
		"backup_date": timestamp,
		"collections": map[string]int{
			"crimes":      len(crimes),
			"barangays":   len(barangays),
			"predictions": len(predictions),
		},
		"total_records": total,
	}
	if err := writeJSONFile(filepath.Join(backupPath, "manifest.json"), manifest); err != nil {
		return nil, err
	}

	s.logger.Printf("backup written to %s (%d records)", backupPath, total)
	return &BackupResult{BackupPath: backupPath, TotalRecords: total, Timestamp: timestamp}, nil
}

func writeJSONFile(path string, data any) error {
	encoded, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, encoded, 0o644)
}
