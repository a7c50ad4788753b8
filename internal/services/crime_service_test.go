package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/jltdev15/crime-analytics/internal/models"
)

func TestCreateCrime_NormalizesAndDefaults(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCrimeService(db)

	crime, err := svc.CreateCrime(context.Background(), &models.CrimeRequest{
		CrimeType:       "theft",
		Barangay:        " santa cruz ",
		Municipality:    "lubao",
		Province:        "pampanga",
		ConfinementDate: "2026-03-15",
		ConfinementTime: "22:30",
	})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if crime.CrimeType != "THEFT" || crime.Barangay != "SANTA CRUZ" {
		t.Errorf("expected uppercased fields, got: %+v", crime)
	}
	if crime.Status != "ONGOING" || crime.Country != "PHILIPPINES" {
		t.Errorf("expected defaults applied, got status=%s country=%s", crime.Status, crime.Country)
	}
	if crime.ConfinementDate.Month() != time.March {
		t.Errorf("unexpected parsed date: %v", crime.ConfinementDate)
	}
}

func TestCreateCrime_Validation(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCrimeService(db)

	if _, err := svc.CreateCrime(context.Background(), &models.CrimeRequest{
		Barangay: "SANTA CRUZ", Municipality: "LUBAO", Province: "PAMPANGA",
		ConfinementDate: "2026-03-15",
	}); err == nil {
		t.Error("expected error for missing crime type")
	}

	if _, err := svc.CreateCrime(context.Background(), &models.CrimeRequest{
		CrimeType: "THEFT", Barangay: "SANTA CRUZ", Municipality: "LUBAO", Province: "PAMPANGA",
		ConfinementDate: "15/03/2026x",
	}); err == nil {
		t.Error("expected error for malformed date")
	}
}

func TestListCrimes_FiltersAndPaginates(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCrimeService(db)

	date := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		crime := models.Crime{
			CrimeType: "THEFT", Barangay: "SANTA CRUZ", Municipality: "LUBAO",
			Province: "PAMPANGA", ConfinementDate: date.AddDate(0, 0, i),
		}
		if err := db.Create(&crime).Error; err != nil {
			t.Fatalf("seeding crime: %v", err)
		}
	}
	other := models.Crime{
		CrimeType: "DRUGS", Barangay: "SAN ROQUE", Municipality: "LUBAO",
		Province: "PAMPANGA", ConfinementDate: date,
	}
	if err := db.Create(&other).Error; err != nil {
		t.Fatalf("seeding crime: %v", err)
	}

	page, err := svc.ListCrimes(context.Background(), CrimeFilter{
		Barangay: "SANTA CRUZ", Page: 1, Limit: 5,
	})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if page.Total != 7 {
		t.Errorf("expected total 7, got: %d", page.Total)
	}
	if len(page.Crimes) != 5 {
		t.Errorf("expected 5 rows on page 1, got: %d", len(page.Crimes))
	}

	page2, err := svc.ListCrimes(context.Background(), CrimeFilter{
		Barangay: "SANTA CRUZ", Page: 2, Limit: 5,
	})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if len(page2.Crimes) != 2 {
		t.Errorf("expected 2 rows on page 2, got: %d", len(page2.Crimes))
	}

	byType, err := svc.ListCrimes(context.Background(), CrimeFilter{CrimeType: "DRUGS"})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if byType.Total != 1 || byType.Crimes[0].Barangay != "SAN ROQUE" {
		t.Errorf("unexpected type filter result: %+v", byType)
	}
}

func TestDeleteCrime_NotFound(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCrimeService(db)

	err := svc.DeleteCrime(context.Background(), 12345)
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("expected ErrRecordNotFound, got: %v", err)
	}
}

func TestCountByDateRange(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCrimeService(db)

	for _, day := range []int{1, 15, 28} {
		crime := models.Crime{
			CrimeType: "THEFT", Barangay: "SANTA CRUZ", Municipality: "LUBAO", Province: "PAMPANGA",
			ConfinementDate: time.Date(2026, time.February, day, 0, 0, 0, 0, time.UTC),
		}
		if err := db.Create(&crime).Error; err != nil {
			t.Fatalf("seeding crime: %v", err)
		}
	}

	count, err := svc.CountByDateRange(context.Background(),
		time.Date(2026, time.February, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.February, 20, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 crime in range, got: %d", count)
	}
}
