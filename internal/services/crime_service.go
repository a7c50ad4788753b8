package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jltdev15/crime-analytics/internal/models"
	"gorm.io/gorm"
)

// normalizeUpper canonicalizes free-text area and crime-type values so
// that grouping keys compare equal regardless of input casing.
func normalizeUpper(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// CrimeFilter narrows crime listings. Zero-value fields are ignored.
type CrimeFilter struct {
	Barangay     string
	Municipality string
	Province     string
	CrimeType    string
	Status       string
	StartDate    time.Time
	EndDate      time.Time
	Page         int
	Limit        int
}

// CrimePage is one page of a filtered crime listing.
type CrimePage struct {
	Crimes []models.Crime `json:"crimes"`
	Total  int64          `json:"total"`
	Page   int            `json:"page"`
	Limit  int            `json:"limit"`
}

// CrimeService defines the CRUD and query operations for incident
// records.
type CrimeService interface {
	ListCrimes(ctx context.Context, filter CrimeFilter) (*CrimePage, error)
	GetCrime(ctx context.Context, id uint) (*models.Crime, error)
	CreateCrime(ctx context.Context, req *models.CrimeRequest) (*models.Crime, error)
	DeleteCrime(ctx context.Context, id uint) error
	CountByDateRange(ctx context.Context, start, end time.Time) (int64, error)
}

// crimeService is the gorm-backed implementation of CrimeService.
type crimeService struct {
	db *gorm.DB
}

// NewCrimeService injects the *gorm.DB dependency and returns a
// ready-to-use CrimeService.
func NewCrimeService(db *gorm.DB) CrimeService {
	return &crimeService{db: db}
}

// ListCrimes returns one page of crimes matching the filter, newest
// confinement date first.
func (s *crimeService) ListCrimes(ctx context.Context, filter CrimeFilter) (*CrimePage, error) {
	query := s.db.WithContext(ctx).Model(&models.Crime{})

	if filter.Barangay != "" {
		query = query.Where("barangay = ?", filter.Barangay)
	}
	if filter.Municipality != "" {
		query = query.Where("municipality = ?", filter.Municipality)
	}
	if filter.Province != "" {
		query = query.Where("province = ?", filter.Province)
	}
	if filter.CrimeType != "" {
		query = query.Where("crime_type = ?", filter.CrimeType)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if !filter.StartDate.IsZero() {
		query = query.Where("confinement_date >= ?", filter.StartDate)
	}
	if !filter.EndDate.IsZero() {
		query = query.Where("confinement_date <= ?", filter.EndDate)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 || limit > 500 {
		limit = 50
	}

	var crimes []models.Crime
	err := query.Order("confinement_date DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&crimes).Error
	if err != nil {
		return nil, err
	}

	return &CrimePage{Crimes: crimes, Total: total, Page: page, Limit: limit}, nil
}

func (s *crimeService) GetCrime(ctx context.Context, id uint) (*models.Crime, error) {
	var crime models.Crime
	if err := s.db.WithContext(ctx).First(&crime, id).Error; err != nil {
		return nil, err
	}
	return &crime, nil
}

// CreateCrime validates the request payload and inserts the incident.
func (s *crimeService) CreateCrime(ctx context.Context, req *models.CrimeRequest) (*models.Crime, error) {
	if req.CrimeType == "" {
		return nil, fmt.Errorf("crime_type is required")
	}
	if req.Barangay == "" || req.Municipality == "" || req.Province == "" {
		return nil, fmt.Errorf("barangay, municipality and province are required")
	}

	confinementDate, err := time.Parse("2006-01-02", req.ConfinementDate)
	if err != nil {
		return nil, fmt.Errorf("invalid confinement_date %q: %w", req.ConfinementDate, err)
	}

	crime := models.Crime{
		CrimeType:       normalizeUpper(req.CrimeType),
		Status:          req.Status,
		Gender:          req.Gender,
		Age:             req.Age,
		CivilStatus:     req.CivilStatus,
		ConfinementDate: confinementDate,
		ConfinementTime: req.ConfinementTime,
		Barangay:        normalizeUpper(req.Barangay),
		Municipality:    normalizeUpper(req.Municipality),
		Province:        normalizeUpper(req.Province),
		Country:         req.Country,
	}
	if crime.Status == "" {
		crime.Status = "ONGOING"
	}
	if crime.Country == "" {
		crime.Country = "PHILIPPINES"
	}
	if req.CaseNumber != "" {
		caseNumber := req.CaseNumber
		crime.CaseNumber = &caseNumber
	}

	if err := s.db.WithContext(ctx).Create(&crime).Error; err != nil {
		return nil, err
	}
	return &crime, nil
}

func (s *crimeService) DeleteCrime(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&models.Crime{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (s *crimeService) CountByDateRange(ctx context.Context, start, end time.Time) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Crime{}).
		Where("confinement_date >= ? AND confinement_date <= ?", start, end).
		Count(&count).Error
	return count, err
}
