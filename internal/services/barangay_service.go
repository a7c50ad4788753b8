package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/jltdev15/crime-analytics/internal/models"
	"gorm.io/gorm"
)

// BarangayService defines operations over the barangay reference data
// that backs population lookups for risk assessment.
type BarangayService interface {
	ListBarangays(ctx context.Context, municipality, province string) ([]models.Barangay, error)
	SearchBarangays(ctx context.Context, query string) ([]models.Barangay, error)
	CreateBarangay(ctx context.Context, b *models.Barangay) error
	DeleteBarangay(ctx context.Context, id uint) error
	// UpsertPopulation creates the barangay when missing, otherwise
	// updates its population. Returns true when a new row was created.
	UpsertPopulation(ctx context.Context, name, municipality, province string, population int) (bool, error)
}

type barangayService struct {
	db *gorm.DB
}

// NewBarangayService injects the *gorm.DB dependency and returns a
// ready-to-use BarangayService.
func NewBarangayService(db *gorm.DB) BarangayService {
	return &barangayService{db: db}
}

// ListBarangays returns barangays, optionally filtered to one
// municipality and/or province, sorted by name.
func (s *barangayService) ListBarangays(ctx context.Context, municipality, province string) ([]models.Barangay, error) {
	query := s.db.WithContext(ctx).Model(&models.Barangay{})
	if municipality != "" {
		query = query.Where("municipality = ?", normalizeUpper(municipality))
	}
	if province != "" {
		query = query.Where("province = ?", normalizeUpper(province))
	}

	var barangays []models.Barangay
	if err := query.Order("name ASC").Find(&barangays).Error; err != nil {
		return nil, err
	}
	return barangays, nil
}

func (s *barangayService) SearchBarangays(ctx context.Context, query string) ([]models.Barangay, error) {
	var barangays []models.Barangay
	err := s.db.WithContext(ctx).
		Where("name LIKE ?", "%"+normalizeUpper(query)+"%").
		Order("name ASC").
		Limit(50).
		Find(&barangays).Error
	if err != nil {
		return nil, err
	}
	return barangays, nil
}

func (s *barangayService) CreateBarangay(ctx context.Context, b *models.Barangay) error {
	if b.Name == "" || b.Municipality == "" || b.Province == "" {
		return fmt.Errorf("name, municipality and province are required")
	}
	b.Name = normalizeUpper(b.Name)
	b.Municipality = normalizeUpper(b.Municipality)
	b.Province = normalizeUpper(b.Province)
	return s.db.WithContext(ctx).Create(b).Error
}

func (s *barangayService) DeleteBarangay(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&models.Barangay{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpsertPopulation updates an existing barangay's population or
// inserts a new row keyed on (name, municipality, province).
func (s *barangayService) UpsertPopulation(ctx context.Context, name, municipality, province string, population int) (bool, error) {
	name = normalizeUpper(name)
	municipality = normalizeUpper(municipality)
	province = normalizeUpper(province)

	var barangay models.Barangay
	err := s.db.WithContext(ctx).
		Where("name = ? AND municipality = ? AND province = ?", name, municipality, province).
		First(&barangay).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		barangay = models.Barangay{
			Name:         name,
			Municipality: municipality,
			Province:     province,
			Population:   population,
		}
		if err := s.db.WithContext(ctx).Create(&barangay).Error; err != nil {
			return false, err
		}
		return true, nil
	}
	if err != nil {
		return false, err
	}

	err = s.db.WithContext(ctx).Model(&barangay).Update("population", population).Error
	return false, err
}
