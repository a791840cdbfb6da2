package store

import (
	"context"
	"time"

	"gorm.io/gorm"

	"clinic-booking-server/internal/apperrors"
	"clinic-booking-server/internal/models"
)

func (s *Store) CreateHealthPackage(ctx context.Context, pkg *models.HealthPackage) error {
	return s.translate(s.conn(ctx).Create(pkg).Error, "health package")
}

func (s *Store) GetHealthPackage(ctx context.Context, id string) (*models.HealthPackage, error) {
	var pkg models.HealthPackage
	if err := s.conn(ctx).First(&pkg, "id = ?", id).Error; err != nil {
		return nil, s.translate(err, "health package")
	}
	return &pkg, nil
}

func (s *Store) ListHealthPackages(ctx context.Context) ([]models.HealthPackage, error) {
	pkgs := []models.HealthPackage{}
	if err := s.conn(ctx).Order("price asc").Find(&pkgs).Error; err != nil {
		return nil, s.translate(err, "health package")
	}
	return pkgs, nil
}

func (s *Store) UpdateHealthPackage(ctx context.Context, pkg *models.HealthPackage) error {
	pkg.UpdatedAt = time.Now().UTC()
	err := s.conn(ctx).Model(&models.HealthPackage{}).Where("id = ?", pkg.ID).Updates(map[string]interface{}{
		"name":        pkg.Name,
		"description": pkg.Description,
		"price":       pkg.Price,
		"duration":    pkg.Duration,
		"updated_at":  pkg.UpdatedAt,
	}).Error
	return s.translate(err, "health package")
}

func (s *Store) DeleteHealthPackage(ctx context.Context, id string) error {
	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		var pkg models.HealthPackage
		if err := tx.First(&pkg, "id = ?", id).Error; err != nil {
			return err
		}

		var refs int64
		if err := tx.Model(&models.Appointment{}).Where("health_package_id = ?", id).Count(&refs).Error; err != nil {
			return err
		}
		if refs > 0 {
			return apperrors.New(apperrors.Conflict, "health package is referenced by appointments")
		}
		return tx.Delete(&pkg).Error
	})
	return s.translate(err, "health package")
}
