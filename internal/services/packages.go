package services

import (
	"context"
	"strings"

	"clinic-booking-server/internal/models"
)

// PackageService manages the health package catalog.
type PackageService struct {
	base
	repo HealthPackageRepository
}

// PackageInput creates or replaces a package.
type PackageInput struct {
	Name        string  `json:"name" validate:"required,min=2,max=255"`
	Description string  `json:"description" validate:"required,min=10"`
	Price       float64 `json:"price" validate:"gte=0"`
	Duration    int     `json:"duration" validate:"gt=0"`
}

// List returns the catalog, cheapest first.
func (p *PackageService) List(ctx context.Context) ([]models.HealthPackage, error) {
	pkgs, err := p.repo.ListHealthPackages(ctx)
	if err != nil {
		return nil, p.fail("package.list", err)
	}
	return pkgs, nil
}

// Get returns one package.
func (p *PackageService) Get(ctx context.Context, id string) (*models.HealthPackage, error) {
	pkg, err := p.repo.GetHealthPackage(ctx, id)
	if err != nil {
		return nil, p.fail("package.get", err)
	}
	return pkg, nil
}

// Create adds a package. Admin only.
func (p *PackageService) Create(ctx context.Context, actor *models.User, in PackageInput) (*models.HealthPackage, error) {
	if err := requireRole(actor, models.RoleAdmin); err != nil {
		return nil, err
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}

	pkg := &models.HealthPackage{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Price:       in.Price,
		Duration:    in.Duration,
	}
	if err := p.repo.CreateHealthPackage(ctx, pkg); err != nil {
		return nil, p.fail("package.create", err)
	}
	return pkg, nil
}

// Update replaces a package's fields. Admin only.
func (p *PackageService) Update(ctx context.Context, actor *models.User, id string, in PackageInput) (*models.HealthPackage, error) {
	if err := requireRole(actor, models.RoleAdmin); err != nil {
		return nil, err
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}

	pkg, err := p.repo.GetHealthPackage(ctx, id)
	if err != nil {
		return nil, p.fail("package.update", err)
	}
	pkg.Name = strings.TrimSpace(in.Name)
	pkg.Description = in.Description
	pkg.Price = in.Price
	pkg.Duration = in.Duration

	if err := p.repo.UpdateHealthPackage(ctx, pkg); err != nil {
		return nil, p.fail("package.update", err)
	}
	return pkg, nil
}

// Delete removes a package no appointment references. Admin only.
func (p *PackageService) Delete(ctx context.Context, actor *models.User, id string) error {
	if err := requireRole(actor, models.RoleAdmin); err != nil {
		return err
	}
	if err := p.repo.DeleteHealthPackage(ctx, id); err != nil {
		return p.fail("package.delete", err)
	}
	return nil
}
