package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ghorer-khabar/mealclub/internal/core/domain"
	"github.com/ghorer-khabar/mealclub/internal/core/ports"
)

type PackageService struct {
	repo ports.PackageRepository
	log  zerolog.Logger
}

func NewPackageService(repo ports.PackageRepository, log zerolog.Logger) *PackageService {
	return &PackageService{repo: repo, log: log}
}

func (s *PackageService) ListPackages(ctx context.Context) ([]*domain.MealPackage, error) {
	pkgs, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list packages: %w", err)
	}
	return pkgs, nil
}

func (s *PackageService) CreatePackage(ctx context.Context, name string, price float64) (*domain.MealPackage, error) {
	pkg, err := domain.NewMealPackage(name, price)
	if err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, pkg)
	if err != nil {
		return nil, fmt.Errorf("create package: %w", err)
	}

	s.log.Info().Str("package_id", created.ID).Str("name", created.Name).Msg("meal package created")
	return created, nil
}

// UpdatePackage ignores a blank name, matching a partial edit form.
func (s *PackageService) UpdatePackage(ctx context.Context, id string, upd ports.PackageUpdate) (*domain.MealPackage, error) {
	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			upd.Name = nil
		} else {
			upd.Name = &name
		}
	}
	if upd.Price != nil {
		if err := domain.ValidateAmount("price", *upd.Price); err != nil {
			return nil, err
		}
	}
	return s.repo.Update(ctx, id, upd)
}

func (s *PackageService) DeletePackage(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Str("package_id", id).Msg("meal package deleted")
	return nil
}
