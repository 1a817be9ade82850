package ports

import (
	"context"

	"github.com/ghorer-khabar/mealclub/internal/core/domain"
)

// PackageUpdate carries a partial meal package update.
type PackageUpdate struct {
	Name  *string
	Price *float64
}

// PackageRepository handles meal package persistence.
type PackageRepository interface {
	Create(ctx context.Context, p *domain.MealPackage) (*domain.MealPackage, error)
	FindByID(ctx context.Context, id string) (*domain.MealPackage, error)
	List(ctx context.Context) ([]*domain.MealPackage, error)
	Update(ctx context.Context, id string, upd PackageUpdate) (*domain.MealPackage, error)
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) error
}
