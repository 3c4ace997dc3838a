package repository

import (
	"context"

	"github.com/jhoicas/Hospital-api/internal/domain/entity"
)

// CategorySummary categoría con número de productos.
type CategorySummary struct {
	ID           int64
	Name         string
	Description  string
	IsActive     bool
	ProductCount int64
}

// CategoryRepository puerto de persistencia para ProductCategory.
type CategoryRepository interface {
	Repository[entity.ProductCategory]

	NameExists(ctx context.Context, name string, excludeID int64) (bool, error)
	HasProducts(ctx context.Context, categoryID int64) (bool, error)
	ListWithProductCount(ctx context.Context) ([]CategorySummary, error)
}
