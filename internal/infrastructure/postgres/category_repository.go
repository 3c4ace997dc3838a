package postgres

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Hospital-api/internal/domain/entity"
	"github.com/jhoicas/Hospital-api/internal/domain/repository"
)

var _ repository.CategoryRepository = (*CategoryRepo)(nil)

// CategoryRepo adaptador de product_categories.
type CategoryRepo struct {
	*Table[entity.ProductCategory]
}

// NewCategoryRepository construye el adaptador de categorías. Pasar pool o tx (Querier).
func NewCategoryRepository(q Querier) *CategoryRepo {
	return &CategoryRepo{Table: NewTable[entity.ProductCategory](q, "product_categories")}
}

func (r *CategoryRepo) NameExists(ctx context.Context, name string, excludeID int64) (bool, error) {
	var ok bool
	err := r.q.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM product_categories WHERE lower(name) = lower($1) AND id <> $2)`,
		strings.TrimSpace(name), excludeID).Scan(&ok)
	if err != nil {
		return false, wrap("category name exists", err)
	}
	return ok, nil
}

// HasProducts cuenta productos activos o no: cualquier producto impide borrar la categoría.
func (r *CategoryRepo) HasProducts(ctx context.Context, categoryID int64) (bool, error) {
	var ok bool
	if err := r.q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM products WHERE category_id = $1)`, categoryID).Scan(&ok); err != nil {
		return false, wrap("category has products", err)
	}
	return ok, nil
}

func (r *CategoryRepo) ListWithProductCount(ctx context.Context) ([]repository.CategorySummary, error) {
	rows, err := r.q.Query(ctx, `
		SELECT c.id, c.name, c.description, c.is_active, COUNT(p.id)
		FROM product_categories c
		LEFT JOIN products p ON p.category_id = c.id
		GROUP BY c.id
		ORDER BY c.name`)
	if err != nil {
		return nil, wrap("list categories", err)
	}
	list, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (repository.CategorySummary, error) {
		var s repository.CategorySummary
		err := row.Scan(&s.ID, &s.Name, &s.Description, &s.IsActive, &s.ProductCount)
		return s, err
	})
	if err != nil {
		return nil, wrap("scan categories", err)
	}
	return list, nil
}
