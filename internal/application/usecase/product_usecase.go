package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/Hospital-api/internal/application/dto"
	"github.com/jhoicas/Hospital-api/internal/application/session"
	"github.com/jhoicas/Hospital-api/internal/domain"
	"github.com/jhoicas/Hospital-api/internal/domain/entity"
	"github.com/jhoicas/Hospital-api/internal/domain/query"
	"github.com/jhoicas/Hospital-api/internal/domain/repository"
)

const (
	MsgProductCodeTaken = "Un produit avec ce code existe déjà."
	MsgProductSaved     = "Produit enregistré."
)

// ProductUseCase catálogo de productos. El stock se maneja vía movimientos.
type ProductUseCase struct {
	repos repository.Repos
	uow   repository.UnitOfWork
	now   func() time.Time
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repos repository.Repos, uow repository.UnitOfWork) *ProductUseCase {
	return &ProductUseCase{repos: repos, uow: uow, now: time.Now}
}

// Save crea (id 0) o actualiza un producto; el código es único.
func (uc *ProductUseCase) Save(ctx context.Context, actor session.Identity, id int64, in dto.ProductRequest) (*dto.OperationResult, error) {
	if err := required(map[string]string{"code": in.Code, "name": in.Name}); err != nil {
		return nil, err
	}
	if in.UnitPrice.IsNegative() || in.MinimumStock.IsNegative() {
		return nil, invalid("precio y stock mínimo no pueden ser negativos")
	}
	code := strings.ToUpper(strings.TrimSpace(in.Code))
	now := uc.now()
	var result *dto.OperationResult
	err := uc.uow.Do(ctx, func(r repository.Repos) error {
		cat, err := r.Categories.GetByID(ctx, in.CategoryID)
		if err != nil {
			return err
		}
		if cat == nil {
			return fmt.Errorf("%w: categoría %d", domain.ErrNotFound, in.CategoryID)
		}
		if err := r.Locks.Lock(ctx, "product-code:"+code); err != nil {
			return err
		}
		taken, err := r.Products.Exists(ctx, query.Eq("code", code), query.Neq("id", id))
		if err != nil {
			return err
		}
		if taken {
			result = dto.Refused(MsgProductCodeTaken)
			return nil
		}
		p := &entity.Product{IsActive: true}
		if id > 0 {
			if p, err = r.Products.GetForUpdate(ctx, id); err != nil {
				return err
			}
			if p == nil {
				return domain.ErrNotFound
			}
		}
		p.CategoryID = cat.ID
		p.Code = code
		p.Name = strings.TrimSpace(in.Name)
		p.Description = strings.TrimSpace(in.Description)
		p.Unit = strings.TrimSpace(in.Unit)
		p.UnitPrice = in.UnitPrice
		p.MinimumStock = in.MinimumStock
		if id == 0 {
			p.Stamp(actor.UserID, now)
			err = r.Products.Add(ctx, p)
		} else {
			p.Touch(actor.UserID, now)
			err = r.Products.Update(ctx, p, repository.Omit("is_active"))
		}
		if err != nil {
			return err
		}
		result = dto.Done(p.ID, MsgProductSaved)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// List productos activos, opcionalmente de una categoría.
func (uc *ProductUseCase) List(ctx context.Context, categoryID int64) ([]dto.ProductResponse, error) {
	list, err := uc.repos.Products.List(ctx,
		query.Eq("is_active", true),
		query.When(categoryID > 0, query.Eq("category_id", categoryID)),
		query.OrderBy("name", query.Asc),
	)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		out = append(out, dto.ProductResponse{
			ID: p.ID, CategoryID: p.CategoryID, Code: p.Code, Name: p.Name, Description: p.Description,
			Unit: p.Unit, UnitPrice: p.UnitPrice, MinimumStock: p.MinimumStock, IsActive: p.IsActive,
		})
	}
	return out, nil
}

// Deactivate baja lógica de un producto.
func (uc *ProductUseCase) Deactivate(ctx context.Context, actor session.Identity, id int64) error {
	return uc.repos.Products.Delete(ctx, id, repository.SoftDelete, actor.UserID)
}
