package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/jhoicas/Hospital-api/internal/application/dto"
	"github.com/jhoicas/Hospital-api/internal/application/session"
	"github.com/jhoicas/Hospital-api/internal/domain"
	"github.com/jhoicas/Hospital-api/internal/domain/entity"
	"github.com/jhoicas/Hospital-api/internal/domain/repository"
)

const (
	MsgCategoryNameTaken = "Une catégorie avec ce nom existe déjà."
	MsgCategoryInUse     = "Impossible de supprimer une catégorie contenant des produits."
	MsgCategorySaved     = "Catégorie enregistrée."
	MsgCategoryDeleted   = "Catégorie supprimée."
)

// CategoryUseCase categorías de productos.
type CategoryUseCase struct {
	repos repository.Repos
	uow   repository.UnitOfWork
	now   func() time.Time
}

// NewCategoryUseCase construye el caso de uso.
func NewCategoryUseCase(repos repository.Repos, uow repository.UnitOfWork) *CategoryUseCase {
	return &CategoryUseCase{repos: repos, uow: uow, now: time.Now}
}

// Save crea (id 0) o renombra una categoría; el nombre es único.
func (uc *CategoryUseCase) Save(ctx context.Context, actor session.Identity, id int64, in dto.CategoryRequest) (*dto.OperationResult, error) {
	if err := required(map[string]string{"name": in.Name}); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	now := uc.now()
	var result *dto.OperationResult
	err := uc.uow.Do(ctx, func(r repository.Repos) error {
		if err := r.Locks.Lock(ctx, "category-name:"+strings.ToLower(name)); err != nil {
			return err
		}
		taken, err := r.Categories.NameExists(ctx, name, id)
		if err != nil {
			return err
		}
		if taken {
			result = dto.Refused(MsgCategoryNameTaken)
			return nil
		}
		c := &entity.ProductCategory{IsActive: true}
		if id > 0 {
			if c, err = r.Categories.GetForUpdate(ctx, id); err != nil {
				return err
			}
			if c == nil {
				return domain.ErrNotFound
			}
		}
		c.Name = name
		c.Description = strings.TrimSpace(in.Description)
		if id == 0 {
			c.Stamp(actor.UserID, now)
			err = r.Categories.Add(ctx, c)
		} else {
			c.Touch(actor.UserID, now)
			err = r.Categories.Update(ctx, c)
		}
		if err != nil {
			return err
		}
		result = dto.Done(c.ID, MsgCategorySaved)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Delete borra la categoría; si tiene productos devuelve un rechazo, no un error.
func (uc *CategoryUseCase) Delete(ctx context.Context, actor session.Identity, id int64) (*dto.OperationResult, error) {
	var result *dto.OperationResult
	err := uc.uow.Do(ctx, func(r repository.Repos) error {
		c, err := r.Categories.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if c == nil {
			return domain.ErrNotFound
		}
		inUse, err := r.Categories.HasProducts(ctx, id)
		if err != nil {
			return err
		}
		if inUse {
			result = dto.Refused(MsgCategoryInUse)
			return nil
		}
		if err := r.Categories.Delete(ctx, id, repository.HardDelete, actor.UserID); err != nil {
			return err
		}
		result = dto.Done(id, MsgCategoryDeleted)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// List categorías con número de productos.
func (uc *CategoryUseCase) List(ctx context.Context) ([]dto.CategoryResponse, error) {
	list, err := uc.repos.Categories.ListWithProductCount(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CategoryResponse, 0, len(list))
	for _, c := range list {
		out = append(out, dto.CategoryResponse{
			ID: c.ID, Name: c.Name, Description: c.Description, IsActive: c.IsActive, ProductCount: c.ProductCount,
		})
	}
	return out, nil
}
