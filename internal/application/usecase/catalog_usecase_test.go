package usecase_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Hospital-api/internal/application/apptest"
	"github.com/jhoicas/Hospital-api/internal/application/dto"
	"github.com/jhoicas/Hospital-api/internal/application/usecase"
	"github.com/jhoicas/Hospital-api/internal/domain"
)

// ── Categorías ───────────────────────────────────────────────────────────────

func TestCategorySave_NombreUnico(t *testing.T) {
	s := apptest.NewStore()
	uc := usecase.NewCategoryUseCase(s.Repos(), s.UoW())

	res, err := uc.Save(ctx, superAdmin(1), 0, dto.CategoryRequest{Name: "Antibiotiques"})
	require.NoError(t, err)
	require.True(t, res.Success)

	res, err = uc.Save(ctx, superAdmin(1), 0, dto.CategoryRequest{Name: "ANTIBIOTIQUES "})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, usecase.MsgCategoryNameTaken, res.Message)

	_, err = uc.Save(ctx, superAdmin(1), 0, dto.CategoryRequest{Name: "  "})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCategoryDelete_ConProductosEsRechazo(t *testing.T) {
	s := apptest.NewStore()
	cats := usecase.NewCategoryUseCase(s.Repos(), s.UoW())
	products := usecase.NewProductUseCase(s.Repos(), s.UoW())

	used, err := cats.Save(ctx, superAdmin(1), 0, dto.CategoryRequest{Name: "Antalgiques"})
	require.NoError(t, err)
	empty, err := cats.Save(ctx, superAdmin(1), 0, dto.CategoryRequest{Name: "Vide"})
	require.NoError(t, err)
	_, err = products.Save(ctx, superAdmin(1), 0, dto.ProductRequest{CategoryID: used.ID, Code: "par500", Name: "Paracétamol 500"})
	require.NoError(t, err)

	res, err := cats.Delete(ctx, superAdmin(1), used.ID)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, usecase.MsgCategoryInUse, res.Message)

	res, err = cats.Delete(ctx, superAdmin(1), empty.ID)
	require.NoError(t, err)
	assert.True(t, res.Success)

	list, err := cats.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.EqualValues(t, 1, list[0].ProductCount)
}

// ── Productos ────────────────────────────────────────────────────────────────

func TestProductSave_CodigoUnicoEnMayusculas(t *testing.T) {
	s := apptest.NewStore()
	cat, err := usecase.NewCategoryUseCase(s.Repos(), s.UoW()).Save(ctx, superAdmin(1), 0, dto.CategoryRequest{Name: "Antalgiques"})
	require.NoError(t, err)
	uc := usecase.NewProductUseCase(s.Repos(), s.UoW())

	res, err := uc.Save(ctx, superAdmin(1), 0, dto.ProductRequest{
		CategoryID: cat.ID, Code: " par500 ", Name: "Paracétamol", UnitPrice: decimal.NewFromInt(250),
	})
	require.NoError(t, err)
	require.True(t, res.Success)

	dup, err := uc.Save(ctx, superAdmin(1), 0, dto.ProductRequest{CategoryID: cat.ID, Code: "PAR500", Name: "Autre"})
	require.NoError(t, err)
	assert.False(t, dup.Success)
	assert.Equal(t, usecase.MsgProductCodeTaken, dup.Message)

	// actualizar conservando su propio código
	upd, err := uc.Save(ctx, superAdmin(1), res.ID, dto.ProductRequest{CategoryID: cat.ID, Code: "PAR500", Name: "Paracétamol 500mg"})
	require.NoError(t, err)
	assert.True(t, upd.Success)

	p, _ := s.Products.GetByID(ctx, res.ID)
	assert.Equal(t, "PAR500", p.Code)
	assert.Equal(t, "Paracétamol 500mg", p.Name)
}

func TestProductSave_Validacion(t *testing.T) {
	s := apptest.NewStore()
	uc := usecase.NewProductUseCase(s.Repos(), s.UoW())

	_, err := uc.Save(ctx, superAdmin(1), 0, dto.ProductRequest{Code: "X", Name: "X", UnitPrice: decimal.NewFromInt(-1)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Save(ctx, superAdmin(1), 0, dto.ProductRequest{CategoryID: 77, Code: "X", Name: "X"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProductList_SoloActivosYPorCategoria(t *testing.T) {
	s := apptest.NewStore()
	cats := usecase.NewCategoryUseCase(s.Repos(), s.UoW())
	a, _ := cats.Save(ctx, superAdmin(1), 0, dto.CategoryRequest{Name: "A"})
	b, _ := cats.Save(ctx, superAdmin(1), 0, dto.CategoryRequest{Name: "B"})
	uc := usecase.NewProductUseCase(s.Repos(), s.UoW())

	p1, _ := uc.Save(ctx, superAdmin(1), 0, dto.ProductRequest{CategoryID: a.ID, Code: "A1", Name: "Zinc"})
	_, _ = uc.Save(ctx, superAdmin(1), 0, dto.ProductRequest{CategoryID: a.ID, Code: "A2", Name: "Amoxicilline"})
	_, _ = uc.Save(ctx, superAdmin(1), 0, dto.ProductRequest{CategoryID: b.ID, Code: "B1", Name: "Bandage"})
	require.NoError(t, uc.Deactivate(ctx, superAdmin(1), p1.ID))

	all, err := uc.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Amoxicilline", all[0].Name, "orden por nombre")

	onlyA, err := uc.List(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, onlyA, 1)
	assert.Equal(t, "A2", onlyA[0].Code)
	assert.True(t, onlyA[0].IsActive)
}
