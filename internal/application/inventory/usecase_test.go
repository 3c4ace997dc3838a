package inventory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Hospital-api/internal/application/apptest"
	"github.com/jhoicas/Hospital-api/internal/application/dto"
	"github.com/jhoicas/Hospital-api/internal/application/inventory"
	"github.com/jhoicas/Hospital-api/internal/application/session"
	"github.com/jhoicas/Hospital-api/internal/domain"
	"github.com/jhoicas/Hospital-api/internal/domain/entity"
	"github.com/jhoicas/Hospital-api/internal/domain/repository"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type fixture struct {
	s       *apptest.Store
	center  *entity.HospitalCenter
	other   *entity.HospitalCenter
	product *entity.Product
	id      session.Identity
	uc      *inventory.MovementUseCase
}

func setup(t *testing.T) fixture {
	t.Helper()
	s := apptest.NewStore()
	c := s.SeedCenter("Centre Nord")
	o := s.SeedCenter("Centre Sud")
	cat := &entity.ProductCategory{Name: "Antalgiques", IsActive: true}
	s.Categories.Seed(cat)
	p := &entity.Product{CategoryID: cat.ID, Code: "PARA500", Name: "Paracétamol 500", Unit: "boîte",
		UnitPrice: d("2.50"), MinimumStock: d("10"), IsActive: true}
	s.Products.Seed(p)
	return fixture{
		s: s, center: c, other: o, product: p,
		id: session.Identity{UserID: 7, CenterID: c.ID, Role: entity.RoleMedicalStaff},
		uc: inventory.NewMovementUseCase(s.Repos(), s.UoW()),
	}
}

func (f fixture) quantity(t *testing.T, centerID int64) decimal.Decimal {
	t.Helper()
	inv, err := f.s.Repos().Stock.GetForUpdateByProduct(context.Background(), f.product.ID, centerID)
	require.NoError(t, err)
	return inv.CurrentQuantity
}

func (f fixture) move(t *testing.T, kind, qty string) error {
	t.Helper()
	_, err := f.uc.Register(context.Background(), f.id, dto.MovementRequest{
		ProductID: f.product.ID, MovementType: kind, Quantity: d(qty),
	})
	return err
}

// ── Register ─────────────────────────────────────────────────────────────────

func TestRegister_EntradaYSalida(t *testing.T) {
	f := setup(t)

	require.NoError(t, f.move(t, entity.MovementEntry, "20"))
	require.NoError(t, f.move(t, entity.MovementExit, "5"))
	require.NoError(t, f.move(t, entity.MovementAdjustment, "-3"))

	assert.True(t, d("12").Equal(f.quantity(t, f.center.ID)))
	assert.Equal(t, 3, f.s.Movements.Len())

	stored, computed, err := f.uc.Reconcile(context.Background(), f.product.ID, f.center.ID)
	require.NoError(t, err)
	assert.True(t, stored.Equal(computed), "stock = suma de movimientos")
}

func TestRegister_StockInsuficienteNoDejaRastro(t *testing.T) {
	f := setup(t)
	require.NoError(t, f.move(t, entity.MovementEntry, "4"))

	err := f.move(t, entity.MovementExit, "5")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))

	assert.True(t, d("4").Equal(f.quantity(t, f.center.ID)))
	assert.Equal(t, 1, f.s.Movements.Len(), "el movimiento rechazado no se guarda")
}

func TestRegister_Validaciones(t *testing.T) {
	f := setup(t)

	cases := []struct {
		name string
		kind string
		qty  string
	}{
		{"cantidad cero", entity.MovementEntry, "0"},
		{"salida negativa", entity.MovementExit, "-2"},
		{"ajuste cero", entity.MovementAdjustment, "0"},
		{"venta por esta vía", entity.MovementSale, "1"},
		{"tipo desconocido", "Gift", "1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, f.move(t, tc.kind, tc.qty), domain.ErrInvalidInput)
		})
	}
}

func TestRegister_SinCentroSeleccionado(t *testing.T) {
	f := setup(t)
	f.id.CenterID = 0

	assert.ErrorIs(t, f.move(t, entity.MovementEntry, "1"), domain.ErrNoActiveCenter)
}

func TestRegister_ProductoInactivo(t *testing.T) {
	f := setup(t)
	f.product.IsActive = false
	require.NoError(t, f.s.Products.Update(context.Background(), f.product))

	assert.ErrorIs(t, f.move(t, entity.MovementEntry, "1"), domain.ErrNotFound)
}

// ── Transfer ─────────────────────────────────────────────────────────────────

func TestTransfer_MueveStockEntreCentros(t *testing.T) {
	f := setup(t)
	require.NoError(t, f.move(t, entity.MovementEntry, "10"))

	tid, err := f.uc.Transfer(context.Background(), f.id, dto.TransferRequest{
		ProductID: f.product.ID, ToCenterID: f.other.ID, Quantity: d("6"),
	})
	require.NoError(t, err)
	assert.NotZero(t, tid)

	assert.True(t, d("4").Equal(f.quantity(t, f.center.ID)))
	assert.True(t, d("6").Equal(f.quantity(t, f.other.ID)))

	tr, _ := f.s.Transfers.GetByID(context.Background(), tid)
	require.NotNil(t, tr)
	assert.Equal(t, entity.TransferCompleted, tr.Status)

	var kinds []string
	for _, m := range f.s.Movements.All() {
		kinds = append(kinds, m.MovementType)
		if m.MovementType != entity.MovementEntry {
			require.NotNil(t, m.ReferenceID)
			assert.Equal(t, tid, *m.ReferenceID)
		}
	}
	assert.ElementsMatch(t, []string{entity.MovementEntry, entity.MovementTransferOut, entity.MovementTransferIn}, kinds)
}

func TestTransfer_InsuficienteEsTodoONada(t *testing.T) {
	f := setup(t)
	require.NoError(t, f.move(t, entity.MovementEntry, "2"))

	_, err := f.uc.Transfer(context.Background(), f.id, dto.TransferRequest{
		ProductID: f.product.ID, ToCenterID: f.other.ID, Quantity: d("3"),
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, 0, f.s.Transfers.Len())
	assert.True(t, f.quantity(t, f.other.ID).IsZero())
}

func TestTransfer_MismoCentroRechazado(t *testing.T) {
	f := setup(t)
	_, err := f.uc.Transfer(context.Background(), f.id, dto.TransferRequest{
		ProductID: f.product.ID, ToCenterID: f.center.ID, Quantity: d("1"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ── ApplyInTx ────────────────────────────────────────────────────────────────

func TestApplyInTx_ErrorDelCallerRevierteElMovimiento(t *testing.T) {
	f := setup(t)
	require.NoError(t, f.move(t, entity.MovementEntry, "5"))
	boom := errors.New("fallo posterior")

	err := f.s.UoW().Do(context.Background(), func(r repository.Repos) error {
		m := &entity.StockMovement{ProductID: f.product.ID, HospitalCenterID: f.center.ID,
			MovementType: entity.MovementSale, Quantity: d("-2")}
		if err := f.uc.ApplyInTx(context.Background(), r, m); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.True(t, d("5").Equal(f.quantity(t, f.center.ID)))
}

// ── StockUseCase ─────────────────────────────────────────────────────────────

type fakeExporter struct {
	center string
	lines  int
}

func (e *fakeExporter) ExportStock(_ context.Context, centerName string, lines []repository.StockLine, _ time.Time) ([]byte, error) {
	e.center, e.lines = centerName, len(lines)
	return []byte("PK"), nil
}

func TestStock_LineasYReposicion(t *testing.T) {
	f := setup(t)
	ok := &entity.Product{CategoryID: f.product.CategoryID, Code: "GAZE", Name: "Gaze stérile",
		UnitPrice: d("1"), MinimumStock: d("5"), IsActive: true}
	f.s.Products.Seed(ok)
	require.NoError(t, f.move(t, entity.MovementEntry, "4"))
	_, err := f.uc.Register(context.Background(), f.id, dto.MovementRequest{ProductID: ok.ID, MovementType: entity.MovementEntry, Quantity: d("50")})
	require.NoError(t, err)

	st := inventory.NewStockUseCase(f.s.Repos(), nil)
	lines, err := st.Lines(context.Background(), f.id)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, "Gaze stérile", lines[0].ProductName)
	assert.False(t, lines[0].Low)
	assert.True(t, lines[1].Low)

	rep, err := st.Replenishment(context.Background(), f.id)
	require.NoError(t, err)
	require.Len(t, rep, 1)
	assert.Equal(t, f.product.ID, rep[0].ProductID)
	assert.True(t, d("11").Equal(rep[0].SuggestedQuantity), "1,5 × 10 − 4")
	assert.True(t, d("27.5").Equal(rep[0].EstimatedCost))
	assert.Equal(t, 1, rep[0].Priority)
}

func TestStock_Export(t *testing.T) {
	f := setup(t)
	require.NoError(t, f.move(t, entity.MovementEntry, "4"))
	exp := &fakeExporter{}

	doc, err := inventory.NewStockUseCase(f.s.Repos(), exp).Export(context.Background(), f.id)
	require.NoError(t, err)
	assert.Equal(t, "Centre Nord", exp.center)
	assert.Equal(t, 1, exp.lines)
	assert.Contains(t, doc.Filename, ".xlsx")
}
