package entity_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Hospital-api/internal/domain"
	"github.com/jhoicas/Hospital-api/internal/domain/entity"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// ── CareEpisode ───────────────────────────────────────────────────────────────

func TestCareEpisode_SaldoConsistenteTrasPagos(t *testing.T) {
	ep := &entity.CareEpisode{Status: entity.EpisodeOpen}
	require.NoError(t, ep.AddCharge(dec("150000")))
	require.NoError(t, ep.AddCharge(dec("35000.50")))

	for _, p := range []string{"10000", "0.50", "75000", "100000"} {
		require.NoError(t, ep.ApplyPayment(dec(p)))
		assert.True(t, ep.RemainingBalance.Equal(ep.TotalCost.Sub(ep.AmountPaid)),
			"RemainingBalance debe ser TotalCost - AmountPaid tras cada pago")
	}
	assert.True(t, ep.RemainingBalance.IsZero())
}

func TestCareEpisode_SobrepagoRechazado(t *testing.T) {
	ep := &entity.CareEpisode{Status: entity.EpisodeOpen}
	require.NoError(t, ep.AddCharge(dec("100")))

	err := ep.ApplyPayment(dec("100.01"))
	assert.ErrorIs(t, err, domain.ErrOverpayment)
	assert.True(t, ep.AmountPaid.IsZero())
	assert.True(t, ep.RemainingBalance.Equal(dec("100")))
}

func TestCareEpisode_PagoNoPositivo(t *testing.T) {
	ep := &entity.CareEpisode{Status: entity.EpisodeOpen}
	require.NoError(t, ep.AddCharge(dec("10")))
	assert.ErrorIs(t, ep.ApplyPayment(decimal.Zero), domain.ErrInvalidInput)
	assert.ErrorIs(t, ep.ApplyPayment(dec("-1")), domain.ErrInvalidInput)
}

func TestCareEpisode_CargoEnEpisodioCerrado(t *testing.T) {
	ep := &entity.CareEpisode{Status: entity.EpisodeOpen}
	require.NoError(t, ep.Close(time.Now()))
	assert.ErrorIs(t, ep.AddCharge(dec("1")), domain.ErrConflict)
	assert.ErrorIs(t, ep.Close(time.Now()), domain.ErrConflict)
}

func TestCareEpisode_RemoveChargeNoBajaDeLoPagado(t *testing.T) {
	ep := &entity.CareEpisode{Status: entity.EpisodeOpen}
	require.NoError(t, ep.AddCharge(dec("100")))
	require.NoError(t, ep.ApplyPayment(dec("80")))

	assert.ErrorIs(t, ep.RemoveCharge(dec("30")), domain.ErrConflict)
	require.NoError(t, ep.RemoveCharge(dec("20")))
	assert.True(t, ep.RemainingBalance.IsZero())
}

// ── UserCenterAssignment ──────────────────────────────────────────────────────

func TestAssignment_EndEsIdempotente(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	a := &entity.UserCenterAssignment{IsActive: true, StartDate: start, Role: entity.RoleMedicalStaff}

	first := start.Add(48 * time.Hour)
	assert.True(t, a.End(1, first))
	require.NotNil(t, a.EndDate)
	assert.Equal(t, first, *a.EndDate)

	assert.False(t, a.End(2, first.Add(24*time.Hour)), "segundo cierre no debe tener efecto")
	assert.Equal(t, first, *a.EndDate, "EndDate no cambia en el segundo cierre")
	assert.Equal(t, int64(1), *a.ModifiedBy)
}

func TestAssignment_IsCurrent(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	end := now.Add(time.Hour)
	a := &entity.UserCenterAssignment{IsActive: true, StartDate: now.Add(-time.Hour), EndDate: &end}
	assert.True(t, a.IsCurrent(now))
	assert.False(t, a.IsCurrent(end))

	a.IsActive = false
	assert.False(t, a.IsCurrent(now))
}

// ── Stock / ventas ────────────────────────────────────────────────────────────

func TestSignedQuantity(t *testing.T) {
	q, err := entity.SignedQuantity(entity.MovementEntry, dec("5"))
	require.NoError(t, err)
	assert.True(t, q.Equal(dec("5")))

	q, err = entity.SignedQuantity(entity.MovementSale, dec("2"))
	require.NoError(t, err)
	assert.True(t, q.Equal(dec("-2")))

	q, err = entity.SignedQuantity(entity.MovementAdjustment, dec("-3"))
	require.NoError(t, err)
	assert.True(t, q.Equal(dec("-3")))

	_, err = entity.SignedQuantity(entity.MovementExit, dec("-1"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = entity.SignedQuantity("Teleport", dec("1"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestStockInventory_ApplySumaMovimientos(t *testing.T) {
	inv := &entity.StockInventory{}
	for _, q := range []string{"10", "-3", "2.5", "-4"} {
		inv.Apply(&entity.StockMovement{Quantity: dec(q), MovementDate: time.Now()})
	}
	assert.True(t, inv.CurrentQuantity.Equal(dec("5.5")))
	assert.True(t, inv.Covers(dec("5.5")))
	assert.False(t, inv.Covers(dec("6")))
}

func TestSale_TotalizeYPagos(t *testing.T) {
	s := &entity.Sale{DiscountAmount: dec("500")}
	items := []*entity.SaleItem{
		{Quantity: dec("2"), UnitPrice: dec("1500")},
		{Quantity: dec("1"), UnitPrice: dec("2000")},
	}
	require.NoError(t, s.Totalize(items))
	assert.True(t, s.TotalAmount.Equal(dec("5000")))
	assert.True(t, s.FinalAmount.Equal(s.TotalAmount.Sub(s.DiscountAmount)))
	assert.Equal(t, entity.PaymentUnpaid, s.PaymentStatus)

	require.NoError(t, s.ApplyPayment(dec("1000")))
	assert.Equal(t, entity.PaymentPartial, s.PaymentStatus)
	assert.ErrorIs(t, s.ApplyPayment(dec("4000")), domain.ErrOverpayment)
	require.NoError(t, s.ApplyPayment(dec("3500")))
	assert.Equal(t, entity.PaymentPaid, s.PaymentStatus)
}

func TestSale_DescuentoMayorQueTotal(t *testing.T) {
	s := &entity.Sale{DiscountAmount: dec("10")}
	err := s.Totalize([]*entity.SaleItem{{Quantity: dec("1"), UnitPrice: dec("5")}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ── Audit / sesión ────────────────────────────────────────────────────────────

func TestAudit_StampYTouch(t *testing.T) {
	var u entity.User
	now := time.Now()
	u.Stamp(0, now)
	assert.Nil(t, u.CreatedBy, "actor 0 = sistema")
	u.Touch(7, now)
	require.NotNil(t, u.ModifiedBy)
	assert.Equal(t, int64(7), *u.ModifiedBy)

	var audited entity.Audited = &u
	assert.Equal(t, now, audited.AuditFields().CreatedAt)
}

func TestUserSession_Valid(t *testing.T) {
	now := time.Now()
	s := &entity.UserSession{IsActive: true, ExpiresAt: now.Add(time.Minute)}
	assert.True(t, s.Valid(now))
	assert.False(t, s.Valid(now.Add(time.Minute)))

	s.Close(now)
	assert.False(t, s.Valid(now))
	require.NotNil(t, s.LogoutTime)
}
