package billing_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Hospital-api/internal/application/apptest"
	"github.com/jhoicas/Hospital-api/internal/application/billing"
	"github.com/jhoicas/Hospital-api/internal/application/dto"
	"github.com/jhoicas/Hospital-api/internal/application/inventory"
	"github.com/jhoicas/Hospital-api/internal/application/session"
	"github.com/jhoicas/Hospital-api/internal/domain"
	"github.com/jhoicas/Hospital-api/internal/domain/entity"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type fixture struct {
	s       *apptest.Store
	center  *entity.HospitalCenter
	cashier *entity.User
	patient *entity.Patient
	product *entity.Product
	id      session.Identity
	stock   *inventory.MovementUseCase
}

func setup(t *testing.T) fixture {
	t.Helper()
	s := apptest.NewStore()
	c := s.SeedCenter("Centre Nord")
	u := s.SeedUser("Koffi", "Mensah", "koffi@hospital.test")
	p := &entity.Patient{HospitalCenterID: c.ID, PatientNumber: "P-20260101-AAAAAA", FirstName: "Awa", LastName: "Traoré", IsActive: true}
	s.Patients.Seed(p)
	prod := &entity.Product{Code: "AMOX", Name: "Amoxicilline", UnitPrice: d("3.20"), MinimumStock: d("5"), IsActive: true}
	s.Products.Seed(prod)

	f := fixture{
		s: s, center: c, cashier: u, patient: p, product: prod,
		id:    session.Identity{UserID: u.ID, CenterID: c.ID, Role: entity.RoleMedicalStaff},
		stock: inventory.NewMovementUseCase(s.Repos(), s.UoW()),
	}
	_, err := f.stock.Register(context.Background(), f.id, dto.MovementRequest{ProductID: prod.ID, MovementType: entity.MovementEntry, Quantity: d("10")})
	require.NoError(t, err)
	return f
}

func (f fixture) sales() *billing.SaleUseCase {
	return billing.NewSaleUseCase(f.s.Repos(), f.s.UoW(), f.stock)
}

func (f fixture) payments() *billing.PaymentUseCase {
	return billing.NewPaymentUseCase(f.s.Repos(), f.s.UoW())
}

func (f fixture) onHand(t *testing.T) decimal.Decimal {
	t.Helper()
	inv, err := f.s.Repos().Stock.GetForUpdateByProduct(context.Background(), f.product.ID, f.center.ID)
	require.NoError(t, err)
	return inv.CurrentQuantity
}

// ── Ventas ───────────────────────────────────────────────────────────────────

func TestSale_CreateTotalizaYDescuentaStock(t *testing.T) {
	f := setup(t)

	res, err := f.sales().Create(context.Background(), f.id, dto.SaleRequest{
		PatientID:      &f.patient.ID,
		DiscountAmount: d("1.60"),
		Items:          []dto.SaleItemRequest{{ProductID: f.product.ID, Quantity: d("3")}},
	})
	require.NoError(t, err)

	assert.True(t, d("9.60").Equal(res.TotalAmount))
	assert.True(t, d("8").Equal(res.FinalAmount), "FinalAmount = TotalAmount - DiscountAmount")
	assert.Equal(t, entity.PaymentUnpaid, res.PaymentStatus)
	assert.Regexp(t, `^V-\d{8}-[0-9A-F]{6}$`, res.SaleNumber)

	assert.True(t, d("7").Equal(f.onHand(t)))
	assert.Equal(t, 1, f.s.SaleItems.Len())
	last := f.s.Movements.All()[f.s.Movements.Len()-1]
	assert.Equal(t, entity.MovementSale, last.MovementType)
	require.NotNil(t, last.ReferenceID)
	assert.Equal(t, res.ID, *last.ReferenceID)
}

func TestSale_StockInsuficienteRevierteLaVenta(t *testing.T) {
	f := setup(t)

	_, err := f.sales().Create(context.Background(), f.id, dto.SaleRequest{
		Items: []dto.SaleItemRequest{{ProductID: f.product.ID, Quantity: d("11")}},
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, 0, f.s.Sales.Len())
	assert.Equal(t, 0, f.s.SaleItems.Len())
	assert.True(t, d("10").Equal(f.onHand(t)))
}

func TestSale_DescuentoMayorQueElTotal(t *testing.T) {
	f := setup(t)

	_, err := f.sales().Create(context.Background(), f.id, dto.SaleRequest{
		DiscountAmount: d("100"),
		Items:          []dto.SaleItemRequest{{ProductID: f.product.ID, Quantity: d("1")}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSale_SinLineas(t *testing.T) {
	f := setup(t)
	_, err := f.sales().Create(context.Background(), f.id, dto.SaleRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ── Pagos ────────────────────────────────────────────────────────────────────

func TestPayment_VentaParcialYTotal(t *testing.T) {
	f := setup(t)
	sale, err := f.sales().Create(context.Background(), f.id, dto.SaleRequest{
		Items: []dto.SaleItemRequest{{ProductID: f.product.ID, Quantity: d("5")}},
	})
	require.NoError(t, err)
	pay := func(amount string) (*dto.PaymentResponse, error) {
		return f.payments().Record(context.Background(), f.id, dto.PaymentRequest{
			ReferenceType: entity.ReferenceSale, ReferenceID: sale.ID, Amount: d(amount), PaymentMethod: entity.MethodCash,
		})
	}

	res, err := pay("10")
	require.NoError(t, err)
	assert.True(t, d("6").Equal(res.Remaining))
	assert.Regexp(t, `^R-\d{8}-[0-9A-F]{6}$`, res.ReceiptNumber)

	_, err = pay("7")
	assert.ErrorIs(t, err, domain.ErrOverpayment)

	res, err = pay("6")
	require.NoError(t, err)
	assert.True(t, res.Remaining.IsZero())

	stored, _ := f.s.Sales.GetByID(context.Background(), sale.ID)
	assert.Equal(t, entity.PaymentPaid, stored.PaymentStatus)
	assert.Equal(t, 2, f.s.Payments.Len(), "el sobrepago no deja fila")
}

func TestPayment_EpisodioMantieneElSaldo(t *testing.T) {
	f := setup(t)
	ep := &entity.CareEpisode{PatientID: f.patient.ID, HospitalCenterID: f.center.ID, Status: entity.EpisodeOpen,
		StartDate: time.Now(), TotalCost: d("50"), AmountPaid: d("0"), RemainingBalance: d("50")}
	f.s.Episodes.Seed(ep)

	for _, amount := range []string{"20", "12.50"} {
		_, err := f.payments().Record(context.Background(), f.id, dto.PaymentRequest{
			ReferenceType: entity.ReferenceCareEpisode, ReferenceID: ep.ID, Amount: d(amount), PaymentMethod: entity.MethodMobileMoney,
		})
		require.NoError(t, err)
	}

	stored, _ := f.s.Episodes.GetByID(context.Background(), ep.ID)
	assert.True(t, d("32.50").Equal(stored.AmountPaid))
	assert.True(t, stored.RemainingBalance.Equal(stored.TotalCost.Sub(stored.AmountPaid)))

	list, err := f.payments().ListFor(context.Background(), f.id, entity.ReferenceCareEpisode, ep.ID)
	require.NoError(t, err)
	assert.Len(t, list, 2)
	require.NotNil(t, f.s.Payments.All()[0].PatientID)
	assert.Equal(t, f.patient.ID, *f.s.Payments.All()[0].PatientID)
}

func TestPayment_Rechazos(t *testing.T) {
	f := setup(t)
	other := f.s.SeedCenter("Centre Sud")
	ep := &entity.CareEpisode{PatientID: f.patient.ID, HospitalCenterID: other.ID, Status: entity.EpisodeOpen,
		TotalCost: d("10"), RemainingBalance: d("10")}
	f.s.Episodes.Seed(ep)

	cases := []struct {
		name string
		in   dto.PaymentRequest
		want error
	}{
		{"medio desconocido", dto.PaymentRequest{ReferenceType: entity.ReferenceCareEpisode, ReferenceID: ep.ID, Amount: d("1"), PaymentMethod: "Bitcoin"}, domain.ErrInvalidInput},
		{"importe cero", dto.PaymentRequest{ReferenceType: entity.ReferenceCareEpisode, ReferenceID: ep.ID, Amount: d("0"), PaymentMethod: entity.MethodCash}, domain.ErrInvalidInput},
		{"destino desconocido", dto.PaymentRequest{ReferenceType: "Invoice", ReferenceID: 1, Amount: d("1"), PaymentMethod: entity.MethodCash}, domain.ErrInvalidInput},
		{"episodio inexistente", dto.PaymentRequest{ReferenceType: entity.ReferenceCareEpisode, ReferenceID: 999, Amount: d("1"), PaymentMethod: entity.MethodCash}, domain.ErrNotFound},
		{"otro centro", dto.PaymentRequest{ReferenceType: entity.ReferenceCareEpisode, ReferenceID: ep.ID, Amount: d("1"), PaymentMethod: entity.MethodCash}, domain.ErrForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.payments().Record(context.Background(), f.id, tc.in)
			assert.ErrorIs(t, err, tc.want)
		})
	}
	assert.Equal(t, 0, f.s.Payments.Len())
}

func TestPayment_ListForCompruebaElDestinoAntesDeListar(t *testing.T) {
	f := setup(t)
	other := f.s.SeedCenter("Centre Sud")
	ep := &entity.CareEpisode{PatientID: f.patient.ID, HospitalCenterID: other.ID, Status: entity.EpisodeOpen,
		TotalCost: d("10"), RemainingBalance: d("10")}
	f.s.Episodes.Seed(ep)
	sale := &entity.Sale{HospitalCenterID: other.ID, SaleNumber: "V-20260101-BBBBBB", SaleDate: time.Now(),
		TotalAmount: d("5"), FinalAmount: d("5"), PaymentStatus: entity.PaymentUnpaid}
	f.s.Sales.Seed(sale)

	cases := []struct {
		name    string
		refType string
		refID   int64
		want    error
	}{
		{"episodio de otro centro sin pagos", entity.ReferenceCareEpisode, ep.ID, domain.ErrForbidden},
		{"venta de otro centro sin pagos", entity.ReferenceSale, sale.ID, domain.ErrForbidden},
		{"episodio inexistente", entity.ReferenceCareEpisode, 999, domain.ErrNotFound},
		{"venta inexistente", entity.ReferenceSale, 999, domain.ErrNotFound},
		{"destino desconocido", "Invoice", 1, domain.ErrInvalidInput},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			list, err := f.payments().ListFor(context.Background(), f.id, tc.refType, tc.refID)
			assert.ErrorIs(t, err, tc.want)
			assert.Nil(t, list)
		})
	}
}

// ── Documentos ───────────────────────────────────────────────────────────────

type fakeGenerator struct {
	receipt      dto.ReceiptView
	prescription dto.PrescriptionView
	exam         dto.ExamResultView
}

func (g *fakeGenerator) Receipt(_ context.Context, v dto.ReceiptView) ([]byte, error) {
	g.receipt = v
	return []byte("%PDF-receipt"), nil
}

func (g *fakeGenerator) Prescription(_ context.Context, v dto.PrescriptionView) ([]byte, error) {
	g.prescription = v
	return []byte("%PDF-rx"), nil
}

func (g *fakeGenerator) ExamResult(_ context.Context, v dto.ExamResultView) ([]byte, error) {
	g.exam = v
	return []byte("%PDF-exam"), nil
}

func TestDocument_Receipt(t *testing.T) {
	f := setup(t)
	sale, err := f.sales().Create(context.Background(), f.id, dto.SaleRequest{
		PatientID: &f.patient.ID,
		Items:     []dto.SaleItemRequest{{ProductID: f.product.ID, Quantity: d("1")}},
	})
	require.NoError(t, err)
	paid, err := f.payments().Record(context.Background(), f.id, dto.PaymentRequest{
		ReferenceType: entity.ReferenceSale, ReferenceID: sale.ID, Amount: d("2"), PaymentMethod: entity.MethodCard,
	})
	require.NoError(t, err)
	gen := &fakeGenerator{}

	doc, err := billing.NewDocumentUseCase(f.s.Repos(), gen).Receipt(context.Background(), f.id, paid.ID)
	require.NoError(t, err)

	assert.Equal(t, "application/pdf", doc.ContentType)
	assert.Equal(t, "recu_"+paid.ReceiptNumber+".pdf", doc.Filename)
	assert.Equal(t, "Centre Nord", gen.receipt.Header.CenterName)
	assert.Equal(t, "Awa Traoré", gen.receipt.PatientName)
	assert.Equal(t, "Koffi Mensah", gen.receipt.CashierName)
	assert.Equal(t, "Vente "+sale.SaleNumber, gen.receipt.Reference)
	assert.True(t, d("1.20").Equal(gen.receipt.Remaining))
}

func TestDocument_PrescriptionYExamen(t *testing.T) {
	f := setup(t)
	now := time.Now()
	rx := &entity.Prescription{CareEpisodeID: 1, PatientID: f.patient.ID, HospitalCenterID: f.center.ID,
		PrescribedBy: f.cashier.ID, PrescribedAt: now, Instructions: "Après les repas"}
	f.s.Prescriptions.Seed(rx)
	f.s.PrescriptionItems.Seed(&entity.PrescriptionItem{PrescriptionID: rx.ID, MedicationName: "Amoxicilline", Dosage: "500mg", Quantity: 2})
	pending := &entity.Examination{CareEpisodeID: 1, PatientID: f.patient.ID, HospitalCenterID: f.center.ID,
		ExamName: "NFS", Status: entity.ExamRequested, RequestedAt: now}
	f.s.Exams.Seed(pending)
	gen := &fakeGenerator{}
	uc := billing.NewDocumentUseCase(f.s.Repos(), gen)

	doc, err := uc.Prescription(context.Background(), f.id, rx.ID)
	require.NoError(t, err)
	assert.Contains(t, doc.Filename, "ordonnance_")
	assert.Equal(t, "Koffi Mensah", gen.prescription.DoctorName)
	require.Len(t, gen.prescription.Lines, 1)
	assert.Equal(t, "500mg", gen.prescription.Lines[0].Dosage)

	_, err = uc.ExamResult(context.Background(), f.id, pending.ID)
	assert.ErrorIs(t, err, domain.ErrConflict, "sin resultado no hay documento")

	require.NoError(t, pending.Complete("Normal", "", f.cashier.ID, now))
	require.NoError(t, f.s.Exams.Update(context.Background(), pending))
	_, err = uc.ExamResult(context.Background(), f.id, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, "Normal", gen.exam.Result)
	assert.Equal(t, "Koffi Mensah", gen.exam.PerformedBy)
}

func TestDocument_OtroCentroProhibido(t *testing.T) {
	f := setup(t)
	other := f.s.SeedCenter("Centre Sud")
	rx := &entity.Prescription{PatientID: f.patient.ID, HospitalCenterID: other.ID, PrescribedBy: f.cashier.ID}
	f.s.Prescriptions.Seed(rx)

	_, err := billing.NewDocumentUseCase(f.s.Repos(), &fakeGenerator{}).Prescription(context.Background(), f.id, rx.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}
