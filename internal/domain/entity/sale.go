package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Hospital-api/internal/domain"
)

// Estados de pago de una venta.
const (
	PaymentUnpaid  = "Unpaid"
	PaymentPartial = "Partial"
	PaymentPaid    = "Paid"
)

// Sale venta de productos en un centro. Invariante: FinalAmount = TotalAmount - DiscountAmount.
type Sale struct {
	ID               int64           `db:"id"`
	HospitalCenterID int64           `db:"hospital_center_id"`
	PatientID        *int64          `db:"patient_id"`
	SaleNumber       string          `db:"sale_number"`
	SaleDate         time.Time       `db:"sale_date"`
	TotalAmount      decimal.Decimal `db:"total_amount"`
	DiscountAmount   decimal.Decimal `db:"discount_amount"`
	FinalAmount      decimal.Decimal `db:"final_amount"`
	AmountPaid       decimal.Decimal `db:"amount_paid"`
	PaymentStatus    string          `db:"payment_status"`
	Notes            string          `db:"notes"`
	Audit
}

// SaleItem línea de venta.
type SaleItem struct {
	ID         int64           `db:"id"`
	SaleID     int64           `db:"sale_id"`
	ProductID  int64           `db:"product_id"`
	Quantity   decimal.Decimal `db:"quantity"`
	UnitPrice  decimal.Decimal `db:"unit_price"`
	TotalPrice decimal.Decimal `db:"total_price"`
}

// Price calcula TotalPrice = Quantity × UnitPrice.
func (i *SaleItem) Price() decimal.Decimal {
	i.TotalPrice = i.Quantity.Mul(i.UnitPrice)
	return i.TotalPrice
}

// Totalize recalcula los importes a partir de las líneas y el descuento.
func (s *Sale) Totalize(items []*SaleItem) error {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Price())
	}
	if s.DiscountAmount.IsNegative() || s.DiscountAmount.GreaterThan(total) {
		return domain.ErrInvalidInput
	}
	s.TotalAmount = total
	s.FinalAmount = total.Sub(s.DiscountAmount)
	s.refreshStatus()
	return nil
}

// Outstanding importe aún no cobrado.
func (s *Sale) Outstanding() decimal.Decimal {
	return s.FinalAmount.Sub(s.AmountPaid)
}

// ApplyPayment acumula un pago sobre la venta.
func (s *Sale) ApplyPayment(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return domain.ErrInvalidInput
	}
	if amount.GreaterThan(s.Outstanding()) {
		return domain.ErrOverpayment
	}
	s.AmountPaid = s.AmountPaid.Add(amount)
	s.refreshStatus()
	return nil
}

func (s *Sale) refreshStatus() {
	switch {
	case s.AmountPaid.IsZero() && s.FinalAmount.IsPositive():
		s.PaymentStatus = PaymentUnpaid
	case s.AmountPaid.LessThan(s.FinalAmount):
		s.PaymentStatus = PaymentPartial
	default:
		s.PaymentStatus = PaymentPaid
	}
}
