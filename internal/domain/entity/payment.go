package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Destinos polimórficos de un pago.
const (
	ReferenceSale        = "Sale"
	ReferenceCareEpisode = "CareEpisode"
)

// Medios de pago.
const (
	MethodCash        = "Cash"
	MethodCard        = "Card"
	MethodMobileMoney = "MobileMoney"
	MethodInsurance   = "Insurance"
	MethodTransfer    = "BankTransfer"
)

// ValidPaymentMethod informa si m es un medio de pago admitido.
func ValidPaymentMethod(m string) bool {
	switch m {
	case MethodCash, MethodCard, MethodMobileMoney, MethodInsurance, MethodTransfer:
		return true
	}
	return false
}

// Payment pago acumulado contra (ReferenceType, ReferenceID).
type Payment struct {
	ID               int64           `db:"id"`
	HospitalCenterID int64           `db:"hospital_center_id"`
	PatientID        *int64          `db:"patient_id"`
	ReferenceType    string          `db:"reference_type"`
	ReferenceID      int64           `db:"reference_id"`
	Amount           decimal.Decimal `db:"amount"`
	PaymentMethod    string          `db:"payment_method"`
	PaymentDate      time.Time       `db:"payment_date"`
	ReceiptNumber    string          `db:"receipt_number"`
	Notes            string          `db:"notes"`
	Audit
}
