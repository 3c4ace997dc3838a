package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Hospital-api/internal/domain"
)

// Tipos de movimiento de stock.
const (
	MovementEntry       = "Entry"
	MovementExit        = "Exit"
	MovementAdjustment  = "Adjustment"
	MovementTransferIn  = "TransferIn"
	MovementTransferOut = "TransferOut"
	MovementSale        = "Sale"
)

// StockMovement movimiento de stock. Quantity lleva signo: positivo entra, negativo sale.
type StockMovement struct {
	ID               int64           `db:"id"`
	ProductID        int64           `db:"product_id"`
	HospitalCenterID int64           `db:"hospital_center_id"`
	MovementType     string          `db:"movement_type"`
	Quantity         decimal.Decimal `db:"quantity"`
	ReferenceType    string          `db:"reference_type"`
	ReferenceID      *int64          `db:"reference_id"`
	Notes            string          `db:"notes"`
	MovementDate     time.Time       `db:"movement_date"`
	Audit
}

// SignedQuantity aplica el signo del tipo de movimiento a una cantidad expresada en positivo.
// Los ajustes conservan el signo recibido.
func SignedQuantity(movementType string, qty decimal.Decimal) (decimal.Decimal, error) {
	switch movementType {
	case MovementEntry, MovementTransferIn:
		if !qty.IsPositive() {
			return decimal.Zero, domain.ErrInvalidInput
		}
		return qty, nil
	case MovementExit, MovementTransferOut, MovementSale:
		if !qty.IsPositive() {
			return decimal.Zero, domain.ErrInvalidInput
		}
		return qty.Neg(), nil
	case MovementAdjustment:
		if qty.IsZero() {
			return decimal.Zero, domain.ErrInvalidInput
		}
		return qty, nil
	default:
		return decimal.Zero, domain.ErrInvalidInput
	}
}
