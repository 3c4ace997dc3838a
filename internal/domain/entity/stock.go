package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockInventory stock actual de un producto en un centro.
// Invariante: CurrentQuantity = suma con signo de los StockMovement de (producto, centro).
type StockInventory struct {
	ID               int64           `db:"id"`
	ProductID        int64           `db:"product_id"`
	HospitalCenterID int64           `db:"hospital_center_id"`
	CurrentQuantity  decimal.Decimal `db:"current_quantity"`
	LastMovementAt   *time.Time      `db:"last_movement_at"`
	Audit
}

// Apply aplica un movimiento ya firmado.
func (s *StockInventory) Apply(m *StockMovement) {
	s.CurrentQuantity = s.CurrentQuantity.Add(m.Quantity)
	at := m.MovementDate
	s.LastMovementAt = &at
}

// Covers informa si hay al menos qty disponible.
func (s *StockInventory) Covers(qty decimal.Decimal) bool {
	return s.CurrentQuantity.GreaterThanOrEqual(qty)
}
