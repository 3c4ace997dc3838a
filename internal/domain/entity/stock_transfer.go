package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de transferencia.
const (
	TransferCompleted = "Completed"
)

// StockTransfer traslado de cantidad entre dos centros.
type StockTransfer struct {
	ID           int64           `db:"id"`
	ProductID    int64           `db:"product_id"`
	FromCenterID int64           `db:"from_center_id"`
	ToCenterID   int64           `db:"to_center_id"`
	Quantity     decimal.Decimal `db:"quantity"`
	Status       string          `db:"status"`
	TransferDate time.Time       `db:"transfer_date"`
	Notes        string          `db:"notes"`
	Audit
}
