package entity

import "github.com/shopspring/decimal"

// Product producto o medicamento gestionado en stock y vendible.
type Product struct {
	ID           int64           `db:"id"`
	CategoryID   int64           `db:"category_id"`
	Code         string          `db:"code"` // único
	Name         string          `db:"name"`
	Description  string          `db:"description"`
	Unit         string          `db:"unit"`
	UnitPrice    decimal.Decimal `db:"unit_price"`
	MinimumStock decimal.Decimal `db:"minimum_stock"`
	IsActive     bool            `db:"is_active"`
	Audit
}
