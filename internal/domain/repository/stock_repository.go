package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Hospital-api/internal/domain/entity"
)

// StockLine línea de inventario con datos de producto y categoría (pantalla y exportación).
type StockLine struct {
	ProductID       int64
	ProductCode     string
	ProductName     string
	CategoryName    string
	Unit            string
	CurrentQuantity decimal.Decimal
	MinimumStock    decimal.Decimal
	UnitPrice       decimal.Decimal
}

// Low por debajo del stock mínimo.
func (l StockLine) Low() bool {
	return l.CurrentQuantity.LessThan(l.MinimumStock)
}

// StockRepository puerto para StockInventory.
type StockRepository interface {
	Repository[entity.StockInventory]

	// GetForUpdateByProduct bloquea la fila (producto, centro). Si no existe la crea en
	// cero y la bloquea igual; solo tiene sentido dentro de una UnitOfWork.
	GetForUpdateByProduct(ctx context.Context, productID, centerID int64) (*entity.StockInventory, error)
	// Save inserta o actualiza por (producto, centro).
	Save(ctx context.Context, inv *entity.StockInventory) error
	// SumMovements suma con signo de los movimientos de (producto, centro).
	SumMovements(ctx context.Context, productID, centerID int64) (decimal.Decimal, error)
	ListByCenter(ctx context.Context, centerID int64) ([]StockLine, error)
}
