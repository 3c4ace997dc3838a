package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Hospital-api/internal/domain/entity"
	"github.com/jhoicas/Hospital-api/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con pool o tx).
type StockRepo struct {
	*Table[entity.StockInventory]
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{Table: NewTable[entity.StockInventory](q, "stock_inventory")}
}

// GetForUpdateByProduct obtiene el stock y bloquea la fila para update (SELECT FOR UPDATE).
// La fila se crea en cero antes del bloqueo: sin fila el FOR UPDATE no bloquea nada y dos
// primeras entradas concurrentes leerían ambas cero.
func (r *StockRepo) GetForUpdateByProduct(ctx context.Context, productID, centerID int64) (*entity.StockInventory, error) {
	_, err := r.q.Exec(ctx, `
		INSERT INTO stock_inventory (product_id, hospital_center_id, current_quantity, created_at)
		VALUES ($1, $2, 0, $3)
		ON CONFLICT (product_id, hospital_center_id) DO NOTHING`,
		productID, centerID, r.now())
	if err != nil {
		return nil, wrap("ensure stock row", err)
	}
	sql := "SELECT " + r.selectList() + " FROM stock_inventory WHERE product_id = $1 AND hospital_center_id = $2 FOR UPDATE"
	inv, err := r.scanOne(r.q.QueryRow(ctx, sql, productID, centerID))
	if err != nil {
		return nil, wrap("get stock for update", err)
	}
	return inv, nil
}

// Save inserta o actualiza la cantidad en stock (por producto y centro).
func (r *StockRepo) Save(ctx context.Context, inv *entity.StockInventory) error {
	r.stampCreate(inv)
	err := r.q.QueryRow(ctx, `
		INSERT INTO stock_inventory (product_id, hospital_center_id, current_quantity, last_movement_at,
		                             created_by, created_at, modified_by, modified_at)
		VALUES ($1, $2, $3, $4, $5, $6, $5, $4)
		ON CONFLICT (product_id, hospital_center_id)
		DO UPDATE SET current_quantity = EXCLUDED.current_quantity,
		              last_movement_at = EXCLUDED.last_movement_at,
		              modified_by = EXCLUDED.modified_by,
		              modified_at = EXCLUDED.modified_at
		RETURNING id`,
		inv.ProductID, inv.HospitalCenterID, inv.CurrentQuantity, inv.LastMovementAt,
		inv.ModifiedBy, inv.CreatedAt).Scan(&inv.ID)
	return wrap("upsert stock", err)
}

func (r *StockRepo) SumMovements(ctx context.Context, productID, centerID int64) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.q.QueryRow(ctx, `
		SELECT COALESCE(SUM(quantity), 0) FROM stock_movements
		WHERE product_id = $1 AND hospital_center_id = $2`, productID, centerID).Scan(&total)
	if err != nil {
		return decimal.Zero, wrap("sum movements", err)
	}
	return total, nil
}

// ListByCenter todos los productos activos con su stock en el centro (cero si nunca hubo movimientos).
func (r *StockRepo) ListByCenter(ctx context.Context, centerID int64) ([]repository.StockLine, error) {
	rows, err := r.q.Query(ctx, `
		SELECT p.id, p.code, p.name, COALESCE(c.name, ''), p.unit,
		       COALESCE(s.current_quantity, 0), p.minimum_stock, p.unit_price
		FROM products p
		LEFT JOIN product_categories c ON c.id = p.category_id
		LEFT JOIN stock_inventory s ON s.product_id = p.id AND s.hospital_center_id = $1
		WHERE p.is_active
		ORDER BY p.name`, centerID)
	if err != nil {
		return nil, wrap("list stock", err)
	}
	lines, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (repository.StockLine, error) {
		var l repository.StockLine
		err := row.Scan(&l.ProductID, &l.ProductCode, &l.ProductName, &l.CategoryName, &l.Unit,
			&l.CurrentQuantity, &l.MinimumStock, &l.UnitPrice)
		return l, err
	})
	if err != nil {
		return nil, wrap("scan stock", err)
	}
	return lines, nil
}
