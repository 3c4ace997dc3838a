package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier es la parte común de *pgxpool.Pool y pgx.Tx que usan los adaptadores.
// Los repositorios se construyen con el pool (lecturas sueltas) o con la tx (TxRunner).
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// Project ejecuta una consulta de lectura y mapea cada fila a P por nombre de columna (tags `db`).
// Sirve para proyecciones que no son una tabla: agregados, vistas de informe.
func Project[P any](ctx context.Context, q Querier, sql string, args ...any) ([]P, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[P])
}
