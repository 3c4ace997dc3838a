package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingQuerier guarda el SQL en orden; QueryRow no devuelve filas.
type recordingQuerier struct {
	calls []string
}

func (q *recordingQuerier) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	q.calls = append(q.calls, sql)
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (q *recordingQuerier) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("no usado")
}

func (q *recordingQuerier) QueryRow(_ context.Context, sql string, _ ...any) pgx.Row {
	q.calls = append(q.calls, sql)
	return errRow{err: pgx.ErrNoRows}
}

func (q *recordingQuerier) SendBatch(context.Context, *pgx.Batch) pgx.BatchResults { return nil }

type errRow struct{ err error }

func (r errRow) Scan(...any) error { return r.err }

func TestStockRepo_CreaLaFilaAntesDeBloquear(t *testing.T) {
	q := &recordingQuerier{}
	_, err := NewStockRepository(q).GetForUpdateByProduct(context.Background(), 4, 2)
	require.Error(t, err, "sin fila tras el INSERT algo está mal: no se inventa un cero")

	require.Len(t, q.calls, 2)
	assert.Contains(t, q.calls[0], "INSERT INTO stock_inventory")
	assert.Contains(t, q.calls[0], "ON CONFLICT (product_id, hospital_center_id) DO NOTHING")
	assert.Contains(t, q.calls[1], "FOR UPDATE")
}
