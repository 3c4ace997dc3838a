package postgres

import (
	"context"

	"github.com/jhoicas/Hospital-api/internal/domain/repository"
)

var _ repository.Locker = (*AdvisoryLocker)(nil)

// AdvisoryLocker lock consultivo de PostgreSQL liberado al terminar la transacción.
// Solo tiene efecto si q es una pgx.Tx.
type AdvisoryLocker struct {
	q Querier
}

// NewAdvisoryLocker construye el locker sobre la transacción en curso.
func NewAdvisoryLocker(q Querier) *AdvisoryLocker {
	return &AdvisoryLocker{q: q}
}

func (l *AdvisoryLocker) Lock(ctx context.Context, key string) error {
	_, err := l.q.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, key)
	return wrap("advisory lock "+key, err)
}
