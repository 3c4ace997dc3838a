package postgres

import (
	"context"
	"time"

	"github.com/jhoicas/Hospital-api/internal/domain/entity"
	"github.com/jhoicas/Hospital-api/internal/domain/query"
	"github.com/jhoicas/Hospital-api/internal/domain/repository"
)

var _ repository.AuditRepository = (*AuditRepo)(nil)

// AuditRepo traza de auditoría en audit_logs.
type AuditRepo struct {
	t *Table[entity.AuditLog]
}

// NewAuditRepository construye el adaptador. Pasar la tx para que la entrada se confirme junto a la mutación.
func NewAuditRepository(q Querier) *AuditRepo {
	return &AuditRepo{t: NewTable[entity.AuditLog](q, "audit_logs")}
}

func (r *AuditRepo) Record(ctx context.Context, entry *entity.AuditLog) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	return r.t.Add(ctx, entry)
}

func (r *AuditRepo) ListForEntity(ctx context.Context, entityType string, entityID int64, limit int) ([]*entity.AuditLog, error) {
	return r.t.List(ctx,
		query.Eq("entity_type", entityType),
		query.Eq("entity_id", entityID),
		query.OrderBy("created_at", query.Desc),
		query.When(limit > 0, query.Limit(limit)),
	)
}
