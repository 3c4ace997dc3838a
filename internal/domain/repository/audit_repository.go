package repository

import (
	"context"

	"github.com/jhoicas/Hospital-api/internal/domain/entity"
)

// AuditRepository traza de auditoría (solo inserción y lectura).
type AuditRepository interface {
	Record(ctx context.Context, entry *entity.AuditLog) error
	ListForEntity(ctx context.Context, entityType string, entityID int64, limit int) ([]*entity.AuditLog, error)
}
