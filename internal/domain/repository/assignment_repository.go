package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Hospital-api/internal/domain/entity"
)

// AssignmentView asignación con nombres de usuario y centro.
type AssignmentView struct {
	entity.UserCenterAssignment
	UserName   string
	CenterName string
}

// AssignmentRepository puerto de persistencia para UserCenterAssignment.
type AssignmentRepository interface {
	Repository[entity.UserCenterAssignment]

	// FindActive devuelve la asignación activa del par (usuario, centro) o nil.
	FindActive(ctx context.Context, userID, centerID int64) (*entity.UserCenterAssignment, error)
	ListActiveByUser(ctx context.Context, userID int64, at time.Time) ([]AssignmentView, error)
	ListByUser(ctx context.Context, userID int64) ([]AssignmentView, error)
	// EndAll cierra las asignaciones activas del usuario (centerID nil = en todos los centros).
	// Las ya cerradas no se tocan. Devuelve cuántas se cerraron.
	EndAll(ctx context.Context, userID int64, centerID *int64, actor int64, at time.Time) (int64, error)
	EndAllForCenter(ctx context.Context, centerID int64, actor int64, at time.Time) (int64, error)
}
