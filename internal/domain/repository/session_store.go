package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Hospital-api/internal/domain/entity"
)

// PurgeResult resultado de una pasada de limpieza de sesiones.
type PurgeResult struct {
	Expired int64 // activas vencidas marcadas inactivas
	Deleted int64 // cerradas más antiguas que la retención
}

// SessionStore almacén de sesiones de servidor (PostgreSQL o Redis).
type SessionStore interface {
	Create(ctx context.Context, s *entity.UserSession) error
	// Resolve devuelve la sesión con UserName/CenterName, activa o no; nil si la clave no existe.
	Resolve(ctx context.Context, key string) (*entity.UserSession, error)
	// Expire marca la sesión inactiva con hora de cierre at. Sin efecto si no existe.
	Expire(ctx context.Context, key string, at time.Time) error
	SwitchCenter(ctx context.Context, key string, centerID int64, centerName, role string) error
	ExpireForUser(ctx context.Context, userID int64, at time.Time) (int64, error)
	ExpireForCenter(ctx context.Context, centerID int64, at time.Time) (int64, error)
	CountActiveForCenter(ctx context.Context, centerID int64, now time.Time) (int64, error)
	PurgeExpired(ctx context.Context, now time.Time, retention time.Duration) (PurgeResult, error)
}
