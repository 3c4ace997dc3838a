package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Hospital-api/internal/application/apptest"
	"github.com/jhoicas/Hospital-api/internal/application/session"
	"github.com/jhoicas/Hospital-api/internal/domain/entity"
)

var ctx = context.Background()

// plainHasher hash reversible para no pagar bcrypt en cada test.
type plainHasher struct{}

func (plainHasher) HashPassword(p string) (string, error) { return "hash:" + p, nil }

func superAdmin(userID int64) session.Identity {
	return session.Identity{UserID: userID, Role: entity.RoleSuperAdmin}
}

func staffAt(userID, centerID int64) session.Identity {
	return session.Identity{UserID: userID, CenterID: centerID, Role: entity.RoleMedicalStaff}
}

// openSession sesión activa de userID con centerID como centro actual.
func openSession(t *testing.T, s *apptest.Store, userID, centerID int64) string {
	t.Helper()
	now := time.Now()
	c := centerID
	sess := &entity.UserSession{
		SessionKey:      uuid.NewString(),
		UserID:          userID,
		CurrentCenterID: &c,
		Role:            entity.RoleMedicalStaff,
		LoginTime:       now,
		ExpiresAt:       now.Add(time.Hour),
		IsActive:        true,
	}
	require.NoError(t, s.Sessions.Create(ctx, sess))
	return sess.SessionKey
}
