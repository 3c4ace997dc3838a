package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/Hospital-api/internal/application/apptest"
	"github.com/jhoicas/Hospital-api/internal/application/auth"
	"github.com/jhoicas/Hospital-api/internal/application/dto"
	"github.com/jhoicas/Hospital-api/internal/application/session"
	"github.com/jhoicas/Hospital-api/internal/domain"
	"github.com/jhoicas/Hospital-api/internal/domain/entity"
	pkgjwt "github.com/jhoicas/Hospital-api/pkg/jwt"
)

const secret = "test-secret-key-for-unit-tests"

func newUseCase(s *apptest.Store) *auth.AuthUseCase {
	return auth.NewAuthUseCase(s.Repos(), s.UoW(), s.Sessions, auth.Config{
		Secret:     secret,
		Issuer:     "test",
		TTL:        time.Hour,
		BcryptCost: bcrypt.MinCost,
	})
}

var client = auth.Client{IP: "10.0.0.1", UserAgent: "test"}

func login(email, password string, center int64) dto.LoginRequest {
	return dto.LoginRequest{Email: email, Password: password, CenterID: center}
}

// ── Login ────────────────────────────────────────────────────────────────────

func TestLogin_UnaAsignacionSeleccionaElCentro(t *testing.T) {
	s := apptest.NewStore()
	u := s.SeedUser("Amina", "Diallo", "amina@hospital.test")
	c := s.SeedCenter("Centre Nord")
	s.Assign(u.ID, c.ID, entity.RoleMedicalStaff)
	uc := newUseCase(s)

	res, err := uc.Login(context.Background(), login(" AMINA@hospital.test ", apptest.Password, 0), client)
	require.NoError(t, err)

	assert.False(t, res.NeedsCenter)
	require.NotNil(t, res.CenterID)
	assert.Equal(t, c.ID, *res.CenterID)
	assert.Equal(t, entity.RoleMedicalStaff, res.Role)

	key, err := pkgjwt.Parse(secret, res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.SessionKey, key, "la cookie transporta la clave de la sesión creada")

	sess := s.Sessions.Get(res.SessionKey)
	require.NotNil(t, sess)
	assert.True(t, sess.IsActive)
	assert.Equal(t, "10.0.0.1", sess.IPAddress)
	assert.Equal(t, "Amina Diallo", sess.UserName, "el almacén guarda el nombre aunque no lo resuelva por join")

	stored, _ := s.Users.GetByID(context.Background(), u.ID)
	assert.NotNil(t, stored.LastLoginAt)
}

func TestLogin_VariasAsignacionesSinCentroPideSeleccion(t *testing.T) {
	s := apptest.NewStore()
	u := s.SeedUser("Amina", "Diallo", "amina@hospital.test")
	a := s.SeedCenter("Centre A")
	b := s.SeedCenter("Centre B")
	s.Assign(u.ID, a.ID, entity.RoleMedicalStaff)
	s.Assign(u.ID, b.ID, entity.RoleSuperAdmin)

	res, err := newUseCase(s).Login(context.Background(), login("amina@hospital.test", apptest.Password, 0), client)
	require.NoError(t, err)

	assert.True(t, res.NeedsCenter)
	assert.Nil(t, res.CenterID)
	assert.Empty(t, res.Role, "sin centro no hay rol: SuperAdmin en B no vale fuera de B")
	assert.Len(t, res.Centers, 2)

	sess := s.Sessions.Get(res.SessionKey)
	assert.Empty(t, sess.Role)
	assert.Nil(t, sess.CurrentCenterID)
}

func TestLogin_CentroPedidoResuelveSuRol(t *testing.T) {
	s := apptest.NewStore()
	u := s.SeedUser("Amina", "Diallo", "amina@hospital.test")
	a := s.SeedCenter("Centre A")
	b := s.SeedCenter("Centre B")
	s.Assign(u.ID, a.ID, entity.RoleMedicalStaff)
	s.Assign(u.ID, b.ID, entity.RoleSuperAdmin)

	res, err := newUseCase(s).Login(context.Background(), login("amina@hospital.test", apptest.Password, a.ID), client)
	require.NoError(t, err)
	assert.Equal(t, entity.RoleMedicalStaff, res.Role)
	assert.Equal(t, "Centre A", res.CenterName)
}

func TestLogin_Rechazos(t *testing.T) {
	s := apptest.NewStore()
	u := s.SeedUser("Amina", "Diallo", "amina@hospital.test")
	c := s.SeedCenter("Centre Nord")
	other := s.SeedCenter("Centre Sud")
	s.Assign(u.ID, c.ID, entity.RoleMedicalStaff)
	s.SeedUser("Sans", "Centre", "sans@hospital.test")
	inactive := s.SeedUser("In", "Actif", "inactif@hospital.test")
	inactive.IsActive = false
	require.NoError(t, s.Users.Update(context.Background(), inactive))
	uc := newUseCase(s)
	ctx := context.Background()

	_, err := uc.Login(ctx, login("amina@hospital.test", "mauvais", 0), client)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = uc.Login(ctx, login("inconnu@hospital.test", apptest.Password, 0), client)
	assert.ErrorIs(t, err, domain.ErrUnauthorized, "un email desconocido no se distingue de una contraseña errónea")

	_, err = uc.Login(ctx, login("inactif@hospital.test", apptest.Password, 0), client)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = uc.Login(ctx, login("sans@hospital.test", apptest.Password, 0), client)
	assert.ErrorIs(t, err, domain.ErrNoActiveCenter)

	_, err = uc.Login(ctx, login("amina@hospital.test", apptest.Password, other.ID), client)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	assert.Empty(t, s.Sessions.All(), "ningún rechazo abre sesión")
}

// ── Logout / SwitchCenter ────────────────────────────────────────────────────

func TestLogout_CierraLaSesion(t *testing.T) {
	s := apptest.NewStore()
	u := s.SeedUser("Amina", "Diallo", "amina@hospital.test")
	c := s.SeedCenter("Centre Nord")
	s.Assign(u.ID, c.ID, entity.RoleMedicalStaff)
	uc := newUseCase(s)

	res, err := uc.Login(context.Background(), login("amina@hospital.test", apptest.Password, 0), client)
	require.NoError(t, err)
	require.NoError(t, uc.Logout(context.Background(), res.SessionKey))

	sess := s.Sessions.Get(res.SessionKey)
	assert.False(t, sess.IsActive)
	assert.NotNil(t, sess.LogoutTime)
	assert.NoError(t, uc.Logout(context.Background(), "desconocida"))
}

func TestSwitchCenter(t *testing.T) {
	s := apptest.NewStore()
	u := s.SeedUser("Amina", "Diallo", "amina@hospital.test")
	a := s.SeedCenter("Centre A")
	b := s.SeedCenter("Centre B")
	c := s.SeedCenter("Centre C")
	s.Assign(u.ID, a.ID, entity.RoleMedicalStaff)
	s.Assign(u.ID, b.ID, entity.RoleSuperAdmin)
	uc := newUseCase(s)
	ctx := context.Background()

	res, err := uc.Login(ctx, login("amina@hospital.test", apptest.Password, a.ID), client)
	require.NoError(t, err)
	id := session.Identity{SessionKey: res.SessionKey, UserID: u.ID, CenterID: a.ID, Role: res.Role}

	out, err := uc.SwitchCenter(ctx, id, b.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.RoleSuperAdmin, out.Role)

	sess := s.Sessions.Get(res.SessionKey)
	assert.Equal(t, b.ID, *sess.CurrentCenterID)
	assert.Equal(t, entity.RoleSuperAdmin, sess.Role)

	_, err = uc.SwitchCenter(ctx, id, c.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden, "sin asignación activa en el centro destino")
}

// ── Contraseñas ──────────────────────────────────────────────────────────────

func TestChangePassword_RegistraAuditoria(t *testing.T) {
	s := apptest.NewStore()
	u := s.SeedUser("Amina", "Diallo", "amina@hospital.test")
	u.MustChangePassword = true
	require.NoError(t, s.Users.Update(context.Background(), u))
	uc := newUseCase(s)

	err := uc.ChangePassword(context.Background(), dto.ChangePasswordRequest{
		Email: "amina@hospital.test", CurrentPassword: apptest.Password, NewPassword: "Nouvelle-456",
	}, client)
	require.NoError(t, err)

	stored, _ := s.Users.GetByID(context.Background(), u.ID)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("Nouvelle-456")))
	assert.False(t, stored.MustChangePassword)
	assert.Equal(t, []string{entity.AuditPasswordChanged}, s.Audit.Actions())
}

func TestChangePassword_Validaciones(t *testing.T) {
	s := apptest.NewStore()
	s.SeedUser("Amina", "Diallo", "amina@hospital.test")
	uc := newUseCase(s)
	ctx := context.Background()

	err := uc.ChangePassword(ctx, dto.ChangePasswordRequest{Email: "amina@hospital.test", CurrentPassword: apptest.Password, NewPassword: "court"}, client)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	err = uc.ChangePassword(ctx, dto.ChangePasswordRequest{Email: "amina@hospital.test", CurrentPassword: apptest.Password, NewPassword: apptest.Password}, client)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	err = uc.ChangePassword(ctx, dto.ChangePasswordRequest{Email: "amina@hospital.test", CurrentPassword: "faux-mot-de-passe", NewPassword: "Nouvelle-456"}, client)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.Empty(t, s.Audit.Actions())
}

func TestResetPassword_AtomicoConLaAuditoria(t *testing.T) {
	s := apptest.NewStore()
	u := s.SeedUser("Amina", "Diallo", "amina@hospital.test")
	uc := newUseCase(s)
	admin := session.Identity{UserID: 99, Role: entity.RoleSuperAdmin}
	original := u.PasswordHash

	s.Audit.Err = errors.New("audit table locked")
	err := uc.ResetPassword(context.Background(), admin, u.ID, dto.ResetPasswordRequest{NewPassword: "Nouvelle-456"}, client)
	require.Error(t, err)

	stored, _ := s.Users.GetByID(context.Background(), u.ID)
	assert.Equal(t, original, stored.PasswordHash, "sin traza de auditoría no hay cambio de contraseña")
	assert.False(t, stored.MustChangePassword)
}

func TestResetPassword_ForzaCambioYCierraSesiones(t *testing.T) {
	s := apptest.NewStore()
	u := s.SeedUser("Amina", "Diallo", "amina@hospital.test")
	c := s.SeedCenter("Centre Nord")
	s.Assign(u.ID, c.ID, entity.RoleMedicalStaff)
	uc := newUseCase(s)
	ctx := context.Background()

	res, err := uc.Login(ctx, login("amina@hospital.test", apptest.Password, 0), client)
	require.NoError(t, err)

	admin := session.Identity{UserID: 99, Role: entity.RoleSuperAdmin}
	require.NoError(t, uc.ResetPassword(ctx, admin, u.ID, dto.ResetPasswordRequest{NewPassword: "Nouvelle-456"}, client))

	stored, _ := s.Users.GetByID(ctx, u.ID)
	assert.True(t, stored.MustChangePassword)
	require.NotNil(t, stored.ModifiedBy)
	assert.Equal(t, int64(99), *stored.ModifiedBy)
	assert.False(t, s.Sessions.Get(res.SessionKey).IsActive)

	entries, _ := s.Audit.ListForEntity(ctx, entity.AuditEntityUser, u.ID, 10)
	require.Len(t, entries, 1)
	assert.Equal(t, entity.AuditPasswordReset, entries[0].Action)
	assert.Equal(t, int64(99), *entries[0].PerformedBy)

	err = uc.ResetPassword(ctx, admin, 12345, dto.ResetPasswordRequest{NewPassword: "Nouvelle-456"}, client)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
