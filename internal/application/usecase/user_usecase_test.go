package usecase_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Hospital-api/internal/application/apptest"
	"github.com/jhoicas/Hospital-api/internal/application/dto"
	"github.com/jhoicas/Hospital-api/internal/application/usecase"
	"github.com/jhoicas/Hospital-api/internal/domain"
	"github.com/jhoicas/Hospital-api/internal/domain/entity"
	"github.com/jhoicas/Hospital-api/internal/domain/query"
)

func newUserUC(s *apptest.Store) *usecase.UserUseCase {
	return usecase.NewUserUseCase(s.Repos(), s.UoW(), s.Sessions, plainHasher{})
}

func TestUserCreate_ConCentroCreaLaAsignacion(t *testing.T) {
	s := apptest.NewStore()
	center := s.SeedCenter("Centre Nord")

	res, err := newUserUC(s).Create(ctx, superAdmin(1), dto.CreateUserRequest{
		FirstName: " Amina ", LastName: "Diallo", Email: "AMINA@Hopital.test",
		Password: "Secreta-123", CenterID: center.ID, Role: entity.RoleMedicalStaff,
	})
	require.NoError(t, err)
	require.True(t, res.Success, res.Message)

	u, err := s.Users.GetByID(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, "Amina", u.FirstName)
	assert.Equal(t, "amina@hopital.test", u.Email)
	assert.Equal(t, "hash:Secreta-123", u.PasswordHash)
	assert.True(t, u.MustChangePassword, "la primera contraseña la fija el administrador")

	as, err := s.Assignments.List(ctx, query.Eq("user_id", u.ID))
	require.NoError(t, err)
	require.Len(t, as, 1)
	assert.Equal(t, center.ID, as[0].HospitalCenterID)
	assert.Equal(t, entity.RoleMedicalStaff, as[0].Role)
}

func TestUserCreate_EmailDuplicadoEsRechazo(t *testing.T) {
	s := apptest.NewStore()
	s.SeedUser("Amina", "Diallo", "amina@hopital.test")

	res, err := newUserUC(s).Create(ctx, superAdmin(1), dto.CreateUserRequest{
		FirstName: "Otra", LastName: "Persona", Email: " Amina@HOPITAL.test", Password: "Secreta-123",
	})
	require.NoError(t, err, "un email repetido no es un error sino un rechazo")
	assert.False(t, res.Success)
	assert.Equal(t, usecase.MsgEmailTaken, res.Message)
	assert.Equal(t, 1, s.Users.Len())
}

func TestUserCreate_Validacion(t *testing.T) {
	s := apptest.NewStore()
	uc := newUserUC(s)

	cases := map[string]dto.CreateUserRequest{
		"sin nombre":       {LastName: "Diallo", Email: "a@b.test"},
		"email sin arroba": {FirstName: "A", LastName: "B", Email: "no-es-email"},
		"rol desconocido":  {FirstName: "A", LastName: "B", Email: "a@b.test", CenterID: 1, Role: "Root"},
	}
	for name, in := range cases {
		_, err := uc.Create(ctx, superAdmin(1), in)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, name)
	}
	assert.Zero(t, s.Users.Len())
}

func TestUserCreate_CentroInexistenteDeshaceTodo(t *testing.T) {
	s := apptest.NewStore()

	_, err := newUserUC(s).Create(ctx, superAdmin(1), dto.CreateUserRequest{
		FirstName: "Amina", LastName: "Diallo", Email: "amina@hopital.test", Password: "Secreta-123",
		CenterID: 99, Role: entity.RoleMedicalStaff,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Zero(t, s.Users.Len(), "el usuario no queda creado sin su asignación")
}

func TestUserUpdate_NoTocaContraseniaNiEstado(t *testing.T) {
	s := apptest.NewStore()
	u := s.SeedUser("Amina", "Diallo", "amina@hopital.test")
	before, _ := s.Users.GetByID(ctx, u.ID)

	res, err := newUserUC(s).Update(ctx, superAdmin(1), u.ID, dto.UpdateUserRequest{
		FirstName: "Amina", LastName: "Diallo-Sow", Email: "amina.sow@hopital.test",
	})
	require.NoError(t, err)
	require.True(t, res.Success)

	after, _ := s.Users.GetByID(ctx, u.ID)
	assert.Equal(t, "Diallo-Sow", after.LastName)
	assert.Equal(t, "amina.sow@hopital.test", after.Email)
	assert.Equal(t, before.PasswordHash, after.PasswordHash)
	assert.True(t, after.IsActive)
	require.NotNil(t, after.ModifiedBy)
	assert.EqualValues(t, 1, *after.ModifiedBy)
}

func TestUserUpdate_EmailDeOtroEsRechazo(t *testing.T) {
	s := apptest.NewStore()
	s.SeedUser("Amina", "Diallo", "amina@hopital.test")
	other := s.SeedUser("Moussa", "Keita", "moussa@hopital.test")

	res, err := newUserUC(s).Update(ctx, superAdmin(1), other.ID, dto.UpdateUserRequest{
		FirstName: "Moussa", LastName: "Keita", Email: "amina@hopital.test",
	})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, usecase.MsgEmailTaken, res.Message)
}

func TestUserSetActive_NoSobreSiMismo(t *testing.T) {
	s := apptest.NewStore()
	admin := s.SeedUser("Root", "Admin", "root@hopital.test")

	res, err := newUserUC(s).SetActive(ctx, superAdmin(admin.ID), admin.ID, false)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, usecase.MsgSelfAction, res.Message)

	stored, _ := s.Users.GetByID(ctx, admin.ID)
	assert.True(t, stored.IsActive)
}

func TestUserSetActive_DesactivarCierraSusSesiones(t *testing.T) {
	s := apptest.NewStore()
	center := s.SeedCenter("Centre Nord")
	u := s.SeedUser("Amina", "Diallo", "amina@hopital.test")
	key := openSession(t, s, u.ID, center.ID)

	res, err := newUserUC(s).SetActive(ctx, superAdmin(1), u.ID, false)
	require.NoError(t, err)
	assert.True(t, res.Success)

	stored, _ := s.Users.GetByID(ctx, u.ID)
	assert.False(t, stored.IsActive)
	assert.False(t, s.Sessions.Get(key).IsActive)
	assert.Contains(t, s.Audit.Actions(), entity.AuditUserDeactivated)
}

func TestUserGetByID_Inexistente(t *testing.T) {
	_, err := newUserUC(apptest.NewStore()).GetByID(ctx, 42)
	assert.True(t, errors.Is(err, domain.ErrUserNotFound))
}
