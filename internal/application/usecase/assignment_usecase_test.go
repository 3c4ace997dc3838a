package usecase_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Hospital-api/internal/application/apptest"
	"github.com/jhoicas/Hospital-api/internal/application/dto"
	"github.com/jhoicas/Hospital-api/internal/application/usecase"
	"github.com/jhoicas/Hospital-api/internal/domain"
	"github.com/jhoicas/Hospital-api/internal/domain/entity"
)

func newAssignmentUC(s *apptest.Store) *usecase.AssignmentUseCase {
	return usecase.NewAssignmentUseCase(s.Repos(), s.UoW(), s.Sessions)
}

func TestAssign_UnaActivaPorUsuarioYCentro(t *testing.T) {
	s := apptest.NewStore()
	u := s.SeedUser("Amina", "Diallo", "amina@hopital.test")
	c := s.SeedCenter("Centre Nord")
	uc := newAssignmentUC(s)
	in := dto.AssignmentRequest{UserID: u.ID, CenterID: c.ID, Role: entity.RoleMedicalStaff}

	res, err := uc.Assign(ctx, superAdmin(1), in)
	require.NoError(t, err)
	require.True(t, res.Success)

	res, err = uc.Assign(ctx, superAdmin(1), in)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, usecase.MsgAlreadyAssigned, res.Message)
	assert.Equal(t, 1, s.Assignments.Len())
}

func TestAssign_Validacion(t *testing.T) {
	s := apptest.NewStore()
	u := s.SeedUser("Amina", "Diallo", "amina@hopital.test")
	c := s.SeedCenter("Centre Nord")
	uc := newAssignmentUC(s)
	start := time.Now()
	before := start.Add(-time.Hour)

	_, err := uc.Assign(ctx, superAdmin(1), dto.AssignmentRequest{UserID: u.ID, CenterID: c.ID, Role: "Chef"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Assign(ctx, superAdmin(1), dto.AssignmentRequest{
		UserID: u.ID, CenterID: c.ID, Role: entity.RoleMedicalStaff, StartDate: &start, EndDate: &before,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Assign(ctx, superAdmin(1), dto.AssignmentRequest{UserID: 99, CenterID: c.ID, Role: entity.RoleMedicalStaff})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestAssign_CentroInactivo(t *testing.T) {
	s := apptest.NewStore()
	u := s.SeedUser("Amina", "Diallo", "amina@hopital.test")
	c := &entity.HospitalCenter{Name: "Fermé"}
	s.Centers.Seed(c)

	_, err := newAssignmentUC(s).Assign(ctx, superAdmin(1), dto.AssignmentRequest{UserID: u.ID, CenterID: c.ID, Role: entity.RoleMedicalStaff})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAssignmentEnd_Idempotente(t *testing.T) {
	s := apptest.NewStore()
	u := s.SeedUser("Amina", "Diallo", "amina@hopital.test")
	a := s.Assign(u.ID, s.SeedCenter("Centre Nord").ID, entity.RoleMedicalStaff)
	uc := newAssignmentUC(s)

	res, err := uc.End(ctx, superAdmin(1), a.ID)
	require.NoError(t, err)
	assert.Equal(t, usecase.MsgAssignmentEnded, res.Message)
	first, _ := s.Assignments.GetByID(ctx, a.ID)
	require.NotNil(t, first.EndDate)

	res, err = uc.End(ctx, superAdmin(1), a.ID)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, usecase.MsgAlreadyEnded, res.Message)
	second, _ := s.Assignments.GetByID(ctx, a.ID)
	assert.True(t, first.EndDate.Equal(*second.EndDate), "repetir no mueve la fecha de fin")
}

func TestAssignmentEndAll_PorCentro(t *testing.T) {
	s := apptest.NewStore()
	u := s.SeedUser("Amina", "Diallo", "amina@hopital.test")
	nord := s.SeedCenter("Centre Nord")
	sud := s.SeedCenter("Centre Sud")
	s.Assign(u.ID, nord.ID, entity.RoleMedicalStaff)
	s.Assign(u.ID, sud.ID, entity.RoleMedicalStaff)
	uc := newAssignmentUC(s)

	n, err := uc.EndAll(ctx, superAdmin(1), u.ID, &nord.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = uc.EndAll(ctx, superAdmin(1), u.ID, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n, "solo quedaba la del centro sur")

	list, err := uc.ListForUser(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	for _, a := range list {
		assert.False(t, a.IsActive)
	}
}

// ── Sesiones abiertas ────────────────────────────────────────────────────────

func TestAssignmentEndAll_CierraLasSesionesDelUsuario(t *testing.T) {
	s := apptest.NewStore()
	u := s.SeedUser("Amina", "Diallo", "amina@hopital.test")
	c := s.SeedCenter("Centre Nord")
	s.Assign(u.ID, c.ID, entity.RoleSuperAdmin)
	key := openSession(t, s, u.ID, c.ID)
	require.NoError(t, s.Sessions.SwitchCenter(ctx, key, c.ID, c.Name, entity.RoleSuperAdmin))

	n, err := newAssignmentUC(s).EndAll(ctx, superAdmin(1), u.ID, nil)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	sess := s.Sessions.Get(key)
	assert.False(t, sess.IsActive, "el rol de la asignación cerrada no sigue vigente en la sesión")
	assert.NotNil(t, sess.LogoutTime)
}

func TestAssignmentEnd_CierraLasSesionesDelUsuario(t *testing.T) {
	s := apptest.NewStore()
	u := s.SeedUser("Amina", "Diallo", "amina@hopital.test")
	other := s.SeedUser("Moussa", "Keita", "moussa@hopital.test")
	c := s.SeedCenter("Centre Nord")
	a := s.Assign(u.ID, c.ID, entity.RoleMedicalStaff)
	s.Assign(other.ID, c.ID, entity.RoleMedicalStaff)
	key := openSession(t, s, u.ID, c.ID)
	otherKey := openSession(t, s, other.ID, c.ID)

	_, err := newAssignmentUC(s).End(ctx, superAdmin(1), a.ID)
	require.NoError(t, err)

	assert.False(t, s.Sessions.Get(key).IsActive)
	assert.True(t, s.Sessions.Get(otherKey).IsActive, "solo se cierran las sesiones del usuario afectado")
}

func TestAssignmentEndAll_SinAsignacionesNoTocaSesiones(t *testing.T) {
	s := apptest.NewStore()
	u := s.SeedUser("Amina", "Diallo", "amina@hopital.test")
	key := openSession(t, s, u.ID, s.SeedCenter("Centre Nord").ID)

	n, err := newAssignmentUC(s).EndAll(ctx, superAdmin(1), u.ID, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.True(t, s.Sessions.Get(key).IsActive)
}
