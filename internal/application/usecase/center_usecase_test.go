package usecase_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Hospital-api/internal/application/apptest"
	"github.com/jhoicas/Hospital-api/internal/application/dto"
	"github.com/jhoicas/Hospital-api/internal/application/usecase"
	"github.com/jhoicas/Hospital-api/internal/domain"
	"github.com/jhoicas/Hospital-api/internal/domain/entity"
	"github.com/jhoicas/Hospital-api/internal/domain/repository"
)

func newCenterUC(s *apptest.Store) *usecase.CenterUseCase {
	return usecase.NewCenterUseCase(s.Repos(), s.UoW(), s.Sessions)
}

func TestCenterCreate_NombreUnicoSinMayusculas(t *testing.T) {
	s := apptest.NewStore()
	s.SeedCenter("Centre Nord")
	uc := newCenterUC(s)

	res, err := uc.Create(ctx, superAdmin(1), dto.CenterRequest{Name: "  centre NORD "})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, usecase.MsgCenterNameTaken, res.Message)

	res, err = uc.Create(ctx, superAdmin(1), dto.CenterRequest{Name: "Centre Sud", Email: "SUD@Hopital.test"})
	require.NoError(t, err)
	require.True(t, res.Success)
	c, _ := s.Centers.GetByID(ctx, res.ID)
	assert.Equal(t, "sud@hopital.test", c.Email)
	assert.True(t, c.IsActive)
}

func TestCenterUpdate_PuedeConservarSuNombre(t *testing.T) {
	s := apptest.NewStore()
	c := s.SeedCenter("Centre Nord")

	res, err := newCenterUC(s).Update(ctx, superAdmin(1), c.ID, dto.CenterRequest{Name: "Centre Nord", Phone: "77 000 00 00"})
	require.NoError(t, err)
	assert.True(t, res.Success)
}

func TestCenterUpdate_NoReactiva(t *testing.T) {
	s := apptest.NewStore()
	c := &entity.HospitalCenter{Name: "Ancien", IsActive: false}
	s.Centers.Seed(c)

	_, err := newCenterUC(s).Update(ctx, superAdmin(1), c.ID, dto.CenterRequest{Name: "Ancien"})
	require.NoError(t, err)
	stored, _ := s.Centers.GetByID(ctx, c.ID)
	assert.False(t, stored.IsActive)
}

// ── Desactivación e impacto ──────────────────────────────────────────────────

func TestCenterDeactivate_DependenciasDurasBloquean(t *testing.T) {
	s := apptest.NewStore()
	c := s.SeedCenter("Centre Nord")
	s.Impact[c.ID] = repository.CenterImpact{OpenEpisodes: 2, UnpaidSales: 1}

	res, err := newCenterUC(s).Deactivate(ctx, superAdmin(1), c.ID, dto.DeactivateCenterRequest{Confirm: true})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, usecase.MsgCenterBlocked, res.Message)
	assert.Len(t, res.Warnings, 2)

	stored, _ := s.Centers.GetByID(ctx, c.ID)
	assert.True(t, stored.IsActive, "la confirmación no salta las dependencias duras")
}

func TestCenterDeactivate_DependenciasBlandasPidenConfirmacion(t *testing.T) {
	s := apptest.NewStore()
	c := s.SeedCenter("Centre Nord")
	u := s.SeedUser("Amina", "Diallo", "amina@hopital.test")
	s.Assign(u.ID, c.ID, entity.RoleMedicalStaff)
	openSession(t, s, u.ID, c.ID)

	res, err := newCenterUC(s).Deactivate(ctx, superAdmin(1), c.ID, dto.DeactivateCenterRequest{})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, usecase.MsgCenterNeedConfirm, res.Message)
	assert.Len(t, res.Warnings, 2, "asignación y sesión abiertas")

	stored, _ := s.Centers.GetByID(ctx, c.ID)
	assert.True(t, stored.IsActive)
}

func TestCenterDeactivate_ConfirmadoCierraAsignacionesYSesiones(t *testing.T) {
	s := apptest.NewStore()
	c := s.SeedCenter("Centre Nord")
	other := s.SeedCenter("Centre Sud")
	u := s.SeedUser("Amina", "Diallo", "amina@hopital.test")
	a := s.Assign(u.ID, c.ID, entity.RoleMedicalStaff)
	kept := s.Assign(u.ID, other.ID, entity.RoleMedicalStaff)
	key := openSession(t, s, u.ID, c.ID)
	otherKey := openSession(t, s, u.ID, other.ID)

	res, err := newCenterUC(s).Deactivate(ctx, superAdmin(1), c.ID, dto.DeactivateCenterRequest{Confirm: true})
	require.NoError(t, err)
	require.True(t, res.Success, res.Message)

	stored, _ := s.Centers.GetByID(ctx, c.ID)
	assert.False(t, stored.IsActive)
	ended, _ := s.Assignments.GetByID(ctx, a.ID)
	assert.True(t, ended.Ended())
	untouched, _ := s.Assignments.GetByID(ctx, kept.ID)
	assert.True(t, untouched.IsActive)

	assert.False(t, s.Sessions.Get(key).IsActive)
	assert.True(t, s.Sessions.Get(otherKey).IsActive, "las sesiones de otros centros siguen abiertas")
	assert.Contains(t, s.Audit.Actions(), entity.AuditCenterDisabled)
}

func TestCenterDeactivate_SinDependenciasYRepetido(t *testing.T) {
	s := apptest.NewStore()
	c := s.SeedCenter("Centre Vide")
	uc := newCenterUC(s)

	res, err := uc.Deactivate(ctx, superAdmin(1), c.ID, dto.DeactivateCenterRequest{})
	require.NoError(t, err)
	assert.True(t, res.Success)

	res, err = uc.Deactivate(ctx, superAdmin(1), c.ID, dto.DeactivateCenterRequest{})
	require.NoError(t, err)
	assert.True(t, res.Success, "desactivar un centro ya inactivo no falla")
}

func TestCenterImpact_IncluyeSesiones(t *testing.T) {
	s := apptest.NewStore()
	c := s.SeedCenter("Centre Nord")
	s.Impact[c.ID] = repository.CenterImpact{StockOnHand: 3}
	openSession(t, s, 5, c.ID)

	imp, err := newCenterUC(s).Impact(ctx, c.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, imp.StockOnHand)
	assert.EqualValues(t, 1, imp.ActiveSessions)
	assert.True(t, imp.Blocking)
}

func TestCenterActivate_NoReabreAsignaciones(t *testing.T) {
	s := apptest.NewStore()
	c := s.SeedCenter("Centre Nord")
	u := s.SeedUser("Amina", "Diallo", "amina@hopital.test")
	a := s.Assign(u.ID, c.ID, entity.RoleMedicalStaff)
	uc := newCenterUC(s)

	_, err := uc.Deactivate(ctx, superAdmin(1), c.ID, dto.DeactivateCenterRequest{Confirm: true})
	require.NoError(t, err)
	res, err := uc.Activate(ctx, superAdmin(1), c.ID)
	require.NoError(t, err)
	assert.True(t, res.Success)

	stored, _ := s.Centers.GetByID(ctx, c.ID)
	assert.True(t, stored.IsActive)
	ended, _ := s.Assignments.GetByID(ctx, a.ID)
	assert.False(t, ended.IsActive)
}

func TestCenterGetByID_Inexistente(t *testing.T) {
	_, err := newCenterUC(apptest.NewStore()).GetByID(ctx, 9)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
