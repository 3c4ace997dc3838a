package http_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/Hospital-api/internal/application/analytics"
	"github.com/jhoicas/Hospital-api/internal/application/apptest"
	"github.com/jhoicas/Hospital-api/internal/application/auth"
	"github.com/jhoicas/Hospital-api/internal/application/billing"
	"github.com/jhoicas/Hospital-api/internal/application/inventory"
	"github.com/jhoicas/Hospital-api/internal/application/session"
	"github.com/jhoicas/Hospital-api/internal/application/usecase"
	"github.com/jhoicas/Hospital-api/internal/domain/entity"
	apphttp "github.com/jhoicas/Hospital-api/internal/interfaces/http"
	"github.com/jhoicas/Hospital-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// App completa sobre el almacén en memoria
// ──────────────────────────────────────────────────────────────────────────────

type fullApp struct {
	app   *fiber.App
	store *apptest.Store
}

func buildFullApp(t *testing.T) *fullApp {
	t.Helper()
	store := apptest.NewStore()
	repos, uow := store.Repos(), store.UoW()

	authUC := auth.NewAuthUseCase(repos, uow, store.Sessions, auth.Config{
		Secret:     testSecret,
		Issuer:     testIssuer,
		TTL:        time.Hour,
		BcryptCost: bcrypt.MinCost,
	})
	movements := inventory.NewMovementUseCase(repos, uow)

	app := fiber.New(fiber.Config{ErrorHandler: apphttp.ErrorHandler(logger.Nop(), apphttp.PathError)})
	apphttp.Router(app, apphttp.RouterDeps{
		AppName:      "hospital-test",
		Session:      session.NewValidator(store.Sessions, testSecret),
		Cookie:       apphttp.CookieConfig{Name: testCookie},
		Log:          logger.Nop(),
		AuthUC:       authUC,
		UserUC:       usecase.NewUserUseCase(repos, uow, store.Sessions, authUC),
		CenterUC:     usecase.NewCenterUseCase(repos, uow, store.Sessions),
		AssignmentUC: usecase.NewAssignmentUseCase(repos, uow, store.Sessions),
		CategoryUC:   usecase.NewCategoryUseCase(repos, uow),
		ProductUC:    usecase.NewProductUseCase(repos, uow),
		PatientUC:    usecase.NewPatientUseCase(repos, uow),
		EpisodeUC:    usecase.NewEpisodeUseCase(repos, uow),
		MovementUC:   movements,
		StockUC:      inventory.NewStockUseCase(repos, nil),
		SaleUC:       billing.NewSaleUseCase(repos, uow, movements),
		PaymentUC:    billing.NewPaymentUseCase(repos, uow),
		DocumentUC:   billing.NewDocumentUseCase(repos, nil),
		StatisticsUC: analytics.NewStatisticsUseCase(repos.Reports),
	})
	return &fullApp{app: app, store: store}
}

// login inicia sesión por HTTP y devuelve el sobre de la cookie.
func (f *fullApp) login(t *testing.T, email string) string {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q}`, email, apptest.Password)
	resp := doRequest(t, f.app, http.MethodPost, apphttp.PathLogin, withJSONBody(body))
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	c := findCookie(resp, testCookie)
	require.NotNil(t, c, "el login debe fijar la cookie de sesión")
	assert.True(t, c.HttpOnly)
	return c.Value
}

// ──────────────────────────────────────────────────────────────────────────────
// Login y sesión
// ──────────────────────────────────────────────────────────────────────────────

func TestRouter_LoginYMe(t *testing.T) {
	f := buildFullApp(t)
	u := f.store.SeedUser("Amina", "Diallo", "amina@hopital.test")
	center := f.store.SeedCenter("Centre Nord")
	f.store.Assign(u.ID, center.ID, entity.RoleMedicalStaff)

	env := f.login(t, "Amina@Hopital.test")

	resp := doRequest(t, f.app, http.MethodGet, "/auth/me", withSession(env))
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeMap(t, resp)
	assert.EqualValues(t, u.ID, body["user_id"])
	assert.EqualValues(t, center.ID, body["center_id"])
	assert.Equal(t, entity.RoleMedicalStaff, body["role"])
}

func TestRouter_LoginCredencialesInvalidas(t *testing.T) {
	f := buildFullApp(t)
	f.store.SeedUser("Amina", "Diallo", "amina@hopital.test")

	resp := doRequest(t, f.app, http.MethodPost, apphttp.PathLogin,
		withJSONBody(`{"email":"amina@hopital.test","password":"otra-cosa"}`))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Nil(t, findCookie(resp, testCookie))
}

func TestRouter_HealthEsPublico(t *testing.T) {
	f := buildFullApp(t)

	resp := doRequest(t, f.app, http.MethodGet, "/health")
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "hospital-test", decodeMap(t, resp)["service"])
}

func TestRouter_Logout_CierraLaSesion(t *testing.T) {
	f := buildFullApp(t)
	u := f.store.SeedUser("Amina", "Diallo", "amina@hopital.test")
	f.store.Assign(u.ID, f.store.SeedCenter("Centre Nord").ID, entity.RoleMedicalStaff)
	env := f.login(t, "amina@hopital.test")

	resp := doRequest(t, f.app, http.MethodPost, "/auth/logout", withSession(env))
	resp.Body.Close()
	assertLoginRedirect(t, resp)
	assertSessionCookieCleared(t, resp)

	// el mismo sobre ya no abre ninguna ruta protegida
	again := doRequest(t, f.app, http.MethodGet, "/auth/me", withSession(env), asAJAX())
	defer again.Body.Close()
	assertLoginRedirect(t, again)
}

// ──────────────────────────────────────────────────────────────────────────────
// Guards sobre las rutas reales
// ──────────────────────────────────────────────────────────────────────────────

func TestRouter_PersonalMedicoEnAdmin_RedirigeAlDashboard(t *testing.T) {
	f := buildFullApp(t)
	u := f.store.SeedUser("Amina", "Diallo", "amina@hopital.test")
	f.store.Assign(u.ID, f.store.SeedCenter("Centre Nord").ID, entity.RoleMedicalStaff)
	env := f.login(t, "amina@hopital.test")

	resp := doRequest(t, f.app, http.MethodGet, "/admin/users", withSession(env))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, apphttp.PathDashboard, resp.Header.Get("Location"))
	assert.Equal(t, apphttp.MsgSuperAdminDenied, flashOf(t, resp))
}

func TestRouter_PersonalMedicoEnAdmin_AJAXRecibeJSON(t *testing.T) {
	f := buildFullApp(t)
	u := f.store.SeedUser("Amina", "Diallo", "amina@hopital.test")
	f.store.Assign(u.ID, f.store.SeedCenter("Centre Nord").ID, entity.RoleMedicalStaff)
	env := f.login(t, "amina@hopital.test")

	resp := doRequest(t, f.app, http.MethodGet, "/admin/users", withSession(env), asAJAX())
	defer resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	body := decodeFailure(t, resp)
	assert.False(t, body.Success)
	assert.Equal(t, apphttp.MsgSuperAdminDenied, body.Message)
}

func TestRouter_SuperAdminNoPuedeDesactivarse(t *testing.T) {
	f := buildFullApp(t)
	admin := f.store.SeedUser("Root", "Admin", "root@hopital.test")
	f.store.Assign(admin.ID, f.store.SeedCenter("Siège").ID, entity.RoleSuperAdmin)
	env := f.login(t, "root@hopital.test")

	resp := doRequest(t, f.app, http.MethodPost, fmt.Sprintf("/admin/users/%d/deactivate", admin.ID), withSession(env))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, apphttp.PathAdmin, resp.Header.Get("Location"))
	assert.Equal(t, apphttp.MsgSelfActionDenied, flashOf(t, resp))

	stored, err := f.store.Users.GetByID(t.Context(), admin.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsActive, "la cuenta sigue activa")
}

func TestRouter_SuperAdminDesactivaAOtroUsuario(t *testing.T) {
	f := buildFullApp(t)
	center := f.store.SeedCenter("Siège")
	admin := f.store.SeedUser("Root", "Admin", "root@hopital.test")
	f.store.Assign(admin.ID, center.ID, entity.RoleSuperAdmin)
	other := f.store.SeedUser("Amina", "Diallo", "amina@hopital.test")
	f.store.Assign(other.ID, center.ID, entity.RoleMedicalStaff)
	env := f.login(t, "root@hopital.test")

	resp := doRequest(t, f.app, http.MethodPost, fmt.Sprintf("/admin/users/%d/deactivate", other.ID), withSession(env), asAJAX())
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, decodeMap(t, resp)["success"])

	stored, err := f.store.Users.GetByID(t.Context(), other.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsActive)
}

func TestRouter_StockRequiereSesion(t *testing.T) {
	f := buildFullApp(t)

	resp := doRequest(t, f.app, http.MethodGet, apphttp.PathStock)
	defer resp.Body.Close()

	assertLoginRedirect(t, resp)
	assert.Equal(t, apphttp.MsgLoginRequired, flashOf(t, resp))
}
