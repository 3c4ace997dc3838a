package http_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Hospital-api/internal/application/apptest"
	"github.com/jhoicas/Hospital-api/internal/application/dto"
	"github.com/jhoicas/Hospital-api/internal/application/session"
	"github.com/jhoicas/Hospital-api/internal/domain/entity"
	apphttp "github.com/jhoicas/Hospital-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/Hospital-api/pkg/jwt"
	"github.com/jhoicas/Hospital-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testSecret = "test-secret-key-for-unit-tests"
	testCookie = "HospitalSession"
	testIssuer = "hospital-api-test"
)

// buildTestApp aplicación Fiber mínima con el ErrorHandler y el middleware de sesión reales.
// routes registra las rutas del caso de prueba.
func buildTestApp(store *apptest.Sessions, routes func(app *fiber.App)) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: apphttp.ErrorHandler(logger.Nop(), apphttp.PathError)})
	app.Use(apphttp.SessionMiddleware(apphttp.SessionConfig{
		Validator:      session.NewValidator(store, testSecret),
		CookieName:     testCookie,
		LoginPath:      apphttp.PathLogin,
		PublicPrefixes: apphttp.DefaultPublicPrefixes,
		Log:            logger.Nop(),
	}))
	routes(app)
	return app
}

// identityJSON handler que devuelve la identidad de la petición.
func identityJSON(c *fiber.Ctx) error {
	id := apphttp.IdentityFrom(c)
	return c.JSON(fiber.Map{
		"user_id":   id.UserID,
		"user_name": id.UserName,
		"center_id": id.CenterID,
		"role":      id.Role,
	})
}

func ok(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"ok": true})
}

type sessionSpec struct {
	userID    int64
	centerID  int64
	role      string
	expiresIn time.Duration
}

// seedSession crea la sesión en el almacén y devuelve el sobre firmado de la cookie.
func seedSession(t *testing.T, store *apptest.Sessions, s sessionSpec) string {
	t.Helper()
	if s.expiresIn == 0 {
		s.expiresIn = time.Hour
	}
	now := time.Now()
	sess := &entity.UserSession{
		SessionKey: uuid.NewString(),
		UserID:     s.userID,
		Role:       s.role,
		LoginTime:  now,
		ExpiresAt:  now.Add(s.expiresIn),
		IsActive:   true,
	}
	if s.centerID > 0 {
		c := s.centerID
		sess.CurrentCenterID = &c
	}
	require.NoError(t, store.Create(context.Background(), sess))
	// el sobre vive más que la sesión: la expiración la decide el almacén
	tok, err := pkgjwt.Generate(testSecret, sess.SessionKey, testIssuer, now.Add(24*time.Hour))
	require.NoError(t, err)
	return tok
}

type reqOpt func(r *http.Request)

func withSession(envelope string) reqOpt {
	return func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: testCookie, Value: envelope})
	}
}

func asAJAX() reqOpt {
	return func(r *http.Request) { r.Header.Set("X-Requested-With", "XMLHttpRequest") }
}

func withHeader(k, v string) reqOpt {
	return func(r *http.Request) { r.Header.Set(k, v) }
}

func withJSONBody(body string) reqOpt {
	return func(r *http.Request) {
		r.Body = io.NopCloser(strings.NewReader(body))
		r.ContentLength = int64(len(body))
		r.Header.Set("Content-Type", "application/json")
	}
}

func withForm(encoded string) reqOpt {
	return func(r *http.Request) {
		r.Body = io.NopCloser(strings.NewReader(encoded))
		r.ContentLength = int64(len(encoded))
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
}

// doRequest lanza la petición contra la app y devuelve la respuesta.
func doRequest(t *testing.T, app *fiber.App, method, path string, opts ...reqOpt) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	for _, o := range opts {
		o(req)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeFailure(t *testing.T, resp *http.Response) dto.FailureResponse {
	t.Helper()
	var body dto.FailureResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func decodeMap(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func findCookie(resp *http.Response, name string) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// flashOf mensaje de la cookie flash de la respuesta ("" si no hay).
func flashOf(t *testing.T, resp *http.Response) string {
	t.Helper()
	c := findCookie(resp, apphttp.FlashCookie)
	if c == nil {
		return ""
	}
	msg, err := url.QueryUnescape(c.Value)
	require.NoError(t, err)
	return msg
}
