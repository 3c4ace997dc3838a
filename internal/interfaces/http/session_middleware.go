package http

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Hospital-api/internal/application/session"
	"github.com/jhoicas/Hospital-api/internal/domain"
	"github.com/jhoicas/Hospital-api/pkg/logger"
)

// Mensajes de sesión mostrados al usuario.
const (
	MsgSessionExpired = "Session expirée. Veuillez vous reconnecter."
	MsgLoginRequired  = "Veuillez vous connecter."
)

// SessionValidator resuelve el sobre de la cookie.
type SessionValidator interface {
	Validate(ctx context.Context, envelope string) session.Result
}

// SessionConfig parámetros del middleware de sesión.
type SessionConfig struct {
	Validator      SessionValidator
	CookieName     string
	CookieSecure   bool
	LoginPath      string
	PublicPrefixes []string // rutas que no pasan por la validación
	Log            *logger.Logger
}

// SessionMiddleware valida la sesión de cada petición antes de cualquier guard:
//   - ruta pública -> continúa sin identidad
//   - sin sobre -> login
//   - sobre vencido o desconocido -> cookie borrada y login
//
// La redirección al login no depende de la forma de la petición (también AJAX).
//   - sesión válida -> identidad en c.Locals
//
// Un fallo del almacén cuenta como sesión inválida: nunca deja pasar la petición.
func SessionMiddleware(cfg SessionConfig) fiber.Handler {
	log := cfg.Log
	if log == nil {
		log = logger.Nop()
	}
	return func(c *fiber.Ctx) error {
		if IsPublicPath(c.Path(), cfg.PublicPrefixes) {
			return c.Next()
		}
		res := cfg.Validator.Validate(c.UserContext(), sessionEnvelope(c, cfg.CookieName))
		switch res.State {
		case session.StateValid:
			SetIdentity(c, res.Identity)
			return c.Next()
		case session.StateAbsent:
			return Deny(c, loginDenial(cfg.LoginPath, "UNAUTHENTICATED", MsgLoginRequired))
		case session.StateExpired:
			if res.Err != nil && !errors.Is(res.Err, domain.ErrSessionExpired) {
				log.Warn().Err(res.Err).Str("path", c.Path()).Msg("sesión vencida no cerrada en el almacén")
			}
			ClearSessionCookie(c, cfg.CookieName, cfg.CookieSecure)
			return Deny(c, loginDenial(cfg.LoginPath, "SESSION_EXPIRED", MsgSessionExpired))
		default:
			ev := log.Warn()
			if res.Err != nil && !errors.Is(res.Err, domain.ErrSessionInvalid) {
				ev = log.Error()
			}
			ev.Err(res.Err).Str("path", c.Path()).Str("ip", c.IP()).Msg("sesión inválida")
			ClearSessionCookie(c, cfg.CookieName, cfg.CookieSecure)
			return Deny(c, loginDenial(cfg.LoginPath, "SESSION_INVALID", MsgLoginRequired))
		}
	}
}

// IsPublicPath coincidencia de prefijo por segmentos: "/static" cubre "/static/app.css" pero no "/statistics".
func IsPublicPath(path string, prefixes []string) bool {
	for _, p := range prefixes {
		p = strings.TrimSuffix(p, "/")
		if p == "" {
			continue
		}
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}

// sessionEnvelope sobre firmado desde la cookie o, para clientes API, desde "Authorization: Bearer".
func sessionEnvelope(c *fiber.Ctx, cookieName string) string {
	if v := c.Cookies(cookieName); v != "" {
		return v
	}
	parts := strings.SplitN(c.Get(fiber.HeaderAuthorization), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// SetSessionCookie emite la cookie HTTP-only con el sobre de la sesión.
func SetSessionCookie(c *fiber.Ctx, name, envelope string, expiresAt time.Time, secure bool) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    envelope,
		Path:     "/",
		Expires:  expiresAt,
		HTTPOnly: true,
		Secure:   secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// ClearSessionCookie borra la cookie de sesión del navegador.
func ClearSessionCookie(c *fiber.Ctx, name string, secure bool) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
