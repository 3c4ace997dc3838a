package http

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Hospital-api/internal/application/session"
	"github.com/jhoicas/Hospital-api/internal/domain/entity"
)

// Mensajes de los guards.
const (
	MsgRoleDenied       = "Accès refusé. Droits insuffisants."
	MsgSuperAdminDenied = "Accès refusé. Droits SuperAdmin requis."
	MsgCenterRequired   = "Veuillez sélectionner un centre."
	MsgCenterDenied     = "Accès refusé à ce centre."
	MsgSelfActionDenied = "Vous ne pouvez pas effectuer cette action sur votre propre compte."
	MsgBadTarget        = "Paramètre cible invalide."
)

// Guard predicado previo a la acción: nil para continuar o un rechazo tipado.
// Lee solo la identidad de la petición y los parámetros enlazados.
type Guard func(c *fiber.Ctx, id session.Identity) *Denial

// Guarded encadena guards; el primero que rechaza responde y corta la cadena.
func Guarded(guards ...Guard) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := IdentityFrom(c)
		for _, g := range guards {
			if d := g(c, id); d != nil {
				return Deny(c, *d)
			}
		}
		return c.Next()
	}
}

// RequireAuth exige una identidad resuelta.
func RequireAuth(loginPath string) Guard {
	return func(_ *fiber.Ctx, id session.Identity) *Denial {
		if id.Authenticated() {
			return nil
		}
		d := loginDenial(loginPath, "UNAUTHENTICATED", MsgLoginRequired)
		return &d
	}
}

// RequireRole exige que el rol actual pertenezca al conjunto; un rol vacío nunca pasa.
func RequireRole(redirectTo string, roles ...string) Guard {
	return func(_ *fiber.Ctx, id session.Identity) *Denial {
		if id.HasAnyRole(roles...) {
			return nil
		}
		return &Denial{Status: fiber.StatusForbidden, Code: "FORBIDDEN", Message: MsgRoleDenied, RedirectTo: redirectTo}
	}
}

// RequireSuperAdmin variante de RequireRole con el rol elevado y su propio mensaje.
func RequireSuperAdmin(redirectTo string) Guard {
	return func(_ *fiber.Ctx, id session.Identity) *Denial {
		if id.HasAnyRole(entity.RoleSuperAdmin) {
			return nil
		}
		return &Denial{Status: fiber.StatusForbidden, Code: "FORBIDDEN", Message: MsgSuperAdminDenied, RedirectTo: redirectTo}
	}
}

// RequireCenter exige un centro actual seleccionado.
func RequireCenter(redirectTo string) Guard {
	return func(_ *fiber.Ctx, id session.Identity) *Denial {
		if id.HasCenter() {
			return nil
		}
		return &Denial{Status: fiber.StatusForbidden, Code: "NO_CENTER", Message: MsgCenterRequired, RedirectTo: redirectTo}
	}
}

// RequireCenterAccess el centro destino debe ser el actual; SuperAdmin nunca es rechazado.
func RequireCenterAccess(target Extractor, redirectTo string) Guard {
	return func(c *fiber.Ctx, id session.Identity) *Denial {
		if id.IsSuperAdmin() {
			return nil
		}
		centerID, err := target.Extract(c)
		if err != nil {
			return badTarget(redirectTo)
		}
		if id.CanAccessCenter(centerID) {
			return nil
		}
		return &Denial{Status: fiber.StatusForbidden, Code: "CENTER_FORBIDDEN", Message: MsgCenterDenied, RedirectTo: redirectTo}
	}
}

// PreventSelfAction rechaza la acción si el usuario destino es el propio actor, sea cual sea su rol.
func PreventSelfAction(target Extractor, redirectTo string) Guard {
	return func(c *fiber.Ctx, id session.Identity) *Denial {
		userID, err := target.Extract(c)
		if err != nil {
			return badTarget(redirectTo)
		}
		if userID != id.UserID {
			return nil
		}
		return &Denial{Status: fiber.StatusForbidden, Code: "SELF_ACTION", Message: MsgSelfActionDenied, RedirectTo: redirectTo}
	}
}

func badTarget(redirectTo string) *Denial {
	return &Denial{Status: fiber.StatusBadRequest, Code: "BAD_TARGET", Message: MsgBadTarget, RedirectTo: redirectTo}
}

// ── Extracción tipada del parámetro destino ──

var (
	errTargetMissing   = errors.New("parámetro destino ausente")
	errTargetMalformed = errors.New("parámetro destino inválido")
)

// Extractor lee un identificador positivo de la petición.
// Un parámetro ausente o mal formado es un error, nunca un cero silencioso.
type Extractor interface {
	Extract(c *fiber.Ctx) (int64, error)
}

type extractorFunc func(c *fiber.Ctx) string

func (f extractorFunc) Extract(c *fiber.Ctx) (int64, error) {
	return parseTarget(f(c))
}

// Param parámetro de ruta (":id").
func Param(name string) Extractor {
	return extractorFunc(func(c *fiber.Ctx) string { return c.Params(name) })
}

// Query parámetro de la query string.
func Query(name string) Extractor {
	return extractorFunc(func(c *fiber.Ctx) string { return c.Query(name) })
}

// Form campo de un formulario (urlencoded o multipart).
func Form(name string) Extractor {
	return extractorFunc(func(c *fiber.Ctx) string { return c.FormValue(name) })
}

// FirstOf primer extractor que encuentra el parámetro (p. ej. ruta y después formulario).
func FirstOf(ex ...Extractor) Extractor {
	return firstOf(ex)
}

type firstOf []Extractor

func (f firstOf) Extract(c *fiber.Ctx) (int64, error) {
	err := errTargetMissing
	for _, e := range f {
		v, e2 := e.Extract(c)
		if e2 == nil {
			return v, nil
		}
		if !errors.Is(e2, errTargetMissing) {
			err = e2
		}
	}
	return 0, err
}

func parseTarget(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, errTargetMissing
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v <= 0 {
		return 0, errTargetMalformed
	}
	return v, nil
}
