package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Hospital-api/internal/domain"
	"github.com/jhoicas/Hospital-api/pkg/logger"
)

// MsgInternal mensaje genérico: el error original nunca llega al cliente.
const MsgInternal = "Une erreur interne est survenue."

type errorMapping struct {
	target error
	status int
	code   string
	expose bool // el texto del error de dominio es apto para el usuario
}

var errorMappings = []errorMapping{
	{domain.ErrUserNotFound, fiber.StatusNotFound, "NOT_FOUND", true},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND", true},
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION", true},
	{domain.ErrDuplicate, fiber.StatusConflict, "DUPLICATE", true},
	{domain.ErrInsufficientStock, fiber.StatusConflict, "INSUFFICIENT_STOCK", true},
	{domain.ErrOverpayment, fiber.StatusConflict, "OVERPAYMENT", true},
	{domain.ErrHasDependencies, fiber.StatusConflict, "HAS_DEPENDENCIES", true},
	{domain.ErrConflict, fiber.StatusConflict, "CONFLICT", true},
	{domain.ErrNoActiveCenter, fiber.StatusForbidden, "NO_CENTER", false},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN", false},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED", true},
	{domain.ErrSessionExpired, fiber.StatusUnauthorized, "SESSION_EXPIRED", false},
	{domain.ErrSessionInvalid, fiber.StatusUnauthorized, "SESSION_INVALID", false},
}

var fixedMessages = map[string]string{
	"NO_CENTER":       MsgCenterRequired,
	"FORBIDDEN":       MsgRoleDenied,
	"SESSION_EXPIRED": MsgSessionExpired,
	"SESSION_INVALID": MsgLoginRequired,
}

// ErrorHandler convierte cualquier error que escape de un handler en la respuesta de fallo
// (JSON o redirección a errorPath). Los errores no clasificados se registran con ruta, usuario y centro.
func ErrorHandler(log *logger.Logger, errorPath string) fiber.ErrorHandler {
	if log == nil {
		log = logger.Nop()
	}
	return func(c *fiber.Ctx, err error) error {
		d := classify(err)
		if d.Code == "INTERNAL" {
			id := IdentityFrom(c)
			log.Error().
				Err(err).
				Str("method", c.Method()).
				Str("path", c.Path()).
				Int64("user_id", id.UserID).
				Int64("center_id", id.CenterID).
				Msg("error no controlado")
		}
		d.RedirectTo = errorPath
		if d.Code == "SESSION_EXPIRED" || d.Code == "SESSION_INVALID" {
			d = loginDenial(PathLogin, d.Code, d.Message)
		}
		return Deny(c, d)
	}
}

func classify(err error) Denial {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code := "HTTP_ERROR"
		switch fe.Code {
		case fiber.StatusBadRequest:
			code = "BAD_REQUEST"
		case fiber.StatusNotFound:
			code = "NOT_FOUND"
		}
		if fe.Code >= fiber.StatusInternalServerError {
			return Denial{Status: fiber.StatusInternalServerError, Code: "INTERNAL", Message: MsgInternal}
		}
		return Denial{Status: fe.Code, Code: code, Message: fe.Message}
	}
	for _, m := range errorMappings {
		if !errors.Is(err, m.target) {
			continue
		}
		msg := err.Error()
		if !m.expose {
			msg = fixedMessages[m.code]
		}
		return Denial{Status: m.status, Code: m.code, Message: msg}
	}
	return Denial{Status: fiber.StatusInternalServerError, Code: "INTERNAL", Message: MsgInternal}
}
