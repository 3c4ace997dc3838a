package http

import (
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Hospital-api/internal/application/dto"
)

// FlashCookie cookie de un solo uso con el mensaje a mostrar tras una redirección.
const FlashCookie = "flash_error"

// Denial rechazo tipado de un guard o del middleware de sesión.
// Una sola respuesta, dos formas: JSON para AJAX/API, redirección con mensaje para páginas.
// Los fallos de autenticación (Login) redirigen al login en ambos casos.
type Denial struct {
	Status     int
	Code       string
	Message    string
	RedirectTo string
	Login      bool
}

// loginDenial sesión ausente, vencida o inválida: siempre redirección al login.
func loginDenial(loginPath, code, msg string) Denial {
	return Denial{Code: code, Message: msg, RedirectTo: loginPath, Login: true}
}

// WantsJSON la petición espera una respuesta estructurada (XHR, Accept o Content-Type JSON).
func WantsJSON(c *fiber.Ctx) bool {
	if strings.EqualFold(c.Get(fiber.HeaderXRequestedWith), "XMLHttpRequest") {
		return true
	}
	if strings.Contains(strings.ToLower(c.Get(fiber.HeaderAccept)), fiber.MIMEApplicationJSON) {
		return true
	}
	return strings.HasPrefix(strings.ToLower(c.Get(fiber.HeaderContentType)), fiber.MIMEApplicationJSON)
}

// Deny responde al rechazo según la forma de la petición.
func Deny(c *fiber.Ctx, d Denial) error {
	if WantsJSON(c) && !d.Login {
		return c.Status(d.Status).JSON(dto.FailureResponse{Success: false, Code: d.Code, Message: d.Message})
	}
	if d.Message != "" {
		setFlash(c, d.Message)
	}
	return c.Redirect(d.RedirectTo, fiber.StatusFound)
}

// PopFlash lee y borra el mensaje pendiente.
func PopFlash(c *fiber.Ctx) string {
	raw := c.Cookies(FlashCookie)
	if raw == "" {
		return ""
	}
	c.ClearCookie(FlashCookie)
	msg, err := url.QueryUnescape(raw)
	if err != nil {
		return ""
	}
	return msg
}

func setFlash(c *fiber.Ctx, msg string) {
	c.Cookie(&fiber.Cookie{
		Name:     FlashCookie,
		Value:    url.QueryEscape(msg),
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Expires:  time.Now().Add(time.Minute),
	})
}
