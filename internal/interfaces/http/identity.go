package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Hospital-api/internal/application/session"
)

// LocalIdentity clave de c.Locals con la identidad de la petición.
const LocalIdentity = "identity"

// SetIdentity guarda la identidad resuelta por el middleware de sesión.
func SetIdentity(c *fiber.Ctx, id session.Identity) {
	c.Locals(LocalIdentity, id)
}

// IdentityFrom devuelve la identidad de la petición; vacía (no autenticada) en rutas públicas.
func IdentityFrom(c *fiber.Ctx) session.Identity {
	id, _ := c.Locals(LocalIdentity).(session.Identity)
	return id
}

// GetUserID devuelve el UserID de la identidad (0 si no hay sesión).
func GetUserID(c *fiber.Ctx) int64 {
	return IdentityFrom(c).UserID
}

// GetCenterID devuelve el centro actual (0 si no hay ninguno seleccionado).
func GetCenterID(c *fiber.Ctx) int64 {
	return IdentityFrom(c).CenterID
}

// GetRole devuelve el rol de la sesión.
func GetRole(c *fiber.Ctx) string {
	return IdentityFrom(c).Role
}
