package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Hospital-api/internal/application/usecase"
)

// Rutas de página usadas como destino de redirecciones.
const (
	PathLogin     = "/auth/login"
	PathDashboard = "/dashboard"
	PathAdmin     = "/admin"
	PathStock     = "/stock"
	PathError     = "/error"
)

// DefaultPublicPrefixes rutas que no pasan por la validación de sesión.
var DefaultPublicPrefixes = []string{
	PathLogin,
	"/auth/change-password",
	"/static",
	PathError,
	"/health",
	"/docs",
}

// PageHandler páginas de aterrizaje: devuelven el modelo de vista con el mensaje pendiente.
type PageHandler struct {
	users   *usecase.UserUseCase
	appName string
}

// NewPageHandler construye el handler.
func NewPageHandler(users *usecase.UserUseCase, appName string) *PageHandler {
	return &PageHandler{users: users, appName: appName}
}

// Login página de login (pública).
func (h *PageHandler) Login(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"page": "login", "message": PopFlash(c)})
}

// Error página de error (pública).
func (h *PageHandler) Error(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"page": "error", "message": PopFlash(c)})
}

// Dashboard página inicial tras el login.
func (h *PageHandler) Dashboard(c *fiber.Ctx) error {
	id := IdentityFrom(c)
	return c.JSON(fiber.Map{
		"page":        "dashboard",
		"message":     PopFlash(c),
		"user_id":     id.UserID,
		"user_name":   id.UserName,
		"center_id":   id.CenterRef(),
		"center_name": id.CenterName,
		"role":        id.Role,
	})
}

// Admin página de administración (SuperAdmin): estadísticas globales de usuarios.
func (h *PageHandler) Admin(c *fiber.Ctx) error {
	stats, err := h.users.Statistics(c.UserContext(), nil)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"page": "admin", "message": PopFlash(c), "users": stats})
}

// Health estado del servicio.
func (h *PageHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok", "service": h.appName})
}
