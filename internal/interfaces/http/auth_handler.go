package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Hospital-api/internal/application/auth"
	"github.com/jhoicas/Hospital-api/internal/application/dto"
	"github.com/jhoicas/Hospital-api/internal/domain"
)

// CookieConfig cookie que transporta el sobre de la sesión.
type CookieConfig struct {
	Name   string
	Secure bool
}

// AuthHandler login, logout, cambio de contraseña y de centro.
type AuthHandler struct {
	uc     *auth.AuthUseCase
	cookie CookieConfig
}

// NewAuthHandler construye el handler de auth.
func NewAuthHandler(uc *auth.AuthUseCase, cookie CookieConfig) *AuthHandler {
	return &AuthHandler{uc: uc, cookie: cookie}
}

func clientOf(c *fiber.Ctx) auth.Client {
	return auth.Client{IP: c.IP(), UserAgent: c.Get(fiber.HeaderUserAgent)}
}

// Login godoc
// @Summary      Iniciar sesión
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.LoginRequest  true  "email, password, center_id opcional"
// @Success      200   {object}  dto.LoginResult
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var in dto.LoginRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if in.Email == "" || in.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "email y password son requeridos"})
	}
	out, err := h.uc.Login(c.UserContext(), in, clientOf(c))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUnauthorized):
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "Identifiants invalides."})
		case errors.Is(err, domain.ErrNoActiveCenter):
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "NO_CENTER", Message: "Aucune affectation active pour ce compte."})
		case errors.Is(err, domain.ErrForbidden):
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "Compte désactivé."})
		}
		return err
	}
	SetSessionCookie(c, h.cookie.Name, out.Token, out.ExpiresAt, h.cookie.Secure)
	return c.JSON(out)
}

// Logout godoc
// @Summary      Cerrar sesión
// @Tags         auth
// @Success      204
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if key := IdentityFrom(c).SessionKey; key != "" {
		if err := h.uc.Logout(c.UserContext(), key); err != nil {
			return err
		}
	}
	ClearSessionCookie(c, h.cookie.Name, h.cookie.Secure)
	if WantsJSON(c) {
		return c.SendStatus(fiber.StatusNoContent)
	}
	return c.Redirect(PathLogin, fiber.StatusFound)
}

// ChangePassword godoc
// @Summary      Cambiar la contraseña propia (ruta pública)
// @Tags         auth
// @Accept       json
// @Param        body  body  dto.ChangePasswordRequest  true  "email, contraseña actual y nueva"
// @Success      204
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Router       /auth/change-password [post]
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	var in dto.ChangePasswordRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if err := h.uc.ChangePassword(c.UserContext(), in, clientOf(c)); err != nil {
		if errors.Is(err, domain.ErrUnauthorized) || errors.Is(err, domain.ErrForbidden) {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "Identifiants invalides."})
		}
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// SwitchCenter godoc
// @Summary      Cambiar el centro actual de la sesión
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SwitchCenterRequest  true  "center_id"
// @Success      200   {object}  dto.IdentityResponse
// @Failure      403   {object}  dto.FailureResponse
// @Router       /auth/switch-center [post]
func (h *AuthHandler) SwitchCenter(c *fiber.Ctx) error {
	var in dto.SwitchCenterRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if in.CenterID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "center_id es requerido"})
	}
	out, err := h.uc.SwitchCenter(c.UserContext(), IdentityFrom(c), in.CenterID)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Me godoc
// @Summary      Identidad de la sesión actual
// @Tags         auth
// @Produce      json
// @Success      200  {object}  dto.IdentityResponse
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	id := IdentityFrom(c)
	return c.JSON(dto.IdentityResponse{
		UserID:     id.UserID,
		FullName:   id.UserName,
		CenterID:   id.CenterRef(),
		CenterName: id.CenterName,
		Role:       id.Role,
		ExpiresAt:  id.ExpiresAt,
	})
}

// ResetPassword godoc
// @Summary      Restablecer la contraseña de otro usuario (SuperAdmin)
// @Tags         users
// @Accept       json
// @Param        id    path  int  true  "ID del usuario"
// @Param        body  body  dto.ResetPasswordRequest  true  "nueva contraseña"
// @Success      204
// @Failure      403   {object}  dto.FailureResponse
// @Router       /admin/users/{id}/reset-password [post]
func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	userID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var in dto.ResetPasswordRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if err := h.uc.ResetPassword(c.UserContext(), IdentityFrom(c), userID, in, clientOf(c)); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
