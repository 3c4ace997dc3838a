package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Hospital-api/internal/application/dto"
	"github.com/jhoicas/Hospital-api/internal/application/usecase"
)

// UserHandler administración de usuarios (SuperAdmin).
type UserHandler struct {
	uc *usecase.UserUseCase
}

// NewUserHandler construye el handler.
func NewUserHandler(uc *usecase.UserUseCase) *UserHandler {
	return &UserHandler{uc: uc}
}

// List godoc
// @Summary      Buscar usuarios
// @Tags         users
// @Produce      json
// @Param        q          query  string  false  "Nombre o email"
// @Param        center_id  query  int     false  "Centro"
// @Param        role       query  string  false  "Rol"
// @Param        active     query  string  false  "true|false"
// @Param        page       query  int     false  "Página"  default(1)
// @Param        size       query  int     false  "Tamaño"  default(20)
// @Success      200  {object}  dto.UserListResponse
// @Router       /admin/users [get]
func (h *UserHandler) List(c *fiber.Ctx) error {
	var in dto.UserSearchRequest
	if err := c.QueryParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	in.PageRequest = pageQuery(c)
	out, err := h.uc.Search(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener usuario
// @Tags         users
// @Produce      json
// @Param        id   path  int  true  "ID del usuario"
// @Success      200  {object}  dto.UserResponse
// @Failure      404  {object}  dto.FailureResponse
// @Router       /admin/users/{id} [get]
func (h *UserHandler) GetByID(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	out, err := h.uc.GetByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Create godoc
// @Summary      Crear usuario
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateUserRequest  true  "Datos del usuario"
// @Success      201   {object}  dto.OperationResult
// @Router       /admin/users [post]
func (h *UserHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateUserRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	res, err := h.uc.Create(c.UserContext(), IdentityFrom(c), in)
	if err != nil {
		return err
	}
	return operation(c, res, fiber.StatusCreated)
}

// Update godoc
// @Summary      Actualizar usuario
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        id    path  int  true  "ID del usuario"
// @Param        body  body  dto.UpdateUserRequest  true  "Datos personales"
// @Success      200   {object}  dto.OperationResult
// @Router       /admin/users/{id} [put]
func (h *UserHandler) Update(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var in dto.UpdateUserRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	res, err := h.uc.Update(c.UserContext(), IdentityFrom(c), id, in)
	if err != nil {
		return err
	}
	return operation(c, res, 0)
}

// Activate godoc
// @Summary      Activar usuario
// @Tags         users
// @Param        id   path  int  true  "ID del usuario"
// @Success      200  {object}  dto.OperationResult
// @Failure      403  {object}  dto.FailureResponse
// @Router       /admin/users/{id}/activate [post]
func (h *UserHandler) Activate(c *fiber.Ctx) error {
	return h.setActive(c, true)
}

// Deactivate godoc
// @Summary      Desactivar usuario (nunca el propio)
// @Tags         users
// @Param        id   path  int  true  "ID del usuario"
// @Success      200  {object}  dto.OperationResult
// @Failure      403  {object}  dto.FailureResponse
// @Router       /admin/users/{id}/deactivate [post]
func (h *UserHandler) Deactivate(c *fiber.Ctx) error {
	return h.setActive(c, false)
}

func (h *UserHandler) setActive(c *fiber.Ctx, active bool) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	res, err := h.uc.SetActive(c.UserContext(), IdentityFrom(c), id, active)
	if err != nil {
		return err
	}
	return operation(c, res, 0)
}

// Statistics godoc
// @Summary      Estadísticas de usuarios
// @Tags         users
// @Produce      json
// @Param        center_id  query  int  false  "Centro"
// @Success      200  {object}  dto.UserStatisticsResponse
// @Router       /admin/users/statistics [get]
func (h *UserHandler) Statistics(c *fiber.Ctx) error {
	var centerID *int64
	if v := int64(c.QueryInt("center_id", 0)); v > 0 {
		centerID = &v
	}
	out, err := h.uc.Statistics(c.UserContext(), centerID)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// CenterHandler administración de centros hospitalarios.
type CenterHandler struct {
	uc *usecase.CenterUseCase
}

// NewCenterHandler construye el handler.
func NewCenterHandler(uc *usecase.CenterUseCase) *CenterHandler {
	return &CenterHandler{uc: uc}
}

// List godoc
// @Summary      Buscar centros
// @Tags         centers
// @Produce      json
// @Param        q       query  string  false  "Nombre"
// @Param        active  query  string  false  "true|false"
// @Success      200  {object}  dto.CenterListResponse
// @Router       /admin/centers [get]
func (h *CenterHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.Search(c.UserContext(), c.Query("q"), c.Query("active"), pageQuery(c))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Options godoc
// @Summary      Centros seleccionables
// @Tags         centers
// @Produce      json
// @Success      200  {array}  dto.CenterOption
// @Router       /centers/options [get]
func (h *CenterHandler) Options(c *fiber.Ctx) error {
	out, err := h.uc.Options(c.UserContext(), c.QueryBool("active_only", true))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener centro
// @Tags         centers
// @Produce      json
// @Param        id   path  int  true  "ID del centro"
// @Success      200  {object}  dto.CenterResponse
// @Router       /centers/{id} [get]
func (h *CenterHandler) GetByID(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	out, err := h.uc.GetByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Create godoc
// @Summary      Crear centro
// @Tags         centers
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CenterRequest  true  "Datos del centro"
// @Success      201   {object}  dto.OperationResult
// @Router       /admin/centers [post]
func (h *CenterHandler) Create(c *fiber.Ctx) error {
	var in dto.CenterRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	res, err := h.uc.Create(c.UserContext(), IdentityFrom(c), in)
	if err != nil {
		return err
	}
	return operation(c, res, fiber.StatusCreated)
}

// Update godoc
// @Summary      Actualizar centro
// @Tags         centers
// @Accept       json
// @Produce      json
// @Param        id    path  int  true  "ID del centro"
// @Param        body  body  dto.CenterRequest  true  "Datos del centro"
// @Success      200   {object}  dto.OperationResult
// @Router       /admin/centers/{id} [put]
func (h *CenterHandler) Update(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var in dto.CenterRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	res, err := h.uc.Update(c.UserContext(), IdentityFrom(c), id, in)
	if err != nil {
		return err
	}
	return operation(c, res, 0)
}

// Impact godoc
// @Summary      Dependencias de un centro antes de desactivarlo
// @Tags         centers
// @Produce      json
// @Param        id   path  int  true  "ID del centro"
// @Success      200  {object}  dto.CenterImpactResponse
// @Router       /admin/centers/{id}/impact [get]
func (h *CenterHandler) Impact(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	out, err := h.uc.Impact(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Deactivate godoc
// @Summary      Desactivar centro
// @Tags         centers
// @Accept       json
// @Produce      json
// @Param        id    path  int  true  "ID del centro"
// @Param        body  body  dto.DeactivateCenterRequest  false  "confirm"
// @Success      200   {object}  dto.OperationResult
// @Router       /admin/centers/{id}/deactivate [post]
func (h *CenterHandler) Deactivate(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var in dto.DeactivateCenterRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return invalidBody(c)
		}
	}
	if c.QueryBool("confirm") {
		in.Confirm = true
	}
	res, err := h.uc.Deactivate(c.UserContext(), IdentityFrom(c), id, in)
	if err != nil {
		return err
	}
	return operation(c, res, 0)
}

// Activate godoc
// @Summary      Reactivar centro
// @Tags         centers
// @Param        id   path  int  true  "ID del centro"
// @Success      200  {object}  dto.OperationResult
// @Router       /admin/centers/{id}/activate [post]
func (h *CenterHandler) Activate(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	res, err := h.uc.Activate(c.UserContext(), IdentityFrom(c), id)
	if err != nil {
		return err
	}
	return operation(c, res, 0)
}

// AssignmentHandler asignaciones usuario-centro.
type AssignmentHandler struct {
	uc *usecase.AssignmentUseCase
}

// NewAssignmentHandler construye el handler.
func NewAssignmentHandler(uc *usecase.AssignmentUseCase) *AssignmentHandler {
	return &AssignmentHandler{uc: uc}
}

// Assign godoc
// @Summary      Asignar usuario a centro
// @Tags         assignments
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AssignmentRequest  true  "user_id, center_id, role"
// @Success      201   {object}  dto.OperationResult
// @Router       /admin/assignments [post]
func (h *AssignmentHandler) Assign(c *fiber.Ctx) error {
	var in dto.AssignmentRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	res, err := h.uc.Assign(c.UserContext(), IdentityFrom(c), in)
	if err != nil {
		return err
	}
	return operation(c, res, fiber.StatusCreated)
}

// End godoc
// @Summary      Terminar una asignación (idempotente)
// @Tags         assignments
// @Param        id   path  int  true  "ID de la asignación"
// @Success      200  {object}  dto.OperationResult
// @Router       /admin/assignments/{id}/end [post]
func (h *AssignmentHandler) End(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	res, err := h.uc.End(c.UserContext(), IdentityFrom(c), id)
	if err != nil {
		return err
	}
	return operation(c, res, 0)
}

// EndAll godoc
// @Summary      Terminar todas las asignaciones de un usuario
// @Tags         assignments
// @Param        id         path   int  true   "ID del usuario"
// @Param        center_id  query  int  false  "Solo en este centro"
// @Success      200  {object}  map[string]int64
// @Router       /admin/users/{id}/assignments/end [post]
func (h *AssignmentHandler) EndAll(c *fiber.Ctx) error {
	userID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var centerID *int64
	if v := int64(c.QueryInt("center_id", 0)); v > 0 {
		centerID = &v
	}
	n, err := h.uc.EndAll(c.UserContext(), IdentityFrom(c), userID, centerID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"ended": n})
}

// ListForUser godoc
// @Summary      Asignaciones de un usuario
// @Tags         assignments
// @Produce      json
// @Param        id   path  int  true  "ID del usuario"
// @Success      200  {array}  dto.AssignmentResponse
// @Router       /admin/users/{id}/assignments [get]
func (h *AssignmentHandler) ListForUser(c *fiber.Ctx) error {
	userID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	out, err := h.uc.ListForUser(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return c.JSON(out)
}
