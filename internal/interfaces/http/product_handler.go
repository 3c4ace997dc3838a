package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Hospital-api/internal/application/dto"
	"github.com/jhoicas/Hospital-api/internal/application/usecase"
)

// ProductHandler catálogo de productos y sus categorías.
type ProductHandler struct {
	products   *usecase.ProductUseCase
	categories *usecase.CategoryUseCase
}

// NewProductHandler construye el handler.
func NewProductHandler(products *usecase.ProductUseCase, categories *usecase.CategoryUseCase) *ProductHandler {
	return &ProductHandler{products: products, categories: categories}
}

// List godoc
// @Summary      Listar productos activos
// @Tags         products
// @Produce      json
// @Param        category_id  query  int  false  "Categoría"
// @Success      200  {array}  dto.ProductResponse
// @Router       /products [get]
func (h *ProductHandler) List(c *fiber.Ctx) error {
	out, err := h.products.List(c.UserContext(), int64(c.QueryInt("category_id", 0)))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Create godoc
// @Summary      Crear producto
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ProductRequest  true  "Datos del producto"
// @Success      201   {object}  dto.OperationResult
// @Failure      400   {object}  dto.FailureResponse
// @Router       /products [post]
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var in dto.ProductRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	res, err := h.products.Save(c.UserContext(), IdentityFrom(c), 0, in)
	if err != nil {
		return err
	}
	return operation(c, res, fiber.StatusCreated)
}

// Update godoc
// @Summary      Actualizar producto
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        id    path  int  true  "ID del producto"
// @Param        body  body  dto.ProductRequest  true  "Datos del producto"
// @Success      200   {object}  dto.OperationResult
// @Router       /products/{id} [put]
func (h *ProductHandler) Update(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var in dto.ProductRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	res, err := h.products.Save(c.UserContext(), IdentityFrom(c), id, in)
	if err != nil {
		return err
	}
	return operation(c, res, 0)
}

// Deactivate godoc
// @Summary      Baja lógica de un producto
// @Tags         products
// @Param        id   path  int  true  "ID del producto"
// @Success      204
// @Router       /products/{id} [delete]
func (h *ProductHandler) Deactivate(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.products.Deactivate(c.UserContext(), IdentityFrom(c), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListCategories godoc
// @Summary      Listar categorías
// @Tags         categories
// @Produce      json
// @Success      200  {array}  dto.CategoryResponse
// @Router       /categories [get]
func (h *ProductHandler) ListCategories(c *fiber.Ctx) error {
	out, err := h.categories.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// SaveCategory godoc
// @Summary      Crear (sin id) o renombrar una categoría
// @Tags         categories
// @Accept       json
// @Produce      json
// @Param        id    path  int  false  "ID de la categoría"
// @Param        body  body  dto.CategoryRequest  true  "Nombre y descripción"
// @Success      200   {object}  dto.OperationResult
// @Router       /categories/{id} [put]
func (h *ProductHandler) SaveCategory(c *fiber.Ctx) error {
	var id int64
	if c.Params("id") != "" {
		v, err := pathID(c, "id")
		if err != nil {
			return err
		}
		id = v
	}
	var in dto.CategoryRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	res, err := h.categories.Save(c.UserContext(), IdentityFrom(c), id, in)
	if err != nil {
		return err
	}
	status := 0
	if id == 0 {
		status = fiber.StatusCreated
	}
	return operation(c, res, status)
}

// DeleteCategory godoc
// @Summary      Eliminar categoría (rechazado si tiene productos)
// @Tags         categories
// @Param        id   path  int  true  "ID de la categoría"
// @Success      200  {object}  dto.OperationResult
// @Router       /categories/{id} [delete]
func (h *ProductHandler) DeleteCategory(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	res, err := h.categories.Delete(c.UserContext(), IdentityFrom(c), id)
	if err != nil {
		return err
	}
	return operation(c, res, 0)
}
