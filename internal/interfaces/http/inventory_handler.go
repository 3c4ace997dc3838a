package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Hospital-api/internal/application/dto"
	"github.com/jhoicas/Hospital-api/internal/application/inventory"
)

// InventoryHandler stock del centro actual: movimientos, traslados, reposición y exportación.
type InventoryHandler struct {
	movements *inventory.MovementUseCase
	stock     *inventory.StockUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(movements *inventory.MovementUseCase, stock *inventory.StockUseCase) *InventoryHandler {
	return &InventoryHandler{movements: movements, stock: stock}
}

// Lines godoc
// @Summary      Inventario del centro actual
// @Tags         stock
// @Produce      json
// @Success      200  {array}  dto.StockLineResponse
// @Router       /stock [get]
func (h *InventoryHandler) Lines(c *fiber.Ctx) error {
	out, err := h.stock.Lines(c.UserContext(), IdentityFrom(c))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// RegisterMovement godoc
// @Summary      Registrar entrada, salida o ajuste
// @Tags         stock
// @Accept       json
// @Produce      json
// @Param        body  body  dto.MovementRequest  true  "Movimiento"
// @Success      201   {object}  map[string]int64
// @Failure      409   {object}  dto.FailureResponse
// @Router       /stock/movements [post]
func (h *InventoryHandler) RegisterMovement(c *fiber.Ctx) error {
	var in dto.MovementRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if in.ProductID <= 0 || in.MovementType == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "product_id y movement_type son requeridos"})
	}
	id, err := h.movements.Register(c.UserContext(), IdentityFrom(c), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": id})
}

// Transfer godoc
// @Summary      Trasladar stock a otro centro
// @Tags         stock
// @Accept       json
// @Produce      json
// @Param        body  body  dto.TransferRequest  true  "Traslado"
// @Success      201   {object}  map[string]int64
// @Failure      409   {object}  dto.FailureResponse
// @Router       /stock/transfers [post]
func (h *InventoryHandler) Transfer(c *fiber.Ctx) error {
	var in dto.TransferRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	id, err := h.movements.Transfer(c.UserContext(), IdentityFrom(c), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": id})
}

// Replenishment godoc
// @Summary      Sugerencias de reposición
// @Tags         stock
// @Produce      json
// @Success      200  {array}  dto.ReplenishmentLine
// @Router       /stock/replenishment [get]
func (h *InventoryHandler) Replenishment(c *fiber.Ctx) error {
	out, err := h.stock.Replenishment(c.UserContext(), IdentityFrom(c))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Export godoc
// @Summary      Exportar el inventario a xlsx
// @Tags         stock
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success      200
// @Router       /stock/export [get]
func (h *InventoryHandler) Export(c *fiber.Ctx) error {
	doc, err := h.stock.Export(c.UserContext(), IdentityFrom(c))
	if err != nil {
		return err
	}
	return sendDocument(c, doc)
}

// Reconcile godoc
// @Summary      Comparar el stock guardado con la suma de movimientos
// @Tags         stock
// @Produce      json
// @Param        product_id  query  int  true  "Producto"
// @Param        center_id   query  int  true  "Centro"
// @Success      200  {object}  map[string]interface{}
// @Router       /stock/reconcile [get]
func (h *InventoryHandler) Reconcile(c *fiber.Ctx) error {
	productID := int64(c.QueryInt("product_id", 0))
	centerID := int64(c.QueryInt("center_id", 0))
	if productID <= 0 || centerID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "product_id y center_id son requeridos"})
	}
	stored, computed, err := h.movements.Reconcile(c.UserContext(), productID, centerID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"product_id": productID,
		"center_id":  centerID,
		"stored":     stored,
		"computed":   computed,
		"consistent": stored.Equal(computed),
	})
}
