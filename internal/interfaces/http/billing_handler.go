package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Hospital-api/internal/application/analytics"
	"github.com/jhoicas/Hospital-api/internal/application/billing"
	"github.com/jhoicas/Hospital-api/internal/application/dto"
	"github.com/jhoicas/Hospital-api/internal/domain/entity"
)

// BillingHandler ventas, pagos y documentos imprimibles.
type BillingHandler struct {
	sales     *billing.SaleUseCase
	payments  *billing.PaymentUseCase
	documents *billing.DocumentUseCase
}

// NewBillingHandler construye el handler.
func NewBillingHandler(sales *billing.SaleUseCase, payments *billing.PaymentUseCase, documents *billing.DocumentUseCase) *BillingHandler {
	return &BillingHandler{sales: sales, payments: payments, documents: documents}
}

// CreateSale godoc
// @Summary      Registrar venta (descuenta stock en la misma transacción)
// @Tags         sales
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SaleRequest  true  "Venta"
// @Success      201   {object}  dto.SaleResponse
// @Failure      409   {object}  dto.FailureResponse
// @Router       /sales [post]
func (h *BillingHandler) CreateSale(c *fiber.Ctx) error {
	var in dto.SaleRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.sales.Create(c.UserContext(), IdentityFrom(c), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetSale godoc
// @Summary      Obtener venta
// @Tags         sales
// @Produce      json
// @Param        id   path  int  true  "ID de la venta"
// @Success      200  {object}  dto.SaleResponse
// @Router       /sales/{id} [get]
func (h *BillingHandler) GetSale(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	out, err := h.sales.GetByID(c.UserContext(), IdentityFrom(c), id)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// ListUnpaidSales godoc
// @Summary      Ventas con saldo pendiente
// @Tags         sales
// @Produce      json
// @Success      200  {array}  dto.SaleResponse
// @Router       /sales/unpaid [get]
func (h *BillingHandler) ListUnpaidSales(c *fiber.Ctx) error {
	out, err := h.sales.ListUnpaid(c.UserContext(), IdentityFrom(c))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// RecordPayment godoc
// @Summary      Registrar pago contra un episodio o una venta
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        body  body  dto.PaymentRequest  true  "Pago"
// @Success      201   {object}  dto.PaymentResponse
// @Failure      409   {object}  dto.FailureResponse
// @Router       /payments [post]
func (h *BillingHandler) RecordPayment(c *fiber.Ctx) error {
	var in dto.PaymentRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.payments.Record(c.UserContext(), IdentityFrom(c), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// EpisodePayments godoc
// @Summary      Pagos de un episodio
// @Tags         payments
// @Produce      json
// @Param        id   path  int  true  "ID del episodio"
// @Success      200  {array}  dto.PaymentResponse
// @Router       /episodes/{id}/payments [get]
func (h *BillingHandler) EpisodePayments(c *fiber.Ctx) error {
	return h.paymentsFor(c, entity.ReferenceCareEpisode)
}

// SalePayments godoc
// @Summary      Pagos de una venta
// @Tags         payments
// @Produce      json
// @Param        id   path  int  true  "ID de la venta"
// @Success      200  {array}  dto.PaymentResponse
// @Router       /sales/{id}/payments [get]
func (h *BillingHandler) SalePayments(c *fiber.Ctx) error {
	return h.paymentsFor(c, entity.ReferenceSale)
}

func (h *BillingHandler) paymentsFor(c *fiber.Ctx, refType string) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	out, err := h.payments.ListFor(c.UserContext(), IdentityFrom(c), refType, id)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Receipt godoc
// @Summary      Recibo de pago en PDF
// @Tags         documents
// @Produce      application/pdf
// @Param        id   path  int  true  "ID del pago"
// @Success      200
// @Router       /documents/receipts/{id} [get]
func (h *BillingHandler) Receipt(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	doc, err := h.documents.Receipt(c.UserContext(), IdentityFrom(c), id)
	if err != nil {
		return err
	}
	return sendDocument(c, doc)
}

// Prescription godoc
// @Summary      Receta en PDF
// @Tags         documents
// @Produce      application/pdf
// @Param        id   path  int  true  "ID de la receta"
// @Success      200
// @Router       /documents/prescriptions/{id} [get]
func (h *BillingHandler) Prescription(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	doc, err := h.documents.Prescription(c.UserContext(), IdentityFrom(c), id)
	if err != nil {
		return err
	}
	return sendDocument(c, doc)
}

// ExamResult godoc
// @Summary      Resultado de examen en PDF
// @Tags         documents
// @Produce      application/pdf
// @Param        id   path  int  true  "ID del examen"
// @Success      200
// @Router       /documents/exams/{id} [get]
func (h *BillingHandler) ExamResult(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	doc, err := h.documents.ExamResult(c.UserContext(), IdentityFrom(c), id)
	if err != nil {
		return err
	}
	return sendDocument(c, doc)
}

// StatisticsHandler informe de actividad por centro.
type StatisticsHandler struct {
	uc *analytics.StatisticsUseCase
}

// NewStatisticsHandler construye el handler.
func NewStatisticsHandler(uc *analytics.StatisticsUseCase) *StatisticsHandler {
	return &StatisticsHandler{uc: uc}
}

// Get godoc
// @Summary      Estadísticas del periodo (mes en curso por defecto)
// @Tags         statistics
// @Produce      json
// @Param        from       query  string  false  "2006-01-02"
// @Param        to         query  string  false  "2006-01-02"
// @Param        center_id  query  int     false  "Centro (0 = todos, solo SuperAdmin)"
// @Success      200  {object}  dto.StatisticsResponse
// @Router       /statistics [get]
func (h *StatisticsHandler) Get(c *fiber.Ctx) error {
	var in dto.StatisticsRequest
	if err := c.QueryParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	out, err := h.uc.Get(c.UserContext(), IdentityFrom(c), in)
	if err != nil {
		return err
	}
	return c.JSON(out)
}
