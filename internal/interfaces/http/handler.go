package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Hospital-api/internal/application/dto"
)

// invalidBody respuesta estándar para un cuerpo que no se puede interpretar.
func invalidBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}

// pathID lee un identificador positivo de la ruta.
func pathID(c *fiber.Ctx, name string) (int64, error) {
	v, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || v <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, name+" inválido")
	}
	return v, nil
}

// operation responde un resultado de operación: un rechazo esperado viaja con 200 y success=false.
func operation(c *fiber.Ctx, res *dto.OperationResult, createdStatus int) error {
	if res.Success && createdStatus != 0 {
		return c.Status(createdStatus).JSON(res)
	}
	return c.JSON(res)
}

// pageQuery paginación acotada desde la query string.
func pageQuery(c *fiber.Ctx) dto.PageRequest {
	size := c.QueryInt("size", 20)
	if size <= 0 {
		size = 20
	}
	if size > 100 {
		size = 100
	}
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	return dto.PageRequest{Page: page, Size: size}
}

// sendDocument entrega un documento generado como descarga.
func sendDocument(c *fiber.Ctx, doc *dto.Document) error {
	c.Set(fiber.HeaderContentType, doc.ContentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+doc.Filename+`"`)
	return c.Send(doc.Content)
}
