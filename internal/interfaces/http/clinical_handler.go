package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Hospital-api/internal/application/dto"
	"github.com/jhoicas/Hospital-api/internal/application/usecase"
)

// PatientHandler pacientes del centro actual.
type PatientHandler struct {
	uc *usecase.PatientUseCase
}

// NewPatientHandler construye el handler.
func NewPatientHandler(uc *usecase.PatientUseCase) *PatientHandler {
	return &PatientHandler{uc: uc}
}

// Search godoc
// @Summary      Buscar pacientes (sin distinguir acentos ni mayúsculas)
// @Tags         patients
// @Produce      json
// @Param        q         query  string  false  "Nombre, número o teléfono"
// @Param        inactive  query  bool    false  "Incluir inactivos"
// @Success      200  {object}  dto.PatientListResponse
// @Router       /patients [get]
func (h *PatientHandler) Search(c *fiber.Ctx) error {
	out, err := h.uc.Search(c.UserContext(), IdentityFrom(c), c.Query("q"), c.QueryBool("inactive"), pageQuery(c))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener paciente
// @Tags         patients
// @Produce      json
// @Param        id   path  int  true  "ID del paciente"
// @Success      200  {object}  dto.PatientResponse
// @Router       /patients/{id} [get]
func (h *PatientHandler) GetByID(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	out, err := h.uc.GetByID(c.UserContext(), IdentityFrom(c), id)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Register godoc
// @Summary      Registrar paciente
// @Tags         patients
// @Accept       json
// @Produce      json
// @Param        body  body  dto.PatientRequest  true  "Datos del paciente"
// @Success      201   {object}  dto.PatientResponse
// @Router       /patients [post]
func (h *PatientHandler) Register(c *fiber.Ctx) error {
	var in dto.PatientRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.Register(c.UserContext(), IdentityFrom(c), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Update godoc
// @Summary      Actualizar paciente
// @Tags         patients
// @Accept       json
// @Produce      json
// @Param        id    path  int  true  "ID del paciente"
// @Param        body  body  dto.PatientRequest  true  "Datos del paciente"
// @Success      200   {object}  dto.PatientResponse
// @Router       /patients/{id} [put]
func (h *PatientHandler) Update(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var in dto.PatientRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.Update(c.UserContext(), IdentityFrom(c), id, in)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Deactivate godoc
// @Summary      Desactivar paciente
// @Tags         patients
// @Param        id   path  int  true  "ID del paciente"
// @Success      200  {object}  dto.OperationResult
// @Router       /patients/{id}/deactivate [post]
func (h *PatientHandler) Deactivate(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	res, err := h.uc.Deactivate(c.UserContext(), IdentityFrom(c), id)
	if err != nil {
		return err
	}
	return operation(c, res, 0)
}

// EpisodeHandler episodios de atención y sus actos.
type EpisodeHandler struct {
	uc *usecase.EpisodeUseCase
}

// NewEpisodeHandler construye el handler.
func NewEpisodeHandler(uc *usecase.EpisodeUseCase) *EpisodeHandler {
	return &EpisodeHandler{uc: uc}
}

// Open godoc
// @Summary      Abrir episodio de atención
// @Tags         episodes
// @Accept       json
// @Produce      json
// @Param        body  body  dto.EpisodeRequest  true  "Paciente y motivo"
// @Success      201   {object}  dto.EpisodeResponse
// @Router       /episodes [post]
func (h *EpisodeHandler) Open(c *fiber.Ctx) error {
	var in dto.EpisodeRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.Open(c.UserContext(), IdentityFrom(c), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener episodio
// @Tags         episodes
// @Produce      json
// @Param        id   path  int  true  "ID del episodio"
// @Success      200  {object}  dto.EpisodeResponse
// @Router       /episodes/{id} [get]
func (h *EpisodeHandler) GetByID(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	out, err := h.uc.GetByID(c.UserContext(), IdentityFrom(c), id)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// ListForPatient godoc
// @Summary      Episodios de un paciente
// @Tags         episodes
// @Produce      json
// @Param        id   path  int  true  "ID del paciente"
// @Success      200  {array}  dto.EpisodeResponse
// @Router       /patients/{id}/episodes [get]
func (h *EpisodeHandler) ListForPatient(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	out, err := h.uc.ListForPatient(c.UserContext(), IdentityFrom(c), id)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Close godoc
// @Summary      Cerrar episodio
// @Tags         episodes
// @Param        id   path  int  true  "ID del episodio"
// @Success      200  {object}  dto.EpisodeResponse
// @Router       /episodes/{id}/close [post]
func (h *EpisodeHandler) Close(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	out, err := h.uc.Close(c.UserContext(), IdentityFrom(c), id)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// AddDiagnosis godoc
// @Summary      Registrar diagnóstico
// @Tags         episodes
// @Accept       json
// @Param        id    path  int  true  "ID del episodio"
// @Param        body  body  dto.DiagnosisRequest  true  "Diagnóstico"
// @Success      201   {object}  map[string]int64
// @Router       /episodes/{id}/diagnoses [post]
func (h *EpisodeHandler) AddDiagnosis(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var in dto.DiagnosisRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	diagID, err := h.uc.AddDiagnosis(c.UserContext(), IdentityFrom(c), id, in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": diagID})
}

// AddService godoc
// @Summary      Añadir servicio facturable
// @Tags         episodes
// @Accept       json
// @Produce      json
// @Param        id    path  int  true  "ID del episodio"
// @Param        body  body  dto.CareServiceRequest  true  "Servicio"
// @Success      201   {object}  dto.EpisodeResponse
// @Router       /episodes/{id}/services [post]
func (h *EpisodeHandler) AddService(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var in dto.CareServiceRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.AddService(c.UserContext(), IdentityFrom(c), id, in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// RemoveService godoc
// @Summary      Quitar servicio
// @Tags         episodes
// @Param        id         path  int  true  "ID del episodio"
// @Param        serviceId  path  int  true  "ID del servicio"
// @Success      200  {object}  dto.EpisodeResponse
// @Router       /episodes/{id}/services/{serviceId} [delete]
func (h *EpisodeHandler) RemoveService(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	serviceID, err := pathID(c, "serviceId")
	if err != nil {
		return err
	}
	out, err := h.uc.RemoveService(c.UserContext(), IdentityFrom(c), id, serviceID)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// RequestExam godoc
// @Summary      Solicitar examen
// @Tags         episodes
// @Accept       json
// @Produce      json
// @Param        id    path  int  true  "ID del episodio"
// @Param        body  body  dto.ExamRequest  true  "Examen"
// @Success      201   {object}  dto.EpisodeResponse
// @Router       /episodes/{id}/exams [post]
func (h *EpisodeHandler) RequestExam(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var in dto.ExamRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.RequestExam(c.UserContext(), IdentityFrom(c), id, in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// RecordExamResult godoc
// @Summary      Registrar resultado de examen
// @Tags         episodes
// @Accept       json
// @Param        examId  path  int  true  "ID del examen"
// @Param        body    body  dto.ExamResultRequest  true  "Resultado"
// @Success      204
// @Router       /exams/{examId}/result [post]
func (h *EpisodeHandler) RecordExamResult(c *fiber.Ctx) error {
	examID, err := pathID(c, "examId")
	if err != nil {
		return err
	}
	var in dto.ExamResultRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if err := h.uc.RecordExamResult(c.UserContext(), IdentityFrom(c), examID, in); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Prescribe godoc
// @Summary      Emitir receta
// @Tags         episodes
// @Accept       json
// @Param        id    path  int  true  "ID del episodio"
// @Param        body  body  dto.PrescriptionRequest  true  "Receta"
// @Success      201   {object}  map[string]int64
// @Router       /episodes/{id}/prescriptions [post]
func (h *EpisodeHandler) Prescribe(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var in dto.PrescriptionRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	rxID, err := h.uc.Prescribe(c.UserContext(), IdentityFrom(c), id, in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": rxID})
}
