package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Hospital-api/internal/application/dto"
	"github.com/jhoicas/Hospital-api/internal/application/session"
	"github.com/jhoicas/Hospital-api/internal/domain"
	"github.com/jhoicas/Hospital-api/internal/domain/entity"
	"github.com/jhoicas/Hospital-api/internal/domain/query"
	"github.com/jhoicas/Hospital-api/internal/domain/repository"
)

// EpisodeUseCase episodios de cuidados y sus actos: diagnósticos, servicios, exámenes y recetas.
// Cada acto facturable recalcula los totales del episodio en la misma transacción:
// TotalCost = Σ servicios + Σ exámenes, RemainingBalance = TotalCost - AmountPaid.
type EpisodeUseCase struct {
	repos repository.Repos
	uow   repository.UnitOfWork
	now   func() time.Time
}

// NewEpisodeUseCase construye el caso de uso.
func NewEpisodeUseCase(repos repository.Repos, uow repository.UnitOfWork) *EpisodeUseCase {
	return &EpisodeUseCase{repos: repos, uow: uow, now: time.Now}
}

// Open abre un episodio para un paciente activo del centro actual.
func (uc *EpisodeUseCase) Open(ctx context.Context, id session.Identity, in dto.EpisodeRequest) (*dto.EpisodeResponse, error) {
	centerID, err := id.RequireCenter()
	if err != nil {
		return nil, err
	}
	if err := required(map[string]string{"reason": in.Reason}); err != nil {
		return nil, err
	}
	p, err := loadPatient(ctx, uc.repos, id, in.PatientID)
	if err != nil {
		return nil, err
	}
	if p.HospitalCenterID != centerID {
		return nil, domain.ErrForbidden
	}
	if !p.IsActive {
		return nil, fmt.Errorf("%w: paciente inactivo", domain.ErrConflict)
	}
	now := uc.now()
	ep := &entity.CareEpisode{
		PatientID:          p.ID,
		HospitalCenterID:   centerID,
		PrimaryCaregiverID: in.PrimaryCaregiverID,
		Reason:             strings.TrimSpace(in.Reason),
		Status:             entity.EpisodeOpen,
		StartDate:          now,
		TotalCost:          decimal.Zero,
		AmountPaid:         decimal.Zero,
		RemainingBalance:   decimal.Zero,
		Notes:              strings.TrimSpace(in.Notes),
	}
	ep.Stamp(id.UserID, now)
	if err := uc.repos.Episodes.Add(ctx, ep); err != nil {
		return nil, err
	}
	return toEpisodeResponse(ep), nil
}

// GetByID episodio accesible para la identidad.
func (uc *EpisodeUseCase) GetByID(ctx context.Context, id session.Identity, episodeID int64) (*dto.EpisodeResponse, error) {
	ep, err := loadEpisode(ctx, uc.repos, id, episodeID, false)
	if err != nil {
		return nil, err
	}
	return toEpisodeResponse(ep), nil
}

// ListForPatient episodios de un paciente, del más reciente al más antiguo.
func (uc *EpisodeUseCase) ListForPatient(ctx context.Context, id session.Identity, patientID int64) ([]dto.EpisodeResponse, error) {
	if _, err := loadPatient(ctx, uc.repos, id, patientID); err != nil {
		return nil, err
	}
	list, err := uc.repos.Episodes.List(ctx, query.Eq("patient_id", patientID), query.OrderBy("start_date", query.Desc))
	if err != nil {
		return nil, err
	}
	out := make([]dto.EpisodeResponse, 0, len(list))
	for _, ep := range list {
		out = append(out, *toEpisodeResponse(ep))
	}
	return out, nil
}

// Close cierra el episodio. El saldo pendiente se conserva para pagos posteriores.
func (uc *EpisodeUseCase) Close(ctx context.Context, id session.Identity, episodeID int64) (*dto.EpisodeResponse, error) {
	var out *entity.CareEpisode
	err := uc.uow.Do(ctx, func(r repository.Repos) error {
		ep, err := loadEpisode(ctx, r, id, episodeID, true)
		if err != nil {
			return err
		}
		now := uc.now()
		if err := ep.Close(now); err != nil {
			return err
		}
		ep.Touch(id.UserID, now)
		out = ep
		return r.Episodes.Update(ctx, ep)
	})
	if err != nil {
		return nil, err
	}
	return toEpisodeResponse(out), nil
}

// AddDiagnosis registra un diagnóstico en un episodio abierto.
func (uc *EpisodeUseCase) AddDiagnosis(ctx context.Context, id session.Identity, episodeID int64, in dto.DiagnosisRequest) (int64, error) {
	if err := required(map[string]string{"code": in.Code, "description": in.Description}); err != nil {
		return 0, err
	}
	ep, err := loadEpisode(ctx, uc.repos, id, episodeID, false)
	if err != nil {
		return 0, err
	}
	if ep.Status != entity.EpisodeOpen {
		return 0, domain.ErrConflict
	}
	now := uc.now()
	by := id.UserID
	d := &entity.Diagnosis{
		CareEpisodeID:    ep.ID,
		PatientID:        ep.PatientID,
		HospitalCenterID: ep.HospitalCenterID,
		Code:             strings.ToUpper(strings.TrimSpace(in.Code)),
		Description:      strings.TrimSpace(in.Description),
		Severity:         in.Severity,
		DiagnosedBy:      &by,
		DiagnosedAt:      now,
	}
	d.Stamp(id.UserID, now)
	if err := uc.repos.Diagnoses.Add(ctx, d); err != nil {
		return 0, err
	}
	return d.ID, nil
}

// AddService añade un servicio facturable.
func (uc *EpisodeUseCase) AddService(ctx context.Context, id session.Identity, episodeID int64, in dto.CareServiceRequest) (*dto.EpisodeResponse, error) {
	if err := required(map[string]string{"service_name": in.ServiceName}); err != nil {
		return nil, err
	}
	if in.Quantity <= 0 || in.UnitCost.IsNegative() {
		return nil, invalid("cantidad y coste deben ser positivos")
	}
	return uc.charge(ctx, id, episodeID, func(r repository.Repos, ep *entity.CareEpisode, now time.Time) error {
		by := id.UserID
		s := &entity.CareService{
			CareEpisodeID: ep.ID,
			ServiceName:   strings.TrimSpace(in.ServiceName),
			Quantity:      in.Quantity,
			UnitCost:      in.UnitCost,
			PerformedBy:   &by,
			ServiceDate:   now,
			Notes:         strings.TrimSpace(in.Notes),
		}
		s.Price()
		s.Stamp(id.UserID, now)
		return r.Services.Add(ctx, s)
	})
}

// RemoveService anula un servicio; el total no puede quedar por debajo de lo ya pagado.
func (uc *EpisodeUseCase) RemoveService(ctx context.Context, id session.Identity, episodeID, serviceID int64) (*dto.EpisodeResponse, error) {
	return uc.charge(ctx, id, episodeID, func(r repository.Repos, ep *entity.CareEpisode, _ time.Time) error {
		s, err := r.Services.GetByID(ctx, serviceID)
		if err != nil {
			return err
		}
		if s == nil || s.CareEpisodeID != ep.ID {
			return domain.ErrNotFound
		}
		return r.Services.Delete(ctx, serviceID, repository.HardDelete, id.UserID)
	})
}

// RequestExam solicita un examen; su coste se carga al episodio.
func (uc *EpisodeUseCase) RequestExam(ctx context.Context, id session.Identity, episodeID int64, in dto.ExamRequest) (*dto.EpisodeResponse, error) {
	if err := required(map[string]string{"exam_name": in.ExamName}); err != nil {
		return nil, err
	}
	if in.Cost.IsNegative() {
		return nil, invalid("coste negativo")
	}
	return uc.charge(ctx, id, episodeID, func(r repository.Repos, ep *entity.CareEpisode, now time.Time) error {
		x := &entity.Examination{
			CareEpisodeID:    ep.ID,
			PatientID:        ep.PatientID,
			HospitalCenterID: ep.HospitalCenterID,
			ExamName:         strings.TrimSpace(in.ExamName),
			ExamType:         strings.TrimSpace(in.ExamType),
			Cost:             in.Cost,
			Status:           entity.ExamRequested,
			RequestedAt:      now,
		}
		x.Stamp(id.UserID, now)
		return r.Exams.Add(ctx, x)
	})
}

// RecordExamResult carga el resultado de un examen solicitado.
func (uc *EpisodeUseCase) RecordExamResult(ctx context.Context, id session.Identity, examID int64, in dto.ExamResultRequest) error {
	if err := required(map[string]string{"result": in.Result}); err != nil {
		return err
	}
	return uc.uow.Do(ctx, func(r repository.Repos) error {
		x, err := r.Exams.GetForUpdate(ctx, examID)
		if err != nil {
			return err
		}
		if x == nil {
			return domain.ErrNotFound
		}
		if !id.CanAccessCenter(x.HospitalCenterID) {
			return domain.ErrForbidden
		}
		now := uc.now()
		if err := x.Complete(strings.TrimSpace(in.Result), strings.TrimSpace(in.Notes), id.UserID, now); err != nil {
			return err
		}
		x.Touch(id.UserID, now)
		return r.Exams.Update(ctx, x)
	})
}

// Prescribe emite una receta con sus líneas.
func (uc *EpisodeUseCase) Prescribe(ctx context.Context, id session.Identity, episodeID int64, in dto.PrescriptionRequest) (int64, error) {
	if len(in.Items) == 0 {
		return 0, invalid("la receta no tiene líneas")
	}
	for i, it := range in.Items {
		if strings.TrimSpace(it.MedicationName) == "" || strings.TrimSpace(it.Dosage) == "" {
			return 0, invalid("línea %d: medicamento y dosis obligatorios", i+1)
		}
		if it.Quantity < 0 {
			return 0, invalid("línea %d: cantidad negativa", i+1)
		}
	}
	var prescriptionID int64
	err := uc.uow.Do(ctx, func(r repository.Repos) error {
		ep, err := loadEpisode(ctx, r, id, episodeID, false)
		if err != nil {
			return err
		}
		if ep.Status != entity.EpisodeOpen {
			return domain.ErrConflict
		}
		now := uc.now()
		p := &entity.Prescription{
			CareEpisodeID:    ep.ID,
			PatientID:        ep.PatientID,
			HospitalCenterID: ep.HospitalCenterID,
			PrescribedBy:     id.UserID,
			PrescribedAt:     now,
			Instructions:     strings.TrimSpace(in.Instructions),
		}
		p.Stamp(id.UserID, now)
		if err := r.Prescriptions.Add(ctx, p); err != nil {
			return err
		}
		items := make([]*entity.PrescriptionItem, 0, len(in.Items))
		for _, it := range in.Items {
			items = append(items, &entity.PrescriptionItem{
				PrescriptionID: p.ID,
				ProductID:      it.ProductID,
				MedicationName: strings.TrimSpace(it.MedicationName),
				Dosage:         strings.TrimSpace(it.Dosage),
				Frequency:      strings.TrimSpace(it.Frequency),
				Duration:       strings.TrimSpace(it.Duration),
				Quantity:       it.Quantity,
				Instructions:   strings.TrimSpace(it.Instructions),
			})
		}
		if err := r.PrescriptionItems.AddBatch(ctx, items); err != nil {
			return err
		}
		prescriptionID = p.ID
		return nil
	})
	return prescriptionID, err
}

// charge ejecuta mutate sobre un episodio abierto bloqueado y recalcula sus totales.
func (uc *EpisodeUseCase) charge(ctx context.Context, id session.Identity, episodeID int64,
	mutate func(r repository.Repos, ep *entity.CareEpisode, now time.Time) error) (*dto.EpisodeResponse, error) {
	var out *entity.CareEpisode
	err := uc.uow.Do(ctx, func(r repository.Repos) error {
		ep, err := loadEpisode(ctx, r, id, episodeID, true)
		if err != nil {
			return err
		}
		if ep.Status != entity.EpisodeOpen {
			return domain.ErrConflict
		}
		now := uc.now()
		if err := mutate(r, ep, now); err != nil {
			return err
		}
		if err := retotal(ctx, r, ep); err != nil {
			return err
		}
		ep.Touch(id.UserID, now)
		out = ep
		return r.Episodes.Update(ctx, ep)
	})
	if err != nil {
		return nil, err
	}
	return toEpisodeResponse(out), nil
}

// retotal recalcula TotalCost desde servicios y exámenes.
func retotal(ctx context.Context, r repository.Repos, ep *entity.CareEpisode) error {
	services, err := r.Services.Sum(ctx, "total_cost", query.Eq("care_episode_id", ep.ID))
	if err != nil {
		return err
	}
	exams, err := r.Exams.Sum(ctx, "cost", query.Eq("care_episode_id", ep.ID))
	if err != nil {
		return err
	}
	total := services.Add(exams)
	if total.LessThan(ep.AmountPaid) {
		return fmt.Errorf("%w: el total quedaría por debajo de lo pagado", domain.ErrConflict)
	}
	ep.TotalCost = total
	ep.Rebalance()
	return nil
}

// loadEpisode episodio existente y accesible; forUpdate bloquea la fila.
func loadEpisode(ctx context.Context, r repository.Repos, id session.Identity, episodeID int64, forUpdate bool) (*entity.CareEpisode, error) {
	get := r.Episodes.GetByID
	if forUpdate {
		get = r.Episodes.GetForUpdate
	}
	ep, err := get(ctx, episodeID)
	if err != nil {
		return nil, err
	}
	if ep == nil {
		return nil, fmt.Errorf("%w: episodio %d", domain.ErrNotFound, episodeID)
	}
	if !id.CanAccessCenter(ep.HospitalCenterID) {
		return nil, domain.ErrForbidden
	}
	return ep, nil
}

func toEpisodeResponse(ep *entity.CareEpisode) *dto.EpisodeResponse {
	return &dto.EpisodeResponse{
		ID:               ep.ID,
		PatientID:        ep.PatientID,
		CenterID:         ep.HospitalCenterID,
		Reason:           ep.Reason,
		Status:           ep.Status,
		StartDate:        ep.StartDate,
		EndDate:          ep.EndDate,
		TotalCost:        ep.TotalCost,
		AmountPaid:       ep.AmountPaid,
		RemainingBalance: ep.RemainingBalance,
	}
}
