package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Hospital-api/internal/application/dto"
	"github.com/jhoicas/Hospital-api/internal/application/session"
	"github.com/jhoicas/Hospital-api/internal/domain"
	"github.com/jhoicas/Hospital-api/internal/domain/entity"
	"github.com/jhoicas/Hospital-api/internal/domain/query"
	"github.com/jhoicas/Hospital-api/internal/domain/repository"
	"github.com/jhoicas/Hospital-api/pkg/textnorm"
)

const (
	MsgPatientSaved       = "Patient enregistré."
	MsgPatientHasEpisodes = "Impossible de désactiver un patient avec un épisode de soins ouvert."
	MsgPatientDisabled    = "Patient désactivé."
)

// PatientUseCase registro de pacientes del centro actual.
type PatientUseCase struct {
	repos repository.Repos
	uow   repository.UnitOfWork
	now   func() time.Time
}

// NewPatientUseCase construye el caso de uso.
func NewPatientUseCase(repos repository.Repos, uow repository.UnitOfWork) *PatientUseCase {
	return &PatientUseCase{repos: repos, uow: uow, now: time.Now}
}

// Register alta en el centro actual con número de paciente generado.
func (uc *PatientUseCase) Register(ctx context.Context, id session.Identity, in dto.PatientRequest) (*dto.PatientResponse, error) {
	centerID, err := id.RequireCenter()
	if err != nil {
		return nil, err
	}
	if err := validatePatient(in); err != nil {
		return nil, err
	}
	now := uc.now()
	p := &entity.Patient{
		HospitalCenterID: centerID,
		PatientNumber:    patientNumber(now),
		IsActive:         true,
	}
	applyPatient(p, in)
	p.Stamp(id.UserID, now)
	if err := uc.repos.Patients.Add(ctx, p); err != nil {
		return nil, err
	}
	return toPatientResponse(p, now), nil
}

// Update edición de los datos del paciente; el número y el centro no cambian.
func (uc *PatientUseCase) Update(ctx context.Context, id session.Identity, patientID int64, in dto.PatientRequest) (*dto.PatientResponse, error) {
	if err := validatePatient(in); err != nil {
		return nil, err
	}
	p, err := uc.load(ctx, id, patientID)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	applyPatient(p, in)
	p.Touch(id.UserID, now)
	if err := uc.repos.Patients.Update(ctx, p, repository.Omit("hospital_center_id", "patient_number", "is_active")); err != nil {
		return nil, err
	}
	return toPatientResponse(p, now), nil
}

// GetByID ficha de un paciente accesible para la identidad.
func (uc *PatientUseCase) GetByID(ctx context.Context, id session.Identity, patientID int64) (*dto.PatientResponse, error) {
	p, err := uc.load(ctx, id, patientID)
	if err != nil {
		return nil, err
	}
	return toPatientResponse(p, uc.now()), nil
}

// Search búsqueda por nombre o número sin distinguir acentos ni mayúsculas, en el centro actual.
func (uc *PatientUseCase) Search(ctx context.Context, id session.Identity, term string, includeInactive bool, page dto.PageRequest) (*dto.PatientListResponse, error) {
	centerID, err := id.RequireCenter()
	if err != nil {
		return nil, err
	}
	key := textnorm.Fold(term)
	p, err := uc.repos.Patients.Page(ctx, page.Page, page.Size,
		query.Eq("hospital_center_id", centerID),
		query.When(!includeInactive, query.Eq("is_active", true)),
		query.When(key != "", query.Like("search_name", "%"+key+"%")),
		query.OrderBy("last_name", query.Asc),
		query.OrderBy("first_name", query.Asc),
	)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	out := &dto.PatientListResponse{
		Items:        make([]dto.PatientResponse, 0, len(p.Items)),
		PageResponse: pageResponse(p.Page, p.Size, p.Total, p.TotalPages()),
	}
	for _, it := range p.Items {
		out.Items = append(out.Items, *toPatientResponse(it, now))
	}
	return out, nil
}

// Deactivate baja lógica; se rechaza si el paciente tiene un episodio abierto.
func (uc *PatientUseCase) Deactivate(ctx context.Context, id session.Identity, patientID int64) (*dto.OperationResult, error) {
	if _, err := uc.load(ctx, id, patientID); err != nil {
		return nil, err
	}
	var result *dto.OperationResult
	err := uc.uow.Do(ctx, func(r repository.Repos) error {
		open, err := r.Episodes.Exists(ctx, query.Eq("patient_id", patientID), query.Eq("status", entity.EpisodeOpen))
		if err != nil {
			return err
		}
		if open {
			result = dto.Refused(MsgPatientHasEpisodes)
			return nil
		}
		if err := r.Patients.Delete(ctx, patientID, repository.SoftDelete, id.UserID); err != nil {
			return err
		}
		result = dto.Done(patientID, MsgPatientDisabled)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (uc *PatientUseCase) load(ctx context.Context, id session.Identity, patientID int64) (*entity.Patient, error) {
	return loadPatient(ctx, uc.repos, id, patientID)
}

// loadPatient paciente existente y accesible desde el centro de la identidad.
func loadPatient(ctx context.Context, r repository.Repos, id session.Identity, patientID int64) (*entity.Patient, error) {
	p, err := r.Patients.GetByID(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("%w: paciente %d", domain.ErrNotFound, patientID)
	}
	if !id.CanAccessCenter(p.HospitalCenterID) {
		return nil, domain.ErrForbidden
	}
	return p, nil
}

func validatePatient(in dto.PatientRequest) error {
	if err := required(map[string]string{"first_name": in.FirstName, "last_name": in.LastName}); err != nil {
		return err
	}
	switch in.Gender {
	case "", "M", "F", "O":
	default:
		return invalid("sexo %q", in.Gender)
	}
	return nil
}

func applyPatient(p *entity.Patient, in dto.PatientRequest) {
	p.FirstName = textnorm.Title(in.FirstName)
	p.LastName = textnorm.Title(in.LastName)
	p.DateOfBirth = in.DateOfBirth
	p.Gender = in.Gender
	p.Phone = strings.TrimSpace(in.Phone)
	p.Email = entity.NormalizeEmail(in.Email)
	p.Address = strings.TrimSpace(in.Address)
	p.EmergencyContact = strings.TrimSpace(in.EmergencyContact)
	p.BloodType = strings.ToUpper(strings.TrimSpace(in.BloodType))
	p.Allergies = strings.TrimSpace(in.Allergies)
	p.SearchName = textnorm.Fold(p.FirstName + " " + p.LastName + " " + p.PatientNumber)
}

// patientNumber P-AAAAMMDD-XXXXXX.
func patientNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return "P-" + now.Format("20060102") + "-" + suffix
}

func toPatientResponse(p *entity.Patient, now time.Time) *dto.PatientResponse {
	out := &dto.PatientResponse{
		ID:               p.ID,
		CenterID:         p.HospitalCenterID,
		PatientNumber:    p.PatientNumber,
		FirstName:        p.FirstName,
		LastName:         p.LastName,
		FullName:         p.FullName(),
		DateOfBirth:      p.DateOfBirth,
		Gender:           p.Gender,
		Phone:            p.Phone,
		Email:            p.Email,
		Address:          p.Address,
		EmergencyContact: p.EmergencyContact,
		BloodType:        p.BloodType,
		Allergies:        p.Allergies,
		IsActive:         p.IsActive,
	}
	if age := p.Age(now); age >= 0 {
		out.Age = age
	}
	return out
}
