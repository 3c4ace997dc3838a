package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Hospital-api/internal/application/dto"
	"github.com/jhoicas/Hospital-api/internal/application/session"
	"github.com/jhoicas/Hospital-api/internal/domain"
	"github.com/jhoicas/Hospital-api/internal/domain/entity"
	"github.com/jhoicas/Hospital-api/internal/domain/repository"
)

const (
	MsgAlreadyAssigned = "Cet utilisateur est déjà affecté à ce centre."
	MsgAssigned        = "Affectation créée."
	MsgAssignmentEnded = "Affectation terminée."
	MsgAlreadyEnded    = "Affectation déjà terminée."
)

// AssignmentUseCase asignaciones usuario/centro/rol.
// Cerrar una asignación cierra las sesiones del usuario: la sesión guarda el rol.
type AssignmentUseCase struct {
	repos    repository.Repos
	uow      repository.UnitOfWork
	sessions repository.SessionStore
	now      func() time.Time
}

// NewAssignmentUseCase construye el caso de uso.
func NewAssignmentUseCase(repos repository.Repos, uow repository.UnitOfWork, sessions repository.SessionStore) *AssignmentUseCase {
	return &AssignmentUseCase{repos: repos, uow: uow, sessions: sessions, now: time.Now}
}

// Assign crea una asignación activa. Como máximo una activa por (usuario, centro).
func (uc *AssignmentUseCase) Assign(ctx context.Context, actor session.Identity, in dto.AssignmentRequest) (*dto.OperationResult, error) {
	if in.UserID <= 0 || in.CenterID <= 0 {
		return nil, invalid("usuario y centro obligatorios")
	}
	if !entity.ValidRole(in.Role) {
		return nil, invalid("rol %q", in.Role)
	}
	now := uc.now()
	start := now
	if in.StartDate != nil {
		start = *in.StartDate
	}
	if in.EndDate != nil && !in.EndDate.After(start) {
		return nil, invalid("la fecha de fin debe ser posterior al inicio")
	}

	var result *dto.OperationResult
	err := uc.uow.Do(ctx, func(r repository.Repos) error {
		if err := r.Locks.Lock(ctx, fmt.Sprintf("assignment:%d:%d", in.UserID, in.CenterID)); err != nil {
			return err
		}
		u, err := r.Users.GetByID(ctx, in.UserID)
		if err != nil {
			return err
		}
		if u == nil {
			return domain.ErrUserNotFound
		}
		c, err := r.Centers.GetByID(ctx, in.CenterID)
		if err != nil {
			return err
		}
		if c == nil || !c.IsActive {
			return fmt.Errorf("%w: centro %d", domain.ErrNotFound, in.CenterID)
		}
		existing, err := r.Assignments.FindActive(ctx, in.UserID, in.CenterID)
		if err != nil {
			return err
		}
		if existing != nil {
			result = dto.Refused(MsgAlreadyAssigned)
			return nil
		}
		a := &entity.UserCenterAssignment{
			UserID:           in.UserID,
			HospitalCenterID: in.CenterID,
			Role:             in.Role,
			IsActive:         true,
			StartDate:        start,
			EndDate:          in.EndDate,
		}
		a.Stamp(actor.UserID, now)
		if err := r.Assignments.Add(ctx, a); err != nil {
			return err
		}
		result = dto.Done(a.ID, MsgAssigned)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// End cierra una asignación. Repetirlo no cambia la fecha de fin.
func (uc *AssignmentUseCase) End(ctx context.Context, actor session.Identity, id int64) (*dto.OperationResult, error) {
	var (
		result *dto.OperationResult
		userID int64
	)
	now := uc.now()
	err := uc.uow.Do(ctx, func(r repository.Repos) error {
		a, err := r.Assignments.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if a == nil {
			return domain.ErrNotFound
		}
		if !a.End(actor.UserID, now) {
			result = dto.Done(id, MsgAlreadyEnded)
			return nil
		}
		if err := r.Assignments.Update(ctx, a); err != nil {
			return err
		}
		userID = a.UserID
		result = dto.Done(id, MsgAssignmentEnded)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if userID != 0 {
		if _, err := uc.sessions.ExpireForUser(ctx, userID, now); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// EndAll cierra todas las asignaciones activas del usuario (centerID nil = todos los centros).
func (uc *AssignmentUseCase) EndAll(ctx context.Context, actor session.Identity, userID int64, centerID *int64) (int64, error) {
	var n int64
	now := uc.now()
	err := uc.uow.Do(ctx, func(r repository.Repos) error {
		var err error
		n, err = r.Assignments.EndAll(ctx, userID, centerID, actor.UserID, now)
		return err
	})
	if err != nil || n == 0 {
		return n, err
	}
	if _, err := uc.sessions.ExpireForUser(ctx, userID, now); err != nil {
		return n, err
	}
	return n, nil
}

// ListForUser historial de asignaciones del usuario.
func (uc *AssignmentUseCase) ListForUser(ctx context.Context, userID int64) ([]dto.AssignmentResponse, error) {
	views, err := uc.repos.Assignments.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.AssignmentResponse, 0, len(views))
	for _, v := range views {
		out = append(out, dto.AssignmentResponse{
			ID:         v.ID,
			UserID:     v.UserID,
			UserName:   v.UserName,
			CenterID:   v.HospitalCenterID,
			CenterName: v.CenterName,
			Role:       v.Role,
			IsActive:   v.IsActive,
			StartDate:  v.StartDate,
			EndDate:    v.EndDate,
		})
	}
	return out, nil
}
