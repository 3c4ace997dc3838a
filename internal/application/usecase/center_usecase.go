package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/Hospital-api/internal/application/dto"
	"github.com/jhoicas/Hospital-api/internal/application/session"
	"github.com/jhoicas/Hospital-api/internal/domain"
	"github.com/jhoicas/Hospital-api/internal/domain/entity"
	"github.com/jhoicas/Hospital-api/internal/domain/repository"
)

const (
	MsgCenterNameTaken   = "Un centre avec ce nom existe déjà."
	MsgCenterSaved       = "Centre enregistré."
	MsgCenterDisabled    = "Centre désactivé."
	MsgCenterEnabled     = "Centre activé."
	MsgCenterBlocked     = "Impossible de désactiver ce centre : des données actives en dépendent."
	MsgCenterNeedConfirm = "Ce centre a des affectations ou des sessions actives. Confirmez la désactivation."
)

// CenterUseCase administración de centros hospitalarios.
type CenterUseCase struct {
	repos    repository.Repos
	uow      repository.UnitOfWork
	sessions repository.SessionStore
	now      func() time.Time
}

// NewCenterUseCase construye el caso de uso.
func NewCenterUseCase(repos repository.Repos, uow repository.UnitOfWork, sessions repository.SessionStore) *CenterUseCase {
	return &CenterUseCase{repos: repos, uow: uow, sessions: sessions, now: time.Now}
}

// Create alta con nombre único (sin distinguir mayúsculas).
func (uc *CenterUseCase) Create(ctx context.Context, actor session.Identity, in dto.CenterRequest) (*dto.OperationResult, error) {
	return uc.save(ctx, actor, 0, in)
}

// Update edición; el nombre sigue siendo único.
func (uc *CenterUseCase) Update(ctx context.Context, actor session.Identity, id int64, in dto.CenterRequest) (*dto.OperationResult, error) {
	if id <= 0 {
		return nil, domain.ErrInvalidInput
	}
	return uc.save(ctx, actor, id, in)
}

func (uc *CenterUseCase) save(ctx context.Context, actor session.Identity, id int64, in dto.CenterRequest) (*dto.OperationResult, error) {
	if err := required(map[string]string{"name": in.Name}); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	now := uc.now()
	var result *dto.OperationResult
	err := uc.uow.Do(ctx, func(r repository.Repos) error {
		if err := r.Locks.Lock(ctx, "center-name:"+strings.ToLower(name)); err != nil {
			return err
		}
		taken, err := r.Centers.NameExists(ctx, name, id)
		if err != nil {
			return err
		}
		if taken {
			result = dto.Refused(MsgCenterNameTaken)
			return nil
		}
		c := &entity.HospitalCenter{IsActive: true}
		if id > 0 {
			if c, err = r.Centers.GetForUpdate(ctx, id); err != nil {
				return err
			}
			if c == nil {
				return domain.ErrNotFound
			}
		}
		c.Name = name
		c.Address = strings.TrimSpace(in.Address)
		c.Phone = strings.TrimSpace(in.Phone)
		c.Email = entity.NormalizeEmail(in.Email)
		if id == 0 {
			c.Stamp(actor.UserID, now)
			err = r.Centers.Add(ctx, c)
		} else {
			c.Touch(actor.UserID, now)
			err = r.Centers.Update(ctx, c, repository.Omit("is_active"))
		}
		if err != nil {
			return err
		}
		result = dto.Done(c.ID, MsgCenterSaved)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// GetByID obtiene un centro.
func (uc *CenterUseCase) GetByID(ctx context.Context, id int64) (*dto.CenterResponse, error) {
	c, err := uc.repos.Centers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}
	return &dto.CenterResponse{
		ID: c.ID, Name: c.Name, Address: c.Address, Phone: c.Phone, Email: c.Email,
		IsActive: c.IsActive, CreatedAt: c.CreatedAt,
	}, nil
}

// Search listado paginado con personal y pacientes por centro.
func (uc *CenterUseCase) Search(ctx context.Context, term, activeFilter string, page dto.PageRequest) (*dto.CenterListResponse, error) {
	active, err := parseActive(activeFilter)
	if err != nil {
		return nil, err
	}
	p, err := uc.repos.Centers.Search(ctx, strings.TrimSpace(term), active, page.Page, page.Size)
	if err != nil {
		return nil, err
	}
	out := &dto.CenterListResponse{
		Items:        make([]dto.CenterSummaryResponse, 0, len(p.Items)),
		PageResponse: pageResponse(p.Page, p.Size, p.Total, p.TotalPages()),
	}
	for _, c := range p.Items {
		out.Items = append(out.Items, dto.CenterSummaryResponse{
			ID: c.ID, Name: c.Name, Address: c.Address, Phone: c.Phone, IsActive: c.IsActive,
			StaffCount: c.StaffCount, PatientCount: c.PatientCount,
		})
	}
	return out, nil
}

// Options centros para selectores.
func (uc *CenterUseCase) Options(ctx context.Context, activeOnly bool) ([]dto.CenterOption, error) {
	opts, err := uc.repos.Centers.Options(ctx, activeOnly)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CenterOption, 0, len(opts))
	for _, o := range opts {
		out = append(out, dto.CenterOption{ID: o.ID, Name: o.Name})
	}
	return out, nil
}

// Impact dependencias del centro, incluidas las sesiones abiertas en él.
func (uc *CenterUseCase) Impact(ctx context.Context, id int64) (*dto.CenterImpactResponse, error) {
	imp, err := uc.impact(ctx, uc.repos, id)
	if err != nil {
		return nil, err
	}
	return toImpactResponse(imp), nil
}

func (uc *CenterUseCase) impact(ctx context.Context, r repository.Repos, id int64) (*repository.CenterImpact, error) {
	imp, err := r.Centers.Impact(ctx, id)
	if err != nil {
		return nil, err
	}
	if imp.ActiveSessions, err = uc.sessions.CountActiveForCenter(ctx, id, uc.now()); err != nil {
		return nil, err
	}
	return imp, nil
}

// Deactivate desactiva un centro evaluando su impacto:
//   - dependencias duras (episodios abiertos, stock, ventas pendientes): rechazo
//   - blandas (asignaciones, pacientes, sesiones): advertencia salvo Confirm; al confirmar
//     se cierran las asignaciones y se expiran las sesiones del centro
func (uc *CenterUseCase) Deactivate(ctx context.Context, actor session.Identity, id int64, in dto.DeactivateCenterRequest) (*dto.OperationResult, error) {
	now := uc.now()
	var result *dto.OperationResult
	err := uc.uow.Do(ctx, func(r repository.Repos) error {
		c, err := r.Centers.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if c == nil {
			return domain.ErrNotFound
		}
		if !c.IsActive {
			result = dto.Done(id, MsgCenterDisabled)
			return nil
		}
		imp, err := uc.impact(ctx, r, id)
		if err != nil {
			return err
		}
		if imp.Blocking() {
			result = dto.Refused(MsgCenterBlocked)
			result.Warnings = blockingReasons(imp)
			return nil
		}
		if imp.HasWarnings() && !in.Confirm {
			result = dto.Refused(MsgCenterNeedConfirm)
			result.Warnings = warningReasons(imp)
			return nil
		}
		ended, err := r.Assignments.EndAllForCenter(ctx, id, actor.UserID, now)
		if err != nil {
			return err
		}
		c.IsActive = false
		c.Touch(actor.UserID, now)
		if err := r.Centers.Update(ctx, c); err != nil {
			return err
		}
		performer := actor.UserID
		if err := r.Audit.Record(ctx, &entity.AuditLog{
			Action:      entity.AuditCenterDisabled,
			EntityType:  entity.AuditEntityCenter,
			EntityID:    id,
			Details:     fmt.Sprintf("%s; %d affectations terminées", c.Name, ended),
			PerformedBy: &performer,
			CreatedAt:   now,
		}); err != nil {
			return err
		}
		result = dto.Done(id, MsgCenterDisabled)
		result.Warnings = warningReasons(imp)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if result.Success {
		if _, err := uc.sessions.ExpireForCenter(ctx, id, now); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// Activate reactiva un centro. Las asignaciones cerradas no se reabren.
func (uc *CenterUseCase) Activate(ctx context.Context, actor session.Identity, id int64) (*dto.OperationResult, error) {
	err := uc.uow.Do(ctx, func(r repository.Repos) error {
		c, err := r.Centers.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if c == nil {
			return domain.ErrNotFound
		}
		if c.IsActive {
			return nil
		}
		c.IsActive = true
		c.Touch(actor.UserID, uc.now())
		return r.Centers.Update(ctx, c)
	})
	if err != nil {
		return nil, err
	}
	return dto.Done(id, MsgCenterEnabled), nil
}

func blockingReasons(i *repository.CenterImpact) []string {
	var out []string
	if i.OpenEpisodes > 0 {
		out = append(out, fmt.Sprintf("%d épisode(s) de soins ouvert(s)", i.OpenEpisodes))
	}
	if i.StockOnHand > 0 {
		out = append(out, fmt.Sprintf("%d produit(s) en stock", i.StockOnHand))
	}
	if i.UnpaidSales > 0 {
		out = append(out, fmt.Sprintf("%d vente(s) non soldée(s)", i.UnpaidSales))
	}
	return out
}

func warningReasons(i *repository.CenterImpact) []string {
	var out []string
	if i.ActiveAssignments > 0 {
		out = append(out, fmt.Sprintf("%d affectation(s) active(s)", i.ActiveAssignments))
	}
	if i.ActivePatients > 0 {
		out = append(out, fmt.Sprintf("%d patient(s) actif(s)", i.ActivePatients))
	}
	if i.ActiveSessions > 0 {
		out = append(out, fmt.Sprintf("%d session(s) ouverte(s)", i.ActiveSessions))
	}
	return out
}

func toImpactResponse(i *repository.CenterImpact) *dto.CenterImpactResponse {
	return &dto.CenterImpactResponse{
		OpenEpisodes:      i.OpenEpisodes,
		StockOnHand:       i.StockOnHand,
		UnpaidSales:       i.UnpaidSales,
		ActiveAssignments: i.ActiveAssignments,
		ActivePatients:    i.ActivePatients,
		ActiveSessions:    i.ActiveSessions,
		Blocking:          i.Blocking(),
	}
}
