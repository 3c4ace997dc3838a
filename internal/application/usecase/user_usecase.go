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

// Mensajes de rechazo visibles para el usuario.
const (
	MsgEmailTaken   = "Un utilisateur avec cet email existe déjà."
	MsgSelfAction   = "Vous ne pouvez pas effectuer cette action sur votre propre compte."
	MsgUserCreated  = "Utilisateur créé."
	MsgUserUpdated  = "Utilisateur mis à jour."
	MsgUserEnabled  = "Utilisateur activé."
	MsgUserDisabled = "Utilisateur désactivé."
)

// PasswordHasher hashea contraseñas nuevas con la política de auth.
type PasswordHasher interface {
	HashPassword(password string) (string, error)
}

// UserUseCase administración de usuarios.
type UserUseCase struct {
	repos    repository.Repos
	uow      repository.UnitOfWork
	sessions repository.SessionStore
	hasher   PasswordHasher
	now      func() time.Time
}

// NewUserUseCase construye el caso de uso.
func NewUserUseCase(repos repository.Repos, uow repository.UnitOfWork, sessions repository.SessionStore, hasher PasswordHasher) *UserUseCase {
	return &UserUseCase{repos: repos, uow: uow, sessions: sessions, hasher: hasher, now: time.Now}
}

// Create da de alta un usuario y, si se indica centro y rol, su primera asignación.
// La unicidad del email se comprueba bajo un bloqueo en la misma transacción que el insert.
func (uc *UserUseCase) Create(ctx context.Context, actor session.Identity, in dto.CreateUserRequest) (*dto.OperationResult, error) {
	if err := required(map[string]string{"first_name": in.FirstName, "last_name": in.LastName, "email": in.Email}); err != nil {
		return nil, err
	}
	email := entity.NormalizeEmail(in.Email)
	if !strings.Contains(email, "@") {
		return nil, invalid("email %q", in.Email)
	}
	if in.CenterID > 0 && !entity.ValidRole(in.Role) {
		return nil, invalid("rol %q", in.Role)
	}
	hash, err := uc.hasher.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	var result *dto.OperationResult
	err = uc.uow.Do(ctx, func(r repository.Repos) error {
		if err := r.Locks.Lock(ctx, "user-email:"+email); err != nil {
			return err
		}
		taken, err := r.Users.EmailExists(ctx, email, 0)
		if err != nil {
			return err
		}
		if taken {
			result = dto.Refused(MsgEmailTaken)
			return nil
		}
		u := &entity.User{
			FirstName:          strings.TrimSpace(in.FirstName),
			LastName:           strings.TrimSpace(in.LastName),
			Email:              email,
			Phone:              strings.TrimSpace(in.Phone),
			PasswordHash:       hash,
			IsActive:           true,
			MustChangePassword: true,
		}
		u.Stamp(actor.UserID, now)
		if err := r.Users.Add(ctx, u); err != nil {
			return err
		}
		if in.CenterID > 0 {
			center, err := r.Centers.GetByID(ctx, in.CenterID)
			if err != nil {
				return err
			}
			if center == nil || !center.IsActive {
				return fmt.Errorf("%w: centro %d", domain.ErrNotFound, in.CenterID)
			}
			a := &entity.UserCenterAssignment{
				UserID:           u.ID,
				HospitalCenterID: center.ID,
				Role:             in.Role,
				IsActive:         true,
				StartDate:        now,
			}
			a.Stamp(actor.UserID, now)
			if err := r.Assignments.Add(ctx, a); err != nil {
				return err
			}
		}
		result = dto.Done(u.ID, MsgUserCreated)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// GetByID obtiene un usuario por ID.
func (uc *UserUseCase) GetByID(ctx context.Context, id int64) (*dto.UserResponse, error) {
	u, err := uc.repos.Users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domain.ErrUserNotFound
	}
	return toUserResponse(u), nil
}

// Update modifica los datos personales. Contraseña, estado y sobre de creación no se tocan.
func (uc *UserUseCase) Update(ctx context.Context, actor session.Identity, id int64, in dto.UpdateUserRequest) (*dto.OperationResult, error) {
	if err := required(map[string]string{"first_name": in.FirstName, "last_name": in.LastName, "email": in.Email}); err != nil {
		return nil, err
	}
	email := entity.NormalizeEmail(in.Email)
	var result *dto.OperationResult
	err := uc.uow.Do(ctx, func(r repository.Repos) error {
		u, err := r.Users.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if u == nil {
			return domain.ErrUserNotFound
		}
		if email != u.Email {
			if err := r.Locks.Lock(ctx, "user-email:"+email); err != nil {
				return err
			}
			taken, err := r.Users.EmailExists(ctx, email, id)
			if err != nil {
				return err
			}
			if taken {
				result = dto.Refused(MsgEmailTaken)
				return nil
			}
		}
		u.FirstName = strings.TrimSpace(in.FirstName)
		u.LastName = strings.TrimSpace(in.LastName)
		u.Email = email
		u.Phone = strings.TrimSpace(in.Phone)
		u.Touch(actor.UserID, uc.now())
		if err := r.Users.Update(ctx, u, repository.Omit("password_hash", "must_change_password", "is_active", "last_login_at")); err != nil {
			return err
		}
		result = dto.Done(u.ID, MsgUserUpdated)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// SetActive activa o desactiva una cuenta. Un usuario no puede desactivarse a sí mismo;
// al desactivar se cierran sus sesiones.
func (uc *UserUseCase) SetActive(ctx context.Context, actor session.Identity, id int64, active bool) (*dto.OperationResult, error) {
	if actor.UserID == id {
		return dto.Refused(MsgSelfAction), nil
	}
	now := uc.now()
	action, msg := entity.AuditUserActivated, MsgUserEnabled
	if !active {
		action, msg = entity.AuditUserDeactivated, MsgUserDisabled
	}
	err := uc.uow.Do(ctx, func(r repository.Repos) error {
		u, err := r.Users.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if u == nil {
			return domain.ErrUserNotFound
		}
		if u.IsActive == active {
			return nil
		}
		u.IsActive = active
		u.Touch(actor.UserID, now)
		if err := r.Users.Update(ctx, u); err != nil {
			return err
		}
		performer := actor.UserID
		return r.Audit.Record(ctx, &entity.AuditLog{
			Action:      action,
			EntityType:  entity.AuditEntityUser,
			EntityID:    id,
			Details:     u.Email,
			PerformedBy: &performer,
			CreatedAt:   now,
		})
	})
	if err != nil {
		return nil, err
	}
	if !active {
		if _, err := uc.sessions.ExpireForUser(ctx, id, now); err != nil {
			return nil, err
		}
	}
	return dto.Done(id, msg), nil
}

// Search listado paginado con filtros de texto, centro, rol y estado.
func (uc *UserUseCase) Search(ctx context.Context, in dto.UserSearchRequest) (*dto.UserListResponse, error) {
	active, err := parseActive(in.Active)
	if err != nil {
		return nil, err
	}
	if in.Role != "" && !entity.ValidRole(in.Role) {
		return nil, invalid("rol %q", in.Role)
	}
	page, err := uc.repos.Users.Search(ctx, repository.UserSearch{
		Term:     strings.TrimSpace(in.Term),
		CenterID: in.CenterID,
		Role:     in.Role,
		Active:   active,
		Page:     in.Page,
		Size:     in.Size,
	})
	if err != nil {
		return nil, err
	}
	out := &dto.UserListResponse{
		Items:        make([]dto.UserSummaryResponse, 0, len(page.Items)),
		PageResponse: pageResponse(page.Page, page.Size, page.Total, page.TotalPages()),
	}
	for _, s := range page.Items {
		out.Items = append(out.Items, dto.UserSummaryResponse{
			ID:                 s.ID,
			FullName:           s.FullName,
			Email:              s.Email,
			Phone:              s.Phone,
			IsActive:           s.IsActive,
			MustChangePassword: s.MustChangePassword,
			LastLoginAt:        s.LastLoginAt,
			Centers:            s.Centers,
			Roles:              s.Roles,
		})
	}
	return out, nil
}

// Statistics contadores globales (centerID nil) o de un centro.
func (uc *UserUseCase) Statistics(ctx context.Context, centerID *int64) (*dto.UserStatisticsResponse, error) {
	st, err := uc.repos.Users.Statistics(ctx, centerID)
	if err != nil {
		return nil, err
	}
	return &dto.UserStatisticsResponse{
		Total:              st.Total,
		Active:             st.Active,
		Inactive:           st.Inactive,
		SuperAdmins:        st.SuperAdmins,
		MedicalStaff:       st.MedicalStaff,
		MustChangePassword: st.MustChangePassword,
	}, nil
}

func pageResponse(page, size int, total int64, pages int) dto.PageResponse {
	return dto.PageResponse{Page: page, Size: size, Total: total, TotalPages: pages}
}

func toUserResponse(u *entity.User) *dto.UserResponse {
	return &dto.UserResponse{
		ID:                 u.ID,
		FirstName:          u.FirstName,
		LastName:           u.LastName,
		FullName:           u.FullName(),
		Email:              u.Email,
		Phone:              u.Phone,
		IsActive:           u.IsActive,
		MustChangePassword: u.MustChangePassword,
		LastLoginAt:        u.LastLoginAt,
		CreatedAt:          u.CreatedAt,
		ModifiedAt:         u.ModifiedAt,
	}
}
