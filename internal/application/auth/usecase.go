package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/Hospital-api/internal/application/dto"
	"github.com/jhoicas/Hospital-api/internal/application/session"
	"github.com/jhoicas/Hospital-api/internal/domain"
	"github.com/jhoicas/Hospital-api/internal/domain/entity"
	"github.com/jhoicas/Hospital-api/internal/domain/repository"
	"github.com/jhoicas/Hospital-api/pkg/jwt"
)

// MinPasswordLength longitud mínima de una contraseña nueva.
const MinPasswordLength = 8

// Config parámetros del sobre de sesión.
type Config struct {
	Secret     string
	Issuer     string
	TTL        time.Duration
	BcryptCost int // 0 = bcrypt.DefaultCost
}

// AuthUseCase login/logout, contraseñas y cambio de centro.
type AuthUseCase struct {
	repos    repository.Repos
	uow      repository.UnitOfWork
	sessions repository.SessionStore
	cfg      Config
	now      func() time.Time
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(repos repository.Repos, uow repository.UnitOfWork, sessions repository.SessionStore, cfg Config) *AuthUseCase {
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	return &AuthUseCase{repos: repos, uow: uow, sessions: sessions, cfg: cfg, now: time.Now}
}

// WithClock reemplaza el reloj (tests).
func (uc *AuthUseCase) WithClock(now func() time.Time) *AuthUseCase {
	uc.now = now
	return uc
}

// Client origen de la petición, guardado en la sesión y en la auditoría.
type Client struct {
	IP        string
	UserAgent string
}

// Login verifica credenciales, elige el centro y abre una sesión de servidor.
// Con varias asignaciones activas y sin centro pedido, la sesión queda sin centro ni rol
// (NeedsCenter) hasta SwitchCenter: el rol siempre es el de la asignación del centro actual.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest, client Client) (*dto.LoginResult, error) {
	user, err := uc.repos.Users.GetByEmail(ctx, entity.NormalizeEmail(in.Email))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	if !user.IsActive {
		return nil, domain.ErrForbidden
	}

	now := uc.now()
	assignments, err := uc.repos.Assignments.ListActiveByUser(ctx, user.ID, now)
	if err != nil {
		return nil, err
	}
	if len(assignments) == 0 {
		return nil, domain.ErrNoActiveCenter
	}

	var selected *repository.AssignmentView
	switch {
	case in.CenterID > 0:
		for i := range assignments {
			if assignments[i].HospitalCenterID == in.CenterID {
				selected = &assignments[i]
				break
			}
		}
		if selected == nil {
			return nil, domain.ErrForbidden
		}
	case len(assignments) == 1:
		selected = &assignments[0]
	}

	sess := &entity.UserSession{
		SessionKey: uuid.NewString(),
		UserID:     user.ID,
		UserName:   user.FullName(),
		LoginTime:  now,
		ExpiresAt:  now.Add(uc.cfg.TTL),
		IsActive:   true,
		IPAddress:  client.IP,
		UserAgent:  truncate(client.UserAgent, 500),
	}
	if selected != nil {
		center := selected.HospitalCenterID
		sess.CurrentCenterID = &center
		sess.Role = selected.Role
		sess.CenterName = selected.CenterName
	}

	token, err := jwt.Generate(uc.cfg.Secret, sess.SessionKey, uc.cfg.Issuer, sess.ExpiresAt)
	if err != nil {
		return nil, fmt.Errorf("firmar sobre de sesión: %w", err)
	}
	if err := uc.sessions.Create(ctx, sess); err != nil {
		return nil, err
	}
	if err := uc.repos.Users.RecordLogin(ctx, user.ID, now); err != nil {
		return nil, err
	}

	res := &dto.LoginResult{
		SessionKey:         sess.SessionKey,
		Token:              token,
		ExpiresAt:          sess.ExpiresAt,
		UserID:             user.ID,
		FullName:           user.FullName(),
		CenterID:           sess.CurrentCenterID,
		CenterName:         sess.CenterName,
		Role:               sess.Role,
		MustChangePassword: user.MustChangePassword,
		NeedsCenter:        selected == nil,
	}
	for _, a := range assignments {
		res.Centers = append(res.Centers, dto.CenterOption{ID: a.HospitalCenterID, Name: a.CenterName, Role: a.Role})
	}
	return res, nil
}

// Logout cierra la sesión. Una clave desconocida no es error.
func (uc *AuthUseCase) Logout(ctx context.Context, sessionKey string) error {
	if sessionKey == "" {
		return nil
	}
	return uc.sessions.Expire(ctx, sessionKey, uc.now())
}

// SwitchCenter cambia el centro actual de la sesión; el rol se vuelve a resolver
// desde la asignación activa en el centro destino.
func (uc *AuthUseCase) SwitchCenter(ctx context.Context, id session.Identity, centerID int64) (*dto.IdentityResponse, error) {
	if centerID <= 0 {
		return nil, domain.ErrInvalidInput
	}
	a, err := uc.repos.Assignments.FindActive(ctx, id.UserID, centerID)
	if err != nil {
		return nil, err
	}
	if a == nil || !a.IsCurrent(uc.now()) {
		return nil, domain.ErrForbidden
	}
	center, err := uc.repos.Centers.GetByID(ctx, centerID)
	if err != nil {
		return nil, err
	}
	if center == nil || !center.IsActive {
		return nil, domain.ErrForbidden
	}
	if err := uc.sessions.SwitchCenter(ctx, id.SessionKey, centerID, center.Name, a.Role); err != nil {
		return nil, err
	}
	return &dto.IdentityResponse{
		UserID:     id.UserID,
		FullName:   id.UserName,
		CenterID:   &centerID,
		CenterName: center.Name,
		Role:       a.Role,
		ExpiresAt:  id.ExpiresAt,
	}, nil
}

// ChangePassword cambio propio: requiere la contraseña actual. Quita el indicador de cambio obligatorio.
func (uc *AuthUseCase) ChangePassword(ctx context.Context, in dto.ChangePasswordRequest, client Client) error {
	if err := validatePassword(in.NewPassword); err != nil {
		return err
	}
	if in.NewPassword == in.CurrentPassword {
		return fmt.Errorf("%w: la nueva contraseña debe ser distinta", domain.ErrInvalidInput)
	}
	user, err := uc.repos.Users.GetByEmail(ctx, entity.NormalizeEmail(in.Email))
	if err != nil {
		return err
	}
	if user == nil {
		return domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.CurrentPassword)); err != nil {
		return domain.ErrUnauthorized
	}
	if !user.IsActive {
		return domain.ErrForbidden
	}
	return uc.storePassword(ctx, user.ID, in.NewPassword, false, user.ID, entity.AuditPasswordChanged,
		"contraseña cambiada por el usuario", client)
}

// ResetPassword restablecimiento por un administrador: fuerza el cambio en el próximo acceso
// y cierra las sesiones abiertas del usuario.
func (uc *AuthUseCase) ResetPassword(ctx context.Context, actor session.Identity, userID int64, in dto.ResetPasswordRequest, client Client) error {
	if err := validatePassword(in.NewPassword); err != nil {
		return err
	}
	user, err := uc.repos.Users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return domain.ErrUserNotFound
	}
	details := fmt.Sprintf("contraseña restablecida por el usuario %d", actor.UserID)
	if err := uc.storePassword(ctx, user.ID, in.NewPassword, true, actor.UserID,
		entity.AuditPasswordReset, details, client); err != nil {
		return err
	}
	_, err = uc.sessions.ExpireForUser(ctx, user.ID, uc.now())
	return err
}

// storePassword escribe hash y traza de auditoría en la misma transacción.
func (uc *AuthUseCase) storePassword(ctx context.Context, userID int64, password string, mustChange bool,
	actor int64, action, details string, client Client) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), uc.cfg.BcryptCost)
	if err != nil {
		return err
	}
	now := uc.now()
	return uc.uow.Do(ctx, func(r repository.Repos) error {
		if err := r.Users.UpdatePassword(ctx, userID, string(hash), mustChange, actor, now); err != nil {
			return err
		}
		performer := actor
		return r.Audit.Record(ctx, &entity.AuditLog{
			Action:      action,
			EntityType:  entity.AuditEntityUser,
			EntityID:    userID,
			Details:     details,
			PerformedBy: &performer,
			IPAddress:   client.IP,
			CreatedAt:   now,
		})
	})
}

// HashPassword hash bcrypt con el coste configurado (alta de usuarios).
func (uc *AuthUseCase) HashPassword(password string) (string, error) {
	if err := validatePassword(password); err != nil {
		return "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), uc.cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", fmt.Errorf("%w: contraseña demasiado larga", domain.ErrInvalidInput)
		}
		return "", err
	}
	return string(hash), nil
}

func validatePassword(p string) error {
	if len(strings.TrimSpace(p)) < MinPasswordLength {
		return fmt.Errorf("%w: la contraseña debe tener al menos %d caracteres", domain.ErrInvalidInput, MinPasswordLength)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
