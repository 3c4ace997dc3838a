package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/Hospital-api/internal/domain"
	"github.com/jhoicas/Hospital-api/internal/domain/repository"
	pkgjwt "github.com/jhoicas/Hospital-api/pkg/jwt"
)

// State estado de una sesión al validar una petición.
type State int

const (
	StateAbsent State = iota
	StateValid
	StateExpired
	StateInvalid
)

func (s State) String() string {
	switch s {
	case StateAbsent:
		return "absent"
	case StateValid:
		return "valid"
	case StateExpired:
		return "expired"
	case StateInvalid:
		return "invalid"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Result resultado de Validate. Identity solo está poblada si State == StateValid.
// Err lleva el fallo de infraestructura (si lo hubo) para registrarlo; el estado ya es StateInvalid.
type Result struct {
	State    State
	Identity Identity
	Err      error
}

// Validator resuelve el sobre de la cookie contra el almacén de sesiones.
// No renueva la expiración.
type Validator struct {
	store  repository.SessionStore
	secret string
	now    func() time.Time
}

// NewValidator construye el validador.
func NewValidator(store repository.SessionStore, secret string) *Validator {
	return &Validator{store: store, secret: secret, now: time.Now}
}

// WithClock reemplaza el reloj (tests).
func (v *Validator) WithClock(now func() time.Time) *Validator {
	v.now = now
	return v
}

// Validate clasifica el sobre recibido:
//   - vacío -> absent
//   - firma inválida o sesión inexistente -> invalid
//   - sobre vencido, sesión cerrada o vencida -> expired (y se cierra en el almacén)
//   - cualquier error del almacén -> invalid con Err
func (v *Validator) Validate(ctx context.Context, envelope string) Result {
	if envelope == "" {
		return Result{State: StateAbsent}
	}
	now := v.now()

	key, err := pkgjwt.Parse(v.secret, envelope)
	if err != nil {
		if errors.Is(err, pkgjwt.ErrExpired) {
			return v.expire(ctx, key, now, nil)
		}
		return Result{State: StateInvalid, Err: fmt.Errorf("%w: %v", domain.ErrSessionInvalid, err)}
	}

	sess, err := v.store.Resolve(ctx, key)
	if err != nil {
		return Result{State: StateInvalid, Err: fmt.Errorf("resolver sesión: %w", err)}
	}
	if sess == nil {
		return Result{State: StateInvalid, Err: domain.ErrSessionInvalid}
	}
	if !sess.Valid(now) {
		if !sess.IsActive {
			return Result{State: StateExpired, Err: domain.ErrSessionExpired}
		}
		return v.expire(ctx, key, now, domain.ErrSessionExpired)
	}
	return Result{State: StateValid, Identity: FromSession(sess)}
}

func (v *Validator) expire(ctx context.Context, key string, now time.Time, cause error) Result {
	if cause == nil {
		cause = domain.ErrSessionExpired
	}
	if key != "" {
		if err := v.store.Expire(ctx, key, now); err != nil {
			return Result{State: StateExpired, Err: fmt.Errorf("cerrar sesión vencida: %w", err)}
		}
	}
	return Result{State: StateExpired, Err: cause}
}
