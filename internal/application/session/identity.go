// Package session resuelve la identidad de cada petición a partir de la cookie de sesión
// y mantiene limpio el almacén de sesiones.
package session

import (
	"time"

	"github.com/jhoicas/Hospital-api/internal/domain"
	"github.com/jhoicas/Hospital-api/internal/domain/entity"
)

// Identity identidad inmutable de la petición: se construye una vez al validar la sesión
// y se pasa por valor a guards y handlers.
type Identity struct {
	SessionKey string
	UserID     int64
	UserName   string
	CenterID   int64 // 0 = ningún centro seleccionado
	CenterName string
	Role       string
	ExpiresAt  time.Time
}

// FromSession materializa la identidad desde el registro de sesión.
func FromSession(s *entity.UserSession) Identity {
	id := Identity{
		SessionKey: s.SessionKey,
		UserID:     s.UserID,
		UserName:   s.UserName,
		CenterName: s.CenterName,
		Role:       s.Role,
		ExpiresAt:  s.ExpiresAt,
	}
	if s.CurrentCenterID != nil {
		id.CenterID = *s.CurrentCenterID
	}
	return id
}

// Authenticated hay un usuario resuelto.
func (i Identity) Authenticated() bool {
	return i.UserID > 0
}

// HasCenter hay un centro actual seleccionado.
func (i Identity) HasCenter() bool {
	return i.CenterID > 0
}

// IsSuperAdmin rol elevado.
func (i Identity) IsSuperAdmin() bool {
	return i.Role == entity.RoleSuperAdmin
}

// HasAnyRole un rol vacío nunca pertenece al conjunto.
func (i Identity) HasAnyRole(roles ...string) bool {
	if i.Role == "" {
		return false
	}
	for _, r := range roles {
		if r == i.Role {
			return true
		}
	}
	return false
}

// CenterRef puntero al centro actual (nil si no hay), para filtros opcionales.
func (i Identity) CenterRef() *int64 {
	if !i.HasCenter() {
		return nil
	}
	c := i.CenterID
	return &c
}

// CanAccessCenter SuperAdmin accede a todos los centros; el resto solo al actual.
func (i Identity) CanAccessCenter(centerID int64) bool {
	return i.IsSuperAdmin() || (i.HasCenter() && i.CenterID == centerID)
}

// RequireCenter centro actual o ErrNoActiveCenter si la sesión no tiene uno.
func (i Identity) RequireCenter() (int64, error) {
	if !i.HasCenter() {
		return 0, domain.ErrNoActiveCenter
	}
	return i.CenterID, nil
}
