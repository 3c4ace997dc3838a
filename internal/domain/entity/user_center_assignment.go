package entity

import "time"

// UserCenterAssignment vincula un usuario a un centro con un rol y una ventana de validez.
// Como máximo una asignación activa por par (usuario, centro).
type UserCenterAssignment struct {
	ID               int64      `db:"id"`
	UserID           int64      `db:"user_id"`
	HospitalCenterID int64      `db:"hospital_center_id"`
	Role             string     `db:"role"`
	IsActive         bool       `db:"is_active"`
	StartDate        time.Time  `db:"start_date"`
	EndDate          *time.Time `db:"end_date"`
	Audit
}

// IsCurrent activa y dentro de su ventana en el instante now.
func (a *UserCenterAssignment) IsCurrent(now time.Time) bool {
	if !a.IsActive || now.Before(a.StartDate) {
		return false
	}
	return a.EndDate == nil || now.Before(*a.EndDate)
}

// Ended la asignación ya fue cerrada.
func (a *UserCenterAssignment) Ended() bool {
	return !a.IsActive && a.EndDate != nil
}

// End cierra la asignación. Es idempotente: si ya estaba cerrada no toca EndDate y devuelve false.
func (a *UserCenterAssignment) End(actor int64, at time.Time) bool {
	if a.Ended() {
		return false
	}
	a.IsActive = false
	if a.EndDate == nil || at.Before(*a.EndDate) {
		end := at
		a.EndDate = &end
	}
	a.Touch(actor, at)
	return true
}
