package entity

import (
	"strings"
	"time"
)

// Roles válidos en una asignación usuario/centro.
const (
	RoleSuperAdmin   = "SuperAdmin"
	RoleMedicalStaff = "MedicalStaff"
)

// ValidRole informa si r es un rol conocido.
func ValidRole(r string) bool {
	return r == RoleSuperAdmin || r == RoleMedicalStaff
}

// User representa un usuario del sistema. Sus centros y roles vienen de UserCenterAssignment.
type User struct {
	ID                 int64      `db:"id"`
	FirstName          string     `db:"first_name"`
	LastName           string     `db:"last_name"`
	Email              string     `db:"email"`
	Phone              string     `db:"phone"`
	PasswordHash       string     `db:"password_hash"` // bcrypt
	IsActive           bool       `db:"is_active"`
	MustChangePassword bool       `db:"must_change_password"`
	LastLoginAt        *time.Time `db:"last_login_at"`
	Audit
}

// FullName nombre para mostrar.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// NormalizeEmail forma canónica usada en unicidad y login.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
