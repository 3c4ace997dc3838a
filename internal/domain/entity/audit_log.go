package entity

import "time"

// Acciones registradas en la traza de auditoría.
const (
	AuditPasswordChanged = "PasswordChanged"
	AuditPasswordReset   = "PasswordReset"
	AuditUserDeactivated = "UserDeactivated"
	AuditUserActivated   = "UserActivated"
	AuditCenterDisabled  = "CenterDeactivated"
)

// Tipos de entidad referenciados en la traza.
const (
	AuditEntityUser   = "User"
	AuditEntityCenter = "HospitalCenter"
)

// AuditLog entrada de la traza de auditoría; se escribe en la misma transacción que la mutación.
type AuditLog struct {
	ID          int64     `db:"id"`
	Action      string    `db:"action"`
	EntityType  string    `db:"entity_type"`
	EntityID    int64     `db:"entity_id"`
	Details     string    `db:"details"`
	PerformedBy *int64    `db:"performed_by"`
	IPAddress   string    `db:"ip_address"`
	CreatedAt   time.Time `db:"created_at"`
}
