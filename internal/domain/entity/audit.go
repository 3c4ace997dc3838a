package entity

import "time"

// Audit sobre de auditoría presente en casi todas las tablas.
// CreatedBy/CreatedAt no se sobrescriben en updates (ver repository.UpdateOptions).
type Audit struct {
	CreatedBy  *int64     `db:"created_by"`
	CreatedAt  time.Time  `db:"created_at"`
	ModifiedBy *int64     `db:"modified_by"`
	ModifiedAt *time.Time `db:"modified_at"`
}

// Audited lo implementa toda entidad que embebe Audit.
type Audited interface {
	AuditFields() *Audit
}

// AuditFields devuelve el sobre para que la persistencia pueda completarlo.
func (a *Audit) AuditFields() *Audit { return a }

// Stamp marca la creación. actor 0 = sistema.
func (a *Audit) Stamp(actor int64, at time.Time) {
	a.CreatedBy = actorRef(actor)
	a.CreatedAt = at
}

// Touch marca la última modificación.
func (a *Audit) Touch(actor int64, at time.Time) {
	a.ModifiedBy = actorRef(actor)
	a.ModifiedAt = &at
}

func actorRef(actor int64) *int64 {
	if actor == 0 {
		return nil
	}
	return &actor
}
