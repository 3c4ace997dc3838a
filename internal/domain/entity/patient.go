package entity

import "time"

// Patient paciente registrado en un centro.
type Patient struct {
	ID               int64      `db:"id"`
	HospitalCenterID int64      `db:"hospital_center_id"`
	PatientNumber    string     `db:"patient_number"`
	FirstName        string     `db:"first_name"`
	LastName         string     `db:"last_name"`
	DateOfBirth      *time.Time `db:"date_of_birth"`
	Gender           string     `db:"gender"`
	Phone            string     `db:"phone"`
	Email            string     `db:"email"`
	Address          string     `db:"address"`
	EmergencyContact string     `db:"emergency_contact"`
	BloodType        string     `db:"blood_type"`
	Allergies        string     `db:"allergies"`
	SearchName       string     `db:"search_name"` // textnorm.Fold(nombre completo + número)
	IsActive         bool       `db:"is_active"`
	Audit
}

// FullName nombre para mostrar.
func (p *Patient) FullName() string {
	return p.FirstName + " " + p.LastName
}

// Age edad en años cumplidos en el instante now; -1 si no hay fecha de nacimiento.
func (p *Patient) Age(now time.Time) int {
	if p.DateOfBirth == nil {
		return -1
	}
	b := *p.DateOfBirth
	years := now.Year() - b.Year()
	if now.YearDay() < b.YearDay() {
		years--
	}
	return years
}

// Diagnosis diagnóstico emitido durante un episodio de cuidados.
type Diagnosis struct {
	ID               int64     `db:"id"`
	CareEpisodeID    int64     `db:"care_episode_id"`
	PatientID        int64     `db:"patient_id"`
	HospitalCenterID int64     `db:"hospital_center_id"`
	Code             string    `db:"code"` // CIM-10
	Description      string    `db:"description"`
	Severity         string    `db:"severity"`
	DiagnosedBy      *int64    `db:"diagnosed_by"`
	DiagnosedAt      time.Time `db:"diagnosed_at"`
	Audit
}
