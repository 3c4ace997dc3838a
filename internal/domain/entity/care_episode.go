package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Hospital-api/internal/domain"
)

// Estados de un episodio de cuidados.
const (
	EpisodeOpen   = "Open"
	EpisodeClosed = "Closed"
)

// CareEpisode agrega servicios, exámenes y prescripciones de un tratamiento y sus totales.
// Invariante: RemainingBalance = TotalCost - AmountPaid.
type CareEpisode struct {
	ID                 int64           `db:"id"`
	PatientID          int64           `db:"patient_id"`
	HospitalCenterID   int64           `db:"hospital_center_id"`
	PrimaryCaregiverID *int64          `db:"primary_caregiver_id"`
	Reason             string          `db:"reason"`
	Status             string          `db:"status"`
	StartDate          time.Time       `db:"start_date"`
	EndDate            *time.Time      `db:"end_date"`
	TotalCost          decimal.Decimal `db:"total_cost"`
	AmountPaid         decimal.Decimal `db:"amount_paid"`
	RemainingBalance   decimal.Decimal `db:"remaining_balance"`
	Notes              string          `db:"notes"`
	Audit
}

// Rebalance recalcula el saldo pendiente.
func (e *CareEpisode) Rebalance() {
	e.RemainingBalance = e.TotalCost.Sub(e.AmountPaid)
}

// AddCharge suma un cargo (servicio o examen) al coste total.
func (e *CareEpisode) AddCharge(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return domain.ErrInvalidInput
	}
	if e.Status == EpisodeClosed {
		return domain.ErrConflict
	}
	e.TotalCost = e.TotalCost.Add(amount)
	e.Rebalance()
	return nil
}

// RemoveCharge descuenta un cargo anulado; nunca deja el total por debajo de lo ya pagado.
func (e *CareEpisode) RemoveCharge(amount decimal.Decimal) error {
	if amount.IsNegative() || e.TotalCost.Sub(amount).LessThan(e.AmountPaid) {
		return domain.ErrConflict
	}
	e.TotalCost = e.TotalCost.Sub(amount)
	e.Rebalance()
	return nil
}

// ApplyPayment registra un pago; rechaza importes no positivos y sobrepagos.
func (e *CareEpisode) ApplyPayment(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return domain.ErrInvalidInput
	}
	e.Rebalance()
	if amount.GreaterThan(e.RemainingBalance) {
		return domain.ErrOverpayment
	}
	e.AmountPaid = e.AmountPaid.Add(amount)
	e.Rebalance()
	return nil
}

// Close cierra el episodio.
func (e *CareEpisode) Close(at time.Time) error {
	if e.Status == EpisodeClosed {
		return domain.ErrConflict
	}
	e.Status = EpisodeClosed
	e.EndDate = &at
	return nil
}

// CareService acto o servicio facturable dentro de un episodio.
type CareService struct {
	ID            int64           `db:"id"`
	CareEpisodeID int64           `db:"care_episode_id"`
	ServiceName   string          `db:"service_name"`
	Quantity      int             `db:"quantity"`
	UnitCost      decimal.Decimal `db:"unit_cost"`
	TotalCost     decimal.Decimal `db:"total_cost"`
	PerformedBy   *int64          `db:"performed_by"`
	ServiceDate   time.Time       `db:"service_date"`
	Notes         string          `db:"notes"`
	Audit
}

// Price calcula TotalCost = Quantity × UnitCost.
func (s *CareService) Price() decimal.Decimal {
	s.TotalCost = s.UnitCost.Mul(decimal.NewFromInt(int64(s.Quantity)))
	return s.TotalCost
}

// Estados de un examen.
const (
	ExamRequested = "Requested"
	ExamCompleted = "Completed"
)

// Examination examen solicitado dentro de un episodio; el resultado se carga después.
type Examination struct {
	ID               int64           `db:"id"`
	CareEpisodeID    int64           `db:"care_episode_id"`
	PatientID        int64           `db:"patient_id"`
	HospitalCenterID int64           `db:"hospital_center_id"`
	ExamName         string          `db:"exam_name"`
	ExamType         string          `db:"exam_type"`
	Cost             decimal.Decimal `db:"cost"`
	Status           string          `db:"status"`
	RequestedAt      time.Time       `db:"requested_at"`
	PerformedAt      *time.Time      `db:"performed_at"`
	PerformedBy      *int64          `db:"performed_by"`
	Result           string          `db:"result"`
	ResultNotes      string          `db:"result_notes"`
	Audit
}

// Complete carga el resultado.
func (x *Examination) Complete(result, notes string, by int64, at time.Time) error {
	if x.Status == ExamCompleted {
		return domain.ErrConflict
	}
	x.Status = ExamCompleted
	x.Result = result
	x.ResultNotes = notes
	x.PerformedBy = &by
	x.PerformedAt = &at
	return nil
}

// Prescription receta emitida en un episodio.
type Prescription struct {
	ID               int64     `db:"id"`
	CareEpisodeID    int64     `db:"care_episode_id"`
	PatientID        int64     `db:"patient_id"`
	HospitalCenterID int64     `db:"hospital_center_id"`
	PrescribedBy     int64     `db:"prescribed_by"`
	PrescribedAt     time.Time `db:"prescribed_at"`
	Instructions     string    `db:"instructions"`
	Audit
}

// PrescriptionItem línea de una receta.
type PrescriptionItem struct {
	ID             int64  `db:"id"`
	PrescriptionID int64  `db:"prescription_id"`
	ProductID      *int64 `db:"product_id"`
	MedicationName string `db:"medication_name"`
	Dosage         string `db:"dosage"`
	Frequency      string `db:"frequency"`
	Duration       string `db:"duration"`
	Quantity       int    `db:"quantity"`
	Instructions   string `db:"instructions"`
}
