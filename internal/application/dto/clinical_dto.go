package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// PatientRequest alta/edición de un paciente en el centro actual.
type PatientRequest struct {
	FirstName        string     `json:"first_name"`
	LastName         string     `json:"last_name"`
	DateOfBirth      *time.Time `json:"date_of_birth,omitempty"`
	Gender           string     `json:"gender"`
	Phone            string     `json:"phone"`
	Email            string     `json:"email"`
	Address          string     `json:"address"`
	EmergencyContact string     `json:"emergency_contact"`
	BloodType        string     `json:"blood_type"`
	Allergies        string     `json:"allergies"`
}

// PatientResponse salida de un paciente.
type PatientResponse struct {
	ID               int64      `json:"id"`
	CenterID         int64      `json:"center_id"`
	PatientNumber    string     `json:"patient_number"`
	FirstName        string     `json:"first_name"`
	LastName         string     `json:"last_name"`
	FullName         string     `json:"full_name"`
	DateOfBirth      *time.Time `json:"date_of_birth,omitempty"`
	Age              int        `json:"age,omitempty"`
	Gender           string     `json:"gender"`
	Phone            string     `json:"phone"`
	Email            string     `json:"email"`
	Address          string     `json:"address"`
	EmergencyContact string     `json:"emergency_contact"`
	BloodType        string     `json:"blood_type"`
	Allergies        string     `json:"allergies"`
	IsActive         bool       `json:"is_active"`
}

// PatientListResponse página de pacientes.
type PatientListResponse struct {
	Items []PatientResponse `json:"items"`
	PageResponse
}

// EpisodeRequest apertura de un episodio de cuidados.
type EpisodeRequest struct {
	PatientID          int64  `json:"patient_id"`
	PrimaryCaregiverID *int64 `json:"primary_caregiver_id,omitempty"`
	Reason             string `json:"reason"`
	Notes              string `json:"notes"`
}

// EpisodeResponse episodio con sus totales.
type EpisodeResponse struct {
	ID               int64           `json:"id"`
	PatientID        int64           `json:"patient_id"`
	CenterID         int64           `json:"center_id"`
	Reason           string          `json:"reason"`
	Status           string          `json:"status"`
	StartDate        time.Time       `json:"start_date"`
	EndDate          *time.Time      `json:"end_date,omitempty"`
	TotalCost        decimal.Decimal `json:"total_cost"`
	AmountPaid       decimal.Decimal `json:"amount_paid"`
	RemainingBalance decimal.Decimal `json:"remaining_balance"`
}

// DiagnosisRequest diagnóstico dentro de un episodio.
type DiagnosisRequest struct {
	Code        string `json:"code"`
	Description string `json:"description"`
	Severity    string `json:"severity"`
}

// CareServiceRequest servicio facturable dentro de un episodio.
type CareServiceRequest struct {
	ServiceName string          `json:"service_name"`
	Quantity    int             `json:"quantity"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
	Notes       string          `json:"notes"`
}

// ExamRequest solicitud de examen.
type ExamRequest struct {
	ExamName string          `json:"exam_name"`
	ExamType string          `json:"exam_type"`
	Cost     decimal.Decimal `json:"cost"`
}

// ExamResultRequest carga del resultado.
type ExamResultRequest struct {
	Result string `json:"result"`
	Notes  string `json:"notes"`
}

// PrescriptionItemRequest línea de receta.
type PrescriptionItemRequest struct {
	ProductID      *int64 `json:"product_id,omitempty"`
	MedicationName string `json:"medication_name"`
	Dosage         string `json:"dosage"`
	Frequency      string `json:"frequency"`
	Duration       string `json:"duration"`
	Quantity       int    `json:"quantity"`
	Instructions   string `json:"instructions"`
}

// PrescriptionRequest receta con sus líneas.
type PrescriptionRequest struct {
	Instructions string                    `json:"instructions"`
	Items        []PrescriptionItemRequest `json:"items"`
}

// PaymentRequest pago contra un episodio o una venta.
type PaymentRequest struct {
	ReferenceType string          `json:"reference_type"`
	ReferenceID   int64           `json:"reference_id"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"payment_method"`
	Notes         string          `json:"notes"`
}

// PaymentResponse pago registrado.
type PaymentResponse struct {
	ID            int64           `json:"id"`
	ReceiptNumber string          `json:"receipt_number"`
	ReferenceType string          `json:"reference_type"`
	ReferenceID   int64           `json:"reference_id"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"payment_method"`
	PaymentDate   time.Time       `json:"payment_date"`
	Remaining     decimal.Decimal `json:"remaining"`
}
