package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// DocumentHeader datos comunes del encabezado de los documentos PDF.
type DocumentHeader struct {
	CenterName    string
	CenterAddress string
	CenterPhone   string
	Title         string
	Number        string
	Date          time.Time
}

// ReceiptView recibo de pago.
type ReceiptView struct {
	Header        DocumentHeader
	PatientName   string
	PatientNumber string
	Reference     string // "Épisode #12" / "Vente V-..."
	PaymentMethod string
	Amount        decimal.Decimal
	TotalDue      decimal.Decimal
	TotalPaid     decimal.Decimal
	Remaining     decimal.Decimal
	CashierName   string
}

// PrescriptionLineView línea de receta.
type PrescriptionLineView struct {
	MedicationName string
	Dosage         string
	Frequency      string
	Duration       string
	Quantity       int
	Instructions   string
}

// PrescriptionView receta médica.
type PrescriptionView struct {
	Header        DocumentHeader
	PatientName   string
	PatientNumber string
	PatientAge    int
	DoctorName    string
	Instructions  string
	Lines         []PrescriptionLineView
}

// ExamResultView resultado de examen.
type ExamResultView struct {
	Header        DocumentHeader
	PatientName   string
	PatientNumber string
	ExamName      string
	ExamType      string
	RequestedAt   time.Time
	PerformedAt   *time.Time
	PerformedBy   string
	Result        string
	Notes         string
}

// Document bytes de un documento generado.
type Document struct {
	Filename    string
	ContentType string
	Content     []byte
}
