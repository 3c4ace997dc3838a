package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Hospital-api/internal/application/dto"
	"github.com/jhoicas/Hospital-api/internal/application/session"
	"github.com/jhoicas/Hospital-api/internal/domain"
	"github.com/jhoicas/Hospital-api/internal/domain/entity"
	"github.com/jhoicas/Hospital-api/internal/domain/query"
	"github.com/jhoicas/Hospital-api/internal/domain/repository"
)

const contentTypePDF = "application/pdf"

// DocumentUseCase arma las vistas de recibo, receta y resultado de examen y genera el PDF.
type DocumentUseCase struct {
	repos     repository.Repos
	generator DocumentGenerator
	now       func() time.Time
}

// NewDocumentUseCase construye el caso de uso inyectando el generador de PDF.
func NewDocumentUseCase(repos repository.Repos, generator DocumentGenerator) *DocumentUseCase {
	return &DocumentUseCase{repos: repos, generator: generator, now: time.Now}
}

// Receipt recibo de un pago.
func (uc *DocumentUseCase) Receipt(ctx context.Context, id session.Identity, paymentID int64) (*dto.Document, error) {
	pay, err := uc.repos.Payments.GetByID(ctx, paymentID)
	if err != nil {
		return nil, fmt.Errorf("recibo: obtener pago: %w", err)
	}
	if pay == nil {
		return nil, fmt.Errorf("%w: pago %d", domain.ErrNotFound, paymentID)
	}
	if !id.CanAccessCenter(pay.HospitalCenterID) {
		return nil, domain.ErrForbidden
	}
	header, err := uc.header(ctx, pay.HospitalCenterID, "Reçu de paiement", pay.ReceiptNumber, pay.PaymentDate)
	if err != nil {
		return nil, err
	}

	v := dto.ReceiptView{
		Header:        header,
		PaymentMethod: pay.PaymentMethod,
		Amount:        pay.Amount,
		CashierName:   uc.userName(ctx, pay.CreatedBy),
	}
	switch pay.ReferenceType {
	case entity.ReferenceCareEpisode:
		ep, err := uc.repos.Episodes.GetByID(ctx, pay.ReferenceID)
		if err != nil || ep == nil {
			return nil, fmt.Errorf("recibo: obtener episodio: %w", errOrNotFound(err))
		}
		v.Reference = fmt.Sprintf("Épisode #%d", ep.ID)
		v.TotalDue, v.TotalPaid, v.Remaining = ep.TotalCost, ep.AmountPaid, ep.RemainingBalance
	case entity.ReferenceSale:
		s, err := uc.repos.Sales.GetByID(ctx, pay.ReferenceID)
		if err != nil || s == nil {
			return nil, fmt.Errorf("recibo: obtener venta: %w", errOrNotFound(err))
		}
		v.Reference = "Vente " + s.SaleNumber
		v.TotalDue, v.TotalPaid, v.Remaining = s.FinalAmount, s.AmountPaid, s.Outstanding()
	}
	if pay.PatientID != nil {
		if p, _ := uc.repos.Patients.GetByID(ctx, *pay.PatientID); p != nil {
			v.PatientName, v.PatientNumber = p.FullName(), p.PatientNumber
		}
	}

	content, err := uc.generator.Receipt(ctx, v)
	if err != nil {
		return nil, fmt.Errorf("recibo: generación fallida: %w", err)
	}
	return &dto.Document{Filename: "recu_" + pay.ReceiptNumber + ".pdf", ContentType: contentTypePDF, Content: content}, nil
}

// Prescription receta con sus líneas.
func (uc *DocumentUseCase) Prescription(ctx context.Context, id session.Identity, prescriptionID int64) (*dto.Document, error) {
	rx, err := uc.repos.Prescriptions.GetByID(ctx, prescriptionID)
	if err != nil {
		return nil, fmt.Errorf("receta: obtener receta: %w", err)
	}
	if rx == nil {
		return nil, fmt.Errorf("%w: receta %d", domain.ErrNotFound, prescriptionID)
	}
	if !id.CanAccessCenter(rx.HospitalCenterID) {
		return nil, domain.ErrForbidden
	}
	number := fmt.Sprintf("ORD-%06d", rx.ID)
	header, err := uc.header(ctx, rx.HospitalCenterID, "Ordonnance", number, rx.PrescribedAt)
	if err != nil {
		return nil, err
	}
	p, err := uc.repos.Patients.GetByID(ctx, rx.PatientID)
	if err != nil || p == nil {
		return nil, fmt.Errorf("receta: obtener paciente: %w", errOrNotFound(err))
	}
	items, err := uc.repos.PrescriptionItems.List(ctx, query.Eq("prescription_id", rx.ID), query.OrderBy("id", query.Asc))
	if err != nil {
		return nil, fmt.Errorf("receta: obtener líneas: %w", err)
	}

	doctor := rx.PrescribedBy
	v := dto.PrescriptionView{
		Header:        header,
		PatientName:   p.FullName(),
		PatientNumber: p.PatientNumber,
		PatientAge:    p.Age(rx.PrescribedAt),
		DoctorName:    uc.userName(ctx, &doctor),
		Instructions:  rx.Instructions,
		Lines:         make([]dto.PrescriptionLineView, 0, len(items)),
	}
	for _, it := range items {
		v.Lines = append(v.Lines, dto.PrescriptionLineView{
			MedicationName: it.MedicationName,
			Dosage:         it.Dosage,
			Frequency:      it.Frequency,
			Duration:       it.Duration,
			Quantity:       it.Quantity,
			Instructions:   it.Instructions,
		})
	}

	content, err := uc.generator.Prescription(ctx, v)
	if err != nil {
		return nil, fmt.Errorf("receta: generación fallida: %w", err)
	}
	return &dto.Document{Filename: "ordonnance_" + number + ".pdf", ContentType: contentTypePDF, Content: content}, nil
}

// ExamResult resultado de un examen; solo si ya fue realizado.
func (uc *DocumentUseCase) ExamResult(ctx context.Context, id session.Identity, examID int64) (*dto.Document, error) {
	x, err := uc.repos.Exams.GetByID(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("examen: obtener examen: %w", err)
	}
	if x == nil {
		return nil, fmt.Errorf("%w: examen %d", domain.ErrNotFound, examID)
	}
	if !id.CanAccessCenter(x.HospitalCenterID) {
		return nil, domain.ErrForbidden
	}
	if x.Status != entity.ExamCompleted {
		return nil, fmt.Errorf("%w: el examen aún no tiene resultado", domain.ErrConflict)
	}
	number := fmt.Sprintf("EX-%06d", x.ID)
	header, err := uc.header(ctx, x.HospitalCenterID, "Résultat d'examen", number, *x.PerformedAt)
	if err != nil {
		return nil, err
	}
	p, err := uc.repos.Patients.GetByID(ctx, x.PatientID)
	if err != nil || p == nil {
		return nil, fmt.Errorf("examen: obtener paciente: %w", errOrNotFound(err))
	}

	v := dto.ExamResultView{
		Header:        header,
		PatientName:   p.FullName(),
		PatientNumber: p.PatientNumber,
		ExamName:      x.ExamName,
		ExamType:      x.ExamType,
		RequestedAt:   x.RequestedAt,
		PerformedAt:   x.PerformedAt,
		PerformedBy:   uc.userName(ctx, x.PerformedBy),
		Result:        x.Result,
		Notes:         x.ResultNotes,
	}
	content, err := uc.generator.ExamResult(ctx, v)
	if err != nil {
		return nil, fmt.Errorf("examen: generación fallida: %w", err)
	}
	return &dto.Document{Filename: "examen_" + number + ".pdf", ContentType: contentTypePDF, Content: content}, nil
}

func (uc *DocumentUseCase) header(ctx context.Context, centerID int64, title, number string, at time.Time) (dto.DocumentHeader, error) {
	c, err := uc.repos.Centers.GetByID(ctx, centerID)
	if err != nil || c == nil {
		return dto.DocumentHeader{}, fmt.Errorf("documento: obtener centro: %w", errOrNotFound(err))
	}
	return dto.DocumentHeader{
		CenterName:    c.Name,
		CenterAddress: c.Address,
		CenterPhone:   c.Phone,
		Title:         title,
		Number:        number,
		Date:          at,
	}, nil
}

// userName nombre del usuario o vacío si no se conoce.
func (uc *DocumentUseCase) userName(ctx context.Context, userID *int64) string {
	if userID == nil {
		return ""
	}
	u, err := uc.repos.Users.GetByID(ctx, *userID)
	if err != nil || u == nil {
		return ""
	}
	return u.FullName()
}

func errOrNotFound(err error) error {
	if err != nil {
		return err
	}
	return domain.ErrNotFound
}
