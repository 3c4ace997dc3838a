package billing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Hospital-api/internal/application/dto"
	"github.com/jhoicas/Hospital-api/internal/application/session"
	"github.com/jhoicas/Hospital-api/internal/domain"
	"github.com/jhoicas/Hospital-api/internal/domain/entity"
	"github.com/jhoicas/Hospital-api/internal/domain/query"
	"github.com/jhoicas/Hospital-api/internal/domain/repository"
)

// PaymentUseCase cobros contra un episodio de cuidados o una venta.
// El destino se bloquea antes de acumular el pago: nunca se cobra más que el saldo pendiente.
type PaymentUseCase struct {
	repos repository.Repos
	uow   repository.UnitOfWork
	now   func() time.Time
}

// NewPaymentUseCase construye el caso de uso.
func NewPaymentUseCase(repos repository.Repos, uow repository.UnitOfWork) *PaymentUseCase {
	return &PaymentUseCase{repos: repos, uow: uow, now: time.Now}
}

// Record registra un pago y actualiza el saldo del destino en la misma transacción.
func (uc *PaymentUseCase) Record(ctx context.Context, id session.Identity, in dto.PaymentRequest) (*dto.PaymentResponse, error) {
	if !id.Authenticated() {
		return nil, domain.ErrUnauthorized
	}
	if !entity.ValidPaymentMethod(in.PaymentMethod) {
		return nil, fmt.Errorf("%w: medio de pago %q", domain.ErrInvalidInput, in.PaymentMethod)
	}
	if !in.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: el importe debe ser positivo", domain.ErrInvalidInput)
	}

	var (
		pay       *entity.Payment
		remaining decimal.Decimal
	)
	err := uc.uow.Do(ctx, func(r repository.Repos) error {
		now := uc.now()
		pay = &entity.Payment{
			ReferenceType: in.ReferenceType,
			ReferenceID:   in.ReferenceID,
			Amount:        in.Amount,
			PaymentMethod: in.PaymentMethod,
			PaymentDate:   now,
			ReceiptNumber: documentNumber("R", now),
			Notes:         strings.TrimSpace(in.Notes),
		}

		switch in.ReferenceType {
		case entity.ReferenceCareEpisode:
			ep, err := r.Episodes.GetForUpdate(ctx, in.ReferenceID)
			if err != nil {
				return err
			}
			if ep == nil {
				return fmt.Errorf("%w: episodio %d", domain.ErrNotFound, in.ReferenceID)
			}
			if !id.CanAccessCenter(ep.HospitalCenterID) {
				return domain.ErrForbidden
			}
			if err := ep.ApplyPayment(in.Amount); err != nil {
				return err
			}
			ep.Touch(id.UserID, now)
			if err := r.Episodes.Update(ctx, ep); err != nil {
				return err
			}
			patientID := ep.PatientID
			pay.HospitalCenterID, pay.PatientID = ep.HospitalCenterID, &patientID
			remaining = ep.RemainingBalance

		case entity.ReferenceSale:
			s, err := loadSale(ctx, r, id, in.ReferenceID, true)
			if err != nil {
				return err
			}
			if err := s.ApplyPayment(in.Amount); err != nil {
				return err
			}
			s.Touch(id.UserID, now)
			if err := r.Sales.Update(ctx, s); err != nil {
				return err
			}
			pay.HospitalCenterID, pay.PatientID = s.HospitalCenterID, s.PatientID
			remaining = s.Outstanding()

		default:
			return fmt.Errorf("%w: destino de pago %q", domain.ErrInvalidInput, in.ReferenceType)
		}

		pay.Stamp(id.UserID, now)
		return r.Payments.Add(ctx, pay)
	})
	if err != nil {
		return nil, err
	}
	res := toPaymentResponse(pay)
	res.Remaining = remaining
	return res, nil
}

// ListFor pagos de un destino, del más reciente al más antiguo.
// El destino se comprueba antes de listar: un destino ajeno sin pagos también es prohibido.
func (uc *PaymentUseCase) ListFor(ctx context.Context, id session.Identity, referenceType string, referenceID int64) ([]dto.PaymentResponse, error) {
	if err := uc.checkTarget(ctx, id, referenceType, referenceID); err != nil {
		return nil, err
	}
	payments, err := uc.repos.Payments.List(ctx,
		query.Eq("reference_type", referenceType),
		query.Eq("reference_id", referenceID),
		query.OrderBy("payment_date", query.Desc))
	if err != nil {
		return nil, err
	}
	out := make([]dto.PaymentResponse, 0, len(payments))
	for _, p := range payments {
		if !id.CanAccessCenter(p.HospitalCenterID) {
			return nil, domain.ErrForbidden
		}
		out = append(out, *toPaymentResponse(p))
	}
	return out, nil
}

func (uc *PaymentUseCase) checkTarget(ctx context.Context, id session.Identity, referenceType string, referenceID int64) error {
	switch referenceType {
	case entity.ReferenceCareEpisode:
		ep, err := uc.repos.Episodes.GetByID(ctx, referenceID)
		if err != nil {
			return err
		}
		if ep == nil {
			return fmt.Errorf("%w: episodio %d", domain.ErrNotFound, referenceID)
		}
		if !id.CanAccessCenter(ep.HospitalCenterID) {
			return domain.ErrForbidden
		}
		return nil
	case entity.ReferenceSale:
		_, err := loadSale(ctx, uc.repos, id, referenceID, false)
		return err
	default:
		return fmt.Errorf("%w: destino de pago %q", domain.ErrInvalidInput, referenceType)
	}
}

func toPaymentResponse(p *entity.Payment) *dto.PaymentResponse {
	return &dto.PaymentResponse{
		ID:            p.ID,
		ReceiptNumber: p.ReceiptNumber,
		ReferenceType: p.ReferenceType,
		ReferenceID:   p.ReferenceID,
		Amount:        p.Amount,
		PaymentMethod: p.PaymentMethod,
		PaymentDate:   p.PaymentDate,
	}
}
