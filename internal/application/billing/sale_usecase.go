package billing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Hospital-api/internal/application/dto"
	"github.com/jhoicas/Hospital-api/internal/application/session"
	"github.com/jhoicas/Hospital-api/internal/domain"
	"github.com/jhoicas/Hospital-api/internal/domain/entity"
	"github.com/jhoicas/Hospital-api/internal/domain/query"
	"github.com/jhoicas/Hospital-api/internal/domain/repository"
)

// SaleUseCase ventas de productos en el centro actual.
type SaleUseCase struct {
	repos repository.Repos
	uow   repository.UnitOfWork
	stock StockWriter
	now   func() time.Time
}

// NewSaleUseCase construye el caso de uso inyectando el motor de stock.
func NewSaleUseCase(repos repository.Repos, uow repository.UnitOfWork, stock StockWriter) *SaleUseCase {
	return &SaleUseCase{repos: repos, uow: uow, stock: stock, now: time.Now}
}

// Create registra la venta. Flujo dentro de una sola transacción:
//  1. precio de cada línea desde el producto (activo)
//  2. totales: FinalAmount = TotalAmount - DiscountAmount
//  3. venta + líneas
//  4. salida de stock por línea; si falta stock se revierte todo
func (uc *SaleUseCase) Create(ctx context.Context, id session.Identity, in dto.SaleRequest) (*dto.SaleResponse, error) {
	centerID, err := id.RequireCenter()
	if err != nil {
		return nil, err
	}
	if len(in.Items) == 0 {
		return nil, fmt.Errorf("%w: la venta no tiene líneas", domain.ErrInvalidInput)
	}
	for _, it := range in.Items {
		if it.ProductID <= 0 || !it.Quantity.IsPositive() {
			return nil, fmt.Errorf("%w: línea con producto %d y cantidad %s", domain.ErrInvalidInput, it.ProductID, it.Quantity.String())
		}
	}

	var sale *entity.Sale
	err = uc.uow.Do(ctx, func(r repository.Repos) error {
		if in.PatientID != nil {
			p, err := r.Patients.GetByID(ctx, *in.PatientID)
			if err != nil {
				return err
			}
			if p == nil || p.HospitalCenterID != centerID {
				return fmt.Errorf("%w: paciente %d", domain.ErrNotFound, *in.PatientID)
			}
		}

		items := make([]*entity.SaleItem, 0, len(in.Items))
		for _, it := range in.Items {
			p, err := r.Products.GetByID(ctx, it.ProductID)
			if err != nil {
				return err
			}
			if p == nil || !p.IsActive {
				return fmt.Errorf("%w: producto %d", domain.ErrNotFound, it.ProductID)
			}
			items = append(items, &entity.SaleItem{ProductID: p.ID, Quantity: it.Quantity, UnitPrice: p.UnitPrice})
		}

		now := uc.now()
		sale = &entity.Sale{
			HospitalCenterID: centerID,
			PatientID:        in.PatientID,
			SaleNumber:       documentNumber("V", now),
			SaleDate:         now,
			DiscountAmount:   in.DiscountAmount,
			AmountPaid:       decimal.Zero,
			Notes:            strings.TrimSpace(in.Notes),
		}
		if err := sale.Totalize(items); err != nil {
			return fmt.Errorf("%w: descuento %s fuera de rango", err, in.DiscountAmount.String())
		}
		sale.Stamp(id.UserID, now)
		if err := r.Sales.Add(ctx, sale); err != nil {
			return err
		}
		for _, it := range items {
			it.SaleID = sale.ID
		}
		if err := r.SaleItems.AddBatch(ctx, items); err != nil {
			return err
		}

		ref := sale.ID
		for _, it := range items {
			m := &entity.StockMovement{
				ProductID:        it.ProductID,
				HospitalCenterID: centerID,
				MovementType:     entity.MovementSale,
				Quantity:         it.Quantity.Neg(),
				ReferenceType:    entity.ReferenceSale,
				ReferenceID:      &ref,
				MovementDate:     now,
			}
			m.Stamp(id.UserID, now)
			if err := uc.stock.ApplyInTx(ctx, r, m); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toSaleResponse(sale), nil
}

// GetByID venta accesible desde la identidad.
func (uc *SaleUseCase) GetByID(ctx context.Context, id session.Identity, saleID int64) (*dto.SaleResponse, error) {
	s, err := loadSale(ctx, uc.repos, id, saleID, false)
	if err != nil {
		return nil, err
	}
	return toSaleResponse(s), nil
}

// ListUnpaid ventas del centro actual con saldo pendiente.
func (uc *SaleUseCase) ListUnpaid(ctx context.Context, id session.Identity) ([]dto.SaleResponse, error) {
	centerID, err := id.RequireCenter()
	if err != nil {
		return nil, err
	}
	sales, err := uc.repos.Sales.List(ctx,
		query.Eq("hospital_center_id", centerID),
		query.In("payment_status", entity.PaymentUnpaid, entity.PaymentPartial),
		query.OrderBy("sale_date", query.Desc))
	if err != nil {
		return nil, err
	}
	out := make([]dto.SaleResponse, 0, len(sales))
	for _, s := range sales {
		out = append(out, *toSaleResponse(s))
	}
	return out, nil
}

func loadSale(ctx context.Context, r repository.Repos, id session.Identity, saleID int64, forUpdate bool) (*entity.Sale, error) {
	get := r.Sales.GetByID
	if forUpdate {
		get = r.Sales.GetForUpdate
	}
	s, err := get(ctx, saleID)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, fmt.Errorf("%w: venta %d", domain.ErrNotFound, saleID)
	}
	if !id.CanAccessCenter(s.HospitalCenterID) {
		return nil, domain.ErrForbidden
	}
	return s, nil
}

// documentNumber PREFIJO-AAAAMMDD-XXXXXX.
func documentNumber(prefix string, now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return prefix + "-" + now.Format("20060102") + "-" + suffix
}

func toSaleResponse(s *entity.Sale) *dto.SaleResponse {
	return &dto.SaleResponse{
		ID:             s.ID,
		SaleNumber:     s.SaleNumber,
		SaleDate:       s.SaleDate,
		TotalAmount:    s.TotalAmount,
		DiscountAmount: s.DiscountAmount,
		FinalAmount:    s.FinalAmount,
		AmountPaid:     s.AmountPaid,
		PaymentStatus:  s.PaymentStatus,
	}
}
