package inventory

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

const referenceTransfer = "StockTransfer"

// MovementUseCase motor de stock: cada movimiento bloquea la fila (producto, centro)
// con SELECT FOR UPDATE, valida que la cantidad no quede negativa, actualiza
// StockInventory y guarda el movimiento en la misma transacción.
// Invariante: CurrentQuantity = Σ StockMovement.Quantity del par (producto, centro).
type MovementUseCase struct {
	repos repository.Repos
	uow   repository.UnitOfWork
	now   func() time.Time
}

// NewMovementUseCase construye el caso de uso.
func NewMovementUseCase(repos repository.Repos, uow repository.UnitOfWork) *MovementUseCase {
	return &MovementUseCase{repos: repos, uow: uow, now: time.Now}
}

// ApplyInTx aplica un movimiento ya firmado usando los repositorios del caller (misma transacción).
// Si el stock quedaría negativo devuelve ErrInsufficientStock y el caller debe hacer rollback.
func (uc *MovementUseCase) ApplyInTx(ctx context.Context, r repository.Repos, m *entity.StockMovement) error {
	inv, err := r.Stock.GetForUpdateByProduct(ctx, m.ProductID, m.HospitalCenterID)
	if err != nil {
		return err
	}
	if m.Quantity.IsNegative() && !inv.Covers(m.Quantity.Neg()) {
		return fmt.Errorf("%w: producto %d, disponible %s, solicitado %s",
			domain.ErrInsufficientStock, m.ProductID, inv.CurrentQuantity.String(), m.Quantity.Neg().String())
	}
	if m.MovementDate.IsZero() {
		m.MovementDate = uc.now()
	}
	inv.Apply(m)
	if err := r.Stock.Save(ctx, inv); err != nil {
		return err
	}
	return r.Movements.Add(ctx, m)
}

// Transfer traslada cantidad del centro actual a otro: salida en origen, entrada en destino
// y registro de la transferencia, todo o nada. Las filas se bloquean en orden de centro.
func (uc *MovementUseCase) Transfer(ctx context.Context, id session.Identity, in dto.TransferRequest) (int64, error) {
	from, err := id.RequireCenter()
	if err != nil {
		return 0, err
	}
	if in.ProductID <= 0 || in.ToCenterID <= 0 || in.ToCenterID == from {
		return 0, fmt.Errorf("%w: producto y centro destino distinto del origen", domain.ErrInvalidInput)
	}
	if !in.Quantity.IsPositive() {
		return 0, fmt.Errorf("%w: cantidad debe ser positiva", domain.ErrInvalidInput)
	}

	var transferID int64
	err = uc.uow.Do(ctx, func(r repository.Repos) error {
		if _, err := activeProduct(ctx, r, in.ProductID); err != nil {
			return err
		}
		dest, err := r.Centers.GetByID(ctx, in.ToCenterID)
		if err != nil {
			return err
		}
		if dest == nil || !dest.IsActive {
			return fmt.Errorf("%w: centro destino %d", domain.ErrNotFound, in.ToCenterID)
		}
		now := uc.now()
		t := &entity.StockTransfer{
			ProductID:    in.ProductID,
			FromCenterID: from,
			ToCenterID:   in.ToCenterID,
			Quantity:     in.Quantity,
			Status:       entity.TransferCompleted,
			TransferDate: now,
			Notes:        strings.TrimSpace(in.Notes),
		}
		t.Stamp(id.UserID, now)
		if err := r.Transfers.Add(ctx, t); err != nil {
			return err
		}
		ref := t.ID
		out := uc.movement(id, in.ProductID, from, entity.MovementTransferOut, in.Quantity.Neg(), now, in.Notes)
		dst := uc.movement(id, in.ProductID, in.ToCenterID, entity.MovementTransferIn, in.Quantity, now, in.Notes)
		out.ReferenceType, out.ReferenceID = referenceTransfer, &ref
		dst.ReferenceType, dst.ReferenceID = referenceTransfer, &ref

		if dst.HospitalCenterID < out.HospitalCenterID {
			// orden global de bloqueo por centro; la fila destino se crea si no existe
			if _, err := r.Stock.GetForUpdateByProduct(ctx, in.ProductID, dst.HospitalCenterID); err != nil {
				return err
			}
		}
		if err := uc.ApplyInTx(ctx, r, out); err != nil {
			return err
		}
		if err := uc.ApplyInTx(ctx, r, dst); err != nil {
			return err
		}
		transferID = t.ID
		return nil
	})
	return transferID, err
}

// Reconcile compara el stock guardado con la suma de movimientos del par (producto, centro).
func (uc *MovementUseCase) Reconcile(ctx context.Context, productID, centerID int64) (stored, computed decimal.Decimal, err error) {
	inv, err := uc.repos.Stock.First(ctx, query.Eq("product_id", productID), query.Eq("hospital_center_id", centerID))
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	sum, err := uc.repos.Stock.SumMovements(ctx, productID, centerID)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	if inv == nil {
		return decimal.Zero, sum, nil
	}
	return inv.CurrentQuantity, sum, nil
}

func (uc *MovementUseCase) movement(id session.Identity, productID, centerID int64, kind string, qty decimal.Decimal, at time.Time, notes string) *entity.StockMovement {
	m := &entity.StockMovement{
		ProductID:        productID,
		HospitalCenterID: centerID,
		MovementType:     kind,
		Quantity:         qty,
		Notes:            strings.TrimSpace(notes),
		MovementDate:     at,
	}
	m.Stamp(id.UserID, at)
	return m
}

func activeProduct(ctx context.Context, r repository.Repos, productID int64) (*entity.Product, error) {
	p, err := r.Products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p == nil || !p.IsActive {
		return nil, fmt.Errorf("%w: producto %d", domain.ErrNotFound, productID)
	}
	return p, nil
}
