package inventory

import (
	"context"
	"fmt"

	"github.com/jhoicas/Hospital-api/internal/application/dto"
	"github.com/jhoicas/Hospital-api/internal/application/session"
	"github.com/jhoicas/Hospital-api/internal/domain"
	"github.com/jhoicas/Hospital-api/internal/domain/entity"
	"github.com/jhoicas/Hospital-api/internal/domain/repository"
)

// Register adapta el request HTTP a un movimiento en el centro actual.
// Solo entradas, salidas y ajustes; traslados y ventas tienen su propio flujo.
func (uc *MovementUseCase) Register(ctx context.Context, id session.Identity, in dto.MovementRequest) (int64, error) {
	centerID, err := id.RequireCenter()
	if err != nil {
		return 0, err
	}
	switch in.MovementType {
	case entity.MovementEntry, entity.MovementExit, entity.MovementAdjustment:
	default:
		return 0, fmt.Errorf("%w: tipo de movimiento %q", domain.ErrInvalidInput, in.MovementType)
	}
	qty, err := entity.SignedQuantity(in.MovementType, in.Quantity)
	if err != nil {
		return 0, fmt.Errorf("%w: cantidad %s para %s", err, in.Quantity.String(), in.MovementType)
	}

	var movementID int64
	err = uc.uow.Do(ctx, func(r repository.Repos) error {
		if _, err := activeProduct(ctx, r, in.ProductID); err != nil {
			return err
		}
		m := uc.movement(id, in.ProductID, centerID, in.MovementType, qty, uc.now(), in.Notes)
		if err := uc.ApplyInTx(ctx, r, m); err != nil {
			return err
		}
		movementID = m.ID
		return nil
	})
	return movementID, err
}
