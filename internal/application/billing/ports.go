package billing

import (
	"context"

	"github.com/jhoicas/Hospital-api/internal/application/dto"
	"github.com/jhoicas/Hospital-api/internal/domain/entity"
	"github.com/jhoicas/Hospital-api/internal/domain/repository"
)

// StockWriter integra ventas con inventario.
// ApplyInTx aplica el movimiento usando los repositorios del caller (misma transacción).
// Si retorna error (ej: ErrInsufficientStock), el caller debe hacer rollback.
type StockWriter interface {
	ApplyInTx(ctx context.Context, r repository.Repos, m *entity.StockMovement) error
}

// DocumentGenerator genera los documentos PDF a partir de sus vistas planas.
type DocumentGenerator interface {
	Receipt(ctx context.Context, v dto.ReceiptView) ([]byte, error)
	Prescription(ctx context.Context, v dto.PrescriptionView) ([]byte, error)
	ExamResult(ctx context.Context, v dto.ExamResultView) ([]byte, error)
}
