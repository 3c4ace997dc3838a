package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/Hospital-api/internal/domain/repository"
)

// StockExporter genera la hoja de inventario de un centro (xlsx).
type StockExporter interface {
	ExportStock(ctx context.Context, centerName string, lines []repository.StockLine, at time.Time) ([]byte, error)
}
