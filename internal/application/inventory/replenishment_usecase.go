package inventory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Hospital-api/internal/application/dto"
	"github.com/jhoicas/Hospital-api/internal/application/session"
	"github.com/jhoicas/Hospital-api/internal/domain"
	"github.com/jhoicas/Hospital-api/internal/domain/entity"
	"github.com/jhoicas/Hospital-api/internal/domain/query"
	"github.com/jhoicas/Hospital-api/internal/domain/repository"
)

// StockUseCase consultas de inventario del centro actual: listado, reposición y exportación.
type StockUseCase struct {
	repos    repository.Repos
	exporter StockExporter
	now      func() time.Time
}

// NewStockUseCase construye el caso de uso. exporter puede ser nil si no se exporta.
func NewStockUseCase(repos repository.Repos, exporter StockExporter) *StockUseCase {
	return &StockUseCase{repos: repos, exporter: exporter, now: time.Now}
}

// Lines inventario del centro actual.
func (uc *StockUseCase) Lines(ctx context.Context, id session.Identity) ([]dto.StockLineResponse, error) {
	centerID, err := id.RequireCenter()
	if err != nil {
		return nil, err
	}
	lines, err := uc.repos.Stock.ListByCenter(ctx, centerID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.StockLineResponse, 0, len(lines))
	for _, l := range lines {
		out = append(out, dto.StockLineResponse{
			ProductID:       l.ProductID,
			ProductCode:     l.ProductCode,
			ProductName:     l.ProductName,
			CategoryName:    l.CategoryName,
			Unit:            l.Unit,
			CurrentQuantity: l.CurrentQuantity,
			MinimumStock:    l.MinimumStock,
			Low:             l.Low(),
		})
	}
	return out, nil
}

// Replenishment productos bajo mínimo con cantidad sugerida (1,5 × mínimo − actual).
// Prioridad: mayor salida por ventas en 90 días, luego mayor déficit.
func (uc *StockUseCase) Replenishment(ctx context.Context, id session.Identity) ([]dto.ReplenishmentLine, error) {
	centerID, err := id.RequireCenter()
	if err != nil {
		return nil, err
	}
	lines, err := uc.repos.Stock.ListByCenter(ctx, centerID)
	if err != nil {
		return nil, err
	}

	since := uc.now().AddDate(0, 0, -90)
	factor := decimal.NewFromFloat(1.5)
	out := make([]dto.ReplenishmentLine, 0)
	for _, l := range lines {
		if !l.Low() {
			continue
		}
		ideal := l.MinimumStock.Mul(factor)
		suggested := ideal.Sub(l.CurrentQuantity)
		if suggested.IsNegative() {
			suggested = decimal.Zero
		}
		sold, err := uc.repos.Movements.Sum(ctx, "quantity",
			query.Eq("product_id", l.ProductID),
			query.Eq("hospital_center_id", centerID),
			query.Eq("movement_type", entity.MovementSale),
			query.Gte("movement_date", since),
		)
		if err != nil {
			return nil, err
		}
		out = append(out, dto.ReplenishmentLine{
			ProductID:         l.ProductID,
			ProductCode:       l.ProductCode,
			ProductName:       l.ProductName,
			CurrentQuantity:   l.CurrentQuantity,
			MinimumStock:      l.MinimumStock,
			IdealStock:        ideal,
			SuggestedQuantity: suggested,
			EstimatedCost:     suggested.Mul(l.UnitPrice),
			SoldLast90Days:    sold.Abs(),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.SoldLast90Days.Equal(b.SoldLast90Days) {
			return a.SoldLast90Days.GreaterThan(b.SoldLast90Days)
		}
		return a.MinimumStock.Sub(a.CurrentQuantity).GreaterThan(b.MinimumStock.Sub(b.CurrentQuantity))
	})
	for i := range out {
		out[i].Priority = i + 1
	}
	return out, nil
}

// Export hoja xlsx con el inventario del centro actual.
func (uc *StockUseCase) Export(ctx context.Context, id session.Identity) (*dto.Document, error) {
	if uc.exporter == nil {
		return nil, fmt.Errorf("exportador de inventario no configurado")
	}
	centerID, err := id.RequireCenter()
	if err != nil {
		return nil, err
	}
	center, err := uc.repos.Centers.GetByID(ctx, centerID)
	if err != nil {
		return nil, err
	}
	if center == nil {
		return nil, fmt.Errorf("%w: centro %d", domain.ErrNotFound, centerID)
	}
	lines, err := uc.repos.Stock.ListByCenter(ctx, centerID)
	if err != nil {
		return nil, err
	}
	at := uc.now()
	content, err := uc.exporter.ExportStock(ctx, center.Name, lines, at)
	if err != nil {
		return nil, fmt.Errorf("exportar inventario: %w", err)
	}
	return &dto.Document{
		Filename:    fmt.Sprintf("inventaire-%d-%s.xlsx", centerID, at.Format("20060102")),
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		Content:     content,
	}, nil
}
