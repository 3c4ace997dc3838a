// Package excel exporta el inventario de un centro a xlsx con excelize.
package excel

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/Hospital-api/internal/application/inventory"
	"github.com/jhoicas/Hospital-api/internal/domain/repository"
)

var _ inventory.StockExporter = (*StockExporter)(nil)

const sheetName = "Inventaire"

// stockHeader columnas de la hoja, en orden.
var stockHeader = []string{
	"Code",
	"Produit",
	"Catégorie",
	"Unité",
	"Quantité",
	"Stock minimum",
	"Prix unitaire",
	"Valeur",
	"Alerte",
}

var columnWidths = []float64{14, 36, 22, 10, 12, 14, 14, 16, 10}

// StockExporter implementa inventory.StockExporter.
type StockExporter struct{}

// NewStockExporter construye el exportador.
func NewStockExporter() *StockExporter { return &StockExporter{} }

// ExportStock genera el libro: título en la fila 1, cabecera en la 3 y una fila por producto.
// Las líneas bajo mínimo se resaltan.
func (e *StockExporter) ExportStock(_ context.Context, centerName string, lines []repository.StockLine, at time.Time) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("excel: crear hoja: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("excel: borrar hoja por defecto: %w", err)
	}
	f.SetActiveSheet(index)

	styles, err := newStyles(f)
	if err != nil {
		return nil, err
	}

	title := fmt.Sprintf("Inventaire - %s - %s", centerName, at.Format("02/01/2006 15:04"))
	if err := f.SetCellValue(sheetName, "A1", title); err != nil {
		return nil, fmt.Errorf("excel: título: %w", err)
	}
	if err := f.SetCellStyle(sheetName, "A1", "A1", styles.title); err != nil {
		return nil, fmt.Errorf("excel: estilo de título: %w", err)
	}

	const headerRow = 3
	for i, h := range stockHeader {
		cell, err := excelize.CoordinatesToCellName(i+1, headerRow)
		if err != nil {
			return nil, fmt.Errorf("excel: coordenadas: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return nil, fmt.Errorf("excel: cabecera %s: %w", cell, err)
		}
		if err := f.SetCellStyle(sheetName, cell, cell, styles.header); err != nil {
			return nil, fmt.Errorf("excel: estilo de cabecera: %w", err)
		}
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, fmt.Errorf("excel: columna %d: %w", i+1, err)
		}
		if err := f.SetColWidth(sheetName, name, name, columnWidths[i]); err != nil {
			return nil, fmt.Errorf("excel: ancho de columna: %w", err)
		}
	}

	for i, l := range lines {
		r := headerRow + 1 + i
		qty, _ := l.CurrentQuantity.Float64()
		minimum, _ := l.MinimumStock.Float64()
		price, _ := l.UnitPrice.Float64()
		value, _ := l.CurrentQuantity.Mul(l.UnitPrice).Round(2).Float64()
		alert := ""
		if l.Low() {
			alert = "BAS"
		}
		values := []any{l.ProductCode, l.ProductName, l.CategoryName, l.Unit, qty, minimum, price, value, alert}

		start, _ := excelize.CoordinatesToCellName(1, r)
		if err := f.SetSheetRow(sheetName, start, &values); err != nil {
			return nil, fmt.Errorf("excel: fila %d: %w", r, err)
		}
		if l.Low() {
			end, _ := excelize.CoordinatesToCellName(len(stockHeader), r)
			if err := f.SetCellStyle(sheetName, start, end, styles.low); err != nil {
				return nil, fmt.Errorf("excel: estilo de alerta: %w", err)
			}
		}
	}

	if err := f.SetPanes(sheetName, &excelize.Panes{
		Freeze: true, YSplit: headerRow, TopLeftCell: "A4", ActivePane: "bottomLeft",
	}); err != nil {
		return nil, fmt.Errorf("excel: inmovilizar cabecera: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("excel: escribir libro: %w", err)
	}
	return buf.Bytes(), nil
}

type styles struct {
	title, header, low int
}

func newStyles(f *excelize.File) (styles, error) {
	var s styles
	var err error
	if s.title, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 13}}); err != nil {
		return s, fmt.Errorf("excel: estilo: %w", err)
	}
	border := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
	}
	if s.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DCEFF2"}, Pattern: 1},
		Border:    border,
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	}); err != nil {
		return s, fmt.Errorf("excel: estilo: %w", err)
	}
	if s.low, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Color: "#9C0006"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#FFC7CE"}, Pattern: 1},
	}); err != nil {
		return s, fmt.Errorf("excel: estilo: %w", err)
	}
	return s, nil
}
