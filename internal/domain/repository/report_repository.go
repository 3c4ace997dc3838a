package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// CenterStatistics indicadores de un centro (o globales) en un rango de fechas.
type CenterStatistics struct {
	CenterID          *int64
	From              time.Time
	To                time.Time
	Patients          int64
	NewPatients       int64
	Episodes          int64
	OpenEpisodes      int64
	Examinations      int64
	PaymentsCollected decimal.Decimal
	SalesAmount       decimal.Decimal
	OutstandingCare   decimal.Decimal // saldo pendiente de episodios
	LowStockProducts  int64
}

// PaymentBreakdown total cobrado por medio de pago.
type PaymentBreakdown struct {
	Method string          `db:"method"`
	Count  int64           `db:"count"`
	Total  decimal.Decimal `db:"total"`
}

// ReportRepository consultas de solo lectura para informes.
type ReportRepository interface {
	CenterStatistics(ctx context.Context, centerID *int64, from, to time.Time) (*CenterStatistics, error)
	PaymentsByMethod(ctx context.Context, centerID *int64, from, to time.Time) ([]PaymentBreakdown, error)
}
