package repository

import (
	"context"

	"github.com/jhoicas/Hospital-api/internal/domain/entity"
	"github.com/jhoicas/Hospital-api/internal/domain/query"
)

// CenterImpact registros que dependen de un centro antes de desactivarlo.
// Las dependencias duras bloquean; las blandas generan advertencias.
type CenterImpact struct {
	// duras
	OpenEpisodes int64
	StockOnHand  int64 // productos con cantidad > 0
	UnpaidSales  int64
	// blandas
	ActiveAssignments int64
	ActivePatients    int64
	ActiveSessions    int64 // lo completa el caso de uso desde el SessionStore
}

// Blocking hay dependencias duras.
func (i CenterImpact) Blocking() bool {
	return i.OpenEpisodes > 0 || i.StockOnHand > 0 || i.UnpaidSales > 0
}

// HasWarnings hay dependencias blandas.
func (i CenterImpact) HasWarnings() bool {
	return i.ActiveAssignments > 0 || i.ActivePatients > 0 || i.ActiveSessions > 0
}

// CenterSummary fila de la pantalla de centros.
type CenterSummary struct {
	ID           int64
	Name         string
	Address      string
	Phone        string
	IsActive     bool
	StaffCount   int64
	PatientCount int64
}

// CenterOption proyección id/nombre para selectores.
type CenterOption struct {
	ID   int64
	Name string
}

// HospitalCenterRepository puerto de persistencia para HospitalCenter.
type HospitalCenterRepository interface {
	Repository[entity.HospitalCenter]

	NameExists(ctx context.Context, name string, excludeID int64) (bool, error)
	Impact(ctx context.Context, centerID int64) (*CenterImpact, error)
	Search(ctx context.Context, term string, active *bool, page, size int) (*query.Page[CenterSummary], error)
	Options(ctx context.Context, activeOnly bool) ([]CenterOption, error)
}
