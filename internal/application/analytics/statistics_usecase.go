// Package analytics contiene los informes de actividad por centro.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Hospital-api/internal/application/dto"
	"github.com/jhoicas/Hospital-api/internal/application/session"
	"github.com/jhoicas/Hospital-api/internal/domain"
	"github.com/jhoicas/Hospital-api/internal/domain/repository"
)

const dateLayout = "2006-01-02"

// StatisticsUseCase indicadores de un centro (o globales para SuperAdmin) en un rango de fechas.
//
// Fuente de datos: ReportRepository (consultas read-only).
type StatisticsUseCase struct {
	reports repository.ReportRepository
	now     func() time.Time
}

// NewStatisticsUseCase construye el caso de uso.
func NewStatisticsUseCase(reports repository.ReportRepository) *StatisticsUseCase {
	return &StatisticsUseCase{reports: reports, now: time.Now}
}

// WithClock fija el reloj (tests).
func (uc *StatisticsUseCase) WithClock(now func() time.Time) *StatisticsUseCase {
	uc.now = now
	return uc
}

// Get construye el informe. Sin fechas: desde el día 1 del mes en curso hasta hoy.
// Alcance: un usuario que no es SuperAdmin solo ve su centro actual; SuperAdmin puede
// pedir cualquier centro o, con CenterID 0, el total de todos.
//
// Dos consultas en paralelo:
//  1. CenterStatistics → contadores e importes
//  2. PaymentsByMethod → desglose de cobros
func (uc *StatisticsUseCase) Get(ctx context.Context, id session.Identity, in dto.StatisticsRequest) (*dto.StatisticsResponse, error) {
	from, to, err := uc.period(in)
	if err != nil {
		return nil, err
	}
	centerID, err := scope(id, in.CenterID)
	if err != nil {
		return nil, err
	}

	// ── Goroutines para paralelizar las consultas ──────────────────────────────
	type statsResult struct {
		st  *repository.CenterStatistics
		err error
	}
	type methodsResult struct {
		lines []repository.PaymentBreakdown
		err   error
	}
	statsCh := make(chan statsResult, 1)
	methodsCh := make(chan methodsResult, 1)

	go func() {
		st, err := uc.reports.CenterStatistics(ctx, centerID, from, to)
		statsCh <- statsResult{st, err}
	}()
	go func() {
		lines, err := uc.reports.PaymentsByMethod(ctx, centerID, from, to)
		methodsCh <- methodsResult{lines, err}
	}()

	stats := <-statsCh
	methods := <-methodsCh
	if stats.err != nil {
		return nil, fmt.Errorf("estadísticas: indicadores: %w", stats.err)
	}
	if methods.err != nil {
		return nil, fmt.Errorf("estadísticas: medios de pago: %w", methods.err)
	}

	st := stats.st
	out := &dto.StatisticsResponse{
		CenterID:          centerID,
		From:              from,
		To:                to,
		Label:             periodLabel(from, to),
		Patients:          st.Patients,
		NewPatients:       st.NewPatients,
		Episodes:          st.Episodes,
		OpenEpisodes:      st.OpenEpisodes,
		Examinations:      st.Examinations,
		PaymentsCollected: st.PaymentsCollected.Round(2),
		SalesAmount:       st.SalesAmount.Round(2),
		OutstandingCare:   st.OutstandingCare.Round(2),
		LowStockProducts:  st.LowStockProducts,
		ByMethod:          make([]dto.PaymentMethodLine, 0, len(methods.lines)),
	}
	for _, m := range methods.lines {
		out.ByMethod = append(out.ByMethod, dto.PaymentMethodLine{Method: m.Method, Count: m.Count, Total: m.Total.Round(2)})
	}
	return out, nil
}

// period rango [from 00:00, to 23:59:59.999].
func (uc *StatisticsUseCase) period(in dto.StatisticsRequest) (time.Time, time.Time, error) {
	now := uc.now()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	to := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	var err error
	if in.From != "" {
		if from, err = time.ParseInLocation(dateLayout, in.From, now.Location()); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: fecha desde %q", domain.ErrInvalidInput, in.From)
		}
	}
	if in.To != "" {
		if to, err = time.ParseInLocation(dateLayout, in.To, now.Location()); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: fecha hasta %q", domain.ErrInvalidInput, in.To)
		}
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: rango de fechas invertido", domain.ErrInvalidInput)
	}
	return from, to.Add(24*time.Hour - time.Nanosecond), nil
}

// scope centro del informe; nil = todos los centros.
func scope(id session.Identity, requested int64) (*int64, error) {
	if id.IsSuperAdmin() {
		if requested == 0 {
			return nil, nil
		}
		return &requested, nil
	}
	current, err := id.RequireCenter()
	if err != nil {
		return nil, err
	}
	if requested != 0 && requested != current {
		return nil, domain.ErrForbidden
	}
	return &current, nil
}

// periodLabel etiqueta legible, ej: "Octobre 2026" o "03/10/2026 - 19/10/2026".
func periodLabel(from, to time.Time) string {
	months := [...]string{
		"Janvier", "Février", "Mars", "Avril", "Mai", "Juin",
		"Juillet", "Août", "Septembre", "Octobre", "Novembre", "Décembre",
	}
	if from.Day() == 1 && from.Month() == to.Month() && from.Year() == to.Year() {
		return fmt.Sprintf("%s %d", months[from.Month()-1], from.Year())
	}
	return from.Format("02/01/2006") + " - " + to.Format("02/01/2006")
}
