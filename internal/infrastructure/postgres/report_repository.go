package postgres

import (
	"context"
	"time"

	"github.com/jhoicas/Hospital-api/internal/domain/repository"
)

var _ repository.ReportRepository = (*ReportRepo)(nil)

// ReportRepo consultas agregadas de solo lectura. centerID nil = todos los centros.
type ReportRepo struct {
	q Querier
}

// NewReportRepository construye el adaptador de informes.
func NewReportRepository(q Querier) *ReportRepo {
	return &ReportRepo{q: q}
}

func (r *ReportRepo) CenterStatistics(ctx context.Context, centerID *int64, from, to time.Time) (*repository.CenterStatistics, error) {
	s := &repository.CenterStatistics{CenterID: centerID, From: from, To: to}
	err := r.q.QueryRow(ctx, `
		SELECT
		  (SELECT COUNT(*) FROM patients WHERE is_active AND ($1::bigint IS NULL OR hospital_center_id = $1)),
		  (SELECT COUNT(*) FROM patients WHERE created_at BETWEEN $2 AND $3
		      AND ($1::bigint IS NULL OR hospital_center_id = $1)),
		  (SELECT COUNT(*) FROM care_episodes WHERE start_date BETWEEN $2 AND $3
		      AND ($1::bigint IS NULL OR hospital_center_id = $1)),
		  (SELECT COUNT(*) FROM care_episodes WHERE status = 'Open'
		      AND ($1::bigint IS NULL OR hospital_center_id = $1)),
		  (SELECT COUNT(*) FROM examinations WHERE requested_at BETWEEN $2 AND $3
		      AND ($1::bigint IS NULL OR hospital_center_id = $1)),
		  (SELECT COALESCE(SUM(amount), 0) FROM payments WHERE payment_date BETWEEN $2 AND $3
		      AND ($1::bigint IS NULL OR hospital_center_id = $1)),
		  (SELECT COALESCE(SUM(final_amount), 0) FROM sales WHERE sale_date BETWEEN $2 AND $3
		      AND ($1::bigint IS NULL OR hospital_center_id = $1)),
		  (SELECT COALESCE(SUM(remaining_balance), 0) FROM care_episodes
		      WHERE $1::bigint IS NULL OR hospital_center_id = $1),
		  (SELECT COUNT(*) FROM stock_inventory s JOIN products p ON p.id = s.product_id
		      WHERE p.is_active AND s.current_quantity < p.minimum_stock
		      AND ($1::bigint IS NULL OR s.hospital_center_id = $1))`,
		centerID, from, to).Scan(
		&s.Patients, &s.NewPatients, &s.Episodes, &s.OpenEpisodes, &s.Examinations,
		&s.PaymentsCollected, &s.SalesAmount, &s.OutstandingCare, &s.LowStockProducts)
	if err != nil {
		return nil, wrap("center statistics", err)
	}
	return s, nil
}

func (r *ReportRepo) PaymentsByMethod(ctx context.Context, centerID *int64, from, to time.Time) ([]repository.PaymentBreakdown, error) {
	list, err := Project[repository.PaymentBreakdown](ctx, r.q, `
		SELECT payment_method AS method, COUNT(*) AS count, COALESCE(SUM(amount), 0) AS total
		FROM payments
		WHERE payment_date BETWEEN $2 AND $3 AND ($1::bigint IS NULL OR hospital_center_id = $1)
		GROUP BY payment_method
		ORDER BY 3 DESC`, centerID, from, to)
	if err != nil {
		return nil, wrap("payments by method", err)
	}
	return list, nil
}
