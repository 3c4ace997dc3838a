package postgres

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Hospital-api/internal/domain/entity"
	"github.com/jhoicas/Hospital-api/internal/domain/query"
	"github.com/jhoicas/Hospital-api/internal/domain/repository"
)

var _ repository.HospitalCenterRepository = (*CenterRepo)(nil)

// CenterRepo adaptador de hospital_centers.
type CenterRepo struct {
	*Table[entity.HospitalCenter]
}

// NewCenterRepository construye el adaptador de centros. Pasar pool o tx (Querier).
func NewCenterRepository(q Querier) *CenterRepo {
	return &CenterRepo{Table: NewTable[entity.HospitalCenter](q, "hospital_centers")}
}

func (r *CenterRepo) NameExists(ctx context.Context, name string, excludeID int64) (bool, error) {
	var ok bool
	err := r.q.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM hospital_centers WHERE lower(name) = lower($1) AND id <> $2)`,
		strings.TrimSpace(name), excludeID).Scan(&ok)
	if err != nil {
		return false, wrap("center name exists", err)
	}
	return ok, nil
}

// Impact cuenta los registros que dependen del centro.
func (r *CenterRepo) Impact(ctx context.Context, centerID int64) (*repository.CenterImpact, error) {
	var im repository.CenterImpact
	err := r.q.QueryRow(ctx, `
		SELECT
		  (SELECT COUNT(*) FROM care_episodes WHERE hospital_center_id = $1 AND status = 'Open'),
		  (SELECT COUNT(*) FROM stock_inventory WHERE hospital_center_id = $1 AND current_quantity > 0),
		  (SELECT COUNT(*) FROM sales WHERE hospital_center_id = $1 AND payment_status <> 'Paid'),
		  (SELECT COUNT(*) FROM user_center_assignments a WHERE a.hospital_center_id = $1 AND `+activeAssignmentJoin+`),
		  (SELECT COUNT(*) FROM patients WHERE hospital_center_id = $1 AND is_active)`,
		centerID).Scan(&im.OpenEpisodes, &im.StockOnHand, &im.UnpaidSales, &im.ActiveAssignments, &im.ActivePatients)
	if err != nil {
		return nil, wrap("center impact", err)
	}
	return &im, nil
}

func (r *CenterRepo) Search(ctx context.Context, term string, active *bool, page, size int) (*query.Page[repository.CenterSummary], error) {
	page, size = query.NormalizePage(page, size)
	b := &sqlBuilder{}
	var conds []string
	if term = strings.TrimSpace(term); term != "" {
		conds = append(conds, "c.name ILIKE "+b.arg("%"+term+"%"))
	}
	if active != nil {
		conds = append(conds, "c.is_active = "+b.arg(*active))
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}
	sql := `
		SELECT c.id, c.name, c.address, c.phone, c.is_active,
		       (SELECT COUNT(DISTINCT a.user_id) FROM user_center_assignments a
		         WHERE a.hospital_center_id = c.id AND ` + activeAssignmentJoin + `),
		       (SELECT COUNT(*) FROM patients p WHERE p.hospital_center_id = c.id AND p.is_active),
		       COUNT(*) OVER ()
		FROM hospital_centers c` + where + `
		ORDER BY c.name
		LIMIT ` + b.arg(size) + ` OFFSET ` + b.arg((page-1)*size)
	rows, err := r.q.Query(ctx, sql, b.args...)
	if err != nil {
		return nil, wrap("search centers", err)
	}
	var total int64
	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*repository.CenterSummary, error) {
		var s repository.CenterSummary
		err := row.Scan(&s.ID, &s.Name, &s.Address, &s.Phone, &s.IsActive, &s.StaffCount, &s.PatientCount, &total)
		return &s, err
	})
	if err != nil {
		return nil, wrap("scan center summary", err)
	}
	return &query.Page[repository.CenterSummary]{Items: items, Total: total, Page: page, Size: size}, nil
}

func (r *CenterRepo) Options(ctx context.Context, activeOnly bool) ([]repository.CenterOption, error) {
	rows, err := r.q.Query(ctx,
		`SELECT id, name FROM hospital_centers WHERE NOT $1 OR is_active ORDER BY name`, activeOnly)
	if err != nil {
		return nil, wrap("center options", err)
	}
	opts, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (repository.CenterOption, error) {
		var o repository.CenterOption
		err := row.Scan(&o.ID, &o.Name)
		return o, err
	})
	if err != nil {
		return nil, wrap("scan center options", err)
	}
	return opts, nil
}
