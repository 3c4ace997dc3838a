package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Hospital-api/internal/domain/entity"
	"github.com/jhoicas/Hospital-api/internal/domain/query"
	"github.com/jhoicas/Hospital-api/internal/domain/repository"
)

var _ repository.AssignmentRepository = (*AssignmentRepo)(nil)

// AssignmentRepo adaptador de user_center_assignments.
type AssignmentRepo struct {
	*Table[entity.UserCenterAssignment]
}

// NewAssignmentRepository construye el adaptador de asignaciones. Pasar pool o tx (Querier).
func NewAssignmentRepository(q Querier) *AssignmentRepo {
	return &AssignmentRepo{Table: NewTable[entity.UserCenterAssignment](q, "user_center_assignments")}
}

func (r *AssignmentRepo) FindActive(ctx context.Context, userID, centerID int64) (*entity.UserCenterAssignment, error) {
	return r.First(ctx,
		query.Eq("user_id", userID),
		query.Eq("hospital_center_id", centerID),
		query.Eq("is_active", true),
		query.OrderBy("start_date", query.Desc),
	)
}

const assignmentViewSelect = `
	SELECT a.id, a.user_id, a.hospital_center_id, a.role, a.is_active, a.start_date, a.end_date,
	       a.created_by, a.created_at, a.modified_by, a.modified_at,
	       u.first_name || ' ' || u.last_name, c.name
	FROM user_center_assignments a
	JOIN users u ON u.id = a.user_id
	JOIN hospital_centers c ON c.id = a.hospital_center_id`

func scanAssignmentViews(rows pgx.Rows) ([]repository.AssignmentView, error) {
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (repository.AssignmentView, error) {
		var v repository.AssignmentView
		a := &v.UserCenterAssignment
		err := row.Scan(&a.ID, &a.UserID, &a.HospitalCenterID, &a.Role, &a.IsActive, &a.StartDate, &a.EndDate,
			&a.CreatedBy, &a.CreatedAt, &a.ModifiedBy, &a.ModifiedAt, &v.UserName, &v.CenterName)
		return v, err
	})
}

// ListActiveByUser asignaciones vigentes en at, solo en centros activos.
func (r *AssignmentRepo) ListActiveByUser(ctx context.Context, userID int64, at time.Time) ([]repository.AssignmentView, error) {
	rows, err := r.q.Query(ctx, assignmentViewSelect+`
		WHERE a.user_id = $1 AND a.is_active AND c.is_active
		  AND a.start_date <= $2 AND (a.end_date IS NULL OR a.end_date > $2)
		ORDER BY c.name`, userID, at)
	if err != nil {
		return nil, wrap("list active assignments", err)
	}
	views, err := scanAssignmentViews(rows)
	return views, wrap("scan assignments", err)
}

func (r *AssignmentRepo) ListByUser(ctx context.Context, userID int64) ([]repository.AssignmentView, error) {
	rows, err := r.q.Query(ctx, assignmentViewSelect+`
		WHERE a.user_id = $1
		ORDER BY a.is_active DESC, a.start_date DESC`, userID)
	if err != nil {
		return nil, wrap("list assignments", err)
	}
	views, err := scanAssignmentViews(rows)
	return views, wrap("scan assignments", err)
}

// EndAll cierra solo las asignaciones aún activas; las cerradas conservan su end_date.
func (r *AssignmentRepo) EndAll(ctx context.Context, userID int64, centerID *int64, actor int64, at time.Time) (int64, error) {
	return r.Exec(ctx, `
		UPDATE user_center_assignments
		SET is_active = FALSE,
		    end_date = CASE WHEN end_date IS NULL OR end_date > $3 THEN $3 ELSE end_date END,
		    modified_by = NULLIF($4, 0), modified_at = $3
		WHERE user_id = $1 AND is_active AND ($2::bigint IS NULL OR hospital_center_id = $2)`,
		userID, centerID, at, actor)
}

func (r *AssignmentRepo) EndAllForCenter(ctx context.Context, centerID int64, actor int64, at time.Time) (int64, error) {
	return r.Exec(ctx, `
		UPDATE user_center_assignments
		SET is_active = FALSE,
		    end_date = CASE WHEN end_date IS NULL OR end_date > $2 THEN $2 ELSE end_date END,
		    modified_by = NULLIF($3, 0), modified_at = $2
		WHERE hospital_center_id = $1 AND is_active`,
		centerID, at, actor)
}
