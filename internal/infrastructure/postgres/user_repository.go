package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Hospital-api/internal/domain"
	"github.com/jhoicas/Hospital-api/internal/domain/entity"
	"github.com/jhoicas/Hospital-api/internal/domain/query"
	"github.com/jhoicas/Hospital-api/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

// UserRepo implementación del puerto UserRepository sobre PostgreSQL (pool o tx).
type UserRepo struct {
	*Table[entity.User]
}

// NewUserRepository construye el adaptador de persistencia para usuarios.
func NewUserRepository(q Querier) *UserRepo {
	return &UserRepo{Table: NewTable[entity.User](q, "users")}
}

// GetByEmail obtiene un usuario por email normalizado; nil si no existe.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.First(ctx, query.Eq("email", entity.NormalizeEmail(email)))
}

func (r *UserRepo) EmailExists(ctx context.Context, email string, excludeID int64) (bool, error) {
	return r.Exists(ctx,
		query.Eq("email", entity.NormalizeEmail(email)),
		query.When(excludeID > 0, query.Neq("id", excludeID)),
	)
}

// activeAssignmentJoin asignaciones vigentes (activas y sin fecha de fin pasada).
const activeAssignmentJoin = `a.is_active AND a.start_date <= now() AND (a.end_date IS NULL OR a.end_date > now())`

// Search lista usuarios con sus centros y roles vigentes agregados en una sola fila.
func (r *UserRepo) Search(ctx context.Context, f repository.UserSearch) (*query.Page[repository.UserSummary], error) {
	page, size := query.NormalizePage(f.Page, f.Size)
	b := &sqlBuilder{}
	var conds []string
	if term := strings.TrimSpace(f.Term); term != "" {
		p := b.arg("%" + strings.ToLower(term) + "%")
		conds = append(conds, "(lower(u.first_name || ' ' || u.last_name) LIKE "+p+" OR u.email LIKE "+p+")")
	}
	if f.CenterID > 0 {
		conds = append(conds, `EXISTS (SELECT 1 FROM user_center_assignments a
			WHERE a.user_id = u.id AND a.hospital_center_id = `+b.arg(f.CenterID)+` AND `+activeAssignmentJoin+`)`)
	}
	if f.Role != "" {
		conds = append(conds, `EXISTS (SELECT 1 FROM user_center_assignments a
			WHERE a.user_id = u.id AND a.role = `+b.arg(f.Role)+` AND `+activeAssignmentJoin+`)`)
	}
	if f.Active != nil {
		conds = append(conds, "u.is_active = "+b.arg(*f.Active))
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	sql := `
		SELECT u.id, u.first_name || ' ' || u.last_name, u.email, u.phone, u.is_active,
		       u.must_change_password, u.last_login_at,
		       COALESCE(string_agg(DISTINCT c.name, ', '), ''),
		       COALESCE(string_agg(DISTINCT a.role, ', '), ''),
		       u.created_at, COUNT(*) OVER ()
		FROM users u
		LEFT JOIN user_center_assignments a ON a.user_id = u.id AND ` + activeAssignmentJoin + `
		LEFT JOIN hospital_centers c ON c.id = a.hospital_center_id` + where + `
		GROUP BY u.id
		ORDER BY u.last_name, u.first_name, u.id
		LIMIT ` + b.arg(size) + ` OFFSET ` + b.arg((page-1)*size)

	rows, err := r.q.Query(ctx, sql, b.args...)
	if err != nil {
		return nil, wrap("search users", err)
	}
	var total int64
	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*repository.UserSummary, error) {
		var s repository.UserSummary
		err := row.Scan(&s.ID, &s.FullName, &s.Email, &s.Phone, &s.IsActive, &s.MustChangePassword,
			&s.LastLoginAt, &s.Centers, &s.Roles, &s.CreatedAt, &total)
		return &s, err
	})
	if err != nil {
		return nil, wrap("scan user summary", err)
	}
	return &query.Page[repository.UserSummary]{Items: items, Total: total, Page: page, Size: size}, nil
}

func (r *UserRepo) UpdatePassword(ctx context.Context, id int64, hash string, mustChange bool, actor int64, at time.Time) error {
	n, err := r.Exec(ctx, `
		UPDATE users SET password_hash = $2, must_change_password = $3, modified_by = NULLIF($4, 0), modified_at = $5
		WHERE id = $1`, id, hash, mustChange, actor, at)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("update password: usuario %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (r *UserRepo) RecordLogin(ctx context.Context, id int64, at time.Time) error {
	_, err := r.Exec(ctx, `UPDATE users SET last_login_at = $2 WHERE id = $1`, id, at)
	return err
}

func (r *UserRepo) Statistics(ctx context.Context, centerID *int64) (*repository.UserStatistics, error) {
	sql := `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE u.is_active),
		       COUNT(*) FILTER (WHERE NOT u.is_active),
		       COUNT(*) FILTER (WHERE EXISTS (SELECT 1 FROM user_center_assignments a
		           WHERE a.user_id = u.id AND a.role = 'SuperAdmin' AND ` + activeAssignmentJoin + `)),
		       COUNT(*) FILTER (WHERE EXISTS (SELECT 1 FROM user_center_assignments a
		           WHERE a.user_id = u.id AND a.role = 'MedicalStaff' AND ` + activeAssignmentJoin + `)),
		       COUNT(*) FILTER (WHERE u.must_change_password)
		FROM users u
		WHERE $1::bigint IS NULL OR EXISTS (SELECT 1 FROM user_center_assignments a
		    WHERE a.user_id = u.id AND a.hospital_center_id = $1 AND ` + activeAssignmentJoin + `)`
	var s repository.UserStatistics
	err := r.q.QueryRow(ctx, sql, centerID).Scan(
		&s.Total, &s.Active, &s.Inactive, &s.SuperAdmins, &s.MedicalStaff, &s.MustChangePassword)
	if err != nil {
		return nil, wrap("user statistics", err)
	}
	return &s, nil
}
