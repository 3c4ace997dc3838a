package postgres

import (
	"context"
	"reflect"
	"strings"
	"time"

	"github.com/jhoicas/Hospital-api/internal/domain/entity"
	"github.com/jhoicas/Hospital-api/internal/domain/repository"
)

var _ repository.SessionStore = (*SessionStore)(nil)

// SessionStore sesiones de servidor en la tabla user_sessions.
type SessionStore struct {
	t *Table[entity.UserSession]
}

// NewSessionStore construye el almacén de sesiones sobre PostgreSQL.
func NewSessionStore(q Querier) *SessionStore {
	return &SessionStore{t: NewTable[entity.UserSession](q, "user_sessions")}
}

func (s *SessionStore) Create(ctx context.Context, sess *entity.UserSession) error {
	return s.t.Add(ctx, sess)
}

func (s *SessionStore) Resolve(ctx context.Context, key string) (*entity.UserSession, error) {
	cols := s.t.meta.columns
	sel := make([]string, len(cols))
	for i, c := range cols {
		sel[i] = "s." + c
	}
	sql := "SELECT " + strings.Join(sel, ", ") + `, u.first_name || ' ' || u.last_name, COALESCE(c.name, '')
		FROM user_sessions s
		JOIN users u ON u.id = s.user_id
		LEFT JOIN hospital_centers c ON c.id = s.current_center_id
		WHERE s.session_key = $1`
	sess := &entity.UserSession{}
	dest := append(s.t.meta.pointers(reflect.ValueOf(sess).Elem(), cols), &sess.UserName, &sess.CenterName)
	if err := s.t.q.QueryRow(ctx, sql, key).Scan(dest...); err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, wrap("resolve session", err)
	}
	return sess, nil
}

func (s *SessionStore) Expire(ctx context.Context, key string, at time.Time) error {
	_, err := s.t.Exec(ctx, `
		UPDATE user_sessions SET is_active = FALSE, logout_time = COALESCE(logout_time, $2)
		WHERE session_key = $1 AND is_active`, key, at)
	return err
}

func (s *SessionStore) SwitchCenter(ctx context.Context, key string, centerID int64, _ string, role string) error {
	_, err := s.t.Exec(ctx, `
		UPDATE user_sessions SET current_center_id = $2, role = $3
		WHERE session_key = $1 AND is_active`, key, centerID, role)
	return err
}

func (s *SessionStore) ExpireForUser(ctx context.Context, userID int64, at time.Time) (int64, error) {
	return s.t.Exec(ctx, `
		UPDATE user_sessions SET is_active = FALSE, logout_time = COALESCE(logout_time, $2)
		WHERE user_id = $1 AND is_active`, userID, at)
}

func (s *SessionStore) ExpireForCenter(ctx context.Context, centerID int64, at time.Time) (int64, error) {
	return s.t.Exec(ctx, `
		UPDATE user_sessions SET is_active = FALSE, logout_time = COALESCE(logout_time, $2)
		WHERE current_center_id = $1 AND is_active`, centerID, at)
}

func (s *SessionStore) CountActiveForCenter(ctx context.Context, centerID int64, now time.Time) (int64, error) {
	var n int64
	err := s.t.q.QueryRow(ctx, `
		SELECT COUNT(*) FROM user_sessions
		WHERE current_center_id = $1 AND is_active AND expires_at > $2`, centerID, now).Scan(&n)
	return n, wrap("count sessions", err)
}

// PurgeExpired marca inactivas las sesiones vencidas y borra las cerradas más antiguas que retention.
func (s *SessionStore) PurgeExpired(ctx context.Context, now time.Time, retention time.Duration) (repository.PurgeResult, error) {
	var res repository.PurgeResult
	n, err := s.t.Exec(ctx, `
		UPDATE user_sessions SET is_active = FALSE, logout_time = COALESCE(logout_time, expires_at)
		WHERE is_active AND expires_at <= $1`, now)
	if err != nil {
		return res, err
	}
	res.Expired = n
	n, err = s.t.Exec(ctx, `
		DELETE FROM user_sessions WHERE NOT is_active AND COALESCE(logout_time, expires_at) < $1`,
		now.Add(-retention))
	if err != nil {
		return res, err
	}
	res.Deleted = n
	return res, nil
}
