package entity

import "time"

// UserSession sesión de servidor: token -> (usuario, centro actual, rol).
// Mientras está activa, un token resuelve exactamente una terna (usuario, centro, rol).
type UserSession struct {
	ID              int64      `db:"id"`
	SessionKey      string     `db:"session_key"`
	UserID          int64      `db:"user_id"`
	CurrentCenterID *int64     `db:"current_center_id"`
	Role            string     `db:"role"`
	LoginTime       time.Time  `db:"login_time"`
	LogoutTime      *time.Time `db:"logout_time"`
	ExpiresAt       time.Time  `db:"expires_at"`
	IsActive        bool       `db:"is_active"`
	IPAddress       string     `db:"ip_address"`
	UserAgent       string     `db:"user_agent"`

	// Desnormalizados al resolver la sesión (no son columnas).
	UserName   string `db:"-"`
	CenterName string `db:"-"`
}

// Expired la sesión superó su fecha de expiración.
func (s *UserSession) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Valid activa y sin expirar.
func (s *UserSession) Valid(now time.Time) bool {
	return s.IsActive && !s.Expired(now)
}

// Close marca el cierre (logout o expiración).
func (s *UserSession) Close(at time.Time) {
	s.IsActive = false
	if s.LogoutTime == nil {
		s.LogoutTime = &at
	}
}
