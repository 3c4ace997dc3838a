package apptest

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/Hospital-api/internal/domain/entity"
	"github.com/jhoicas/Hospital-api/internal/domain/repository"
)

// Sessions almacén de sesiones en memoria.
type Sessions struct {
	mu    sync.Mutex
	byKey map[string]*entity.UserSession
	seq   int64

	// Nombres que Resolve desnormaliza en la sesión.
	UserNames   map[int64]string
	CenterNames map[int64]string

	ResolveErr error
	PurgeErr   error
}

// NewSessions almacén vacío.
func NewSessions() *Sessions {
	return &Sessions{
		byKey:       map[string]*entity.UserSession{},
		UserNames:   map[int64]string{},
		CenterNames: map[int64]string{},
	}
}

var _ repository.SessionStore = (*Sessions)(nil)

// Get copia de la sesión (nil si no existe).
func (s *Sessions) Get(key string) *entity.UserSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.byKey[key]; ok {
		cp := *v
		return &cp
	}
	return nil
}

// All copias de todas las sesiones.
func (s *Sessions) All() []*entity.UserSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*entity.UserSession, 0, len(s.byKey))
	for _, v := range s.byKey {
		cp := *v
		out = append(out, &cp)
	}
	return out
}

func (s *Sessions) Create(_ context.Context, sess *entity.UserSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	sess.ID = s.seq
	cp := *sess
	s.byKey[sess.SessionKey] = &cp
	return nil
}

func (s *Sessions) Resolve(_ context.Context, key string) (*entity.UserSession, error) {
	if s.ResolveErr != nil {
		return nil, s.ResolveErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.byKey[key]
	if !ok {
		return nil, nil
	}
	cp := *v
	if n, ok := s.UserNames[cp.UserID]; ok {
		cp.UserName = n
	}
	if cp.CurrentCenterID != nil {
		if n, ok := s.CenterNames[*cp.CurrentCenterID]; ok {
			cp.CenterName = n
		}
	}
	return &cp, nil
}

func (s *Sessions) Expire(_ context.Context, key string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.byKey[key]; ok && v.IsActive {
		v.Close(at)
	}
	return nil
}

func (s *Sessions) SwitchCenter(_ context.Context, key string, centerID int64, centerName, role string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.byKey[key]
	if !ok || !v.IsActive {
		return nil
	}
	c := centerID
	v.CurrentCenterID = &c
	v.CenterName = centerName
	v.Role = role
	s.CenterNames[centerID] = centerName
	return nil
}

func (s *Sessions) expireWhere(at time.Time, match func(*entity.UserSession) bool) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, v := range s.byKey {
		if v.IsActive && match(v) {
			v.Close(at)
			n++
		}
	}
	return n
}

func (s *Sessions) ExpireForUser(_ context.Context, userID int64, at time.Time) (int64, error) {
	return s.expireWhere(at, func(v *entity.UserSession) bool { return v.UserID == userID }), nil
}

func (s *Sessions) ExpireForCenter(_ context.Context, centerID int64, at time.Time) (int64, error) {
	return s.expireWhere(at, func(v *entity.UserSession) bool {
		return v.CurrentCenterID != nil && *v.CurrentCenterID == centerID
	}), nil
}

func (s *Sessions) CountActiveForCenter(_ context.Context, centerID int64, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, v := range s.byKey {
		if v.Valid(now) && v.CurrentCenterID != nil && *v.CurrentCenterID == centerID {
			n++
		}
	}
	return n, nil
}

func (s *Sessions) PurgeExpired(_ context.Context, now time.Time, retention time.Duration) (repository.PurgeResult, error) {
	if s.PurgeErr != nil {
		return repository.PurgeResult{}, s.PurgeErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var res repository.PurgeResult
	for k, v := range s.byKey {
		if v.IsActive && v.Expired(now) {
			v.Close(now)
			res.Expired++
			continue
		}
		if !v.IsActive && v.LogoutTime != nil && v.LogoutTime.Before(now.Add(-retention)) {
			delete(s.byKey, k)
			res.Deleted++
		}
	}
	return res, nil
}
