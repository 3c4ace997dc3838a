// Package redisstore almacén de sesiones sobre Redis (SESSION_STORE=redis).
//
// Claves:
//
//	hospital:session:<clave>          JSON de la sesión, TTL = expiración + retención
//	hospital:sessions:user:<id>       SET de claves de sesión del usuario
//	hospital:sessions:center:<id>     SET de claves de sesión con ese centro actual
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/jhoicas/Hospital-api/internal/domain/entity"
	"github.com/jhoicas/Hospital-api/internal/domain/repository"
)

const (
	prefix     = "hospital:"
	sessionKey = prefix + "session:"
	userSet    = prefix + "sessions:user:"
	centerSet  = prefix + "sessions:center:"
	seqKey     = prefix + "sessions:seq"
)

var _ repository.SessionStore = (*SessionStore)(nil)

// SessionStore implementación de repository.SessionStore sobre go-redis.
type SessionStore struct {
	c         *redis.Client
	retention time.Duration
}

// NewClient crea el cliente Redis.
func NewClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
}

// NewSessionStore las sesiones cerradas se conservan retention antes de que Redis las borre.
func NewSessionStore(c *redis.Client, retention time.Duration) *SessionStore {
	return &SessionStore{c: c, retention: retention}
}

func userKey(id int64) string   { return userSet + strconv.FormatInt(id, 10) }
func centerKey(id int64) string { return centerSet + strconv.FormatInt(id, 10) }

func (s *SessionStore) ttl(sess *entity.UserSession, now time.Time) time.Duration {
	end := sess.ExpiresAt
	if sess.LogoutTime != nil && sess.LogoutTime.Before(end) {
		end = *sess.LogoutTime
	}
	return end.Add(s.retention).Sub(now)
}

func (s *SessionStore) load(ctx context.Context, key string) (*entity.UserSession, error) {
	raw, err := s.c.Get(ctx, sessionKey+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get session: %w", err)
	}
	var sess entity.UserSession
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &sess, nil
}

func (s *SessionStore) save(ctx context.Context, sess *entity.UserSession, now time.Time) error {
	_, err := s.c.TxPipelined(ctx, func(p redis.Pipeliner) error {
		return s.queueSave(ctx, p, sess, now)
	})
	if err != nil {
		return fmt.Errorf("redis save session: %w", err)
	}
	return nil
}

// queueSave encola la escritura de la sesión y sus índices; sin TTL restante la borra.
func (s *SessionStore) queueSave(ctx context.Context, p redis.Pipeliner, sess *entity.UserSession, now time.Time) error {
	ttl := s.ttl(sess, now)
	if ttl <= 0 {
		queueRemove(ctx, p, sess)
		return nil
	}
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	p.Set(ctx, sessionKey+sess.SessionKey, raw, ttl)
	p.SAdd(ctx, userKey(sess.UserID), sess.SessionKey)
	if sess.CurrentCenterID != nil {
		p.SAdd(ctx, centerKey(*sess.CurrentCenterID), sess.SessionKey)
	}
	return nil
}

func queueRemove(ctx context.Context, p redis.Pipeliner, sess *entity.UserSession) {
	p.Del(ctx, sessionKey+sess.SessionKey)
	p.SRem(ctx, userKey(sess.UserID), sess.SessionKey)
	if sess.CurrentCenterID != nil {
		p.SRem(ctx, centerKey(*sess.CurrentCenterID), sess.SessionKey)
	}
}

func (s *SessionStore) remove(ctx context.Context, sess *entity.UserSession) error {
	_, err := s.c.TxPipelined(ctx, func(p redis.Pipeliner) error {
		queueRemove(ctx, p, sess)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis delete session: %w", err)
	}
	return nil
}

// maxUpdateRetries reintentos de update cuando otra escritura toca la sesión entre GET y EXEC.
const maxUpdateRetries = 10

// update lee y reescribe la sesión bajo WATCH. mutate devuelve false para no escribir.
// Devuelve la sesión leída (nil si no existe) y si se escribió.
func (s *SessionStore) update(ctx context.Context, key string, now time.Time, mutate func(*entity.UserSession) bool) (*entity.UserSession, bool, error) {
	for i := 0; i < maxUpdateRetries; i++ {
		var (
			sess    *entity.UserSession
			changed bool
		)
		err := s.c.Watch(ctx, func(tx *redis.Tx) error {
			raw, err := tx.Get(ctx, sessionKey+key).Bytes()
			if errors.Is(err, redis.Nil) {
				return nil
			}
			if err != nil {
				return err
			}
			sess = new(entity.UserSession)
			if err := json.Unmarshal(raw, sess); err != nil {
				return fmt.Errorf("decode session: %w", err)
			}
			var prevCenter *int64
			if sess.CurrentCenterID != nil {
				c := *sess.CurrentCenterID
				prevCenter = &c
			}
			if !mutate(sess) {
				return nil
			}
			_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
				if prevCenter != nil && (sess.CurrentCenterID == nil || *sess.CurrentCenterID != *prevCenter) {
					p.SRem(ctx, centerKey(*prevCenter), key)
				}
				return s.queueSave(ctx, p, sess, now)
			})
			changed = err == nil
			return err
		}, sessionKey+key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, false, fmt.Errorf("redis update session: %w", err)
		}
		return sess, changed, nil
	}
	return nil, false, fmt.Errorf("redis update session %s: demasiados conflictos", key)
}

func (s *SessionStore) Create(ctx context.Context, sess *entity.UserSession) error {
	id, err := s.c.Incr(ctx, seqKey).Result()
	if err != nil {
		return fmt.Errorf("redis session seq: %w", err)
	}
	sess.ID = id
	return s.save(ctx, sess, time.Now())
}

func (s *SessionStore) Resolve(ctx context.Context, key string) (*entity.UserSession, error) {
	return s.load(ctx, key)
}

func closeActive(at time.Time) func(*entity.UserSession) bool {
	return func(sess *entity.UserSession) bool {
		if !sess.IsActive {
			return false
		}
		sess.Close(at)
		return true
	}
}

func (s *SessionStore) Expire(ctx context.Context, key string, at time.Time) error {
	_, _, err := s.update(ctx, key, at, closeActive(at))
	return err
}

// SwitchCenter no reabre una sesión cerrada aunque el cierre llegue durante el cambio.
func (s *SessionStore) SwitchCenter(ctx context.Context, key string, centerID int64, centerName, role string) error {
	_, _, err := s.update(ctx, key, time.Now(), func(sess *entity.UserSession) bool {
		if !sess.IsActive {
			return false
		}
		c := centerID
		sess.CurrentCenterID = &c
		sess.CenterName = centerName
		sess.Role = role
		return true
	})
	return err
}

// expireSet cierra las sesiones activas listadas en el SET setKey; limpia miembros huérfanos.
func (s *SessionStore) expireSet(ctx context.Context, setKey string, at time.Time) (int64, error) {
	keys, err := s.c.SMembers(ctx, setKey).Result()
	if err != nil {
		return 0, fmt.Errorf("redis smembers: %w", err)
	}
	var n int64
	for _, k := range keys {
		sess, changed, err := s.update(ctx, k, at, closeActive(at))
		if err != nil {
			return n, err
		}
		if sess == nil {
			s.c.SRem(ctx, setKey, k)
			continue
		}
		if changed {
			n++
		}
	}
	return n, nil
}

func (s *SessionStore) ExpireForUser(ctx context.Context, userID int64, at time.Time) (int64, error) {
	return s.expireSet(ctx, userKey(userID), at)
}

func (s *SessionStore) ExpireForCenter(ctx context.Context, centerID int64, at time.Time) (int64, error) {
	return s.expireSet(ctx, centerKey(centerID), at)
}

func (s *SessionStore) CountActiveForCenter(ctx context.Context, centerID int64, now time.Time) (int64, error) {
	keys, err := s.c.SMembers(ctx, centerKey(centerID)).Result()
	if err != nil {
		return 0, fmt.Errorf("redis smembers: %w", err)
	}
	var n int64
	for _, k := range keys {
		sess, err := s.load(ctx, k)
		if err != nil {
			return 0, err
		}
		if sess != nil && sess.Valid(now) && sess.CurrentCenterID != nil && *sess.CurrentCenterID == centerID {
			n++
		}
	}
	return n, nil
}

// PurgeExpired recorre las sesiones con SCAN: cierra las vencidas y borra las cerradas fuera de retención.
func (s *SessionStore) PurgeExpired(ctx context.Context, now time.Time, retention time.Duration) (repository.PurgeResult, error) {
	var res repository.PurgeResult
	var cursor uint64
	for {
		keys, next, err := s.c.Scan(ctx, cursor, sessionKey+"*", 200).Result()
		if err != nil {
			return res, fmt.Errorf("redis scan sessions: %w", err)
		}
		for _, full := range keys {
			sess, err := s.load(ctx, full[len(sessionKey):])
			if err != nil {
				return res, err
			}
			if sess == nil {
				continue
			}
			if !sess.IsActive && sess.LogoutTime != nil && sess.LogoutTime.Before(now.Add(-retention)) {
				if err := s.remove(ctx, sess); err != nil {
					return res, err
				}
				res.Deleted++
				continue
			}
			if sess.IsActive && sess.Expired(now) {
				_, changed, err := s.update(ctx, sess.SessionKey, now, func(cur *entity.UserSession) bool {
					if !cur.IsActive || !cur.Expired(now) {
						return false
					}
					cur.Close(cur.ExpiresAt)
					return true
				})
				if err != nil {
					return res, err
				}
				if changed {
					res.Expired++
				}
			}
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	return res, nil
}
