package session

import (
	"context"
	"time"

	"github.com/jhoicas/Hospital-api/internal/domain/repository"
	"github.com/jhoicas/Hospital-api/pkg/logger"
)

// CleanerConfig intervalos del worker de limpieza.
type CleanerConfig struct {
	Interval  time.Duration // entre pasadas exitosas
	Retry     time.Duration // tras una pasada fallida
	Retention time.Duration // sesiones cerradas más antiguas se borran
}

// Cleaner worker periódico que cierra sesiones vencidas y purga las antiguas.
// Un fallo se registra y se reintenta tras Retry; nunca detiene el worker.
type Cleaner struct {
	store repository.SessionStore
	cfg   CleanerConfig
	log   *logger.Logger
	now   func() time.Time
}

// NewCleaner construye el worker.
func NewCleaner(store repository.SessionStore, cfg CleanerConfig, log *logger.Logger) *Cleaner {
	return &Cleaner{store: store, cfg: cfg, log: log.Component("session-cleaner"), now: time.Now}
}

// RunOnce ejecuta una pasada.
func (c *Cleaner) RunOnce(ctx context.Context) (repository.PurgeResult, error) {
	return c.store.PurgeExpired(ctx, c.now(), c.cfg.Retention)
}

// Run ejecuta una pasada inmediata y luego una cada Interval hasta que ctx se cancele.
func (c *Cleaner) Run(ctx context.Context) {
	timer := time.NewTimer(0)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			c.log.Info().Msg("limpieza de sesiones detenida")
			return
		case <-timer.C:
		}

		next := c.cfg.Interval
		res, err := c.RunOnce(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.log.Error().Err(err).Dur("retry_in", c.cfg.Retry).Msg("limpieza de sesiones fallida")
			next = c.cfg.Retry
		} else if res.Expired > 0 || res.Deleted > 0 {
			c.log.Info().Int64("expired", res.Expired).Int64("deleted", res.Deleted).Msg("sesiones limpiadas")
		}
		timer.Reset(next)
	}
}
