package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jhoicas/Hospital-api/internal/application/session"
	"github.com/jhoicas/Hospital-api/internal/domain/repository"
	"github.com/jhoicas/Hospital-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Hospital-api/internal/infrastructure/redisstore"
	"github.com/jhoicas/Hospital-api/pkg/config"
)

// openSessionStore almacén de sesiones según SESSION_STORE. closeFn libera la conexión Redis.
func openSessionStore(ctx context.Context, cfg *config.Config, q postgres.Querier) (store repository.SessionStore, closeFn func(), err error) {
	switch cfg.Session.Store {
	case config.SessionStorePostgres, "":
		return postgres.NewSessionStore(q), func() {}, nil
	case config.SessionStoreRedis:
		client := redisstore.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("conexión a Redis %s: %w", cfg.Redis.Addr, err)
		}
		return redisstore.NewSessionStore(client, cfg.Session.Retention), func() { client.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("SESSION_STORE desconocido: %q", cfg.Session.Store)
	}
}

func newSessionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Mantenimiento de sesiones de servidor",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "purge",
		Short: "Cierra las sesiones vencidas y borra las cerradas más antiguas que la retención",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}
			pool, err := postgres.NewPool(cmd.Context(), cfg.DB, postgres.PoolOptions{MaxConns: 2, MinConns: 1})
			if err != nil {
				return fmt.Errorf("conexión a PostgreSQL: %w", err)
			}
			defer pool.Close()

			store, closeStore, err := openSessionStore(cmd.Context(), cfg, pool)
			if err != nil {
				return err
			}
			defer closeStore()

			cleaner := session.NewCleaner(store, session.CleanerConfig{Retention: cfg.Session.Retention}, log)
			res, err := cleaner.RunOnce(cmd.Context())
			if err != nil {
				return err
			}
			log.Info().Int64("expired", res.Expired).Int64("deleted", res.Deleted).Msg("limpieza de sesiones")
			return nil
		},
	})
	return cmd
}
