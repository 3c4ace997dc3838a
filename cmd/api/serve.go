package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/cobra"

	"github.com/jhoicas/Hospital-api/internal/application/analytics"
	"github.com/jhoicas/Hospital-api/internal/application/auth"
	"github.com/jhoicas/Hospital-api/internal/application/billing"
	"github.com/jhoicas/Hospital-api/internal/application/inventory"
	"github.com/jhoicas/Hospital-api/internal/application/session"
	"github.com/jhoicas/Hospital-api/internal/application/usecase"
	"github.com/jhoicas/Hospital-api/internal/infrastructure/excel"
	infrapdf "github.com/jhoicas/Hospital-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Hospital-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/Hospital-api/internal/interfaces/http"
)

func newServeCmd() *cobra.Command {
	var migrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Arranca el servidor HTTP y el worker de limpieza de sesiones",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "aplicar migraciones pendientes antes de arrancar")
	return cmd
}

func serve(ctx context.Context, migrate bool) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	if cfg.Session.Secret == "" {
		return errors.New("SESSION_SECRET es obligatorio")
	}
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("session_store", cfg.Session.Store).
		Msg("iniciando aplicación")

	pool, err := postgres.NewPool(ctx, cfg.DB, postgres.DefaultPoolOptions)
	if err != nil {
		return fmt.Errorf("conexión a PostgreSQL: %w", err)
	}
	defer pool.Close()

	if migrate {
		n, err := postgres.NewMigrator(pool).Up(ctx)
		if err != nil {
			return err
		}
		log.Info().Int("applied", n).Msg("migraciones aplicadas")
	}

	sessions, closeSessions, err := openSessionStore(ctx, cfg, pool)
	if err != nil {
		return err
	}
	defer closeSessions()

	repos := postgres.NewRepos(pool)
	txRunner := postgres.NewTxRunner(pool)

	authUC := auth.NewAuthUseCase(repos, txRunner, sessions, auth.Config{
		Secret: cfg.Session.Secret,
		Issuer: cfg.Session.Issuer,
		TTL:    cfg.Session.TTL,
	})
	movementUC := inventory.NewMovementUseCase(repos, txRunner)

	deps := httpRouter.RouterDeps{
		AppName:      cfg.App.Name,
		Session:      session.NewValidator(sessions, cfg.Session.Secret),
		Cookie:       httpRouter.CookieConfig{Name: cfg.Session.CookieName, Secure: cfg.Session.CookieSecure},
		Log:          log.Component("http"),
		AuthUC:       authUC,
		UserUC:       usecase.NewUserUseCase(repos, txRunner, sessions, authUC),
		CenterUC:     usecase.NewCenterUseCase(repos, txRunner, sessions),
		AssignmentUC: usecase.NewAssignmentUseCase(repos, txRunner, sessions),
		CategoryUC:   usecase.NewCategoryUseCase(repos, txRunner),
		ProductUC:    usecase.NewProductUseCase(repos, txRunner),
		PatientUC:    usecase.NewPatientUseCase(repos, txRunner),
		EpisodeUC:    usecase.NewEpisodeUseCase(repos, txRunner),
		MovementUC:   movementUC,
		StockUC:      inventory.NewStockUseCase(repos, excel.NewStockExporter()),
		SaleUC:       billing.NewSaleUseCase(repos, txRunner, movementUC),
		PaymentUC:    billing.NewPaymentUseCase(repos, txRunner),
		DocumentUC:   billing.NewDocumentUseCase(repos, infrapdf.NewMarotoGenerator(cfg.App.Currency)),
		StatisticsUC: analytics.NewStatisticsUseCase(repos.Reports),
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
		ErrorHandler: httpRouter.ErrorHandler(deps.Log, httpRouter.PathError),
	})
	app.Use(recover.New())

	// Swagger UI en /docs solo si el archivo generado está presente
	if _, err := os.Stat(cfg.Docs.SwaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: cfg.Docs.SwaggerFile,
			Path:     "docs",
			Title:    cfg.App.Name,
		}))
	} else {
		log.Warn().Str("file", cfg.Docs.SwaggerFile).Msg("swagger deshabilitado: archivo no encontrado")
	}

	httpRouter.Router(app, deps)

	cleanerCtx, stopCleaner := context.WithCancel(ctx)
	defer stopCleaner()
	cleaner := session.NewCleaner(sessions, session.CleanerConfig{
		Interval:  cfg.Session.CleanupInterval,
		Retry:     cfg.Session.CleanupRetry,
		Retention: cfg.Session.Retention,
	}, log)
	go cleaner.Run(cleanerCtx)

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")
	stopCleaner()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
	return nil
}
