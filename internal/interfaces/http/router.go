package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Hospital-api/internal/application/analytics"
	"github.com/jhoicas/Hospital-api/internal/application/auth"
	"github.com/jhoicas/Hospital-api/internal/application/billing"
	"github.com/jhoicas/Hospital-api/internal/application/inventory"
	"github.com/jhoicas/Hospital-api/internal/application/usecase"
	"github.com/jhoicas/Hospital-api/internal/domain/entity"
	"github.com/jhoicas/Hospital-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AppName        string
	Session        SessionValidator
	Cookie         CookieConfig
	Log            *logger.Logger
	AuthUC         *auth.AuthUseCase
	UserUC         *usecase.UserUseCase
	CenterUC       *usecase.CenterUseCase
	AssignmentUC   *usecase.AssignmentUseCase
	CategoryUC     *usecase.CategoryUseCase
	ProductUC      *usecase.ProductUseCase
	PatientUC      *usecase.PatientUseCase
	EpisodeUC      *usecase.EpisodeUseCase
	MovementUC     *inventory.MovementUseCase
	StockUC        *inventory.StockUseCase
	SaleUC         *billing.SaleUseCase
	PaymentUC      *billing.PaymentUseCase
	DocumentUC     *billing.DocumentUseCase
	StatisticsUC   *analytics.StatisticsUseCase
	PublicPrefixes []string // nil = DefaultPublicPrefixes
}

// Router registra el middleware de sesión y las rutas con sus guards.
// Cada guard lleva su propio destino de redirección.
func Router(app *fiber.App, deps RouterDeps) {
	public := deps.PublicPrefixes
	if public == nil {
		public = DefaultPublicPrefixes
	}
	app.Use(SessionMiddleware(SessionConfig{
		Validator:      deps.Session,
		CookieName:     deps.Cookie.Name,
		CookieSecure:   deps.Cookie.Secure,
		LoginPath:      PathLogin,
		PublicPrefixes: public,
		Log:            deps.Log,
	}))

	pages := NewPageHandler(deps.UserUC, deps.AppName)
	authHandler := NewAuthHandler(deps.AuthUC, deps.Cookie)

	// Públicas
	app.Get("/health", pages.Health)
	app.Get(PathError, pages.Error)
	app.Get(PathLogin, pages.Login)
	app.Post(PathLogin, authHandler.Login)
	app.Post("/auth/change-password", authHandler.ChangePassword)

	authenticated := Guarded(RequireAuth(PathLogin))
	staff := Guarded(
		RequireAuth(PathLogin),
		RequireRole(PathDashboard, entity.RoleSuperAdmin, entity.RoleMedicalStaff),
		RequireCenter(PathDashboard),
	)
	superAdmin := Guarded(RequireAuth(PathLogin), RequireSuperAdmin(PathDashboard))

	// Sesión
	app.Post("/auth/logout", authenticated, authHandler.Logout)
	app.Get("/auth/me", authenticated, authHandler.Me)
	app.Post("/auth/switch-center", authenticated, authHandler.SwitchCenter)
	app.Get(PathDashboard, authenticated, pages.Dashboard)

	// Administración (SuperAdmin)
	userHandler := NewUserHandler(deps.UserUC)
	centerHandler := NewCenterHandler(deps.CenterUC)
	assignmentHandler := NewAssignmentHandler(deps.AssignmentUC)
	notSelf := Guarded(PreventSelfAction(Param("id"), PathAdmin))

	admin := app.Group(PathAdmin, superAdmin)
	admin.Get("/", pages.Admin)
	admin.Get("/users", userHandler.List)
	admin.Post("/users", userHandler.Create)
	admin.Get("/users/statistics", userHandler.Statistics)
	admin.Get("/users/:id", userHandler.GetByID)
	admin.Put("/users/:id", userHandler.Update)
	admin.Post("/users/:id/activate", notSelf, userHandler.Activate)
	admin.Post("/users/:id/deactivate", notSelf, userHandler.Deactivate)
	admin.Post("/users/:id/reset-password", notSelf, authHandler.ResetPassword)
	admin.Get("/users/:id/assignments", assignmentHandler.ListForUser)
	admin.Post("/users/:id/assignments/end", notSelf, assignmentHandler.EndAll)
	admin.Get("/centers", centerHandler.List)
	admin.Post("/centers", centerHandler.Create)
	admin.Put("/centers/:id", centerHandler.Update)
	admin.Get("/centers/:id/impact", centerHandler.Impact)
	admin.Post("/centers/:id/deactivate", centerHandler.Deactivate)
	admin.Post("/centers/:id/activate", centerHandler.Activate)
	admin.Post("/assignments", assignmentHandler.Assign)
	admin.Post("/assignments/:id/end", assignmentHandler.End)

	// Centros (lectura)
	app.Get("/centers/options", authenticated, centerHandler.Options)
	app.Get("/centers/:id", authenticated, Guarded(RequireCenterAccess(Param("id"), PathDashboard)), centerHandler.GetByID)

	// Catálogo: lectura para el personal, escritura para SuperAdmin
	productHandler := NewProductHandler(deps.ProductUC, deps.CategoryUC)
	catalogAdmin := Guarded(RequireAuth(PathLogin), RequireSuperAdmin(PathStock))
	app.Get("/products", staff, productHandler.List)
	app.Post("/products", catalogAdmin, productHandler.Create)
	app.Put("/products/:id", catalogAdmin, productHandler.Update)
	app.Delete("/products/:id", catalogAdmin, productHandler.Deactivate)
	app.Get("/categories", staff, productHandler.ListCategories)
	app.Post("/categories", catalogAdmin, productHandler.SaveCategory)
	app.Put("/categories/:id", catalogAdmin, productHandler.SaveCategory)
	app.Delete("/categories/:id", catalogAdmin, productHandler.DeleteCategory)

	// Clínico (centro actual)
	patientHandler := NewPatientHandler(deps.PatientUC)
	episodeHandler := NewEpisodeHandler(deps.EpisodeUC)
	billingHandler := NewBillingHandler(deps.SaleUC, deps.PaymentUC, deps.DocumentUC)

	patients := app.Group("/patients", staff)
	patients.Get("/", patientHandler.Search)
	patients.Post("/", patientHandler.Register)
	patients.Get("/:id", patientHandler.GetByID)
	patients.Put("/:id", patientHandler.Update)
	patients.Post("/:id/deactivate", patientHandler.Deactivate)
	patients.Get("/:id/episodes", episodeHandler.ListForPatient)

	episodes := app.Group("/episodes", staff)
	episodes.Post("/", episodeHandler.Open)
	episodes.Get("/:id", episodeHandler.GetByID)
	episodes.Post("/:id/close", episodeHandler.Close)
	episodes.Post("/:id/diagnoses", episodeHandler.AddDiagnosis)
	episodes.Post("/:id/services", episodeHandler.AddService)
	episodes.Delete("/:id/services/:serviceId", episodeHandler.RemoveService)
	episodes.Post("/:id/exams", episodeHandler.RequestExam)
	episodes.Post("/:id/prescriptions", episodeHandler.Prescribe)
	episodes.Get("/:id/payments", billingHandler.EpisodePayments)
	app.Post("/exams/:examId/result", staff, episodeHandler.RecordExamResult)

	// Stock (centro actual)
	inventoryHandler := NewInventoryHandler(deps.MovementUC, deps.StockUC)
	stock := app.Group(PathStock, staff)
	stock.Get("/", inventoryHandler.Lines)
	stock.Post("/movements", inventoryHandler.RegisterMovement)
	stock.Post("/transfers", inventoryHandler.Transfer)
	stock.Get("/replenishment", inventoryHandler.Replenishment)
	stock.Get("/export", inventoryHandler.Export)
	stock.Get("/reconcile", Guarded(RequireCenterAccess(Query("center_id"), PathStock)), inventoryHandler.Reconcile)

	// Ventas, pagos y documentos
	sales := app.Group("/sales", staff)
	sales.Post("/", billingHandler.CreateSale)
	sales.Get("/unpaid", billingHandler.ListUnpaidSales)
	sales.Get("/:id", billingHandler.GetSale)
	sales.Get("/:id/payments", billingHandler.SalePayments)
	app.Post("/payments", staff, billingHandler.RecordPayment)

	documents := app.Group("/documents", staff)
	documents.Get("/receipts/:id", billingHandler.Receipt)
	documents.Get("/prescriptions/:id", billingHandler.Prescription)
	documents.Get("/exams/:id", billingHandler.ExamResult)

	// Informes: SuperAdmin puede consultar sin centro seleccionado
	statisticsHandler := NewStatisticsHandler(deps.StatisticsUC)
	app.Get("/statistics",
		Guarded(RequireAuth(PathLogin), RequireRole(PathDashboard, entity.RoleSuperAdmin, entity.RoleMedicalStaff)),
		statisticsHandler.Get)
}
