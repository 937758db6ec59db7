package routes

import (
	"townhall-docflow/internal/adapters/http/handlers"
	"townhall-docflow/internal/adapters/http/middleware"
	"townhall-docflow/internal/adapters/persistence/repositories"
	"townhall-docflow/internal/config"
	"townhall-docflow/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Services holds the background services the server owns. Setup returns it so
// main can start and stop them with the app lifecycle.
type Services struct {
	Notify    *services.NotificationService
	Scheduler *services.SchedulerService
}

// Setup configures all routes for the application
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config) *Services {
	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)
	deptRepo := repositories.NewDepartmentRepository(db)
	seqRepo := repositories.NewSequenceRepository(db)
	docStore := repositories.NewDocumentRepository(db)
	historyRepo := repositories.NewHistoryRepository(db)
	notifRepo := repositories.NewNotificationRepository(db)
	blobRepo := repositories.NewBlobRepository(db)

	// Initialize services
	authService := services.NewAuthService(userRepo, refreshTokenRepo, cfg)
	userService := services.NewUserService(userRepo, deptRepo)
	deptService := services.NewDepartmentService(deptRepo)

	notifyService := services.NewNotificationService(notifRepo, userRepo, cfg.Notify.WebhookURL, cfg.Notify.QueueSize)
	docService := services.NewDocumentService(docStore, historyRepo, seqRepo, deptRepo, userRepo, notifyService)
	fileService := services.NewFileService(docStore, blobRepo, cfg.Upload.MaxFileSize)
	dashboardService := services.NewDashboardService(docStore, historyRepo, notifRepo)
	schedulerService := services.NewSchedulerService(docStore, refreshTokenRepo, notifyService, cfg.Notify.DeadlineDays)

	// Authentication guard shared by all protected routes
	authGuard := middleware.AuthMiddleware(cfg, userRepo)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(authService, cfg)
	userHandler := handlers.NewUserHandler(userService)
	deptHandler := handlers.NewDepartmentHandler(deptService)
	docHandler := handlers.NewDocumentHandler(docService)
	fileHandler := handlers.NewFileHandler(fileService)
	notifHandler := handlers.NewNotificationHandler(notifRepo)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// API v1 group
	apiV1 := app.Group("/api/v1")
	apiV1.Get("/", healthHandler.APIInfo)

	// Auth routes (public + protected)
	authRoutes := apiV1.Group("/auth")
	setupAuthRoutes(authRoutes, authHandler, authGuard)

	// User management routes (admin only)
	userRoutes := apiV1.Group("/users")
	userRoutes.Use(authGuard)
	userRoutes.Use(middleware.AdminOnly())
	setupUserRoutes(userRoutes, userHandler)

	// Department directory routes
	deptRoutes := apiV1.Group("/departments")
	deptRoutes.Use(authGuard)
	setupDepartmentRoutes(deptRoutes, deptHandler)

	// Document workflow routes
	docRoutes := apiV1.Group("/documents")
	docRoutes.Use(authGuard)
	setupDocumentRoutes(docRoutes, docHandler, fileHandler)

	// Notification routes
	notifRoutes := apiV1.Group("/notifications")
	notifRoutes.Use(authGuard)
	setupNotificationRoutes(notifRoutes, notifHandler)

	// Dashboard routes
	dashboardRoutes := apiV1.Group("/dashboard")
	dashboardRoutes.Use(authGuard)
	dashboardRoutes.Get("/", dashboardHandler.GetStats)

	return &Services{
		Notify:    notifyService,
		Scheduler: schedulerService,
	}
}

// setupAuthRoutes configures authentication routes
func setupAuthRoutes(router fiber.Router, handler *handlers.AuthHandler, authGuard fiber.Handler) {
	// Public routes, rate limited against brute force
	router.Post("/login", middleware.AuthRateLimiter(), handler.Login)
	router.Post("/refresh", handler.RefreshToken)
	router.Post("/logout", handler.Logout)

	// Protected routes
	router.Get("/me", authGuard, handler.Me)
	router.Post("/change-password", authGuard, handler.ChangePassword)
	router.Post("/logout-all", authGuard, handler.LogoutAll)
}

// setupUserRoutes configures user management routes (admin only)
func setupUserRoutes(router fiber.Router, handler *handlers.UserHandler) {
	router.Get("/", handler.ListUsers)
	router.Post("/", handler.CreateUser)
	router.Get("/:id", handler.GetUser)
	router.Put("/:id", handler.UpdateUser)
	router.Delete("/:id", handler.DeactivateUser)
}

// setupDepartmentRoutes configures department directory routes
func setupDepartmentRoutes(router fiber.Router, handler *handlers.DepartmentHandler) {
	router.Get("/", middleware.DirectoryCache(), handler.ListDepartments)
	router.Get("/:id", handler.GetDepartment)

	// Admin only
	router.Post("/", middleware.AdminOnly(), handler.CreateDepartment)
	router.Put("/:id", middleware.AdminOnly(), handler.UpdateDepartment)
}

// setupDocumentRoutes configures document workflow routes
func setupDocumentRoutes(router fiber.Router, handler *handlers.DocumentHandler, fileHandler *handlers.FileHandler) {
	router.Post("/", handler.CreateDocument)
	router.Get("/", handler.ListDocuments)
	router.Get("/number/:number", handler.GetDocumentByNumber)
	router.Get("/:id", handler.GetDocument)
	router.Patch("/:id", handler.UpdateDocument)

	// Workflow operations
	router.Post("/:id/forward", handler.ForwardDocument)
	router.Post("/:id/status", handler.ChangeStatus)
	router.Post("/:id/assign", handler.AssignDocument)
	router.Post("/:id/respond", handler.RespondDocument)
	router.Post("/:id/view", handler.RecordView)
	router.Get("/:id/history", handler.GetTimeline)

	// Attachments
	router.Post("/:id/files", fileHandler.UploadFile)
	router.Get("/:id/files/:fileId", middleware.NoCacheHeaders(), fileHandler.DownloadFile)
	router.Delete("/:id/files/:fileId", fileHandler.DeleteFile)
}

// setupNotificationRoutes configures notification routes
func setupNotificationRoutes(router fiber.Router, handler *handlers.NotificationHandler) {
	router.Get("/", handler.ListNotifications)
	router.Get("/unread-count", handler.UnreadCount)
	router.Post("/:id/read", handler.MarkRead)
	router.Post("/read-all", handler.MarkAllRead)
}
