package routes

import (
	"swearjar-backend/internal/adapters/http/handlers"
	"swearjar-backend/internal/adapters/http/middleware"
	"swearjar-backend/internal/adapters/persistence/repositories"
	"swearjar-backend/internal/config"
	"swearjar-backend/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Repositories bundles the storage implementations so routes can be
// wired against either the MySQL driver or the in-memory store.
type Repositories struct {
	Jars         repositories.JarRepository
	Memberships  repositories.MembershipRepository
	Transactions repositories.TransactionRepository
	BankAccounts repositories.BankAccountRepository
	Ledger       repositories.LedgerRepository
}

// Services exposes the wired services the server entrypoint needs for
// seeding and background jobs.
type Services struct {
	Jars         *services.JarService
	Transactions *services.TransactionService
	Sweep        *services.SweepService
}

// Setup configures all routes for the application. db is nil when
// running on the in-memory store.
func Setup(app *fiber.App, repos *Repositories, db *gorm.DB, cfg *config.Config) *Services {
	// Initialize services
	permissionService := services.NewPermissionService(repos.Memberships)
	settlementService := services.NewSettlementService()
	jarService := services.NewJarService(repos.Jars, repos.Memberships, permissionService)
	transactionService := services.NewTransactionService(
		repos.Jars,
		repos.Transactions,
		repos.BankAccounts,
		repos.Ledger,
		permissionService,
		settlementService,
	)
	bankAccountService := services.NewBankAccountService(repos.BankAccounts)
	statsService := services.NewStatsService(repos.Jars, repos.Memberships, repos.Transactions, permissionService)
	sweepService := services.NewSweepService(repos.Transactions, repos.Ledger, cfg.Sweep.MaxPendingAge)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(cfg, db)
	jarHandler := handlers.NewJarHandler(jarService)
	transactionHandler := handlers.NewTransactionHandler(transactionService)
	bankAccountHandler := handlers.NewBankAccountHandler(bankAccountService)
	statsHandler := handlers.NewStatsHandler(statsService)
	settlementHandler := handlers.NewSettlementHandler(transactionService)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// API v1 group
	apiV1 := app.Group("/api/v1")
	apiV1.Get("/", healthHandler.APIInfo)

	// Dev token route (dev mode only, no external identity provider)
	if cfg.IsDev() {
		devTokenHandler := handlers.NewDevTokenHandler(cfg)
		apiV1.Post("/auth/dev-token", devTokenHandler.Issue)
	}

	// Settlement callback (authenticated by shared secret, not JWT)
	apiV1.Post("/settlements/callback",
		middleware.SettlementAuthMiddleware(cfg.SettlementSecret),
		settlementHandler.Callback,
	)

	// Jar routes (Authenticated users)
	jarRoutes := apiV1.Group("/jars")
	jarRoutes.Use(middleware.AuthMiddleware(cfg))
	setupJarRoutes(jarRoutes, jarHandler, statsHandler)

	// Transaction routes nested under jars (Authenticated users)
	setupTransactionRoutes(jarRoutes, transactionHandler)

	// Bank account routes (Authenticated users)
	bankAccountRoutes := apiV1.Group("/bank-accounts")
	bankAccountRoutes.Use(middleware.AuthMiddleware(cfg))
	setupBankAccountRoutes(bankAccountRoutes, bankAccountHandler)

	// Cross-jar summary for the calling user
	meRoutes := apiV1.Group("/me")
	meRoutes.Use(middleware.AuthMiddleware(cfg))
	meRoutes.Get("/summary", statsHandler.UserSummary)

	return &Services{
		Jars:         jarService,
		Transactions: transactionService,
		Sweep:        sweepService,
	}
}

// setupJarRoutes configures jar and membership routes
func setupJarRoutes(router fiber.Router, handler *handlers.JarHandler, statsHandler *handlers.StatsHandler) {
	router.Post("/", middleware.WriteRateLimiter(), handler.Create)
	router.Get("/", handler.List)
	router.Get("/:id", handler.Get)
	router.Put("/:id/settings", middleware.WriteRateLimiter(), handler.UpdateSettings)
	router.Delete("/:id", middleware.WriteRateLimiter(), handler.Delete)

	// Membership management
	router.Get("/:id/members", handler.ListMembers)
	router.Post("/:id/members", middleware.WriteRateLimiter(), handler.AddMember)
	router.Put("/:id/members/:userId", middleware.WriteRateLimiter(), handler.UpdateMember)
	router.Delete("/:id/members/:userId", middleware.WriteRateLimiter(), handler.RemoveMember)

	// Per-jar dashboard
	router.Get("/:id/summary", statsHandler.JarSummary)
}

// setupTransactionRoutes configures transaction routes nested under a jar
func setupTransactionRoutes(router fiber.Router, handler *handlers.TransactionHandler) {
	router.Post("/:id/deposits", middleware.WriteRateLimiter(), handler.Deposit)
	router.Post("/:id/withdrawals", middleware.WriteRateLimiter(), handler.Withdraw)
	router.Post("/:id/penalties", middleware.WriteRateLimiter(), handler.Penalty)

	router.Get("/:id/transactions", handler.History)
	router.Get("/:id/transactions/:txId", handler.Get)
	router.Post("/:id/transactions/:txId/approve", middleware.WriteRateLimiter(), handler.Approve)
	router.Post("/:id/transactions/:txId/cancel", middleware.WriteRateLimiter(), handler.Cancel)
	router.Post("/:id/transactions/:txId/reverse", middleware.WriteRateLimiter(), handler.Reverse)
}

// setupBankAccountRoutes configures linked bank account routes
func setupBankAccountRoutes(router fiber.Router, handler *handlers.BankAccountHandler) {
	router.Post("/", middleware.WriteRateLimiter(), handler.Link)
	router.Get("/", handler.List)
	router.Post("/:id/verify", middleware.WriteRateLimiter(), handler.Verify)
	router.Delete("/:id", middleware.WriteRateLimiter(), handler.Unlink)
}
