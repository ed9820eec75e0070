package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"swearjar-backend/internal/adapters/http/middleware"
	"swearjar-backend/internal/adapters/http/routes"
	"swearjar-backend/internal/adapters/persistence/memory"
	"swearjar-backend/internal/adapters/persistence/models"
	"swearjar-backend/internal/adapters/persistence/repositories"
	"swearjar-backend/internal/config"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}

	// Wire storage
	var db *gorm.DB
	var repos *routes.Repositories

	switch cfg.StorageDriver {
	case "mysql":
		db, err = config.ConnectDatabase(cfg)
		if err != nil {
			log.Fatalf("❌ Failed to connect to database: %v", err)
		}
		defer config.CloseDatabase(db)

		// Auto migrate (creates tables if not exist)
		if err := models.AutoMigrate(db); err != nil {
			log.Fatalf("❌ Failed to auto migrate: %v", err)
		}
		log.Println("✅ Database migration completed")

		repos = &routes.Repositories{
			Jars:         repositories.NewJarRepository(db),
			Memberships:  repositories.NewMembershipRepository(db),
			Transactions: repositories.NewTransactionRepository(db),
			BankAccounts: repositories.NewBankAccountRepository(db),
			Ledger:       repositories.NewLedgerRepository(db),
		}

	case "memory":
		store := memory.NewStore()
		repos = &routes.Repositories{
			Jars:         store.Jars(),
			Memberships:  store.Memberships(),
			Transactions: store.Transactions(),
			BankAccounts: store.BankAccounts(),
			Ledger:       store.Ledger(),
		}
		log.Println("✅ In-memory store initialized")
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Swear Jar API v1.0",
		ErrorHandler: middleware.CustomErrorHandler,
	})

	// Setup middlewares
	middleware.Setup(app, cfg)

	// Setup routes
	svcs := routes.Setup(app, repos, db, cfg)

	// Seed demo data in dev mode
	if cfg.IsDev() {
		if err := config.SeedDemoData(context.Background(), svcs.Jars, svcs.Transactions); err != nil {
			log.Printf("⚠️ Warning: Failed to seed demo data: %v", err)
		}
	}

	// Start stale-pending-transaction sweep
	if cfg.Sweep.Enabled {
		svcs.Sweep.Start()
		defer svcs.Sweep.Stop()
	}

	// Graceful shutdown
	go gracefulShutdown(app)

	// Start server
	log.Printf("🚀 Server starting on port %s [MODE: %s]", cfg.Port, cfg.AppMode)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

// gracefulShutdown handles graceful shutdown
func gracefulShutdown(app *fiber.App) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("❌ Error during shutdown: %v", err)
	}
	log.Println("✅ Server stopped gracefully")
}
