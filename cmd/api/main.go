package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/upgraderly/redemption-code-service/internal/config"
	"github.com/upgraderly/redemption-code-service/internal/handler"
	"github.com/upgraderly/redemption-code-service/internal/repository"
	"github.com/upgraderly/redemption-code-service/internal/service"
	"github.com/upgraderly/redemption-code-service/internal/validator"
	"github.com/upgraderly/redemption-code-service/pkg/database"
)

func main() {
	// Load configuration first
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Initialize zerolog based on configuration
	initLogger(cfg)

	// Create context for startup
	ctx := context.Background()

	// Initialize database pool with retry
	pool, err := database.NewPool(ctx, cfg.DB.DSN(), 5)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	// Initialize Fiber with production-ready configuration
	app := fiber.New(fiber.Config{
		AppName:      "Redemption Code Service",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
		BodyLimit:    1 * 1024 * 1024, // bulk pool loads stay well under 1MB
	})

	// Middleware
	app.Use(recover.New())
	app.Use(requestid.New()) // Adds X-Request-ID header to all requests
	app.Use(logger.New())

	// Initialize validator
	validate := validator.New()

	// Repositories
	codeRepo := repository.NewCodeRepository(pool)
	batchRepo := repository.NewBatchRepository(pool)
	poolRepo := repository.NewPoolRepository(pool)
	helperRepo := repository.NewHelperRepository(pool)
	linkRepo := repository.NewLinkRepository(pool)

	// Services
	codeService := service.NewCodeService(pool, codeRepo, linkRepo)
	batchService := service.NewBatchService(pool, batchRepo, codeRepo)
	poolService := service.NewPoolService(pool, poolRepo)
	helperService := service.NewHelperService(helperRepo, codeRepo)

	// Handlers
	codeHandler := handler.NewCodeHandler(codeService, validate)
	redeemHandler := handler.NewRedeemHandler(codeService, validate)
	batchHandler := handler.NewBatchHandler(batchService, validate)
	poolHandler := handler.NewPoolHandler(poolService, validate)
	helperHandler := handler.NewHelperHandler(helperService, validate)
	healthHandler := handler.NewHealthHandler(pool)

	app.Get("/health", healthHandler.Check)

	// Public routes
	api := app.Group("/api")
	api.Post("/redeem", redeemHandler.Redeem)
	api.Post("/roblox-pool/claim", poolHandler.Claim)

	// Admin routes, gated by the shared operator passphrase
	gate := handler.AdminGate(cfg.Admin.Password)
	api.Post("/codes", gate, codeHandler.GenerateCode)
	api.Post("/codes/:id/sold", gate, codeHandler.MarkSold)
	api.Post("/codes/:id/active", gate, codeHandler.SetActive)
	api.Post("/batches", gate, batchHandler.CreateBatch)
	api.Get("/batches", gate, batchHandler.ListBatches)
	api.Get("/batches/:id/codes", gate, batchHandler.BatchCodes)
	api.Post("/roblox-pool", gate, poolHandler.AddCodes)
	api.Get("/roblox-pool/stats", gate, poolHandler.Stats)
	api.Post("/helpers", gate, helperHandler.CreateHelper)
	api.Get("/helpers", gate, helperHandler.ListHelpers)
	api.Get("/helpers/stats", gate, helperHandler.HelperStats)
	api.Patch("/helpers/:id", gate, helperHandler.UpdateHelper)
	api.Delete("/helpers/:id", gate, helperHandler.DeleteHelper)

	// Start server with graceful shutdown
	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("starting server")
		if err := app.Listen(":" + cfg.Server.Port); err != nil {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("received shutdown signal")
	log.Info().Int("timeout_seconds", cfg.Server.ShutdownTimeout).Msg("shutting down server...")

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer shutdownCancel()

	// Shutdown server (waits for in-flight requests)
	log.Info().Msg("waiting for in-flight requests to complete...")
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during server shutdown")
	}

	// Close database pool AFTER server shutdown (even if shutdown timed out)
	log.Info().Msg("closing database connections...")
	pool.Close()
	log.Info().Msg("database connections closed")
	log.Info().Msg("server stopped")
}

// initLogger configures zerolog based on the application configuration.
func initLogger(cfg *config.Config) {
	// Set log level
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	// Configure output format
	if cfg.Log.Pretty {
		// Human-readable output for development
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).
			With().Timestamp().Logger()
	} else {
		// JSON output for production
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}
}
