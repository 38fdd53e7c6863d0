package main

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/prog-Noon/rakaizfoundation/config"
	"github.com/prog-Noon/rakaizfoundation/db"
	"github.com/prog-Noon/rakaizfoundation/handlers"
	"github.com/prog-Noon/rakaizfoundation/logging"
	"github.com/prog-Noon/rakaizfoundation/models"
	"github.com/prog-Noon/rakaizfoundation/services"
	"github.com/prog-Noon/rakaizfoundation/i18n"
	"github.com/prog-Noon/rakaizfoundation/services/identity"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg := config.Load()

	if err := logging.Init(cfg.Environment); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logging.Sync()

	if err := i18n.SetFallback(cfg.FallbackLocale); err != nil {
		logging.Log.Fatal("Invalid fallback locale", zap.Error(err))
	}

	// Initialize database
	if err := db.Initialize(cfg); err != nil {
		logging.Log.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	// Run migrations
	if err := db.AutoMigrate(models.All()...); err != nil {
		logging.Log.Fatal("Failed to run migrations", zap.Error(err))
	}
	if _, err := services.EnsureSiteSettings(db.DB); err != nil {
		logging.Log.Fatal("Failed to prepare site settings", zap.Error(err))
	}

	services.InitializeStorage(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	verifier, err := identity.NewVerifier(ctx, cfg)
	cancel()
	switch {
	case errors.Is(err, identity.ErrNotConfigured):
		logging.Log.Warn("No staff identity provider configured; staff routes will reject every request")
	case err != nil:
		logging.Log.Fatal("Failed to initialize staff identity", zap.Error(err))
	}

	intake := services.NewIntakeService(db.DB, services.NewEmailNotifier(cfg))

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.Use(echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			logging.Log.Info("request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("remote_ip", v.RemoteIP))
			return nil
		},
	}))

	handlers.RegisterRoutes(e, cfg, verifier, intake)

	// Start server
	logging.Log.Info("Server starting", zap.String("port", cfg.ServerPort), zap.String("environment", cfg.Environment))
	if err := e.Start(":" + cfg.ServerPort); err != nil {
		logging.Log.Fatal("Failed to start server", zap.Error(err))
	}
}
