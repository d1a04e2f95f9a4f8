package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/cloudwatchw/backend/internal/api/http"
	"github.com/cloudwatchw/backend/internal/auth"
	"github.com/cloudwatchw/backend/internal/config"
	"github.com/cloudwatchw/backend/internal/scheduler"
	"github.com/cloudwatchw/backend/internal/store"
	"github.com/cloudwatchw/backend/internal/user"
	"github.com/cloudwatchw/backend/internal/weather"
	"github.com/cloudwatchw/backend/internal/weather/providers"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	mongoStore, err := store.NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDB)
	cancel()
	if err != nil {
		log.Fatalf("failed to connect to mongodb: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := mongoStore.Close(ctx); err != nil {
			log.Printf("error closing mongodb connection: %v", err)
		}
	}()

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}
	provider := providers.NewOpenWeatherProvider(httpClient, cfg.OpenWeatherAPIKey)

	service := weather.NewService(mongoStore, provider, weather.ServiceConfig{
		Policy:          cfg.FetchPolicy,
		LookupTolerance: cfg.LookupTolerance,
		LatestTolerance: cfg.LatestTolerance,
	})

	users := user.NewRegistry(mongoStore)
	authn := auth.NewJWTAuthenticator(cfg.JWTSecret, cfg.TokenTTL)

	// The background sweep only makes sense when reads are served from the
	// cache; under always_fresh every read already hits the provider.
	if cfg.FetchPolicy == weather.PolicyCacheFirst {
		sched := scheduler.New(service, users, mongoStore, cfg.SweepInterval, cfg.PurgeAt)
		if err := sched.Start(); err != nil {
			log.Fatalf("failed to start scheduler: %v", err)
		}
		defer sched.Stop()
	}

	app := fiber.New(fiber.Config{
		AppName:               "cloudwatch",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "cloudwatch",
		})
	})

	httpapi.RegisterRoutes(app, httpapi.Deps{
		Service: service,
		Users:   users,
		Reports: mongoStore,
		Auth:    authn,
	})

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	// Wait for termination signal
	sigCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-sigCtx.Done()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}
