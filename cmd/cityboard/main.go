package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	httpapi "github.com/localweather/cityboard/internal/api/http"
	"github.com/localweather/cityboard/internal/cards"
	"github.com/localweather/cityboard/internal/cards/providers"
	"github.com/localweather/cityboard/internal/config"
	"github.com/localweather/cityboard/internal/notify"
	"github.com/localweather/cityboard/internal/scheduler"
	"github.com/localweather/cityboard/internal/search"
	"github.com/localweather/cityboard/internal/session"
	"github.com/localweather/cityboard/internal/storage"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// Durable storage for boards, favorites and sessions.
	kv, err := storage.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open storage: %v", err)
	}
	defer kv.Close()

	sessions, err := session.NewManager(kv.DB(), cfg.SessionTTL)
	if err != nil {
		log.Fatalf("failed to init sessions: %v", err)
	}

	// Card sources. Each keeps its own circuit breaker; a missing key just
	// leaves that section of every card empty.
	openWeather := providers.NewOpenWeatherProvider(httpClient, cfg.OpenWeatherAPIKey)
	windy := providers.NewWindyProvider(httpClient, cfg.WindyAPIKey, cfg.WebcamRadiusKm, cfg.WebcamLimit)

	notifier := notify.LogSink{}
	pipeline := cards.NewPipeline(openWeather, openWeather, windy, notifier)

	// Geocoding search, rate limited per Nominatim's usage policy.
	geocoder := search.NewNominatimClient(httpClient, cfg.GeocoderLang, cfg.GeocoderRPS)
	resolver := search.NewResolver(geocoder, cfg.SearchMinChars, cfg.SearchDebounce, cfg.SearchMaxResults)

	// Background maintenance: session pruning and storage compaction.
	maint := scheduler.New(sessions, kv, cfg.PruneInterval)
	if err := maint.Start(); err != nil {
		log.Fatalf("failed to start maintenance job: %v", err)
	}
	defer maint.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "cityboard",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          30 * time.Second,
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

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "cityboard",
		})
	})

	// API routes.
	httpapi.RegisterRoutes(app, httpapi.Deps{
		KV:       kv,
		Pipeline: pipeline,
		Resolver: resolver,
		Sessions: sessions,
		Notifier: notifier,
	})

	// Start server with graceful shutdown
	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}

	go func() {
		if err := app.Listen(":" + port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}
