package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpapi "github.com/sunspotter/sunspotter/internal/api/http"
	"github.com/sunspotter/sunspotter/internal/conditions"
	"github.com/sunspotter/sunspotter/internal/config"
	"github.com/sunspotter/sunspotter/internal/metrics"
	"github.com/sunspotter/sunspotter/internal/pipeline"
	"github.com/sunspotter/sunspotter/internal/poi"
	"github.com/sunspotter/sunspotter/internal/roads"
	"github.com/sunspotter/sunspotter/internal/viewport"
)

// Constants for different environment types.
const (
	envLocal = "local"
	envDev   = "development"
	envProd  = "production"
)

const httpClientTimeout = 15 * time.Second

// main is the entry point of the application.
func main() {
	// Create a context that will be canceled when an interrupt signal is received.
	// This allows for graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load application configuration.
	cfg := config.MustLoad()

	// Set up the logger based on the environment.
	logger := setupLogger(cfg.Env)

	// Create a separate registry for metrics with exemplar
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.NewMetrics(reg)

	// Create the restaurant search provider using the factory pattern based on
	// configuration. This allows runtime selection between Overpass and Google.
	providerConfig := poi.ProviderConfig{
		Type:      poi.ProviderType(cfg.ProviderType),
		APIKey:    cfg.GoogleAPIKey,
		RateLimit: cfg.SearchRateLimit,
		Logger:    logger,
	}

	searchProvider, err := poi.NewProvider(providerConfig)
	if err != nil {
		log.Fatalf("Failed to create restaurant search provider: %v", err)
	}

	logger.InfoContext(ctx, "Restaurant search provider initialized", "type", cfg.ProviderType)

	// One shared HTTP client for all outbound collaborators.
	httpClient := &http.Client{Timeout: httpClientTimeout}

	roadSearcher := roads.NewOverpassClient(cfg.SearchRateLimit, logger)
	snapper := roads.NewSnapper(roadSearcher, cfg.RoadRadiusMeters, logger)

	shadowOracle := conditions.NewShadeSimClient(httpClient, cfg.ShadowBaseURL, cfg.ShadowAPIKey, logger)
	cloudSource := conditions.NewOpenMeteoClient(httpClient, logger)
	resolver := conditions.NewResolver(shadowOracle, cloudSource, cfg.CloudyThresholdPct, logger)

	enricher := pipeline.NewEnricher(
		snapper,
		resolver,
		appMetrics,
		cfg.Pacing,
		cfg.TerraceOffsetMeters,
		logger,
	)

	controller := viewport.NewController(searchProvider, enricher, appMetrics, cfg.MinZoom, logger)

	app := newFiberApp(logger)
	httpapi.RegisterRoutes(app, controller)

	// Log that the application has started.
	logger.InfoContext(ctx, "Application started. Press Ctrl+C to stop.")

	// Start the monitoring server in a goroutine to allow main to listen for signals.
	go startMonitoringServer(ctx, logger, reg, cfg.MonitorPort)

	go func() {
		if listenErr := app.Listen(fmt.Sprintf(":%d", cfg.Port)); listenErr != nil {
			logger.ErrorContext(ctx, "API server failed", "error", listenErr)
			stop()
		}
	}()

	// Wait for the context to be canceled (e.g., by Ctrl+C).
	<-ctx.Done()

	// Log that a shutdown signal has been received.
	logger.InfoContext(ctx, "Shutdown signal received. Stopping application...")

	if shutdownErr := app.Shutdown(); shutdownErr != nil {
		logger.ErrorContext(ctx, "Failed to shut down API server", "error", shutdownErr)
	}

	// Log graceful shutdown completion.
	logger.InfoContext(ctx, "Application stopped gracefully.")
}

// newFiberApp builds the public API server with logging, panic recovery and
// a central error handler.
func newFiberApp(logger *slog.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "sunspotter",
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			message := "internal server error"

			var fiberErr *fiber.Error
			if errors.As(err, &fiberErr) {
				code = fiberErr.Code
				message = fiberErr.Message
			}

			if code >= fiber.StatusInternalServerError {
				logger.Error("Request failed", "path", c.Path(), "error", err)
			}

			return c.Status(code).JSON(fiber.Map{"error": message})
		},
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New())

	return app
}

// startMonitoringServer starts an HTTP server that provides health check and metrics endpoints.
// It listens on the specified port and logs the server's status and any errors encountered.
func startMonitoringServer(
	ctx context.Context,
	log *slog.Logger,
	reg *prometheus.Registry,
	port int,
) {
	http.HandleFunc("/healthz", func(writer http.ResponseWriter, _ *http.Request) {
		log.DebugContext(ctx, "Performing health checks...")
		writer.WriteHeader(http.StatusOK)
		if _, err := writer.Write([]byte("OK")); err != nil {
			log.ErrorContext(ctx, "failed to write reply", "error", err)
		}
	})
	http.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	log.InfoContext(ctx, "Starting monitoring server", "port", port)
	readTimeout := 5
	writeTimeout := 10
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      http.DefaultServeMux,
		ReadTimeout:  time.Duration(readTimeout) * time.Second,
		WriteTimeout: time.Duration(writeTimeout) * time.Second,
	}
	if err := server.ListenAndServe(); err != nil {
		log.ErrorContext(ctx, "Monitoring server failed", "error", err)
	}
}

// setupLogger initializes and returns a logger based on the environment provided.
func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelDebug,
				AddSource: true,
			}),
		)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelInfo,
				AddSource: false,
			}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelWarn,
				AddSource: false,
				ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
					if a.Key == slog.TimeKey {
						return slog.Attr{}
					}
					return a
				},
			}),
		)
	default:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelError,
				AddSource: false,
				ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
					if a.Key == slog.TimeKey {
						return slog.Attr{}
					}
					return a
				},
			}),
		)

		log.Error(
			"The env parameter was not specified or was invalid. Logging will be minimal, by default.",
			slog.String("available_envs", "local, development, production"))
	}

	return log
}
