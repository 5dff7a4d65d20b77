package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"docingest/docs"
	"docingest/internal/app"
	"docingest/internal/auth"
	"docingest/internal/config"
	handlers "docingest/internal/http/handler"
	"docingest/internal/http/middleware"
	"docingest/internal/logger"
	apptel "docingest/internal/otel"
)

// @title Document Ingestion API
// @version 1.0
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg := config.Load()
	log := logger.New(os.Stdout, cfg.Location())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := apptel.Init(ctx, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize tracing")
	}

	tokens, err := auth.NewTokens(cfg.Auth.Secret, time.Duration(cfg.Auth.TTLMin)*time.Minute)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize token verification")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	pipeline, err := app.NewPipeline(ctx, cfg, log, reg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize ingestion pipeline")
	}
	defer pipeline.Close()

	promMiddleware, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to register http metrics")
	}

	server := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
		BodyLimit:    64 << 20,
	})

	server.Use(otelfiber.Middleware())
	server.Use(middleware.RequestID())
	server.Use(middleware.Logger(cfg.Location()))
	server.Use(promMiddleware.Handler())

	server.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	handlers.RegisterRoutes(server, pipeline.DB, pipeline.Service, tokens)

	// Swagger UI with dynamic host and scheme
	server.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	go func() {
		<-ctx.Done()
		log.Info().Msg("shutting_down")
		if err := server.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Error().Err(err).Msg("server_shutdown_failed")
		}
	}()

	log.Info().Str("port", cfg.Port).Msg("server_starting")
	if err := server.Listen(":" + cfg.Port); err != nil {
		log.Error().Err(err).Msg("failed to start server")
	}

	flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdownTracing(flushCtx); err != nil {
		log.Error().Err(err).Msg("tracing_shutdown_failed")
	}
}
