package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Eursukkul/eventsphere/config"
	"github.com/Eursukkul/eventsphere/internal/auth"
	"github.com/Eursukkul/eventsphere/internal/authz"
	"github.com/Eursukkul/eventsphere/internal/handler"
	"github.com/Eursukkul/eventsphere/internal/logging"
	"github.com/Eursukkul/eventsphere/internal/middleware"
	"github.com/Eursukkul/eventsphere/internal/repository"
	"github.com/Eursukkul/eventsphere/internal/service"
	"github.com/Eursukkul/eventsphere/internal/validation"
	"github.com/Eursukkul/eventsphere/pkg/database"
	"github.com/Eursukkul/eventsphere/pkg/qrcode"
	"github.com/Eursukkul/eventsphere/pkg/rabbitmq"
	"github.com/Eursukkul/eventsphere/pkg/storage"
	"github.com/labstack/echo/v4"
	echoMw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const uploadsPrefix = "/uploads"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load config")
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	db, err := database.NewPostgresDB(cfg.DSN())
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to connect to database")
	}

	// Publishing is optional: without a broker, requests still succeed and
	// notifications are simply not produced.
	var publisher service.Publisher
	if cfg.RabbitURL != "" {
		p, err := rabbitmq.NewPublisher(cfg.RabbitURL)
		if err != nil {
			logging.Warn().Err(err).Msg("RabbitMQ unavailable, domain events disabled")
		} else {
			defer p.Close()
			publisher = p
		}
	}

	tokens, err := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to create token manager")
	}
	enforcer, err := authz.NewEnforcer()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to create authorizer")
	}
	images, err := storage.NewLocalStorage(cfg.UploadDir, uploadsPrefix, cfg.PublicURL)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to prepare upload storage")
	}

	// Repositories
	tx := repository.NewTxRunner(db)
	userRepo := repository.NewUserRepository(db)
	eventRepo := repository.NewEventRepository(db)
	registrationRepo := repository.NewRegistrationRepository(db)
	ticketRepo := repository.NewTicketRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	// Services
	authSvc := service.NewAuthService(userRepo, tokens)
	userSvc := service.NewUserService(userRepo, notificationRepo, images)
	eventSvc := service.NewEventService(eventRepo, registrationRepo, publisher)
	registrationSvc := service.NewRegistrationService(tx, eventRepo, registrationRepo, ticketRepo, qrcode.NewGenerator(), publisher)
	hostSvc := service.NewHostService(tx, eventRepo, registrationRepo, ticketRepo, publisher, service.HostOptions{
		KeepApprovalOnCosmeticEdit: cfg.KeepApprovalOnCosmeticEdit,
	})
	reviewSvc := service.NewReviewService(tx, eventRepo, registrationRepo, userRepo, publisher)
	ticketSvc := service.NewTicketService(tx, ticketRepo, registrationRepo)

	// Echo
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = middleware.ErrorHandler
	e.Validator = validation.New()

	e.Use(echoMw.RequestID())
	e.Use(middleware.RequestLogger())
	e.Use(echoMw.Recover())
	e.Use(middleware.Metrics())
	e.Use(echoMw.CORSWithConfig(echoMw.CORSConfig{
		AllowOrigins:     corsOrigins(cfg.CORSOrigins),
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))
	e.Use(echoMw.BodyLimit("10M"))
	e.Use(echoMw.RateLimiter(echoMw.NewRateLimiterMemoryStoreWithConfig(echoMw.RateLimiterMemoryStoreConfig{
		Rate:      20,
		Burst:     40,
		ExpiresIn: 3 * time.Minute,
	})))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok", "service": "eventsphere"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.Static(uploadsPrefix, cfg.UploadDir)

	guards := handler.Guards{
		Authn: middleware.Authenticate(tokens, userRepo),
		Authz: enforcer,
	}

	api := e.Group("/api/v1")
	handler.NewAuthHandler(authSvc, guards).RegisterRoutes(api.Group("/auth"))
	handler.NewUserHandler(userSvc, guards).RegisterRoutes(api.Group("/users"))
	handler.NewEventHandler(eventSvc, registrationSvc, guards).RegisterRoutes(api.Group("/events"))
	handler.NewRegistrationHandler(registrationSvc, guards).RegisterRoutes(api.Group("/registrations"))
	handler.NewHostHandler(hostSvc, guards).RegisterRoutes(api.Group("/host"))
	handler.NewAdminHandler(reviewSvc, guards).RegisterRoutes(api.Group("/admin"))
	handler.NewTicketHandler(ticketSvc, guards).RegisterRoutes(api.Group("/tickets"))
	handler.NewUploadHandler(images, guards).RegisterRoutes(api.Group("/uploads"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logging.Info().Str("port", cfg.ServerPort).Msg("EventSphere API starting")
		if err := e.Start(":" + cfg.ServerPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("server stopped")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("graceful shutdown failed")
	}
	logging.Info().Msg("EventSphere API stopped")
}

func corsOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
