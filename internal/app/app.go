package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pharmacy_backend/internal/auth"
	"pharmacy_backend/internal/cache"
	"pharmacy_backend/internal/config"
	"pharmacy_backend/internal/database"
	"pharmacy_backend/internal/delivery"
	"pharmacy_backend/internal/handlers"
	"pharmacy_backend/internal/logger"
	"pharmacy_backend/internal/middleware"
	"pharmacy_backend/internal/repositories"
	"pharmacy_backend/internal/routes"
	"pharmacy_backend/internal/services"
	"pharmacy_backend/internal/storage"
	"pharmacy_backend/internal/validator"
	"pharmacy_backend/internal/workers"
	"pharmacy_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"gorm.io/gorm"
)

// App is the wired application: router plus the long-lived pieces that need
// shutting down.
type App struct {
	Router     *gin.Engine
	Services   *services.ServiceContainer
	Dispatcher *delivery.Dispatcher
	Tokens     *auth.TokenManager

	cfg     *config.Config
	unread  cache.UnreadCounter
	cleanup *workers.NotificationCleanupWorker
}

func Run() {
	config.LoadConfig()
	cfg := config.AppConfig
	logger.Init(cfg.Server.Env)
	logger.Info("Logger initialized", "env", cfg.Server.Env)
	apperrors.SetDebug(cfg.IsDevelopment())

	logger.Info("Connecting to database...")
	gormDB, err := database.Connect(cfg)
	if err != nil {
		logger.Fatal("Database unavailable", "error", err)
	}
	logger.Info("Database connected")

	if cfg.Database.AutoMigrate {
		if err := database.AutoMigrate(gormDB); err != nil {
			logger.Fatal("Failed to migrate database", "error", err)
		}
	}

	application, err := New(cfg, gormDB)
	if err != nil {
		logger.Fatal("Failed to initialize application", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := application.cleanup.Start(ctx); err != nil {
		logger.Fatal("Failed to start notification cleanup", "error", err)
	}

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      application.Handler(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSec) * time.Second,
	}

	go func() {
		logger.Info("Server starting", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server startup error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}
	application.Close()

	if sqlDB, err := gormDB.DB(); err == nil {
		_ = sqlDB.Close()
	}
	logger.Info("Server exited")
}

// New builds every layer on top of an open database. It does not migrate or
// start background jobs.
func New(cfg *config.Config, gormDB *gorm.DB) (*App, error) {
	storageInstance, err := storage.NewStorage(storage.Config{
		Type:      cfg.Storage.Type,
		BasePath:  cfg.Storage.BasePath,
		BaseURL:   cfg.Storage.BaseURL,
		Bucket:    cfg.Storage.Bucket,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		Endpoint:  cfg.Storage.Endpoint,
	})
	if err != nil {
		return nil, fmt.Errorf("initialize storage: %w", err)
	}
	logger.Info("Storage initialized", "type", cfg.Storage.Type)

	unread := initializeCache(cfg)
	tokens := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.Issuer)
	serviceKey := auth.NewServiceKeyVerifier(cfg.Notifications.ServiceKey, cfg.Notifications.ServiceKeyHash)
	if !serviceKey.Configured() {
		logger.Warn("Notification service key is not configured; privileged create is disabled")
	}

	notificationRepo := repositories.NewNotificationRepository()
	prescriptionRepo := repositories.NewPrescriptionRepository()
	responseRepo := repositories.NewPharmacyResponseRepository()

	notificationService := services.NewNotificationService(notificationRepo, serviceKey, unread, cfg.Notifications.DefaultType)
	dispatcher := delivery.NewDispatcher(initializeNotifier(cfg, gormDB, notificationService), cfg.DeliveryTimeout())

	serviceContainer := &services.ServiceContainer{
		NotificationService: notificationService,
		PrescriptionService: services.NewPrescriptionService(prescriptionRepo, storageInstance, services.ImagePolicy{
			MaxSize:      cfg.Storage.MaxSize,
			AllowedTypes: cfg.Storage.AllowedTypes,
			MaxDimension: cfg.Storage.MaxImageDimension,
		}),
		PharmacyResponseService: services.NewPharmacyResponseService(prescriptionRepo, responseRepo, dispatcher),
	}

	baseHandler := handlers.NewBaseHandler(validator.New())
	appHandlers := &handlers.AppHandlers{
		NotificationHandler: handlers.NewNotificationHandler(baseHandler, serviceContainer.NotificationService),
		PrescriptionHandler: handlers.NewPrescriptionHandler(baseHandler, serviceContainer.PrescriptionService),
		ResponseHandler:     handlers.NewResponseHandler(baseHandler, serviceContainer.PharmacyResponseService),
		HealthHandler:       handlers.NewHealthHandler(baseHandler, cachePinger(unread)),
	}
	guards := handlers.RouteGuards{
		Session:    middleware.AuthMiddleware(tokens),
		ServiceKey: middleware.ServiceKeyMiddleware(serviceKey),
	}

	ginRouter := initializeGinRouter(cfg, gormDB)
	routes.RegisterRoutes(ginRouter, appHandlers, guards)
	if local, ok := storageInstance.(*storage.LocalStorage); ok && cfg.Storage.BaseURL != "" {
		ginRouter.Static(cfg.Storage.BaseURL, local.BasePath())
	}

	retention := time.Duration(cfg.Notifications.RetentionDays) * 24 * time.Hour
	return &App{
		Router:     ginRouter,
		Services:   serviceContainer,
		Dispatcher: dispatcher,
		Tokens:     tokens,
		cfg:        cfg,
		unread:     unread,
		cleanup:    workers.NewNotificationCleanupWorker(gormDB, notificationRepo, retention, cfg.Notifications.CleanupSchedule),
	}, nil
}

// Handler is the router wrapped with CORS.
func (a *App) Handler() http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   a.cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-ID", middleware.ServiceKeyHeader},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
	}).Handler(a.Router)
}

// Close waits for in-flight deliveries and releases the cache.
func (a *App) Close() {
	a.cleanup.Stop()
	a.Dispatcher.Wait()
	if err := a.unread.Close(); err != nil {
		logger.Warn("Failed to close unread cache", "error", err)
	}
}

func initializeCache(cfg *config.Config) cache.UnreadCounter {
	if cfg.Redis.URL == "" {
		return cache.NewNoop()
	}
	redisCache, err := cache.NewRedis(cfg.Redis.URL, cfg.UnreadCacheTTL())
	if err != nil {
		logger.Warn("Unread cache disabled", "error", err)
		return cache.NewNoop()
	}
	logger.Info("Unread cache enabled", "ttl", cfg.UnreadCacheTTL())
	return redisCache
}

// cachePinger returns nil for caches that cannot be probed, so health reports
// them as disabled.
func cachePinger(unread cache.UnreadCounter) handlers.Pinger {
	if p, ok := unread.(handlers.Pinger); ok {
		return p
	}
	return nil
}

// initializeNotifier picks the in-app channel by delivery mode and adds email
// when enabled.
func initializeNotifier(cfg *config.Config, gormDB *gorm.DB, creator delivery.PrivilegedCreator) delivery.Notifier {
	var channels delivery.MultiNotifier

	switch cfg.Delivery.Mode {
	case "", "direct":
		if cfg.Notifications.ServiceKey == "" {
			logger.Warn("Direct delivery needs notifications.service_key; in-app delivery disabled")
			break
		}
		channels = append(channels, delivery.NewServiceNotifier(creator, gormDB, cfg.Notifications.ServiceKey))
	case "http":
		client := &http.Client{Timeout: cfg.DeliveryTimeout()}
		channels = append(channels, delivery.NewHTTPNotifier(client, cfg.Delivery.BaseURL, cfg.Notifications.ServiceKey))
	case "disabled":
	default:
		logger.Warn("Unknown delivery mode; in-app delivery disabled", "mode", cfg.Delivery.Mode)
	}

	if cfg.Email.Enabled {
		channels = append(channels, delivery.NewEmailNotifier(delivery.EmailConfig{
			Host:      cfg.Email.SMTPHost,
			Port:      cfg.Email.SMTPPort,
			Username:  cfg.Email.SMTPUsername,
			Password:  cfg.Email.SMTPPassword,
			FromEmail: cfg.Email.FromEmail,
			FromName:  cfg.Email.FromName,
		}))
	}

	if len(channels) == 0 {
		return delivery.Disabled
	}
	logger.Info("Delivery initialized", "mode", cfg.Delivery.Mode, "channels", len(channels))
	return channels
}

func initializeGinRouter(cfg *config.Config, db *gorm.DB) *gin.Engine {
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(middleware.RecoveryMiddleware())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.DBMiddleware(db))
	return router
}
