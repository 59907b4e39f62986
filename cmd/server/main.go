package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/SwiftWash/service-booking/internal/application"
	"github.com/SwiftWash/service-booking/internal/config"
	bookingDomain "github.com/SwiftWash/service-booking/internal/domain/booking"
	workerDomain "github.com/SwiftWash/service-booking/internal/domain/worker"
	bookingEvents "github.com/SwiftWash/service-booking/internal/events"
	"github.com/SwiftWash/service-booking/internal/handler"
	"github.com/SwiftWash/service-booking/internal/notification"
	"github.com/SwiftWash/service-booking/internal/realtime"
	"github.com/SwiftWash/service-booking/internal/repository"
	"github.com/SwiftWash/service-booking/internal/repository/memory"
	"github.com/SwiftWash/service-booking/internal/repository/mongodb"
	"github.com/SwiftWash/service-booking/pkg/auth"
	"github.com/SwiftWash/service-booking/pkg/database"
	"github.com/SwiftWash/service-booking/pkg/discovery"
	"github.com/SwiftWash/service-booking/pkg/health"
	"github.com/SwiftWash/service-booking/pkg/kafka"
	"github.com/SwiftWash/service-booking/pkg/logger"
	"github.com/SwiftWash/service-booking/pkg/middleware"
	"github.com/SwiftWash/service-booking/pkg/telemetry"
)

// stores bundles the repositories selected by STORE_DRIVER.
type stores struct {
	bookings bookingDomain.BookingRepository
	workers  workerDomain.WorkerRepository
	checks   []health.Check
	close    func()
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewNamed(cfg.AppEnv, config.ServiceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting "+config.ServiceName,
		zap.String("port", cfg.Port),
		zap.String("store", cfg.StoreDriver),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Tracing
	shutdownTracing := telemetry.Setup(ctx, config.ServiceName, cfg.TelemetryConfig, log)

	// Storage
	st, err := openStores(ctx, cfg, log)
	if err != nil {
		log.Fatal("failed to open storage", zap.Error(err))
	}
	defer st.close()

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(
		cfg.JWTConfig.Secret,
		cfg.JWTConfig.AccessTTL,
		cfg.JWTConfig.RefreshTTL,
	)

	// Kafka producer is optional; without brokers events are not published.
	var publisher application.EventPublisher
	if len(cfg.KafkaConfig.Brokers) > 0 {
		kafkaProducer := kafka.NewProducer(cfg.KafkaConfig.Brokers, log)
		defer func() { _ = kafkaProducer.Close() }()
		publisher = kafkaProducer
	}

	// Live admin feed
	hub := realtime.NewHub(log)
	go hub.Run(ctx)

	notifier := notification.NewDispatcher(cfg.SMSConfig, log)
	pricingStrategy := bookingDomain.NewStandardPricingStrategy()

	// Initialize application services
	bookingService := application.NewBookingService(
		st.bookings,
		st.workers,
		pricingStrategy,
		notifier,
		publisher,
		hub,
		cfg.PhoneCountryCode,
		log,
	)
	workerService := application.NewWorkerService(st.workers, st.bookings, cfg.PhoneCountryCode, log)
	authService := application.NewAuthService(st.workers, jwtManager, cfg.AdminConfig, log)
	if cfg.AdminConfig.Email == "" || cfg.AdminConfig.PasswordHash == "" {
		log.Warn("admin credentials not configured, admin login disabled")
	}

	// Payment event consumer
	if len(cfg.KafkaConfig.Brokers) > 0 {
		groupID := cfg.KafkaConfig.GroupPrefix + "booking-service"
		paymentConsumer := bookingEvents.NewPaymentEventConsumer(
			cfg.KafkaConfig.Brokers,
			groupID,
			bookingService,
			log,
		)
		defer func() { _ = paymentConsumer.Close() }()

		go func() {
			log.Info("starting payment event consumer")
			if err := paymentConsumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("payment event consumer error", zap.Error(err))
			}
		}()
	}

	// Setup Gin router
	if cfg.AppEnv != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	healthHandler := health.NewHandler(config.ServiceName, st.checks...)
	healthHandler.RegisterRoutes(router)

	// Register routes
	handler.NewBookingHandler(bookingService).RegisterRoutes(&router.RouterGroup, jwtManager)
	handler.NewAdminHandler(bookingService, workerService, authService, hub).RegisterRoutes(&router.RouterGroup, jwtManager)
	handler.NewWorkerHandler(workerService, bookingService, authService).RegisterRoutes(&router.RouterGroup, jwtManager)
	handler.NewPricingHandler(pricingStrategy).RegisterRoutes(&router.RouterGroup)
	handler.NewAuthHandler(authService).RegisterRoutes(&router.RouterGroup)

	// Service discovery
	deregister, err := discovery.Register(cfg.ConsulConfig, log)
	if err != nil {
		log.Warn("consul registration failed", zap.Error(err))
	} else {
		defer deregister()
	}

	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      otelhttp.NewHandler(router, config.ServiceName),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down " + config.ServiceName + "...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	// Stop the consumer and the hub, then let pending notifications and
	// events drain.
	cancel()
	bookingService.WaitForBackground()

	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Warn("tracer shutdown failed", zap.Error(err))
	}

	log.Info(config.ServiceName + " stopped")
}

func openStores(ctx context.Context, cfg *config.ServiceConfig, log *zap.Logger) (*stores, error) {
	switch cfg.StoreDriver {
	case config.StoreMemory:
		log.Warn("using in-memory storage, data is lost on restart")
		return &stores{
			bookings: memory.NewBookingRepository(),
			workers:  memory.NewWorkerRepository(),
			close:    func() {},
		}, nil

	case config.StoreMongo:
		client, err := database.ConnectMongo(cfg.MongoConfig.URI, log)
		if err != nil {
			return nil, err
		}
		db := client.Database(cfg.MongoConfig.Database)
		bookingRepo := mongodb.NewBookingRepository(db)
		workerRepo := mongodb.NewWorkerRepository(db)
		if err := bookingRepo.EnsureIndexes(ctx); err != nil {
			return nil, fmt.Errorf("booking indexes: %w", err)
		}
		if err := workerRepo.EnsureIndexes(ctx); err != nil {
			return nil, fmt.Errorf("worker indexes: %w", err)
		}
		return &stores{
			bookings: bookingRepo,
			workers:  workerRepo,
			checks:   []health.Check{health.MongoCheck(client)},
			close:    func() { _ = client.Disconnect(context.Background()) },
		}, nil

	default:
		dbConfig := database.PostgresConfig{
			Host:     cfg.DBConfig.Host,
			Port:     cfg.DBConfig.Port,
			User:     cfg.DBConfig.User,
			Password: cfg.DBConfig.Password,
			DBName:   cfg.DBConfig.DBName,
			SSLMode:  cfg.DBConfig.SSLMode,
		}
		db, err := database.Connect(dbConfig, log)
		if err != nil {
			return nil, err
		}
		if err := migrate(db, dbConfig, cfg.AppEnv, log); err != nil {
			return nil, err
		}
		return &stores{
			bookings: repository.NewGormBookingRepository(db),
			workers:  repository.NewGormWorkerRepository(db),
			checks:   []health.Check{health.GormCheck(db)},
			close: func() {
				if sqlDB, err := db.DB(); err == nil {
					_ = sqlDB.Close()
				}
			},
		}, nil
	}
}

func migrate(db *gorm.DB, dbConfig database.PostgresConfig, appEnv string, log *zap.Logger) error {
	if appEnv == "development" {
		if err := db.AutoMigrate(
			&repository.BookingModel{},
			&repository.WorkerModel{},
			&repository.WorkerDailyEarningModel{},
		); err != nil {
			return fmt.Errorf("auto-migration: %w", err)
		}
		log.Info("database migration completed (dev auto-migrate)")
		return nil
	}
	return database.RunMigrations(dbConfig.DatabaseURL(), "migrations", log)
}
