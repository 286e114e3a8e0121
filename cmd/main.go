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

	"github.com/go-chi/chi/v5"
	"github.com/josvita0323/devhost-2025-sub000/config"
	"github.com/josvita0323/devhost-2025-sub000/db"
	"github.com/josvita0323/devhost-2025-sub000/handlers"
	"github.com/josvita0323/devhost-2025-sub000/live"
	"github.com/josvita0323/devhost-2025-sub000/repositories"
	api "github.com/josvita0323/devhost-2025-sub000/routes"
	"github.com/josvita0323/devhost-2025-sub000/services"
	"github.com/josvita0323/devhost-2025-sub000/storage"
	"go.uber.org/zap"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// Настройка логгера
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}
	logger.Info("configuration loaded", zap.Int("port", cfg.ServerPort))

	// Подключение к базе данных
	mongoClient, err := db.Connect(cfg.MongoURI, 10*time.Second)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := mongoClient.Disconnect(disconnectCtx); err != nil {
			logger.Error("failed to close database connection", zap.Error(err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")
	database := mongoClient.Database(cfg.MongoDB)

	// Инициализация загрузчика файлов (Cloudflare R2).
	// Хранилище опционально: без него отключается только загрузка постеров.
	var uploader storage.FileUploader
	if cfg.R2AccountID != "" {
		uploader, err = storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Fatal("failed to initialize Cloudflare R2 uploader", zap.Error(err))
		}
		logger.Info("Cloudflare R2 uploader initialized")
	} else {
		logger.Warn("R2 storage not configured, poster uploads disabled")
	}

	// Инициализация WebSocket Hub
	wsHub := live.NewHub(logger)
	go wsHub.Run()
	logger.Info("WebSocket Hub started")

	// Инициализация репозиториев
	userRepo := repositories.NewMongoUserRepository(database)
	eventRepo := repositories.NewMongoEventRepository(database)
	teamRepo := repositories.NewMongoTeamRepository(database)
	paymentRepo := repositories.NewMongoPaymentRepository(database)
	txnRunner := repositories.NewMongoTxnRunner(mongoClient)
	logger.Info("Repositories initialized")

	// Инициализация сервисов
	authService := services.NewAuthService(cfg.AdminEmail, cfg.AdminPasswordHash, cfg.JWTSecretKey)
	tokenVerifier := services.NewJWTVerifier(cfg.JWTSecretKey)
	userService := services.NewUserService(userRepo, logger)
	eventService := services.NewEventService(eventRepo, teamRepo, uploader, logger)
	teamService := services.NewTeamService(teamRepo, userRepo, eventRepo, wsHub, logger, cfg.DefaultEventID)
	mailer := services.NewEmailService(cfg)

	// Платежный сервис поднимается только с полными учетными данными шлюза:
	// проверка подписи на пустом секрете небезопасна.
	var paymentService services.PaymentService
	if cfg.RazorpayKeyID != "" && cfg.RazorpayKeySecret != "" {
		paymentGateway := services.NewRazorpayGateway(cfg.RazorpayKeyID, cfg.RazorpayKeySecret)
		paymentService = services.NewPaymentService(
			paymentRepo,
			teamRepo,
			eventRepo,
			txnRunner,
			paymentGateway,
			mailer,
			wsHub,
			logger,
			cfg.RazorpayKeyID,
			cfg.RazorpayKeySecret,
		)
	} else {
		logger.Warn("Razorpay credentials not configured, payment routes disabled")
	}
	logger.Info("Services initialized")

	// Инициализация обработчиков HTTP
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	eventHandler := handlers.NewEventHandler(eventService)
	teamHandler := handlers.NewTeamHandler(teamService, cfg.DefaultEventID)
	var paymentHandler *handlers.PaymentHandler
	if paymentService != nil {
		paymentHandler = handlers.NewPaymentHandler(paymentService)
	}
	webSocketHandler := handlers.NewWebSocketHandler(wsHub)
	logger.Info("HTTP handlers initialized")

	// Настройка маршрутизатора
	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		tokenVerifier,
		cfg.CORSAllowedOrigins,
		authHandler,
		userHandler,
		eventHandler,
		teamHandler,
		paymentHandler,
		webSocketHandler,
	)
	logger.Info("Routes configured")

	// Настройка и запуск HTTP-сервера
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", zap.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", zap.String("signal", sig.String()))

		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancelShutdown()

		logger.Info("shutting down server", zap.Duration("timeout", shutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", zap.Error(err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", zap.Error(closeErr))
			}
		} else {
			logger.Info("server shut down gracefully")
		}
	}
}
