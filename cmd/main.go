package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dosada05/cup-simulator/brackets"
	"github.com/Dosada05/cup-simulator/config"
	"github.com/Dosada05/cup-simulator/db"
	"github.com/Dosada05/cup-simulator/handlers"
	"github.com/Dosada05/cup-simulator/messaging"
	"github.com/Dosada05/cup-simulator/narrative"
	"github.com/Dosada05/cup-simulator/repositories"
	api "github.com/Dosada05/cup-simulator/routes"
	"github.com/Dosada05/cup-simulator/services"
	"github.com/Dosada05/cup-simulator/simulation"
	"github.com/Dosada05/cup-simulator/squad"
	"github.com/Dosada05/cup-simulator/storage"
	"github.com/Dosada05/cup-simulator/utils"
	"github.com/go-chi/chi/v5"
)

func main() {
	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("application failed", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("application exited")
}

func run(logger *slog.Logger) error {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Хранилище: Postgres или память процесса
	var (
		teamRepo  repositories.TeamRepository
		matchRepo repositories.MatchRepository
		txRunner  repositories.TxRunner
	)
	if cfg.DatabaseURL != "" {
		dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer func() {
			if err := dbConn.Close(); err != nil {
				logger.Error("failed to close database connection", slog.Any("error", err))
			} else {
				logger.Info("database connection closed")
			}
		}()
		if err := db.Migrate(ctx, dbConn); err != nil {
			return err
		}
		logger.Info("database connection established")

		teamRepo = repositories.NewPostgresTeamRepository(dbConn)
		matchRepo = repositories.NewPostgresMatchRepository(dbConn)
		txRunner = repositories.NewPostgresTxRunner(dbConn, logger)
	} else {
		store := repositories.NewMemoryStore()
		teamRepo, matchRepo, txRunner = store.Teams(), store.Matches(), store
		logger.Warn("DATABASE_URL is not set, using in-memory storage")
	}

	// Инициализация WebSocket Hub
	wsHub := brackets.NewHub(logger)
	go wsHub.Run(ctx)
	logger.Info("WebSocket Hub started")

	// События: websocket и, если настроено, AMQP
	publishers := messaging.FanOut{messaging.NewHubPublisher(wsHub)}
	if cfg.AMQP.Enabled() {
		amqpPublisher, err := messaging.NewAMQPPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange, logger)
		if err != nil {
			return fmt.Errorf("failed to connect to AMQP broker: %w", err)
		}
		defer func() {
			if err := amqpPublisher.Close(); err != nil {
				logger.Error("failed to close AMQP publisher", slog.Any("error", err))
			}
		}()
		publishers = append(publishers, amqpPublisher)
		logger.Info("AMQP publisher initialized", slog.String("exchange", cfg.AMQP.Exchange))
	}

	// Письма федерациям о завершённых матчах
	emailConfig := services.EmailConfig{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		User:     cfg.SMTP.User,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	}
	if emailConfig.Enabled() {
		notifier := services.NewMatchResultNotifier(teamRepo, services.NewEmailService(emailConfig), logger)
		defer notifier.Wait()
		publishers = append(publishers, notifier)
		logger.Info("match result emails enabled", slog.String("smtp_host", cfg.SMTP.Host))
	}

	var matchOpts []services.MatchServiceOption

	// Архив отчётов о матчах (Cloudflare R2)
	r2Config := storage.CloudflareR2UploaderConfig{
		AccountID:       cfg.R2.AccountID,
		AccessKeyID:     cfg.R2.AccessKeyID,
		SecretAccessKey: cfg.R2.SecretAccessKey,
		BucketName:      cfg.R2.BucketName,
		PublicBaseURL:   cfg.R2.PublicBaseURL,
	}
	if r2Config.Enabled() {
		uploader, err := storage.NewCloudflareR2Uploader(ctx, r2Config)
		if err != nil {
			return fmt.Errorf("failed to initialize Cloudflare R2 uploader: %w", err)
		}
		matchOpts = append(matchOpts, services.WithReportArchiver(storage.NewReportArchiver(uploader)))
		logger.Info("Cloudflare R2 uploader initialized")
	}

	// Генерация текстов
	var narrator narrative.Narrator
	if cfg.Narrative.Enabled() {
		narrator = narrative.NewChatClient(narrative.ChatClientConfig{
			BaseURL: cfg.Narrative.APIURL,
			APIKey:  cfg.Narrative.APIKey,
			Model:   cfg.Narrative.Model,
			Timeout: cfg.Narrative.Timeout,
		})
		matchOpts = append(matchOpts, services.WithNarrator(narrator, cfg.Narrative.Timeout))
		logger.Info("narrative client initialized", slog.String("model", cfg.Narrative.Model))
	}

	squadGenerator, err := squad.NewGenerator()
	if err != nil {
		return fmt.Errorf("failed to initialize squad generator: %w", err)
	}
	engine := simulation.NewEngine(logger, simulation.WithNarrator(narrator, cfg.Narrative.Timeout))

	adminHash, err := utils.HashPassword(cfg.AdminPassword)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	// Инициализация сервисов
	bracketService := services.NewBracketService(teamRepo, matchRepo, txRunner, brackets.NewSingleEliminationGenerator(), publishers, logger)
	teamService := services.NewTeamService(teamRepo, bracketService, squadGenerator, publishers, logger)
	matchService := services.NewMatchService(matchRepo, teamRepo, bracketService, engine, logger, matchOpts...)
	analyticsService := services.NewAnalyticsService(teamRepo, matchRepo)
	dashboardService := services.NewDashboardService(teamRepo, matchRepo, bracketService)
	authService := services.NewAuthService(adminHash, logger)
	logger.Info("Services initialized")

	// Настройка маршрутизатора
	router := chi.NewRouter()
	api.SetupRoutes(router, api.Handlers{
		Auth:       handlers.NewAuthHandler(authService, cfg.JWTSecretKey),
		Team:       handlers.NewTeamHandler(teamService),
		Match:      handlers.NewMatchHandler(matchService),
		Tournament: handlers.NewTournamentHandler(bracketService, matchService, dashboardService),
		Analytics:  handlers.NewAnalyticsHandler(analyticsService),
		WebSocket:  handlers.NewWebSocketHandler(wsHub, logger),
	}, api.Options{
		JWTSecret:      []byte(cfg.JWTSecretKey),
		AllowedOrigins: cfg.CORSAllowedOrigins,
	})
	logger.Info("Routes configured")

	// Настройка и запуск HTTP-сервера
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	// Ожидание сигнала завершения
	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		logger.Info("server stopped gracefully")
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		logger.Info("server shutdown complete")
	}
	return nil
}
