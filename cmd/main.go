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

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"

	"github.com/fairwayleague/fantasy-golf/config"
	"github.com/fairwayleague/fantasy-golf/db"
	"github.com/fairwayleague/fantasy-golf/golfdata"
	"github.com/fairwayleague/fantasy-golf/handlers"
	"github.com/fairwayleague/fantasy-golf/middleware"
	"github.com/fairwayleague/fantasy-golf/repositories"
	"github.com/fairwayleague/fantasy-golf/routes"
	"github.com/fairwayleague/fantasy-golf/services"
	"github.com/fairwayleague/fantasy-golf/storage"
)

func main() {
	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	// Инициализация загрузчика файлов (Cloudflare R2). Логотипы лиг
	// опциональны, без конфигурации R2 приложение работает.
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
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Cloudflare R2 uploader initialized")
	} else {
		logger.Warn("Cloudflare R2 is not configured, league logo uploads are disabled")
	}

	// Клиент внешнего API гольф-данных
	golfClient := golfdata.NewClient(golfdata.ClientConfig{
		BaseURL: cfg.GolfAPIBaseURL,
		APIKey:  cfg.GolfAPIKey,
		APIHost: cfg.GolfAPIHost,
	})

	// Инициализация репозиториев
	userRepo := repositories.NewPostgresUserRepository(dbConn)
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	playerRepo := repositories.NewPostgresPlayerRepository(dbConn)
	scoreRepo := repositories.NewPostgresScoreRepository(dbConn)
	leagueRepo := repositories.NewPostgresLeagueRepository(dbConn)
	teamRepo := repositories.NewPostgresTeamRepository(dbConn)
	logger.Info("repositories initialized")

	// Инициализация сервисов
	authService := services.NewAuthService(userRepo)
	adminService := services.NewAdminService(userRepo)
	tournamentService := services.NewTournamentService(dbConn, tournamentRepo, playerRepo, scoreRepo, golfClient, logger)
	syncService := services.NewSyncService(tournamentRepo, playerRepo, scoreRepo, golfClient, logger)
	scoringService := services.NewScoringService(leagueRepo, teamRepo, scoreRepo)
	leagueService := services.NewLeagueService(leagueRepo, teamRepo, tournamentRepo, uploader, logger)
	teamService := services.NewTeamService(teamRepo, leagueRepo, playerRepo, scoringService, logger)
	logger.Info("services initialized")

	// Планировщик: обновление статусов турниров и автосинхронизация
	// активных лидербордов.
	go func() {
		ticker := time.NewTicker(cfg.SyncInterval)
		defer ticker.Stop()
		logger.Info("scheduler started",
			slog.Duration("interval", cfg.SyncInterval),
			slog.Bool("auto_sync", cfg.EnableAutoSync))

		runScheduledTasks(context.Background(), cfg, tournamentService, syncService, logger)
		for range ticker.C {
			runScheduledTasks(context.Background(), cfg, tournamentService, syncService, logger)
		}
	}()

	// Инициализация обработчиков HTTP
	authenticator := middleware.NewAuthenticator(cfg.JWTSecretKey, userRepo, logger)
	authHandler := handlers.NewAuthHandler(authService, cfg.JWTSecretKey)
	adminHandler := handlers.NewAdminHandler(adminService)
	tournamentHandler := handlers.NewTournamentHandler(tournamentService, syncService)
	leagueHandler := handlers.NewLeagueHandler(leagueService, scoringService)
	teamHandler := handlers.NewTeamHandler(teamService)
	logger.Info("HTTP handlers initialized")

	// Настройка маршрутизатора
	router := chi.NewRouter()
	routes.SetupRoutes(router, authenticator, authHandler, adminHandler, tournamentHandler, leagueHandler, teamHandler)
	logger.Info("routes configured")

	// Настройка и запуск HTTP-сервера
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
	logger.Info("application exited")
}

func runScheduledTasks(ctx context.Context, cfg *config.Config, tournamentService *services.TournamentService, syncService *services.SyncService, logger *slog.Logger) {
	if updated, err := tournamentService.RefreshStatuses(ctx); err != nil {
		logger.Error("scheduler: tournament status refresh failed", slog.Any("error", err))
	} else if updated > 0 {
		logger.Info("scheduler: tournament statuses refreshed", slog.Int("updated", updated))
	}

	if cfg.EnableAutoSync {
		if err := syncService.SyncActiveTournaments(ctx); err != nil {
			logger.Error("scheduler: active tournament sync failed", slog.Any("error", err))
		}
	}
}
