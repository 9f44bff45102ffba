package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sevlyar/go-daemon"

	"telegram-dialog-insights/internal/adapters/parser"
	"telegram-dialog-insights/internal/adapters/source"
	"telegram-dialog-insights/internal/analytics"
	"telegram-dialog-insights/internal/cache"
	"telegram-dialog-insights/internal/core/services"
	"telegram-dialog-insights/internal/log"
	"telegram-dialog-insights/internal/pkg/config"
	"telegram-dialog-insights/internal/ports"
	"telegram-dialog-insights/internal/server"
	"telegram-dialog-insights/internal/server/usecase"
	"telegram-dialog-insights/internal/storage"
	"telegram-dialog-insights/internal/store"
	"telegram-dialog-insights/internal/telegram/router"
)

var daemonMode = flag.Bool("daemon", false, "запустить сервер в фоновом режиме")

func main() {
	flag.Parse()

	if *daemonMode {
		dctx := &daemon.Context{
			PidFileName: "server.pid",
			PidFilePerm: 0644,
			LogFileName: "server.log",
			LogFilePerm: 0640,
			WorkDir:     "./",
		}

		child, err := dctx.Reborn()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to daemonize: %v\n", err)
			os.Exit(1)
		}
		if child != nil {
			// Родительский процесс завершается, работа продолжается в потомке.
			return
		}
		defer dctx.Release()
	}

	if err := run(); err != nil {
		slog.Error("application run failed", "error", err)
		os.Exit(1)
	}
}

// run инкапсулирует всю логику инициализации и запуска приложения.
func run() error {
	// 1. Загрузка и валидация конфигурации
	cfg, err := config.LoadConfig()
	if err != nil {
		// Логгер еще не инициализирован, выводим в stderr
		_, _ = fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. Инициализация логгера с маскировкой токенов
	var level slog.Level
	switch cfg.Logging.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	logger := log.NewMaskedLogger(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	// 3. Валидация конфигурации (после инициализации логгера)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	// 4. Инициализация источника данных и фоновых сервисов
	appCtx, appCancel := context.WithCancel(context.Background())
	defer appCancel()

	var dialogSource ports.DialogSource
	var tgRouter ports.Router

	switch cfg.Source.Type {
	case config.SourceTypeTelegram:
		r, err := router.NewRouter(appCtx,
			router.WithServerConfigs(cfg.GetTelegramServers()),
			router.WithHealthCheckInterval(time.Duration(cfg.TelegramAPI.HealthCheckIntervalSeconds)*time.Second),
		)
		if err != nil {
			return fmt.Errorf("failed to create telegram router: %w", err)
		}
		tgRouter = r
		dialogSource = source.NewTelegramSource(r)
	case config.SourceTypeAPI:
		dialogSource = source.NewAPISource(cfg.Source.BaseURL, cfg.Source.Token)
	case config.SourceTypeFile:
		dialogSource = source.NewFileSource(cfg.Source.DialogsPath, cfg.Source.FoldersPath)
	}

	// 5. Инициализация зависимостей
	taskStore := server.NewTaskStore()
	cacheStore := cache.NewCacheStore()
	parserSvc := parser.NewJsonParser()
	normalizer := services.NewNormalizationService(services.NewFolderService())
	registry := store.NewRegistry(normalizer)
	engine := analytics.NewEngine()

	reportStore, err := storage.NewReportStore(cfg.Storage.Path)
	if err != nil {
		return fmt.Errorf("failed to open report storage: %w", err)
	}
	defer reportStore.Close()

	refresher := usecase.NewRefreshAccountUseCase(cfg, dialogSource, parserSvc, registry, engine, cacheStore, reportStore)

	// 6. Создание HTTP-сервера
	srv, err := server.New(cfg, refresher, taskStore, cacheStore)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	srv.StartCleanupTickers(appCtx)

	// 7. Запуск сервера и graceful shutdown
	serverDone := make(chan struct{})
	go func() {
		defer close(serverDone)
		slog.Info("Starting server", "addr", cfg.Address(), "source", cfg.Source.Type)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Signal received, shutting down...")

	// Сначала отменяем контекст приложения, чтобы остановить фоновые процессы
	appCancel()
	slog.Info("Application context canceled, waiting for background services to stop...")

	// Затем останавливаем HTTP-сервер
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.Server.ShutdownTimeoutSeconds)*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	<-serverDone
	slog.Info("HTTP server stopped")

	// В конце останавливаем роутер (его health-check тикер)
	if tgRouter != nil {
		tgRouter.Stop()
	}

	slog.Info("Application exited gracefully")
	return nil
}
