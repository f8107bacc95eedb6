package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"checkmaster/api"
	"checkmaster/config"
	"checkmaster/database"
	"checkmaster/models"
	"checkmaster/services"

	"github.com/gin-gonic/gin"
	redis "github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("❌ Ошибка загрузки конфигурации:", err)
	}

	logger, err := config.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatal("❌ Ошибка настройки логирования:", err)
	}
	defer func() { _ = logger.Sync() }()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	logger.Info("🔧 Инициализация базы данных...", zap.String("driver", cfg.Database.Driver))
	db, err := database.Connect(cfg, logger)
	if err != nil {
		logger.Fatal("❌ Ошибка подключения к базе данных", zap.Error(err))
	}
	defer database.Close(db)

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		if err := database.InitRedis(cfg.Redis, logger); err != nil {
			if cfg.Storage.Backend == "redis" {
				logger.Fatal("❌ Redis недоступен", zap.Error(err))
			}
			logger.Warn("⚠️  Redis недоступен, rate limit в памяти процесса", zap.Error(err))
		} else {
			redisClient = database.GetRedis()
			defer redisClient.Close()
		}
	}

	store, err := database.NewStore(cfg, db)
	if err != nil {
		logger.Fatal("❌ Ошибка инициализации хранилища", zap.Error(err))
	}
	logger.Info("✅ Хранилище готово", zap.String("backend", cfg.Storage.Backend))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var extractor services.VehicleExtractor = services.UnavailableExtractor{}
	if cfg.ExtractionEnabled() {
		gemini, err := services.NewGeminiExtractor(ctx, cfg.Gemini, logger)
		if err != nil {
			logger.Warn("⚠️  Распознавание изображений отключено", zap.Error(err))
		} else {
			extractor = gemini
			logger.Info("✅ Распознавание изображений включено", zap.String("model", cfg.Gemini.Model))
		}
	} else {
		logger.Warn("⚠️  GEMINI_API_KEY не задан, распознавание изображений отключено")
	}

	catalog := models.DefaultCatalog()
	templates := services.NewTemplateService(store, logger)
	inspections := services.NewInspectionService(store, logger)
	companies := services.NewCompanyService(store, logger)
	editor := services.NewTemplateEditorService(templates, companies, catalog, logger)
	executor := services.NewExecutorService(templates, inspections, companies, extractor, catalog, logger)
	finance := services.NewFinanceService(inspections, logger)
	export := services.NewExportService(finance, cfg.Export.Title, logger)
	dashboard := services.NewDashboardService(inspections, templates)

	var notifier services.Notifier
	if cfg.Digest.Enabled {
		telegram, err := services.NewTelegramNotifier(cfg.Digest.TelegramBotToken, cfg.Digest.TelegramChatID, logger)
		if err != nil {
			logger.Warn("⚠️  Telegram недоступен, сводка отключена", zap.Error(err))
		} else {
			notifier = telegram
		}
	}

	scheduler := services.NewSchedulerService(finance, export, editor, executor, notifier, logger)
	if err := scheduler.Start(cfg.Digest.Schedule); err != nil {
		logger.Fatal("❌ Ошибка запуска планировщика", zap.Error(err))
	}

	router := api.NewRouter(api.Services{
		Catalog:     catalog,
		Templates:   templates,
		Inspections: inspections,
		Companies:   companies,
		Editor:      editor,
		Executor:    executor,
		Finance:     finance,
		Export:      export,
		Dashboard:   dashboard,
	}, api.RouterOptions{
		Config: cfg,
		DB:     db,
		Redis:  redisClient,
		Logger: logger,
	})

	srv := &http.Server{
		Addr:    cfg.App.Host + ":" + cfg.App.Port,
		Handler: router,
	}

	go func() {
		logger.Info("🚀 Сервер запущен", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("❌ Ошибка сервера", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("🛑 Остановка сервера...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Ошибка остановки сервера", zap.Error(err))
	}
	scheduler.Stop()
	executor.Shutdown()
	logger.Info("✅ Сервер остановлен")
}
