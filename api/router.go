package api

import (
	"net/http"
	"time"

	"checkmaster/config"
	"checkmaster/database"
	"checkmaster/middleware"
	"checkmaster/models"
	"checkmaster/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	redis "github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Services зависимости HTTP слоя
type Services struct {
	Catalog     *models.Catalog
	Templates   *services.TemplateService
	Inspections *services.InspectionService
	Companies   *services.CompanyService
	Editor      *services.TemplateEditorService
	Executor    *services.ExecutorService
	Finance     *services.FinanceService
	Export      *services.ExportService
	Dashboard   *services.DashboardService
}

// RouterOptions настройки маршрутизатора
type RouterOptions struct {
	Config *config.Config
	DB     *gorm.DB      // проверяется в /health, может быть nil
	Redis  *redis.Client // счетчики rate limit; nil - в памяти
	Logger *zap.Logger
}

// corsConfig строит настройки CORS из конфигурации
func corsConfig(cfg config.CORSConfig) cors.Config {
	c := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) == 0 || (len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*") {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = cfg.AllowedOrigins
		c.AllowCredentials = cfg.AllowCredentials
	}
	if len(cfg.AllowedMethods) > 0 {
		c.AllowMethods = cfg.AllowedMethods
	}
	if len(cfg.AllowedHeaders) > 0 {
		c.AllowHeaders = cfg.AllowedHeaders
	}
	if cfg.MaxAge > 0 {
		c.MaxAge = time.Duration(cfg.MaxAge) * time.Second
	}
	return c
}

// NewRouter регистрирует все маршруты приложения
func NewRouter(svc Services, opts RouterOptions) *gin.Engine {
	cfg := opts.Config
	if cfg == nil {
		cfg = &config.Config{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(logger))
	r.Use(cors.New(corsConfig(cfg.CORS)))

	// Тестовый маршрут для проверки работы сервера
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "success",
			"message": "pong",
		})
	})

	r.GET("/health", healthHandler(opts.DB, opts.Redis))

	var scanLimiter gin.HandlerFunc
	if cfg.Security.ScanRateLimitRequests > 0 {
		scanLimiter = middleware.ScanRateLimit(
			cfg.Security.ScanRateLimitRequests,
			cfg.Security.ScanRateLimitWindow,
			opts.Redis,
			cfg.Storage.KeyPrefix,
			logger,
		)
	}

	apiGroup := r.Group("/api")
	NewCatalogAPI(svc.Catalog).RegisterCatalogRoutes(apiGroup)
	NewCompaniesAPI(svc.Companies).RegisterCompaniesRoutes(apiGroup)
	NewTemplatesAPI(svc.Templates).RegisterTemplatesRoutes(apiGroup)
	NewTemplateDraftsAPI(svc.Editor).RegisterTemplateDraftsRoutes(apiGroup)
	NewExecutionsAPI(svc.Executor, cfg.Security.MaxUploadSize, scanLimiter).RegisterExecutionsRoutes(apiGroup)
	NewInspectionsAPI(svc.Inspections).RegisterInspectionsRoutes(apiGroup)
	NewFinanceAPI(svc.Finance, svc.Export).RegisterFinanceRoutes(apiGroup)
	NewDashboardAPI(svc.Dashboard).RegisterDashboardRoutes(apiGroup)

	return r
}

// healthHandler проверяет доступность БД и Redis
func healthHandler(db *gorm.DB, client *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		checks := gin.H{}
		healthy := true

		if db != nil {
			if err := database.Ping(db); err != nil {
				checks["database"] = err.Error()
				healthy = false
			} else {
				checks["database"] = "ok"
			}
		}
		if client != nil {
			if err := client.Ping(c.Request.Context()).Err(); err != nil {
				checks["redis"] = err.Error()
				healthy = false
			} else {
				checks["redis"] = "ok"
			}
		}

		if !healthy {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "checks": checks})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "success", "checks": checks})
	}
}
