package handlers

import (
	"fmt"
	"strings"

	config "price-dashboard-api/configs"
	"price-dashboard-api/pkg/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RouterDeps ルーターの組み立てに必要な依存関係
type RouterDeps struct {
	Config     *config.Config
	AppConfig  *config.AppConfig
	API        PriceAPI
	Monitoring *services.MonitoringService
	Export     *services.ExportService
}

// NewRouter BFFのGinルーターを組み立てます。cmd/serverとapi/index.goの両方から使用します。
// CORS_ALLOWED_ORIGINSに不正なオリジンが含まれる場合はエラーを返します。
func NewRouter(deps RouterDeps) (*gin.Engine, error) {
	if err := validateOrigins(deps.Config.AllowedOrigins); err != nil {
		return nil, err
	}

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	if deps.Monitoring == nil {
		deps.Monitoring = services.NewMonitoringService()
	}
	if deps.Export == nil {
		deps.Export = services.NewExportService()
	}

	// ハンドラーの初期化
	pricingHandler := NewPricingHandler(deps.API, deps.Export)
	adminHandler := NewAdminHandler(deps.Config)
	monitoringHandler := NewMonitoringHandler(deps.Monitoring)
	appConfigHandler := NewAppConfigHandler(deps.AppConfig)

	// ミドルウェアの登録
	r.Use(deps.Monitoring.LoggingMiddleware())
	r.Use(cors.New(corsConfig(deps.Config.AllowedOrigins)))

	// ヘルスチェックエンドポイント
	r.GET("/health", pricingHandler.HealthCheck)

	v1 := r.Group("/api/v1")
	v1.Use(APIKeyAuth(deps.Config.APIKey))
	{
		// 管理者向けAPI
		admin := v1.Group("/admin")
		{
			admin.GET("/health-status", adminHandler.GetHealthStatus)
			admin.POST("/maintenance/start", adminHandler.StartMaintenance)
			admin.POST("/maintenance/stop", adminHandler.StopMaintenance)
		}

		// モニタリングAPI
		monitoring := v1.Group("/monitoring")
		{
			monitoring.GET("/logs", monitoringHandler.GetLogs)
		}

		v1.GET("/app-config", appConfigHandler.GetAppConfig)

		// 価格最適化API（バックエンドへの中継）
		pricing := v1.Group("", MaintenanceGuard())
		{
			pricing.GET("/products", pricingHandler.GetProducts)
			pricing.GET("/products/export", pricingHandler.ExportProducts)
			pricing.GET("/products/:id", pricingHandler.GetProduct)
			pricing.GET("/products/:id/stats", pricingHandler.GetProductStats)
			pricing.GET("/valid-values", pricingHandler.GetValidValues)
			pricing.POST("/optimize-price", pricingHandler.OptimizePrice)
			pricing.POST("/optimize-price/export", pricingHandler.ExportOptimization)
			pricing.POST("/simulate", pricingHandler.SimulatePrice)
			pricing.GET("/analytics/summary", pricingHandler.GetAnalyticsSummary)
		}
	}

	return r, nil
}

// validateOrigins cors.Newがpanicする前に許可オリジンの形式を確認します。
func validateOrigins(origins []string) error {
	for _, origin := range origins {
		if origin == "*" || strings.HasPrefix(origin, "http://") || strings.HasPrefix(origin, "https://") {
			continue
		}
		return fmt.Errorf("invalid CORS origin %q: must be \"*\" or start with http:// or https://", origin)
	}
	return nil
}

// corsConfig 許可オリジンが未設定の場合はすべて許可
func corsConfig(allowedOrigins []string) cors.Config {
	cfg := cors.DefaultConfig()
	if len(allowedOrigins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = allowedOrigins
	}
	cfg.AllowHeaders = append(cfg.AllowHeaders, "X-API-KEY", services.RequestIDHeader)
	cfg.ExposeHeaders = []string{services.RequestIDHeader, "Content-Disposition"}
	return cfg
}
