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

	config "price-dashboard-api/configs"
	"price-dashboard-api/pkg/client"
	"price-dashboard-api/pkg/handlers"
	"price-dashboard-api/pkg/services"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// .envファイルを読み込み
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or could not be loaded: %v", err)
	}

	// 設定の読み込み
	cfg := config.LoadConfig()
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r, err := setupRouter(cfg)
	if err != nil {
		log.Fatalf("FATAL: %v", err)
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		log.Printf("Starting price dashboard API on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server:", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
}

// setupRouter 設定からAPIクライアントとサービスを組み立ててルーターを返す
func setupRouter(cfg *config.Config) (*gin.Engine, error) {
	appCfg, err := config.LoadAppConfig(getAppConfigPath(), cfg)
	if err != nil {
		return nil, err
	}

	// サービスの初期化
	apiClient := client.NewAPIClient(cfg.APIBaseURL, client.WithTimeout(cfg.RequestTimeout))

	r, err := handlers.NewRouter(handlers.RouterDeps{
		Config:     cfg,
		AppConfig:  appCfg,
		API:        apiClient,
		Monitoring: services.NewMonitoringService(),
		Export:     services.NewExportService(),
	})
	if err != nil {
		return nil, err
	}
	log.Printf("🔗 [Setup] Backend: %s", apiClient.BaseURL())
	return r, nil
}

func getAppConfigPath() string {
	if path := os.Getenv("APP_CONFIG_PATH"); path != "" {
		return path
	}
	return config.DefaultAppConfigPath
}
