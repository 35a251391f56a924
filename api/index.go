package handler

import (
	"log"
	"net/http"
	"sync"

	config "price-dashboard-api/configs"
	"price-dashboard-api/pkg/client"
	"price-dashboard-api/pkg/handlers"

	"github.com/gin-gonic/gin"
)

var (
	app  *gin.Engine
	once sync.Once
)

// setupApp はGinアプリケーションを初期化します。
// サーバーレス環境では、リクエストごとに初期化が走らないようsync.Onceで一度だけ実行します。
func setupApp() *gin.Engine {
	once.Do(func() {
		// .envファイルはVercelの環境変数設定から読み込まれるため、ここではgodotenvを呼び出しません。
		cfg := config.LoadConfig()

		appCfg, err := config.LoadAppConfig(config.DefaultAppConfigPath, cfg)
		if err != nil {
			log.Printf("⚠️ [setupApp] ダッシュボード設定を読み込めないため既定値を使用します: %v", err)
			appCfg = config.DefaultAppConfig(cfg)
		}

		apiClient := client.NewAPIClient(cfg.APIBaseURL, client.WithTimeout(cfg.RequestTimeout))
		r, err := handlers.NewRouter(handlers.RouterDeps{
			Config:    cfg,
			AppConfig: appCfg,
			API:       apiClient,
		})
		if err != nil {
			log.Fatalf("❌ [setupApp] ルーターの初期化に失敗しました: %v", err)
		}
		app = r
		log.Printf("🟢 [setupApp] Initialized (backend: %s)", apiClient.BaseURL())
	})
	return app
}

// Handler はVercelからのすべてのリクエストを処理するエントリーポイントです。
func Handler(w http.ResponseWriter, r *http.Request) {
	setupApp().ServeHTTP(w, r)
}
