package handlers

import (
	"net/http"

	config "price-dashboard-api/configs"

	"github.com/gin-gonic/gin"
)

// AppConfigHandler ダッシュボードの表示設定を返します。
type AppConfigHandler struct {
	appConfig *config.AppConfig
}

// NewAppConfigHandler 新しいAppConfigHandlerを作成
func NewAppConfigHandler(appConfig *config.AppConfig) *AppConfigHandler {
	return &AppConfigHandler{appConfig: appConfig}
}

// GetAppConfig タイトル・テーマ・APIのベースURLを返す
func (h *AppConfigHandler) GetAppConfig(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    h.appConfig,
	})
}
