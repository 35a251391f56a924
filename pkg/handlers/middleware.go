package handlers

import (
	"crypto/subtle"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// APIKeyAuth はX-API-KEYヘッダーを検証する認証ミドルウェアです。
// apiKeyが空の場合は認証を行いません。
func APIKeyAuth(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiKey == "" {
			c.Next()
			return
		}
		providedKey := c.GetHeader("X-API-KEY")
		if subtle.ConstantTimeCompare([]byte(providedKey), []byte(apiKey)) != 1 {
			log.Printf("❌ [認証] 無効なAPI Key: %s %s", c.Request.Method, c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Next()
	}
}

// MaintenanceGuard メンテナンス中はAPIへのアクセスを503で拒否します。
func MaintenanceGuard() gin.HandlerFunc {
	return func(c *gin.Context) {
		if isMaintenanceMode.Load() {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
				"success": false,
				"error":   "Server is in maintenance mode",
			})
			return
		}
		c.Next()
	}
}
