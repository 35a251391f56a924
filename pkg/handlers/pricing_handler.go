package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"price-dashboard-api/pkg/client"
	"price-dashboard-api/pkg/models"
	"price-dashboard-api/pkg/services"

	"github.com/gin-gonic/gin"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	healthTimeout   = 3 * time.Second

	// upstreamFallbackMessage は失敗した操作を特定できない場合にクライアントへ返す文言です。
	upstreamFallbackMessage = "upstream request failed"
)

// PriceAPI は価格最適化バックエンドへのアクセス手段です。client.APIClientが実装します。
type PriceAPI interface {
	FetchProducts(ctx context.Context) (models.Payload, error)
	FetchProduct(ctx context.Context, productID string) (models.Payload, error)
	FetchProductStats(ctx context.Context, productID string) (models.Payload, error)
	GetValidValues(ctx context.Context) (models.Payload, error)
	OptimizePrice(ctx context.Context, data interface{}) (models.Payload, error)
	SimulatePrice(ctx context.Context, data interface{}) (models.Payload, error)
	GetAnalyticsSummary(ctx context.Context) (models.Payload, error)
	CheckHealth(ctx context.Context) (models.Payload, error)
}

// PricingHandler 価格最適化ダッシュボード向けハンドラー
type PricingHandler struct {
	api           PriceAPI
	exportService *services.ExportService
}

// NewPricingHandler 新しい価格最適化ハンドラーを作成
func NewPricingHandler(api PriceAPI, exportService *services.ExportService) *PricingHandler {
	return &PricingHandler{
		api:           api,
		exportService: exportService,
	}
}

// GetProducts 商品一覧を取得
func (h *PricingHandler) GetProducts(c *gin.Context) {
	products, err := h.api.FetchProducts(c.Request.Context())
	if err != nil {
		respondUpstreamError(c, err)
		return
	}
	respondData(c, products)
}

// GetProduct 商品を1件取得
func (h *PricingHandler) GetProduct(c *gin.Context) {
	product, err := h.api.FetchProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondUpstreamError(c, err)
		return
	}
	respondData(c, product)
}

// GetProductStats 商品別の統計情報を取得
func (h *PricingHandler) GetProductStats(c *gin.Context) {
	stats, err := h.api.FetchProductStats(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondUpstreamError(c, err)
		return
	}
	respondData(c, stats)
}

// ExportProducts 商品一覧をxlsxまたはcsvでダウンロード
func (h *PricingHandler) ExportProducts(c *gin.Context) {
	format := c.DefaultQuery("format", "xlsx")
	if format != "xlsx" && format != "csv" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   fmt.Sprintf("無効な形式です: %s。'xlsx' または 'csv' を指定してください。", format),
		})
		return
	}

	payload, err := h.api.FetchProducts(c.Request.Context())
	if err != nil {
		respondUpstreamError(c, err)
		return
	}
	products, err := models.Decode[[]models.Product](payload)
	if err != nil {
		log.Printf("⚠️ [Export] 商品一覧の形式が想定と異なります: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "error": "商品一覧の形式が不正です"})
		return
	}

	if format == "csv" {
		var buf bytes.Buffer
		if err := h.exportService.ProductsToCSV(products, &buf); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "CSVの作成に失敗しました: " + err.Error()})
			return
		}
		c.Header("Content-Disposition", `attachment; filename="products.csv"`)
		c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
		return
	}

	buf, err := h.exportService.ProductsToXLSX(products)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Excelファイルの作成に失敗しました: " + err.Error()})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="products.xlsx"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// GetValidValues ドロップダウン用の有効値を取得
func (h *PricingHandler) GetValidValues(c *gin.Context) {
	values, err := h.api.GetValidValues(c.Request.Context())
	if err != nil {
		respondUpstreamError(c, err)
		return
	}
	respondData(c, values)
}

// OptimizePrice 価格最適化を実行
// リクエストボディは検証せずにそのままバックエンドへ転送します。
func (h *PricingHandler) OptimizePrice(c *gin.Context) {
	body, ok := bindOpaqueJSON(c)
	if !ok {
		return
	}
	result, err := h.api.OptimizePrice(c.Request.Context(), body)
	if err != nil {
		respondUpstreamError(c, err)
		return
	}
	respondData(c, result)
}

// ExportOptimization 価格最適化を実行し、需要曲線をxlsxでダウンロード
func (h *PricingHandler) ExportOptimization(c *gin.Context) {
	body, ok := bindOpaqueJSON(c)
	if !ok {
		return
	}
	result, err := h.api.OptimizePrice(c.Request.Context(), body)
	if err != nil {
		respondUpstreamError(c, err)
		return
	}
	resp, err := models.Decode[models.OptimizationResponse](result)
	if err != nil {
		log.Printf("⚠️ [Export] 最適化結果の形式が想定と異なります: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "error": "最適化結果の形式が不正です"})
		return
	}

	buf, err := h.exportService.DemandCurveToXLSX(resp)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Excelファイルの作成に失敗しました: " + err.Error()})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="price-optimization.xlsx"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// SimulatePrice 価格シナリオをシミュレーション
func (h *PricingHandler) SimulatePrice(c *gin.Context) {
	body, ok := bindOpaqueJSON(c)
	if !ok {
		return
	}
	result, err := h.api.SimulatePrice(c.Request.Context(), body)
	if err != nil {
		respondUpstreamError(c, err)
		return
	}
	respondData(c, result)
}

// GetAnalyticsSummary 分析サマリーを取得
func (h *PricingHandler) GetAnalyticsSummary(c *gin.Context) {
	summary, err := h.api.GetAnalyticsSummary(c.Request.Context())
	if err != nil {
		respondUpstreamError(c, err)
		return
	}
	respondData(c, summary)
}

// HealthCheck はロードバランサー向けのヘルスチェックです。
// バックエンドに到達できない場合や最適化の準備ができていない場合も、
// BFF自体は稼働しているため200でdegradedを返します。
func (h *PricingHandler) HealthCheck(c *gin.Context) {
	if isMaintenanceMode.Load() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "message": "Server is in maintenance mode"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	backend, err := h.api.CheckHealth(ctx)
	if err != nil {
		logUpstreamError(err)
		c.JSON(http.StatusOK, gin.H{
			"status":  "degraded",
			"backend": gin.H{"status": "unreachable", "error": publicUpstreamMessage(err)},
		})
		return
	}

	health, err := models.Decode[models.HealthStatus](backend)
	if err != nil {
		log.Printf("⚠️ [Health] バックエンドのヘルス応答の形式が想定と異なります: %v", err)
	}
	if err != nil || !health.OptimizationReady {
		c.JSON(http.StatusOK, gin.H{"status": "degraded", "backend": backend})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "backend": backend})
}

// bindOpaqueJSON リクエストボディを型を決めずにデコードします。
func bindOpaqueJSON(c *gin.Context) (models.Payload, bool) {
	var body models.Payload
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "リクエストの解析に失敗しました: " + err.Error(),
		})
		return nil, false
	}
	return body, true
}

func respondData(c *gin.Context, data models.Payload) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
	})
}

// respondUpstreamError バックエンドの失敗はステータスに関わらず502にまとめます。
// 詳細（URLや下位エラー）はログにのみ出力し、クライアントには操作名だけを返します。
func respondUpstreamError(c *gin.Context, err error) {
	logUpstreamError(err)
	c.JSON(http.StatusBadGateway, gin.H{
		"success": false,
		"error":   publicUpstreamMessage(err),
	})
}

func logUpstreamError(err error) {
	var reqErr *client.RequestError
	if errors.As(err, &reqErr) {
		log.Printf("❌ [Upstream] %s %s (status %d): %v", reqErr.Method, reqErr.URL, client.StatusCode(err), reqErr.Err)
		return
	}
	log.Printf("❌ [Upstream] %v", err)
}

// publicUpstreamMessage 失敗した操作のセンチネルの文言を返します。
func publicUpstreamMessage(err error) string {
	var reqErr *client.RequestError
	if errors.As(err, &reqErr) && reqErr.Op != nil {
		return reqErr.Op.Error()
	}
	return upstreamFallbackMessage
}
