// Package client は価格最適化バックエンドのREST APIへのアクセスをまとめたファサードです。
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"price-dashboard-api/pkg/models"
)

// APIClient はバックエンドの各エンドポイントに1つずつ呼び出し口を提供します。
// フィールドは生成後に変更されないため、複数のgoroutineから同時に使用できます。
type APIClient struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	logger     *log.Logger
}

// Option はAPIClientの設定を変更します。
type Option func(*APIClient)

// WithHTTPClient 使用するhttp.Clientを差し替えます。
func WithHTTPClient(hc *http.Client) Option {
	return func(c *APIClient) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout リクエスト全体のタイムアウトを設定します。
func WithTimeout(d time.Duration) Option {
	return func(c *APIClient) {
		c.timeout = d
	}
}

// WithLogger 失敗時の診断ログの出力先を設定します。
func WithLogger(l *log.Logger) Option {
	return func(c *APIClient) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewAPIClient 新しいAPIクライアントを作成
// baseURLの既定値はアプリケーションの組み立て側（configs）で決めます。
func NewAPIClient(baseURL string, opts ...Option) *APIClient {
	c := &APIClient{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     log.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 {
		// 呼び出し元から渡されたクライアントは書き換えない
		hc := *c.httpClient
		hc.Timeout = c.timeout
		c.httpClient = &hc
	}
	return c
}

// BaseURL は全リクエストの接頭辞として使われるURLを返します。
func (c *APIClient) BaseURL() string {
	return c.baseURL
}

// FetchProducts 商品一覧を取得
func (c *APIClient) FetchProducts(ctx context.Context) (models.Payload, error) {
	return c.get(ctx, ErrFetchProducts, "/api/products")
}

// FetchProduct 商品IDを指定して1件取得
func (c *APIClient) FetchProduct(ctx context.Context, productID string) (models.Payload, error) {
	path, err := c.productPath(ErrFetchProduct, "/api/products/", productID)
	if err != nil {
		return nil, err
	}
	return c.get(ctx, ErrFetchProduct, path)
}

// GetValidValues ドロップダウン用の有効値を取得
func (c *APIClient) GetValidValues(ctx context.Context) (models.Payload, error) {
	return c.get(ctx, ErrFetchValidValues, "/api/valid-values")
}

// OptimizePrice 価格最適化を実行
// dataはそのままJSONとして送信されます。
func (c *APIClient) OptimizePrice(ctx context.Context, data interface{}) (models.Payload, error) {
	return c.post(ctx, ErrOptimizePrice, "/api/optimize-price", data)
}

// SimulatePrice 価格シナリオをシミュレーション
func (c *APIClient) SimulatePrice(ctx context.Context, data interface{}) (models.Payload, error) {
	return c.post(ctx, ErrSimulatePrice, "/api/simulate", data)
}

// GetAnalyticsSummary 全体の分析サマリーを取得
func (c *APIClient) GetAnalyticsSummary(ctx context.Context) (models.Payload, error) {
	return c.get(ctx, ErrFetchAnalytics, "/api/analytics/summary")
}

// FetchProductStats 商品別の統計情報を取得
func (c *APIClient) FetchProductStats(ctx context.Context, productID string) (models.Payload, error) {
	path, err := c.productPath(ErrFetchProductStats, "/api/product-stats/", productID)
	if err != nil {
		return nil, err
	}
	return c.get(ctx, ErrFetchProductStats, path)
}

// CheckHealth バックエンドのヘルスチェック
func (c *APIClient) CheckHealth(ctx context.Context) (models.Payload, error) {
	return c.get(ctx, ErrHealthCheck, "/health")
}

// productPath 空のIDは一覧エンドポイントを指してしまうため、リクエスト前に弾きます。
func (c *APIClient) productPath(op error, prefix, productID string) (string, error) {
	if productID == "" {
		err := &RequestError{Op: op, Method: http.MethodGet, URL: c.baseURL + prefix, Err: errors.New("product id is empty")}
		c.logFailure(op, http.MethodGet, prefix, err.Err)
		return "", err
	}
	return prefix + url.PathEscape(productID), nil
}

func (c *APIClient) get(ctx context.Context, op error, path string) (models.Payload, error) {
	return c.doRequest(ctx, op, http.MethodGet, path, nil)
}

func (c *APIClient) post(ctx context.Context, op error, path string, data interface{}) (models.Payload, error) {
	requestBody, err := json.Marshal(data)
	if err != nil {
		err = fmt.Errorf("リクエストのJSON化に失敗: %w", err)
		c.logFailure(op, http.MethodPost, path, err)
		return nil, &RequestError{Op: op, Method: http.MethodPost, URL: c.baseURL + path, Err: err}
	}
	return c.doRequest(ctx, op, http.MethodPost, path, requestBody)
}

// doRequest はリクエストの実行、ステータス確認、JSONデコードを行う共通メソッドです。
// 失敗時は診断ログを1行出力し、同じエラーを呼び出し元へ返します。
func (c *APIClient) doRequest(ctx context.Context, op error, method, path string, requestBody []byte) (models.Payload, error) {
	fullURL := c.baseURL + path
	fail := func(status int, err error) (models.Payload, error) {
		c.logFailure(op, method, path, err)
		return nil, &RequestError{Op: op, Method: method, URL: fullURL, StatusCode: status, Err: err}
	}

	var body io.Reader
	if requestBody != nil {
		body = bytes.NewReader(requestBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return fail(0, fmt.Errorf("HTTPリクエストの作成に失敗: %w", err))
	}
	if requestBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fail(0, fmt.Errorf("HTTPリクエストの実行に失敗: %w", err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fail(resp.StatusCode, fmt.Errorf("レスポンスの読み取りに失敗: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fail(resp.StatusCode, fmt.Errorf("unexpected status code: %d", resp.StatusCode))
	}

	var payload models.Payload
	if err := json.Unmarshal(respBody, &payload); err != nil {
		return fail(resp.StatusCode, fmt.Errorf("レスポンスのJSON解析に失敗: %w", err))
	}

	return payload, nil
}

func (c *APIClient) logFailure(op error, method, path string, err error) {
	c.logger.Printf("❌ [API] %v (%s %s): %v", op, method, path, err)
}
