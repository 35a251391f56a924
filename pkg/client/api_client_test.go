package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"price-dashboard-api/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// operation はテーブルテスト用に各操作を同じ形で呼び出すためのものです。
type operation struct {
	name     string
	method   string
	path     string
	sentinel error
	call     func(ctx context.Context, c *APIClient) (models.Payload, error)
}

var optimizeInput = map[string]interface{}{
	"product_id":    "NES001",
	"product_name":  "NESTLE NESQUIK 330GR(C) BOX",
	"category":      "Breakfast Cereals",
	"emirate":       "Dubai",
	"store_type":    "Hypermarket",
	"current_price": 57.35,
	"month":         float64(6),
	"day_of_week":   float64(2),
	"day_of_month":  float64(15),
}

var simulateInput = map[string]interface{}{
	"product_name": "NESCAFE LATTE 240ML TIN",
	"category":     "Hot Beverages",
	"emirate":      "Sharjah",
	"store_type":   "Supermarket",
	"price":        29.9,
}

func allOperations() []operation {
	return []operation{
		{"FetchProducts", http.MethodGet, "/api/products", ErrFetchProducts,
			func(ctx context.Context, c *APIClient) (models.Payload, error) { return c.FetchProducts(ctx) }},
		{"FetchProduct", http.MethodGet, "/api/products/NES001", ErrFetchProduct,
			func(ctx context.Context, c *APIClient) (models.Payload, error) { return c.FetchProduct(ctx, "NES001") }},
		{"GetValidValues", http.MethodGet, "/api/valid-values", ErrFetchValidValues,
			func(ctx context.Context, c *APIClient) (models.Payload, error) { return c.GetValidValues(ctx) }},
		{"OptimizePrice", http.MethodPost, "/api/optimize-price", ErrOptimizePrice,
			func(ctx context.Context, c *APIClient) (models.Payload, error) { return c.OptimizePrice(ctx, optimizeInput) }},
		{"SimulatePrice", http.MethodPost, "/api/simulate", ErrSimulatePrice,
			func(ctx context.Context, c *APIClient) (models.Payload, error) { return c.SimulatePrice(ctx, simulateInput) }},
		{"GetAnalyticsSummary", http.MethodGet, "/api/analytics/summary", ErrFetchAnalytics,
			func(ctx context.Context, c *APIClient) (models.Payload, error) { return c.GetAnalyticsSummary(ctx) }},
		{"FetchProductStats", http.MethodGet, "/api/product-stats/NES001", ErrFetchProductStats,
			func(ctx context.Context, c *APIClient) (models.Payload, error) { return c.FetchProductStats(ctx, "NES001") }},
		{"CheckHealth", http.MethodGet, "/health", ErrHealthCheck,
			func(ctx context.Context, c *APIClient) (models.Payload, error) { return c.CheckHealth(ctx) }},
	}
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*APIClient, *bytes.Buffer) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	var logBuf bytes.Buffer
	return NewAPIClient(server.URL, WithLogger(log.New(&logBuf, "", 0))), &logBuf
}

func TestOperationsReturnDecodedBody(t *testing.T) {
	const body = `{"items":[{"id":"NES001","current_price":57.35,"cost":null}],"count":1,"ok":true}`
	expected := map[string]interface{}{
		"items": []interface{}{
			map[string]interface{}{"id": "NES001", "current_price": 57.35, "cost": nil},
		},
		"count": float64(1),
		"ok":    true,
	}

	for _, op := range allOperations() {
		t.Run(op.name, func(t *testing.T) {
			var gotMethod, gotPath string
			c, logBuf := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				gotMethod, gotPath = r.Method, r.URL.Path
				w.Header().Set("Content-Type", "application/json")
				io.WriteString(w, body)
			})

			result, err := op.call(context.Background(), c)
			require.NoError(t, err)
			assert.Equal(t, expected, result)
			assert.Equal(t, op.method, gotMethod)
			assert.Equal(t, op.path, gotPath)
			assert.Empty(t, logBuf.String())
		})
	}
}

func TestOperationsFailOnErrorStatus(t *testing.T) {
	for _, status := range []int{http.StatusNotFound, http.StatusInternalServerError} {
		for _, op := range allOperations() {
			t.Run(op.name+"/"+http.StatusText(status), func(t *testing.T) {
				c, logBuf := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(status)
					io.WriteString(w, `{"detail":"Product not found"}`)
				})

				result, err := op.call(context.Background(), c)
				require.Error(t, err)
				assert.Nil(t, result)
				assert.True(t, errors.Is(err, op.sentinel), "expected %v, got %v", op.sentinel, err)
				assert.Equal(t, status, StatusCode(err))

				lines := strings.Split(strings.TrimSpace(logBuf.String()), "\n")
				require.Len(t, lines, 1)
				assert.Contains(t, lines[0], op.sentinel.Error())
				assert.Contains(t, lines[0], op.path)
			})
		}
	}
}

func TestOperationsFailOnMalformedJSON(t *testing.T) {
	for _, op := range allOperations() {
		t.Run(op.name, func(t *testing.T) {
			c, logBuf := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				io.WriteString(w, "<html>Bad Gateway</html>")
			})

			result, err := op.call(context.Background(), c)
			require.Error(t, err)
			assert.Nil(t, result)
			assert.ErrorIs(t, err, op.sentinel)
			assert.Equal(t, http.StatusOK, StatusCode(err))
			assert.Equal(t, 1, strings.Count(logBuf.String(), "\n"))
		})
	}
}

func TestEmptyBodyIsDecodeFailure(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	_, err := c.GetValidValues(context.Background())
	assert.ErrorIs(t, err, ErrFetchValidValues)
}

func TestTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	baseURL := server.URL
	server.Close()

	var logBuf bytes.Buffer
	c := NewAPIClient(baseURL, WithLogger(log.New(&logBuf, "", 0)))

	_, err := c.FetchProducts(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFetchProducts)
	assert.Equal(t, 0, StatusCode(err))
	assert.Contains(t, logBuf.String(), "/api/products")
}

func TestBaseURLComposition(t *testing.T) {
	var gotURL string
	transport := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		gotURL = r.URL.String()
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(`{"id":"42"}`)),
			Header:     make(http.Header),
			Request:    r,
		}, nil
	})

	c := NewAPIClient("https://api.example.com", WithHTTPClient(&http.Client{Transport: transport}))
	_, err := c.FetchProduct(context.Background(), "42")
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com/api/products/42", gotURL)

	c = NewAPIClient("https://api.example.com/", WithHTTPClient(&http.Client{Transport: transport}))
	_, err = c.FetchProduct(context.Background(), "42")
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com/api/products/42", gotURL)
	assert.Equal(t, "https://api.example.com", c.BaseURL())
}

func TestFetchProductEscapesID(t *testing.T) {
	var gotRawPath string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotRawPath = r.URL.EscapedPath()
		io.WriteString(w, `{}`)
	})

	_, err := c.FetchProduct(context.Background(), "a/b c")
	require.NoError(t, err)
	assert.Equal(t, "/api/products/a%2Fb%20c", gotRawPath)
}

func TestEmptyProductIDIsRejected(t *testing.T) {
	called := false
	c, logBuf := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
		io.WriteString(w, `[]`)
	})

	_, err := c.FetchProduct(context.Background(), "")
	assert.ErrorIs(t, err, ErrFetchProduct)
	_, err = c.FetchProductStats(context.Background(), "")
	assert.ErrorIs(t, err, ErrFetchProductStats)
	assert.False(t, called)
	assert.Equal(t, 2, strings.Count(logBuf.String(), "\n"))
}

func TestPostSendsJSONBody(t *testing.T) {
	type captured struct {
		contentType string
		body        []byte
	}

	for _, op := range allOperations() {
		if op.method != http.MethodPost {
			continue
		}
		t.Run(op.name, func(t *testing.T) {
			var got captured
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				got.contentType = r.Header.Get("Content-Type")
				got.body, _ = io.ReadAll(r.Body)
				io.WriteString(w, `{"ok":true}`)
			})

			_, err := op.call(context.Background(), c)
			require.NoError(t, err)
			assert.Equal(t, "application/json", got.contentType)

			var input interface{} = optimizeInput
			if op.sentinel == ErrSimulatePrice {
				input = simulateInput
			}
			expected, err := json.Marshal(input)
			require.NoError(t, err)
			assert.JSONEq(t, string(expected), string(got.body))
		})
	}
}

func TestPostWithTypedRequest(t *testing.T) {
	maxPrice := 70.0
	req := models.PriceOptimizationRequest{
		ProductID:    "NES001",
		ProductName:  "NESTLE NESQUIK 330GR(C) BOX",
		CurrentPrice: 57.35,
		Month:        6,
		MaxPrice:     &maxPrice,
	}

	var gotBody []byte
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		io.WriteString(w, `{"recommendation":{"recommended_price":61.2}}`)
	})

	result, err := c.OptimizePrice(context.Background(), req)
	require.NoError(t, err)

	expected, _ := json.Marshal(req)
	assert.JSONEq(t, string(expected), string(gotBody))

	resp, err := models.Decode[models.OptimizationResponse](result)
	require.NoError(t, err)
	assert.Equal(t, 61.2, resp.Recommendation.RecommendedPrice)
}

func TestGetRequestsHaveNoBody(t *testing.T) {
	var contentType string
	var length int64
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		length = r.ContentLength
		io.WriteString(w, `[]`)
	})

	_, err := c.FetchProducts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, contentType)
	assert.Equal(t, int64(0), length)
}

func TestConcurrentOperationsAreIndependent(t *testing.T) {
	c, logBuf := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/products":
			time.Sleep(20 * time.Millisecond)
			io.WriteString(w, `[{"id":"NES001"}]`)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	})

	var wg sync.WaitGroup
	var products models.Payload
	var productsErr, analyticsErr error

	wg.Add(2)
	go func() {
		defer wg.Done()
		products, productsErr = c.FetchProducts(context.Background())
	}()
	go func() {
		defer wg.Done()
		_, analyticsErr = c.GetAnalyticsSummary(context.Background())
	}()
	wg.Wait()

	require.NoError(t, productsErr)
	assert.Equal(t, []interface{}{map[string]interface{}{"id": "NES001"}}, products)
	assert.ErrorIs(t, analyticsErr, ErrFetchAnalytics)
	assert.NotErrorIs(t, analyticsErr, ErrFetchProducts)
	assert.Equal(t, 1, strings.Count(logBuf.String(), "\n"))
}

func TestContextCancellation(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.GetValidValues(ctx)
	assert.ErrorIs(t, err, ErrFetchValidValues)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWithTimeoutDoesNotMutateCallerClient(t *testing.T) {
	shared := &http.Client{}
	c := NewAPIClient("http://localhost:8000", WithHTTPClient(shared), WithTimeout(5*time.Second))

	assert.Equal(t, time.Duration(0), shared.Timeout)
	assert.Equal(t, 5*time.Second, c.httpClient.Timeout)
}

func TestRequestErrorMessage(t *testing.T) {
	err := &RequestError{Op: ErrSimulatePrice, Method: http.MethodPost, URL: "http://x/api/simulate", StatusCode: 500, Err: errors.New("unexpected status code: 500")}
	assert.Equal(t, "failed to simulate price: unexpected status code: 500", err.Error())

	var reqErr *RequestError
	wrapped := errors.Join(errors.New("context"), err)
	require.True(t, errors.As(wrapped, &reqErr))
	assert.Equal(t, "http://x/api/simulate", reqErr.URL)
	assert.Equal(t, 0, StatusCode(errors.New("plain")))
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }
