package client

import (
	"errors"
	"fmt"
)

// 操作ごとのエラー種別。ステータスコードによる区別は行わず、
// 非2xx・通信エラー・JSON解析エラーはすべて同じ種別として扱います。
var (
	ErrFetchProducts     = errors.New("failed to fetch products")
	ErrFetchProduct      = errors.New("failed to fetch product")
	ErrFetchValidValues  = errors.New("failed to fetch valid values")
	ErrOptimizePrice     = errors.New("failed to optimize price")
	ErrSimulatePrice     = errors.New("failed to simulate price")
	ErrFetchAnalytics    = errors.New("failed to fetch analytics")
	ErrFetchProductStats = errors.New("failed to fetch product stats")
	ErrHealthCheck       = errors.New("backend health check failed")
)

// RequestError はファサードの各操作が返すエラーです。
// errors.Is で操作の種別（Op）と原因（Err）の両方を判定できます。
type RequestError struct {
	Op         error
	Method     string
	URL        string
	StatusCode int // レスポンスを受け取れなかった場合は0
	Err        error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%v: %v", e.Op, e.Err)
}

func (e *RequestError) Unwrap() []error {
	return []error{e.Op, e.Err}
}

// StatusCode はエラーに含まれるHTTPステータスを返します。見つからなければ0を返します。
func StatusCode(err error) int {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.StatusCode
	}
	return 0
}
