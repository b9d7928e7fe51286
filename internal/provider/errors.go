package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// ErrGenerationUnavailable 故事生成器的终态错误。
// 本地模板兜底存在时实际上不可达，保留类型以便调用方识别。
var ErrGenerationUnavailable = errors.New("story generation unavailable")

// TransientError 网络/超时类失败，在重试预算内重试后沿链降级
type TransientError struct {
	Provider string
	Err      error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("provider %s transient failure: %v", e.Provider, e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// AuthQuotaError 凭证无效或配额耗尽，不重试，且本次运行内不再尝试该provider
type AuthQuotaError struct {
	Provider string
	Err      error
}

func (e *AuthQuotaError) Error() string {
	return fmt.Sprintf("provider %s auth/quota failure: %v", e.Provider, e.Err)
}

func (e *AuthQuotaError) Unwrap() error { return e.Err }

// ValidationError provider返回了畸形响应，降级处理等同于瞬时失败
type ValidationError struct {
	Provider string
	Err      error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("provider %s malformed response: %v", e.Provider, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// ClassifyHTTP 按HTTP状态码归类provider错误
func ClassifyHTTP(name string, status int, body string) error {
	err := fmt.Errorf("http %d: %s", status, truncate(body, 200))
	switch {
	case status == http.StatusUnauthorized,
		status == http.StatusForbidden,
		status == http.StatusPaymentRequired,
		status == http.StatusTooManyRequests:
		return &AuthQuotaError{Provider: name, Err: err}
	case status >= 500, status == http.StatusRequestTimeout:
		return &TransientError{Provider: name, Err: err}
	default:
		return &ValidationError{Provider: name, Err: err}
	}
}

// Classify 将任意错误规整到错误分类内；未知错误按瞬时失败处理
func Classify(name string, err error) error {
	if err == nil {
		return nil
	}
	var te *TransientError
	var ae *AuthQuotaError
	var ve *ValidationError
	if errors.As(err, &te) || errors.As(err, &ae) || errors.As(err, &ve) {
		return err
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return &TransientError{Provider: name, Err: err}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
