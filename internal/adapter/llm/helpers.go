package llm

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"sourcehound/internal/domain"
	"sourcehound/internal/infra/config"
)

// maxResponseBody is the maximum response body size we read from LLM APIs.
const maxResponseBody = 10 * 1024 * 1024 // 10 MB

// doJSONRequest performs a JSON POST request and returns the response body.
// It handles: create request, set headers, execute, read body (with limit),
// and check HTTP status code. Returns a domain error for non-200 responses.
func doJSONRequest(ctx context.Context, client *http.Client, url string, body []byte, headers map[string]string) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		httpReq.Header.Set(k, v)
	}

	httpResp, err := client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, mapHTTPError(httpResp.StatusCode, respBody)
	}

	return respBody, nil
}

// mapHTTPError maps an HTTP status code + response body to a domain error,
// so the circuit breaker and the scorer's fallback path can classify failures.
func mapHTTPError(statusCode int, body []byte) error {
	detail := fmt.Sprintf("API error %d: %s", statusCode, string(body))

	switch {
	case statusCode == http.StatusTooManyRequests: // 429
		return fmt.Errorf("%w: %s", domain.ErrRateLimit, detail)
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden: // 401, 403
		return fmt.Errorf("%w: %s", domain.ErrAuthInvalid, detail)
	case statusCode >= 500:
		return fmt.Errorf("%w: %s", domain.ErrProviderError, detail)
	default:
		return fmt.Errorf("%s", detail)
	}
}

// Default provider timeouts and pool sizing. Optimized for LLM API usage
// patterns: few hosts, long-lived connections.
const (
	defaultConnTimeout = 10 * time.Second
	defaultRespTimeout = 30 * time.Second

	defaultMaxIdleConns        = 20
	defaultMaxIdleConnsPerHost = 10
	defaultMaxConnsPerHost     = 20
	defaultIdleConnTimeout     = 120 * time.Second
)

// NewHTTPClient creates an *http.Client with pooled transport and timeout
// defaults suitable for LLM providers.
func NewHTTPClient(cfg config.ProviderConfig) *http.Client {
	connTimeout := cfg.ConnTimeout
	if connTimeout <= 0 {
		connTimeout = defaultConnTimeout
	}
	respTimeout := cfg.RespTimeout
	if respTimeout <= 0 {
		respTimeout = defaultRespTimeout
	}

	maxIdle := cfg.Pool.MaxIdleConns
	if maxIdle <= 0 {
		maxIdle = defaultMaxIdleConns
	}
	maxIdlePerHost := cfg.Pool.MaxIdleConnsPerHost
	if maxIdlePerHost <= 0 {
		maxIdlePerHost = defaultMaxIdleConnsPerHost
	}
	maxConnsPerHost := cfg.Pool.MaxConnsPerHost
	if maxConnsPerHost <= 0 {
		maxConnsPerHost = defaultMaxConnsPerHost
	}
	idleTimeout := cfg.Pool.IdleConnTimeout
	if idleTimeout <= 0 {
		idleTimeout = defaultIdleConnTimeout
	}

	return &http.Client{
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   connTimeout,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout:   10 * time.Second,
			ResponseHeaderTimeout: respTimeout,
			MaxIdleConns:          maxIdle,
			MaxIdleConnsPerHost:   maxIdlePerHost,
			MaxConnsPerHost:       maxConnsPerHost,
			IdleConnTimeout:       idleTimeout,
			ForceAttemptHTTP2:     true,
		},
		Timeout: connTimeout + respTimeout,
	}
}
