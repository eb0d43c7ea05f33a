package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// HTTPError is returned for non-2xx responses. When the body is a
// PostgREST-style error document its fields are lifted into Code, Message
// and Hint.
type HTTPError struct {
	Method     string
	URL        string
	StatusCode int
	Header     http.Header
	Body       []byte

	Code    string
	Message string
	Hint    string
}

func newHTTPError(req *http.Request, resp *http.Response, body []byte) *HTTPError {
	e := &HTTPError{
		Method:     req.Method,
		URL:        req.URL.Redacted(),
		StatusCode: resp.StatusCode,
		Header:     resp.Header.Clone(),
		Body:       body,
	}
	var doc struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Hint    string `json:"hint"`
	}
	if json.Unmarshal(body, &doc) == nil {
		e.Code, e.Message, e.Hint = doc.Code, doc.Message, doc.Hint
	}
	return e
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		msg := fmt.Sprintf("%s %s: status %d: %s", e.Method, e.URL, e.StatusCode, e.Message)
		if e.Code != "" {
			msg += " (" + e.Code + ")"
		}
		return msg
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.URL, e.StatusCode, snippet(e.Body, 900))
}

func snippet(b []byte, max int) string {
	s := strings.TrimSpace(string(b))
	if len(s) <= max {
		return s
	}
	return s[:max] + "…"
}

// RetryConfig controls retry behavior. MaxAttempts 1 means a single try.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration

	// If true, retry any 5xx.
	Retry5xx bool

	// Extra statuses to retry (e.g. 429, 408).
	RetryStatuses map[int]bool
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 4,
		BaseDelay:   500 * time.Millisecond,
		MaxDelay:    10 * time.Second,
		Retry5xx:    true,
		RetryStatuses: map[int]bool{
			http.StatusTooManyRequests: true, // 429
			http.StatusRequestTimeout:  true, // 408
			http.StatusTooEarly:        true, // 425
		},
	}
}

// NoRetry performs exactly one attempt.
func NoRetry() RetryConfig {
	cfg := DefaultRetryConfig()
	cfg.MaxAttempts = 1
	return cfg
}

func (cfg RetryConfig) normalized() RetryConfig {
	def := DefaultRetryConfig()
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = def.MaxAttempts
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = def.BaseDelay
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = def.MaxDelay
	}
	if cfg.RetryStatuses == nil {
		cfg.RetryStatuses = def.RetryStatuses
	}
	return cfg
}

// DoWithRetry executes a request (built by buildReq) with retries.
// The body is always read in full, decoded per Content-Encoding, and closed.
func DoWithRetry(
	ctx context.Context,
	client *http.Client,
	buildReq func(context.Context) (*http.Request, error),
	cfg RetryConfig,
) (*http.Response, []byte, error) {
	cfg = cfg.normalized()

	var lastErr error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		req, err := buildReq(ctx)
		if err != nil {
			return nil, nil, err
		}

		resp, err := client.Do(req)
		if err != nil {
			lastErr = err
			if isRetryableNetErr(err) && attempt < cfg.MaxAttempts {
				if err := sleepBackoff(ctx, attempt, cfg, 0); err != nil {
					return nil, nil, err
				}
				continue
			}
			return nil, nil, err
		}

		body, readErr := ReadBody(resp)
		if readErr != nil {
			lastErr = readErr
			if isRetryableNetErr(readErr) && attempt < cfg.MaxAttempts {
				if err := sleepBackoff(ctx, attempt, cfg, 0); err != nil {
					return nil, nil, err
				}
				continue
			}
			return resp, body, readErr
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return resp, body, nil
		}

		herr := newHTTPError(req, resp, body)
		lastErr = herr
		if isRetryableStatus(resp.StatusCode, cfg) && attempt < cfg.MaxAttempts {
			if err := sleepBackoff(ctx, attempt, cfg, ParseRetryAfter(resp)); err != nil {
				return nil, nil, err
			}
			continue
		}
		return resp, body, herr
	}

	if lastErr != nil {
		return nil, nil, lastErr
	}
	return nil, nil, errors.New("httpx: request failed")
}

func isRetryableStatus(code int, cfg RetryConfig) bool {
	if cfg.RetryStatuses[code] {
		return true
	}
	return cfg.Retry5xx && code >= 500 && code <= 599
}

func sleepBackoff(ctx context.Context, attempt int, cfg RetryConfig, retryAfter time.Duration) error {
	sleep := retryAfter
	if sleep <= 0 {
		sleep = cfg.BaseDelay * time.Duration(1<<(attempt-1))
		if sleep > cfg.MaxDelay {
			sleep = cfg.MaxDelay
		}
		// jitter 0..250ms
		sleep += time.Duration(rand.Intn(250)) * time.Millisecond
	}

	t := time.NewTimer(sleep)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func isRetryableNetErr(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var nerr net.Error
	if errors.As(err, &nerr) {
		return nerr.Timeout()
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "connection reset") || strings.Contains(msg, "broken pipe") || strings.Contains(msg, "unexpected eof")
}

// ParseRetryAfter parses Retry-After header (seconds or HTTP date).
// Returns 0 when header is missing/invalid.
func ParseRetryAfter(resp *http.Response) time.Duration {
	v := strings.TrimSpace(resp.Header.Get("Retry-After"))
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// DoJSON runs DoWithRetry and unmarshals the body into out (skipped when out
// is nil).
func DoJSON(
	ctx context.Context,
	client *http.Client,
	buildReq func(context.Context) (*http.Request, error),
	out any,
	cfg RetryConfig,
) error {
	_, body, err := DoWithRetry(ctx, client, buildReq, cfg)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("httpx: decode json: %w (body %s)", err, snippet(body, 300))
	}
	return nil
}
