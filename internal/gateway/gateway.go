// Package gateway is the single entry point of every call to the Instalike
// API. It injects the bearer credential, throttles outbound traffic and
// recovers from an expired access token by refreshing it once.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mmcdole/instalike/internal/domain"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

const (
	defaultTimeout = 30 * time.Second
	userAgent      = "Instalike-TUI/1.0"

	// RefreshPath is the endpoint exchanging the current token for a new one
	RefreshPath = "/auth/refresh"
)

// Credentials is the token state the gateway reads and updates
type Credentials interface {
	Token() (string, bool)
	// Replace persists a refreshed token
	Replace(token string) error
	// Invalidate drops the token after a failed refresh
	Invalidate() error
}

// Options tunes a Gateway
type Options struct {
	Timeout   time.Duration
	RateLimit float64 // requests per second, 0 disables throttling
	Burst     int

	// RetryAfterRefresh re-issues a request rejected with 401 once the
	// token has been refreshed
	RetryAfterRefresh bool

	// HTTPClient overrides the underlying client (tests)
	HTTPClient *http.Client
}

// Gateway wraps an http.Client with the session credential
type Gateway struct {
	baseURL    string
	creds      Credentials
	httpClient *http.Client
	limiter    *rate.Limiter
	retry      bool
	refreshes  singleflight.Group
	logger     *slog.Logger
}

// New creates a Gateway for the API rooted at baseURL
func New(baseURL string, creds Credentials, opts Options, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}

	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.RateLimit > 0 {
		burst := opts.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}

	return &Gateway{
		baseURL:    strings.TrimRight(baseURL, "/"),
		creds:      creds,
		httpClient: client,
		limiter:    limiter,
		retry:      opts.RetryAfterRefresh,
		logger:     logger,
	}
}

// BaseURL returns the API root requests are resolved against
func (g *Gateway) BaseURL() string {
	return g.baseURL
}

// NewRequest builds a request for path relative to the API root. A non-nil
// body is encoded as JSON.
func (g *Gateway) NewRequest(ctx context.Context, method, path string, query url.Values, body any) (*http.Request, error) {
	reqURL := g.baseURL + path
	if len(query) > 0 {
		reqURL = fmt.Sprintf("%s?%s", reqURL, query.Encode())
	}

	var data []byte
	if body != nil {
		var err error
		data, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if data == nil {
		req.Body = http.NoBody
		req.GetBody = func() (io.ReadCloser, error) { return http.NoBody, nil }
		req.ContentLength = 0
	}
	return req, nil
}

// Do sends req with the session credential. A 401 received while a token
// was attached triggers exactly one refresh. On success the original
// request is replayed once when retry is enabled; on failure the token is
// cleared and the original 401 response is returned. Responses are passed
// through unchanged, whatever their status.
func (g *Gateway) Do(req *http.Request) (*http.Response, error) {
	if err := bufferBody(req); err != nil {
		return nil, err
	}

	resp, used, err := g.dispatch(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusUnauthorized || used == "" || isRefresh(req) {
		return resp, nil
	}

	g.logger.Debug("access token rejected", "method", req.Method, "path", req.URL.Path)
	if !g.refresh(req.Context(), used) || !g.retry {
		return resp, nil
	}

	drain(resp)
	retried, _, err := g.dispatch(req)
	if err != nil {
		return nil, err
	}
	return retried, nil
}

// Send performs a JSON call and decodes a 2xx body into out (if non-nil).
// Other statuses are returned as *domain.APIError.
func (g *Gateway) Send(ctx context.Context, method, path string, query url.Values, body, out any) error {
	req, err := g.NewRequest(ctx, method, path, query, body)
	if err != nil {
		return err
	}

	resp, err := g.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := decodeError(resp.StatusCode, payload)
		g.logger.Error("api request error", "method", method, "path", path, "status", resp.StatusCode, "kind", apiErr.Kind)
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(payload)) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		g.logger.Error("JSON parse error", "error", err, "path", path, "bodyLen", len(payload))
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// dispatch sends one attempt of req and reports the token it carried
func (g *Gateway) dispatch(req *http.Request) (*http.Response, string, error) {
	ctx := req.Context()
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, "", err
	}

	attempt := req.Clone(ctx)
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, "", fmt.Errorf("failed to replay request body: %w", err)
		}
		attempt.Body = body
	}

	token, ok := g.creds.Token()
	if ok {
		attempt.Header.Set("Authorization", "Bearer "+token)
	} else {
		token = ""
	}
	attempt.Header.Set("Accept", "application/json")
	attempt.Header.Set("Content-Type", "application/json")
	attempt.Header.Set("User-Agent", userAgent)
	attempt.Header.Set("X-Request-ID", uuid.NewString())

	g.logger.Debug("api request", "method", attempt.Method, "url", attempt.URL.String(),
		"request_id", attempt.Header.Get("X-Request-ID"))

	resp, err := g.httpClient.Do(attempt)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, "", ctxErr
		}
		g.logger.Error("api request failed", "error", err)
		return nil, "", domain.ErrServerOffline
	}
	return resp, token, nil
}

// refresh exchanges the rejected token for a new one. Concurrent callers
// share a single in-flight exchange; a caller whose token was already
// replaced by another exchange reuses the result without a new call.
//
// The exchange outlives the caller's context: a caller giving up does not
// abort it, and only a rejected or unreachable refresh ends the session.
func (g *Gateway) refresh(ctx context.Context, used string) bool {
	v, _, _ := g.refreshes.Do(RefreshPath, func() (any, error) {
		current, ok := g.creds.Token()
		if !ok {
			return false, nil
		}
		if current != used {
			return true, nil
		}

		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), g.refreshTimeout())
		defer cancel()

		token, err := g.requestRefresh(rctx)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			g.logger.Warn("token refresh interrupted, keeping session", "error", err)
			return false, nil
		}
		if err != nil {
			g.logger.Warn("token refresh failed", "error", err)
			if err := g.creds.Invalidate(); err != nil {
				g.logger.Error("failed to clear token", "error", err)
			}
			return false, nil
		}

		if err := g.creds.Replace(token); err != nil {
			g.logger.Error("failed to persist refreshed token", "error", err)
			return false, nil
		}
		return true, nil
	})
	ok, _ := v.(bool)
	return ok
}

func (g *Gateway) refreshTimeout() time.Duration {
	if g.httpClient.Timeout > 0 {
		return g.httpClient.Timeout
	}
	return defaultTimeout
}

func (g *Gateway) requestRefresh(ctx context.Context) (string, error) {
	req, err := g.NewRequest(ctx, http.MethodPost, RefreshPath, nil, nil)
	if err != nil {
		return "", err
	}

	resp, _, err := g.dispatch(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read refresh response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", decodeError(resp.StatusCode, payload)
	}

	var jwt domain.AuthJWT
	if err := json.Unmarshal(payload, &jwt); err != nil {
		return "", fmt.Errorf("failed to parse refresh response: %w", err)
	}
	if jwt.AccessToken == "" {
		return "", errors.New("refresh response carries no access token")
	}
	return jwt.AccessToken, nil
}

func isRefresh(req *http.Request) bool {
	return strings.HasSuffix(req.URL.Path, RefreshPath)
}

// bufferBody makes req replayable
func bufferBody(req *http.Request) error {
	if req.GetBody != nil {
		return nil
	}
	if req.Body == nil || req.Body == http.NoBody {
		req.GetBody = func() (io.ReadCloser, error) { return http.NoBody, nil }
		return nil
	}

	data, err := io.ReadAll(req.Body)
	req.Body.Close()
	if err != nil {
		return fmt.Errorf("failed to buffer request body: %w", err)
	}
	req.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(data)), nil
	}
	req.Body, _ = req.GetBody()
	return nil
}

func drain(resp *http.Response) {
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}
