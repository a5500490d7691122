package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	cache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

const (
	requestTimeout = 10 * time.Second

	// Availability snapshots go stale quickly once other users book.
	availabilityTTL = time.Minute
)

// TokenSource holds the credentials the client attaches to requests.
// The session store implements it; token mutations made by the client
// (refresh rotations) flow back through SetTokens.
type TokenSource interface {
	AccessToken() string
	RefreshToken() string
	SetTokens(access, refresh string)
}

// Meta is the pagination block of the API's response envelope.
type Meta struct {
	TotalItems   int `json:"totalItems"`
	TotalPages   int `json:"totalPages"`
	CurrentPage  int `json:"currentPage"`
	ItemsPerPage int `json:"itemsPerPage"`
}

// envelope is the API's uniform response shape.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
	Meta    *Meta           `json:"meta,omitempty"`
}

// Client is the turfbook API client.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	log        *zap.Logger

	// onAuthExpired fires after a 401 that refresh could not recover.
	// The app uses it to clear the session and return to sign-in.
	onAuthExpired func()

	// single-flight refresh state: concurrent 401s wait on inflight
	// instead of each issuing their own refresh call.
	refreshMu  sync.Mutex
	inflight   chan struct{}
	refreshErr error

	avail *cache.Cache
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client (tests).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger enables request logging. The TUI owns the terminal, so
// callers point this at a file-backed logger.
func WithLogger(log *zap.Logger) Option {
	return func(c *Client) { c.log = log }
}

// New creates a new API client reading credentials from tokens.
func New(baseURL string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
		tokens: tokens,
		log:    zap.NewNop(),
		avail:  cache.New(availabilityTTL, 5*time.Minute),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// OnAuthExpired registers the forced-logout hook. Must be called
// before the first request that can 401.
func (c *Client) OnAuthExpired(fn func()) {
	c.onAuthExpired = fn
}

// isAuthPath reports whether the path is an auth endpoint. A 401 from
// those means bad credentials, never a stale access token, so they are
// exempt from the refresh-and-replay path.
func isAuthPath(path string) bool {
	return strings.Contains(path, "/auth/")
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	_, _, err := c.doRequest(ctx, http.MethodGet, path, nil, out)
	return err
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	_, _, err := c.doRequest(ctx, http.MethodPost, path, body, out)
	return err
}

func (c *Client) patch(ctx context.Context, path string, body, out any) error {
	_, _, err := c.doRequest(ctx, http.MethodPatch, path, body, out)
	return err
}

// callWithMessage runs a request and also returns the envelope's
// message field, for flows whose UI echoes the server's wording.
func (c *Client) callWithMessage(ctx context.Context, method, path string, body, out any) (string, error) {
	_, msg, err := c.doRequest(ctx, method, path, body, out)
	return msg, err
}

// doRequest performs one API call: marshal body, attach bearer token,
// execute, decode the envelope into out. On a 401 for a non-auth path
// it refreshes the access token once and replays the original request
// a single time; an unrecoverable 401 clears the session via the
// onAuthExpired hook.
func (c *Client) doRequest(ctx context.Context, method, path string, body, out any) (*Meta, string, error) {
	return c.doRequestWith(ctx, method, path, body, out, nil, false)
}

func (c *Client) doRequestWith(ctx context.Context, method, path string, body, out any, headers map[string]string, retried bool) (*Meta, string, error) {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, "", fmt.Errorf("marshal body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, "", fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	if tok := c.tokens.AccessToken(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	c.log.Debug("api call",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
	)

	if resp.StatusCode == http.StatusUnauthorized && !retried && !isAuthPath(path) {
		io.Copy(io.Discard, resp.Body) //nolint:errcheck // drain before replay

		if refreshErr := c.refreshOnce(ctx); refreshErr != nil {
			c.log.Warn("token refresh failed", zap.Error(refreshErr))
			if c.onAuthExpired != nil {
				c.onAuthExpired()
			}
			return nil, "", fmt.Errorf("%w: %v", ErrSessionExpired, refreshErr)
		}
		// Replay exactly once with the refreshed credentials.
		return c.doRequestWith(ctx, method, path, body, out, headers, true)
	}

	if resp.StatusCode >= 400 {
		return nil, "", decodeError(resp)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, "", fmt.Errorf("decode response: %w", err)
	}
	if out != nil && env.Data != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return nil, "", fmt.Errorf("decode data: %w", err)
		}
	}
	return env.Meta, env.Message, nil
}

func decodeError(resp *http.Response) error {
	respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // 1 MB max error body
	if readErr != nil {
		return &APIError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("failed to read body: %v", readErr)}
	}
	var apiErr struct {
		Message string       `json:"message"`
		Errors  []FieldError `json:"errors"`
	}
	if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Message != "" {
		return &APIError{StatusCode: resp.StatusCode, Message: apiErr.Message, Fields: apiErr.Errors}
	}
	return &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(respBody))}
}

// refreshOnce exchanges the refresh token for a new access token.
// Concurrent callers coalesce: the first one performs the call, the
// rest block until it resolves and share its outcome.
func (c *Client) refreshOnce(ctx context.Context) error {
	c.refreshMu.Lock()
	if c.inflight != nil {
		ch := c.inflight
		c.refreshMu.Unlock()
		select {
		case <-ch:
			c.refreshMu.Lock()
			err := c.refreshErr
			c.refreshMu.Unlock()
			return err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	ch := make(chan struct{})
	c.inflight = ch
	c.refreshMu.Unlock()

	err := c.refresh(ctx)

	c.refreshMu.Lock()
	c.refreshErr = err
	c.inflight = nil
	close(ch)
	c.refreshMu.Unlock()
	return err
}

func (c *Client) refresh(ctx context.Context) error {
	refreshTok := c.tokens.RefreshToken()
	if refreshTok == "" {
		return fmt.Errorf("no refresh token")
	}

	payload := map[string]string{"refreshToken": refreshTok}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal refresh body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/refresh-token", bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("create refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("refresh request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode refresh response: %w", err)
	}
	var tokens struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}
	if env.Data != nil {
		if err := json.Unmarshal(env.Data, &tokens); err != nil {
			return fmt.Errorf("decode refresh tokens: %w", err)
		}
	}
	if tokens.AccessToken == "" {
		return fmt.Errorf("refresh response missing access token")
	}
	if tokens.RefreshToken == "" {
		// No rotation; keep the current one.
		tokens.RefreshToken = refreshTok
	}
	c.tokens.SetTokens(tokens.AccessToken, tokens.RefreshToken)
	c.log.Debug("access token refreshed")
	return nil
}

// TokenExpiry reads the exp claim of a JWT without verifying its
// signature. Used for display only; the server remains the authority.
func TokenExpiry(token string) (time.Time, bool) {
	claims := jwt.RegisteredClaims{}
	_, _, err := jwt.NewParser().ParseUnverified(token, &claims)
	if err != nil || claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
