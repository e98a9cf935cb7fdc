// Package api implements the authenticated session client for the BIST
// trading platform REST API: token lifecycle, response unwrapping, typed
// error translation and the retry policy composed around outbound calls.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"bist-cli/internal/logger"
	"bist-cli/internal/secrets"
	"bist-cli/internal/trace"
)

const userAgent = "BIST-CLI/1.0.0"

// accessTokenLifetime is a client-side heuristic: the platform does not
// return an expiry, so a fixed nominal lifetime is assumed from issuance.
const accessTokenLifetime = 15 * time.Minute

// Session is the token state owned by the Client.
type Session struct {
	AccessToken  string
	RefreshToken string
	Expiry       time.Time
}

// Client is the HTTP session client. All calls are synchronous; a mutex
// guards the token fields so that concurrent consumers cannot observe a
// token that has not been persisted yet.
type Client struct {
	httpClient   *http.Client
	healthClient *http.Client
	baseURL      string
	headers      map[string]string
	tokens       *secrets.Store
	log          *logger.Logger

	mu      sync.Mutex
	session Session
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithBaseURL sets the API base URL.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) { c.baseURL = baseURL }
}

// WithTimeout sets the total request timeout for normal calls.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) { c.httpClient.Timeout = timeout }
}

// WithConnectTimeout sets the dial timeout for normal calls.
func WithConnectTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Transport = &http.Transport{
			DialContext: (&net.Dialer{Timeout: timeout}).DialContext,
		}
	}
}

// WithHealthTimeout sets the timeout of the connectivity probe.
func WithHealthTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) { c.healthClient.Timeout = timeout }
}

// WithHeader sets a default header sent on every request.
func WithHeader(key, value string) ClientOption {
	return func(c *Client) { c.headers[key] = value }
}

// NewClient creates a session client. Previously stored tokens are loaded
// so a fresh process can resume an authenticated session.
func NewClient(tokens *secrets.Store, log *logger.Logger, opts ...ClientOption) *Client {
	c := &Client{
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		healthClient: &http.Client{Timeout: 5 * time.Second},
		baseURL:      "http://localhost:8080",
		headers: map[string]string{
			"Content-Type": "application/json",
			"Accept":       "application/json",
			"User-Agent":   userAgent,
		},
		tokens: tokens,
		log:    log,
	}

	for _, opt := range opts {
		opt(c)
	}

	c.loadStoredTokens()
	return c
}

// BaseURL returns the configured API base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) loadStoredTokens() {
	if v, ok := c.tokens.Get(secrets.AccessTokenName); ok {
		c.session.AccessToken = v
		c.log.Debug(context.Background(), "loaded stored access token")
	}
	if v, ok := c.tokens.Get(secrets.RefreshTokenName); ok {
		c.session.RefreshToken = v
	}
}

// loginResponse carries the fields the client consumes from a login or
// refresh response. User is kept raw for the auth layer to interpret.
type loginResponse struct {
	AccessToken  string          `json:"accessToken"`
	RefreshToken string          `json:"refreshToken"`
	User         json.RawMessage `json:"user"`
	Message      string          `json:"message"`
}

// LoginResult is returned by Login.
type LoginResult struct {
	Session Session
	User    json.RawMessage
	Message string
}

// Login authenticates with platform credentials and installs the returned
// tokens. Tokens are persisted before the session is considered usable.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	ctx, span := trace.StartSpan(ctx, "api.Login")
	defer span.End()

	body := map[string]string{"username": username, "password": password}
	raw, err := c.do(ctx, http.MethodPost, "/api/v1/auth/login", body, false)
	if err != nil {
		return nil, err
	}

	var resp loginResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, &Error{Message: "invalid response body"}
	}

	sess := c.installTokens(resp.AccessToken, resp.RefreshToken)
	c.log.Info(ctx, "platform login succeeded", "username", username)

	return &LoginResult{Session: sess, User: resp.User, Message: resp.Message}, nil
}

// Refresh exchanges the refresh token for a new access token.
func (c *Client) Refresh(ctx context.Context) (Session, error) {
	ctx, span := trace.StartSpan(ctx, "api.Refresh")
	defer span.End()

	c.mu.Lock()
	refreshToken := c.session.RefreshToken
	c.mu.Unlock()

	if refreshToken == "" {
		return Session{}, ErrNoRefreshToken
	}

	raw, err := c.doWithToken(ctx, http.MethodPost, "/api/v1/auth/refresh", nil, refreshToken)
	if err != nil {
		return Session{}, err
	}

	var resp loginResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return Session{}, &Error{Message: "invalid response body"}
	}

	sess := c.installTokens(resp.AccessToken, resp.RefreshToken)
	c.log.Info(ctx, "access token refreshed")
	return sess, nil
}

// installTokens persists new tokens, then publishes them to the in-memory
// session. Persisting first keeps the stored state consistent with what
// dependent requests will use after a restart.
func (c *Client) installTokens(accessToken, refreshToken string) Session {
	if accessToken != "" {
		if err := c.tokens.Set(secrets.AccessTokenName, accessToken); err != nil {
			c.log.Warn(context.Background(), "could not persist access token", "error", err)
		}
	}
	if refreshToken != "" {
		if err := c.tokens.Set(secrets.RefreshTokenName, refreshToken); err != nil {
			c.log.Warn(context.Background(), "could not persist refresh token", "error", err)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if accessToken != "" {
		c.session.AccessToken = accessToken
		c.session.Expiry = time.Now().Add(accessTokenLifetime)
	}
	if refreshToken != "" {
		c.session.RefreshToken = refreshToken
	}
	return c.session
}

// Logout calls the remote logout endpoint best-effort, then always clears
// local session state and stored tokens.
func (c *Client) Logout(ctx context.Context) {
	ctx, span := trace.StartSpan(ctx, "api.Logout")
	defer span.End()

	if _, err := c.do(ctx, http.MethodPost, "/api/v1/auth/logout", nil, true); err != nil {
		c.log.Warn(ctx, "remote logout failed, clearing local session anyway", "error", err)
	}

	c.mu.Lock()
	c.session = Session{}
	c.mu.Unlock()

	c.tokens.ClearAll()
	c.log.Info(ctx, "logged out")
}

// IsAuthenticated reports whether an access token is held.
func (c *Client) IsAuthenticated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.AccessToken != ""
}

// TestConnection probes the platform health endpoint. It never returns an
// error; any failure means not reachable.
func (c *Client) TestConnection(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/actuator/health", nil)
	if err != nil {
		return false
	}
	resp, err := c.healthClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	return resp.StatusCode == http.StatusOK
}

// Request performs an API call and returns the raw JSON payload.
func (c *Client) Request(ctx context.Context, method, path string, body any, authenticated bool) (json.RawMessage, error) {
	return c.do(ctx, method, path, body, authenticated)
}

// Get performs an authenticated GET.
func (c *Client) Get(ctx context.Context, path string) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, path, nil, true)
}

// Post performs an authenticated POST.
func (c *Client) Post(ctx context.Context, path string, body any) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPost, path, body, true)
}

// Put performs an authenticated PUT.
func (c *Client) Put(ctx context.Context, path string, body any) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPut, path, body, true)
}

// Delete performs an authenticated DELETE.
func (c *Client) Delete(ctx context.Context, path string) (json.RawMessage, error) {
	return c.do(ctx, http.MethodDelete, path, nil, true)
}

func (c *Client) do(ctx context.Context, method, path string, body any, authenticated bool) (json.RawMessage, error) {
	token := ""
	if authenticated {
		c.mu.Lock()
		token = c.session.AccessToken
		c.mu.Unlock()
	}
	return c.doWithToken(ctx, method, path, body, token)
}

func (c *Client) doWithToken(ctx context.Context, method, path string, body any, bearer string) (json.RawMessage, error) {
	url := c.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	for key, value := range c.headers {
		req.Header.Set(key, value)
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.APICall(ctx, method, path, 0, time.Since(start), err)
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	duration := time.Since(start)
	if err != nil {
		c.log.APICall(ctx, method, path, resp.StatusCode, duration, err)
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	c.log.APICall(ctx, method, path, resp.StatusCode, duration, nil)

	return translateResponse(resp.StatusCode, respBody)
}

// translateResponse applies the response handling contract: non-2xx becomes
// a structured *Error, a 2xx body that is not valid JSON becomes a
// status-less *Error, and an empty 2xx body is allowed.
func translateResponse(statusCode int, body []byte) (json.RawMessage, error) {
	if statusCode >= 200 && statusCode < 300 {
		if len(bytes.TrimSpace(body)) == 0 {
			return nil, nil
		}
		if !json.Valid(body) {
			return nil, &Error{Message: "invalid response body"}
		}
		return json.RawMessage(body), nil
	}

	return nil, &Error{Message: errorMessage(statusCode, body), StatusCode: statusCode}
}

// errorMessage extracts the most specific message available from an error
// response: JSON "message", then "error", then the raw body, then a
// generic HTTP string.
func errorMessage(statusCode int, body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	if text := string(bytes.TrimSpace(body)); text != "" {
		return text
	}
	return fmt.Sprintf("HTTP %d", statusCode)
}
