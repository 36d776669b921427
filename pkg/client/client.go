package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/naveenspark/fitline/pkg/session"
)

const (
	defaultTimeout     = 30 * time.Second
	defaultChatTimeout = 15 * time.Second

	refreshPath = "/token/refresh/"
)

// Client is the fitness API client. Every call goes through one pipeline
// that attaches the access credential and, on a 401, refreshes it once and
// replays the call.
type Client struct {
	baseURL     string
	store       session.Store
	httpClient  *http.Client
	limiter     *rate.Limiter
	log         *slog.Logger
	chatTimeout time.Duration

	refreshes singleflight.Group
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// WithTimeout bounds every individual HTTP call.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithChatTimeout bounds coach chat calls.
func WithChatTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.chatTimeout = d
		}
	}
}

// WithRateLimit caps outbound calls at rps with the given burst. rps <= 0
// disables limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// New creates a new API client backed by store.
func New(baseURL string, store session.Store, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		store:   store,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		log:         slog.New(slog.DiscardHandler),
		chatTimeout: defaultChatTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Store returns the session store the client reads and writes.
func (c *Client) Store() session.Store {
	return c.store
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.doRequest(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	return c.doRequest(ctx, http.MethodPost, path, body, out)
}

// doRequest is the pipeline for authenticated calls:
// send with the stored access credential; on 401 refresh once and send
// again; a second 401 ends the session. The caller sees one logical call.
func (c *Client) doRequest(ctx context.Context, method, path string, body any, out any) error {
	payload, err := encodeBody(body)
	if err != nil {
		return err
	}

	access := c.accessToken()
	for retried := false; ; retried = true {
		err := c.send(ctx, method, path, payload, access, out)
		if !IsStatus(err, http.StatusUnauthorized) {
			return err
		}
		if retried {
			c.log.Warn("refreshed credential rejected", "path", path)
			c.expire()
			return fmt.Errorf("%w: %w", ErrSessionExpired, err)
		}
		access, err = c.refreshAfter(ctx, access)
		if err != nil {
			return err
		}
	}
}

// ForceRefresh mints a new access credential even if the current one has
// not been rejected. Concurrent refreshes are coalesced as usual.
func (c *Client) ForceRefresh(ctx context.Context) error {
	_, err := c.refreshAfter(ctx, c.accessToken())
	return err
}

// refreshAfter returns an access credential newer than stale. Concurrent
// callers share one in-flight refresh. A caller whose stale credential was
// already replaced gets the current one without another refresh call, so a
// late 401 can never rotate away a credential another request just installed.
func (c *Client) refreshAfter(ctx context.Context, stale string) (string, error) {
	ch := c.refreshes.DoChan("refresh", func() (any, error) {
		creds, _ := c.store.Get()
		if creds.Access != "" && creds.Access != stale {
			return creds.Access, nil
		}
		// Detached so one caller going away does not fail the others
		// waiting on this flight; the http.Client timeout still bounds it.
		return c.refresh(context.WithoutCancel(ctx), creds.Refresh)
	})
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

func (c *Client) refresh(ctx context.Context, refreshToken string) (string, error) {
	if refreshToken == "" {
		c.log.Info("no refresh credential, ending session")
		c.expire()
		return "", fmt.Errorf("%w: no refresh credential", ErrSessionExpired)
	}

	payload, err := encodeBody(map[string]string{"refresh": refreshToken})
	if err != nil {
		return "", err
	}
	var tokens struct {
		Access  string `json:"access"`
		Refresh string `json:"refresh"`
	}
	// The refresh credential travels in the body only, never as a bearer header.
	if err := c.send(ctx, http.MethodPost, refreshPath, payload, "", &tokens); err != nil {
		c.log.Warn("token refresh failed", "error", err)
		c.expire()
		return "", fmt.Errorf("%w: refresh: %w", ErrSessionExpired, err)
	}
	if tokens.Access == "" {
		c.log.Warn("token refresh returned no access credential")
		c.expire()
		return "", fmt.Errorf("%w: refresh returned no access credential", ErrSessionExpired)
	}

	if tokens.Refresh == "" {
		tokens.Refresh = refreshToken
	}
	if err := c.store.Set(tokens.Access, tokens.Refresh); err != nil {
		// The in-memory pair is updated regardless; only persistence failed.
		c.log.Warn("persist refreshed credential", "error", err)
	}
	c.log.Info("access credential refreshed")
	return tokens.Access, nil
}

func (c *Client) accessToken() string {
	creds, _ := c.store.Get()
	return creds.Access
}

func (c *Client) expire() {
	if err := c.store.Clear(); err != nil {
		c.log.Warn("clear session", "error", err)
	}
}

func encodeBody(body any) ([]byte, error) {
	if body == nil {
		return nil, nil
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal body: %w", err)
	}
	return data, nil
}

// send performs one HTTP exchange. access, when non-empty, is attached as
// a bearer credential.
func (c *Client) send(ctx context.Context, method, path string, payload []byte, access string, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit: %w", err)
		}
	}

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if access != "" {
		req.Header.Set("Authorization", "Bearer "+access)
	}

	c.log.Debug("api request", "method", method, "path", path, "authenticated", access != "")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	if resp.StatusCode >= 400 {
		return readHTTPError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func readHTTPError(resp *http.Response) error {
	respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // 1 MB max error body
	if readErr != nil {
		return &HTTPError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("failed to read body: %v", readErr)}
	}
	var apiErr struct {
		Error  string `json:"error"`
		Detail string `json:"detail"`
	}
	if json.Unmarshal(respBody, &apiErr) == nil {
		if apiErr.Error != "" {
			return &HTTPError{StatusCode: resp.StatusCode, Message: apiErr.Error}
		}
		if apiErr.Detail != "" {
			return &HTTPError{StatusCode: resp.StatusCode, Message: apiErr.Detail}
		}
	}
	return &HTTPError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(respBody))}
}
