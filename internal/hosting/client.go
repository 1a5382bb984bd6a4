package hosting

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

	"golang.org/x/time/rate"

	"reelctl/internal/config"
	"reelctl/internal/logging"
	"reelctl/internal/services"
)

const (
	// DefaultAPIBase is the public REST endpoint.
	DefaultAPIBase = "https://api.github.com"

	userAgent  = "reelctl/0.1.0"
	apiVersion = "2022-11-28"
	mediaType  = "application/vnd.github+json"
)

// HTTPDoer is satisfied by *http.Client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is a bearer-authenticated REST client.
type Client struct {
	base    string
	token   string
	http    HTTPDoer
	limiter *rate.Limiter
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP transport.
func WithHTTPClient(doer HTTPDoer) Option {
	return func(c *Client) {
		if doer != nil {
			c.http = doer
		}
	}
}

// WithLogger sets the client logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logging.NewComponentLogger(logger, "hosting")
	}
}

// WithRateLimit paces requests at rps with the given burst. A non-positive
// rps disables pacing.
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

// New builds a client for apiBase authenticated with token.
func New(apiBase, token string, opts ...Option) *Client {
	apiBase = strings.TrimRight(strings.TrimSpace(apiBase), "/")
	if apiBase == "" {
		apiBase = DefaultAPIBase
	}
	c := &Client{
		base:    apiBase,
		token:   strings.TrimSpace(token),
		http:    &http.Client{},
		limiter: rate.NewLimiter(rate.Limit(5), 10),
		logger:  logging.NewComponentLogger(nil, "hosting"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewFromConfig builds a client from the hosting section of cfg.
func NewFromConfig(cfg *config.Config, opts ...Option) *Client {
	base := []Option{WithRateLimit(cfg.Hosting.RequestsPerSecond, cfg.Hosting.Burst)}
	return New(cfg.Hosting.APIBase, cfg.Hosting.Token, append(base, opts...)...)
}

// Configured reports whether a token is set.
func (c *Client) Configured() bool {
	return c != nil && c.token != ""
}

// APIBase returns the REST endpoint root.
func (c *Client) APIBase() string {
	return c.base
}

// APIError is a non-2xx response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("hosting api returned %d", e.Status)
	}
	return fmt.Sprintf("hosting api returned %d: %s", e.Status, e.Message)
}

// Unwrap classifies 404 as not found and everything else as transport.
func (e *APIError) Unwrap() error {
	if e.Status == http.StatusNotFound {
		return services.ErrNotFound
	}
	return services.ErrTransport
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

func (c *Client) ensureToken(operation string) error {
	if !c.Configured() {
		return services.Wrap(services.ErrConfiguration, "hosting", operation, "hosting token is not configured", nil)
	}
	return nil
}

func (c *Client) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}

// endpoint joins path onto the API base. Absolute URLs pass through.
func (c *Client) endpoint(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return c.base + "/" + strings.TrimLeft(path, "/")
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path), body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", mediaType)
	req.Header.Set("X-GitHub-Api-Version", apiVersion)
	req.Header.Set("User-Agent", userAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

// send performs req after waiting on the limiter and converts non-2xx
// responses into *APIError. The caller closes the body.
func (c *Client) send(req *http.Request, operation string) (*http.Response, error) {
	if err := c.wait(req.Context()); err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrTransport, "hosting", operation, "request failed", err)
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()
	var body struct {
		Message string `json:"message"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	_ = json.Unmarshal(raw, &body)
	c.logger.Debug("hosting request rejected",
		logging.String("operation", operation),
		logging.Int("status", resp.StatusCode),
		logging.String("message", body.Message),
	)
	return nil, &APIError{Status: resp.StatusCode, Message: body.Message}
}

// doJSON sends an optional JSON body and decodes an optional JSON reply.
func (c *Client) doJSON(ctx context.Context, method, path, operation string, in, out any) error {
	if err := c.ensureToken(operation); err != nil {
		return err
	}
	var body io.Reader
	if in != nil {
		encoded, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", operation, err)
		}
		body = bytes.NewReader(encoded)
	}
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return fmt.Errorf("build %s request: %w", operation, err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.send(req, operation)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return services.Wrap(services.ErrTransport, "hosting", operation, "decode response", err)
	}
	return nil
}

func repoPath(repo string, parts ...string) string {
	segments := append([]string{"repos", strings.Trim(repo, "/")}, parts...)
	return strings.Join(segments, "/")
}

func escapePath(p string) string {
	segments := strings.Split(strings.Trim(p, "/"), "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}
