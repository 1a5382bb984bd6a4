package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"reelctl/internal/config"
	"reelctl/internal/logging"
	"reelctl/internal/services"
)

const (
	userAgent = "reelctl/0.1.0"

	// DefaultConnectionTimeout bounds TestConnection.
	DefaultConnectionTimeout = 5 * time.Second

	maxResponseBytes = 32 << 20
)

// HTTPDoer is satisfied by *http.Client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client calls the generation webhook.
type Client struct {
	url         string
	http        HTTPDoer
	logger      *slog.Logger
	connTimeout time.Duration
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
		c.logger = logging.NewComponentLogger(logger, "webhook")
	}
}

// WithConnectionTimeout overrides DefaultConnectionTimeout.
func WithConnectionTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.connTimeout = d
		}
	}
}

// New builds a client for url. An empty url yields a client whose calls fail
// with a configuration error before any request is made.
func New(url string, opts ...Option) *Client {
	c := &Client{
		url: strings.TrimSpace(url),
		// Generation can take a long time; callers bound it with ctx.
		http:        &http.Client{},
		logger:      logging.NewComponentLogger(nil, "webhook"),
		connTimeout: DefaultConnectionTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewFromConfig builds a client for cfg.Webhook.URL.
func NewFromConfig(cfg *config.Config, opts ...Option) *Client {
	if cfg == nil {
		return New("", opts...)
	}
	return New(cfg.Webhook.URL, opts...)
}

// Configured reports whether a webhook URL is set.
func (c *Client) Configured() bool {
	return c != nil && c.url != ""
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Code       int
	StatusText string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.Code, e.StatusText)
}

func (e *StatusError) Unwrap() error { return services.ErrTransport }

// EnvelopeError is an `ok:false` response. Its message is the server's error
// text verbatim, or the action's fallback when the server sent none.
type EnvelopeError struct {
	Action  string
	Message string
}

func (e *EnvelopeError) Error() string { return e.Message }

func (e *EnvelopeError) Unwrap() error { return services.ErrSemantic }

type envelope struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

var fallbackMessages = map[string]string{
	actionGenerate:        "script generation failed",
	actionEmpathy:         "script generation failed",
	actionQuestions:       "question generation failed",
	actionSyncSave:        "save failed",
	actionSyncSaveHistory: "save failed",
	actionSyncLoad:        "load failed",
	actionSyncLoadHistory: "load failed",
	actionSyncDelete:      "delete failed",
}

// call posts {action, ...payload} and decodes a successful response into out.
func (c *Client) call(ctx context.Context, action string, payload map[string]any, out any) error {
	if !c.Configured() {
		return services.Wrap(services.ErrConfiguration, "webhook", action, "webhook url is not configured", nil)
	}

	body := make(map[string]any, len(payload)+1)
	for k, v := range payload {
		body[k] = v
	}
	body["action"] = action
	encoded, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode %s request: %w", action, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(encoded))
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "webhook", action, "build request", err)
	}
	req.Header.Set("Content-Type", "text/plain")
	req.Header.Set("User-Agent", userAgent)

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return services.Wrap(services.ErrTransport, "webhook", action, "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return &StatusError{Code: resp.StatusCode, StatusText: statusText(resp)}
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return services.Wrap(services.ErrTransport, "webhook", action, "read response", err)
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return services.Wrap(services.ErrTransport, "webhook", action, "decode response", err)
	}
	if !env.OK {
		msg := env.Error
		if msg == "" {
			msg = fallbackMessages[action]
		}
		return &EnvelopeError{Action: action, Message: msg}
	}
	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return services.Wrap(services.ErrTransport, "webhook", action, "decode response", err)
		}
	}
	c.logger.Debug("webhook call completed",
		logging.String("action", action),
		logging.Duration("elapsed", time.Since(started)),
	)
	return nil
}

// statusText returns the reason phrase of resp, falling back to the standard
// text for the code.
func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}

// ConnectionResult is the outcome of TestConnection.
type ConnectionResult struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

// TestConnection issues a GET against the webhook with a short deadline. It
// never returns an error; failures are reported in the result.
func (c *Client) TestConnection(ctx context.Context) ConnectionResult {
	if !c.Configured() {
		return ConnectionResult{Message: "webhook url is empty"}
	}
	ctx, cancel := context.WithTimeout(ctx, c.connTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return ConnectionResult{Message: err.Error()}
	}
	req.Header.Set("User-Agent", userAgent)
	resp, err := c.http.Do(req)
	if err != nil {
		return ConnectionResult{Message: err.Error()}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return ConnectionResult{Message: fmt.Sprintf("HTTP %d", resp.StatusCode)}
	}
	var result ConnectionResult
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&result); err != nil {
		return ConnectionResult{Message: fmt.Sprintf("decode response: %v", err)}
	}
	if result.Message == "" {
		result.Message = "connected"
	}
	return result
}
