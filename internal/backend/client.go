package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"reelctl/internal/config"
	"reelctl/internal/logging"
	"reelctl/internal/reel"
	"reelctl/internal/services"
)

// DefaultConnectionTimeout bounds TestConnection.
const DefaultConnectionTimeout = 5 * time.Second

// HTTPDoer is satisfied by *http.Client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to the render backend.
type Client struct {
	base        string
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
		c.logger = logging.NewComponentLogger(logger, "backend")
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

// New builds a client rooted at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		base:        strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:        &http.Client{},
		logger:      logging.NewComponentLogger(nil, "backend"),
		connTimeout: DefaultConnectionTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewFromConfig builds a client for cfg.Render.APIURL.
func NewFromConfig(cfg *config.Config, opts ...Option) *Client {
	if cfg == nil {
		return New("", opts...)
	}
	return New(cfg.Render.APIURL, opts...)
}

// Configured reports whether a backend URL is set.
func (c *Client) Configured() bool {
	return c != nil && c.base != ""
}

// APIError is a non-2xx backend response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

func (e *APIError) Unwrap() error { return services.ErrTransport }

// Preset is a voice and pacing preset.
type Preset struct {
	Name        string  `json:"name"`
	Voice       string  `json:"voice"`
	Speed       float64 `json:"speed"`
	Description string  `json:"description"`
}

// ExpressionInfo is a character pose known to the backend.
type ExpressionInfo struct {
	Name      string `json:"name"`
	Thumbnail string `json:"thumbnail"`
}

// Overlay is an image that can be laid over a scene.
type Overlay struct {
	Name string `json:"name"`
	Path string `json:"path"`
	URL  string `json:"url"`
}

func (c *Client) url(path string) string {
	return c.base + path
}

func (c *Client) ensureConfigured(operation string) error {
	if !c.Configured() {
		return services.Wrap(services.ErrConfiguration, "backend", operation, "render api url is not configured", nil)
	}
	return nil
}

// do sends req and decodes a 2xx JSON body into out. Non-2xx bodies are read
// for an `error` field; fallback is used when none is present.
func (c *Client) do(req *http.Request, operation, fallback string, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return services.Wrap(services.ErrTransport, "backend", operation, "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var body struct {
			Error string `json:"error"`
		}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		_ = json.Unmarshal(raw, &body)
		msg := strings.TrimSpace(body.Error)
		if msg == "" {
			msg = fallback
		}
		return &APIError{Status: resp.StatusCode, Message: msg}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return services.Wrap(services.ErrTransport, "backend", operation, "decode response", err)
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, path, operation, fallback string, out any) error {
	if err := c.ensureConfigured(operation); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(path), nil)
	if err != nil {
		return fmt.Errorf("build %s request: %w", operation, err)
	}
	req.Header.Set("Accept", "application/json")
	return c.do(req, operation, fallback, out)
}

func (c *Client) postJSON(ctx context.Context, path, operation, fallback string, in, out any) error {
	if err := c.ensureConfigured(operation); err != nil {
		return err
	}
	encoded, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode %s request: %w", operation, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(path), bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("build %s request: %w", operation, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return c.do(req, operation, fallback, out)
}

// Presets lists voice presets.
func (c *Client) Presets(ctx context.Context) ([]Preset, error) {
	var out []Preset
	err := c.getJSON(ctx, "/api/presets", "presets", "failed to fetch presets", &out)
	return out, err
}

// Expressions lists character poses.
func (c *Client) Expressions(ctx context.Context) ([]ExpressionInfo, error) {
	var out []ExpressionInfo
	err := c.getJSON(ctx, "/api/expressions", "expressions", "failed to fetch expressions", &out)
	return out, err
}

// Overlays lists overlay images.
func (c *Client) Overlays(ctx context.Context) ([]Overlay, error) {
	var out []Overlay
	err := c.getJSON(ctx, "/api/overlays", "overlays", "failed to fetch overlays", &out)
	return out, err
}

// ExpressionThumbnailURL returns the thumbnail image for a pose.
func (c *Client) ExpressionThumbnailURL(expression reel.Expression) string {
	return c.url("/api/expressions/" + url.PathEscape(string(expression)) + "/closed.png")
}

// OverlayURL returns the public URL of an overlay file.
func (c *Client) OverlayURL(file string) string {
	return c.url("/api/overlays/" + strings.TrimLeft(file, "/"))
}

// GenerateRequest is the body of a direct render.
type GenerateRequest struct {
	Name       string             `json:"name"`
	Preset     string             `json:"preset"`
	Background string             `json:"background,omitempty"`
	Scenes     []reel.Scene       `json:"scenes"`
	CTA        *reel.CallToAction `json:"cta,omitempty"`
}

// GenerateResponse acknowledges a direct render.
type GenerateResponse struct {
	OK        bool   `json:"ok"`
	ProjectID string `json:"projectId"`
}

// GenerateStatus is the backend's view of the current render.
type GenerateStatus struct {
	Running   bool   `json:"running"`
	Progress  string `json:"progress"`
	Error     string `json:"error"`
	ProjectID string `json:"projectId"`
}

// GenerateV2 starts a render on the backend.
func (c *Client) GenerateV2(ctx context.Context, req GenerateRequest) (GenerateResponse, error) {
	var out GenerateResponse
	err := c.postJSON(ctx, "/api/projects/generate-v2", "generate", "generate failed", req, &out)
	return out, err
}

// Status reports the backend's current render.
func (c *Client) Status(ctx context.Context) (GenerateStatus, error) {
	var out GenerateStatus
	err := c.getJSON(ctx, "/api/projects/generate/status", "status", "failed to get status", &out)
	return out, err
}

// AIScript is a draft written by the backend from a theme.
type AIScript struct {
	Name   string             `json:"name"`
	Preset string             `json:"preset"`
	Scenes []reel.Scene       `json:"scenes"`
	CTA    *reel.CallToAction `json:"cta,omitempty"`
}

// ToScript converts the draft into an editable script.
func (a AIScript) ToScript(now time.Time) reel.Script {
	gen := reel.GeneratedScript{Title: a.Name, Scenes: a.Scenes, CTA: a.CTA}
	return gen.ToScript(a.Preset, now)
}

// GenerateAIScript asks the backend to draft a script about theme.
func (c *Client) GenerateAIScript(ctx context.Context, theme string) (AIScript, error) {
	var out struct {
		Script AIScript `json:"script"`
	}
	err := c.postJSON(ctx, "/api/scripts/generate-ai", "generate-ai", "AI generation failed",
		map[string]string{"theme": theme}, &out)
	return out.Script, err
}

// UploadResult is the backend's reply to an asset upload.
type UploadResult struct {
	Path string `json:"path"`
}

// UploadBackground stores a background asset on the backend.
func (c *Client) UploadBackground(ctx context.Context, name, path string) (UploadResult, error) {
	return c.upload(ctx, "/api/backgrounds/upload", "upload background", name, path)
}

// UploadOverlay stores an overlay image on the backend.
func (c *Client) UploadOverlay(ctx context.Context, name, path string) (UploadResult, error) {
	return c.upload(ctx, "/api/overlays/upload", "upload overlay", name, path)
}

func (c *Client) upload(ctx context.Context, endpoint, operation, name, path string) (UploadResult, error) {
	if err := c.ensureConfigured(operation); err != nil {
		return UploadResult{}, err
	}
	file, err := os.Open(path)
	if err != nil {
		return UploadResult{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()
	if name == "" {
		name = filepath.Base(path)
	}

	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)
	go func() {
		part, err := writer.CreateFormFile("file", name)
		if err == nil {
			_, err = io.Copy(part, file)
		}
		if err == nil {
			err = writer.Close()
		}
		pw.CloseWithError(err)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(endpoint), pr)
	if err != nil {
		pr.Close()
		return UploadResult{}, fmt.Errorf("build %s request: %w", operation, err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	var out UploadResult
	if err := c.do(req, operation, "upload failed", &out); err != nil {
		pr.Close()
		return UploadResult{}, err
	}
	if out.Path == "" {
		out.Path = name
	}
	c.logger.Info("asset uploaded", logging.String("endpoint", endpoint), logging.String("path", out.Path))
	return out, nil
}

// TestConnection reports whether the backend answers the preset listing
// within the connection timeout.
func (c *Client) TestConnection(ctx context.Context) bool {
	if !c.Configured() {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, c.connTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url("/api/presets"), nil)
	if err != nil {
		return false
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}
