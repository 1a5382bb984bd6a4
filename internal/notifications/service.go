package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"reelctl/internal/config"
)

const userAgent = "reelctl/0.1.0"

// Event names a notification kind.
type Event string

const (
	EventRenderCompleted Event = "render_completed"
	EventRenderFailed    Event = "render_failed"
	EventUploadCompleted Event = "upload_completed"
	EventSyncFailed      Event = "sync_failed"
	EventTest            Event = "test"
)

// Payload carries event fields.
type Payload map[string]any

// Service is the notification surface used by render, upload, and sync code.
type Service interface {
	Publish(ctx context.Context, event Event, payload Payload) error
	NotifyRenderCompleted(ctx context.Context, name, artifactURL string) error
	NotifyRenderFailed(ctx context.Context, name, reason string) error
	NotifyUploadCompleted(ctx context.Context, name, strategy string, size int64) error
	NotifySyncFailed(ctx context.Context, collection string, err error) error
	TestNotification(ctx context.Context) error
}

// NewService builds an ntfy-backed service, or a no-op one when no topic is
// configured.
func NewService(cfg *config.Config) Service {
	if cfg == nil {
		return noopService{}
	}
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}
	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
		enabled: map[Event]bool{
			EventRenderCompleted: cfg.Notifications.Render,
			EventRenderFailed:    cfg.Notifications.Render,
			EventUploadCompleted: cfg.Notifications.Upload,
			EventSyncFailed:      cfg.Notifications.Sync,
			EventTest:            true,
		},
	}
}

type message struct {
	title    string
	body     string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
	enabled  map[Event]bool
}

func (n *ntfyService) Publish(ctx context.Context, event Event, payload Payload) error {
	if !n.enabled[event] {
		return nil
	}
	msg, ok := format(event, payload)
	if !ok {
		return fmt.Errorf("unknown notification event %q", event)
	}
	return n.send(ctx, msg)
}

func (n *ntfyService) NotifyRenderCompleted(ctx context.Context, name, artifactURL string) error {
	return n.Publish(ctx, EventRenderCompleted, Payload{"name": name, "artifactUrl": artifactURL})
}

func (n *ntfyService) NotifyRenderFailed(ctx context.Context, name, reason string) error {
	return n.Publish(ctx, EventRenderFailed, Payload{"name": name, "reason": reason})
}

func (n *ntfyService) NotifyUploadCompleted(ctx context.Context, name, strategy string, size int64) error {
	return n.Publish(ctx, EventUploadCompleted, Payload{"name": name, "strategy": strategy, "size": size})
}

func (n *ntfyService) NotifySyncFailed(ctx context.Context, collection string, err error) error {
	text := "unknown"
	if err != nil {
		text = strings.TrimSpace(err.Error())
	}
	return n.Publish(ctx, EventSyncFailed, Payload{"collection": collection, "error": text})
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	return n.Publish(ctx, EventTest, nil)
}

func format(event Event, payload Payload) (message, bool) {
	str := func(key string) string {
		if v, ok := payload[key]; ok && v != nil {
			return strings.TrimSpace(fmt.Sprint(v))
		}
		return ""
	}
	switch event {
	case EventRenderCompleted:
		body := fmt.Sprintf("🎬 Render complete: %s", str("name"))
		if url := str("artifactUrl"); url != "" {
			body += "\nArtifact: " + url
		}
		return message{
			title:    "reelctl - Render Complete",
			body:     body,
			tags:     []string{"reelctl", "render", "completed"},
			priority: "high",
		}, true
	case EventRenderFailed:
		reason := str("reason")
		if reason == "" {
			reason = "unknown"
		}
		return message{
			title:    "reelctl - Render Failed",
			body:     fmt.Sprintf("❌ Render failed: %s (%s)", str("name"), reason),
			tags:     []string{"reelctl", "render", "failed"},
			priority: "high",
		}, true
	case EventUploadCompleted:
		return message{
			title: "reelctl - Upload Complete",
			body:  fmt.Sprintf("📤 Uploaded %s via %s (%s bytes)", str("name"), str("strategy"), str("size")),
			tags:  []string{"reelctl", "upload", "completed"},
		}, true
	case EventSyncFailed:
		return message{
			title: "reelctl - Sync Failed",
			body:  fmt.Sprintf("⚠️ Sync of %s failed: %s", str("collection"), str("error")),
			tags:  []string{"reelctl", "sync", "alert"},
		}, true
	case EventTest:
		return message{
			title:    "reelctl - Test",
			body:     "🧪 Notification system test",
			tags:     []string{"reelctl", "test"},
			priority: "low",
		}, true
	}
	return message{}, false
}

func (n *ntfyService) send(ctx context.Context, data message) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.body))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) Publish(context.Context, Event, Payload) error                      { return nil }
func (noopService) NotifyRenderCompleted(context.Context, string, string) error        { return nil }
func (noopService) NotifyRenderFailed(context.Context, string, string) error           { return nil }
func (noopService) NotifyUploadCompleted(context.Context, string, string, int64) error { return nil }
func (noopService) NotifySyncFailed(context.Context, string, error) error              { return nil }
func (noopService) TestNotification(context.Context) error                             { return nil }
