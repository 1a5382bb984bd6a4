package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"reelctl/internal/config"
	"reelctl/internal/notifications"
)

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = ""
	svc := notifications.NewService(&cfg)
	if err := svc.NotifyRenderCompleted(context.Background(), "reel", "https://example.test/a.zip"); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
	if err := notifications.NewService(nil).TestNotification(context.Background()); err != nil {
		t.Fatalf("nil config should yield noop, got %v", err)
	}
}

func TestNtfyServiceFormatsPayloads(t *testing.T) {
	tests := []struct {
		name           string
		send           func(notifications.Service) error
		expectTitle    string
		expectMessage  string
		expectTags     string
		expectPriority string
	}{
		{
			name: "render completed",
			send: func(s notifications.Service) error {
				return s.NotifyRenderCompleted(context.Background(), "朝のルーティン", "https://api.example.test/artifacts/9/zip")
			},
			expectTitle:    "reelctl - Render Complete",
			expectMessage:  "🎬 Render complete: 朝のルーティン\nArtifact: https://api.example.test/artifacts/9/zip",
			expectTags:     "reelctl,render,completed",
			expectPriority: "high",
		},
		{
			name: "render failed",
			send: func(s notifications.Service) error {
				return s.NotifyRenderFailed(context.Background(), "reel", "failure")
			},
			expectTitle:    "reelctl - Render Failed",
			expectMessage:  "❌ Render failed: reel (failure)",
			expectTags:     "reelctl,render,failed",
			expectPriority: "high",
		},
		{
			name: "upload completed",
			send: func(s notifications.Service) error {
				return s.NotifyUploadCompleted(context.Background(), "sky.png", "contents", 2048)
			},
			expectTitle:   "reelctl - Upload Complete",
			expectMessage: "📤 Uploaded sky.png via contents (2048 bytes)",
			expectTags:    "reelctl,upload,completed",
		},
		{
			name: "sync failed",
			send: func(s notifications.Service) error {
				return s.NotifySyncFailed(context.Background(), "scripts", errors.New("HTTP 500: Internal Server Error"))
			},
			expectTitle:   "reelctl - Sync Failed",
			expectMessage: "⚠️ Sync of scripts failed: HTTP 500: Internal Server Error",
			expectTags:    "reelctl,sync,alert",
		},
		{
			name:           "test",
			send:           func(s notifications.Service) error { return s.TestNotification(context.Background()) },
			expectTitle:    "reelctl - Test",
			expectMessage:  "🧪 Notification system test",
			expectTags:     "reelctl,test",
			expectPriority: "low",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var captured struct {
				title    string
				tags     string
				priority string
				body     string
			}

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Errorf("unexpected method: %s", r.Method)
				}
				captured.title = r.Header.Get("Title")
				captured.tags = r.Header.Get("Tags")
				captured.priority = r.Header.Get("Priority")
				body, err := io.ReadAll(r.Body)
				if err != nil {
					t.Errorf("read body: %v", err)
				}
				captured.body = string(body)
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			cfg := config.Default()
			cfg.Notifications.NtfyTopic = server.URL
			cfg.Notifications.RequestTimeout = 5
			cfg.Notifications.Upload = true

			svc := notifications.NewService(&cfg)
			if err := tc.send(svc); err != nil {
				t.Fatalf("notification returned error: %v", err)
			}

			if captured.title != tc.expectTitle {
				t.Fatalf("expected title %q, got %q", tc.expectTitle, captured.title)
			}
			if captured.body != tc.expectMessage {
				t.Fatalf("expected message %q, got %q", tc.expectMessage, captured.body)
			}
			if captured.tags != tc.expectTags {
				t.Fatalf("expected tags %q, got %q", tc.expectTags, captured.tags)
			}
			if captured.priority != tc.expectPriority {
				t.Fatalf("expected priority %q, got %q", tc.expectPriority, captured.priority)
			}
		})
	}
}

func TestNtfyServiceIgnoresDisabledCategories(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected call for disabled event: %s", r.URL.String())
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	cfg.Notifications.Render = false
	cfg.Notifications.Upload = false
	cfg.Notifications.Sync = false

	svc := notifications.NewService(&cfg)
	ctx := context.Background()
	if err := svc.NotifyRenderCompleted(ctx, "reel", ""); err != nil {
		t.Fatalf("render: %v", err)
	}
	if err := svc.NotifyUploadCompleted(ctx, "a.png", "contents", 1); err != nil {
		t.Fatalf("upload: %v", err)
	}
	if err := svc.NotifySyncFailed(ctx, "history", nil); err != nil {
		t.Fatalf("sync: %v", err)
	}
}

func TestNtfyServiceReportsServerErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "topic blocked", http.StatusForbidden)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	svc := notifications.NewService(&cfg)
	if err := svc.TestNotification(context.Background()); err == nil {
		t.Fatal("expected error for 403 response")
	}
	if err := svc.Publish(context.Background(), notifications.Event("bogus"), nil); err != nil {
		t.Fatalf("unknown events are disabled and should be ignored, got %v", err)
	}
}
